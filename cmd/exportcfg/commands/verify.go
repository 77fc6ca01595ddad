package commands

import (
	"fmt"

	"git.home.luguber.info/inful/exportcfg/internal/export"
	"git.home.luguber.info/inful/exportcfg/internal/logfields"
)

// VerifyCmd implements the 'verify' command.
type VerifyCmd struct {
	Dir string `arg:"" optional:"" help:"Project directory the adapter wrote into" default:"." type:"path"`
}

func (v *VerifyCmd) Run(g *Global, root *CLI) error {
	cfg, err := resolveConfig(g, root)
	if err != nil {
		return err
	}
	report, err := export.Verify(cfg, v.Dir)
	if err != nil {
		return err
	}
	for _, route := range report.Missing {
		g.Logger.Warn("Explicit page not prerendered; fallback will serve it",
			"route", route, logfields.Fallback(cfg.Adapter.FallbackDocument))
	}
	_, _ = fmt.Fprintf(g.Stdout, "fallback: %s\n", report.FallbackPath)
	_, _ = fmt.Fprintf(g.Stdout, "prerendered: %d, missing: %d\n", len(report.Prerendered), len(report.Missing))
	if report.AllRoutes {
		_, _ = fmt.Fprintln(g.Stdout, "all routes: requested with '*', not checked")
	}
	return nil
}
