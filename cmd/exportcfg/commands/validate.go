package commands

import (
	"fmt"

	"git.home.luguber.info/inful/exportcfg/internal/config"
)

// ValidateCmd implements the 'validate' command.
type ValidateCmd struct{}

func (v *ValidateCmd) Run(g *Global, root *CLI) error {
	cfg, err := resolveConfig(g, root)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(g.Stdout, "configuration valid")
	_, _ = fmt.Fprintf(g.Stdout, "  render mode: %s\n", cfg.RenderMode)
	_, _ = fmt.Fprintf(g.Stdout, "  prerender:   enabled=%t crawl=%t pages=%d\n",
		cfg.Prerender.Enabled, cfg.Prerender.CrawlLinks, len(cfg.Prerender.Pages))
	_, _ = fmt.Fprintf(g.Stdout, "  adapter:     %s (fallback %s)\n", cfg.Adapter.Name, cfg.Adapter.FallbackDocument)
	_, _ = fmt.Fprintf(g.Stdout, "  fingerprint: %s\n", cfg.Fingerprint())
	for _, n := range config.Notes(cfg) {
		_, _ = fmt.Fprintf(g.Stdout, "note: %s\n", n)
	}
	return nil
}
