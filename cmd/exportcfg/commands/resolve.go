package commands

import (
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/exportcfg/internal/config"
	ferrors "git.home.luguber.info/inful/exportcfg/internal/foundation/errors"
	"git.home.luguber.info/inful/exportcfg/internal/logfields"
)

// ResolveCmd implements the 'resolve' command.
type ResolveCmd struct {
	Format string `short:"f" help:"Output format (yaml or json)" enum:"yaml,json" default:"yaml"`
	Write  string `short:"w" help:"Write the resolved configuration to this file instead of stdout" type:"path"`
}

func (r *ResolveCmd) Run(g *Global, root *CLI) error {
	cfg, err := resolveConfig(g, root)
	if err != nil {
		return err
	}
	return emit(g, cfg, r.Format, r.Write)
}

// emit encodes cfg and writes it to path, or to stdout when path is empty.
// File writes go through a temp file and rename so readers never see a partial file.
func emit(g *Global, cfg *config.BuildConfig, format, path string) error {
	data, err := config.Encode(cfg, format)
	if err != nil {
		return err
	}
	if path == "" {
		_, err = g.Stdout.Write(data)
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".exportcfg-*")
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write resolved configuration").
			Fatal().WithContext("path", path).Build()
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write resolved configuration").
			Fatal().WithContext("path", path).Build()
	}
	if err := tmp.Close(); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write resolved configuration").
			Fatal().WithContext("path", path).Build()
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write resolved configuration").
			Fatal().WithContext("path", path).Build()
	}
	g.Logger.Info("Wrote resolved configuration",
		logfields.Path(path),
		logfields.Format(format),
		logfields.Fingerprint(cfg.Fingerprint()))
	return nil
}
