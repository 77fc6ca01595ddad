package config

import (
	"os"

	ferrors "git.home.luguber.info/inful/exportcfg/internal/foundation/errors"
	"gopkg.in/yaml.v3"
)

// File layout of an override file, used to write the example.
type overrideFile struct {
	Preprocess struct {
		Name string `yaml:"name"`
	} `yaml:"preprocess"`
	Kit struct {
		Target     string `yaml:"target"`
		RenderMode string `yaml:"render_mode"`
		Prerender  struct {
			Enabled bool     `yaml:"enabled"`
			Crawl   bool     `yaml:"crawl"`
			Pages   []string `yaml:"pages"`
		} `yaml:"prerender"`
		Adapter struct {
			Name     string `yaml:"name"`
			Fallback string `yaml:"fallback"`
		} `yaml:"adapter"`
	} `yaml:"kit"`
}

// ExampleOverrides renders an override file spelling out the defaults.
func ExampleOverrides() ([]byte, error) {
	cfg, err := ResolveDefault()
	if err != nil {
		return nil, err
	}
	var f overrideFile
	f.Preprocess.Name = cfg.Preprocessor.Name
	f.Kit.Target = cfg.HydrationTarget
	f.Kit.RenderMode = string(cfg.RenderMode)
	f.Kit.Prerender.Enabled = cfg.Prerender.Enabled
	f.Kit.Prerender.Crawl = cfg.Prerender.CrawlLinks
	f.Kit.Prerender.Pages = cfg.Prerender.Pages
	f.Kit.Adapter.Name = cfg.Adapter.Name
	f.Kit.Adapter.Fallback = cfg.Adapter.FallbackDocument
	return yaml.Marshal(&f)
}

// Init writes the example override file to path.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return ferrors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", path).
			Build()
	}
	data, err := ExampleOverrides()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write config file").
			Fatal().
			WithContext("path", path).
			Build()
	}
	return nil
}
