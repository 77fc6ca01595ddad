package config

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/exportcfg/internal/capability"
	ferrors "git.home.luguber.info/inful/exportcfg/internal/foundation/errors"
)

// Validate checks a BuildConfig. It is run by Resolve and may be used on
// values built by hand.
func Validate(cfg *BuildConfig) error {
	if cfg == nil {
		return ferrors.InternalError("nil build configuration").Build()
	}
	return newConfigurationValidator(cfg).validate()
}

// configurationValidator coordinates validation across configuration domains.
type configurationValidator struct {
	config *BuildConfig
}

func newConfigurationValidator(cfg *BuildConfig) *configurationValidator {
	return &configurationValidator{config: cfg}
}

func (cv *configurationValidator) validate() error {
	if err := cv.validatePreprocessor(); err != nil {
		return err
	}
	if err := cv.validateRendering(); err != nil {
		return err
	}
	if err := cv.validatePrerender(); err != nil {
		return err
	}
	return cv.validateAdapter()
}

func (cv *configurationValidator) validatePreprocessor() error {
	if strings.TrimSpace(cv.config.Preprocessor.Name) == "" {
		return ferrors.InvalidOption("preprocess.name", cv.config.Preprocessor.Name).
			WithContext("reason", "must not be empty").
			Build()
	}
	return nil
}

func (cv *configurationValidator) validateRendering() error {
	if !cv.config.RenderMode.Valid() {
		return ferrors.InvalidOption("render_mode", string(cv.config.RenderMode)).
			WithContext("reason", "unknown render mode").
			Build()
	}
	if strings.TrimSpace(cv.config.HydrationTarget) == "" {
		return ferrors.InvalidOption("target", cv.config.HydrationTarget).
			WithContext("reason", "must not be empty").
			Build()
	}
	return nil
}

// validatePrerender requires absolute routes or "*". An empty page list is
// valid even when crawling is disabled: every route then relies on the fallback.
func (cv *configurationValidator) validatePrerender() error {
	for i, page := range cv.config.Prerender.Pages {
		if page != PrerenderAllRoutes && !strings.HasPrefix(page, "/") {
			return ferrors.InvalidOption(fmt.Sprintf("prerender.pages[%d]", i), page).
				WithContext("reason", "route must start with '/' or be '*'").
				Build()
		}
	}
	return nil
}

func (cv *configurationValidator) validateAdapter() error {
	if cv.config.Adapter.Name == "" {
		return ferrors.InvalidOption("adapter.name", "").
			WithContext("reason", "must not be empty").
			Build()
	}
	return capability.ValidateDocumentPath("adapter.fallback", cv.config.Adapter.FallbackDocument)
}

// Notes returns non-fatal observations about a valid configuration.
func Notes(cfg *BuildConfig) []string {
	var notes []string
	p := cfg.Prerender
	switch {
	case !p.Enabled && len(p.Pages) > 0:
		notes = append(notes, fmt.Sprintf("prerendering is disabled; %d explicit page(s) will be ignored", len(p.Pages)))
	case cfg.ExplicitPagesOnly() && len(p.Pages) == 0:
		notes = append(notes, fmt.Sprintf("no pages are prerendered; every route is served %s", cfg.Adapter.FallbackDocument))
	}
	if dup := duplicates(p.Pages); len(dup) > 0 {
		notes = append(notes, "duplicate prerender pages: "+strings.Join(dup, ", "))
	}
	if cfg.SSR() && cfg.Adapter.Name == capability.AdapterStatic {
		notes = append(notes, "server-side rendering has no effect with the static adapter at serve time")
	}
	return notes
}

func duplicates(pages []string) []string {
	seen := make(map[string]int, len(pages))
	var dup []string
	for _, p := range pages {
		seen[p]++
		if seen[p] == 2 {
			dup = append(dup, p)
		}
	}
	return dup
}
