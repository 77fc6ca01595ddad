package config

import (
	"maps"

	"git.home.luguber.info/inful/exportcfg/internal/capability"
	ferrors "git.home.luguber.info/inful/exportcfg/internal/foundation/errors"
)

// Resolver produces validated BuildConfig values. Resolve performs no I/O and
// does not mutate the resolver, so one Resolver may be shared across goroutines.
type Resolver struct {
	registry  *capability.Registry
	overrides Overrides
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithOverrides layers external overrides on top of the literal defaults.
// Multiple calls merge in order.
func WithOverrides(layers ...Overrides) Option {
	return func(r *Resolver) {
		r.overrides = Merge(append([]Overrides{r.overrides}, layers...)...)
	}
}

// NewResolver returns a resolver backed by reg, or by the built-in
// capabilities when reg is nil.
func NewResolver(reg *capability.Registry, opts ...Option) *Resolver {
	if reg == nil {
		reg = capability.DefaultRegistry()
	}
	r := &Resolver{registry: reg}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveDefault resolves the configuration with no overrides.
func ResolveDefault() (*BuildConfig, error) {
	return NewResolver(nil).Resolve()
}

// Resolve assembles and validates the build configuration:
//  1. preprocessor default options from the preprocessor capability
//  2. render mode (client only unless overridden)
//  3. prerender policy (enabled, no crawling, no explicit pages)
//  4. output adapter from the adapter capability with the fallback document
//
// Errors are InvalidOptionError or UnknownCapabilityError and are never retried.
func (r *Resolver) Resolve() (*BuildConfig, error) {
	o := r.overrides

	pre, err := r.registry.Preprocessor(deref(o.Preprocessor, DefaultPreprocessor))
	if err != nil {
		return nil, err
	}
	preOpts := pre.DefaultOptions().Clone()
	if o.PreprocessorSettings != nil {
		settings, serr := normalizeSettings(o.PreprocessorSettings)
		if serr != nil {
			return nil, serr
		}
		if preOpts.Settings == nil {
			preOpts.Settings = make(map[string]any, len(settings))
		}
		maps.Copy(preOpts.Settings, settings)
	}

	mode := RenderModeClientOnly
	if o.RenderMode != nil {
		m, perr := ParseRenderMode(*o.RenderMode)
		if perr != nil {
			return nil, ferrors.InvalidOption("render_mode", *o.RenderMode).
				WithCause(perr).
				Build()
		}
		mode = m
	}

	policy := PrerenderPolicy{
		Enabled:    deref(o.Prerender.Enabled, true),
		CrawlLinks: deref(o.Prerender.Crawl, false),
		Pages:      []string{},
	}
	if o.Prerender.Pages != nil {
		policy.Pages = append(policy.Pages, (*o.Prerender.Pages)...)
	}

	ad, err := r.registry.Adapter(deref(o.Adapter.Name, DefaultAdapter))
	if err != nil {
		return nil, err
	}
	handle, err := ad.Create(capability.AdapterOptions{
		FallbackDocument: deref(o.Adapter.Fallback, DefaultFallbackDocument),
		PagesDir:         deref(o.Adapter.PagesDir, ""),
		AssetsDir:        deref(o.Adapter.AssetsDir, ""),
		Precompress:      deref(o.Adapter.Precompress, false),
	})
	if err != nil {
		if ferrors.IsClassified(err) {
			return nil, err
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryInvalidOption, "adapter rejected options").
			Fatal().
			WithContext("field", "adapter").
			Build()
	}

	cfg := &BuildConfig{
		Preprocessor:    preOpts,
		HydrationTarget: deref(o.HydrationTarget, DefaultHydrationTarget),
		RenderMode:      mode,
		Prerender:       policy,
		Adapter:         handle,
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func deref[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
