package config

import "git.home.luguber.info/inful/exportcfg/internal/capability"

// Overrides holds externally supplied values for recognized options. A nil
// field means "keep the default". Values are raw: type and range checks
// happen during resolution so every source reports InvalidOptionError the
// same way.
type Overrides struct {
	Preprocessor         *string
	PreprocessorSettings map[string]any
	HydrationTarget      *string
	RenderMode           *string
	Prerender            PrerenderOverrides
	Adapter              AdapterOverrides
}

// PrerenderOverrides overrides fields of PrerenderPolicy.
type PrerenderOverrides struct {
	Enabled *bool
	Crawl   *bool
	Pages   *[]string
}

// AdapterOverrides overrides the adapter selection and its options.
type AdapterOverrides struct {
	Name        *string
	Fallback    *string
	PagesDir    *string
	AssetsDir   *string
	Precompress *bool
}

// IsZero reports whether no override is set.
func (o Overrides) IsZero() bool {
	return o.Preprocessor == nil && o.PreprocessorSettings == nil &&
		o.HydrationTarget == nil && o.RenderMode == nil &&
		o.Prerender == (PrerenderOverrides{}) && o.Adapter == (AdapterOverrides{})
}

// Merge layers the given overrides in order; later layers win field by field.
// PreprocessorSettings maps are merged key by key at the top level. The result
// shares no slices or maps with its inputs.
func Merge(layers ...Overrides) Overrides {
	var out Overrides
	for _, l := range layers {
		out.Preprocessor = pick(out.Preprocessor, l.Preprocessor)
		out.HydrationTarget = pick(out.HydrationTarget, l.HydrationTarget)
		out.RenderMode = pick(out.RenderMode, l.RenderMode)
		out.Prerender.Enabled = pick(out.Prerender.Enabled, l.Prerender.Enabled)
		out.Prerender.Crawl = pick(out.Prerender.Crawl, l.Prerender.Crawl)
		if l.Prerender.Pages != nil {
			pages := append([]string{}, (*l.Prerender.Pages)...)
			out.Prerender.Pages = &pages
		}
		out.Adapter.Name = pick(out.Adapter.Name, l.Adapter.Name)
		out.Adapter.Fallback = pick(out.Adapter.Fallback, l.Adapter.Fallback)
		out.Adapter.PagesDir = pick(out.Adapter.PagesDir, l.Adapter.PagesDir)
		out.Adapter.AssetsDir = pick(out.Adapter.AssetsDir, l.Adapter.AssetsDir)
		out.Adapter.Precompress = pick(out.Adapter.Precompress, l.Adapter.Precompress)
		if l.PreprocessorSettings != nil {
			if out.PreprocessorSettings == nil {
				out.PreprocessorSettings = make(map[string]any, len(l.PreprocessorSettings))
			}
			for k, v := range l.PreprocessorSettings {
				out.PreprocessorSettings[k] = capability.CloneValue(v)
			}
		}
	}
	return out
}

func pick[T any](cur, next *T) *T {
	if next != nil {
		return next
	}
	return cur
}

func ptr[T any](v T) *T { return &v }
