// Package capability defines the pluggable preprocessor and output-adapter
// capabilities a build configuration is assembled from, and the registry they
// are looked up in.
package capability

// PreprocessorOptions is the opaque transform-options value produced by a
// preprocessor capability. The resolver never inspects Settings.
type PreprocessorOptions struct {
	Name     string         `yaml:"name" json:"name"`
	Settings map[string]any `yaml:"settings,omitempty" json:"settings,omitempty"`
}

// Clone returns a copy that shares no maps or slices with o.
func (o PreprocessorOptions) Clone() PreprocessorOptions {
	return PreprocessorOptions{Name: o.Name, Settings: CloneSettings(o.Settings)}
}

// CloneSettings deep-copies a settings tree. Nested maps and slices are
// copied recursively; other values are copied by assignment.
func CloneSettings(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = CloneValue(v)
	}
	return out
}

// CloneValue deep-copies one settings value.
func CloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CloneSettings(t)
	case map[any]any:
		out := make(map[any]any, len(t))
		for k, item := range t {
			out[k] = CloneValue(item)
		}
		return out
	case []any:
		if t == nil {
			return t
		}
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = CloneValue(item)
		}
		return out
	default:
		return v
	}
}

// Preprocessor transforms source files before the framework build step.
type Preprocessor interface {
	Name() string
	// DefaultOptions must not fail when called without arguments.
	DefaultOptions() PreprocessorOptions
}

// AdapterOptions are the parameters handed to an adapter's constructor.
type AdapterOptions struct {
	FallbackDocument string
	PagesDir         string
	AssetsDir        string
	Precompress      bool
}

// AdapterHandle is the configured output target produced by an adapter.
type AdapterHandle struct {
	Name             string `yaml:"name" json:"name"`
	FallbackDocument string `yaml:"fallback" json:"fallback"`
	PagesDir         string `yaml:"pages" json:"pages"`
	AssetsDir        string `yaml:"assets" json:"assets"`
	Precompress      bool   `yaml:"precompress" json:"precompress"`
}

// Adapter turns framework build artifacts into a deployable form.
type Adapter interface {
	Name() string
	Create(opts AdapterOptions) (AdapterHandle, error)
}
