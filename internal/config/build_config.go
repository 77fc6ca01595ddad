package config

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"git.home.luguber.info/inful/exportcfg/internal/capability"
	"git.home.luguber.info/inful/exportcfg/internal/foundation/normalization"
)

// Literal defaults of the static client-only export.
const (
	DefaultPreprocessor     = capability.PreprocessorStandard
	DefaultAdapter          = capability.AdapterStatic
	DefaultFallbackDocument = "index.html"
	DefaultHydrationTarget  = "#svelte"

	// PrerenderAllRoutes in Prerender.Pages stands for every non-dynamic route.
	PrerenderAllRoutes = "*"
)

// RenderMode selects where pages are rendered.
type RenderMode string

const (
	RenderModeServerSide RenderMode = "server_side_rendered"
	RenderModeClientOnly RenderMode = "client_only"
)

var renderModeNormalizer = normalization.NewNormalizer("render_mode", map[string]RenderMode{
	"server_side_rendered": RenderModeServerSide,
	"ssr":                  RenderModeServerSide,
	"client_only":          RenderModeClientOnly,
	"csr":                  RenderModeClientOnly,
	"spa":                  RenderModeClientOnly,
}, RenderModeClientOnly)

// ParseRenderMode accepts the canonical names plus the ssr/csr/spa aliases.
// Empty input yields RenderModeClientOnly.
func ParseRenderMode(raw string) (RenderMode, error) {
	return renderModeNormalizer.Parse(raw)
}

// Valid reports whether m is a known render mode.
func (m RenderMode) Valid() bool { return renderModeNormalizer.Valid(m) }

// PrerenderPolicy controls build-time page generation.
type PrerenderPolicy struct {
	Enabled    bool `yaml:"enabled" json:"enabled"`
	CrawlLinks bool `yaml:"crawl" json:"crawl"`
	// Pages is the explicit route list in insertion order. Duplicates are kept.
	Pages []string `yaml:"pages" json:"pages"`
}

// BuildConfig is the resolved, read-only configuration handed to the build
// orchestrator. Construct it with Resolver.Resolve and do not mutate it;
// use Clone to derive a modified copy.
type BuildConfig struct {
	Preprocessor    capability.PreprocessorOptions `yaml:"preprocess" json:"preprocess"`
	HydrationTarget string                         `yaml:"target" json:"target"`
	RenderMode      RenderMode                     `yaml:"render_mode" json:"render_mode"`
	Prerender       PrerenderPolicy                `yaml:"prerender" json:"prerender"`
	Adapter         capability.AdapterHandle       `yaml:"adapter" json:"adapter"`
}

// SSR reports whether pages are rendered on the server.
func (c *BuildConfig) SSR() bool { return c.RenderMode == RenderModeServerSide }

// ExplicitPagesOnly reports whether the page list is the complete route set
// (prerendering on, link crawling off).
func (c *BuildConfig) ExplicitPagesOnly() bool {
	return c.Prerender.Enabled && !c.Prerender.CrawlLinks
}

// Clone returns a deep copy.
func (c *BuildConfig) Clone() *BuildConfig {
	if c == nil {
		return nil
	}
	out := *c
	out.Preprocessor = c.Preprocessor.Clone()
	out.Prerender.Pages = append(make([]string, 0, len(c.Prerender.Pages)), c.Prerender.Pages...)
	return &out
}

// Fingerprint returns a stable hash of the whole configuration. Structurally
// equal configurations have equal fingerprints and the hash never fails, even
// for settings that have no JSON encoding.
func (c *BuildConfig) Fingerprint() string {
	if c == nil {
		return ""
	}
	h := sha256.New()
	base := *c
	base.Preprocessor.Settings = nil
	if data, err := json.Marshal(base); err == nil {
		_, _ = h.Write(data)
	} else {
		_, _ = fmt.Fprintf(h, "%#v", base)
	}
	writeCanonical(h, c.Preprocessor.Settings)
	return hex.EncodeToString(h.Sum(nil))
}

// writeCanonical writes a type-tagged encoding of a settings value with map
// keys in sorted order.
func writeCanonical(w io.Writer, v any) {
	switch t := v.(type) {
	case nil:
		_, _ = io.WriteString(w, "null")
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		_, _ = io.WriteString(w, "{")
		for _, k := range keys {
			_, _ = io.WriteString(w, strconv.Quote(k)+":")
			writeCanonical(w, t[k])
			_, _ = io.WriteString(w, ",")
		}
		_, _ = io.WriteString(w, "}")
	case map[any]any:
		keys := make([]string, 0, len(t))
		byKey := make(map[string]any, len(t))
		for k, item := range t {
			key := fmt.Sprintf("%T:%v", k, k)
			keys = append(keys, key)
			byKey[key] = item
		}
		sort.Strings(keys)
		_, _ = io.WriteString(w, "{")
		for _, k := range keys {
			_, _ = io.WriteString(w, strconv.Quote(k)+":")
			writeCanonical(w, byKey[k])
			_, _ = io.WriteString(w, ",")
		}
		_, _ = io.WriteString(w, "}")
	case []any:
		_, _ = io.WriteString(w, "[")
		for _, item := range t {
			writeCanonical(w, item)
			_, _ = io.WriteString(w, ",")
		}
		_, _ = io.WriteString(w, "]")
	case string:
		_, _ = io.WriteString(w, strconv.Quote(t))
	case float64:
		_, _ = io.WriteString(w, "f:"+strconv.FormatFloat(t, 'g', -1, 64))
	default:
		_, _ = fmt.Fprintf(w, "%T:%v", t, t)
	}
}
