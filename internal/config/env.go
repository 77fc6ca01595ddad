package config

import (
	"os"
	"strconv"
	"strings"

	ferrors "git.home.luguber.info/inful/exportcfg/internal/foundation/errors"
	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "EXPORTCFG_"

// DefaultEnvFiles are read when no --env-file is given.
var DefaultEnvFiles = []string{".env", ".env.local"}

// LookupFunc resolves an environment variable.
type LookupFunc func(key string) (string, bool)

// EnvLookup returns a lookup that consults the process environment first and
// then the given dotenv files (later files win over earlier ones). Missing
// files are skipped; the names of files actually read are returned. The
// process environment is never modified.
func EnvLookup(files ...string) (LookupFunc, []string, error) {
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	fileEnv := map[string]string{}
	if len(existing) > 0 {
		m, err := godotenv.Read(existing...)
		if err != nil {
			return nil, nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to read env file").
				Fatal().
				WithContext("path", strings.Join(existing, ",")).
				Build()
		}
		fileEnv = m
	}
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileEnv[key]
		return v, ok
	}
	return lookup, existing, nil
}

// OverridesFromEnv maps EXPORTCFG_* variables onto Overrides. A variable
// that is set but empty is an override to the empty value.
func OverridesFromEnv(lookup LookupFunc) (Overrides, error) {
	var o Overrides
	str := func(name string) *string {
		if v, ok := lookup(EnvPrefix + name); ok {
			return &v
		}
		return nil
	}
	boolean := func(name string) (*bool, error) {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			return nil, nil
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return nil, ferrors.InvalidOption(EnvPrefix+name, v).
				WithContext("reason", "expected boolean").
				Build()
		}
		return &b, nil
	}

	o.Preprocessor = str("PREPROCESSOR")
	o.HydrationTarget = str("TARGET")
	o.RenderMode = str("RENDER_MODE")
	o.Adapter.Name = str("ADAPTER")
	o.Adapter.Fallback = str("FALLBACK")
	o.Adapter.PagesDir = str("PAGES_DIR")
	o.Adapter.AssetsDir = str("ASSETS_DIR")
	if v := str("PRERENDER_PAGES"); v != nil {
		pages := splitList(*v)
		o.Prerender.Pages = &pages
	}

	var err error
	if o.Prerender.Enabled, err = boolean("PRERENDER_ENABLED"); err != nil {
		return Overrides{}, err
	}
	if o.Prerender.Crawl, err = boolean("PRERENDER_CRAWL"); err != nil {
		return Overrides{}, err
	}
	if o.Adapter.Precompress, err = boolean("PRECOMPRESS"); err != nil {
		return Overrides{}, err
	}
	return o, nil
}

// splitList splits a comma-separated list, keeping order and dropping blanks.
func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
