package config

import (
	"os"
	"path/filepath"
	"testing"

	ferrors "git.home.luguber.info/inful/exportcfg/internal/foundation/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapLookup(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestOverridesFromEnv(t *testing.T) {
	o, err := OverridesFromEnv(mapLookup(map[string]string{
		"EXPORTCFG_ADAPTER":           "static",
		"EXPORTCFG_FALLBACK":          "200.html",
		"EXPORTCFG_RENDER_MODE":       "client_only",
		"EXPORTCFG_PRERENDER_ENABLED": "false",
		"EXPORTCFG_PRERENDER_PAGES":   " /, /about ,,/",
		"EXPORTCFG_PRECOMPRESS":       "1",
	}))
	require.NoError(t, err)

	assert.Equal(t, "static", *o.Adapter.Name)
	assert.Equal(t, "200.html", *o.Adapter.Fallback)
	assert.Equal(t, "client_only", *o.RenderMode)
	assert.False(t, *o.Prerender.Enabled)
	assert.Nil(t, o.Prerender.Crawl)
	assert.Equal(t, []string{"/", "/about", "/"}, *o.Prerender.Pages)
	assert.True(t, *o.Adapter.Precompress)
	assert.Nil(t, o.Preprocessor)
}

func TestOverridesFromEnv_Empty(t *testing.T) {
	o, err := OverridesFromEnv(mapLookup(nil))
	require.NoError(t, err)
	assert.True(t, o.IsZero())
}

func TestOverridesFromEnv_InvalidBool(t *testing.T) {
	_, err := OverridesFromEnv(mapLookup(map[string]string{"EXPORTCFG_PRERENDER_CRAWL": "sometimes"}))
	require.Error(t, err)
	assert.True(t, ferrors.IsInvalidOption(err))
	ce, _ := ferrors.AsClassified(err)
	field, _ := ce.Context().GetString("field")
	assert.Equal(t, "EXPORTCFG_PRERENDER_CRAWL", field)
}

func TestOverridesFromEnv_EmptyFallbackIsInvalidOption(t *testing.T) {
	o, err := OverridesFromEnv(mapLookup(map[string]string{"EXPORTCFG_FALLBACK": ""}))
	require.NoError(t, err)
	require.NotNil(t, o.Adapter.Fallback)

	_, err = NewResolver(nil, WithOverrides(o)).Resolve()
	require.Error(t, err)
	assert.True(t, ferrors.IsInvalidOption(err))
}

func TestEnvLookup(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, ".env")
	local := filepath.Join(dir, ".env.local")
	require.NoError(t, os.WriteFile(base, []byte("EXPORTCFG_T_A=from-env\nEXPORTCFG_T_B=\"quoted value\"\n"), 0o600))
	require.NoError(t, os.WriteFile(local, []byte("EXPORTCFG_T_A=from-local\n"), 0o600))
	t.Setenv("EXPORTCFG_T_B", "from-process")

	lookup, used, err := EnvLookup(base, local, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, []string{base, local}, used)

	v, ok := lookup("EXPORTCFG_T_A")
	assert.True(t, ok)
	assert.Equal(t, "from-local", v)

	v, ok = lookup("EXPORTCFG_T_B")
	assert.True(t, ok)
	assert.Equal(t, "from-process", v)

	_, ok = lookup("EXPORTCFG_T_MISSING")
	assert.False(t, ok)

	_, set := os.LookupEnv("EXPORTCFG_T_A")
	assert.False(t, set, "dotenv values must not leak into the process environment")
}

func TestLoadSources(t *testing.T) {
	path := writeFile(t, "exportcfg.yaml", "kit:\n  adapter:\n    fallback: file.html\n    pages: dist\n")

	loaded, err := LoadSources(Sources{
		File:   path,
		Lookup: mapLookup(map[string]string{"EXPORTCFG_FALLBACK": "env.html"}),
	})
	require.NoError(t, err)
	assert.True(t, loaded.FileUsed)
	assert.Equal(t, "env.html", *loaded.Overrides.Adapter.Fallback)
	assert.Equal(t, "dist", *loaded.Overrides.Adapter.PagesDir)
}

func TestLoadSources_MissingOptionalFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "exportcfg.yaml")

	loaded, err := LoadSources(Sources{File: missing, Lookup: mapLookup(nil)})
	require.NoError(t, err)
	assert.False(t, loaded.FileUsed)
	assert.True(t, loaded.Overrides.IsZero())

	_, err = LoadSources(Sources{File: missing, FileRequired: true, Lookup: mapLookup(nil)})
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryNotFound))
}
