package capability

import (
	"testing"

	ferrors "git.home.luguber.info/inful/exportcfg/internal/foundation/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticAdapter_CreateDefaults(t *testing.T) {
	h, err := StaticAdapter{}.Create(AdapterOptions{FallbackDocument: "index.html"})
	require.NoError(t, err)
	assert.Equal(t, AdapterHandle{
		Name:             "static",
		FallbackDocument: "index.html",
		PagesDir:         "build",
		AssetsDir:        "build",
	}, h)
}

func TestStaticAdapter_CreateExplicitDirs(t *testing.T) {
	h, err := StaticAdapter{}.Create(AdapterOptions{
		FallbackDocument: "200.html",
		PagesDir:         "dist",
		AssetsDir:        "dist/assets",
		Precompress:      true,
	})
	require.NoError(t, err)
	assert.Equal(t, "dist", h.PagesDir)
	assert.Equal(t, "dist/assets", h.AssetsDir)
	assert.True(t, h.Precompress)
}

func TestStaticAdapter_RejectsBadFallback(t *testing.T) {
	tests := []struct {
		name     string
		fallback string
		reason   string
	}{
		{"empty", "", "must not be empty"},
		{"blank", "   ", "must not be empty"},
		{"absolute", "/index.html", "must be relative to the output directory"},
		{"directory", "spa/", "must name a file, not a directory"},
		{"traversal", "../index.html", "must not escape the output directory"},
		{"nested traversal", "a/../../index.html", "must not escape the output directory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := StaticAdapter{}.Create(AdapterOptions{FallbackDocument: tt.fallback})
			require.Error(t, err)
			assert.True(t, ferrors.IsInvalidOption(err))
			ce, _ := ferrors.AsClassified(err)
			reason, _ := ce.Context().GetString("reason")
			assert.Equal(t, tt.reason, reason)
			field, _ := ce.Context().GetString("field")
			assert.Equal(t, "adapter.fallback", field)
		})
	}
}

func TestStaticAdapter_RejectsEscapingPagesDir(t *testing.T) {
	_, err := StaticAdapter{}.Create(AdapterOptions{FallbackDocument: "index.html", PagesDir: "../out"})
	require.Error(t, err)
	assert.True(t, ferrors.IsInvalidOption(err))

	h, err := StaticAdapter{}.Create(AdapterOptions{FallbackDocument: "spa/index.html", PagesDir: "/srv/www"})
	require.NoError(t, err)
	assert.Equal(t, "/srv/www", h.AssetsDir)
}
