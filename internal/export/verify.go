// Package export checks an emitted static bundle against the configuration
// that produced it.
package export

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/exportcfg/internal/config"
	ferrors "git.home.luguber.info/inful/exportcfg/internal/foundation/errors"
)

// Report describes a verified bundle.
type Report struct {
	PagesDir     string
	FallbackPath string
	// Prerendered maps each explicit route to the file serving it.
	Prerendered map[string]string
	// Missing lists explicit routes with no generated page. The fallback
	// document serves them instead.
	Missing []string
	// AllRoutes is set when the page list contains "*". Which routes that
	// expands to is only known to the build, so it is not checked.
	AllRoutes bool
}

// Verify checks that the pages directory under root contains the fallback
// document and reports which explicit routes were prerendered. A missing
// fallback document is fatal: client-only routes would be unreachable. An
// empty page list is never an error.
func Verify(cfg *config.BuildConfig, root string) (*Report, error) {
	if cfg == nil {
		return nil, ferrors.InternalError("nil build configuration").Build()
	}
	pagesDir := cfg.Adapter.PagesDir
	if !filepath.IsAbs(pagesDir) {
		pagesDir = filepath.Join(root, pagesDir)
	}
	info, err := os.Stat(pagesDir)
	if err != nil || !info.IsDir() {
		return nil, ferrors.FileSystemError("pages directory not found").
			WithCause(err).
			WithContext("path", pagesDir).
			Build()
	}

	fsys := os.DirFS(pagesDir)
	fallback := filepath.ToSlash(filepath.Clean(cfg.Adapter.FallbackDocument))
	if !isFile(fsys, fallback) {
		return nil, ferrors.BuildError("fallback document missing from bundle").
			WithContext("path", filepath.Join(pagesDir, filepath.FromSlash(fallback))).
			WithContext("field", "adapter.fallback").
			Build()
	}

	report := &Report{
		PagesDir:     pagesDir,
		FallbackPath: filepath.Join(pagesDir, filepath.FromSlash(fallback)),
		Prerendered:  map[string]string{},
	}
	if !cfg.Prerender.Enabled {
		return report, nil
	}
	for _, route := range cfg.Prerender.Pages {
		if route == config.PrerenderAllRoutes {
			report.AllRoutes = true
			continue
		}
		if _, seen := report.Prerendered[route]; seen {
			continue
		}
		if file, ok := pageFile(fsys, route); ok {
			report.Prerendered[route] = filepath.Join(pagesDir, filepath.FromSlash(file))
			continue
		}
		if !contains(report.Missing, route) {
			report.Missing = append(report.Missing, route)
		}
	}
	return report, nil
}

// pageFile finds the file a static server would answer route with.
func pageFile(fsys fs.FS, route string) (string, bool) {
	name := strings.Trim(route, "/")
	if name == "" {
		return "index.html", isFile(fsys, "index.html")
	}
	for _, candidate := range []string{name + ".html", name + "/index.html", name} {
		if isFile(fsys, candidate) {
			return candidate, true
		}
	}
	return "", false
}

func isFile(fsys fs.FS, name string) bool {
	if !fs.ValidPath(name) {
		return false
	}
	info, err := fs.Stat(fsys, name)
	return err == nil && info.Mode().IsRegular()
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
