package capability

import (
	"path"
	"strings"

	ferrors "git.home.luguber.info/inful/exportcfg/internal/foundation/errors"
)

// DefaultPagesDir is where the static adapter writes pages when unset.
const DefaultPagesDir = "build"

// StaticAdapter emits a plain static file tree. Routes without a prerendered
// page are served FallbackDocument so the client-side router can take over.
type StaticAdapter struct{}

func (StaticAdapter) Name() string { return AdapterStatic }

// Create validates opts and returns the configured handle. AssetsDir defaults
// to PagesDir.
func (StaticAdapter) Create(opts AdapterOptions) (AdapterHandle, error) {
	if err := ValidateDocumentPath("adapter.fallback", opts.FallbackDocument); err != nil {
		return AdapterHandle{}, err
	}

	pages := opts.PagesDir
	if pages == "" {
		pages = DefaultPagesDir
	}
	assets := opts.AssetsDir
	if assets == "" {
		assets = pages
	}
	if err := validateDir("adapter.pages", pages); err != nil {
		return AdapterHandle{}, err
	}
	if err := validateDir("adapter.assets", assets); err != nil {
		return AdapterHandle{}, err
	}

	return AdapterHandle{
		Name:             AdapterStatic,
		FallbackDocument: opts.FallbackDocument,
		PagesDir:         pages,
		AssetsDir:        assets,
		Precompress:      opts.Precompress,
	}, nil
}

// ValidateDocumentPath checks that doc names a file inside the output tree:
// non-empty, relative, without parent traversal or a trailing slash.
func ValidateDocumentPath(field, doc string) error {
	invalid := func(reason string) error {
		return ferrors.InvalidOption(field, doc).WithContext("reason", reason).Build()
	}
	switch {
	case strings.TrimSpace(doc) == "":
		return invalid("must not be empty")
	case strings.HasPrefix(doc, "/") || strings.HasPrefix(doc, `\`):
		return invalid("must be relative to the output directory")
	case strings.HasSuffix(doc, "/"):
		return invalid("must name a file, not a directory")
	}
	for _, seg := range strings.Split(path.Clean(doc), "/") {
		if seg == ".." {
			return invalid("must not escape the output directory")
		}
	}
	return nil
}

func validateDir(field, dir string) error {
	if path.IsAbs(dir) {
		return nil
	}
	for _, seg := range strings.Split(path.Clean(dir), "/") {
		if seg == ".." {
			return ferrors.InvalidOption(field, dir).
				WithContext("reason", "must not escape the project directory").
				Build()
		}
	}
	return nil
}
