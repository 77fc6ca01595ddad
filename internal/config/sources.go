package config

import (
	ferrors "git.home.luguber.info/inful/exportcfg/internal/foundation/errors"
)

// Sources names where overrides come from.
type Sources struct {
	// File is an optional YAML override file.
	File string
	// FileRequired makes a missing File an error instead of "no overrides".
	FileRequired bool
	// EnvFiles are dotenv files consulted after the process environment.
	EnvFiles []string
	// Lookup replaces the environment lookup entirely when set (tests).
	Lookup LookupFunc
}

// Loaded is the merged result of all override sources.
type Loaded struct {
	Overrides Overrides
	Warnings  []string
	// FileUsed is false when the optional override file was absent.
	FileUsed bool
	EnvFiles []string
}

// LoadSources reads the override file and environment and merges them;
// environment values win over the file.
func LoadSources(src Sources) (*Loaded, error) {
	out := &Loaded{}
	var fileLayer Overrides
	if src.File != "" {
		res, err := LoadOverrides(src.File)
		switch {
		case err == nil:
			fileLayer = res.Overrides
			out.Warnings = res.Warnings
			out.FileUsed = true
		case !src.FileRequired && ferrors.HasCategory(err, ferrors.CategoryNotFound):
		default:
			return nil, err
		}
	}

	lookup := src.Lookup
	if lookup == nil {
		l, files, err := EnvLookup(src.EnvFiles...)
		if err != nil {
			return nil, err
		}
		lookup = l
		out.EnvFiles = files
	}
	envLayer, err := OverridesFromEnv(lookup)
	if err != nil {
		return nil, err
	}

	out.Overrides = Merge(fileLayer, envLayer)
	return out, nil
}
