package config

import (
	"encoding/json"

	ferrors "git.home.luguber.info/inful/exportcfg/internal/foundation/errors"
	"git.home.luguber.info/inful/exportcfg/internal/foundation/normalization"
	"gopkg.in/yaml.v3"
)

// OutputFormat is the serialization used to hand a BuildConfig to an orchestrator.
type OutputFormat string

const (
	OutputYAML OutputFormat = "yaml"
	OutputJSON OutputFormat = "json"
)

var outputFormatNormalizer = normalization.NewNormalizer("format", map[string]OutputFormat{
	"yaml": OutputYAML,
	"yml":  OutputYAML,
	"json": OutputJSON,
}, OutputYAML)

// Encode serializes cfg in the requested format.
func Encode(cfg *BuildConfig, format string) ([]byte, error) {
	f, err := outputFormatNormalizer.Parse(format)
	if err != nil {
		return nil, ferrors.InvalidOption("format", format).WithCause(err).Build()
	}
	if f == OutputJSON {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryInternal, "encode json").Fatal().Build()
		}
		return append(data, '\n'), nil
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryInternal, "encode yaml").Fatal().Build()
	}
	return data, nil
}
