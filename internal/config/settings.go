package config

import (
	"fmt"
	"math"

	ferrors "git.home.luguber.info/inful/exportcfg/internal/foundation/errors"
)

const settingsField = "preprocess.settings"

// normalizeSettings returns a fresh copy of a preprocessor settings tree in
// which every mapping has string keys. Non-finite numbers are rejected so the
// tree always encodes as JSON.
func normalizeSettings(m map[string]any) (map[string]any, error) {
	if m == nil {
		return nil, nil
	}
	v, err := normalizeSetting(settingsField, m)
	if err != nil {
		return nil, err
	}
	return v.(map[string]any), nil
}

func normalizeSetting(field string, v any) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			n, err := normalizeSetting(field+"."+k, item)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			key := fmt.Sprint(k)
			if _, dup := out[key]; dup {
				return nil, ferrors.InvalidOption(field+"."+key, key).
					WithContext("reason", "duplicate key after conversion to string").
					Build()
			}
			n, err := normalizeSetting(field+"."+key, item)
			if err != nil {
				return nil, err
			}
			out[key] = n
		}
		return out, nil
	case []any:
		if t == nil {
			return t, nil
		}
		out := make([]any, len(t))
		for i, item := range t {
			n, err := normalizeSetting(fmt.Sprintf("%s[%d]", field, i), item)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil, nonFinite(field, t)
		}
		return t, nil
	case float32:
		if math.IsNaN(float64(t)) || math.IsInf(float64(t), 0) {
			return nil, nonFinite(field, t)
		}
		return t, nil
	default:
		return v, nil
	}
}

func nonFinite(field string, v any) error {
	return ferrors.InvalidOption(field, fmt.Sprint(v)).
		WithContext("reason", "must be a finite number").
		Build()
}
