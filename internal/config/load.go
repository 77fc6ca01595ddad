package config

import (
	"fmt"
	"os"

	ferrors "git.home.luguber.info/inful/exportcfg/internal/foundation/errors"
	"gopkg.in/yaml.v3"
)

// LoadResult is a parsed override file.
type LoadResult struct {
	Overrides Overrides
	// Warnings lists unrecognized and repeated keys; neither is rejected.
	Warnings []string
}

// LoadOverrides reads a YAML override file. ${VAR} references are expanded
// from the process environment before parsing.
func LoadOverrides(path string) (*LoadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ferrors.NewError(ferrors.CategoryNotFound, "configuration file not found").
				Fatal().
				WithContext("path", path).
				Build()
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to read config file").
			Fatal().
			WithRetry(ferrors.RetryBackoff).
			WithContext("path", path).
			Build()
	}
	res, err := ParseOverrides([]byte(os.ExpandEnv(string(data))))
	if err != nil {
		if ce, ok := ferrors.AsClassified(err); ok {
			return nil, ce.WithContext("path", path)
		}
		return nil, err
	}
	return res, nil
}

// ParseOverrides decodes override YAML. A recognized key holding a value of
// the wrong YAML kind is an InvalidOptionError naming the key.
func ParseOverrides(data []byte) (*LoadResult, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to parse config file").
			Fatal().
			WithRetry(ferrors.RetryBackoff).
			Build()
	}
	res := &LoadResult{}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return res, nil
	}
	root := resolveAlias(doc.Content[0])
	if isNull(root) {
		return res, nil
	}
	d := &decoder{res: res}
	if err := d.root(root); err != nil {
		return nil, err
	}
	return res, nil
}

type decoder struct {
	res *LoadResult
}

func (d *decoder) unknown(field string) {
	d.res.Warnings = append(d.res.Warnings, fmt.Sprintf("unknown option %s ignored", field))
}

func (d *decoder) root(n *yaml.Node) error {
	return d.eachPair("", n, func(key string, v *yaml.Node) error {
		switch key {
		case "preprocess":
			return d.preprocess(v)
		case "kit":
			return d.kit(v)
		default:
			d.unknown(key)
			return nil
		}
	})
}

func (d *decoder) preprocess(n *yaml.Node) error {
	o := &d.res.Overrides
	return d.eachPair("preprocess", n, func(key string, v *yaml.Node) error {
		field := "preprocess." + key
		switch key {
		case "name":
			s, err := scalarString(field, v)
			o.Preprocessor = s
			return err
		case "settings":
			if isNull(v) {
				return nil
			}
			if v.Kind != yaml.MappingNode {
				return invalidKind(field, v, "mapping")
			}
			settings := map[string]any{}
			if err := v.Decode(&settings); err != nil {
				return ferrors.InvalidOption(field, v.Value).WithCause(err).Build()
			}
			settings, err := normalizeSettings(settings)
			if err != nil {
				return err
			}
			o.PreprocessorSettings = settings
			return nil
		default:
			d.unknown(field)
			return nil
		}
	})
}

func (d *decoder) kit(n *yaml.Node) error {
	o := &d.res.Overrides
	var ssr *bool
	err := d.eachPair("kit", n, func(key string, v *yaml.Node) error {
		field := "kit." + key
		var err error
		switch key {
		case "target":
			o.HydrationTarget, err = scalarString(field, v)
		case "render_mode":
			o.RenderMode, err = scalarString(field, v)
		case "ssr":
			ssr, err = scalarBool(field, v)
		case "prerender":
			err = d.prerender(v)
		case "adapter":
			err = d.adapter(v)
		default:
			d.unknown(field)
		}
		return err
	})
	if err != nil {
		return err
	}
	if ssr != nil {
		mode := string(RenderModeClientOnly)
		if *ssr {
			mode = string(RenderModeServerSide)
		}
		if o.RenderMode != nil {
			if m, perr := ParseRenderMode(*o.RenderMode); perr == nil && string(m) != mode {
				return ferrors.InvalidOption("kit.ssr", *ssr).
					WithContext("reason", "conflicts with kit.render_mode").
					Build()
			}
			return nil
		}
		o.RenderMode = &mode
	}
	return nil
}

func (d *decoder) prerender(n *yaml.Node) error {
	p := &d.res.Overrides.Prerender
	return d.eachPair("kit.prerender", n, func(key string, v *yaml.Node) error {
		field := "kit.prerender." + key
		var err error
		switch key {
		case "enabled":
			p.Enabled, err = scalarBool(field, v)
		case "crawl":
			p.Crawl, err = scalarBool(field, v)
		case "pages", "entries":
			p.Pages, err = stringSeq(field, v)
		default:
			d.unknown(field)
		}
		return err
	})
}

func (d *decoder) adapter(n *yaml.Node) error {
	a := &d.res.Overrides.Adapter
	return d.eachPair("kit.adapter", n, func(key string, v *yaml.Node) error {
		field := "kit.adapter." + key
		var err error
		switch key {
		case "name":
			a.Name, err = scalarString(field, v)
		case "fallback":
			a.Fallback, err = scalarString(field, v)
		case "pages":
			a.PagesDir, err = scalarString(field, v)
		case "assets":
			a.AssetsDir, err = scalarString(field, v)
		case "precompress":
			a.Precompress, err = scalarBool(field, v)
		default:
			d.unknown(field)
		}
		return err
	})
}

// eachPair walks a mapping node. A null node is treated as an empty mapping.
// Aliases are followed. A repeated key is reported and its last value wins.
func (d *decoder) eachPair(field string, n *yaml.Node, fn func(key string, v *yaml.Node) error) error {
	n = resolveAlias(n)
	if isNull(n) {
		return nil
	}
	if n.Kind != yaml.MappingNode {
		if field == "" {
			field = "(root)"
		}
		return invalidKind(field, n, "mapping")
	}
	seen := make(map[string]bool, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := resolveAlias(n.Content[i]).Value
		if seen[key] {
			full := key
			if field != "" {
				full = field + "." + key
			}
			d.res.Warnings = append(d.res.Warnings, fmt.Sprintf("duplicate option %s; last value wins", full))
		}
		seen[key] = true
		if err := fn(key, resolveAlias(n.Content[i+1])); err != nil {
			return err
		}
	}
	return nil
}

// resolveAlias follows alias nodes to the anchored node.
func resolveAlias(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func scalarString(field string, n *yaml.Node) (*string, error) {
	n = resolveAlias(n)
	if n.Kind != yaml.ScalarNode || n.ShortTag() != "!!str" {
		return nil, invalidKind(field, n, "string")
	}
	return ptr(n.Value), nil
}

func scalarBool(field string, n *yaml.Node) (*bool, error) {
	n = resolveAlias(n)
	if n.Kind != yaml.ScalarNode || n.ShortTag() != "!!bool" {
		return nil, invalidKind(field, n, "boolean")
	}
	var b bool
	if err := n.Decode(&b); err != nil {
		return nil, ferrors.InvalidOption(field, n.Value).WithCause(err).Build()
	}
	return &b, nil
}

// stringSeq decodes a sequence of strings. Null decodes as an empty list.
func stringSeq(field string, n *yaml.Node) (*[]string, error) {
	out := []string{}
	n = resolveAlias(n)
	if isNull(n) {
		return &out, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, invalidKind(field, n, "list of strings")
	}
	for i, item := range n.Content {
		s, err := scalarString(fmt.Sprintf("%s[%d]", field, i), item)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return &out, nil
}

func isNull(n *yaml.Node) bool {
	return n == nil || (n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null")
}

func invalidKind(field string, n *yaml.Node, want string) error {
	return ferrors.InvalidOption(field, n.Value).
		WithContext("reason", fmt.Sprintf("expected %s, got %s", want, describe(n))).
		WithContext("line", n.Line).
		Build()
}

func describe(n *yaml.Node) string {
	switch n.Kind {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "list"
	case yaml.AliasNode:
		return "alias"
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!str":
			return "string"
		case "!!bool":
			return "boolean"
		case "!!int":
			return "integer"
		case "!!float":
			return "number"
		case "!!null":
			return "null"
		}
		return n.ShortTag()
	default:
		return "unknown"
	}
}
