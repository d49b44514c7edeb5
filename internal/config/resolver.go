package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"
)

// YAML is a kong.ConfigurationLoader. Nested mappings are flattened with
// "-" so they line up with prefixed flag names.
func YAML(r io.Reader) (kong.Resolver, error) {
	raw := map[string]any{}

	if err := yaml.NewDecoder(r).Decode(&raw); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode yaml config: %w", err)
	}

	values := map[string]any{}
	flatten("", raw, values)

	var f kong.ResolverFunc = func(context *kong.Context, parent *kong.Path, flag *kong.Flag) (any, error) {
		name := strings.ReplaceAll(flag.Name, "_", "-")
		if v, ok := values[name]; ok {
			return v, nil
		}
		return nil, nil
	}

	return f, nil
}

func flatten(prefix string, in map[string]any, out map[string]any) {
	for k, v := range in {
		key := strings.ReplaceAll(k, "_", "-")
		if len(prefix) > 0 {
			key = prefix + "-" + key
		}

		// pipeline settings are unprefixed flags
		if prefix == "" && k == "pipeline" {
			key = ""
		}

		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out)
		case nil:
		case []any:
			out[key] = val
		default:
			// kong decoders all accept the string form
			out[key] = fmt.Sprint(val)
		}
	}
}
