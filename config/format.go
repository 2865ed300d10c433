// Package config loads and saves the fleet's declarative configuration:
// the tree-list/provider-spec config and the per-worktree-repository root
// config. Both are stored in either of two interchangeable textual
// formats (YAML and TOML); one is tried, then the other on parse failure.
package config

import (
	"bytes"
	"fmt"
	"reflect"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ErrUnexpectedKey is returned when a config document contains a key that
// does not correspond to a tagged field of the target struct.
type ErrUnexpectedKey struct {
	Key string
}

func (e *ErrUnexpectedKey) Error() string {
	return fmt.Sprintf("unexpected key: %s", e.Key)
}

// decodeStrict tries to unmarshal data into v as YAML first, then as TOML
// on failure, rejecting any key not present in v's "yaml"/"toml" struct
// tags at every nesting level.
func decodeStrict(data []byte, v any) error {
	var raw map[string]any

	yamlErr := yaml.Unmarshal(data, &raw)
	if yamlErr == nil {
		if err := checkUnexpectedKeys(raw, reflect.TypeOf(v).Elem(), ""); err != nil {
			return err
		}
		return yaml.Unmarshal(data, v)
	}

	raw = nil
	tomlErr := toml.Unmarshal(data, &raw)
	if tomlErr == nil {
		if err := checkUnexpectedKeys(raw, reflect.TypeOf(v).Elem(), ""); err != nil {
			return err
		}
		_, err := toml.Decode(string(data), v)
		return err
	}

	return fmt.Errorf("unable to parse config as yaml (%v) or toml (%v)", yamlErr, tomlErr)
}

// checkUnexpectedKeys walks raw recursively against the struct fields of t,
// following "yaml"/"toml" tags, and returns *ErrUnexpectedKey for the first
// key it cannot account for.
func checkUnexpectedKeys(raw map[string]any, t reflect.Type, path string) error {
	allowed := map[string]reflect.StructField{}

	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("yaml")
		if tag == "" {
			tag = f.Tag.Get("toml")
		}
		if tag == "" || tag == "-" {
			continue
		}
		// strip ",omitempty" and similar modifiers
		for i, c := range tag {
			if c == ',' {
				tag = tag[:i]
				break
			}
		}
		allowed[tag] = f
	}

	for key, val := range raw {
		field, ok := allowed[key]
		if !ok {
			full := key
			if path != "" {
				full = path + "." + key
			}
			return &ErrUnexpectedKey{Key: full}
		}

		childPath := key
		if path != "" {
			childPath = path + "." + key
		}

		ft := field.Type
		for ft.Kind() == reflect.Ptr {
			ft = ft.Elem()
		}

		switch ft.Kind() {
		case reflect.Struct:
			if m, ok := val.(map[string]any); ok {
				if err := checkUnexpectedKeys(m, ft, childPath); err != nil {
					return err
				}
			}
		case reflect.Slice:
			elem := ft.Elem()
			for elem.Kind() == reflect.Ptr {
				elem = elem.Elem()
			}
			if elem.Kind() != reflect.Struct {
				continue
			}
			items, ok := val.([]any)
			if !ok {
				continue
			}
			for i, item := range items {
				if m, ok := item.(map[string]any); ok {
					if err := checkUnexpectedKeys(m, elem, fmt.Sprintf("%s[%d]", childPath, i)); err != nil {
						return err
					}
				}
			}
		}
	}

	return nil
}

// decodeTOMLRaw decodes data as TOML into raw, for structural inspection.
func decodeTOMLRaw(data []byte, raw *map[string]any) error {
	return toml.Unmarshal(data, raw)
}

// encodeYAML renders v as YAML, the preferred format for newly written
// files.
func encodeYAML(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
