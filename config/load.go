package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level, discriminated shape read from the config file:
// exactly one of Trees or Provider is set.
type Config struct {
	Trees    *TreeListConfig
	Provider *ProviderSpecConfig
}

// Load reads and parses the config file at path, trying YAML then TOML,
// and discriminates its shape structurally: a document with a "trees"
// key is a tree list, one with a "provider" key is a provider spec.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrReadFailure, path, err)
	}

	raw, err := decodeRaw(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParseFailure, path, err)
	}

	switch {
	case IsTreeList(raw):
		var tc TreeListConfig
		if err := decodeStrict(data, &tc); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrParseFailure, path, err)
		}
		return &Config{Trees: &tc}, nil
	case IsProviderSpec(raw):
		var pc ProviderSpecConfig
		if err := decodeStrict(data, &pc); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrParseFailure, path, err)
		}
		return &Config{Provider: &pc}, nil
	default:
		return nil, fmt.Errorf("%w: %s: neither a tree list (\"trees\") nor a provider spec (\"provider\")", ErrParseFailure, path)
	}
}

// decodeRaw decodes data into a generic map trying YAML then TOML, purely
// to inspect which top-level keys are present for structural
// discrimination.
func decodeRaw(data []byte) (map[string]any, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err == nil && raw != nil {
		return raw, nil
	}
	raw = map[string]any{}
	if err := decodeTOMLRaw(data, &raw); err == nil {
		return raw, nil
	}
	return nil, fmt.Errorf("document is neither valid yaml nor valid toml")
}

// Save writes cfg to path as YAML, the format new configs are written in.
func Save(path string, cfg *Config) error {
	var v any
	switch {
	case cfg.Trees != nil:
		v = cfg.Trees
	case cfg.Provider != nil:
		v = cfg.Provider
	default:
		return fmt.Errorf("config has neither a tree list nor a provider spec set")
	}

	data, err := encodeYAML(v)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrParseFailure, err)
	}

	return os.WriteFile(path, data, 0o644)
}

// LoadWorktreeRoot reads the optional worktree-root config file at
// dirPath/WorktreeRootFileName. A missing file is not an error: it
// returns (nil, nil), since the config is optional.
func LoadWorktreeRoot(dirPath string) (*WorktreeRootConfig, error) {
	path := dirPath + string(os.PathSeparator) + WorktreeRootFileName
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrReadFailure, path, err)
	}

	var wc WorktreeRootConfig
	if err := decodeStrict(data, &wc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParseFailure, path, err)
	}
	return &wc, nil
}

// SaveWorktreeRoot writes cfg to dirPath/WorktreeRootFileName as YAML.
func SaveWorktreeRoot(dirPath string, cfg *WorktreeRootConfig) error {
	data, err := encodeYAML(cfg)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrParseFailure, err)
	}
	path := dirPath + string(os.PathSeparator) + WorktreeRootFileName
	return os.WriteFile(path, data, 0o644)
}
