package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
)

// SourceType identifies where a configuration value came from.
type SourceType string

const (
	SourceDefault SourceType = "default"
	SourceYAML    SourceType = "yaml"
	SourceEnv     SourceType = "env"
	SourceCLI     SourceType = "cli"
)

// Source supplies a nested configuration map.
type Source interface {
	Load() (map[string]any, error)
	Type() SourceType
}

// FlagPaths maps CLI flag names to configuration paths.
var FlagPaths = map[string]string{
	"engine":          "engine",
	"log-level":       "log.level",
	"log-json":        "log.json",
	"max-heap-size":   "settings.max_heap_size",
	"memory-limit":    "settings.memory_limit",
	"max-stack-usage": "settings.max_stack_usage",
	"disable-eval":    "settings.disable_eval",
}

type cliProvider struct {
	flags map[string]any
}

// NewCLIProvider creates a source from flag values keyed by flag name.
// Flags without an entry in FlagPaths are ignored.
func NewCLIProvider(flags map[string]any) Source {
	return &cliProvider{flags: flags}
}

func (c *cliProvider) Load() (map[string]any, error) {
	config := make(map[string]any)
	for key, value := range c.flags {
		path, ok := FlagPaths[key]
		if !ok {
			continue
		}
		if err := setNested(config, path, value); err != nil {
			return nil, fmt.Errorf("failed to set CLI flag %s: %w", key, err)
		}
	}
	return config, nil
}

func (c *cliProvider) Type() SourceType {
	return SourceCLI
}

// setNested sets a value in a nested map using dot notation.
func setNested(m map[string]any, path string, value any) error {
	if path == "" {
		return nil
	}
	parts := strings.Split(path, ".")
	current := m
	for i := 0; i < len(parts)-1; i++ {
		part := parts[i]
		if _, exists := current[part]; !exists {
			current[part] = make(map[string]any)
		}
		next, ok := current[part].(map[string]any)
		if !ok {
			return fmt.Errorf("configuration conflict: key %q is not a map", strings.Join(parts[:i+1], "."))
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
	return nil
}

type yamlProvider struct {
	path string
}

// NewYAMLProvider creates a source reading path. A missing file yields no
// values.
func NewYAMLProvider(path string) Source {
	return &yamlProvider{path: path}
}

func (y *yamlProvider) Load() (map[string]any, error) {
	data, err := os.ReadFile(y.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]any), nil
		}
		return nil, fmt.Errorf("failed to read YAML file: %w", err)
	}
	var config map[string]any
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML file: %w", err)
	}
	return filterNilValues(config), nil
}

func (y *yamlProvider) Type() SourceType {
	return SourceYAML
}

// filterNilValues drops nil leaves so they do not override earlier sources.
func filterNilValues(m map[string]any) map[string]any {
	result := make(map[string]any)
	for k, v := range m {
		if v == nil {
			continue
		}
		if nested, ok := v.(map[string]any); ok {
			if filtered := filterNilValues(nested); len(filtered) > 0 {
				result[k] = filtered
			}
			continue
		}
		result[k] = v
	}
	return result
}

// flattenMap flattens a nested map into dot-notation keys.
func flattenMap(prefix string, m map[string]any) map[string]any {
	result := make(map[string]any)
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok {
			for fk, fv := range flattenMap(key, nested) {
				result[fk] = fv
			}
			continue
		}
		result[key] = v
	}
	return result
}
