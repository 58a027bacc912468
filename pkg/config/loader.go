package config

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/compozy/jsswitch/pkg/logger"
)

// EnvPrefix selects the environment variables read by the loader.
const EnvPrefix = "JSSWITCH_"

// Loader merges configuration sources. Precedence from lowest to highest:
// defaults, YAML files, environment, CLI flags.
type Loader struct {
	koanf     *koanf.Koanf
	validator *validator.Validate
	sources   map[string]SourceType
	mu        sync.RWMutex
	loadedAt  time.Time
}

func NewLoader() *Loader {
	return &Loader{
		koanf:     koanf.New("."),
		validator: validator.New(validator.WithRequiredStructEnabled()),
		sources:   make(map[string]SourceType),
	}
}

// Load resets the loader and applies every source.
func (l *Loader) Load(ctx context.Context, sources ...Source) (*Config, error) {
	l.reset()
	if err := l.loadDefaults(); err != nil {
		return nil, err
	}
	var late []Source
	for _, source := range sources {
		if source == nil {
			continue
		}
		if source.Type() == SourceCLI {
			late = append(late, source)
			continue
		}
		if err := l.loadSource(source); err != nil {
			return nil, err
		}
	}
	if err := l.loadEnvironment(); err != nil {
		return nil, err
	}
	for _, source := range late {
		if err := l.loadSource(source); err != nil {
			return nil, err
		}
	}
	cfg, err := l.unmarshalAndValidate()
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Debug("Configuration loaded", "engine", cfg.Engine, "keys", len(l.koanf.Keys()))
	return cfg, nil
}

func (l *Loader) reset() {
	l.koanf = koanf.New(".")
	l.mu.Lock()
	l.sources = make(map[string]SourceType)
	l.loadedAt = time.Now()
	l.mu.Unlock()
}

func (l *Loader) loadDefaults() error {
	if err := l.koanf.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return fmt.Errorf("failed to load defaults: %w", err)
	}
	for _, key := range l.koanf.Keys() {
		l.trackSource(key, SourceDefault)
	}
	return nil
}

// transformEnvKey converts SETTINGS_MAX_STACK_USAGE to settings.max_stack_usage.
// The first segment names the section; the rest is the field name.
func transformEnvKey(s string) string {
	parts := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == '_'
	})
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}
	return parts[0] + "." + strings.Join(parts[1:], "_")
}

func (l *Loader) loadEnvironment() error {
	before := l.snapshot()
	if err := l.koanf.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			return transformEnvKey(strings.TrimPrefix(key, EnvPrefix)), value
		},
	}), nil); err != nil {
		return fmt.Errorf("failed to load environment variables: %w", err)
	}
	l.trackChanges(before, SourceEnv)
	return nil
}

func (l *Loader) loadSource(source Source) error {
	data, err := source.Load()
	if err != nil {
		return fmt.Errorf("failed to load from source %s: %w", source.Type(), err)
	}
	if len(data) == 0 {
		return nil
	}
	before := l.snapshot()
	for key, value := range flattenMap("", data) {
		if err := l.koanf.Set(key, value); err != nil {
			return fmt.Errorf("failed to set key %s from source %s: %w", key, source.Type(), err)
		}
	}
	l.trackChanges(before, source.Type())
	return nil
}

func (l *Loader) snapshot() map[string]any {
	values := make(map[string]any)
	for _, key := range l.koanf.Keys() {
		values[key] = l.koanf.Get(key)
	}
	return values
}

func (l *Loader) trackChanges(before map[string]any, source SourceType) {
	for _, key := range l.koanf.Keys() {
		prev, existed := before[key]
		if !existed || fmt.Sprint(prev) != fmt.Sprint(l.koanf.Get(key)) {
			l.trackSource(key, source)
		}
	}
}

func (l *Loader) unmarshalAndValidate() (*Config, error) {
	var cfg Config
	if err := l.koanf.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &cfg,
			TagName:          "koanf",
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := l.Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks struct tags and the engine settings ranges.
func (l *Loader) Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration cannot be nil")
	}
	if err := l.validator.Struct(cfg); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return cfg.Settings.Validate()
}

// GetSource returns the source that last set key.
func (l *Loader) GetSource(key string) SourceType {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if source, ok := l.sources[key]; ok {
		return source
	}
	return SourceDefault
}

// LoadedAt reports when the last Load started.
func (l *Loader) LoadedAt() time.Time {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loadedAt
}

func (l *Loader) trackSource(key string, source SourceType) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sources[key] = source
}
