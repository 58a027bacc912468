package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/compozy/jsswitch/engine/settings"
	"github.com/compozy/jsswitch/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSource struct {
	data       map[string]any
	sourceType SourceType
}

func (m *mockSource) Load() (map[string]any, error) { return m.data, nil }
func (m *mockSource) Type() SourceType              { return m.sourceType }

func TestLoader_Load(t *testing.T) {
	t.Run("Should load defaults when no sources are provided", func(t *testing.T) {
		cfg, err := NewLoader().Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, DefaultEngine, cfg.Engine)
		assert.Equal(t, settings.Default(), cfg.Settings)
		assert.Equal(t, logger.InfoLevel, cfg.Log.Level)
	})
	t.Run("Should read engine settings from the environment", func(t *testing.T) {
		t.Setenv("JSSWITCH_ENGINE", "otto")
		t.Setenv("JSSWITCH_SETTINGS_MAX_STACK_USAGE", "512")
		t.Setenv("JSSWITCH_SETTINGS_DISABLE_EVAL", "true")
		t.Setenv("JSSWITCH_SETTINGS_HEAP_SIZE_SAMPLE_INTERVAL", "2s")
		loader := NewLoader()
		cfg, err := loader.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "otto", cfg.Engine)
		assert.Equal(t, uint64(512), cfg.Settings.MaxStackUsage)
		assert.True(t, cfg.Settings.DisableEval)
		assert.Equal(t, 2*time.Second, cfg.Settings.HeapSizeSampleInterval)
		assert.Equal(t, SourceEnv, loader.GetSource("settings.max_stack_usage"))
		assert.Equal(t, SourceDefault, loader.GetSource("settings.max_heap_size"))
	})
	t.Run("Should let flags override the environment", func(t *testing.T) {
		t.Setenv("JSSWITCH_ENGINE", "otto")
		loader := NewLoader()
		cfg, err := loader.Load(context.Background(), NewCLIProvider(map[string]any{"engine": "quickjs"}))
		require.NoError(t, err)
		assert.Equal(t, "quickjs", cfg.Engine)
		assert.Equal(t, SourceCLI, loader.GetSource("engine"))
	})
	t.Run("Should let the environment override YAML", func(t *testing.T) {
		t.Setenv("JSSWITCH_LOG_LEVEL", "warn")
		source := &mockSource{
			sourceType: SourceYAML,
			data: map[string]any{
				"engine": "otto",
				"log":    map[string]any{"level": "debug", "json": true},
			},
		}
		cfg, err := NewLoader().Load(context.Background(), source)
		require.NoError(t, err)
		assert.Equal(t, "otto", cfg.Engine)
		assert.Equal(t, logger.WarnLevel, cfg.Log.Level)
		assert.True(t, cfg.Log.JSON)
	})
	t.Run("Should read a YAML file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "jsswitch.yaml")
		content := "engine: otto\nsettings:\n  max_stack_usage: 64\n  disable_eval: true\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		cfg, err := NewLoader().Load(context.Background(), NewYAMLProvider(path))
		require.NoError(t, err)
		assert.Equal(t, "otto", cfg.Engine)
		assert.Equal(t, uint64(64), cfg.Settings.MaxStackUsage)
		assert.True(t, cfg.Settings.DisableEval)
	})
	t.Run("Should ignore a missing YAML file", func(t *testing.T) {
		cfg, err := NewLoader().Load(context.Background(), NewYAMLProvider(filepath.Join(t.TempDir(), "none.yaml")))
		require.NoError(t, err)
		assert.Equal(t, DefaultEngine, cfg.Engine)
	})
}

func TestLoader_Validate(t *testing.T) {
	t.Run("Should reject an unknown log level", func(t *testing.T) {
		source := &mockSource{sourceType: SourceYAML, data: map[string]any{"log": map[string]any{"level": "loud"}}}
		_, err := NewLoader().Load(context.Background(), source)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration validation failed")
	})
	t.Run("Should reject an empty engine name", func(t *testing.T) {
		source := &mockSource{sourceType: SourceCLI, data: map[string]any{"engine": ""}}
		_, err := NewLoader().Load(context.Background(), source)
		require.Error(t, err)
	})
	t.Run("Should reject an out of range debug port", func(t *testing.T) {
		cfg := Default()
		cfg.Settings.DebugPort = 70000
		assert.Error(t, NewLoader().Validate(cfg))
	})
	t.Run("Should reject nil configuration", func(t *testing.T) {
		assert.Error(t, NewLoader().Validate(nil))
	})
}

func TestTransformEnvKey(t *testing.T) {
	t.Run("Should map environment names to configuration paths", func(t *testing.T) {
		cases := map[string]string{
			"ENGINE":                   "engine",
			"LOG_LEVEL":                "log.level",
			"SETTINGS_MAX_STACK_USAGE": "settings.max_stack_usage",
			"SETTINGS__DISABLE_EVAL_":  "settings.disable_eval",
			"":                         "",
		}
		for in, want := range cases {
			assert.Equal(t, want, transformEnvKey(in), in)
		}
	})
}

func TestFromContext(t *testing.T) {
	t.Run("Should return the stored configuration", func(t *testing.T) {
		cfg := Default()
		cfg.Engine = "otto"
		ctx := ContextWithConfig(context.Background(), cfg)
		assert.Same(t, cfg, FromContext(ctx))
	})
	t.Run("Should fall back to defaults", func(t *testing.T) {
		assert.Equal(t, Default(), FromContext(context.Background()))
	})
	t.Run("Should map the log section onto a logger configuration", func(t *testing.T) {
		cfg := Default()
		cfg.Log = LogConfig{Level: logger.DebugLevel, JSON: true}
		lc := cfg.LoggerConfig()
		assert.Equal(t, logger.DebugLevel, lc.Level)
		assert.True(t, lc.JSON)
	})
}
