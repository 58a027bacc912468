package config

import (
	"github.com/compozy/jsswitch/engine/settings"
	"github.com/compozy/jsswitch/pkg/logger"
)

// DefaultEngine is the registry name used when none is configured.
const DefaultEngine = "goja"

// Config is the complete jsswitch configuration.
type Config struct {
	Engine   string            `koanf:"engine"   json:"engine"   yaml:"engine"   validate:"required"`
	Settings settings.Settings `koanf:"settings" json:"settings" yaml:"settings"`
	Log      LogConfig         `koanf:"log"      json:"log"      yaml:"log"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level logger.LogLevel `koanf:"level" json:"level" yaml:"level" validate:"oneof=debug info warn error disabled"`
	JSON  bool            `koanf:"json"  json:"json"  yaml:"json"`
}

// Default returns the configuration used before any source is applied.
func Default() *Config {
	return &Config{
		Engine:   DefaultEngine,
		Settings: settings.Default(),
		Log: LogConfig{
			Level: logger.InfoLevel,
		},
	}
}

// LoggerConfig maps the log section onto a logger configuration.
func (c *Config) LoggerConfig() *logger.Config {
	cfg := logger.DefaultConfig()
	cfg.Level = c.Log.Level
	cfg.JSON = c.Log.JSON
	return cfg
}
