package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/compozy/jsswitch/pkg/config"
	"github.com/compozy/jsswitch/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// SetupGlobalConfig loads configuration for cmd and stores it, together with
// a matching logger, in the command context.
func SetupGlobalConfig(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	envFile, err := cmd.Flags().GetString("env-file")
	if err != nil {
		return fmt.Errorf("failed to get env-file flag: %w", err)
	}
	if err := loadEnvFile(envFile); err != nil {
		return err
	}
	cfg, err := loadConfig(ctx, cmd)
	if err != nil {
		return err
	}
	lc := cfg.LoggerConfig()
	lc.Output = cmd.ErrOrStderr()
	log := logger.NewLogger(lc)
	ctx = logger.ContextWithLogger(ctx, log)
	ctx = config.ContextWithConfig(ctx, cfg)
	cmd.SetContext(ctx)
	return nil
}

func loadConfig(ctx context.Context, cmd *cobra.Command) (*config.Config, error) {
	configFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	var sources []config.Source
	if configFile != "" {
		sources = append(sources, config.NewYAMLProvider(configFile))
	}
	if flags := extractCLIFlags(cmd); len(flags) > 0 {
		sources = append(sources, config.NewCLIProvider(flags))
	}
	cfg, err := config.NewLoader().Load(ctx, sources...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// extractCLIFlags collects explicitly set flags that map to configuration.
func extractCLIFlags(cmd *cobra.Command) map[string]any {
	flags := make(map[string]any)
	cmd.Flags().Visit(func(f *pflag.Flag) {
		if _, ok := config.FlagPaths[f.Name]; !ok {
			return
		}
		flags[f.Name] = f.Value.String()
	})
	return flags
}

// loadEnvFile exports variables from path without overriding the process
// environment. A missing file is ignored.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to stat env file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("env file path '%s' is not a regular file", path)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}
