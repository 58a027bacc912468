package cli

import (
	"github.com/compozy/jsswitch/pkg/version"
	"github.com/spf13/cobra"
)

const (
	defaultConfigFile = "jsswitch.yaml"
	defaultEnvFile    = ".env"
)

func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "jsswitch",
		Short:         "Run JavaScript on interchangeable engines",
		Version:       version.Get().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return SetupGlobalConfig(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", defaultConfigFile, "Path to a YAML configuration file")
	flags.String("env-file", defaultEnvFile, "Path to a .env file with JSSWITCH_ variables")
	flags.StringP("engine", "e", "", "Registry name of the engine to use")
	flags.String("log-level", "", "Log level (debug, info, warn, error, disabled)")
	flags.Bool("log-json", false, "Write logs as JSON")
	flags.Uint64("max-heap-size", 0, "Maximum heap size in bytes")
	flags.Uint64("memory-limit", 0, "Hard memory limit in bytes")
	flags.Uint64("max-stack-usage", 0, "Maximum call stack usage")
	flags.Bool("disable-eval", false, "Remove the global eval function")

	root.AddCommand(
		EnginesCmd(),
		EvalCmd(),
		ExecCmd(),
		VersionCmd(),
	)

	return root
}
