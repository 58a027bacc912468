package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/compozy/jsswitch/engine/jsengine"
	"github.com/compozy/jsswitch/pkg/config"
	"github.com/compozy/jsswitch/pkg/logger"
	"github.com/spf13/cobra"
)

func EvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval [expression]",
		Short: "Evaluate an expression and print its result",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScript(cmd, args, true)
		},
	}
	addScriptFlags(cmd)
	cmd.Flags().String("format", OutputFormatText, "Output format (text, json, yaml)")
	return cmd
}

func ExecCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exec [code]",
		Short: "Execute a script",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScript(cmd, args, false)
		},
	}
	addScriptFlags(cmd)
	return cmd
}

func addScriptFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("file", "f", "", "Read the script from a file ('-' for stdin, the default when piped)")
	cmd.Flags().StringP("document", "d", "", "Document name reported in errors")
	cmd.Flags().Duration("timeout", 0, "Interrupt the script after this duration")
}

type scriptInput struct {
	source   string
	document string
	timeout  time.Duration
}

func readScriptInput(cmd *cobra.Command, args []string) (*scriptInput, error) {
	file, err := cmd.Flags().GetString("file")
	if err != nil {
		return nil, fmt.Errorf("failed to get file flag: %w", err)
	}
	document, err := cmd.Flags().GetString("document")
	if err != nil {
		return nil, fmt.Errorf("failed to get document flag: %w", err)
	}
	timeout, err := cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, fmt.Errorf("failed to get timeout flag: %w", err)
	}
	in := &scriptInput{document: document, timeout: timeout}
	switch {
	case file != "" && len(args) > 0:
		return nil, fmt.Errorf("pass either a script argument or --file, not both")
	case file == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read script from stdin: %w", err)
		}
		in.source = string(data)
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read script file: %w", err)
		}
		in.source = string(data)
		if in.document == "" {
			in.document = file
		}
	case len(args) == 1:
		in.source = args[0]
	case !isTerminal(cmd.InOrStdin()):
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read script from stdin: %w", err)
		}
		in.source = string(data)
	}
	if in.source == "" {
		return nil, fmt.Errorf("no script given")
	}
	return in, nil
}

func runScript(cmd *cobra.Command, args []string, evaluate bool) error {
	format := OutputFormatText
	if evaluate {
		var err error
		if format, err = cmd.Flags().GetString("format"); err != nil {
			return fmt.Errorf("failed to get format flag: %w", err)
		}
		if err := validateFormat(format); err != nil {
			return err
		}
	}
	in, err := readScriptInput(cmd, args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	e, err := jsengine.New(ctx, cfg.Engine, cfg.Settings)
	if err != nil {
		return err
	}
	defer e.Dispose()

	if in.timeout > 0 {
		timer := time.AfterFunc(in.timeout, func() {
			logger.FromContext(ctx).Warn("Script timed out", "engine", e.Name(), "timeout", in.timeout)
			e.Interrupt()
		})
		defer timer.Stop()
	}

	if !evaluate {
		return e.Execute(in.source, in.document)
	}
	result, err := e.Evaluate(in.source, in.document)
	if err != nil {
		return err
	}
	return writeValue(cmd.OutOrStdout(), format, result)
}
