package cli

import (
	"fmt"

	"github.com/compozy/jsswitch/pkg/version"
	"github.com/spf13/cobra"
)

func VersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := cmd.Flags().GetString("format")
			if err != nil {
				return fmt.Errorf("failed to get format flag: %w", err)
			}
			if err := validateFormat(format); err != nil {
				return err
			}
			info := version.Get()
			if format == OutputFormatText {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "jsswitch", info.String())
				return err
			}
			return writeValue(cmd.OutOrStdout(), format, info)
		},
	}
	cmd.Flags().String("format", OutputFormatText, "Output format (text, json, yaml)")
	return cmd
}
