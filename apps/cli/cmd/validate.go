package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [config-file]",
	Short: "Validate a termreport configuration file",
	Long: `Validate a configuration file against the option schema without rendering
anything. Every violation is reported.

Examples:
  termreport validate
  termreport validate .termreport.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: validateCommand,
}

func validateCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		configFlag = args[0]
	}

	_, path, err := loadOptions(io.Discard)
	if err != nil {
		return err
	}

	if path == "" {
		fmt.Fprintf(cmd.OutOrStdout(), "No config file found, defaults apply\n")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Valid: %s\n", path)
	return nil
}
