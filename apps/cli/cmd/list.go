package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/termreport/packages/core/config"
	"github.com/abdul-hamid-achik/termreport/packages/core/reporter"
	"github.com/abdul-hamid-achik/termreport/packages/output"
	"github.com/abdul-hamid-achik/termreport/packages/policy"
	"github.com/abdul-hamid-achik/termreport/packages/record"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List log types, encoders and output policies",
	Long: `List the values accepted by the configuration file.

Examples:
  termreport list`,
	Args: cobra.NoArgs,
	RunE: listCommand,
}

func listCommand(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Log types (collectTypes):\n")
	for _, t := range record.Types() {
		fmt.Fprintf(w, "  - %s\n", t)
	}

	fmt.Fprintf(w, "\nEncoders (outputTarget):\n")
	for _, name := range output.BuiltinNames() {
		fmt.Fprintf(w, "  - %s\n", name)
	}

	fmt.Fprintf(w, "\nFilters (filterLog):\n  - %s\n", config.RedactFilter)
	fmt.Fprintf(w, "\nCallbacks (collectTestLogs):\n  - %s\n", reporter.SummaryCallback)
	fmt.Fprintf(w, "\nPolicies (printLogsToConsole, printLogsToFile):\n  %s\n", strings.Join(policy.Modes(), ", "))
	return nil
}
