package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a termreport configuration file",
	Long: `Create a starter .termreport.yaml in the current directory.

The file prints the logs of failed tests to the console, writes them to
a text and a JSON report, and collapses long passing stretches.

Examples:
  termreport init
  termreport init --force`,
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite an existing file")
}

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	configFile := filepath.Join(cwd, ".termreport.yaml")
	if !forceInit {
		if _, err := os.Stat(configFile); err == nil {
			return errors.Mark(errors.Newf("file already exists: %s (use --force to overwrite)", configFile), errUsage)
		}
	}

	configContent := map[string]any{
		"collectTypes": []string{
			"cy:command", "cy:xhr", "cy:request", "cy:route", "cy:log",
			"cons:log", "cons:info", "cons:warn", "cons:error", "cons:debug",
		},
		"compactLogs":        1,
		"outputRoot":         "logs",
		"nestedOutput":       false,
		"printLogsToConsole": "onFail",
		"printLogsToFile":    "onFail",
		"outputTarget": map[string]string{
			"out.txt":  "txt",
			"out.json": "json",
		},
		"xhr": map[string]bool{
			"printRequestData": false,
			"printHeaderData":  false,
		},
	}

	configYAML, err := yaml.Marshal(configContent)
	if err != nil {
		return errors.Wrap(err, "encoding config")
	}
	if err := os.WriteFile(configFile, configYAML, 0o644); err != nil {
		return errors.Wrap(err, "failed to create config file")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)
	fmt.Fprintf(cmd.OutOrStdout(), "\nRun 'termreport validate' to check it.\n")
	return nil
}
