package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/termreport/packages/core/config"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	configFlag  string
	noColorFlag bool
	verboseFlag bool
)

var (
	// errTestsFailed ends a render whose stream contained failed tests.
	errTestsFailed = errors.New("tests failed")
	// errBadStream marks errors caused by the event stream itself.
	errBadStream = errors.New("malformed event stream")
	errUsage     = errors.New("invalid usage")
)

var rootCmd = &cobra.Command{
	Use:   "termreport",
	Short: "Readable logs for end-to-end test runs.",
	Long: `termreport collects the commands, network exchanges and console output
captured during end-to-end tests and prints them for the tests that need
attention, to the terminal and to report files.

Record events as JSON lines and replay them with "termreport render".`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(rootCmd.ErrOrStderr(), err))
	}
}

// exitCode reports err on w and maps it to a process exit code.
func exitCode(w io.Writer, err error) int {
	var verr *config.ValidationError
	switch {
	case errors.As(err, &verr):
		for _, line := range verr.Lines() {
			fmt.Fprintln(w, line)
		}
		return ExitConfigError
	case errors.Is(err, errTestsFailed):
		return ExitTestFailure
	}

	fmt.Fprintf(w, "Error: %v\n", err)
	switch {
	case errors.Is(err, errUsage):
		return ExitUsageError
	case errors.Is(err, errBadStream):
		return ExitParseError
	}
	return ExitTestFailure
}

func init() {
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", getEnvString("TERMREPORT_CONFIG", ""), "Path to config file (env: TERMREPORT_CONFIG)")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", getEnvBool("TERMREPORT_NO_COLOR", false), "Disable colored output (env: TERMREPORT_NO_COLOR)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", getEnvBool("TERMREPORT_VERBOSE", false), "Log pipeline diagnostics (env: TERMREPORT_VERBOSE)")

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
}

func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
