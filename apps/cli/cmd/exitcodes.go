package cmd

// Exit codes for termreport CLI
const (
	// ExitSuccess indicates all tests passed
	ExitSuccess = 0

	// ExitTestFailure indicates one or more tests failed, or a report
	// could not be written
	ExitTestFailure = 1

	// ExitParseError indicates a malformed event stream
	ExitParseError = 2

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)
