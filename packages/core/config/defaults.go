package config

import (
	"github.com/abdul-hamid-achik/termreport/packages/policy"
)

// DefaultOutputRoot is where report files go when no root is configured.
const DefaultOutputRoot = "."

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		OutputRoot:         DefaultOutputRoot,
		PrintLogsToConsole: string(policy.OnFail),
		PrintLogsToFile:    string(policy.OnFail),
	}
}

// IsDefault returns true if the config matches defaults
func (c *Config) IsDefault() bool {
	defaults := DefaultConfig()
	return len(c.CollectTypes) == 0 &&
		c.FilterLog == "" &&
		c.KeepLog == "" &&
		c.CompactLogs == nil &&
		c.OutputRoot == defaults.OutputRoot &&
		c.SpecRoot == "" &&
		len(c.OutputTarget) == 0 &&
		c.PrintLogsToConsole == defaults.PrintLogsToConsole &&
		c.PrintLogsToFile == defaults.PrintLogsToFile &&
		c.NestedOutput == nil &&
		c.CollectTestLogs == "" &&
		c.XHR == nil &&
		c.ASCIIIcons == nil
}
