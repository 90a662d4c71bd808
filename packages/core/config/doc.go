// Package config loads and validates termreport configuration.
//
// It provides functionality for:
//   - Loading configuration from JSON or YAML files
//   - Schema validation reporting every violation at once
//   - Resolving registered filter, predicate, encoder and callback names
//   - Default configuration values
//
// Programmatic callers skip files and fill Options directly.
package config
