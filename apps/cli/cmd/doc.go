// Package cmd implements the termreport CLI commands using Cobra.
//
// Available commands:
//   - render: Replay a recorded event stream into console and file reports
//   - validate: Check a configuration file against the schema
//   - list: Show log types, encoders and output policies
//   - init: Create a starter configuration file
//   - version: Show termreport version information
//
// render supports a watch mode that re-renders whenever the event file
// changes, and can print suite statistics after each pass.
package cmd
