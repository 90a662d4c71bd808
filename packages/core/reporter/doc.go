// Package reporter drives the pipeline from lifecycle events to console and
// file output.
//
// Each sealed test run is compacted when configured, routed by the output
// policy to the console and the report writer, and accounted for in the
// suite statistics. Runs are reported in the order they end.
package reporter
