// Package stats aggregates suite-level statistics over reported test runs:
// outcome and record counts per type, and latency percentiles of network
// exchanges backed by an HDR histogram.
package stats
