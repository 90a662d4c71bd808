// Package record defines the canonical log record captured during a test.
//
// Every event the harness reports (commands, xhr exchanges, routes, requests,
// user logs and browser console output) is normalized into a Record. A
// Record is a value: once built it is never mutated, and the helpers in this
// package return modified copies.
//
// The package also holds the entry types shared by the compactor and the
// encoders:
//   - Entry: either a Record or an omission Marker
//   - Sequence: an ordered list of entries derived from a test's records
package record
