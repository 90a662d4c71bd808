// Package output renders test log sequences for the console and report files.
//
// Supported encodings:
//   - Text: the human-readable layout, one line per record
//   - JSON: sections with their entries, decodable back into sequences
//   - JUnit: JUnit XML with each test's logs as system output
//   - TAP: Test Anything Protocol with logs as YAML diagnostics
//   - HTML: a standalone page with one preformatted block per test
//
// Every encoding implements Encoder. Custom encodings are plain functions
// wrapped in EncoderFunc and receive exactly the same sections.
package output
