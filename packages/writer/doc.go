// Package writer persists rendered test sections to report files.
//
// Each target is a file (or, with nested output, a file per source file)
// that accumulates the sections of every test written to it during the
// process. Files are re-encoded in full and replaced atomically on every
// write, so readers never observe partial content.
package writer
