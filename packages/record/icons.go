package record

import (
	"os"
	"runtime"
)

// MarkerIcon is printed in place of a status icon on omission markers.
const MarkerIcon = "-"

// IconSet maps display categories to glyphs.
type IconSet struct {
	Error   string
	Warning string
	Success string
	Info    string
	Route   string
	Debug   string
}

var (
	UnicodeIcons = IconSet{Error: "✘", Warning: "⚠", Success: "✔", Info: "ⓘ", Route: "⛗", Debug: "ⓓ"}
	ASCIIIcons   = IconSet{Error: "x", Warning: "!", Success: "+", Info: "i", Route: "~", Debug: "%"}
)

// DefaultIcons picks the ASCII set on legacy Windows consoles.
func DefaultIcons() IconSet {
	if runtime.GOOS != "windows" || os.Getenv("CI") != "" || os.Getenv("TERM") == "xterm-256color" {
		return UnicodeIcons
	}
	return ASCIIIcons
}

// For returns the glyph for r. Errors always win; routes and debug output
// have their own glyphs.
func (s IconSet) For(r Record) string {
	if r.Status == StatusError {
		return s.Error
	}
	switch r.Type {
	case TypeRoute:
		return s.Route
	case TypeConsoleDebug:
		return s.Debug
	}
	switch r.Status {
	case StatusWarning:
		return s.Warning
	case StatusSuccess:
		return s.Success
	default:
		return s.Info
	}
}
