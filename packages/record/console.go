package record

import (
	"strings"
)

// ArgKind is the runtime kind of a single console argument.
type ArgKind string

const (
	ArgNull      ArgKind = "null"
	ArgUndefined ArgKind = "undefined"
	ArgString    ArgKind = "string"
	ArgNumber    ArgKind = "number"
	ArgBoolean   ArgKind = "boolean"
	ArgFunction  ArgKind = "function"
	ArgObject    ArgKind = "object"
)

// ConsoleArg is one argument passed to a console call.
// Value holds the literal for numbers and booleans, the text for strings,
// the source for functions and raw JSON for objects.
type ConsoleArg struct {
	Kind  ArgKind
	Value string
}

// Display returns the canonical display form of the argument.
func (a ConsoleArg) Display() string {
	switch a.Kind {
	case ArgNull:
		return "null"
	case ArgUndefined:
		return "undefined"
	case ArgObject:
		return prettyJSON(a.Value)
	default:
		return a.Value
	}
}

// FormatConsoleArgs joins the display forms in argument order, one per line,
// each but the last terminated by a comma.
func FormatConsoleArgs(args []ConsoleArg) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.Display()
	}
	return strings.Join(parts, ",\n")
}
