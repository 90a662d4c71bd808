package output

import (
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/termreport/packages/policy"
)

// TAPEncoder writes TAP version 13 with each test's logs as a YAML block.
type TAPEncoder struct {
	Layout Layout
}

// Encode implements Encoder.
func (e *TAPEncoder) Encode(sections []Section) ([]byte, error) {
	var sb strings.Builder

	// TAP version header
	sb.WriteString("TAP version 13\n")
	fmt.Fprintf(&sb, "1..%d\n", len(sections))

	for i, s := range sections {
		status := "ok"
		if s.Outcome == policy.Failed {
			status = "not ok"
		}
		fmt.Fprintf(&sb, "%s %d - %s\n", status, i+1, escapeYAML(s.Spec+" "+s.Test))
		if len(s.Entries) == 0 {
			continue
		}
		sb.WriteString("  ---\n")
		sb.WriteString("  logs: |\n")
		for _, line := range strings.Split(strings.TrimRight(e.Layout.Sequence(s.Entries, nil), "\n"), "\n") {
			sb.WriteString("    ")
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
		sb.WriteString("  ...\n")
	}

	return []byte(sb.String()), nil
}

func escapeYAML(s string) string {
	// Simple YAML escaping - wrap in quotes if contains special chars
	if strings.ContainsAny(s, ":\n\"'[]{}#&*!|>%@`") {
		s = strings.ReplaceAll(s, "\"", "\\\"")
		return "\"" + s + "\""
	}
	return s
}
