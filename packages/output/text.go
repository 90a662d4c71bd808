package output

import (
	"strings"
)

// TextEncoder writes the human-readable layout grouped by spec file.
type TextEncoder struct {
	Layout Layout
}

// Encode implements Encoder.
func (e *TextEncoder) Encode(sections []Section) ([]byte, error) {
	var sb strings.Builder
	spec := ""
	for i, s := range sections {
		if i == 0 || s.Spec != spec {
			if i > 0 {
				sb.WriteByte('\n')
			}
			spec = s.Spec
			sb.WriteString(spec)
			sb.WriteString(":\n")
		}
		sb.WriteString("    ")
		sb.WriteString(s.Test)
		sb.WriteByte('\n')
		sb.WriteString(e.Layout.Sequence(s.Entries, nil))
		sb.WriteByte('\n')
	}
	return []byte(sb.String()), nil
}
