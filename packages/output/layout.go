package output

import (
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/termreport/packages/record"
)

const (
	// Gutter is the width the type label is right-aligned in.
	Gutter = 16
	// Padding is the indentation of continuation lines.
	Padding = 20
	// DepthIndent is added per nesting level.
	DepthIndent = 2
)

// Layout renders entries in the human-readable form:
//
//	      cy:command ✔  get	.breaking-get
//	        cy:route ⛗  (getComment) GET /comments/1
//	                    Status: 200
type Layout struct {
	Icons record.IconSet
}

// NewLayout returns a layout using icons.
func NewLayout(icons record.IconSet) Layout {
	return Layout{Icons: icons}
}

// Paint colors the label and icon of a line. A nil Paint leaves text as is.
type Paint func(status record.Status, head string) string

// Entry renders one entry, possibly spanning several lines, without a
// trailing newline.
func (l Layout) Entry(e record.Entry, paint Paint) string {
	if e.Marker != nil {
		return l.line(record.MarkerType, record.MarkerIcon, e.Marker.Summary(), e.Marker.Depth, record.StatusInfo, paint)
	}
	if e.Record == nil {
		return ""
	}
	r := *e.Record
	return l.line(string(r.Type), l.Icons.For(r), r.Message(), r.Depth, r.Status, paint)
}

// Sequence renders every entry followed by a newline.
func (l Layout) Sequence(seq record.Sequence, paint Paint) string {
	var sb strings.Builder
	for _, e := range seq {
		sb.WriteString(l.Entry(e, paint))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (l Layout) line(label, icon, message string, depth int, status record.Status, paint Paint) string {
	indent := strings.Repeat(" ", depth*DepthIndent)
	head := fmt.Sprintf("%*s %s", Gutter, label, icon)
	if paint != nil {
		head = paint(status, head)
	}
	continuation := "\n" + indent + strings.Repeat(" ", Padding)
	return indent + head + "  " + strings.ReplaceAll(message, "\n", continuation)
}
