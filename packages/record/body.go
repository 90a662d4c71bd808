package record

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// BodyKind classifies a captured payload.
type BodyKind string

const (
	BodyJSON    BodyKind = "json"
	BodyText    BodyKind = "text"
	BodyEmpty   BodyKind = "empty"
	BodyUnknown BodyKind = "unknown"
)

const (
	// EmptyPlaceholder is printed for bodies without content.
	EmptyPlaceholder = "<EMPTY>"
	// UnknownPlaceholder is printed for bodies whose content cannot be read.
	UnknownPlaceholder = "<UNKNOWN>"
)

// JSONIndent is the indent used when pretty printing JSON payloads.
const JSONIndent = "  "

// Body is a captured request/response body or header set.
type Body struct {
	Kind    BodyKind `json:"kind"`
	Content string   `json:"content,omitempty"`
}

// NewBody classifies textual content: empty, JSON object/array, or plain text.
func NewBody(content string) *Body {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return &Body{Kind: BodyEmpty}
	}
	if isStructuredJSON(trimmed) {
		return &Body{Kind: BodyJSON, Content: trimmed}
	}
	return &Body{Kind: BodyText, Content: content}
}

// NewJSONBody wraps an already structured JSON value. Invalid input is
// demoted to text so it is still printed verbatim.
func NewJSONBody(raw string) *Body {
	if !gjson.Valid(raw) {
		return NewBody(raw)
	}
	return &Body{Kind: BodyJSON, Content: strings.TrimSpace(raw)}
}

// UnknownBody marks a payload whose content type could not be determined.
func UnknownBody() *Body {
	return &Body{Kind: BodyUnknown}
}

func isStructuredJSON(s string) bool {
	if s[0] != '{' && s[0] != '[' {
		return false
	}
	return gjson.Valid(s)
}

// Render returns the display form of the body. JSON is pretty printed with
// JSONIndent and no prefix; continuation indentation is added by renderers.
func (b *Body) Render() string {
	if b == nil {
		return UnknownPlaceholder
	}
	switch b.Kind {
	case BodyEmpty:
		return EmptyPlaceholder
	case BodyText:
		return b.Content
	case BodyJSON:
		return prettyJSON(b.Content)
	default:
		return UnknownPlaceholder
	}
}

func prettyJSON(raw string) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(raw), "", JSONIndent); err != nil {
		return raw
	}
	return buf.String()
}

func (b *Body) clone() *Body {
	if b == nil {
		return nil
	}
	c := *b
	return &c
}
