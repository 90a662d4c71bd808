package output

import (
	"path/filepath"

	"github.com/abdul-hamid-achik/termreport/packages/policy"
	"github.com/abdul-hamid-achik/termreport/packages/record"
)

// Section is one test's contribution to a report.
type Section struct {
	Spec    string          `json:"spec"`
	Test    string          `json:"test"`
	Outcome policy.Outcome  `json:"outcome"`
	Entries record.Sequence `json:"entries"`
}

// NewSection builds a section; the source path is stored with forward slashes.
func NewSection(spec, test string, outcome policy.Outcome, entries record.Sequence) Section {
	if entries == nil {
		entries = record.Sequence{}
	}
	return Section{
		Spec:    filepath.ToSlash(spec),
		Test:    test,
		Outcome: outcome,
		Entries: entries,
	}
}

// Encoder turns the sections accumulated for one file into its content.
type Encoder interface {
	Encode(sections []Section) ([]byte, error)
}

// EncoderFunc adapts a function to Encoder.
type EncoderFunc func(sections []Section) ([]byte, error)

// Encode calls f.
func (f EncoderFunc) Encode(sections []Section) ([]byte, error) {
	return f(sections)
}

// Render encodes a single section.
func Render(s Section, enc Encoder) ([]byte, error) {
	return enc.Encode([]Section{s})
}

// Builtin returns the encoder registered under a built-in name.
func Builtin(name string, icons record.IconSet) (Encoder, bool) {
	switch name {
	case "txt", "text":
		return &TextEncoder{Layout: NewLayout(icons)}, true
	case "json":
		return JSONEncoder{}, true
	case "junit", "xml":
		return &JUnitEncoder{Layout: NewLayout(icons)}, true
	case "tap":
		return &TAPEncoder{Layout: NewLayout(icons)}, true
	case "html":
		return &HTMLEncoder{Layout: NewLayout(icons)}, true
	}
	return nil, false
}

// BuiltinNames lists the names accepted by Builtin.
func BuiltinNames() []string {
	return []string{"txt", "text", "json", "junit", "xml", "tap", "html"}
}
