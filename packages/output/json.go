package output

import (
	"encoding/json"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

// JSONEncoder writes sections as an indented JSON array.
type JSONEncoder struct{}

// Encode implements Encoder.
func (JSONEncoder) Encode(sections []Section) ([]byte, error) {
	if sections == nil {
		sections = []Section{}
	}
	out := make([]Section, len(sections))
	for i, s := range sections {
		s.Spec = filepath.ToSlash(s.Spec)
		out[i] = s
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encoding JSON report")
	}
	return append(data, '\n'), nil
}

// DecodeJSON parses a report produced by JSONEncoder.
func DecodeJSON(data []byte) ([]Section, error) {
	var sections []Section
	if err := json.Unmarshal(data, &sections); err != nil {
		return nil, errors.Wrap(err, "decoding JSON report")
	}
	return sections, nil
}
