package record

import (
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"
)

// Marker stands in for a collapsed run of records.
type Marker struct {
	Count int
	Depth int
}

// Summary is the text printed for the marker.
func (m Marker) Summary() string {
	return fmt.Sprintf("[ ... %d omitted logs ... ]", m.Count)
}

// Entry is either a record or a marker, never both.
type Entry struct {
	Record *Record
	Marker *Marker
}

// RecordEntry wraps r.
func RecordEntry(r Record) Entry {
	return Entry{Record: &r}
}

// MarkerEntry builds a marker entry.
func MarkerEntry(count, depth int) Entry {
	return Entry{Marker: &Marker{Count: count, Depth: depth}}
}

// IsMarker reports whether e is an omission marker.
func (e Entry) IsMarker() bool {
	return e.Marker != nil
}

// Depth returns the nesting depth of the entry.
func (e Entry) Depth() int {
	if e.Marker != nil {
		return e.Marker.Depth
	}
	if e.Record != nil {
		return e.Record.Depth
	}
	return 0
}

type markerJSON struct {
	Type    string `json:"type"`
	Omitted int    `json:"omitted"`
	Depth   int    `json:"depth,omitempty"`
}

// MarshalJSON encodes records as their own object and markers as
// {"type":"ctr:info","omitted":n}.
func (e Entry) MarshalJSON() ([]byte, error) {
	switch {
	case e.Marker != nil:
		return json.Marshal(markerJSON{Type: MarkerType, Omitted: e.Marker.Count, Depth: e.Marker.Depth})
	case e.Record != nil:
		return json.Marshal(e.Record)
	default:
		return nil, errors.New("empty entry")
	}
}

// UnmarshalJSON reverses MarshalJSON.
func (e *Entry) UnmarshalJSON(data []byte) error {
	if gjson.GetBytes(data, "omitted").Exists() {
		var m markerJSON
		if err := json.Unmarshal(data, &m); err != nil {
			return errors.Wrap(err, "decoding marker")
		}
		*e = MarkerEntry(m.Omitted, m.Depth)
		return nil
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return errors.Wrap(err, "decoding record")
	}
	*e = RecordEntry(r)
	return nil
}

// Sequence is an ordered list of entries derived from a test's records.
type Sequence []Entry

// Expand wraps records without compaction.
func Expand(records []Record) Sequence {
	seq := make(Sequence, 0, len(records))
	for _, r := range records {
		seq = append(seq, RecordEntry(r))
	}
	return seq
}

// Count is the number of original records the sequence accounts for.
func (s Sequence) Count() int {
	n := 0
	for _, e := range s {
		if e.Marker != nil {
			n += e.Marker.Count
		} else {
			n++
		}
	}
	return n
}

// Records returns the records still present in the sequence.
func (s Sequence) Records() []Record {
	var out []Record
	for _, e := range s {
		if e.Record != nil {
			out = append(out, *e.Record)
		}
	}
	return out
}
