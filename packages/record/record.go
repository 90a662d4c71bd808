package record

import (
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// Type identifies the kind of event a record was built from. The value is
// the label printed in reports.
type Type string

const (
	TypeCommand      Type = "cy:command"
	TypeXHR          Type = "cy:xhr"
	TypeRoute        Type = "cy:route"
	TypeRequest      Type = "cy:request"
	TypeLog          Type = "cy:log"
	TypeConsoleLog   Type = "cons:log"
	TypeConsoleWarn  Type = "cons:warn"
	TypeConsoleError Type = "cons:error"
	TypeConsoleInfo  Type = "cons:info"
	TypeConsoleDebug Type = "cons:debug"
)

// MarkerType is the label used for omission markers and pipeline notices.
const MarkerType = "ctr:info"

var allTypes = []Type{
	TypeCommand,
	TypeXHR,
	TypeRoute,
	TypeRequest,
	TypeLog,
	TypeConsoleLog,
	TypeConsoleWarn,
	TypeConsoleError,
	TypeConsoleInfo,
	TypeConsoleDebug,
}

// typeNames maps the plain names to labels.
var typeNames = map[string]Type{
	"command":       TypeCommand,
	"xhr":           TypeXHR,
	"route":         TypeRoute,
	"request":       TypeRequest,
	"log":           TypeLog,
	"console-log":   TypeConsoleLog,
	"console-warn":  TypeConsoleWarn,
	"console-error": TypeConsoleError,
	"console-info":  TypeConsoleInfo,
	"console-debug": TypeConsoleDebug,
}

// ErrUnknownType is returned by ParseType for names outside the closed set.
var ErrUnknownType = errors.New("unknown log type")

// Types returns every record type in display order.
func Types() []Type {
	out := make([]Type, len(allTypes))
	copy(out, allTypes)
	return out
}

// TypeNames returns the plain names accepted by ParseType, sorted.
func TypeNames() []string {
	names := make([]string, 0, len(typeNames))
	for name := range typeNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseType accepts either a label ("cons:warn") or a plain name ("console-warn").
func ParseType(s string) (Type, error) {
	s = strings.TrimSpace(s)
	for _, t := range allTypes {
		if string(t) == s {
			return t, nil
		}
	}
	if t, ok := typeNames[s]; ok {
		return t, nil
	}
	return "", errors.Wrapf(ErrUnknownType, "%q", s)
}

// Valid reports whether t is one of the known types.
func (t Type) Valid() bool {
	_, err := ParseType(string(t))
	return err == nil
}

// Status drives icon selection and compaction. It never changes a test outcome.
type Status string

const (
	StatusSuccess Status = "success"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
	StatusInfo    Status = "info"
)

// Hook tags the lifecycle phase a record was captured in.
type Hook string

const (
	HookBefore     Hook = "before"
	HookBeforeEach Hook = "beforeEach"
	HookTest       Hook = "test"
	HookAfterEach  Hook = "afterEach"
	HookAfter      Hook = "after"
)

// Detail is the structured payload of network records.
type Detail struct {
	StatusCode      int    `json:"statusCode,omitempty"`
	StatusText      string `json:"statusText,omitempty"`
	DurationMs      int64  `json:"durationMs,omitempty"`
	RequestHeaders  *Body  `json:"requestHeaders,omitempty"`
	RequestBody     *Body  `json:"requestBody,omitempty"`
	ResponseHeaders *Body  `json:"responseHeaders,omitempty"`
	ResponseBody    *Body  `json:"responseBody,omitempty"`
	NetworkError    string `json:"networkError,omitempty"`
}

// Lines renders the detail parts that are present, one entry per part.
// Multi-line bodies keep their embedded newlines.
func (d *Detail) Lines() []string {
	if d == nil {
		return nil
	}
	var lines []string
	if d.StatusCode != 0 {
		status := "Status: " + strconv.Itoa(d.StatusCode)
		if d.StatusText != "" {
			status += " - " + d.StatusText
		}
		lines = append(lines, status)
	}
	if d.RequestHeaders != nil {
		lines = append(lines, "Request headers: "+d.RequestHeaders.Render())
	}
	if d.RequestBody != nil {
		lines = append(lines, "Request body: "+d.RequestBody.Render())
	}
	if d.ResponseHeaders != nil {
		lines = append(lines, "Response headers: "+d.ResponseHeaders.Render())
	}
	if d.ResponseBody != nil {
		lines = append(lines, "Response body: "+d.ResponseBody.Render())
	}
	if d.NetworkError != "" {
		lines = append(lines, "Network error: "+d.NetworkError)
	}
	return lines
}

func (d *Detail) clone() *Detail {
	if d == nil {
		return nil
	}
	c := *d
	c.RequestHeaders = d.RequestHeaders.clone()
	c.RequestBody = d.RequestBody.clone()
	c.ResponseHeaders = d.ResponseHeaders.clone()
	c.ResponseBody = d.ResponseBody.clone()
	return &c
}

// Record is one normalized log entry.
type Record struct {
	Type    Type    `json:"type"`
	Status  Status  `json:"status"`
	Summary string  `json:"summary"`
	Detail  *Detail `json:"detail,omitempty"`
	Hook    Hook    `json:"hook,omitempty"`
	Depth   int     `json:"depth,omitempty"`
}

// New builds a record without detail.
func New(t Type, status Status, summary string) Record {
	return Record{Type: t, Status: status, Summary: summary}
}

// WithDetail returns a copy of r carrying d.
func (r Record) WithDetail(d Detail) Record {
	r.Detail = d.clone()
	return r
}

// WithHook returns a copy of r tagged with h.
func (r Record) WithHook(h Hook) Record {
	r.Hook = h
	return r
}

// WithDepth returns a copy of r nested at depth.
func (r Record) WithDepth(depth int) Record {
	if depth < 0 {
		depth = 0
	}
	r.Depth = depth
	return r
}

// Clone returns a deep copy; callers handing a record to user code should
// pass a clone so the original stays untouched.
func (r Record) Clone() Record {
	r.Detail = r.Detail.clone()
	return r
}

// IsError reports whether the record has error status.
func (r Record) IsError() bool {
	return r.Status == StatusError
}

// Message is the summary followed by one line per detail part.
func (r Record) Message() string {
	lines := r.Detail.Lines()
	if len(lines) == 0 {
		return r.Summary
	}
	return r.Summary + "\n" + strings.Join(lines, "\n")
}
