package ingest

import (
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/termreport/packages/policy"
	"github.com/abdul-hamid-achik/termreport/packages/record"
)

// Kind is the lifecycle step an event reports.
type Kind string

const (
	SuiteStart      Kind = "suite:start"
	TestStart       Kind = "test:start"
	Log             Kind = "log"
	ExchangeOpen    Kind = "exchange:open"
	ExchangeResolve Kind = "exchange:resolve"
	TestEnd         Kind = "test:end"
	TestAbort       Kind = "test:abort"
	SuiteEnd        Kind = "suite:end"
)

var kinds = map[Kind]bool{
	SuiteStart: true, TestStart: true, Log: true, ExchangeOpen: true,
	ExchangeResolve: true, TestEnd: true, TestAbort: true, SuiteEnd: true,
}

// Event is one decoded line.
type Event struct {
	Kind Kind
	// Line is the 1-based line number in the stream.
	Line int

	// Spec is set on suite:start and optionally on test:start.
	Spec  string
	Title string

	// Record is set on log events.
	Record *record.Record

	Exchange *Exchange
	Response *Response

	// Outcome is set on test:end.
	Outcome policy.Outcome
	// Reason is set on test:abort.
	Reason string
}

// Exchange describes a network request when it is issued.
type Exchange struct {
	ID             string
	Type           record.Type
	Method         string
	URL            string
	Stubbed        bool
	RequestHeaders *record.Body
	RequestBody    *record.Body
}

// Response completes an exchange.
type Response struct {
	ID           string
	StatusCode   int
	StatusText   string
	DurationMs   int64
	Headers      *record.Body
	Body         *record.Body
	NetworkError string
	// Status overrides the status derived from the response when set.
	Status record.Status
}

// Summary is the first line of the exchange record.
func (x Exchange) Summary() string {
	var parts []string
	if x.Stubbed {
		parts = append(parts, "STUBBED")
	}
	if x.Method != "" {
		parts = append(parts, x.Method)
	}
	parts = append(parts, x.URL)
	return strings.Join(parts, " ")
}

// Record is the pending record of the exchange, before any response.
func (x Exchange) Record() record.Record {
	return record.New(x.Type, record.StatusInfo, x.Summary()).WithDetail(record.Detail{
		RequestHeaders: x.RequestHeaders,
		RequestBody:    x.RequestBody,
	})
}

// Resolve builds the final record of the exchange from its response.
// Failed responses are errors for requests and warnings for xhr; transport
// errors are always errors.
func (x Exchange) Resolve(resp Response) record.Record {
	summary := x.Summary()
	if x.Type == record.TypeXHR && resp.DurationMs > 0 {
		summary += fmt.Sprintf(" (%d ms)", resp.DurationMs)
	}

	status := resp.Status
	if status == "" {
		status = deriveStatus(x.Type, resp)
	}

	return record.New(x.Type, status, summary).WithDetail(record.Detail{
		StatusCode:      resp.StatusCode,
		StatusText:      resp.StatusText,
		DurationMs:      resp.DurationMs,
		RequestHeaders:  x.RequestHeaders,
		RequestBody:     x.RequestBody,
		ResponseHeaders: resp.Headers,
		ResponseBody:    resp.Body,
		NetworkError:    resp.NetworkError,
	})
}

func deriveStatus(t record.Type, resp Response) record.Status {
	switch {
	case resp.NetworkError != "":
		return record.StatusError
	case resp.StatusCode >= 400 && t == record.TypeXHR:
		return record.StatusWarning
	case resp.StatusCode >= 400:
		return record.StatusError
	case t == record.TypeXHR:
		return record.StatusInfo
	default:
		return record.StatusSuccess
	}
}

// defaultStatus is the status of a log record that does not carry one.
func defaultStatus(t record.Type) record.Status {
	switch t {
	case record.TypeCommand, record.TypeRequest:
		return record.StatusSuccess
	case record.TypeConsoleError:
		return record.StatusError
	case record.TypeConsoleWarn:
		return record.StatusWarning
	default:
		return record.StatusInfo
	}
}
