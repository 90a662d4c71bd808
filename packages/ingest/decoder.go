package ingest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/abdul-hamid-achik/termreport/packages/policy"
	"github.com/abdul-hamid-achik/termreport/packages/record"
)

// maxLineSize bounds a single event line.
const maxLineSize = 16 * 1024 * 1024

// ErrUnknownEvent is returned for lines whose event field is not a Kind.
var ErrUnknownEvent = errors.New("unknown event")

// Decoder reads events from a stream.
type Decoder struct {
	scanner *bufio.Scanner
	line    int
	log     logrus.FieldLogger

	// Unreadable payloads are reported once per stream.
	bodyWarn   *rate.Sometimes
	detailWarn *rate.Sometimes
}

func newDecoder(log logrus.FieldLogger, s *bufio.Scanner) *Decoder {
	return &Decoder{
		scanner:    s,
		log:        log.WithField("component", "ingest"),
		bodyWarn:   &rate.Sometimes{First: 1},
		detailWarn: &rate.Sometimes{First: 1},
	}
}

// NewDecoder reads events from r.
func NewDecoder(log logrus.FieldLogger, r io.Reader) *Decoder {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return newDecoder(log, s)
}

// Next returns the next event, or io.EOF at the end of the stream. Blank
// lines are skipped.
func (d *Decoder) Next() (Event, error) {
	for d.scanner.Scan() {
		d.line++
		line := bytes.TrimSpace(d.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		ev, err := d.decode(line)
		if err != nil {
			return Event{}, errors.Wrapf(err, "line %d", d.line)
		}
		ev.Line = d.line
		return ev, nil
	}
	if err := d.scanner.Err(); err != nil {
		return Event{}, errors.Wrap(err, "reading events")
	}
	return Event{}, io.EOF
}

// DecodeAll reads every event of r.
func DecodeAll(log logrus.FieldLogger, r io.Reader) ([]Event, error) {
	d := NewDecoder(log, r)
	var events []Event
	for {
		ev, err := d.Next()
		if errors.Is(err, io.EOF) {
			return events, nil
		}
		if err != nil {
			return events, err
		}
		events = append(events, ev)
	}
}

// DecodeLine decodes a single event object.
func DecodeLine(log logrus.FieldLogger, line []byte) (Event, error) {
	return newDecoder(log, nil).decode(line)
}

func (d *Decoder) decode(line []byte) (Event, error) {
	if !gjson.ValidBytes(line) {
		return Event{}, errors.New("invalid JSON")
	}
	doc := gjson.ParseBytes(line)
	if !doc.IsObject() {
		return Event{}, errors.New("event is not an object")
	}

	kind := Kind(doc.Get("event").String())
	if !kinds[kind] {
		return Event{}, errors.Wrapf(ErrUnknownEvent, "%q", kind)
	}

	ev := Event{
		Kind:  kind,
		Spec:  doc.Get("spec").String(),
		Title: doc.Get("title").String(),
	}

	switch kind {
	case TestStart:
		if ev.Title == "" {
			return Event{}, errors.New("test:start without title")
		}
	case Log:
		r, err := d.logRecord(doc)
		if err != nil {
			return Event{}, err
		}
		ev.Record = &r
	case ExchangeOpen:
		x, err := d.exchange(doc)
		if err != nil {
			return Event{}, err
		}
		ev.Exchange = &x
	case ExchangeResolve:
		resp, err := d.response(doc)
		if err != nil {
			return Event{}, err
		}
		ev.Response = &resp
	case TestEnd:
		switch state := doc.Get("state").String(); state {
		case string(policy.Passed), "":
			ev.Outcome = policy.Passed
		case string(policy.Failed):
			ev.Outcome = policy.Failed
		default:
			return Event{}, errors.Newf("unknown test state %q", state)
		}
	case TestAbort:
		ev.Reason = doc.Get("reason").String()
	}
	return ev, nil
}

func (d *Decoder) logRecord(doc gjson.Result) (record.Record, error) {
	t, err := record.ParseType(doc.Get("type").String())
	if err != nil {
		return record.Record{}, err
	}

	status := defaultStatus(t)
	if s := doc.Get("status"); s.Exists() {
		if status, err = parseStatus(s.String()); err != nil {
			return record.Record{}, err
		}
	}

	message := doc.Get("message").String()
	if args := doc.Get("args"); args.IsArray() {
		message = record.FormatConsoleArgs(consoleArgs(args))
	}

	r := record.New(t, status, message)
	if detail := doc.Get("detail"); detail.IsObject() {
		var dt record.Detail
		if err := json.Unmarshal([]byte(detail.Raw), &dt); err != nil {
			d.detailWarn.Do(func() {
				d.log.WithError(err).Warn("Unreadable detail, printing as unknown")
			})
			dt = record.Detail{ResponseBody: record.UnknownBody()}
		}
		r = r.WithDetail(dt)
	}
	if h := doc.Get("hook"); h.Exists() {
		hook, err := parseHook(h.String())
		if err != nil {
			return record.Record{}, err
		}
		r = r.WithHook(hook)
	}
	return r.WithDepth(int(doc.Get("depth").Int())), nil
}

func (d *Decoder) exchange(doc gjson.Result) (Exchange, error) {
	id := doc.Get("id").String()
	if id == "" {
		return Exchange{}, errors.New("exchange without id")
	}
	t := record.TypeXHR
	if v := doc.Get("type"); v.Exists() {
		parsed, err := record.ParseType(v.String())
		if err != nil {
			return Exchange{}, err
		}
		t = parsed
	}
	return Exchange{
		ID:             id,
		Type:           t,
		Method:         strings.ToUpper(doc.Get("method").String()),
		URL:            doc.Get("url").String(),
		Stubbed:        doc.Get("stubbed").Bool(),
		RequestHeaders: d.body(doc.Get("requestHeaders")),
		RequestBody:    d.body(doc.Get("requestBody")),
	}, nil
}

func (d *Decoder) response(doc gjson.Result) (Response, error) {
	id := doc.Get("id").String()
	if id == "" {
		return Response{}, errors.New("exchange:resolve without id")
	}
	resp := Response{
		ID:           id,
		StatusCode:   int(doc.Get("statusCode").Int()),
		StatusText:   doc.Get("statusText").String(),
		DurationMs:   doc.Get("duration").Int(),
		Headers:      d.body(doc.Get("responseHeaders")),
		Body:         d.body(doc.Get("responseBody")),
		NetworkError: doc.Get("error").String(),
	}
	if s := doc.Get("status"); s.Exists() {
		status, err := parseStatus(s.String())
		if err != nil {
			return Response{}, err
		}
		resp.Status = status
	}
	return resp, nil
}

// body classifies a captured payload. Strings are inspected for JSON,
// structured values are kept as JSON and absent values yield nil.
func (d *Decoder) body(v gjson.Result) *record.Body {
	switch {
	case !v.Exists():
		return nil
	case v.Type == gjson.String:
		return record.NewBody(v.String())
	case v.IsObject() && v.Get(`\$unknown`).Bool():
		d.bodyWarn.Do(func() {
			d.log.Warn("Body could not be read by the runner, printing as unknown")
		})
		return record.UnknownBody()
	case v.IsObject() || v.IsArray():
		return record.NewJSONBody(v.Raw)
	case v.Type == gjson.Null:
		return &record.Body{Kind: record.BodyEmpty}
	default:
		d.bodyWarn.Do(func() {
			d.log.WithField("value", v.Raw).Warn("Unreadable body, printing as unknown")
		})
		return record.UnknownBody()
	}
}

func consoleArgs(args gjson.Result) []record.ConsoleArg {
	var out []record.ConsoleArg
	args.ForEach(func(_, v gjson.Result) bool {
		out = append(out, consoleArg(v))
		return true
	})
	return out
}

func consoleArg(v gjson.Result) record.ConsoleArg {
	switch v.Type {
	case gjson.Null:
		return record.ConsoleArg{Kind: record.ArgNull}
	case gjson.String:
		return record.ConsoleArg{Kind: record.ArgString, Value: v.String()}
	case gjson.Number:
		return record.ConsoleArg{Kind: record.ArgNumber, Value: v.Raw}
	case gjson.True, gjson.False:
		return record.ConsoleArg{Kind: record.ArgBoolean, Value: v.Raw}
	}
	if kind := v.Get(`\$kind`); kind.Exists() {
		switch record.ArgKind(kind.String()) {
		case record.ArgUndefined:
			return record.ConsoleArg{Kind: record.ArgUndefined}
		case record.ArgFunction:
			return record.ConsoleArg{Kind: record.ArgFunction, Value: v.Get("value").String()}
		}
	}
	return record.ConsoleArg{Kind: record.ArgObject, Value: v.Raw}
}

func parseStatus(s string) (record.Status, error) {
	switch st := record.Status(s); st {
	case record.StatusSuccess, record.StatusWarning, record.StatusError, record.StatusInfo:
		return st, nil
	}
	return "", errors.Newf("unknown status %q", s)
}

func parseHook(s string) (record.Hook, error) {
	switch h := record.Hook(s); h {
	case record.HookBefore, record.HookBeforeEach, record.HookTest, record.HookAfterEach, record.HookAfter:
		return h, nil
	}
	return "", errors.Newf("unknown hook %q", s)
}
