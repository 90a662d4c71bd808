package ingest

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/termreport/packages/policy"
	"github.com/abdul-hamid-achik/termreport/packages/record"
)

func decodeLine(t *testing.T, line string) Event {
	t.Helper()
	log, _ := test.NewNullLogger()
	ev, err := DecodeLine(log, []byte(line))
	require.NoError(t, err)
	return ev
}

func TestDecodeAll(t *testing.T) {
	stream := `{"event":"suite:start","spec":"cypress/integration/a.spec.js"}

{"event":"test:start","title":"logs"}
{"event":"log","type":"cy:command","message":"visit\t/"}
{"event":"test:end","state":"failed"}
{"event":"suite:end"}
`
	log, _ := test.NewNullLogger()
	events, err := DecodeAll(log, strings.NewReader(stream))
	require.NoError(t, err)
	require.Len(t, events, 5)

	assert.Equal(t, SuiteStart, events[0].Kind)
	assert.Equal(t, "cypress/integration/a.spec.js", events[0].Spec)
	assert.Equal(t, "logs", events[1].Title)
	assert.Equal(t, 3, events[1].Line)
	require.NotNil(t, events[2].Record)
	assert.Equal(t, record.New(record.TypeCommand, record.StatusSuccess, "visit\t/"), *events[2].Record)
	assert.Equal(t, policy.Failed, events[3].Outcome)
	assert.Equal(t, SuiteEnd, events[4].Kind)
}

func TestDecodeAll_ErrorLine(t *testing.T) {
	log, _ := test.NewNullLogger()
	events, err := DecodeAll(log, strings.NewReader("{\"event\":\"suite:end\"}\n{\"event\":\"party\"}\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownEvent))
	assert.Contains(t, err.Error(), "line 2")
	assert.Len(t, events, 1)
}

func TestDecodeLine_Invalid(t *testing.T) {
	log, _ := test.NewNullLogger()
	for _, line := range []string{
		`not json`,
		`[1,2]`,
		`{"event":"test:start"}`,
		`{"event":"log","type":"cy:bogus"}`,
		`{"event":"log","type":"cy:log","status":"fatal"}`,
		`{"event":"log","type":"cy:log","hook":"around"}`,
		`{"event":"exchange:open","type":"cy:xhr"}`,
		`{"event":"exchange:resolve"}`,
		`{"event":"test:end","state":"skipped"}`,
	} {
		_, err := DecodeLine(log, []byte(line))
		assert.Error(t, err, line)
	}
}

func TestLog_DefaultStatus(t *testing.T) {
	tests := []struct {
		typ  string
		want record.Status
	}{
		{"cy:command", record.StatusSuccess},
		{"cy:log", record.StatusInfo},
		{"console-error", record.StatusError},
		{"cons:warn", record.StatusWarning},
		{"cons:debug", record.StatusInfo},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			ev := decodeLine(t, `{"event":"log","type":"`+tt.typ+`","message":"m"}`)
			assert.Equal(t, tt.want, ev.Record.Status)
		})
	}
}

func TestLog_Fields(t *testing.T) {
	ev := decodeLine(t, `{"event":"log","type":"cy:route","status":"info","message":"(getComment) GET /comments/1","hook":"beforeEach","depth":1}`)
	want := record.New(record.TypeRoute, record.StatusInfo, "(getComment) GET /comments/1").WithHook(record.HookBeforeEach).WithDepth(1)
	assert.Equal(t, want, *ev.Record)
}

func TestLog_ConsoleArgs(t *testing.T) {
	ev := decodeLine(t, `{"event":"log","type":"console-error","args":[null,{"$kind":"undefined"},"",false,{"$kind":"function","value":"function () {}"},1.5,{"a":1}]}`)
	assert.Equal(t, "null,\nundefined,\n,\nfalse,\nfunction () {},\n1.5,\n{\n  \"a\": 1\n}", ev.Record.Summary)
}

func TestLog_Detail(t *testing.T) {
	ev := decodeLine(t, `{"event":"log","type":"cy:request","message":"GET /","detail":{"statusCode":200,"responseBody":{"kind":"text","content":"ok"}}}`)
	require.NotNil(t, ev.Record.Detail)
	assert.Equal(t, 200, ev.Record.Detail.StatusCode)
	assert.Equal(t, "ok", ev.Record.Detail.ResponseBody.Render())
}

func TestExchange_Resolve(t *testing.T) {
	open := decodeLine(t, `{"event":"exchange:open","id":"7","type":"cy:xhr","method":"put","url":"https://jsonplaceholder.cypress.io/comments/1","stubbed":true,"requestBody":"{\"a\":1}"}`)
	require.NotNil(t, open.Exchange)
	x := *open.Exchange
	assert.Equal(t, "STUBBED PUT https://jsonplaceholder.cypress.io/comments/1", x.Summary())
	assert.Equal(t, record.BodyJSON, x.RequestBody.Kind)

	pending := x.Record()
	assert.Equal(t, record.StatusInfo, pending.Status)

	resolve := decodeLine(t, `{"event":"exchange:resolve","id":"7","statusCode":404,"statusText":"Not Found","duration":12}`)
	require.NotNil(t, resolve.Response)
	r := x.Resolve(*resolve.Response)
	assert.Equal(t, record.StatusWarning, r.Status)
	assert.Equal(t, "STUBBED PUT https://jsonplaceholder.cypress.io/comments/1 (12 ms)\nStatus: 404 - Not Found\nRequest body: {\n  \"a\": 1\n}", r.Message())
}

func TestExchange_DerivedStatus(t *testing.T) {
	tests := []struct {
		name string
		typ  record.Type
		resp Response
		want record.Status
	}{
		{"xhr ok", record.TypeXHR, Response{StatusCode: 200}, record.StatusInfo},
		{"xhr failed", record.TypeXHR, Response{StatusCode: 500}, record.StatusWarning},
		{"request ok", record.TypeRequest, Response{StatusCode: 201}, record.StatusSuccess},
		{"request failed", record.TypeRequest, Response{StatusCode: 404}, record.StatusError},
		{"network error", record.TypeXHR, Response{NetworkError: "ENOTFOUND"}, record.StatusError},
		{"override", record.TypeRequest, Response{StatusCode: 500, Status: record.StatusInfo}, record.StatusInfo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := Exchange{ID: "1", Type: tt.typ, Method: "GET", URL: "/"}
			assert.Equal(t, tt.want, x.Resolve(tt.resp).Status)
		})
	}
}

func TestExchange_RequestWithoutMethod(t *testing.T) {
	ev := decodeLine(t, `{"event":"exchange:open","id":"1","type":"cy:request","url":"https://jsonplaceholder.cypress.io/todos/1"}`)
	r := ev.Exchange.Resolve(Response{StatusCode: 200, DurationMs: 30})
	assert.Equal(t, "https://jsonplaceholder.cypress.io/todos/1", r.Summary)
	assert.Equal(t, record.StatusSuccess, r.Status)
}

func TestBodies(t *testing.T) {
	ev := decodeLine(t, `{"event":"exchange:resolve","id":"1","statusCode":200,"responseHeaders":{"content-type":"text/html"},"responseBody":{"$unknown":true},"error":""}`)
	assert.Equal(t, record.BodyJSON, ev.Response.Headers.Kind)
	assert.Equal(t, "<UNKNOWN>", ev.Response.Body.Render())

	ev = decodeLine(t, `{"event":"exchange:resolve","id":"1","responseBody":"  "}`)
	assert.Equal(t, "<EMPTY>", ev.Response.Body.Render())

	ev = decodeLine(t, `{"event":"exchange:resolve","id":"1","responseBody":null}`)
	assert.Equal(t, "<EMPTY>", ev.Response.Body.Render())

	log, hook := test.NewNullLogger()
	ev, err := DecodeLine(log, []byte(`{"event":"exchange:resolve","id":"1","responseBody":42}`))
	require.NoError(t, err)
	assert.Equal(t, "<UNKNOWN>", ev.Response.Body.Render())
	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, "Unreadable body, printing as unknown", hook.LastEntry().Message)

	ev = decodeLine(t, `{"event":"exchange:resolve","id":"1","error":"getaddrinfo ENOTFOUND this.does.not.exist"}`)
	assert.Nil(t, ev.Response.Body)
	assert.Equal(t, "getaddrinfo ENOTFOUND this.does.not.exist", ev.Response.NetworkError)
}

func TestTestEndDefaultsToPassed(t *testing.T) {
	assert.Equal(t, policy.Passed, decodeLine(t, `{"event":"test:end"}`).Outcome)
	assert.Equal(t, "boom", decodeLine(t, `{"event":"test:abort","reason":"boom"}`).Reason)
}

func TestUnreadableBodyWarnsOnce(t *testing.T) {
	stream := `{"event":"exchange:resolve","id":"1","responseBody":42}
{"event":"exchange:resolve","id":"2","responseBody":true}
`
	log, hook := test.NewNullLogger()
	events, err := DecodeAll(log, strings.NewReader(stream))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "<UNKNOWN>", events[1].Response.Body.Render())
	assert.Len(t, hook.AllEntries(), 1)
}

func TestLog_UnreadableDetailKept(t *testing.T) {
	log, hook := test.NewNullLogger()
	stream := `{"event":"log","type":"cy:request","message":"GET /","detail":{"statusCode":"abc"}}
{"event":"log","type":"cy:request","message":"GET /again","detail":{"statusCode":[]}}
`
	events, err := DecodeAll(log, strings.NewReader(stream))
	require.NoError(t, err)
	require.Len(t, events, 2)

	for _, ev := range events {
		require.NotNil(t, ev.Record.Detail)
		assert.Equal(t, []string{"Response body: <UNKNOWN>"}, ev.Record.Detail.Lines())
	}
	assert.Equal(t, "GET /\nResponse body: <UNKNOWN>", events[0].Record.Message())
	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, "Unreadable detail, printing as unknown", hook.LastEntry().Message)
}

func TestUnknownBodyMarkerWarnsOnce(t *testing.T) {
	log, hook := test.NewNullLogger()
	stream := `{"event":"exchange:resolve","id":"1","responseBody":{"$unknown":true}}
{"event":"exchange:resolve","id":"2","responseBody":{"$unknown":true}}
`
	events, err := DecodeAll(log, strings.NewReader(stream))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "<UNKNOWN>", events[0].Response.Body.Render())
	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}
