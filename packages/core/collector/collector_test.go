package collector

import (
	"strings"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/termreport/packages/policy"
	"github.com/abdul-hamid-achik/termreport/packages/record"
)

func newCollector(cfg Config) *Collector {
	log, _ := test.NewNullLogger()
	return New(log, cfg)
}

func summaries(records []record.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Summary
	}
	return out
}

func TestCollector_BeginEnd(t *testing.T) {
	c := newCollector(Config{})

	run, err := c.Begin("logs commands", "cypress/integration/a.spec.js")
	require.NoError(t, err)
	require.NoError(t, run.Add(record.New(record.TypeCommand, record.StatusSuccess, "visit\t/")))
	c.Add(record.New(record.TypeLog, record.StatusInfo, "hello"))

	tr, err := c.End(run, policy.Passed)
	require.NoError(t, err)
	assert.Equal(t, "logs commands", tr.Title)
	assert.Equal(t, "cypress/integration/a.spec.js", tr.SourcePath)
	assert.Equal(t, run.ID(), tr.ID)
	assert.NotEmpty(t, tr.ID)
	assert.False(t, tr.Failed())
	assert.Equal(t, []string{"visit\t/", "hello"}, summaries(tr.Records))
	for _, r := range tr.Records {
		assert.Equal(t, record.HookTest, r.Hook)
	}
	assert.Nil(t, c.Active())
}

func TestCollector_SingleActiveRun(t *testing.T) {
	c := newCollector(Config{})

	run, err := c.Begin("first", "a.spec.js")
	require.NoError(t, err)

	_, err = c.Begin("second", "a.spec.js")
	assert.True(t, errors.Is(err, ErrRunActive))

	_, err = c.End(run, policy.Passed)
	require.NoError(t, err)

	_, err = c.End(run, policy.Passed)
	assert.True(t, errors.Is(err, ErrRunNotActive))
	assert.True(t, errors.Is(run.Add(record.New(record.TypeLog, record.StatusInfo, "late")), ErrRunSealed))

	_, err = c.Begin("second", "a.spec.js")
	assert.NoError(t, err)
}

func TestCollector_SuiteHooks(t *testing.T) {
	c := newCollector(Config{})

	c.Add(record.New(record.TypeLog, record.StatusInfo, "before all"))
	run, err := c.Begin("test", "a.spec.js")
	require.NoError(t, err)
	require.NoError(t, run.Add(record.New(record.TypeLog, record.StatusInfo, "body")))
	tr, err := c.End(run, policy.Passed)
	require.NoError(t, err)

	require.Len(t, tr.Records, 2)
	assert.Equal(t, record.HookBefore, tr.Records[0].Hook)
	assert.Equal(t, record.HookTest, tr.Records[1].Hook)

	assert.Nil(t, c.EndSuite("a.spec.js"))

	c.Add(record.New(record.TypeCommand, record.StatusError, "after all failed"))
	after := c.EndSuite("a.spec.js")
	require.NotNil(t, after)
	assert.Equal(t, `"after all" hook`, after.Title)
	assert.Equal(t, policy.Failed, after.Outcome)
	require.Len(t, after.Records, 1)
	assert.Equal(t, record.HookAfter, after.Records[0].Hook)
	assert.Nil(t, c.EndSuite("a.spec.js"))
}

func TestCollector_ExplicitHookKept(t *testing.T) {
	c := newCollector(Config{})
	run, err := c.Begin("test", "a.spec.js")
	require.NoError(t, err)
	require.NoError(t, run.Add(record.New(record.TypeLog, record.StatusInfo, "each").WithHook(record.HookBeforeEach)))
	tr, err := c.End(run, policy.Passed)
	require.NoError(t, err)
	assert.Equal(t, record.HookBeforeEach, tr.Records[0].Hook)
}

func TestCollector_Exchanges(t *testing.T) {
	c := newCollector(Config{})
	run, err := c.Begin("network", "a.spec.js")
	require.NoError(t, err)

	first := run.Open(record.New(record.TypeXHR, record.StatusInfo, "GET /comments/1"))
	second := run.Open(record.New(record.TypeRequest, record.StatusInfo, "POST /comments"))
	failed := run.Open(record.New(record.TypeXHR, record.StatusInfo, "GET /broken"))
	pending := run.Open(record.New(record.TypeXHR, record.StatusInfo, "GET /slow"))

	require.NoError(t, run.Add(record.New(record.TypeCommand, record.StatusSuccess, "click")))
	assert.True(t, second.Resolve(record.StatusSuccess, record.Detail{StatusCode: 201, StatusText: "Created"}))
	assert.True(t, first.Resolve(record.StatusWarning, record.Detail{StatusCode: 404}))
	assert.False(t, first.Resolve(record.StatusSuccess, record.Detail{StatusCode: 200}))
	assert.True(t, failed.Fail("connection refused"))

	tr, err := c.End(run, policy.Failed)
	require.NoError(t, err)
	assert.False(t, pending.Resolve(record.StatusSuccess, record.Detail{StatusCode: 200}))

	assert.Equal(t, []string{"click", "POST /comments", "GET /comments/1", "GET /broken", "GET /slow"}, summaries(tr.Records))
	assert.Equal(t, "Status: 201 - Created", tr.Records[1].Detail.Lines()[0])
	assert.Equal(t, record.StatusWarning, tr.Records[2].Status)

	assert.Equal(t, record.StatusError, tr.Records[3].Status)
	assert.Equal(t, "connection refused", tr.Records[3].Detail.NetworkError)

	slow := tr.Records[4]
	assert.Equal(t, record.StatusError, slow.Status)
	assert.Equal(t, "GET /slow\nNetwork error: incomplete, no response before test end", slow.Message())
}

func TestCollector_Abort(t *testing.T) {
	c := newCollector(Config{})
	run, err := c.Begin("aborted", "a.spec.js")
	require.NoError(t, err)
	require.NoError(t, run.Add(record.New(record.TypeCommand, record.StatusSuccess, "visit\t/")))
	run.Open(record.New(record.TypeXHR, record.StatusInfo, "GET /never"))

	tr, err := c.Abort(run, "runner crashed")
	require.NoError(t, err)
	assert.True(t, tr.Failed())
	require.Len(t, tr.Records, 3)
	assert.Equal(t, "visit\t/", tr.Records[0].Summary)
	assert.Equal(t, record.StatusError, tr.Records[1].Status)
	assert.Equal(t, record.New(record.TypeLog, record.StatusError, "runner crashed").WithHook(record.HookTest), tr.Records[2])
}

func TestCollector_CollectTypes(t *testing.T) {
	c := newCollector(Config{CollectTypes: []record.Type{record.TypeCommand, record.TypeConsoleError}})

	c.Add(record.New(record.TypeLog, record.StatusInfo, "suite log"))
	run, err := c.Begin("filtered", "a.spec.js")
	require.NoError(t, err)
	require.NoError(t, run.Add(record.New(record.TypeCommand, record.StatusSuccess, "get")))
	require.NoError(t, run.Add(record.New(record.TypeConsoleLog, record.StatusInfo, "noise")))
	require.NoError(t, run.Add(record.New(record.TypeConsoleError, record.StatusError, "boom")))
	run.Open(record.New(record.TypeXHR, record.StatusInfo, "GET /dropped")).Fail("refused")

	tr, err := c.End(run, policy.Failed)
	require.NoError(t, err)
	assert.Equal(t, []string{"get", "boom"}, summaries(tr.Records))
}

func TestCollector_KeepAndTransform(t *testing.T) {
	c := newCollector(Config{
		Keep: func(r record.Record) bool {
			return !strings.Contains(r.Summary, "secret-skip")
		},
		Transform: func(r record.Record) record.Record {
			r.Summary = strings.ReplaceAll(r.Summary, "token=abc", "token=***")
			r.Type = record.TypeConsoleDebug
			r.Status = record.StatusSuccess
			return r
		},
	})

	run, err := c.Begin("filters", "a.spec.js")
	require.NoError(t, err)
	require.NoError(t, run.Add(record.New(record.TypeLog, record.StatusError, "GET /?token=abc")))
	require.NoError(t, run.Add(record.New(record.TypeLog, record.StatusInfo, "secret-skip")))

	tr, err := c.End(run, policy.Failed)
	require.NoError(t, err)
	require.Len(t, tr.Records, 1)
	got := tr.Records[0]
	assert.Equal(t, "GET /?token=***", got.Summary)
	assert.Equal(t, record.TypeLog, got.Type)
	assert.Equal(t, record.StatusError, got.Status)
}

func TestCollector_XHRDetailOptions(t *testing.T) {
	detail := record.Detail{
		StatusCode:      200,
		RequestHeaders:  record.NewBody(`{"accept":"*/*"}`),
		RequestBody:     record.NewBody(`{"q":1}`),
		ResponseHeaders: record.NewBody(`{"x":"y"}`),
		ResponseBody:    record.NewBody("ok"),
	}

	tests := []struct {
		name        string
		cfg         Config
		wantReqBody bool
		wantHeaders bool
	}{
		{"defaults", Config{}, false, false},
		{"request data", Config{PrintRequestData: true}, true, false},
		{"header data", Config{PrintHeaderData: true}, false, true},
		{"both", Config{PrintRequestData: true, PrintHeaderData: true}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCollector(tt.cfg)
			run, err := c.Begin("xhr", "a.spec.js")
			require.NoError(t, err)
			require.NoError(t, run.Add(record.New(record.TypeXHR, record.StatusSuccess, "GET /").WithDetail(detail)))
			tr, err := c.End(run, policy.Passed)
			require.NoError(t, err)

			d := tr.Records[0].Detail
			require.NotNil(t, d)
			assert.Equal(t, tt.wantReqBody, d.RequestBody != nil)
			assert.Equal(t, tt.wantHeaders, d.RequestHeaders != nil)
			assert.Equal(t, tt.wantHeaders, d.ResponseHeaders != nil)
			assert.NotNil(t, d.ResponseBody)
		})
	}
	assert.NotNil(t, detail.RequestBody)
}

func TestCollector_OnCollected(t *testing.T) {
	type call struct {
		title string
		count int
		last  *record.Record
	}
	var calls []call
	c := newCollector(Config{OnCollected: func(title string, count int, last *record.Record) {
		calls = append(calls, call{title, count, last})
	}})

	run, err := c.Begin("empty", "a.spec.js")
	require.NoError(t, err)
	_, err = c.End(run, policy.Passed)
	require.NoError(t, err)

	run, err = c.Begin("two logs", "a.spec.js")
	require.NoError(t, err)
	require.NoError(t, run.Add(record.New(record.TypeLog, record.StatusInfo, "one")))
	require.NoError(t, run.Add(record.New(record.TypeConsoleWarn, record.StatusWarning, "two")))
	_, err = c.End(run, policy.Passed)
	require.NoError(t, err)

	require.Len(t, calls, 2)
	assert.Equal(t, "empty", calls[0].title)
	assert.Equal(t, 0, calls[0].count)
	assert.Nil(t, calls[0].last)
	assert.Equal(t, 2, calls[1].count)
	require.NotNil(t, calls[1].last)
	assert.Equal(t, "two", calls[1].last.Summary)
}

func TestCollector_ConcurrentResolve(t *testing.T) {
	c := newCollector(Config{})
	run, err := c.Begin("parallel", "a.spec.js")
	require.NoError(t, err)

	const n = 50
	exchanges := make([]*Exchange, n)
	for i := range exchanges {
		exchanges[i] = run.Open(record.New(record.TypeRequest, record.StatusInfo, "GET /"))
	}

	var wg sync.WaitGroup
	for _, ex := range exchanges {
		wg.Add(1)
		go func(ex *Exchange) {
			defer wg.Done()
			ex.Resolve(record.StatusSuccess, record.Detail{StatusCode: 200})
		}(ex)
	}
	wg.Wait()

	tr, err := c.End(run, policy.Passed)
	require.NoError(t, err)
	assert.Len(t, tr.Records, n)
	for _, r := range tr.Records {
		assert.Equal(t, record.StatusSuccess, r.Status)
	}
}

func TestCollector_HasPending(t *testing.T) {
	c := newCollector(Config{})
	assert.False(t, c.HasPending())

	c.Add(record.New(record.TypeLog, record.StatusInfo, "seed"))
	assert.True(t, c.HasPending())

	_, err := c.Begin("t", "a.spec.js")
	require.NoError(t, err)
	assert.False(t, c.HasPending())
}
