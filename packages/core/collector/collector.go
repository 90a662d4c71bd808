package collector

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/abdul-hamid-achik/termreport/packages/policy"
	"github.com/abdul-hamid-achik/termreport/packages/record"
)

// AfterAllTitle is the title of the run returned by EndSuite.
const AfterAllTitle = `"after all" hook`

// IncompleteError is the network error of exchanges unresolved at test end.
const IncompleteError = "incomplete, no response before test end"

var (
	// ErrRunActive is returned by Begin while another run is active.
	ErrRunActive = errors.New("a test run is already active")
	// ErrRunNotActive is returned when ending a run that is not the active one.
	ErrRunNotActive = errors.New("test run is not active")
	// ErrRunSealed is returned when adding to a run that already ended.
	ErrRunSealed = errors.New("test run is sealed")
)

// KeepFunc decides whether a record is retained.
type KeepFunc func(r record.Record) bool

// TransformFunc rewrites a record's content. Type and status changes are
// discarded.
type TransformFunc func(r record.Record) record.Record

// CollectedFunc is called when a run is sealed with the number of records
// kept and the last one, or nil when the run is empty.
type CollectedFunc func(title string, count int, last *record.Record)

// Config controls which records are retained and how.
type Config struct {
	// CollectTypes restricts collection to these types. Empty collects all.
	CollectTypes []record.Type
	Keep         KeepFunc
	Transform    TransformFunc
	// PrintRequestData keeps request bodies on network records.
	PrintRequestData bool
	// PrintHeaderData keeps request and response headers on network records.
	PrintHeaderData bool
	OnCollected     CollectedFunc
}

// TestRun is a sealed run, ready to be reported.
type TestRun struct {
	ID         string
	Title      string
	SourcePath string
	Outcome    policy.Outcome
	Records    []record.Record
}

// Failed reports whether the run failed.
func (t *TestRun) Failed() bool {
	return t.Outcome == policy.Failed
}

// Collector builds test runs from incoming records.
type Collector struct {
	cfg     Config
	allowed map[record.Type]bool
	log     logrus.FieldLogger

	mu      sync.Mutex
	active  *Run
	pending []record.Record
}

// New creates a collector.
func New(log logrus.FieldLogger, cfg Config) *Collector {
	c := &Collector{
		cfg: cfg,
		log: log.WithField("component", "collector"),
	}
	if len(cfg.CollectTypes) > 0 {
		c.allowed = make(map[record.Type]bool, len(cfg.CollectTypes))
		for _, t := range cfg.CollectTypes {
			c.allowed[t] = true
		}
	}
	return c
}

// Begin starts a run. Suite-level records collected since the previous run
// are prepended to it.
func (c *Collector) Begin(title, sourcePath string) (*Run, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != nil {
		return nil, errors.Wrapf(ErrRunActive, "beginning %q while %q is running", title, c.active.title)
	}

	run := &Run{
		c:          c,
		id:         uuid.NewString(),
		title:      title,
		sourcePath: sourcePath,
	}
	for _, r := range c.pending {
		if r.Hook == "" {
			r.Hook = record.HookBefore
		}
		run.records = append(run.records, r)
	}
	c.pending = nil
	c.active = run

	c.log.WithFields(logrus.Fields{"test": title, "run": run.id}).Debug("Test run started")
	return run, nil
}

// Add records r at suite level when no run is active, or on the active run.
func (c *Collector) Add(r record.Record) {
	c.mu.Lock()
	run := c.active
	if run == nil {
		if kept, ok := c.filter(r); ok {
			c.pending = append(c.pending, kept)
		}
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	// The run may be sealed between the lookup and the append; the record
	// then belongs to whatever comes next.
	if err := run.Add(r); errors.Is(err, ErrRunSealed) {
		c.Add(r)
	}
}

// HasPending reports whether suite-level records are waiting for a run.
func (c *Collector) HasPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending) > 0
}

// Active returns the active run, or nil.
func (c *Collector) Active() *Run {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// End seals run with outcome.
func (c *Collector) End(run *Run, outcome policy.Outcome) (*TestRun, error) {
	return c.seal(run, outcome, "")
}

// Abort seals run as failed and appends an error log record with reason.
func (c *Collector) Abort(run *Run, reason string) (*TestRun, error) {
	if reason == "" {
		reason = "test aborted"
	}
	return c.seal(run, policy.Failed, reason)
}

// EndSuite returns the records collected after the last test as a run, or
// nil when there are none.
func (c *Collector) EndSuite(sourcePath string) *TestRun {
	c.mu.Lock()
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}
	for i := range pending {
		if pending[i].Hook == "" {
			pending[i].Hook = record.HookAfter
		}
	}
	outcome := policy.Passed
	for _, r := range pending {
		if r.IsError() {
			outcome = policy.Failed
			break
		}
	}
	tr := &TestRun{
		ID:         uuid.NewString(),
		Title:      AfterAllTitle,
		SourcePath: sourcePath,
		Outcome:    outcome,
		Records:    pending,
	}
	c.notify(tr)
	return tr
}

func (c *Collector) seal(run *Run, outcome policy.Outcome, reason string) (*TestRun, error) {
	c.mu.Lock()
	if run == nil || c.active != run {
		c.mu.Unlock()
		return nil, ErrRunNotActive
	}
	c.active = nil
	c.mu.Unlock()

	records := run.seal(reason)
	tr := &TestRun{
		ID:         run.id,
		Title:      run.title,
		SourcePath: run.sourcePath,
		Outcome:    outcome,
		Records:    records,
	}
	c.log.WithFields(logrus.Fields{
		"test":    tr.Title,
		"run":     tr.ID,
		"outcome": tr.Outcome,
		"records": len(tr.Records),
	}).Debug("Test run sealed")
	c.notify(tr)
	return tr, nil
}

func (c *Collector) notify(tr *TestRun) {
	if c.cfg.OnCollected == nil {
		return
	}
	var last *record.Record
	if n := len(tr.Records); n > 0 {
		r := tr.Records[n-1].Clone()
		last = &r
	}
	c.cfg.OnCollected(tr.Title, len(tr.Records), last)
}

// filter applies the type allow-list, the keep predicate, the xhr detail
// options and the transform, in that order.
func (c *Collector) filter(r record.Record) (record.Record, bool) {
	if c.allowed != nil && !c.allowed[r.Type] {
		return r, false
	}
	if c.cfg.Keep != nil && !c.cfg.Keep(r.Clone()) {
		return r, false
	}
	r = c.trimDetail(r)
	if c.cfg.Transform != nil {
		t := c.cfg.Transform(r.Clone())
		t.Type = r.Type
		t.Status = r.Status
		r = t
	}
	return r, true
}

func (c *Collector) trimDetail(r record.Record) record.Record {
	if r.Detail == nil {
		return r
	}
	r = r.Clone()
	if !c.cfg.PrintRequestData {
		r.Detail.RequestBody = nil
	}
	if !c.cfg.PrintHeaderData {
		r.Detail.RequestHeaders = nil
		r.Detail.ResponseHeaders = nil
	}
	return r
}
