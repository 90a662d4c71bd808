package reporter

import (
	"context"
	"io"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"

	"github.com/abdul-hamid-achik/termreport/packages/compact"
	"github.com/abdul-hamid-achik/termreport/packages/core/collector"
	"github.com/abdul-hamid-achik/termreport/packages/core/config"
	"github.com/abdul-hamid-achik/termreport/packages/ingest"
	"github.com/abdul-hamid-achik/termreport/packages/output"
	"github.com/abdul-hamid-achik/termreport/packages/policy"
	"github.com/abdul-hamid-achik/termreport/packages/record"
	"github.com/abdul-hamid-achik/termreport/packages/stats"
	"github.com/abdul-hamid-achik/termreport/packages/writer"
)

// UnfinishedReason is the abort reason of a test still running at suite end.
const UnfinishedReason = "test did not finish before the end of the suite"

// ErrNoActiveTest is returned for test:end and test:abort without a test.
var ErrNoActiveTest = errors.New("no active test")

// Result is the disposition of one reported run.
type Result struct {
	Run      *collector.TestRun
	Sequence record.Sequence
	Decision policy.Decision
	Paths    []string
}

// Reporter turns events into reports.
type Reporter struct {
	opts    *config.Options
	base    logrus.FieldLogger
	log     logrus.FieldLogger
	console *output.ConsoleFormatter

	collector *collector.Collector
	writer    *writer.Writer
	metrics   *stats.Metrics

	spec      string
	exchanges map[string]*pendingExchange
}

type pendingExchange struct {
	exchange ingest.Exchange
	// open is nil for exchanges issued outside a test.
	open *collector.Exchange
}

// New builds a reporter. Options are validated first.
func New(log logrus.FieldLogger, opts *config.Options, console *output.ConsoleFormatter) (*Reporter, error) {
	if opts == nil {
		opts = config.DefaultOptions()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if console == nil {
		console = output.NewConsoleFormatter(output.WithIcons(opts.Icons))
	}

	r := &Reporter{
		opts:    opts,
		base:    log,
		log:     log.WithField("component", "reporter"),
		console: console,
		writer:  writer.New(log, writer.ConfigFromOptions(opts), console),
	}
	r.Reset()
	return r, nil
}

// Reset starts over as if the process had just started: accumulated report
// files are replaced on their next write and statistics are cleared.
func (r *Reporter) Reset() {
	r.collector = collector.New(r.base, r.opts.Collector())
	r.writer.Reset()
	r.metrics = stats.NewMetrics()
	r.spec = ""
	r.exchanges = make(map[string]*pendingExchange)
}

// Collector returns the collector events are fed into.
func (r *Reporter) Collector() *collector.Collector { return r.collector }

// Metrics returns the suite statistics gathered so far.
func (r *Reporter) Metrics() *stats.Metrics { return r.metrics }

// Sequence applies compaction to records when it is enabled.
func (r *Reporter) Sequence(records []record.Record) record.Sequence {
	if r.opts.CompactLogs == nil {
		return record.Expand(records)
	}
	return compact.Compact(records, *r.opts.CompactLogs)
}

// Report routes a sealed run to the console and the report files.
func (r *Reporter) Report(ctx context.Context, tr *collector.TestRun) (*Result, error) {
	res := &Result{
		Run:      tr,
		Sequence: r.Sequence(tr.Records),
		Decision: policy.Decide(tr.Outcome, r.opts.Policy),
	}
	r.metrics.Observe(tr.Outcome, tr.Records)

	if res.Decision.ToConsole {
		r.console.FormatTitle(tr.SourcePath, tr.Title, tr.Failed())
		r.console.FormatSequence(res.Sequence)
	}

	paths, err := r.writer.Write(ctx, tr, res.Sequence, res.Decision)
	res.Paths = paths

	r.log.WithFields(logrus.Fields{
		"test":    tr.Title,
		"run":     tr.ID,
		"console": res.Decision.ToConsole,
		"files":   len(paths),
	}).Debug("Test reported")
	return res, err
}

// Handle applies one event. Reported runs are returned as they are sealed.
func (r *Reporter) Handle(ctx context.Context, ev ingest.Event) ([]*Result, error) {
	switch ev.Kind {
	case ingest.SuiteStart:
		r.spec = ev.Spec
	case ingest.TestStart:
		spec := ev.Spec
		if spec == "" {
			spec = r.spec
		}
		if _, err := r.collector.Begin(ev.Title, spec); err != nil {
			return nil, err
		}
	case ingest.Log:
		r.collector.Add(*ev.Record)
	case ingest.ExchangeOpen:
		r.open(*ev.Exchange)
	case ingest.ExchangeResolve:
		r.resolve(*ev.Response)
	case ingest.TestEnd, ingest.TestAbort:
		run := r.collector.Active()
		if run == nil {
			return nil, errors.Wrapf(ErrNoActiveTest, "%s", ev.Kind)
		}
		res, err := r.seal(ctx, run, ev)
		if res == nil {
			return nil, err
		}
		return []*Result{res}, err
	case ingest.SuiteEnd:
		return r.endSuite(ctx)
	}
	return nil, nil
}

func (r *Reporter) open(x ingest.Exchange) {
	p := &pendingExchange{exchange: x}
	if run := r.collector.Active(); run != nil {
		p.open = run.Open(x.Record())
	}
	r.exchanges[x.ID] = p
}

func (r *Reporter) resolve(resp ingest.Response) {
	p, ok := r.exchanges[resp.ID]
	if !ok {
		r.log.WithField("exchange", resp.ID).Warn("Response for unknown exchange")
		return
	}
	delete(r.exchanges, resp.ID)

	rec := p.exchange.Resolve(resp)
	if p.open == nil {
		r.collector.Add(rec)
		return
	}
	if !p.open.Complete(rec) {
		r.log.WithField("exchange", resp.ID).Debug("Response arrived after its test ended")
	}
}

func (r *Reporter) seal(ctx context.Context, run *collector.Run, ev ingest.Event) (*Result, error) {
	var tr *collector.TestRun
	var err error
	if ev.Kind == ingest.TestAbort {
		tr, err = r.collector.Abort(run, ev.Reason)
	} else {
		tr, err = r.collector.End(run, ev.Outcome)
	}
	if err != nil {
		return nil, err
	}

	// Exchanges of the sealed run can no longer complete.
	for id, p := range r.exchanges {
		if p.open != nil {
			delete(r.exchanges, id)
		}
	}
	return r.Report(ctx, tr)
}

func (r *Reporter) endSuite(ctx context.Context) ([]*Result, error) {
	var results []*Result
	var errs []error

	if run := r.collector.Active(); run != nil {
		res, err := r.seal(ctx, run, ingest.Event{Kind: ingest.TestAbort, Reason: UnfinishedReason})
		if res != nil {
			results = append(results, res)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}

	ids := make([]string, 0, len(r.exchanges))
	for id := range r.exchanges {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		p := r.exchanges[id]
		r.collector.Add(p.exchange.Resolve(ingest.Response{ID: id, NetworkError: collector.IncompleteError}))
		delete(r.exchanges, id)
	}

	if tr := r.collector.EndSuite(r.spec); tr != nil {
		res, err := r.Report(ctx, tr)
		results = append(results, res)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return results, combine(errs)
}

// ReplayStream feeds every event of a JSON lines stream through the
// reporter. Decoding and lifecycle errors stop the replay; report file
// failures are collected and returned once the stream is exhausted. However
// the stream ends, a test still running is aborted and reported together
// with any records held at suite level.
func (r *Reporter) ReplayStream(ctx context.Context, in io.Reader) ([]*Result, error) {
	dec := ingest.NewDecoder(r.log, in)
	var results []*Result
	var writeErrs []error

	stop := func(err error) ([]*Result, error) {
		res, ferr := r.flush(ctx)
		results = append(results, res...)
		if ferr != nil {
			writeErrs = append(writeErrs, ferr)
		}
		if err != nil {
			return results, err
		}
		return results, combine(writeErrs)
	}

	for {
		if err := ctx.Err(); err != nil {
			return stop(err)
		}
		ev, err := dec.Next()
		if errors.Is(err, io.EOF) {
			return stop(nil)
		}
		if err != nil {
			return stop(err)
		}

		res, err := r.Handle(ctx, ev)
		results = append(results, res...)
		if err == nil {
			continue
		}
		var werr *writer.WriteError
		if !errors.As(err, &werr) {
			return stop(errors.Wrapf(err, "line %d", ev.Line))
		}
		writeErrs = append(writeErrs, err)
	}
}

// flush ends the suite when a stream stops without suite:end. Reports are
// still written when ctx is canceled.
func (r *Reporter) flush(ctx context.Context) ([]*Result, error) {
	if r.collector.Active() == nil && !r.collector.HasPending() && len(r.exchanges) == 0 {
		return nil, nil
	}
	r.log.Warn("Event stream ended inside a suite, reporting what was collected")
	return r.endSuite(context.WithoutCancel(ctx))
}

// combine merges write failures into one *writer.WriteError. Other errors
// are returned first.
func combine(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	merged := &writer.WriteError{}
	for _, err := range errs {
		var werr *writer.WriteError
		if !errors.As(err, &werr) {
			return err
		}
		merged.Targets = append(merged.Targets, werr.Targets...)
	}
	return merged
}
