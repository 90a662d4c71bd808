package collector

import (
	"sync"

	"github.com/abdul-hamid-achik/termreport/packages/record"
)

// Run is the active, unsealed capture of one test.
type Run struct {
	c          *Collector
	id         string
	title      string
	sourcePath string

	mu        sync.Mutex
	records   []record.Record
	exchanges []*Exchange
	sealed    bool
}

// ID returns the run's unique id.
func (r *Run) ID() string { return r.id }

// Title returns the test title.
func (r *Run) Title() string { return r.title }

// SourcePath returns the path of the file declaring the test.
func (r *Run) SourcePath() string { return r.sourcePath }

// Add appends rec in arrival order. Records rejected by the collector's
// filters are silently dropped.
func (r *Run) Add(rec record.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return ErrRunSealed
	}
	r.appendLocked(rec)
	return nil
}

// Open starts a network exchange described by rec. Nothing is appended
// until the exchange resolves or fails.
func (r *Run) Open(rec record.Record) *Exchange {
	r.mu.Lock()
	defer r.mu.Unlock()
	ex := &Exchange{run: r, request: rec}
	if !r.sealed {
		r.exchanges = append(r.exchanges, ex)
	} else {
		ex.done = true
	}
	return ex
}

// Len returns the number of records appended so far.
func (r *Run) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

func (r *Run) appendLocked(rec record.Record) {
	if rec.Hook == "" {
		rec.Hook = record.HookTest
	}
	if kept, ok := r.c.filter(rec); ok {
		r.records = append(r.records, kept)
	}
}

func (r *Run) seal(reason string) []record.Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ex := range r.exchanges {
		if ex.done {
			continue
		}
		ex.done = true
		r.appendLocked(ex.failed(IncompleteError))
	}
	r.exchanges = nil
	if reason != "" {
		r.appendLocked(record.New(record.TypeLog, record.StatusError, reason))
	}
	r.sealed = true
	return r.records
}

// Exchange is an in-flight network request.
type Exchange struct {
	run     *Run
	request record.Record
	done    bool
}

// Resolve appends the exchange record with the response detail and status.
// It reports false when the exchange already completed or its run ended.
func (e *Exchange) Resolve(status record.Status, d record.Detail) bool {
	rec := e.request.WithDetail(mergeDetail(e.request.Detail, d))
	rec.Status = status
	return e.Complete(rec)
}

// Fail appends the exchange record as an error carrying text as its
// network error.
func (e *Exchange) Fail(text string) bool {
	return e.Complete(e.failed(text))
}

func (e *Exchange) failed(text string) record.Record {
	d := record.Detail{NetworkError: text}
	rec := e.request.WithDetail(mergeDetail(e.request.Detail, d))
	rec.Status = record.StatusError
	return rec
}

// Request returns the record the exchange was opened with.
func (e *Exchange) Request() record.Record {
	return e.request.Clone()
}

// Complete appends rec as the exchange's final record. It reports false
// when the exchange already completed or its run ended.
func (e *Exchange) Complete(rec record.Record) bool {
	r := e.run
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.done || r.sealed {
		return false
	}
	e.done = true
	r.appendLocked(rec)
	return true
}

// mergeDetail keeps request-side parts captured at open time and overlays
// the response parts.
func mergeDetail(req *record.Detail, resp record.Detail) record.Detail {
	if req == nil {
		return resp
	}
	out := resp
	if out.RequestHeaders == nil {
		out.RequestHeaders = req.RequestHeaders
	}
	if out.RequestBody == nil {
		out.RequestBody = req.RequestBody
	}
	return out
}
