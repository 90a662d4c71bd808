package stats

import (
	"sort"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/abdul-hamid-achik/termreport/packages/policy"
	"github.com/abdul-hamid-achik/termreport/packages/record"
)

// maxLatencyUs bounds recorded exchange durations to one minute.
const maxLatencyUs = 60_000_000

// Metrics collects statistics over the runs of a suite. It is safe for
// concurrent use.
type Metrics struct {
	mu sync.Mutex

	tests   int64
	failed  int64
	records int64
	errors  int64
	byType  map[record.Type]int64

	// Exchange latency in microseconds
	histogram *hdrhistogram.Histogram
	exchanges map[record.Type]*hdrhistogram.Histogram
}

// NewMetrics creates an empty collector.
func NewMetrics() *Metrics {
	return &Metrics{
		byType:    make(map[record.Type]int64),
		histogram: newHistogram(),
		exchanges: make(map[record.Type]*hdrhistogram.Histogram),
	}
}

func newHistogram() *hdrhistogram.Histogram {
	// 1us to 60s range, 3 significant digits
	return hdrhistogram.New(1, maxLatencyUs, 3)
}

// Observe accounts for one sealed run.
func (m *Metrics) Observe(outcome policy.Outcome, records []record.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tests++
	if outcome == policy.Failed {
		m.failed++
	}
	for _, r := range records {
		m.records++
		m.byType[r.Type]++
		if r.IsError() {
			m.errors++
		}
		if r.Detail == nil || r.Detail.DurationMs <= 0 {
			continue
		}
		latencyUs := clamp(r.Detail.DurationMs * 1000)
		_ = m.histogram.RecordValue(latencyUs)
		h, ok := m.exchanges[r.Type]
		if !ok {
			h = newHistogram()
			m.exchanges[r.Type] = h
		}
		_ = h.RecordValue(latencyUs)
	}
}

func clamp(us int64) int64 {
	if us < 1 {
		return 1
	}
	if us > maxLatencyUs {
		return maxLatencyUs
	}
	return us
}

// Summary is a point-in-time view of the metrics.
type Summary struct {
	Tests   int64
	Passed  int64
	Failed  int64
	Records int64
	Errors  int64

	// Record counts per type, in display order
	ByType []TypeCount

	Exchanges Latency
	// Per-type exchange latency
	ExchangeBreakdown map[record.Type]Latency
}

// TypeCount is the number of records of one type.
type TypeCount struct {
	Type  record.Type
	Count int64
}

// Latency summarizes a set of exchange durations.
type Latency struct {
	Count int64
	P50   time.Duration
	P95   time.Duration
	P99   time.Duration
	Min   time.Duration
	Max   time.Duration
	Mean  time.Duration
}

func latencyOf(h *hdrhistogram.Histogram) Latency {
	if h.TotalCount() == 0 {
		return Latency{}
	}
	return Latency{
		Count: h.TotalCount(),
		P50:   time.Duration(h.ValueAtQuantile(50)) * time.Microsecond,
		P95:   time.Duration(h.ValueAtQuantile(95)) * time.Microsecond,
		P99:   time.Duration(h.ValueAtQuantile(99)) * time.Microsecond,
		Min:   time.Duration(h.Min()) * time.Microsecond,
		Max:   time.Duration(h.Max()) * time.Microsecond,
		Mean:  time.Duration(h.Mean()) * time.Microsecond,
	}
}

// GetSummary returns the metrics summary.
func (m *Metrics) GetSummary() *Summary {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := &Summary{
		Tests:             m.tests,
		Passed:            m.tests - m.failed,
		Failed:            m.failed,
		Records:           m.records,
		Errors:            m.errors,
		Exchanges:         latencyOf(m.histogram),
		ExchangeBreakdown: make(map[record.Type]Latency, len(m.exchanges)),
	}

	order := make(map[record.Type]int)
	for i, t := range record.Types() {
		order[t] = i
	}
	for t, n := range m.byType {
		s.ByType = append(s.ByType, TypeCount{Type: t, Count: n})
	}
	sort.Slice(s.ByType, func(i, j int) bool {
		return order[s.ByType[i].Type] < order[s.ByType[j].Type]
	})

	for t, h := range m.exchanges {
		s.ExchangeBreakdown[t] = latencyOf(h)
	}
	return s
}
