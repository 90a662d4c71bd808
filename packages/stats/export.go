package stats

import (
	"encoding/json"
	"io"
	"time"

	"github.com/cockroachdb/errors"
)

// JSONOutput is the exported form of a Summary. Durations are milliseconds.
type JSONOutput struct {
	GeneratedAt string                 `json:"generated_at"`
	Tests       int64                  `json:"tests"`
	Passed      int64                  `json:"passed"`
	Failed      int64                  `json:"failed"`
	Records     int64                  `json:"records"`
	Errors      int64                  `json:"errors"`
	ByType      map[string]int64       `json:"by_type"`
	Exchanges   JSONLatency            `json:"exchanges"`
	ByExchange  map[string]JSONLatency `json:"by_exchange_type,omitempty"`
}

// JSONLatency is the exported form of a Latency.
type JSONLatency struct {
	Count  int64   `json:"count"`
	MinMs  float64 `json:"min_ms"`
	MaxMs  float64 `json:"max_ms"`
	MeanMs float64 `json:"mean_ms"`
	P50Ms  float64 `json:"p50_ms"`
	P95Ms  float64 `json:"p95_ms"`
	P99Ms  float64 `json:"p99_ms"`
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func jsonLatency(l Latency) JSONLatency {
	return JSONLatency{
		Count:  l.Count,
		MinMs:  ms(l.Min),
		MaxMs:  ms(l.Max),
		MeanMs: ms(l.Mean),
		P50Ms:  ms(l.P50),
		P95Ms:  ms(l.P95),
		P99Ms:  ms(l.P99),
	}
}

// ToJSON converts s to its exported form.
func ToJSON(s *Summary, generatedAt time.Time) JSONOutput {
	out := JSONOutput{
		GeneratedAt: generatedAt.UTC().Format(time.RFC3339),
		Tests:       s.Tests,
		Passed:      s.Passed,
		Failed:      s.Failed,
		Records:     s.Records,
		Errors:      s.Errors,
		ByType:      make(map[string]int64, len(s.ByType)),
		Exchanges:   jsonLatency(s.Exchanges),
	}
	for _, tc := range s.ByType {
		out.ByType[string(tc.Type)] = tc.Count
	}
	if len(s.ExchangeBreakdown) > 0 {
		out.ByExchange = make(map[string]JSONLatency, len(s.ExchangeBreakdown))
		for t, l := range s.ExchangeBreakdown {
			out.ByExchange[string(t)] = jsonLatency(l)
		}
	}
	return out
}

// MarshalJSON encodes s as indented JSON followed by a newline.
func MarshalJSON(s *Summary, generatedAt time.Time) ([]byte, error) {
	data, err := json.MarshalIndent(ToJSON(s, generatedAt), "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal statistics")
	}
	return append(data, '\n'), nil
}

// ExportJSON writes s to w as JSON.
func ExportJSON(w io.Writer, s *Summary, generatedAt time.Time) error {
	data, err := MarshalJSON(s, generatedAt)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(err, "failed to write statistics")
	}
	return nil
}
