package compact

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/termreport/packages/record"
)

func ok(n int) []record.Record {
	out := make([]record.Record, n)
	for i := range out {
		out[i] = record.New(record.TypeCommand, record.StatusSuccess, fmt.Sprintf("ok-%d", i))
	}
	return out
}

func fail(summary string) record.Record {
	return record.New(record.TypeRequest, record.StatusError, summary)
}

func join(parts ...[]record.Record) []record.Record {
	var out []record.Record
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// describe renders a sequence as "M<n>" for markers and the summary otherwise.
func describe(seq record.Sequence) []string {
	out := make([]string, len(seq))
	for i, e := range seq {
		if e.IsMarker() {
			out[i] = fmt.Sprintf("M%d", e.Marker.Count)
		} else {
			out[i] = e.Record.Summary
		}
	}
	return out
}

func TestCompact_FailingRequestAmongSuccesses(t *testing.T) {
	// 17 records: 12 successes, one failure, 4 successes.
	records := join(ok(12), []record.Record{fail("PUT /comments")}, ok(4))
	require.Len(t, records, 17)

	seq := Compact(records, 1)

	assert.Equal(t, []string{"M11", "ok-11", "PUT /comments", "ok-0", "M3"}, describe(seq))
	assert.Equal(t, 17, seq.Count())
}

func TestCompact_NoErrorsCollapsesEverything(t *testing.T) {
	seq := Compact(ok(28), 1)
	require.Len(t, seq, 1)
	assert.Equal(t, 28, seq[0].Marker.Count)
}

func TestCompact_ShortRunsStayExpanded(t *testing.T) {
	records := join(ok(2), []record.Record{fail("a")}, ok(1), []record.Record{fail("b")})
	seq := Compact(records, 2)
	assert.Equal(t, []string{"ok-0", "ok-1", "a", "ok-0", "b"}, describe(seq))
}

func TestCompact_RunsSplitByContextAreNotMerged(t *testing.T) {
	// Two errors far apart; the gap between their windows is its own run.
	records := join([]record.Record{fail("e1")}, ok(6), []record.Record{fail("e2")}, ok(5))
	seq := Compact(records, 1)
	assert.Equal(t, []string{"e1", "ok-0", "M4", "ok-5", "e2", "ok-0", "M4"}, describe(seq))
	assert.Equal(t, len(records), seq.Count())
}

func TestCompact_AdjacentErrorWindowsOverlap(t *testing.T) {
	records := join(ok(3), []record.Record{fail("e1"), fail("e2")}, ok(3))
	seq := Compact(records, 1)
	assert.Equal(t, []string{"M2", "ok-2", "e1", "e2", "ok-0", "M2"}, describe(seq))
}

func TestCompact_ZeroContext(t *testing.T) {
	records := join(ok(1), []record.Record{fail("e")}, ok(1))
	seq := Compact(records, 0)
	assert.Equal(t, []string{"M1", "e", "M1"}, describe(seq))
}

func TestCompact_Empty(t *testing.T) {
	seq := Compact(nil, 1)
	assert.Empty(t, seq)
	assert.Equal(t, 0, seq.Count())
}

func TestCompact_MarkerInheritsDepth(t *testing.T) {
	records := ok(4)
	for i := range records {
		records[i] = records[i].WithDepth(2)
	}
	seq := Compact(records, 1)
	require.Len(t, seq, 1)
	assert.Equal(t, 2, seq[0].Depth())
}

func TestCompact_DoesNotMutateInput(t *testing.T) {
	records := join(ok(5), []record.Record{fail("e")})
	before := make([]record.Record, len(records))
	copy(before, records)

	_ = Compact(records, 1)
	assert.Equal(t, before, records)
}

func TestCompact_Properties(t *testing.T) {
	// Exhaustive check over every error placement in small sequences.
	for n := 0; n <= 9; n++ {
		for mask := 0; mask < 1<<n; mask++ {
			records := make([]record.Record, n)
			for i := range records {
				status := record.StatusSuccess
				if mask&(1<<i) != 0 {
					status = record.StatusError
				}
				records[i] = record.New(record.TypeLog, status, fmt.Sprintf("r%d", i))
			}
			for ctx := 0; ctx <= 2; ctx++ {
				seq := Compact(records, ctx)
				require.Equal(t, n, seq.Count(), "count n=%d mask=%b ctx=%d", n, mask, ctx)

				kept := map[string]bool{}
				for _, e := range seq {
					if e.Record != nil {
						kept[e.Record.Summary] = true
					}
					if e.Marker != nil {
						require.Positive(t, e.Marker.Count)
					}
				}
				for i, r := range records {
					if !r.IsError() {
						continue
					}
					for j := max(i-ctx, 0); j <= min(i+ctx, n-1); j++ {
						assert.True(t, kept[records[j].Summary], "context lost n=%d mask=%b ctx=%d i=%d j=%d", n, mask, ctx, i, j)
					}
				}
			}
		}
	}
}
