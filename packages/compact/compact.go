// Package compact collapses low-signal runs of records into omission markers
// while keeping the records that surround failures.
package compact

import "github.com/abdul-hamid-achik/termreport/packages/record"

// DefaultContext is the number of records kept on each side of an error
// when no explicit size is configured.
const DefaultContext = 1

// Compact keeps every error record plus the context records before and after
// it. Any other maximal run of k records becomes a single marker when
// k > context and is left expanded otherwise. The input is never modified.
func Compact(records []record.Record, context int) record.Sequence {
	if context < 0 {
		context = 0
	}

	keep := make([]bool, len(records))
	for i, r := range records {
		if !r.IsError() {
			continue
		}
		lo := max(i-context, 0)
		hi := min(i+context, len(records)-1)
		for j := lo; j <= hi; j++ {
			keep[j] = true
		}
	}

	seq := make(record.Sequence, 0, len(records))
	runStart := -1
	flush := func(end int) {
		if runStart < 0 {
			return
		}
		run := records[runStart:end]
		if len(run) > context {
			seq = append(seq, record.MarkerEntry(len(run), run[0].Depth))
		} else {
			for _, r := range run {
				seq = append(seq, record.RecordEntry(r))
			}
		}
		runStart = -1
	}

	for i, r := range records {
		if keep[i] {
			flush(i)
			seq = append(seq, record.RecordEntry(r))
			continue
		}
		if runStart < 0 {
			runStart = i
		}
	}
	flush(len(records))

	return seq
}
