package reporter

import (
	"fmt"
	"io"

	"github.com/abdul-hamid-achik/termreport/packages/core/collector"
	"github.com/abdul-hamid-achik/termreport/packages/core/config"
	"github.com/abdul-hamid-achik/termreport/packages/record"
)

// SummaryCallback is the name of the built-in collectTestLogs callback.
const SummaryCallback = "summary"

// Summary returns a callback printing how many records each test collected
// and which came last.
func Summary(w io.Writer) collector.CollectedFunc {
	return func(title string, count int, last *record.Record) {
		if last == nil {
			fmt.Fprintf(w, "Collected %d logs for test %q\n", count, title)
			return
		}
		fmt.Fprintf(w, "Collected %d logs for test %q, last log: %s,%s,%s\n", count, title, last.Type, last.Message(), last.Status)
	}
}

// RegisterBuiltins adds the callbacks that need an output stream.
func RegisterBuiltins(reg *config.Registry, w io.Writer) {
	reg.RegisterCallback(SummaryCallback, Summary(w))
}
