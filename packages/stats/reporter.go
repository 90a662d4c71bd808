package stats

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
)

// Reporter prints a Summary.
type Reporter struct {
	writer  io.Writer
	noColor bool

	green *color.Color
	red   *color.Color
	bold  *color.Color
	dim   *color.Color
}

// ReporterOption configures the reporter
type ReporterOption func(*Reporter)

// WithWriter sets the output writer
func WithWriter(w io.Writer) ReporterOption {
	return func(r *Reporter) {
		r.writer = w
	}
}

// WithNoColor disables colored output
func WithNoColor(noColor bool) ReporterOption {
	return func(r *Reporter) {
		r.noColor = noColor
	}
}

// NewReporter creates a new reporter
func NewReporter(opts ...ReporterOption) *Reporter {
	r := &Reporter{writer: os.Stdout}
	for _, opt := range opts {
		opt(r)
	}

	r.green = color.New(color.FgGreen)
	r.red = color.New(color.FgRed)
	r.bold = color.New(color.Bold)
	r.dim = color.New(color.Faint)
	if r.noColor {
		for _, c := range []*color.Color{r.green, r.red, r.bold, r.dim} {
			c.DisableColor()
		}
	}
	return r
}

// Print writes the summary block.
func (r *Reporter) Print(s *Summary) {
	fmt.Fprintln(r.writer)
	r.bold.Fprintln(r.writer, "Suite statistics")

	failed := fmt.Sprintf("%d failed", s.Failed)
	if s.Failed > 0 {
		failed = r.red.Sprint(failed)
	}
	fmt.Fprintf(r.writer, "  Tests:      %d (%s, %s)\n", s.Tests, r.green.Sprintf("%d passed", s.Passed), failed)
	fmt.Fprintf(r.writer, "  Records:    %d (%d errors)\n", s.Records, s.Errors)

	if len(s.ByType) > 0 {
		parts := make([]string, len(s.ByType))
		for i, tc := range s.ByType {
			parts[i] = fmt.Sprintf("%s %d", tc.Type, tc.Count)
		}
		fmt.Fprintf(r.writer, "  By type:    %s\n", strings.Join(parts, ", "))
	}

	if l := s.Exchanges; l.Count > 0 {
		fmt.Fprintf(r.writer, "  Exchanges:  %d  %s\n", l.Count, r.dim.Sprintf("p50=%s p95=%s p99=%s max=%s",
			formatDuration(l.P50), formatDuration(l.P95), formatDuration(l.P99), formatDuration(l.Max)))
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}
