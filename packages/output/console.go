package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/abdul-hamid-achik/termreport/packages/record"
)

// NoticePrefix starts every pipeline notice printed to the console.
const NoticePrefix = "[termreport]"

// ConsoleFormatter prints sequences and pipeline notices to a terminal.
// Label and icon are colored by record status.
type ConsoleFormatter struct {
	writer  io.Writer
	layout  Layout
	noColor bool
	colors  map[record.Status]*color.Color
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
		layout: NewLayout(record.DefaultIcons()),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.colors = map[record.Status]*color.Color{
		record.StatusSuccess: color.New(color.FgGreen),
		record.StatusWarning: color.New(color.FgYellow),
		record.StatusError:   color.New(color.FgRed),
		record.StatusInfo:    color.New(color.FgWhite),
	}
	if f.noColor {
		for _, c := range f.colors {
			c.DisableColor()
		}
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func WithIcons(icons record.IconSet) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.layout = NewLayout(icons)
	}
}

func (f *ConsoleFormatter) paint(status record.Status, head string) string {
	c, ok := f.colors[status]
	if !ok {
		return head
	}
	return c.Sprint(head)
}

// FormatTitle prints the test a sequence belongs to.
func (f *ConsoleFormatter) FormatTitle(spec, title string, failed bool) {
	c := f.colors[record.StatusSuccess]
	if failed {
		c = f.colors[record.StatusError]
	}
	fmt.Fprintf(f.writer, "%s\n    %s\n", spec, c.Sprint(title))
}

// FormatSequence prints a test's entries surrounded by blank lines.
func (f *ConsoleFormatter) FormatSequence(seq record.Sequence) {
	fmt.Fprintf(f.writer, "\n%s\n", f.layout.Sequence(seq, f.paint))
}

// Notice prints a one-line pipeline message.
func (f *ConsoleFormatter) Notice(format string, args ...any) {
	fmt.Fprintf(f.writer, "%s %s\n", NoticePrefix, fmt.Sprintf(format, args...))
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := f.colors[record.StatusError].SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	bold := color.New(color.Bold)
	if f.noColor {
		bold.DisableColor()
	}
	fmt.Fprintf(f.writer, "%s %s\n", bold.Sprint("termreport"), version)
}
