package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/termreport/packages/core/config"
	"github.com/abdul-hamid-achik/termreport/packages/core/reporter"
	"github.com/abdul-hamid-achik/termreport/packages/output"
	"github.com/abdul-hamid-achik/termreport/packages/policy"
	"github.com/abdul-hamid-achik/termreport/packages/stats"
	"github.com/abdul-hamid-achik/termreport/packages/writer"
)

var renderCmd = &cobra.Command{
	Use:   "render <events.jsonl|->",
	Short: "Render a recorded event stream",
	Long: `Replay events recorded during a test run, one JSON object per line, and
print or write the logs of each test according to the configured policies.

Examples:
  termreport render events.jsonl
  termreport render events.jsonl --console always --compact 3
  termreport render - < events.jsonl
  termreport render events.jsonl --watch --stats`,
	Args: cobra.ExactArgs(1),
	RunE: renderCommand,
}

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

var (
	watchFlag      bool
	statsFlag      bool
	statsFileFlag  string
	outputRootFlag string
	consoleFlag    string
	fileFlag       string
	compactFlag    int
)

func init() {
	renderCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch the event file and re-render on change")
	renderCmd.Flags().BoolVar(&statsFlag, "stats", getEnvBool("TERMREPORT_STATS", false), "Print suite statistics after rendering (env: TERMREPORT_STATS)")
	renderCmd.Flags().StringVar(&statsFileFlag, "stats-file", getEnvString("TERMREPORT_STATS_FILE", ""), "Write suite statistics as JSON to this file (env: TERMREPORT_STATS_FILE)")
	renderCmd.Flags().StringVarP(&outputRootFlag, "output-root", "o", getEnvString("TERMREPORT_OUTPUT_ROOT", ""), "Directory report files are written to (env: TERMREPORT_OUTPUT_ROOT)")
	renderCmd.Flags().StringVar(&consoleFlag, "console", getEnvString("TERMREPORT_CONSOLE", ""), "Console policy: always, never, onFail (env: TERMREPORT_CONSOLE)")
	renderCmd.Flags().StringVar(&fileFlag, "file", getEnvString("TERMREPORT_FILE", ""), "File policy: always, never, onFail (env: TERMREPORT_FILE)")
	renderCmd.Flags().IntVar(&compactFlag, "compact", getEnvInt("TERMREPORT_COMPACT", -1), "Records kept around each error, -1 keeps the configured value (env: TERMREPORT_COMPACT)")
}

// applyRenderFlags overrides configured options with command line flags.
func applyRenderFlags(opts *config.Options) error {
	if outputRootFlag != "" {
		opts.OutputRoot = outputRootFlag
	}
	for _, f := range []struct {
		name  string
		value string
		dst   *policy.Mode
	}{
		{"console", consoleFlag, &opts.Policy.Console},
		{"file", fileFlag, &opts.Policy.File},
	} {
		if f.value == "" {
			continue
		}
		mode, err := policy.ParseMode(f.value)
		if err != nil {
			return errors.Mark(errors.Wrapf(err, "--%s", f.name), errUsage)
		}
		*f.dst = mode
	}
	if compactFlag >= 0 {
		n := compactFlag
		opts.CompactLogs = &n
	}
	return nil
}

func renderCommand(cmd *cobra.Command, args []string) error {
	source := args[0]
	if watchFlag && source == "-" {
		return errors.Mark(errors.New("--watch needs an event file, not stdin"), errUsage)
	}

	out := cmd.OutOrStdout()
	log := newLogger(cmd.ErrOrStderr(), verboseFlag)

	opts, path, err := loadOptions(out)
	if err != nil {
		return err
	}
	if path != "" {
		log.WithField("path", path).Debug("Loaded config")
	}
	if err := applyRenderFlags(opts); err != nil {
		return err
	}

	console := output.NewConsoleFormatter(
		output.WithWriter(out),
		output.WithNoColor(noColorFlag),
		output.WithIcons(opts.Icons),
	)
	rep, err := reporter.New(log, opts, console)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	failed, err := render(ctx, cmd, rep, source)
	if !watchFlag {
		if err != nil {
			return err
		}
		if failed > 0 {
			return errTestsFailed
		}
		return nil
	}
	if err != nil {
		console.FormatError(err)
	}
	return watch(ctx, cmd, rep, console, source)
}

// render replays source once and returns the number of failed tests.
func render(ctx context.Context, cmd *cobra.Command, rep *reporter.Reporter, source string) (int, error) {
	var in io.Reader = cmd.InOrStdin()
	if source != "-" {
		f, err := os.Open(source)
		if err != nil {
			return 0, errors.Wrap(err, "opening event stream")
		}
		defer f.Close()
		in = f
	}

	results, err := rep.ReplayStream(ctx, in)
	var werr *writer.WriteError
	if err != nil && !errors.As(err, &werr) && ctx.Err() == nil {
		err = errors.Mark(err, errBadStream)
	}

	failed := 0
	for _, res := range results {
		if res.Run.Failed() {
			failed++
		}
	}

	summary := rep.Metrics().GetSummary()
	if statsFlag {
		stats.NewReporter(
			stats.WithWriter(cmd.OutOrStdout()),
			stats.WithNoColor(noColorFlag),
		).Print(summary)
	}
	if statsFileFlag != "" {
		if serr := writeStats(statsFileFlag, summary); serr != nil && err == nil {
			err = serr
		}
	}
	return failed, err
}

func writeStats(path string, summary *stats.Summary) error {
	data, err := stats.MarshalJSON(summary, time.Now())
	if err != nil {
		return err
	}
	return errors.Wrap(writer.AtomicWriteFile(path, data, 0o644), "writing statistics")
}

func watch(ctx context.Context, cmd *cobra.Command, rep *reporter.Reporter, console *output.ConsoleFormatter, source string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create file watcher")
	}
	defer watcher.Close()

	target := filepath.Clean(source)
	// Writers often replace the file, so the directory is watched.
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return errors.Wrapf(err, "failed to watch %s", target)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nWatching for changes... (press Ctrl+C to stop)\n\n")

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				debounce = time.After(WatchDebounceDelay)
			}

		case <-debounce:
			debounce = nil
			fmt.Fprintf(out, "\n\nFile changed: %s\nRe-rendering...\n\n", source)
			rep.Reset()
			if _, err := render(ctx, cmd, rep, source); err != nil {
				console.FormatError(err)
			}
			fmt.Fprintf(out, "\nWatching for changes... (press Ctrl+C to stop)\n")

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			console.FormatError(errors.Wrap(err, "watcher error"))
		}
	}
}
