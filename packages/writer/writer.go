package writer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/abdul-hamid-achik/termreport/packages/core/collector"
	"github.com/abdul-hamid-achik/termreport/packages/core/config"
	"github.com/abdul-hamid-achik/termreport/packages/output"
	"github.com/abdul-hamid-achik/termreport/packages/policy"
	"github.com/abdul-hamid-achik/termreport/packages/record"
)

// Notifier receives a confirmation line per written file.
type Notifier interface {
	Notice(format string, args ...any)
}

// Config locates report files.
type Config struct {
	OutputRoot string
	SpecRoot   string
	// Nested mirrors the source tree; target names are then extensions.
	Nested  bool
	Targets []config.Target
}

// ConfigFromOptions extracts the writer settings.
func ConfigFromOptions(o *config.Options) Config {
	return Config{
		OutputRoot: o.OutputRoot,
		SpecRoot:   o.SpecRoot,
		Nested:     o.NestedOutput,
		Targets:    o.Targets,
	}
}

// TargetError is the failure of a single target.
type TargetError struct {
	Target string
	Path   string
	Err    error
}

func (e *TargetError) Error() string {
	return fmt.Sprintf("writing %s to %s: %v", e.Target, e.Path, e.Err)
}

func (e *TargetError) Unwrap() error { return e.Err }

// WriteError collects the targets that failed during one Write.
type WriteError struct {
	Targets []*TargetError
}

func (e *WriteError) Error() string {
	msgs := make([]string, len(e.Targets))
	for i, t := range e.Targets {
		msgs[i] = t.Error()
	}
	return strings.Join(msgs, "; ")
}

func (e *WriteError) Unwrap() []error {
	errs := make([]error, len(e.Targets))
	for i, t := range e.Targets {
		errs[i] = t
	}
	return errs
}

// Writer appends test sections to report files.
type Writer struct {
	cfg      Config
	notifier Notifier
	log      logrus.FieldLogger

	mu    sync.Mutex
	files map[string]*file
}

// file is the accumulated content of one report path.
type file struct {
	mu       sync.Mutex
	sections []output.Section
}

// New creates a writer. notifier may be nil.
func New(log logrus.FieldLogger, cfg Config, notifier Notifier) *Writer {
	return &Writer{
		cfg:      cfg,
		notifier: notifier,
		log:      log.WithField("component", "writer"),
		files:    make(map[string]*file),
	}
}

// Path resolves where target writes the section of a test declared in
// sourcePath.
func (w *Writer) Path(t config.Target, sourcePath string) string {
	if w.cfg.Nested {
		return NestedPath(w.cfg.OutputRoot, w.cfg.SpecRoot, sourcePath, t.Name)
	}
	return FlatPath(w.cfg.OutputRoot, t.Name)
}

// Write adds run's section to every target and returns the written paths
// in target order. Nothing is touched when the decision excludes files.
// A failing target does not stop the others; failures are returned as a
// *WriteError after all targets finished.
func (w *Writer) Write(ctx context.Context, run *collector.TestRun, seq record.Sequence, decision policy.Decision) ([]string, error) {
	if !decision.ToFile || len(w.cfg.Targets) == 0 {
		return nil, nil
	}

	section := output.NewSection(run.SourcePath, run.Title, run.Outcome, seq)
	paths := make([]string, len(w.cfg.Targets))
	errs := make([]*TargetError, len(w.cfg.Targets))

	var g errgroup.Group
	for i, t := range w.cfg.Targets {
		path := w.Path(t, run.SourcePath)
		paths[i] = path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = &TargetError{Target: t.Name, Path: path, Err: err}
				return nil
			}
			if err := w.append(path, t.Encoder, section); err != nil {
				errs[i] = &TargetError{Target: t.Name, Path: path, Err: err}
			}
			return nil
		})
	}
	_ = g.Wait()

	var written []string
	var failed []*TargetError
	for i, t := range w.cfg.Targets {
		if errs[i] != nil {
			failed = append(failed, errs[i])
			w.log.WithError(errs[i].Err).WithField("path", paths[i]).Warn("Failed to write report")
			continue
		}
		written = append(written, paths[i])
		if w.notifier != nil {
			w.notifier.Notice("Wrote %s logs to %s", t.Label, paths[i])
		}
	}

	if len(failed) > 0 {
		return written, &WriteError{Targets: failed}
	}
	return written, nil
}

// Reset forgets accumulated sections; the next write of each path replaces
// its content.
func (w *Writer) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.files = make(map[string]*file)
}

func (w *Writer) fileFor(path string) *file {
	w.mu.Lock()
	defer w.mu.Unlock()
	f, ok := w.files[path]
	if !ok {
		f = &file{}
		w.files[path] = f
	}
	return f
}

func (w *Writer) append(path string, enc output.Encoder, section output.Section) error {
	if enc == nil {
		return errors.New("no encoder")
	}

	f := w.fileFor(path)
	f.mu.Lock()
	defer f.mu.Unlock()

	sections := append(append([]output.Section(nil), f.sections...), section)
	data, err := enc.Encode(sections)
	if err != nil {
		return errors.Wrap(err, "encoding report")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "creating report directory")
	}
	if err := AtomicWriteFile(path, data, 0o644); err != nil {
		return err
	}

	f.sections = sections
	w.log.WithFields(logrus.Fields{"path": path, "sections": len(sections)}).Debug("Report written")
	return nil
}
