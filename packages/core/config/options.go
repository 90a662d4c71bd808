package config

import (
	"sort"

	"github.com/abdul-hamid-achik/termreport/packages/core/collector"
	"github.com/abdul-hamid-achik/termreport/packages/output"
	"github.com/abdul-hamid-achik/termreport/packages/policy"
	"github.com/abdul-hamid-achik/termreport/packages/record"
)

// Confirmation labels printed after a report file is written.
const (
	LabelText   = "txt"
	LabelJSON   = "json"
	LabelCustom = "custom"
)

// Target is one report file format.
type Target struct {
	// Name is the file name relative to the output root, or the file
	// extension when output is nested.
	Name    string
	Encoder output.Encoder
	// Label names the format in the confirmation notice.
	Label string
}

// Options is the resolved configuration the pipeline runs with.
type Options struct {
	CollectTypes    []record.Type
	Keep            collector.KeepFunc
	Transform       collector.TransformFunc
	CollectTestLogs collector.CollectedFunc

	// CompactLogs is the number of records kept around each error. Nil
	// disables compaction.
	CompactLogs *int

	OutputRoot   string
	SpecRoot     string
	NestedOutput bool
	Targets      []Target

	Policy policy.Policy

	PrintRequestData bool
	PrintHeaderData  bool

	Icons record.IconSet
}

// DefaultOptions returns options equivalent to an empty config file.
func DefaultOptions() *Options {
	return &Options{
		OutputRoot: DefaultOutputRoot,
		Policy:     policy.Default(),
		Icons:      record.DefaultIcons(),
	}
}

// Collector returns the collector settings.
func (o *Options) Collector() collector.Config {
	return collector.Config{
		CollectTypes:     o.CollectTypes,
		Keep:             o.Keep,
		Transform:        o.Transform,
		PrintRequestData: o.PrintRequestData,
		PrintHeaderData:  o.PrintHeaderData,
		OnCollected:      o.CollectTestLogs,
	}
}

// Validate checks options assembled in code.
func (o *Options) Validate() error {
	var issues []Issue
	for _, t := range o.CollectTypes {
		if !t.Valid() {
			issues = append(issues, Issue{Path: "collectTypes", Message: "Unknown log type: " + string(t)})
		}
	}
	if o.CompactLogs != nil && *o.CompactLogs < 0 {
		issues = append(issues, Issue{Path: "compactLogs", Message: "Must be greater than or equal to 0"})
	}
	for _, m := range []struct {
		path string
		mode policy.Mode
	}{{"printLogsToConsole", o.Policy.Console}, {"printLogsToFile", o.Policy.File}} {
		if _, err := policy.ParseMode(string(m.mode)); err != nil {
			issues = append(issues, Issue{Path: m.path, Message: "Invalid value: " + string(m.mode)})
		}
	}
	for _, t := range o.Targets {
		if t.Name == "" {
			issues = append(issues, Issue{Path: "outputTarget", Message: "Target name is empty"})
		}
		if t.Encoder == nil {
			issues = append(issues, Issue{Path: "outputTarget/" + t.Name, Message: "Missing encoder"})
		}
	}
	return newValidationError(issues)
}

// Resolve turns the file form into Options, looking up every name in reg.
func (c *Config) Resolve(reg *Registry) (*Options, error) {
	if reg == nil {
		reg = NewRegistry()
	}

	var issues []Issue
	issues = append(issues, reg.check(references{
		filterLog:       c.FilterLog,
		keepLog:         c.KeepLog,
		collectTestLogs: c.CollectTestLogs,
		targets:         c.OutputTarget,
	})...)

	opts := DefaultOptions()
	opts.CompactLogs = c.CompactLogs
	opts.SpecRoot = c.SpecRoot
	opts.NestedOutput = c.GetNestedOutput()
	opts.PrintRequestData = c.GetPrintRequestData()
	opts.PrintHeaderData = c.GetPrintHeaderData()
	if c.OutputRoot != "" {
		opts.OutputRoot = c.OutputRoot
	}
	if c.ASCIIIcons != nil {
		opts.Icons = record.UnicodeIcons
		if *c.ASCIIIcons {
			opts.Icons = record.ASCIIIcons
		}
	}

	for _, name := range c.CollectTypes {
		t, err := record.ParseType(name)
		if err != nil {
			issues = append(issues, Issue{Path: "collectTypes", Message: "Unknown log type: " + name})
			continue
		}
		opts.CollectTypes = append(opts.CollectTypes, t)
	}

	for _, m := range []struct {
		path  string
		value string
		dst   *policy.Mode
	}{
		{"printLogsToConsole", c.PrintLogsToConsole, &opts.Policy.Console},
		{"printLogsToFile", c.PrintLogsToFile, &opts.Policy.File},
	} {
		if m.value == "" {
			continue
		}
		mode, err := policy.ParseMode(m.value)
		if err != nil {
			issues = append(issues, Issue{Path: m.path, Message: "Invalid value: " + m.value})
			continue
		}
		*m.dst = mode
	}

	if fn, ok := reg.Filter(c.FilterLog); ok {
		opts.Transform = fn
	}
	if fn, ok := reg.Predicate(c.KeepLog); ok {
		opts.Keep = fn
	}
	if fn, ok := reg.Callback(c.CollectTestLogs); ok {
		opts.CollectTestLogs = fn
	}

	names := make([]string, 0, len(c.OutputTarget))
	for name := range c.OutputTarget {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		encName := c.OutputTarget[name]
		enc, ok := output.Builtin(encName, opts.Icons)
		if !ok {
			if enc, ok = reg.Encoder(encName); !ok {
				continue
			}
		}
		opts.Targets = append(opts.Targets, Target{Name: name, Encoder: enc, Label: labelFor(encName)})
	}

	if err := newValidationError(issues); err != nil {
		return nil, err
	}
	return opts, nil
}

func labelFor(encoder string) string {
	switch encoder {
	case "txt", "text":
		return LabelText
	case "json":
		return LabelJSON
	}
	return LabelCustom
}

// LoadOptions loads the config at path, or the first config file found in
// the current directory, and resolves it.
func LoadOptions(path string, reg *Registry) (*Options, error) {
	if reg == nil {
		reg = NewRegistry()
	}
	cfg, err := LoadConfig(path, reg)
	if err != nil {
		return nil, err
	}
	return cfg.Resolve(reg)
}
