package config

import (
	"sort"
	"sync"

	"github.com/abdul-hamid-achik/termreport/packages/core/collector"
	"github.com/abdul-hamid-achik/termreport/packages/output"
	"github.com/abdul-hamid-achik/termreport/packages/redact"
)

// RedactFilter is the name of the built-in transform that scrubs
// credentials from records.
const RedactFilter = "redact"

// Registry maps the names used in config files to Go functions.
type Registry struct {
	mu         sync.RWMutex
	filters    map[string]collector.TransformFunc
	predicates map[string]collector.KeepFunc
	encoders   map[string]output.Encoder
	callbacks  map[string]collector.CollectedFunc
}

// NewRegistry returns a registry holding the built-in redact filter.
func NewRegistry() *Registry {
	r := &Registry{
		filters:    make(map[string]collector.TransformFunc),
		predicates: make(map[string]collector.KeepFunc),
		encoders:   make(map[string]output.Encoder),
		callbacks:  make(map[string]collector.CollectedFunc),
	}
	r.RegisterFilter(RedactFilter, redact.Default().Record)
	return r
}

// RegisterFilter makes fn available as filterLog.
func (r *Registry) RegisterFilter(name string, fn collector.TransformFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.filters[name] = fn
}

// RegisterPredicate makes fn available as keepLog.
func (r *Registry) RegisterPredicate(name string, fn collector.KeepFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.predicates[name] = fn
}

// RegisterEncoder makes enc available as an outputTarget value. Built-in
// encoder names cannot be overridden.
func (r *Registry) RegisterEncoder(name string, enc output.Encoder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.encoders[name] = enc
}

// RegisterCallback makes fn available as collectTestLogs.
func (r *Registry) RegisterCallback(name string, fn collector.CollectedFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callbacks[name] = fn
}

// Filter looks up a transform.
func (r *Registry) Filter(name string) (collector.TransformFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.filters[name]
	return fn, ok
}

// Predicate looks up a keep predicate.
func (r *Registry) Predicate(name string) (collector.KeepFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.predicates[name]
	return fn, ok
}

// Callback looks up a collectTestLogs callback.
func (r *Registry) Callback(name string) (collector.CollectedFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.callbacks[name]
	return fn, ok
}

// Encoder looks up a registered encoder. Built-ins are resolved separately
// because they depend on the icon set.
func (r *Registry) Encoder(name string) (output.Encoder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	enc, ok := r.encoders[name]
	return enc, ok
}

// HasEncoder reports whether name is a built-in or registered encoder.
func (r *Registry) HasEncoder(name string) bool {
	for _, b := range output.BuiltinNames() {
		if b == name {
			return true
		}
	}
	_, ok := r.Encoder(name)
	return ok
}

// references are the registry names a configuration uses.
type references struct {
	filterLog       string
	keepLog         string
	collectTestLogs string
	targets         map[string]string
}

func (r *Registry) check(refs references) []Issue {
	var issues []Issue
	if refs.filterLog != "" {
		if _, ok := r.Filter(refs.filterLog); !ok {
			issues = append(issues, Issue{Path: "filterLog", Message: "Unknown filter: " + refs.filterLog})
		}
	}
	if refs.keepLog != "" {
		if _, ok := r.Predicate(refs.keepLog); !ok {
			issues = append(issues, Issue{Path: "keepLog", Message: "Unknown predicate: " + refs.keepLog})
		}
	}
	if refs.collectTestLogs != "" {
		if _, ok := r.Callback(refs.collectTestLogs); !ok {
			issues = append(issues, Issue{Path: "collectTestLogs", Message: "Unknown callback: " + refs.collectTestLogs})
		}
	}
	names := make([]string, 0, len(refs.targets))
	for name := range refs.targets {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !r.HasEncoder(refs.targets[name]) {
			issues = append(issues, Issue{Path: "outputTarget/" + name, Message: "Unknown encoder: " + refs.targets[name]})
		}
	}
	return issues
}
