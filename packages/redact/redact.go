// Package redact scrubs credentials and personal data from captured records
// before they are printed or written.
package redact

import (
	"regexp"

	"github.com/cockroachdb/errors"

	"github.com/abdul-hamid-achik/termreport/packages/record"
)

// Pattern is a single redaction rule.
type Pattern struct {
	Name        string `json:"name" yaml:"name"`
	Pattern     string `json:"pattern" yaml:"pattern"`
	Replacement string `json:"replacement,omitempty" yaml:"replacement,omitempty"`
}

type compiledPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
	validate    func(match string) bool
}

// Engine applies compiled patterns to text. It is safe for concurrent use.
type Engine struct {
	patterns []compiledPattern
}

var builtinPatterns = []struct {
	name     string
	pattern  string
	validate func(string) bool
}{
	{name: "aws-key", pattern: `AKIA[0-9A-Z]{16}`},
	{name: "bearer-token", pattern: `Bearer [A-Za-z0-9\-._~+/]+=*`},
	{name: "basic-auth", pattern: `Basic [A-Za-z0-9+/]+=*`},
	{name: "jwt", pattern: `eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]+`},
	{name: "github-pat", pattern: `(ghp_[A-Za-z0-9]{36,}|github_pat_[A-Za-z0-9_]{36,})`},
	{name: "credit-card", pattern: `\b([0-9]{4}[- ]?[0-9]{4}[- ]?[0-9]{4}[- ]?[0-9]{4})\b`, validate: luhnValidateMatch},
	{name: "api-key", pattern: `(?i)(api[_-]?key|apikey|secret[_-]?key)\s*[:=]\s*[^\s",}]+`},
	{name: "session-cookie", pattern: `(?i)(session|sid|token)\s*=\s*[A-Za-z0-9+/=_-]{16,}`},
}

// New builds an engine with the built-in patterns followed by custom ones.
func New(custom ...Pattern) (*Engine, error) {
	e := &Engine{}
	for _, bp := range builtinPatterns {
		e.patterns = append(e.patterns, compiledPattern{
			name:        bp.name,
			regex:       regexp.MustCompile(bp.pattern),
			replacement: "[REDACTED:" + bp.name + "]",
			validate:    bp.validate,
		})
	}
	for _, p := range custom {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "compiling redaction pattern %q", p.Name)
		}
		replacement := p.Replacement
		if replacement == "" {
			replacement = "[REDACTED:" + p.Name + "]"
		}
		e.patterns = append(e.patterns, compiledPattern{name: p.Name, regex: re, replacement: replacement})
	}
	return e, nil
}

// Default is an engine with only the built-in patterns.
func Default() *Engine {
	e, _ := New()
	return e
}

// Redact applies every pattern to input.
func (e *Engine) Redact(input string) string {
	if input == "" {
		return ""
	}
	result := input
	for _, p := range e.patterns {
		if p.validate != nil {
			result = p.regex.ReplaceAllStringFunc(result, func(match string) string {
				if p.validate(match) {
					return p.replacement
				}
				return match
			})
			continue
		}
		result = p.regex.ReplaceAllString(result, p.replacement)
	}
	return result
}

// Record redacts the summary and every textual detail part of r. It has the
// shape of a collector transform.
func (e *Engine) Record(r record.Record) record.Record {
	r = r.Clone()
	r.Summary = e.Redact(r.Summary)
	if d := r.Detail; d != nil {
		d.RequestHeaders = e.body(d.RequestHeaders)
		d.RequestBody = e.body(d.RequestBody)
		d.ResponseHeaders = e.body(d.ResponseHeaders)
		d.ResponseBody = e.body(d.ResponseBody)
		d.NetworkError = e.Redact(d.NetworkError)
	}
	return r
}

func (e *Engine) body(b *record.Body) *record.Body {
	if b == nil || b.Content == "" {
		return b
	}
	redacted := e.Redact(b.Content)
	if redacted == b.Content {
		return b
	}
	if b.Kind == record.BodyJSON {
		return record.NewJSONBody(redacted)
	}
	return &record.Body{Kind: b.Kind, Content: redacted}
}

func luhnValidateMatch(match string) bool {
	digits := make([]byte, 0, len(match))
	for i := 0; i < len(match); i++ {
		if match[i] >= '0' && match[i] <= '9' {
			digits = append(digits, match[i])
		}
	}
	return luhnValid(string(digits))
}

func luhnValid(number string) bool {
	if len(number) < 13 || len(number) > 19 {
		return false
	}
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		d := int(number[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}
