// Package policy decides where a finished test's logs are sent.
package policy

import (
	"github.com/cockroachdb/errors"
)

// Mode is a three-state rule for a single destination.
type Mode string

const (
	Always Mode = "always"
	Never  Mode = "never"
	OnFail Mode = "onFail"
)

// ErrInvalidMode is returned when parsing an unknown mode.
var ErrInvalidMode = errors.New("invalid output policy")

// Modes lists the accepted values in schema order.
func Modes() []string {
	return []string{string(Always), string(Never), string(OnFail)}
}

// ParseMode validates s.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case Always, Never, OnFail:
		return Mode(s), nil
	}
	return "", errors.Wrapf(ErrInvalidMode, "%q", s)
}

// Enabled evaluates the mode against a test outcome.
func (m Mode) Enabled(failed bool) bool {
	switch m {
	case Always:
		return true
	case OnFail:
		return failed
	default:
		return false
	}
}

// Outcome is the result of a finished test.
type Outcome string

const (
	Passed Outcome = "passed"
	Failed Outcome = "failed"
)

// Policy holds the independent console and file modes.
type Policy struct {
	Console Mode
	File    Mode
}

// Default mirrors the reporter defaults: print only failing tests.
func Default() Policy {
	return Policy{Console: OnFail, File: OnFail}
}

// Decision is the disposition of one test's output.
type Decision struct {
	ToConsole bool
	ToFile    bool
}

// Decide computes each destination from the outcome alone; the two modes
// never affect each other.
func Decide(outcome Outcome, p Policy) Decision {
	failed := outcome == Failed
	return Decision{
		ToConsole: p.Console.Enabled(failed),
		ToFile:    p.File.Enabled(failed),
	}
}
