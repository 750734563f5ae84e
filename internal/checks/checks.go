// Package checks contains the semantic validators for every value the
// runtime configuration accepts. Validators never return a Go error for a
// merely-invalid value: invalidity is encoded in the CheckResult so the
// caller decides whether it is fatal.
package checks

import (
	"errors"
	"fmt"
)

// CheckResult is the outcome of a validator: pass/fail plus an
// operator-readable explanation. Immutable value, discarded after use.
type CheckResult struct {
	Passed   bool
	HelpText string
}

// Pass returns a passing result.
func Pass() CheckResult {
	return CheckResult{Passed: true}
}

// Passf returns a passing result carrying informational text
// (e.g. "138 available addresses").
func Passf(format string, args ...any) CheckResult {
	return CheckResult{Passed: true, HelpText: fmt.Sprintf(format, args...)}
}

// Fail returns a failing result with a formatted explanation.
func Fail(format string, args ...any) CheckResult {
	return CheckResult{Passed: false, HelpText: fmt.Sprintf(format, args...)}
}

// OK reports whether the checked value was accepted.
func (r CheckResult) OK() bool {
	return r.Passed
}

// Err converts a failing result into an error carrying the help text.
// Returns nil when the check passed.
func (r CheckResult) Err() error {
	if r.Passed {
		return nil
	}
	if r.HelpText == "" {
		return errors.New("invalid value")
	}
	return errors.New(r.HelpText)
}

// prefix returns a copy of r with its help text prefixed by a field name,
// used when composite validators relay a sub-field failure.
func (r CheckResult) prefix(field string) CheckResult {
	if r.Passed {
		return r
	}
	return Fail("%s: %s", field, r.HelpText)
}
