// internal/checks/result.go
package checks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xkilldash9x/camcheck/internal/browser"
)

// ErrAssertion is matched by every failed expectation about page state.
var ErrAssertion = errors.New("assertion failed")

// ErrChecksFailed is returned by a run in which at least one check did not pass.
var ErrChecksFailed = errors.New("checks failed")

type assertionError struct {
	msg string
}

func (e *assertionError) Error() string { return e.msg }

func (e *assertionError) Is(target error) bool { return target == ErrAssertion }

func assertionf(format string, args ...interface{}) error {
	return &assertionError{msg: fmt.Sprintf(format, args...)}
}

// Outcome is the typed verdict of one check.
type Outcome string

const (
	OutcomePassed          Outcome = "passed"
	OutcomeTimeout         Outcome = "timeout"
	OutcomeAssertionFailed Outcome = "assertion_failed"
	OutcomeError           Outcome = "error"
)

// Classify maps a check error onto its outcome.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomePassed
	case errors.Is(err, context.Canceled):
		return OutcomeError
	case errors.Is(err, browser.ErrTimeout):
		return OutcomeTimeout
	case errors.Is(err, ErrAssertion):
		return OutcomeAssertionFailed
	default:
		return OutcomeError
	}
}

// Result is the record of one executed check.
type Result struct {
	Name     string
	Outcome  Outcome
	Err      error
	Duration time.Duration
	// Screenshot is the path of the failure capture, if one was written.
	Screenshot string
}

// Passed reports whether the check succeeded.
func (r Result) Passed() bool { return r.Outcome == OutcomePassed }

// Line renders the console line for the result.
func (r Result) Line() string {
	if r.Passed() {
		return fmt.Sprintf("%s passed", r.Name)
	}
	return fmt.Sprintf("%s failed: %v", r.Name, r.Err)
}

// Report is the ordered outcome of a whole run.
type Report struct {
	RunID    string
	Started  time.Time
	Finished time.Time
	Results  []Result
}

// Passed counts the checks that succeeded.
func (r *Report) Passed() int {
	n := 0
	for _, res := range r.Results {
		if res.Passed() {
			n++
		}
	}
	return n
}

// Failed counts the checks that did not succeed.
func (r *Report) Failed() int { return len(r.Results) - r.Passed() }

// OK reports whether every check passed.
func (r *Report) OK() bool { return r.Failed() == 0 }

// Err returns nil for a clean run and an error wrapping ErrChecksFailed otherwise.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}
	return fmt.Errorf("%w: %d of %d", ErrChecksFailed, r.Failed(), len(r.Results))
}
