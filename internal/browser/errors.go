// internal/browser/errors.go
package browser

import (
	"errors"
	"fmt"
	"time"
)

// ErrTimeout is wrapped by every bounded wait that expires before its condition holds.
var ErrTimeout = errors.New("timed out")

// ErrStartup is wrapped by backends when the browser session cannot be created.
var ErrStartup = errors.New("browser session failed to start")

// Condition names the state a wait is blocking on.
type Condition string

const (
	ConditionPresent Condition = "presence"
	ConditionVisible Condition = "visibility"
)

// TimeoutError reports an expired bounded wait. It matches ErrTimeout under errors.Is.
type TimeoutError struct {
	Locator   Locator
	Condition Condition
	Timeout   time.Duration
	// LastErr is the last lookup error observed while polling, if any.
	LastErr error
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("%s after %s waiting for %s of %s", ErrTimeout, e.Timeout, e.Condition, e.Locator)
	if e.LastErr != nil {
		msg += fmt.Sprintf(" (last error: %v)", e.LastErr)
	}
	return msg
}

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

func (e *TimeoutError) Unwrap() error { return e.LastErr }
