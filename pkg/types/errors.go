package types

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration means no usable credential or an invalid site definition.
	ErrConfiguration = errors.New("configuration error")
	// ErrAuthentication means both the cookie and the password paths were exhausted.
	ErrAuthentication = errors.New("authentication failed")
	// ErrChallengeTimeout means an interstitial bot challenge never cleared.
	ErrChallengeTimeout = errors.New("challenge not cleared")
	// ErrElementNotFound means no selector candidate matched. Never retried.
	ErrElementNotFound = errors.New("element not found")
	// ErrActionTimeout means an element never became interactable, or a
	// navigation never completed, within its budget.
	ErrActionTimeout = errors.New("action timed out")
	// ErrUnclassified wraps everything else (driver crashes, network errors, panics).
	ErrUnclassified = errors.New("unclassified error")
)

// StepError reports a step that failed after consuming Attempts tries.
type StepError struct {
	StepID   string
	Attempts int
	Err      error
}

func (e *StepError) Error() string {
	if e.Attempts == 0 {
		return fmt.Sprintf("step %q: %v", e.StepID, e.Err)
	}
	return fmt.Sprintf("step %q failed after %d attempt(s): %v", e.StepID, e.Attempts, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error might succeed on another attempt
// of the same step.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrChallengeTimeout) || errors.Is(err, ErrActionTimeout)
}

// Category names the taxonomy class of err, for logs.
func Category(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrAuthentication):
		return "authentication"
	case errors.Is(err, ErrChallengeTimeout):
		return "challenge_timeout"
	case errors.Is(err, ErrElementNotFound):
		return "element_not_found"
	case errors.Is(err, ErrActionTimeout):
		return "action_timeout"
	default:
		return "unclassified"
	}
}
