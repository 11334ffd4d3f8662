package action

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParams is returned for an action whose parameters are
	// missing, ill-typed or out of range.
	ErrInvalidParams = errors.New("invalid action parameters")
	// ErrNotFound is returned when an action's selector matches nothing in
	// the snapshot taken just before acting.
	ErrNotFound = errors.New("element not found")
)

// StepError describes why one action failed.
type StepError struct {
	Step int // 1-based position in a sequence; 0 when executed alone
	Kind Kind
	Err  error
}

func (e *StepError) Error() string {
	if e.Step > 0 {
		return fmt.Sprintf("step %d (%s): %v", e.Step, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

func invalid(kind Kind, format string, args ...any) *StepError {
	return &StepError{Kind: kind, Err: fmt.Errorf("%w: %s", ErrInvalidParams, fmt.Sprintf(format, args...))}
}
