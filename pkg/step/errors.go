package step

import (
	"errors"
	"fmt"
)

var (
	// ErrActionConflict is matched by every ConflictError
	ErrActionConflict = errors.New("step: action conflict")

	// ErrNoActiveStep is returned by control operations called while no
	// step of the run is executing
	ErrNoActiveStep = errors.New("step: no active step")

	// ErrStepPanicked is recorded on an execution whose step panicked
	ErrStepPanicked = errors.New("step: step panicked")

	// ErrCallbackArgs is raised when Done cannot pass its arguments to the
	// supplied function
	ErrCallbackArgs = errors.New("step: callback arguments")
)

// ConflictError reports a control operation requested while a different one
// was already pending in the same step turn.
type ConflictError struct {
	Requested Action
	Pending   Action
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s() cannot be used because %s() was already invoked",
		e.Requested, e.Pending)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrActionConflict
}
