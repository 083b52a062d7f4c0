package step

import (
	"fmt"

	"github.com/ib-77/stepper/pkg/step/core"
)

// Result is a read view over callback-style step arguments, where the first
// position conventionally carries an error and the rest carry values.
type Result struct {
	cause  any
	values []any
}

// ResultOf splits args into the error position and the values following it
func ResultOf(args []any) Result {
	if len(args) == 0 {
		return Result{}
	}
	return Result{
		cause:  args[0],
		values: args[1:],
	}
}

// Cause returns the first argument when it is truthy
func (r Result) Cause() any {
	if core.Truthy(r.cause) {
		return r.cause
	}
	return nil
}

// Err returns Cause as an error, wrapping non-error values
func (r Result) Err() error {
	switch c := r.Cause().(type) {
	case nil:
		return nil
	case error:
		return c
	default:
		return fmt.Errorf("%v", c)
	}
}

func (r Result) IsSuccess() bool {
	return r.Cause() == nil
}

func (r Result) IsFailure() bool {
	return !r.IsSuccess()
}

// Values returns the arguments after the error position
func (r Result) Values() []any {
	return r.values
}

func (r Result) Len() int {
	return len(r.values)
}

// Value returns the i-th value of r converted to T. It reports false when
// the position is missing or holds another type.
func Value[T any](r Result, i int) (T, bool) {
	var zero T
	if i < 0 || i >= len(r.values) {
		return zero, false
	}
	v, ok := r.values[i].(T)
	return v, ok
}
