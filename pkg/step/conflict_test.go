package step_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ib-77/stepper/pkg/step"
)

type request struct {
	action step.Action
	call   func(step.Control) error
}

var requests = []request{
	{step.ActionNext, func(c step.Control) error {
		_, err := c.Next()
		return err
	}},
	{step.ActionSkip, func(c step.Control) error {
		return c.Skip()
	}},
	{step.ActionDone, func(c step.Control) error {
		return c.Done()
	}},
	{step.ActionParallel, func(c step.Control) error {
		_, err := c.Parallel()
		return err
	}},
	{step.ActionGroup, func(c step.Control) error {
		_, err := c.Group()
		return err
	}},
}

func TestConflict_EveryPairOfDifferentActions(t *testing.T) {
	t.Parallel()

	for _, first := range requests {
		for _, second := range requests {
			if first.action == second.action {
				continue
			}

			name := fmt.Sprintf("%s_then_%s", first.action, second.action)
			t.Run(name, func(t *testing.T) {
				t.Parallel()

				var conflict error
				rec := &recorder{}
				err := step.Run(
					func(c step.Control, _ ...any) error {
						require.NoError(t, first.call(c))
						conflict = second.call(c)
						return conflict
					},
					mark(rec, "2"),
					mark(rec, "3"),
				)

				require.Error(t, conflict)
				assert.ErrorIs(t, conflict, step.ErrActionConflict)

				var ce *step.ConflictError
				require.True(t, errors.As(conflict, &ce))
				assert.Equal(t, second.action, ce.Requested)
				assert.Equal(t, first.action, ce.Pending)
				assert.Equal(t, fmt.Sprintf(
					"%s() cannot be used because %s() was already invoked",
					second.action, first.action), conflict.Error())

				assert.ErrorIs(t, err, step.ErrActionConflict)
				assert.Empty(t, rec.list())
			})
		}
	}
}

func TestConflict_SameActionIsNotAConflict(t *testing.T) {
	t.Parallel()

	for _, req := range requests {
		t.Run(req.action.String(), func(t *testing.T) {
			t.Parallel()

			e := step.New().Start(func(c step.Control, _ ...any) error {
				if err := req.call(c); err != nil {
					return err
				}
				return req.call(c)
			})
			assert.NoError(t, e.Err())
		})
	}
}

func TestConflict_IgnoredErrorStillHaltsRun(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	err := step.Run(
		func(c step.Control, _ ...any) error {
			_ = c.Skip()
			_ = c.Done()
			return nil
		},
		mark(rec, "2"),
	)

	var ce *step.ConflictError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, step.ActionDone, ce.Requested)
	assert.Equal(t, step.ActionSkip, ce.Pending)
	assert.Empty(t, rec.list())
}

func TestConflict_FirstConflictOfTurnIsKept(t *testing.T) {
	t.Parallel()

	err := step.Run(func(c step.Control, _ ...any) error {
		_, _ = c.Parallel()
		_, _ = c.Group()
		_, _ = c.Next()
		return nil
	})

	var ce *step.ConflictError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, step.ActionGroup, ce.Requested)
	assert.Equal(t, step.ActionParallel, ce.Pending)
}

func TestConflict_AfterSynchronousNextCallback(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	var skipErr error
	e := step.New().Start(
		func(c step.Control, _ ...any) error {
			next, err := c.Next()
			if err != nil {
				return err
			}
			next()
			skipErr = c.Skip()
			return nil
		},
		mark(rec, "2"),
	)

	assert.ErrorIs(t, skipErr, step.ErrActionConflict)
	assert.ErrorIs(t, e.Err(), step.ErrActionConflict)
	assert.Empty(t, rec.list())
}

func TestConflict_FailedRequestReturnsHarmlessHandle(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	var handle step.Callback
	e := step.New().Start(
		func(c step.Control, _ ...any) error {
			if err := c.Done(); err != nil {
				return err
			}
			var err error
			handle, err = c.Parallel()
			assert.Error(t, err)
			return nil
		},
		mark(rec, "2"),
	)

	require.NotNil(t, handle)
	handle(nil, 1)
	assert.True(t, e.Finished())
	assert.Empty(t, rec.list())
}
