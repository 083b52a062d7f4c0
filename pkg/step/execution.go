package step

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	steplog "github.com/ib-77/stepper/pkg/log"
	"github.com/ib-77/stepper/pkg/step/core"
)

// Execution is the state of one run. It is created by Runner.Start and is
// never reused. Failures of the steps Start runs itself are only recorded
// on the execution; failures of resumed steps also go to the runner's error
// handler.
type Execution struct {
	id        uuid.UUID
	runner    *Runner
	steps     []Func
	control   *control
	loco      core.Locomotive
	createdAt time.Time
	done      chan struct{}

	mu       sync.Mutex
	cursor   int
	turn     uint64
	inStep   bool
	resumed  bool
	pending  action
	conflict error
	finished bool
	err      error

	// failedSync marks an error raised by a step Start ran itself
	failedSync bool
}

func newExecution(r *Runner, steps []Func) *Execution {
	e := &Execution{
		id:        uuid.New(),
		runner:    r,
		steps:     append([]Func(nil), steps...),
		createdAt: time.Now().UTC(),
		done:      make(chan struct{}),
		cursor:    -1,
	}
	e.control = &control{e: e}
	return e
}

// ID returns the unique identifier of the run
func (e *Execution) ID() uuid.UUID {
	return e.id
}

// CreatedAt time creation (UTC)
func (e *Execution) CreatedAt() time.Time {
	return e.createdAt
}

// Done is closed once the run has terminated. A run waiting on a handle
// that is never invoked stays open forever.
func (e *Execution) Done() <-chan struct{} {
	return e.done
}

// Finished reports whether the run has terminated
func (e *Execution) Finished() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.finished
}

// Err returns the error that halted the run, if any
func (e *Execution) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

// StepIndex returns the index of the step most recently started, or -1
func (e *Execution) StepIndex() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return min(e.cursor, len(e.steps)-1)
}

// Wait blocks until the run terminates or ctx is done
func (e *Execution) Wait(ctx context.Context) error {
	select {
	case <-e.done:
		return e.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// advance runs steps starting after the cursor until one suspends the run
// or the run ends. Steps that resolve synchronously loop here instead of
// recursing. sync is set only for the chain Start runs itself.
func (e *Execution) advance(args []any, sync bool) {
	for {
		e.mu.Lock()
		if e.finished {
			e.mu.Unlock()
			return
		}

		e.cursor++
		if e.cursor >= len(e.steps) {
			e.finished = true
			e.mu.Unlock()
			e.settle(nil)
			return
		}

		idx := e.cursor
		fn := e.steps[idx]
		e.turn++
		e.inStep = true
		e.resumed = false
		e.mu.Unlock()

		e.runner.logger.Debug("step started",
			steplog.RunID(e.id), steplog.StepIndex(idx))

		err := e.call(fn, args)

		next, ok := e.dispatch(idx, err, sync)
		if !ok {
			return
		}
		args = next
	}
}

func (e *Execution) call(fn Func, args []any) error {
	returned := false
	defer func() {
		if !returned {
			e.abort()
		}
	}()

	err := fn(e.control, args...)
	returned = true
	return err
}

// dispatch reads and clears the action requested by the step at idx. It
// returns the arguments for the next step when the run continues
// synchronously.
func (e *Execution) dispatch(idx int, err error, sync bool) ([]any, bool) {
	e.mu.Lock()
	act := e.pending
	conflict := e.conflict
	e.pending = nil
	e.conflict = nil
	e.inStep = false

	if conflict != nil {
		err = conflict
	}
	if err != nil {
		e.mu.Unlock()
		e.halt(err, sync)
		return nil, false
	}

	if act == nil {
		e.mu.Unlock()
		return nil, true
	}

	e.runner.logger.Debug("action dispatched", steplog.RunID(e.id),
		steplog.StepIndex(idx), steplog.Action(act.Kind()))

	switch a := act.(type) {
	case nextAction:
		e.mu.Unlock()
		return nil, false

	case skipAction:
		last := len(e.steps) - 1
		if idx < last {
			e.cursor = last - 1
			e.mu.Unlock()
			return a.args, true
		}
		e.finished = true
		e.mu.Unlock()
		e.settle(nil)
		return nil, false

	case doneAction:
		e.finished = true
		e.mu.Unlock()
		defer e.settle(nil)
		if len(a.args) > 0 {
			invoke(a.args[0], a.args[1:])
		}
		return nil, false

	case *fanOut:
		if a.complete() && !e.resumed {
			e.resumed = true
			e.mu.Unlock()
			return a.aggregate(), true
		}
		e.mu.Unlock()
		return nil, false
	}

	e.mu.Unlock()
	return nil, false
}

// resume continues the run from the turn that issued a handle. It is
// always called from a locomotive task.
func (e *Execution) resume(turn uint64, args []any) {
	e.mu.Lock()
	stale := e.finished || e.turn != turn
	e.mu.Unlock()
	if stale {
		return
	}
	e.advance(args, false)
}

// halt ends the run with err. Errors of the chain Start ran are left for
// its caller; the rest go to the error handler.
func (e *Execution) halt(err error, sync bool) {
	e.mu.Lock()
	if e.finished {
		e.mu.Unlock()
		return
	}
	e.finished = true
	e.err = err
	e.failedSync = sync
	e.mu.Unlock()

	if !sync && e.runner.onError != nil {
		e.runner.onError(e.id, err)
	}
	e.settle(err)
}

// abort ends the run of a panicking step. The panic reaches the driving
// goroutine on its own.
func (e *Execution) abort() {
	e.mu.Lock()
	if e.finished {
		e.mu.Unlock()
		return
	}
	e.finished = true
	e.err = ErrStepPanicked
	e.mu.Unlock()

	e.settle(ErrStepPanicked)
}

// syncErr returns the error of a run that failed before Start returned
func (e *Execution) syncErr() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.failedSync {
		return e.err
	}
	return nil
}

// settle releases waiters. It must be called exactly once, by whoever set
// finished.
func (e *Execution) settle(err error) {
	e.runner.logger.Debug("run finished", steplog.RunID(e.id), steplog.Error(err))
	close(e.done)
}
