package step

import (
	"log/slog"

	"github.com/google/uuid"

	steplog "github.com/ib-77/stepper/pkg/log"
)

type (
	// Func is one step of a sequence. args carries whatever the previous
	// step resolved with; the first step receives none. A non-nil error
	// halts the run.
	Func func(c Control, args ...any) error

	// Callback resumes a run. Handles returned by Parallel and Group are
	// conventionally invoked as (err, value).
	Callback func(args ...any)

	// Control is the capability surface shared by every step of a run. A
	// step may request one kind of action per turn; Next, Parallel and
	// Group may be repeated, Skip and Done replace their arguments.
	Control interface {
		// Next returns a handle that advances to the following step with
		// the arguments it is invoked with
		Next() (Callback, error)
		// Skip jumps to the last step, passing args to it
		Skip(args ...any) error
		// Done ends the run after the current step returns. When args[0]
		// is a function it is called with args[1:]; an argument that does
		// not fit a typed parameter panics with ErrCallbackArgs
		Done(args ...any) error
		// Parallel registers a callback; the following step receives the
		// first error and one value per callback as separate arguments
		Parallel() (Callback, error)
		// Group registers a callback; the following step receives the
		// first error and a slice with one value per callback
		Group() (Callback, error)
	}

	// ErrorHandler receives failures of steps resumed by a handle
	ErrorHandler func(id uuid.UUID, err error)

	// Option configures a Runner
	Option func(*Runner)

	// Runner starts executions. A Runner holds configuration only and may
	// be shared by any number of concurrent runs.
	Runner struct {
		logger  *slog.Logger
		onError ErrorHandler
	}
)

var defaultRunner = New()

// New creates a Runner with the given options
func New(opts ...Option) *Runner {
	r := &Runner{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.onError == nil {
		r.onError = r.logError
	}
	return r
}

// WithLogger sets the logger used for run diagnostics
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithErrorHandler sets the handler for asynchronous step failures. The
// default logs them at error level.
func WithErrorHandler(h ErrorHandler) Option {
	return func(r *Runner) {
		r.onError = h
	}
}

// Run executes steps with the default Runner
func Run(steps ...Func) error {
	return defaultRunner.Run(steps...)
}

// Run starts steps and returns the error of a step Start ran itself.
// Failures of later, resumed steps go to the error handler.
func (r *Runner) Run(steps ...Func) error {
	return r.Start(steps...).syncErr()
}

// Start executes steps in order. The first step, and every following step
// that requests no action, runs on the calling goroutine before Start
// returns. A Next handle invoked while its own step is executing resumes
// the run on another goroutine once that step returned, after Start gave
// control back to its caller.
func (r *Runner) Start(steps ...Func) *Execution {
	e := newExecution(r, steps)
	if len(e.steps) == 0 {
		e.finished = true
		close(e.done)
		return e
	}

	r.logger.Debug("run started", steplog.RunID(e.id), steplog.Steps(len(e.steps)))

	e.loco.Push(func() { e.advance(nil, true) })
	return e
}

func (r *Runner) logError(id uuid.UUID, err error) {
	r.logger.Error("step failed", steplog.RunID(id), steplog.Error(err))
}
