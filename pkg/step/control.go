package step

// control implements Control against the state of one execution
type control struct {
	e *Execution
}

func noop(...any) {}

func (c *control) Next() (Callback, error) {
	e := c.e
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.request(ActionNext); err != nil {
		return noop, err
	}
	e.pending = nextAction{}

	turn := e.turn
	return func(args ...any) {
		e.claim(turn, args)
	}, nil
}

func (c *control) Skip(args ...any) error {
	e := c.e
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.request(ActionSkip); err != nil {
		return err
	}
	e.pending = skipAction{args: clone(args)}
	return nil
}

func (c *control) Done(args ...any) error {
	e := c.e
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.request(ActionDone); err != nil {
		return err
	}
	e.pending = doneAction{args: clone(args)}
	return nil
}

func (c *control) Parallel() (Callback, error) {
	return c.fan(ActionParallel)
}

func (c *control) Group() (Callback, error) {
	return c.fan(ActionGroup)
}

func (c *control) fan(kind Action) (Callback, error) {
	e := c.e
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.request(kind); err != nil {
		return noop, err
	}

	f, ok := e.pending.(*fanOut)
	if !ok {
		f = newFanOut(kind)
		e.pending = f
	}
	idx := f.register()

	turn := e.turn
	return func(args ...any) {
		e.resolve(turn, f, idx, args)
	}, nil
}

// request checks that kind may be requested now. The first conflict of a
// turn is kept so the run halts even if the step drops the error. Callers
// hold e.mu.
func (e *Execution) request(kind Action) error {
	if !e.inStep || e.finished {
		return ErrNoActiveStep
	}
	if e.pending == nil || e.pending.Kind() == kind {
		return nil
	}

	err := &ConflictError{Requested: kind, Pending: e.pending.Kind()}
	if e.conflict == nil {
		e.conflict = err
	}
	return err
}

// claim handles an invocation of a Next handle. Only the first invocation
// within a turn resumes the run; when the issuing step is still executing,
// the resumption is deferred to the next turn of the locomotive.
func (e *Execution) claim(turn uint64, args []any) {
	e.mu.Lock()
	if e.finished || e.turn != turn || e.resumed {
		e.mu.Unlock()
		return
	}
	e.resumed = true
	inStep := e.inStep
	e.mu.Unlock()

	args = clone(args)
	task := func() { e.resume(turn, args) }
	if inStep {
		e.loco.Defer(task)
		return
	}
	e.loco.Push(task)
}

// resolve handles an invocation of a fan-out handle. The callback that
// completes the fan-out after its step returned resumes the run; completion
// during the step is picked up by dispatch.
func (e *Execution) resolve(turn uint64, f *fanOut, idx int, args []any) {
	e.mu.Lock()
	if e.finished || e.turn != turn || !f.resolve(idx, clone(args)) {
		e.mu.Unlock()
		return
	}
	if e.inStep || e.resumed || !f.complete() {
		e.mu.Unlock()
		return
	}
	e.resumed = true
	next := f.aggregate()
	e.mu.Unlock()

	e.loco.Push(func() { e.resume(turn, next) })
}

func clone(args []any) []any {
	if len(args) == 0 {
		return nil
	}
	return append([]any(nil), args...)
}
