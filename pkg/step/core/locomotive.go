package core

import "sync"

// Locomotive drives queued tasks one at a time in FIFO order. There is no
// dedicated goroutine: the first caller of Push that finds the locomotive idle
// becomes the driver and keeps pulling tasks until the queue is empty. Tasks
// pushed while a driver is active (including from inside a running task) are
// picked up by that driver after the current task returns.
//
// Deferred tasks belong to the next turn. The current driver never runs them;
// once its queue is empty it hands them to a fresh goroutine, so whoever
// started the current turn gets control back first.
type Locomotive struct {
	mu      sync.Mutex
	queue   []func()
	later   []func()
	driving bool
	pulled  uint64
}

// Push queues task and drives the queue if no other goroutine is driving it.
func (l *Locomotive) Push(task func()) {
	l.mu.Lock()
	l.queue = append(l.queue, task)
	if l.driving {
		l.mu.Unlock()
		return
	}
	l.driving = true
	l.mu.Unlock()

	l.drive()
}

// Defer queues task for the next turn. It never runs on the calling
// goroutine.
func (l *Locomotive) Defer(task func()) {
	l.mu.Lock()
	l.later = append(l.later, task)
	if l.driving {
		l.mu.Unlock()
		return
	}
	l.driving = true
	l.queue, l.later = append(l.queue, l.later...), nil
	l.mu.Unlock()

	go l.drive()
}

func (l *Locomotive) isDriving() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.driving
}

func (l *Locomotive) pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue) + len(l.later)
}

func (l *Locomotive) pulledCount() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pulled
}

func (l *Locomotive) drive() {
	released := false
	// a panicking task releases the driver role; queued tasks stay put
	// until the next Push
	defer func() {
		if !released {
			l.mu.Lock()
			l.driving = false
			l.mu.Unlock()
		}
	}()

	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			released = true
			if len(l.later) == 0 {
				l.driving = false
				l.mu.Unlock()
				return
			}
			// driving stays set across the hand-off so turns never overlap
			l.queue, l.later = l.later, nil
			l.mu.Unlock()
			go l.drive()
			return
		}
		task := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.pulled++
		l.mu.Unlock()

		task()
	}
}
