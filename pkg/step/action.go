package step

import "github.com/ib-77/stepper/pkg/step/core"

// Action identifies the control operation a step requested during its turn
type Action uint8

const (
	ActionNone Action = iota
	ActionNext
	ActionSkip
	ActionDone
	ActionParallel
	ActionGroup
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionNext:
		return "next"
	case ActionSkip:
		return "skip"
	case ActionDone:
		return "done"
	case ActionParallel:
		return "parallel"
	case ActionGroup:
		return "group"
	default:
		return "unknown"
	}
}

// action is the pending request of the step currently executing. A nil
// action means none was requested.
type action interface {
	Kind() Action
}

type (
	nextAction struct{}

	skipAction struct {
		args []any
	}

	doneAction struct {
		args []any
	}

	// fanOut collects one argument tuple per registered callback. kind is
	// either ActionParallel or ActionGroup.
	fanOut struct {
		kind     Action
		slots    []slot
		resolved int
	}

	slot struct {
		args     []any
		resolved bool
	}
)

func (nextAction) Kind() Action { return ActionNext }
func (skipAction) Kind() Action { return ActionSkip }
func (doneAction) Kind() Action { return ActionDone }
func (f *fanOut) Kind() Action  { return f.kind }

func newFanOut(kind Action) *fanOut {
	return &fanOut{kind: kind}
}

// register appends a slot and returns its index
func (f *fanOut) register() int {
	f.slots = append(f.slots, slot{})
	return len(f.slots) - 1
}

// resolve stores args at idx. It reports false when the slot was already
// resolved.
func (f *fanOut) resolve(idx int, args []any) bool {
	if f.slots[idx].resolved {
		return false
	}
	f.slots[idx] = slot{args: args, resolved: true}
	f.resolved++
	return true
}

func (f *fanOut) complete() bool {
	return f.resolved == len(f.slots)
}

// aggregate builds the arguments for the following step. The error position
// holds the first truthy first argument in registration order, regardless
// of the order in which callbacks resolved.
func (f *fanOut) aggregate() []any {
	var first any
	values := make([]any, len(f.slots))

	for i, s := range f.slots {
		if first == nil && len(s.args) > 0 && core.Truthy(s.args[0]) {
			first = s.args[0]
		}
		if len(s.args) > 1 {
			values[i] = s.args[1]
		}
	}

	if f.kind == ActionGroup {
		return []any{first, values}
	}
	return append([]any{first}, values...)
}
