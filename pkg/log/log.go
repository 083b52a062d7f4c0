package log

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

func RunID(id uuid.UUID) slog.Attr {
	return slog.String("run_id", id.String())
}

func StepIndex(idx int) slog.Attr {
	return slog.Int("step_index", idx)
}

func Steps(count int) slog.Attr {
	return slog.Int("steps", count)
}

func Action(action fmt.Stringer) slog.Attr {
	return slog.String("action", action.String())
}

func Error(err error) slog.Attr {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return slog.String("error", msg)
}
