package log_test

import (
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ib-77/stepper/pkg/log"
)

type errStub string

type actionStub string

func TestRunID(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	attr := log.RunID(id)
	assertAttrEqual(t, attr, "run_id", "6ba7b810-9dad-11d1-80b4-00c04fd430c8")
}

func TestStepIndex(t *testing.T) {
	attr := log.StepIndex(3)
	assert.Equal(t, "step_index", attr.Key)
	assert.Equal(t, int64(3), attr.Value.Int64())
}

func TestSteps(t *testing.T) {
	attr := log.Steps(5)
	assert.Equal(t, "steps", attr.Key)
	assert.Equal(t, int64(5), attr.Value.Int64())
}

func TestAction(t *testing.T) {
	attr := log.Action(actionStub("parallel"))
	assertAttrEqual(t, attr, "action", "parallel")
}

func TestError(t *testing.T) {
	attr := log.Error(nil)
	assertAttrEqual(t, attr, "error", "")

	attr = log.Error(errStub("boom"))
	assertAttrEqual(t, attr, "error", "boom")
}

func (e errStub) Error() string { return string(e) }

func (a actionStub) String() string { return string(a) }

func assertAttrEqual(t *testing.T, attr slog.Attr, key, value string) {
	t.Helper()
	assert.Equal(t, key, attr.Key)
	assert.Equal(t, value, attr.Value.String())
}
