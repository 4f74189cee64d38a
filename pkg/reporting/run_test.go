package reporting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunRecordAndSnapshot(t *testing.T) {
	run := NewRun(3)
	run.Record(Completion{Name: "001-HelloWorld", Status: StatusPass})
	run.Record(Completion{Name: "002-Sleep", Status: StatusSkip})
	run.Record(Completion{Name: "003-Exit", Status: StatusFail, Detail: "boom"})

	snap := run.Snapshot()
	assert.Equal(t, 3, snap.Total)
	assert.Equal(t, 1, snap.Passed)
	assert.Equal(t, []string{"002-Sleep"}, snap.Skipped)
	assert.Equal(t, []FailedEntry{{Name: "003-Exit", Detail: "boom"}}, snap.Failed)
}

func TestRunExitCode(t *testing.T) {
	run := NewRun(2)
	run.Record(Completion{Name: "001-HelloWorld", Status: StatusPass})
	assert.Equal(t, 0, run.ExitCode())

	run.Record(Completion{Name: "002-Sleep", Status: StatusTimeout})
	assert.Equal(t, 1, run.ExitCode())
}

func TestRunSnapshotSortsFailedAndSkipped(t *testing.T) {
	run := NewRun(4)
	run.Record(Completion{Name: "z-test", Status: StatusSkip})
	run.Record(Completion{Name: "a-test", Status: StatusSkip})
	run.Record(Completion{Name: "y-fail", Status: StatusFail})
	run.Record(Completion{Name: "b-fail", Status: StatusFail})

	snap := run.Snapshot()
	assert.Equal(t, []string{"a-test", "z-test"}, snap.Skipped)
	assert.Equal(t, "b-fail", snap.Failed[0].Name)
	assert.Equal(t, "y-fail", snap.Failed[1].Name)
}

func TestRunRecordIsConcurrencySafe(t *testing.T) {
	run := NewRun(100)
	done := make(chan struct{})
	for i := 0; i < 100; i++ {
		go func(i int) {
			run.Record(Completion{Name: "t", Status: StatusPass, Elapsed: time.Millisecond})
			done <- struct{}{}
		}(i)
	}
	for i := 0; i < 100; i++ {
		<-done
	}
	assert.Equal(t, 100, run.Snapshot().Passed)
}
