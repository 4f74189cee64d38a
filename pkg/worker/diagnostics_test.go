package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingExecutor struct {
	calls [][]string
}

func (r *recordingExecutor) Exec(ctx context.Context, args []string) (string, error) {
	r.calls = append(r.calls, args)
	switch args[0] {
	case "pgrep":
		return "111\n", nil
	default:
		return "dummy output", nil
	}
}

func TestDiagnosticsRunNilIsNoop(t *testing.T) {
	var d *Diagnostics
	d.Run(context.Background())
}

func TestDiagnosticsRunFullSchedule(t *testing.T) {
	exec := &recordingExecutor{}
	d := &Diagnostics{
		Exec:         exec,
		ProcessName:  "dalvikvm",
		BacktraceCmd: []string{"debuggerd", "-b"},
		InnerSleep:   time.Millisecond,
		OuterSleep:   time.Millisecond,
	}

	d.Run(context.Background())

	var backtraceCalls int
	var pgrepCalls int
	for _, call := range exec.calls {
		switch call[0] {
		case "debuggerd":
			backtraceCalls++
		case "pgrep":
			pgrepCalls++
		}
	}
	require.Equal(t, 1, backtraceCalls)
	assert.Equal(t, 8, pgrepCalls)
}

func TestDiagnosticsRunWithNoExecIsNoop(t *testing.T) {
	d := &Diagnostics{}
	d.Run(context.Background())
}
