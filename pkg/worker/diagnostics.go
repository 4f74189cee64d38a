package worker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jihwankim/runtest-orchestrator/pkg/discovery"
	"github.com/jihwankim/runtest-orchestrator/pkg/reporting"
)

// Diagnostics runs the fixed eight-iteration diagnostic schedule against
// a connected device when a combination times out: locate the child
// process by name via the device shell, trigger the device's backtrace
// tool after the fourth iteration, and dump each located process's
// /proc stat and status between iterations. The schedule's rationale
// isn't documented anywhere upstream; this implementation only
// preserves it.
type Diagnostics struct {
	Exec         discovery.RemoteExecutor
	ProcessName  string
	BacktraceCmd []string
	InnerSleep   time.Duration
	OuterSleep   time.Duration
	Logger       *reporting.Logger
}

// Run executes the schedule. It is a no-op when Exec is nil, i.e. the
// combination under timeout was not a connected-device run.
func (d *Diagnostics) Run(ctx context.Context) {
	if d == nil || d.Exec == nil {
		return
	}
	for iteration := 1; iteration <= 8; iteration++ {
		pids, err := d.locatePIDs(ctx)
		if err != nil && d.Logger != nil {
			d.Logger.Warn("diagnostic pid lookup failed", "iteration", iteration, "error", err)
		}

		if iteration == 4 && len(d.BacktraceCmd) > 0 {
			if _, err := d.Exec.Exec(ctx, d.BacktraceCmd); err != nil && d.Logger != nil {
				d.Logger.Warn("diagnostic backtrace tool failed", "error", err)
			}
			time.Sleep(d.InnerSleep)
		}

		for _, pid := range pids {
			d.dumpProc(ctx, pid)
		}
		time.Sleep(d.OuterSleep)
	}
}

func (d *Diagnostics) locatePIDs(ctx context.Context) ([]string, error) {
	out, err := d.Exec.Exec(ctx, []string{"pgrep", "-f", d.ProcessName})
	if err != nil {
		return nil, err
	}
	return strings.Fields(out), nil
}

func (d *Diagnostics) dumpProc(ctx context.Context, pid string) {
	for _, file := range []string{"stat", "status"} {
		out, err := d.Exec.Exec(ctx, []string{"cat", fmt.Sprintf("/proc/%s/%s", pid, file)})
		if err != nil || d.Logger == nil {
			continue
		}
		d.Logger.Debug("timeout diagnostic dump", "pid", pid, "file", file, "content", out)
	}
}
