// Package worker runs combinations as child processes under a bounded
// pool, tracks their process groups, and enforces per-child timeouts.
package worker

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/moby/term"
	"golang.org/x/sync/errgroup"

	"github.com/jihwankim/runtest-orchestrator/pkg/reporting"
	"github.com/jihwankim/runtest-orchestrator/pkg/variant"
)

// Status classifies a completed combination's outcome, using the same
// string values as reporting.Status; ToCompletion converts a Result into
// a reporting.Completion.
type Status string

const (
	StatusPass    Status = "PASS"
	StatusFail    Status = "FAIL"
	StatusSkip    Status = "SKIP"
	StatusTimeout Status = "TIMEOUT"
)

// Result is the outcome of one launched (or skipped) combination.
type Result struct {
	Combination variant.Combination
	Status      Status
	Detail      string
	Elapsed     time.Duration
}

// LaunchOptions configures a single child invocation.
type LaunchOptions struct {
	Combination variant.Combination
	Executable  string
	Args        []string
	Env         []string
	Timeout     time.Duration
	Interactive bool // --gdb/--gdb-dex2oat: stdio inherited, no timeout enforced
	Diagnostics *Diagnostics
}

// Launch starts the run-test child in its own process group, registers
// it with tracker, and waits for completion or timeout. On timeout it
// runs the configured diagnostic sequence, then group-kills the child
// and classifies the combination as TIMEOUT. A registration that races
// a sealed tracker kills the child immediately and reports it as
// cancelled rather than ever letting it run unsupervised.
func Launch(ctx context.Context, opts LaunchOptions, tracker *Tracker) Result {
	cmd := exec.Command(opts.Executable, opts.Args...)
	cmd.Env = opts.Env
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var buf bytes.Buffer
	if opts.Interactive {
		cmd.Stdin = os.Stdin
		_, stdout, stderr := term.StdStreams()
		cmd.Stdout = stdout
		cmd.Stderr = stderr
	} else {
		cmd.Stdout = &buf
		cmd.Stderr = &buf
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return Result{Combination: opts.Combination, Status: StatusFail, Detail: err.Error(), Elapsed: time.Since(start)}
	}
	pgid := cmd.Process.Pid

	if !tracker.Register(pgid, cmd.Process) {
		killGroup(pgid)
		_ = cmd.Wait()
		return Result{Combination: opts.Combination, Status: StatusFail, Detail: "cancelled before registration", Elapsed: time.Since(start)}
	}
	defer tracker.Deregister(pgid)

	if opts.Interactive {
		err := cmd.Wait()
		return classify(opts.Combination, err, buf.String(), time.Since(start))
	}

	return waitWithTimeout(ctx, opts.Combination, cmd, pgid, opts.Timeout, opts.Diagnostics, &buf, start)
}

// waitWithTimeout races the child's exit against the timeout using an
// errgroup: the wait goroutine cancels a derived context the moment the
// child exits, waking the timeout goroutine's select without it ever
// having to poll.
func waitWithTimeout(ctx context.Context, combo variant.Combination, cmd *exec.Cmd, pgid int, timeout time.Duration, diag *Diagnostics, buf *bytes.Buffer, start time.Time) Result {
	waitCtx, cancelWait := context.WithCancel(ctx)
	defer cancelWait()

	g, gctx := errgroup.WithContext(waitCtx)

	var waitErr error
	g.Go(func() error {
		waitErr = cmd.Wait()
		cancelWait()
		return nil
	})

	timedOut := false
	g.Go(func() error {
		select {
		case <-time.After(timeout):
			timedOut = true
			if diag != nil {
				diag.Run(ctx)
			}
			killGroup(pgid)
		case <-gctx.Done():
		}
		return nil
	})

	_ = g.Wait()
	elapsed := time.Since(start)

	if timedOut {
		return Result{
			Combination: combo,
			Status:      StatusTimeout,
			Detail:      fmt.Sprintf("Timed out in %d seconds\n%s", int(timeout.Seconds()), buf.String()),
			Elapsed:     elapsed,
		}
	}
	return classify(combo, waitErr, buf.String(), elapsed)
}

func classify(combo variant.Combination, err error, output string, elapsed time.Duration) Result {
	if err != nil {
		return Result{Combination: combo, Status: StatusFail, Detail: output, Elapsed: elapsed}
	}
	return Result{Combination: combo, Status: StatusPass, Elapsed: elapsed}
}

// ToCompletion converts a Result into the reporting package's decoupled
// Completion type.
func ToCompletion(r Result) reporting.Completion {
	return reporting.Completion{
		Name:    r.Combination.Canonical(),
		Status:  reporting.Status(r.Status),
		Detail:  r.Detail,
		Elapsed: r.Elapsed,
	}
}
