package worker

import (
	"os"
	"sync"
	"syscall"
)

// Tracker is the shared, mutex-guarded registry of running child process
// groups. Every child is launched with Setpgid so its entire subtree —
// not just the direct child — can be killed in one shot; the tracker
// indexes by process group id for exactly that reason.
//
// KillAll seals the tracker: once sealed, any registration races with
// cancellation by killing the child the moment it registers instead of
// adding it to the live set.
type Tracker struct {
	mu     sync.Mutex
	procs  map[int]*os.Process
	sealed bool
}

// NewTracker returns an empty, unsealed Tracker.
func NewTracker() *Tracker {
	return &Tracker{procs: make(map[int]*os.Process)}
}

// Register adds a running child's process group to the live set. It
// reports false if the tracker is already sealed, in which case the
// caller must kill the group itself — the registration lost the race
// against a concurrent KillAll.
func (t *Tracker) Register(pgid int, proc *os.Process) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sealed {
		return false
	}
	t.procs[pgid] = proc
	return true
}

// Deregister removes a process group from the live set once its child
// has exited, including after a timeout group-kill.
func (t *Tracker) Deregister(pgid int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.procs, pgid)
}

// KillAll atomically group-kills every tracked process and seals the
// tracker so no further registration succeeds.
func (t *Tracker) KillAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sealed = true
	for pgid := range t.procs {
		killGroup(pgid)
	}
	t.procs = make(map[int]*os.Process)
}

// Sealed reports whether KillAll has already run.
func (t *Tracker) Sealed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sealed
}

// killGroup sends SIGKILL to every process in pgid's group. The negative
// pid is the POSIX convention for "the whole group".
func killGroup(pgid int) {
	_ = syscall.Kill(-pgid, syscall.SIGKILL)
}
