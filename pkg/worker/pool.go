package worker

import (
	"math"
	"sync"

	"github.com/JekaMas/workerpool"
	"github.com/gammazero/deque"

	"github.com/jihwankim/runtest-orchestrator/pkg/variant"
)

// Size computes the bounded-parallelism worker count: full host-CPU
// count for host-only runs, ceil(0.75 x target-CPU-count) when any
// target combination is present (full target count on VM-style
// targets, which have no contention with a physically separate host),
// clamped to at least one. --gdb/--gdb-dex2oat force interactive mode,
// which always serializes to a single worker.
func Size(hostCPUs, targetCPUs int, hasTarget, isVM, interactive bool) int {
	if interactive {
		return 1
	}
	n := hostCPUs
	if hasTarget {
		if isVM {
			n = targetCPUs
		} else {
			n = int(math.Ceil(float64(targetCPUs) * 0.75))
		}
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Pool is the bounded-parallel executor over variant.Combination values.
// Submitted combinations sit in a FIFO deque until Dispatch hands them to
// the underlying worker pool. Cancel drains that deque, and a task that
// was handed over but has not started when Cancel runs returns without
// running its combination, so cancelling stops all not-yet-started work.
type Pool struct {
	wp      *workerpool.WorkerPool
	tracker *Tracker

	mu        sync.Mutex
	pending   *deque.Deque[variant.Combination]
	cancelled bool
}

// NewPool builds a Pool with the given number of concurrent workers.
func NewPool(size int) *Pool {
	return &Pool{
		wp:      workerpool.New(size),
		tracker: NewTracker(),
		pending: deque.New[variant.Combination](),
	}
}

// Tracker returns the pool's shared child tracker.
func (p *Pool) Tracker() *Tracker { return p.tracker }

// Enqueue appends combinations to the pending queue, in the order given.
// Expansion order (test outermost, then target, then axis order, then
// address size) is preserved end to end since Dispatch drains FIFO.
func (p *Pool) Enqueue(combos []variant.Combination) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, c := range combos {
		p.pending.PushBack(c)
	}
}

// Dispatch drains the pending queue, submitting each combination to the
// underlying worker pool via run, until the queue is empty or Cancel has
// been called. It blocks only on the pool's own submission discipline,
// never on combination completion.
func (p *Pool) Dispatch(run func(variant.Combination)) {
	for {
		p.mu.Lock()
		if p.cancelled || p.pending.Len() == 0 {
			p.mu.Unlock()
			return
		}
		c := p.pending.PopFront()
		p.mu.Unlock()

		combo := c
		p.wp.Submit(func() {
			p.mu.Lock()
			cancelled := p.cancelled
			p.mu.Unlock()
			if cancelled {
				return
			}
			run(combo)
		})
	}
}

// Cancel discards every combination still sitting in the pending queue
// and stops Dispatch from submitting more; submitted tasks that have not
// started yet return without running. It does not touch already-running
// work; pair with Tracker().KillAll() to also stop what's in flight.
func (p *Pool) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelled = true
	p.pending.Clear()
}

// StopWait blocks until every already-submitted task has completed, then
// releases the pool's worker goroutines.
func (p *Pool) StopWait() {
	p.wp.StopWait()
}
