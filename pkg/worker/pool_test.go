package worker

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jihwankim/runtest-orchestrator/pkg/variant"
)

func TestSizeHostOnly(t *testing.T) {
	assert.Equal(t, 8, Size(8, 0, false, false, false))
}

func TestSizeTargetThreeQuarters(t *testing.T) {
	assert.Equal(t, 3, Size(8, 4, true, false, false))
}

func TestSizeVMUsesFullTargetCount(t *testing.T) {
	assert.Equal(t, 4, Size(8, 4, true, true, false))
}

func TestSizeInteractiveForcesOne(t *testing.T) {
	assert.Equal(t, 1, Size(16, 16, true, true, true))
}

func TestSizeNeverZero(t *testing.T) {
	assert.Equal(t, 1, Size(0, 0, false, false, false))
}

func TestPoolDispatchRunsEveryCombination(t *testing.T) {
	pool := NewPool(4)
	combos := []variant.Combination{
		{Test: "001"}, {Test: "002"}, {Test: "003"},
	}
	pool.Enqueue(combos)

	var mu sync.Mutex
	var seen []string
	pool.Dispatch(func(c variant.Combination) {
		mu.Lock()
		seen = append(seen, c.Test)
		mu.Unlock()
	})
	pool.StopWait()

	assert.ElementsMatch(t, []string{"001", "002", "003"}, seen)
}

func TestPoolCancelDrainsPending(t *testing.T) {
	pool := NewPool(1)
	pool.Enqueue([]variant.Combination{{Test: "001"}, {Test: "002"}})
	pool.Cancel()

	var ran bool
	pool.Dispatch(func(c variant.Combination) { ran = true })
	pool.StopWait()

	assert.False(t, ran)
}
