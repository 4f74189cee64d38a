package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jihwankim/runtest-orchestrator/pkg/variant"
)

func TestLaunchPass(t *testing.T) {
	tracker := NewTracker()
	result := Launch(context.Background(), LaunchOptions{
		Combination: variant.Combination{Test: "001-HelloWorld"},
		Executable:  "/bin/true",
		Timeout:     5 * time.Second,
	}, tracker)

	assert.Equal(t, StatusPass, result.Status)
	assert.Equal(t, "001-HelloWorld", result.Combination.Test)
}

func TestLaunchFail(t *testing.T) {
	tracker := NewTracker()
	result := Launch(context.Background(), LaunchOptions{
		Combination: variant.Combination{Test: "002-Sleep"},
		Executable:  "/bin/false",
		Timeout:     5 * time.Second,
	}, tracker)

	assert.Equal(t, StatusFail, result.Status)
}

func TestLaunchTimeout(t *testing.T) {
	tracker := NewTracker()
	result := Launch(context.Background(), LaunchOptions{
		Combination: variant.Combination{Test: "003-Sleep"},
		Executable:  "/bin/sleep",
		Args:        []string{"5"},
		Timeout:     100 * time.Millisecond,
	}, tracker)

	assert.Equal(t, StatusTimeout, result.Status)
}

func TestLaunchMissingExecutable(t *testing.T) {
	tracker := NewTracker()
	result := Launch(context.Background(), LaunchOptions{
		Executable: "/no/such/binary",
		Timeout:    time.Second,
	}, tracker)

	assert.Equal(t, StatusFail, result.Status)
	assert.NotEmpty(t, result.Detail)
}

func TestLaunchRejectedBySealedTracker(t *testing.T) {
	tracker := NewTracker()
	tracker.KillAll()

	result := Launch(context.Background(), LaunchOptions{
		Executable: "/bin/sleep",
		Args:       []string{"5"},
		Timeout:    time.Second,
	}, tracker)

	require.Equal(t, StatusFail, result.Status)
	assert.Equal(t, "cancelled before registration", result.Detail)
}

func TestToCompletion(t *testing.T) {
	r := Result{
		Combination: variant.Combination{Test: "001-HelloWorld", Target: variant.TagTargetHost},
		Status:      StatusPass,
		Elapsed:     2 * time.Second,
	}
	c := ToCompletion(r)
	assert.Equal(t, r.Combination.Canonical(), c.Name)
	assert.Equal(t, "PASS", string(c.Status))
}
