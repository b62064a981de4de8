package remediation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversOutcomes(t *testing.T) {
	client := ClientFunc(func(context.Context, Request) Result {
		return Result{Success: true}
	})
	d := NewDispatcher(client, fastPolicy(), 2, 4)
	d.Start(context.Background())
	defer d.Stop()

	accepted, _ := d.Dispatch(testRequest())
	require.True(t, accepted)

	select {
	case outcome := <-d.Results():
		assert.True(t, outcome.Success())
		assert.Equal(t, "res-1", outcome.EntityID)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for outcome")
	}
}

func TestDispatcherRejectsWhenSaturated(t *testing.T) {
	release := make(chan struct{})
	client := ClientFunc(func(ctx context.Context, _ Request) Result {
		select {
		case <-release:
		case <-ctx.Done():
		}
		return Result{Success: true}
	})
	d := NewDispatcher(client, fastPolicy(), 1, 1)
	d.Start(context.Background())
	defer d.Stop()
	defer close(release)

	// One request occupies the worker, one fills the queue. Depending on
	// scheduling the first may not have been picked up yet, so stage until
	// the queue reports full.
	deadline := time.Now().Add(time.Second)
	var rejected bool
	var synthetic Outcome
	for time.Now().Before(deadline) {
		accepted, outcome := d.Dispatch(testRequest())
		if !accepted {
			rejected = true
			synthetic = outcome
			break
		}
	}
	require.True(t, rejected, "expected saturation rejection")
	assert.Equal(t, RequestFailedTransient, synthetic.State)
	assert.False(t, synthetic.Success())
	assert.Error(t, synthetic.Err)
}

func TestDispatcherStopIsIdempotent(t *testing.T) {
	d := NewDispatcher(ClientFunc(func(context.Context, Request) Result {
		return Result{Success: true}
	}), fastPolicy(), 1, 1)
	d.Start(context.Background())
	d.Stop()
	d.Stop()
}

func TestNilDispatcherRejects(t *testing.T) {
	var d *Dispatcher
	accepted, outcome := d.Dispatch(testRequest())
	assert.False(t, accepted)
	assert.Equal(t, RequestFailedTransient, outcome.State)
}
