package remediation

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colehorsman/zombie-game-sub004/internal/arena"
)

func fastPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 4,
		BaseDelay:   time.Millisecond,
		MaxDelay:    4 * time.Millisecond,
		CallTimeout: time.Second,
	}
}

func testRequest() Request {
	return NewRequest("res-1", arena.Handle{Index: 0, Generation: 1}, arena.KindResource, "arn:res-1", 3)
}

func TestAttemptSucceedsFirstTry(t *testing.T) {
	var calls int32
	client := ClientFunc(func(context.Context, Request) Result {
		atomic.AddInt32(&calls, 1)
		return Result{Success: true}
	})

	outcome := Attempt(context.Background(), client, testRequest(), fastPolicy())
	require.True(t, outcome.Success())
	assert.Equal(t, RequestSucceeded, outcome.State)
	assert.Equal(t, 0, outcome.RetryCount)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestAttemptRetriesTransientThenSucceeds(t *testing.T) {
	var calls int32
	client := ClientFunc(func(context.Context, Request) Result {
		if atomic.AddInt32(&calls, 1) <= 2 {
			return Result{ErrorKind: ErrorKindTransient, Err: errors.New("backend timeout")}
		}
		return Result{Success: true}
	})

	outcome := Attempt(context.Background(), client, testRequest(), fastPolicy())
	require.True(t, outcome.Success())
	assert.Equal(t, 2, outcome.RetryCount, "two timeouts before success")
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestAttemptPermanentFailureNeverRetries(t *testing.T) {
	var calls int32
	client := ClientFunc(func(context.Context, Request) Result {
		atomic.AddInt32(&calls, 1)
		return Result{ErrorKind: ErrorKindPermanent, Err: errors.New("access denied")}
	})

	outcome := Attempt(context.Background(), client, testRequest(), fastPolicy())
	require.False(t, outcome.Success())
	assert.Equal(t, RequestFailedPermanent, outcome.State)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "permanent failures must not retry")
	assert.Error(t, outcome.Err)
}

func TestAttemptEscalatesExhaustedTransientBudget(t *testing.T) {
	var calls int32
	client := ClientFunc(func(context.Context, Request) Result {
		atomic.AddInt32(&calls, 1)
		return Result{ErrorKind: ErrorKindTransient}
	})

	policy := fastPolicy()
	outcome := Attempt(context.Background(), client, testRequest(), policy)
	require.False(t, outcome.Success())
	assert.Equal(t, RequestFailedPermanent, outcome.State, "exhausted transient budget escalates")
	assert.Equal(t, int32(policy.MaxAttempts), atomic.LoadInt32(&calls))
	assert.Equal(t, policy.MaxAttempts-1, outcome.RetryCount)
}

func TestAttemptHonoursContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	client := ClientFunc(func(context.Context, Request) Result {
		cancel()
		return Result{ErrorKind: ErrorKindTransient}
	})

	outcome := Attempt(ctx, client, testRequest(), fastPolicy())
	require.False(t, outcome.Success())
	assert.Equal(t, RequestFailedPermanent, outcome.State)
}

func TestAttemptNilClientFailsPermanent(t *testing.T) {
	outcome := Attempt(context.Background(), nil, testRequest(), fastPolicy())
	require.False(t, outcome.Success())
	assert.Equal(t, RequestFailedPermanent, outcome.State)
	assert.Error(t, outcome.Err)
	assert.Zero(t, outcome.RetryCount)
}

func TestClientFuncNilIsPermanentFailure(t *testing.T) {
	var f ClientFunc
	result := f.Remediate(context.Background(), testRequest())
	assert.False(t, result.Success)
	assert.Equal(t, ErrorKindPermanent, result.ErrorKind)
}
