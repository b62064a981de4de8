// Package remediation issues the external side-effecting calls triggered by
// entity eliminations, with retry, bounded dispatch, and deferred batching.
package remediation

import (
	"context"

	"github.com/oklog/ulid/v2"

	"github.com/colehorsman/zombie-game-sub004/internal/arena"
)

// ErrorKind distinguishes retryable from terminal remediation failures.
type ErrorKind int

const (
	ErrorKindNone ErrorKind = iota
	// ErrorKindTransient covers timeouts, rate limits, and other failures
	// worth retrying with backoff.
	ErrorKindTransient
	// ErrorKindPermanent covers failures that retrying cannot fix, such as
	// a missing resource or denied authorization.
	ErrorKindPermanent
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindNone:
		return "none"
	case ErrorKindTransient:
		return "transient"
	case ErrorKindPermanent:
		return "permanent"
	default:
		return "unknown"
	}
}

// RequestState tracks a request through the pipeline.
type RequestState int

const (
	RequestPending RequestState = iota
	RequestSucceeded
	RequestFailedTransient
	RequestFailedPermanent
)

func (s RequestState) String() string {
	switch s {
	case RequestPending:
		return "pending"
	case RequestSucceeded:
		return "succeeded"
	case RequestFailedTransient:
		return "failed_transient"
	case RequestFailedPermanent:
		return "failed_permanent"
	default:
		return "unknown"
	}
}

// Request describes one remediation call. Generation carries the session
// generation at issue time so results landing after a session teardown can be
// recognized as stale and discarded.
type Request struct {
	ID         string
	EntityID   string
	Handle     arena.Handle
	Kind       arena.Kind
	Target     string
	Generation uint64
	RetryCount int
	State      RequestState
}

// NewRequest builds a request with a fresh ULID.
func NewRequest(entityID string, handle arena.Handle, kind arena.Kind, target string, generation uint64) Request {
	return Request{
		ID:         ulid.Make().String(),
		EntityID:   entityID,
		Handle:     handle,
		Kind:       kind,
		Target:     target,
		Generation: generation,
		State:      RequestPending,
	}
}

// Result is a single call's outcome as reported by a Client.
type Result struct {
	Success   bool
	ErrorKind ErrorKind
	Err       error
}

// Client is the contract an external remediation backend implements.
// Implementations must be safe to call more than once for the same entity:
// the lifecycle manager's pending lock prevents duplicates from this
// pipeline, and idempotency is the backend's defense in depth on top of it.
type Client interface {
	Remediate(ctx context.Context, req Request) Result
}

// ClientFunc adapts a function into a Client.
type ClientFunc func(ctx context.Context, req Request) Result

func (f ClientFunc) Remediate(ctx context.Context, req Request) Result {
	if f == nil {
		return Result{Success: false, ErrorKind: ErrorKindPermanent}
	}
	return f(ctx, req)
}

// Outcome is the terminal result of a request after retry handling.
type Outcome struct {
	Request
	Err error
}

// Success reports whether the request ultimately succeeded.
func (o Outcome) Success() bool {
	return o.State == RequestSucceeded
}
