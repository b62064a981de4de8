package remediation

import (
	"context"
	"sync"
)

// Dispatcher runs direct-mode remediations on a bounded worker pool so the
// simulation loop never blocks on backend I/O. Requests enter through a
// non-blocking Dispatch; terminal outcomes come back on a buffered channel
// the loop drains at the start of each tick.
type Dispatcher struct {
	client   Client
	policy   RetryPolicy
	requests chan Request
	results  chan Outcome
	workers  int

	startOnce sync.Once
	stopOnce  sync.Once
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewDispatcher sizes the pool and queues. queueDepth bounds how many
// requests may be staged or in flight at once.
func NewDispatcher(client Client, policy RetryPolicy, workers, queueDepth int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueDepth < workers {
		queueDepth = workers
	}
	return &Dispatcher{
		client:   client,
		policy:   policy,
		requests: make(chan Request, queueDepth),
		results:  make(chan Outcome, queueDepth+workers),
		workers:  workers,
	}
}

// Start launches the worker pool. Subsequent calls are no-ops.
func (d *Dispatcher) Start(ctx context.Context) {
	if d == nil {
		return
	}
	d.startOnce.Do(func() {
		ctx, d.cancel = context.WithCancel(ctx)
		for i := 0; i < d.workers; i++ {
			d.wg.Add(1)
			go d.run(ctx)
		}
	})
}

func (d *Dispatcher) run(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case req, ok := <-d.requests:
			if !ok {
				return
			}
			outcome := Attempt(ctx, d.client, req, d.policy)
			select {
			case d.results <- outcome:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Dispatch stages a request without blocking. When the queue is saturated it
// reports a synthetic transient failure so the caller can restore the entity
// instead of stalling the tick.
func (d *Dispatcher) Dispatch(req Request) (bool, Outcome) {
	if d == nil {
		req.State = RequestFailedTransient
		return false, Outcome{Request: req}
	}
	select {
	case d.requests <- req:
		return true, Outcome{}
	default:
		req.State = RequestFailedTransient
		return false, Outcome{Request: req, Err: errTransient}
	}
}

// Results exposes the terminal outcome stream.
func (d *Dispatcher) Results() <-chan Outcome {
	if d == nil {
		return nil
	}
	return d.results
}

// InFlight reports how many requests are currently staged.
func (d *Dispatcher) InFlight() int {
	if d == nil {
		return 0
	}
	return len(d.requests)
}

// Stop cancels outstanding work and waits for the workers to exit.
func (d *Dispatcher) Stop() {
	if d == nil {
		return
	}
	d.stopOnce.Do(func() {
		if d.cancel != nil {
			d.cancel()
		}
		d.wg.Wait()
	})
}
