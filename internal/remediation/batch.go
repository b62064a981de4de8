package remediation

import (
	"context"
	"time"

	"github.com/colehorsman/zombie-game-sub004/internal/arena"
)

// QueueEntry is one deferred remediation captured during an arcade session.
type QueueEntry struct {
	EntityID   string
	Handle     arena.Handle
	Kind       arena.Kind
	Target     string
	Generation uint64
	EnqueuedAt time.Time
}

// BatchQueue buffers deferred remediations. It is append-only until flush:
// the entity was already removed speculatively at enqueue time, so a failed
// entry is recorded but never rolls the removal back.
type BatchQueue struct {
	entries []QueueEntry
}

// NewBatchQueue returns an empty queue.
func NewBatchQueue() *BatchQueue {
	return &BatchQueue{}
}

// Enqueue appends an entry.
func (q *BatchQueue) Enqueue(entry QueueEntry) {
	if q == nil {
		return
	}
	if entry.EnqueuedAt.IsZero() {
		entry.EnqueuedAt = time.Now()
	}
	q.entries = append(q.entries, entry)
}

// Len reports the number of buffered entries.
func (q *BatchQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.entries)
}

// FlushConfig tunes batch flushing. Sleep is injectable for tests; nil means
// time.Sleep.
type FlushConfig struct {
	BatchSize       int
	InterBatchDelay time.Duration
	Sleep           func(time.Duration)
}

func (cfg FlushConfig) normalized() FlushConfig {
	normalized := cfg
	if normalized.BatchSize < 1 {
		normalized.BatchSize = 10
	}
	if normalized.Sleep == nil {
		normalized.Sleep = time.Sleep
	}
	return normalized
}

// EntryOutcome pairs a queue entry with its terminal remediation outcome.
type EntryOutcome struct {
	Entry   QueueEntry
	Outcome Outcome
}

// FlushReport summarizes a completed flush.
type FlushReport struct {
	Attempted int
	Succeeded int
	Failed    int
	Batches   int
	Outcomes  []EntryOutcome
}

// Flush drains the queue in fixed-size batches with an inter-batch delay to
// respect backend rate limits. Every entry is attempted and recorded
// independently; batch boundaries never change an entry's outcome. The queue
// is empty afterwards even if the context is cancelled mid-flush, in which
// case unattempted entries are recorded as failed.
func (q *BatchQueue) Flush(ctx context.Context, client Client, policy RetryPolicy, cfg FlushConfig) FlushReport {
	report := FlushReport{}
	if q == nil || len(q.entries) == 0 {
		return report
	}
	cfg = cfg.normalized()
	entries := q.entries
	q.entries = nil

	for start := 0; start < len(entries); start += cfg.BatchSize {
		end := start + cfg.BatchSize
		if end > len(entries) {
			end = len(entries)
		}
		if start > 0 && cfg.InterBatchDelay > 0 {
			cfg.Sleep(cfg.InterBatchDelay)
		}
		report.Batches++
		for _, entry := range entries[start:end] {
			req := NewRequest(entry.EntityID, entry.Handle, entry.Kind, entry.Target, entry.Generation)
			var outcome Outcome
			if ctx.Err() != nil {
				req.State = RequestFailedTransient
				outcome = Outcome{Request: req, Err: ctx.Err()}
			} else {
				outcome = Attempt(ctx, client, req, policy)
			}
			report.Attempted++
			if outcome.Success() {
				report.Succeeded++
			} else {
				report.Failed++
			}
			report.Outcomes = append(report.Outcomes, EntryOutcome{Entry: entry, Outcome: outcome})
		}
	}
	return report
}
