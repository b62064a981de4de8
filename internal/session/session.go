// Package session tracks the active session generation and aggregates
// remediation outcomes for end-of-session reporting.
package session

import "sync/atomic"

// Tracker hands out the session generation counter. Remediation results are
// tagged with the generation at issue time; a result whose generation no
// longer matches is stale and gets discarded instead of corrupting a newly
// loaded session.
type Tracker struct {
	generation atomic.Uint64
}

// Generation returns the active session generation.
func (t *Tracker) Generation() uint64 {
	if t == nil {
		return 0
	}
	return t.generation.Load()
}

// Advance moves to the next generation, invalidating in-flight results from
// the previous session, and returns the new value.
func (t *Tracker) Advance() uint64 {
	if t == nil {
		return 0
	}
	return t.generation.Add(1)
}

// Summary counts remediation outcomes. Counters are atomic because direct
// outcomes land from the simulation goroutine while batch flushes report
// from the teardown path.
type Summary struct {
	attempted atomic.Uint64
	succeeded atomic.Uint64
	failed    atomic.Uint64
}

// RecordOutcome counts one terminal remediation result.
func (s *Summary) RecordOutcome(success bool) {
	if s == nil {
		return
	}
	s.attempted.Add(1)
	if success {
		s.succeeded.Add(1)
	} else {
		s.failed.Add(1)
	}
}

// Reset clears the counters for a new session.
func (s *Summary) Reset() {
	if s == nil {
		return
	}
	s.attempted.Store(0)
	s.succeeded.Store(0)
	s.failed.Store(0)
}

// SummarySnapshot is the wire form served to results presentation.
type SummarySnapshot struct {
	Attempted uint64 `json:"attempted" jsonschema:"description=Remediations attempted during the session"`
	Succeeded uint64 `json:"succeeded" jsonschema:"description=Remediations the backend confirmed"`
	Failed    uint64 `json:"failed" jsonschema:"description=Remediations that failed after retries"`
}

// Snapshot returns a consistent copy of the counters.
func (s *Summary) Snapshot() SummarySnapshot {
	if s == nil {
		return SummarySnapshot{}
	}
	return SummarySnapshot{
		Attempted: s.attempted.Load(),
		Succeeded: s.succeeded.Load(),
		Failed:    s.failed.Load(),
	}
}
