package session

import (
	"sync"
	"testing"
)

func TestTrackerAdvance(t *testing.T) {
	var tracker Tracker
	if tracker.Generation() != 0 {
		t.Fatalf("expected zero initial generation")
	}
	if got := tracker.Advance(); got != 1 {
		t.Fatalf("expected generation 1, got %d", got)
	}
	if got := tracker.Advance(); got != 2 {
		t.Fatalf("expected generation 2, got %d", got)
	}
	if tracker.Generation() != 2 {
		t.Fatalf("expected current generation 2, got %d", tracker.Generation())
	}
}

func TestSummaryCountsOutcomes(t *testing.T) {
	var summary Summary
	summary.RecordOutcome(true)
	summary.RecordOutcome(true)
	summary.RecordOutcome(false)

	snapshot := summary.Snapshot()
	if snapshot.Attempted != 3 || snapshot.Succeeded != 2 || snapshot.Failed != 1 {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}

	summary.Reset()
	if got := summary.Snapshot(); got.Attempted != 0 || got.Succeeded != 0 || got.Failed != 0 {
		t.Fatalf("expected cleared counters, got %+v", got)
	}
}

func TestSummaryConcurrentRecording(t *testing.T) {
	var summary Summary
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(success bool) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				summary.RecordOutcome(success)
			}
		}(i%2 == 0)
	}
	wg.Wait()

	snapshot := summary.Snapshot()
	if snapshot.Attempted != 800 || snapshot.Succeeded != 400 || snapshot.Failed != 400 {
		t.Fatalf("unexpected totals: %+v", snapshot)
	}
}
