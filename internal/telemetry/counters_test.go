package telemetry

import (
	"testing"
	"time"
)

func TestCountersSnapshot(t *testing.T) {
	c := NewCounters()
	c.RecordTick(3 * time.Millisecond)
	c.RecordTick(5 * time.Millisecond)
	c.RecordScan(42, 7, 12)
	c.RecordProjectile()
	c.RecordElimination()
	c.RecordRemediationIssued()
	c.RecordRemediationOutcome(true)
	c.RecordRemediationOutcome(false)
	c.RecordStaleDropped()
	c.RecordBroadcast(1024, 42)

	got := c.Snapshot()
	if got.Ticks != 2 {
		t.Fatalf("expected 2 ticks, got %d", got.Ticks)
	}
	if got.TickDurationMillis != 5 {
		t.Fatalf("expected last tick duration 5ms, got %d", got.TickDurationMillis)
	}
	if got.GridPopulation != 42 || got.NarrowTests != 7 || got.Candidates != 12 {
		t.Fatalf("unexpected scan counters: %+v", got)
	}
	if got.RemediationsIssued != 1 || got.RemediationsOK != 1 || got.RemediationsFailed != 1 {
		t.Fatalf("unexpected remediation counters: %+v", got)
	}
	if got.StaleDropped != 1 {
		t.Fatalf("expected 1 stale drop, got %d", got.StaleDropped)
	}
	if got.BroadcastBytes != 1024 || got.BroadcastEntities != 42 {
		t.Fatalf("unexpected broadcast counters: %+v", got)
	}
}

func TestCountersGridPopulationIsGauge(t *testing.T) {
	c := NewCounters()
	c.RecordScan(100, 0, 0)
	c.RecordScan(60, 0, 0)
	if got := c.Snapshot().GridPopulation; got != 60 {
		t.Fatalf("expected latest population, got %d", got)
	}
}

func TestNilCountersAreInert(t *testing.T) {
	var c *Counters
	c.RecordTick(time.Millisecond)
	c.RecordScan(1, 1, 1)
	c.RecordProjectile()
	c.RecordElimination()
	c.RecordRemediationIssued()
	c.RecordRemediationOutcome(true)
	c.RecordStaleDropped()
	c.RecordBroadcast(1, 1)
	if got := c.Snapshot(); got != (Snapshot{}) {
		t.Fatalf("expected zero snapshot from nil counters, got %+v", got)
	}
}
