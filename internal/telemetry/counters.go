// Package telemetry carries the lightweight counters and interfaces shared
// across the server, plus the Prometheus and diagnostics serving surface.
package telemetry

import (
	"sync/atomic"
	"time"
)

// Counters aggregates per-tick simulation measurements. Everything is atomic
// so the diagnostics endpoint can snapshot without pausing the loop.
type Counters struct {
	ticks              atomic.Uint64
	tickDurationMillis atomic.Int64
	gridPopulation     atomic.Uint64
	narrowTests        atomic.Uint64
	candidates         atomic.Uint64
	projectilesFired   atomic.Uint64
	eliminations       atomic.Uint64
	remediationsIssued atomic.Uint64
	remediationsOK     atomic.Uint64
	remediationsFailed atomic.Uint64
	staleDropped       atomic.Uint64
	broadcastBytes     atomic.Uint64
	broadcastEntities  atomic.Uint64
}

// Snapshot is the JSON form served by the diagnostics endpoint.
type Snapshot struct {
	Ticks              uint64 `json:"ticks"`
	TickDurationMillis int64  `json:"tickDurationMillis"`
	GridPopulation     uint64 `json:"gridPopulation"`
	NarrowTests        uint64 `json:"narrowTests"`
	Candidates         uint64 `json:"candidates"`
	ProjectilesFired   uint64 `json:"projectilesFired"`
	Eliminations       uint64 `json:"eliminations"`
	RemediationsIssued uint64 `json:"remediationsIssued"`
	RemediationsOK     uint64 `json:"remediationsSucceeded"`
	RemediationsFailed uint64 `json:"remediationsFailed"`
	StaleDropped       uint64 `json:"staleResultsDropped"`
	BroadcastBytes     uint64 `json:"broadcastBytes"`
	BroadcastEntities  uint64 `json:"broadcastEntities"`
}

// NewCounters returns zeroed counters.
func NewCounters() *Counters {
	return &Counters{}
}

// RecordTick stores the duration of the last completed tick.
func (c *Counters) RecordTick(duration time.Duration) {
	if c == nil {
		return
	}
	c.ticks.Add(1)
	millis := duration.Milliseconds()
	if millis < 0 {
		millis = 0
	}
	c.tickDurationMillis.Store(millis)
}

// RecordScan stores one collision pass's instrumentation.
func (c *Counters) RecordScan(population int, narrowTests, candidates uint64) {
	if c == nil {
		return
	}
	if population < 0 {
		population = 0
	}
	c.gridPopulation.Store(uint64(population))
	c.narrowTests.Add(narrowTests)
	c.candidates.Add(candidates)
}

// RecordProjectile counts a fired projectile.
func (c *Counters) RecordProjectile() {
	if c == nil {
		return
	}
	c.projectilesFired.Add(1)
}

// RecordElimination counts a health-zero elimination.
func (c *Counters) RecordElimination() {
	if c == nil {
		return
	}
	c.eliminations.Add(1)
}

// RecordRemediationIssued counts an issued remediation request.
func (c *Counters) RecordRemediationIssued() {
	if c == nil {
		return
	}
	c.remediationsIssued.Add(1)
}

// RecordRemediationOutcome counts one terminal outcome.
func (c *Counters) RecordRemediationOutcome(success bool) {
	if c == nil {
		return
	}
	if success {
		c.remediationsOK.Add(1)
	} else {
		c.remediationsFailed.Add(1)
	}
}

// RecordStaleDropped counts a discarded stale result.
func (c *Counters) RecordStaleDropped() {
	if c == nil {
		return
	}
	c.staleDropped.Add(1)
}

// RecordBroadcast counts one state broadcast.
func (c *Counters) RecordBroadcast(bytes, entities int) {
	if c == nil {
		return
	}
	if bytes < 0 {
		bytes = 0
	}
	if entities < 0 {
		entities = 0
	}
	c.broadcastBytes.Add(uint64(bytes))
	c.broadcastEntities.Add(uint64(entities))
}

// Snapshot copies the counters.
func (c *Counters) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	return Snapshot{
		Ticks:              c.ticks.Load(),
		TickDurationMillis: c.tickDurationMillis.Load(),
		GridPopulation:     c.gridPopulation.Load(),
		NarrowTests:        c.narrowTests.Load(),
		Candidates:         c.candidates.Load(),
		ProjectilesFired:   c.projectilesFired.Load(),
		Eliminations:       c.eliminations.Load(),
		RemediationsIssued: c.remediationsIssued.Load(),
		RemediationsOK:     c.remediationsOK.Load(),
		RemediationsFailed: c.remediationsFailed.Load(),
		StaleDropped:       c.staleDropped.Load(),
		BroadcastBytes:     c.broadcastBytes.Load(),
		BroadcastEntities:  c.broadcastEntities.Load(),
	}
}
