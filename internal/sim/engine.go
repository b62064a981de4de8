package sim

import "time"

// TickContext carries the scheduling facts for one simulation step.
type TickContext struct {
	Tick  uint64
	Now   time.Time
	Delta float64
}

// Engine defines the minimal surface the loop drives each tick.
type Engine interface {
	Apply([]Command) error
	Step(TickContext)
	Snapshot() Snapshot
}
