// Package lifecycle owns entity state transitions: elimination intake, the
// at-most-one-in-flight remediation lock, and applying asynchronous
// remediation outcomes back onto the arena.
package lifecycle

import (
	"context"
	"time"

	"github.com/colehorsman/zombie-game-sub004/internal/arena"
	"github.com/colehorsman/zombie-game-sub004/internal/collision"
	"github.com/colehorsman/zombie-game-sub004/internal/logging"
	"github.com/colehorsman/zombie-game-sub004/internal/remediation"
)

// ApplyResult classifies what happened when an outcome was applied.
type ApplyResult int

const (
	// AppliedRemoved means the remediation succeeded and the slot was freed.
	AppliedRemoved ApplyResult = iota
	// AppliedRestored means the remediation failed and the entity is
	// attackable again.
	AppliedRestored
	// DroppedStaleGeneration means the outcome belonged to a torn-down
	// session and was discarded.
	DroppedStaleGeneration
	// DroppedStaleHandle means the slot no longer holds that entity.
	DroppedStaleHandle
	// DroppedWrongState means the entity was not awaiting remediation. This
	// indicates a stale or duplicated result, never a crash.
	DroppedWrongState
)

func (r ApplyResult) String() string {
	switch r {
	case AppliedRemoved:
		return "removed"
	case AppliedRestored:
		return "restored"
	case DroppedStaleGeneration:
		return "stale_generation"
	case DroppedStaleHandle:
		return "stale_handle"
	case DroppedWrongState:
		return "wrong_state"
	default:
		return "unknown"
	}
}

// Manager drives the entity state machine. All methods must be called from
// the simulation goroutine; outcomes produced by background workers reach
// the manager only through the tick-start drain in the world step.
type Manager struct {
	entities      *arena.Arena
	queue         []collision.Elimination
	publisher     logging.Publisher
	clock         logging.Clock
	restoreHealth int
	pending       int
}

// NewManager wires the manager to the arena it owns. restoreHealth is the
// minimum health a failed remediation restores, floored at 1 so restored
// entities stay visible and attackable.
func NewManager(entities *arena.Arena, publisher logging.Publisher, restoreHealth int) *Manager {
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	if restoreHealth < 1 {
		restoreHealth = 1
	}
	return &Manager{
		entities:      entities,
		publisher:     publisher,
		clock:         logging.SystemClock{},
		restoreHealth: restoreHealth,
	}
}

// SetClock overrides the wall clock, for deterministic tests.
func (m *Manager) SetClock(clock logging.Clock) {
	if m == nil || clock == nil {
		return
	}
	m.clock = clock
}

// QueueEliminations stages scan results for the end-of-tick drain. State is
// not touched here; all transitions happen at the single drain point.
func (m *Manager) QueueEliminations(events []collision.Elimination) {
	if m == nil || len(events) == 0 {
		return
	}
	m.queue = append(m.queue, events...)
}

// Drain transitions each staged entity ACTIVE → PENDING_REMEDIATION and
// returns the events that actually transitioned. Duplicates and entities
// already past ACTIVE are dropped, which is what guarantees at most one
// remediation in flight per entity.
func (m *Manager) Drain(tick uint64) []collision.Elimination {
	if m == nil || len(m.queue) == 0 {
		return nil
	}
	var transitioned []collision.Elimination
	for _, event := range m.queue {
		entity, ok := m.entities.Get(event.Handle)
		if !ok || entity.State != arena.StateActive || entity.Protected {
			continue
		}
		entity.State = arena.StatePendingRemediation
		m.pending++
		transitioned = append(transitioned, event)
		m.publish(logging.Event{
			Type:     logging.EventEntityEliminated,
			Tick:     tick,
			Actor:    logging.EntityRef{ID: event.EntityID, Kind: logging.EntityKindEntity},
			Severity: logging.SeverityInfo,
			Category: logging.CategoryGameplay,
		})
	}
	m.queue = m.queue[:0]
	return transitioned
}

// MarkRemoved removes an entity speculatively, used by deferred mode where
// the player sees the entity disappear before the backend is consulted. The
// slot is freed; a later failed batch entry does not bring it back.
func (m *Manager) MarkRemoved(h arena.Handle, tick uint64) bool {
	if m == nil {
		return false
	}
	entity, ok := m.entities.Get(h)
	if !ok {
		return false
	}
	if entity.State == arena.StatePendingRemediation {
		m.pending--
	}
	entityID := entity.ID
	entity.State = arena.StateRemoved
	m.entities.Release(h)
	m.publish(logging.Event{
		Type:     logging.EventEntityRemoved,
		Tick:     tick,
		Actor:    logging.EntityRef{ID: entityID, Kind: logging.EntityKindEntity},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGameplay,
	})
	return true
}

// ApplyOutcome applies one asynchronous remediation outcome. Stale results
// are logged and discarded; they indicate a cancelled or superseded call,
// not a caller bug, and must never take down the loop.
func (m *Manager) ApplyOutcome(outcome remediation.Outcome, activeGeneration uint64, tick uint64) ApplyResult {
	if m == nil {
		return DroppedStaleHandle
	}
	if outcome.Generation != activeGeneration {
		m.dropStale(outcome, tick, "session generation mismatch")
		return DroppedStaleGeneration
	}
	entity, ok := m.entities.Get(outcome.Handle)
	if !ok {
		m.dropStale(outcome, tick, "handle no longer resolves")
		return DroppedStaleHandle
	}
	if entity.State != arena.StatePendingRemediation {
		m.dropStale(outcome, tick, "entity not awaiting remediation")
		return DroppedWrongState
	}
	m.pending--
	if outcome.Success() {
		entity.State = arena.StateRemoved
		entityID := entity.ID
		m.entities.Release(outcome.Handle)
		m.publish(logging.Event{
			Type:     logging.EventEntityRemoved,
			Tick:     tick,
			Actor:    logging.EntityRef{ID: entityID, Kind: logging.EntityKindEntity},
			Severity: logging.SeverityInfo,
			Category: logging.CategoryRemediation,
			Extra:    map[string]any{"request_id": outcome.ID, "retries": outcome.RetryCount},
		})
		return AppliedRemoved
	}
	entity.State = arena.StateActive
	entity.Health = m.restoreHealth
	if entity.Health > entity.MaxHealth {
		entity.Health = entity.MaxHealth
	}
	m.publish(logging.Event{
		Type:     logging.EventEntityRestored,
		Tick:     tick,
		Actor:    logging.EntityRef{ID: entity.ID, Kind: logging.EntityKindEntity},
		Severity: logging.SeverityWarn,
		Category: logging.CategoryRemediation,
		Extra:    map[string]any{"request_id": outcome.ID, "retries": outcome.RetryCount},
	})
	return AppliedRestored
}

// Pending reports how many entities are awaiting a remediation outcome.
func (m *Manager) Pending() int {
	if m == nil {
		return 0
	}
	return m.pending
}

func (m *Manager) dropStale(outcome remediation.Outcome, tick uint64, reason string) {
	m.publish(logging.Event{
		Type:     logging.EventStaleResultDropped,
		Tick:     tick,
		Actor:    logging.EntityRef{ID: outcome.EntityID, Kind: logging.EntityKindEntity},
		Severity: logging.SeverityWarn,
		Category: logging.CategoryRemediation,
		Extra:    map[string]any{"request_id": outcome.ID, "reason": reason},
	})
}

func (m *Manager) publish(event logging.Event) {
	if event.Time.IsZero() {
		event.Time = m.now()
	}
	m.publisher.Publish(context.Background(), event)
}

func (m *Manager) now() time.Time {
	if m.clock == nil {
		return time.Now()
	}
	return m.clock.Now()
}
