package logging

import (
	"context"
	"time"
)

// EventType names a structured gameplay or pipeline event.
type EventType string

// Severity orders events for sink-side filtering.
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarn
	SeverityError
)

// EntityKind tags the actor an event refers to.
type EntityKind string

const (
	EntityKindUnknown    EntityKind = "unknown"
	EntityKindEntity     EntityKind = "entity"
	EntityKindPlayer     EntityKind = "player"
	EntityKindProjectile EntityKind = "projectile"
	EntityKindSession    EntityKind = "session"
)

// Well-known event types emitted by the simulation core.
const (
	EventEntityEliminated    EventType = "entity.eliminated"
	EventEntityRemoved       EventType = "entity.removed"
	EventEntityRestored      EventType = "entity.restored"
	EventRemediationIssued   EventType = "remediation.issued"
	EventRemediationResolved EventType = "remediation.resolved"
	EventStaleResultDropped  EventType = "remediation.stale_dropped"
	EventBatchFlushed        EventType = "batch.flushed"
	EventSessionStarted      EventType = "session.started"
	EventSessionEnded        EventType = "session.ended"
)

const (
	CategoryGameplay    = "gameplay"
	CategoryRemediation = "remediation"
	CategorySystem      = "system"
)

// EntityRef identifies the subject of an event.
type EntityRef struct {
	ID   string     `json:"id"`
	Kind EntityKind `json:"kind"`
}

// Event is the structured record published by simulation components.
type Event struct {
	Type     EventType      `json:"type"`
	Tick     uint64         `json:"tick"`
	Time     time.Time      `json:"time"`
	Actor    EntityRef      `json:"actor"`
	Severity Severity       `json:"severity"`
	Category string         `json:"category,omitempty"`
	Payload  any            `json:"payload,omitempty"`
	Extra    map[string]any `json:"extra,omitempty"`
}

// Publisher receives events from the simulation core.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// PublisherFunc adapts a function into a Publisher.
type PublisherFunc func(ctx context.Context, event Event)

func (f PublisherFunc) Publish(ctx context.Context, event Event) {
	if f == nil {
		return
	}
	f(ctx, event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) {}

// NopPublisher returns a publisher that drops every event.
func NopPublisher() Publisher {
	return nopPublisher{}
}

// WithFields wraps a publisher so every event carries the provided extras.
// Caller-supplied extras win on key collisions.
func WithFields(next Publisher, fields map[string]any) Publisher {
	if next == nil || len(fields) == 0 {
		return next
	}
	return &fieldPublisher{next: next, fields: fields}
}

type fieldPublisher struct {
	next   Publisher
	fields map[string]any
}

func (p *fieldPublisher) Publish(ctx context.Context, event Event) {
	if p == nil || p.next == nil {
		return
	}
	if len(p.fields) > 0 {
		if event.Extra == nil {
			event.Extra = make(map[string]any, len(p.fields))
		} else {
			cloned := make(map[string]any, len(event.Extra)+len(p.fields))
			for k, v := range event.Extra {
				cloned[k] = v
			}
			event.Extra = cloned
		}
		for k, v := range p.fields {
			if _, exists := event.Extra[k]; !exists {
				event.Extra[k] = v
			}
		}
	}
	p.next.Publish(ctx, event)
}

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
