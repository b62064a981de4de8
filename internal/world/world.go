// Package world owns the authoritative simulation state: the entity arena,
// the spatial grid, players and projectiles, and the tick step that glues
// collision resolution to the remediation pipeline.
package world

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/colehorsman/zombie-game-sub004/internal/arena"
	"github.com/colehorsman/zombie-game-sub004/internal/collision"
	"github.com/colehorsman/zombie-game-sub004/internal/grid"
	"github.com/colehorsman/zombie-game-sub004/internal/lifecycle"
	"github.com/colehorsman/zombie-game-sub004/internal/logging"
	"github.com/colehorsman/zombie-game-sub004/internal/remediation"
	"github.com/colehorsman/zombie-game-sub004/internal/session"
	"github.com/colehorsman/zombie-game-sub004/internal/sim"
	"github.com/colehorsman/zombie-game-sub004/internal/telemetry"
)

// Deps carries the shared infrastructure the world needs.
type Deps struct {
	Publisher logging.Publisher
	Counters  *telemetry.Counters
	Metrics   *telemetry.Metrics
	Client    remediation.Client
	Clock     logging.Clock
}

type playerState struct {
	sim.PlayerView
	intentX       float64
	intentY       float64
	lastHeartbeat time.Time
	lastRTT       time.Duration
	cooldownUntil time.Time
}

// World owns the authoritative simulation state. All mutation happens on the
// loop goroutine; background remediation results enter only through the
// outcome drain at the start of Step.
type World struct {
	config     Config
	entities   *arena.Arena
	index      *grid.Grid
	resolver   *collision.Resolver
	lifecycle  *lifecycle.Manager
	dispatcher *remediation.Dispatcher
	batch      *remediation.BatchQueue
	sessions   *session.Tracker
	summary    *session.Summary
	client     remediation.Client

	players        map[string]*playerState
	projectiles    []*collision.Projectile
	nextProjectile uint64

	publisher logging.Publisher
	counters  *telemetry.Counters
	metrics   *telemetry.Metrics
	clock     logging.Clock

	currentTick uint64
	viewport    arena.AABB
}

// New constructs a world. The dispatcher is created but not started; call
// Start before running the loop.
func New(cfg Config, deps Deps) *World {
	cfg = cfg.normalized()
	if deps.Publisher == nil {
		deps.Publisher = logging.NopPublisher()
	}
	if deps.Counters == nil {
		deps.Counters = telemetry.NewCounters()
	}
	if deps.Clock == nil {
		deps.Clock = logging.SystemClock{}
	}

	entities := arena.New(256)
	w := &World{
		config:     cfg,
		entities:   entities,
		index:      grid.New(cfg.CellSize),
		resolver:   collision.NewResolver(),
		lifecycle:  lifecycle.NewManager(entities, deps.Publisher, cfg.RestoreHealth),
		dispatcher: remediation.NewDispatcher(deps.Client, cfg.RetryPolicy, cfg.DispatchWorkers, cfg.DispatchQueue),
		batch:      remediation.NewBatchQueue(),
		client:     deps.Client,
		sessions:   &session.Tracker{},
		summary:    &session.Summary{},
		players:    make(map[string]*playerState),
		publisher:  deps.Publisher,
		counters:   deps.Counters,
		metrics:    deps.Metrics,
		clock:      deps.Clock,
	}
	w.lifecycle.SetClock(deps.Clock)
	w.viewport = arena.AABB{
		X:     cfg.Width / 2,
		Y:     cfg.Height / 2,
		HalfW: cfg.Width / 2,
		HalfH: cfg.Height / 2,
	}
	return w
}

// Start launches the background remediation workers.
func (w *World) Start(ctx context.Context) {
	if w == nil {
		return
	}
	w.dispatcher.Start(ctx)
}

// LoadSession replaces the population with the supplied records and starts a
// fresh session generation. In-flight results from the previous session will
// fail the generation check and be discarded.
func (w *World) LoadSession(manifest session.Manifest) error {
	if w == nil {
		return nil
	}
	if err := manifest.Validate(); err != nil {
		return err
	}
	generation := w.sessions.Advance()
	w.entities.Reset()
	w.projectiles = w.projectiles[:0]
	w.summary.Reset()

	for _, record := range manifest.Entities {
		maxHealth := record.Kind.MaxHealth()
		w.entities.Insert(arena.Entity{
			ID:        record.ID,
			Kind:      record.Kind,
			Target:    record.Target,
			X:         record.X,
			Y:         record.Y,
			HalfW:     w.config.EntityHalf,
			HalfH:     w.config.EntityHalf,
			Health:    maxHealth,
			MaxHealth: maxHealth,
			State:     arena.StateActive,
			Protected: record.Protected,
		})
	}
	w.index.Rebuild(w.entities)
	w.publisher.Publish(context.Background(), logging.Event{
		Type:     logging.EventSessionStarted,
		Tick:     w.currentTick,
		Time:     w.clock.Now(),
		Actor:    logging.EntityRef{ID: fmt.Sprintf("session-%d", generation), Kind: logging.EntityKindSession},
		Severity: logging.SeverityInfo,
		Category: logging.CategorySystem,
		Extra:    map[string]any{"entities": len(manifest.Entities), "mode": string(w.config.Mode)},
	})
	return nil
}

// Teardown ends the active session. In arcade mode the deferred queue is
// flushed in rate-limited batches first; its per-entry outcomes feed the
// summary but never restore entities. The returned snapshot is the session's
// final report.
func (w *World) Teardown(ctx context.Context) (session.SummarySnapshot, remediation.FlushReport) {
	if w == nil {
		return session.SummarySnapshot{}, remediation.FlushReport{}
	}
	var report remediation.FlushReport
	if w.config.Mode == ModeArcade && w.batch.Len() > 0 {
		report = w.batch.Flush(ctx, w.client, w.config.RetryPolicy, remediation.FlushConfig{
			BatchSize:       w.config.BatchSize,
			InterBatchDelay: w.config.BatchInterval,
		})
		for _, entry := range report.Outcomes {
			w.summary.RecordOutcome(entry.Outcome.Success())
			w.counters.RecordRemediationOutcome(entry.Outcome.Success())
			w.recordOutcomeMetric(entry.Outcome.Success())
		}
		if w.metrics != nil {
			w.metrics.BatchFlushesTotal.Add(float64(report.Batches))
		}
		w.publisher.Publish(ctx, logging.Event{
			Type:     logging.EventBatchFlushed,
			Tick:     w.currentTick,
			Time:     w.clock.Now(),
			Actor:    logging.EntityRef{ID: fmt.Sprintf("session-%d", w.sessions.Generation()), Kind: logging.EntityKindSession},
			Severity: logging.SeverityInfo,
			Category: logging.CategoryRemediation,
			Payload:  report,
		})
	}
	snapshot := w.summary.Snapshot()
	w.publisher.Publish(ctx, logging.Event{
		Type:     logging.EventSessionEnded,
		Tick:     w.currentTick,
		Time:     w.clock.Now(),
		Actor:    logging.EntityRef{ID: fmt.Sprintf("session-%d", w.sessions.Generation()), Kind: logging.EntityKindSession},
		Severity: logging.SeverityInfo,
		Category: logging.CategorySystem,
		Payload:  snapshot,
	})
	// Bulk discard: session teardown never triggers remediation side
	// effects for surviving entities.
	w.sessions.Advance()
	w.entities.Reset()
	w.projectiles = w.projectiles[:0]
	return snapshot, report
}

// Stop shuts the remediation workers down.
func (w *World) Stop() {
	if w == nil {
		return
	}
	w.dispatcher.Stop()
}

// AddPlayer registers a player at the world center.
func (w *World) AddPlayer(id string) {
	if w == nil || id == "" {
		return
	}
	w.players[id] = &playerState{
		PlayerView:    sim.PlayerView{ID: id, X: w.config.Width / 2, Y: w.config.Height / 2},
		lastHeartbeat: w.clock.Now(),
	}
}

// RemovePlayer drops a player.
func (w *World) RemovePlayer(id string) {
	if w == nil {
		return
	}
	delete(w.players, id)
}

// Apply stages command effects onto player state. Movement intents replace
// one another; fires spawn projectiles subject to the cooldown.
func (w *World) Apply(commands []sim.Command) error {
	if w == nil {
		return nil
	}
	for _, cmd := range commands {
		switch cmd.Type {
		case sim.CommandJoin:
			w.AddPlayer(cmd.ActorID)
			continue
		case sim.CommandLeave:
			w.RemovePlayer(cmd.ActorID)
			continue
		}
		player, ok := w.players[cmd.ActorID]
		if !ok {
			continue
		}
		switch cmd.Type {
		case sim.CommandMove:
			if cmd.Move != nil {
				player.intentX, player.intentY = clampIntent(cmd.Move.DX, cmd.Move.DY)
			}
		case sim.CommandFire:
			if cmd.Fire != nil {
				w.fire(player, cmd.Fire)
			}
		case sim.CommandHeartbeat:
			if cmd.Heartbeat != nil {
				player.lastHeartbeat = cmd.Heartbeat.ReceivedAt
				player.lastRTT = cmd.Heartbeat.RTT
			}
		}
	}
	return nil
}

func (w *World) fire(player *playerState, cmd *sim.FireCommand) {
	now := w.clock.Now()
	if now.Before(player.cooldownUntil) {
		return
	}
	dirX, dirY := normalize(cmd.DirX, cmd.DirY)
	if dirX == 0 && dirY == 0 {
		return
	}
	player.cooldownUntil = now.Add(w.config.FireCooldown)
	w.nextProjectile++
	w.projectiles = append(w.projectiles, &collision.Projectile{
		ID:       fmt.Sprintf("projectile-%d", w.nextProjectile),
		X:        player.X,
		Y:        player.Y,
		OriginX:  player.X,
		OriginY:  player.Y,
		VelX:     dirX * w.config.ProjectileSpeed,
		VelY:     dirY * w.config.ProjectileSpeed,
		HalfW:    w.config.ProjectileHalf,
		HalfH:    w.config.ProjectileHalf,
		Damage:   w.config.ProjectileDamage,
		Piercing: cmd.Piercing,
		OwnerID:  player.ID,
	})
	w.counters.RecordProjectile()
}

// Step advances the simulation one tick: drain async outcomes, move, rebuild
// the grid, resolve collisions, and hand eliminations to the remediation
// pipeline. Nothing here blocks on I/O.
func (w *World) Step(ctx sim.TickContext) {
	if w == nil {
		return
	}
	w.currentTick = ctx.Tick

	w.drainOutcomes(ctx.Tick)
	w.advanceActors(ctx.Delta)

	w.index.Rebuild(w.entities)

	w.resolver.ResetCounters()
	eliminations := w.resolver.Resolve(w.entities, w.index, w.projectiles, ctx.Tick)
	w.counters.RecordScan(w.index.Population(), w.resolver.NarrowTests(), w.resolver.CandidateCount())
	if w.metrics != nil {
		w.metrics.NarrowPhaseTests.Add(float64(w.resolver.NarrowTests()))
		w.metrics.GridPopulation.Set(float64(w.index.Population()))
	}

	w.lifecycle.QueueEliminations(eliminations)
	for _, event := range w.lifecycle.Drain(ctx.Tick) {
		w.counters.RecordElimination()
		switch w.config.Mode {
		case ModeArcade:
			w.deferRemediation(event, ctx.Tick)
		default:
			w.issueRemediation(event, ctx.Tick)
		}
	}

	if w.metrics != nil {
		w.metrics.PendingEntities.Set(float64(w.lifecycle.Pending()))
	}
	w.cullProjectiles()
}

// drainOutcomes applies every queued remediation result. This is the single
// handoff point between the worker goroutines and entity state.
func (w *World) drainOutcomes(tick uint64) {
	generation := w.sessions.Generation()
	for {
		select {
		case outcome := <-w.dispatcher.Results():
			result := w.lifecycle.ApplyOutcome(outcome, generation, tick)
			switch result {
			case lifecycle.AppliedRemoved, lifecycle.AppliedRestored:
				w.summary.RecordOutcome(outcome.Success())
				w.counters.RecordRemediationOutcome(outcome.Success())
				w.recordOutcomeMetric(outcome.Success())
			default:
				w.counters.RecordStaleDropped()
			}
		default:
			return
		}
	}
}

func (w *World) advanceActors(dt float64) {
	for _, player := range w.players {
		player.X += player.intentX * w.config.MoveSpeed * dt
		player.Y += player.intentY * w.config.MoveSpeed * dt
		player.X = clamp(player.X, 0, w.config.Width)
		player.Y = clamp(player.Y, 0, w.config.Height)
	}
	for _, proj := range w.projectiles {
		proj.Advance(dt)
	}
}

func (w *World) cullProjectiles() {
	kept := w.projectiles[:0]
	for _, proj := range w.projectiles {
		if proj.Consumed {
			continue
		}
		if proj.X < -proj.HalfW || proj.X > w.config.Width+proj.HalfW ||
			proj.Y < -proj.HalfH || proj.Y > w.config.Height+proj.HalfH {
			continue
		}
		kept = append(kept, proj)
	}
	for i := len(kept); i < len(w.projectiles); i++ {
		w.projectiles[i] = nil
	}
	w.projectiles = kept
}

func (w *World) issueRemediation(event collision.Elimination, tick uint64) {
	req := remediation.NewRequest(event.EntityID, event.Handle, event.Kind, event.Target, w.sessions.Generation())
	w.counters.RecordRemediationIssued()
	w.publisher.Publish(context.Background(), logging.Event{
		Type:     logging.EventRemediationIssued,
		Tick:     tick,
		Time:     w.clock.Now(),
		Actor:    logging.EntityRef{ID: event.EntityID, Kind: logging.EntityKindEntity},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryRemediation,
		Extra:    map[string]any{"request_id": req.ID, "target": req.Target},
	})
	if ok, failed := w.dispatcher.Dispatch(req); !ok {
		// Queue saturated: resolve as a transient failure now so the
		// entity is restored instead of stuck pending.
		result := w.lifecycle.ApplyOutcome(failed, w.sessions.Generation(), tick)
		if result == lifecycle.AppliedRestored {
			w.summary.RecordOutcome(false)
			w.counters.RecordRemediationOutcome(false)
			w.recordOutcomeMetric(false)
		}
	}
}

func (w *World) deferRemediation(event collision.Elimination, tick uint64) {
	w.batch.Enqueue(remediation.QueueEntry{
		EntityID:   event.EntityID,
		Handle:     event.Handle,
		Kind:       event.Kind,
		Target:     event.Target,
		Generation: w.sessions.Generation(),
		EnqueuedAt: w.clock.Now(),
	})
	w.lifecycle.MarkRemoved(event.Handle, tick)
}

// Snapshot renders the per-tick broadcast state. Entities are culled to the
// viewport through the spatial grid, the same query the collision pass uses.
func (w *World) Snapshot() sim.Snapshot {
	if w == nil {
		return sim.Snapshot{}
	}
	snapshot := sim.Snapshot{
		Tick:     w.currentTick,
		Entities: w.QueryVisible(w.viewport),
	}
	for _, player := range w.players {
		snapshot.Players = append(snapshot.Players, player.PlayerView)
	}
	sort.Slice(snapshot.Players, func(i, j int) bool { return snapshot.Players[i].ID < snapshot.Players[j].ID })
	for _, proj := range w.projectiles {
		snapshot.Projectiles = append(snapshot.Projectiles, sim.ProjectileView{ID: proj.ID, X: proj.X, Y: proj.Y})
	}
	return snapshot
}

// QueryVisible returns the entities whose grid cells overlap the region,
// exposed for visibility culling collaborators.
func (w *World) QueryVisible(region arena.AABB) []sim.EntityView {
	if w == nil {
		return nil
	}
	handles := w.index.Query(region)
	views := make([]sim.EntityView, 0, len(handles))
	for _, h := range handles {
		entity, ok := w.entities.Get(h)
		if !ok || entity.State == arena.StateRemoved {
			continue
		}
		views = append(views, sim.EntityView{
			ID:        entity.ID,
			Kind:      string(entity.Kind),
			X:         entity.X,
			Y:         entity.Y,
			Health:    entity.Health,
			MaxHealth: entity.MaxHealth,
			State:     entity.State.String(),
			Protected: entity.Protected,
		})
	}
	sort.Slice(views, func(i, j int) bool { return views[i].ID < views[j].ID })
	return views
}

// SetViewport overrides the culling region used for broadcast snapshots.
func (w *World) SetViewport(region arena.AABB) {
	if w == nil {
		return
	}
	w.viewport = region
}

// Summary exposes the session summary counters.
func (w *World) Summary() session.SummarySnapshot {
	if w == nil {
		return session.SummarySnapshot{}
	}
	return w.summary.Snapshot()
}

// Generation exposes the active session generation.
func (w *World) Generation() uint64 {
	if w == nil {
		return 0
	}
	return w.sessions.Generation()
}

// PendingBatch reports the deferred-queue depth.
func (w *World) PendingBatch() int {
	if w == nil {
		return 0
	}
	return w.batch.Len()
}

func (w *World) recordOutcomeMetric(success bool) {
	if w.metrics == nil {
		return
	}
	result := "failure"
	if success {
		result = "success"
	}
	w.metrics.RemediationsTotal.WithLabelValues(result).Inc()
}

func clampIntent(dx, dy float64) (float64, float64) {
	return normalize(dx, dy)
}

func normalize(dx, dy float64) (float64, float64) {
	lengthSq := dx*dx + dy*dy
	if lengthSq == 0 {
		return 0, 0
	}
	if lengthSq <= 1 {
		return dx, dy
	}
	length := math.Sqrt(lengthSq)
	return dx / length, dy / length
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
