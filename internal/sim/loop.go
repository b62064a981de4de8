package sim

import (
	"sync"
	"time"

	"github.com/colehorsman/zombie-game-sub004/internal/logging"
	"github.com/colehorsman/zombie-game-sub004/internal/telemetry"
)

const (
	// CommandRejectQueueLimit indicates a command was dropped due to
	// per-actor queue throttling.
	CommandRejectQueueLimit = "queue_limit"
	// CommandRejectQueueFull indicates the global command buffer is
	// saturated.
	CommandRejectQueueFull = "queue_full"
)

// LoopConfig tunes the command buffer and tick loop orchestration.
type LoopConfig struct {
	TickRate        int
	CatchupMaxTicks int
	CommandCapacity int
	PerActorLimit   int
}

// LoopHooks lets the caller observe loop progress without the loop knowing
// about transports or sessions.
type LoopHooks struct {
	NextTick  func() uint64
	AfterStep func(StepResult)
}

// StepResult reports one completed tick.
type StepResult struct {
	Tick         uint64
	Now          time.Time
	Delta        float64
	Duration     time.Duration
	Budget       time.Duration
	ClampedDelta bool
	Snapshot     Snapshot
	Commands     []Command
}

// Loop coordinates command ingestion and the fixed-timestep runner. The
// engine is stepped from exactly one goroutine; producers only touch the
// ring buffer.
type Loop struct {
	engine Engine
	buffer *CommandBuffer
	hooks  LoopHooks
	config LoopConfig
	logger telemetry.Logger
	clock  logging.Clock

	queueMu       sync.Mutex
	perActorCount map[string]int
	dropCounts    map[string]uint64
}

// NewLoop wraps the engine with a ring-buffer queue and a fixed-rate runner.
func NewLoop(engine Engine, cfg LoopConfig, hooks LoopHooks, logger telemetry.Logger) *Loop {
	if engine == nil {
		return nil
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = 60
	}
	if cfg.CommandCapacity <= 0 {
		cfg.CommandCapacity = 1024
	}
	return &Loop{
		engine:        engine,
		buffer:        NewCommandBuffer(cfg.CommandCapacity),
		hooks:         hooks,
		config:        cfg,
		logger:        logger,
		clock:         logging.SystemClock{},
		perActorCount: make(map[string]int),
		dropCounts:    make(map[string]uint64),
	}
}

// SetClock overrides the loop clock, for deterministic tests.
func (l *Loop) SetClock(clock logging.Clock) {
	if l == nil || clock == nil {
		return
	}
	l.clock = clock
}

// Enqueue stages a command, enforcing per-actor throttling and capacity.
func (l *Loop) Enqueue(cmd Command) (bool, string) {
	if l == nil {
		return false, CommandRejectQueueFull
	}
	reason := ""
	l.queueMu.Lock()
	if l.config.PerActorLimit > 0 && cmd.ActorID != "" {
		count := l.perActorCount[cmd.ActorID]
		if count >= l.config.PerActorLimit {
			reason = CommandRejectQueueLimit
		} else {
			l.perActorCount[cmd.ActorID] = count + 1
		}
	}
	if reason == "" && !l.buffer.Push(cmd) {
		reason = CommandRejectQueueFull
	}
	if reason != "" {
		l.dropCounts[cmd.ActorID]++
		dropped := l.dropCounts[cmd.ActorID]
		l.queueMu.Unlock()
		if l.logger != nil {
			l.logger.Printf("dropped command actor=%s type=%s reason=%s total=%d", cmd.ActorID, cmd.Type, reason, dropped)
		}
		return false, reason
	}
	l.queueMu.Unlock()
	return true, ""
}

// Pending reports the number of staged commands.
func (l *Loop) Pending() int {
	if l == nil {
		return 0
	}
	return l.buffer.Len()
}

// Advance executes a single simulation step using the staged commands.
func (l *Loop) Advance(ctx TickContext) StepResult {
	if l == nil {
		return StepResult{}
	}
	commands := l.drainCommands()
	if err := l.engine.Apply(commands); err != nil && l.logger != nil {
		l.logger.Printf("apply failed tick=%d commands=%d: %v", ctx.Tick, len(commands), err)
	}
	l.engine.Step(ctx)
	return StepResult{
		Tick:     ctx.Tick,
		Now:      ctx.Now,
		Delta:    ctx.Delta,
		Snapshot: l.engine.Snapshot(),
		Commands: commands,
	}
}

// Run drives the fixed-timestep loop until the stop channel closes. Late
// ticks catch up with a clamped delta instead of spiraling.
func (l *Loop) Run(stop <-chan struct{}) {
	if l == nil {
		return
	}
	tickRate := l.config.TickRate
	ticker := time.NewTicker(time.Second / time.Duration(tickRate))
	defer ticker.Stop()

	clock := l.clock
	last := clock.Now()
	budgetSeconds := 1.0 / float64(tickRate)
	maxDt := budgetSeconds
	if l.config.CatchupMaxTicks > 1 {
		maxDt = budgetSeconds * float64(l.config.CatchupMaxTicks)
	}
	budgetDuration := time.Second / time.Duration(tickRate)

	var tick uint64
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			now := clock.Now()
			dt := now.Sub(last).Seconds()
			clamped := false
			if dt <= 0 {
				dt = budgetSeconds
			} else if dt > maxDt {
				dt = maxDt
				clamped = true
			}
			last = now

			if l.hooks.NextTick != nil {
				tick = l.hooks.NextTick()
			} else {
				tick++
			}

			start := clock.Now()
			result := l.Advance(TickContext{Tick: tick, Now: now, Delta: dt})
			result.Duration = clock.Now().Sub(start)
			result.Budget = budgetDuration
			result.ClampedDelta = clamped

			if l.hooks.AfterStep != nil {
				l.hooks.AfterStep(result)
			}
		}
	}
}

func (l *Loop) drainCommands() []Command {
	l.queueMu.Lock()
	defer l.queueMu.Unlock()
	commands := l.buffer.Drain()
	if len(l.perActorCount) > 0 {
		l.perActorCount = make(map[string]int)
	}
	return commands
}
