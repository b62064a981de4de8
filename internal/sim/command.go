// Package sim orchestrates the fixed-timestep loop: command ingestion, the
// engine contract, and tick scheduling.
package sim

import "time"

// CommandType enumerates the supported simulation commands.
type CommandType string

const (
	CommandJoin      CommandType = "Join"
	CommandLeave     CommandType = "Leave"
	CommandMove      CommandType = "Move"
	CommandFire      CommandType = "Fire"
	CommandHeartbeat CommandType = "Heartbeat"
)

// Command represents an intent captured for processing on the next tick.
type Command struct {
	OriginTick uint64
	ActorID    string
	Type       CommandType
	IssuedAt   time.Time
	Move       *MoveCommand
	Fire       *FireCommand
	Heartbeat  *HeartbeatCommand
}

// MoveCommand carries the desired movement vector.
type MoveCommand struct {
	DX float64
	DY float64
}

// FireCommand requests a projectile in the given direction.
type FireCommand struct {
	DirX     float64
	DirY     float64
	Piercing bool
}

// HeartbeatCommand updates connectivity metadata for an actor.
type HeartbeatCommand struct {
	ReceivedAt time.Time
	ClientSent int64
	RTT        time.Duration
}
