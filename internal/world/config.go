package world

import (
	"time"

	"github.com/colehorsman/zombie-game-sub004/internal/grid"
	"github.com/colehorsman/zombie-game-sub004/internal/remediation"
)

// Mode selects how eliminations reach the remediation backend.
type Mode string

const (
	// ModeDirect remediates immediately per elimination and restores the
	// entity when the call fails.
	ModeDirect Mode = "direct"
	// ModeArcade removes entities speculatively and defers all remediation
	// to a rate-limited batch flush at session end. Failures do not roll
	// the removal back.
	ModeArcade Mode = "arcade"
)

// Config captures the world tunables.
type Config struct {
	Width  float64
	Height float64

	CellSize float64
	Mode     Mode

	MoveSpeed        float64
	EntityHalf       float64
	ProjectileHalf   float64
	ProjectileSpeed  float64
	ProjectileDamage int
	FireCooldown     time.Duration

	RestoreHealth int

	RetryPolicy     remediation.RetryPolicy
	DispatchWorkers int
	DispatchQueue   int
	BatchSize       int
	BatchInterval   time.Duration
}

// DefaultConfig returns the tuning the server ships with.
func DefaultConfig() Config {
	return Config{
		Width:            800,
		Height:           600,
		CellSize:         grid.DefaultCellSize,
		Mode:             ModeDirect,
		MoveSpeed:        160,
		EntityHalf:       14,
		ProjectileHalf:   4,
		ProjectileSpeed:  420,
		ProjectileDamage: 1,
		FireCooldown:     150 * time.Millisecond,
		RestoreHealth:    1,
		RetryPolicy:      remediation.DefaultRetryPolicy(),
		DispatchWorkers:  4,
		DispatchQueue:    32,
		BatchSize:        10,
		BatchInterval:    500 * time.Millisecond,
	}
}

func (cfg Config) normalized() Config {
	normalized := cfg
	defaults := DefaultConfig()
	if normalized.Width <= 0 {
		normalized.Width = defaults.Width
	}
	if normalized.Height <= 0 {
		normalized.Height = defaults.Height
	}
	if normalized.CellSize <= 0 {
		normalized.CellSize = defaults.CellSize
	}
	if normalized.Mode != ModeArcade {
		normalized.Mode = ModeDirect
	}
	if normalized.MoveSpeed <= 0 {
		normalized.MoveSpeed = defaults.MoveSpeed
	}
	if normalized.EntityHalf <= 0 {
		normalized.EntityHalf = defaults.EntityHalf
	}
	if normalized.ProjectileHalf <= 0 {
		normalized.ProjectileHalf = defaults.ProjectileHalf
	}
	if normalized.ProjectileSpeed <= 0 {
		normalized.ProjectileSpeed = defaults.ProjectileSpeed
	}
	if normalized.ProjectileDamage <= 0 {
		normalized.ProjectileDamage = defaults.ProjectileDamage
	}
	if normalized.RestoreHealth < 1 {
		normalized.RestoreHealth = defaults.RestoreHealth
	}
	if normalized.DispatchWorkers <= 0 {
		normalized.DispatchWorkers = defaults.DispatchWorkers
	}
	if normalized.DispatchQueue <= 0 {
		normalized.DispatchQueue = defaults.DispatchQueue
	}
	if normalized.BatchSize <= 0 {
		normalized.BatchSize = defaults.BatchSize
	}
	if normalized.BatchInterval < 0 {
		normalized.BatchInterval = defaults.BatchInterval
	}
	return normalized
}
