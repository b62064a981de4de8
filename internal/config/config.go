// Package config loads server settings from an optional JSON file with
// environment overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/colehorsman/zombie-game-sub004/internal/remediation"
	"github.com/colehorsman/zombie-game-sub004/internal/world"
)

// Config is the fully resolved server configuration.
type Config struct {
	ListenAddr        string
	ObservabilityAddr string
	LogFormat         string

	TickRate        int
	CatchupMaxTicks int
	CommandCapacity int
	PerActorLimit   int

	ManifestPath        string
	RemediationEndpoint string

	World world.Config
}

// Load resolves configuration from defaults, then an optional config file,
// then REMARCADE_-prefixed environment variables.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("listenAddr", ":8080")
	v.SetDefault("observabilityAddr", ":9090")
	v.SetDefault("logFormat", "json")

	v.SetDefault("sim.tickRate", 60)
	v.SetDefault("sim.catchupMaxTicks", 4)
	v.SetDefault("sim.commandCapacity", 1024)
	v.SetDefault("sim.perActorLimit", 32)

	v.SetDefault("session.manifest", "")
	v.SetDefault("session.mode", string(world.ModeDirect))

	v.SetDefault("world.width", 800.0)
	v.SetDefault("world.height", 600.0)
	v.SetDefault("world.cellSize", 32.0)
	v.SetDefault("world.moveSpeed", 160.0)
	v.SetDefault("world.entityHalf", 14.0)
	v.SetDefault("world.projectileHalf", 4.0)
	v.SetDefault("world.projectileSpeed", 420.0)
	v.SetDefault("world.projectileDamage", 1)
	v.SetDefault("world.fireCooldownMillis", 150)
	v.SetDefault("world.restoreHealth", 1)

	v.SetDefault("remediation.endpoint", "")
	v.SetDefault("remediation.maxAttempts", 4)
	v.SetDefault("remediation.baseDelayMillis", 250)
	v.SetDefault("remediation.maxDelayMillis", 5000)
	v.SetDefault("remediation.callTimeoutMillis", 10000)
	v.SetDefault("remediation.dispatchWorkers", 4)
	v.SetDefault("remediation.dispatchQueue", 32)
	v.SetDefault("remediation.batchSize", 10)
	v.SetDefault("remediation.batchIntervalMillis", 500)

	v.SetEnvPrefix("REMARCADE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Config{
		ListenAddr:          v.GetString("listenAddr"),
		ObservabilityAddr:   v.GetString("observabilityAddr"),
		LogFormat:           v.GetString("logFormat"),
		TickRate:            v.GetInt("sim.tickRate"),
		CatchupMaxTicks:     v.GetInt("sim.catchupMaxTicks"),
		CommandCapacity:     v.GetInt("sim.commandCapacity"),
		PerActorLimit:       v.GetInt("sim.perActorLimit"),
		ManifestPath:        v.GetString("session.manifest"),
		RemediationEndpoint: v.GetString("remediation.endpoint"),
		World: world.Config{
			Width:            v.GetFloat64("world.width"),
			Height:           v.GetFloat64("world.height"),
			CellSize:         v.GetFloat64("world.cellSize"),
			Mode:             world.Mode(v.GetString("session.mode")),
			MoveSpeed:        v.GetFloat64("world.moveSpeed"),
			EntityHalf:       v.GetFloat64("world.entityHalf"),
			ProjectileHalf:   v.GetFloat64("world.projectileHalf"),
			ProjectileSpeed:  v.GetFloat64("world.projectileSpeed"),
			ProjectileDamage: v.GetInt("world.projectileDamage"),
			FireCooldown:     time.Duration(v.GetInt("world.fireCooldownMillis")) * time.Millisecond,
			RestoreHealth:    v.GetInt("world.restoreHealth"),
			RetryPolicy: remediation.RetryPolicy{
				MaxAttempts: v.GetInt("remediation.maxAttempts"),
				BaseDelay:   time.Duration(v.GetInt("remediation.baseDelayMillis")) * time.Millisecond,
				MaxDelay:    time.Duration(v.GetInt("remediation.maxDelayMillis")) * time.Millisecond,
				CallTimeout: time.Duration(v.GetInt("remediation.callTimeoutMillis")) * time.Millisecond,
			},
			DispatchWorkers: v.GetInt("remediation.dispatchWorkers"),
			DispatchQueue:   v.GetInt("remediation.dispatchQueue"),
			BatchSize:       v.GetInt("remediation.batchSize"),
			BatchInterval:   time.Duration(v.GetInt("remediation.batchIntervalMillis")) * time.Millisecond,
		},
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg Config) validate() error {
	if cfg.TickRate < 1 || cfg.TickRate > 240 {
		return fmt.Errorf("sim.tickRate %d out of range [1, 240]", cfg.TickRate)
	}
	if cfg.World.Mode != world.ModeDirect && cfg.World.Mode != world.ModeArcade {
		return fmt.Errorf("session.mode %q must be direct or arcade", cfg.World.Mode)
	}
	return nil
}
