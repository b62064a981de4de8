package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/colehorsman/zombie-game-sub004/internal/world"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Fatalf("unexpected listen addr %q", cfg.ListenAddr)
	}
	if cfg.TickRate != 60 {
		t.Fatalf("unexpected tick rate %d", cfg.TickRate)
	}
	if cfg.World.Mode != world.ModeDirect {
		t.Fatalf("expected direct mode default, got %q", cfg.World.Mode)
	}
	if cfg.World.RetryPolicy.MaxAttempts != 4 {
		t.Fatalf("unexpected retry attempts %d", cfg.World.RetryPolicy.MaxAttempts)
	}
	if cfg.World.BatchInterval != 500*time.Millisecond {
		t.Fatalf("unexpected batch interval %s", cfg.World.BatchInterval)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `{
		"listenAddr": ":9999",
		"sim": {"tickRate": 30},
		"session": {"mode": "arcade", "manifest": "/srv/entities.json"},
		"remediation": {"endpoint": "https://backend.example/remediate", "batchSize": 25}
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr != ":9999" {
		t.Fatalf("unexpected listen addr %q", cfg.ListenAddr)
	}
	if cfg.TickRate != 30 {
		t.Fatalf("unexpected tick rate %d", cfg.TickRate)
	}
	if cfg.World.Mode != world.ModeArcade {
		t.Fatalf("expected arcade mode, got %q", cfg.World.Mode)
	}
	if cfg.ManifestPath != "/srv/entities.json" {
		t.Fatalf("unexpected manifest path %q", cfg.ManifestPath)
	}
	if cfg.RemediationEndpoint != "https://backend.example/remediate" {
		t.Fatalf("unexpected endpoint %q", cfg.RemediationEndpoint)
	}
	if cfg.World.BatchSize != 25 {
		t.Fatalf("unexpected batch size %d", cfg.World.BatchSize)
	}
}

func TestLoadEnvironmentOverride(t *testing.T) {
	t.Setenv("REMARCADE_SIM_TICKRATE", "120")
	t.Setenv("REMARCADE_SESSION_MODE", "arcade")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TickRate != 120 {
		t.Fatalf("expected env tick rate, got %d", cfg.TickRate)
	}
	if cfg.World.Mode != world.ModeArcade {
		t.Fatalf("expected env mode, got %q", cfg.World.Mode)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name     string
		contents string
	}{
		{"tick_rate_high", `{"sim": {"tickRate": 1000}}`},
		{"tick_rate_zero", `{"sim": {"tickRate": 0}}`},
		{"bad_mode", `{"session": {"mode": "spectator"}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.contents)
			if _, err := Load(path); err == nil {
				t.Fatal("expected validation failure")
			}
		})
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
