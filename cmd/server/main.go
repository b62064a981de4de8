package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/colehorsman/zombie-game-sub004/internal/config"
	"github.com/colehorsman/zombie-game-sub004/internal/hub"
	"github.com/colehorsman/zombie-game-sub004/internal/logging"
	"github.com/colehorsman/zombie-game-sub004/internal/remediation"
	"github.com/colehorsman/zombie-game-sub004/internal/session"
	"github.com/colehorsman/zombie-game-sub004/internal/sim"
	"github.com/colehorsman/zombie-game-sub004/internal/telemetry"
	"github.com/colehorsman/zombie-game-sub004/internal/world"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to the JSON config file")
	flag.Parse()

	logger := log.New(os.Stdout, "", log.LstdFlags)

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("config: %v", err)
	}

	publisher := logging.NewZerologPublisher(os.Stderr, "remediation-arcade")
	counters := telemetry.NewCounters()
	registry := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(registry)

	var client remediation.Client
	if cfg.RemediationEndpoint != "" {
		client = remediation.NewHTTPClient(cfg.RemediationEndpoint, nil)
	} else {
		logger.Printf("no remediation endpoint configured; every elimination will fail and restore")
		client = remediation.ClientFunc(func(context.Context, remediation.Request) remediation.Result {
			return remediation.Result{ErrorKind: remediation.ErrorKindPermanent}
		})
	}

	gameWorld := world.New(cfg.World, world.Deps{
		Publisher: publisher,
		Counters:  counters,
		Metrics:   metrics,
		Client:    client,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	gameWorld.Start(ctx)

	if cfg.ManifestPath != "" {
		manifest, err := session.LoadManifest(cfg.ManifestPath)
		if err != nil {
			logger.Fatalf("manifest: %v", err)
		}
		if err := gameWorld.LoadSession(manifest); err != nil {
			logger.Fatalf("session: %v", err)
		}
		logger.Printf("session loaded: %d entities, mode=%s", len(manifest.Entities), cfg.World.Mode)
	}

	var gameHub *hub.Hub
	loop := sim.NewLoop(gameWorld, sim.LoopConfig{
		TickRate:        cfg.TickRate,
		CatchupMaxTicks: cfg.CatchupMaxTicks,
		CommandCapacity: cfg.CommandCapacity,
		PerActorLimit:   cfg.PerActorLimit,
	}, sim.LoopHooks{
		AfterStep: func(result sim.StepResult) {
			counters.RecordTick(result.Duration)
			metrics.TickDuration.Observe(result.Duration.Seconds())
			gameHub.Broadcast(result)
		},
	}, telemetry.WrapLogger(logger))
	gameHub = hub.New(loop, counters, telemetry.WrapLogger(logger))

	obs := telemetry.NewServer(cfg.ObservabilityAddr, registry, func() any {
		return struct {
			Telemetry telemetry.Snapshot      `json:"telemetry"`
			Summary   session.SummarySnapshot `json:"summary"`
			Pending   int                     `json:"pendingBatch"`
		}{
			Telemetry: counters.Snapshot(),
			Summary:   gameWorld.Summary(),
			Pending:   gameWorld.PendingBatch(),
		}
	}, telemetry.WrapLogger(logger))
	if err := obs.Start(); err != nil {
		logger.Fatalf("observability server: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/join", gameHub.HandleJoin)
	mux.HandleFunc("/ws", gameHub.HandleWS)
	httpServer := &http.Server{Addr: cfg.ListenAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Printf("listening on %s", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	stop := make(chan struct{})
	loopDone := make(chan struct{})
	go func() {
		loop.Run(stop)
		close(loopDone)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Printf("shutting down")

	// The loop goroutine owns the arena; teardown must not touch it until
	// the final tick has finished.
	close(stop)
	<-loopDone
	summary, _ := gameWorld.Teardown(context.Background())
	logger.Printf("session summary: attempted=%d succeeded=%d failed=%d",
		summary.Attempted, summary.Succeeded, summary.Failed)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = httpServer.Shutdown(shutdownCtx)
	_ = obs.Shutdown(shutdownCtx)
	gameWorld.Stop()
}
