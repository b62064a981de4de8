package telemetry

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DiagnosticsProvider returns the document served at /diagnostics.
type DiagnosticsProvider func() any

// Server exposes /metrics, /healthz, and /diagnostics on its own listener so
// operational traffic never shares the game port.
type Server struct {
	httpServer  *http.Server
	listener    net.Listener
	logger      Logger
	diagnostics DiagnosticsProvider
}

// NewServer builds the observability server. The registry backs /metrics;
// diagnostics may be nil, in which case /diagnostics serves an empty object.
func NewServer(addr string, registry *prometheus.Registry, diagnostics DiagnosticsProvider, logger Logger) *Server {
	s := &Server{logger: logger, diagnostics: diagnostics}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/diagnostics", s.handleDiagnostics)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, _ *http.Request) {
	var doc any = struct{}{}
	if s.diagnostics != nil {
		doc = s.diagnostics()
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(doc); err != nil && s.logger != nil {
		s.logger.Printf("diagnostics encode failed: %v", err)
	}
}

// Start binds the listener and serves until Shutdown.
func (s *Server) Start() error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	s.listener = listener
	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed && s.logger != nil {
			s.logger.Printf("observability server stopped: %v", err)
		}
	}()
	return nil
}

// Addr reports the bound address, useful when Addr was ":0".
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s == nil || s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
