package telemetry

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestServerServesMetricsAndDiagnostics(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)
	metrics.GridPopulation.Set(17)

	srv := NewServer("127.0.0.1:0", registry, func() any {
		return map[string]any{"pendingBatch": 3}
	}, nil)
	if err := srv.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer srv.Shutdown(context.Background())

	base := "http://" + srv.Addr()

	resp, err := http.Get(base + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status %d", resp.StatusCode)
	}

	resp, err = http.Get(base + "/metrics")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "sim_grid_population 17") {
		t.Fatalf("expected grid population gauge in metrics output")
	}

	resp, err = http.Get(base + "/diagnostics")
	if err != nil {
		t.Fatalf("diagnostics: %v", err)
	}
	var doc map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatalf("decode diagnostics: %v", err)
	}
	resp.Body.Close()
	if doc["pendingBatch"] != float64(3) {
		t.Fatalf("unexpected diagnostics %v", doc)
	}
}
