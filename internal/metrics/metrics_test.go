package metrics

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCollectorsRecord(t *testing.T) {
	m := New()

	m.TradesIngested.Inc()
	m.TradesIngested.Inc()
	m.ParseErrors.WithLabelValues("finnhub").Inc()
	m.Signals.WithLabelValues("Buy").Inc()
	m.BrokerSubscribers.Set(7)
	m.TradeLatency.Set(42)

	if got := testutil.ToFloat64(m.TradesIngested); got != 2 {
		t.Errorf("trades_ingested_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.ParseErrors.WithLabelValues("finnhub")); got != 1 {
		t.Errorf("parse_errors_total{finnhub} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Signals.WithLabelValues("Buy")); got != 1 {
		t.Errorf("signals_total{Buy} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.BrokerSubscribers); got != 7 {
		t.Errorf("broker_subscribers = %v, want 7", got)
	}
	if got := testutil.ToFloat64(m.TradeLatency); got != 42 {
		t.Errorf("trade_latency_ms = %v, want 42", got)
	}
}

func TestRegistryCarriesAllCollectors(t *testing.T) {
	m := New()
	// Vec collectors only gather once a label combination exists.
	m.ParseErrors.WithLabelValues("finnhub").Add(0)
	m.Signals.WithLabelValues("Hold").Add(0)

	families, err := m.Gatherer().Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	got := make(map[string]bool, len(families))
	for _, f := range families {
		got[f.GetName()] = true
	}
	want := []string{
		"trades_ingested_total",
		"parse_errors_total",
		"broker_published_total",
		"broker_delivered_total",
		"broker_inflight_lost_total",
		"signals_total",
		"broker_subscribers",
		"trade_latency_ms",
	}
	for _, name := range want {
		if !got[name] {
			t.Errorf("registry missing %s", name)
		}
	}
}

func TestRegistriesIndependent(t *testing.T) {
	a, b := New(), New()
	a.TradesIngested.Inc()

	if got := testutil.ToFloat64(b.TradesIngested); got != 0 {
		t.Errorf("second registry trades_ingested_total = %v, want 0", got)
	}
}

func TestEndpoints(t *testing.T) {
	m := New()
	m.TradesIngested.Inc()
	s := NewServer(DefaultServerConfig(), m, discardLogger())

	srv := httptest.NewServer(s.http.Handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("/healthz status = %d, want 200", resp.StatusCode)
	}
	var health struct {
		Status  string `json:"status"`
		Version string `json:"version"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decoding /healthz: %v", err)
	}
	if health.Status != "healthy" {
		t.Errorf("health status = %q, want healthy", health.Status)
	}
	if health.Version == "" {
		t.Error("health version empty")
	}

	resp, err = http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading /metrics: %v", err)
	}
	if !strings.Contains(string(body), "trades_ingested_total 1") {
		t.Error("/metrics missing trades_ingested_total sample")
	}
}

func TestServerStopsOnCancel(t *testing.T) {
	s := NewServer(ServerConfig{Addr: "127.0.0.1:0"}, New(), discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Run returned %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for Run to return")
	}
}

func TestServerReportsListenFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("reserving port: %v", err)
	}
	defer ln.Close()

	s := NewServer(ServerConfig{Addr: ln.Addr().String()}, New(), discardLogger())

	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(context.Background()) }()

	select {
	case err := <-errCh:
		if err == nil {
			t.Error("Run returned nil for an occupied port")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for listen failure")
	}
}
