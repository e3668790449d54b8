package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/front-depiction/cli-stock/internal/version"
)

const shutdownGrace = 5 * time.Second

// ServerConfig configures the metrics endpoint.
type ServerConfig struct {
	Addr string // listen address, e.g. ":9090"
}

// DefaultServerConfig returns the stock settings.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{Addr: ":9090"}
}

// Server exposes /metrics and /healthz over HTTP.
type Server struct {
	cfg    ServerConfig
	logger *slog.Logger
	http   *http.Server
	start  time.Time
}

// NewServer wires the handler for the given collector set.
func NewServer(cfg ServerConfig, m *Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Addr == "" {
		cfg.Addr = ":9090"
	}

	s := &Server{
		cfg:    cfg,
		logger: logger.With("component", "metrics"),
		start:  time.Now(),
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.Gatherer(), promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", s.handleHealthz)

	s.http = &http.Server{
		Addr:    cfg.Addr,
		Handler: mux,
	}
	return s
}

// Run serves until ctx is cancelled, then shuts down gracefully. A
// listen failure (port taken, bad address) is returned immediately.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("metrics server listening", "addr", s.cfg.Addr)
		if err := s.http.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("metrics server shutdown timed out", "error", err)
	}
	s.logger.Info("metrics server stopped")
	return nil
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	health := struct {
		Status  string `json:"status"`
		Uptime  string `json:"uptime"`
		Version string `json:"version"`
		Commit  string `json:"commit"`
	}{
		Status:  "healthy",
		Uptime:  time.Since(s.start).Round(time.Second).String(),
		Version: version.Version,
		Commit:  version.Commit,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}
