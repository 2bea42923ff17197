// Package api is the operations server: health, metrics and the event
// log, both as a snapshot and as a live websocket stream.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/AaronLay10/schemagraph/internal/events"
	"github.com/AaronLay10/schemagraph/internal/metrics"
)

type Config struct {
	Metrics *metrics.Collector
	Logger  *zap.Logger
}

type Server struct {
	cfg Config
	mux *http.ServeMux
}

func NewServer(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	s := &Server{cfg: cfg, mux: http.NewServeMux()}

	s.mux.HandleFunc("/health", healthHandler)
	s.mux.HandleFunc("/events", RequireAdmin(eventsHandler))
	s.mux.HandleFunc("/ws/events", RequireAdmin(s.wsEventsHandler))
	if cfg.Metrics != nil {
		metricsHandler := promhttp.HandlerFor(cfg.Metrics.Registry(), promhttp.HandlerOpts{})
		s.mux.HandleFunc("/metrics", RequireAnyRole(metricsHandler.ServeHTTP))
	}
	return s
}

func (s *Server) Handler() http.Handler { return s.mux }

type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Hostname  string `json:"hostname"`
	Timestamp string `json:"ts"`
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	host, _ := os.Hostname()
	resp := HealthResponse{
		Status:    "ok",
		Service:   "schemagraph",
		Hostname:  host,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func eventsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(events.Snapshot())
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully. TLS is used when configured.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
		TLSConfig:         LoadTLSConfig(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.cfg.Logger.Info("api listening", zap.String("addr", addr), zap.Bool("tls", srv.TLSConfig != nil))
		if srv.TLSConfig != nil {
			errCh <- srv.ListenAndServeTLS("", "")
			return
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
