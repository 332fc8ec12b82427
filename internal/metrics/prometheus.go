package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// FetchesTotal tracks view fetches
	FetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hyperinsider_view_fetches_total",
			Help: "Total number of view data fetches",
		},
		[]string{"view"},
	)

	// FetchErrorsTotal tracks failed view fetches
	FetchErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hyperinsider_view_fetch_errors_total",
			Help: "Total number of failed view data fetches",
		},
		[]string{"view"},
	)

	// FetchLatency tracks view fetch latency
	FetchLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hyperinsider_view_fetch_latency_seconds",
			Help:    "View fetch latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"view"},
	)

	// SelectionsTotal tracks wallets newly selected per view
	SelectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hyperinsider_wallet_selections_total",
			Help: "Total number of wallets newly selected",
		},
		[]string{"view"},
	)

	// WalletsPooled tracks the size of the cross-view wallet collection
	WalletsPooled = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hyperinsider_wallets_pooled",
			Help: "Distinct wallets currently collected for export",
		},
	)

	// ExportsTotal tracks export files written per format
	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hyperinsider_exports_total",
			Help: "Total number of wallet export files written",
		},
		[]string{"format"},
	)

	// ExportedWallets tracks wallets written across all exports
	ExportedWallets = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hyperinsider_exported_wallets_total",
			Help: "Total number of wallet rows written to export files",
		},
	)
)

// Server exposes /metrics and /health over HTTP.
type Server struct {
	server *http.Server
}

// NewServer creates a metrics server listening on port.
func NewServer(port int) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &Server{
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start serves until Stop is called. It logs and returns on failure.
func (s *Server) Start() {
	slog.Info("metrics_server_started", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("metrics_server_failed", "error", err)
	}
}

// Stop shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}
