package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperinsider/dashboard/internal/config"
	"github.com/hyperinsider/dashboard/internal/metrics"
	"github.com/hyperinsider/dashboard/internal/provider"
	"github.com/hyperinsider/dashboard/internal/store"
	"github.com/hyperinsider/dashboard/internal/ui"
	"github.com/hyperinsider/dashboard/internal/views"
	"github.com/hyperinsider/dashboard/internal/wallets"
	"github.com/hyperinsider/dashboard/internal/watchlist"
)

var (
	simulate      bool
	isDebug       bool
	watchlistPath string
	exportDir     string
)

var rootCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Hyperliquid trader analytics dashboard",
	Long: `Dashboard shows the Hyperliquid leaderboard, whale accounts, trade
statistics and live positions, and collects wallets selected in any view
for export.`,
	SilenceUsage: true,
	RunE:         runDashboard,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&simulate, "simulate", false, "use the simulated data source")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&watchlistPath, "watchlist", "", "watchlist file (overrides WATCHLIST_PATH)")
	rootCmd.PersistentFlags().StringVar(&exportDir, "export-dir", "", "export directory (overrides EXPORT_DIR)")
}

// loadConfig reads the environment and applies the command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if simulate {
		cfg.DataSource = config.SourceSimulated
	}
	if isDebug {
		cfg.LogLevel = "DEBUG"
	}
	if watchlistPath != "" {
		cfg.WatchlistPath = watchlistPath
	}
	if exportDir != "" {
		cfg.ExportDir = exportDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// newProvider builds the data source selected by DATA_SOURCE.
func newProvider(cfg *config.Config) (provider.Provider, error) {
	if cfg.Simulated() {
		return provider.NewSimulated(provider.SimulatedConfig{
			Seed:        cfg.SimSeed,
			Latency:     cfg.SimLatency,
			FailureRate: cfg.SimFailureRate,
		}), nil
	}
	return provider.NewHyperliquid(provider.HyperliquidConfig{
		APIURL:         cfg.APIURL,
		LeaderboardURL: cfg.LeaderboardURL,
		APIKey:         cfg.APIKey,
		Timeout:        cfg.RequestTimeout,
		RateLimit:      cfg.RateLimit,
		RateBurst:      cfg.RateBurst,
		CacheTTL:       cfg.CacheTTL,
	})
}

// newDeps wires the provider, watchlist, wallet pool and metrics tracker.
func newDeps(cfg *config.Config, tracker *metrics.MetricsTracker) (views.Deps, wallets.DirSink, error) {
	src, err := newProvider(cfg)
	if err != nil {
		return views.Deps{}, wallets.DirSink{}, fmt.Errorf("create provider: %w", err)
	}

	wl, err := watchlist.Load(cfg.WatchlistPath)
	if err != nil {
		return views.Deps{}, wallets.DirSink{}, fmt.Errorf("load watchlist: %w", err)
	}

	sink := wallets.DirSink{Dir: cfg.ExportDir}
	aggregator := wallets.NewAggregator(sink)
	aggregator.OnExport = func(format wallets.Format, filename string, count int) {
		tracker.RecordExport(string(format), filename, count)
	}

	return views.Deps{
		Provider:  src,
		Wallets:   aggregator,
		Metrics:   tracker,
		Watchlist: wl,
		TrackTopN: cfg.TrackTopN,
	}, sink, nil
}

func runDashboard(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		return err
	}

	// The terminal belongs to the UI, so TUI mode logs to a file
	logFile := ""
	if cfg.EnableTUI {
		logFile = cfg.LogFile
	}
	logger, closeLog := setupLogger(parseLevel(cfg.LogLevel), logFile)
	defer closeLog()
	slog.SetDefault(logger)

	slog.Info("dashboard starting", "version", "1.0.0")
	slog.Info("config_loaded",
		"data_source", cfg.DataSource,
		"api_url", cfg.APIURL,
		"leaderboard_url", cfg.LeaderboardURL,
		"api_key", cfg.MaskedAPIKey(),
		"rate_limit", cfg.RateLimit,
		"cache_ttl", cfg.CacheTTL,
		"leaderboard_limit", cfg.LeaderboardLimit,
		"whale_min_balance", cfg.WhaleMinBalance,
		"live_refresh", cfg.LiveRefresh,
		"watchlist", cfg.WatchlistPath,
		"export_dir", cfg.ExportDir,
		"prometheus_port", cfg.PrometheusPort,
		"enable_tui", cfg.EnableTUI,
	)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracker := metrics.NewMetricsTracker()
	deps, _, err := newDeps(cfg, tracker)
	if err != nil {
		slog.Error("startup_failed", "error", err)
		return err
	}

	var server *metrics.Server
	if cfg.PrometheusPort > 0 {
		server = metrics.NewServer(cfg.PrometheusPort)
		go server.Start()
		slog.Info("metrics_server_started", "port", cfg.PrometheusPort)
	}

	leaderboard := views.NewLeaderboard(ctx, deps, cfg.LeaderboardLimit)
	whales := views.NewWhales(ctx, deps, cfg.WhaleMinBalance)
	stats := views.NewStats(ctx, deps)
	live := views.NewLive(ctx, deps, cfg.LiveRefresh)

	if cfg.EnableTUI {
		slog.Info("starting_tui")
		app := ui.NewApp(ctx, ui.Views{
			Leaderboard: leaderboard,
			Whales:      whales,
			Stats:       stats,
			Live:        live,
		}, deps.Wallets, tracker, cfg.UIRefreshRate)

		if err := app.Run(); err != nil {
			slog.Error("tui_error", "error", err)
		}
	} else {
		runHeadless(ctx, live, cfg.LiveRefresh)
	}

	stop()
	slog.Info("shutting_down")

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Stop(shutdownCtx); err != nil {
			slog.Error("metrics_server_shutdown_failed", "error", err)
		}
	}

	slog.Info("shutdown_complete")
	return nil
}

// runHeadless keeps the live view refreshing and logs a summary after every
// interval until ctx is cancelled.
func runHeadless(ctx context.Context, live *views.Live, interval time.Duration) {
	<-live.Activate()
	defer live.Deactivate()

	logLiveSummary(live)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("shutdown_signal_received")
			return
		case <-ticker.C:
			logLiveSummary(live)
		}
	}
}

func logLiveSummary(live *views.Live) {
	st := live.Status()
	if st.Err != "" {
		slog.Warn("live_refresh_failed", "error", st.Err)
	}

	var open, closed int
	var long, short float64
	for _, e := range live.Exposure() {
		open += e.Open
		closed += e.Closed
		long += e.Long
		short += e.Short
	}
	slog.Info("live_positions",
		"open", open,
		"closed", closed,
		"long_notional", long,
		"short_notional", short,
		"updated", st.LastUpdate.Format(time.DateTime),
	)
	for _, lp := range live.Rows() {
		if lp.Status == store.StatusClosed {
			slog.Info("position_closed", "address", lp.Address, "coin", lp.Coin, "side", lp.Side)
		}
	}
}
