package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hyperinsider/dashboard/internal/config"
	"github.com/hyperinsider/dashboard/internal/metrics"
	"github.com/hyperinsider/dashboard/internal/views"
	"github.com/hyperinsider/dashboard/internal/wallets"
)

var (
	exportView   string
	exportTop    int
	exportFormat string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Fetch one view and export its top wallets",
	Long: `Export loads a single view once, selects its first rows in display
order and writes them through the wallet pool to the export directory.`,
	Example:      "  dashboard export --view leaderboard --top 25 --format csv",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportView, "view", views.NameLeaderboard, "view to export: leaderboard, whales, stats or live")
	exportCmd.Flags().IntVar(&exportTop, "top", 25, "number of rows to select")
	exportCmd.Flags().StringVar(&exportFormat, "format", string(wallets.FormatCSV), "file format: txt, csv or json")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	format, err := wallets.ParseFormat(exportFormat)
	if err != nil {
		return err
	}
	if exportTop <= 0 {
		return fmt.Errorf("--top must be positive, got %d", exportTop)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, closeLog := setupLogger(parseLevel(cfg.LogLevel), "")
	defer closeLog()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, sink, err := newDeps(cfg, metrics.NewMetricsTracker())
	if err != nil {
		return err
	}

	ctrl, err := newController(ctx, cfg, deps, exportView)
	if err != nil {
		return err
	}

	select {
	case <-ctrl.Activate():
	case <-ctx.Done():
		return ctx.Err()
	}
	ctrl.Deactivate()

	if st := ctrl.Status(); st.Err != "" {
		return fmt.Errorf("fetch %s: %s", ctrl.Name(), st.Err)
	}

	selected := ctrl.SelectTop(exportTop)
	name, err := deps.Wallets.Export(format)
	if err != nil {
		return err
	}
	if name == "" {
		slog.Warn("nothing_to_export", "view", ctrl.Name())
		return nil
	}

	slog.Info("export_complete", "view", ctrl.Name(), "selected", selected, "file", name)
	fmt.Fprintln(cmd.OutOrStdout(), sink.Path(name))
	return nil
}

// newController builds the view controller called name.
func newController(ctx context.Context, cfg *config.Config, deps views.Deps, name string) (views.Controller, error) {
	switch name {
	case views.NameLeaderboard:
		return views.NewLeaderboard(ctx, deps, cfg.LeaderboardLimit), nil
	case views.NameWhales:
		return views.NewWhales(ctx, deps, cfg.WhaleMinBalance), nil
	case views.NameStats:
		return views.NewStats(ctx, deps), nil
	case views.NameLive:
		return views.NewLive(ctx, deps, cfg.LiveRefresh), nil
	}
	return nil, fmt.Errorf("unknown view %q", name)
}
