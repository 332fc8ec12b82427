package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperinsider/dashboard/internal/config"
	"github.com/hyperinsider/dashboard/internal/provider"
	"github.com/hyperinsider/dashboard/internal/views"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseLevel(tt.in); got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSetupLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "dashboard.log")
	logger, closeLog := setupLogger(slog.LevelInfo, path)
	logger.Info("dashboard_test", "key", "value")
	logger.Debug("hidden")
	closeLog()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "dashboard_test") || !strings.Contains(text, "key=value") {
		t.Errorf("log file missing record: %q", text)
	}
	if strings.Contains(text, "hidden") {
		t.Error("debug record written at info level")
	}
	if strings.Contains(text, "\x1b[") {
		t.Error("file output should not contain colour codes")
	}
}

func TestNewController(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := &config.Config{LeaderboardLimit: 10, WhaleMinBalance: 1_000_000}
	deps := views.Deps{Provider: provider.NewSimulated(provider.SimulatedConfig{Seed: 1})}

	for _, name := range []string{views.NameLeaderboard, views.NameWhales, views.NameStats, views.NameLive} {
		ctrl, err := newController(ctx, cfg, deps, name)
		if err != nil {
			t.Fatalf("newController(%q): %v", name, err)
		}
		if ctrl.Name() != name {
			t.Errorf("newController(%q) built %q", name, ctrl.Name())
		}
	}

	if _, err := newController(ctx, cfg, deps, "portfolio"); err == nil {
		t.Error("expected error for unknown view")
	}
}

func TestNewProviderSimulated(t *testing.T) {
	cfg := &config.Config{DataSource: config.SourceSimulated, SimSeed: 3}
	p, err := newProvider(cfg)
	if err != nil {
		t.Fatalf("newProvider: %v", err)
	}
	if _, ok := p.(*provider.Simulated); !ok {
		t.Errorf("expected simulated provider, got %T", p)
	}
}
