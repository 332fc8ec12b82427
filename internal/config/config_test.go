package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATA_SOURCE", "")
	t.Setenv("LIVE_REFRESH_SECONDS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataSource != SourceHyperliquid || cfg.Simulated() {
		t.Errorf("DataSource = %q", cfg.DataSource)
	}
	if cfg.LiveRefresh != 30*time.Second {
		t.Errorf("LiveRefresh = %v, want 30s", cfg.LiveRefresh)
	}
	if cfg.WhaleMinBalance != 1_000_000 {
		t.Errorf("WhaleMinBalance = %v", cfg.WhaleMinBalance)
	}
	if cfg.PrometheusPort != 0 {
		t.Errorf("PrometheusPort = %d, want disabled", cfg.PrometheusPort)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DATA_SOURCE", "Simulated")
	t.Setenv("LIVE_REFRESH_SECONDS", "5")
	t.Setenv("SIM_FAILURE_RATE", "0.25")
	t.Setenv("TRACK_TOP_N", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Simulated() {
		t.Errorf("DataSource = %q, want simulated", cfg.DataSource)
	}
	if cfg.LiveRefresh != 5*time.Second {
		t.Errorf("LiveRefresh = %v", cfg.LiveRefresh)
	}
	if cfg.SimFailureRate != 0.25 {
		t.Errorf("SimFailureRate = %v", cfg.SimFailureRate)
	}
	if cfg.TrackTopN != 20 {
		t.Errorf("TrackTopN = %d, want default for unparsable value", cfg.TrackTopN)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			DataSource:       SourceHyperliquid,
			APIURL:           "https://api.example",
			LeaderboardURL:   "https://stats.example",
			RequestTimeout:   time.Second,
			RateLimit:        1,
			RateBurst:        1,
			LeaderboardLimit: 10,
			WhaleMinBalance:  1,
			LiveRefresh:      time.Second,
			TrackTopN:        1,
			ExportDir:        "out",
			UIRefreshRate:    time.Millisecond,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"unknown source", func(c *Config) { c.DataSource = "mock" }, "DATA_SOURCE"},
		{"simulated needs no url", func(c *Config) { c.DataSource = SourceSimulated; c.APIURL = "" }, ""},
		{"missing api url", func(c *Config) { c.APIURL = "" }, "HYPERLIQUID_API_URL"},
		{"zero whale balance", func(c *Config) { c.WhaleMinBalance = 0 }, "WHALE_MIN_BALANCE"},
		{"sub-second live refresh", func(c *Config) { c.LiveRefresh = time.Millisecond }, "LIVE_REFRESH_SECONDS"},
		{"prometheus port range", func(c *Config) { c.PrometheusPort = 70000 }, "PROMETHEUS_PORT"},
		{"failure rate range", func(c *Config) { c.SimFailureRate = 1.5 }, "SIM_FAILURE_RATE"},
		{"empty export dir", func(c *Config) { c.ExportDir = "" }, "EXPORT_DIR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error mentioning %s", err, tt.wantErr)
			}
		})
	}
}

func TestMaskedAPIKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"", "(not set)"},
		{"short", "****"},
		{"abcd1234efgh5678", "abcd****5678"},
	}
	for _, tt := range tests {
		c := &Config{APIKey: tt.key}
		if got := c.MaskedAPIKey(); got != tt.want {
			t.Errorf("MaskedAPIKey(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}
