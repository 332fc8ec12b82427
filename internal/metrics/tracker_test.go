package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRecordFetch(t *testing.T) {
	m := NewMetricsTracker()
	m.RecordFetch("whales", 20*time.Millisecond, nil)
	m.RecordFetch("leaderboard", 10*time.Millisecond, nil)
	m.RecordFetch("leaderboard", 30*time.Millisecond, errors.New("boom"))

	snap := m.Snapshot()
	if len(snap.Views) != 2 || snap.Views[0].View != "leaderboard" {
		t.Fatalf("Views = %+v", snap.Views)
	}
	lb := snap.Views[0]
	if lb.Fetches != 2 || lb.Failures != 1 || lb.LastError != "boom" || lb.LastLatency != 30*time.Millisecond {
		t.Errorf("leaderboard stats = %+v", lb)
	}
	if got := snap.FailureRate(); got != 1.0/3 {
		t.Errorf("FailureRate() = %v, want 1/3", got)
	}

	m.RecordFetch("leaderboard", time.Millisecond, nil)
	if got := m.Snapshot().Views[0].LastError; got != "" {
		t.Errorf("LastError after success = %q, want empty", got)
	}
}

func TestSelectionsAndExports(t *testing.T) {
	m := NewMetricsTracker()
	m.IncrementSelections("live")
	m.IncrementSelections("stats")
	m.SetWalletsPooled(2)
	m.RecordExport("csv", "hyperliquid_wallets_1.csv", 2)

	snap := m.Snapshot()
	if snap.Selections != 2 || snap.WalletsPooled != 2 {
		t.Errorf("selections/pooled = %d/%d", snap.Selections, snap.WalletsPooled)
	}
	if snap.Exports != 1 || snap.LastExport != "hyperliquid_wallets_1.csv" || snap.LastExportAt.IsZero() {
		t.Errorf("export stats = %+v", snap)
	}
	if (MetricsSnapshot{}).FailureRate() != 0 {
		t.Error("empty snapshot failure rate should be 0")
	}
}

func TestServerEndpoints(t *testing.T) {
	NewMetricsTracker().RecordFetch("leaderboard", time.Millisecond, nil)
	srv := httptest.NewServer(NewServer(0).Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "hyperinsider_view_fetches_total") {
		t.Error("/metrics does not expose hyperinsider_view_fetches_total")
	}

	resp, err = srv.Client().Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Errorf("/health status = %d", resp.StatusCode)
	}
}
