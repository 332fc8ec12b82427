package provider

import (
	"testing"

	"github.com/hyperinsider/dashboard/internal/derive"
	"github.com/hyperinsider/dashboard/internal/store"
)

func TestParseFloat(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"", 0},
		{"12.5", 12.5},
		{"-3", -3},
		{"abc", 0},
		{"NaN", 0},
		{"nan", 0},
		{"Inf", 0},
		{"+Inf", 0},
		{"-Infinity", 0},
		{"1e400", 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseFloat(tt.in); got != tt.want {
				t.Errorf("parseFloat(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestConvertTraderDropsNonFiniteWindows(t *testing.T) {
	row := leaderboardRow{
		EthAddress:   "0xAA",
		AccountValue: "NaN",
		WindowPerformances: [][]interface{}{
			{"allTime", map[string]interface{}{"pnl": "Inf", "roi": "0.5", "vlm": "NaN"}},
		},
	}

	tr := convertTrader(row)
	if tr.AccountValue != 0 || tr.PnL != 0 || tr.Volume != 0 {
		t.Errorf("non-finite values should parse as 0, got %+v", tr)
	}
	if tr.ROI != 0.5 {
		t.Errorf("ROI = %v, want 0.5", tr.ROI)
	}
}

func TestNonFiniteFillsSummarize(t *testing.T) {
	fills := []store.Fill{
		convertFill("0xAA", userFill{Coin: "BTC", Dir: "Close Long", Px: "NaN", Sz: "1", ClosedPnl: "Inf", Fee: "-Inf"}),
		convertFill("0xAA", userFill{Coin: "BTC", Dir: "Close Long", Px: "100", Sz: "2", ClosedPnl: "10", Fee: "1"}),
	}

	// Must not panic on decimal conversion.
	st := derive.SummarizeFills("0xAA", fills)
	if st.TotalPnL != 10 {
		t.Errorf("TotalPnL = %v, want 10", st.TotalPnL)
	}
	if st.Volume != 200 {
		t.Errorf("Volume = %v, want 200", st.Volume)
	}
}
