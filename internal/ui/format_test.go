package ui

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
)

func TestTruncateAddress(t *testing.T) {
	tests := []struct {
		name string
		addr string
		want string
	}{
		{"full address", "0x1234567890abcdef1234567890abcdef12345678", "0x1234...5678"},
		{"short stays", "0xabc", "0xabc"},
		{"twelve chars stay", "0x1234567890", "0x1234567890"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncateAddress(tt.addr); got != tt.want {
				t.Errorf("truncateAddress(%q) = %q, want %q", tt.addr, got, tt.want)
			}
		})
	}
}

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{0, "$0"},
		{950, "$950"},
		{9_999, "$9999"},
		{12_345, "$12.3K"},
		{4_560_000, "$4.56M"},
		{1_200_000_000, "$1.20B"},
		{-25_000, "-$25.0K"},
	}

	for _, tt := range tests {
		if got := formatUSD(tt.v); got != tt.want {
			t.Errorf("formatUSD(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestFormatSignedUSD(t *testing.T) {
	if got := formatSignedUSD(500); got != "+$500" {
		t.Errorf("formatSignedUSD(500) = %q, want +$500", got)
	}
	if got := formatSignedUSD(-500); got != "-$500" {
		t.Errorf("formatSignedUSD(-500) = %q, want -$500", got)
	}
	if got := formatSignedUSD(0); got != "$0" {
		t.Errorf("formatSignedUSD(0) = %q, want $0", got)
	}
}

func TestFormatPct(t *testing.T) {
	if got := formatPct(0.1234); got != "+12.34%" {
		t.Errorf("formatPct(0.1234) = %q", got)
	}
	if got := formatPct(-0.05); got != "-5.00%" {
		t.Errorf("formatPct(-0.05) = %q", got)
	}
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		p    float64
		want string
	}{
		{0, "-"},
		{65_432.1, "65432"},
		{3.14159, "3.14"},
		{0.000123, "0.00012"},
	}

	for _, tt := range tests {
		if got := formatPrice(tt.p); got != tt.want {
			t.Errorf("formatPrice(%v) = %q, want %q", tt.p, got, tt.want)
		}
	}
}

func TestSignColor(t *testing.T) {
	if signColor(1) != tcell.ColorGreen {
		t.Error("positive values should be green")
	}
	if signColor(-1) != tcell.ColorRed {
		t.Error("negative values should be red")
	}
	if signColor(0) != colorNeutral {
		t.Error("zero should be neutral")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "30s"},
		{5 * time.Minute, "5m"},
		{2*time.Hour + 15*time.Minute, "2h 15m"},
	}

	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatTimeAgo(t *testing.T) {
	if got := formatTimeAgo(time.Time{}); got != "never" {
		t.Errorf("formatTimeAgo(zero) = %q, want never", got)
	}
	if got := formatTimeAgo(time.Now().Add(-3 * time.Hour)); got != "3h ago" {
		t.Errorf("formatTimeAgo(3h) = %q, want 3h ago", got)
	}
	if got := formatTimeAgo(time.Now().Add(-48 * time.Hour)); got != "2d ago" {
		t.Errorf("formatTimeAgo(48h) = %q, want 2d ago", got)
	}
}

func TestWalletLabel(t *testing.T) {
	addr := "0x1234567890abcdef1234567890abcdef12345678"
	if got := walletLabel(addr, "desk"); got != "desk" {
		t.Errorf("walletLabel with label = %q", got)
	}
	if got := walletLabel(addr, ""); got != "0x1234...5678" {
		t.Errorf("walletLabel without label = %q", got)
	}
}
