package ui

import (
	"fmt"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"
)

// truncateAddress truncates a wallet address for display.
func truncateAddress(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}

// formatUSD formats an amount compactly: $950, $12.3K, $4.56M, $1.20B.
func formatUSD(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	switch {
	case v >= 1e9:
		return fmt.Sprintf("%s$%.2fB", sign, v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%s$%.2fM", sign, v/1e6)
	case v >= 1e4:
		return fmt.Sprintf("%s$%.1fK", sign, v/1e3)
	}
	return fmt.Sprintf("%s$%.0f", sign, v)
}

// formatSignedUSD is formatUSD with an explicit plus sign for gains.
func formatSignedUSD(v float64) string {
	if v > 0 {
		return "+" + formatUSD(v)
	}
	return formatUSD(v)
}

// formatPct formats a fraction as a signed percentage.
func formatPct(fraction float64) string {
	return fmt.Sprintf("%+.2f%%", fraction*100)
}

// formatPrice picks a precision that suits the magnitude of p.
func formatPrice(p float64) string {
	switch a := math.Abs(p); {
	case a == 0:
		return "-"
	case a >= 1000:
		return fmt.Sprintf("%.0f", p)
	case a >= 1:
		return fmt.Sprintf("%.2f", p)
	}
	return fmt.Sprintf("%.5f", p)
}

const colorNeutral = tcell.ColorWhite

// signColor returns green for gains, red for losses.
func signColor(v float64) tcell.Color {
	switch {
	case v > 0:
		return tcell.ColorGreen
	case v < 0:
		return tcell.ColorRed
	}
	return colorNeutral
}

// formatDuration formats a duration in human-readable form.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// formatTimeAgo formats a time as "X ago".
func formatTimeAgo(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	elapsed := time.Since(t)

	if elapsed < time.Minute {
		return fmt.Sprintf("%.0fs ago", elapsed.Seconds())
	}
	if elapsed < time.Hour {
		return fmt.Sprintf("%.0fm ago", elapsed.Minutes())
	}
	if elapsed < 24*time.Hour {
		return fmt.Sprintf("%.0fh ago", elapsed.Hours())
	}
	return fmt.Sprintf("%.0fd ago", elapsed.Hours()/24)
}
