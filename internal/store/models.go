// Package store provides the data models shared by the provider, views and UI.
package store

import (
	"strings"
	"time"
)

// Performance windows reported by the leaderboard.
const (
	WindowDay     = "day"
	WindowWeek    = "week"
	WindowMonth   = "month"
	WindowAllTime = "allTime"
)

// Windows lists the performance windows in display order.
var Windows = []string{WindowDay, WindowWeek, WindowMonth, WindowAllTime}

// Position sides.
const (
	SideLong  = "long"
	SideShort = "short"
)

// Live position statuses.
const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// SameAddress reports whether two wallet addresses identify the same wallet.
// Addresses are compared case-insensitively and otherwise left untouched.
func SameAddress(a, b string) bool {
	return strings.EqualFold(a, b)
}

// Performance is a trader's result over one leaderboard window.
type Performance struct {
	PnL    float64 `json:"pnl"`
	ROI    float64 `json:"roi"`
	Volume float64 `json:"vlm"`
}

// Trader is one leaderboard row.
type Trader struct {
	// Rank is the 1-based position in the provider's ordering
	Rank int

	Address     string
	DisplayName string

	// AccountValue is the current account equity in USD
	AccountValue float64

	// PnL, ROI and Volume are the all-time figures
	PnL    float64
	ROI    float64
	Volume float64

	// WinRate is a percentage (0-100); zero when the provider does not report it
	WinRate     float64
	TotalTrades int

	// Windows holds per-window performance keyed by Window* constants
	Windows map[string]Performance
}

// Perf returns the performance for the given window, falling back to the
// all-time figures when the window is unknown or missing.
func (t Trader) Perf(window string) Performance {
	if p, ok := t.Windows[window]; ok {
		return p
	}
	return Performance{PnL: t.PnL, ROI: t.ROI, Volume: t.Volume}
}

// Whale is an account whose balance exceeds the whale threshold.
type Whale struct {
	Address     string
	DisplayName string

	// Balance is the account value in USD
	Balance float64

	PnL           float64
	ROI           float64
	Volume        float64
	WinRate       float64
	TotalTrades   int
	OpenPositions int
}

// Fill is a single executed trade.
type Fill struct {
	Address   string
	Coin      string
	Side      string // long or short
	Direction string // e.g. "Open Long", "Close Short"
	Price     float64
	Size      float64
	ClosedPnL float64
	Fee       float64
	Hash      string
	Time      time.Time
}

// Notional returns price * size.
func (f Fill) Notional() float64 {
	return f.Price * f.Size
}

// TradeStats summarizes the trade history of one wallet.
type TradeStats struct {
	Address       string
	TotalTrades   int
	WinningTrades int
	LosingTrades  int

	// WinRate is a percentage (0-100) over trades that realized PnL
	WinRate float64

	TotalPnL    float64
	Volume      float64
	Fees        float64
	LargestWin  float64
	LargestLoss float64
	LastTrade   time.Time

	Fills []Fill
}

// Position is an open perpetual position.
type Position struct {
	Coin             string
	Side             string
	Size             float64
	EntryPrice       float64
	PositionValue    float64
	UnrealizedPnL    float64
	ReturnOnEquity   float64
	Leverage         int
	LiquidationPrice float64
	MarginUsed       float64
}

// MarkPrice derives the mark price from position value and size.
func (p Position) MarkPrice() float64 {
	if p.Size == 0 {
		return 0
	}
	return p.PositionValue / p.Size
}

// LivePosition is a position observed for a tracked wallet.
type LivePosition struct {
	Address string
	Position
	Status    string
	UpdatedAt time.Time
}

// SelectedWallet is one entry of the cross-view wallet collection.
type SelectedWallet struct {
	Address string `json:"address"`
	Source  string `json:"source"`
}
