package derive

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/hyperinsider/dashboard/internal/store"
)

// StatsSortKeys are the keys the statistics view cycles through.
var StatsSortKeys = []SortKey{SortPnL, SortVolume, SortWinRate, SortTrades}

// StatsParams controls the statistics view.
type StatsParams struct {
	// Coin and Side restrict which fills are counted; empty means all
	Coin      string
	Side      string
	MinTrades int
	SortBy    SortKey
	Limit     int
}

// SummarizeFills aggregates a wallet's fills. Wins and losses count fills
// that realized a positive or negative PnL.
func SummarizeFills(address string, fills []store.Fill) store.TradeStats {
	st := store.TradeStats{
		Address:     address,
		TotalTrades: len(fills),
		Fills:       fills,
	}

	pnl, volume, fees := decimal.Zero, decimal.Zero, decimal.Zero
	for _, f := range fills {
		closed := decimal.NewFromFloat(f.ClosedPnL)
		pnl = pnl.Add(closed)
		volume = volume.Add(decimal.NewFromFloat(f.Price).Mul(decimal.NewFromFloat(f.Size)))
		fees = fees.Add(decimal.NewFromFloat(f.Fee))

		switch {
		case f.ClosedPnL > 0:
			st.WinningTrades++
			if f.ClosedPnL > st.LargestWin {
				st.LargestWin = f.ClosedPnL
			}
		case f.ClosedPnL < 0:
			st.LosingTrades++
			if f.ClosedPnL < st.LargestLoss {
				st.LargestLoss = f.ClosedPnL
			}
		}
		if f.Time.After(st.LastTrade) {
			st.LastTrade = f.Time
		}
	}

	st.TotalPnL = pnl.InexactFloat64()
	st.Volume = volume.InexactFloat64()
	st.Fees = fees.InexactFloat64()
	if decided := st.WinningTrades + st.LosingTrades; decided > 0 {
		st.WinRate = float64(st.WinningTrades) / float64(decided) * 100
	}
	return st
}

// GroupFills groups fills by wallet address (ignoring case) and summarizes
// each group. Groups appear in order of first occurrence, keyed by the first
// casing seen.
func GroupFills(fills []store.Fill) []store.TradeStats {
	var order []string
	groups := make(map[string][]store.Fill)
	first := make(map[string]string)

	for _, f := range fills {
		key := strings.ToLower(f.Address)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
			first[key] = f.Address
		}
		groups[key] = append(groups[key], f)
	}

	out := make([]store.TradeStats, 0, len(order))
	for _, key := range order {
		out = append(out, SummarizeFills(first[key], groups[key]))
	}
	return out
}

// Stats regroups the fills of every wallet under the coin/side filter, then
// filters by MinTrades, sorts and truncates. Wallets without matching fills
// are kept with zero counts so an empty wallet is still listed.
func Stats(stats []store.TradeStats, p StatsParams) []store.TradeStats {
	rows := make([]store.TradeStats, 0, len(stats))
	for _, st := range stats {
		fills := filter(st.Fills, func(f store.Fill) bool {
			return matchesFold(p.Coin, f.Coin) && matchesFold(p.Side, f.Side)
		})
		if len(fills) == 0 && len(st.Fills) == 0 && p.Coin == "" && p.Side == "" {
			// Provider summary without fill detail
			rows = append(rows, st)
			continue
		}
		rows = append(rows, SummarizeFills(st.Address, fills))
	}

	rows = filter(rows, func(st store.TradeStats) bool {
		return st.TotalTrades >= p.MinTrades
	})
	sortDesc(rows, func(st store.TradeStats) float64 {
		return StatsValue(st, p.SortBy)
	})
	return truncate(rows, p.Limit)
}

// StatsValue returns the sortable value of st for key.
func StatsValue(st store.TradeStats, key SortKey) float64 {
	switch key {
	case SortPnL:
		return st.TotalPnL
	case SortVolume:
		return st.Volume
	case SortWinRate:
		return st.WinRate
	case SortTrades:
		return float64(st.TotalTrades)
	}
	return st.TotalPnL
}

// StatsTotals aggregates the rows currently shown by the statistics view.
type StatsTotals struct {
	Wallets int
	Trades  int
	Wins    int
	Losses  int
	WinRate float64
	PnL     float64
	Volume  float64
	Fees    float64
}

// Totals sums rows into a single summary line.
func Totals(rows []store.TradeStats) StatsTotals {
	var t StatsTotals
	pnl, volume, fees := decimal.Zero, decimal.Zero, decimal.Zero
	for _, st := range rows {
		t.Wallets++
		t.Trades += st.TotalTrades
		t.Wins += st.WinningTrades
		t.Losses += st.LosingTrades
		pnl = pnl.Add(decimal.NewFromFloat(st.TotalPnL))
		volume = volume.Add(decimal.NewFromFloat(st.Volume))
		fees = fees.Add(decimal.NewFromFloat(st.Fees))
	}
	t.PnL = pnl.InexactFloat64()
	t.Volume = volume.InexactFloat64()
	t.Fees = fees.InexactFloat64()
	if decided := t.Wins + t.Losses; decided > 0 {
		t.WinRate = float64(t.Wins) / float64(decided) * 100
	}
	return t
}

// Coins lists the distinct coins traded across stats, in first-seen order.
func Coins(stats []store.TradeStats) []string {
	seen := make(map[string]bool)
	var coins []string
	for _, st := range stats {
		for _, f := range st.Fills {
			if f.Coin != "" && !seen[f.Coin] {
				seen[f.Coin] = true
				coins = append(coins, f.Coin)
			}
		}
	}
	return coins
}
