package derive

import "github.com/hyperinsider/dashboard/internal/store"

// LeaderboardSortKeys are the keys the leaderboard view cycles through.
var LeaderboardSortKeys = []SortKey{SortPnL, SortROI, SortVolume, SortBalance, SortWinRate}

// LeaderboardParams controls the leaderboard view.
type LeaderboardParams struct {
	// Window selects which performance window PnL/ROI/volume come from
	Window string
	// MinPnL drops traders below this window PnL; nil disables the filter
	MinPnL *float64
	SortBy SortKey
	Limit  int
}

// Leaderboard filters, sorts and truncates leaderboard rows.
func Leaderboard(traders []store.Trader, p LeaderboardParams) []store.Trader {
	rows := filter(traders, func(t store.Trader) bool {
		return p.MinPnL == nil || t.Perf(p.Window).PnL >= *p.MinPnL
	})
	sortDesc(rows, func(t store.Trader) float64 {
		return TraderValue(t, p.Window, p.SortBy)
	})
	return truncate(rows, p.Limit)
}

// TraderValue returns the sortable value of t for key within window.
func TraderValue(t store.Trader, window string, key SortKey) float64 {
	perf := t.Perf(window)
	switch key {
	case SortPnL:
		return perf.PnL
	case SortROI:
		return perf.ROI
	case SortVolume:
		return perf.Volume
	case SortBalance:
		return t.AccountValue
	case SortWinRate:
		return t.WinRate
	case SortTrades:
		return float64(t.TotalTrades)
	}
	return perf.PnL
}

// WhaleSortKeys are the keys the whale view cycles through.
var WhaleSortKeys = []SortKey{SortBalance, SortPnL, SortVolume, SortWinRate, SortTrades}

// WhaleParams controls the whale view.
type WhaleParams struct {
	MinBalance float64
	SortBy     SortKey
	Limit      int
}

// Whales keeps accounts at or above MinBalance, sorted and truncated.
func Whales(whales []store.Whale, p WhaleParams) []store.Whale {
	rows := filter(whales, func(w store.Whale) bool {
		return w.Balance >= p.MinBalance
	})
	sortDesc(rows, func(w store.Whale) float64 {
		return WhaleValue(w, p.SortBy)
	})
	return truncate(rows, p.Limit)
}

// WhaleValue returns the sortable value of w for key.
func WhaleValue(w store.Whale, key SortKey) float64 {
	switch key {
	case SortBalance:
		return w.Balance
	case SortPnL:
		return w.PnL
	case SortROI:
		return w.ROI
	case SortVolume:
		return w.Volume
	case SortWinRate:
		return w.WinRate
	case SortTrades:
		return float64(w.TotalTrades)
	}
	return w.Balance
}

// WhalesFromTraders converts leaderboard rows at or above minBalance into
// whale records, ordered by balance.
func WhalesFromTraders(traders []store.Trader, minBalance float64) []store.Whale {
	whales := make([]store.Whale, 0, len(traders))
	for _, t := range traders {
		if t.AccountValue < minBalance {
			continue
		}
		whales = append(whales, store.Whale{
			Address:     t.Address,
			DisplayName: t.DisplayName,
			Balance:     t.AccountValue,
			PnL:         t.PnL,
			ROI:         t.ROI,
			Volume:      t.Volume,
			WinRate:     t.WinRate,
			TotalTrades: t.TotalTrades,
		})
	}
	sortDesc(whales, func(w store.Whale) float64 { return w.Balance })
	return whales
}
