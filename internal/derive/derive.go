// Package derive holds the pure filter/sort/group functions behind each view.
//
// Every function takes the raw provider data plus the view parameters and
// returns a fresh slice; inputs are never modified and nothing is cached.
package derive

import (
	"sort"
	"strings"
)

// SortKey names the numeric field a view is sorted by, always descending.
type SortKey string

const (
	SortPnL           SortKey = "pnl"
	SortVolume        SortKey = "volume"
	SortBalance       SortKey = "balance"
	SortROI           SortKey = "roi"
	SortWinRate       SortKey = "winRate"
	SortTrades        SortKey = "totalTrades"
	SortUnrealizedPnL SortKey = "unrealizedPnl"
	SortPositionValue SortKey = "positionValue"
	SortLeverage      SortKey = "leverage"
)

// Label returns a short column-style label for the key.
func (k SortKey) Label() string {
	switch k {
	case SortPnL:
		return "PnL"
	case SortVolume:
		return "Volume"
	case SortBalance:
		return "Balance"
	case SortROI:
		return "ROI"
	case SortWinRate:
		return "Win %"
	case SortTrades:
		return "Trades"
	case SortUnrealizedPnL:
		return "uPnL"
	case SortPositionValue:
		return "Value"
	case SortLeverage:
		return "Leverage"
	}
	return string(k)
}

// Next returns the key after k in keys, wrapping around.
func Next(keys []SortKey, k SortKey) SortKey {
	for i, key := range keys {
		if key == k {
			return keys[(i+1)%len(keys)]
		}
	}
	return keys[0]
}

// sortDesc stable-sorts items by value descending.
func sortDesc[T any](items []T, value func(T) float64) {
	sort.SliceStable(items, func(i, j int) bool {
		return value(items[i]) > value(items[j])
	})
}

// truncate caps items at limit when limit is positive.
func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

// filter returns the items for which keep is true, in a new slice.
func filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// matchesFold reports whether want is empty or equal to got ignoring case.
func matchesFold(want, got string) bool {
	return want == "" || strings.EqualFold(want, got)
}

// Addresses extracts the address of every item, preserving order.
func Addresses[T any](items []T, address func(T) string) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = address(item)
	}
	return out
}
