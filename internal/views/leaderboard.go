package views

import (
	"context"
	"fmt"
	"sync"

	"github.com/hyperinsider/dashboard/internal/derive"
	"github.com/hyperinsider/dashboard/internal/store"
)

// minPnLPresets are the thresholds CycleFilter steps through; nil disables
// the filter.
var minPnLPresets = []*float64{nil, ptr(0), ptr(10_000), ptr(100_000), ptr(1_000_000)}

func ptr(f float64) *float64 { return &f }

// Leaderboard ranks traders by a chosen performance figure.
type Leaderboard struct {
	*base[[]store.Trader]

	mu     sync.Mutex
	params derive.LeaderboardParams
}

// NewLeaderboard creates the leaderboard view fetching up to limit traders.
func NewLeaderboard(ctx context.Context, deps Deps, limit int) *Leaderboard {
	fetch := func(ctx context.Context) ([]store.Trader, error) {
		return deps.Provider.Leaderboard(ctx, limit)
	}
	v := &Leaderboard{
		base: newBase(ctx, NameLeaderboard, "Leaderboard", deps, fetch),
		params: derive.LeaderboardParams{
			Window: store.WindowAllTime,
			SortBy: derive.SortPnL,
		},
	}
	v.addresses = func() []string {
		return derive.Addresses(v.Rows(), func(t store.Trader) string { return t.Address })
	}
	return v
}

// Params returns the current parameters.
func (v *Leaderboard) Params() derive.LeaderboardParams {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.params
}

// Rows returns the fetched traders under the current parameters.
func (v *Leaderboard) Rows() []store.Trader {
	return derive.Leaderboard(v.data(), v.Params())
}

// SetSort sets the sort key.
func (v *Leaderboard) SetSort(key derive.SortKey) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.params.SortBy = key
}

// CycleSort moves to the next sort key.
func (v *Leaderboard) CycleSort() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.params.SortBy = derive.Next(derive.LeaderboardSortKeys, v.params.SortBy)
}

// SetMinPnL sets the minimum window PnL; nil disables the filter.
func (v *Leaderboard) SetMinPnL(min *float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.params.MinPnL = min
}

// CycleFilter steps through the minimum PnL presets.
func (v *Leaderboard) CycleFilter() {
	v.mu.Lock()
	defer v.mu.Unlock()
	next := 0
	for i, p := range minPnLPresets {
		if samePtr(p, v.params.MinPnL) {
			next = (i + 1) % len(minPnLPresets)
			break
		}
	}
	v.params.MinPnL = minPnLPresets[next]
}

func samePtr(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// SetWindow selects the performance window.
func (v *Leaderboard) SetWindow(window string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.params.Window = window
}

// CycleWindow moves to the next performance window.
func (v *Leaderboard) CycleWindow() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.params.Window = cycle(store.Windows, v.params.Window)
}

// SetLimit caps the number of rows shown; zero shows all.
func (v *Leaderboard) SetLimit(n int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.params.Limit = n
}

// SortLabel describes the sort key.
func (v *Leaderboard) SortLabel() string {
	p := v.Params()
	return fmt.Sprintf("%s (%s)", p.SortBy.Label(), p.Window)
}

// FilterLabel describes the PnL filter.
func (v *Leaderboard) FilterLabel() string {
	p := v.Params()
	if p.MinPnL == nil {
		return "all"
	}
	return fmt.Sprintf("PnL >= %.0f", *p.MinPnL)
}
