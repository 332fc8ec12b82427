package views

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hyperinsider/dashboard/internal/derive"
	"github.com/hyperinsider/dashboard/internal/store"
)

const statsConcurrency = 4

var minTradesPresets = []int{0, 10, 50, 100}

// Stats shows aggregate trade statistics of the tracked wallets.
type Stats struct {
	*base[[]store.TradeStats]

	deps Deps

	mu     sync.Mutex
	params derive.StatsParams
}

// NewStats creates the statistics view.
func NewStats(ctx context.Context, deps Deps) *Stats {
	v := &Stats{
		deps: deps,
		params: derive.StatsParams{
			SortBy: derive.SortPnL,
		},
	}
	v.base = newBase(ctx, NameStats, "Trade Stats", deps, v.fetch)
	v.addresses = func() []string {
		return derive.Addresses(v.Rows(), func(st store.TradeStats) string { return st.Address })
	}
	return v
}

// fetch loads the trade summary of every tracked wallet. Wallets that fail
// are logged and left out; the fetch fails only if all of them do.
func (v *Stats) fetch(ctx context.Context) ([]store.TradeStats, error) {
	addrs, err := trackedAddresses(ctx, v.deps)
	if err != nil {
		return nil, err
	}

	results := make([]*store.TradeStats, len(addrs))
	var (
		mu       sync.Mutex
		firstErr error
	)
	var g errgroup.Group
	g.SetLimit(statsConcurrency)
	for i, addr := range addrs {
		i, addr := i, addr
		g.Go(func() error {
			st, err := v.deps.Provider.UserTrades(ctx, addr)
			if err != nil {
				slog.Warn("user_trades_failed", "address", addr, "error", err)
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return nil
			}
			results[i] = &st
			return nil
		})
	}
	g.Wait() // failures are collected above, never returned

	out := make([]store.TradeStats, 0, len(addrs))
	for _, st := range results {
		if st != nil {
			out = append(out, *st)
		}
	}
	if len(out) == 0 && firstErr != nil {
		return nil, fmt.Errorf("all %d wallets failed: %w", len(addrs), firstErr)
	}
	return out, nil
}

// Params returns the current parameters.
func (v *Stats) Params() derive.StatsParams {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.params
}

// Rows returns the per-wallet statistics under the current parameters.
func (v *Stats) Rows() []store.TradeStats {
	return derive.Stats(v.data(), v.Params())
}

// Totals sums the visible rows.
func (v *Stats) Totals() derive.StatsTotals {
	return derive.Totals(v.Rows())
}

// Label returns the watchlist label of address, if any.
func (v *Stats) Label(address string) string {
	return v.deps.Watchlist.Label(address)
}

// SetSort sets the sort key.
func (v *Stats) SetSort(key derive.SortKey) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.params.SortBy = key
}

// CycleSort moves to the next sort key.
func (v *Stats) CycleSort() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.params.SortBy = derive.Next(derive.StatsSortKeys, v.params.SortBy)
}

// SetCoin restricts the statistics to one coin; "" counts all.
func (v *Stats) SetCoin(coin string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.params.Coin = coin
}

// CycleCoin steps through the coins present in the fetched fills.
func (v *Stats) CycleCoin() {
	coins := append([]string{""}, derive.Coins(v.data())...)
	v.mu.Lock()
	defer v.mu.Unlock()
	v.params.Coin = cycle(coins, v.params.Coin)
}

// CycleSide steps through all/long/short.
func (v *Stats) CycleSide() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.params.Side = cycle(sideOptions, v.params.Side)
}

// CycleFilter steps through the minimum trade count presets.
func (v *Stats) CycleFilter() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.params.MinTrades = cycle(minTradesPresets, v.params.MinTrades)
}

// SortLabel describes the sort key.
func (v *Stats) SortLabel() string {
	return v.Params().SortBy.Label()
}

// FilterLabel describes the coin, side and trade count filters.
func (v *Stats) FilterLabel() string {
	p := v.Params()
	return fmt.Sprintf("coin %s, side %s, trades >= %d", orAll(p.Coin), orAll(p.Side), p.MinTrades)
}
