package views

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hyperinsider/dashboard/internal/derive"
	"github.com/hyperinsider/dashboard/internal/store"
)

// DefaultLiveInterval is the auto-refresh period of the live view.
const DefaultLiveInterval = 30 * time.Second

var statusOptions = []string{"", store.StatusOpen, store.StatusClosed}

// Live tracks the positions of the tracked wallets and refreshes itself on
// a fixed interval while active.
type Live struct {
	*base[[]store.LivePosition]

	deps     Deps
	interval time.Duration

	mu     sync.Mutex
	auto   bool
	params derive.LiveParams
}

// NewLive creates the live-position view. Auto-refresh starts enabled.
func NewLive(ctx context.Context, deps Deps, interval time.Duration) *Live {
	if interval <= 0 {
		interval = DefaultLiveInterval
	}
	v := &Live{
		deps:     deps,
		interval: interval,
		auto:     true,
		params: derive.LiveParams{
			SortBy: derive.SortPositionValue,
		},
	}
	v.base = newBase(ctx, NameLive, "Live Positions", deps, v.fetch)
	v.addresses = func() []string {
		return uniqueAddresses(v.Rows())
	}
	return v
}

func (v *Live) fetch(ctx context.Context) ([]store.LivePosition, error) {
	addrs, err := trackedAddresses(ctx, v.deps)
	if err != nil {
		return nil, err
	}
	return v.deps.Provider.LivePositions(ctx, addrs)
}

// Activate fetches immediately and starts auto-refresh when enabled.
func (v *Live) Activate() <-chan struct{} {
	done := v.base.Activate()
	if v.AutoEnabled() {
		v.sched.StartAuto(v.interval)
	}
	return done
}

// AutoEnabled reports whether auto-refresh is switched on.
func (v *Live) AutoEnabled() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.auto
}

// ToggleAuto switches auto-refresh. Turning it off stops future ticks but
// leaves a fetch in flight alone.
func (v *Live) ToggleAuto() bool {
	v.mu.Lock()
	v.auto = !v.auto
	on := v.auto
	v.mu.Unlock()

	switch {
	case on && v.sched.Active():
		v.sched.StartAuto(v.interval)
	case !on:
		v.sched.StopAuto()
	}
	return on
}

// Params returns the current parameters.
func (v *Live) Params() derive.LiveParams {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.params
}

// Rows returns the live positions under the current parameters.
func (v *Live) Rows() []store.LivePosition {
	return derive.LivePositions(v.data(), v.Params())
}

// Exposure groups the visible positions by wallet.
func (v *Live) Exposure() []derive.Exposure {
	return derive.GroupByWallet(v.Rows())
}

// Label returns the watchlist label of address, if any.
func (v *Live) Label(address string) string {
	return v.deps.Watchlist.Label(address)
}

// SetSort sets the sort key.
func (v *Live) SetSort(key derive.SortKey) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.params.SortBy = key
}

// CycleSort moves to the next sort key.
func (v *Live) CycleSort() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.params.SortBy = derive.Next(derive.LiveSortKeys, v.params.SortBy)
}

// SetStatus filters by open/closed; "" shows both.
func (v *Live) SetStatus(status string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.params.Status = status
}

// CycleFilter steps the status filter through all/open/closed.
func (v *Live) CycleFilter() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.params.Status = cycle(statusOptions, v.params.Status)
}

// CycleSide steps through all/long/short.
func (v *Live) CycleSide() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.params.Side = cycle(sideOptions, v.params.Side)
}

// SortLabel describes the sort key.
func (v *Live) SortLabel() string {
	return v.Params().SortBy.Label()
}

// FilterLabel describes the status and side filters.
func (v *Live) FilterLabel() string {
	p := v.Params()
	return fmt.Sprintf("status %s, side %s", orAll(p.Status), orAll(p.Side))
}

// uniqueAddresses lists each wallet once, in order of first appearance.
func uniqueAddresses(rows []store.LivePosition) []string {
	seen := make(map[string]bool)
	var out []string
	for _, lp := range rows {
		if !seen[lp.Address] {
			seen[lp.Address] = true
			out = append(out, lp.Address)
		}
	}
	return out
}
