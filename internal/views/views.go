// Package views holds the four dashboard view controllers. Each composes a
// refresh scheduler, a per-view selection store and the derive functions for
// its data; the UI and the export command drive them.
package views

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hyperinsider/dashboard/internal/metrics"
	"github.com/hyperinsider/dashboard/internal/provider"
	"github.com/hyperinsider/dashboard/internal/refresh"
	"github.com/hyperinsider/dashboard/internal/selection"
	"github.com/hyperinsider/dashboard/internal/store"
	"github.com/hyperinsider/dashboard/internal/wallets"
	"github.com/hyperinsider/dashboard/internal/watchlist"
)

// View names. They double as the source label of aggregated wallets.
const (
	NameLeaderboard = "leaderboard"
	NameWhales      = "whales"
	NameStats       = "stats"
	NameLive        = "live"
)

// ErrNoWallets is returned by the stats and live fetches when there is
// nothing to track.
var ErrNoWallets = errors.New("no wallets to track")

// Deps are the collaborators shared by every view.
type Deps struct {
	Provider provider.Provider
	Wallets  *wallets.Aggregator
	// Metrics is optional
	Metrics *metrics.MetricsTracker
	// Watchlist is optional; when empty the stats and live views track the
	// top TrackTopN leaderboard traders
	Watchlist *watchlist.Watchlist
	TrackTopN int
}

// Status is the loading state of a view as shown by the UI.
type Status struct {
	Loading      bool
	Err          string
	HasData      bool
	LastUpdate   time.Time
	Auto         bool
	AutoInterval time.Duration
}

// Controller is the view-independent surface used by the UI and the export
// command.
type Controller interface {
	Name() string
	Title() string

	Activate() <-chan struct{}
	Deactivate()
	Refresh() <-chan struct{}
	Status() Status
	// OnChange registers fn to run after every state transition, on any
	// goroutine. Call before the first Activate.
	OnChange(fn func())

	// RowAddresses lists the wallet of every visible row, in display order
	RowAddresses() []string
	ToggleRow(address string) bool
	IsSelected(address string) bool
	SelectAllVisible() int
	SelectTop(n int) int
	DeselectAll()
	SelectedCount() int

	CycleSort()
	CycleFilter()
	SortLabel() string
	FilterLabel() string
}

// base carries the parts every controller shares.
type base[T any] struct {
	name      string
	title     string
	sched     *refresh.Scheduler[T]
	sel       *selection.Store
	addresses func() []string
}

func newBase[T any](ctx context.Context, name, title string, deps Deps, fetch refresh.Fetcher[T]) *base[T] {
	b := &base[T]{
		name:  name,
		title: title,
		sched: refresh.New(ctx, name, fetch),
	}
	b.sel = selection.NewStore(func(address string) {
		if deps.Wallets != nil {
			deps.Wallets.Add(address, name)
		}
		if deps.Metrics != nil {
			deps.Metrics.IncrementSelections(name)
			if deps.Wallets != nil {
				deps.Metrics.SetWalletsPooled(deps.Wallets.Len())
			}
		}
	})
	if deps.Metrics != nil {
		b.sched.Observe = deps.Metrics.RecordFetch
	}
	return b
}

func (b *base[T]) Name() string  { return b.name }
func (b *base[T]) Title() string { return b.title }

func (b *base[T]) Activate() <-chan struct{} { return b.sched.Activate() }
func (b *base[T]) Deactivate()               { b.sched.Deactivate() }
func (b *base[T]) Refresh() <-chan struct{}  { return b.sched.Refresh() }

func (b *base[T]) OnChange(fn func()) {
	b.sched.OnChange = func(refresh.State[T]) { fn() }
}

func (b *base[T]) Status() Status {
	st := b.sched.State()
	return Status{
		Loading:      st.Loading,
		Err:          st.Err,
		HasData:      st.HasData,
		LastUpdate:   st.LastUpdate,
		Auto:         b.sched.AutoEnabled(),
		AutoInterval: b.sched.AutoInterval(),
	}
}

// data returns the last successfully fetched data.
func (b *base[T]) data() T {
	return b.sched.State().Data
}

func (b *base[T]) RowAddresses() []string         { return b.addresses() }
func (b *base[T]) ToggleRow(address string) bool  { return b.sel.Toggle(address) }
func (b *base[T]) IsSelected(address string) bool { return b.sel.IsSelected(address) }
func (b *base[T]) DeselectAll()                   { b.sel.DeselectAll() }
func (b *base[T]) SelectedCount() int             { return b.sel.Size() }

// SelectAllVisible adds every visible row to the selection.
func (b *base[T]) SelectAllVisible() int {
	return b.sel.SelectAll(b.addresses())
}

// SelectTop adds the first n visible rows to the selection.
func (b *base[T]) SelectTop(n int) int {
	addrs := b.addresses()
	if n >= 0 && n < len(addrs) {
		addrs = addrs[:n]
	}
	return b.sel.SelectAll(addrs)
}

// trackedAddresses returns the watchlist, or the top leaderboard traders
// when the watchlist is empty.
func trackedAddresses(ctx context.Context, deps Deps) ([]string, error) {
	if deps.Watchlist.Len() > 0 {
		return deps.Watchlist.Addresses(), nil
	}
	n := deps.TrackTopN
	if n <= 0 {
		n = 20
	}
	traders, err := deps.Provider.Leaderboard(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("resolve tracked wallets: %w", err)
	}
	if len(traders) == 0 {
		return nil, ErrNoWallets
	}
	addrs := make([]string, len(traders))
	for i, t := range traders {
		addrs[i] = t.Address
	}
	return addrs, nil
}

// cycle returns the element after cur in options, wrapping around.
func cycle[T comparable](options []T, cur T) T {
	for i, o := range options {
		if o == cur {
			return options[(i+1)%len(options)]
		}
	}
	return options[0]
}

// sideOptions are the side filters of the stats and live views.
var sideOptions = []string{"", store.SideLong, store.SideShort}

func orAll(s string) string {
	if s == "" {
		return "all"
	}
	return s
}

var (
	_ Controller = (*Leaderboard)(nil)
	_ Controller = (*Whales)(nil)
	_ Controller = (*Stats)(nil)
	_ Controller = (*Live)(nil)
)
