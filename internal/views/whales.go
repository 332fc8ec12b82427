package views

import (
	"context"
	"fmt"
	"sync"

	"github.com/hyperinsider/dashboard/internal/derive"
	"github.com/hyperinsider/dashboard/internal/store"
)

// whaleMultipliers scale the base threshold for CycleFilter.
var whaleMultipliers = []float64{1, 5, 10, 50}

// Whales lists accounts above the whale balance threshold.
type Whales struct {
	*base[[]store.Whale]

	provider  positionsProvider
	threshold float64

	mu     sync.Mutex
	params derive.WhaleParams
}

type positionsProvider interface {
	UserPositions(ctx context.Context, address string) ([]store.Position, error)
}

// NewWhales creates the whale view. minBalance is both the fetch threshold
// and the lowest client-side filter.
func NewWhales(ctx context.Context, deps Deps, minBalance float64) *Whales {
	fetch := func(ctx context.Context) ([]store.Whale, error) {
		return deps.Provider.Whales(ctx, minBalance)
	}
	v := &Whales{
		base:      newBase(ctx, NameWhales, "Whales", deps, fetch),
		provider:  deps.Provider,
		threshold: minBalance,
		params: derive.WhaleParams{
			MinBalance: minBalance,
			SortBy:     derive.SortBalance,
		},
	}
	v.addresses = func() []string {
		return derive.Addresses(v.Rows(), func(w store.Whale) string { return w.Address })
	}
	return v
}

// Params returns the current parameters.
func (v *Whales) Params() derive.WhaleParams {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.params
}

// Rows returns the fetched whales under the current parameters.
func (v *Whales) Rows() []store.Whale {
	return derive.Whales(v.data(), v.Params())
}

// Positions loads the open positions of one whale for the drill-down,
// largest first. It runs outside the view's scheduler.
func (v *Whales) Positions(ctx context.Context, address string) ([]store.Position, error) {
	positions, err := v.provider.UserPositions(ctx, address)
	if err != nil {
		return nil, err
	}
	return derive.Positions(positions, derive.SortPositionValue), nil
}

// SetSort sets the sort key.
func (v *Whales) SetSort(key derive.SortKey) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.params.SortBy = key
}

// CycleSort moves to the next sort key.
func (v *Whales) CycleSort() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.params.SortBy = derive.Next(derive.WhaleSortKeys, v.params.SortBy)
}

// SetMinBalance raises the client-side balance filter. Values below the
// fetch threshold have no further effect.
func (v *Whales) SetMinBalance(min float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.params.MinBalance = min
}

// CycleFilter steps the balance filter through multiples of the threshold.
func (v *Whales) CycleFilter() {
	v.mu.Lock()
	defer v.mu.Unlock()
	presets := make([]float64, len(whaleMultipliers))
	for i, m := range whaleMultipliers {
		presets[i] = v.threshold * m
	}
	v.params.MinBalance = cycle(presets, v.params.MinBalance)
}

// SortLabel describes the sort key.
func (v *Whales) SortLabel() string {
	return v.Params().SortBy.Label()
}

// FilterLabel describes the balance filter.
func (v *Whales) FilterLabel() string {
	return fmt.Sprintf("balance >= %.0f", v.Params().MinBalance)
}
