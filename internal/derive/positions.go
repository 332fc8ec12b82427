package derive

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/hyperinsider/dashboard/internal/store"
)

// LiveSortKeys are the keys the live-position view cycles through.
var LiveSortKeys = []SortKey{SortPositionValue, SortUnrealizedPnL, SortLeverage}

// LiveParams controls the live-position view.
type LiveParams struct {
	// Status, Side and Coin filter positions; empty means all
	Status string
	Side   string
	Coin   string
	SortBy SortKey
	Limit  int
}

// LivePositions filters, sorts and truncates live positions.
func LivePositions(positions []store.LivePosition, p LiveParams) []store.LivePosition {
	rows := filter(positions, func(lp store.LivePosition) bool {
		return matchesFold(p.Status, lp.Status) &&
			matchesFold(p.Side, lp.Side) &&
			matchesFold(p.Coin, lp.Coin)
	})
	sortDesc(rows, func(lp store.LivePosition) float64 {
		return PositionValue(lp.Position, p.SortBy)
	})
	return truncate(rows, p.Limit)
}

// PositionValue returns the sortable value of pos for key.
func PositionValue(pos store.Position, key SortKey) float64 {
	switch key {
	case SortPositionValue:
		return math.Abs(pos.PositionValue)
	case SortUnrealizedPnL, SortPnL:
		return pos.UnrealizedPnL
	case SortLeverage:
		return float64(pos.Leverage)
	}
	return math.Abs(pos.PositionValue)
}

// Positions sorts plain positions, used by the whale drill-down.
func Positions(positions []store.Position, key SortKey) []store.Position {
	rows := make([]store.Position, len(positions))
	copy(rows, positions)
	sortDesc(rows, func(p store.Position) float64 { return PositionValue(p, key) })
	return rows
}

// Exposure is the per-wallet aggregate of live positions.
type Exposure struct {
	Address       string
	Open          int
	Closed        int
	Long          float64 // open long notional
	Short         float64 // open short notional
	UnrealizedPnL float64 // over open positions
}

// Net returns long minus short notional.
func (e Exposure) Net() float64 {
	return e.Long - e.Short
}

// Gross returns long plus short notional.
func (e Exposure) Gross() float64 {
	return e.Long + e.Short
}

// GroupByWallet aggregates positions per wallet address (ignoring case),
// ordered by gross open notional descending.
func GroupByWallet(positions []store.LivePosition) []Exposure {
	type acc struct {
		exp         Exposure
		long, short decimal.Decimal
		unrealized  decimal.Decimal
	}
	var order []string
	groups := make(map[string]*acc)

	for _, lp := range positions {
		key := strings.ToLower(lp.Address)
		g, ok := groups[key]
		if !ok {
			g = &acc{exp: Exposure{Address: lp.Address}}
			groups[key] = g
			order = append(order, key)
		}

		if lp.Status == store.StatusClosed {
			g.exp.Closed++
			continue
		}
		g.exp.Open++
		value := decimal.NewFromFloat(math.Abs(lp.PositionValue))
		if lp.Side == store.SideShort {
			g.short = g.short.Add(value)
		} else {
			g.long = g.long.Add(value)
		}
		g.unrealized = g.unrealized.Add(decimal.NewFromFloat(lp.UnrealizedPnL))
	}

	out := make([]Exposure, 0, len(order))
	for _, key := range order {
		g := groups[key]
		g.exp.Long = g.long.InexactFloat64()
		g.exp.Short = g.short.InexactFloat64()
		g.exp.UnrealizedPnL = g.unrealized.InexactFloat64()
		out = append(out, g.exp)
	}
	sortDesc(out, func(e Exposure) float64 { return e.Gross() })
	return out
}
