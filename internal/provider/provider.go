// Package provider supplies leaderboard, whale, trade and position data to the
// dashboard views, either from the Hyperliquid API or from a seeded simulation.
package provider

import (
	"context"
	"errors"

	"github.com/hyperinsider/dashboard/internal/store"
)

// Sentinel errors returned (wrapped) by providers.
var (
	ErrNotFound         = errors.New("not found")
	ErrRateLimited      = errors.New("rate limited")
	ErrUnexpectedStatus = errors.New("unexpected status")
)

// Provider is the read-only query surface the views depend on.
type Provider interface {
	// Leaderboard returns up to limit traders ordered by all-time PnL.
	// A limit of zero or less returns every row.
	Leaderboard(ctx context.Context, limit int) ([]store.Trader, error)

	// UserTrades returns the trade summary of one wallet, fills included.
	UserTrades(ctx context.Context, address string) (store.TradeStats, error)

	// Whales returns accounts whose balance is at least minBalance.
	Whales(ctx context.Context, minBalance float64) ([]store.Whale, error)

	// UserPositions returns the open positions of one wallet.
	UserPositions(ctx context.Context, address string) ([]store.Position, error)

	// LivePositions polls the positions of every address. Positions that
	// disappeared since the previous poll are reported once as closed.
	LivePositions(ctx context.Context, addresses []string) ([]store.LivePosition, error)
}
