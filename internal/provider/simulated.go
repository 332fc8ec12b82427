package provider

import (
	"context"
	"encoding/hex"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/hyperinsider/dashboard/internal/derive"
	"github.com/hyperinsider/dashboard/internal/store"
)

var simCoins = []struct {
	Coin  string
	Price float64
}{
	{"BTC", 67000}, {"ETH", 3400}, {"SOL", 150}, {"HYPE", 28},
	{"ARB", 0.9}, {"DOGE", 0.15}, {"AVAX", 32}, {"LINK", 17},
}

var directionLabel = map[string]string{store.SideLong: "Long", store.SideShort: "Short"}

var simNames = []string{"", "", "", "whalewatch", "degen.eth", "", "basis_king", "", "hlp-maxi", ""}

// SimulatedConfig configures the simulated provider.
type SimulatedConfig struct {
	Seed int64
	// Latency is the mean delay of every call; actual delays vary by +-50%
	Latency time.Duration
	// FailureRate is the probability (0-1) that a call fails
	FailureRate float64
	// Traders is the size of the generated leaderboard
	Traders int
}

// Simulated generates a deterministic leaderboard and drifting positions
// from a seed. It never touches the network.
type Simulated struct {
	cfg SimulatedConfig

	mu        sync.Mutex
	rng       *rand.Rand
	traders   []store.Trader
	positions map[string][]store.Position // lower(address) -> open positions
	tracker   *positionTracker
	now       func() time.Time
}

// NewSimulated creates a simulated provider and its leaderboard.
func NewSimulated(cfg SimulatedConfig) *Simulated {
	if cfg.Traders <= 0 {
		cfg.Traders = 150
	}
	s := &Simulated{
		cfg:       cfg,
		rng:       rand.New(rand.NewSource(cfg.Seed)),
		positions: make(map[string][]store.Position),
		tracker:   newPositionTracker(),
		now:       time.Now,
	}
	s.traders = s.generateTraders(cfg.Traders)
	return s
}

// Leaderboard returns the generated traders ordered by all-time PnL.
func (s *Simulated) Leaderboard(ctx context.Context, limit int) ([]store.Trader, error) {
	if err := s.call(ctx, "leaderboard"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.traders)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]store.Trader, n)
	copy(out, s.traders[:n])
	return out, nil
}

// Whales returns generated traders with at least minBalance of equity.
func (s *Simulated) Whales(ctx context.Context, minBalance float64) ([]store.Whale, error) {
	if err := s.call(ctx, "whales"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	whales := derive.WhalesFromTraders(s.traders, minBalance)
	for i := range whales {
		whales[i].OpenPositions = len(s.openPositions(whales[i].Address))
	}
	return whales, nil
}

// UserTrades generates a fresh batch of fills for address.
func (s *Simulated) UserTrades(ctx context.Context, address string) (store.TradeStats, error) {
	if err := s.call(ctx, "user_trades"); err != nil {
		return store.TradeStats{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 5 + s.rng.Intn(40)
	now := s.now().UTC()
	fills := make([]store.Fill, 0, n)
	for i := 0; i < n; i++ {
		c := simCoins[s.rng.Intn(len(simCoins))]
		side := store.SideLong
		if s.rng.Intn(2) == 0 {
			side = store.SideShort
		}
		action := "Open"
		var closed float64
		if s.rng.Float64() < 0.6 {
			action = "Close"
			closed = round2(s.rng.NormFloat64() * 800)
		}
		price := c.Price * (1 + s.rng.NormFloat64()*0.02)
		size := (500 + s.rng.Float64()*20000) / price
		fills = append(fills, store.Fill{
			Address:   address,
			Coin:      c.Coin,
			Side:      side,
			Direction: action + " " + directionLabel[side],
			Price:     price,
			Size:      size,
			ClosedPnL: closed,
			Fee:       round2(price * size * 0.00035),
			Hash:      s.hex(32),
			Time:      now.Add(-time.Duration(s.rng.Int63n(int64(72 * time.Hour)))),
		})
	}
	return derive.SummarizeFills(address, fills), nil
}

// UserPositions returns the current simulated positions of address.
func (s *Simulated) UserPositions(ctx context.Context, address string) ([]store.Position, error) {
	if err := s.call(ctx, "user_positions"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	open := s.openPositions(address)
	out := make([]store.Position, len(open))
	copy(out, open)
	return out, nil
}

// LivePositions advances every address by one step (prices move, some
// positions close, new ones open) and reports the result.
func (s *Simulated) LivePositions(ctx context.Context, addresses []string) ([]store.LivePosition, error) {
	if err := s.call(ctx, "live_positions"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []store.LivePosition
	for _, address := range addresses {
		s.step(address)
		out = append(out, s.tracker.update(address, s.openPositions(address))...)
	}
	return out, nil
}

// call simulates latency and failures. It returns ctx.Err() if ctx ends first.
func (s *Simulated) call(ctx context.Context, op string) error {
	s.mu.Lock()
	delay := time.Duration(0)
	if s.cfg.Latency > 0 {
		delay = time.Duration(float64(s.cfg.Latency) * (0.5 + s.rng.Float64()))
	}
	fail := s.cfg.FailureRate > 0 && s.rng.Float64() < s.cfg.FailureRate
	s.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	if fail {
		return fmt.Errorf("simulated %s: %w: 503 service unavailable", op, ErrUnexpectedStatus)
	}
	return nil
}

// openPositions returns the positions of address, creating them on first use.
// Callers hold s.mu.
func (s *Simulated) openPositions(address string) []store.Position {
	key := strings.ToLower(address)
	if positions, ok := s.positions[key]; ok {
		return positions
	}
	n := s.rng.Intn(5)
	positions := make([]store.Position, 0, n)
	used := make(map[string]bool)
	for len(positions) < n {
		p := s.newPosition(used)
		positions = append(positions, p)
	}
	s.positions[key] = positions
	return positions
}

// step moves prices, closes roughly one in seven positions and sometimes
// opens a new one. Callers hold s.mu.
func (s *Simulated) step(address string) {
	key := strings.ToLower(address)
	current := s.openPositions(address)
	next := make([]store.Position, 0, len(current)+1)
	used := make(map[string]bool)

	for _, p := range current {
		if s.rng.Float64() < 0.15 {
			continue
		}
		mark := p.MarkPrice() * (1 + s.rng.NormFloat64()*0.01)
		p.PositionValue = mark * p.Size
		if p.Side == store.SideLong {
			p.UnrealizedPnL = (mark - p.EntryPrice) * p.Size
		} else {
			p.UnrealizedPnL = (p.EntryPrice - mark) * p.Size
		}
		if p.MarginUsed > 0 {
			p.ReturnOnEquity = p.UnrealizedPnL / p.MarginUsed
		}
		next = append(next, p)
		used[p.Coin] = true
	}
	if len(next) < len(simCoins) && s.rng.Float64() < 0.2 {
		next = append(next, s.newPosition(used))
	}
	s.positions[key] = next
}

// newPosition opens a position on a coin not in used and marks it used.
func (s *Simulated) newPosition(used map[string]bool) store.Position {
	c := simCoins[s.rng.Intn(len(simCoins))]
	for used[c.Coin] {
		c = simCoins[s.rng.Intn(len(simCoins))]
	}
	used[c.Coin] = true

	side := store.SideLong
	if s.rng.Intn(2) == 0 {
		side = store.SideShort
	}
	leverage := 1 + s.rng.Intn(25)
	entry := c.Price * (1 + s.rng.NormFloat64()*0.03)
	notional := 10_000 + s.rng.Float64()*2_000_000
	size := notional / entry
	mark := c.Price
	upnl := (mark - entry) * size
	liq := entry * (1 - 1/float64(leverage))
	if side == store.SideShort {
		upnl = -upnl
		liq = entry * (1 + 1/float64(leverage))
	}
	margin := mark * size / float64(leverage)
	return store.Position{
		Coin:             c.Coin,
		Side:             side,
		Size:             size,
		EntryPrice:       entry,
		PositionValue:    mark * size,
		UnrealizedPnL:    upnl,
		ReturnOnEquity:   upnl / margin,
		Leverage:         leverage,
		LiquidationPrice: liq,
		MarginUsed:       margin,
	}
}

func (s *Simulated) generateTraders(n int) []store.Trader {
	traders := make([]store.Trader, 0, n)
	for i := 0; i < n; i++ {
		// Account values follow a heavy tail so a handful clear the whale bar
		value := round2(math.Exp(9 + s.rng.Float64()*8))
		t := store.Trader{
			Address:      "0x" + s.hex(20),
			DisplayName:  simNames[s.rng.Intn(len(simNames))],
			AccountValue: value,
			TotalTrades:  20 + s.rng.Intn(3000),
			WinRate:      round2(35 + s.rng.Float64()*35),
			Windows:      make(map[string]store.Performance, len(store.Windows)),
		}
		scale := 1.0
		for _, w := range store.Windows {
			switch w {
			case store.WindowDay:
				scale = 0.02
			case store.WindowWeek:
				scale = 0.1
			case store.WindowMonth:
				scale = 0.35
			case store.WindowAllTime:
				scale = 1
			}
			pnl := round2(value * scale * s.rng.NormFloat64() * 0.6)
			t.Windows[w] = store.Performance{
				PnL:    pnl,
				ROI:    pnl / value,
				Volume: round2(value * scale * (2 + s.rng.Float64()*40)),
			}
		}
		all := t.Windows[store.WindowAllTime]
		t.PnL, t.ROI, t.Volume = all.PnL, all.ROI, all.Volume
		traders = append(traders, t)
	}

	traders = derive.Leaderboard(traders, derive.LeaderboardParams{
		Window: store.WindowAllTime,
		SortBy: derive.SortPnL,
	})
	for i := range traders {
		traders[i].Rank = i + 1
	}
	return traders
}

func (s *Simulated) hex(n int) string {
	b := make([]byte, n)
	s.rng.Read(b)
	return hex.EncodeToString(b)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
