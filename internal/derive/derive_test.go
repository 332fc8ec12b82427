package derive

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/hyperinsider/dashboard/internal/store"
)

func ptr(f float64) *float64 { return &f }

func addressesOf[T any](rows []T, addr func(T) string) []string {
	return Addresses(rows, addr)
}

func traderAddr(t store.Trader) string { return t.Address }

func TestLeaderboard(t *testing.T) {
	traders := []store.Trader{
		{Address: "0xA", PnL: 100, Volume: 5000, AccountValue: 10, Windows: map[string]store.Performance{
			store.WindowDay: {PnL: -5, Volume: 10},
		}},
		{Address: "0xB", PnL: 300, Volume: 1000, AccountValue: 30, Windows: map[string]store.Performance{
			store.WindowDay: {PnL: 50, Volume: 20},
		}},
		{Address: "0xC", PnL: -50, Volume: 9000, AccountValue: 20},
		{Address: "0xD", PnL: 300, Volume: 10, AccountValue: 5},
	}

	tests := []struct {
		name string
		p    LeaderboardParams
		want []string
	}{
		{"pnl desc stable", LeaderboardParams{SortBy: SortPnL}, []string{"0xB", "0xD", "0xA", "0xC"}},
		{"volume desc", LeaderboardParams{SortBy: SortVolume}, []string{"0xC", "0xA", "0xB", "0xD"}},
		{"balance desc", LeaderboardParams{SortBy: SortBalance}, []string{"0xB", "0xC", "0xA", "0xD"}},
		{"min pnl", LeaderboardParams{SortBy: SortPnL, MinPnL: ptr(100)}, []string{"0xB", "0xD", "0xA"}},
		{"min pnl zero keeps break-even", LeaderboardParams{SortBy: SortPnL, MinPnL: ptr(0)}, []string{"0xB", "0xD", "0xA"}},
		{"limit", LeaderboardParams{SortBy: SortPnL, Limit: 2}, []string{"0xB", "0xD"}},
		// 0xC and 0xD have no day window and fall back to all-time
		{"day window", LeaderboardParams{Window: store.WindowDay, SortBy: SortPnL}, []string{"0xD", "0xB", "0xA", "0xC"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := addressesOf(Leaderboard(traders, tt.p), traderAddr)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Leaderboard(%+v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}

	if traders[0].Address != "0xA" {
		t.Error("Leaderboard modified its input")
	}
}

func TestWhales(t *testing.T) {
	whales := []store.Whale{
		{Address: "0x1", Balance: 2_000_000, PnL: 10},
		{Address: "0x2", Balance: 500_000, PnL: 99},
		{Address: "0x3", Balance: 5_000_000, PnL: -1},
	}

	got := Addresses(Whales(whales, WhaleParams{MinBalance: 1_000_000, SortBy: SortBalance}),
		func(w store.Whale) string { return w.Address })
	if want := []string{"0x3", "0x1"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Whales by balance = %v, want %v", got, want)
	}

	got = Addresses(Whales(whales, WhaleParams{SortBy: SortPnL, Limit: 1}),
		func(w store.Whale) string { return w.Address })
	if want := []string{"0x2"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Whales by pnl = %v, want %v", got, want)
	}
}

func TestWhalesFromTraders(t *testing.T) {
	traders := []store.Trader{
		{Address: "0xsmall", AccountValue: 10},
		{Address: "0xbig", AccountValue: 3e6, PnL: 7},
		{Address: "0xmid", AccountValue: 1e6},
	}
	whales := WhalesFromTraders(traders, 1e6)
	if len(whales) != 2 || whales[0].Address != "0xbig" || whales[1].Address != "0xmid" {
		t.Fatalf("WhalesFromTraders = %+v", whales)
	}
	if whales[0].Balance != 3e6 || whales[0].PnL != 7 {
		t.Errorf("whale fields not carried: %+v", whales[0])
	}
}

func TestSummarizeFills(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	fills := []store.Fill{
		{Coin: "BTC", Side: store.SideLong, Price: 100, Size: 2, ClosedPnL: 0, Fee: 0.1, Time: t0},
		{Coin: "BTC", Side: store.SideLong, Price: 110, Size: 2, ClosedPnL: 20, Fee: 0.1, Time: t0.Add(time.Hour)},
		{Coin: "ETH", Side: store.SideShort, Price: 10, Size: 1, ClosedPnL: -5, Fee: 0.1, Time: t0.Add(30 * time.Minute)},
		{Coin: "ETH", Side: store.SideShort, Price: 10, Size: 1, ClosedPnL: 15, Fee: 0.1, Time: t0},
	}

	st := SummarizeFills("0xW", fills)
	if st.TotalTrades != 4 || st.WinningTrades != 2 || st.LosingTrades != 1 {
		t.Errorf("counts = %d/%d/%d, want 4/2/1", st.TotalTrades, st.WinningTrades, st.LosingTrades)
	}
	if math.Abs(st.WinRate-200.0/3) > 1e-9 {
		t.Errorf("WinRate = %v, want 66.67", st.WinRate)
	}
	if st.TotalPnL != 30 {
		t.Errorf("TotalPnL = %v, want 30", st.TotalPnL)
	}
	if st.Volume != 440 {
		t.Errorf("Volume = %v, want 440", st.Volume)
	}
	if st.Fees != 0.4 {
		t.Errorf("Fees = %v, want 0.4 exactly", st.Fees)
	}
	if st.LargestWin != 20 || st.LargestLoss != -5 {
		t.Errorf("LargestWin/Loss = %v/%v, want 20/-5", st.LargestWin, st.LargestLoss)
	}
	if !st.LastTrade.Equal(t0.Add(time.Hour)) {
		t.Errorf("LastTrade = %v", st.LastTrade)
	}

	empty := SummarizeFills("0xE", nil)
	if empty.TotalTrades != 0 || empty.WinRate != 0 {
		t.Errorf("empty summary = %+v", empty)
	}
}

func TestGroupFills(t *testing.T) {
	fills := []store.Fill{
		{Address: "0xAbc", ClosedPnL: 10},
		{Address: "0xdef", ClosedPnL: -1},
		{Address: "0xABC", ClosedPnL: 5},
	}
	groups := GroupFills(fills)
	if len(groups) != 2 {
		t.Fatalf("len(groups) = %d, want 2", len(groups))
	}
	if groups[0].Address != "0xAbc" || groups[0].TotalTrades != 2 || groups[0].TotalPnL != 15 {
		t.Errorf("group[0] = %+v", groups[0])
	}
	if groups[1].Address != "0xdef" || groups[1].LosingTrades != 1 {
		t.Errorf("group[1] = %+v", groups[1])
	}
}

func TestStats(t *testing.T) {
	stats := []store.TradeStats{
		SummarizeFills("0x1", []store.Fill{
			{Coin: "BTC", Side: store.SideLong, ClosedPnL: 50, Price: 1, Size: 1},
			{Coin: "ETH", Side: store.SideShort, ClosedPnL: -10, Price: 1, Size: 1},
		}),
		SummarizeFills("0x2", []store.Fill{
			{Coin: "ETH", Side: store.SideLong, ClosedPnL: 100, Price: 1, Size: 1},
		}),
		SummarizeFills("0x3", nil),
	}

	rows := Stats(stats, StatsParams{SortBy: SortPnL})
	if got := Addresses(rows, func(s store.TradeStats) string { return s.Address }); !reflect.DeepEqual(got, []string{"0x2", "0x1", "0x3"}) {
		t.Errorf("Stats by pnl = %v", got)
	}

	rows = Stats(stats, StatsParams{Coin: "eth", SortBy: SortPnL})
	if rows[0].Address != "0x2" || rows[1].Address != "0x3" || rows[2].TotalPnL != -10 {
		t.Errorf("Stats coin=eth = %+v", rows)
	}

	rows = Stats(stats, StatsParams{MinTrades: 1, SortBy: SortTrades})
	if len(rows) != 2 || rows[0].Address != "0x1" {
		t.Errorf("Stats min trades = %+v", rows)
	}

	// Provider summaries without fills pass through untouched
	summaryOnly := []store.TradeStats{{Address: "0x9", TotalTrades: 12, TotalPnL: 3}}
	rows = Stats(summaryOnly, StatsParams{SortBy: SortPnL})
	if len(rows) != 1 || rows[0].TotalTrades != 12 {
		t.Errorf("summary-only Stats = %+v", rows)
	}
}

func TestTotals(t *testing.T) {
	rows := []store.TradeStats{
		{TotalTrades: 3, WinningTrades: 2, LosingTrades: 1, TotalPnL: 0.1, Volume: 10},
		{TotalTrades: 1, WinningTrades: 0, LosingTrades: 1, TotalPnL: 0.2, Volume: 5},
	}
	tot := Totals(rows)
	if tot.Wallets != 2 || tot.Trades != 4 || tot.Wins != 2 || tot.Losses != 2 {
		t.Errorf("Totals counts = %+v", tot)
	}
	if tot.PnL != 0.3 {
		t.Errorf("Totals PnL = %v, want 0.3 exactly", tot.PnL)
	}
	if tot.WinRate != 50 {
		t.Errorf("Totals WinRate = %v, want 50", tot.WinRate)
	}
}

func livePos(addr, coin, side, status string, value, upnl float64, lev int) store.LivePosition {
	return store.LivePosition{
		Address: addr,
		Status:  status,
		Position: store.Position{
			Coin: coin, Side: side, PositionValue: value, UnrealizedPnL: upnl, Leverage: lev,
		},
	}
}

func TestLivePositions(t *testing.T) {
	positions := []store.LivePosition{
		livePos("0x1", "BTC", store.SideLong, store.StatusOpen, 1000, 50, 5),
		livePos("0x2", "ETH", store.SideShort, store.StatusOpen, 3000, -20, 10),
		livePos("0x1", "SOL", store.SideShort, store.StatusClosed, 500, 0, 3),
		livePos("0x3", "BTC", store.SideLong, store.StatusOpen, 2000, 80, 20),
	}
	coins := func(rows []store.LivePosition) []string {
		return Addresses(rows, func(lp store.LivePosition) string { return lp.Coin + "/" + lp.Address })
	}

	tests := []struct {
		name string
		p    LiveParams
		want []string
	}{
		{"value desc", LiveParams{SortBy: SortPositionValue}, []string{"ETH/0x2", "BTC/0x3", "BTC/0x1", "SOL/0x1"}},
		{"upnl desc", LiveParams{SortBy: SortUnrealizedPnL}, []string{"BTC/0x3", "BTC/0x1", "SOL/0x1", "ETH/0x2"}},
		{"open only", LiveParams{Status: store.StatusOpen, SortBy: SortLeverage}, []string{"BTC/0x3", "ETH/0x2", "BTC/0x1"}},
		{"closed only", LiveParams{Status: store.StatusClosed}, []string{"SOL/0x1"}},
		{"shorts", LiveParams{Side: store.SideShort, SortBy: SortPositionValue}, []string{"ETH/0x2", "SOL/0x1"}},
		{"coin btc limit 1", LiveParams{Coin: "btc", SortBy: SortPositionValue, Limit: 1}, []string{"BTC/0x3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := coins(LivePositions(positions, tt.p)); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("LivePositions(%+v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestGroupByWallet(t *testing.T) {
	positions := []store.LivePosition{
		livePos("0xAA", "BTC", store.SideLong, store.StatusOpen, 1000, 50, 5),
		livePos("0xaa", "ETH", store.SideShort, store.StatusOpen, -400, -20, 10),
		livePos("0xAA", "SOL", store.SideLong, store.StatusClosed, 999, 0, 3),
		livePos("0xBB", "BTC", store.SideLong, store.StatusOpen, 5000, 1, 2),
	}

	groups := GroupByWallet(positions)
	if len(groups) != 2 {
		t.Fatalf("len(groups) = %d, want 2", len(groups))
	}
	if groups[0].Address != "0xBB" {
		t.Errorf("largest exposure first, got %s", groups[0].Address)
	}

	aa := groups[1]
	if aa.Address != "0xAA" || aa.Open != 2 || aa.Closed != 1 {
		t.Errorf("0xAA counts = %+v", aa)
	}
	if aa.Long != 1000 || aa.Short != 400 || aa.Net() != 600 || aa.Gross() != 1400 {
		t.Errorf("0xAA notional = %+v", aa)
	}
	if aa.UnrealizedPnL != 30 {
		t.Errorf("0xAA uPnL = %v, want 30", aa.UnrealizedPnL)
	}
}

func TestNext(t *testing.T) {
	if got := Next(LiveSortKeys, SortLeverage); got != SortPositionValue {
		t.Errorf("Next wraps to %v", got)
	}
	if got := Next(LiveSortKeys, SortKey("unknown")); got != LiveSortKeys[0] {
		t.Errorf("Next(unknown) = %v", got)
	}
}
