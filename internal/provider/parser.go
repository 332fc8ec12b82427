package provider

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/hyperinsider/dashboard/internal/store"
)

// leaderboardResponse is the body of the stats leaderboard endpoint.
type leaderboardResponse struct {
	LeaderboardRows []leaderboardRow `json:"leaderboardRows"`
}

type leaderboardRow struct {
	EthAddress   string `json:"ethAddress"`
	AccountValue string `json:"accountValue"`
	// WindowPerformances is a list of [name, {pnl, roi, vlm}] pairs
	WindowPerformances [][]interface{} `json:"windowPerformances"`
	Prize              int64           `json:"prize"`
	DisplayName        *string         `json:"displayName"`
}

// userFill is one entry of the userFills info response.
type userFill struct {
	ClosedPnl string `json:"closedPnl"`
	Coin      string `json:"coin"`
	Dir       string `json:"dir"`
	Hash      string `json:"hash"`
	Px        string `json:"px"`
	Side      string `json:"side"`
	Sz        string `json:"sz"`
	Time      int64  `json:"time"` // Unix milliseconds
	Fee       string `json:"fee"`
}

// clearinghouseState is the subset of the clearinghouseState response we use.
type clearinghouseState struct {
	AssetPositions []struct {
		Position assetPosition `json:"position"`
		Type     string        `json:"type"`
	} `json:"assetPositions"`
	MarginSummary struct {
		AccountValue string `json:"accountValue"`
	} `json:"marginSummary"`
	Time int64 `json:"time"`
}

type assetPosition struct {
	Coin     string `json:"coin"`
	EntryPx  string `json:"entryPx"`
	Leverage struct {
		Type  string `json:"type"`
		Value int    `json:"value"`
	} `json:"leverage"`
	LiquidationPx  *string `json:"liquidationPx"`
	MarginUsed     string  `json:"marginUsed"`
	PositionValue  string  `json:"positionValue"`
	ReturnOnEquity string  `json:"returnOnEquity"`
	Szi            string  `json:"szi"`
	UnrealizedPnl  string  `json:"unrealizedPnl"`
}

// parseFloat parses a decimal string, returning 0 when empty, invalid or
// not finite.
func parseFloat(s string) float64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return finite(f)
}

// finite maps NaN and infinities to 0.
func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// convertTrader turns a raw leaderboard row into a Trader. The all-time
// window supplies the headline PnL, ROI and volume.
func convertTrader(row leaderboardRow) store.Trader {
	t := store.Trader{
		Address:      row.EthAddress,
		AccountValue: parseFloat(row.AccountValue),
		Windows:      make(map[string]store.Performance, len(row.WindowPerformances)),
	}
	if row.DisplayName != nil {
		t.DisplayName = *row.DisplayName
	}

	for _, pair := range row.WindowPerformances {
		if len(pair) != 2 {
			continue
		}
		name := cast.ToString(pair[0])
		values := cast.ToStringMap(pair[1])
		if name == "" || values == nil {
			continue
		}
		t.Windows[name] = store.Performance{
			PnL:    finite(cast.ToFloat64(values["pnl"])),
			ROI:    finite(cast.ToFloat64(values["roi"])),
			Volume: finite(cast.ToFloat64(values["vlm"])),
		}
	}

	if all, ok := t.Windows[store.WindowAllTime]; ok {
		t.PnL, t.ROI, t.Volume = all.PnL, all.ROI, all.Volume
	}
	return t
}

// fillSide maps a fill to the side of the position it affects. The direction
// ("Open Long", "Close Short", "Long > Short") wins over the raw book side.
func fillSide(dir, side string) string {
	switch {
	case strings.HasSuffix(dir, "Long"):
		return store.SideLong
	case strings.HasSuffix(dir, "Short"):
		return store.SideShort
	case side == "A":
		return store.SideShort
	}
	return store.SideLong
}

func convertFill(address string, f userFill) store.Fill {
	return store.Fill{
		Address:   address,
		Coin:      f.Coin,
		Side:      fillSide(f.Dir, f.Side),
		Direction: f.Dir,
		Price:     parseFloat(f.Px),
		Size:      parseFloat(f.Sz),
		ClosedPnL: parseFloat(f.ClosedPnl),
		Fee:       parseFloat(f.Fee),
		Hash:      f.Hash,
		Time:      time.UnixMilli(f.Time).UTC(),
	}
}

// convertPosition turns an asset position into a Position. The signed size
// gives the side; Size is always positive.
func convertPosition(p assetPosition) store.Position {
	szi := parseFloat(p.Szi)
	side := store.SideLong
	if szi < 0 {
		side = store.SideShort
	}

	pos := store.Position{
		Coin:           p.Coin,
		Side:           side,
		Size:           math.Abs(szi),
		EntryPrice:     parseFloat(p.EntryPx),
		PositionValue:  parseFloat(p.PositionValue),
		UnrealizedPnL:  parseFloat(p.UnrealizedPnl),
		ReturnOnEquity: parseFloat(p.ReturnOnEquity),
		Leverage:       p.Leverage.Value,
		MarginUsed:     parseFloat(p.MarginUsed),
	}
	if p.LiquidationPx != nil {
		pos.LiquidationPrice = parseFloat(*p.LiquidationPx)
	}
	return pos
}
