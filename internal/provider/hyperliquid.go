package provider

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/hyperinsider/dashboard/internal/derive"
	"github.com/hyperinsider/dashboard/internal/store"
)

const (
	// DefaultAPIURL is the Hyperliquid REST endpoint
	DefaultAPIURL = "https://api.hyperliquid.xyz"
	// DefaultLeaderboardURL is the Hyperliquid stats leaderboard endpoint
	DefaultLeaderboardURL = "https://stats-data.hyperliquid.xyz/Mainnet/leaderboard"

	leaderboardCacheKey = "leaderboard"
	maxErrorBody        = 512
)

// HyperliquidConfig configures a Hyperliquid provider.
type HyperliquidConfig struct {
	APIURL         string
	LeaderboardURL string
	// APIKey is sent as a bearer token when set, for authenticating proxies
	APIKey string

	Timeout   time.Duration
	RateLimit float64 // requests per second
	RateBurst int
	// CacheTTL bounds the age of cached leaderboard and fill responses;
	// zero disables caching
	CacheTTL time.Duration
	// Concurrency caps parallel requests in LivePositions
	Concurrency int
}

// Hyperliquid reads trader data from the public Hyperliquid API.
type Hyperliquid struct {
	apiURL         string
	leaderboardURL string
	apiKey         string

	client      *http.Client
	limiter     *rate.Limiter
	cache       *cache.Cache
	tracker     *positionTracker
	concurrency int

	// fetchMu serializes leaderboard downloads so concurrent views share one
	fetchMu sync.Mutex
}

// NewHyperliquid validates the endpoints and creates a provider.
func NewHyperliquid(cfg HyperliquidConfig) (*Hyperliquid, error) {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.LeaderboardURL == "" {
		cfg.LeaderboardURL = DefaultLeaderboardURL
	}
	apiURL, err := normalizeURL(cfg.APIURL)
	if err != nil {
		return nil, err
	}
	leaderboardURL, err := normalizeURL(cfg.LeaderboardURL)
	if err != nil {
		return nil, err
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 1
	}
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}

	h := &Hyperliquid{
		apiURL:         apiURL,
		leaderboardURL: leaderboardURL,
		apiKey:         cfg.APIKey,
		client:         &http.Client{Timeout: cfg.Timeout},
		limiter:        rate.NewLimiter(limit, cfg.RateBurst),
		tracker:        newPositionTracker(),
		concurrency:    cfg.Concurrency,
	}
	if cfg.CacheTTL > 0 {
		h.cache = cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	}
	return h, nil
}

func normalizeURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid URL: %q", raw)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	return u.String(), nil
}

// Leaderboard returns the top traders by all-time PnL.
func (h *Hyperliquid) Leaderboard(ctx context.Context, limit int) ([]store.Trader, error) {
	traders, err := h.leaderboard(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(traders) > limit {
		traders = traders[:limit]
	}
	out := make([]store.Trader, len(traders))
	copy(out, traders)
	return out, nil
}

// Whales returns leaderboard accounts with at least minBalance of equity.
func (h *Hyperliquid) Whales(ctx context.Context, minBalance float64) ([]store.Whale, error) {
	traders, err := h.leaderboard(ctx)
	if err != nil {
		return nil, err
	}
	return derive.WhalesFromTraders(traders, minBalance), nil
}

// leaderboard downloads, ranks and caches the full leaderboard.
func (h *Hyperliquid) leaderboard(ctx context.Context) ([]store.Trader, error) {
	h.fetchMu.Lock()
	defer h.fetchMu.Unlock()

	if h.cache != nil {
		if cached, ok := h.cache.Get(leaderboardCacheKey); ok {
			return cached.([]store.Trader), nil
		}
	}

	var raw leaderboardResponse
	if err := h.get(ctx, h.leaderboardURL, &raw); err != nil {
		return nil, fmt.Errorf("fetch leaderboard: %w", err)
	}

	traders := make([]store.Trader, 0, len(raw.LeaderboardRows))
	for _, row := range raw.LeaderboardRows {
		if row.EthAddress == "" {
			continue
		}
		traders = append(traders, convertTrader(row))
	}
	traders = derive.Leaderboard(traders, derive.LeaderboardParams{
		Window: store.WindowAllTime,
		SortBy: derive.SortPnL,
	})
	for i := range traders {
		traders[i].Rank = i + 1
	}

	slog.Debug("leaderboard_fetched", "rows", len(traders))
	if h.cache != nil {
		h.cache.Set(leaderboardCacheKey, traders, cache.DefaultExpiration)
	}
	return traders, nil
}

// UserTrades summarizes the recent fills of address.
func (h *Hyperliquid) UserTrades(ctx context.Context, address string) (store.TradeStats, error) {
	key := "fills:" + strings.ToLower(address)
	if h.cache != nil {
		if cached, ok := h.cache.Get(key); ok {
			return cached.(store.TradeStats), nil
		}
	}

	var raw []userFill
	if err := h.info(ctx, "userFills", address, &raw); err != nil {
		return store.TradeStats{}, fmt.Errorf("fetch fills for %s: %w", address, err)
	}

	fills := make([]store.Fill, 0, len(raw))
	for _, f := range raw {
		fills = append(fills, convertFill(address, f))
	}
	stats := derive.SummarizeFills(address, fills)

	if h.cache != nil {
		h.cache.Set(key, stats, cache.DefaultExpiration)
	}
	return stats, nil
}

// UserPositions returns the open perpetual positions of address.
func (h *Hyperliquid) UserPositions(ctx context.Context, address string) ([]store.Position, error) {
	var state clearinghouseState
	if err := h.info(ctx, "clearinghouseState", address, &state); err != nil {
		return nil, fmt.Errorf("fetch positions for %s: %w", address, err)
	}

	positions := make([]store.Position, 0, len(state.AssetPositions))
	for _, ap := range state.AssetPositions {
		positions = append(positions, convertPosition(ap.Position))
	}
	return positions, nil
}

// LivePositions polls every address concurrently. A failing address is
// logged and skipped; an error is returned only when every address failed.
func (h *Hyperliquid) LivePositions(ctx context.Context, addresses []string) ([]store.LivePosition, error) {
	if len(addresses) == 0 {
		return nil, nil
	}

	results := make([][]store.Position, len(addresses))
	ok := make([]bool, len(addresses))
	var (
		mu       sync.Mutex
		failed   int
		firstErr error
	)

	var g errgroup.Group
	g.SetLimit(h.concurrency)
	for i, address := range addresses {
		i, address := i, address
		g.Go(func() error {
			positions, err := h.UserPositions(ctx, address)
			if err != nil {
				slog.Warn("live_positions_fetch_failed", "address", address, "error", err)
				mu.Lock()
				failed++
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return nil
			}
			results[i] = positions
			ok[i] = true
			return nil
		})
	}
	g.Wait() // failures are collected above, never returned

	if failed == len(addresses) {
		return nil, fmt.Errorf("all %d position requests failed: %w", failed, firstErr)
	}

	var out []store.LivePosition
	for i, address := range addresses {
		if ok[i] {
			out = append(out, h.tracker.update(address, results[i])...)
		}
	}
	slog.Debug("live_positions_fetched", "wallets", len(addresses), "failed", failed, "positions", len(out))
	return out, nil
}

// info posts an info request for user and decodes the response into result.
func (h *Hyperliquid) info(ctx context.Context, requestType, user string, result interface{}) error {
	body, err := json.Marshal(map[string]string{"type": requestType, "user": user})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.apiURL+"/info", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return h.do(req, result)
}

func (h *Hyperliquid) get(ctx context.Context, endpoint string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return h.do(req, result)
}

// do waits for the rate limiter, executes req and decodes a 200 response.
// Other statuses map onto the package's sentinel errors.
func (h *Hyperliquid) do(req *http.Request, result interface{}) error {
	if err := h.limiter.Wait(req.Context()); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	if h.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", req.URL.Path, ErrNotFound)
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: %d %s", ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("decode failed: empty body")
		}
		return fmt.Errorf("decode failed: %w", err)
	}
	return nil
}
