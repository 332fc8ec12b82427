package provider

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hyperinsider/dashboard/internal/store"
)

// positionTracker remembers the positions seen at the previous poll of each
// wallet so that vanished positions can be reported as closed.
type positionTracker struct {
	mu   sync.Mutex
	last map[string]map[string]store.Position // lower(address) -> coin -> position
	now  func() time.Time
}

func newPositionTracker() *positionTracker {
	return &positionTracker{
		last: make(map[string]map[string]store.Position),
		now:  time.Now,
	}
}

// update records the current positions of address and returns them as open
// live positions, followed by the positions that were open at the previous
// poll but are gone now, marked closed.
func (t *positionTracker) update(address string, positions []store.Position) []store.LivePosition {
	key := strings.ToLower(address)
	now := t.now()

	t.mu.Lock()
	prev := t.last[key]
	current := make(map[string]store.Position, len(positions))
	for _, p := range positions {
		current[p.Coin] = p
	}
	t.last[key] = current
	t.mu.Unlock()

	out := make([]store.LivePosition, 0, len(positions)+len(prev))
	for _, p := range positions {
		out = append(out, store.LivePosition{
			Address:   address,
			Position:  p,
			Status:    store.StatusOpen,
			UpdatedAt: now,
		})
	}

	var gone []string
	for coin := range prev {
		if _, ok := current[coin]; !ok {
			gone = append(gone, coin)
		}
	}
	sort.Strings(gone)
	for _, coin := range gone {
		out = append(out, store.LivePosition{
			Address:   address,
			Position:  prev[coin],
			Status:    store.StatusClosed,
			UpdatedAt: now,
		})
	}
	return out
}
