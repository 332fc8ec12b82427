// Package wallets collects the wallets selected across all views and exports them.
package wallets

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hyperinsider/dashboard/internal/store"
)

// Aggregator is the cross-view list of distinct selected wallets.
// It is passed explicitly to every view; there is no package-level instance.
type Aggregator struct {
	mu      sync.Mutex
	entries []store.SelectedWallet
	sink    Sink
	now     func() time.Time

	// OnExport is called after a file has been emitted
	OnExport func(format Format, filename string, count int)
}

// NewAggregator creates an empty Aggregator that delivers exports to sink.
func NewAggregator(sink Sink) *Aggregator {
	return &Aggregator{
		sink: sink,
		now:  time.Now,
	}
}

// Add appends address unless an entry with the same address (ignoring case)
// exists. The first occurrence keeps its casing and source label.
func (a *Aggregator) Add(address, source string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, e := range a.entries {
		if store.SameAddress(e.Address, address) {
			return false
		}
	}
	a.entries = append(a.entries, store.SelectedWallet{Address: address, Source: source})
	slog.Debug("wallet_added", "address", address, "source", source, "total", len(a.entries))
	return true
}

// Remove deletes every entry matching address, ignoring case, and reports
// whether any was present.
func (a *Aggregator) Remove(address string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	kept := a.entries[:0]
	for _, e := range a.entries {
		if !store.SameAddress(e.Address, address) {
			kept = append(kept, e)
		}
	}
	removed := len(kept) < len(a.entries)
	a.entries = kept
	return removed
}

// Clear empties the collection.
func (a *Aggregator) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = nil
}

// Len returns the number of distinct wallets.
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.entries)
}

// Entries returns a copy of the collection in insertion order.
func (a *Aggregator) Entries() []store.SelectedWallet {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]store.SelectedWallet, len(a.entries))
	copy(out, a.entries)
	return out
}

// Export serializes the collection and hands it to the sink as a named,
// timestamped file. It does nothing and returns an empty filename when the
// collection is empty. Export panics on a format that ParseFormat rejects.
func (a *Aggregator) Export(format Format) (string, error) {
	entries := a.Entries()
	if len(entries) == 0 {
		return "", nil
	}

	now := a.now()
	data, err := encode(format, entries, now)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", format, err)
	}

	name := Filename(format, now)
	if err := a.sink.Save(name, data); err != nil {
		return "", fmt.Errorf("save %s: %w", name, err)
	}

	slog.Info("wallets_exported", "file", name, "format", string(format), "count", len(entries))
	if a.OnExport != nil {
		a.OnExport(format, name, len(entries))
	}
	return name, nil
}
