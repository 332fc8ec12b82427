// Package watchlist loads the wallets tracked by the statistics and live views.
package watchlist

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

// Entry is one tracked wallet.
type Entry struct {
	Address string `yaml:"address"`
	Label   string `yaml:"label"`
}

// Watchlist is an ordered, de-duplicated set of wallets.
type Watchlist struct {
	Wallets []Entry `yaml:"wallets"`
}

// Load reads a YAML watchlist such as
//
//	wallets:
//	  - address: 0x...
//	    label: fund A
//
// A missing file yields an empty watchlist. Entries that are not valid hex
// addresses, or repeat an earlier address, are skipped with a warning.
func Load(path string) (*Watchlist, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Info("watchlist_not_found", "path", path)
		return &Watchlist{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read watchlist %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML watchlist.
func Parse(data []byte) (*Watchlist, error) {
	var raw Watchlist
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal watchlist: %w", err)
	}

	wl := &Watchlist{}
	seen := make(map[string]bool)
	for _, e := range raw.Wallets {
		e.Address = strings.TrimSpace(e.Address)
		if !common.IsHexAddress(e.Address) {
			slog.Warn("watchlist_invalid_address", "address", e.Address, "label", e.Label)
			continue
		}
		key := strings.ToLower(e.Address)
		if seen[key] {
			slog.Warn("watchlist_duplicate_address", "address", e.Address)
			continue
		}
		seen[key] = true
		wl.Wallets = append(wl.Wallets, e)
	}
	return wl, nil
}

// Len returns the number of wallets.
func (w *Watchlist) Len() int {
	if w == nil {
		return 0
	}
	return len(w.Wallets)
}

// Addresses returns the wallet addresses in file order.
func (w *Watchlist) Addresses() []string {
	if w == nil {
		return nil
	}
	out := make([]string, len(w.Wallets))
	for i, e := range w.Wallets {
		out[i] = e.Address
	}
	return out
}

// Label returns the label of address, ignoring case, or "".
func (w *Watchlist) Label(address string) string {
	if w == nil {
		return ""
	}
	for _, e := range w.Wallets {
		if strings.EqualFold(e.Address, address) {
			return e.Label
		}
	}
	return ""
}
