package wallets

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/hyperinsider/dashboard/internal/store"
)

// Format is an export file format.
type Format string

const (
	FormatTXT  Format = "txt"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Formats lists the supported formats in menu order.
var Formats = []Format{FormatTXT, FormatCSV, FormatJSON}

// isoMillis is the ISO-8601 layout used for the CSV timestamp column.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported export format %q (want txt, csv or json)", s)
}

// Filename returns the download name for an export taken at t.
func Filename(format Format, t time.Time) string {
	ms := t.UnixMilli()
	switch format {
	case FormatTXT:
		return fmt.Sprintf("wallet_addresses_%d.txt", ms)
	case FormatCSV, FormatJSON:
		return fmt.Sprintf("hyperliquid_wallets_%d.%s", ms, format)
	}
	panic(fmt.Sprintf("wallets: unknown export format %q", format))
}

// encode renders entries in the given format; at is the export time.
func encode(format Format, entries []store.SelectedWallet, at time.Time) ([]byte, error) {
	switch format {
	case FormatTXT:
		addrs := make([]string, len(entries))
		for i, e := range entries {
			addrs[i] = e.Address
		}
		return []byte(strings.Join(addrs, "\n")), nil

	case FormatCSV:
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		stamp := at.UTC().Format(isoMillis)
		if err := w.Write([]string{"Address", "Source", "Selected At"}); err != nil {
			return nil, err
		}
		for _, e := range entries {
			if err := w.Write([]string{e.Address, e.Source, stamp}); err != nil {
				return nil, err
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil

	case FormatJSON:
		return json.MarshalIndent(entries, "", "  ")
	}
	panic(fmt.Sprintf("wallets: unknown export format %q", format))
}

// Sink receives exported files.
type Sink interface {
	Save(name string, data []byte) error
}

// DirSink writes exports into a directory, creating it on first use.
type DirSink struct {
	Dir string
}

// Save writes data to Dir/name.
func (d DirSink) Save(name string, data []byte) error {
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	return os.WriteFile(filepath.Join(d.Dir, name), data, 0o644)
}

// Path returns where name is written.
func (d DirSink) Path(name string) string {
	return filepath.Join(d.Dir, name)
}
