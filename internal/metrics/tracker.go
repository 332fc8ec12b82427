// Package metrics provides real-time metrics tracking for the dashboard.
package metrics

import (
	"sort"
	"sync"
	"time"
)

// ViewStats holds the fetch statistics of one view.
type ViewStats struct {
	View        string
	Fetches     int64
	Failures    int64
	LastLatency time.Duration
	LastError   string
	LastFetch   time.Time
}

// MetricsSnapshot is a point-in-time view of metrics.
type MetricsSnapshot struct {
	Views         []ViewStats // ordered by view name
	Selections    int64
	Exports       int64
	LastExport    string
	LastExportAt  time.Time
	WalletsPooled int
	Uptime        time.Duration
}

// FailureRate returns the share of failed fetches across all views (0-1).
func (s MetricsSnapshot) FailureRate() float64 {
	var fetches, failures int64
	for _, v := range s.Views {
		fetches += v.Fetches
		failures += v.Failures
	}
	if fetches == 0 {
		return 0
	}
	return float64(failures) / float64(fetches)
}

// MetricsTracker provides thread-safe metrics tracking. Every update is
// mirrored to the Prometheus collectors.
type MetricsTracker struct {
	mu            sync.RWMutex
	views         map[string]*ViewStats
	selections    int64
	exports       int64
	lastExport    string
	lastExportAt  time.Time
	walletsPooled int
	startTime     time.Time
}

// NewMetricsTracker creates a new MetricsTracker.
func NewMetricsTracker() *MetricsTracker {
	return &MetricsTracker{
		views:     make(map[string]*ViewStats),
		startTime: time.Now(),
	}
}

// RecordFetch records the outcome of one view fetch.
func (m *MetricsTracker) RecordFetch(view string, took time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	vs := m.view(view)
	vs.Fetches++
	vs.LastLatency = took
	vs.LastFetch = time.Now()
	if err != nil {
		vs.Failures++
		vs.LastError = err.Error()
		FetchErrorsTotal.WithLabelValues(view).Inc()
	} else {
		vs.LastError = ""
	}

	FetchesTotal.WithLabelValues(view).Inc()
	FetchLatency.WithLabelValues(view).Observe(took.Seconds())
}

// IncrementSelections counts a wallet newly selected in view.
func (m *MetricsTracker) IncrementSelections(view string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selections++
	SelectionsTotal.WithLabelValues(view).Inc()
}

// SetWalletsPooled records the size of the cross-view wallet collection.
func (m *MetricsTracker) SetWalletsPooled(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.walletsPooled = n
	WalletsPooled.Set(float64(n))
}

// RecordExport records an emitted export file.
func (m *MetricsTracker) RecordExport(format, filename string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exports++
	m.lastExport = filename
	m.lastExportAt = time.Now()
	ExportsTotal.WithLabelValues(format).Inc()
	ExportedWallets.Add(float64(count))
}

// view returns the stats of name, creating them. Must be called with lock held.
func (m *MetricsTracker) view(name string) *ViewStats {
	vs, ok := m.views[name]
	if !ok {
		vs = &ViewStats{View: name}
		m.views[name] = vs
	}
	return vs
}

// Snapshot returns a point-in-time snapshot of metrics.
func (m *MetricsTracker) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	views := make([]ViewStats, 0, len(m.views))
	for _, vs := range m.views {
		views = append(views, *vs)
	}
	sort.Slice(views, func(i, j int) bool { return views[i].View < views[j].View })

	return MetricsSnapshot{
		Views:         views,
		Selections:    m.selections,
		Exports:       m.exports,
		LastExport:    m.lastExport,
		LastExportAt:  m.lastExportAt,
		WalletsPooled: m.walletsPooled,
		Uptime:        time.Since(m.startTime),
	}
}
