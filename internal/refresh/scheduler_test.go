package refresh

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// gatedFetcher returns results pushed on its channel, one per call.
type gatedFetcher struct {
	calls   atomic.Int32
	results chan result
}

type result struct {
	data []string
	err  error
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{results: make(chan result)}
}

func (g *gatedFetcher) fetch(ctx context.Context) ([]string, error) {
	g.calls.Add(1)
	r := <-g.results
	return r.data, r.err
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("fetch did not settle")
	}
}

func TestInitialStateIsLoading(t *testing.T) {
	s := New(context.Background(), "test", func(context.Context) (int, error) { return 1, nil })
	if !s.State().Loading {
		t.Error("new scheduler should start in loading state")
	}
}

func TestActivateLoadingClearedOnSuccess(t *testing.T) {
	g := newGatedFetcher()
	s := New(context.Background(), "test", g.fetch)

	done := s.Activate()
	if !s.State().Loading {
		t.Fatal("Loading should be true synchronously after Activate")
	}
	if !s.Active() {
		t.Error("Active() = false after Activate")
	}

	g.results <- result{data: []string{"0xAA"}}
	waitDone(t, done)

	st := s.State()
	if st.Loading {
		t.Error("Loading still true after fetch settled")
	}
	if st.Err != "" {
		t.Errorf("Err = %q, want empty", st.Err)
	}
	if !st.HasData || len(st.Data) != 1 || st.Data[0] != "0xAA" {
		t.Errorf("Data = %v (HasData %v), want [0xAA]", st.Data, st.HasData)
	}
	if st.LastUpdate.IsZero() {
		t.Error("LastUpdate not stamped on success")
	}
}

func TestFailureKeepsPreviousData(t *testing.T) {
	g := newGatedFetcher()
	s := New(context.Background(), "test", g.fetch)

	done := s.Activate()
	g.results <- result{data: []string{"0xAA", "0xBB"}}
	waitDone(t, done)
	firstUpdate := s.State().LastUpdate

	done = s.Refresh()
	if !s.State().Loading {
		t.Fatal("Loading should be true synchronously after Refresh")
	}
	g.results <- result{err: errors.New("provider unavailable")}
	waitDone(t, done)

	st := s.State()
	if st.Loading {
		t.Error("Loading still true after failed fetch")
	}
	if st.Err != "provider unavailable" {
		t.Errorf("Err = %q, want %q", st.Err, "provider unavailable")
	}
	if len(st.Data) != 2 {
		t.Errorf("Data = %v, want previous two entries", st.Data)
	}
	if !st.LastUpdate.Equal(firstUpdate) {
		t.Error("LastUpdate changed on failure")
	}

	// A later success clears the error
	done = s.Refresh()
	g.results <- result{data: []string{"0xCC"}}
	waitDone(t, done)
	if st := s.State(); st.Err != "" || st.Data[0] != "0xCC" {
		t.Errorf("after recovery state = %+v", st)
	}
}

func TestOverlappingRefreshLastResolutionWins(t *testing.T) {
	slow := make(chan struct{})
	started := make(chan struct{})
	var n atomic.Int32
	s := New(context.Background(), "test", func(ctx context.Context) (string, error) {
		if n.Add(1) == 1 {
			close(started)
			<-slow
			return "stale", nil
		}
		return "fresh", nil
	})

	first := s.Refresh()
	<-started
	second := s.Refresh()
	waitDone(t, second)
	if got := s.State().Data; got != "fresh" {
		t.Fatalf("after quick fetch Data = %q, want fresh", got)
	}

	close(slow)
	waitDone(t, first)
	if got := s.State().Data; got != "stale" {
		t.Errorf("after slow fetch Data = %q, want stale (last resolution wins)", got)
	}
}

func TestFetchPanicBecomesError(t *testing.T) {
	s := New(context.Background(), "test", func(context.Context) (int, error) {
		panic("boom")
	})
	waitDone(t, s.Activate())

	st := s.State()
	if st.Loading || st.Err == "" {
		t.Errorf("state after panic = %+v, want error and not loading", st)
	}
}

func TestOnChangeAndObserve(t *testing.T) {
	var mu sync.Mutex
	var loadingSeen []bool
	var observed []string

	s := New(context.Background(), "leaderboard", func(context.Context) (int, error) { return 7, nil })
	s.OnChange = func(st State[int]) {
		mu.Lock()
		loadingSeen = append(loadingSeen, st.Loading)
		mu.Unlock()
	}
	s.Observe = func(name string, took time.Duration, err error) {
		mu.Lock()
		observed = append(observed, name)
		mu.Unlock()
	}

	waitDone(t, s.Activate())

	mu.Lock()
	defer mu.Unlock()
	if len(loadingSeen) != 2 || !loadingSeen[0] || loadingSeen[1] {
		t.Errorf("OnChange loading sequence = %v, want [true false]", loadingSeen)
	}
	if len(observed) != 1 || observed[0] != "leaderboard" {
		t.Errorf("Observe calls = %v, want [leaderboard]", observed)
	}
}

func TestAutoRefreshRunsAndStops(t *testing.T) {
	var calls atomic.Int32
	s := New(context.Background(), "live", func(context.Context) (int, error) {
		return int(calls.Add(1)), nil
	})

	s.StartAuto(10 * time.Millisecond)
	if !s.AutoEnabled() {
		t.Fatal("AutoEnabled() = false after StartAuto")
	}
	if s.AutoInterval() != 10*time.Millisecond {
		t.Errorf("AutoInterval() = %v", s.AutoInterval())
	}

	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if calls.Load() < 3 {
		t.Fatalf("auto refresh fired %d times, want >= 3", calls.Load())
	}

	s.Deactivate()
	if s.AutoEnabled() {
		t.Error("AutoEnabled() = true after Deactivate")
	}

	// Let any fetch started by the final tick land, then check no more ticks
	time.Sleep(30 * time.Millisecond)
	settled := calls.Load()
	time.Sleep(50 * time.Millisecond)
	if calls.Load() != settled {
		t.Errorf("fetches continued after Deactivate: %d -> %d", settled, calls.Load())
	}
}

func TestInFlightFetchAppliesAfterDeactivate(t *testing.T) {
	g := newGatedFetcher()
	s := New(context.Background(), "whales", g.fetch)

	done := s.Activate()
	s.Deactivate()
	g.results <- result{data: []string{"late"}}
	waitDone(t, done)

	if st := s.State(); !st.HasData || st.Data[0] != "late" {
		t.Errorf("state after deactivate = %+v, want late data applied", st)
	}
}

func TestTaskStopIsIdempotent(t *testing.T) {
	task := startTask(context.Background(), time.Hour, func() {})
	task.Stop()
	task.Stop()
}
