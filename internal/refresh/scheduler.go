// Package refresh drives the fetch lifecycle of a single view.
package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Fetcher loads a view's data.
type Fetcher[T any] func(ctx context.Context) (T, error)

// State is the loading/error/data state of one view.
type State[T any] struct {
	Loading bool
	// Err is the message of the last failed fetch, empty after a success
	Err        string
	Data       T
	HasData    bool
	LastUpdate time.Time
}

// Scheduler runs a bound Fetcher on demand and, optionally, on a fixed
// interval.
//
// Overlapping fetches are not sequenced: each one applies its result when it
// settles, so the last to arrive wins even if it was issued first.
type Scheduler[T any] struct {
	name  string
	ctx   context.Context
	fetch Fetcher[T]
	now   func() time.Time

	// OnChange is called with a copy of the state after every transition.
	// It may run on any goroutine. Set before the first Activate.
	OnChange func(State[T])

	// Observe is called after every fetch with its duration and error.
	// Set before the first Activate.
	Observe func(name string, took time.Duration, err error)

	mu     sync.Mutex
	state  State[T]
	active bool
	auto   *Task
}

// New creates a Scheduler. ctx bounds every fetch and auto-refresh task;
// cancelling it is the only way to abort an in-flight fetch.
func New[T any](ctx context.Context, name string, fetch Fetcher[T]) *Scheduler[T] {
	return &Scheduler[T]{
		name:  name,
		ctx:   ctx,
		fetch: fetch,
		now:   time.Now,
		state: State[T]{Loading: true},
	}
}

// Name returns the view name the scheduler was created with.
func (s *Scheduler[T]) Name() string {
	return s.name
}

// State returns a copy of the current state.
func (s *Scheduler[T]) State() State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Active reports whether the view is activated.
func (s *Scheduler[T]) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Activate marks the view active and triggers an immediate fetch.
func (s *Scheduler[T]) Activate() <-chan struct{} {
	s.mu.Lock()
	s.active = true
	s.mu.Unlock()
	return s.Refresh()
}

// Deactivate stops auto-refresh. A fetch already in flight still runs to
// completion and its result is applied.
func (s *Scheduler[T]) Deactivate() {
	s.mu.Lock()
	s.active = false
	s.mu.Unlock()
	s.StopAuto()
}

// Refresh sets Loading synchronously and starts a fetch. The returned channel
// is closed once this fetch's result has been applied.
func (s *Scheduler[T]) Refresh() <-chan struct{} {
	done := make(chan struct{})

	s.mu.Lock()
	s.state.Loading = true
	snap := s.state
	s.mu.Unlock()
	s.emit(snap)

	go func() {
		defer close(done)
		start := time.Now()
		data, err := s.run()
		took := time.Since(start)

		if err != nil {
			slog.Warn("view_fetch_failed", "view", s.name, "error", err, "took", took)
		} else {
			slog.Debug("view_fetch_ok", "view", s.name, "took", took)
		}
		if s.Observe != nil {
			s.Observe(s.name, took, err)
		}
		s.apply(data, err)
	}()

	return done
}

// run invokes the fetcher, turning a panic into an error.
func (s *Scheduler[T]) run() (data T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fetch panicked: %v", r)
		}
	}()
	return s.fetch(s.ctx)
}

// apply records the outcome of a fetch. Failures keep the previous data.
func (s *Scheduler[T]) apply(data T, err error) {
	s.mu.Lock()
	s.state.Loading = false
	if err != nil {
		s.state.Err = err.Error()
	} else {
		s.state.Data = data
		s.state.HasData = true
		s.state.Err = ""
		s.state.LastUpdate = s.now()
	}
	snap := s.state
	s.mu.Unlock()
	s.emit(snap)
}

func (s *Scheduler[T]) emit(st State[T]) {
	if s.OnChange != nil {
		s.OnChange(st)
	}
}

// StartAuto calls Refresh every interval until StopAuto, Deactivate or the
// scheduler context ends. A previous auto task is replaced.
func (s *Scheduler[T]) StartAuto(interval time.Duration) *Task {
	task := startTask(s.ctx, interval, func() { s.Refresh() })

	s.mu.Lock()
	prev := s.auto
	s.auto = task
	s.mu.Unlock()

	if prev != nil {
		prev.Stop()
	}
	slog.Debug("auto_refresh_started", "view", s.name, "interval", interval)
	return task
}

// StopAuto cancels the auto-refresh task, if any.
func (s *Scheduler[T]) StopAuto() {
	s.mu.Lock()
	task := s.auto
	s.auto = nil
	s.mu.Unlock()

	if task != nil {
		task.Stop()
		slog.Debug("auto_refresh_stopped", "view", s.name)
	}
}

// AutoEnabled reports whether an auto-refresh task is running.
func (s *Scheduler[T]) AutoEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auto != nil
}

// AutoInterval returns the interval of the running auto task, or zero.
func (s *Scheduler[T]) AutoInterval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.auto == nil {
		return 0
	}
	return s.auto.Interval
}
