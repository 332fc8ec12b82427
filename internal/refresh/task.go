package refresh

import (
	"context"
	"sync"
	"time"
)

// Task is a cancellable periodic job.
type Task struct {
	Interval time.Duration

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func startTask(parent context.Context, interval time.Duration, tick func()) *Task {
	ctx, cancel := context.WithCancel(parent)
	t := &Task{
		Interval: interval,
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	go func() {
		defer close(t.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				tick()
			}
		}
	}()

	return t
}

// Stop cancels future ticks and waits for the ticker goroutine to exit.
// It is safe to call more than once.
func (t *Task) Stop() {
	t.once.Do(t.cancel)
	<-t.done
}
