// Package loop provides the single-threaded callback loop the map core runs on.
//
// Provider callbacks, timer continuations and API calls are all funnelled through
// one goroutine, so map state is only ever touched by the callback currently running.
package loop

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrStopped is returned by Call when the loop has shut down.
var ErrStopped = errors.New("loop stopped")

// Timer is a pending deferred callback.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the call stopped it.
	Stop() bool
}

// Scheduler defers callbacks.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
	Now() time.Time
}

// Loop runs callbacks one at a time.
type Loop interface {
	Scheduler
	Post(fn func())
}

// Call runs fn on l and waits for it to return.
func Call(ctx context.Context, l Loop, fn func() error) error {
	done := make(chan error, 1)
	l.Post(func() { done <- fn() })
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Runner is the production Loop backed by a goroutine and wall-clock timers.
type Runner struct {
	queue   chan func()
	stopped chan struct{}
	once    sync.Once
}

// New creates a Runner. Callbacks queue until Run is called.
func New() *Runner {
	return &Runner{
		queue:   make(chan func(), 256),
		stopped: make(chan struct{}),
	}
}

// Run drains callbacks until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	defer r.once.Do(func() { close(r.stopped) })
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-r.queue:
			fn()
		}
	}
}

// Post queues fn. Posting to a stopped loop drops the callback.
func (r *Runner) Post(fn func()) {
	select {
	case r.queue <- fn:
	case <-r.stopped:
	}
}

// Now implements Scheduler.
func (r *Runner) Now() time.Time { return time.Now() }

// AfterFunc implements Scheduler. The callback runs on the loop goroutine.
func (r *Runner) AfterFunc(d time.Duration, fn func()) Timer {
	t := &runnerTimer{}
	t.timer = time.AfterFunc(d, func() {
		r.Post(func() {
			if t.stopped.CompareAndSwap(false, true) {
				fn()
			}
		})
	})
	return t
}

type runnerTimer struct {
	timer   *time.Timer
	stopped atomic.Bool
}

// Stop also catches callbacks already queued on the loop but not yet run.
func (t *runnerTimer) Stop() bool {
	t.timer.Stop()
	return t.stopped.CompareAndSwap(false, true)
}
