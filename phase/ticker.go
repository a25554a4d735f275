// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package phase

import (
	"context"
	"sync"
	"time"
)

// Ticker drives a periodic callback (countdown repaint, timeline
// refresh) for the lifetime of one view. It can be paused while the
// host is not visible and resumed later; resuming fires the callback
// immediately so a suspended display resynchronizes instead of drifting
// until the next interval.
type Ticker struct {
	mu     sync.Mutex
	paused bool

	resync chan struct{}
	cancel context.CancelFunc
	done   chan struct{}
}

// StartTicker begins invoking fn with the current time every interval.
// The ticker stops when ctx is cancelled or Stop is called; fn is never
// invoked after that.
func StartTicker(ctx context.Context, interval time.Duration, fn func(now time.Time)) *Ticker {
	ctx, cancel := context.WithCancel(ctx)
	t := &Ticker{
		resync: make(chan struct{}, 1),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(t.done)
		tick := time.NewTicker(interval)
		defer tick.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.resync:
				fn(time.Now())
			case now := <-tick.C:
				if !t.isPaused() {
					fn(now)
				}
			}
		}
	}()

	return t
}

func (t *Ticker) isPaused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.paused
}

// Pause suspends callback invocations. Ticks that arrive while paused
// are dropped, not queued.
func (t *Ticker) Pause() {
	t.mu.Lock()
	t.paused = true
	t.mu.Unlock()
}

// Resume re-enables callbacks and fires one immediately.
func (t *Ticker) Resume() {
	t.mu.Lock()
	wasPaused := t.paused
	t.paused = false
	t.mu.Unlock()
	if wasPaused {
		select {
		case t.resync <- struct{}{}:
		default:
		}
	}
}

// Stop ends the ticker and waits for the callback goroutine to exit, so
// a caller tearing down a view knows no further invocations can land.
func (t *Ticker) Stop() {
	t.cancel()
	<-t.done
}
