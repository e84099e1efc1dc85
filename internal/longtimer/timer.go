// ABOUTME: One-shot timer that supports delays beyond the 2^31-1 ms single-shot cap.
// ABOUTME: Oversized delays are decomposed into chained waits so the total elapsed time matches.

package longtimer

import (
	"sync"
	"time"
)

// MaxChunk is the largest delay scheduled in a single shot. Delays above it
// are split into a chain of waits whose durations sum to the requested total.
const MaxChunk = time.Duration(1<<31-1) * time.Millisecond

// scheduleFunc starts a single wait and returns a timer that can be stopped.
// Indirection exists so tests can observe chunk sizes without sleeping.
type scheduleFunc func(d time.Duration, fn func()) *time.Timer

// Timer is the handle for a possibly-chained one-shot timer.
type Timer struct {
	mu       sync.Mutex
	current  *time.Timer
	stopped  bool
	schedule scheduleFunc
}

// After schedules fn to run once after d, chaining intermediate waits when d
// exceeds MaxChunk. A non-positive d fires on the first scheduler tick, same
// as time.AfterFunc. The returned handle's Stop cancels the chain at
// whichever link it has reached.
func After(d time.Duration, fn func()) *Timer {
	return after(d, fn, time.AfterFunc)
}

func after(d time.Duration, fn func(), schedule scheduleFunc) *Timer {
	t := &Timer{schedule: schedule}
	t.arm(d, fn)
	return t
}

// arm schedules the next link of the chain. When the remaining delay still
// exceeds MaxChunk it waits exactly MaxChunk and re-arms with the remainder;
// otherwise it waits the remainder and invokes fn.
func (t *Timer) arm(remaining time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return
	}

	if remaining > MaxChunk {
		next := remaining - MaxChunk
		t.current = t.schedule(MaxChunk, func() {
			t.arm(next, fn)
		})
		return
	}

	t.current = t.schedule(remaining, fn)
}

// Stop cancels the timer. It returns true if the callback had neither fired
// nor been stopped already. Safe to call multiple times.
func (t *Timer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return false
	}
	t.stopped = true

	if t.current != nil {
		return t.current.Stop()
	}
	return false
}
