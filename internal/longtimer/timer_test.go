// ABOUTME: Tests for the chained long-delay timer.
// ABOUTME: Validates chunk decomposition, total-delay accounting, short delays, and Stop.

package longtimer

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeScheduler records every requested wait and fires callbacks on demand,
// so chain behavior can be driven without sleeping.
type fakeScheduler struct {
	mu       sync.Mutex
	requests []time.Duration
	pending  func()
}

func (s *fakeScheduler) schedule(d time.Duration, fn func()) *time.Timer {
	s.mu.Lock()
	s.requests = append(s.requests, d)
	s.pending = fn
	s.mu.Unlock()

	// Inert real timer so Stop has something to act on.
	t := time.NewTimer(time.Hour)
	t.Stop()
	return t
}

func (s *fakeScheduler) fire(t *testing.T) {
	s.mu.Lock()
	fn := s.pending
	s.pending = nil
	s.mu.Unlock()

	require.NotNil(t, fn, "no pending callback to fire")
	fn()
}

func TestAfter_ShortDelayFires(t *testing.T) {
	done := make(chan struct{})
	After(5*time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("callback did not fire")
	}
}

func TestAfter_ChainsOversizedDelay(t *testing.T) {
	sched := &fakeScheduler{}
	total := 2*MaxChunk + 90*time.Minute

	fired := false
	after(total, func() { fired = true }, sched.schedule)

	// First two links wait exactly the cap, the last waits the remainder.
	sched.fire(t)
	sched.fire(t)
	assert.False(t, fired)
	sched.fire(t)
	assert.True(t, fired)

	require.Equal(t, []time.Duration{MaxChunk, MaxChunk, 90 * time.Minute}, sched.requests)

	var sum time.Duration
	for _, d := range sched.requests {
		sum += d
	}
	assert.Equal(t, total, sum)
}

func TestAfter_ExactCapIsSingleShot(t *testing.T) {
	sched := &fakeScheduler{}
	after(MaxChunk, func() {}, sched.schedule)

	require.Equal(t, []time.Duration{MaxChunk}, sched.requests)
}

func TestStop_BeforeFire(t *testing.T) {
	fired := make(chan struct{}, 1)
	timer := After(time.Hour, func() { fired <- struct{}{} })

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop(), "second Stop should report already stopped")

	select {
	case <-fired:
		t.Fatal("callback fired after Stop")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestStop_AcrossChunkBoundary(t *testing.T) {
	sched := &fakeScheduler{}
	fired := false
	timer := after(MaxChunk+time.Minute, func() { fired = true }, sched.schedule)

	// Advance into the second link, then stop: the chain must not re-arm.
	sched.fire(t)
	timer.Stop()

	sched.mu.Lock()
	requests := len(sched.requests)
	sched.mu.Unlock()
	require.Equal(t, 2, requests)
	assert.False(t, fired)
}
