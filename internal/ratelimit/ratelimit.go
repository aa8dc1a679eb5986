// Package ratelimit implements the per-user sliding-window message
// counter: a time-ordered buffer of timestamps bounded to O(N) memory,
// backed by a FIFO deque the same way the teacher queues plugin messages.
package ratelimit

import (
	"sync"
	"time"

	"github.com/gammazero/deque"
)

// Limiter allows at most Max events in any trailing window of length
// Window. It is safe for concurrent use, though the hub only ever calls
// it from its single processing goroutine.
type Limiter struct {
	mu     sync.Mutex
	max    int
	window time.Duration
	now    func() time.Time
	times  deque.Deque[time.Time]
}

// New returns a Limiter permitting max events per window, driven by the
// wall clock.
func New(max int, window time.Duration) *Limiter {
	return NewWithClock(max, window, time.Now)
}

// NewWithClock is New with an injectable clock, for deterministic tests.
func NewWithClock(max int, window time.Duration, now func() time.Time) *Limiter {
	return &Limiter{max: max, window: window, now: now}
}

// Allow drops every timestamp older than now-Window, then admits the
// current instant if fewer than Max remain.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)
	for l.times.Len() > 0 && l.times.Front().Before(cutoff) {
		l.times.PopFront()
	}

	if l.times.Len() >= l.max {
		return false
	}
	l.times.PushBack(now)
	return true
}
