package data

import (
	"sync"
	"time"
)

// TimeProvider supplies the current time to repositories and services so
// "upcoming" windows and session expiry can be pinned in tests.
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider reads the system clock.
type RealTimeProvider struct{}

// Now returns time.Now().
func (*RealTimeProvider) Now() time.Time { return time.Now() }

// FixedTimeProvider is a manually advanced clock. It is safe for concurrent use.
type FixedTimeProvider struct {
	mu  sync.RWMutex
	now time.Time
}

// NewFixedTimeProvider returns a clock stopped at t.
func NewFixedTimeProvider(t time.Time) *FixedTimeProvider {
	return &FixedTimeProvider{now: t}
}

// Now returns the clock's current reading.
func (f *FixedTimeProvider) Now() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.now
}

// AddTime moves the clock forward by d.
func (f *FixedTimeProvider) AddTime(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}
