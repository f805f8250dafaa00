package chantime

import (
	"sync"
	"time"
)

// TestClock is a Clock whose value is set explicitly by a test, rather
// than tracking the system clock. It is safe for concurrent use.
type TestClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewTestClock returns a TestClock initialized to now.
func NewTestClock(now time.Time) *TestClock {
	return &TestClock{now: now}
}

// Now returns the clock's current value.
func (c *TestClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// SetTime sets the clock's current value.
func (c *TestClock) SetTime(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Advance moves the clock forward by d.
func (c *TestClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
