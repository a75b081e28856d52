package app

import (
	"sync"
	"time"
)

// monotonicClock never returns a time earlier than one it already returned.
type monotonicClock struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

func newMonotonicClock(now func() time.Time) *monotonicClock {
	return &monotonicClock{now: now}
}

func (c *monotonicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	current := c.now().UTC()
	if current.Before(c.last) {
		current = c.last
	}
	c.last = current
	return current
}
