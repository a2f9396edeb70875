package common

import (
	"sync"
	"time"
)

// Clock supplies the current time to frame drivers.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// ManualClock is a Clock that only moves when told to.
type ManualClock struct {
	mu  *sync.Mutex
	now time.Time
}

// NewManualClock creates a ManualClock frozen at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{mu: &sync.Mutex{}, now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Set moves the clock to t.
func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// HourClock reports the time of a base clock with its hour replaced.
type HourClock struct {
	base Clock
	hour int
}

// NewHourClock wraps base so that Now always falls in the given hour of base's current day.
// A nil base uses SystemClock.
func NewHourClock(base Clock, hour int) *HourClock {
	if base == nil {
		base = SystemClock
	}
	return &HourClock{base: base, hour: ((hour % 24) + 24) % 24}
}

func (c *HourClock) Now() time.Time {
	t := c.base.Now()
	return time.Date(t.Year(), t.Month(), t.Day(), c.hour, t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
