package animator

import (
	"sync"
	"time"
)

type clockImpl struct {
	mu      sync.Mutex
	now     func() time.Time
	start   time.Time
	last    time.Time
	running bool
}

// Clock measures wall time between calls. It starts on the first call to Delta or Elapsed.
type Clock interface {
	// Delta returns the seconds since the previous Delta call, or since the clock started. The
	// first call returns 0.
	//
	// Returns:
	//   - float64: elapsed seconds
	Delta() float64

	// Elapsed returns the seconds since the clock started, without affecting Delta.
	//
	// Returns:
	//   - float64: total elapsed seconds
	Elapsed() float64
}

var _ Clock = &clockImpl{}

// NewClock creates a clock backed by time.Now.
//
// Returns:
//   - Clock: the new clock
func NewClock() Clock {
	return NewClockWithSource(time.Now)
}

// NewClockWithSource creates a clock that reads time from now. Tests use it to drive the clock
// deterministically.
//
// Parameters:
//   - now: the time source
//
// Returns:
//   - Clock: the new clock
func NewClockWithSource(now func() time.Time) Clock {
	return &clockImpl{now: now}
}

func (c *clockImpl) ensureStarted() time.Time {
	t := c.now()
	if !c.running {
		c.start = t
		c.last = t
		c.running = true
	}
	return t
}

func (c *clockImpl) Delta() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.ensureStarted()
	d := t.Sub(c.last).Seconds()
	c.last = t
	return d
}

func (c *clockImpl) Elapsed() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.ensureStarted()
	return t.Sub(c.start).Seconds()
}
