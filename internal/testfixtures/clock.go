package testfixtures

import (
	"sync"
	"time"

	"github.com/example/clubroom-reservation/internal/timeslot"
)

// Clock is a hand-driven time source. Tests inject Clock.Now in place of
// time.Now and move the instant explicitly between assertions, so submitted
// and reviewed timestamps stay predictable. All instants are held in KST, the
// zone reservation dates are anchored to.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock anchors a clock at start, or at ReferenceTime when start is the
// zero value.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{now: start.In(timeslot.KST())}
}

// Now reports the instant the clock currently sits at.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// NowFunc adapts the clock to the func() time.Time shape the services take.
// A nil clock falls back to the real time source.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// Set moves the clock to an absolute instant.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t.In(timeslot.KST())
	c.mu.Unlock()
}

// Advance moves the clock forward by d and reports the instant it landed on.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	c.now = c.now.Add(d)
	landed := c.now
	c.mu.Unlock()
	return landed
}

// Today reports the KST calendar day the clock sits in, truncated the way
// reservation use dates are stored.
func (c *Clock) Today() time.Time {
	now := c.Now()
	return timeslot.NewDate(now.Year(), now.Month(), now.Day())
}
