package mstime

import (
	"sync"
	"time"
)

const (
	nanosecondsInMillisecond = int64(time.Millisecond / time.Nanosecond)
)

// Now returns the current local time, with precision of one millisecond
func Now() time.Time {
	return ReduceToMillisecondPrecision(time.Now())
}

// ReduceToMillisecondPrecision truncates t to a whole millisecond
func ReduceToMillisecondPrecision(t time.Time) time.Time {
	nanoseconds := int64(t.Nanosecond())
	millisecondPrecisionNanoSeconds := (nanoseconds / nanosecondsInMillisecond) * nanosecondsInMillisecond
	return time.Unix(t.Unix(), millisecondPrecisionNanoSeconds)
}

// SystemClock reads the system wall clock
type SystemClock struct{}

// Now returns the current time with precision of one millisecond
func (SystemClock) Now() time.Time {
	return Now()
}

// ManualClock is a clock that only moves when told to
type ManualClock struct {
	lock sync.Mutex
	now  time.Time
}

// NewManualClock returns a ManualClock set to now
func NewManualClock(now time.Time) *ManualClock {
	return &ManualClock{now: ReduceToMillisecondPrecision(now)}
}

// Now returns the time the clock was last set to
func (c *ManualClock) Now() time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.now
}

// Set moves the clock to t
func (c *ManualClock) Set(t time.Time) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.now = ReduceToMillisecondPrecision(t)
}

// Add moves the clock forward by d
func (c *ManualClock) Add(d time.Duration) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.now = ReduceToMillisecondPrecision(c.now.Add(d))
}
