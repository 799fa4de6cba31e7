package confidence

import (
	"fmt"
	"math"
)

// Counter limits.
const (
	// InitialCount is the allowance before the first success.
	InitialCount int16 = 3

	// NormalCount is the allowance after a success.
	NormalCount int16 = 5
)

// Counter is a per-monitor confidence counter.
//
// Counter is not safe for concurrent use. It is owned by a monitor session
// and only touched while that session's lock is held.
type Counter struct {
	count     int16
	confirmed bool
}

// New creates a counter at InitialCount.
func New() *Counter {
	return &Counter{count: InitialCount}
}

// RecordSuccess restores the counter to NormalCount and marks it confirmed.
// It returns true if the monitor was not controllable before.
func (c *Counter) RecordSuccess() bool {
	if c.count >= NormalCount {
		return false
	}

	former := c.count
	c.count = NormalCount
	c.confirmed = true
	return former <= 0
}

// RecordFailure consumes one unit of allowance. It returns true if the
// monitor just became not controllable. The count saturates at
// math.MinInt16 so a monitor failing forever stays not controllable.
func (c *Counter) RecordFailure() bool {
	if c.count == math.MinInt16 {
		return false
	}
	c.count--
	return c.count == 0
}

// Controllable reports whether the allowance is not yet exhausted.
func (c *Counter) Controllable() bool {
	return c.count > 0
}

// Confirmed reports whether the monitor has succeeded at least once.
func (c *Counter) Confirmed() bool {
	return c.confirmed
}

// Count returns the current count.
func (c *Counter) Count() int16 {
	return c.count
}

// Snapshot captures the counter state.
type Snapshot struct {
	Count     int16 `json:"count"`
	Confirmed bool  `json:"confirmed"`
}

// Snapshot returns the current state.
func (c *Counter) Snapshot() Snapshot {
	return Snapshot{Count: c.count, Confirmed: c.confirmed}
}

// String returns a compact representation for diagnostics.
func (c *Counter) String() string {
	return fmt.Sprintf("count=%d confirmed=%t", c.count, c.confirmed)
}
