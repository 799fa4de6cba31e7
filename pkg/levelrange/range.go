// Package levelrange maps raw monitor levels onto a user-customized range
// and performs wheel-like stepping within it.
package levelrange

import (
	"errors"
	"fmt"
	"math"
)

const (
	// MaxLevel is the highest value either bound may take.
	MaxLevel = 100

	// DefaultTickSize is the step used by plain up/down adjustments.
	DefaultTickSize = 10
)

// ErrOutOfBounds is returned when a bound exceeds MaxLevel.
var ErrOutOfBounds = errors.New("range bound out of bounds")

// Range is the customizable [Lowest, Highest] span of raw levels.
// Bounds given in reverse order are treated as if swapped.
type Range struct {
	Lowest  uint8 `json:"lowest" yaml:"lowest"`
	Highest uint8 `json:"highest" yaml:"highest"`
}

// Full is the default 0..100 range.
var Full = Range{Lowest: 0, Highest: MaxLevel}

// New creates a range, validating both bounds.
func New(lowest, highest int) (Range, error) {
	r := Range{}
	if lowest < 0 || lowest > MaxLevel {
		return r, fmt.Errorf("%w: lowest %d", ErrOutOfBounds, lowest)
	}
	if highest < 0 || highest > MaxLevel {
		return r, fmt.Errorf("%w: highest %d", ErrOutOfBounds, highest)
	}
	r.Lowest = uint8(lowest)
	r.Highest = uint8(highest)
	return r, nil
}

// Validate checks both bounds are within [0, MaxLevel].
func (r Range) Validate() error {
	_, err := New(int(r.Lowest), int(r.Highest))
	return err
}

// bounds returns the ordered bounds.
func (r Range) bounds() (lo, hi int) {
	lo, hi = int(r.Lowest), int(r.Highest)
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi
}

// Rate returns |Highest-Lowest| / 100, the factor that scales a generic
// tick size into raw level units.
func (r Range) Rate() float64 {
	lo, hi := r.bounds()
	return float64(hi-lo) / 100
}

// Percentage converts a raw level into a 0..100 position within the range.
// Levels outside the range are clamped. A zero-width range reports 100 for
// any level at or above its bound and 0 otherwise.
func (r Range) Percentage(raw int) int {
	lo, hi := r.bounds()
	if hi == lo {
		if raw >= lo {
			return 100
		}
		return 0
	}
	switch {
	case raw <= lo:
		return 0
	case raw >= hi:
		return 100
	}
	return int(math.Round(float64(raw-lo) * 100 / float64(hi-lo)))
}

// StepUp returns the next level above current on the tick grid anchored at
// Lowest. Passing Highest wraps to Lowest when cyclic, otherwise clamps.
// A zero step (zero-width range or non-positive tick) returns current.
func (r Range) StepUp(current, tickSize int, cyclic bool) int {
	size := float64(tickSize) * r.Rate()
	if size <= 0 {
		return current
	}
	lo, _ := r.bounds()
	count := math.Floor(float64(current-lo) / size)
	next := lo + int(math.Ceil((count+1)*size))
	return r.Clamp(next, cyclic)
}

// StepDown returns the next level below current on the tick grid anchored at
// Lowest. Passing Lowest wraps to Highest when cyclic, otherwise clamps.
// A zero step (zero-width range or non-positive tick) returns current.
func (r Range) StepDown(current, tickSize int, cyclic bool) int {
	size := float64(tickSize) * r.Rate()
	if size <= 0 {
		return current
	}
	lo, _ := r.bounds()
	count := math.Ceil(float64(current-lo) / size)
	next := lo + int(math.Floor((count-1)*size))
	return r.Clamp(next, cyclic)
}

// Clamp brings a level back into the range. Below Lowest yields Highest when
// cyclic, otherwise Lowest; above Highest yields Lowest when cyclic,
// otherwise Highest.
func (r Range) Clamp(level int, cyclic bool) int {
	lo, hi := r.bounds()
	switch {
	case level < lo:
		if cyclic {
			return hi
		}
		return lo
	case level > hi:
		if cyclic {
			return lo
		}
		return hi
	}
	return level
}

// String returns "lowest-highest".
func (r Range) String() string {
	return fmt.Sprintf("%d-%d", r.Lowest, r.Highest)
}
