package persistence

import (
	"errors"

	"github.com/displayctl/displayctl-go/pkg/levelrange"
)

// Store errors.
var (
	ErrNotFound     = errors.New("customization not found")
	ErrInvalidID    = errors.New("invalid device instance ID")
	ErrInvalidRange = errors.New("invalid customization range")
)

// Customization is the persisted user customization of one monitor.
type Customization struct {
	// Name overrides the OS description. Empty means no override.
	Name string `json:"name,omitempty"`

	// IsUnison marks the monitor as following unison brightness changes.
	IsUnison bool `json:"is_unison,omitempty"`

	// RangeLowest and RangeHighest bound the brightness range.
	RangeLowest  uint8 `json:"range_lowest"`
	RangeHighest uint8 `json:"range_highest"`
}

// DefaultCustomization returns the customization used when nothing is stored.
func DefaultCustomization() Customization {
	return Customization{
		RangeLowest:  levelrange.Full.Lowest,
		RangeHighest: levelrange.Full.Highest,
	}
}

// Range returns the customized brightness range.
func (c Customization) Range() levelrange.Range {
	return levelrange.Range{Lowest: c.RangeLowest, Highest: c.RangeHighest}
}

// Validate checks the range bounds.
func (c Customization) Validate() error {
	if err := c.Range().Validate(); err != nil {
		return errors.Join(ErrInvalidRange, err)
	}
	return nil
}

// Store defines persistence of customization records.
// Implementations must be safe for concurrent access.
type Store interface {
	// Load returns the customization for a device.
	// Returns ErrNotFound if nothing is stored for it.
	Load(deviceInstanceID string) (Customization, error)

	// Save stores the customization for a device, replacing any existing one.
	Save(deviceInstanceID string, c Customization) error
}

// LoadOrDefault loads a customization, falling back to the default when
// nothing is stored. Other errors are returned together with the default.
func LoadOrDefault(s Store, deviceInstanceID string) (Customization, error) {
	if s == nil {
		return DefaultCustomization(), nil
	}
	c, err := s.Load(deviceInstanceID)
	if errors.Is(err, ErrNotFound) {
		return DefaultCustomization(), nil
	}
	if err != nil {
		return DefaultCustomization(), err
	}
	if c.Validate() != nil {
		return DefaultCustomization(), nil
	}
	return c, nil
}

func checkID(deviceInstanceID string) error {
	if deviceInstanceID == "" {
		return ErrInvalidID
	}
	return nil
}
