package control

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/displayctl/displayctl-go/pkg/levelrange"
	"github.com/displayctl/displayctl-go/pkg/log"
	"github.com/displayctl/displayctl-go/pkg/monitor"
	"github.com/displayctl/displayctl-go/pkg/persistence"
)

// Control errors.
var (
	ErrClosed                 = errors.New("monitor session closed")
	ErrSwitchingDisabled      = errors.New("input source switching not enabled")
	ErrInputSourceUnsupported = errors.New("input source not supported")
	ErrContrastUnsupported    = errors.New("contrast not supported")
	ErrIdentityMismatch       = errors.New("handle belongs to a different monitor")
	ErrUnknownMonitor         = errors.New("unknown monitor")
	ErrAlreadyRegistered      = errors.New("monitor already registered")
	ErrInvalidHandle          = errors.New("invalid monitor handle")
)

// Config configures sessions and the registry.
type Config struct {
	// Store persists customization. If nil, customization is kept in memory
	// only.
	Store persistence.Store

	// TickSize is the step used by IncrementBrightness/DecrementBrightness
	// when called with a non-positive tick.
	TickSize int

	// Cyclic makes plain brightness stepping wrap around the range.
	Cyclic bool

	// Rescanner receives rescan requests. A Registry installs itself here
	// for the sessions it creates.
	Rescanner Rescanner

	// OnAccessFailed is called after every failed hardware access.
	OnAccessFailed func(s *Session, result monitor.AccessResult)

	// AccessLogger captures access events. If nil, capture is disabled.
	AccessLogger log.Logger

	// Logger is the optional logger for debug output.
	// If nil, logging is disabled.
	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		TickSize: levelrange.DefaultTickSize,
		Cyclic:   true,
	}
}

func (c Config) withDefaults() Config {
	if c.TickSize <= 0 {
		c.TickSize = levelrange.DefaultTickSize
	}
	if c.AccessLogger == nil {
		c.AccessLogger = log.NoopLogger{}
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	return c
}

// Property identifies what an Event reports.
type Property uint8

const (
	PropertyBrightness Property = iota
	PropertyContrast
	PropertyInputSource
	PropertySelectedSource
	PropertyControllable
	PropertyReason
	PropertyName
	PropertyUnison
	PropertyRange
	PropertyRangeChanging
	PropertyContrastChanging
	PropertyInputSwitching
	PropertyInputSourceItems
	PropertyHandle
)

// String returns the property name.
func (p Property) String() string {
	switch p {
	case PropertyBrightness:
		return "brightness"
	case PropertyContrast:
		return "contrast"
	case PropertyInputSource:
		return "inputSource"
	case PropertySelectedSource:
		return "selectedSource"
	case PropertyControllable:
		return "controllable"
	case PropertyReason:
		return "reason"
	case PropertyName:
		return "name"
	case PropertyUnison:
		return "unison"
	case PropertyRange:
		return "range"
	case PropertyRangeChanging:
		return "rangeChanging"
	case PropertyContrastChanging:
		return "contrastChanging"
	case PropertyInputSwitching:
		return "inputSwitching"
	case PropertyInputSourceItems:
		return "inputSourceItems"
	case PropertyHandle:
		return "handle"
	default:
		return "unknown"
	}
}

func propertyOf(attr monitor.Attribute) Property {
	switch attr {
	case monitor.AttributeContrast:
		return PropertyContrast
	case monitor.AttributeInputSource:
		return PropertyInputSource
	default:
		return PropertyBrightness
	}
}

// Event reports an observable change of a session.
type Event struct {
	// DeviceInstanceID identifies the monitor.
	DeviceInstanceID string

	// Property is what changed.
	Property Property

	// Value is the new value: int for hardware attributes, bool for flags,
	// monitor.Reason, string, levelrange.Range or inputsource.Item.
	Value any
}

// String returns a compact representation for logging.
func (e Event) String() string {
	return fmt.Sprintf("%s %s=%v", e.DeviceInstanceID, e.Property, e.Value)
}

// RescanRequest asks the discovery collaborator to re-enumerate monitors.
type RescanRequest struct {
	// DeviceInstanceID is the monitor whose access failed.
	DeviceInstanceID string

	// Attribute is the attribute being accessed.
	Attribute monitor.Attribute

	// Status is the failure that triggered the request.
	Status monitor.AccessStatus

	// Time is when the failure happened.
	Time time.Time
}

// Rescanner receives rescan requests. Implementations must not block for
// long; they are called on the goroutine that performed the access.
type Rescanner interface {
	RequestRescan(req RescanRequest)
}

// RescannerFunc adapts a function to the Rescanner interface.
type RescannerFunc func(req RescanRequest)

// RequestRescan calls f(req).
func (f RescannerFunc) RequestRescan(req RescanRequest) { f(req) }
