package log

import (
	"strings"
	"time"

	"github.com/displayctl/displayctl-go/pkg/monitor"
)

// Event is one captured monitor event.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID uniquely identifies the monitor session (UUID).
	SessionID string `cbor:"2,keyasint"`

	// DeviceInstanceID identifies the physical monitor.
	DeviceInstanceID string `cbor:"3,keyasint,omitempty"`

	// Category classifies the event type.
	Category Category `cbor:"4,keyasint"`

	// Type-specific payload (one of these will be set).
	Access      *AccessEvent      `cbor:"10,keyasint,omitempty"`
	StateChange *StateChangeEvent `cbor:"11,keyasint,omitempty"`
	Error       *ErrorEventData   `cbor:"12,keyasint,omitempty"`
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryAccess indicates a hardware access attempt.
	CategoryAccess Category = 0
	// CategoryState indicates a state change.
	CategoryState Category = 1
	// CategoryError indicates an error event.
	CategoryError Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryAccess:
		return "ACCESS"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseCategory parses a category name (case-insensitive).
func ParseCategory(s string) (Category, bool) {
	switch strings.ToUpper(s) {
	case "ACCESS":
		return CategoryAccess, true
	case "STATE":
		return CategoryState, true
	case "ERROR":
		return CategoryError, true
	}
	return 0, false
}

// Operation is the kind of hardware access.
type Operation uint8

const (
	// OperationSet writes a value to the monitor.
	OperationSet Operation = 0
	// OperationUpdate reads the current value from the monitor.
	OperationUpdate Operation = 1
)

// String returns the operation name.
func (o Operation) String() string {
	switch o {
	case OperationSet:
		return "SET"
	case OperationUpdate:
		return "UPDATE"
	default:
		return "UNKNOWN"
	}
}

// AccessEvent captures one hardware access attempt.
type AccessEvent struct {
	// Operation performed.
	Operation Operation `cbor:"1,keyasint"`

	// Attribute accessed.
	Attribute monitor.Attribute `cbor:"2,keyasint"`

	// Value written (set) or read back (successful update).
	Value *int `cbor:"3,keyasint,omitempty"`

	// Status is the classified outcome.
	Status monitor.AccessStatus `cbor:"4,keyasint"`

	// Message is the handle's detail for a failure.
	Message string `cbor:"5,keyasint,omitempty"`

	// Duration of the attempt. Stored as nanoseconds.
	Duration time.Duration `cbor:"6,keyasint,omitempty"`

	// Count is the confidence count after folding in this outcome.
	Count int16 `cbor:"7,keyasint"`
}

// StateChangeEvent captures controllability and lifecycle transitions.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntityControllable indicates a controllability change.
	StateEntityControllable StateEntity = 0
	// StateEntityHandle indicates a handle replacement.
	StateEntityHandle StateEntity = 1
	// StateEntitySession indicates a session lifecycle change.
	StateEntitySession StateEntity = 2
	// StateEntityInputSwitching indicates input-source switching mode changed.
	StateEntityInputSwitching StateEntity = 3
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityControllable:
		return "CONTROLLABLE"
	case StateEntityHandle:
		return "HANDLE"
	case StateEntitySession:
		return "SESSION"
	case StateEntityInputSwitching:
		return "INPUT_SWITCHING"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures errors outside a hardware attempt, such as a
// failed handle disposal or customization save.
type ErrorEventData struct {
	// Message is the error message.
	Message string `cbor:"1,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"2,keyasint,omitempty"`
}
