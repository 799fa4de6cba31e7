package monitor

import (
	"fmt"
	"strings"
)

// Rect is the monitor's position in virtual screen coordinates.
type Rect struct {
	Left   int
	Top    int
	Right  int
	Bottom int
}

// Identity describes one physical monitor. It does not change for the
// lifetime of a handle; DeviceInstanceID stays stable across handles that
// refer to the same physical device.
type Identity struct {
	// DeviceInstanceID is the OS device instance ID, unique per device.
	DeviceInstanceID string

	// Description is the OS-reported display name.
	Description string

	// DisplayIndex is the index of the display adapter output.
	DisplayIndex byte

	// MonitorIndex is the index of the monitor on that output.
	MonitorIndex byte

	// Rect is the monitor area.
	Rect Rect
}

// Kind tags how a handle reaches its monitor. It is only used to choose a
// diagnostic message.
type Kind uint8

const (
	// KindOther is a handle without a specific diagnostic (e.g. WMI-controlled
	// internal panels).
	KindOther Kind = iota

	// KindDDC is a handle controlled through DDC/CI.
	KindDDC

	// KindUnreachableInternal is an internal panel that cannot be controlled.
	KindUnreachableInternal

	// KindUnreachableExternal is an external monitor that cannot be reached,
	// usually because DDC/CI is disabled in its on-screen menu.
	KindUnreachableExternal
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindOther:
		return "OTHER"
	case KindDDC:
		return "DDC"
	case KindUnreachableInternal:
		return "UNREACHABLE_INTERNAL"
	case KindUnreachableExternal:
		return "UNREACHABLE_EXTERNAL"
	default:
		return "UNKNOWN"
	}
}

// Handle is the live, single-attempt access channel to one monitor.
//
// Set and Update methods perform exactly one hardware attempt and return
// its classified outcome. Getters return the value cached by the last
// successful Set or Update. Implementations need not be safe for
// concurrent use; callers serialize access per handle.
type Handle interface {
	Identity() Identity
	Kind() Kind

	// IsReachable reports whether the monitor can be accessed at all.
	IsReachable() bool

	Brightness() int
	SetBrightness(brightness int) AccessResult
	// UpdateBrightness refreshes the cached brightness. A hint >= 0 is a
	// value already known by the caller (e.g. reported by the OS) that the
	// handle may use instead of querying the device.
	UpdateBrightness(hint int) AccessResult

	IsContrastSupported() bool
	Contrast() int
	SetContrast(contrast int) AccessResult
	UpdateContrast() AccessResult

	IsInputSourceSupported() bool
	// InputSourcePossibleValues lists the input source codes reported by
	// the monitor's capability string, in reported order.
	InputSourcePossibleValues() []byte
	InputSource() int
	SetInputSource(source int) AccessResult
	UpdateInputSource() AccessResult

	// Close releases the handle.
	Close() error
}

// ParseKind parses a kind name as printed by Kind.String, case-insensitive,
// with "-" accepted in place of "_".
func ParseKind(s string) (Kind, error) {
	switch strings.ReplaceAll(strings.ToUpper(s), "-", "_") {
	case "OTHER", "":
		return KindOther, nil
	case "DDC":
		return KindDDC, nil
	case "UNREACHABLE_INTERNAL":
		return KindUnreachableInternal, nil
	case "UNREACHABLE_EXTERNAL":
		return KindUnreachableExternal, nil
	}
	return KindOther, fmt.Errorf("unknown monitor kind %q", s)
}
