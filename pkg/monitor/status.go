package monitor

import (
	"errors"
	"fmt"
)

// Access errors. AccessResult.Err wraps one of these for every failure status.
var (
	ErrFailed             = errors.New("monitor access failed")
	ErrDdcFailed          = errors.New("DDC/CI command rejected")
	ErrTransmissionFailed = errors.New("transmission failed")
	ErrNoLongerExist      = errors.New("monitor no longer exists")
)

// AccessStatus classifies the outcome of one hardware access attempt.
type AccessStatus uint8

const (
	// StatusNone indicates no attempt was made.
	StatusNone AccessStatus = iota

	// StatusSucceeded indicates the command completed.
	StatusSucceeded

	// StatusFailed indicates a failure without further detail.
	StatusFailed

	// StatusDdcFailed indicates the device refused the command.
	StatusDdcFailed

	// StatusTransmissionFailed indicates a physical or transport error.
	StatusTransmissionFailed

	// StatusNoLongerExist indicates the handle no longer maps to a device.
	StatusNoLongerExist
)

// String returns the status name.
func (s AccessStatus) String() string {
	switch s {
	case StatusNone:
		return "NONE"
	case StatusSucceeded:
		return "SUCCEEDED"
	case StatusFailed:
		return "FAILED"
	case StatusDdcFailed:
		return "DDC_FAILED"
	case StatusTransmissionFailed:
		return "TRANSMISSION_FAILED"
	case StatusNoLongerExist:
		return "NO_LONGER_EXIST"
	default:
		return "UNKNOWN"
	}
}

// ParseAccessStatus parses a status name as produced by String.
// Matching is case-sensitive on the canonical names; short aliases used by
// the CLI ("ok", "failed", "ddc", "transmission", "gone") are accepted too.
func ParseAccessStatus(s string) (AccessStatus, error) {
	switch s {
	case "NONE", "none":
		return StatusNone, nil
	case "SUCCEEDED", "ok":
		return StatusSucceeded, nil
	case "FAILED", "failed":
		return StatusFailed, nil
	case "DDC_FAILED", "ddc":
		return StatusDdcFailed, nil
	case "TRANSMISSION_FAILED", "transmission":
		return StatusTransmissionFailed, nil
	case "NO_LONGER_EXIST", "gone":
		return StatusNoLongerExist, nil
	}
	return StatusNone, fmt.Errorf("unknown access status %q", s)
}

// IsFailure reports whether the status is one of the failure kinds.
func (s AccessStatus) IsFailure() bool {
	switch s {
	case StatusFailed, StatusDdcFailed, StatusTransmissionFailed, StatusNoLongerExist:
		return true
	}
	return false
}

// RequiresRescan reports whether a failure of this kind means the device
// may have been reconfigured or removed. A generic StatusFailed does not.
func (s AccessStatus) RequiresRescan() bool {
	switch s {
	case StatusDdcFailed, StatusTransmissionFailed, StatusNoLongerExist:
		return true
	}
	return false
}

// AccessResult is the outcome of exactly one hardware access attempt.
type AccessResult struct {
	Status  AccessStatus
	Message string
}

// Succeeded is the result of a successful access.
var Succeeded = AccessResult{Status: StatusSucceeded}

// NewResult creates a result with the given status and optional message.
func NewResult(status AccessStatus, message string) AccessResult {
	return AccessResult{Status: status, Message: message}
}

// OK reports whether the attempt succeeded.
func (r AccessResult) OK() bool {
	return r.Status == StatusSucceeded
}

// Err returns nil for a successful result and a wrapped sentinel error
// otherwise. StatusNone is treated as a generic failure.
func (r AccessResult) Err() error {
	var base error
	switch r.Status {
	case StatusSucceeded:
		return nil
	case StatusDdcFailed:
		base = ErrDdcFailed
	case StatusTransmissionFailed:
		base = ErrTransmissionFailed
	case StatusNoLongerExist:
		base = ErrNoLongerExist
	default:
		base = ErrFailed
	}
	if r.Message == "" {
		return base
	}
	return fmt.Errorf("%w: %s", base, r.Message)
}

// String returns a compact representation for logging.
func (r AccessResult) String() string {
	if r.Message == "" {
		return r.Status.String()
	}
	return r.Status.String() + " (" + r.Message + ")"
}
