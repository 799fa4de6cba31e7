package monitor

// Reason is the user-facing explanation for an uncontrollable monitor.
type Reason uint8

const (
	// ReasonNone means there is nothing specific to report.
	ReasonNone Reason = iota

	// ReasonDdcFailing means DDC/CI worked before and is now failing.
	ReasonDdcFailing

	// ReasonDdcNotEnabled means DDC/CI never worked, which usually means it
	// is disabled in the monitor's on-screen menu.
	ReasonDdcNotEnabled
)

// String returns the diagnostic message, or "" for ReasonNone.
func (r Reason) String() string {
	switch r {
	case ReasonDdcFailing:
		return "DDC failing"
	case ReasonDdcNotEnabled:
		return "DDC not enabled"
	default:
		return ""
	}
}

// ReasonFor maps a handle kind and whether the monitor has ever been
// confirmed controllable to a diagnostic.
func ReasonFor(kind Kind, confirmed bool) Reason {
	switch kind {
	case KindDDC:
		if confirmed {
			return ReasonDdcFailing
		}
		return ReasonDdcNotEnabled
	case KindUnreachableExternal:
		return ReasonDdcNotEnabled
	default:
		return ReasonNone
	}
}
