package simulate

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/displayctl/displayctl-go/pkg/monitor"
)

// Monitor is a simulated monitor handle.
type Monitor struct {
	identity  monitor.Identity
	kind      monitor.Kind
	latency   time.Duration
	contrast  bool
	possible  []byte
	reachable bool

	mu       sync.Mutex
	hw       values
	cached   values
	failures []monitor.AccessStatus
	always   monitor.AccessStatus
	closeErr error
	closes   int

	calls    atomic.Int64
	inFlight atomic.Int32
	overlaps atomic.Int64
}

type values struct {
	brightness  int
	contrast    int
	inputSource int
}

// New creates a simulated monitor from a validated configuration.
func New(c Config) (*Monitor, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	kind, _ := monitor.ParseKind(c.Kind)
	m := &Monitor{
		identity:  c.identity(),
		kind:      kind,
		latency:   c.Latency,
		contrast:  c.Contrast != nil,
		possible:  slices.Clone(c.InputSources),
		reachable: kind == monitor.KindDDC || kind == monitor.KindOther,
	}
	m.hw.brightness = c.Brightness
	if c.Contrast != nil {
		m.hw.contrast = *c.Contrast
	}
	m.hw.inputSource = c.InputSource
	m.cached = m.hw
	return m, nil
}

// Reopen returns a fresh handle for the same monitor, as the OS reports
// after a display reconfiguration. The hardware values carry over; the new
// handle's cache starts from them.
func (m *Monitor) Reopen(reachable bool) *Monitor {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := &Monitor{
		identity:  m.identity,
		kind:      m.kind,
		latency:   m.latency,
		contrast:  m.contrast,
		possible:  slices.Clone(m.possible),
		reachable: reachable,
		hw:        m.hw,
		cached:    m.hw,
	}
	if !reachable && n.kind == monitor.KindDDC {
		n.kind = monitor.KindUnreachableExternal
	}
	return n
}

// Identity returns the monitor identity.
func (m *Monitor) Identity() monitor.Identity { return m.identity }

// Kind returns the handle kind.
func (m *Monitor) Kind() monitor.Kind { return m.kind }

// IsReachable reports whether the handle can be used for control.
func (m *Monitor) IsReachable() bool { return m.reachable }

// FailNext makes the next n hardware calls fail with status.
func (m *Monitor) FailNext(status monitor.AccessStatus, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for range n {
		m.failures = append(m.failures, status)
	}
}

// FailAlways makes every hardware call fail with status until Recover.
func (m *Monitor) FailAlways(status monitor.AccessStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.always = status
}

// Recover clears all injected failures.
func (m *Monitor) Recover() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = nil
	m.always = monitor.StatusNone
}

// SetCloseError makes Close return err.
func (m *Monitor) SetCloseError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeErr = err
}

// SetHardwareBrightness changes brightness as if through the monitor's own
// menu. The cached value follows on the next successful update.
func (m *Monitor) SetHardwareBrightness(v int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hw.brightness = v
}

// SetHardwareInputSource changes the active input as if switched manually.
func (m *Monitor) SetHardwareInputSource(v int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hw.inputSource = v
}

// Calls returns the number of hardware calls made.
func (m *Monitor) Calls() int64 { return m.calls.Load() }

// Overlaps returns how many hardware calls started while another was in
// flight.
func (m *Monitor) Overlaps() int64 { return m.overlaps.Load() }

// CloseCount returns how many times Close was called.
func (m *Monitor) CloseCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closes
}

// Closed reports whether Close was called.
func (m *Monitor) Closed() bool {
	return m.CloseCount() > 0
}

// attempt performs one simulated hardware call. apply runs with the
// monitor lock held when the call succeeds.
func (m *Monitor) attempt(apply func()) monitor.AccessResult {
	return m.try(func() monitor.AccessResult {
		apply()
		return monitor.Succeeded
	})
}

// try is attempt for calls the monitor itself may refuse: once the link
// works, apply decides the outcome.
func (m *Monitor) try(apply func() monitor.AccessResult) monitor.AccessResult {
	m.calls.Add(1)
	if m.inFlight.Add(1) > 1 {
		m.overlaps.Add(1)
	}
	defer m.inFlight.Add(-1)

	if m.latency > 0 {
		time.Sleep(m.latency)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	status := monitor.StatusSucceeded
	switch {
	case m.closes > 0:
		status = monitor.StatusNoLongerExist
	case !m.reachable:
		status = monitor.StatusFailed
	case len(m.failures) > 0:
		status = m.failures[0]
		m.failures = m.failures[1:]
	case m.always != monitor.StatusNone:
		status = m.always
	}
	if status != monitor.StatusSucceeded {
		return monitor.NewResult(status, "simulated "+status.String())
	}
	return apply()
}

func (m *Monitor) read(get func(v values) int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return get(m.cached)
}

// Brightness returns the cached brightness.
func (m *Monitor) Brightness() int {
	return m.read(func(v values) int { return v.brightness })
}

// SetBrightness writes brightness.
func (m *Monitor) SetBrightness(brightness int) monitor.AccessResult {
	return m.attempt(func() {
		m.hw.brightness = brightness
		m.cached.brightness = brightness
	})
}

// UpdateBrightness refreshes the cached brightness. A hint in 0..100 is
// taken as the value instead of reading the hardware.
func (m *Monitor) UpdateBrightness(hint int) monitor.AccessResult {
	return m.attempt(func() {
		if hint >= 0 && hint <= 100 {
			m.hw.brightness = hint
		}
		m.cached.brightness = m.hw.brightness
	})
}

// IsContrastSupported reports whether contrast is configured.
func (m *Monitor) IsContrastSupported() bool { return m.contrast }

// Contrast returns the cached contrast.
func (m *Monitor) Contrast() int {
	return m.read(func(v values) int { return v.contrast })
}

// SetContrast writes contrast.
func (m *Monitor) SetContrast(contrast int) monitor.AccessResult {
	return m.attempt(func() {
		m.hw.contrast = contrast
		m.cached.contrast = contrast
	})
}

// UpdateContrast refreshes the cached contrast.
func (m *Monitor) UpdateContrast() monitor.AccessResult {
	return m.attempt(func() { m.cached.contrast = m.hw.contrast })
}

// IsInputSourceSupported reports whether input sources are configured.
func (m *Monitor) IsInputSourceSupported() bool { return len(m.possible) > 0 }

// InputSourcePossibleValues returns the configured input source codes.
func (m *Monitor) InputSourcePossibleValues() []byte { return slices.Clone(m.possible) }

// InputSource returns the cached input source.
func (m *Monitor) InputSource() int {
	return m.read(func(v values) int { return v.inputSource })
}

// SetInputSource switches the input. Codes outside the possible values are
// rejected as the monitor would.
func (m *Monitor) SetInputSource(source int) monitor.AccessResult {
	return m.try(func() monitor.AccessResult {
		if source < 0 || source > 0xFF || !slices.Contains(m.possible, byte(source)) {
			return monitor.NewResult(monitor.StatusDdcFailed, "unsupported input source")
		}
		m.hw.inputSource = source
		m.cached.inputSource = source
		return monitor.Succeeded
	})
}

// UpdateInputSource refreshes the cached input source.
func (m *Monitor) UpdateInputSource() monitor.AccessResult {
	return m.attempt(func() { m.cached.inputSource = m.hw.inputSource })
}

// Close releases the handle.
func (m *Monitor) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closes++
	return m.closeErr
}

// Compile-time interface satisfaction check.
var _ monitor.Handle = (*Monitor)(nil)
