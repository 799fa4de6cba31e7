package control

import (
	"github.com/displayctl/displayctl-go/pkg/log"
	"github.com/displayctl/displayctl-go/pkg/monitor"
)

func readBrightness(h monitor.Handle) int { return h.Brightness() }
func readContrast(h monitor.Handle) int   { return h.Contrast() }

func gateContrast(h monitor.Handle) error {
	if !h.IsContrastSupported() {
		return ErrContrastUnsupported
	}
	return nil
}

// Brightness returns the cached raw brightness.
func (s *Session) Brightness() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle.Brightness()
}

// BrightnessPercentage returns the cached brightness as a position within
// the customized range.
func (s *Session) BrightnessPercentage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.custom.Range().Percentage(s.handle.Brightness())
}

// SetBrightness writes a raw brightness level. Writing the cached value is
// a no-op.
func (s *Session) SetBrightness(brightness int) error {
	return s.run(access{
		attr: monitor.AttributeBrightness,
		op:   log.OperationSet,
		target: func(h monitor.Handle) (int, bool) {
			return brightness, brightness == h.Brightness()
		},
		call: func(h monitor.Handle, v int) monitor.AccessResult { return h.SetBrightness(v) },
		read: readBrightness,
	})
}

// UpdateBrightness refreshes the cached brightness from the monitor. hint is
// passed through to the handle; a negative value means no hint.
func (s *Session) UpdateBrightness(hint int) error {
	return s.run(access{
		attr: monitor.AttributeBrightness,
		op:   log.OperationUpdate,
		call: func(h monitor.Handle, _ int) monitor.AccessResult { return h.UpdateBrightness(hint) },
		read: readBrightness,
	})
}

// IncrementBrightness steps brightness up by tickSize within the customized
// range. A non-positive tickSize uses the configured default. It does
// nothing while the range is being changed.
func (s *Session) IncrementBrightness(tickSize int, cyclic bool) error {
	return s.step(tickSize, cyclic, true)
}

// DecrementBrightness steps brightness down by tickSize within the
// customized range. A non-positive tickSize uses the configured default. It
// does nothing while the range is being changed.
func (s *Session) DecrementBrightness(tickSize int, cyclic bool) error {
	return s.step(tickSize, cyclic, false)
}

// StepBrightness steps brightness with the configured tick size and cycling.
func (s *Session) StepBrightness(up bool) error {
	return s.step(s.config.TickSize, s.config.Cyclic, up)
}

func (s *Session) step(tickSize int, cyclic, up bool) error {
	if tickSize <= 0 {
		tickSize = s.config.TickSize
	}
	return s.run(access{
		attr: monitor.AttributeBrightness,
		op:   log.OperationSet,
		target: func(h monitor.Handle) (int, bool) {
			if s.rangeChanging {
				return 0, true
			}
			current := h.Brightness()
			r := s.custom.Range()
			next := r.StepDown(current, tickSize, cyclic)
			if up {
				next = r.StepUp(current, tickSize, cyclic)
			}
			return next, next == current
		},
		call: func(h monitor.Handle, v int) monitor.AccessResult { return h.SetBrightness(v) },
		read: readBrightness,
	})
}

// IsContrastSupported reports whether the current handle supports contrast.
func (s *Session) IsContrastSupported() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle.IsContrastSupported()
}

// Contrast returns the cached raw contrast.
func (s *Session) Contrast() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle.Contrast()
}

// SetContrast writes a raw contrast level. Writing the cached value is a
// no-op. Returns ErrContrastUnsupported if the monitor has no contrast
// control.
func (s *Session) SetContrast(contrast int) error {
	return s.run(access{
		attr: monitor.AttributeContrast,
		op:   log.OperationSet,
		gate: gateContrast,
		target: func(h monitor.Handle) (int, bool) {
			return contrast, contrast == h.Contrast()
		},
		call: func(h monitor.Handle, v int) monitor.AccessResult { return h.SetContrast(v) },
		read: readContrast,
	})
}

// UpdateContrast refreshes the cached contrast from the monitor.
func (s *Session) UpdateContrast() error {
	return s.run(access{
		attr: monitor.AttributeContrast,
		op:   log.OperationUpdate,
		gate: gateContrast,
		call: func(h monitor.Handle, _ int) monitor.AccessResult { return h.UpdateContrast() },
		read: readContrast,
	})
}

// IsContrastChanging reports whether the contrast editor is active.
func (s *Session) IsContrastChanging() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contrastChanging
}

// SetContrastChanging toggles the contrast editor. Activating it refreshes
// the contrast from the monitor.
func (s *Session) SetContrastChanging(changing bool) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.contrastChanging == changing {
		s.mu.Unlock()
		return nil
	}
	s.contrastChanging = changing
	s.mu.Unlock()

	s.emit([]Event{s.event(PropertyContrastChanging, changing)})
	if changing {
		return s.UpdateContrast()
	}
	return nil
}
