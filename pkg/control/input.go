package control

import (
	"fmt"

	"github.com/displayctl/displayctl-go/pkg/inputsource"
	"github.com/displayctl/displayctl-go/pkg/log"
	"github.com/displayctl/displayctl-go/pkg/monitor"
)

func readInputSource(h monitor.Handle) int { return h.InputSource() }

// IsInputSourceSupported reports whether the current handle supports input
// source selection.
func (s *Session) IsInputSourceSupported() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle.IsInputSourceSupported()
}

// InputSource returns the cached raw input source code.
func (s *Session) InputSource() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle.InputSource()
}

// InputSources returns the catalog items built when switching was enabled.
func (s *Session) InputSources() []inputsource.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.Items()
}

// SelectedSource returns the catalog item matching the current input source.
func (s *Session) SelectedSource() (inputsource.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.Selected()
}

// IsInputSourceSwitching reports whether input source switching is enabled.
func (s *Session) IsInputSourceSwitching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inputSwitching
}

// SetInputSource switches the monitor to the given source code. Returns
// ErrInputSourceUnsupported or ErrSwitchingDisabled when switching is not
// possible. Writing the cached value is a no-op.
func (s *Session) SetInputSource(source int) error {
	return s.run(access{
		attr: monitor.AttributeInputSource,
		op:   log.OperationSet,
		gate: func(h monitor.Handle) error {
			if !h.IsInputSourceSupported() {
				return ErrInputSourceUnsupported
			}
			if !s.inputSwitching {
				return ErrSwitchingDisabled
			}
			return nil
		},
		target: func(h monitor.Handle) (int, bool) {
			return source, source == h.InputSource()
		},
		call:  func(h monitor.Handle, v int) monitor.AccessResult { return h.SetInputSource(v) },
		read:  readInputSource,
		after: s.selectCurrentLocked,
	})
}

// UpdateInputSource refreshes the cached input source from the monitor.
func (s *Session) UpdateInputSource() error {
	return s.run(access{
		attr: monitor.AttributeInputSource,
		op:   log.OperationUpdate,
		gate: func(h monitor.Handle) error {
			if !h.IsInputSourceSupported() {
				return ErrInputSourceUnsupported
			}
			return nil
		},
		call:  func(h monitor.Handle, _ int) monitor.AccessResult { return h.UpdateInputSource() },
		read:  readInputSource,
		after: s.selectCurrentLocked,
	})
}

// selectCurrentLocked moves the catalog selection to the current source.
func (s *Session) selectCurrentLocked(h monitor.Handle) []Event {
	current := h.InputSource()
	if current < 0 || current > 0xFF {
		return nil
	}
	item, ok := s.catalog.Lookup(byte(current))
	if !ok || !s.catalog.Select(item) {
		return nil
	}
	return []Event{s.event(PropertySelectedSource, item)}
}

// SetInputSourceSwitching enables or disables input source switching.
// Enabling it refreshes the current source from the monitor and rebuilds
// the catalog from the monitor's possible values, even if the refresh
// failed. Disabling it clears the catalog.
func (s *Session) SetInputSourceSwitching(enabled bool) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if enabled && !s.handle.IsInputSourceSupported() {
		s.mu.Unlock()
		return ErrInputSourceUnsupported
	}
	if s.inputSwitching == enabled {
		s.mu.Unlock()
		return nil
	}
	s.inputSwitching = enabled
	if !enabled {
		s.catalog.Clear()
	}
	s.mu.Unlock()

	s.captureState(log.StateEntityInputSwitching,
		fmt.Sprint(!enabled), fmt.Sprint(enabled), "")
	s.emit([]Event{s.event(PropertyInputSwitching, enabled)})
	if !enabled {
		s.emit([]Event{s.event(PropertyInputSourceItems, []inputsource.Item(nil))})
		return nil
	}

	updateErr := s.UpdateInputSource()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.catalog.Rebuild(s.handle.InputSourcePossibleValues(), s.handle.InputSource())
	events := []Event{s.event(PropertyInputSourceItems, s.catalog.Items())}
	if item, ok := s.catalog.Selected(); ok {
		events = append(events, s.event(PropertySelectedSource, item))
	}
	s.mu.Unlock()

	s.emit(events)
	return updateErr
}

// SelectSource switches the monitor to a catalog item. The selection moves
// once the monitor accepts the switch.
func (s *Session) SelectSource(item inputsource.Item) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if !s.inputSwitching {
		s.mu.Unlock()
		return ErrSwitchingDisabled
	}
	if _, ok := s.catalog.Lookup(item.ID); !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrInputSourceUnsupported, item)
	}
	s.mu.Unlock()

	return s.SetInputSource(int(item.ID))
}
