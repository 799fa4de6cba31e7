package control

import (
	"fmt"
	"strings"

	"github.com/displayctl/displayctl-go/pkg/levelrange"
	"github.com/displayctl/displayctl-go/pkg/persistence"
)

// Name returns the user-assigned name, or the OS description if none.
func (s *Session) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.custom.Name != "" {
		return s.custom.Name
	}
	return s.Identity().Description
}

// SetName assigns a display name. A blank name restores the OS description.
func (s *Session) SetName(name string) error {
	name = strings.TrimSpace(name)
	return s.customize(PropertyName, func(c *persistence.Customization) (any, bool) {
		if c.Name == name {
			return nil, false
		}
		c.Name = name
		if name == "" {
			return s.Identity().Description, true
		}
		return name, true
	})
}

// IsUnison reports whether the monitor follows unison brightness changes.
func (s *Session) IsUnison() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.custom.IsUnison
}

// SetUnison sets whether the monitor follows unison brightness changes.
func (s *Session) SetUnison(unison bool) error {
	return s.customize(PropertyUnison, func(c *persistence.Customization) (any, bool) {
		if c.IsUnison == unison {
			return nil, false
		}
		c.IsUnison = unison
		return unison, true
	})
}

// Range returns the customized brightness range.
func (s *Session) Range() levelrange.Range {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.custom.Range()
}

// SetRange sets the customized brightness range.
func (s *Session) SetRange(r levelrange.Range) error {
	if err := r.Validate(); err != nil {
		return err
	}
	return s.customize(PropertyRange, func(c *persistence.Customization) (any, bool) {
		if c.Range() == r {
			return nil, false
		}
		c.RangeLowest, c.RangeHighest = r.Lowest, r.Highest
		return r, true
	})
}

// IsRangeChanging reports whether the range editor is active.
func (s *Session) IsRangeChanging() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rangeChanging
}

// SetRangeChanging toggles the range editor. Brightness stepping is
// suspended while it is active.
func (s *Session) SetRangeChanging(changing bool) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.rangeChanging == changing {
		s.mu.Unlock()
		return nil
	}
	s.rangeChanging = changing
	s.mu.Unlock()

	s.emit([]Event{s.event(PropertyRangeChanging, changing)})
	return nil
}

// Customization returns a copy of the customization record.
func (s *Session) Customization() persistence.Customization {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.custom
}

// customize applies edit to a copy of the customization, persists it and
// emits an event with the returned value. The in-memory record is only
// changed when the store accepts it.
func (s *Session) customize(p Property, edit func(c *persistence.Customization) (any, bool)) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	updated := s.custom
	value, changed := edit(&updated)
	if !changed {
		s.mu.Unlock()
		return nil
	}
	if s.config.Store != nil {
		if err := s.config.Store.Save(s.identity.DeviceInstanceID, updated); err != nil {
			s.mu.Unlock()
			s.captureError(err, "save customization")
			return fmt.Errorf("save %s: %w", p, err)
		}
	}
	s.custom = updated
	s.mu.Unlock()

	s.emit([]Event{s.event(p, value)})
	return nil
}
