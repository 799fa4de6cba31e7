package simulate

import (
	"errors"
	"fmt"
	"sync"

	"github.com/displayctl/displayctl-go/pkg/monitor"
)

// ErrUnknownMonitor is returned for an ID not in the fleet.
var ErrUnknownMonitor = errors.New("unknown simulated monitor")

// Fleet stands in for OS monitor enumeration. Every scan hands out fresh
// handles for the monitors currently plugged in, as the OS does after a
// display reconfiguration.
type Fleet struct {
	mu      sync.Mutex
	order   []string
	entries map[string]*fleetEntry
	scans   int
}

type fleetEntry struct {
	current *Monitor
	present bool
}

// NewFleet creates a fleet with one plugged-in monitor per configuration.
func NewFleet(configs []Config) (*Fleet, error) {
	f := &Fleet{entries: make(map[string]*fleetEntry, len(configs))}
	for _, c := range configs {
		if _, dup := f.entries[c.DeviceInstanceID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidConfig, c.DeviceInstanceID)
		}
		m, err := New(c)
		if err != nil {
			return nil, fmt.Errorf("monitor %q: %w", c.DeviceInstanceID, err)
		}
		f.order = append(f.order, c.DeviceInstanceID)
		f.entries[c.DeviceInstanceID] = &fleetEntry{current: m, present: true}
	}
	return f, nil
}

// Handles returns the current handles of plugged-in monitors without
// reopening them.
func (f *Fleet) Handles() []monitor.Handle {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []monitor.Handle
	for _, id := range f.order {
		if e := f.entries[id]; e.present {
			out = append(out, e.current)
		}
	}
	return out
}

// Scan reopens every plugged-in monitor and returns the fresh handles.
func (f *Fleet) Scan() []monitor.Handle {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scans++
	var out []monitor.Handle
	for _, id := range f.order {
		e := f.entries[id]
		if !e.present {
			continue
		}
		e.current = e.current.Reopen(true)
		out = append(out, e.current)
	}
	return out
}

// Scans returns how many times Scan was called.
func (f *Fleet) Scans() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.scans
}

// Monitor returns the latest handle handed out for id.
func (f *Fleet) Monitor(id string) (*Monitor, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[id]
	if !ok {
		return nil, false
	}
	return e.current, true
}

// Reopen returns a fresh handle for id outside a scan. A reachable handle
// becomes the current one.
func (f *Fleet) Reopen(id string, reachable bool) (*Monitor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMonitor, id)
	}
	m := e.current.Reopen(reachable)
	if reachable {
		e.current = m
	}
	return m, nil
}

// SetPresent plugs a monitor in or out. Unplugged monitors are left out of
// scans and their current handle reports NoLongerExist.
func (f *Fleet) SetPresent(id string, present bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownMonitor, id)
	}
	e.present = present
	if present {
		e.current.Recover()
	} else {
		e.current.FailAlways(monitor.StatusNoLongerExist)
	}
	return nil
}
