package control

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/displayctl/displayctl-go/pkg/monitor"
)

// Registry owns the sessions of all known monitors, keyed by device
// instance ID.
type Registry struct {
	config Config
	logger *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session

	obsMu     sync.Mutex
	observers []observer
	nextObsID int

	failures atomic.Uint64
	rescans  atomic.Uint64
}

// SyncResult reports what Sync did, by device instance ID.
type SyncResult struct {
	Added    []string
	Replaced []string
	Rejected []string
	Removed  []string
}

// NewRegistry creates an empty registry. config.Rescanner receives the
// rescan requests of all sessions; config.OnAccessFailed is called after the
// registry has logged a failure.
func NewRegistry(config Config) *Registry {
	config = config.withDefaults()
	return &Registry{
		config:   config,
		logger:   config.Logger,
		sessions: make(map[string]*Session),
	}
}

// sessionConfig is the configuration handed to the registry's sessions.
func (r *Registry) sessionConfig() Config {
	c := r.config
	c.Rescanner = r
	c.OnAccessFailed = r.accessFailed
	return c
}

// Add creates a session for a newly reported monitor.
func (r *Registry) Add(h monitor.Handle) (*Session, error) {
	if h == nil {
		return nil, ErrInvalidHandle
	}
	id := h.Identity().DeviceInstanceID

	r.mu.Lock()
	if _, exists := r.sessions[id]; exists {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %q", ErrAlreadyRegistered, id)
	}
	s, err := NewSession(h, r.sessionConfig())
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	r.sessions[id] = s
	r.mu.Unlock()

	s.Subscribe(r.dispatch)
	r.logger.Info("monitor added", "device", id, "description", s.identity.Description, "kind", h.Kind())
	return s, nil
}

// Get returns the session for a device.
func (r *Registry) Get(deviceInstanceID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[deviceInstanceID]
	return s, ok
}

// Sessions returns all sessions ordered by display and monitor index.
func (r *Registry) Sessions() []*Session {
	r.mu.RLock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b *Session) int {
		ai, bi := a.Identity(), b.Identity()
		if c := cmp.Compare(ai.DisplayIndex, bi.DisplayIndex); c != 0 {
			return c
		}
		if c := cmp.Compare(ai.MonitorIndex, bi.MonitorIndex); c != 0 {
			return c
		}
		return cmp.Compare(ai.DeviceInstanceID, bi.DeviceInstanceID)
	})
	return out
}

// Len returns the number of sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Replace hands a fresh OS handle to the session of the same device. An
// unreachable handle is disposed and false is returned. For an unknown
// device ErrUnknownMonitor is returned and the handle is left to the
// caller.
func (r *Registry) Replace(deviceInstanceID string, h monitor.Handle) (bool, error) {
	s, ok := r.Get(deviceInstanceID)
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownMonitor, deviceInstanceID)
	}
	replaced, err := s.Replace(h)
	if err != nil {
		return false, err
	}
	if replaced {
		r.logger.Info("monitor handle replaced", "device", deviceInstanceID)
	} else {
		r.logger.Info("replacement handle rejected", "device", deviceInstanceID)
	}
	return replaced, nil
}

// Remove closes and drops the session of a device.
func (r *Registry) Remove(deviceInstanceID string) error {
	r.mu.Lock()
	s, ok := r.sessions[deviceInstanceID]
	delete(r.sessions, deviceInstanceID)
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownMonitor, deviceInstanceID)
	}
	s.Close()
	r.logger.Info("monitor removed", "device", deviceInstanceID)
	return nil
}

// Sync reconciles the registry with the result of a monitor scan: unknown
// devices are added, known ones get their handle replaced and devices
// missing from handles are removed.
func (r *Registry) Sync(handles []monitor.Handle) SyncResult {
	var result SyncResult
	seen := make(map[string]bool, len(handles))

	for _, h := range handles {
		if h == nil {
			continue
		}
		id := h.Identity().DeviceInstanceID
		seen[id] = true

		current, ok := r.Get(id)
		if ok && current.owns(h) {
			continue
		}
		if !ok {
			if _, err := r.Add(h); err != nil {
				r.logger.Warn("failed to add monitor", "device", id, "error", err)
				r.discard(h)
				continue
			}
			result.Added = append(result.Added, id)
			continue
		}

		replaced, err := r.Replace(id, h)
		switch {
		case err != nil:
			r.logger.Warn("failed to replace monitor handle", "device", id, "error", err)
			r.discard(h)
		case replaced:
			result.Replaced = append(result.Replaced, id)
		default:
			result.Rejected = append(result.Rejected, id)
		}
	}

	r.mu.RLock()
	var gone []string
	for id := range r.sessions {
		if !seen[id] {
			gone = append(gone, id)
		}
	}
	r.mu.RUnlock()

	slices.Sort(gone)
	for _, id := range gone {
		if err := r.Remove(id); err == nil {
			result.Removed = append(result.Removed, id)
		}
	}
	return result
}

// discard closes a scanned handle no session took over. Close errors are
// logged and dropped.
func (r *Registry) discard(h monitor.Handle) {
	if err := h.Close(); err != nil {
		r.logger.Debug("failed to close discarded handle", "device", h.Identity().DeviceInstanceID, "error", err)
	}
}

// RequestRescan forwards a rescan request to the configured Rescanner.
// The registry never retries hardware calls itself.
func (r *Registry) RequestRescan(req RescanRequest) {
	r.rescans.Add(1)
	r.logger.Info("rescan requested",
		"device", req.DeviceInstanceID, "attribute", req.Attribute, "status", req.Status)
	if r.config.Rescanner != nil {
		r.config.Rescanner.RequestRescan(req)
	}
}

func (r *Registry) accessFailed(s *Session, result monitor.AccessResult) {
	r.failures.Add(1)
	r.logger.Warn("monitor access failed",
		"device", s.identity.DeviceInstanceID, "status", result.Status, "message", result.Message)
	if r.config.OnAccessFailed != nil {
		r.config.OnAccessFailed(s, result)
	}
}

// Stats returns the number of failed accesses and rescan requests seen.
func (r *Registry) Stats() (failures, rescans uint64) {
	return r.failures.Load(), r.rescans.Load()
}

// Subscribe registers fn to receive the events of every session, including
// sessions added later. The returned function removes fn.
func (r *Registry) Subscribe(fn func(Event)) (cancel func()) {
	r.obsMu.Lock()
	defer r.obsMu.Unlock()
	r.nextObsID++
	id := r.nextObsID
	r.observers = append(r.observers, observer{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			r.obsMu.Lock()
			defer r.obsMu.Unlock()
			r.observers = slices.DeleteFunc(r.observers, func(o observer) bool { return o.id == id })
		})
	}
}

func (r *Registry) dispatch(e Event) {
	r.obsMu.Lock()
	observers := slices.Clone(r.observers)
	r.obsMu.Unlock()
	for _, o := range observers {
		o.fn(e)
	}
}

// Close closes every session and empties the registry.
func (r *Registry) Close() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}

// Compile-time interface satisfaction check.
var _ Rescanner = (*Registry)(nil)
