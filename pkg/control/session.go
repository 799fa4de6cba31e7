package control

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/displayctl/displayctl-go/pkg/confidence"
	"github.com/displayctl/displayctl-go/pkg/inputsource"
	"github.com/displayctl/displayctl-go/pkg/log"
	"github.com/displayctl/displayctl-go/pkg/monitor"
	"github.com/displayctl/displayctl-go/pkg/persistence"
)

// Session controls one physical monitor through its current handle.
// All methods are safe for concurrent use; hardware calls never overlap.
type Session struct {
	id       string
	identity monitor.Identity
	config   Config
	logger   *slog.Logger

	// placement is the identity reported by the current handle. Display
	// and monitor indices and bounds move with OS reconfiguration.
	placement atomic.Pointer[monitor.Identity]

	mu               sync.Mutex
	handle           monitor.Handle
	counter          *confidence.Counter
	custom           persistence.Customization
	catalog          *inputsource.Catalog
	rangeChanging    bool
	contrastChanging bool
	inputSwitching   bool
	closed           bool

	obsMu     sync.Mutex
	observers []observer
	nextObsID int
}

type observer struct {
	id int
	fn func(Event)
}

// state is the derived presentation state compared before and after an
// operation to decide which change events to emit.
type state struct {
	controllable bool
	reason       monitor.Reason
}

// NewSession creates a session owning the given handle. The stored
// customization for the monitor is loaded from config.Store; a missing or
// unreadable record falls back to the defaults.
func NewSession(h monitor.Handle, config Config) (*Session, error) {
	if h == nil {
		return nil, ErrInvalidHandle
	}
	identity := h.Identity()
	if identity.DeviceInstanceID == "" {
		return nil, fmt.Errorf("%w: empty device instance ID", ErrInvalidHandle)
	}

	config = config.withDefaults()
	s := &Session{
		id:       uuid.NewString(),
		identity: identity,
		config:   config,
		logger:   config.Logger.With("device", identity.DeviceInstanceID),
		handle:   h,
		counter:  confidence.New(),
		catalog:  inputsource.NewCatalog(),
	}
	s.placement.Store(&identity)

	custom, err := persistence.LoadOrDefault(config.Store, identity.DeviceInstanceID)
	if err != nil {
		s.logger.Warn("failed to load customization", "error", err)
		s.captureError(err, "load customization")
	}
	s.custom = custom

	s.captureState(log.StateEntitySession, "", "OPEN", identity.Description)
	s.logger.Debug("session opened", "session_id", s.id, "kind", h.Kind())
	return s, nil
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// Identity returns the monitor identity as reported by the current handle.
// DeviceInstanceID never changes; the other fields follow Replace.
func (s *Session) Identity() monitor.Identity {
	return *s.placement.Load()
}

// DeviceInstanceID returns the stable device identifier.
func (s *Session) DeviceInstanceID() string {
	return s.identity.DeviceInstanceID
}

// Kind returns the kind of the current handle.
func (s *Session) Kind() monitor.Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle.Kind()
}

// Controllable reports whether the monitor is reachable and the confidence
// counter is positive.
func (s *Session) Controllable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked().controllable
}

// Reason returns the diagnostic for an uncontrollable monitor.
func (s *Session) Reason() monitor.Reason {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked().reason
}

// Confidence returns a copy of the confidence counter state.
func (s *Session) Confidence() confidence.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counter.Snapshot()
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) stateLocked() state {
	if s.handle.IsReachable() && s.counter.Controllable() {
		return state{controllable: true, reason: monitor.ReasonNone}
	}
	return state{reason: monitor.ReasonFor(s.handle.Kind(), s.counter.Confirmed())}
}

func (s *Session) transitionEvents(before, after state) []Event {
	var events []Event
	if before.controllable != after.controllable {
		events = append(events, s.event(PropertyControllable, after.controllable))
	}
	if before.reason != after.reason {
		events = append(events, s.event(PropertyReason, after.reason))
	}
	return events
}

func (s *Session) event(p Property, value any) Event {
	return Event{DeviceInstanceID: s.identity.DeviceInstanceID, Property: p, Value: value}
}

// access describes one hardware operation run through the session protocol.
type access struct {
	attr monitor.Attribute
	op   log.Operation

	// gate rejects the operation before any hardware call.
	gate func(h monitor.Handle) error

	// target returns the value to write. skip makes the operation a
	// successful no-op.
	target func(h monitor.Handle) (value int, skip bool)

	call func(h monitor.Handle, value int) monitor.AccessResult
	read func(h monitor.Handle) int

	// after runs under the lock following a successful call.
	after func(h monitor.Handle) []Event
}

// run executes a under the session lock, folds the outcome into the
// confidence counter and emits the resulting events once unlocked.
func (s *Session) run(a access) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	h := s.handle
	if a.gate != nil {
		if err := a.gate(h); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	var value int
	if a.target != nil {
		v, skip := a.target(h)
		if skip {
			s.mu.Unlock()
			return nil
		}
		value = v
	}

	before := s.stateLocked()
	start := time.Now()
	result := a.call(h, value)
	elapsed := time.Since(start)

	var events []Event
	captured := &value
	if result.OK() {
		s.counter.RecordSuccess()
		value = a.read(h)
		events = append(events, s.event(propertyOf(a.attr), value))
		if a.after != nil {
			events = append(events, a.after(h)...)
		}
	} else {
		s.counter.RecordFailure()
		if a.op == log.OperationUpdate {
			captured = nil
		}
	}
	after := s.stateLocked()
	events = append(events, s.transitionEvents(before, after)...)
	count := s.counter.Count()
	s.mu.Unlock()

	s.config.AccessLogger.Log(log.Event{
		Timestamp:        start,
		SessionID:        s.id,
		DeviceInstanceID: s.identity.DeviceInstanceID,
		Category:         log.CategoryAccess,
		Access: &log.AccessEvent{
			Operation: a.op,
			Attribute: a.attr,
			Value:     captured,
			Status:    result.Status,
			Message:   result.Message,
			Duration:  elapsed,
			Count:     count,
		},
	})
	if before.controllable != after.controllable {
		s.captureState(log.StateEntityControllable,
			fmt.Sprint(before.controllable), fmt.Sprint(after.controllable), after.reason.String())
	}

	s.emit(events)

	if result.OK() {
		return nil
	}

	s.logger.Debug("access failed",
		"operation", a.op, "attribute", a.attr, "status", result.Status, "count", count)
	if s.config.OnAccessFailed != nil {
		s.config.OnAccessFailed(s, result)
	}
	if result.Status.RequiresRescan() && s.config.Rescanner != nil {
		s.config.Rescanner.RequestRescan(RescanRequest{
			DeviceInstanceID: s.identity.DeviceInstanceID,
			Attribute:        a.attr,
			Status:           result.Status,
			Time:             start,
		})
	}
	return fmt.Errorf("%s %s: %w", strings.ToLower(a.op.String()), a.attr, result.Err())
}

// Replace installs a fresh handle for the same monitor. An unreachable
// handle is disposed and the session keeps its current one; the return
// value reports whether the swap happened. The confidence counter,
// customization and input-source catalog are preserved.
func (s *Session) Replace(h monitor.Handle) (bool, error) {
	if h == nil {
		return false, ErrInvalidHandle
	}
	identity := h.Identity()
	if identity.DeviceInstanceID != s.identity.DeviceInstanceID {
		return false, fmt.Errorf("%w: %q", ErrIdentityMismatch, identity.DeviceInstanceID)
	}

	if !h.IsReachable() {
		s.dispose(h, "dispose rejected handle")
		s.logger.Debug("replacement handle unreachable, keeping current")
		return false, nil
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false, ErrClosed
	}
	if h == s.handle {
		s.mu.Unlock()
		return false, nil
	}
	before := s.stateLocked()
	old := s.handle
	s.handle = h
	s.placement.Store(&identity)
	s.dispose(old, "dispose replaced handle")
	after := s.stateLocked()
	events := []Event{s.event(PropertyHandle, h.Kind())}
	events = append(events, s.transitionEvents(before, after)...)
	s.mu.Unlock()

	s.captureState(log.StateEntityHandle, old.Kind().String(), h.Kind().String(), "replaced")
	s.logger.Debug("handle replaced", "kind", h.Kind())
	s.emit(events)
	return true, nil
}

// owns reports whether h is the session's current handle.
func (s *Session) owns(h monitor.Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle == h
}

// Close disposes the handle. Later operations return ErrClosed without
// touching hardware. Close is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.dispose(s.handle, "close session")
	s.mu.Unlock()

	s.captureState(log.StateEntitySession, "OPEN", "CLOSED", "")
	s.logger.Debug("session closed", "session_id", s.id)
}

// dispose closes a handle, logging and swallowing its error.
func (s *Session) dispose(h monitor.Handle, context string) {
	if err := h.Close(); err != nil {
		s.logger.Debug("handle close failed", "context", context, "error", err)
		s.captureError(err, context)
	}
}

// Subscribe registers fn to receive every event of this session, in order,
// on the goroutine that caused it. The returned function removes fn.
func (s *Session) Subscribe(fn func(Event)) (cancel func()) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	s.nextObsID++
	id := s.nextObsID
	s.observers = append(s.observers, observer{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.obsMu.Lock()
			defer s.obsMu.Unlock()
			s.observers = slices.DeleteFunc(s.observers, func(o observer) bool { return o.id == id })
		})
	}
}

func (s *Session) emit(events []Event) {
	if len(events) == 0 {
		return
	}
	s.obsMu.Lock()
	observers := slices.Clone(s.observers)
	s.obsMu.Unlock()

	for _, e := range events {
		for _, o := range observers {
			o.fn(e)
		}
	}
}

func (s *Session) captureState(entity log.StateEntity, oldState, newState, reason string) {
	s.config.AccessLogger.Log(log.Event{
		Timestamp:        time.Now(),
		SessionID:        s.id,
		DeviceInstanceID: s.identity.DeviceInstanceID,
		Category:         log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   entity,
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	})
}

func (s *Session) captureError(err error, context string) {
	s.config.AccessLogger.Log(log.Event{
		Timestamp:        time.Now(),
		SessionID:        s.id,
		DeviceInstanceID: s.identity.DeviceInstanceID,
		Category:         log.CategoryError,
		Error:            &log.ErrorEventData{Message: err.Error(), Context: context},
	})
}
