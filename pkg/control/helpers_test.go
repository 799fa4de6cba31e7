package control

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/displayctl/displayctl-go/pkg/log"
	"github.com/displayctl/displayctl-go/pkg/monitor"
	"github.com/displayctl/displayctl-go/pkg/persistence"
	"github.com/displayctl/displayctl-go/pkg/simulate"
)

// ---------------------------------------------------------------------------
// stubHandle
// ---------------------------------------------------------------------------

type stubHandle struct{ mock.Mock }

func (h *stubHandle) Identity() monitor.Identity { return h.Called().Get(0).(monitor.Identity) }
func (h *stubHandle) Kind() monitor.Kind         { return h.Called().Get(0).(monitor.Kind) }
func (h *stubHandle) IsReachable() bool          { return h.Called().Bool(0) }
func (h *stubHandle) Brightness() int            { return h.Called().Int(0) }
func (h *stubHandle) SetBrightness(v int) monitor.AccessResult {
	return h.Called(v).Get(0).(monitor.AccessResult)
}
func (h *stubHandle) UpdateBrightness(hint int) monitor.AccessResult {
	return h.Called(hint).Get(0).(monitor.AccessResult)
}
func (h *stubHandle) IsContrastSupported() bool { return h.Called().Bool(0) }
func (h *stubHandle) Contrast() int             { return h.Called().Int(0) }
func (h *stubHandle) SetContrast(v int) monitor.AccessResult {
	return h.Called(v).Get(0).(monitor.AccessResult)
}
func (h *stubHandle) UpdateContrast() monitor.AccessResult {
	return h.Called().Get(0).(monitor.AccessResult)
}
func (h *stubHandle) IsInputSourceSupported() bool { return h.Called().Bool(0) }
func (h *stubHandle) InputSourcePossibleValues() []byte {
	ret := h.Called()
	if ret.Get(0) == nil {
		return nil
	}
	return ret.Get(0).([]byte)
}
func (h *stubHandle) InputSource() int { return h.Called().Int(0) }
func (h *stubHandle) SetInputSource(v int) monitor.AccessResult {
	return h.Called(v).Get(0).(monitor.AccessResult)
}
func (h *stubHandle) UpdateInputSource() monitor.AccessResult {
	return h.Called().Get(0).(monitor.AccessResult)
}
func (h *stubHandle) Close() error { return h.Called().Error(0) }

// newStubHandle returns a reachable DDC stub with brightness 50 and no
// contrast or input source support.
func newStubHandle(id string) *stubHandle {
	h := &stubHandle{}
	h.On("Identity").Return(monitor.Identity{DeviceInstanceID: id, Description: "Stub"}).Maybe()
	h.On("Kind").Return(monitor.KindDDC).Maybe()
	h.On("IsReachable").Return(true).Maybe()
	h.On("Brightness").Return(50).Maybe()
	h.On("IsContrastSupported").Return(false).Maybe()
	h.On("IsInputSourceSupported").Return(false).Maybe()
	h.On("Close").Return(nil).Maybe()
	return h
}

// ---------------------------------------------------------------------------
// stubRescanner
// ---------------------------------------------------------------------------

type stubRescanner struct{ mock.Mock }

func (r *stubRescanner) RequestRescan(req RescanRequest) { r.Called(req) }

// ---------------------------------------------------------------------------
// stubStore
// ---------------------------------------------------------------------------

type stubStore struct{ mock.Mock }

func (s *stubStore) Load(id string) (persistence.Customization, error) {
	ret := s.Called(id)
	return ret.Get(0).(persistence.Customization), ret.Error(1)
}
func (s *stubStore) Save(id string, c persistence.Customization) error {
	return s.Called(id, c).Error(0)
}

// ---------------------------------------------------------------------------
// recorders
// ---------------------------------------------------------------------------

type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) record(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *eventRecorder) take() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.events
	r.events = nil
	return out
}

func (r *eventRecorder) properties() []Property {
	var out []Property
	for _, e := range r.take() {
		out = append(out, e.Property)
	}
	return out
}

type captureRecorder struct {
	mu     sync.Mutex
	events []log.Event
}

func (c *captureRecorder) Log(e log.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *captureRecorder) byCategory(cat log.Category) []log.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []log.Event
	for _, e := range c.events {
		if e.Category == cat {
			out = append(out, e)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// simulated monitors
// ---------------------------------------------------------------------------

func intPtr(v int) *int { return &v }

func newSimulated(t *testing.T, id string, mutate ...func(c *simulate.Config)) *simulate.Monitor {
	t.Helper()
	c := simulate.Config{
		DeviceInstanceID: id,
		Description:      "Simulated " + id,
		Kind:             "ddc",
		Brightness:       50,
	}
	for _, fn := range mutate {
		fn(&c)
	}
	m, err := simulate.New(c)
	require.NoError(t, err)
	return m
}

func newTestSession(t *testing.T, h monitor.Handle, cfg Config) (*Session, *eventRecorder) {
	t.Helper()
	s, err := NewSession(h, cfg)
	require.NoError(t, err)
	rec := &eventRecorder{}
	s.Subscribe(rec.record)
	return s, rec
}
