package simulate

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/displayctl/displayctl-go/pkg/monitor"
)

func intPtr(v int) *int { return &v }

func newDDC(t *testing.T) *Monitor {
	t.Helper()
	m, err := New(Config{
		DeviceInstanceID: "DISPLAY\\SIM0001",
		Description:      "Simulated",
		Kind:             "ddc",
		Brightness:       50,
		Contrast:         intPtr(70),
		InputSources:     []byte{0x0F, 0x11},
		InputSource:      0x0F,
	})
	require.NoError(t, err)
	return m
}

func TestConfigFromYAML(t *testing.T) {
	data := []byte(`
- id: DISPLAY\DEL40A3
  description: DELL U2720Q
  kind: ddc
  brightness: 60
  contrast: 75
  input_sources: [0x0F, 0x11, 0x12]
  input_source: 0x0F
  latency: 40ms
- id: DISPLAY\BOE0900
  kind: unreachable-internal
`)
	var configs []Config
	require.NoError(t, yaml.Unmarshal(data, &configs))
	require.Len(t, configs, 2)

	dell, err := New(configs[0])
	require.NoError(t, err)
	assert.Equal(t, monitor.KindDDC, dell.Kind())
	assert.True(t, dell.IsReachable())
	assert.Equal(t, 60, dell.Brightness())
	assert.True(t, dell.IsContrastSupported())
	assert.Equal(t, []byte{0x0F, 0x11, 0x12}, dell.InputSourcePossibleValues())
	assert.Equal(t, "DELL U2720Q", dell.Identity().Description)

	internal, err := New(configs[1])
	require.NoError(t, err)
	assert.False(t, internal.IsReachable())
	assert.False(t, internal.IsContrastSupported())
	assert.False(t, internal.IsInputSourceSupported())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"MissingID", Config{Kind: "ddc"}},
		{"UnknownKind", Config{DeviceInstanceID: "x", Kind: "usb"}},
		{"BrightnessRange", Config{DeviceInstanceID: "x", Brightness: 101}},
		{"ContrastRange", Config{DeviceInstanceID: "x", Contrast: intPtr(-1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestSetAndUpdate(t *testing.T) {
	m := newDDC(t)

	assert.True(t, m.SetBrightness(80).OK())
	assert.Equal(t, 80, m.Brightness())

	m.SetHardwareBrightness(20)
	assert.Equal(t, 80, m.Brightness(), "cache follows only on update")
	assert.True(t, m.UpdateBrightness(-1).OK())
	assert.Equal(t, 20, m.Brightness())

	assert.True(t, m.UpdateBrightness(35).OK())
	assert.Equal(t, 35, m.Brightness())

	assert.True(t, m.SetInputSource(0x11).OK())
	assert.Equal(t, 0x11, m.InputSource())

	r := m.SetInputSource(0x05)
	assert.Equal(t, monitor.StatusDdcFailed, r.Status)
	assert.Equal(t, 0x11, m.InputSource())
	assert.Equal(t, int64(6), m.Calls())
}

func TestFailureInjection(t *testing.T) {
	m := newDDC(t)

	m.FailNext(monitor.StatusTransmissionFailed, 2)
	assert.Equal(t, monitor.StatusTransmissionFailed, m.SetBrightness(10).Status)
	assert.Equal(t, monitor.StatusTransmissionFailed, m.UpdateContrast().Status)
	assert.True(t, m.SetBrightness(10).OK())

	m.FailAlways(monitor.StatusDdcFailed)
	for range 3 {
		r := m.UpdateBrightness(-1)
		assert.Equal(t, monitor.StatusDdcFailed, r.Status)
		assert.Equal(t, "simulated DDC_FAILED", r.Message)
	}

	m.Recover()
	assert.True(t, m.UpdateBrightness(-1).OK())
	assert.Equal(t, 10, m.Brightness())
}

func TestReopen(t *testing.T) {
	m := newDDC(t)
	require.True(t, m.SetBrightness(42).OK())

	fresh := m.Reopen(true)
	assert.Equal(t, m.Identity(), fresh.Identity())
	assert.Equal(t, 42, fresh.Brightness())
	assert.True(t, fresh.IsReachable())

	dead := m.Reopen(false)
	assert.False(t, dead.IsReachable())
	assert.Equal(t, monitor.KindUnreachableExternal, dead.Kind())
	assert.Equal(t, monitor.StatusFailed, dead.SetBrightness(1).Status)
}

func TestClose(t *testing.T) {
	m := newDDC(t)
	closeErr := errors.New("handle already released")
	m.SetCloseError(closeErr)

	assert.ErrorIs(t, m.Close(), closeErr)
	assert.True(t, m.Closed())
	assert.Equal(t, 1, m.CloseCount())
	assert.Equal(t, monitor.StatusNoLongerExist, m.UpdateBrightness(-1).Status)
}

func TestOverlapDetection(t *testing.T) {
	m, err := New(Config{DeviceInstanceID: "x", Kind: "ddc", Latency: 5 * time.Millisecond})
	require.NoError(t, err)

	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			m.SetBrightness(i)
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int64(4), m.Calls())
	assert.Positive(t, m.Overlaps())
}

func TestRejectedInputSourceIsAHardwareCall(t *testing.T) {
	m, err := New(Config{
		DeviceInstanceID: "x",
		Kind:             "ddc",
		InputSources:     []byte{0x0F, 0x11},
		InputSource:      0x0F,
		Latency:          5 * time.Millisecond,
	})
	require.NoError(t, err)

	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if i%2 == 0 {
				assert.Equal(t, monitor.StatusDdcFailed, m.SetInputSource(0x99).Status)
			} else {
				m.SetBrightness(i)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int64(4), m.Calls())
	assert.Positive(t, m.Overlaps())
	assert.Equal(t, 0x0F, m.InputSource())

	require.NoError(t, m.Close())
	assert.Equal(t, monitor.StatusNoLongerExist, m.SetInputSource(0x99).Status)
}
