package rescan

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/displayctl/displayctl-go/pkg/control"
	"github.com/displayctl/displayctl-go/pkg/monitor"
)

func TestBackoff(t *testing.T) {
	t.Run("DefaultSequence", func(t *testing.T) {
		b := NewBackoff(DefaultBackoffConfig())

		expected := []time.Duration{
			500 * time.Millisecond,
			1 * time.Second,
			2 * time.Second,
			4 * time.Second,
			8 * time.Second,
			16 * time.Second,
			30 * time.Second,
			30 * time.Second, // stays at max
		}

		for i, exp := range expected {
			base := b.Current()
			delay := b.Next()
			if base != exp {
				t.Errorf("attempt %d: base = %v, want %v", i, base, exp)
			}
			if delay < base || delay > base+time.Duration(float64(base)*JitterFactor) {
				t.Errorf("attempt %d: delay %v outside jitter window of %v", i, delay, base)
			}
		}
	})

	t.Run("Reset", func(t *testing.T) {
		b := NewBackoff(DefaultBackoffConfig())
		for range 5 {
			b.Next()
		}
		if b.Attempts() != 5 {
			t.Errorf("Attempts() = %d, want 5", b.Attempts())
		}

		b.Reset()
		if b.Current() != InitialBackoff {
			t.Errorf("Current() = %v after reset, want %v", b.Current(), InitialBackoff)
		}
		if b.Attempts() != 0 {
			t.Errorf("Attempts() = %d after reset, want 0", b.Attempts())
		}
	})

	t.Run("CustomConfig", func(t *testing.T) {
		b := NewBackoff(BackoffConfig{
			Initial:    10 * time.Millisecond,
			Max:        35 * time.Millisecond,
			Multiplier: 2,
		})

		expected := []time.Duration{
			10 * time.Millisecond,
			20 * time.Millisecond,
			35 * time.Millisecond,
			35 * time.Millisecond,
		}
		for i, exp := range expected {
			if got := b.Next(); got != exp {
				t.Errorf("attempt %d: got %v, want %v", i, got, exp)
			}
		}
	})

	t.Run("ZeroConfigUsesDefaults", func(t *testing.T) {
		b := NewBackoff(BackoffConfig{})
		if b.Current() != InitialBackoff {
			t.Errorf("Current() = %v, want %v", b.Current(), InitialBackoff)
		}
	})
}

func testConfig() Config {
	return Config{
		Settle:      20 * time.Millisecond,
		ScanTimeout: time.Second,
		Backoff: BackoffConfig{
			Initial:    5 * time.Millisecond,
			Max:        20 * time.Millisecond,
			Multiplier: 2,
		},
	}
}

func TestWorkerCoalescesRequests(t *testing.T) {
	var scans atomic.Int32
	w := NewWorker(func(context.Context) error {
		scans.Add(1)
		return nil
	}, testConfig())
	w.Start()
	defer w.Close()

	for range 10 {
		w.RequestRescan(control.RescanRequest{
			DeviceInstanceID: "A",
			Status:           monitor.StatusTransmissionFailed,
		})
	}

	require.Eventually(t, func() bool { return scans.Load() >= 1 }, time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return w.State() == StateIdle }, time.Second, time.Millisecond)
	assert.Equal(t, int32(1), scans.Load())

	requests, total, failures := w.Stats()
	assert.Equal(t, uint64(10), requests)
	assert.Equal(t, uint64(1), total)
	assert.Zero(t, failures)

	last, ok := w.LastRequest()
	require.True(t, ok)
	assert.Equal(t, monitor.StatusTransmissionFailed, last.Status)
}

func TestWorkerRetriesFailedScan(t *testing.T) {
	var calls atomic.Int32
	var attempts []int
	cfg := testConfig()
	cfg.OnScan = func(attempt int, err error) { attempts = append(attempts, attempt) }

	w := NewWorker(func(context.Context) error {
		if calls.Add(1) < 3 {
			return errors.New("enumeration failed")
		}
		return nil
	}, cfg)
	w.Start()
	defer w.Close()

	w.Trigger()

	require.Eventually(t, func() bool { return calls.Load() == 3 && w.State() == StateIdle },
		time.Second, time.Millisecond)
	_, scans, failures := w.Stats()
	assert.Equal(t, uint64(3), scans)
	assert.Equal(t, uint64(2), failures)
	assert.Zero(t, w.backoff.Attempts())
	assert.Equal(t, []int{1, 2, 3}, attempts)
}

func TestWorkerClose(t *testing.T) {
	started := make(chan struct{})
	w := NewWorker(func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}, Config{})
	w.Start()
	w.Trigger()

	<-started
	w.Close()
	w.Close()

	assert.Equal(t, StateClosed, w.State())
	assert.ErrorIs(t, w.Scan(context.Background()), ErrClosed)
}

func TestWorkerScanSync(t *testing.T) {
	w := NewWorker(func(context.Context) error { return nil }, Config{})
	require.NoError(t, w.Scan(context.Background()))
	_, scans, _ := w.Stats()
	assert.Equal(t, uint64(1), scans)
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateIdle, "IDLE"},
		{StateSettling, "SETTLING"},
		{StateScanning, "SCANNING"},
		{StateBackingOff, "BACKING_OFF"},
		{StateClosed, "CLOSED"},
		{State(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
