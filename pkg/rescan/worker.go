package rescan

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/displayctl/displayctl-go/pkg/control"
)

// ErrClosed is returned by Scan after Close.
var ErrClosed = errors.New("rescan worker closed")

// ScanFunc re-enumerates monitors and reconciles the registry.
type ScanFunc func(ctx context.Context) error

// State is the worker state.
type State uint8

const (
	// StateIdle means no scan is pending.
	StateIdle State = iota

	// StateSettling means a request arrived and the worker waits for more.
	StateSettling

	// StateScanning means a scan is running.
	StateScanning

	// StateBackingOff means the last scan failed and a retry is scheduled.
	StateBackingOff

	// StateClosed means the worker has been closed.
	StateClosed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateSettling:
		return "SETTLING"
	case StateScanning:
		return "SCANNING"
	case StateBackingOff:
		return "BACKING_OFF"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// Config configures a Worker.
type Config struct {
	// Settle is how long to wait after a request before scanning, so a
	// burst of failures leads to a single scan.
	Settle time.Duration

	// ScanTimeout bounds one scan.
	ScanTimeout time.Duration

	// Backoff controls retries of failed scans.
	Backoff BackoffConfig

	// OnScan is called after every scan attempt.
	OnScan func(attempt int, err error)

	// Logger is the optional logger for debug output.
	// If nil, logging is disabled.
	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Settle:      250 * time.Millisecond,
		ScanTimeout: 10 * time.Second,
		Backoff:     DefaultBackoffConfig(),
	}
}

// Worker runs scans in the background on request.
type Worker struct {
	mu     sync.RWMutex
	state  State
	config Config
	logger *slog.Logger

	scanFn  ScanFunc
	backoff *Backoff

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	requestCh chan struct{}

	requests atomic.Uint64
	scans    atomic.Uint64
	failures atomic.Uint64
	lastReq  atomic.Pointer[control.RescanRequest]
}

// NewWorker creates a worker. Call Start to begin processing requests.
func NewWorker(scanFn ScanFunc, config Config) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if config.ScanTimeout <= 0 {
		config.ScanTimeout = DefaultConfig().ScanTimeout
	}
	return &Worker{
		state:     StateIdle,
		config:    config,
		logger:    logger,
		scanFn:    scanFn,
		backoff:   NewBackoff(config.Backoff),
		ctx:       ctx,
		cancel:    cancel,
		requestCh: make(chan struct{}, 1),
	}
}

// Start starts the background loop. Must be called once.
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.loop()
}

// RequestRescan schedules a scan. It never blocks; requests made while one
// is pending are merged.
func (w *Worker) RequestRescan(req control.RescanRequest) {
	w.requests.Add(1)
	w.lastReq.Store(&req)
	w.trigger()
}

// Trigger schedules a scan without a failure behind it.
func (w *Worker) Trigger() {
	w.requests.Add(1)
	w.trigger()
}

func (w *Worker) trigger() {
	select {
	case w.requestCh <- struct{}{}:
	default:
		// Already pending
	}
}

// State returns the current state.
func (w *Worker) State() State {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}

// LastRequest returns the most recent failure-driven request.
func (w *Worker) LastRequest() (control.RescanRequest, bool) {
	req := w.lastReq.Load()
	if req == nil {
		return control.RescanRequest{}, false
	}
	return *req, true
}

// Stats returns the number of requests, scans and failed scans.
func (w *Worker) Stats() (requests, scans, failures uint64) {
	return w.requests.Load(), w.scans.Load(), w.failures.Load()
}

// Scan runs one scan synchronously, outside the background loop.
func (w *Worker) Scan(ctx context.Context) error {
	if w.State() == StateClosed {
		return ErrClosed
	}
	return w.scan(ctx)
}

// Close stops the background loop and waits for a running scan to finish.
func (w *Worker) Close() {
	w.mu.Lock()
	if w.state == StateClosed {
		w.mu.Unlock()
		return
	}
	w.state = StateClosed
	w.mu.Unlock()

	w.cancel()
	w.wg.Wait()
}

func (w *Worker) setState(s State) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateClosed {
		return false
	}
	if w.state != s {
		w.logger.Debug("rescan state", "old", w.state, "new", s)
	}
	w.state = s
	return true
}

func (w *Worker) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-w.requestCh:
			w.handleRequest()
		}
	}
}

// handleRequest settles, scans and retries until a scan succeeds, the
// worker closes, or a new request restarts the cycle.
func (w *Worker) handleRequest() {
	if !w.setState(StateSettling) || !w.sleep(w.config.Settle) {
		return
	}
	// Requests that arrived while settling are covered by this scan.
	select {
	case <-w.requestCh:
	default:
	}

	for {
		if !w.setState(StateScanning) {
			return
		}
		err := w.scan(w.ctx)
		if err == nil {
			w.backoff.Reset()
			w.setState(StateIdle)
			return
		}
		if w.ctx.Err() != nil {
			return
		}

		delay := w.backoff.Next()
		w.logger.Warn("rescan failed", "error", err, "retry_in", delay, "attempt", w.backoff.Attempts())
		if !w.setState(StateBackingOff) {
			return
		}
		select {
		case <-w.ctx.Done():
			return
		case <-w.requestCh:
			// A fresh request restarts the cycle with its own settle period.
			w.trigger()
			w.setState(StateIdle)
			return
		case <-time.After(delay):
		}
	}
}

func (w *Worker) scan(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, w.config.ScanTimeout)
	defer cancel()

	attempt := int(w.scans.Add(1))
	err := w.scanFn(ctx)
	if err != nil {
		w.failures.Add(1)
	} else {
		w.logger.Debug("rescan complete", "attempt", attempt)
	}
	if w.config.OnScan != nil {
		w.config.OnScan(attempt, err)
	}
	return err
}

func (w *Worker) sleep(d time.Duration) bool {
	if d <= 0 {
		return w.ctx.Err() == nil
	}
	select {
	case <-w.ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

// Compile-time interface satisfaction check.
var _ control.Rescanner = (*Worker)(nil)
