package log

import (
	"os"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// FileLogger appends events to a CBOR capture file. Safe for concurrent use.
type FileLogger struct {
	path string

	mu      sync.Mutex
	file    *os.File
	enc     *cbor.Encoder
	written int
	dropped int
}

// NewFileLogger opens path for appending, creating it with mode 0644.
func NewFileLogger(path string) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return &FileLogger{path: path, file: f, enc: NewEncoder(f)}, nil
}

// Path returns the capture file path.
func (l *FileLogger) Path() string { return l.path }

// Log appends the event. Encoding errors are counted, never returned:
// capture must not disrupt monitor access. Events logged after Close are
// dropped.
func (l *FileLogger) Log(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil || l.enc.Encode(event) != nil {
		l.dropped++
		return
	}
	l.written++
}

// Counts returns how many events were written and dropped so far.
func (l *FileLogger) Counts() (written, dropped int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.written, l.dropped
}

// Close closes the file. Further calls are no-ops.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// Compile-time interface satisfaction check.
var _ Logger = (*FileLogger)(nil)
