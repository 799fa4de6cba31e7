package log

import (
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/displayctl/displayctl-go/pkg/monitor"
)

func createTestLogFile(t *testing.T, events []Event) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.alog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create test log: %v", err)
	}

	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

func readAll(t *testing.T, r *Reader) []Event {
	t.Helper()
	var read []Event
	for {
		event, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		read = append(read, event)
	}
	return read
}

func accessEvent(session string, status monitor.AccessStatus) Event {
	v := 50
	return Event{
		Timestamp:        time.Now(),
		SessionID:        session,
		DeviceInstanceID: "mon-" + session,
		Category:         CategoryAccess,
		Access: &AccessEvent{
			Operation: OperationSet,
			Attribute: monitor.AttributeBrightness,
			Value:     &v,
			Status:    status,
			Duration:  3 * time.Millisecond,
			Count:     5,
		},
	}
}

func TestReaderIteratesEvents(t *testing.T) {
	events := []Event{
		accessEvent("s1", monitor.StatusSucceeded),
		accessEvent("s2", monitor.StatusDdcFailed),
		{
			Timestamp: time.Now(),
			SessionID: "s3",
			Category:  CategoryState,
			StateChange: &StateChangeEvent{
				Entity:   StateEntityControllable,
				OldState: "true",
				NewState: "false",
				Reason:   "DDC failing",
			},
		},
	}

	path := createTestLogFile(t, events)

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	read := readAll(t, reader)
	if len(read) != 3 {
		t.Fatalf("got %d events, want 3", len(read))
	}

	if read[0].SessionID != "s1" || read[2].SessionID != "s3" {
		t.Errorf("events out of order: %q, %q", read[0].SessionID, read[2].SessionID)
	}

	acc := read[1].Access
	if acc == nil {
		t.Fatal("Access payload missing")
	}
	if acc.Status != monitor.StatusDdcFailed || acc.Attribute != monitor.AttributeBrightness {
		t.Errorf("Access = %+v", acc)
	}
	if acc.Value == nil || *acc.Value != 50 {
		t.Errorf("Value = %v, want 50", acc.Value)
	}
	if acc.Duration != 3*time.Millisecond {
		t.Errorf("Duration = %v, want 3ms", acc.Duration)
	}

	sc := read[2].StateChange
	if sc == nil || sc.Entity != StateEntityControllable || sc.NewState != "false" {
		t.Errorf("StateChange = %+v", sc)
	}
}

func TestReaderFilters(t *testing.T) {
	events := []Event{
		accessEvent("s1", monitor.StatusSucceeded),
		accessEvent("s1", monitor.StatusTransmissionFailed),
		accessEvent("s2", monitor.StatusFailed),
		{Timestamp: time.Now(), SessionID: "s1", Category: CategoryError, Error: &ErrorEventData{Message: "close failed"}},
	}
	path := createTestLogFile(t, events)

	t.Run("BySession", func(t *testing.T) {
		r, err := NewFilteredReader(path, Filter{SessionID: "s1"})
		if err != nil {
			t.Fatal(err)
		}
		defer r.Close()
		if got := len(readAll(t, r)); got != 3 {
			t.Errorf("got %d events, want 3", got)
		}
	})

	t.Run("FailuresOnly", func(t *testing.T) {
		r, err := NewFilteredReader(path, Filter{FailuresOnly: true})
		if err != nil {
			t.Fatal(err)
		}
		defer r.Close()
		if got := len(readAll(t, r)); got != 2 {
			t.Errorf("got %d events, want 2", got)
		}
	})

	t.Run("ByStatus", func(t *testing.T) {
		status := monitor.StatusTransmissionFailed
		r, err := NewFilteredReader(path, Filter{Status: &status})
		if err != nil {
			t.Fatal(err)
		}
		defer r.Close()
		read := readAll(t, r)
		if len(read) != 1 || read[0].SessionID != "s1" {
			t.Errorf("got %+v", read)
		}
	})

	t.Run("ByCategory", func(t *testing.T) {
		cat := CategoryError
		r, err := NewFilteredReader(path, Filter{Category: &cat})
		if err != nil {
			t.Fatal(err)
		}
		defer r.Close()
		read := readAll(t, r)
		if len(read) != 1 || read[0].Error == nil {
			t.Errorf("got %+v", read)
		}
	})

	t.Run("TimeWindow", func(t *testing.T) {
		future := time.Now().Add(time.Hour)
		r, err := NewFilteredReader(path, Filter{TimeStart: &future})
		if err != nil {
			t.Fatal(err)
		}
		defer r.Close()
		if got := len(readAll(t, r)); got != 0 {
			t.Errorf("got %d events, want 0", got)
		}
	})
}

func TestFileLoggerConcurrentAndClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.alog")
	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				logger.Log(accessEvent("s", monitor.StatusSucceeded))
			}
		}()
	}
	wg.Wait()

	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	logger.Log(accessEvent("late", monitor.StatusSucceeded))

	if written, dropped := logger.Counts(); written != 200 || dropped != 1 {
		t.Errorf("Counts() = %d, %d, want 200, 1", written, dropped)
	}
	if logger.Path() != path {
		t.Errorf("Path() = %q", logger.Path())
	}

	r, err := NewReader(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if got := len(readAll(t, r)); got != 200 {
		t.Errorf("got %d events, want 200", got)
	}
}

func TestEncodeDecodeEvent(t *testing.T) {
	in := accessEvent("s1", monitor.StatusNoLongerExist)
	in.Access.Message = "handle closed"

	data, err := EncodeEvent(in)
	if err != nil {
		t.Fatalf("EncodeEvent() error = %v", err)
	}
	out, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent() error = %v", err)
	}
	if !out.Timestamp.Equal(in.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", out.Timestamp, in.Timestamp)
	}
	if out.Access == nil || out.Access.Message != "handle closed" || out.Access.Status != monitor.StatusNoLongerExist {
		t.Errorf("Access = %+v", out.Access)
	}
}

func TestDecodeEventRejectsDamagedRecords(t *testing.T) {
	// {2: "a", 2: "b"}: session ID key repeated.
	dup := []byte{0xA2, 0x02, 0x61, 'a', 0x02, 0x61, 'b'}
	if _, err := DecodeEvent(dup); err == nil {
		t.Error("DecodeEvent() accepted a duplicate key")
	}

	// Indefinite-length map header, never written by FileLogger.
	indef := []byte{0xBF, 0x02, 0x61, 'a', 0xFF}
	if _, err := DecodeEvent(indef); err == nil {
		t.Error("DecodeEvent() accepted an indefinite-length map")
	}

	// A map claiming 2^32 pairs in a few bytes.
	huge := []byte{0xBA, 0xFF, 0xFF, 0xFF, 0xFF}
	if _, err := DecodeEvent(huge); err == nil {
		t.Error("DecodeEvent() accepted an oversized map")
	}
}

func TestEncodeEventDeterministic(t *testing.T) {
	in := accessEvent("s1", monitor.StatusDdcFailed)
	a, err := EncodeEvent(in)
	if err != nil {
		t.Fatal(err)
	}
	b, err := EncodeEvent(in)
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(b) {
		t.Errorf("encodings differ: %x vs %x", a, b)
	}
}
