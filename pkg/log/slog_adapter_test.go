package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/displayctl/displayctl-go/pkg/monitor"
)

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output %q: %v", buf.String(), err)
	}
	return entry
}

func TestSlogAdapterLogsAccessEvent(t *testing.T) {
	var buf bytes.Buffer
	slogger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	NewSlogAdapter(slogger).Log(accessEvent("sess-1", monitor.StatusTransmissionFailed))

	entry := decodeEntry(t, &buf)
	if entry["session_id"] != "sess-1" {
		t.Errorf("session_id: got %v", entry["session_id"])
	}
	if entry["status"] != "TRANSMISSION_FAILED" {
		t.Errorf("status: got %v", entry["status"])
	}
	if entry["attribute"] != "brightness" {
		t.Errorf("attribute: got %v", entry["attribute"])
	}
	if entry["level"] != "WARN" {
		t.Errorf("level: got %v, want WARN for failure", entry["level"])
	}
	if entry["value"] != float64(50) {
		t.Errorf("value: got %v", entry["value"])
	}
}

func TestSlogAdapterLogsStateChange(t *testing.T) {
	var buf bytes.Buffer
	slogger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	NewSlogAdapter(slogger).Log(Event{
		Timestamp: time.Now(),
		SessionID: "sess-2",
		Category:  CategoryState,
		StateChange: &StateChangeEvent{
			Entity:   StateEntityHandle,
			OldState: "a",
			NewState: "b",
		},
	})

	entry := decodeEntry(t, &buf)
	if entry["entity"] != "HANDLE" {
		t.Errorf("entity: got %v", entry["entity"])
	}
	if entry["level"] != "DEBUG" {
		t.Errorf("level: got %v", entry["level"])
	}
	if _, ok := entry["reason"]; ok {
		t.Error("empty reason should be omitted")
	}
}

type countingLogger struct{ n int }

func (c *countingLogger) Log(Event) { c.n++ }

func TestMultiLogger(t *testing.T) {
	a, b := &countingLogger{}, &countingLogger{}
	m := NewMultiLogger(a, nil, b, NoopLogger{})

	m.Log(Event{})
	m.Log(Event{})

	if a.n != 2 || b.n != 2 {
		t.Errorf("counts = %d, %d, want 2, 2", a.n, b.n)
	}
}

func TestParseCategory(t *testing.T) {
	if c, ok := ParseCategory("Access"); !ok || c != CategoryAccess {
		t.Errorf("ParseCategory(Access) = %v, %v", c, ok)
	}
	if _, ok := ParseCategory("frames"); ok {
		t.Error("ParseCategory(frames) should fail")
	}
}
