// Package commands implements the displayctl-log CLI commands.
package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/displayctl/displayctl-go/pkg/log"
)

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")

	var typeLabel string
	switch {
	case event.Access != nil:
		typeLabel = event.Access.Operation.String() + " " + event.Access.Attribute.String()
	case event.StateChange != nil:
		typeLabel = "State"
	case event.Error != nil:
		typeLabel = "Error"
	default:
		typeLabel = "Unknown"
	}

	fmt.Fprintf(w, "%s [session:%s] %-6s %s\n", ts, shortenID(event.SessionID), event.Category, typeLabel)
	if event.DeviceInstanceID != "" {
		fmt.Fprintf(w, "  Device: %s\n", event.DeviceInstanceID)
	}

	switch {
	case event.Access != nil:
		formatAccessDetails(w, event.Access)
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w)
}

// shortenID returns the first 8 characters of a session ID.
func shortenID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatAccessDetails(w io.Writer, a *log.AccessEvent) {
	fmt.Fprintf(w, "  Status: %s\n", a.Status)
	if a.Value != nil {
		fmt.Fprintf(w, "  Value: %d\n", *a.Value)
	}
	if a.Message != "" {
		fmt.Fprintf(w, "  Message: %s\n", a.Message)
	}
	if a.Duration > 0 {
		fmt.Fprintf(w, "  Duration: %s\n", formatDuration(a.Duration))
	}
	fmt.Fprintf(w, "  Confidence: %d\n", a.Count)
}

func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	fmt.Fprintf(w, "  Entity: %s\n", sc.Entity)
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

func formatErrorDetails(w io.Writer, e *log.ErrorEventData) {
	fmt.Fprintf(w, "  Message: %s\n", e.Message)
	if e.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", e.Context)
	}
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.3fus", float64(d.Nanoseconds())/1000)
	}
	if d < time.Second {
		return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}

// RunView prints the matching events of path to output.
func RunView(path string, filter log.Filter, output io.Writer) error {
	return forEach(path, filter, func(event log.Event) error {
		formatEvent(output, event)
		return nil
	})
}
