package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes events to an slog.Logger.
// Useful for development when you want to see monitor access in the console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event at Debug level. Failed accesses are logged at Warn.
func (a *SlogAdapter) Log(event Event) {
	level := slog.LevelDebug
	attrs := []slog.Attr{
		slog.String("session_id", event.SessionID),
		slog.String("category", event.Category.String()),
	}

	if event.DeviceInstanceID != "" {
		attrs = append(attrs, slog.String("device", event.DeviceInstanceID))
	}

	switch {
	case event.Access != nil:
		attrs = append(attrs,
			slog.String("operation", event.Access.Operation.String()),
			slog.String("attribute", event.Access.Attribute.String()),
			slog.String("status", event.Access.Status.String()),
			slog.Int("count", int(event.Access.Count)),
		)
		if event.Access.Value != nil {
			attrs = append(attrs, slog.Int("value", *event.Access.Value))
		}
		if event.Access.Duration > 0 {
			attrs = append(attrs, slog.Duration("duration", event.Access.Duration))
		}
		if event.Access.Message != "" {
			attrs = append(attrs, slog.String("message", event.Access.Message))
		}
		if event.Access.Status.IsFailure() {
			level = slog.LevelWarn
		}
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Error != nil:
		level = slog.LevelWarn
		attrs = append(attrs,
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
	}

	a.logger.LogAttrs(context.Background(), level, "monitor access", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
