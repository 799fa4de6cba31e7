// Package log provides structured capture of monitor access events.
//
// This package defines the Logger interface and Event types for recording
// every hardware access attempt and every controllability transition of a
// monitor session. It is separate from operational logging (slog): access
// capture provides a complete machine-readable trace for diagnosing flaky
// monitors after the fact.
//
// # Basic Usage
//
// Applications configure capture by providing a Logger implementation:
//
//	// For development: log to console via slog
//	cfg.AccessLogger = log.NewSlogAdapter(slog.Default())
//
//	// For production: write to binary file
//	cfg.AccessLogger, _ = log.NewFileLogger("/var/log/displayctl/access.alog")
//
//	// Both: use MultiLogger
//	cfg.AccessLogger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # Event Types
//
//   - Access: one hardware attempt (AccessEvent)
//   - State: controllability, handle and session lifecycle (StateChangeEvent)
//   - Error: failures outside a hardware attempt (ErrorEventData)
//
// # File Format
//
// Capture files are a stream of CBOR-encoded events with integer keys. The
// displayctl-log tool provides viewing, statistics, and export.
package log
