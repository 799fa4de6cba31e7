package main

import (
	"io"
	"log/slog"
	"strings"

	clog "github.com/charmbracelet/log"
)

// newLogger creates the diagnostic logger. The returned *clog.Logger lets
// the caller redirect output once the interactive shell owns the terminal.
func newLogger(w io.Writer, level string) (*slog.Logger, *clog.Logger) {
	clogger := clog.NewWithOptions(w, clog.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.000",
		Level:           parseLevel(level),
		Prefix:          "displayctl",
	})
	return slog.New(clogger), clogger
}

// parseLevel converts a string level to clog.Level.
func parseLevel(level string) clog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return clog.DebugLevel
	case "warn", "warning":
		return clog.WarnLevel
	case "error":
		return clog.ErrorLevel
	default:
		return clog.InfoLevel
	}
}

func isDebug(level string) bool {
	return parseLevel(level) == clog.DebugLevel
}

