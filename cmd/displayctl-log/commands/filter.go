package commands

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/displayctl/displayctl-go/pkg/log"
	"github.com/displayctl/displayctl-go/pkg/monitor"
)

// FilterOptions holds the filter flags shared by all commands.
type FilterOptions struct {
	SessionID    string
	Device       string
	Category     string
	Status       string
	FailuresOnly bool
	TimeStart    string
	TimeEnd      string
}

// Build converts the flag values into a log.Filter.
func (o FilterOptions) Build() (log.Filter, error) {
	filter := log.Filter{
		SessionID:        o.SessionID,
		DeviceInstanceID: o.Device,
		FailuresOnly:     o.FailuresOnly,
	}

	if o.Category != "" {
		c, ok := log.ParseCategory(o.Category)
		if !ok {
			return filter, fmt.Errorf("invalid category: %s (must be access, state, or error)", o.Category)
		}
		filter.Category = &c
	}

	if o.Status != "" {
		s, err := monitor.ParseAccessStatus(o.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &s
	}

	if o.TimeStart != "" {
		t, err := time.Parse(time.RFC3339, o.TimeStart)
		if err != nil {
			return filter, fmt.Errorf("invalid time-start format: %w", err)
		}
		filter.TimeStart = &t
	}

	if o.TimeEnd != "" {
		t, err := time.Parse(time.RFC3339, o.TimeEnd)
		if err != nil {
			return filter, fmt.Errorf("invalid time-end format: %w", err)
		}
		filter.TimeEnd = &t
	}

	return filter, nil
}

// forEach calls fn for every event in path matching filter.
func forEach(path string, filter log.Filter, fn func(log.Event) error) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open capture file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := fn(event); err != nil {
			return err
		}
	}
}

// RunFilter copies the matching events of path into a new capture file and
// returns how many were written.
func RunFilter(path, output string, filter log.Filter) (int, error) {
	logger, err := log.NewFileLogger(output)
	if err != nil {
		return 0, fmt.Errorf("failed to create output file: %w", err)
	}
	defer logger.Close()

	count := 0
	err = forEach(path, filter, func(event log.Event) error {
		logger.Log(event)
		count++
		return nil
	})
	return count, err
}
