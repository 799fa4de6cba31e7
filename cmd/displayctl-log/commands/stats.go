package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/displayctl/displayctl-go/pkg/log"
	"github.com/displayctl/displayctl-go/pkg/monitor"
)

// Stats holds aggregate statistics about a capture file.
type Stats struct {
	TotalEvents      int
	EventsByCategory map[log.Category]int
	AccessByStatus   map[monitor.AccessStatus]int
	Devices          map[string]*DeviceStats
	Errors           int
	TimeRange        struct {
		Start time.Time
		End   time.Time
	}
}

// DeviceStats holds statistics for a single monitor.
type DeviceStats struct {
	FirstSeen       time.Time
	LastSeen        time.Time
	Accesses        int
	Failures        int
	LostControl     int
	Sessions        map[string]bool
	TotalDuration   time.Duration
	LastFailureText string
}

// Collect reads path and aggregates statistics over the matching events.
func Collect(path string, filter log.Filter) (*Stats, error) {
	stats := &Stats{
		EventsByCategory: make(map[log.Category]int),
		AccessByStatus:   make(map[monitor.AccessStatus]int),
		Devices:          make(map[string]*DeviceStats),
	}

	err := forEach(path, filter, func(event log.Event) error {
		stats.TotalEvents++
		stats.EventsByCategory[event.Category]++

		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}

		dev, ok := stats.Devices[event.DeviceInstanceID]
		if !ok {
			dev = &DeviceStats{
				FirstSeen: event.Timestamp,
				LastSeen:  event.Timestamp,
				Sessions:  make(map[string]bool),
			}
			stats.Devices[event.DeviceInstanceID] = dev
		}
		if event.Timestamp.After(dev.LastSeen) {
			dev.LastSeen = event.Timestamp
		}
		dev.Sessions[event.SessionID] = true

		switch {
		case event.Access != nil:
			stats.AccessByStatus[event.Access.Status]++
			dev.Accesses++
			dev.TotalDuration += event.Access.Duration
			if event.Access.Status.IsFailure() {
				dev.Failures++
				dev.LastFailureText = event.Access.Status.String()
				if event.Access.Message != "" {
					dev.LastFailureText += ": " + event.Access.Message
				}
			}
		case event.StateChange != nil:
			if event.StateChange.Entity == log.StateEntityControllable && event.StateChange.NewState == "false" {
				dev.LostControl++
			}
		case event.Error != nil:
			stats.Errors++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// RunStats analyzes the capture file and prints statistics.
func RunStats(path string, filter log.Filter, w io.Writer) error {
	stats, err := Collect(path, filter)
	if err != nil {
		return err
	}
	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Monitor Access Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryAccess, log.CategoryState, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-22s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Accesses by Status:")
	for _, s := range []monitor.AccessStatus{
		monitor.StatusSucceeded,
		monitor.StatusFailed,
		monitor.StatusDdcFailed,
		monitor.StatusTransmissionFailed,
		monitor.StatusNoLongerExist,
	} {
		if count := stats.AccessByStatus[s]; count > 0 {
			fmt.Fprintf(w, "  %-22s %d\n", s.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Monitors: %d\n", len(stats.Devices))
	ids := make([]string, 0, len(stats.Devices))
	for id := range stats.Devices {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		d := stats.Devices[id]
		fmt.Fprintf(w, "\n  %s\n", id)
		fmt.Fprintf(w, "    Sessions: %d, accesses: %d, failures: %d\n", len(d.Sessions), d.Accesses, d.Failures)
		if d.Accesses > 0 {
			fmt.Fprintf(w, "    Average access: %s\n", formatDuration(d.TotalDuration/time.Duration(d.Accesses)))
		}
		if d.LostControl > 0 {
			fmt.Fprintf(w, "    Became uncontrollable: %d times\n", d.LostControl)
		}
		if d.LastFailureText != "" {
			fmt.Fprintf(w, "    Last failure: %s\n", d.LastFailureText)
		}
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
