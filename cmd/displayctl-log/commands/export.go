package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/displayctl/displayctl-go/pkg/log"
)

// RunExport writes the matching events of path to w as jsonl or csv.
func RunExport(path, format string, filter log.Filter, w io.Writer) error {
	switch format {
	case "jsonl":
		return exportJSONL(path, filter, w)
	case "csv":
		return exportCSV(path, filter, w)
	default:
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}
}

func exportJSONL(path string, filter log.Filter, w io.Writer) error {
	encoder := json.NewEncoder(w)
	return forEach(path, filter, func(event log.Event) error {
		if err := encoder.Encode(event); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
		return nil
	})
}

var csvHeader = []string{
	"timestamp", "session_id", "device", "category",
	"operation", "attribute", "value", "status", "count", "duration_us", "detail",
}

func exportCSV(path string, filter log.Filter, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	return forEach(path, filter, func(event log.Event) error {
		row := make([]string, len(csvHeader))
		row[0] = event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
		row[1] = event.SessionID
		row[2] = event.DeviceInstanceID
		row[3] = event.Category.String()

		switch {
		case event.Access != nil:
			a := event.Access
			row[4] = a.Operation.String()
			row[5] = a.Attribute.String()
			if a.Value != nil {
				row[6] = strconv.Itoa(*a.Value)
			}
			row[7] = a.Status.String()
			row[8] = strconv.Itoa(int(a.Count))
			row[9] = strconv.FormatInt(a.Duration.Microseconds(), 10)
			row[10] = a.Message
		case event.StateChange != nil:
			row[10] = fmt.Sprintf("%s %s -> %s", event.StateChange.Entity, event.StateChange.OldState, event.StateChange.NewState)
		case event.Error != nil:
			row[10] = event.Error.Message
		}

		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
		return nil
	})
}
