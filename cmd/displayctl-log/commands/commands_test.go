package commands

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/displayctl/displayctl-go/pkg/log"
	"github.com/displayctl/displayctl-go/pkg/monitor"
)

var t0 = time.Date(2026, 3, 14, 9, 26, 53, 589000000, time.UTC)

func intPtr(v int) *int { return &v }

func sampleEvents() []log.Event {
	return []log.Event{
		{
			Timestamp:        t0,
			SessionID:        "4b1f0c2e-aaaa-bbbb-cccc-000000000001",
			DeviceInstanceID: "DISPLAY\\DEL40A3",
			Category:         log.CategoryAccess,
			Access: &log.AccessEvent{
				Operation: log.OperationSet,
				Attribute: monitor.AttributeBrightness,
				Value:     intPtr(70),
				Status:    monitor.StatusSucceeded,
				Duration:  42 * time.Millisecond,
				Count:     5,
			},
		},
		{
			Timestamp:        t0.Add(time.Second),
			SessionID:        "4b1f0c2e-aaaa-bbbb-cccc-000000000001",
			DeviceInstanceID: "DISPLAY\\DEL40A3",
			Category:         log.CategoryAccess,
			Access: &log.AccessEvent{
				Operation: log.OperationUpdate,
				Attribute: monitor.AttributeContrast,
				Status:    monitor.StatusTransmissionFailed,
				Message:   "checksum mismatch",
				Count:     4,
			},
		},
		{
			Timestamp:        t0.Add(2 * time.Second),
			SessionID:        "77e0d9a1-aaaa-bbbb-cccc-000000000002",
			DeviceInstanceID: "DISPLAY\\BOE0900",
			Category:         log.CategoryState,
			StateChange: &log.StateChangeEvent{
				Entity:   log.StateEntityControllable,
				OldState: "true",
				NewState: "false",
				Reason:   "DDC not enabled",
			},
		},
		{
			Timestamp:        t0.Add(3 * time.Second),
			SessionID:        "77e0d9a1-aaaa-bbbb-cccc-000000000002",
			DeviceInstanceID: "DISPLAY\\BOE0900",
			Category:         log.CategoryError,
			Error:            &log.ErrorEventData{Message: "handle already destroyed", Context: "close session"},
		},
	}
}

func writeCapture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "access.dlog")
	logger, err := log.NewFileLogger(path)
	require.NoError(t, err)
	for _, e := range sampleEvents() {
		logger.Log(e)
	}
	require.NoError(t, logger.Close())
	return path
}

func TestRunView(t *testing.T) {
	path := writeCapture(t)

	var buf bytes.Buffer
	require.NoError(t, RunView(path, log.Filter{}, &buf))
	out := buf.String()

	assert.Contains(t, out, "2026-03-14T09:26:53.589000Z [session:4b1f0c2e] ACCESS SET brightness")
	assert.Contains(t, out, "  Device: DISPLAY\\DEL40A3")
	assert.Contains(t, out, "  Value: 70")
	assert.Contains(t, out, "  Duration: 42.000ms")
	assert.Contains(t, out, "  Status: TRANSMISSION_FAILED")
	assert.Contains(t, out, "  Message: checksum mismatch")
	assert.Contains(t, out, "  true -> false")
	assert.Contains(t, out, "  Reason: DDC not enabled")
	assert.Contains(t, out, "  Context: close session")
}

func TestRunViewFiltered(t *testing.T) {
	path := writeCapture(t)

	filter, err := FilterOptions{FailuresOnly: true}.Build()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, RunView(path, filter, &buf))
	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "[session:"))
	assert.Contains(t, out, "UPDATE contrast")
}

func TestFilterOptionsBuild(t *testing.T) {
	f, err := FilterOptions{
		Category:  "access",
		Status:    "ddc",
		TimeStart: "2026-03-14T00:00:00Z",
	}.Build()
	require.NoError(t, err)
	require.NotNil(t, f.Category)
	assert.Equal(t, log.CategoryAccess, *f.Category)
	require.NotNil(t, f.Status)
	assert.Equal(t, monitor.StatusDdcFailed, *f.Status)
	require.NotNil(t, f.TimeStart)

	_, err = FilterOptions{Category: "frames"}.Build()
	assert.Error(t, err)
	_, err = FilterOptions{Status: "broken"}.Build()
	assert.Error(t, err)
	_, err = FilterOptions{TimeEnd: "yesterday"}.Build()
	assert.Error(t, err)
}

func TestCollectStats(t *testing.T) {
	path := writeCapture(t)

	stats, err := Collect(path, log.Filter{})
	require.NoError(t, err)

	assert.Equal(t, 4, stats.TotalEvents)
	assert.Equal(t, 2, stats.EventsByCategory[log.CategoryAccess])
	assert.Equal(t, 1, stats.AccessByStatus[monitor.StatusSucceeded])
	assert.Equal(t, 1, stats.AccessByStatus[monitor.StatusTransmissionFailed])
	assert.Equal(t, 1, stats.Errors)
	require.Len(t, stats.Devices, 2)

	dell := stats.Devices["DISPLAY\\DEL40A3"]
	assert.Equal(t, 2, dell.Accesses)
	assert.Equal(t, 1, dell.Failures)
	assert.Equal(t, "TRANSMISSION_FAILED: checksum mismatch", dell.LastFailureText)

	boe := stats.Devices["DISPLAY\\BOE0900"]
	assert.Equal(t, 1, boe.LostControl)
	assert.Equal(t, 3*time.Second, stats.TimeRange.End.Sub(stats.TimeRange.Start))

	var buf bytes.Buffer
	require.NoError(t, RunStats(path, log.Filter{}, &buf))
	assert.Contains(t, buf.String(), "Total Events: 4")
	assert.Contains(t, buf.String(), "Became uncontrollable: 1 times")
}

func TestRunExport(t *testing.T) {
	path := writeCapture(t)

	t.Run("CSV", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, RunExport(path, "csv", log.Filter{}, &buf))

		rows, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 5)
		assert.Equal(t, csvHeader, rows[0])
		assert.Equal(t, []string{
			"2026-03-14T09:26:53.589000Z",
			"4b1f0c2e-aaaa-bbbb-cccc-000000000001",
			"DISPLAY\\DEL40A3",
			"ACCESS",
			"SET",
			"brightness",
			"70",
			"SUCCEEDED",
			"5",
			"42000",
			"",
		}, rows[1])
		assert.Equal(t, "CONTROLLABLE true -> false", rows[3][10])
	})

	t.Run("JSONL", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, RunExport(path, "jsonl", log.Filter{}, &buf))
		assert.Equal(t, 4, strings.Count(buf.String(), "\n"))
	})

	t.Run("UnknownFormat", func(t *testing.T) {
		var buf bytes.Buffer
		assert.Error(t, RunExport(path, "xml", log.Filter{}, &buf))
	})
}

func TestRunFilter(t *testing.T) {
	path := writeCapture(t)
	out := filepath.Join(t.TempDir(), "boe.dlog")

	n, err := RunFilter(path, out, log.Filter{DeviceInstanceID: "DISPLAY\\BOE0900"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	stats, err := Collect(out, log.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalEvents)
	assert.Len(t, stats.Devices, 1)
}
