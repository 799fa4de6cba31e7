package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFileConfigYAML(t *testing.T) {
	path := writeConfig(t, "monitors.yaml", `
store: state.db
tick_size: 10
cyclic: false
rescan:
  settle: 100ms
  max_backoff: 5s
monitors:
  - id: MON1
    description: Office
    kind: ddc
    brightness: 40
    contrast: 70
    input_sources: [0x0F, 0x11]
    input_source: 0x0F
    latency: 2ms
`)
	cfg, err := LoadFileConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "state.db", cfg.Store)
	assert.Equal(t, "info", cfg.LogLevel)
	require.Len(t, cfg.Monitors, 1)

	sim, err := cfg.Monitors[0].Simulated()
	require.NoError(t, err)
	assert.Equal(t, "MON1", sim.DeviceInstanceID)
	assert.Equal(t, []byte{0x0F, 0x11}, sim.InputSources)
	assert.Equal(t, 2*time.Millisecond, sim.Latency)
	require.NotNil(t, sim.Contrast)
	assert.Equal(t, 70, *sim.Contrast)

	cc := cfg.ControlConfig()
	assert.Equal(t, 10, cc.TickSize)
	assert.False(t, cc.Cyclic)

	rc := cfg.RescanWorkerConfig()
	assert.Equal(t, 100*time.Millisecond, rc.Settle)
	assert.Equal(t, 5*time.Second, rc.Backoff.Max)
}

func TestLoadFileConfigTOML(t *testing.T) {
	path := writeConfig(t, "monitors.toml", `
access_log = "access.cbor"
log_level = "debug"

[rescan]
timeout = "3s"

[[monitors]]
id = "MON1"
kind = "ddc"
brightness = 55

[[monitors]]
id = "PANEL"
kind = "other"
brightness = 80
`)
	cfg, err := LoadFileConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "access.cbor", cfg.AccessLog)
	assert.True(t, isDebug(cfg.LogLevel))
	assert.Equal(t, 3*time.Second, cfg.RescanWorkerConfig().ScanTimeout)

	monitors, err := cfg.SimulatedMonitors()
	require.NoError(t, err)
	require.Len(t, monitors, 2)
	assert.Equal(t, "PANEL", monitors[1].DeviceInstanceID)
	assert.Equal(t, 80, monitors[1].Brightness)

	// Unset values keep the defaults.
	assert.True(t, cfg.ControlConfig().Cyclic)
}

func TestLoadFileConfigErrors(t *testing.T) {
	t.Run("UnsupportedExtension", func(t *testing.T) {
		_, err := LoadFileConfig(writeConfig(t, "monitors.ini", "x=1"))
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := LoadFileConfig(filepath.Join(t.TempDir(), "none.yaml"))
		assert.Error(t, err)
	})

	t.Run("BadMonitor", func(t *testing.T) {
		_, err := LoadFileConfig(writeConfig(t, "bad.yaml", "monitors:\n  - id: X\n    kind: hdmi\n"))
		assert.Error(t, err)
	})

	t.Run("BadDuration", func(t *testing.T) {
		_, err := LoadFileConfig(writeConfig(t, "bad.toml", "[rescan]\nsettle = \"soon\"\n"))
		assert.Error(t, err)
	})

	t.Run("InputSourceOutOfRange", func(t *testing.T) {
		_, err := LoadFileConfig(writeConfig(t, "bad.yaml", "monitors:\n  - id: X\n    kind: ddc\n    input_sources: [300]\n"))
		assert.Error(t, err)
	})
}

func TestDefaultFileConfig(t *testing.T) {
	cfg := DefaultFileConfig()
	require.NoError(t, cfg.Validate())
	monitors, err := cfg.SimulatedMonitors()
	require.NoError(t, err)
	assert.Len(t, monitors, 2)
}

func TestApplyFlags(t *testing.T) {
	cfg := DefaultFileConfig()
	cfg.Store = "from-file.json"
	applyFlags(&cfg, Options{AccessLog: "a.cbor"})
	assert.Equal(t, "from-file.json", cfg.Store)
	assert.Equal(t, "a.cbor", cfg.AccessLog)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestParseLevel(t *testing.T) {
	assert.True(t, isDebug("DEBUG"))
	assert.False(t, isDebug("info"))
	assert.False(t, isDebug("bogus"))
}
