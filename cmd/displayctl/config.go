package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/displayctl/displayctl-go/pkg/control"
	"github.com/displayctl/displayctl-go/pkg/rescan"
	"github.com/displayctl/displayctl-go/pkg/simulate"
)

// Supported configuration file extensions.
const (
	FileExtYAML = ".yaml"
	FileExtYML  = ".yml"
	FileExtTOML = ".toml"
)

// ErrUnsupportedFormat is returned for a config file with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported config file format")

// duration reads Go duration strings ("250ms", "2s") from YAML and TOML.
type duration time.Duration

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = duration(v)
	return nil
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// FileConfig is the on-disk configuration of displayctl.
type FileConfig struct {
	Store     string `yaml:"store" toml:"store"`
	AccessLog string `yaml:"access_log" toml:"access_log"`
	LogLevel  string `yaml:"log_level" toml:"log_level"`

	// TickSize and Cyclic control brightness stepping.
	TickSize int   `yaml:"tick_size" toml:"tick_size"`
	Cyclic   *bool `yaml:"cyclic" toml:"cyclic"`

	Rescan   RescanConfig    `yaml:"rescan" toml:"rescan"`
	Monitors []MonitorConfig `yaml:"monitors" toml:"monitors"`
}

// RescanConfig tunes the background rescan worker.
type RescanConfig struct {
	Settle     duration `yaml:"settle" toml:"settle"`
	Timeout    duration `yaml:"timeout" toml:"timeout"`
	MaxBackoff duration `yaml:"max_backoff" toml:"max_backoff"`
}

// MonitorConfig describes one simulated monitor.
type MonitorConfig struct {
	ID           string   `yaml:"id" toml:"id"`
	Description  string   `yaml:"description" toml:"description"`
	DisplayIndex byte     `yaml:"display_index" toml:"display_index"`
	MonitorIndex byte     `yaml:"monitor_index" toml:"monitor_index"`
	Kind         string   `yaml:"kind" toml:"kind"`
	Brightness   int      `yaml:"brightness" toml:"brightness"`
	Contrast     *int     `yaml:"contrast" toml:"contrast"`
	InputSources []int    `yaml:"input_sources" toml:"input_sources"`
	InputSource  int      `yaml:"input_source" toml:"input_source"`
	Latency      duration `yaml:"latency" toml:"latency"`
}

// DefaultFileConfig returns the configuration used without a config file:
// one DDC monitor with contrast and input switching, one laptop panel.
func DefaultFileConfig() FileConfig {
	contrast := 50
	return FileConfig{
		LogLevel: "info",
		TickSize: control.DefaultConfig().TickSize,
		Monitors: []MonitorConfig{
			{
				ID:           `DISPLAY\DEL41A8\4&1`,
				Description:  "Dell U2720Q",
				DisplayIndex: 1,
				MonitorIndex: 1,
				Kind:         "ddc",
				Brightness:   60,
				Contrast:     &contrast,
				InputSources: []int{0x0F, 0x11, 0x12},
				InputSource:  0x0F,
			},
			{
				ID:           `DISPLAY\SHP14D0\4&2`,
				Description:  "Built-in Display",
				DisplayIndex: 2,
				MonitorIndex: 1,
				Kind:         "other",
				Brightness:   80,
			},
		},
	}
}

// LoadFileConfig reads a YAML or TOML config file, chosen by extension.
// Fields absent from the file keep their defaults; a non-empty monitors
// list replaces the default monitors.
func LoadFileConfig(path string) (FileConfig, error) {
	cfg := DefaultFileConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	var file FileConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case FileExtYAML, FileExtYML:
		err = yaml.Unmarshal(data, &file)
	case FileExtTOML:
		err = toml.Unmarshal(data, &file)
	default:
		return cfg, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.merge(file)
	return cfg, cfg.Validate()
}

func (c *FileConfig) merge(f FileConfig) {
	if f.Store != "" {
		c.Store = f.Store
	}
	if f.AccessLog != "" {
		c.AccessLog = f.AccessLog
	}
	if f.LogLevel != "" {
		c.LogLevel = f.LogLevel
	}
	if f.TickSize != 0 {
		c.TickSize = f.TickSize
	}
	if f.Cyclic != nil {
		c.Cyclic = f.Cyclic
	}
	if f.Rescan != (RescanConfig{}) {
		c.Rescan = f.Rescan
	}
	if len(f.Monitors) > 0 {
		c.Monitors = f.Monitors
	}
}

// Validate checks the configuration.
func (c FileConfig) Validate() error {
	if c.TickSize < 0 {
		return fmt.Errorf("tick_size must not be negative, got %d", c.TickSize)
	}
	for _, m := range c.Monitors {
		if _, err := m.Simulated(); err != nil {
			return err
		}
	}
	return nil
}

// Simulated converts the monitor description for the simulator.
func (m MonitorConfig) Simulated() (simulate.Config, error) {
	sources := make([]byte, 0, len(m.InputSources))
	for _, s := range m.InputSources {
		if s < 0 || s > 0xFF {
			return simulate.Config{}, fmt.Errorf("monitor %q: input source %d out of range", m.ID, s)
		}
		sources = append(sources, byte(s))
	}
	c := simulate.Config{
		DeviceInstanceID: m.ID,
		Description:      m.Description,
		DisplayIndex:     m.DisplayIndex,
		MonitorIndex:     m.MonitorIndex,
		Kind:             m.Kind,
		Brightness:       m.Brightness,
		Contrast:         m.Contrast,
		InputSources:     sources,
		InputSource:      m.InputSource,
		Latency:          time.Duration(m.Latency),
	}
	return c, c.Validate()
}

// SimulatedMonitors converts all monitor descriptions.
func (c FileConfig) SimulatedMonitors() ([]simulate.Config, error) {
	out := make([]simulate.Config, 0, len(c.Monitors))
	for _, m := range c.Monitors {
		sc, err := m.Simulated()
		if err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, nil
}

// ControlConfig returns the session configuration, without store, rescanner
// or loggers.
func (c FileConfig) ControlConfig() control.Config {
	cc := control.DefaultConfig()
	if c.TickSize > 0 {
		cc.TickSize = c.TickSize
	}
	if c.Cyclic != nil {
		cc.Cyclic = *c.Cyclic
	}
	return cc
}

// RescanWorkerConfig returns the rescan worker configuration, without logger.
func (c FileConfig) RescanWorkerConfig() rescan.Config {
	rc := rescan.DefaultConfig()
	if c.Rescan.Settle > 0 {
		rc.Settle = time.Duration(c.Rescan.Settle)
	}
	if c.Rescan.Timeout > 0 {
		rc.ScanTimeout = time.Duration(c.Rescan.Timeout)
	}
	if c.Rescan.MaxBackoff > 0 {
		rc.Backoff.Max = time.Duration(c.Rescan.MaxBackoff)
	}
	return rc
}
