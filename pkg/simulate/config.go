package simulate

import (
	"errors"
	"fmt"
	"time"

	"github.com/displayctl/displayctl-go/pkg/monitor"
)

// ErrInvalidConfig is returned for an unusable monitor description.
var ErrInvalidConfig = errors.New("invalid simulated monitor config")

// Config describes one simulated monitor.
type Config struct {
	DeviceInstanceID string `yaml:"id"`
	Description      string `yaml:"description"`
	DisplayIndex     byte   `yaml:"display_index"`
	MonitorIndex     byte   `yaml:"monitor_index"`

	// Kind is one of ddc, other, unreachable-internal, unreachable-external.
	Kind string `yaml:"kind"`

	Brightness int `yaml:"brightness"`

	// Contrast is nil for monitors without contrast control.
	Contrast *int `yaml:"contrast,omitempty"`

	// InputSources lists the MCCS codes the monitor accepts. Empty means
	// input source selection is unsupported.
	InputSources []byte `yaml:"input_sources,omitempty"`
	InputSource  int    `yaml:"input_source,omitempty"`

	// Latency is added to every hardware call.
	Latency time.Duration `yaml:"latency,omitempty"`
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.DeviceInstanceID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidConfig)
	}
	if _, err := monitor.ParseKind(c.Kind); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Brightness < 0 || c.Brightness > 100 {
		return fmt.Errorf("%w: brightness %d", ErrInvalidConfig, c.Brightness)
	}
	if c.Contrast != nil && (*c.Contrast < 0 || *c.Contrast > 100) {
		return fmt.Errorf("%w: contrast %d", ErrInvalidConfig, *c.Contrast)
	}
	return nil
}

func (c Config) identity() monitor.Identity {
	return monitor.Identity{
		DeviceInstanceID: c.DeviceInstanceID,
		Description:      c.Description,
		DisplayIndex:     c.DisplayIndex,
		MonitorIndex:     c.MonitorIndex,
	}
}
