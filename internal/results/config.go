package results

import (
	"fmt"

	"github.com/JaimeStill/examiner/pkg/settings"
)

// Config holds drawing-box normalization parameters in page-normalized
// units.
type Config struct {
	MaxMarkerSize     float64 `toml:"max_marker_size"`
	DefaultMarkerSize float64 `toml:"default_marker_size"`
	MarkerGap         float64 `toml:"marker_gap"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	MaxMarkerSize string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	settings.Merge(&c.MaxMarkerSize, overlay.MaxMarkerSize)
	settings.Merge(&c.DefaultMarkerSize, overlay.DefaultMarkerSize)
	settings.Merge(&c.MarkerGap, overlay.MarkerGap)
}

func (c *Config) loadDefaults() {
	settings.Default(&c.MaxMarkerSize, 0.25)
	settings.Default(&c.DefaultMarkerSize, 0.04)
	settings.Default(&c.MarkerGap, 0.01)
}

func (c *Config) loadEnv(env *Env) {
	settings.Env(&c.MaxMarkerSize, env.MaxMarkerSize)
}

func (c *Config) validate() error {
	if c.MaxMarkerSize <= 0 || c.MaxMarkerSize > 1 {
		return fmt.Errorf("max_marker_size must be in (0, 1]: %v", c.MaxMarkerSize)
	}
	if c.DefaultMarkerSize <= 0 || c.DefaultMarkerSize > c.MaxMarkerSize {
		return fmt.Errorf("default_marker_size must be in (0, max_marker_size]: %v", c.DefaultMarkerSize)
	}
	if c.MarkerGap < 0 {
		return fmt.Errorf("marker_gap must not be negative: %v", c.MarkerGap)
	}
	return nil
}
