package clustering

import (
	"fmt"

	"github.com/JaimeStill/examiner/pkg/settings"
)

// Config holds the density and merge parameters for block clustering.
type Config struct {
	Radius             float64 `toml:"radius"`
	MinPoints          int     `toml:"min_points"`
	MaxMergeIterations int     `toml:"max_merge_iterations"`
	FusionOverlap      float64 `toml:"fusion_overlap"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Radius             string
	MinPoints          string
	MaxMergeIterations string
	FusionOverlap      string
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
	settings.Merge(&c.Radius, overlay.Radius)
	settings.Merge(&c.MinPoints, overlay.MinPoints)
	settings.Merge(&c.MaxMergeIterations, overlay.MaxMergeIterations)
	settings.Merge(&c.FusionOverlap, overlay.FusionOverlap)
}

func (c *Config) loadDefaults() {
	settings.Default(&c.Radius, 60.0)
	settings.Default(&c.MinPoints, 2)
	settings.Default(&c.MaxMergeIterations, 50)
	settings.Default(&c.FusionOverlap, 0.5)
}

func (c *Config) loadEnv(env *Env) {
	settings.Env(&c.Radius, env.Radius)
	settings.Env(&c.MinPoints, env.MinPoints)
	settings.Env(&c.MaxMergeIterations, env.MaxMergeIterations)
	settings.Env(&c.FusionOverlap, env.FusionOverlap)
}

func (c *Config) validate() error {
	if c.Radius <= 0 {
		return fmt.Errorf("radius must be positive: %v", c.Radius)
	}
	if c.MinPoints < 1 {
		return fmt.Errorf("min_points must be at least 1: %d", c.MinPoints)
	}
	if c.MaxMergeIterations < 1 {
		return fmt.Errorf("max_merge_iterations must be at least 1: %d", c.MaxMergeIterations)
	}
	if c.FusionOverlap <= 0 || c.FusionOverlap > 1 {
		return fmt.Errorf("fusion_overlap must be in (0, 1]: %v", c.FusionOverlap)
	}
	return nil
}
