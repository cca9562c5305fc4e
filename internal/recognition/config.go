package recognition

import (
	"fmt"

	"github.com/JaimeStill/examiner/pkg/settings"
)

// Config tunes image preprocessing for the normalize and threshold passes.
type Config struct {
	MinWidth      int     `toml:"min_width"`
	SauvolaK      float64 `toml:"sauvola_k"`
	SauvolaWindow int     `toml:"sauvola_window"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	MinWidth      string
	SauvolaK      string
	SauvolaWindow string
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
	settings.Merge(&c.MinWidth, overlay.MinWidth)
	settings.Merge(&c.SauvolaK, overlay.SauvolaK)
	settings.Merge(&c.SauvolaWindow, overlay.SauvolaWindow)
}

func (c *Config) loadDefaults() {
	settings.Default(&c.MinWidth, 1200)
	settings.Default(&c.SauvolaK, 0.3)
	settings.Default(&c.SauvolaWindow, 19)
}

func (c *Config) loadEnv(env *Env) {
	settings.Env(&c.MinWidth, env.MinWidth)
	settings.Env(&c.SauvolaK, env.SauvolaK)
	settings.Env(&c.SauvolaWindow, env.SauvolaWindow)
}

func (c *Config) validate() error {
	if c.MinWidth < 0 {
		return fmt.Errorf("min_width must not be negative: %d", c.MinWidth)
	}
	if c.SauvolaK <= 0 || c.SauvolaK >= 1 {
		return fmt.Errorf("sauvola_k must be in (0, 1): %v", c.SauvolaK)
	}
	if c.SauvolaWindow < 3 || c.SauvolaWindow%2 == 0 {
		return fmt.Errorf("sauvola_window must be an odd number of at least 3: %d", c.SauvolaWindow)
	}
	return nil
}
