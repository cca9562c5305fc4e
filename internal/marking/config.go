package marking

import (
	"fmt"
	"time"

	"github.com/JaimeStill/examiner/pkg/settings"
)

// Config holds submission limits. Timeout is empty by default, leaving
// deadlines to the caller's context.
type Config struct {
	MaxPages int    `toml:"max_pages"`
	Timeout  string `toml:"timeout"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	MaxPages string
	Timeout  string
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	return settings.Duration(c.Timeout)
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
	settings.Merge(&c.MaxPages, overlay.MaxPages)
	settings.Merge(&c.Timeout, overlay.Timeout)
}

func (c *Config) loadDefaults() {
	settings.Default(&c.MaxPages, 12)
}

func (c *Config) loadEnv(env *Env) {
	settings.Env(&c.MaxPages, env.MaxPages)
	settings.Env(&c.Timeout, env.Timeout)
}

func (c *Config) validate() error {
	if c.MaxPages < 1 {
		return fmt.Errorf("max_pages must be at least 1: %d", c.MaxPages)
	}
	if c.Timeout == "" {
		return nil
	}
	return settings.CheckDuration("timeout", c.Timeout)
}
