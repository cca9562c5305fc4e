package mathregion

import (
	"fmt"
	"time"

	"github.com/JaimeStill/examiner/pkg/settings"
)

// Config holds the math-region triage parameters.
type Config struct {
	Threshold            float64 `toml:"threshold"`
	SkipConfidence       float64 `toml:"skip_confidence"`
	SuspiciousConfidence float64 `toml:"suspicious_confidence"`
	Padding              float64 `toml:"padding"`
	Delay                string  `toml:"delay"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Threshold      string
	SkipConfidence string
	Delay          string
}

// DelayDuration returns Delay as a time.Duration.
func (c *Config) DelayDuration() time.Duration {
	return settings.Duration(c.Delay)
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
	settings.Merge(&c.Threshold, overlay.Threshold)
	settings.Merge(&c.SkipConfidence, overlay.SkipConfidence)
	settings.Merge(&c.SuspiciousConfidence, overlay.SuspiciousConfidence)
	settings.Merge(&c.Padding, overlay.Padding)
	settings.Merge(&c.Delay, overlay.Delay)
}

func (c *Config) loadDefaults() {
	settings.Default(&c.Threshold, 0.35)
	settings.Default(&c.SkipConfidence, 0.9)
	settings.Default(&c.SuspiciousConfidence, 0.6)
	settings.Default(&c.Padding, 8.0)
	settings.Default(&c.Delay, "250ms")
}

func (c *Config) loadEnv(env *Env) {
	settings.Env(&c.Threshold, env.Threshold)
	settings.Env(&c.SkipConfidence, env.SkipConfidence)
	settings.Env(&c.Delay, env.Delay)
}

func (c *Config) validate() error {
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("threshold must be in [0, 1]: %v", c.Threshold)
	}
	if c.SkipConfidence <= 0 || c.SkipConfidence > 1 {
		return fmt.Errorf("skip_confidence must be in (0, 1]: %v", c.SkipConfidence)
	}
	return settings.CheckDuration("delay", c.Delay)
}
