package schemes

import (
	"fmt"

	"github.com/JaimeStill/examiner/pkg/settings"
)

// Config holds scheme resolution parameters.
type Config struct {
	ConsensusRatio float64 `toml:"consensus_ratio"`
	AdherenceRatio float64 `toml:"adherence_ratio"`
	DefaultMarks   int     `toml:"default_marks"`
	MaxMarks       int     `toml:"max_marks"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	ConsensusRatio string
	DefaultMarks   string
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
	settings.Merge(&c.ConsensusRatio, overlay.ConsensusRatio)
	settings.Merge(&c.AdherenceRatio, overlay.AdherenceRatio)
	settings.Merge(&c.DefaultMarks, overlay.DefaultMarks)
	settings.Merge(&c.MaxMarks, overlay.MaxMarks)
}

func (c *Config) loadDefaults() {
	settings.Default(&c.ConsensusRatio, 0.8)
	settings.Default(&c.AdherenceRatio, 0.8)
	settings.Default(&c.DefaultMarks, 20)
	settings.Default(&c.MaxMarks, 30)
}

func (c *Config) loadEnv(env *Env) {
	settings.Env(&c.ConsensusRatio, env.ConsensusRatio)
	settings.Env(&c.DefaultMarks, env.DefaultMarks)
}

func (c *Config) validate() error {
	if c.ConsensusRatio <= 0.5 || c.ConsensusRatio > 1 {
		return fmt.Errorf("consensus_ratio must be in (0.5, 1]: %v", c.ConsensusRatio)
	}
	if c.AdherenceRatio <= 0 || c.AdherenceRatio > 1 {
		return fmt.Errorf("adherence_ratio must be in (0, 1]: %v", c.AdherenceRatio)
	}
	if c.DefaultMarks < 1 || c.DefaultMarks > c.MaxMarks {
		return fmt.Errorf("default_marks must be in [1, max_marks]: %d", c.DefaultMarks)
	}
	return nil
}
