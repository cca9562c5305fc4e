package gemini

import (
	"fmt"

	"github.com/JaimeStill/examiner/pkg/settings"
)

// Config holds the Gemini API settings.
type Config struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	APIKey string
	Model  string
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
	settings.Merge(&c.APIKey, overlay.APIKey)
	settings.Merge(&c.Model, overlay.Model)
}

func (c *Config) loadDefaults() {
	settings.Default(&c.Model, "gemini-1.5-pro")
}

func (c *Config) loadEnv(env *Env) {
	settings.Env(&c.APIKey, env.APIKey)
	settings.Env(&c.Model, env.Model)
}

func (c *Config) validate() error {
	if c.Model == "" {
		return fmt.Errorf("model required")
	}
	return nil
}
