package openai

import (
	"fmt"

	"github.com/JaimeStill/examiner/pkg/settings"
)

// Config holds the chat completions endpoint settings.
type Config struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	BaseURL string
	APIKey  string
	Model   string
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
	settings.Merge(&c.BaseURL, overlay.BaseURL)
	settings.Merge(&c.APIKey, overlay.APIKey)
	settings.Merge(&c.Model, overlay.Model)
}

func (c *Config) loadDefaults() {
	settings.Default(&c.Model, "gpt-4o")
}

func (c *Config) loadEnv(env *Env) {
	settings.Env(&c.BaseURL, env.BaseURL)
	settings.Env(&c.APIKey, env.APIKey)
	settings.Env(&c.Model, env.Model)
}

func (c *Config) validate() error {
	if c.Model == "" {
		return fmt.Errorf("model required")
	}
	return nil
}
