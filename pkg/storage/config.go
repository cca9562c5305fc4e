package storage

import (
	"fmt"
	"strings"

	"github.com/JaimeStill/examiner/pkg/settings"
)

// Config holds Azure Blob Storage connection parameters. Either a
// connection string or an account URL authenticated with the default
// Azure credential chain enables storage; with neither it is disabled.
type Config struct {
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	AccountURL       string `toml:"account_url"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	ContainerName    string
	ConnectionString string
	AccountURL       string
}

// Enabled reports whether a storage account is configured.
func (c *Config) Enabled() bool {
	return c.ConnectionString != "" || c.AccountURL != ""
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
	settings.Merge(&c.ContainerName, overlay.ContainerName)
	settings.Merge(&c.ConnectionString, overlay.ConnectionString)
	settings.Merge(&c.AccountURL, overlay.AccountURL)
}

func (c *Config) loadDefaults() {
	settings.Default(&c.ContainerName, "submissions")
}

func (c *Config) loadEnv(env *Env) {
	settings.Env(&c.ContainerName, env.ContainerName)
	settings.Env(&c.ConnectionString, env.ConnectionString)
	settings.Env(&c.AccountURL, env.AccountURL)
}

func (c *Config) validate() error {
	if c.ContainerName == "" {
		return fmt.Errorf("container_name required")
	}
	if c.ConnectionString != "" && c.AccountURL != "" {
		return fmt.Errorf("connection_string and account_url are mutually exclusive")
	}
	if c.AccountURL != "" && !strings.HasPrefix(c.AccountURL, "https://") {
		return fmt.Errorf("account_url must use https: %s", c.AccountURL)
	}
	return nil
}
