package middleware

import "github.com/JaimeStill/examiner/pkg/settings"

// CORSConfig holds CORS policy settings. An origin of "*" allows any origin.
type CORSConfig struct {
	Enabled          bool     `toml:"enabled"`
	Origins          []string `toml:"origins"`
	AllowedMethods   []string `toml:"allowed_methods"`
	AllowedHeaders   []string `toml:"allowed_headers"`
	AllowCredentials bool     `toml:"allow_credentials"`
	MaxAge           int      `toml:"max_age"`
}

// CORSEnv maps CORS config fields to environment variable names for override injection.
type CORSEnv struct {
	Enabled          string
	Origins          string
	AllowedMethods   string
	AllowedHeaders   string
	AllowCredentials string
	MaxAge           string
}

// Finalize applies defaults and environment variable overrides.
func (c *CORSConfig) Finalize(env *CORSEnv) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return nil
}

// Merge overwrites fields from overlay. Boolean fields always apply; slice
// and int fields only apply when set.
func (c *CORSConfig) Merge(overlay *CORSConfig) {
	c.Enabled = overlay.Enabled
	c.AllowCredentials = overlay.AllowCredentials

	settings.MergeSlice(&c.Origins, overlay.Origins)
	settings.MergeSlice(&c.AllowedMethods, overlay.AllowedMethods)
	settings.MergeSlice(&c.AllowedHeaders, overlay.AllowedHeaders)
	settings.Merge(&c.MaxAge, overlay.MaxAge)
}

func (c *CORSConfig) loadDefaults() {
	if len(c.AllowedMethods) == 0 {
		c.AllowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(c.AllowedHeaders) == 0 {
		c.AllowedHeaders = []string{"Content-Type", "Authorization", RequestIDHeader}
	}
	settings.Default(&c.MaxAge, 3600)
}

func (c *CORSConfig) loadEnv(env *CORSEnv) {
	settings.Env(&c.Enabled, env.Enabled)
	settings.EnvList(&c.Origins, env.Origins)
	settings.EnvList(&c.AllowedMethods, env.AllowedMethods)
	settings.EnvList(&c.AllowedHeaders, env.AllowedHeaders)
	settings.Env(&c.AllowCredentials, env.AllowCredentials)
	settings.Env(&c.MaxAge, env.MaxAge)
}
