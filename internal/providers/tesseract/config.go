package tesseract

import (
	"fmt"

	"github.com/otiai10/gosseract/v2"

	"github.com/JaimeStill/examiner/pkg/settings"
)

const (
	LevelWord = "word"
	LevelLine = "line"
)

// Config holds Tesseract engine settings.
type Config struct {
	Languages []string `toml:"languages"`
	DPI       int      `toml:"dpi"`
	Level     string   `toml:"level"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Languages string
	DPI       string
	Level     string
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
	settings.MergeSlice(&c.Languages, overlay.Languages)
	settings.Merge(&c.DPI, overlay.DPI)
	settings.Merge(&c.Level, overlay.Level)
}

func (c *Config) level() gosseract.PageIteratorLevel {
	if c.Level == LevelLine {
		return gosseract.RIL_TEXTLINE
	}
	return gosseract.RIL_WORD
}

func (c *Config) loadDefaults() {
	if len(c.Languages) == 0 {
		c.Languages = []string{"eng"}
	}
	settings.Default(&c.DPI, 300)
	settings.Default(&c.Level, LevelLine)
}

func (c *Config) loadEnv(env *Env) {
	settings.EnvList(&c.Languages, env.Languages)
	settings.Env(&c.DPI, env.DPI)
	settings.Env(&c.Level, env.Level)
}

func (c *Config) validate() error {
	if c.Level != LevelWord && c.Level != LevelLine {
		return fmt.Errorf("level must be %s or %s: %q", LevelWord, LevelLine, c.Level)
	}
	if c.DPI < 0 {
		return fmt.Errorf("dpi must not be negative: %d", c.DPI)
	}
	return nil
}
