package config

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/JaimeStill/examiner/pkg/settings"
)

const (
	EnvLogLevel  = "EXAMINER_LOG_LEVEL"
	EnvLogFormat = "EXAMINER_LOG_FORMAT"

	LogFormatText = "text"
	LogFormatJSON = "json"
)

// LoggingConfig selects the slog handler and its minimum level.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// SlogLevel returns Level as a slog.Level. Finalize has already rejected
// names slog does not recognize.
func (c *LoggingConfig) SlogLevel() slog.Level {
	var level slog.Level
	level.UnmarshalText([]byte(c.Level))
	return level
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *LoggingConfig) Finalize() error {
	settings.Default(&c.Level, "info")
	settings.Default(&c.Format, LogFormatText)
	settings.Env(&c.Level, EnvLogLevel)
	settings.Env(&c.Format, EnvLogFormat)

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return fmt.Errorf("invalid level: %w", err)
	}
	if !slices.Contains([]string{LogFormatText, LogFormatJSON}, c.Format) {
		return fmt.Errorf("format must be %s or %s: %q", LogFormatText, LogFormatJSON, c.Format)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *LoggingConfig) Merge(overlay *LoggingConfig) {
	settings.Merge(&c.Level, overlay.Level)
	settings.Merge(&c.Format, overlay.Format)
}
