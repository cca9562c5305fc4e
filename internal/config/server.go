package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/JaimeStill/examiner/pkg/settings"
)

const (
	EnvServerHost            = "EXAMINER_SERVER_HOST"
	EnvServerPort            = "EXAMINER_SERVER_PORT"
	EnvServerReadTimeout     = "EXAMINER_SERVER_READ_TIMEOUT"
	EnvServerWriteTimeout    = "EXAMINER_SERVER_WRITE_TIMEOUT"
	EnvServerShutdownTimeout = "EXAMINER_SERVER_SHUTDOWN_TIMEOUT"
)

// ServerConfig holds HTTP listener settings. The write timeout has to cover
// a full synchronous marking run.
type ServerConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	ReadTimeout     string `toml:"read_timeout"`
	WriteTimeout    string `toml:"write_timeout"`
	ShutdownTimeout string `toml:"shutdown_timeout"`
}

func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *ServerConfig) ReadTimeoutDuration() time.Duration {
	return settings.Duration(c.ReadTimeout)
}

func (c *ServerConfig) WriteTimeoutDuration() time.Duration {
	return settings.Duration(c.WriteTimeout)
}

func (c *ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return settings.Duration(c.ShutdownTimeout)
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ServerConfig) Finalize() error {
	settings.Default(&c.Host, "0.0.0.0")
	settings.Default(&c.Port, 8080)
	settings.Default(&c.ReadTimeout, "1m")
	settings.Default(&c.WriteTimeout, "15m")
	settings.Default(&c.ShutdownTimeout, "30s")

	settings.Env(&c.Host, EnvServerHost)
	settings.Env(&c.Port, EnvServerPort)
	settings.Env(&c.ReadTimeout, EnvServerReadTimeout)
	settings.Env(&c.WriteTimeout, EnvServerWriteTimeout)
	settings.Env(&c.ShutdownTimeout, EnvServerShutdownTimeout)

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	return errors.Join(
		settings.CheckDuration("read_timeout", c.ReadTimeout),
		settings.CheckDuration("write_timeout", c.WriteTimeout),
		settings.CheckDuration("shutdown_timeout", c.ShutdownTimeout),
	)
}

// Merge overwrites non-zero fields from overlay.
func (c *ServerConfig) Merge(overlay *ServerConfig) {
	settings.Merge(&c.Host, overlay.Host)
	settings.Merge(&c.Port, overlay.Port)
	settings.Merge(&c.ReadTimeout, overlay.ReadTimeout)
	settings.Merge(&c.WriteTimeout, overlay.WriteTimeout)
	settings.Merge(&c.ShutdownTimeout, overlay.ShutdownTimeout)
}
