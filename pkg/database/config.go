package database

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/JaimeStill/examiner/pkg/settings"
)

// Config holds PostgreSQL connection parameters. A non-empty URL is used
// as the connection string in place of the discrete fields.
type Config struct {
	URL             string `toml:"url"`
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	Name            string `toml:"name"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	SSLMode         string `toml:"ssl_mode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime string `toml:"conn_max_lifetime"`
	ConnTimeout     string `toml:"conn_timeout"`
}

// Env names the environment variables that override each field.
type Env struct {
	URL             string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    string
	MaxIdleConns    string
	ConnMaxLifetime string
	ConnTimeout     string
}

func (c *Config) ConnMaxLifetimeDuration() time.Duration {
	return settings.Duration(c.ConnMaxLifetime)
}

func (c *Config) ConnTimeoutDuration() time.Duration {
	return settings.Duration(c.ConnTimeout)
}

// Dsn returns the connection string in postgres:// URL form, which pgx
// and golang-migrate both accept.
func (c *Config) Dsn() string {
	if c.URL != "" {
		return c.URL
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + c.Name,
	}
	u.RawQuery = url.Values{"sslmode": {c.SSLMode}}.Encode()
	return u.String()
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
	settings.Merge(&c.URL, overlay.URL)
	settings.Merge(&c.Host, overlay.Host)
	settings.Merge(&c.Port, overlay.Port)
	settings.Merge(&c.Name, overlay.Name)
	settings.Merge(&c.User, overlay.User)
	settings.Merge(&c.Password, overlay.Password)
	settings.Merge(&c.SSLMode, overlay.SSLMode)
	settings.Merge(&c.MaxOpenConns, overlay.MaxOpenConns)
	settings.Merge(&c.MaxIdleConns, overlay.MaxIdleConns)
	settings.Merge(&c.ConnMaxLifetime, overlay.ConnMaxLifetime)
	settings.Merge(&c.ConnTimeout, overlay.ConnTimeout)
}

func (c *Config) loadDefaults() {
	settings.Default(&c.Host, "localhost")
	settings.Default(&c.Port, 5432)
	settings.Default(&c.SSLMode, "disable")
	settings.Default(&c.MaxOpenConns, 25)
	settings.Default(&c.MaxIdleConns, 5)
	settings.Default(&c.ConnMaxLifetime, "15m")
	settings.Default(&c.ConnTimeout, "10s")
}

func (c *Config) loadEnv(env *Env) {
	settings.Env(&c.URL, env.URL)
	settings.Env(&c.Host, env.Host)
	settings.Env(&c.Port, env.Port)
	settings.Env(&c.Name, env.Name)
	settings.Env(&c.User, env.User)
	settings.Env(&c.Password, env.Password)
	settings.Env(&c.SSLMode, env.SSLMode)
	settings.Env(&c.MaxOpenConns, env.MaxOpenConns)
	settings.Env(&c.MaxIdleConns, env.MaxIdleConns)
	settings.Env(&c.ConnMaxLifetime, env.ConnMaxLifetime)
	settings.Env(&c.ConnTimeout, env.ConnTimeout)
}

func (c *Config) validate() error {
	if c.URL == "" {
		var errs []error
		if c.Name == "" {
			errs = append(errs, errors.New("name required"))
		}
		if c.User == "" {
			errs = append(errs, errors.New("user required"))
		}
		if err := errors.Join(errs...); err != nil {
			return err
		}
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return fmt.Errorf("max_idle_conns (%d) exceeds max_open_conns (%d)", c.MaxIdleConns, c.MaxOpenConns)
	}
	return errors.Join(
		settings.CheckDuration("conn_max_lifetime", c.ConnMaxLifetime),
		settings.CheckDuration("conn_timeout", c.ConnTimeout),
	)
}
