// Package config assembles the service configuration from config.toml, an
// optional per-environment overlay, a .env file, and EXAMINER_* variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/JaimeStill/examiner/pkg/database"
	"github.com/JaimeStill/examiner/pkg/settings"
	"github.com/JaimeStill/examiner/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"
	DotEnvFile           = ".env"

	EnvExaminerEnv             = "EXAMINER_ENV"
	EnvExaminerShutdownTimeout = "EXAMINER_SHUTDOWN_TIMEOUT"
	EnvExaminerVersion         = "EXAMINER_VERSION"
)

var databaseEnv = &database.Env{
	URL:             "EXAMINER_DB_DSN",
	Host:            "EXAMINER_DB_HOST",
	Port:            "EXAMINER_DB_PORT",
	Name:            "EXAMINER_DB_NAME",
	User:            "EXAMINER_DB_USER",
	Password:        "EXAMINER_DB_PASSWORD",
	SSLMode:         "EXAMINER_DB_SSL_MODE",
	MaxOpenConns:    "EXAMINER_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "EXAMINER_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "EXAMINER_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "EXAMINER_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "EXAMINER_STORAGE_CONTAINER_NAME",
	ConnectionString: "EXAMINER_STORAGE_CONNECTION_STRING",
	AccountURL:       "EXAMINER_STORAGE_ACCOUNT_URL",
}

// Config is the root configuration for the marking service.
type Config struct {
	Server          ServerConfig         `toml:"server"`
	Logging         LoggingConfig        `toml:"logging"`
	Database        database.Config      `toml:"database"`
	Storage         storage.Config       `toml:"storage"`
	API             APIConfig            `toml:"api"`
	Agent           gaconfig.AgentConfig `toml:"agent"`
	Pipeline        PipelineConfig       `toml:"pipeline"`
	Providers       ProvidersConfig      `toml:"providers"`
	ShutdownTimeout string               `toml:"shutdown_timeout"`
	Version         string               `toml:"version"`
}

// Env returns the EXAMINER_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvExaminerEnv); env != "" {
		return env
	}
	return "local"
}

func (c *Config) ShutdownTimeoutDuration() time.Duration {
	return settings.Duration(c.ShutdownTimeout)
}

// Load builds the configuration from the working directory. Variables in
// .env are exported first without replacing ones already set, so the
// process environment always wins. A missing config.toml leaves defaults
// and the environment to supply every value.
func Load() (*Config, error) {
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", DotEnvFile, err)
	}

	cfg := &Config{}
	if exists(BaseConfigFile) {
		base, err := decode(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = base
	}

	if env := os.Getenv(EnvExaminerEnv); env != "" {
		if path := fmt.Sprintf(OverlayConfigPattern, env); exists(path) {
			overlay, err := decode(path)
			if err != nil {
				return nil, fmt.Errorf("load overlay %s: %w", path, err)
			}
			cfg.Merge(overlay)
		}
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}
	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	settings.Merge(&c.ShutdownTimeout, overlay.ShutdownTimeout)
	settings.Merge(&c.Version, overlay.Version)

	c.Server.Merge(&overlay.Server)
	c.Logging.Merge(&overlay.Logging)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Agent.Merge(&overlay.Agent)
	c.Pipeline.Merge(&overlay.Pipeline)
	c.Providers.Merge(&overlay.Providers)
}

// section pairs a config block with the name its errors are reported under.
type section struct {
	name     string
	finalize func() error
}

func finalizeAll(sections ...section) error {
	for _, s := range sections {
		if err := s.finalize(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}

func (c *Config) finalize() error {
	settings.Default(&c.ShutdownTimeout, "30s")
	settings.Default(&c.Version, "0.1.0")
	settings.Env(&c.ShutdownTimeout, EnvExaminerShutdownTimeout)
	settings.Env(&c.Version, EnvExaminerVersion)

	if err := settings.CheckDuration("shutdown_timeout", c.ShutdownTimeout); err != nil {
		return err
	}

	return finalizeAll(
		section{"server", c.Server.Finalize},
		section{"logging", c.Logging.Finalize},
		section{"database", func() error { return c.Database.Finalize(databaseEnv) }},
		section{"storage", func() error { return c.Storage.Finalize(storageEnv) }},
		section{"api", c.API.Finalize},
		section{"agent", func() error { return FinalizeAgent(&c.Agent) }},
		section{"pipeline", c.Pipeline.Finalize},
		section{"providers", c.Providers.Finalize},
	)
}

func decode(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
