package config

import (
	"github.com/JaimeStill/examiner/pkg/formatting"
	"github.com/JaimeStill/examiner/pkg/middleware"
	"github.com/JaimeStill/examiner/pkg/pagination"
	"github.com/JaimeStill/examiner/pkg/settings"
)

const (
	EnvAPIBasePath      = "EXAMINER_API_BASE_PATH"
	EnvAPIMaxUploadSize = "EXAMINER_API_MAX_UPLOAD_SIZE"

	defaultMaxUploadSize = "50MB"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "EXAMINER_CORS_ENABLED",
	Origins:          "EXAMINER_CORS_ORIGINS",
	AllowedMethods:   "EXAMINER_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "EXAMINER_CORS_ALLOWED_HEADERS",
	AllowCredentials: "EXAMINER_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "EXAMINER_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "EXAMINER_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "EXAMINER_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig holds the route prefix, the submission size cap, and the
// nested CORS and pagination settings.
type APIConfig struct {
	BasePath      string                `toml:"base_path"`
	MaxUploadSize string                `toml:"max_upload_size"`
	CORS          middleware.CORSConfig `toml:"cors"`
	Pagination    pagination.Config     `toml:"pagination"`
}

// MaxUploadSizeBytes parses MaxUploadSize, falling back to 50MB when the
// value is not a recognizable size.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	if size, err := formatting.ParseBytes(c.MaxUploadSize); err == nil {
		return size
	}
	size, _ := formatting.ParseBytes(defaultMaxUploadSize)
	return size
}

// Finalize applies defaults and environment overrides, then finalizes the
// nested CORS and pagination configs.
func (c *APIConfig) Finalize() error {
	settings.Default(&c.BasePath, "/api")
	settings.Default(&c.MaxUploadSize, defaultMaxUploadSize)
	settings.Env(&c.BasePath, EnvAPIBasePath)
	settings.Env(&c.MaxUploadSize, EnvAPIMaxUploadSize)

	return finalizeAll(
		section{"cors", func() error { return c.CORS.Finalize(corsEnv) }},
		section{"pagination", func() error { return c.Pagination.Finalize(paginationEnv) }},
	)
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	settings.Merge(&c.BasePath, overlay.BasePath)
	settings.Merge(&c.MaxUploadSize, overlay.MaxUploadSize)

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
}
