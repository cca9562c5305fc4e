// Package settings implements the field-level steps shared by every config
// section: zero-value defaults, overlay merges, and environment overrides.
package settings

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Scalar is the set of field types an environment variable can override.
type Scalar interface {
	string | int | int64 | float64 | bool
}

// Default assigns def when *dst holds the zero value.
func Default[T comparable](dst *T, def T) {
	var zero T
	if *dst == zero {
		*dst = def
	}
}

// Merge assigns v to *dst unless v is the zero value.
func Merge[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}

// MergeSlice replaces *dst with v when v is non-empty.
func MergeSlice[T any](dst *[]T, v []T) {
	if len(v) > 0 {
		*dst = v
	}
}

// Env overrides *dst with the named environment variable. An empty name,
// an unset variable, or a value that does not parse leaves *dst unchanged.
func Env[T Scalar](dst *T, name string) {
	v, ok := lookup(name)
	if !ok {
		return
	}

	switch p := any(dst).(type) {
	case *string:
		*p = v
	case *int:
		if n, err := strconv.Atoi(v); err == nil {
			*p = n
		}
	case *int64:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*p = n
		}
	case *float64:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*p = f
		}
	case *bool:
		if b, err := strconv.ParseBool(v); err == nil {
			*p = b
		}
	}
}

// EnvList overrides *dst with a comma-separated environment variable.
// Blank entries are dropped.
func EnvList(dst *[]string, name string) {
	v, ok := lookup(name)
	if !ok {
		return
	}

	var items []string
	for item := range strings.SplitSeq(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	*dst = items
}

// Duration parses s, returning zero when it is not a valid duration.
func Duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

// CheckDuration reports an error naming field when value is not a valid
// duration.
func CheckDuration(field, value string) error {
	if _, err := time.ParseDuration(value); err != nil {
		return fmt.Errorf("invalid %s: %w", field, err)
	}
	return nil
}

func lookup(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	v := os.Getenv(name)
	return v, v != ""
}
