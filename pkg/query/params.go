package query

import (
	"net/url"
	"strconv"
)

// NonEmpty returns a pointer to s, or nil when s is empty. Builder
// conditions skip nil values.
func NonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Param reads an optional string filter from query parameters.
func Param(values url.Values, key string) *string {
	return NonEmpty(values.Get(key))
}

// BoolParam reads an optional boolean filter. Unparseable values are
// treated as absent.
func BoolParam(values url.Values, key string) *bool {
	b, err := strconv.ParseBool(values.Get(key))
	if err != nil {
		return nil
	}
	return &b
}
