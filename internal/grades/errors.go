package grades

import (
	"errors"
	"net/http"
)

// Domain errors for grade boundaries.
var (
	ErrNotFound     = errors.New("grade boundaries not found")
	ErrDuplicate    = errors.New("grade boundaries already exist")
	ErrInvalidEntry = errors.New("invalid grade boundary entry")
)

// MapHTTPStatus maps grade domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidEntry) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
