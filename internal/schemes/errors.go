package schemes

import (
	"errors"
	"net/http"
)

// Domain errors for scheme resolution.
var (
	ErrInvalidScheme = errors.New("invalid scheme record")
	ErrCorpusFailed  = errors.New("question corpus lookup failed")
	ErrNotFound      = errors.New("question not found")
	ErrDuplicate     = errors.New("question already exists")
)

// MapHTTPStatus maps scheme domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidScheme) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
