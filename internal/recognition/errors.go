package recognition

import (
	"errors"
	"net/http"
)

var (
	// ErrOCRFailure indicates every recognition pass and the math fallback failed.
	ErrOCRFailure = errors.New("text recognition failed")
	// ErrPassFailed wraps a single recognition pass failure.
	ErrPassFailed = errors.New("recognition pass failed")
	// ErrNoFragments indicates a pass completed but detected nothing.
	ErrNoFragments = errors.New("no text detected")
	// ErrUnsupportedImage indicates the image could not be decoded for preprocessing.
	ErrUnsupportedImage = errors.New("unsupported image")
)

// MapHTTPStatus maps recognition errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrOCRFailure) {
		return http.StatusUnprocessableEntity
	}
	if errors.Is(err, ErrUnsupportedImage) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
