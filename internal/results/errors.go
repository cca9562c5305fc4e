package results

import (
	"errors"
	"net/http"
)

// ErrMarkingParseFailure is returned when the marking model's output cannot
// be repaired into a usable annotation set.
var ErrMarkingParseFailure = errors.New("marking output could not be parsed")

// MapHTTPStatus maps result parsing errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrMarkingParseFailure) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
