package marking

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/examiner/internal/recognition"
	"github.com/JaimeStill/examiner/internal/results"
)

var (
	ErrInvalidSubmission = errors.New("invalid submission")
	ErrTooManyPages      = errors.New("submission exceeds page limit")
	ErrFileTooLarge      = errors.New("upload exceeds size limit")
	ErrRenderFailed      = errors.New("pdf render failed")
	ErrRecognizeFailed   = errors.New("recognition failed")
	ErrSchemeFailed      = errors.New("scheme resolution failed")
	ErrMarkFailed        = errors.New("marking failed")
)

// MapHTTPStatus maps pipeline errors to HTTP status codes. Terminal
// recognition and parse failures surface as a generic processing error.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidSubmission):
		return http.StatusBadRequest
	case errors.Is(err, ErrTooManyPages), errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, recognition.ErrOCRFailure),
		errors.Is(err, results.ErrMarkingParseFailure),
		errors.Is(err, ErrRenderFailed):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
