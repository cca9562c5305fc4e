// Package handlers holds the request decoding and JSON response helpers
// shared by the domain HTTP handlers.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

// MaxBodySize caps JSON request bodies.
const MaxBodySize = 1 << 20

var (
	ErrInvalidID   = errors.New("invalid id")
	ErrInvalidBody = errors.New("invalid request body")
)

// PathID parses the {id} path value as a UUID.
func PathID(r *http.Request) (uuid.UUID, error) {
	raw := r.PathValue("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidID, raw)
	}
	return id, nil
}

// DecodeJSON reads a JSON body of at most MaxBodySize bytes into a T.
// Errors wrap ErrInvalidBody along with the decoder's own error.
func DecodeJSON[T any](w http.ResponseWriter, r *http.Request) (T, error) {
	var v T
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodySize)).Decode(&v); err != nil {
		return v, fmt.Errorf("%w: %w", ErrInvalidBody, err)
	}
	return v, nil
}

// RespondJSON writes data as a JSON body with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError logs err and writes it as {"error": "..."} with the given
// status code. Server errors are logged at error level, others at warn.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request rejected", "status", status, "error", err)
	}
	RespondJSON(w, status, map[string]string{"error": err.Error()})
}

// Responder writes a handler's results, mapping errors to statuses with the
// owning domain's mapper.
type Responder struct {
	Logger    *slog.Logger
	MapStatus func(error) int
}

// Error writes err with the status its domain maps it to. Malformed ids
// and bodies are always 400.
func (rs Responder) Error(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	if !errors.Is(err, ErrInvalidID) && !errors.Is(err, ErrInvalidBody) {
		status = rs.MapStatus(err)
	}
	RespondError(w, rs.Logger, status, err)
}

// Result writes v with status, or the error when err is non-nil.
func (rs Responder) Result(w http.ResponseWriter, status int, v any, err error) {
	if err != nil {
		rs.Error(w, err)
		return
	}
	RespondJSON(w, status, v)
}

// NoContent writes 204, or the error when err is non-nil.
func (rs Responder) NoContent(w http.ResponseWriter, err error) {
	if err != nil {
		rs.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
