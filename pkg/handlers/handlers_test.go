package handlers_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/examiner/pkg/handlers"
)

func TestRespondJSON(t *testing.T) {
	tests := []struct {
		name   string
		status int
		data   any
	}{
		{"ok map", http.StatusOK, map[string]string{"grade": "8"}},
		{"created struct", http.StatusCreated, struct{ Awarded int }{Awarded: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handlers.RespondJSON(rec, tt.status, tt.data)

			res := rec.Result()
			defer res.Body.Close()

			if res.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", res.StatusCode, tt.status)
			}
			if ct := res.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("content-type = %s", ct)
			}

			var parsed map[string]any
			if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
				t.Fatalf("decode: %v", err)
			}
		})
	}
}

func TestRespondError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	for _, status := range []int{http.StatusUnprocessableEntity, http.StatusInternalServerError} {
		rec := httptest.NewRecorder()
		handlers.RespondError(rec, logger, status, errors.New("could not read answer sheet"))

		res := rec.Result()
		if res.StatusCode != status {
			t.Errorf("status = %d, want %d", res.StatusCode, status)
		}

		var parsed map[string]string
		if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
			t.Fatalf("decode: %v", err)
		}
		res.Body.Close()

		if parsed["error"] != "could not read answer sheet" {
			t.Errorf("error = %q", parsed["error"])
		}
	}
}
