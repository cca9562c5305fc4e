package api

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/examiner/internal/marking"
	"github.com/JaimeStill/examiner/pkg/lifecycle"
	"github.com/JaimeStill/examiner/pkg/routes"
	"github.com/JaimeStill/examiner/pkg/storage"
)

type memoryStore map[string][]byte

func (m memoryStore) Start(*lifecycle.Coordinator) error { return nil }

func (m memoryStore) Upload(_ context.Context, key string, r io.Reader, _ string) error {
	data, err := io.ReadAll(r)
	m[key] = data
	return err
}

func (m memoryStore) Download(_ context.Context, key string) (*storage.Blob, error) {
	data, ok := m[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &storage.Blob{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentType:   "image/png",
		ContentLength: int64(len(data)),
	}, nil
}

func (m memoryStore) List(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	for k := range m {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

func (m memoryStore) Delete(_ context.Context, key string) error {
	delete(m, key)
	return nil
}

func (m memoryStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m[key]
	return ok, nil
}

func TestPagesHandler(t *testing.T) {
	id := uuid.New()
	store := memoryStore{
		marking.StorageKey(id, 1): []byte("page one"),
		marking.StorageKey(id, 2): []byte("page two"),
	}

	mux := http.NewServeMux()
	routes.Register(mux, newPagesHandler(store, slog.New(slog.NewTextHandler(io.Discard, nil))).routes())

	base := "/submissions/" + id.String() + "/pages"
	tests := []struct {
		name   string
		path   string
		status int
		want   string
	}{
		{"list", base, http.StatusOK, marking.StorageKey(id, 2)},
		{"list unknown submission", "/submissions/" + uuid.NewString() + "/pages", http.StatusNotFound, "blob not found"},
		{"list bad id", "/submissions/abc/pages", http.StatusBadRequest, "invalid id"},
		{"download", base + "/2", http.StatusOK, "page two"},
		{"download missing page", base + "/3", http.StatusNotFound, ""},
		{"download bad number", base + "/0", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}
			if tt.want != "" && !strings.Contains(rec.Body.String(), tt.want) {
				t.Errorf("body = %s, want it to contain %s", rec.Body.String(), tt.want)
			}
		})
	}

	t.Run("download headers", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", base+"/1", nil))

		if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
			t.Errorf("content-type = %s", ct)
		}
		if cd := rec.Header().Get("Content-Disposition"); cd != `inline; filename="page-1"` {
			t.Errorf("content-disposition = %s", cd)
		}
	})
}
