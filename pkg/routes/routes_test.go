package routes_test

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/JaimeStill/examiner/pkg/routes"
)

func reply(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body + ":" + r.PathValue("id")))
	}
}

func TestRegister(t *testing.T) {
	mux := http.NewServeMux()

	grades := routes.Group{
		Prefix: "/grades",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: reply("list")},
			{Method: "GET", Pattern: "/{id}", Handler: reply("find")},
		},
	}
	marking := routes.Group{
		Prefix: "/marking",
		Routes: []routes.Route{{Method: "POST", Pattern: "", Handler: reply("mark")}},
	}

	got := routes.Register(mux, grades, marking)
	want := []string{"GET /grades", "GET /grades/{id}", "POST /marking"}
	if !slices.Equal(got, want) {
		t.Fatalf("Register = %v, want %v", got, want)
	}

	tests := []struct {
		method string
		path   string
		status int
		body   string
	}{
		{"GET", "/grades", http.StatusOK, "list:"},
		{"GET", "/grades/42", http.StatusOK, "find:42"},
		{"POST", "/marking", http.StatusOK, "mark:"},
		{"GET", "/marking", http.StatusMethodNotAllowed, ""},
		{"GET", "/prompts", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.body != "" && rec.Body.String() != tt.body {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.body)
			}
		})
	}
}

func TestRegisterConflict(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate pattern")
		}
	}()

	g := routes.Group{Prefix: "/schemes", Routes: []routes.Route{{Method: "GET", Pattern: "", Handler: reply("a")}}}
	routes.Register(http.NewServeMux(), g, g)
}
