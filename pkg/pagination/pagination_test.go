package pagination_test

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/JaimeStill/examiner/pkg/pagination"
)

func TestConfigFinalize(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		var cfg pagination.Config
		if err := cfg.Finalize(nil); err != nil {
			t.Fatal(err)
		}
		if cfg.DefaultPageSize != 20 || cfg.MaxPageSize != 100 {
			t.Errorf("defaults = %+v", cfg)
		}
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("TEST_PAGE_DEFAULT", "10")
		t.Setenv("TEST_PAGE_MAX", "not-a-number")

		var cfg pagination.Config
		err := cfg.Finalize(&pagination.ConfigEnv{DefaultPageSize: "TEST_PAGE_DEFAULT", MaxPageSize: "TEST_PAGE_MAX"})
		if err != nil {
			t.Fatal(err)
		}
		if cfg.DefaultPageSize != 10 || cfg.MaxPageSize != 100 {
			t.Errorf("env = %+v", cfg)
		}
	})

	t.Run("default exceeds max", func(t *testing.T) {
		cfg := pagination.Config{DefaultPageSize: 50, MaxPageSize: 10}
		if err := cfg.Finalize(nil); err == nil {
			t.Error("expected validation error")
		}
	})
}

func TestPageRequestFromQuery(t *testing.T) {
	cfg := pagination.Config{DefaultPageSize: 20, MaxPageSize: 50}

	tests := []struct {
		query    string
		page     int
		pageSize int
		offset   int
		search   string
		sorts    int
	}{
		{"", 1, 20, 0, "", 0},
		{"page=3&page_size=10", 3, 10, 20, "", 0},
		{"page=-2&page_size=500", 1, 50, 0, "", 0},
		{"search=triangle&sort=paper_title,-question_number", 1, 20, 0, "triangle", 2},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			values, _ := url.ParseQuery(tt.query)
			req := pagination.PageRequestFromQuery(values, cfg)

			if req.Page != tt.page || req.PageSize != tt.pageSize || req.Offset() != tt.offset {
				t.Errorf("page=%d size=%d offset=%d", req.Page, req.PageSize, req.Offset())
			}
			if tt.search != "" && (req.Search == nil || *req.Search != tt.search) {
				t.Errorf("search = %v", req.Search)
			}
			if len(req.Sort) != tt.sorts {
				t.Errorf("sort fields = %d, want %d", len(req.Sort), tt.sorts)
			}
		})
	}
}

func TestNewPageResult(t *testing.T) {
	tests := []struct {
		name       string
		total      int
		page       int
		pageSize   int
		totalPages int
		hasNext    bool
	}{
		{"empty", 0, 1, 20, 1, false},
		{"exact", 40, 1, 20, 2, true},
		{"remainder", 41, 3, 20, 3, false},
		{"zero size", 5, 1, 0, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := pagination.NewPageResult[string](nil, tt.total, tt.page, tt.pageSize)
			if res.TotalPages != tt.totalPages || res.HasNext != tt.hasNext {
				t.Errorf("total pages = %d has next = %v", res.TotalPages, res.HasNext)
			}
			if res.Data == nil {
				t.Error("nil data")
			}
		})
	}
}

func TestSortFieldsUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"string", `{"sort": "board,-series"}`, 2},
		{"array", `{"sort": [{"field": "board", "descending": true}]}`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req pagination.PageRequest
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if len(req.Sort) != tt.want {
				t.Errorf("sort = %+v", req.Sort)
			}
		})
	}
}
