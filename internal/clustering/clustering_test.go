package clustering_test

import (
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/JaimeStill/examiner/internal/clustering"
	"github.com/JaimeStill/examiner/internal/layout"
)

func newClusterer(t *testing.T, cfg clustering.Config) *clustering.Clusterer {
	t.Helper()
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	return clustering.New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func frag(pass, text string, conf, x, y, w, h float64) layout.Fragment {
	return layout.Fragment{
		SourcePass: pass,
		Text:       text,
		Confidence: conf,
		Box:        layout.Box{X: x, Y: y, Width: w, Height: h},
	}
}

func TestCluster(t *testing.T) {
	t.Run("neighbors cluster and noise is kept", func(t *testing.T) {
		c := newClusterer(t, clustering.Config{})
		got := c.Cluster([]layout.Fragment{
			frag("baseline", "7", 0.9, 500, 500, 40, 20),
			frag("baseline", "= 4", 0.6, 60, 10, 40, 20),
			frag("baseline", "x", 0.8, 10, 10, 40, 20),
		})

		if len(got) != 2 {
			t.Fatalf("len = %d, want 2", len(got))
		}
		if got[0].Text != "x = 4" {
			t.Errorf("Text = %q, want %q", got[0].Text, "x = 4")
		}
		want := layout.Box{X: 10, Y: 10, Width: 90, Height: 20}
		if got[0].Box != want {
			t.Errorf("Box = %+v, want %+v", got[0].Box, want)
		}
		if math.Abs(got[0].Confidence-0.7) > 1e-9 {
			t.Errorf("Confidence = %v, want 0.7", got[0].Confidence)
		}
		if got[1].Text != "7" || got[1].Index != 1 {
			t.Errorf("noise cluster = %+v, want singleton at index 1", got[1])
		}
	})

	t.Run("reading order within a cluster", func(t *testing.T) {
		c := newClusterer(t, clustering.Config{})
		got := c.Cluster([]layout.Fragment{
			frag("baseline", "b", 0.9, 90, 0, 30, 20),
			frag("baseline", "c", 0.9, 40, 30, 30, 20),
			frag("baseline", "a", 0.9, 40, 2, 30, 20),
		})

		if len(got) != 1 {
			t.Fatalf("len = %d, want 1", len(got))
		}
		if got[0].Text != "a b\nc" {
			t.Errorf("Text = %q, want %q", got[0].Text, "a b\nc")
		}
	})

	t.Run("staggered lines read the same in any input order", func(t *testing.T) {
		c := newClusterer(t, clustering.Config{Radius: 200, MinPoints: 1})
		a := frag("baseline", "A", 0.9, 100, 0, 30, 20)
		b := frag("baseline", "B", 0.9, 0, 9, 30, 20)
		d := frag("baseline", "C", 0.9, 50, 18, 30, 20)

		orders := [][]layout.Fragment{
			{a, b, d}, {a, d, b}, {b, a, d}, {b, d, a}, {d, a, b}, {d, b, a},
		}
		for _, in := range orders {
			got := c.Cluster(in)
			if len(got) != 1 {
				t.Fatalf("len = %d, want 1", len(got))
			}
			if got[0].Text != "B A\nC" {
				t.Errorf("Text = %q for input %s%s%s, want %q", got[0].Text, in[0].Text, in[1].Text, in[2].Text, "B A\nC")
			}
		}
	})

	t.Run("intersecting clusters merge", func(t *testing.T) {
		c := newClusterer(t, clustering.Config{Radius: 10, MinPoints: 1})
		got := c.Cluster([]layout.Fragment{
			frag("baseline", "long line of working", 0.9, 0, 0, 200, 20),
			frag("baseline", "y", 0.9, 150, 5, 20, 10),
		})

		if len(got) != 1 {
			t.Fatalf("len = %d, want 1", len(got))
		}
		if got[0].Box.Width != 200 {
			t.Errorf("Width = %v, want 200", got[0].Box.Width)
		}
	})

	t.Run("duplicate detections across passes are fused", func(t *testing.T) {
		c := newClusterer(t, clustering.Config{})
		got := c.Cluster([]layout.Fragment{
			frag("baseline", "3x", 0.5, 10, 10, 40, 20),
			frag("sharpen", "3x²", 0.9, 11, 10, 40, 20),
		})

		if len(got) != 1 {
			t.Fatalf("len = %d, want 1", len(got))
		}
		if got[0].Text != "3x²" {
			t.Errorf("Text = %q, want highest confidence detection", got[0].Text)
		}
		if len(got[0].Fragments) != 1 {
			t.Errorf("fragments = %d, want 1", len(got[0].Fragments))
		}
	})

	t.Run("empty fragments are ignored", func(t *testing.T) {
		c := newClusterer(t, clustering.Config{})
		got := c.Cluster([]layout.Fragment{
			frag("baseline", "   ", 0.9, 10, 10, 40, 20),
			frag("baseline", "x", 0.9, 10, 10, 0, 0),
		})
		if len(got) != 0 {
			t.Errorf("len = %d, want 0", len(got))
		}
	})

	t.Run("indices are sequential", func(t *testing.T) {
		c := newClusterer(t, clustering.Config{Radius: 5, MinPoints: 2})
		got := c.Cluster([]layout.Fragment{
			frag("baseline", "c", 0.9, 10, 300, 10, 10),
			frag("baseline", "a", 0.9, 10, 10, 10, 10),
			frag("baseline", "b", 0.9, 10, 150, 10, 10),
		})
		for i, cl := range got {
			if cl.Index != i {
				t.Errorf("cluster %d has index %d", i, cl.Index)
			}
		}
		if got[0].Text != "a" || got[2].Text != "c" {
			t.Errorf("order = %q %q %q, want a b c", got[0].Text, got[1].Text, got[2].Text)
		}
	})
}

func TestClusterNeverOverlaps(t *testing.T) {
	c := newClusterer(t, clustering.Config{Radius: 25, MinPoints: 2})
	rng := rand.New(rand.NewPCG(7, 11))

	for round := range 20 {
		fragments := make([]layout.Fragment, 40)
		for i := range fragments {
			fragments[i] = frag(
				"baseline", "t", rng.Float64(),
				rng.Float64()*400, rng.Float64()*400,
				10+rng.Float64()*80, 10+rng.Float64()*30,
			)
		}

		got := c.Cluster(fragments)
		for i := range got {
			for j := i + 1; j < len(got); j++ {
				if got[i].Box.Intersects(got[j].Box) {
					t.Fatalf("round %d: clusters %d and %d intersect: %+v %+v",
						round, i, j, got[i].Box, got[j].Box)
				}
			}
		}
	}
}

func TestConfigFinalize(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		var cfg clustering.Config
		if err := cfg.Finalize(nil); err != nil {
			t.Fatalf("Finalize: %v", err)
		}
		if cfg.Radius != 60 || cfg.MinPoints != 2 || cfg.MaxMergeIterations != 50 {
			t.Errorf("defaults = %+v", cfg)
		}
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("TEST_CLUSTER_RADIUS", "42.5")
		cfg := clustering.Config{}
		if err := cfg.Finalize(&clustering.Env{Radius: "TEST_CLUSTER_RADIUS"}); err != nil {
			t.Fatalf("Finalize: %v", err)
		}
		if cfg.Radius != 42.5 {
			t.Errorf("Radius = %v, want 42.5", cfg.Radius)
		}
	})

	t.Run("invalid overlap", func(t *testing.T) {
		cfg := clustering.Config{FusionOverlap: 1.5}
		if err := cfg.Finalize(nil); err == nil {
			t.Error("expected validation error")
		}
	})
}
