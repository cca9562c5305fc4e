package mathregion_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/JaimeStill/examiner/internal/layout"
	"github.com/JaimeStill/examiner/internal/mathregion"
	"github.com/JaimeStill/examiner/internal/recognition"
)

type recorder struct {
	mu     sync.Mutex
	widths []int
	result recognition.MathResult
	err    error
}

func (r *recorder) RecognizeMath(_ context.Context, data []byte) (recognition.MathResult, error) {
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return recognition.MathResult{}, err
	}
	r.mu.Lock()
	r.widths = append(r.widths, cfg.Width)
	r.mu.Unlock()
	return r.result, r.err
}

func page(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 100, 50))); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func newDetector(t *testing.T, rec recognition.MathRecognizer) *mathregion.Detector {
	t.Helper()
	cfg := mathregion.Config{Delay: "1ms", Padding: 1}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	return mathregion.New(rec, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func cluster(text string, conf, x, w float64) layout.Cluster {
	return layout.Cluster{Text: text, Confidence: conf, Box: layout.Box{X: x, Y: 0, Width: w, Height: 10}}
}

func TestLikeness(t *testing.T) {
	tests := []struct {
		text  string
		mathy bool
	}{
		{"x = 4", true},
		{`\frac{3}{4} + 2`, true},
		{"3/4 of 12 = 9", true},
		{"2x^2 - 5x + 3 = 0", true},
		{"Because the angles on a straight line add up", false},
		{"The triangle is isosceles", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := mathregion.Likeness(tt.text)
			if got < 0 || got > 1 {
				t.Fatalf("Likeness = %v, out of range", got)
			}
			if (got >= 0.35) != tt.mathy {
				t.Errorf("Likeness(%q) = %v, mathy want %v", tt.text, got, tt.mathy)
			}
		})
	}

	if got := mathregion.Likeness("   "); got != 0 {
		t.Errorf("blank Likeness = %v, want 0", got)
	}
}

func TestSuspicious(t *testing.T) {
	tests := []struct {
		name string
		text string
		conf float64
		want bool
	}{
		{"low confidence", "x = 4", 0.4, true},
		{"question mark garbage", "x ? 4", 0.8, true},
		{"replacement rune", "x = 4�", 0.8, true},
		{"isolated symbol", "x = 4 ~ 2", 0.8, true},
		{"clean", "x = 4", 0.8, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mathregion.Suspicious(tt.text, tt.conf, 0.6); got != tt.want {
				t.Errorf("Suspicious = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetect(t *testing.T) {
	src := page(t)

	t.Run("high confidence skips the recognizer", func(t *testing.T) {
		rec := &recorder{result: recognition.MathResult{Expression: "ignored"}}
		d := newDetector(t, rec)

		blocks, stats, err := d.Detect(context.Background(), src, []layout.Cluster{
			cluster("x = 4", 0.95, 0, 20),
		})
		if err != nil {
			t.Fatalf("Detect: %v", err)
		}
		if len(rec.widths) != 0 {
			t.Errorf("recognizer called %d times, want 0", len(rec.widths))
		}
		if stats.Skipped != 1 {
			t.Errorf("Skipped = %d, want 1", stats.Skipped)
		}
		if blocks[0].Text() != "x = 4" || blocks[0].MathExpression != "" {
			t.Errorf("block = %+v", blocks[0])
		}
	})

	t.Run("low confidence math is re-read", func(t *testing.T) {
		rec := &recorder{result: recognition.MathResult{Expression: "x = 4", Confidence: 0.92}}
		d := newDetector(t, rec)

		blocks, stats, err := d.Detect(context.Background(), src, []layout.Cluster{
			cluster("x = 4", 0.7, 0, 20),
			cluster("Because it is bigger", 0.7, 40, 40),
		})
		if err != nil {
			t.Fatalf("Detect: %v", err)
		}
		if stats.Calls != 1 {
			t.Errorf("Calls = %d, want 1", stats.Calls)
		}
		if blocks[0].MathExpression != "x = 4" || blocks[0].Confidence != 0.92 {
			t.Errorf("math block = %+v", blocks[0])
		}
		if blocks[1].MathExpression != "" || blocks[1].RecognizedText != "Because it is bigger" {
			t.Errorf("text block = %+v", blocks[1])
		}
	})

	t.Run("failure keeps primary text", func(t *testing.T) {
		rec := &recorder{err: errors.New("rate limited")}
		d := newDetector(t, rec)

		blocks, stats, err := d.Detect(context.Background(), src, []layout.Cluster{
			cluster("y = 2x", 0.3, 0, 20),
		})
		if err != nil {
			t.Fatalf("Detect: %v", err)
		}
		if stats.Failed != 1 {
			t.Errorf("Failed = %d, want 1", stats.Failed)
		}
		if blocks[0].Text() != "y = 2x" {
			t.Errorf("Text = %q, want primary text", blocks[0].Text())
		}
	})

	t.Run("identical regions are sent once", func(t *testing.T) {
		rec := &recorder{result: recognition.MathResult{Expression: "a = 1"}}
		d := newDetector(t, rec)

		blocks, stats, err := d.Detect(context.Background(), src, []layout.Cluster{
			cluster("a = 1", 0.5, 10, 20),
			cluster("a = l", 0.5, 10.2, 20),
		})
		if err != nil {
			t.Fatalf("Detect: %v", err)
		}
		if stats.Calls != 1 || stats.Reused != 1 {
			t.Errorf("stats = %+v, want 1 call and 1 reuse", stats)
		}
		if blocks[1].MathExpression != "a = 1" {
			t.Errorf("reused block = %+v", blocks[1])
		}
	})

	t.Run("suspicious blocks go first", func(t *testing.T) {
		rec := &recorder{result: recognition.MathResult{Expression: "ok"}}
		d := newDetector(t, rec)

		_, _, err := d.Detect(context.Background(), src, []layout.Cluster{
			cluster(`\frac{1}{2} = 0.5`, 0.7, 30, 40),
			cluster("x=1", 0.5, 0, 20),
		})
		if err != nil {
			t.Fatalf("Detect: %v", err)
		}
		if len(rec.widths) != 2 {
			t.Fatalf("calls = %d, want 2", len(rec.widths))
		}
		if rec.widths[0] != 21 || rec.widths[1] != 42 {
			t.Errorf("crop order widths = %v, want [21 42]", rec.widths)
		}
	})

	t.Run("no recognizer keeps every text", func(t *testing.T) {
		d := newDetector(t, nil)
		clusters := []layout.Cluster{
			cluster("x = 4", 0.2, 0, 20),
			cluster("therefore", 0.9, 30, 20),
		}

		blocks, _, err := d.Detect(context.Background(), src, clusters)
		if err != nil {
			t.Fatalf("Detect: %v", err)
		}
		for i, b := range blocks {
			if b.RecognizedText != clusters[i].Text {
				t.Errorf("block %d text = %q, want %q", i, b.RecognizedText, clusters[i].Text)
			}
		}
	})
}

func TestCrop(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 100, 50))

	data, err := mathregion.Crop(img, layout.Box{X: 90, Y: 40, Width: 30, Height: 30}, 0)
	if err != nil {
		t.Fatalf("Crop: %v", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.Width != 10 || cfg.Height != 10 {
		t.Errorf("crop = %dx%d, want 10x10 clipped to bounds", cfg.Width, cfg.Height)
	}

	if _, err := mathregion.Crop(img, layout.Box{X: 200, Y: 200, Width: 5, Height: 5}, 0); err == nil {
		t.Error("expected error for region outside image")
	}
}
