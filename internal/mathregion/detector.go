// Package mathregion decides which clustered regions of an answer sheet are
// re-read by the math recognizer. Every cluster becomes a MathBlock carrying
// the primary text; math-like, low-confidence blocks are cropped and sent to
// the math recognizer sequentially, suspicious and more math-like blocks first.
package mathregion

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"math"
	"slices"
	"strings"

	_ "image/jpeg"

	"golang.org/x/image/draw"
	"golang.org/x/time/rate"

	"github.com/JaimeStill/examiner/internal/layout"
	"github.com/JaimeStill/examiner/internal/recognition"
)

// Stats summarizes one detection run.
type Stats struct {
	Candidates int `json:"candidates"`
	Skipped    int `json:"skipped"`
	Calls      int `json:"calls"`
	Reused     int `json:"reused"`
	Failed     int `json:"failed"`
}

// Detector triages clusters and calls the math recognizer for the regions
// that need it.
type Detector struct {
	recognizer recognition.MathRecognizer
	cfg        Config
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// New creates a Detector. A nil recognizer disables math recognition and every
// block keeps its primary text.
func New(recognizer recognition.MathRecognizer, cfg Config, logger *slog.Logger) *Detector {
	limit := rate.Inf
	if d := cfg.DelayDuration(); d > 0 {
		limit = rate.Every(d)
	}

	return &Detector{
		recognizer: recognizer,
		cfg:        cfg,
		limiter:    rate.NewLimiter(limit, 1),
		logger:     logger.With("system", "mathregion"),
	}
}

type lookup struct {
	result recognition.MathResult
	err    error
}

// Detect converts clusters into MathBlocks in cluster order. Blocks at or
// above the skip confidence reuse the primary text without a recognizer call.
// Identical regions are sent once. Recognizer failures keep the primary text.
func (d *Detector) Detect(ctx context.Context, source []byte, clusters []layout.Cluster) ([]layout.MathBlock, Stats, error) {
	blocks := make([]layout.MathBlock, len(clusters))
	for i, c := range clusters {
		blocks[i] = layout.MathBlock{
			Box:            c.Box,
			RecognizedText: c.Text,
			Confidence:     c.Confidence,
			MathLikeness:   Likeness(c.Text),
			Suspicious:     Suspicious(c.Text, c.Confidence, d.cfg.SuspiciousConfidence),
		}
	}

	var stats Stats
	queue := d.prioritize(blocks, &stats)
	if len(queue) == 0 || d.recognizer == nil {
		return blocks, stats, nil
	}

	img, _, err := image.Decode(bytes.NewReader(source))
	if err != nil {
		d.logger.WarnContext(ctx, "source image not decodable, keeping primary text", "error", err)
		return blocks, stats, nil
	}

	seen := make(map[string]lookup)
	for _, i := range queue {
		sig := blocks[i].Box.Signature()

		res, ok := seen[sig]
		if ok {
			stats.Reused++
		} else {
			if err := d.limiter.Wait(ctx); err != nil {
				return blocks, stats, err
			}
			stats.Calls++
			res = d.recognize(ctx, img, blocks[i].Box)
			seen[sig] = res
		}

		if res.err != nil {
			if !ok {
				stats.Failed++
				d.logger.WarnContext(ctx, "math recognition failed, keeping primary text", "region", sig, "error", res.err)
			}
			continue
		}

		expr := strings.TrimSpace(res.result.Expression)
		if expr == "" {
			continue
		}

		blocks[i].MathExpression = expr
		if res.result.Confidence > 0 {
			blocks[i].Confidence = res.result.Confidence
		}
	}

	d.logger.InfoContext(
		ctx, "math regions processed",
		"blocks", len(blocks),
		"candidates", stats.Candidates,
		"skipped", stats.Skipped,
		"calls", stats.Calls,
		"reused", stats.Reused,
		"failed", stats.Failed,
	)

	return blocks, stats, nil
}

// prioritize returns indices of blocks that need the math recognizer,
// suspicious blocks first and then by descending likeness.
func (d *Detector) prioritize(blocks []layout.MathBlock, stats *Stats) []int {
	queue := make([]int, 0)
	for i, b := range blocks {
		if strings.TrimSpace(b.RecognizedText) == "" && !b.Suspicious {
			continue
		}
		if b.MathLikeness < d.cfg.Threshold {
			continue
		}
		stats.Candidates++
		if b.Confidence >= d.cfg.SkipConfidence {
			stats.Skipped++
			continue
		}
		queue = append(queue, i)
	}

	slices.SortStableFunc(queue, func(a, b int) int {
		ba, bb := blocks[a], blocks[b]
		if ba.Suspicious != bb.Suspicious {
			if ba.Suspicious {
				return -1
			}
			return 1
		}
		switch {
		case ba.MathLikeness > bb.MathLikeness:
			return -1
		case ba.MathLikeness < bb.MathLikeness:
			return 1
		}
		return 0
	})

	return queue
}

func (d *Detector) recognize(ctx context.Context, img image.Image, box layout.Box) lookup {
	crop, err := Crop(img, box, d.cfg.Padding)
	if err != nil {
		return lookup{err: err}
	}
	res, err := d.recognizer.RecognizeMath(ctx, crop)
	return lookup{result: res, err: err}
}

// Crop extracts the padded box from img and encodes it as PNG.
func Crop(img image.Image, box layout.Box, padding float64) ([]byte, error) {
	b := img.Bounds()
	padded := box.Pad(math.Max(padding, 0))
	r := padded.Rect().Add(b.Min).Intersect(b)
	if r.Empty() {
		return nil, fmt.Errorf("region %s outside image bounds", box.Signature())
	}

	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), img, r.Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode crop: %w", err)
	}
	return buf.Bytes(), nil
}
