// Package tesseract binds the primary text recognizer to the Tesseract engine
// through gosseract. Each call uses its own client so concurrent recognition
// passes never share engine state.
package tesseract

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/JaimeStill/examiner/internal/layout"
)

// Recognizer reads word or line fragments from an image.
type Recognizer struct {
	cfg       Config
	newClient func() *gosseract.Client
}

// New creates a Recognizer from a finalized Config.
func New(cfg Config) *Recognizer {
	return &Recognizer{cfg: cfg, newClient: gosseract.NewClient}
}

// Recognize returns one fragment per detected word or line with a pixel box
// and a confidence in [0, 1].
func (r *Recognizer) Recognize(ctx context.Context, image []byte) ([]layout.Fragment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := r.newClient()
	defer c.Close()

	if err := c.SetImageFromBytes(image); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}
	if len(r.cfg.Languages) > 0 {
		if err := c.SetLanguage(r.cfg.Languages...); err != nil {
			return nil, fmt.Errorf("set languages: %w", err)
		}
	}
	if r.cfg.DPI > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(r.cfg.DPI)); err != nil {
			return nil, fmt.Errorf("set dpi: %w", err)
		}
	}

	boxes, err := c.GetBoundingBoxes(r.cfg.level())
	if err != nil {
		return nil, fmt.Errorf("bounding boxes: %w", err)
	}

	fragments := make([]layout.Fragment, 0, len(boxes))
	for _, b := range boxes {
		text := strings.TrimSpace(b.Word)
		if text == "" {
			continue
		}
		fragments = append(fragments, layout.Fragment{
			Text:       text,
			Confidence: b.Confidence / 100,
			Box:        layout.BoxFromRect(b.Box),
		})
	}

	return fragments, nil
}
