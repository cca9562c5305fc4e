// Package recognition turns a photographed answer sheet into clustered text regions.
// Several differently preprocessed copies of the image are sent to the primary
// recognizer concurrently; surviving fragments are pooled and clustered. When
// every pass fails the math recognizer is asked for a single degraded block.
package recognition

import (
	"context"

	"github.com/JaimeStill/examiner/internal/layout"
)

// Recognizer is the primary text recognizer. Implementations return word or
// line fragments with pixel bounding boxes; partial or empty results are valid.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte) ([]layout.Fragment, error)
}

// MathResult is the math recognizer's answer for one image region.
type MathResult struct {
	Expression string  `json:"expression"`
	Confidence float64 `json:"confidence"`
}

// MathRecognizer converts an image of a mathematical expression into text.
type MathRecognizer interface {
	RecognizeMath(ctx context.Context, image []byte) (MathResult, error)
}

// PassReport records the outcome of one recognition pass.
type PassReport struct {
	Name      string `json:"name"`
	Fragments int    `json:"fragments"`
	Error     string `json:"error,omitempty"`
}

// Result is the output of one orchestrated recognition run.
// Fallback is set only when every pass failed and the math recognizer
// produced a degraded whole-image block; Clusters is empty in that case.
type Result struct {
	Clusters  []layout.Cluster  `json:"clusters"`
	Fragments int               `json:"fragments"`
	Passes    []PassReport      `json:"passes"`
	Fallback  *layout.MathBlock `json:"fallback,omitempty"`
	Width     int               `json:"width"`
	Height    int               `json:"height"`
}

// Degraded reports whether the result came from the math-only fallback.
func (r *Result) Degraded() bool {
	return r.Fallback != nil
}
