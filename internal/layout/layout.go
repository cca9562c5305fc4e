// Package layout defines the spatial types shared by the recognition,
// clustering, and math-region stages of the marking pipeline.
package layout

import (
	"fmt"
	"image"
	"math"
)

// Box is an axis-aligned rectangle in source image pixels.
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns the x coordinate of the box's right edge.
func (b Box) Right() float64 { return b.X + b.Width }

// Bottom returns the y coordinate of the box's bottom edge.
func (b Box) Bottom() float64 { return b.Y + b.Height }

// Center returns the centre point of the box.
func (b Box) Center() (float64, float64) {
	return b.X + b.Width/2, b.Y + b.Height/2
}

// Area returns the box area. Degenerate boxes have zero area.
func (b Box) Area() float64 {
	if b.Width <= 0 || b.Height <= 0 {
		return 0
	}
	return b.Width * b.Height
}

// Empty reports whether the box has no area.
func (b Box) Empty() bool {
	return b.Area() == 0
}

// Intersects reports whether the two boxes overlap with a positive area.
// Boxes that only share an edge do not intersect.
func (b Box) Intersects(o Box) bool {
	return b.X < o.Right() && o.X < b.Right() &&
		b.Y < o.Bottom() && o.Y < b.Bottom()
}

// Union returns the minimal box covering both boxes.
func (b Box) Union(o Box) Box {
	if b.Empty() {
		return o
	}
	if o.Empty() {
		return b
	}
	x := math.Min(b.X, o.X)
	y := math.Min(b.Y, o.Y)
	return Box{
		X:      x,
		Y:      y,
		Width:  math.Max(b.Right(), o.Right()) - x,
		Height: math.Max(b.Bottom(), o.Bottom()) - y,
	}
}

// Pad grows the box by n pixels on every side.
func (b Box) Pad(n float64) Box {
	return Box{
		X:      b.X - n,
		Y:      b.Y - n,
		Width:  b.Width + 2*n,
		Height: b.Height + 2*n,
	}
}

// Rect converts the box to an integer image rectangle.
func (b Box) Rect() image.Rectangle {
	return image.Rect(
		int(math.Floor(b.X)),
		int(math.Floor(b.Y)),
		int(math.Ceil(b.Right())),
		int(math.Ceil(b.Bottom())),
	)
}

// Signature identifies a box by its rounded coordinates.
// Two boxes with equal signatures cover the same pixel region.
func (b Box) Signature() string {
	return fmt.Sprintf(
		"%d:%d:%d:%d",
		int(math.Round(b.X)),
		int(math.Round(b.Y)),
		int(math.Round(b.Width)),
		int(math.Round(b.Height)),
	)
}

// BoxFromRect converts an image rectangle to a Box.
func BoxFromRect(r image.Rectangle) Box {
	return Box{
		X:      float64(r.Min.X),
		Y:      float64(r.Min.Y),
		Width:  float64(r.Dx()),
		Height: float64(r.Dy()),
	}
}

// Fragment is a single piece of text detected by one recognition pass.
type Fragment struct {
	SourcePass string  `json:"source_pass"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Box        Box     `json:"box"`
}

// Cluster is a set of spatially adjacent fragments treated as one region of work.
// Box is the minimal rectangle covering every member fragment and Text is the
// reading-order concatenation of member texts.
type Cluster struct {
	Index      int        `json:"index"`
	Box        Box        `json:"box"`
	Text       string     `json:"text"`
	Confidence float64    `json:"confidence"`
	Fragments  []Fragment `json:"fragments,omitempty"`
}

// MathBlock is the downstream unit of student work. RecognizedText carries the
// primary recognizer's text; MathExpression is set when the math recognizer
// answered for the block.
type MathBlock struct {
	Box            Box     `json:"box"`
	RecognizedText string  `json:"recognized_text"`
	MathExpression string  `json:"math_expression,omitempty"`
	Confidence     float64 `json:"confidence"`
	MathLikeness   float64 `json:"math_likeness"`
	Suspicious     bool    `json:"suspicious"`
}

// Text returns the best available text for the block, preferring the
// math recognizer's expression.
func (m MathBlock) Text() string {
	if m.MathExpression != "" {
		return m.MathExpression
	}
	return m.RecognizedText
}
