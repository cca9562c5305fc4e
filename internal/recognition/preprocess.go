package recognition

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	_ "image/gif"
	_ "image/jpeg"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"rescribe.xyz/preproc"
)

// Pass names.
const (
	PassBaseline  = "baseline"
	PassNormalize = "normalize"
	PassThreshold = "threshold"
)

// Pass is one preprocessing variant of the source image. Prepare returns the
// image to recognize and the factor it was scaled by, so fragment boxes can be
// mapped back to source coordinates. A nil Prepare sends the original bytes.
type Pass struct {
	Name    string
	Prepare func(src image.Image) (image.Image, float64)
}

// DefaultPasses returns the baseline, grayscale+normalize, and
// sharpen+threshold passes.
func DefaultPasses(opts Config) []Pass {
	opts.loadDefaults()
	return []Pass{
		{Name: PassBaseline},
		{
			Name: PassNormalize,
			Prepare: func(src image.Image) (image.Image, float64) {
				gray, scale := upscale(grayscale(src), opts.MinWidth)
				return stretch(gray), scale
			},
		},
		{
			Name: PassThreshold,
			Prepare: func(src image.Image) (image.Image, float64) {
				gray, scale := upscale(grayscale(src), opts.MinWidth)
				return preproc.Sauvola(sharpen(gray), opts.SauvolaK, opts.SauvolaWindow), scale
			},
		},
	}
}

func decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedImage, err)
	}
	return img, nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func grayscale(src image.Image) *image.Gray {
	b := src.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), src, b.Min, draw.Src)
	return gray
}

// upscale enlarges images narrower than minWidth; handwriting recognizes
// poorly below roughly a thousand pixels across.
func upscale(gray *image.Gray, minWidth int) (*image.Gray, float64) {
	w := gray.Bounds().Dx()
	if minWidth <= 0 || w == 0 || w >= minWidth {
		return gray, 1
	}

	scale := float64(minWidth) / float64(w)
	h := int(float64(gray.Bounds().Dy()) * scale)

	dst := image.NewGray(image.Rect(0, 0, minWidth, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), gray, gray.Bounds(), draw.Src, nil)
	return dst, scale
}

// stretch maps the 1st..99th intensity percentiles onto the full range.
func stretch(gray *image.Gray) *image.Gray {
	var hist [256]int
	for _, p := range gray.Pix {
		hist[p]++
	}

	total := len(gray.Pix)
	if total == 0 {
		return gray
	}

	lo, hi := percentile(hist, total, 0.01), percentile(hist, total, 0.99)
	if hi <= lo {
		return gray
	}

	out := image.NewGray(gray.Bounds())
	span := float64(hi - lo)
	for i, p := range gray.Pix {
		v := (float64(int(p)-lo) / span) * 255
		out.Pix[i] = clamp(v)
	}
	return out
}

func percentile(hist [256]int, total int, q float64) int {
	target := int(float64(total) * q)
	seen := 0
	for v, n := range hist {
		seen += n
		if seen > target {
			return v
		}
	}
	return 255
}

// sharpen applies a 3x3 Laplacian sharpening kernel.
func sharpen(gray *image.Gray) *image.Gray {
	b := gray.Bounds()
	out := image.NewGray(b)

	at := func(x, y int) float64 {
		x = min(max(x, b.Min.X), b.Max.X-1)
		y = min(max(y, b.Min.Y), b.Max.Y-1)
		return float64(gray.GrayAt(x, y).Y)
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			v := 5*at(x, y) - at(x-1, y) - at(x+1, y) - at(x, y-1) - at(x, y+1)
			out.SetGray(x, y, color.Gray{Y: clamp(v)})
		}
	}
	return out
}

func clamp(v float64) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return uint8(v)
}
