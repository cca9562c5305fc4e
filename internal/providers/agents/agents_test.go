package agents

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
)

func page(t *testing.T, encode func(*bytes.Buffer, image.Image) error) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	img.SetGray(2, 2, color.Gray{Y: 255})

	var buf bytes.Buffer
	if err := encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestEncodeImage(t *testing.T) {
	tests := []struct {
		name   string
		encode func(*bytes.Buffer, image.Image) error
	}{
		{"png", func(b *bytes.Buffer, img image.Image) error { return png.Encode(b, img) }},
		{"jpeg converted", func(b *bytes.Buffer, img image.Image) error { return jpeg.Encode(b, img, nil) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uri, err := encodeImage(page(t, tt.encode))
			if err != nil {
				t.Fatalf("encodeImage: %v", err)
			}

			_, payload, ok := strings.Cut(uri, "base64,")
			if !ok || !strings.HasPrefix(uri, "data:image/png") {
				t.Fatalf("uri = %.40s", uri)
			}
			data, err := base64.StdEncoding.DecodeString(payload)
			if err != nil {
				t.Fatalf("payload: %v", err)
			}
			if _, err := png.Decode(bytes.NewReader(data)); err != nil {
				t.Errorf("payload is not a png: %v", err)
			}
		})
	}
}

func TestEncodeImageRejectsGarbage(t *testing.T) {
	if _, err := encodeImage([]byte("not an image")); err == nil {
		t.Error("expected decode error")
	}
}
