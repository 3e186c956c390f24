package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestFitScaleToFitCentered(t *testing.T) {
	// 400x300 image into an 800x600 canvas: scale min(2, 2) = 2, no margin,
	// image center lands at logical (400, 300).
	img := image.NewRGBA(image.Rect(0, 0, 400, 300))
	layer := Fit(img, 800, 600)
	if layer.Scale != 2 {
		t.Fatalf("scale = %v, want 2", layer.Scale)
	}
	if layer.OffsetX != 0 || layer.OffsetY != 0 {
		t.Fatalf("offset = (%v, %v), want (0, 0)", layer.OffsetX, layer.OffsetY)
	}
	cx := layer.OffsetX + float64(layer.Width())*layer.Scale/2
	cy := layer.OffsetY + float64(layer.Height())*layer.Scale/2
	if cx != 400 || cy != 300 {
		t.Fatalf("image center = (%v, %v), want (400, 300)", cx, cy)
	}
}

func TestFitLetterboxes(t *testing.T) {
	// A wide image is limited by width; the spare height is split evenly.
	img := image.NewRGBA(image.Rect(0, 0, 800, 200))
	layer := Fit(img, 800, 600)
	if layer.Scale != 1 {
		t.Fatalf("scale = %v, want 1", layer.Scale)
	}
	if layer.OffsetX != 0 || layer.OffsetY != 200 {
		t.Fatalf("offset = (%v, %v), want (0, 200)", layer.OffsetX, layer.OffsetY)
	}
}

func TestDecodeBase64RoundTrip(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	src.SetRGBA(1, 1, color.RGBA{R: 200, G: 10, B: 30, A: 255})
	encoded := base64.StdEncoding.EncodeToString(encodePNG(t, src))

	img, err := DecodeBase64(encoded)
	if err != nil {
		t.Fatalf("DecodeBase64: %v", err)
	}
	if img.Bounds() != src.Bounds() {
		t.Fatalf("bounds = %v, want %v", img.Bounds(), src.Bounds())
	}
	r, g, b, _ := img.At(1, 1).RGBA()
	if r>>8 != 200 || g>>8 != 10 || b>>8 != 30 {
		t.Fatalf("pixel (1,1) = (%d, %d, %d)", r>>8, g>>8, b>>8)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode([]byte("not an image")); err == nil {
		t.Fatal("expected decode error for garbage input")
	}
	if _, err := DecodeBase64("!!not base64!!"); err == nil {
		t.Fatal("expected error for invalid base64")
	}
}
