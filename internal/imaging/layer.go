// Package imaging provides image decoding and base-layer placement for the
// annotation canvas.
package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/tiff"
)

// BaseLayer is the decoded background image together with its scale-to-fit
// placement in logical canvas coordinates. It is created once per successful
// upload and replaced wholesale by the next one.
type BaseLayer struct {
	Image image.Image

	// Scale is the fit factor min(canvasW/imageW, canvasH/imageH).
	Scale float64

	// OffsetX and OffsetY center the scaled image in the canvas, in logical
	// canvas pixels.
	OffsetX float64
	OffsetY float64
}

// Decode decodes raw image bytes (PNG, JPEG or TIFF).
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// DecodeBase64 decodes a base64-encoded image payload, the form the
// annotation service uses for /get_image responses.
func DecodeBase64(encoded string) (image.Image, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 image: %w", err)
	}
	return Decode(data)
}

// Fit places img in a canvasW x canvasH logical canvas: scaled by
// min(canvasW/imageW, canvasH/imageH) and centered.
func Fit(img image.Image, canvasW, canvasH float64) *BaseLayer {
	layer := &BaseLayer{Image: img, Scale: 1.0}
	if img == nil {
		return layer
	}
	b := img.Bounds()
	iw := float64(b.Dx())
	ih := float64(b.Dy())
	if iw <= 0 || ih <= 0 || canvasW <= 0 || canvasH <= 0 {
		return layer
	}

	scale := canvasW / iw
	if s := canvasH / ih; s < scale {
		scale = s
	}
	layer.Scale = scale
	layer.OffsetX = (canvasW - iw*scale) / 2
	layer.OffsetY = (canvasH - ih*scale) / 2
	return layer
}

// Width returns the source image width in pixels.
func (l *BaseLayer) Width() int {
	if l == nil || l.Image == nil {
		return 0
	}
	return l.Image.Bounds().Dx()
}

// Height returns the source image height in pixels.
func (l *BaseLayer) Height() int {
	if l == nil || l.Image == nil {
		return 0
	}
	return l.Image.Bounds().Dy()
}
