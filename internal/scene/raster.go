package scene

import (
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"
)

// Rasterize executes a display list into a fresh w x h RGBA frame. The output
// starts from an opaque dark background, so anything a previous frame drew is
// gone; full-redraw semantics follow from Compose plus Rasterize alone.
func Rasterize(cmds []Command, w, h int) *image.RGBA {
	output := image.NewRGBA(image.Rect(0, 0, w, h))

	// Opaque near-black background.
	for i := 0; i < len(output.Pix); i += 4 {
		output.Pix[i] = 24
		output.Pix[i+1] = 24
		output.Pix[i+2] = 24
		output.Pix[i+3] = 255
	}

	for _, cmd := range cmds {
		switch c := cmd.(type) {
		case ImageCmd:
			drawImage(output, c)
		case DiscCmd:
			drawDisc(output, c)
		case PolylineCmd:
			for i := 0; i+1 < len(c.Points); i++ {
				drawLine(output, c.Points[i].X, c.Points[i].Y, c.Points[i+1].X, c.Points[i+1].Y, c.Width, c.Color)
			}
		case SegmentCmd:
			drawLine(output, c.Seg.A.X, c.Seg.A.Y, c.Seg.B.X, c.Seg.B.Y, c.Width, c.Color)
		}
	}

	return output
}

// drawImage scales the source into place with bilinear filtering.
func drawImage(output *image.RGBA, c ImageCmd) {
	if c.Src == nil || c.Scale <= 0 {
		return
	}
	src := c.Src.Bounds()
	dst := image.Rect(
		int(math.Floor(c.OffsetX)),
		int(math.Floor(c.OffsetY)),
		int(math.Ceil(c.OffsetX+float64(src.Dx())*c.Scale)),
		int(math.Ceil(c.OffsetY+float64(src.Dy())*c.Scale)),
	)
	xdraw.ApproxBiLinear.Scale(output, dst, c.Src, src, xdraw.Over, nil)
}

// drawDisc fills a circle and strokes a one-pixel contrasting ring around it.
func drawDisc(output *image.RGBA, c DiscCmd) {
	r := c.Radius
	if r < 1 {
		r = 1
	}
	outer := r + 1.5
	bounds := output.Bounds()

	minX := int(math.Floor(c.Center.X - outer))
	maxX := int(math.Ceil(c.Center.X + outer))
	minY := int(math.Floor(c.Center.Y - outer))
	maxY := int(math.Ceil(c.Center.Y + outer))

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			if x < bounds.Min.X || x >= bounds.Max.X || y < bounds.Min.Y || y >= bounds.Max.Y {
				continue
			}
			dx := float64(x) - c.Center.X
			dy := float64(y) - c.Center.Y
			d := math.Sqrt(dx*dx + dy*dy)
			if d <= r {
				output.SetRGBA(x, y, c.Fill)
			} else if d <= outer {
				output.SetRGBA(x, y, c.Outline)
			}
		}
	}
}

// drawLine stamps a square brush along the segment. Step at half-pixel
// intervals so no gaps appear at any angle.
func drawLine(output *image.RGBA, x1, y1, x2, y2, width float64, col color.RGBA) {
	dx := x2 - x1
	dy := y2 - y1
	length := math.Sqrt(dx*dx + dy*dy)
	steps := int(length*2) + 1
	half := width / 2
	if half < 0.5 {
		half = 0.5
	}
	bounds := output.Bounds()

	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		cx := x1 + dx*t
		cy := y1 + dy*t
		for y := int(math.Floor(cy - half)); y <= int(math.Ceil(cy+half)); y++ {
			for x := int(math.Floor(cx - half)); x <= int(math.Ceil(cx+half)); x++ {
				if x < bounds.Min.X || x >= bounds.Max.X || y < bounds.Min.Y || y >= bounds.Max.Y {
					continue
				}
				output.SetRGBA(x, y, col)
			}
		}
	}
}
