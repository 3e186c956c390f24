package scene

import (
	"image"
	"image/color"
	"testing"

	"spline-annotator/pkg/colorutil"
	"spline-annotator/pkg/geometry"
)

var background = color.RGBA{R: 24, G: 24, B: 24, A: 255}

func TestRasterizeEmptyListIsBackgroundOnly(t *testing.T) {
	frame := Rasterize(nil, 16, 16)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			if frame.RGBAAt(x, y) != background {
				t.Fatalf("pixel (%d,%d) = %v, want background", x, y, frame.RGBAAt(x, y))
			}
		}
	}
}

func TestRasterizeIsFromScratchEachFrame(t *testing.T) {
	// Draw a disc, then rasterize an empty list at the same size: no trace of
	// the previous frame may survive.
	disc := DiscCmd{Center: geometry.Point2D{X: 8, Y: 8}, Radius: 3, Fill: colorutil.Yellow, Outline: colorutil.Black}
	first := Rasterize([]Command{disc}, 16, 16)
	if first.RGBAAt(8, 8) != colorutil.Yellow {
		t.Fatalf("disc center = %v, want yellow", first.RGBAAt(8, 8))
	}

	second := Rasterize(nil, 16, 16)
	if second.RGBAAt(8, 8) != background {
		t.Fatalf("stale artifact at (8,8): %v", second.RGBAAt(8, 8))
	}
}

func TestRasterizeDiscOutlineContrasts(t *testing.T) {
	disc := DiscCmd{Center: geometry.Point2D{X: 10, Y: 10}, Radius: 4, Fill: colorutil.Yellow, Outline: colorutil.Black}
	frame := Rasterize([]Command{disc}, 21, 21)
	if frame.RGBAAt(10, 10) != colorutil.Yellow {
		t.Fatalf("fill = %v, want yellow", frame.RGBAAt(10, 10))
	}
	// One pixel past the radius along the x axis sits in the outline ring.
	if frame.RGBAAt(15, 10) != colorutil.Black {
		t.Fatalf("outline = %v, want black", frame.RGBAAt(15, 10))
	}
}

func TestRasterizeSegmentCoversEndpoints(t *testing.T) {
	seg := SegmentCmd{
		Seg:   geometry.Segment{A: geometry.Point2D{X: 2, Y: 2}, B: geometry.Point2D{X: 17, Y: 9}},
		Width: 2,
		Color: colorutil.Green,
	}
	frame := Rasterize([]Command{seg}, 20, 12)
	if frame.RGBAAt(2, 2) != colorutil.Green {
		t.Fatalf("start pixel = %v, want green", frame.RGBAAt(2, 2))
	}
	if frame.RGBAAt(17, 9) != colorutil.Green {
		t.Fatalf("end pixel = %v, want green", frame.RGBAAt(17, 9))
	}
}

func TestRasterizeImagePlacement(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			src.SetRGBA(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	cmd := ImageCmd{Src: src, Scale: 2, OffsetX: 4, OffsetY: 4}
	frame := Rasterize([]Command{cmd}, 16, 16)

	// Inside the scaled rect: red. Outside: untouched background.
	if got := frame.RGBAAt(8, 8); got.R < 200 {
		t.Fatalf("inside pixel = %v, want red", got)
	}
	if frame.RGBAAt(1, 1) != background {
		t.Fatalf("outside pixel = %v, want background", frame.RGBAAt(1, 1))
	}
}
