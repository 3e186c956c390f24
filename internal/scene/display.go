package scene

import (
	"image"
	"image/color"

	"spline-annotator/internal/imaging"
	"spline-annotator/internal/viewport"
	"spline-annotator/pkg/colorutil"
	"spline-annotator/pkg/geometry"
)

const (
	// pointRadius is the marker disc radius in logical pixels.
	pointRadius = 5.0
	// lineWidth is the spline/ROI stroke width in logical pixels.
	lineWidth = 2.0
)

// Command is one drawing instruction in screen coordinates. A frame is an
// ordered list of commands; later commands draw on top of earlier ones.
type Command interface {
	command()
}

// ImageCmd draws the base image scaled to Scale with its top-left corner at
// (OffsetX, OffsetY).
type ImageCmd struct {
	Src     image.Image
	Scale   float64
	OffsetX float64
	OffsetY float64
}

// DiscCmd draws a filled circle with a contrasting outline.
type DiscCmd struct {
	Center  geometry.Point2D
	Radius  float64
	Fill    color.RGBA
	Outline color.RGBA
}

// PolylineCmd draws an open connected polyline through Points.
type PolylineCmd struct {
	Points []geometry.Point2D
	Width  float64
	Color  color.RGBA
}

// SegmentCmd draws a single straight line segment.
type SegmentCmd struct {
	Seg   geometry.Segment
	Width float64
	Color color.RGBA
}

func (ImageCmd) command()    {}
func (DiscCmd) command()     {}
func (PolylineCmd) command() {}
func (SegmentCmd) command()  {}

// Compose builds the display list for one frame from the snapshot, the camera
// read at call time, and the base layer. It is a pure function: no state from
// a previous frame survives, so the output can never diverge from the
// snapshot. Draw order is base image, point markers, spline, ROI lines.
func Compose(snap Snapshot, cam *viewport.Camera, layer *imaging.BaseLayer) []Command {
	zoom := cam.Zoom()
	panX, panY := cam.Pan()

	var cmds []Command

	if layer != nil && layer.Image != nil {
		cmds = append(cmds, ImageCmd{
			Src:     layer.Image,
			Scale:   layer.Scale * zoom,
			OffsetX: layer.OffsetX*zoom + panX,
			OffsetY: layer.OffsetY*zoom + panY,
		})
	}

	toScreen := func(p geometry.Point2D) geometry.Point2D {
		sx, sy := cam.LogicalToScreen(p)
		return geometry.Point2D{X: sx, Y: sy}
	}

	for _, p := range snap.Points {
		cmds = append(cmds, DiscCmd{
			Center:  toScreen(p),
			Radius:  pointRadius * zoom,
			Fill:    colorutil.Yellow,
			Outline: colorutil.Black,
		})
	}

	// The spline is an open polyline; fewer than two samples draw nothing.
	if len(snap.Spline) >= 2 {
		pts := make([]geometry.Point2D, len(snap.Spline))
		for i, p := range snap.Spline {
			pts[i] = toScreen(p)
		}
		cmds = append(cmds, PolylineCmd{
			Points: pts,
			Width:  lineWidth * zoom,
			Color:  colorutil.Green,
		})
	}

	for _, seg := range snap.ROILines {
		cmds = append(cmds, SegmentCmd{
			Seg:   geometry.Segment{A: toScreen(seg.A), B: toScreen(seg.B)},
			Width: lineWidth * zoom,
			Color: colorutil.Green,
		})
	}

	return cmds
}
