// Package viewport owns the camera state (zoom and pan) and converts between
// screen pointer coordinates and logical image coordinates.
package viewport

import (
	"spline-annotator/pkg/geometry"
)

const (
	// MinZoom and MaxZoom bound the zoom factor so the view can never reach a
	// degenerate (near-zero or unbounded) scale.
	MinZoom = 0.1
	MaxZoom = 10.0

	// ZoomInStep and ZoomOutStep are the per-click multipliers of the zoom
	// buttons. Repeated application compounds geometrically.
	ZoomInStep  = 1.125
	ZoomOutStep = 0.875
)

// Camera holds the view transform: logical coordinates are scaled by Zoom and
// then offset by the pan to produce screen coordinates. The camera is owned by
// the UI event context; the renderer reads it fresh at draw time and the
// session client never sees it.
type Camera struct {
	zoom float64
	panX float64
	panY float64
}

// NewCamera returns a camera at the identity transform.
func NewCamera() *Camera {
	return &Camera{zoom: 1.0}
}

// Zoom returns the current zoom factor. Always > 0.
func (c *Camera) Zoom() float64 {
	return c.zoom
}

// Pan returns the current pan offset in screen pixels.
func (c *Camera) Pan() (x, y float64) {
	return c.panX, c.panY
}

// SetZoom sets the zoom factor, clamped to [MinZoom, MaxZoom].
func (c *Camera) SetZoom(zoom float64) {
	if zoom < MinZoom {
		zoom = MinZoom
	}
	if zoom > MaxZoom {
		zoom = MaxZoom
	}
	c.zoom = zoom
}

// ZoomBy multiplies the current zoom factor by m.
func (c *Camera) ZoomBy(m float64) {
	c.SetZoom(c.zoom * m)
}

// ZoomIn increases the zoom by one button step.
func (c *Camera) ZoomIn() {
	c.ZoomBy(ZoomInStep)
}

// ZoomOut decreases the zoom by one button step.
func (c *Camera) ZoomOut() {
	c.ZoomBy(ZoomOutStep)
}

// PanBy shifts the pan offset by a drag delta in screen pixels. The offset
// stays committed when the drag ends.
func (c *Camera) PanBy(dx, dy float64) {
	c.panX += dx
	c.panY += dy
}

// Reset restores zoom 1 and zero pan in one step, so a partially reset view
// can never be observed.
func (c *Camera) Reset() {
	c.zoom = 1.0
	c.panX = 0
	c.panY = 0
}

// ScreenToLogical maps a raw pointer position to logical image coordinates.
func (c *Camera) ScreenToLogical(sx, sy float64) geometry.Point2D {
	return geometry.Point2D{
		X: (sx - c.panX) / c.zoom,
		Y: (sy - c.panY) / c.zoom,
	}
}

// LogicalToScreen maps a logical point to its on-screen position. It is the
// exact inverse of ScreenToLogical.
func (c *Camera) LogicalToScreen(p geometry.Point2D) (sx, sy float64) {
	return p.X*c.zoom + c.panX, p.Y*c.zoom + c.panY
}
