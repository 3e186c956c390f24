// Package canvas provides the annotation canvas widget: full-scene raster
// redraws plus tap, double-tap, pan, and wheel-zoom gestures.
package canvas

import (
	"image"
	"sync"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"spline-annotator/internal/imaging"
	"spline-annotator/internal/scene"
	"spline-annotator/internal/viewport"
	"spline-annotator/pkg/geometry"
)

// AnnotationCanvas displays the base image and the annotation overlay. Every
// frame is rebuilt from the last fetched snapshot and the camera as it is at
// draw time, so a pan or zoom that happens while a request is in flight is
// reflected by whichever render lands afterward.
type AnnotationCanvas struct {
	widget.BaseWidget

	cam    *viewport.Camera
	raster *fynecanvas.Raster

	mu    sync.Mutex
	snap  scene.Snapshot
	layer *imaging.BaseLayer

	// Pan is only active while the modifier key is held and a drag is in
	// progress; the committed offset survives the release.
	panActive bool

	onAddPoint    func(geometry.Point2D)
	onRemovePoint func(geometry.Point2D)
}

// New creates the canvas around an owned camera.
func New(cam *viewport.Camera) *AnnotationCanvas {
	ac := &AnnotationCanvas{cam: cam}
	ac.raster = fynecanvas.NewRaster(ac.draw)
	ac.raster.ScaleMode = fynecanvas.ImageScalePixels
	ac.raster.SetMinSize(fyne.NewSize(800, 600))
	ac.ExtendBaseWidget(ac)
	return ac
}

// RenderSnapshot installs a freshly fetched snapshot and repaints. It
// implements the session renderer contract; the previous snapshot is replaced
// wholesale, never patched. Callable from any goroutine under fyne 2.5.
// TODO: wrap the Refresh calls reached from worker goroutines in fyne.Do
// when upgrading to fyne 2.6, which moves UI updates onto the main thread.
func (ac *AnnotationCanvas) RenderSnapshot(snap scene.Snapshot) {
	ac.mu.Lock()
	ac.snap = snap
	ac.mu.Unlock()
	ac.Refresh()
}

// SetBaseLayer replaces the background layer and repaints.
func (ac *AnnotationCanvas) SetBaseLayer(layer *imaging.BaseLayer) {
	ac.mu.Lock()
	ac.layer = layer
	ac.mu.Unlock()
	ac.Refresh()
}

// OnAddPoint sets the tap callback. Coordinates are logical.
func (ac *AnnotationCanvas) OnAddPoint(fn func(geometry.Point2D)) {
	ac.onAddPoint = fn
}

// OnRemovePoint sets the double-tap callback. Coordinates are logical.
func (ac *AnnotationCanvas) OnRemovePoint(fn func(geometry.Point2D)) {
	ac.onRemovePoint = fn
}

// SetPanActive toggles the pan modifier state (held key).
func (ac *AnnotationCanvas) SetPanActive(active bool) {
	ac.panActive = active
}

// ViewSize returns the current drawable size in pixels, falling back to the
// minimum size before the first layout.
func (ac *AnnotationCanvas) ViewSize() (w, h float64) {
	size := ac.Size()
	if size.Width <= 0 || size.Height <= 0 {
		size = ac.raster.MinSize()
	}
	return float64(size.Width), float64(size.Height)
}

// Refresh repaints the raster.
func (ac *AnnotationCanvas) Refresh() {
	ac.raster.Refresh()
}

// draw rebuilds the whole frame from scratch: snapshot and camera are read
// fresh, composed to a display list, and rasterized.
func (ac *AnnotationCanvas) draw(w, h int) image.Image {
	ac.mu.Lock()
	snap := ac.snap
	layer := ac.layer
	ac.mu.Unlock()

	cmds := scene.Compose(snap, ac.cam, layer)
	return scene.Rasterize(cmds, w, h)
}

// Tapped maps a click to logical coordinates and reports an add-point intent.
func (ac *AnnotationCanvas) Tapped(ev *fyne.PointEvent) {
	if ac.panActive || ac.onAddPoint == nil {
		return
	}
	ac.onAddPoint(ac.cam.ScreenToLogical(float64(ev.Position.X), float64(ev.Position.Y)))
}

// DoubleTapped maps a double-click to logical coordinates and reports a
// remove-point intent. Which points match is the service's decision.
func (ac *AnnotationCanvas) DoubleTapped(ev *fyne.PointEvent) {
	if ac.panActive || ac.onRemovePoint == nil {
		return
	}
	ac.onRemovePoint(ac.cam.ScreenToLogical(float64(ev.Position.X), float64(ev.Position.Y)))
}

// Dragged pans the camera while the pan modifier is held.
func (ac *AnnotationCanvas) Dragged(ev *fyne.DragEvent) {
	if !ac.panActive {
		return
	}
	ac.cam.PanBy(float64(ev.Dragged.DX), float64(ev.Dragged.DY))
	ac.Refresh()
}

// DragEnd leaves the committed pan offset in place.
func (ac *AnnotationCanvas) DragEnd() {}

// Scrolled zooms with the mouse wheel.
func (ac *AnnotationCanvas) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY > 0 {
		ac.cam.ZoomIn()
	} else if ev.Scrolled.DY < 0 {
		ac.cam.ZoomOut()
	}
	ac.Refresh()
}

// CreateRenderer implements fyne.Widget.
func (ac *AnnotationCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(ac.raster)
}
