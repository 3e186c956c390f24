package server

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"spline-annotator/pkg/geometry"
)

// computeROI derives the region boundary from the markers: fit y = a + bx by
// least squares, take the unit normal (-b, 1)/|(-b, 1)|, and offset the first
// and last marker along it by depth_um * pixel_um. The boundary is the three
// segments closing that band.
func computeROI(pts []geometry.Point2D, params Params) ([]geometry.Segment, error) {
	if len(pts) < 2 {
		return nil, ErrNotEnoughPoints
	}

	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		xs[i] = p.X
		ys[i] = p.Y
	}
	_, slope := stat.LinearRegression(xs, ys, nil, false)
	// Zero X variance (vertically stacked markers) makes the regression
	// degenerate and the slope NaN; the band is still well defined straight
	// down, which is what slope 0 produces.
	if math.IsNaN(slope) || math.IsInf(slope, 0) {
		slope = 0
	}

	norm := math.Sqrt(slope*slope + 1)
	unitNormal := geometry.Point2D{X: -slope / norm, Y: 1 / norm}

	depthPixels := params.DepthMicrons * params.PixelMicrons
	first := pts[0]
	last := pts[len(pts)-1]
	shiftedFirst := first.Add(unitNormal.Scale(depthPixels))
	shiftedLast := last.Add(unitNormal.Scale(depthPixels))

	return []geometry.Segment{
		geometry.NewSegment(first, shiftedFirst),
		geometry.NewSegment(shiftedFirst, shiftedLast),
		geometry.NewSegment(shiftedLast, last),
	}, nil
}
