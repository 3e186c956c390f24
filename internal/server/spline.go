package server

import (
	"gonum.org/v1/gonum/interp"

	"spline-annotator/pkg/geometry"
)

// splineSamples is the number of points evaluated along the fitted curve.
const splineSamples = 500

// splinePath fits a parametric cubic through the points and samples it
// uniformly. x and y are interpolated independently against a chord-length
// parameter, so the curve passes through every marker in order. Fewer than
// two distinct points yield no spline.
func splinePath(pts []geometry.Point2D, samples int) []geometry.Point2D {
	if len(pts) < 2 || samples < 2 {
		return nil
	}

	// Chord-length parameterization. Consecutive duplicates would break the
	// strictly-increasing knot requirement, so they are collapsed.
	ts := make([]float64, 0, len(pts))
	xs := make([]float64, 0, len(pts))
	ys := make([]float64, 0, len(pts))
	t := 0.0
	for i, p := range pts {
		if i > 0 {
			d := p.Distance(pts[i-1])
			if d == 0 {
				continue
			}
			t += d
		}
		ts = append(ts, t)
		xs = append(xs, p.X)
		ys = append(ys, p.Y)
	}
	if len(ts) < 2 {
		return nil
	}

	if len(ts) == 2 {
		return samplePolyline(xs, ys, samples)
	}

	var cx, cy interp.NaturalCubic
	if err := cx.Fit(ts, xs); err != nil {
		return nil
	}
	if err := cy.Fit(ts, ys); err != nil {
		return nil
	}

	out := make([]geometry.Point2D, samples)
	span := ts[len(ts)-1] - ts[0]
	for i := range out {
		u := ts[0] + span*float64(i)/float64(samples-1)
		out[i] = geometry.Point2D{X: cx.Predict(u), Y: cy.Predict(u)}
	}
	return out
}

// samplePolyline linearly samples the two-knot degenerate case, where a cubic
// fit adds nothing.
func samplePolyline(xs, ys []float64, samples int) []geometry.Point2D {
	out := make([]geometry.Point2D, samples)
	for i := range out {
		f := float64(i) / float64(samples-1)
		out[i] = geometry.Point2D{
			X: xs[0] + (xs[1]-xs[0])*f,
			Y: ys[0] + (ys[1]-ys[0])*f,
		}
	}
	return out
}
