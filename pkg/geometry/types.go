// Package geometry provides basic geometric types shared by the client and the
// annotation service.
package geometry

import (
	"encoding/json"
	"fmt"
	"math"
)

// Point2D represents a 2D point with floating-point coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPoint2D creates a new Point2D.
func NewPoint2D(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

// Distance returns the Euclidean distance to another point.
func (p Point2D) Distance(other Point2D) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Add returns the sum of two points.
func (p Point2D) Add(other Point2D) Point2D {
	return Point2D{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns the difference of two points.
func (p Point2D) Sub(other Point2D) Point2D {
	return Point2D{X: p.X - other.X, Y: p.Y - other.Y}
}

// Scale returns the point scaled by a factor.
func (p Point2D) Scale(factor float64) Point2D {
	return Point2D{X: p.X * factor, Y: p.Y * factor}
}

// Segment represents a straight line segment between two points.
// The annotation service reports ROI boundaries as two-element point arrays,
// so Segment marshals as [a, b] rather than an object.
type Segment struct {
	A Point2D
	B Point2D
}

// NewSegment creates a segment from a to b.
func NewSegment(a, b Point2D) Segment {
	return Segment{A: a, B: b}
}

// Length returns the segment length.
func (s Segment) Length() float64 {
	return s.A.Distance(s.B)
}

// MarshalJSON encodes the segment as a [a, b] pair.
func (s Segment) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]Point2D{s.A, s.B})
}

// UnmarshalJSON decodes a [a, b] pair.
func (s *Segment) UnmarshalJSON(data []byte) error {
	var pair []Point2D
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("segment: expected 2 points, got %d", len(pair))
	}
	s.A = pair[0]
	s.B = pair[1]
	return nil
}

// Size represents 2D dimensions.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}
