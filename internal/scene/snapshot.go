// Package scene holds the authoritative annotation snapshot and renders it as
// an explicit display list.
package scene

import (
	"spline-annotator/pkg/geometry"
)

// Snapshot is the complete annotation state as last reported by the
// annotation service. It fully determines everything drawn above the base
// image; the client never caches or patches a partial one.
type Snapshot struct {
	Points   []geometry.Point2D `json:"points"`
	Spline   []geometry.Point2D `json:"spline"`
	ROILines []geometry.Segment `json:"roi_lines"`
}

// Empty reports whether the snapshot contains nothing to draw.
func (s Snapshot) Empty() bool {
	return len(s.Points) == 0 && len(s.Spline) == 0 && len(s.ROILines) == 0
}
