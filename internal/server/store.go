// Package server implements the annotation service: the authoritative holder
// of session state and the spline/ROI computations derived from it.
package server

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"spline-annotator/internal/scene"
	"spline-annotator/pkg/geometry"
)

// removeTolerance is the axis-aligned box, in logical pixels, within which a
// remove request deletes points.
const removeTolerance = 10.0

// ErrNotEnoughPoints is returned when an ROI is requested with fewer than two
// placed points.
var ErrNotEnoughPoints = errors.New("not enough points to create ROI")

// Params are the calibration constants pushed by the client before an ROI
// request. Defaults match the original tool: 1 pixel/um, 10 um depth.
type Params struct {
	PixelMicrons float64 `json:"pixel_um"`
	DepthMicrons float64 `json:"depth_um"`
}

// annotatedPoint pairs a point with its opaque identity. Identities never
// leave the service; clients only ever exchange raw coordinates.
type annotatedPoint struct {
	ID  uuid.UUID
	Pos geometry.Point2D
}

// Store holds one annotation session. Fiber serves requests concurrently, so
// unlike the single-threaded client all access goes through a mutex.
type Store struct {
	mu       sync.Mutex
	points   []annotatedPoint
	params   Params
	roiLines []geometry.Segment
	imageB64 string
}

// NewStore creates an empty session with default calibration.
func NewStore() *Store {
	return &Store{
		params: Params{PixelMicrons: 1.0, DepthMicrons: 10.0},
	}
}

// AddPoint appends a marker and returns its identity.
func (s *Store) AddPoint(p geometry.Point2D) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.points = append(s.points, annotatedPoint{ID: id, Pos: p})
	return id
}

// RemoveNear deletes every point within removeTolerance of p on both axes and
// returns how many were removed.
func (s *Store) RemoveNear(p geometry.Point2D) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.points[:0]
	removed := 0
	for _, ap := range s.points {
		dx := ap.Pos.X - p.X
		dy := ap.Pos.Y - p.Y
		if dx >= -removeTolerance && dx <= removeTolerance &&
			dy >= -removeTolerance && dy <= removeTolerance {
			removed++
			continue
		}
		kept = append(kept, ap)
	}
	s.points = kept
	return removed
}

// SetParams stores new calibration constants.
func (s *Store) SetParams(p Params) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params = p
}

// Params returns the current calibration constants.
func (s *Store) Params() Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// CreateROI derives the region boundary from the current points and
// calibration and stores it.
func (s *Store) CreateROI() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pts := make([]geometry.Point2D, len(s.points))
	for i, ap := range s.points {
		pts[i] = ap.Pos
	}
	lines, err := computeROI(pts, s.params)
	if err != nil {
		return err
	}
	s.roiLines = lines
	return nil
}

// ResetROI clears the region boundary, keeping the points.
func (s *Store) ResetROI() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roiLines = nil
}

// SetImage installs a re-encoded image and clears all annotation state, the
// documented side effect of accepting a new upload.
func (s *Store) SetImage(b64 string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.imageB64 = b64
	s.points = nil
	s.roiLines = nil
}

// Image returns the stored base64 image, if any.
func (s *Store) Image() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.imageB64, s.imageB64 != ""
}

// Snapshot assembles the complete authoritative state, computing the spline
// from the current points on the fly.
func (s *Store) Snapshot() scene.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	pts := make([]geometry.Point2D, len(s.points))
	for i, ap := range s.points {
		pts[i] = ap.Pos
	}
	snap := scene.Snapshot{
		Points:   pts,
		Spline:   splinePath(pts, splineSamples),
		ROILines: append([]geometry.Segment(nil), s.roiLines...),
	}
	if snap.Spline == nil {
		snap.Spline = []geometry.Point2D{}
	}
	if snap.ROILines == nil {
		snap.ROILines = []geometry.Segment{}
	}
	return snap
}
