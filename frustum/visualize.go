package frustum

import (
	"github.com/golang/geo/r3"
)

// Segment is a line between two world points.
type Segment struct {
	From r3.Vector `json:"from"`
	To   r3.Vector `json:"to"`
}

// VisualizationKind tells which operation produced a Visualization.
type VisualizationKind string

// Kinds of visualization.
const (
	KindCorrespondences VisualizationKind = "correspondences"
	KindProjections     VisualizationKind = "projections"
)

// MarkerOptions control how markers and their connecting lines are drawn.
type MarkerOptions struct {
	PointSize   float64 `json:"point_size"`
	PointColor  uint32  `json:"point_color"`
	DrawLines   bool    `json:"draw_lines"`
	LineColor   uint32  `json:"line_color"`
	LineOpacity float64 `json:"line_opacity"`
}

// DefaultProjectionOptions are small yellow markers with half-transparent lines back to the source points.
func DefaultProjectionOptions() MarkerOptions {
	return MarkerOptions{PointSize: 0.02, PointColor: 0xffff00, DrawLines: true, LineColor: 0xffff00, LineOpacity: 0.5}
}

// DefaultCorrespondenceOptions draw observations in green.
func DefaultCorrespondenceOptions() MarkerOptions {
	return MarkerOptions{PointSize: 0.02, PointColor: 0x00ff00, DrawLines: true, LineColor: 0x00ff00, LineOpacity: 0.5}
}

// Marker is a world-space point on the near plane. Source is the world point it was paired with, if any.
type Marker struct {
	Position r3.Vector  `json:"position"`
	Source   *r3.Vector `json:"source,omitempty"`
	Index    int        `json:"index"`
}

// Visualization is one batch of markers and lines. A new batch replaces the previous one as a whole.
type Visualization struct {
	Kind     VisualizationKind `json:"kind"`
	Markers  []Marker          `json:"markers"`
	Segments []Segment         `json:"segments"`
	Options  MarkerOptions     `json:"options"`
	Skipped  int               `json:"skipped"`
}
