package frustum

import (
	"github.com/golang/geo/r3"

	"github.com/sensorviz/sensorviz/camera"
)

// Corner indexes the eight corners of a frustum.
type Corner int

// Corners of the near quad followed by the far quad, each wound top-left, top-right, bottom-right, bottom-left.
const (
	NearTopLeft Corner = iota
	NearTopRight
	NearBottomRight
	NearBottomLeft
	FarTopLeft
	FarTopRight
	FarBottomRight
	FarBottomLeft
)

var cornerNames = [...]string{
	"near_top_left", "near_top_right", "near_bottom_right", "near_bottom_left",
	"far_top_left", "far_top_right", "far_bottom_right", "far_bottom_left",
}

func (c Corner) String() string {
	if c < 0 || int(c) >= len(cornerNames) {
		return "unknown"
	}
	return cornerNames[c]
}

// Edge joins two corners.
type Edge struct {
	From Corner `json:"from"`
	To   Corner `json:"to"`
}

var frustumEdges = [12]Edge{
	{NearTopLeft, NearTopRight}, {NearTopRight, NearBottomRight}, {NearBottomRight, NearBottomLeft}, {NearBottomLeft, NearTopLeft},
	{FarTopLeft, FarTopRight}, {FarTopRight, FarBottomRight}, {FarBottomRight, FarBottomLeft}, {FarBottomLeft, FarTopLeft},
	{NearTopLeft, FarTopLeft}, {NearTopRight, FarTopRight}, {NearBottomRight, FarBottomRight}, {NearBottomLeft, FarBottomLeft},
}

// Plane is an axis-aligned rectangle perpendicular to the camera's viewing axis.
type Plane struct {
	Center r3.Vector `json:"center"`
	Width  float64   `json:"width"`
	Height float64   `json:"height"`
}

// Style carries the renderer hints of a frustum.
type Style struct {
	Color        uint32  `json:"color"`
	LineOpacity  float64 `json:"line_opacity"`
	PlaneOpacity float64 `json:"plane_opacity"`
}

// DefaultStyle is a green frustum with mostly opaque edges and faint planes.
func DefaultStyle() Style {
	return Style{Color: 0x00ff00, LineOpacity: 0.7, PlaneOpacity: 0.1}
}

// Geometry is the camera-local frustum volume. The camera sits at the origin looking down -Z with +Y up.
// A Geometry is never mutated after BuildGeometry returns it.
type Geometry struct {
	Corners [8]r3.Vector `json:"corners"`
	Edges   [12]Edge     `json:"edges"`
	Near    Plane        `json:"near"`
	Far     Plane        `json:"far"`
	Style   Style        `json:"style"`
}

// BuildGeometry computes the frustum of m.
func BuildGeometry(m *camera.Model, style Style) *Geometry {
	nearWidth, nearHeight := m.NearPlaneSize()
	farWidth, farHeight := m.FarPlaneSize()

	g := &Geometry{
		Edges: frustumEdges,
		Near:  Plane{Center: r3.Vector{Z: -m.Near()}, Width: nearWidth, Height: nearHeight},
		Far:   Plane{Center: r3.Vector{Z: -m.Far()}, Width: farWidth, Height: farHeight},
		Style: style,
	}
	copy(g.Corners[:4], planeCorners(g.Near))
	copy(g.Corners[4:], planeCorners(g.Far))
	return g
}

func planeCorners(p Plane) []r3.Vector {
	halfW, halfH := p.Width/2, p.Height/2
	return []r3.Vector{
		{X: -halfW, Y: halfH, Z: p.Center.Z},
		{X: halfW, Y: halfH, Z: p.Center.Z},
		{X: halfW, Y: -halfH, Z: p.Center.Z},
		{X: -halfW, Y: -halfH, Z: p.Center.Z},
	}
}

// Corner returns the position of corner c.
func (g *Geometry) Corner(c Corner) r3.Vector {
	return g.Corners[c]
}

// Segments returns the endpoints of every edge in edge order.
func (g *Geometry) Segments() []Segment {
	segments := make([]Segment, 0, len(g.Edges))
	for _, e := range g.Edges {
		segments = append(segments, Segment{From: g.Corners[e.From], To: g.Corners[e.To]})
	}
	return segments
}
