package frustum

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/samber/lo"

	"github.com/sensorviz/sensorviz/camera"
	"github.com/sensorviz/sensorviz/spatialmath"
)

// frustumSlack absorbs rounding when classifying points lying exactly on a frustum face.
const frustumSlack = 1e-9

// ProjectionResult is the image of one world point. When Visible is false the remaining fields are zero.
type ProjectionResult struct {
	U     float64 `json:"u"`
	V     float64 `json:"v"`
	X2D   float64 `json:"x2d"`
	Y2D   float64 `json:"y2d"`
	Depth float64 `json:"depth"`

	Visible   bool `json:"visible"`
	InFrustum bool `json:"in_frustum"`
}

// PointProjection pairs a projection with the batch index and world position of its source point.
type PointProjection struct {
	ProjectionResult
	Index int       `json:"index"`
	Point r3.Vector `json:"point"`
}

// projector caches everything a batch of projections shares.
type projector struct {
	toCamera    mgl64.Mat4
	focal       camera.FocalParams
	near, far   float64
	nearWidth   float64
	nearHeight  float64
	halfTanVert float64
	aspect      float64
}

func newProjector(m *camera.Model, world spatialmath.Pose) *projector {
	nearWidth, nearHeight := m.NearPlaneSize()
	return &projector{
		toCamera:    spatialmath.InverseMatrix(world),
		focal:       m.EffectiveIntrinsics(),
		near:        m.Near(),
		far:         m.Far(),
		nearWidth:   nearWidth,
		nearHeight:  nearHeight,
		halfTanVert: math.Tan(m.VerticalFOVDegrees() * math.Pi / 360),
		aspect:      m.AspectRatio(),
	}
}

func (pr *projector) project(p r3.Vector) ProjectionResult {
	c := spatialmath.TransformCoordinate(pr.toCamera, p)
	// points on or behind the camera plane, and non-finite input, have no image
	if !(c.Z < 0) {
		return ProjectionResult{}
	}

	x2d := -pr.focal.Fx*c.X/c.Z + pr.focal.Cx
	y2d := -pr.focal.Fy*c.Y/c.Z + pr.focal.Cy
	depth := -c.Z

	return ProjectionResult{
		U:         (x2d+1)*0.5*pr.nearWidth - pr.nearWidth/2,
		V:         (y2d+1)*0.5*pr.nearHeight - pr.nearHeight/2,
		X2D:       x2d,
		Y2D:       y2d,
		Depth:     depth,
		Visible:   true,
		InFrustum: pr.inFrustum(c, depth),
	}
}

func (pr *projector) inFrustum(c r3.Vector, depth float64) bool {
	if depth < pr.near-frustumSlack || depth > pr.far+frustumSlack {
		return false
	}
	halfHeight := depth * pr.halfTanVert
	return math.Abs(c.Y) <= halfHeight+frustumSlack && math.Abs(c.X) <= halfHeight*pr.aspect+frustumSlack
}

// Project maps world point p into the image of a camera m placed at world.
func Project(m *camera.Model, world spatialmath.Pose, p r3.Vector) ProjectionResult {
	return newProjector(m, world).project(p)
}

// ProjectBatch projects every point and returns the visible ones in input order. With clip set, visible
// points outside the frustum volume are dropped as well.
func ProjectBatch(m *camera.Model, world spatialmath.Pose, points []r3.Vector, clip bool) []PointProjection {
	pr := newProjector(m, world)
	return lo.FilterMap(points, func(p r3.Vector, i int) (PointProjection, bool) {
		res := pr.project(p)
		if !res.Visible || (clip && !res.InFrustum) {
			return PointProjection{}, false
		}
		return PointProjection{ProjectionResult: res, Index: i, Point: p}, true
	})
}
