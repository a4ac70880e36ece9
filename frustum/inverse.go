package frustum

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/sensorviz/sensorviz/camera"
	"github.com/sensorviz/sensorviz/spatialmath"
	"github.com/sensorviz/sensorviz/utils"
)

// Correspondence is a pixel observation, optionally paired with the world point believed to produce it.
type Correspondence struct {
	WorldPoint  *r3.Vector `json:"world_point,omitempty"`
	Pixel       r2.Point   `json:"pixel"`
	ImageWidth  float64    `json:"image_width"`
	ImageHeight float64    `json:"image_height"`
}

func (c Correspondence) checkValid() error {
	if !utils.IsFinite(c.ImageWidth, c.ImageHeight) || c.ImageWidth <= 0 || c.ImageHeight <= 0 {
		return errors.Errorf("invalid image size %vx%v", c.ImageWidth, c.ImageHeight)
	}
	if !utils.IsFinite(c.Pixel.X, c.Pixel.Y) {
		return errors.Errorf("invalid pixel %v", c.Pixel)
	}
	if c.WorldPoint != nil && !utils.IsFinite(c.WorldPoint.X, c.WorldPoint.Y, c.WorldPoint.Z) {
		return errors.Errorf("invalid world point %v", *c.WorldPoint)
	}
	return nil
}

// NearPlanePoint returns the camera-local point on the near plane that pixel obs maps to.
//
// Pixels are normalized to [-1, 1] and then passed through a fixed axis correction,
// (nu, nv) -> (-nv, -nu), before being scaled to the near plane.
func NearPlanePoint(m *camera.Model, obs Correspondence, conv Convention) (r3.Vector, error) {
	if err := obs.checkValid(); err != nil {
		return r3.Vector{}, err
	}
	nu := obs.Pixel.X/obs.ImageWidth*2 - 1
	nv := obs.Pixel.Y/obs.ImageHeight*2 - 1

	correctedU, correctedV := -nv, nu
	correctedV = -correctedV

	aspect := m.AspectRatio()
	if conv.InvertCorrectedAspect {
		aspect = 1 / aspect
	}
	nearWidth, nearHeight := m.PlaneSizeAt(m.Near(), aspect)
	return r3.Vector{X: correctedU * nearWidth / 2, Y: correctedV * nearHeight / 2, Z: -m.Near()}, nil
}

// InverseProject returns the world position of the near-plane marker for pixel obs seen by a camera m at world.
func InverseProject(m *camera.Model, world spatialmath.Pose, obs Correspondence, conv Convention) (r3.Vector, error) {
	local, err := NearPlanePoint(m, obs, conv)
	if err != nil {
		return r3.Vector{}, err
	}
	return spatialmath.TransformPoint(world, local), nil
}
