package playback

import (
	"github.com/golang/geo/r3"

	"github.com/sensorviz/sensorviz/utils"
)

// Defaults of the follow camera.
const (
	DefaultLerpFactor = 0.05
	// targetLerpScale speeds up the look-at point relative to the camera body.
	targetLerpScale = 1.5
)

// DefaultFollowOffset places the viewer 50 units behind the target along +Z.
var DefaultFollowOffset = r3.Vector{Z: 50}

// FollowCamera eases a viewer camera toward a fixed offset from a moving target.
type FollowCamera struct {
	Position r3.Vector
	LookAt   r3.Vector

	target     r3.Vector
	offset     r3.Vector
	lerpFactor float64
	hasTarget  bool
}

// NewFollowCamera returns a camera with no target. A non-positive lerp factor selects DefaultLerpFactor.
func NewFollowCamera(offset r3.Vector, lerpFactor float64) *FollowCamera {
	if lerpFactor <= 0 {
		lerpFactor = DefaultLerpFactor
	}
	return &FollowCamera{offset: offset, lerpFactor: lerpFactor}
}

// SetTarget sets the point to follow.
func (c *FollowCamera) SetTarget(target r3.Vector) {
	c.target = target
	c.hasTarget = true
}

// SetLerpFactor changes the smoothing; smaller values are smoother and slower.
func (c *FollowCamera) SetLerpFactor(f float64) {
	c.lerpFactor = f
}

// Step moves the camera one frame toward target+offset and its look-at point toward the target.
// Without a target it does nothing.
func (c *FollowCamera) Step() {
	if !c.hasTarget {
		return
	}
	c.Position = lerpVector(c.Position, c.target.Add(c.offset), c.lerpFactor)
	c.LookAt = lerpVector(c.LookAt, c.target, c.lerpFactor*targetLerpScale)
}

func lerpVector(a, b r3.Vector, t float64) r3.Vector {
	return r3.Vector{X: utils.Lerp(a.X, b.X, t), Y: utils.Lerp(a.Y, b.Y, t), Z: utils.Lerp(a.Z, b.Z, t)}
}
