package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Pose represents a 6dof pose, position and orientation, with respect to the origin.
// The Point() method returns the position in (x,y,z) scene units and the Orientation() method
// returns an Orientation object.
type Pose interface {
	Point() r3.Vector
	Orientation() Orientation
}

// pose keeps the translation apart from the rotation, so a non-unit rotation never leaks into
// the position.
type pose struct {
	point    r3.Vector
	rotation quat.Number
}

func (p *pose) Point() r3.Vector {
	return p.point
}

func (p *pose) Orientation() Orientation {
	return NewQuaternion(p.rotation)
}

// NewZeroPose returns a pose at (0,0,0) with same orientation as whatever frame it is placed in.
func NewZeroPose() Pose {
	return &pose{rotation: quat.Number{Real: 1}}
}

// NewPose takes in a position and orientation and returns a Pose. A nil orientation is no rotation.
func NewPose(p r3.Vector, o Orientation) Pose {
	if o == nil {
		return NewPoseFromPoint(p)
	}
	return &pose{point: p, rotation: o.Quaternion()}
}

// NewPoseFromPoint takes in a cartesian (x,y,z) and stores it as a vector.
// It will have the same orientation as the frame it is in.
func NewPoseFromPoint(point r3.Vector) Pose {
	return &pose{point: point, rotation: quat.Number{Real: 1}}
}

// Compose takes in two poses and returns their composition, with b applied in the frame of a.
func Compose(a, b Pose) Pose {
	qa := a.Orientation().Quaternion()
	return &pose{
		point:    TransformPoint(a, b.Point()),
		rotation: quat.Mul(qa, b.Orientation().Quaternion()),
	}
}

// TransformPoint maps a point expressed in the frame of p into p's parent frame.
func TransformPoint(p Pose, pt r3.Vector) r3.Vector {
	return p.Point().Add(RotateVector(p.Orientation().Quaternion(), pt))
}

// PoseAlmostEqual will return a bool describing whether 2 poses are approximately the same.
func PoseAlmostEqual(a, b Pose) bool {
	return PoseAlmostEqualEps(a, b, 1e-6)
}

// PoseAlmostEqualEps will return a bool describing whether 2 poses are approximately the same within
// epsilon for both position and orientation.
func PoseAlmostEqualEps(a, b Pose, epsilon float64) bool {
	return R3VectorAlmostEqual(a.Point(), b.Point(), epsilon) &&
		QuaternionAlmostEqual(a.Orientation().Quaternion(), b.Orientation().Quaternion(), epsilon)
}

// R3VectorAlmostEqual compares two r3.Vector objects and returns if the all elementwise differences are less than epsilon.
func R3VectorAlmostEqual(a, b r3.Vector, epsilon float64) bool {
	return math.Abs(a.X-b.X) < epsilon && math.Abs(a.Y-b.Y) < epsilon && math.Abs(a.Z-b.Z) < epsilon
}
