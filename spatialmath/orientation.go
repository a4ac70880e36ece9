// Package spatialmath defines spatial mathematical operations: orientations as quaternions or ordered
// Euler angles, poses, and their 4x4 homogeneous matrix form.
//
// Rotations are applied through their matrix form and quaternions are never renormalized, so a
// non-unit quaternion rotates (and possibly scales) directions but never changes a pose's position.
package spatialmath

import (
	"gonum.org/v1/gonum/num/quat"
)

// Orientation is an interface used to express the different parameterizations of the orientation
// of a rigid object or a frame of reference in 3D Euclidean space.
type Orientation interface {
	Quaternion() quat.Number
}

// NewZeroOrientation returns an orientation which signifies no rotation.
func NewZeroOrientation() Orientation {
	return &quaternion{1, 0, 0, 0}
}

// OrientationAlmostEqual will return a bool describing whether 2 poses have approximately the same orientation.
func OrientationAlmostEqual(o1, o2 Orientation) bool {
	return QuaternionAlmostEqual(o1.Quaternion(), o2.Quaternion(), 1e-5)
}

// ComposeOrientations applies o2 in the frame of o1.
func ComposeOrientations(o1, o2 Orientation) Orientation {
	q := quaternion(quat.Mul(o1.Quaternion(), o2.Quaternion()))
	return &q
}
