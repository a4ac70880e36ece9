package spatialmath

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// QuatToMat4 returns the homogeneous rotation matrix of q. q is not normalized first.
func QuatToMat4(q quat.Number) mgl64.Mat4 {
	return mgl64.Quat{W: q.Real, V: mgl64.Vec3{q.Imag, q.Jmag, q.Kmag}}.Mat4()
}

// PoseToMatrix returns the 4x4 homogeneous transform T·R of a pose.
func PoseToMatrix(p Pose) mgl64.Mat4 {
	m := QuatToMat4(p.Orientation().Quaternion())
	pt := p.Point()
	m.SetCol(3, mgl64.Vec4{pt.X, pt.Y, pt.Z, 1})
	return m
}

// InverseMatrix returns the transform that maps p's parent frame back into p's frame. It is the exact
// inverse of PoseToMatrix(p), also for non-unit rotations.
func InverseMatrix(p Pose) mgl64.Mat4 {
	return PoseToMatrix(p).Inv()
}

// TransformCoordinate applies the homogeneous transform m to pt, including the perspective divide.
func TransformCoordinate(m mgl64.Mat4, pt r3.Vector) r3.Vector {
	v := mgl64.TransformCoordinate(mgl64.Vec3{pt.X, pt.Y, pt.Z}, m)
	return r3.Vector{X: v.X(), Y: v.Y(), Z: v.Z()}
}
