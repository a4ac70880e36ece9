package spatialmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

type quaternion quat.Number

// NewQuaternion wraps q as an Orientation. q is used as given; callers are responsible for
// supplying a unit quaternion.
func NewQuaternion(q quat.Number) Orientation {
	qq := quaternion(q)
	return &qq
}

// NewQuaternionXYZW builds an Orientation from components in x, y, z, w order, the layout used by
// pose tables and most scene formats.
func NewQuaternionXYZW(x, y, z, w float64) Orientation {
	return NewQuaternion(quat.Number{Real: w, Imag: x, Jmag: y, Kmag: z})
}

// Quaternion returns orientation in quaternion representation.
func (q *quaternion) Quaternion() quat.Number {
	return quat.Number(*q)
}

// QuaternionAlmostEqual compares every component of two quaternions within tol, treating q and -q as equal.
func QuaternionAlmostEqual(a, b quat.Number, tol float64) bool {
	if math.Abs(a.Real-b.Real) > tol || math.Abs(a.Imag-b.Imag) > tol ||
		math.Abs(a.Jmag-b.Jmag) > tol || math.Abs(a.Kmag-b.Kmag) > tol {
		// Double coverage: q and -q are the same rotation.
		f := Flip(b)
		return math.Abs(a.Real-f.Real) <= tol && math.Abs(a.Imag-f.Imag) <= tol &&
			math.Abs(a.Jmag-f.Jmag) <= tol && math.Abs(a.Kmag-f.Kmag) <= tol
	}
	return true
}

// Flip will multiply a quaternion by -1, returning a quaternion representing the same orientation but in the opposing octant.
func Flip(q quat.Number) quat.Number {
	return quat.Number{Real: -q.Real, Imag: -q.Imag, Jmag: -q.Jmag, Kmag: -q.Kmag}
}

// RotateVector rotates v by the rotation matrix of q. q is not normalized first, so for a non-unit q
// the result is whatever that matrix produces; for a unit q it equals q·v·q̄.
func RotateVector(q quat.Number, v r3.Vector) r3.Vector {
	r := QuatToMat4(q).Mul4x1(mgl64.Vec4{v.X, v.Y, v.Z, 0})
	return r3.Vector{X: r.X(), Y: r.Y(), Z: r.Z()}
}

// axisQuaternion returns the rotation of theta radians about one of the unit axes.
func axisQuaternion(axis byte, theta float64) quat.Number {
	s, c := math.Sincos(theta / 2)
	switch axis {
	case 'X':
		return quat.Number{Real: c, Imag: s}
	case 'Y':
		return quat.Number{Real: c, Jmag: s}
	default:
		return quat.Number{Real: c, Kmag: s}
	}
}
