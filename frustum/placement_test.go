package frustum

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/num/quat"

	"github.com/sensorviz/sensorviz/spatialmath"
)

func yawQuat(theta float64) quat.Number {
	return quat.Number{Real: math.Cos(theta / 2), Kmag: math.Sin(theta / 2)}
}

func TestParseComposition(t *testing.T) {
	c, err := ParseComposition("")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c, test.ShouldEqual, CompositionBaseChild)

	c, err = ParseComposition(" Rigid ")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c, test.ShouldEqual, CompositionRigid)

	_, err = ParseComposition("sideways")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "sideways")
}

func TestComposePlacementBaseChild(t *testing.T) {
	ext := Extrinsic{Translation: r3.Vector{X: 0.27, Y: 0.06, Z: 0.08}}
	p := ComposePlacement(ext, r3.Vector{X: 10}, yawQuat(math.Pi/2), CompositionBaseChild)

	test.That(t, spatialmath.R3VectorAlmostEqual(p.Base.Point(), r3.Vector{X: 10}, 1e-9), test.ShouldBeTrue)
	test.That(t, spatialmath.R3VectorAlmostEqual(p.Camera.Point(), ext.Translation, 1e-9), test.ShouldBeTrue)
	test.That(t, spatialmath.R3VectorAlmostEqual(p.World().Point(), r3.Vector{X: 10.27, Y: 0.06, Z: 0.08}, 1e-9), test.ShouldBeTrue)
	test.That(t, spatialmath.QuaternionAlmostEqual(p.World().Orientation().Quaternion(), yawQuat(math.Pi/2), 1e-9),
		test.ShouldBeTrue)
}

func TestComposePlacementRigid(t *testing.T) {
	ext := Extrinsic{Translation: r3.Vector{X: 0.27, Y: 0.06, Z: 0.08}}
	p := ComposePlacement(ext, r3.Vector{X: 10}, yawQuat(math.Pi/2), CompositionRigid)

	test.That(t, spatialmath.R3VectorAlmostEqual(p.World().Point(), r3.Vector{X: 9.94, Y: 0.27, Z: 0.08}, 1e-9), test.ShouldBeTrue)
	test.That(t, spatialmath.QuaternionAlmostEqual(p.World().Orientation().Quaternion(), yawQuat(math.Pi/2), 1e-9),
		test.ShouldBeTrue)
}

func TestComposePlacementExtrinsicRotation(t *testing.T) {
	// a camera pitched down by 90 degrees on a vehicle turned 90 degrees left
	ext := Extrinsic{Orientation: spatialmath.NewOrderedEulerAngles(-math.Pi/2, 0, 0, spatialmath.EulerOrderZXY)}
	for _, c := range []Composition{CompositionBaseChild, CompositionRigid} {
		p := ComposePlacement(ext, r3.Vector{}, yawQuat(math.Pi/2), c)
		forward := spatialmath.RotateVector(p.World().Orientation().Quaternion(), r3.Vector{Z: -1})
		test.That(t, spatialmath.R3VectorAlmostEqual(forward, r3.Vector{X: 1}, 1e-9), test.ShouldBeTrue)
	}
}

func TestPlacementMatrix(t *testing.T) {
	ext := Extrinsic{Translation: r3.Vector{X: 1, Y: 2, Z: 3}}
	p := ComposePlacement(ext, r3.Vector{X: -4}, yawQuat(0.3), CompositionRigid)
	local := r3.Vector{X: 0.5, Y: -0.25, Z: -2}

	viaMatrix := spatialmath.TransformCoordinate(p.Matrix(), local)
	viaPose := spatialmath.TransformPoint(p.World(), local)
	test.That(t, spatialmath.R3VectorAlmostEqual(viaMatrix, viaPose, 1e-9), test.ShouldBeTrue)
}

func TestComposePlacementNonUnitQuaternion(t *testing.T) {
	ext := Extrinsic{Translation: r3.Vector{X: 0.27, Y: 0.06, Z: 0.08}}
	scaled := quat.Number{Real: 2}
	for _, c := range []Composition{CompositionBaseChild, CompositionRigid} {
		p := ComposePlacement(ext, r3.Vector{X: 10}, scaled, c)

		test.That(t, p.Base.Point(), test.ShouldResemble, r3.Vector{X: 10})
		test.That(t, p.Camera.Point(), test.ShouldResemble, ext.Translation)
		test.That(t, spatialmath.R3VectorAlmostEqual(p.World().Point(), r3.Vector{X: 10.27, Y: 0.06, Z: 0.08}, 1e-9),
			test.ShouldBeTrue)

		origin := spatialmath.TransformCoordinate(p.Matrix(), r3.Vector{})
		test.That(t, spatialmath.R3VectorAlmostEqual(origin, r3.Vector{X: 10.27, Y: 0.06, Z: 0.08}, 1e-9), test.ShouldBeTrue)
	}
}
