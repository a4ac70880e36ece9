package ingest

import (
	"math"
	"math/rand"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestGenerateTrajectory(t *testing.T) {
	test.That(t, GenerateTrajectory(0, rand.New(rand.NewSource(1))), test.ShouldBeNil)

	poses := GenerateTrajectory(200, rand.New(rand.NewSource(42)))
	test.That(t, len(poses), test.ShouldEqual, 200)
	test.That(t, poses[0].Position, test.ShouldResemble, r3.Vector{})

	for i := 1; i < len(poses); i++ {
		test.That(t, poses[i].Rotation, test.ShouldBeNil)
		test.That(t, poses[i].Timestamp, test.ShouldEqual, float64(i))

		step := poses[i].Position.Sub(poses[i-1].Position)
		// never backwards
		test.That(t, step.Z, test.ShouldBeLessThanOrEqualTo, 0.)
		test.That(t, math.Abs(step.Y), test.ShouldBeLessThanOrEqualTo, 0.02)
		horizontal := math.Hypot(step.X, step.Z)
		isStraight := math.Abs(horizontal-TrajectoryStep) < 1e-9
		isDiagonal := math.Abs(horizontal-TrajectoryStep*math.Sqrt2) < 1e-9
		test.That(t, isStraight || isDiagonal, test.ShouldBeTrue)
	}

	again := GenerateTrajectory(200, rand.New(rand.NewSource(42)))
	test.That(t, again, test.ShouldResemble, poses)
}
