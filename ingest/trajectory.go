package ingest

import (
	"math/rand"

	"github.com/golang/geo/r3"

	"github.com/sensorviz/sensorviz/frustum"
)

// TrajectoryStep is the horizontal distance between consecutive generated poses.
const TrajectoryStep = 0.1

// trajectoryJitter is the full range of the random height change per step.
const trajectoryJitter = 0.04

var trajectoryDirections = []r3.Vector{
	{X: -TrajectoryStep},
	{X: TrajectoryStep},
	{Z: -TrajectoryStep},
	{X: -TrajectoryStep, Z: -TrajectoryStep},
	{X: TrajectoryStep, Z: -TrajectoryStep},
}

// GenerateTrajectory returns a random walk of n poses starting at the origin. Each step moves left,
// right, forward (-Z) or diagonally forward and changes the height by at most half of trajectoryJitter.
// Poses carry no rotation and are timestamped by index.
func GenerateTrajectory(n int, rng *rand.Rand) []frustum.PoseSample {
	if n <= 0 {
		return nil
	}
	poses := make([]frustum.PoseSample, n)
	for i := 1; i < n; i++ {
		step := trajectoryDirections[rng.Intn(len(trajectoryDirections))]
		step.Y = (rng.Float64() - 0.5) * trajectoryJitter
		poses[i] = frustum.PoseSample{Position: poses[i-1].Position.Add(step), Timestamp: float64(i)}
	}
	return poses
}
