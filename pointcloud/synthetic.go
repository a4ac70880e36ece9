package pointcloud

import (
	"image/color"
	"math"
	"math/rand"

	"github.com/golang/geo/r3"
)

// TestCloudSide is the edge length of the square area covered by GenerateTestCloud.
const TestCloudSide = 200.

// GenerateTestCloud returns n points scattered over a gently undulating road surface, shaded from dark to
// light by height. Y is up.
func GenerateTestCloud(n int, rng *rand.Rand) PointCloud {
	pc := NewWithPrealloc(n)
	for pc.Size() < n {
		x := (rng.Float64() - 0.5) * TestCloudSide
		z := (rng.Float64() - 0.5) * TestCloudSide
		y := RoadSurfaceHeight(x, z)

		shade := uint8(math.Round(math.Max(0, math.Min(1, (y+1)/2)) * 255))
		//nolint:errcheck
		pc.Set(r3.Vector{X: x, Y: y, Z: z}, NewColoredData(color.NRGBA{shade, shade, shade, 255}))
	}
	return pc
}

// RoadSurfaceHeight is the height of the synthetic surface at (x, z).
func RoadSurfaceHeight(x, z float64) float64 {
	return -0.5 + math.Sin(x*0.5)*0.2 + math.Cos(z*0.5)*0.2
}

// FitDistance returns how far back a camera with the given vertical field of view must stand to frame
// the whole bounding box, with a 50% margin.
func FitDistance(meta MetaData, fovDeg float64) float64 {
	fov := fovDeg * math.Pi / 180
	return math.Abs(meta.MaxSideLength()/(2*math.Tan(fov/2))) * 1.5
}
