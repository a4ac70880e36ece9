package report

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/sensorviz/sensorviz/camera"
	"github.com/sensorviz/sensorviz/frustum"
	"github.com/sensorviz/sensorviz/logging"
	"github.com/sensorviz/sensorviz/spatialmath"
)

func observations() []frustum.Correspondence {
	ahead := r3.Vector{Z: -5}
	behind := r3.Vector{Z: 5}
	return []frustum.Correspondence{
		{WorldPoint: &ahead, Pixel: r2.Point{X: 50, Y: 50}, ImageWidth: 100, ImageHeight: 100},
		{WorldPoint: &ahead, Pixel: r2.Point{X: 100, Y: 50}, ImageWidth: 100, ImageHeight: 100},
		{WorldPoint: &behind, Pixel: r2.Point{X: 50, Y: 50}, ImageWidth: 100, ImageHeight: 100},
		{Pixel: r2.Point{X: 10, Y: 10}, ImageWidth: 100, ImageHeight: 100},
		{WorldPoint: &ahead, Pixel: r2.Point{X: 10, Y: 10}},
	}
}

func TestCompute(t *testing.T) {
	m, err := camera.NewModel(camera.Config{FOV: 90, Aspect: 1, Near: 1, Far: 10})
	test.That(t, err, test.ShouldBeNil)

	r, err := Compute(m, spatialmath.NewZeroPose(), frustum.DefaultConvention(), observations())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, r.Skipped, test.ShouldEqual, 2)
	test.That(t, len(r.Residuals), test.ShouldEqual, 3)

	const eps = 1e-9
	centre := r.Residuals[0]
	test.That(t, centre.Visible, test.ShouldBeTrue)
	test.That(t, spatialmath.R3VectorAlmostEqual(centre.ForwardMarker, r3.Vector{Z: -1}, eps), test.ShouldBeTrue)
	test.That(t, centre.Distance, test.ShouldAlmostEqual, 0, eps)

	edge := r.Residuals[1]
	test.That(t, spatialmath.R3VectorAlmostEqual(edge.InverseMarker, r3.Vector{Y: -1, Z: -1}, eps), test.ShouldBeTrue)
	test.That(t, edge.Distance, test.ShouldAlmostEqual, 1, eps)

	test.That(t, r.Residuals[2].Visible, test.ShouldBeFalse)
	test.That(t, r.Residuals[2].Index, test.ShouldEqual, 2)

	test.That(t, r.Distances(), test.ShouldHaveLength, 2)
	test.That(t, r.Summary.Count, test.ShouldEqual, 2)
	test.That(t, r.Summary.Mean, test.ShouldAlmostEqual, 0.5, eps)
	test.That(t, r.Summary.Max, test.ShouldAlmostEqual, 1, eps)

	rendered := r.String()
	test.That(t, rendered, test.ShouldContainSubstring, "behind camera")
	test.That(t, rendered, test.ShouldContainSubstring, "n=2 skipped=2 mean=0.5000")
}

func TestComputeWithoutVisibleResiduals(t *testing.T) {
	m, err := camera.NewModel(camera.Config{FOV: 60, Aspect: 1.5, Near: 0.1, Far: 10})
	test.That(t, err, test.ShouldBeNil)
	r, err := Compute(m, spatialmath.NewZeroPose(), frustum.DefaultConvention(), observations()[2:])
	test.That(t, err, test.ShouldBeNil)
	test.That(t, r.Summary, test.ShouldResemble, Summary{})
	test.That(t, r.SaveHistogram(filepath.Join(t.TempDir(), "empty.png"), 0), test.ShouldNotBeNil)
}

func TestFromFrustum(t *testing.T) {
	f, err := frustum.New(frustum.Config{
		Camera:     camera.Config{FOV: 90, Aspect: 1, Near: 1, Far: 10},
		Convention: frustum.DefaultConvention(),
	}, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	r, err := FromFrustum(f, observations())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, r.Summary.Count, test.ShouldEqual, 2)

	f.Update(frustum.PoseSample{Position: r3.Vector{Z: -10}})
	r, err = FromFrustum(f, observations())
	test.That(t, err, test.ShouldBeNil)
	// the camera moved past every world point
	test.That(t, r.Summary.Count, test.ShouldEqual, 0)
}

func TestSummarize(t *testing.T) {
	s, err := Summarize([]float64{4, 1, 3, 2})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, s.Count, test.ShouldEqual, 4)
	test.That(t, s.Mean, test.ShouldAlmostEqual, 2.5)
	test.That(t, s.Median, test.ShouldAlmostEqual, 2.5)
	test.That(t, s.Max, test.ShouldEqual, 4.)
	test.That(t, s.StdDev, test.ShouldAlmostEqual, math.Sqrt(1.25))
	test.That(t, s.P90, test.ShouldBeGreaterThanOrEqualTo, s.Median)
	test.That(t, s.P90, test.ShouldBeLessThanOrEqualTo, s.Max)

	_, err = Summarize(nil)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestSaveHistogram(t *testing.T) {
	r := &Report{Residuals: []Residual{
		{Distance: 0.1, Visible: true},
		{Distance: 0.2, Visible: true},
		{Distance: 0.25, Visible: true},
		{Distance: 9, Visible: false},
	}}
	fn := filepath.Join(t.TempDir(), "residuals.png")
	test.That(t, r.SaveHistogram(fn, 4), test.ShouldBeNil)
	info, err := os.Stat(fn)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, info.Size(), test.ShouldBeGreaterThan, int64(0))
}
