package pointcloud

import (
	"image/color"
	"math"
	"math/rand"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestPointCloudBasic(t *testing.T) {
	pc := New()
	test.That(t, pc.Size(), test.ShouldEqual, 0)
	test.That(t, pc.MetaData().Empty(), test.ShouldBeTrue)
	test.That(t, pc.MetaData().Size(), test.ShouldResemble, r3.Vector{})

	p0 := r3.Vector{X: 0, Y: 0, Z: 0}
	test.That(t, pc.Set(p0, nil), test.ShouldBeNil)
	d, got := pc.At(0, 0, 0)
	test.That(t, got, test.ShouldBeTrue)
	test.That(t, d, test.ShouldBeNil)

	p1 := r3.Vector{X: 1, Y: 0, Z: 4}
	d1 := NewColoredData(color.NRGBA{1, 2, 3, 255})
	test.That(t, pc.Set(p1, d1), test.ShouldBeNil)
	d, got = pc.At(1, 0, 4)
	test.That(t, got, test.ShouldBeTrue)
	test.That(t, d, test.ShouldEqual, d1)
	test.That(t, pc.MetaData().HasColor, test.ShouldBeTrue)

	_, got = pc.At(1, 1, 1)
	test.That(t, got, test.ShouldBeFalse)

	// overwriting keeps the size
	test.That(t, pc.Set(p1, NewBasicData()), test.ShouldBeNil)
	test.That(t, pc.Size(), test.ShouldEqual, 2)

	test.That(t, pc.Set(r3.Vector{X: math.NaN()}, nil), test.ShouldNotBeNil)
	test.That(t, pc.Size(), test.ShouldEqual, 2)

	meta := pc.MetaData()
	test.That(t, meta.MaxX, test.ShouldEqual, 1.)
	test.That(t, meta.MaxZ, test.ShouldEqual, 4.)
	test.That(t, meta.MaxSideLength(), test.ShouldEqual, 4.)
	test.That(t, meta.Center(), test.ShouldResemble, r3.Vector{X: 0.5, Y: 0, Z: 2})
	test.That(t, Positions(pc), test.ShouldResemble, []r3.Vector{p0, p1})
}

func TestIterateBatches(t *testing.T) {
	pc := New()
	for i := 0; i < 10; i++ {
		test.That(t, pc.Set(r3.Vector{X: float64(i)}, nil), test.ShouldBeNil)
	}

	seen := map[float64]int{}
	for batch := 0; batch < 3; batch++ {
		pc.Iterate(3, batch, func(p r3.Vector, d Data) bool {
			seen[p.X]++
			return true
		})
	}
	test.That(t, len(seen), test.ShouldEqual, 10)
	for _, count := range seen {
		test.That(t, count, test.ShouldEqual, 1)
	}

	visited := 0
	pc.Iterate(0, 0, func(p r3.Vector, d Data) bool {
		visited++
		return visited < 4
	})
	test.That(t, visited, test.ShouldEqual, 4)
}

func TestGenerateTestCloud(t *testing.T) {
	pc := GenerateTestCloud(500, rand.New(rand.NewSource(1)))
	test.That(t, pc.Size(), test.ShouldEqual, 500)

	meta := pc.MetaData()
	test.That(t, meta.HasColor, test.ShouldBeTrue)
	test.That(t, meta.MinX, test.ShouldBeGreaterThanOrEqualTo, -TestCloudSide/2)
	test.That(t, meta.MaxZ, test.ShouldBeLessThanOrEqualTo, TestCloudSide/2)
	test.That(t, meta.MinY, test.ShouldBeGreaterThanOrEqualTo, -0.9)
	test.That(t, meta.MaxY, test.ShouldBeLessThanOrEqualTo, -0.1)

	pc.Iterate(0, 0, func(p r3.Vector, d Data) bool {
		test.That(t, p.Y, test.ShouldAlmostEqual, RoadSurfaceHeight(p.X, p.Z))
		return true
	})

	again := GenerateTestCloud(500, rand.New(rand.NewSource(1)))
	test.That(t, Positions(again), test.ShouldResemble, Positions(pc))
}

func TestFitDistance(t *testing.T) {
	meta := NewMetaData()
	meta.Merge(r3.Vector{X: -10, Y: 0, Z: -2}, nil)
	meta.Merge(r3.Vector{X: 10, Y: 1, Z: 2}, nil)
	test.That(t, FitDistance(meta, 90), test.ShouldAlmostEqual, 20/(2*math.Tan(math.Pi/4))*1.5)
	test.That(t, FitDistance(meta, 60), test.ShouldBeGreaterThan, FitDistance(meta, 90))
	test.That(t, FitDistance(NewMetaData(), 60), test.ShouldEqual, 0.)
}
