package utils

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestAngleConversion(t *testing.T) {
	test.That(t, DegToRad(180), test.ShouldAlmostEqual, math.Pi)
	test.That(t, RadToDeg(math.Pi/2), test.ShouldAlmostEqual, 90)
	test.That(t, RadToDeg(DegToRad(29.7)), test.ShouldAlmostEqual, 29.7)
}

func TestFloat64AlmostEqual(t *testing.T) {
	test.That(t, Float64AlmostEqual(1, 1+1e-9, 1e-6), test.ShouldBeTrue)
	test.That(t, Float64AlmostEqual(1, 1.1, 1e-6), test.ShouldBeFalse)
}

func TestIsFinite(t *testing.T) {
	test.That(t, IsFinite(1, 2, 3), test.ShouldBeTrue)
	test.That(t, IsFinite(1, math.NaN()), test.ShouldBeFalse)
	test.That(t, IsFinite(math.Inf(-1)), test.ShouldBeFalse)
	test.That(t, IsFinite(), test.ShouldBeTrue)
}

func TestLerp(t *testing.T) {
	test.That(t, Lerp(0, 10, 0.05), test.ShouldAlmostEqual, 0.5)
	test.That(t, Lerp(4, 4, 0.7), test.ShouldEqual, 4.)
	test.That(t, Lerp(-2, 2, 1), test.ShouldEqual, 2.)
}
