package utils

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestAngleConversions(t *testing.T) {
	test.That(t, DegToRad(180), test.ShouldAlmostEqual, math.Pi)
	test.That(t, RadToDeg(math.Pi/2), test.ShouldAlmostEqual, 90.)
	test.That(t, RadToDeg(DegToRad(37.5)), test.ShouldAlmostEqual, 37.5)
}

func TestMinInt(t *testing.T) {
	test.That(t, MinInt(3, 7), test.ShouldEqual, 3)
	test.That(t, MinInt(7, 3), test.ShouldEqual, 3)
	test.That(t, MinInt(-2, -2), test.ShouldEqual, -2)
}

func TestWorkerCountBounds(t *testing.T) {
	test.That(t, WorkerCount(4, 10), test.ShouldEqual, 4)
	test.That(t, WorkerCount(4, 2), test.ShouldEqual, 2)
	test.That(t, WorkerCount(0, 0), test.ShouldEqual, ParallelFactor)
	test.That(t, WorkerCount(-3, 1), test.ShouldEqual, 1)
}
