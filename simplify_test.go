package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// octagon returns a ring with no collinear triples
func octagon() Ring {
	ring := make(Ring, 0, 8)
	for i := 0; i < 8; i++ {
		ang := 2 * math.Pi * float64(i) / 8
		ring = append(ring, pt(math.Sin(ang), math.Cos(ang)))
	}
	return ring
}

func TestDouglasPeuckerNeverGrows(t *testing.T) {
	ring := octagon()
	for _, eps := range []float64{0, 0.0001, 0.01, 0.5} {
		out := douglasPeuckerRing(ring, eps, nil)
		assert.LessOrEqual(t, len(out), len(ring), "epsilon %v", eps)
	}
}

func TestDouglasPeuckerZeroToleranceKeepsEverything(t *testing.T) {
	ring := octagon()
	out := douglasPeuckerRing(ring, 0, nil)
	assert.Equal(t, ring, out)

	// Exactly-collinear interior points survive at zero tolerance too
	withMidpoint := Ring{
		pt(0, 0), pt(0, 0.5), pt(0, 1), pt(1, 1), pt(1, 0),
	}
	assert.Equal(t, withMidpoint, douglasPeuckerRing(withMidpoint, 0, nil))
}

func TestDouglasPeuckerDropsNearCollinearPoints(t *testing.T) {
	// Square with a barely-off-line midpoint on the bottom edge
	ring := Ring{
		pt(0, 0),
		pt(0.00002, 0.005), // 0.00002 degrees off the chord
		pt(0, 0.01),
		pt(0.01, 0.01),
		pt(0.01, 0),
	}
	out := douglasPeuckerRing(ring, 0.00005, nil)
	assert.Len(t, out, 4)
	assert.NotContains(t, out, pt(0.00002, 0.005))
}

func TestCurvePreservationKeepsSharpDetour(t *testing.T) {
	// A narrow spike on the bottom edge: well within Douglas-Peucker
	// tolerance but turning sharply enough to count as a curve point
	spike := pt(0.00002, 0.005)
	ring := Ring{
		pt(0, 0),
		pt(0, 0.0049),
		spike,
		pt(0, 0.0051),
		pt(0, 0.01),
		pt(0.01, 0.01),
		pt(0.01, 0),
	}

	cfg := PipelineConfig{
		UseDouglasPeucker:   true,
		Tolerance:           0.00005,
		PreserveCurves:      true,
		CurveAngleThreshold: 15.0,
	}
	preserved := simplifyRing(ring, cfg)
	assert.Contains(t, preserved, spike)

	cfg.PreserveCurves = false
	flattened := simplifyRing(ring, cfg)
	assert.NotContains(t, flattened, spike)
}

func TestCurvePointIndexes(t *testing.T) {
	// Square corners all turn 90 degrees
	square := rect(0, 0, 1, 1)
	assert.Equal(t, []int{0, 1, 2, 3}, curvePointIndexes(square, 30))

	// Nothing turns more than 90
	assert.Empty(t, curvePointIndexes(square, 91))
}

func TestGridSnapProducesGridMultiples(t *testing.T) {
	ring := Ring{
		pt(0.000013, 0.000049),
		pt(0.000051, 0.000102),
		pt(0.000149, 0.000021),
	}
	const grid = 0.00005
	out := gridSnapRing(ring, grid)

	require.GreaterOrEqual(t, len(out), 3)
	for _, p := range out {
		latSteps := p.Lat / grid
		lngSteps := p.Lng / grid
		assert.InDelta(t, math.Round(latSteps), latSteps, 1e-9)
		assert.InDelta(t, math.Round(lngSteps), lngSteps, 1e-9)
	}
}

func TestGridSnapRemovesDuplicates(t *testing.T) {
	// Both leading points snap to the same cell, and the last point snaps
	// onto the first (wraparound duplicate)
	ring := Ring{
		pt(0.000001, 0.000001),
		pt(0.000002, 0.000002),
		pt(0.0001, 0.0001),
		pt(0.0001, 0.000001),
		pt(0.000002, 0.000001),
	}
	out := gridSnapRing(ring, 0.0001)

	for i, p := range out {
		assert.False(t, p.Equal(out[(i+1)%len(out)], coordEpsilon), "duplicate at %d", i)
	}
}

func TestConvexHullIsConvex(t *testing.T) {
	// Star-like concave ring
	ring := Ring{
		pt(0, 0), pt(1, 4), pt(0, 8),
		pt(4, 5), pt(8, 8), pt(5, 4),
		pt(8, 0), pt(4, 1),
	}
	hull := convexHull(ring)

	require.GreaterOrEqual(t, len(hull), 3)
	n := len(hull)
	for i := 0; i < n; i++ {
		turn := cross(hull[i], hull[(i+1)%n], hull[(i+2)%n])
		assert.Positive(t, turn, "non-left turn at %d", i)
	}

	// Concave vertices are gone
	assert.NotContains(t, hull, pt(4, 5))
	assert.NotContains(t, hull, pt(5, 4))
}

func TestConvexHullOfConvexRingKeepsAllCorners(t *testing.T) {
	square := rect(0, 0, 1, 1)
	hull := convexHull(square)
	assert.Len(t, hull, 4)
	for _, p := range square {
		assert.Contains(t, hull, p)
	}
}

func TestCornerRoundingRightAngle(t *testing.T) {
	const radius = 0.00005
	square := rect(0, 0, 0.001, 0.001)
	out := roundCorners(square, radius)

	// Every corner is convex: each gains arcPointCount points
	assert.Len(t, out, len(square)+4*arcPointCount)

	// All inserted points stay within the radius of their corner
	for _, p := range out {
		nearest := math.Inf(1)
		for _, v := range square {
			if d := p.Distance(v); d < nearest {
				nearest = d
			}
		}
		assert.LessOrEqual(t, nearest, radius*1.0001)
	}
}

func TestCornerRoundingClampsOversizedRadius(t *testing.T) {
	// Radius far larger than the edges: tangent offsets clamp to half the
	// shorter adjacent edge instead of overrunning it
	tiny := rect(0, 0, 0.00004, 0.00004)
	out := roundCorners(tiny, 0.0001)

	require.GreaterOrEqual(t, len(out), 3)
	for _, p := range out {
		assert.GreaterOrEqual(t, p.Lat, -coordEpsilon)
		assert.LessOrEqual(t, p.Lat, 0.00004+coordEpsilon)
		assert.GreaterOrEqual(t, p.Lng, -coordEpsilon)
		assert.LessOrEqual(t, p.Lng, 0.00004+coordEpsilon)
	}
}

func TestCornerRoundingSkipsReflexVertices(t *testing.T) {
	// L-shape: the inner corner is reflex and must survive untouched
	reflex := pt(1, 1)
	ring := Ring{
		pt(0, 0), pt(0, 2), reflex, pt(2, 1), pt(2, 0),
	}
	out := roundCorners(ring, 0.00001)
	assert.Contains(t, out, reflex)
}

func TestSimplifyRingStageOrderAndToggles(t *testing.T) {
	ring := octagon()

	// Everything off: identity
	out := simplifyRing(ring, PipelineConfig{})
	assert.Equal(t, ring, out)

	// Invalid input passes through for the caller to drop
	twoPoints := Ring{pt(0, 0), pt(1, 1)}
	assert.Equal(t, twoPoints, simplifyRing(twoPoints, DefaultConfig()))
}

func TestSimplifyRingConvexHullStage(t *testing.T) {
	ring := Ring{
		pt(0, 0), pt(1, 4), pt(0, 8),
		pt(4, 5), pt(8, 8), pt(5, 4),
		pt(8, 0), pt(4, 1),
	}
	out := simplifyRing(ring, PipelineConfig{UseConvexHull: true})
	assert.Less(t, len(out), len(ring))
	assert.True(t, out.IsCounterClockwise())
}
