package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func poly(zoneID, zoneCode string, zoneType ZoneType, ring Ring) RenderPolygon {
	return RenderPolygon{
		ZoneID:        zoneID,
		ZoneCode:      zoneCode,
		ZoneType:      zoneType,
		OriginalCount: len(ring),
		Ring:          ring,
	}
}

func TestClipPriority(t *testing.T) {
	metered := poly("m1", "", ZoneMetered, rect(0, 0, 10, 10))
	permit := poly("p1", "A", ZoneResidentialPermit, rect(0, 0, 10, 10))
	assert.Greater(t, clipPriority(metered), clipPriority(permit))

	tall := poly("p2", "A", ZoneResidentialPermit, rect(0, 0, 10, 2))
	wide := poly("p3", "A", ZoneResidentialPermit, rect(0, 0, 2, 10))
	assert.Greater(t, clipPriority(tall), clipPriority(wide))
}

func TestClipOverlapsMeteredWins(t *testing.T) {
	metered := poly("m1", "", ZoneMetered, rect(0, 0, 10, 10))
	permit := poly("p1", "A", ZoneResidentialPermit, rect(0, 5, 10, 15))

	out := clipOverlaps([]RenderPolygon{metered, permit}, 0.00001)
	require.Len(t, out, 2)

	// The metered polygon keeps its full extent
	assert.Equal(t, metered.Ring, out[0].Ring)

	// The permit polygon retreats to the non-overlapping half
	clipped := out[1].bbox()
	assert.InDelta(t, 10.0, clipped.MinLng, 1e-9)
	assert.InDelta(t, 15.0, clipped.MaxLng, 1e-9)
	assert.InDelta(t, 0.0, clipped.MinLat, 1e-9)
	assert.InDelta(t, 10.0, clipped.MaxLat, 1e-9)
	assert.InDelta(t, 50.0, out[1].Ring.Area(), 1e-6)
}

func TestClipOverlapsSameZoneUntouched(t *testing.T) {
	a := poly("z1", "A", ZoneResidentialPermit, rect(0, 0, 10, 10))
	b := poly("z2", "A", ZoneResidentialPermit, rect(0, 5, 10, 15))

	out := clipOverlaps([]RenderPolygon{a, b}, 0.00001)
	require.Len(t, out, 2)
	assert.Equal(t, a.Ring, out[0].Ring)
	assert.Equal(t, b.Ring, out[1].Ring)
}

func TestClipOverlapsDisjointUntouched(t *testing.T) {
	a := poly("m1", "", ZoneMetered, rect(0, 0, 10, 10))
	b := poly("p1", "A", ZoneResidentialPermit, rect(0, 20, 10, 30))

	out := clipOverlaps([]RenderPolygon{a, b}, 0.00001)
	require.Len(t, out, 2)
	assert.Equal(t, a.Ring, out[0].Ring)
	assert.Equal(t, b.Ring, out[1].Ring)
}

func TestClipOverlapsSwallowedPolygonVanishes(t *testing.T) {
	metered := poly("m1", "", ZoneMetered, rect(0, 0, 10, 10))
	inside := poly("p1", "A", ZoneResidentialPermit, rect(2, 2, 8, 8))

	out := clipOverlaps([]RenderPolygon{metered, inside}, 0.00001)
	require.Len(t, out, 1)
	assert.Equal(t, "m1", out[0].ZoneID)
}

func TestClipOverlapsDeterministic(t *testing.T) {
	polygons := []RenderPolygon{
		poly("m1", "", ZoneMetered, rect(0, 0, 10, 10)),
		poly("p1", "A", ZoneResidentialPermit, rect(0, 5, 10, 15)),
		poly("o1", "", ZoneOther, rect(5, 5, 15, 15)),
	}

	first := clipOverlaps(polygons, 0.00001)
	second := clipOverlaps(polygons, 0.00001)
	assert.Equal(t, first, second)
}

func TestRingsOverlap(t *testing.T) {
	a := rect(0, 0, 10, 10)

	assert.True(t, ringsOverlap(a, rect(5, 5, 15, 15)))
	assert.False(t, ringsOverlap(a, rect(20, 20, 30, 30)))

	// Crossing rectangles with no vertex inside the other
	horizontal := rect(4, -2, 6, 12)
	vertical := rect(-2, 4, 12, 6)
	assert.True(t, ringsOverlap(horizontal, vertical))
}

func TestSubtractRing(t *testing.T) {
	subject := rect(0, 5, 10, 15)
	clipper := rect(0, 0, 10, 10)

	out := subtractRing(subject, clipper)
	require.GreaterOrEqual(t, len(out), 3)
	assert.InDelta(t, 50.0, out.Area(), 1e-6)

	// Subject fully inside the clipper disappears
	assert.Nil(t, subtractRing(rect(2, 2, 8, 8), rect(0, 0, 10, 10)))

	// Degenerate inputs pass through
	tiny := Ring{pt(0, 0), pt(1, 1)}
	assert.Equal(t, tiny, subtractRing(tiny, clipper))
}

func TestClipHalfPlane(t *testing.T) {
	square := rect(0, 0, 10, 10)

	// Keep the left side of the upward line through lng=5
	left := clipHalfPlane(square, pt(0, 5), pt(10, 5), true)
	require.GreaterOrEqual(t, len(left), 3)
	assert.InDelta(t, 50.0, left.Area(), 1e-9)
	for _, p := range left {
		assert.LessOrEqual(t, p.Lng, 5.0+coordEpsilon)
	}

	right := clipHalfPlane(square, pt(0, 5), pt(10, 5), false)
	require.GreaterOrEqual(t, len(right), 3)
	assert.InDelta(t, 50.0, right.Area(), 1e-9)
	for _, p := range right {
		assert.GreaterOrEqual(t, p.Lng, 5.0-coordEpsilon)
	}
}
