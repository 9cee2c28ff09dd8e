package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZoneIndexSearch(t *testing.T) {
	index := newZoneIndex([]*Zone{
		zone("near", ZoneResidentialPermit, "A", rect(0, 0, 0.01, 0.01)),
		zone("far", ZoneResidentialPermit, "B", rect(1, 1, 1.01, 1.01)),
	})

	entries := index.search(BBox{MinLat: 0.004, MinLng: 0.004, MaxLat: 0.006, MaxLng: 0.006})
	require.Len(t, entries, 1)
	assert.Equal(t, "near", entries[0].zone.ID)

	assert.Empty(t, index.search(BBox{MinLat: 0.5, MinLng: 0.5, MaxLat: 0.6, MaxLng: 0.6}))
}

func TestZoneIndexMultipleRings(t *testing.T) {
	index := newZoneIndex([]*Zone{
		zone("multi", ZoneResidentialPermit, "A",
			rect(0, 0, 0.001, 0.001),
			rect(0, 0.005, 0.001, 0.006)),
	})

	// A box covering both rings returns one entry per ring
	entries := index.search(BBox{MinLat: -0.001, MinLng: -0.001, MaxLat: 0.002, MaxLng: 0.01})
	assert.Len(t, entries, 2)
}

func TestBBoxToRectDegenerate(t *testing.T) {
	// A point-sized box still makes a legal query rectangle
	_, err := bboxToRect(BBox{MinLat: 1, MinLng: 2, MaxLat: 1, MaxLng: 2})
	assert.NoError(t, err)
}

func TestFilterByViewport(t *testing.T) {
	polygons := []RenderPolygon{
		poly("in", "A", ZoneResidentialPermit, rect(0.001, 0.001, 0.002, 0.002)),
		poly("edge", "B", ZoneResidentialPermit, rect(0.0105, 0.001, 0.012, 0.002)),
		poly("out", "C", ZoneResidentialPermit, rect(0.5, 0.5, 0.6, 0.6)),
	}
	viewport := BBox{MinLat: 0, MinLng: 0, MaxLat: 0.01, MaxLng: 0.01}

	// The margin keeps polygons just past the edge so panning does not pop
	out := filterByViewport(polygons, viewport, 0.0025)
	require.Len(t, out, 2)
	assert.Equal(t, "in", out[0].ZoneID)
	assert.Equal(t, "edge", out[1].ZoneID)

	assert.Len(t, filterByViewport(polygons, viewport, 0), 1)
}
