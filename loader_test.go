package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const zoneDocumentJSON = `{
	"type": "zoneExport",
	"zones": [
		{
			"id": "rpp_q",
			"displayName": "Area Q",
			"zoneType": "rpp",
			"permitArea": "Q",
			"validPermitAreas": ["Q", "R"],
			"boundaries": [
				[
					{"latitude": 37.75, "longitude": -122.45},
					{"latitude": 37.75, "longitude": -122.44},
					{"latitude": 37.76, "longitude": -122.44},
					{"latitude": 37.76, "longitude": -122.45}
				],
				[
					{"latitude": 37.70, "longitude": -122.45},
					{"latitude": 37.70, "longitude": -122.44},
					{"latitude": 37.71, "longitude": -122.44}
				]
			]
		},
		{
			"id": "meter_1",
			"displayName": "Mission St Meters",
			"zoneType": "metered",
			"restrictiveness": 12,
			"boundary": [
				{"latitude": 37.75, "longitude": -122.42},
				{"latitude": 37.75, "longitude": -122.41},
				{"latitude": 37.76, "longitude": -122.41},
				{"latitude": 37.75, "longitude": -122.42}
			]
		},
		{
			"id": "empty_zone",
			"displayName": "No Boundary",
			"zoneType": "rpp"
		}
	]
}`

func TestParseZoneDocument(t *testing.T) {
	zones, err := ParseZones([]byte(zoneDocumentJSON))
	require.NoError(t, err)

	// The zone without a boundary is skipped, not fatal
	require.Len(t, zones, 2)

	q := zones[0]
	assert.Equal(t, "rpp_q", q.ID)
	assert.Equal(t, "Area Q", q.DisplayName)
	assert.Equal(t, ZoneResidentialPermit, q.Type)
	assert.Equal(t, "Q", q.PermitArea)
	assert.Equal(t, []string{"Q", "R"}, q.PermitAreas)
	assert.True(t, q.MultiPermit())
	assert.Len(t, q.Rings, 2)

	// Restrictiveness defaults by type when the export carries none
	assert.Equal(t, 8, q.Restrictiveness)

	m := zones[1]
	assert.Equal(t, ZoneMetered, m.Type)
	assert.Equal(t, 12, m.Restrictiveness)

	// Legacy single-boundary field, with the closing point dropped
	require.Len(t, m.Rings, 1)
	assert.Len(t, m.Rings[0], 3)
}

const geoJSONZones = `{
	"type": "FeatureCollection",
	"features": [
		{
			"type": "Feature",
			"properties": {"id": "rpp_w", "displayName": "Area W", "zoneType": "rpp", "permitArea": "W"},
			"geometry": {
				"type": "Polygon",
				"coordinates": [[
					[-122.45, 37.75], [-122.44, 37.75], [-122.44, 37.76], [-122.45, 37.76], [-122.45, 37.75]
				]]
			}
		},
		{
			"type": "Feature",
			"properties": {"zoneType": "metered"},
			"geometry": {
				"type": "MultiPolygon",
				"coordinates": [
					[[[-122.42, 37.75], [-122.41, 37.75], [-122.41, 37.76], [-122.42, 37.75]]],
					[[[-122.40, 37.75], [-122.39, 37.75], [-122.39, 37.76], [-122.40, 37.75]]]
				]
			}
		},
		{
			"type": "Feature",
			"properties": {"id": "pointless"},
			"geometry": {"type": "Point", "coordinates": [-122.4, 37.7]}
		}
	]
}`

func TestParseGeoJSONZones(t *testing.T) {
	zones, err := ParseZones([]byte(geoJSONZones))
	require.NoError(t, err)

	// The Point feature carries no polygon and is skipped
	require.Len(t, zones, 2)

	w := zones[0]
	assert.Equal(t, "rpp_w", w.ID)
	assert.Equal(t, ZoneResidentialPermit, w.Type)
	assert.Equal(t, []string{"W"}, w.PermitAreas)
	require.Len(t, w.Rings, 1)

	// GeoJSON is [lon, lat]; the closing point is dropped
	require.Len(t, w.Rings[0], 4)
	assert.Equal(t, Point{Lat: 37.75, Lng: -122.45}, w.Rings[0][0])

	m := zones[1]
	assert.Equal(t, ZoneMetered, m.Type)
	assert.Len(t, m.Rings, 2)

	// No id property: a synthetic one is assigned from the feature index
	assert.Equal(t, "zone_001", m.ID)
}

func TestParseZonesInvalidJSON(t *testing.T) {
	_, err := ParseZones([]byte("not json"))
	assert.Error(t, err)
}

func TestLoadZonesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zones.json")
	require.NoError(t, os.WriteFile(path, []byte(zoneDocumentJSON), 0o644))

	zones, err := LoadZonesFile(path)
	require.NoError(t, err)
	assert.Len(t, zones, 2)

	_, err = LoadZonesFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestCleanRing(t *testing.T) {
	closed := []Point{pt(0, 0), pt(0, 1), pt(1, 1), pt(0, 0)}
	ring := cleanRing(closed)
	require.Len(t, ring, 3)

	assert.Nil(t, cleanRing([]Point{pt(0, 0), pt(1, 1)}))
	assert.Nil(t, cleanRing(nil))
}

func TestNormalizeZone(t *testing.T) {
	z := &Zone{Type: ZoneMetered, Rings: []Ring{rect(0, 0, 1, 1)}}
	normalizeZone(z, 7)
	assert.Equal(t, "zone_007", z.ID)
	assert.Equal(t, 10, z.Restrictiveness)
	assert.Empty(t, z.PermitAreas)

	z = &Zone{ID: "rpp_a", PermitArea: "A", Type: ZoneResidentialPermit}
	normalizeZone(z, 0)
	assert.Equal(t, "rpp_a", z.ID)
	assert.Equal(t, []string{"A"}, z.PermitAreas)
	assert.Equal(t, 8, z.Restrictiveness)
}
