package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
)

// zoneDocument is the backend export format: zones with per-block boundary
// rings as {latitude, longitude} objects
type zoneDocument struct {
	Type  string `json:"type"`
	Zones []struct {
		ID               string    `json:"id"`
		DisplayName      string    `json:"displayName"`
		ZoneType         string    `json:"zoneType"`
		PermitArea       string    `json:"permitArea"`
		ValidPermitAreas []string  `json:"validPermitAreas"`
		Restrictiveness  int       `json:"restrictiveness"`
		Boundaries       [][]Point `json:"boundaries"`
		// Legacy single-ring field, still emitted by older exports
		Boundary []Point `json:"boundary"`
	} `json:"zones"`
}

// GeoJSON structures for parsing zone feature files
type geoJSONFeature struct {
	Type       string          `json:"type"`
	Geometry   geoJSONGeometry `json:"geometry"`
	Properties map[string]any  `json:"properties"`
}

type geoJSONGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

type geoJSONFeatureCollection struct {
	Type     string           `json:"type"`
	Features []geoJSONFeature `json:"features"`
}

// LoadZonesFile reads a zone data file, accepting either the backend zone
// export or a GeoJSON FeatureCollection. Malformed zones are skipped with a
// warning; one bad record never fails the load.
func LoadZonesFile(path string) ([]*Zone, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read zone data: %w", err)
	}
	return ParseZones(data)
}

// ParseZones decodes zone data from raw JSON
func ParseZones(data []byte) ([]*Zone, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("parse zone data: %w", err)
	}
	if probe.Type == "FeatureCollection" {
		return parseGeoJSONZones(data)
	}
	return parseZoneDocument(data)
}

func parseZoneDocument(data []byte) ([]*Zone, error) {
	var doc zoneDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse zone document: %w", err)
	}

	zones := make([]*Zone, 0, len(doc.Zones))
	for i, raw := range doc.Zones {
		var rings []Ring
		for _, boundary := range raw.Boundaries {
			if ring := cleanRing(boundary); ring != nil {
				rings = append(rings, ring)
			}
		}
		if len(raw.Boundaries) == 0 && len(raw.Boundary) > 0 {
			if ring := cleanRing(raw.Boundary); ring != nil {
				rings = append(rings, ring)
			}
		}
		if len(rings) == 0 {
			log.Printf("Skipping zone %q: no usable boundary\n", raw.ID)
			continue
		}

		zone := &Zone{
			ID:              raw.ID,
			DisplayName:     raw.DisplayName,
			Type:            ParseZoneType(raw.ZoneType),
			PermitArea:      raw.PermitArea,
			PermitAreas:     raw.ValidPermitAreas,
			Restrictiveness: raw.Restrictiveness,
			Rings:           rings,
		}
		normalizeZone(zone, i)
		zones = append(zones, zone)
	}
	return zones, nil
}

func parseGeoJSONZones(data []byte) ([]*Zone, error) {
	var fc geoJSONFeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse feature collection: %w", err)
	}

	zones := make([]*Zone, 0, len(fc.Features))
	for i, feature := range fc.Features {
		rings := parseGeoJSONGeometry(feature.Geometry)
		if len(rings) == 0 {
			continue
		}

		zone := &Zone{
			ID:          stringProp(feature.Properties, "id"),
			DisplayName: stringProp(feature.Properties, "displayName"),
			Type:        ParseZoneType(stringProp(feature.Properties, "zoneType")),
			PermitArea:  stringProp(feature.Properties, "permitArea"),
			Rings:       rings,
		}
		normalizeZone(zone, i)
		zones = append(zones, zone)
	}
	return zones, nil
}

// parseGeoJSONGeometry converts GeoJSON geometry into rings, taking the
// exterior boundary of each polygon
func parseGeoJSONGeometry(geometry geoJSONGeometry) []Ring {
	var rings []Ring

	switch geometry.Type {
	case "Polygon":
		var coords [][][]float64
		if err := json.Unmarshal(geometry.Coordinates, &coords); err != nil {
			log.Printf("Failed to parse Polygon coordinates: %v\n", err)
			return rings
		}
		if ring := geoJSONRing(coords); ring != nil {
			rings = append(rings, ring)
		}

	case "MultiPolygon":
		var coords [][][][]float64
		if err := json.Unmarshal(geometry.Coordinates, &coords); err != nil {
			log.Printf("Failed to parse MultiPolygon coordinates: %v\n", err)
			return rings
		}
		for _, polyCoords := range coords {
			if ring := geoJSONRing(polyCoords); ring != nil {
				rings = append(rings, ring)
			}
		}
	}

	return rings
}

// geoJSONRing builds a Ring from a polygon's exterior, GeoJSON [lon, lat] order
func geoJSONRing(coords [][][]float64) Ring {
	if len(coords) == 0 {
		return nil
	}
	ring := make(Ring, 0, len(coords[0]))
	for _, coord := range coords[0] {
		if len(coord) >= 2 {
			ring = append(ring, Point{Lat: coord[1], Lng: coord[0]})
		}
	}
	return cleanRing(ring)
}

// cleanRing drops duplicate closing points and rejects rings that cannot
// form a polygon
func cleanRing(points []Point) Ring {
	ring := Ring(points).dedupeConsecutive(coordEpsilon)
	if !ring.Valid() {
		return nil
	}
	return ring
}

// normalizeZone fills derived defaults: a synthetic ID when the data has
// none, the permit-area list, and the type-based restrictiveness score
func normalizeZone(zone *Zone, index int) {
	if zone.ID == "" {
		zone.ID = fmt.Sprintf("zone_%03d", index)
	}
	if len(zone.PermitAreas) == 0 && zone.PermitArea != "" {
		zone.PermitAreas = []string{zone.PermitArea}
	}
	if zone.Restrictiveness == 0 {
		zone.Restrictiveness = zone.Type.defaultRestrictiveness()
	}
}

// stringProp pulls a string property out of a GeoJSON property map
func stringProp(props map[string]any, key string) string {
	if v, ok := props[key].(string); ok {
		return v
	}
	return ""
}
