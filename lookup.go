package main

import (
	"math"
	"sort"
	"sync"
)

// Confidence grades how certain a zone lookup is
type Confidence int

const (
	ConfidenceLow Confidence = iota
	ConfidenceMedium
	ConfidenceHigh
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceHigh:
		return "high"
	case ConfidenceMedium:
		return "medium"
	default:
		return "low"
	}
}

const (
	// fallbackDistanceMeters is how far outside every zone a point may sit
	// and still be attributed to the nearest one. Adjacent metered-zone
	// polygons legitimately leave small gaps along street centerlines.
	fallbackDistanceMeters = 75.0

	// boundaryBufferMeters separates a high-confidence interior match from
	// a medium-confidence match near a zone edge
	boundaryBufferMeters = 10.0

	// metersPerDegree approximates one degree of latitude; used only to
	// size index query windows, never for distance math
	metersPerDegree = 111000.0
)

// LookupResult is the outcome of a point-in-zone query. A nil PrimaryZone
// means "unknown area", which is a valid outcome and not an error.
type LookupResult struct {
	PrimaryZone      *Zone
	OverlappingZones []*Zone // most restrictive first, primary included
	Confidence       Confidence
	// NearestBoundaryDistanceMeters is the distance to the closest zone
	// boundary among nearby zones; -1 when nothing is nearby
	NearestBoundaryDistanceMeters float64
}

// Known reports whether the point resolved to any zone
func (r LookupResult) Known() bool {
	return r.PrimaryZone != nil
}

// ZoneLookupEngine resolves points to zones over the authoritative,
// unsimplified zone rings. It never reads pipeline output, so lookup
// accuracy cannot depend on display settings. Safe for concurrent use;
// Reload swaps the zone set atomically.
type ZoneLookupEngine struct {
	mu    sync.RWMutex
	zones []*Zone
	index *zoneIndex
}

// NewZoneLookupEngine indexes the given zones for point queries
func NewZoneLookupEngine(zones []*Zone) *ZoneLookupEngine {
	e := &ZoneLookupEngine{}
	e.Reload(zones)
	return e
}

// Reload replaces the authoritative zone set. In-flight FindZone calls
// finish against the old set.
func (e *ZoneLookupEngine) Reload(zones []*Zone) {
	index := newZoneIndex(zones)
	e.mu.Lock()
	e.zones = zones
	e.index = index
	e.mu.Unlock()
}

// ZoneCount returns the number of loaded zones
func (e *ZoneLookupEngine) ZoneCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.zones)
}

// FindZone resolves which zone contains the point. Overlapping matches are
// ordered most restrictive first. When no zone contains the point but one
// lies within the fallback distance, that zone is returned with low
// confidence.
func (e *ZoneLookupEngine) FindZone(point Point) LookupResult {
	e.mu.RLock()
	index := e.index
	e.mu.RUnlock()

	if index == nil || !point.Valid() {
		return LookupResult{Confidence: ConfidenceLow, NearestBoundaryDistanceMeters: -1}
	}

	// Window sized to the fallback radius so nearest-zone attribution sees
	// every candidate
	window := BBox{
		MinLat: point.Lat, MinLng: point.Lng,
		MaxLat: point.Lat, MaxLng: point.Lng,
	}.Pad(fallbackDistanceMeters / metersPerDegree * 2)

	entries := index.search(window)
	if len(entries) == 0 {
		return LookupResult{Confidence: ConfidenceLow, NearestBoundaryDistanceMeters: -1}
	}

	// Per-zone containment and boundary distance across all of the zone's
	// nearby rings
	type zoneHit struct {
		zone     *Zone
		contains bool
		distance float64
	}
	hits := make(map[string]*zoneHit)
	var order []string

	for _, entry := range entries {
		hit, seen := hits[entry.zone.ID]
		if !seen {
			hit = &zoneHit{zone: entry.zone, distance: math.Inf(1)}
			hits[entry.zone.ID] = hit
			order = append(order, entry.zone.ID)
		}
		if pointInRing(point, entry.ring) {
			hit.contains = true
		}
		if d := ringBoundaryDistanceMeters(point, entry.ring); d < hit.distance {
			hit.distance = d
		}
	}

	var matches []*Zone
	nearestDistance := math.Inf(1)
	var nearestZone *Zone
	for _, id := range order {
		hit := hits[id]
		if hit.contains {
			matches = append(matches, hit.zone)
		}
		if hit.distance < nearestDistance {
			nearestDistance = hit.distance
			nearestZone = hit.zone
		}
	}

	if len(matches) > 0 {
		sortByRestrictiveness(matches)
		confidence := ConfidenceHigh
		if len(matches) > 1 || nearestDistance < boundaryBufferMeters {
			confidence = ConfidenceMedium
		}
		return LookupResult{
			PrimaryZone:                   matches[0],
			OverlappingZones:              matches,
			Confidence:                    confidence,
			NearestBoundaryDistanceMeters: nearestDistance,
		}
	}

	if nearestZone != nil && nearestDistance <= fallbackDistanceMeters {
		return LookupResult{
			PrimaryZone:                   nearestZone,
			OverlappingZones:              []*Zone{nearestZone},
			Confidence:                    ConfidenceLow,
			NearestBoundaryDistanceMeters: nearestDistance,
		}
	}

	distance := -1.0
	if !math.IsInf(nearestDistance, 1) {
		distance = nearestDistance
	}
	return LookupResult{Confidence: ConfidenceLow, NearestBoundaryDistanceMeters: distance}
}

// sortByRestrictiveness orders zones most restrictive first. Ties go to the
// smaller zone (the more specific regulation), then to the lower ID so the
// order is total.
func sortByRestrictiveness(zones []*Zone) {
	sort.SliceStable(zones, func(i, j int) bool {
		if zones[i].Restrictiveness != zones[j].Restrictiveness {
			return zones[i].Restrictiveness > zones[j].Restrictiveness
		}
		ai, aj := zoneArea(zones[i]), zoneArea(zones[j])
		if ai != aj {
			return ai < aj
		}
		return zones[i].ID < zones[j].ID
	})
}

// zoneArea sums the zone's ring areas in square degrees
func zoneArea(z *Zone) float64 {
	total := 0.0
	for _, ring := range z.Rings {
		total += ring.Area()
	}
	return total
}
