package main

// ZoneType classifies the regulation that applies inside a zone.
type ZoneType int

const (
	// ZoneOther is the default for unrecognized regulation types. Unknown
	// types are rendered and matched but never treated as metered.
	ZoneOther ZoneType = iota
	ZoneResidentialPermit
	ZoneMetered
)

// ParseZoneType maps data-source type strings onto the enum. Anything
// unrecognized falls back to ZoneOther.
func ParseZoneType(s string) ZoneType {
	switch s {
	case "metered", "meter":
		return ZoneMetered
	case "rpp", "residentialPermit", "residential_permit":
		return ZoneResidentialPermit
	default:
		return ZoneOther
	}
}

func (t ZoneType) String() string {
	switch t {
	case ZoneMetered:
		return "metered"
	case ZoneResidentialPermit:
		return "residentialPermit"
	default:
		return "other"
	}
}

// defaultRestrictiveness assigns a score when the data source carries none.
// Metered zones outrank residential permit zones in lookup ordering.
func (t ZoneType) defaultRestrictiveness() int {
	switch t {
	case ZoneMetered:
		return 10
	case ZoneResidentialPermit:
		return 8
	default:
		return 5
	}
}

// Zone is a named regulatory area. A zone may cover several disjoint or
// touching rings (city blocks) and may honor more than one permit area.
type Zone struct {
	ID              string
	DisplayName     string
	Type            ZoneType
	PermitArea      string
	PermitAreas     []string
	Restrictiveness int
	Rings           []Ring
}

// MultiPermit reports whether the zone honors more than one permit area
func (z *Zone) MultiPermit() bool {
	return len(z.PermitAreas) > 1
}

// HoldsPermitFor checks if any of the caller's permits is valid in this zone
func (z *Zone) HoldsPermitFor(held []string) bool {
	for _, h := range held {
		if h == z.PermitArea {
			return true
		}
		for _, a := range z.PermitAreas {
			if h == a {
				return true
			}
		}
	}
	return false
}

// RenderPolygon is the unit the display pipeline operates on: one ring of a
// zone plus the metadata the renderer needs. Pipeline stages never mutate a
// RenderPolygon in place; each stage produces new records.
type RenderPolygon struct {
	ZoneID        string
	ZoneCode      string
	ZoneType      ZoneType
	PermitAreas   []string
	MultiPermit   bool
	OriginalCount int
	Ring          Ring
}

// holdsPermit reports whether any held permit is valid in this polygon's
// zone. Multi-permit zones match on secondary areas, not just the code.
func (p RenderPolygon) holdsPermit(held map[string]bool) bool {
	if p.ZoneCode != "" && held[p.ZoneCode] {
		return true
	}
	for _, a := range p.PermitAreas {
		if held[a] {
			return true
		}
	}
	return false
}

// bbox returns the polygon ring's bounding box
func (p RenderPolygon) bbox() BBox {
	return ringBBox(p.Ring)
}

// withRing returns a copy of the polygon carrying a replacement ring
func (p RenderPolygon) withRing(ring Ring) RenderPolygon {
	out := p
	out.Ring = ring
	return out
}

// explodeZones flattens zones into per-ring render records, dropping rings
// that cannot form a polygon. Zone order and ring order are preserved so the
// pipeline's pairwise passes are deterministic.
func explodeZones(zones []*Zone) []RenderPolygon {
	polygons := make([]RenderPolygon, 0, len(zones))
	for _, zone := range zones {
		for _, ring := range zone.Rings {
			clean := ring.dedupeConsecutive(coordEpsilon)
			if !clean.Valid() {
				continue
			}
			polygons = append(polygons, RenderPolygon{
				ZoneID:        zone.ID,
				ZoneCode:      zone.PermitArea,
				ZoneType:      zone.Type,
				PermitAreas:   zone.PermitAreas,
				MultiPermit:   zone.MultiPermit(),
				OriginalCount: len(ring),
				Ring:          clean,
			})
		}
	}
	return polygons
}

// sameZone groups polygons for merge and dedup: zone code when present,
// zone ID otherwise
func sameZone(a, b RenderPolygon) bool {
	if a.ZoneCode != "" || b.ZoneCode != "" {
		return a.ZoneCode == b.ZoneCode
	}
	return a.ZoneID == b.ZoneID
}
