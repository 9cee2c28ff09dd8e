package main

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Point is a WGS84 coordinate in degrees. All planar math treats longitude
// as X and latitude as Y on a local planar approximation.
type Point struct {
	Lat float64 `json:"latitude"`
	Lng float64 `json:"longitude"`
}

// coordEpsilon is the tolerance used for coordinate equality checks.
// Never compare coordinates with ==; snapped and traced points carry
// float noise well above machine epsilon.
const coordEpsilon = 1e-9

// Distance calculates planar distance in degrees between two points
func (p Point) Distance(other Point) float64 {
	dx := p.Lng - other.Lng
	dy := p.Lat - other.Lat
	return math.Sqrt(dx*dx + dy*dy)
}

// DistanceMeters calculates the distance in meters between two points
// using the Haversine formula
func (p Point) DistanceMeters(other Point) float64 {
	const earthRadiusMeters = 6371000.0

	lat1 := p.Lat * math.Pi / 180.0
	lat2 := other.Lat * math.Pi / 180.0
	deltaLat := (other.Lat - p.Lat) * math.Pi / 180.0
	deltaLng := (other.Lng - p.Lng) * math.Pi / 180.0

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(deltaLng/2)*math.Sin(deltaLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// Equal checks if two points coincide within tolerance
func (p Point) Equal(other Point, tolerance float64) bool {
	return math.Abs(p.Lat-other.Lat) <= tolerance && math.Abs(p.Lng-other.Lng) <= tolerance
}

// Valid reports whether the point has finite coordinates
func (p Point) Valid() bool {
	return !math.IsNaN(p.Lat) && !math.IsNaN(p.Lng) &&
		!math.IsInf(p.Lat, 0) && !math.IsInf(p.Lng, 0)
}

// Ring is an ordered closed polygon boundary. The first point is not
// duplicated at the end; edges wrap from the last point back to the first.
type Ring []Point

// Valid reports whether the ring can act as a polygon boundary:
// at least 3 points, all of them finite.
func (r Ring) Valid() bool {
	if len(r) < 3 {
		return false
	}
	for _, p := range r {
		if !p.Valid() {
			return false
		}
	}
	return true
}

// orbRing converts to an orb.Ring (lng/lat order, explicitly closed)
func (r Ring) orbRing() orb.Ring {
	out := make(orb.Ring, 0, len(r)+1)
	for _, p := range r {
		out = append(out, orb.Point{p.Lng, p.Lat})
	}
	if len(r) > 0 {
		out = append(out, orb.Point{r[0].Lng, r[0].Lat})
	}
	return out
}

// Area returns the ring's absolute area in square degrees
func (r Ring) Area() float64 {
	if len(r) < 3 {
		return 0
	}
	return math.Abs(planar.Area(r.orbRing()))
}

// Centroid returns the area-weighted centroid of the ring
func (r Ring) Centroid() Point {
	if len(r) == 0 {
		return Point{}
	}
	if len(r) < 3 {
		return r[0]
	}
	c, area := planar.CentroidArea(r.orbRing())
	if area == 0 {
		// Degenerate (collinear) ring: fall back to the vertex mean
		var lat, lng float64
		for _, p := range r {
			lat += p.Lat
			lng += p.Lng
		}
		n := float64(len(r))
		return Point{Lat: lat / n, Lng: lng / n}
	}
	return Point{Lat: c.Lat(), Lng: c.Lon()}
}

// IsCounterClockwise reports the ring's winding via the shoelace sign
func (r Ring) IsCounterClockwise() bool {
	if len(r) < 3 {
		return true
	}
	return planar.Area(r.orbRing()) > 0
}

// Reversed returns a copy of the ring with opposite winding
func (r Ring) Reversed() Ring {
	out := make(Ring, len(r))
	for i, p := range r {
		out[len(r)-1-i] = p
	}
	return out
}

// dedupeConsecutive removes consecutive points closer than tolerance,
// including the wraparound pair between last and first point
func (r Ring) dedupeConsecutive(tolerance float64) Ring {
	if len(r) == 0 {
		return r
	}
	out := make(Ring, 0, len(r))
	out = append(out, r[0])
	for _, p := range r[1:] {
		if !p.Equal(out[len(out)-1], tolerance) {
			out = append(out, p)
		}
	}
	for len(out) > 1 && out[len(out)-1].Equal(out[0], tolerance) {
		out = out[:len(out)-1]
	}
	return out
}

// BBox represents an axis-aligned bounding box in degrees
type BBox struct {
	MinLat, MinLng, MaxLat, MaxLng float64
}

// ringBBox calculates the bounding box of a ring
func ringBBox(r Ring) BBox {
	if len(r) == 0 {
		return BBox{}
	}
	bbox := BBox{
		MinLat: r[0].Lat, MinLng: r[0].Lng,
		MaxLat: r[0].Lat, MaxLng: r[0].Lng,
	}
	for _, p := range r[1:] {
		bbox.MinLat = math.Min(bbox.MinLat, p.Lat)
		bbox.MinLng = math.Min(bbox.MinLng, p.Lng)
		bbox.MaxLat = math.Max(bbox.MaxLat, p.Lat)
		bbox.MaxLng = math.Max(bbox.MaxLng, p.Lng)
	}
	return bbox
}

// Width returns the longitudinal extent in degrees
func (b BBox) Width() float64 { return b.MaxLng - b.MinLng }

// Height returns the latitudinal extent in degrees
func (b BBox) Height() float64 { return b.MaxLat - b.MinLat }

// Intersects checks overlap between two boxes, expanded by tolerance
func (b BBox) Intersects(other BBox, tolerance float64) bool {
	return b.MinLng <= other.MaxLng+tolerance && b.MaxLng >= other.MinLng-tolerance &&
		b.MinLat <= other.MaxLat+tolerance && b.MaxLat >= other.MinLat-tolerance
}

// IntersectionArea returns the overlap area of two boxes in square degrees
func (b BBox) IntersectionArea(other BBox) float64 {
	w := math.Min(b.MaxLng, other.MaxLng) - math.Max(b.MinLng, other.MinLng)
	h := math.Min(b.MaxLat, other.MaxLat) - math.Max(b.MinLat, other.MinLat)
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Pad returns the box expanded by margin degrees on every side
func (b BBox) Pad(margin float64) BBox {
	return BBox{
		MinLat: b.MinLat - margin, MinLng: b.MinLng - margin,
		MaxLat: b.MaxLat + margin, MaxLng: b.MaxLng + margin,
	}
}

// Contains checks if a point lies inside the box
func (b BBox) Contains(p Point) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat &&
		p.Lng >= b.MinLng && p.Lng <= b.MaxLng
}

// cross calculates the cross product of vectors (b-a) and (c-a)
func cross(a, b, c Point) float64 {
	return (b.Lng-a.Lng)*(c.Lat-a.Lat) - (b.Lat-a.Lat)*(c.Lng-a.Lng)
}

// perpendicularDistance calculates perpendicular distance from a point to
// the line through lineStart and lineEnd. When the two line points coincide
// the point-to-point distance is returned instead.
func perpendicularDistance(point, lineStart, lineEnd Point) float64 {
	dx := lineEnd.Lng - lineStart.Lng
	dy := lineEnd.Lat - lineStart.Lat

	mag := math.Sqrt(dx*dx + dy*dy)
	if mag < coordEpsilon {
		return point.Distance(lineStart)
	}

	return math.Abs((point.Lng-lineStart.Lng)*dy-(point.Lat-lineStart.Lat)*dx) / mag
}

// nearestPointOnSegment returns the closest point to p on segment [a,b]
func nearestPointOnSegment(p, a, b Point) Point {
	dx := b.Lng - a.Lng
	dy := b.Lat - a.Lat
	lenSq := dx*dx + dy*dy
	if lenSq < coordEpsilon*coordEpsilon {
		return a
	}
	t := ((p.Lng-a.Lng)*dx + (p.Lat-a.Lat)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return Point{Lat: a.Lat + t*dy, Lng: a.Lng + t*dx}
}

// pointSegmentDistance returns the planar distance in degrees from p to segment [a,b]
func pointSegmentDistance(p, a, b Point) float64 {
	return p.Distance(nearestPointOnSegment(p, a, b))
}

// LineSegment represents a line segment between two points
type LineSegment struct {
	P1, P2 Point
}

// segmentsIntersect checks if two line segments properly intersect or touch
func segmentsIntersect(seg1, seg2 LineSegment) bool {
	p1, p2 := seg1.P1, seg1.P2
	p3, p4 := seg2.P1, seg2.P2

	d1 := cross(p3, p4, p1)
	d2 := cross(p3, p4, p2)
	d3 := cross(p1, p2, p3)
	d4 := cross(p1, p2, p4)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	if d1 == 0 && onSegment(p3, p4, p1) {
		return true
	}
	if d2 == 0 && onSegment(p3, p4, p2) {
		return true
	}
	if d3 == 0 && onSegment(p1, p2, p3) {
		return true
	}
	if d4 == 0 && onSegment(p1, p2, p4) {
		return true
	}

	return false
}

// onSegment checks if point q lies within the bounding box of segment pr
func onSegment(p, r, q Point) bool {
	return q.Lng <= math.Max(p.Lng, r.Lng) && q.Lng >= math.Min(p.Lng, r.Lng) &&
		q.Lat <= math.Max(p.Lat, r.Lat) && q.Lat >= math.Min(p.Lat, r.Lat)
}

// lineIntersection returns the intersection of the infinite lines through
// [p1,p2] and [p3,p4]. Parallel lines report ok=false.
func lineIntersection(p1, p2, p3, p4 Point) (Point, bool) {
	d1x := p2.Lng - p1.Lng
	d1y := p2.Lat - p1.Lat
	d2x := p4.Lng - p3.Lng
	d2y := p4.Lat - p3.Lat

	denom := d1x*d2y - d1y*d2x
	if math.Abs(denom) < coordEpsilon*coordEpsilon {
		return Point{}, false
	}

	t := ((p3.Lng-p1.Lng)*d2y - (p3.Lat-p1.Lat)*d2x) / denom
	return Point{Lat: p1.Lat + t*d1y, Lng: p1.Lng + t*d1x}, true
}

// segmentIntersection returns the intersection point of two segments if they
// cross within both segments' extents
func segmentIntersection(p1, p2, p3, p4 Point) (Point, bool) {
	d1x := p2.Lng - p1.Lng
	d1y := p2.Lat - p1.Lat
	d2x := p4.Lng - p3.Lng
	d2y := p4.Lat - p3.Lat

	denom := d1x*d2y - d1y*d2x
	if math.Abs(denom) < coordEpsilon*coordEpsilon {
		return Point{}, false
	}

	t := ((p3.Lng-p1.Lng)*d2y - (p3.Lat-p1.Lat)*d2x) / denom
	u := ((p3.Lng-p1.Lng)*d1y - (p3.Lat-p1.Lat)*d1x) / denom
	if t < -coordEpsilon || t > 1+coordEpsilon || u < -coordEpsilon || u > 1+coordEpsilon {
		return Point{}, false
	}
	return Point{Lat: p1.Lat + t*d1y, Lng: p1.Lng + t*d1x}, true
}

// pointInRing checks if a point is inside a ring using ray casting.
// The slope comparison is asymmetric for up and down edges so that a shared
// vertex between two adjacent edges is counted exactly once.
func pointInRing(point Point, ring Ring) bool {
	n := len(ring)
	if n < 3 {
		return false
	}

	count := 0
	for i := 0; i < n; i++ {
		v1 := ring[i]
		v2 := ring[(i+1)%n]

		if (v1.Lat > point.Lat) != (v2.Lat > point.Lat) {
			slope := (point.Lng-v1.Lng)*(v2.Lat-v1.Lat) - (v2.Lng-v1.Lng)*(point.Lat-v1.Lat)
			if v2.Lat > v1.Lat {
				if slope > 0 {
					count++
				}
			} else {
				if slope < 0 {
					count++
				}
			}
		}
	}

	return count%2 == 1
}

// ringBoundaryDistanceMeters returns the minimum distance in meters from a
// point to any edge of the ring
func ringBoundaryDistanceMeters(point Point, ring Ring) float64 {
	n := len(ring)
	if n == 0 {
		return math.Inf(1)
	}
	minDist := math.Inf(1)
	for i := 0; i < n; i++ {
		nearest := nearestPointOnSegment(point, ring[i], ring[(i+1)%n])
		if d := point.DistanceMeters(nearest); d < minDist {
			minDist = d
		}
	}
	return minDist
}
