package main

import (
	"math"
	"sort"
)

// arcPointCount is the number of points a rounded corner gains: each convex
// vertex is replaced by arcPointCount+1 arc points spanning the two tangents.
const arcPointCount = 5

// simplifyRing runs the fixed stage order over one ring:
// Douglas-Peucker (with optional curve preservation) -> grid snap ->
// convex hull -> corner rounding. Disabled stages are no-ops. The input
// ring is never mutated; the result may have fewer than 3 points, in
// which case the caller drops the polygon.
func simplifyRing(ring Ring, cfg PipelineConfig) Ring {
	if !ring.Valid() {
		return ring
	}

	out := ring

	if cfg.UseDouglasPeucker {
		var forced []int
		if cfg.PreserveCurves {
			forced = curvePointIndexes(out, cfg.CurveAngleThreshold)
		}
		out = douglasPeuckerRing(out, cfg.Tolerance, forced)
		if len(out) < 3 {
			return out
		}
	}

	if cfg.UseGridSnapping {
		out = gridSnapRing(out, cfg.GridSize)
		if len(out) < 3 {
			return out
		}
	}

	if cfg.UseConvexHull {
		out = convexHull(out)
		if len(out) < 3 {
			return out
		}
	}

	if cfg.UseCornerRounding {
		out = roundCorners(out, cfg.CornerRadius)
	}

	return out
}

// curvePointIndexes marks vertices whose interior angle deviates from
// straight by more than thresholdDegrees. These points carry the shape of
// winding streets and must survive simplification.
func curvePointIndexes(ring Ring, thresholdDegrees float64) []int {
	n := len(ring)
	if n < 3 {
		return nil
	}

	var indexes []int
	for i := 0; i < n; i++ {
		prev := ring[(i-1+n)%n]
		v := ring[i]
		next := ring[(i+1)%n]

		ax := v.Lng - prev.Lng
		ay := v.Lat - prev.Lat
		bx := next.Lng - v.Lng
		by := next.Lat - v.Lat

		// Zero-length edges carry no direction; skip the vertex
		if math.Hypot(ax, ay) < coordEpsilon || math.Hypot(bx, by) < coordEpsilon {
			continue
		}

		turn := math.Atan2(ax*by-ay*bx, ax*bx+ay*by) * 180.0 / math.Pi
		if math.Abs(turn) > thresholdDegrees {
			indexes = append(indexes, i)
		}
	}
	return indexes
}

// douglasPeuckerRing simplifies a ring. Forced indexes (curve points)
// partition the ring into chains that are simplified independently, so a
// forced point can never be discarded. With fewer than two forced points
// the ring is closed, simplified as a polyline, and reopened.
// Zero tolerance permits no error at all, so every point is kept,
// exactly-collinear ones included.
func douglasPeuckerRing(ring Ring, epsilon float64, forced []int) Ring {
	n := len(ring)
	if n <= 3 || epsilon <= 0 {
		return ring
	}

	if len(forced) >= 2 {
		sort.Ints(forced)
		out := make(Ring, 0, n)
		for i := 0; i < len(forced); i++ {
			start := forced[i]
			end := forced[(i+1)%len(forced)]
			chain := ringChain(ring, start, end)
			simplified := douglasPeucker(chain, epsilon)
			// Drop the chain's last point; it opens the next chain
			out = append(out, simplified[:len(simplified)-1]...)
		}
		if len(out) < 3 {
			return ring
		}
		return out
	}

	// Close the ring so the polyline pass sees the wraparound edge. The
	// first chord is degenerate (start == end) which the distance formula
	// handles as a point-to-point distance.
	closed := make(Ring, 0, n+1)
	closed = append(closed, ring...)
	closed = append(closed, ring[0])

	simplified := douglasPeucker(closed, epsilon)
	if len(simplified) > 1 {
		simplified = simplified[:len(simplified)-1]
	}
	if len(simplified) < 3 {
		return ring
	}
	return simplified
}

// ringChain extracts ring[start..end] inclusive, wrapping past the end
func ringChain(ring Ring, start, end int) Ring {
	n := len(ring)
	length := (end-start+n)%n + 1
	if length == 1 {
		length = n + 1 // single forced point: full loop back to itself
	}
	chain := make(Ring, 0, length)
	for k := 0; k < length; k++ {
		chain = append(chain, ring[(start+k)%n])
	}
	return chain
}

// douglasPeucker implements the Douglas-Peucker polyline simplification
// algorithm. Endpoints are always kept.
func douglasPeucker(points Ring, epsilon float64) Ring {
	if len(points) <= 2 {
		return points
	}

	dmax := 0.0
	index := 0
	end := len(points) - 1

	for i := 1; i < end; i++ {
		d := perpendicularDistance(points[i], points[0], points[end])
		if d > dmax {
			index = i
			dmax = d
		}
	}

	if dmax > epsilon {
		left := douglasPeucker(points[0:index+1], epsilon)
		right := douglasPeucker(points[index:], epsilon)

		result := make(Ring, 0, len(left)+len(right)-1)
		result = append(result, left[:len(left)-1]...)
		result = append(result, right...)
		return result
	}

	return Ring{points[0], points[end]}
}

// gridSnapRing rounds every coordinate to the nearest grid multiple and
// removes the consecutive duplicates snapping creates, including the
// wraparound pair.
func gridSnapRing(ring Ring, gridSize float64) Ring {
	if gridSize <= 0 {
		return ring
	}
	snapped := make(Ring, len(ring))
	for i, p := range ring {
		snapped[i] = Point{
			Lat: math.Round(p.Lat/gridSize) * gridSize,
			Lng: math.Round(p.Lng/gridSize) * gridSize,
		}
	}
	return snapped.dedupeConsecutive(coordEpsilon)
}

// convexHull computes the convex hull using a Graham scan: lowest latitude
// (ties to the westmost point) anchors a polar-angle sweep that keeps only
// strict left turns. The stage is all-or-nothing and destroys concavities.
func convexHull(ring Ring) Ring {
	if len(ring) < 3 {
		return ring
	}

	points := make(Ring, len(ring))
	copy(points, ring)

	start := 0
	for i := 1; i < len(points); i++ {
		if points[i].Lat < points[start].Lat ||
			(points[i].Lat == points[start].Lat && points[i].Lng < points[start].Lng) {
			start = i
		}
	}
	points[0], points[start] = points[start], points[0]
	pivot := points[0]

	rest := points[1:]
	sort.Slice(rest, func(i, j int) bool {
		ai := math.Atan2(rest[i].Lat-pivot.Lat, rest[i].Lng-pivot.Lng)
		aj := math.Atan2(rest[j].Lat-pivot.Lat, rest[j].Lng-pivot.Lng)
		if ai != aj {
			return ai < aj
		}
		// Collinear with the pivot: nearer point first so the sweep
		// discards it
		return pivot.Distance(rest[i]) < pivot.Distance(rest[j])
	})

	hull := Ring{pivot, rest[0]}
	for i := 1; i < len(rest); i++ {
		for len(hull) > 1 && cross(hull[len(hull)-2], hull[len(hull)-1], rest[i]) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, rest[i])
	}

	return hull
}

// roundCorners replaces each convex vertex with a circular arc tangent to
// both adjacent edges. The tangent offset is clamped to half the shorter
// adjacent edge so arcs cannot overrun their edges and self-intersect.
func roundCorners(ring Ring, radius float64) Ring {
	n := len(ring)
	if n < 3 || radius <= 0 {
		return ring
	}

	ccw := ring.IsCounterClockwise()
	out := make(Ring, 0, n*(arcPointCount+1))

	for i := 0; i < n; i++ {
		prev := ring[(i-1+n)%n]
		v := ring[i]
		next := ring[(i+1)%n]

		arc, ok := cornerArc(prev, v, next, radius, ccw)
		if !ok {
			out = append(out, v)
			continue
		}
		out = append(out, arc...)
	}

	return out.dedupeConsecutive(coordEpsilon)
}

// cornerArc builds the arc replacing vertex v. Reflex and straight vertices
// report ok=false and stay untouched.
func cornerArc(prev, v, next Point, radius float64, ccw bool) (Ring, bool) {
	ax := prev.Lng - v.Lng
	ay := prev.Lat - v.Lat
	bx := next.Lng - v.Lng
	by := next.Lat - v.Lat

	la := math.Hypot(ax, ay)
	lb := math.Hypot(bx, by)
	if la < coordEpsilon || lb < coordEpsilon {
		return nil, false
	}

	turn := cross(prev, v, next)
	convex := (turn > 0) == ccw
	if !convex || math.Abs(turn) < coordEpsilon*coordEpsilon {
		return nil, false
	}

	ax, ay = ax/la, ay/la
	bx, by = bx/lb, by/lb

	// Clamp the tangent offset so it never exceeds half of the shorter
	// adjacent edge
	r := math.Min(radius, math.Min(la, lb)/2)
	if r < coordEpsilon {
		return nil, false
	}

	t1 := Point{Lat: v.Lat + ay*r, Lng: v.Lng + ax*r}
	t2 := Point{Lat: v.Lat + by*r, Lng: v.Lng + bx*r}

	// Circle tangent to both edges at t1/t2: center sits on the angle
	// bisector at distance r/cos(theta/2)
	bisX := ax + bx
	bisY := ay + by
	bisLen := math.Hypot(bisX, bisY)
	if bisLen < coordEpsilon {
		return nil, false
	}
	bisX, bisY = bisX/bisLen, bisY/bisLen

	cosTheta := ax*bx + ay*by
	cosHalf := math.Sqrt(math.Max(0, (1+cosTheta)/2))
	if cosHalf < coordEpsilon {
		return nil, false
	}

	center := Point{
		Lat: v.Lat + bisY*(r/cosHalf),
		Lng: v.Lng + bisX*(r/cosHalf),
	}

	a1 := math.Atan2(t1.Lat-center.Lat, t1.Lng-center.Lng)
	a2 := math.Atan2(t2.Lat-center.Lat, t2.Lng-center.Lng)
	rho := center.Distance(t1)

	// Sweep the short way around the circle
	delta := a2 - a1
	for delta > math.Pi {
		delta -= 2 * math.Pi
	}
	for delta < -math.Pi {
		delta += 2 * math.Pi
	}

	arc := make(Ring, 0, arcPointCount+1)
	for k := 0; k <= arcPointCount; k++ {
		ang := a1 + delta*float64(k)/float64(arcPointCount)
		arc = append(arc, Point{
			Lat: center.Lat + rho*math.Sin(ang),
			Lng: center.Lng + rho*math.Cos(ang),
		})
	}
	return arc, true
}
