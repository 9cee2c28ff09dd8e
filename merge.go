package main

import (
	"math"
)

// minConnectorHalfWidth keeps proximity bridges from collapsing into
// zero-width slivers (degrees, ~1.1m).
const minConnectorHalfWidth = 0.00001

// mergePolygons combines polygons within each zone group. Overlap-union
// runs first when enabled, then proximity bridging. Merging never crosses
// zone boundaries and single-polygon groups pass through unchanged.
func mergePolygons(polygons []RenderPolygon, cfg PipelineConfig) []RenderPolygon {
	if len(polygons) <= 1 || (!cfg.MergeOverlappingSameZone && !cfg.UseProximityMerging) {
		return polygons
	}

	groups, order := groupByZone(polygons)

	out := make([]RenderPolygon, 0, len(polygons))
	for _, key := range order {
		group := groups[key]
		if cfg.MergeOverlappingSameZone {
			group = overlapUnionGroup(group)
		}
		if cfg.UseProximityMerging {
			group = proximityMergeGroup(group, cfg.ProximityMergeDistanceMeter)
		}
		out = append(out, group...)
	}
	return out
}

// groupByZone buckets polygons by zone identity, preserving first-seen
// group order and in-group order for deterministic output
func groupByZone(polygons []RenderPolygon) (map[string][]RenderPolygon, []string) {
	groups := make(map[string][]RenderPolygon)
	var order []string
	for _, p := range polygons {
		key := p.ZoneCode
		if key == "" {
			key = p.ZoneID
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], p)
	}
	return groups, order
}

// overlapUnionGroup repeatedly unions overlapping pairs until no pair in
// the group overlaps. Unioning can create new overlaps with remaining
// members, hence the fixed-point loop.
func overlapUnionGroup(group []RenderPolygon) []RenderPolygon {
	if len(group) <= 1 {
		return group
	}

	work := make([]RenderPolygon, len(group))
	copy(work, group)

	for changed := true; changed; {
		changed = false
		for i := 0; i < len(work) && !changed; i++ {
			for j := i + 1; j < len(work); j++ {
				if !work[i].bbox().Intersects(work[j].bbox(), 0) {
					continue
				}
				if !ringsOverlap(work[i].Ring, work[j].Ring) {
					continue
				}
				work[i] = mergedRecord(work[i], work[j], unionRings(work[i].Ring, work[j].Ring))
				work = append(work[:j], work[j+1:]...)
				changed = true
				break
			}
		}
	}
	return work
}

// proximityMergeGroup bridges polygons whose centroids sit closer than
// maxDistanceMeters: a connector rectangle is synthesized between the two
// nearest edges and the three shapes are unioned. Strictly additive; the
// bridge adds area that was never part of either polygon.
func proximityMergeGroup(group []RenderPolygon, maxDistanceMeters float64) []RenderPolygon {
	if len(group) <= 1 {
		return group
	}

	work := make([]RenderPolygon, len(group))
	copy(work, group)

	for changed := true; changed; {
		changed = false
		for i := 0; i < len(work) && !changed; i++ {
			for j := i + 1; j < len(work); j++ {
				ci := work[i].Ring.Centroid()
				cj := work[j].Ring.Centroid()
				if ci.DistanceMeters(cj) >= maxDistanceMeters {
					continue
				}

				merged := bridgeRings(work[i].Ring, work[j].Ring)
				if len(merged) < 3 {
					continue
				}
				work[i] = mergedRecord(work[i], work[j], merged)
				work = append(work[:j], work[j+1:]...)
				changed = true
				break
			}
		}
	}
	return work
}

// mergedRecord folds polygon b into a, keeping a's identity and summing the
// original vertex counts
func mergedRecord(a, b RenderPolygon, ring Ring) RenderPolygon {
	out := a.withRing(ring)
	out.OriginalCount = a.OriginalCount + b.OriginalCount
	out.MultiPermit = a.MultiPermit || b.MultiPermit
	return out
}

// bridgeRings unions two rings through a connector rectangle spanning the
// gap between their nearest edges. Overlapping rings union directly.
func bridgeRings(a, b Ring) Ring {
	if ringsOverlap(a, b) {
		return unionRings(a, b)
	}

	connector := connectorRect(a, b)
	if len(connector) < 3 {
		return nil
	}
	return unionRings(unionRings(a, connector), b)
}

// connectorRect builds a thin rectangle joining the nearest boundary points
// of two disjoint rings. The rectangle extends past both endpoints so the
// union tracer always finds crossings into each ring.
func connectorRect(a, b Ring) Ring {
	p, q := nearestRingPoints(a, b)
	d := p.Distance(q)
	if d < coordEpsilon {
		return nil
	}

	dirX := (q.Lng - p.Lng) / d
	dirY := (q.Lat - p.Lat) / d
	halfWidth := math.Max(d*0.2, minConnectorHalfWidth)
	ext := halfWidth

	px := p.Lng - dirX*ext
	py := p.Lat - dirY*ext
	qx := q.Lng + dirX*ext
	qy := q.Lat + dirY*ext

	// Perpendicular offset
	ox := -dirY * halfWidth
	oy := dirX * halfWidth

	return Ring{
		{Lat: py + oy, Lng: px + ox},
		{Lat: qy + oy, Lng: qx + ox},
		{Lat: qy - oy, Lng: qx - ox},
		{Lat: py - oy, Lng: px - ox},
	}
}

// nearestRingPoints returns the closest pair of boundary points between two
// rings, checking every vertex of each against every edge of the other
func nearestRingPoints(a, b Ring) (Point, Point) {
	bestDist := math.Inf(1)
	var bestA, bestB Point

	na, nb := len(a), len(b)
	for _, p := range a {
		for j := 0; j < nb; j++ {
			q := nearestPointOnSegment(p, b[j], b[(j+1)%nb])
			if d := p.Distance(q); d < bestDist {
				bestDist = d
				bestA, bestB = p, q
			}
		}
	}
	for _, q := range b {
		for i := 0; i < na; i++ {
			p := nearestPointOnSegment(q, a[i], a[(i+1)%na])
			if d := q.Distance(p); d < bestDist {
				bestDist = d
				bestA, bestB = p, q
			}
		}
	}
	return bestA, bestB
}

// ringContains checks if every vertex of inner lies inside outer
func ringContains(outer, inner Ring) bool {
	if len(outer) < 3 || len(inner) == 0 {
		return false
	}
	if !ringBBox(outer).Intersects(ringBBox(inner), 0) {
		return false
	}
	for _, p := range inner {
		if !pointInRing(p, outer) {
			return false
		}
	}
	return true
}

// unionRings computes the boolean union of two overlapping rings by tracing
// the combined outer boundary: walk one ring, switch rings at every
// crossing. Degenerate configurations (tangencies, shared collinear edges)
// fall back to the convex hull of both rings.
func unionRings(a, b Ring) Ring {
	if len(a) < 3 {
		return b
	}
	if len(b) < 3 {
		return a
	}
	if ringContains(a, b) {
		return a
	}
	if ringContains(b, a) {
		return b
	}

	au := a
	if !au.IsCounterClockwise() {
		au = au.Reversed()
	}
	bu := b
	if !bu.IsCounterClockwise() {
		bu = bu.Reversed()
	}

	if traced, ok := traceUnion(au, bu); ok {
		return traced
	}

	return hullUnion(a, b)
}

// hullUnion is the documented lossy fallback: the convex hull of both
// rings' vertices
func hullUnion(a, b Ring) Ring {
	all := make(Ring, 0, len(a)+len(b))
	all = append(all, a...)
	all = append(all, b...)
	return convexHull(all)
}

// tracePoint is a vertex or crossing on an augmented ring walk
type tracePoint struct {
	pt      Point
	crossID int // -1 for original vertices
}

// traceUnion walks the union boundary of two counter-clockwise rings.
// Reports ok=false when the configuration cannot be traced cleanly.
func traceUnion(a, b Ring) (Ring, bool) {
	crossings := findCrossings(a, b)
	if len(crossings) == 0 {
		return nil, false
	}

	av := augmentRing(a, crossings, true)
	bv := augmentRing(b, crossings, false)

	// Index of each crossing in both augmented walks
	posA := crossingPositions(av)
	posB := crossingPositions(bv)

	// Start from a vertex of A on the union's outer boundary
	start := -1
	for i, tp := range av {
		if tp.crossID == -1 && !pointInRing(tp.pt, b) && ringBoundaryDistance(tp.pt, b) > coordEpsilon {
			start = i
			break
		}
	}
	if start == -1 {
		return nil, false
	}

	maxSteps := 4 * (len(av) + len(bv))
	out := make(Ring, 0, len(av)+len(bv))
	cur, other := av, bv
	pos, otherPos := posA, posB
	idx := start
	startPt := av[start].pt

	for step := 0; step < maxSteps; step++ {
		tp := cur[idx]
		if step > 0 && tp.pt.Equal(startPt, coordEpsilon) {
			if len(out) >= 3 {
				return out.dedupeConsecutive(coordEpsilon), true
			}
			return nil, false
		}
		if len(out) == 0 || !tp.pt.Equal(out[len(out)-1], coordEpsilon) {
			out = append(out, tp.pt)
		}

		if tp.crossID >= 0 {
			// Switch to the other ring at every crossing
			match, ok := otherPos[tp.crossID]
			if !ok {
				return nil, false
			}
			cur, other = other, cur
			pos, otherPos = otherPos, pos
			idx = match
		}
		idx = (idx + 1) % len(cur)
	}

	return nil, false
}

// crossing is an intersection between an edge of ring A and an edge of ring B
type crossing struct {
	pt           Point
	edgeA, edgeB int
	tA, tB       float64 // position along each edge for ordering
}

// findCrossings collects proper intersections between the two rings' edges
func findCrossings(a, b Ring) []crossing {
	var crossings []crossing
	na, nb := len(a), len(b)
	for i := 0; i < na; i++ {
		a1, a2 := a[i], a[(i+1)%na]
		for j := 0; j < nb; j++ {
			b1, b2 := b[j], b[(j+1)%nb]
			pt, ok := segmentIntersection(a1, a2, b1, b2)
			if !ok {
				continue
			}
			// Crossings coinciding with a vertex make the walk ambiguous;
			// bail out to the fallback
			if pt.Equal(a1, coordEpsilon) || pt.Equal(a2, coordEpsilon) ||
				pt.Equal(b1, coordEpsilon) || pt.Equal(b2, coordEpsilon) {
				return nil
			}
			crossings = append(crossings, crossing{
				pt:    pt,
				edgeA: i, edgeB: j,
				tA: edgeFraction(a1, a2, pt),
				tB: edgeFraction(b1, b2, pt),
			})
		}
	}
	// A clean crossing count is even; odd means a tangency slipped through
	if len(crossings)%2 != 0 {
		return nil
	}
	return crossings
}

// edgeFraction returns how far along [a,b] the point p sits, 0..1
func edgeFraction(a, b, p Point) float64 {
	d := a.Distance(b)
	if d < coordEpsilon {
		return 0
	}
	return a.Distance(p) / d
}

// augmentRing rebuilds ring as a walk with crossings spliced into their
// edges in order. The crossing index in the shared crossings slice acts as
// the jump label between the two walks.
func augmentRing(ring Ring, crossings []crossing, onA bool) []tracePoint {
	out := make([]tracePoint, 0, len(ring)+len(crossings))
	for i := 0; i < len(ring); i++ {
		out = append(out, tracePoint{pt: ring[i], crossID: -1})

		// Crossings on this edge, nearest first
		var onEdge []int
		for ci, c := range crossings {
			if (onA && c.edgeA == i) || (!onA && c.edgeB == i) {
				onEdge = append(onEdge, ci)
			}
		}
		for k := 0; k < len(onEdge); k++ {
			for l := k + 1; l < len(onEdge); l++ {
				fk := crossingFraction(crossings[onEdge[k]], onA)
				fl := crossingFraction(crossings[onEdge[l]], onA)
				if fl < fk {
					onEdge[k], onEdge[l] = onEdge[l], onEdge[k]
				}
			}
		}
		for _, ci := range onEdge {
			out = append(out, tracePoint{pt: crossings[ci].pt, crossID: ci})
		}
	}
	return out
}

func crossingFraction(c crossing, onA bool) float64 {
	if onA {
		return c.tA
	}
	return c.tB
}

// crossingPositions maps crossing IDs to their index in an augmented walk
func crossingPositions(walk []tracePoint) map[int]int {
	pos := make(map[int]int, len(walk))
	for i, tp := range walk {
		if tp.crossID >= 0 {
			pos[tp.crossID] = i
		}
	}
	return pos
}

// ringBoundaryDistance returns the planar distance in degrees from a point
// to the nearest edge of a ring
func ringBoundaryDistance(p Point, ring Ring) float64 {
	n := len(ring)
	if n == 0 {
		return math.Inf(1)
	}
	minDist := math.Inf(1)
	for i := 0; i < n; i++ {
		if d := pointSegmentDistance(p, ring[i], ring[(i+1)%n]); d < minDist {
			minDist = d
		}
	}
	return minDist
}
