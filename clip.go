package main

// clipPriority ranks polygons for overlap resolution. Metered zones always
// beat residential-permit zones; among equals, vertically-oriented shapes
// beat horizontal ones, a tie-break heuristic for street-aligned rectangles.
func clipPriority(p RenderPolygon) int {
	priority := 0
	if p.ZoneType == ZoneMetered {
		priority += 1000
	}
	bbox := p.bbox()
	if bbox.Height() > bbox.Width() {
		priority += 100
	}
	return priority
}

// clipOverlaps removes cross-zone overlap: for every pair of polygons from
// different zones whose rings overlap, the lower-priority polygon is clipped
// against the higher-priority one. Pairs are visited in ascending index
// order so repeated runs produce identical output. Polygons reduced below
// 3 points vanish from the result.
func clipOverlaps(polygons []RenderPolygon, tolerance float64) []RenderPolygon {
	if len(polygons) <= 1 {
		return polygons
	}

	work := make([]RenderPolygon, len(polygons))
	copy(work, polygons)
	removed := make([]bool, len(work))

	for i := 0; i < len(work); i++ {
		if removed[i] {
			continue
		}
		for j := i + 1; j < len(work); j++ {
			if removed[j] {
				continue
			}
			if work[i].ZoneID == work[j].ZoneID || sameZone(work[i], work[j]) {
				continue
			}
			if !work[i].bbox().Intersects(work[j].bbox(), tolerance) {
				continue
			}
			if !ringsOverlap(work[i].Ring, work[j].Ring) {
				continue
			}

			// Higher priority wins the overlap; index order breaks ties
			hi, lo := i, j
			if clipPriority(work[j]) > clipPriority(work[i]) {
				hi, lo = j, i
			}

			clipped := subtractRing(work[lo].Ring, work[hi].Ring)
			if len(clipped) < 3 {
				removed[lo] = true
				if lo == i {
					break
				}
				continue
			}
			work[lo] = work[lo].withRing(clipped)
		}
	}

	out := make([]RenderPolygon, 0, len(work))
	for i, p := range work {
		if !removed[i] {
			out = append(out, p)
		}
	}
	return out
}

// ringsOverlap checks real polygon overlap: a vertex of one inside the
// other, or any pair of crossing edges. Used after the bounding-box
// pre-check so polygons that are merely near each other are left alone.
func ringsOverlap(a, b Ring) bool {
	for _, p := range a {
		if pointInRing(p, b) {
			return true
		}
	}
	for _, p := range b {
		if pointInRing(p, a) {
			return true
		}
	}
	na, nb := len(a), len(b)
	for i := 0; i < na; i++ {
		ea := LineSegment{a[i], a[(i+1)%na]}
		for j := 0; j < nb; j++ {
			if segmentsIntersect(ea, LineSegment{b[j], b[(j+1)%nb]}) {
				return true
			}
		}
	}
	return false
}

// subtractRing clips subject against every edge of clipper using
// Sutherland-Hodgman half-plane clipping, decomposing subject-minus-clipper
// into per-edge fragments. Only the first non-empty fragment is kept; a
// concave result split into several pieces loses all but the first. Clip
// edges are visited in ring order, so the kept fragment is deterministic.
func subtractRing(subject, clipper Ring) Ring {
	if len(subject) < 3 || len(clipper) < 3 {
		return subject
	}

	clip := clipper
	if !clip.IsCounterClockwise() {
		clip = clip.Reversed()
	}

	current := subject
	n := len(clip)
	for i := 0; i < n; i++ {
		a := clip[i]
		b := clip[(i+1)%n]

		outside := clipHalfPlane(current, a, b, false)
		if len(outside) >= 3 && outside.Area() > coordEpsilon*coordEpsilon {
			return outside
		}

		current = clipHalfPlane(current, a, b, true)
		if len(current) < 3 {
			break
		}
	}

	// Subject is entirely inside the clipper
	return nil
}

// clipHalfPlane clips a ring against the half-plane of edge [a,b].
// keepInside keeps the left side (inside a counter-clockwise clip ring),
// otherwise the right side is kept.
func clipHalfPlane(ring Ring, a, b Point, keepInside bool) Ring {
	if len(ring) == 0 {
		return nil
	}

	inside := func(p Point) bool {
		c := cross(a, b, p)
		if keepInside {
			return c >= 0
		}
		return c <= 0
	}

	out := make(Ring, 0, len(ring)+4)
	n := len(ring)
	for i := 0; i < n; i++ {
		cur := ring[i]
		next := ring[(i+1)%n]
		curIn := inside(cur)
		nextIn := inside(next)

		switch {
		case curIn && nextIn:
			out = append(out, next)
		case curIn && !nextIn:
			if ix, ok := lineIntersection(cur, next, a, b); ok {
				out = append(out, ix)
			}
		case !curIn && nextIn:
			if ix, ok := lineIntersection(cur, next, a, b); ok {
				out = append(out, ix)
			}
			out = append(out, next)
		}
	}

	return out.dedupeConsecutive(coordEpsilon)
}
