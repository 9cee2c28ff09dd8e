package main

// deduplicate removes near-duplicate polygons within a zone. Duplicates are
// detected by bounding-box overlap ratio — overlap area over the smaller
// box's area — a deliberate O(1) proxy for true polygon intersection.
// The polygon with fewer vertices survives; a vertex-count tie keeps the
// smaller-area polygon. Discarded indices are skipped in later comparisons
// so a polygon is never counted against twice.
func deduplicate(polygons []RenderPolygon, threshold float64) []RenderPolygon {
	if len(polygons) <= 1 {
		return polygons
	}

	discarded := make([]bool, len(polygons))

	for i := 0; i < len(polygons); i++ {
		if discarded[i] {
			continue
		}
		for j := i + 1; j < len(polygons); j++ {
			if discarded[j] {
				continue
			}
			if !sameZone(polygons[i], polygons[j]) {
				continue
			}

			bi := polygons[i].bbox()
			bj := polygons[j].bbox()
			overlap := bi.IntersectionArea(bj)
			if overlap <= 0 {
				continue
			}

			areaI := bi.Width() * bi.Height()
			areaJ := bj.Width() * bj.Height()
			smaller := areaI
			if areaJ < smaller {
				smaller = areaJ
			}
			if smaller <= 0 {
				continue
			}

			if overlap/smaller < threshold {
				continue
			}

			// The pair is a duplicate; decide which polygon survives
			loser := j
			ni, nj := len(polygons[i].Ring), len(polygons[j].Ring)
			switch {
			case ni > nj:
				loser = i
			case ni < nj:
				loser = j
			default:
				if polygons[i].Ring.Area() > polygons[j].Ring.Area() {
					loser = i
				}
			}

			discarded[loser] = true
			if loser == i {
				break
			}
		}
	}

	out := make([]RenderPolygon, 0, len(polygons))
	for i, p := range polygons {
		if !discarded[i] {
			out = append(out, p)
		}
	}
	return out
}
