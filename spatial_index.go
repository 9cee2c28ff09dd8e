package main

import (
	"github.com/dhconnelly/rtreego"
)

// zoneRingEntry wraps one authoritative zone ring for R-tree storage
type zoneRingEntry struct {
	zone *Zone
	ring Ring
	rect rtreego.Rect
}

// Bounds implements rtreego.Spatial
func (e *zoneRingEntry) Bounds() rtreego.Rect {
	return e.rect
}

// zoneIndex answers "which zone rings are near this point" over the
// authoritative (unsimplified) zone set
type zoneIndex struct {
	tree *rtreego.Rtree
}

// newZoneIndex builds an R-tree over every ring of every zone
func newZoneIndex(zones []*Zone) *zoneIndex {
	tree := rtreego.NewTree(2, 25, 50) // 2D, min 25, max 50 entries per node

	for _, zone := range zones {
		for _, ring := range zone.Rings {
			rect, err := bboxToRect(ringBBox(ring))
			if err != nil {
				continue
			}
			tree.Insert(&zoneRingEntry{zone: zone, ring: ring, rect: rect})
		}
	}

	return &zoneIndex{tree: tree}
}

// search returns the zone rings whose bounding boxes intersect the query box
func (zi *zoneIndex) search(box BBox) []*zoneRingEntry {
	rect, err := bboxToRect(box)
	if err != nil {
		return nil
	}

	results := zi.tree.SearchIntersect(rect)
	entries := make([]*zoneRingEntry, 0, len(results))
	for _, item := range results {
		entries = append(entries, item.(*zoneRingEntry))
	}
	return entries
}

// bboxToRect converts a BBox to an rtreego.Rect. rtreego rejects zero-size
// dimensions, so degenerate boxes get a hair of width.
func bboxToRect(b BBox) (rtreego.Rect, error) {
	w := b.Width()
	h := b.Height()
	if w < coordEpsilon {
		w = coordEpsilon
	}
	if h < coordEpsilon {
		h = coordEpsilon
	}
	return rtreego.NewRect(
		rtreego.Point{b.MinLng, b.MinLat},
		[]float64{w, h},
	)
}

// filterByViewport drops polygons whose bounding boxes miss the padded
// viewport. Runs before simplification so off-screen polygons never cost
// pipeline time.
func filterByViewport(polygons []RenderPolygon, viewport BBox, marginDegrees float64) []RenderPolygon {
	padded := viewport.Pad(marginDegrees)
	out := make([]RenderPolygon, 0, len(polygons))
	for _, p := range polygons {
		if p.bbox().Intersects(padded, 0) {
			out = append(out, p)
		}
	}
	return out
}
