// Package collision tests entity bounding boxes against the world's solid
// geometry. Every function is pure: callers pass the snapshot they are
// working against and nothing here mutates it.
package collision

import (
	"github.com/c42705/stargety-oasis-sub005/internal/world"
)

// Blocked reports whether an entity of the given size centered at (x, y)
// intersects any solid zone in the snapshot. It short-circuits on the first
// blocking zone; iteration order affects performance only.
func Blocked(snap *world.Snapshot, x, y, size float64) bool {
	box := entityBox(x, y, size)
	for _, zone := range snap.Blocking() {
		if zoneBlocks(zone, box) {
			return true
		}
	}
	return false
}

// entityBox builds the axis-aligned box of side size centered at (x, y).
func entityBox(x, y, size float64) world.Rect {
	half := size / 2
	return world.Rect{X: x - half, Y: y - half, Width: size, Height: size}
}

// zoneBlocks tests one zone against an entity box. Degenerate geometry
// never blocks.
func zoneBlocks(zone world.ImpassableZone, box world.Rect) bool {
	if zone.Degenerate() {
		return false
	}
	if !box.Overlaps(zone.BoundingBox) {
		return false
	}
	if zone.Kind != world.GeometryPolygon {
		// Rectangle zones are exactly their bounding box; the strict
		// overlap above already decided it.
		return true
	}
	return polygonHitsBox(zone.Points, box)
}

// polygonHitsBox reports whether any corner of the box, or its center, lies
// inside the polygon. The bounding-box prefilter has already passed by the
// time this runs.
func polygonHitsBox(points []world.Point, box world.Rect) bool {
	probes := [5]world.Point{
		{X: box.X, Y: box.Y},
		{X: box.X + box.Width, Y: box.Y},
		{X: box.X, Y: box.Y + box.Height},
		{X: box.X + box.Width, Y: box.Y + box.Height},
		{X: box.X + box.Width/2, Y: box.Y + box.Height/2},
	}
	for _, p := range probes {
		if pointInPolygon(p, points) {
			return true
		}
	}
	return false
}

// pointInPolygon is the even-odd ray-casting test: a ray cast toward +x
// from the point crosses the polygon's edges an odd number of times iff the
// point is inside.
func pointInPolygon(p world.Point, points []world.Point) bool {
	inside := false
	j := len(points) - 1
	for i := 0; i < len(points); i++ {
		pi, pj := points[i], points[j]
		if (pi.Y > p.Y) != (pj.Y > p.Y) &&
			p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X {
			inside = !inside
		}
		j = i
	}
	return inside
}
