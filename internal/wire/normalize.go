package wire

import (
	"schematic-editor/pkg/geometry"
)

// CollapseDuplicates removes consecutive duplicate vertices.
func CollapseDuplicates(points []geometry.Point) []geometry.Point {
	out := make([]geometry.Point, 0, len(points))
	for _, p := range points {
		if len(out) > 0 && out[len(out)-1] == p {
			continue
		}
		out = append(out, p)
	}
	return out
}

// NormalizePolyline reduces a polyline to its minimal form: consecutive
// duplicates collapsed and every interior vertex dropped that is collinear
// with its neighbors, including one where the path doubles back, so no
// stretch is covered twice.
//
// Returns nil when fewer than two points remain or the result has zero length.
func NormalizePolyline(points []geometry.Point) []geometry.Point {
	pts := CollapseDuplicates(points)
	if len(pts) < 2 {
		return nil
	}

	out := make([]geometry.Point, 0, len(pts))
	for _, p := range pts {
		for len(out) >= 2 && geometry.Cross(out[len(out)-2], out[len(out)-1], p) == 0 {
			out = out[:len(out)-1]
		}
		if len(out) > 0 && out[len(out)-1] == p {
			continue
		}
		out = append(out, p)
	}

	if len(out) < 2 {
		return nil
	}
	length := 0.0
	for i := 0; i+1 < len(out); i++ {
		length += out[i].Distance(out[i+1])
	}
	if length == 0 {
		return nil
	}
	return out
}

// NormalizeAll normalizes every wire and explodes multi-segment results
// into one fresh two-point wire per segment, each inheriting the parent's
// stroke and net. A wire that normalizes to a single segment keeps its ID.
// Degenerate wires are dropped. NormalizeAll is idempotent.
func NormalizeAll(wires []Wire, ids IDGenerator) []Wire {
	out := make([]Wire, 0, len(wires))
	for _, w := range wires {
		pts := NormalizePolyline(w.Points)
		if pts == nil {
			continue
		}
		if len(pts) == 2 {
			out = append(out, w.withPoints(w.ID, pts))
			continue
		}
		for i := 0; i+1 < len(pts); i++ {
			out = append(out, w.withPoints(ids.NewID(), []geometry.Point{pts[i], pts[i+1]}))
		}
	}
	return out
}

// Dedupe drops every two-point wire whose geometry repeats an earlier
// wire's, in either direction. The earlier wire wins.
func Dedupe(wires []Wire) []Wire {
	type seg struct{ a, b geometry.Point }
	seen := make(map[seg]bool, len(wires))
	out := make([]Wire, 0, len(wires))
	for _, w := range wires {
		if len(w.Points) != 2 {
			out = append(out, w)
			continue
		}
		k := seg{w.Points[0], w.Points[1]}
		if k.b.X < k.a.X || (k.b.X == k.a.X && k.b.Y < k.a.Y) {
			k.a, k.b = k.b, k.a
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, w)
	}
	return out
}
