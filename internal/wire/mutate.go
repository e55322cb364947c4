package wire

import (
	"fmt"

	"schematic-editor/pkg/geometry"
)

// Hit addresses the end of a wire that touches a join point.
type Hit struct {
	WireID string
	Point  geometry.Point
}

// BreakAtPins splits every wire segment whose interior a pin lies on. An
// axis-aligned segment is matched with a tolerance band around its line
// and the split point is snapped onto the segment; other segments use the
// distance to the interior projection. Both halves get fresh IDs.
// Reports whether any split occurred.
func BreakAtPins(pins []geometry.Point, wires []Wire, ids IDGenerator, tol float64) ([]Wire, bool) {
	cur := wires
	changed := false
	for _, pin := range pins {
		next := make([]Wire, 0, len(cur)+1)
		for _, w := range cur {
			seg, at, ok := interiorHit(w, pin, tol)
			if !ok {
				next = append(next, w)
				continue
			}
			left, right := splitWire(w, seg, at, ids.NewID(), ids.NewID())
			next = append(next, left, right)
			changed = true
		}
		cur = next
	}
	return cur, changed
}

// interiorHit finds the first segment of w whose interior holds p and
// returns the split location on that segment.
func interiorHit(w Wire, p geometry.Point, tol float64) (int, geometry.Point, bool) {
	for i := 0; i+1 < len(w.Points); i++ {
		a, b := w.Points[i], w.Points[i+1]
		if axis := geometry.AxisOf(a, b); axis != geometry.AxisNone {
			across := a.Across(axis)
			if abs(p.Across(axis)-across) > tol {
				continue
			}
			lo, hi := geometry.Interval(a, b, axis)
			along := p.Along(axis)
			if along-lo > tol && hi-along > tol {
				return i, geometry.PointOn(axis, along, across), true
			}
			continue
		}
		q, t := geometry.Project(p, a, b)
		if t <= 0 || t >= 1 || p.Distance(q) > tol {
			continue
		}
		if p.Distance(a) > tol && p.Distance(b) > tol {
			return i, q, true
		}
	}
	return 0, geometry.Point{}, false
}

// splitWire cuts w at point at on segment seg.
func splitWire(w Wire, seg int, at geometry.Point, leftID, rightID string) (Wire, Wire) {
	left := make([]geometry.Point, 0, seg+2)
	left = append(left, w.Points[:seg+1]...)
	left = append(left, at)

	right := make([]geometry.Point, 0, len(w.Points)-seg)
	right = append(right, at)
	right = append(right, w.Points[seg+1:]...)

	return w.withPoints(leftID, left), w.withPoints(rightID, right)
}

// SplitAt cuts w at point p on segment seg, returning two fresh wires.
func SplitAt(w Wire, seg int, p geometry.Point, ids IDGenerator) (Wire, Wire, error) {
	if seg < 0 || seg >= w.Segments() {
		return Wire{}, Wire{}, fmt.Errorf("split %s at segment %d: %w", w.ID, seg, ErrSegmentRange)
	}
	left, right := splitWire(w, seg, p, ids.NewID(), ids.NewID())
	return left, right, nil
}

// IsolateSegment splits the wire carrying id so that segment seg becomes a
// wire of its own. The first emitted piece keeps the original ID. Returns
// the new list and the ID of the isolated segment.
func IsolateSegment(wires []Wire, id string, seg int, ids IDGenerator) ([]Wire, string, error) {
	idx := IndexOf(wires, id)
	if idx < 0 {
		return nil, "", fmt.Errorf("isolate %s: %w", id, ErrUnknownWire)
	}
	w := wires[idx]
	if seg < 0 || seg >= w.Segments() {
		return nil, "", fmt.Errorf("isolate %s segment %d: %w", id, seg, ErrSegmentRange)
	}
	if w.Segments() == 1 {
		return wires, id, nil
	}

	var pieces []Wire
	nextID := func() string {
		if len(pieces) == 0 {
			return w.ID
		}
		return ids.NewID()
	}
	if seg > 0 {
		pieces = append(pieces, w.withPoints(nextID(), append([]geometry.Point(nil), w.Points[:seg+1]...)))
	}
	isolated := w.withPoints(nextID(), []geometry.Point{w.Points[seg], w.Points[seg+1]})
	pieces = append(pieces, isolated)
	if seg+2 < len(w.Points) {
		pieces = append(pieces, w.withPoints(ids.NewID(), append([]geometry.Point(nil), w.Points[seg+1:]...)))
	}

	out := make([]Wire, 0, len(wires)+len(pieces)-1)
	out = append(out, wires[:idx]...)
	out = append(out, pieces...)
	out = append(out, wires[idx+1:]...)
	return out, isolated.ID, nil
}

// DropSegments removes the listed segments from w and returns the
// remaining contiguous runs as fresh wires.
func DropSegments(w Wire, segs []int, ids IDGenerator) []Wire {
	drop := make(map[int]bool, len(segs))
	for _, s := range segs {
		drop[s] = true
	}

	var out []Wire
	var run []geometry.Point
	flush := func() {
		if len(run) >= 2 {
			out = append(out, w.withPoints(ids.NewID(), run))
		}
		run = nil
	}
	for i := 0; i+1 < len(w.Points); i++ {
		if drop[i] {
			flush()
			continue
		}
		if len(run) == 0 {
			run = append(run, w.Points[i])
		}
		run = append(run, w.Points[i+1])
	}
	flush()
	return out
}

// MendAtPoints joins the wires addressed by a and b, typically after the
// part sitting between their dangling ends was deleted. The left wire is
// oriented to end at a.Point and the right one to start at b.Point; the
// concatenation is normalized and re-emitted one segment per wire. The
// pieces inherit the left stroke, then the right one, then fallback. The
// first piece keeps the left wire's ID.
// Reports false and returns wires unchanged when nothing can be mended.
func MendAtPoints(a, b Hit, wires []Wire, ids IDGenerator, fallback Stroke) ([]Wire, bool) {
	ia, ib := IndexOf(wires, a.WireID), IndexOf(wires, b.WireID)
	if ia < 0 || ib < 0 || ia == ib {
		return wires, false
	}
	left := orient(wires[ia], a.Point, true)
	right := orient(wires[ib], b.Point, false)

	pts := make([]geometry.Point, 0, len(left)+len(right))
	pts = append(pts, left...)
	if left[len(left)-1] == right[0] {
		right = right[1:]
	}
	pts = append(pts, right...)

	norm := NormalizePolyline(pts)
	if norm == nil {
		return wires, false
	}

	src := wires[ia]
	switch {
	case !wires[ia].Stroke.IsDefault():
	case !wires[ib].Stroke.IsDefault():
		src = wires[ib]
	default:
		src.Stroke = fallback
	}
	if src.NetID == "" {
		src.NetID = wires[ib].NetID
	}

	pieces := make([]Wire, 0, len(norm)-1)
	for i := 0; i+1 < len(norm); i++ {
		id := wires[ia].ID
		if i > 0 {
			id = ids.NewID()
		}
		pieces = append(pieces, src.withPoints(id, []geometry.Point{norm[i], norm[i+1]}))
	}

	out := make([]Wire, 0, len(wires)+len(pieces))
	for i, w := range wires {
		switch i {
		case ia:
			out = append(out, pieces...)
		case ib:
		default:
			out = append(out, w)
		}
	}
	return out, true
}

// orient returns a copy of w's points ordered so that the end nearest to p
// comes last (atEnd) or first.
func orient(w Wire, p geometry.Point, atEnd bool) []geometry.Point {
	pts := append([]geometry.Point(nil), w.Points...)
	firstNearer := p.Distance(w.First()) < p.Distance(w.Last())
	if firstNearer == atEnd {
		for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
			pts[i], pts[j] = pts[j], pts[i]
		}
	}
	return pts
}

// DeleteBridge removes every two-point wire that exactly spans the two
// given pins, the artifact left when a part is dropped onto a straight wire.
func DeleteBridge(pins []geometry.Point, wires []Wire, tol float64) ([]Wire, bool) {
	if len(pins) != 2 {
		return wires, false
	}
	p, q := pins[0], pins[1]
	out := make([]Wire, 0, len(wires))
	changed := false
	for _, w := range wires {
		if len(w.Points) == 2 {
			a, b := w.Points[0], w.Points[1]
			if (a.Eq(p, tol) && b.Eq(q, tol)) || (a.Eq(q, tol) && b.Eq(p, tol)) {
				changed = true
				continue
			}
		}
		out = append(out, w)
	}
	return out, changed
}

// EndpointsAt returns a Hit for every wire end lying within tol of p.
func EndpointsAt(wires []Wire, p geometry.Point, tol float64) []Hit {
	var hits []Hit
	for _, w := range wires {
		if len(w.Points) < 2 {
			continue
		}
		if w.First().Eq(p, tol) {
			hits = append(hits, Hit{WireID: w.ID, Point: w.First()})
		}
		if w.Last().Eq(p, tol) {
			hits = append(hits, Hit{WireID: w.ID, Point: w.Last()})
		}
	}
	return hits
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
