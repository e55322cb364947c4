package geometry

import "math"

// epsilon absorbs float noise in exact-equality geometry tests.
const epsilon = 1e-9

// AxisOf returns the axis of segment a-b when exactly one coordinate is
// shared, or AxisNone for diagonal and zero-length segments.
func AxisOf(a, b Point) Axis {
	sameX := math.Abs(a.X-b.X) <= epsilon
	sameY := math.Abs(a.Y-b.Y) <= epsilon
	switch {
	case sameY && !sameX:
		return AxisX
	case sameX && !sameY:
		return AxisY
	default:
		return AxisNone
	}
}

// Cross computes the cross product of vectors AB and AD.
// Zero means the three points are collinear.
func Cross(a, b, d Point) float64 {
	return (b.X-a.X)*(d.Y-a.Y) - (b.Y-a.Y)*(d.X-a.X)
}

// Collinear reports whether a, b and d lie on one line.
func Collinear(a, b, d Point) bool {
	return math.Abs(Cross(a, b, d)) <= epsilon
}

// Project projects p onto segment a-b and returns the closest point on the
// segment together with its parameter t, clamped to [0, 1].
func Project(p, a, b Point) (Point, float64) {
	dx := b.X - a.X
	dy := b.Y - a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return a, 0
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return Point{X: a.X + t*dx, Y: a.Y + t*dy}, t
}

// DistanceToSegment returns the distance from p to segment a-b.
// A zero-length segment degenerates to the distance to a.
func DistanceToSegment(p, a, b Point) float64 {
	q, _ := Project(p, a, b)
	return p.Distance(q)
}

// SegmentsIntersect reports whether segments a-b and c-d share at least one
// point. Touching endpoints and collinear overlap count as intersecting.
func SegmentsIntersect(a, b, c, d Point) bool {
	d1 := Cross(c, d, a)
	d2 := Cross(c, d, b)
	d3 := Cross(a, b, c)
	d4 := Cross(a, b, d)

	if ((d1 > epsilon && d2 < -epsilon) || (d1 < -epsilon && d2 > epsilon)) &&
		((d3 > epsilon && d4 < -epsilon) || (d3 < -epsilon && d4 > epsilon)) {
		return true
	}

	return (math.Abs(d1) <= epsilon && onSegment(c, d, a)) ||
		(math.Abs(d2) <= epsilon && onSegment(c, d, b)) ||
		(math.Abs(d3) <= epsilon && onSegment(a, b, c)) ||
		(math.Abs(d4) <= epsilon && onSegment(a, b, d))
}

// onSegment checks whether p, already known collinear with a-b, lies
// within the segment's bounding box.
func onSegment(a, b, p Point) bool {
	return p.X >= math.Min(a.X, b.X)-epsilon && p.X <= math.Max(a.X, b.X)+epsilon &&
		p.Y >= math.Min(a.Y, b.Y)-epsilon && p.Y <= math.Max(a.Y, b.Y)+epsilon
}

// RectIntersectsSegment reports whether segment a-b touches rectangle r.
func RectIntersectsSegment(r Rect, a, b Point) bool {
	if r.Contains(a) || r.Contains(b) {
		return true
	}
	tl := Point{X: r.X, Y: r.Y}
	tr := Point{X: r.X + r.Width, Y: r.Y}
	br := Point{X: r.X + r.Width, Y: r.Y + r.Height}
	bl := Point{X: r.X, Y: r.Y + r.Height}
	return SegmentsIntersect(a, b, tl, tr) ||
		SegmentsIntersect(a, b, tr, br) ||
		SegmentsIntersect(a, b, br, bl) ||
		SegmentsIntersect(a, b, bl, tl)
}

// Interval returns the along-axis extent of segment a-b as (lo, hi).
func Interval(a, b Point, axis Axis) (float64, float64) {
	lo, hi := a.Along(axis), b.Along(axis)
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi
}

// Overlap returns the length of the intersection of [aLo, aHi] and
// [bLo, bHi], or zero when they are disjoint.
func Overlap(aLo, aHi, bLo, bHi float64) float64 {
	return math.Max(0, math.Min(aHi, bHi)-math.Max(aLo, bLo))
}
