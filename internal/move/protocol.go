// Package move implements repositioning of two-pin components along the
// wires they sit on: the collapse/reconstruct protocol for parts on a
// straight wire path, and the simpler slide context for parts held by two
// single wires.
package move

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sort"

	"schematic-editor/internal/component"
	"schematic-editor/internal/topology"
	"schematic-editor/internal/wire"
	"schematic-editor/pkg/geometry"
)

var (
	// ErrNotApplicable means the component cannot be moved this way; the
	// caller should fall back to another strategy.
	ErrNotApplicable = errors.New("move not applicable")
	// ErrNoActiveMove is returned when no collapse exists for the component.
	ErrNoActiveMove = errors.New("no active move for component")
	// ErrMoveInProgress is returned by Begin while another component is collapsed.
	ErrMoveInProgress = errors.New("another move is in progress")
)

// zeroGap is the length below which a reconstructed gap is not emitted.
const zeroGap = 1e-9

// Options configures the move strategies.
type Options struct {
	Tolerance           float64                             // Pin and line coincidence distance
	StrokeMatchDistance float64                             // Nearest-segment threshold for stroke provenance
	BodyHalfWidth       float64                             // Perpendicular half-extent of two-pin bodies
	Grid                float64                             // Minimum wire length kept by the slide context
	Snap                func(geometry.Point) geometry.Point // Applied to candidate positions
	OnSnapshot          func()                              // Undo point, called before the first wire change
	Logger              *log.Logger
}

// DefaultOptions returns the standard move options.
func DefaultOptions() Options {
	return Options{
		Tolerance:           0.5,
		StrokeMatchDistance: 1,
		BodyHalfWidth:       4,
		Grid:                5,
		Logger:              log.Default(),
	}
}

// OriginalSegment records a wire segment removed by a collapse.
type OriginalSegment struct {
	WireID string
	A, B   geometry.Point
	Lo, Hi float64 // Extent along the SWP axis
	Stroke wire.Stroke
	NetID  string
	Color  string
}

// Context is the transient state of an active collapse.
type Context struct {
	SWPID       string
	ComponentID string
	Axis        geometry.Axis
	Fixed       float64 // Across-axis coordinate of the run
	MinCenter   float64
	MaxCenter   float64
	Ends        [2]geometry.Point // Low and high ends of the run
	CollapsedID string

	OriginalSegments []OriginalSegment
	OrigWires        []wire.Wire
	OrigPosition     geometry.Point
}

// Lo returns the low end coordinate of the collapsed run.
func (c *Context) Lo() float64 { return c.Ends[0].Along(c.Axis) }

// Hi returns the high end coordinate of the collapsed run.
func (c *Context) Hi() float64 { return c.Ends[1].Along(c.Axis) }

// Protocol is the collapse/reconstruct state machine. It is Idle while
// Active returns nil and Collapsed otherwise.
type Protocol struct {
	opts Options
	ids  wire.IDGenerator
	ctx  *Context
}

// NewProtocol creates an idle protocol.
func NewProtocol(ids wire.IDGenerator, opts Options) *Protocol {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Protocol{opts: opts, ids: ids}
}

// Active returns the current collapse, or nil when idle.
func (p *Protocol) Active() *Context {
	return p.ctx
}

// Begin collapses the SWP under c into a single straight wire and computes
// the legal center range for c. Calling Begin again for the same component
// is a no-op. Returns ErrNotApplicable when c is not on any SWP of topo.
func (p *Protocol) Begin(comps []*component.Component, wires []wire.Wire, topo *topology.Topology, c *component.Component) ([]wire.Wire, error) {
	if p.ctx != nil {
		if p.ctx.ComponentID == c.ID {
			return wires, nil
		}
		return nil, fmt.Errorf("begin %s while %s is collapsed: %w", c.ID, p.ctx.ComponentID, ErrMoveInProgress)
	}
	s := topo.SWPForComponent(c.ID)
	if s == nil {
		return nil, fmt.Errorf("begin %s: %w", c.ID, ErrNotApplicable)
	}
	if p.opts.OnSnapshot != nil {
		p.opts.OnSnapshot()
	}

	axis := s.Axis
	ctx := &Context{
		SWPID:        s.ID,
		ComponentID:  c.ID,
		Axis:         axis,
		Fixed:        s.Fixed(),
		Ends:         [2]geometry.Point{geometry.PointOn(axis, s.Lo(), s.Fixed()), geometry.PointOn(axis, s.Hi(), s.Fixed())},
		OrigWires:    wire.Clone(wires),
		OrigPosition: c.Center(),
	}

	out := make([]wire.Wire, 0, len(wires))
	src := -1
	for _, w := range wires {
		segs, ok := s.EdgeIndicesByWire[w.ID]
		if !ok {
			out = append(out, w)
			continue
		}
		for _, si := range segs {
			a, b := w.Segment(si)
			lo, hi := geometry.Interval(a, b, axis)
			ctx.OriginalSegments = append(ctx.OriginalSegments, OriginalSegment{
				WireID: w.ID,
				A:      a,
				B:      b,
				Lo:     lo,
				Hi:     hi,
				Stroke: w.Stroke,
				NetID:  w.NetID,
				Color:  w.Color,
			})
			if src < 0 || hi-lo > ctx.OriginalSegments[src].Hi-ctx.OriginalSegments[src].Lo {
				src = len(ctx.OriginalSegments) - 1
			}
		}
		out = append(out, wire.DropSegments(w, segs, p.ids)...)
	}

	collapsed := wire.Wire{
		ID:     p.ids.NewID(),
		Points: []geometry.Point{ctx.Ends[0], ctx.Ends[1]},
	}
	if src >= 0 {
		o := ctx.OriginalSegments[src]
		collapsed.Stroke, collapsed.NetID, collapsed.Color = o.Stroke, o.NetID, o.Color
	}
	ctx.CollapsedID = collapsed.ID
	out = append(out, collapsed)

	ctx.MinCenter, ctx.MaxCenter = p.centerRange(comps, topo, s, c)
	placeAt(c, axis, clamp(midAlong(c, axis), ctx.MinCenter, ctx.MaxCenter), ctx.Fixed)

	p.ctx = ctx
	p.opts.Logger.Printf("move: collapsed %s (%d segments) for %s, range [%g, %g]",
		s.ID, len(ctx.OriginalSegments), c.ID, ctx.MinCenter, ctx.MaxCenter)
	return out, nil
}

// centerRange narrows [lo+h, hi-h] by every other component on the SWP so
// that no two pin spans can overlap.
func (p *Protocol) centerRange(comps []*component.Component, topo *topology.Topology, s *topology.SWP, c *component.Component) (float64, float64) {
	axis := s.Axis
	h := c.HalfSpan()
	minC, maxC := s.Lo()+h, s.Hi()-h
	cur := midAlong(c, axis)

	for _, id := range topo.ComponentsOn(s.ID) {
		if id == c.ID {
			continue
		}
		o := find(comps, id)
		if o == nil {
			continue
		}
		oc := midAlong(o, axis)
		gap := o.HalfSpan() + h
		if oc <= cur {
			minC = math.Max(minC, oc+gap)
		} else {
			maxC = math.Min(maxC, oc-gap)
		}
	}
	if minC > maxC {
		return cur, cur
	}
	return minC, maxC
}

// Update moves c toward candidate, clamped to the legal range. The move is
// rejected, leaving c where it was, when c would overlap another part's
// body or land a pin on another part's pin. Wires are not touched.
func (p *Protocol) Update(comps []*component.Component, c *component.Component, candidate geometry.Point) (bool, error) {
	if p.ctx == nil || p.ctx.ComponentID != c.ID {
		return false, fmt.Errorf("update %s: %w", c.ID, ErrNoActiveMove)
	}
	if p.opts.Snap != nil {
		candidate = p.opts.Snap(candidate)
	}
	axis := p.ctx.Axis
	along := candidate.Along(axis) + midAlong(c, axis) - c.Center().Along(axis)

	prev := c.Center()
	placeAt(c, axis, clamp(along, p.ctx.MinCenter, p.ctx.MaxCenter), p.ctx.Fixed)
	if collides(comps, c, p.opts.BodyHalfWidth, p.opts.Tolerance) {
		c.SetCenter(prev)
		return false, nil
	}
	return true, nil
}

// Finish rebuilds the wire segments of the collapsed run around every
// component now resting on it and returns the new wire list. Each emitted
// segment inherits the stroke of the original segment chosen by
// provenance; the choice is a best-effort heuristic when several
// differently styled segments were collapsed together.
func (p *Protocol) Finish(comps []*component.Component, wires []wire.Wire, c *component.Component) ([]wire.Wire, error) {
	ctx := p.ctx
	if ctx == nil || ctx.ComponentID != c.ID {
		return nil, fmt.Errorf("finish %s: %w", c.ID, ErrNoActiveMove)
	}
	axis := ctx.Axis
	placeAt(c, axis, clamp(midAlong(c, axis), ctx.MinCenter, ctx.MaxCenter), ctx.Fixed)

	kept := make([]wire.Wire, 0, len(wires))
	for _, w := range wires {
		if w.ID != ctx.CollapsedID {
			kept = append(kept, w)
		}
	}

	used := make(map[string]bool)
	out := kept
	for _, g := range ctx.gaps(comps, p.opts.Tolerance) {
		o := ctx.OriginalSegments[ctx.provenance(g[0], g[1], p.opts.StrokeMatchDistance)]
		id := o.WireID
		if used[id] || wire.IndexOf(kept, id) >= 0 {
			id = p.ids.NewID()
		}
		used[id] = true
		out = append(out, wire.Wire{
			ID:     id,
			Points: []geometry.Point{geometry.PointOn(axis, g[0], ctx.Fixed), geometry.PointOn(axis, g[1], ctx.Fixed)},
			Stroke: o.Stroke,
			NetID:  o.NetID,
			Color:  o.Color,
		})
	}

	p.opts.Logger.Printf("move: reconstructed %s for %s (%d segments)", ctx.SWPID, c.ID, len(out)-len(kept))
	p.ctx = nil
	return out, nil
}

// Abort restores the wires and the component position captured by Begin
// without reconstructing anything.
func (p *Protocol) Abort(c *component.Component) ([]wire.Wire, error) {
	ctx := p.ctx
	if ctx == nil || ctx.ComponentID != c.ID {
		return nil, fmt.Errorf("abort %s: %w", c.ID, ErrNoActiveMove)
	}
	c.SetCenter(ctx.OrigPosition)
	p.ctx = nil
	p.opts.Logger.Printf("move: aborted %s for %s", ctx.SWPID, c.ID)
	return ctx.OrigWires, nil
}

// gaps returns the along-axis intervals of the run not covered by any
// resting component's pin span, low to high. Zero-length gaps are skipped.
func (ctx *Context) gaps(comps []*component.Component, tol float64) [][2]float64 {
	lo, hi := ctx.Lo(), ctx.Hi()

	type slot struct{ lo, hi float64 }
	var slots []slot
	for _, o := range comps {
		if !o.SameAxisLine(ctx.Axis, ctx.Fixed, tol) {
			continue
		}
		sLo, sHi := o.Span(ctx.Axis)
		if sLo < lo-tol || sHi > hi+tol {
			continue
		}
		slots = append(slots, slot{lo: sLo, hi: sHi})
	}
	sort.Slice(slots, func(i, j int) bool {
		return slots[i].lo+slots[i].hi < slots[j].lo+slots[j].hi
	})

	var out [][2]float64
	cursor := lo
	for _, s := range slots {
		end := math.Min(s.lo, hi)
		if end-cursor > zeroGap {
			out = append(out, [2]float64{cursor, end})
		}
		if s.hi > cursor {
			cursor = s.hi
		}
	}
	if hi-cursor > zeroGap {
		out = append(out, [2]float64{cursor, hi})
	}
	return out
}

// provenance picks the original segment whose style a new segment
// [lo, hi] inherits: the nearest one to its midpoint when within
// threshold, otherwise the one with the greatest overlap, otherwise the
// one whose midpoint is closest.
func (ctx *Context) provenance(lo, hi, threshold float64) int {
	mid := geometry.PointOn(ctx.Axis, (lo+hi)/2, ctx.Fixed)

	best, bestDist := 0, math.Inf(1)
	for i, o := range ctx.OriginalSegments {
		if d := geometry.DistanceToSegment(mid, o.A, o.B); d < bestDist {
			best, bestDist = i, d
		}
	}
	if bestDist <= threshold {
		return best
	}

	best, bestOverlap := -1, 0.0
	for i, o := range ctx.OriginalSegments {
		if ov := geometry.Overlap(lo, hi, o.Lo, o.Hi); ov > bestOverlap {
			best, bestOverlap = i, ov
		}
	}
	if best >= 0 {
		return best
	}

	best, bestDist = 0, math.Inf(1)
	for i, o := range ctx.OriginalSegments {
		if d := math.Abs((lo+hi)/2 - (o.Lo+o.Hi)/2); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// collides reports whether c overlaps another component's body or shares
// a pin position with it.
func collides(comps []*component.Component, c *component.Component, bodyHalfWidth, tol float64) bool {
	box := c.Bounds(bodyHalfWidth)
	pins := c.Pins()
	for _, o := range comps {
		if o.ID == c.ID {
			continue
		}
		if box.Intersects(o.Bounds(bodyHalfWidth)) {
			return true
		}
		for _, op := range o.Pins() {
			for _, cp := range pins {
				if cp.Eq(op, tol) {
					return true
				}
			}
		}
	}
	return false
}

// midAlong returns the midpoint of c's pin span along axis.
func midAlong(c *component.Component, axis geometry.Axis) float64 {
	lo, hi := c.Span(axis)
	return (lo + hi) / 2
}

// placeAt translates c so its pin span is centered at along and its pins
// lie on the line across = fixed.
func placeAt(c *component.Component, axis geometry.Axis, along, fixed float64) {
	across := c.Pins()[0].Across(axis)
	delta := geometry.PointOn(axis, along-midAlong(c, axis), fixed-across)
	c.SetCenter(c.Center().Add(delta))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func find(comps []*component.Component, id string) *component.Component {
	for _, c := range comps {
		if c.ID == id {
			return c
		}
	}
	return nil
}
