package topology

import (
	"fmt"
	"sort"

	"schematic-editor/internal/component"
	"schematic-editor/internal/wire"
	"schematic-editor/pkg/colorutil"
	"schematic-editor/pkg/geometry"
)

// Options controls graph construction.
type Options struct {
	Precision    float64 // Node key quantum
	Tolerance    float64 // Pin to wire-end coincidence distance
	NeutralColor string  // SWP color when contributing wires disagree
}

// DefaultOptions returns the standard build options.
func DefaultOptions() Options {
	return Options{
		Precision:    1,
		Tolerance:    0.5,
		NeutralColor: colorutil.Neutral,
	}
}

// Topology is the graph view of one schematic state. It is rebuilt from
// scratch after every topology-affecting mutation and never updated in place.
type Topology struct {
	Nodes     map[NodeKey]*Node
	Edges     []Edge
	SWPs      []*SWP
	CompToSWP map[string]string // Component ID -> SWP ID

	byID      map[string]*SWP
	precision float64
}

type endpoint struct {
	p   geometry.Point
	key NodeKey
}

type builder struct {
	opts      Options
	t         *Topology
	ends      []endpoint
	wireColor map[string]string
	pinsAt    map[NodeKey][]string
}

// Build constructs the topology for the given components and wires.
func Build(components []*component.Component, wires []wire.Wire, opts Options) *Topology {
	if opts.Precision <= 0 {
		opts.Precision = 1
	}
	if opts.NeutralColor == "" {
		opts.NeutralColor = colorutil.Neutral
	}
	b := &builder{
		opts: opts,
		t: &Topology{
			Nodes:     make(map[NodeKey]*Node),
			CompToSWP: make(map[string]string),
			byID:      make(map[string]*SWP),
			precision: opts.Precision,
		},
		wireColor: make(map[string]string, len(wires)),
		pinsAt:    make(map[NodeKey][]string),
	}

	b.addWireEdges(wires)
	b.addBridges(components)
	b.walk()
	b.mapComponents(components)
	return b.t
}

func (b *builder) node(k NodeKey, p geometry.Point) *Node {
	n, ok := b.t.Nodes[k]
	if !ok {
		n = &Node{Key: k, Point: p}
		b.t.Nodes[k] = n
	}
	return n
}

func (b *builder) addEdge(e Edge, pa, pb geometry.Point) {
	idx := len(b.t.Edges)
	b.t.Edges = append(b.t.Edges, e)
	ka, kb := e.Nodes()
	for _, end := range []struct {
		k NodeKey
		p geometry.Point
	}{{ka, pa}, {kb, pb}} {
		n := b.node(end.k, end.p)
		n.Edges = append(n.Edges, idx)
		n.Degree.inc(e.Axis())
	}
}

// addWireEdges emits one edge per consecutive point pair of every wire.
func (b *builder) addWireEdges(wires []wire.Wire) {
	for _, w := range wires {
		if len(w.Points) < 2 {
			continue
		}
		b.wireColor[w.ID] = colorutil.Normalize(w.EffectiveColor())
		for i := 0; i+1 < len(w.Points); i++ {
			pa, pb := w.Points[i], w.Points[i+1]
			ka, kb := keyOf(pa, b.opts.Precision), keyOf(pb, b.opts.Precision)
			if ka == kb {
				continue
			}
			b.addEdge(WireEdge{
				WireID:  w.ID,
				Segment: i,
				A:       ka,
				B:       kb,
				axis:    geometry.AxisOf(pa, pb),
			}, pa, pb)
		}
		for _, p := range []geometry.Point{w.First(), w.Last()} {
			b.ends = append(b.ends, endpoint{p: p, key: keyOf(p, b.opts.Precision)})
		}
	}
}

// endsNear returns the wire ends within tolerance of p.
func (b *builder) endsNear(p geometry.Point) []endpoint {
	var out []endpoint
	for _, e := range b.ends {
		if e.p.Distance(p) <= b.opts.Tolerance {
			out = append(out, e)
		}
	}
	return out
}

// pinKey resolves the node a pin terminates at, preferring a nearby wire end.
func (b *builder) pinKey(p geometry.Point) NodeKey {
	if near := b.endsNear(p); len(near) > 0 {
		return near[0].key
	}
	return keyOf(p, b.opts.Precision)
}

// addBridges emits a bridge edge for every embedded two-pin component and
// records which components terminate at which node.
func (b *builder) addBridges(components []*component.Component) {
	for _, c := range components {
		pins := c.Pins()
		for _, p := range pins {
			k := b.pinKey(p)
			b.pinsAt[k] = append(b.pinsAt[k], c.ID)
		}

		if len(pins) != 2 {
			continue
		}
		axis := geometry.AxisOf(pins[0], pins[1])
		if axis == geometry.AxisNone {
			continue
		}
		na, nb := b.endsNear(pins[0]), b.endsNear(pins[1])
		if len(na) != 1 || len(nb) != 1 || na[0].key == nb[0].key {
			continue
		}
		b.addEdge(BridgeEdge{
			ComponentID: c.ID,
			A:           na[0].key,
			B:           nb[0].key,
			axis:        axis,
		}, na[0].p, nb[0].p)
	}
}

// walk grows an SWP from every unvisited axis-aligned edge.
func (b *builder) walk() {
	visited := make([]bool, len(b.t.Edges))
	for i, e := range b.t.Edges {
		if visited[i] || e.Axis() == geometry.AxisNone {
			continue
		}
		visited[i] = true
		ka, kb := e.Nodes()
		back := b.extend(i, ka, visited)
		fwd := b.extend(i, kb, visited)

		chain := make([]int, 0, len(back)+1+len(fwd))
		for j := len(back) - 1; j >= 0; j-- {
			chain = append(chain, back[j])
		}
		chain = append(chain, i)
		chain = append(chain, fwd...)

		if s := b.makeSWP(chain); s != nil {
			b.t.SWPs = append(b.t.SWPs, s)
			b.t.byID[s.ID] = s
		}
	}
}

// extend follows same-axis edges away from edge start through node k for as
// long as every crossed node is a pure pass-through: exactly two edges, both
// on the walking axis. A branch on the other axis ends the run, so a
// collapse never swallows a junction.
func (b *builder) extend(start int, k NodeKey, visited []bool) []int {
	axis := b.t.Edges[start].Axis()
	var out []int
	cur := start
	for {
		n := b.t.Nodes[k]
		if n.Degree.Get(axis) != 2 || len(n.Edges) != 2 {
			return out
		}
		next := -1
		for _, ei := range n.Edges {
			if ei != cur && b.t.Edges[ei].Axis() == axis {
				next = ei
				break
			}
		}
		if next < 0 || visited[next] || !b.passable(k, cur, next) {
			return out
		}
		visited[next] = true
		out = append(out, next)
		k = other(b.t.Edges[next], k)
		cur = next
	}
}

// passable reports whether every component pin at node k belongs to a
// bridge being crossed there.
func (b *builder) passable(k NodeKey, in, out int) bool {
	for _, id := range b.pinsAt[k] {
		if !isBridgeFor(b.t.Edges[in], id) && !isBridgeFor(b.t.Edges[out], id) {
			return false
		}
	}
	return true
}

func isBridgeFor(e Edge, componentID string) bool {
	br, ok := e.(BridgeEdge)
	return ok && br.ComponentID == componentID
}

// makeSWP turns an edge chain into an SWP. Chains without any wire
// segment are dropped.
func (b *builder) makeSWP(chain []int) *SWP {
	axis := b.t.Edges[chain[0]].Axis()
	s := &SWP{
		Axis:              axis,
		EdgeIndicesByWire: make(map[string][]int),
	}

	first := true
	var lo, hi geometry.Point
	colors := make(map[string]bool)
	for _, ei := range chain {
		e := b.t.Edges[ei]
		switch v := e.(type) {
		case WireEdge:
			if _, seen := s.EdgeIndicesByWire[v.WireID]; !seen {
				s.EdgeWireIDs = append(s.EdgeWireIDs, v.WireID)
			}
			s.EdgeIndicesByWire[v.WireID] = append(s.EdgeIndicesByWire[v.WireID], v.Segment)
			colors[b.wireColor[v.WireID]] = true
		case BridgeEdge:
			s.BridgeIDs = append(s.BridgeIDs, v.ComponentID)
		}
		ka, kb := e.Nodes()
		for _, k := range []NodeKey{ka, kb} {
			p := b.t.Nodes[k].Point
			if first || p.Along(axis) < lo.Along(axis) {
				lo = p
			}
			if first || p.Along(axis) > hi.Along(axis) {
				hi = p
			}
			first = false
		}
	}
	if len(s.EdgeWireIDs) == 0 {
		return nil
	}

	// Order edges from the low end.
	if b.chainStartsHigh(chain, axis) {
		for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
			chain[i], chain[j] = chain[j], chain[i]
		}
	}
	s.Edges = chain
	s.Start, s.End = lo, hi

	s.Color = b.opts.NeutralColor
	if len(colors) == 1 {
		for c := range colors {
			s.Color = c
		}
	}
	s.ID = fmt.Sprintf("swp-%d", len(b.t.SWPs)+1)
	return s
}

// chainStartsHigh reports whether the chain's first edge lies above its last.
func (b *builder) chainStartsHigh(chain []int, axis geometry.Axis) bool {
	mid := func(ei int) float64 {
		ka, kb := b.t.Edges[ei].Nodes()
		return b.t.Nodes[ka].Point.Along(axis) + b.t.Nodes[kb].Point.Along(axis)
	}
	return mid(chain[0]) > mid(chain[len(chain)-1])
}

// mapComponents assigns each two-pin component to the SWP containing its
// pin span.
func (b *builder) mapComponents(components []*component.Component) {
	for _, c := range components {
		axis := c.PinAxis()
		if axis == geometry.AxisNone {
			continue
		}
		lo, hi := c.Span(axis)
		fixed := c.Pins()[0].Across(axis)
		for _, s := range b.t.SWPs {
			if s.Contains(axis, lo, hi, fixed, b.opts.Tolerance) {
				b.t.CompToSWP[c.ID] = s.ID
				break
			}
		}
	}
}

// SWPByID returns the SWP with the given ID, or nil.
func (t *Topology) SWPByID(id string) *SWP {
	return t.byID[id]
}

// SWPForWire returns the SWP owning segment seg of the wire, or nil. A
// negative seg matches any segment.
func (t *Topology) SWPForWire(wireID string, seg int) *SWP {
	for _, s := range t.SWPs {
		segs, ok := s.EdgeIndicesByWire[wireID]
		if !ok {
			continue
		}
		if seg < 0 {
			return s
		}
		for _, i := range segs {
			if i == seg {
				return s
			}
		}
	}
	return nil
}

// SWPForComponent returns the SWP a component is mapped onto, or nil.
func (t *Topology) SWPForComponent(id string) *SWP {
	sid, ok := t.CompToSWP[id]
	if !ok {
		return nil
	}
	return t.byID[sid]
}

// ComponentsOn returns the sorted IDs of components mapped onto the SWP.
func (t *Topology) ComponentsOn(swpID string) []string {
	var ids []string
	for cid, sid := range t.CompToSWP {
		if sid == swpID {
			ids = append(ids, cid)
		}
	}
	sort.Strings(ids)
	return ids
}

// NodeAt returns the node at p, or nil.
func (t *Topology) NodeAt(p geometry.Point) *Node {
	return t.Nodes[keyOf(p, t.precision)]
}

// Bridges returns every bridge edge.
func (t *Topology) Bridges() []BridgeEdge {
	var out []BridgeEdge
	for _, e := range t.Edges {
		if br, ok := e.(BridgeEdge); ok {
			out = append(out, br)
		}
	}
	return out
}
