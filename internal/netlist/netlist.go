// Package netlist groups wires into electrically connected nets and keeps
// their names stable across edits.
package netlist

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"schematic-editor/internal/component"
	"schematic-editor/internal/wire"
	"schematic-editor/pkg/geometry"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// GroundName is the name given to nets touching a ground symbol.
const GroundName = "GND"

// autoNetRe matches auto-generated net names like "net-001", "net-042".
var autoNetRe = regexp.MustCompile(`^net-\d+$`)

// netNamePriority returns a priority score for a net name.
// Higher is better: 0=auto-generated, 1=ground, 2=user name.
func netNamePriority(name string) int {
	switch {
	case name == "" || autoNetRe.MatchString(name):
		return 0
	case BaseNetName(name) == GroundName:
		return 1
	default:
		return 2
	}
}

// IsLowPriorityName returns true if the name is auto-generated or the
// ground name, i.e. safe to overwrite with a user name.
func IsLowPriorityName(name string) bool {
	return netNamePriority(name) < 2
}

// BetterNetName returns the higher-priority name between a and b.
// At equal priority the shorter name wins, then the lexically smaller one,
// so "GND" beats "GND#2".
func BetterNetName(a, b string) string {
	pa, pb := netNamePriority(a), netNamePriority(b)
	switch {
	case pa > pb:
		return a
	case pb > pa:
		return b
	case len(a) != len(b):
		if len(a) < len(b) {
			return a
		}
		return b
	case a <= b:
		return a
	default:
		return b
	}
}

// BaseNetName strips an instance suffix (e.g. "GND#2" -> "GND").
func BaseNetName(name string) string {
	if idx := strings.LastIndex(name, "#"); idx > 0 {
		return name[:idx]
	}
	return name
}

// PinRef addresses one pin of a component.
type PinRef struct {
	ComponentID string
	Pin         int
}

func (p PinRef) String() string {
	return fmt.Sprintf("%s.%d", p.ComponentID, p.Pin+1)
}

// Net is a set of wires joined end to end or end to interior, plus the
// component pins landing on them.
type Net struct {
	ID      string   // Positional ID, e.g., "net-001"
	Name    string   // User name, GND, or the ID
	WireIDs []string // Member wires in input order
	Pins    []PinRef
}

// Build partitions wires into nets. Two wires are connected when an end
// of one lies within tol of the other, anywhere along it. Nets are
// ordered by their earliest wire.
func Build(wires []wire.Wire, comps []*component.Component, tol float64) []*Net {
	g := simple.NewUndirectedGraph()
	for i := range wires {
		g.AddNode(simple.Node(i))
	}
	for i, a := range wires {
		if len(a.Points) < 2 {
			continue
		}
		for j := i + 1; j < len(wires); j++ {
			if touches(a, wires[j], tol) || touches(wires[j], a, tol) {
				g.SetEdge(g.NewEdge(simple.Node(i), simple.Node(j)))
			}
		}
	}

	groups := topo.ConnectedComponents(g)
	members := make([][]int, 0, len(groups))
	for _, grp := range groups {
		idx := make([]int, len(grp))
		for k, n := range grp {
			idx[k] = int(n.ID())
		}
		sort.Ints(idx)
		members = append(members, idx)
	}
	sort.Slice(members, func(i, j int) bool { return members[i][0] < members[j][0] })

	nets := make([]*Net, 0, len(members))
	for n, idx := range members {
		net := &Net{ID: fmt.Sprintf("net-%03d", n+1)}
		name := ""
		for _, i := range idx {
			net.WireIDs = append(net.WireIDs, wires[i].ID)
			if wires[i].NetID != "" {
				name = BetterNetName(name, wires[i].NetID)
			}
		}
		for _, c := range comps {
			for pi, p := range c.Pins() {
				if !onAny(wires, idx, p, tol) {
					continue
				}
				net.Pins = append(net.Pins, PinRef{ComponentID: c.ID, Pin: pi})
				if c.Type == component.TypeGround {
					name = BetterNetName(name, GroundName)
				}
			}
		}
		if netNamePriority(name) == 0 {
			name = net.ID
		}
		net.Name = name
		nets = append(nets, net)
	}
	return nets
}

// Assign returns a copy of wires with NetID set to the name of the net
// each wire belongs to.
func Assign(wires []wire.Wire, nets []*Net) []wire.Wire {
	byWire := make(map[string]string)
	for _, n := range nets {
		for _, id := range n.WireIDs {
			byWire[id] = n.Name
		}
	}
	out := make([]wire.Wire, len(wires))
	for i, w := range wires {
		if name, ok := byWire[w.ID]; ok {
			w.NetID = name
		}
		out[i] = w
	}
	return out
}

// ForWire returns the net containing the wire, or nil.
func ForWire(nets []*Net, wireID string) *Net {
	for _, n := range nets {
		for _, id := range n.WireIDs {
			if id == wireID {
				return n
			}
		}
	}
	return nil
}

// touches reports whether an end of a lies on b.
func touches(a, b wire.Wire, tol float64) bool {
	if len(a.Points) < 2 {
		return false
	}
	for _, p := range []geometry.Point{a.First(), a.Last()} {
		if onWire(b, p, tol) {
			return true
		}
	}
	return false
}

func onWire(w wire.Wire, p geometry.Point, tol float64) bool {
	for i := 0; i < w.Segments(); i++ {
		a, b := w.Segment(i)
		if geometry.DistanceToSegment(p, a, b) <= tol {
			return true
		}
	}
	return false
}

func onAny(wires []wire.Wire, idx []int, p geometry.Point, tol float64) bool {
	for _, i := range idx {
		if onWire(wires[i], p, tol) {
			return true
		}
	}
	return false
}
