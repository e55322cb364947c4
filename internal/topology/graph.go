// Package topology builds the wire graph of a schematic and discovers its
// straight wire paths (SWPs): maximal collinear runs that pass through no
// branch, dead end or foreign component pin.
package topology

import (
	"math"

	"schematic-editor/pkg/geometry"
)

// NodeKey identifies a graph vertex by its position rounded to the node
// precision.
type NodeKey struct {
	X, Y int64
}

// AxisDegree counts axis-aligned edges incident to a node, per axis.
type AxisDegree struct {
	X int
	Y int
}

// Get returns the count for axis.
func (d AxisDegree) Get(axis geometry.Axis) int {
	switch axis {
	case geometry.AxisX:
		return d.X
	case geometry.AxisY:
		return d.Y
	default:
		return 0
	}
}

func (d *AxisDegree) inc(axis geometry.Axis) {
	switch axis {
	case geometry.AxisX:
		d.X++
	case geometry.AxisY:
		d.Y++
	}
}

// Node is a graph vertex.
type Node struct {
	Key    NodeKey
	Point  geometry.Point // First position seen for this key
	Edges  []int          // Indices into Topology.Edges
	Degree AxisDegree
}

// Edge is either a WireEdge or a BridgeEdge.
type Edge interface {
	// Nodes returns the two endpoint keys.
	Nodes() (NodeKey, NodeKey)
	// Axis returns the run direction, AxisNone for diagonal wire segments.
	Axis() geometry.Axis
	isEdge()
}

// WireEdge is one segment of a stored wire.
type WireEdge struct {
	WireID  string
	Segment int
	A, B    NodeKey
	axis    geometry.Axis
}

// Nodes implements Edge.
func (e WireEdge) Nodes() (NodeKey, NodeKey) { return e.A, e.B }

// Axis implements Edge.
func (e WireEdge) Axis() geometry.Axis { return e.axis }

func (WireEdge) isEdge() {}

// BridgeEdge stands in for a two-pin component whose pins are both
// embedded in wire ends, so a straight run continues through the part.
// It carries no stroke and is never a wire segment.
type BridgeEdge struct {
	ComponentID string
	A, B        NodeKey
	axis        geometry.Axis
}

// Nodes implements Edge.
func (e BridgeEdge) Nodes() (NodeKey, NodeKey) { return e.A, e.B }

// Axis implements Edge.
func (e BridgeEdge) Axis() geometry.Axis { return e.axis }

func (BridgeEdge) isEdge() {}

// other returns the endpoint of e that is not k.
func other(e Edge, k NodeKey) NodeKey {
	a, b := e.Nodes()
	if a == k {
		return b
	}
	return a
}

// keyOf rounds p to the node grid.
func keyOf(p geometry.Point, precision float64) NodeKey {
	if precision <= 0 {
		precision = 1
	}
	return NodeKey{
		X: int64(math.Round(p.X / precision)),
		Y: int64(math.Round(p.Y / precision)),
	}
}
