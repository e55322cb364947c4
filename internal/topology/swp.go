package topology

import (
	"math"

	"schematic-editor/pkg/geometry"
)

// SWP is a straight wire path: a maximal chain of same-axis edges whose
// interior nodes are pure pass-through points on that axis.
type SWP struct {
	ID    string
	Axis  geometry.Axis
	Start geometry.Point // Low end along the axis
	End   geometry.Point // High end along the axis
	Color string         // Shared wire color, or the neutral fallback

	// EdgeWireIDs lists contributing wires in discovery order; bridges are
	// not included.
	EdgeWireIDs       []string
	EdgeIndicesByWire map[string][]int
	BridgeIDs         []string // Components bridged inside the run

	Edges []int // Indices into Topology.Edges, ordered low to high
}

// Lo returns the low end coordinate along the axis.
func (s *SWP) Lo() float64 { return s.Start.Along(s.Axis) }

// Hi returns the high end coordinate along the axis.
func (s *SWP) Hi() float64 { return s.End.Along(s.Axis) }

// Fixed returns the shared across-axis coordinate.
func (s *SWP) Fixed() float64 { return s.Start.Across(s.Axis) }

// Length returns the along-axis extent.
func (s *SWP) Length() float64 { return s.Hi() - s.Lo() }

// Contains reports whether the interval [lo, hi] on the line across = fixed
// lies inside the SWP, inclusive within tol.
func (s *SWP) Contains(axis geometry.Axis, lo, hi, fixed, tol float64) bool {
	if axis != s.Axis || math.Abs(fixed-s.Fixed()) > tol {
		return false
	}
	return lo >= s.Lo()-tol && hi <= s.Hi()+tol
}

// HasWire reports whether the wire contributes a segment to the SWP.
func (s *SWP) HasWire(wireID string) bool {
	_, ok := s.EdgeIndicesByWire[wireID]
	return ok
}
