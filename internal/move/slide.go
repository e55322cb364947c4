package move

import (
	"fmt"
	"math"

	"schematic-editor/internal/component"
	"schematic-editor/internal/wire"
	"schematic-editor/pkg/geometry"
)

// Slide moves a two-pin part that is held by exactly one straight wire at
// each pin. Moving stretches one wire and shrinks the other; no
// reconstruction is needed afterwards.
type Slide struct {
	ComponentID string
	Axis        geometry.Axis
	Fixed       float64
	MinCenter   float64
	MaxCenter   float64

	// Wires touching the low and high pins, and which of their two points
	// follows the pin.
	LowWire, HighWire string
	lowEnd, highEnd   int

	opts Options
}

// NewSlide prepares a slide for c. It returns ErrNotApplicable unless each
// pin terminates exactly one two-point wire collinear with the part that
// leads away from it. The legal range keeps at least one grid step of wire
// on either side.
func NewSlide(wires []wire.Wire, c *component.Component, opts Options) (*Slide, error) {
	axis := c.PinAxis()
	if axis == geometry.AxisNone {
		return nil, fmt.Errorf("slide %s: %w", c.ID, ErrNotApplicable)
	}
	pins := c.Pins()
	lowPin, highPin := pins[0], pins[1]
	if lowPin.Along(axis) > highPin.Along(axis) {
		lowPin, highPin = highPin, lowPin
	}

	lowID, lowEnd, lowFar, ok := holdingWire(wires, lowPin, axis, -1, opts.Tolerance)
	if !ok {
		return nil, fmt.Errorf("slide %s: low pin: %w", c.ID, ErrNotApplicable)
	}
	highID, highEnd, highFar, ok := holdingWire(wires, highPin, axis, 1, opts.Tolerance)
	if !ok || highID == lowID {
		return nil, fmt.Errorf("slide %s: high pin: %w", c.ID, ErrNotApplicable)
	}

	margin := opts.Grid
	if margin <= 0 {
		margin = 1
	}
	h := c.HalfSpan()
	s := &Slide{
		ComponentID: c.ID,
		Axis:        axis,
		Fixed:       lowPin.Across(axis),
		MinCenter:   lowFar.Along(axis) + h + margin,
		MaxCenter:   highFar.Along(axis) - h - margin,
		LowWire:     lowID,
		HighWire:    highID,
		lowEnd:      lowEnd,
		highEnd:     highEnd,
		opts:        opts,
	}
	if s.MinCenter > s.MaxCenter {
		return nil, fmt.Errorf("slide %s: no room: %w", c.ID, ErrNotApplicable)
	}
	return s, nil
}

// holdingWire finds the single wire ending at pin. Its other end must lie
// on the part's line, strictly on side dir of the pin.
func holdingWire(wires []wire.Wire, pin geometry.Point, axis geometry.Axis, dir float64, tol float64) (string, int, geometry.Point, bool) {
	hits := wire.EndpointsAt(wires, pin, tol)
	if len(hits) != 1 {
		return "", 0, geometry.Point{}, false
	}
	w := wires[wire.IndexOf(wires, hits[0].WireID)]
	if len(w.Points) != 2 || geometry.AxisOf(w.Points[0], w.Points[1]) != axis {
		return "", 0, geometry.Point{}, false
	}
	near := 0
	if w.Points[1] == hits[0].Point {
		near = 1
	}
	far := w.Points[1-near]
	if math.Abs(far.Across(axis)-pin.Across(axis)) > tol || (far.Along(axis)-pin.Along(axis))*dir <= 0 {
		return "", 0, geometry.Point{}, false
	}
	return w.ID, near, far, true
}

// Update moves c toward candidate and drags the touching ends of both
// holding wires with its pins. A rejected move returns wires unchanged.
func (s *Slide) Update(comps []*component.Component, wires []wire.Wire, c *component.Component, candidate geometry.Point) ([]wire.Wire, bool, error) {
	if c.ID != s.ComponentID {
		return wires, false, fmt.Errorf("slide update %s: %w", c.ID, ErrNoActiveMove)
	}
	if s.opts.Snap != nil {
		candidate = s.opts.Snap(candidate)
	}
	along := candidate.Along(s.Axis) + midAlong(c, s.Axis) - c.Center().Along(s.Axis)

	prev := c.Center()
	placeAt(c, s.Axis, clamp(along, s.MinCenter, s.MaxCenter), s.Fixed)
	if collides(comps, c, s.opts.BodyHalfWidth, s.opts.Tolerance) {
		c.SetCenter(prev)
		return wires, false, nil
	}

	lo, hi := c.Span(s.Axis)
	lowPin := geometry.PointOn(s.Axis, lo, s.Fixed)
	highPin := geometry.PointOn(s.Axis, hi, s.Fixed)

	out := make([]wire.Wire, len(wires))
	copy(out, wires)
	for i, w := range out {
		switch w.ID {
		case s.LowWire:
			out[i] = withEnd(w, s.lowEnd, lowPin)
		case s.HighWire:
			out[i] = withEnd(w, s.highEnd, highPin)
		}
	}
	return out, true, nil
}

func withEnd(w wire.Wire, end int, p geometry.Point) wire.Wire {
	pts := append([]geometry.Point(nil), w.Points...)
	pts[end] = p
	w.Points = pts
	return w
}
