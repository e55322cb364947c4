// Package component provides schematic parts and their derived pin geometry.
package component

import (
	"fmt"
	"math"

	"schematic-editor/pkg/geometry"
)

// Component is a part placed on the schematic. Pins are derived from the
// type, position and rotation and are never stored.
type Component struct {
	ID       string  `json:"id"`       // Unique identifier, e.g., "R1", "Q2"
	Type     Type    `json:"type"`     // Part type, determines pin geometry
	X        float64 `json:"x"`        // Center position
	Y        float64 `json:"y"`        // Center position
	Rotation float64 `json:"rotation"` // Rotation in degrees
	Label    string  `json:"label,omitempty"`

	footprint *Footprint // Set by Registry.Resolve for library parts
}

// New creates a component of the given type at (x, y).
func New(id string, t Type, x, y float64) *Component {
	return &Component{ID: id, Type: t, X: x, Y: y}
}

// Center returns the component's reference position.
func (c *Component) Center() geometry.Point {
	return geometry.Point{X: c.X, Y: c.Y}
}

// SetCenter moves the component to p.
func (c *Component) SetCenter(p geometry.Point) {
	c.X, c.Y = p.X, p.Y
}

// Footprint returns the pin layout for the component's type. Unknown
// types fall back to the resistor layout.
func (c *Component) Footprint() Footprint {
	if c.footprint != nil {
		return *c.footprint
	}
	if fp, ok := Footprints[c.Type]; ok {
		return fp
	}
	return Footprints[TypeResistor]
}

// Pins returns the absolute pin positions.
func (c *Component) Pins() []geometry.Point {
	fp := c.Footprint()
	pins := make([]geometry.Point, len(fp.Pins))
	for i, off := range fp.Pins {
		pins[i] = c.Center().Add(geometry.Rotate(off, c.Rotation))
	}
	return pins
}

// IsTwoPin reports whether the part has exactly two pins.
func (c *Component) IsTwoPin() bool {
	return len(c.Footprint().Pins) == 2
}

// HalfSpan returns half the distance between the pins of a two-pin part.
func (c *Component) HalfSpan() float64 {
	if !c.IsTwoPin() {
		return 0
	}
	pins := c.Pins()
	return pins[0].Distance(pins[1]) / 2
}

// PinAxis returns the axis the two pins lie on, or AxisNone for rotated or
// multi-pin parts.
func (c *Component) PinAxis() geometry.Axis {
	if !c.IsTwoPin() {
		return geometry.AxisNone
	}
	pins := c.Pins()
	return geometry.AxisOf(pins[0], pins[1])
}

// Span returns the along-axis interval covered by the two pins.
func (c *Component) Span(axis geometry.Axis) (float64, float64) {
	pins := c.Pins()
	if len(pins) != 2 {
		p := c.Center().Along(axis)
		return p, p
	}
	return geometry.Interval(pins[0], pins[1], axis)
}

// Bounds returns the body extent used for overlap checks. Two-pin parts
// span pin to pin and bodyHalfWidth to either side of the pin line.
func (c *Component) Bounds(bodyHalfWidth float64) geometry.Rect {
	fp := c.Footprint()
	if len(fp.Pins) == 2 {
		a, b := fp.Pins[0], fp.Pins[1]
		corners := []geometry.Point{
			{X: a.X, Y: a.Y - bodyHalfWidth}, {X: a.X, Y: a.Y + bodyHalfWidth},
			{X: b.X, Y: b.Y - bodyHalfWidth}, {X: b.X, Y: b.Y + bodyHalfWidth},
		}
		return rotatedBox(c, corners)
	}
	r := fp.Body
	corners := []geometry.Point{
		{X: r.X, Y: r.Y}, {X: r.X + r.Width, Y: r.Y},
		{X: r.X, Y: r.Y + r.Height}, {X: r.X + r.Width, Y: r.Y + r.Height},
	}
	return rotatedBox(c, corners)
}

func rotatedBox(c *Component, local []geometry.Point) geometry.Rect {
	pts := make([]geometry.Point, len(local))
	for i, p := range local {
		pts[i] = c.Center().Add(geometry.Rotate(p, c.Rotation))
	}
	return geometry.BoundingBox(pts)
}

// List manages a collection of components.
type List struct {
	Components []*Component
	nextID     map[string]int // Track next ID for each prefix (R, C, Q, etc.)
}

// NewList creates a new component list.
func NewList(components ...*Component) *List {
	return &List{
		Components: components,
		nextID:     make(map[string]int),
	}
}

// Add adds a component to the list.
func (l *List) Add(c *Component) {
	l.Components = append(l.Components, c)
}

// Remove removes a component by ID.
func (l *List) Remove(id string) bool {
	for i, c := range l.Components {
		if c.ID == id {
			l.Components = append(l.Components[:i], l.Components[i+1:]...)
			return true
		}
	}
	return false
}

// Get returns a component by ID.
func (l *List) Get(id string) *Component {
	for _, c := range l.Components {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// GenerateID generates a unique ID with the given prefix (e.g., "R" for resistors).
func (l *List) GenerateID(prefix string) string {
	for {
		l.nextID[prefix]++
		id := fmt.Sprintf("%s%d", prefix, l.nextID[prefix])
		if l.Get(id) == nil {
			return id
		}
	}
}

// Count returns the number of components.
func (l *List) Count() int {
	return len(l.Components)
}

// Pins returns every pin of every component.
func (l *List) Pins() []geometry.Point {
	return AllPins(l.Components)
}

// AllPins returns every pin of the given components.
func AllPins(components []*Component) []geometry.Point {
	var pins []geometry.Point
	for _, c := range components {
		pins = append(pins, c.Pins()...)
	}
	return pins
}

// Snapshot returns value copies of the components.
func Snapshot(components []*Component) []Component {
	out := make([]Component, len(components))
	for i, c := range components {
		out[i] = *c
	}
	return out
}

// SameAxisLine reports whether c is a two-pin part lying on the line
// across = fixed along axis, within tol.
func (c *Component) SameAxisLine(axis geometry.Axis, fixed, tol float64) bool {
	if c.PinAxis() != axis {
		return false
	}
	return math.Abs(c.Pins()[0].Across(axis)-fixed) <= tol
}
