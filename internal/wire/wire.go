// Package wire provides the schematic wire model and the mutation
// primitives that keep the wire set well-formed after every edit.
//
// Every primitive treats its input slice as read-only and returns a new
// authoritative slice; point slices of stored wires are never mutated in
// place.
package wire

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"schematic-editor/pkg/geometry"

	"github.com/google/uuid"
)

var (
	// ErrUnknownWire is returned when a wire ID is not in the list.
	ErrUnknownWire = errors.New("unknown wire")
	// ErrSegmentRange is returned for a segment index outside the wire.
	ErrSegmentRange = errors.New("segment index out of range")
)

// Wire is a run of connected straight segments. After normalization every
// stored wire holds exactly two points.
type Wire struct {
	ID     string           `json:"id"`
	Points []geometry.Point `json:"points"`
	Stroke Stroke           `json:"stroke"`
	NetID  string           `json:"netId,omitempty"`

	// Color is the legacy mirror of the stroke color kept for older files.
	Color string `json:"color,omitempty"`
}

// EffectiveColor returns the stroke color, falling back to the legacy mirror.
func (w Wire) EffectiveColor() string {
	if c, ok := w.Stroke.Color.Get(); ok {
		return c
	}
	return w.Color
}

// Segments returns the number of segments in the wire.
func (w Wire) Segments() int {
	if len(w.Points) < 2 {
		return 0
	}
	return len(w.Points) - 1
}

// Segment returns the endpoints of segment i.
func (w Wire) Segment(i int) (geometry.Point, geometry.Point) {
	return w.Points[i], w.Points[i+1]
}

// First returns the first point of the wire.
func (w Wire) First() geometry.Point { return w.Points[0] }

// Last returns the last point of the wire.
func (w Wire) Last() geometry.Point { return w.Points[len(w.Points)-1] }

// Length returns the total polyline length.
func (w Wire) Length() float64 {
	total := 0.0
	for i := 0; i+1 < len(w.Points); i++ {
		total += w.Points[i].Distance(w.Points[i+1])
	}
	return total
}

// withPoints returns a copy of w carrying pts and the given id.
func (w Wire) withPoints(id string, pts []geometry.Point) Wire {
	return Wire{
		ID:     id,
		Points: pts,
		Stroke: w.Stroke,
		NetID:  w.NetID,
		Color:  w.Color,
	}
}

type wireJSON struct {
	ID     string           `json:"id"`
	Points []geometry.Point `json:"points"`
	Stroke Stroke           `json:"stroke"`
	NetID  string           `json:"netId,omitempty"`
	Color  string           `json:"color,omitempty"`
}

// MarshalJSON always mirrors the effective stroke color into "color".
func (w Wire) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireJSON{
		ID:     w.ID,
		Points: w.Points,
		Stroke: w.Stroke,
		NetID:  w.NetID,
		Color:  w.EffectiveColor(),
	})
}

// UnmarshalJSON adopts a legacy "color" as the stroke color when the
// stroke itself does not set one.
func (w *Wire) UnmarshalJSON(data []byte) error {
	var in wireJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*w = Wire(in)
	if !w.Stroke.Color.IsSet() && w.Color != "" {
		w.Stroke.Color = Set(w.Color)
	}
	return nil
}

// TotalLength sums the length of every wire.
func TotalLength(wires []Wire) float64 {
	total := 0.0
	for _, w := range wires {
		total += w.Length()
	}
	return total
}

// Clone returns a copy of wires that shares no point slices with the input.
func Clone(wires []Wire) []Wire {
	out := make([]Wire, len(wires))
	for i, w := range wires {
		out[i] = w.withPoints(w.ID, append([]geometry.Point(nil), w.Points...))
	}
	return out
}

// IndexOf returns the position of the wire with the given ID, or -1.
func IndexOf(wires []Wire, id string) int {
	for i := range wires {
		if wires[i].ID == id {
			return i
		}
	}
	return -1
}

// Remove returns wires without the wire carrying id.
func Remove(wires []Wire, id string) ([]Wire, error) {
	idx := IndexOf(wires, id)
	if idx < 0 {
		return nil, fmt.Errorf("remove %s: %w", id, ErrUnknownWire)
	}
	out := make([]Wire, 0, len(wires)-1)
	out = append(out, wires[:idx]...)
	return append(out, wires[idx+1:]...), nil
}

// IDGenerator mints unique wire IDs.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator mints random UUID-based IDs.
type UUIDGenerator struct{}

// NewID returns a fresh "w-<uuid>" identifier.
func (UUIDGenerator) NewID() string {
	return "w-" + uuid.NewString()
}

// Sequence mints deterministic IDs: prefix1, prefix2, ...
type Sequence struct {
	mu     sync.Mutex
	prefix string
	next   int
}

// NewSequence creates a deterministic generator.
func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

// NewID returns the next ID in the sequence.
func (s *Sequence) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return fmt.Sprintf("%s%d", s.prefix, s.next)
}
