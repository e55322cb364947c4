package wire

import (
	"encoding/json"

	"schematic-editor/pkg/colorutil"
)

// Override holds an optional stroke attribute. An unset Override defers to
// the net class or theme default instead of carrying a magic value.
type Override[T comparable] struct {
	value T
	set   bool
}

// Set returns an Override carrying v.
func Set[T comparable](v T) Override[T] {
	return Override[T]{value: v, set: true}
}

// Get returns the value and whether it is set.
func (o Override[T]) Get() (T, bool) {
	return o.value, o.set
}

// IsSet reports whether the override carries a value.
func (o Override[T]) IsSet() bool {
	return o.set
}

// Or returns the value, or def when unset.
func (o Override[T]) Or(def T) T {
	if o.set {
		return o.value
	}
	return def
}

// StrokeStyle is the dash style of a wire.
type StrokeStyle string

const (
	StyleSolid      StrokeStyle = "solid"
	StyleDash       StrokeStyle = "dash"
	StyleDot        StrokeStyle = "dot"
	StyleDashDot    StrokeStyle = "dash_dot"
	StyleDashDotDot StrokeStyle = "dash_dot_dot"
)

// styleDefault is the persisted spelling of an unset style.
const styleDefault = "default"

// Stroke describes how a wire is drawn. Each attribute is independently
// optional.
type Stroke struct {
	Width Override[float64]
	Style Override[StrokeStyle]
	Color Override[string]
}

// IsDefault reports whether no attribute is overridden.
func (s Stroke) IsDefault() bool {
	return !s.Width.IsSet() && !s.Style.IsSet() && !s.Color.IsSet()
}

// Equal compares two strokes, treating color spellings of the same color as equal.
func (s Stroke) Equal(other Stroke) bool {
	if s.Width != other.Width || s.Style != other.Style {
		return false
	}
	c1, ok1 := s.Color.Get()
	c2, ok2 := other.Color.Get()
	if ok1 != ok2 {
		return false
	}
	return !ok1 || colorutil.Equal(c1, c2)
}

// Merge returns s with every unset attribute taken from fallback.
func (s Stroke) Merge(fallback Stroke) Stroke {
	if !s.Width.IsSet() {
		s.Width = fallback.Width
	}
	if !s.Style.IsSet() {
		s.Style = fallback.Style
	}
	if !s.Color.IsSet() {
		s.Color = fallback.Color
	}
	return s
}

// strokeJSON is the persisted stroke shape.
type strokeJSON struct {
	Width float64 `json:"width"`
	Type  string  `json:"type"`
	Color string  `json:"color"`
}

// MarshalJSON writes unset attributes as width 0, type "default" and an
// empty color so older readers keep deferring to the theme.
func (s Stroke) MarshalJSON() ([]byte, error) {
	out := strokeJSON{
		Width: s.Width.Or(0),
		Type:  string(s.Style.Or(styleDefault)),
		Color: s.Color.Or(""),
	}
	return json.Marshal(out)
}

// UnmarshalJSON maps the persisted sentinels back to unset attributes.
func (s *Stroke) UnmarshalJSON(data []byte) error {
	var in strokeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*s = Stroke{}
	if in.Width > 0 {
		s.Width = Set(in.Width)
	}
	if in.Type != "" && in.Type != styleDefault {
		s.Style = Set(StrokeStyle(in.Type))
	}
	if in.Color != "" {
		s.Color = Set(in.Color)
	}
	return nil
}
