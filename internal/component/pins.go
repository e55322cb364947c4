package component

import "schematic-editor/pkg/geometry"

// Type identifies a part kind; it determines the pin layout.
type Type string

const (
	TypeResistor  Type = "resistor"
	TypeCapacitor Type = "capacitor"
	TypeInductor  Type = "inductor"
	TypeDiode     Type = "diode"
	TypeLED       Type = "led"
	TypeBattery   Type = "battery"
	TypeSwitch    Type = "switch"
	TypeFuse      Type = "fuse"
	TypeNPN       Type = "npn"
	TypePNP       Type = "pnp"
	TypeGround    Type = "ground"
)

// Footprint describes a part's pins relative to its center at rotation 0.
type Footprint struct {
	Prefix string           // Reference designator prefix, e.g., "R"
	Pins   []geometry.Point // Pin offsets from the center
	Body   geometry.Rect    // Body extent for parts with other than two pins
}

// twoPin returns a footprint with pins at -half and +half along X.
func twoPin(prefix string, half float64) Footprint {
	return Footprint{
		Prefix: prefix,
		Pins:   []geometry.Point{{X: -half, Y: 0}, {X: half, Y: 0}},
	}
}

// Footprints contains the pin layouts of the built-in part types and is
// read-only. Transistor pins are base, collector, emitter.
var Footprints = map[Type]Footprint{
	TypeResistor:  twoPin("R", 10),
	TypeCapacitor: twoPin("C", 10),
	TypeInductor:  twoPin("L", 15),
	TypeDiode:     twoPin("D", 10),
	TypeLED:       twoPin("D", 10),
	TypeBattery:   twoPin("BT", 10),
	TypeSwitch:    twoPin("SW", 10),
	TypeFuse:      twoPin("F", 10),
	TypeNPN: {
		Prefix: "Q",
		Pins:   []geometry.Point{{X: -10, Y: 0}, {X: 10, Y: -10}, {X: 10, Y: 10}},
		Body:   geometry.Rect{X: -10, Y: -10, Width: 20, Height: 20},
	},
	TypePNP: {
		Prefix: "Q",
		Pins:   []geometry.Point{{X: -10, Y: 0}, {X: 10, Y: -10}, {X: 10, Y: 10}},
		Body:   geometry.Rect{X: -10, Y: -10, Width: 20, Height: 20},
	},
	TypeGround: {
		Prefix: "GND",
		Pins:   []geometry.Point{{X: 0, Y: 0}},
		Body:   geometry.Rect{X: -8, Y: 0, Width: 16, Height: 10},
	},
}

// ParseType maps a type name to a built-in Type. Library parts are
// parsed by a Registry.
func ParseType(s string) (Type, bool) {
	return (*Registry)(nil).ParseType(s)
}

// Prefix returns the reference designator prefix for a built-in t.
func (t Type) Prefix() string {
	return (*Registry)(nil).Prefix(t)
}
