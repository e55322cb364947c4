package netlist

import (
	"testing"

	"schematic-editor/internal/component"
	"schematic-editor/internal/wire"
	"schematic-editor/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seg(id string, ax, ay, bx, by float64) wire.Wire {
	return wire.Wire{ID: id, Points: []geometry.Point{{X: ax, Y: ay}, {X: bx, Y: by}}}
}

func TestBetterNetName(t *testing.T) {
	tests := []struct {
		a, b, want string
	}{
		{"net-001", "VCC", "VCC"},
		{"GND", "net-004", "GND"},
		{"VCC", "GND", "VCC"},
		{"GND#2", "GND", "GND"},
		{"SDA", "SCL", "SCL"},
		{"CLK", "CLOCK", "CLK"},
	}
	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, BetterNetName(tt.a, tt.b))
			assert.Equal(t, tt.want, BetterNetName(tt.b, tt.a))
		})
	}
}

func TestIsLowPriorityName(t *testing.T) {
	assert.True(t, IsLowPriorityName(""))
	assert.True(t, IsLowPriorityName("net-017"))
	assert.True(t, IsLowPriorityName("GND#3"))
	assert.False(t, IsLowPriorityName("VCC"))
	assert.False(t, IsLowPriorityName("net-a"))
	assert.Equal(t, "GND", BaseNetName("GND#3"))
	assert.Equal(t, "#1", BaseNetName("#1"))
}

func TestBuildGroupsConnectedWires(t *testing.T) {
	wires := []wire.Wire{
		seg("a", 0, 0, 100, 0),
		seg("b", 0, 50, 100, 50),
		seg("c", 50, 0, 50, 20),    // ends on a's interior
		seg("d", 100, 50, 100, 80), // shares b's end
		seg("e", 200, 0, 300, 0),
	}
	nets := Build(wires, nil, 0.5)
	require.Len(t, nets, 3)

	assert.Equal(t, "net-001", nets[0].ID)
	assert.Equal(t, []string{"a", "c"}, nets[0].WireIDs)
	assert.Equal(t, []string{"b", "d"}, nets[1].WireIDs)
	assert.Equal(t, []string{"e"}, nets[2].WireIDs)
	assert.Equal(t, "net-003", nets[2].Name)

	assert.Same(t, nets[1], ForWire(nets, "d"))
	assert.Nil(t, ForWire(nets, "zz"))
}

func TestCrossingWiresStaySeparate(t *testing.T) {
	wires := []wire.Wire{
		seg("h", 0, 50, 100, 50),
		seg("v", 50, 0, 50, 100),
	}
	assert.Len(t, Build(wires, nil, 0.5), 2)
}

func TestBuildNaming(t *testing.T) {
	wires := []wire.Wire{
		seg("a", 0, 0, 40, 0),
		seg("b", 60, 0, 100, 0),
		seg("c", 0, 50, 40, 50),
	}
	wires[1].NetID = "VOUT"
	wires[2].NetID = "net-007"

	comps := []*component.Component{
		component.New("R1", component.TypeResistor, 50, 0),
		component.New("GND1", component.TypeGround, 0, 50),
	}
	nets := Build(wires, comps, 0.5)
	require.Len(t, nets, 3)

	assert.Equal(t, "net-001", nets[0].Name)
	assert.Equal(t, []PinRef{{ComponentID: "R1", Pin: 0}}, nets[0].Pins)
	assert.Equal(t, "VOUT", nets[1].Name)
	assert.Equal(t, "R1.2", nets[1].Pins[0].String())
	assert.Equal(t, GroundName, nets[2].Name)

	got := Assign(wires, nets)
	assert.Equal(t, "net-001", got[0].NetID)
	assert.Equal(t, "VOUT", got[1].NetID)
	assert.Equal(t, GroundName, got[2].NetID)
	assert.Equal(t, "net-007", wires[2].NetID)
}
