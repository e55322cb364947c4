package editor

import (
	"errors"
	"io"
	"log"
	"testing"

	"schematic-editor/internal/component"
	"schematic-editor/internal/move"
	"schematic-editor/internal/netlist"
	"schematic-editor/internal/wire"
	"schematic-editor/pkg/geometry"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pt = geometry.Pt

var strokeCmp = cmp.Comparer(func(a, b wire.Stroke) bool { return a.Equal(b) })

func seg(id string, a, b geometry.Point) wire.Wire {
	return wire.Wire{ID: id, Points: []geometry.Point{a, b}}
}

type harness struct {
	m         *Model
	snapshots []Snapshot
	events    map[EventType]int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{events: make(map[EventType]int)}
	h.m = New(
		WithIDGenerator(wire.NewSequence("w")),
		WithLogger(log.New(io.Discard, "", 0)),
		WithSnapshot(func(s Snapshot) { h.snapshots = append(h.snapshots, s) }),
	)
	for _, ev := range []EventType{
		EventLoaded, EventComponentsChanged, EventWiresChanged, EventTopologyRebuilt,
		EventSelectionChanged, EventMoveStarted, EventMoveFinished, EventMoveAborted,
	} {
		ev := ev
		h.m.On(ev, func(interface{}) { h.events[ev]++ })
	}
	return h
}

func points(ws []wire.Wire) [][]geometry.Point {
	out := make([][]geometry.Point, len(ws))
	for i, w := range ws {
		out[i] = w.Points
	}
	return out
}

// placeOnWire loads a single wire on y=0 and drops a resistor onto it.
func placeOnWire(t *testing.T, h *harness) *component.Component {
	t.Helper()
	h.m.Load(nil, []wire.Wire{seg("W", pt(0, 0), pt(100, 0))})
	c, err := h.m.PlaceComponent("resistor", pt(51, 1), 0)
	require.NoError(t, err)
	return c
}

func TestPlaceComponentEmbedsInWire(t *testing.T) {
	h := newHarness(t)
	c := placeOnWire(t, h)

	assert.Equal(t, "R1", c.ID)
	assert.Equal(t, pt(50, 0), c.Center())
	want := []wire.Wire{
		seg("w1", pt(0, 0), pt(40, 0)),
		seg("w4", pt(60, 0), pt(100, 0)),
	}
	if diff := cmp.Diff(want, h.m.Wires(), strokeCmp); diff != "" {
		t.Errorf("wires mismatch (-want +got):\n%s", diff)
	}
	require.NotNil(t, h.m.Topology().SWPForComponent("R1"))
	assert.Len(t, h.snapshots, 1)
	assert.Empty(t, h.snapshots[0].Components)
	assert.Equal(t, 1, h.events[EventLoaded])
	assert.Equal(t, 1, h.events[EventComponentsChanged])
}

func TestPlaceUnknownType(t *testing.T) {
	h := newHarness(t)
	_, err := h.m.PlaceComponent("flux-capacitor", pt(0, 0), 0)
	assert.True(t, errors.Is(err, ErrUnknownType))
	assert.Empty(t, h.snapshots)
}

func TestPlaceLibraryPart(t *testing.T) {
	lib := component.NewLibrary()
	lib.Add(&component.PartDefinition{
		Type:   "trimmer",
		Prefix: "RV",
		Pins:   []geometry.Point{{X: -15, Y: 0}, {X: 15, Y: 0}},
	})
	reg := component.NewRegistry()
	require.NoError(t, lib.Install(reg))

	m := New(WithIDGenerator(wire.NewSequence("w")), WithLogger(log.New(io.Discard, "", 0)), WithParts(reg))
	m.Load(nil, []wire.Wire{seg("W", pt(0, 0), pt(100, 0))})
	c, err := m.PlaceComponent("Trimmer", pt(50, 0), 0)
	require.NoError(t, err)
	assert.Equal(t, "RV1", c.ID)
	assert.Equal(t, [][]geometry.Point{{pt(0, 0), pt(35, 0)}, {pt(65, 0), pt(100, 0)}}, points(m.Wires()))

	// A loaded document resolves the part from the same registry.
	m.Load([]*component.Component{component.New("RV1", "trimmer", 50, 0)}, m.Wires())
	assert.Equal(t, []geometry.Point{pt(35, 0), pt(65, 0)}, m.Component("RV1").Pins())

	// Another model never sees the library.
	_, err = newHarness(t).m.PlaceComponent("trimmer", pt(50, 0), 0)
	assert.True(t, errors.Is(err, ErrUnknownType))
}

func TestMoveCollapseAndFinish(t *testing.T) {
	h := newHarness(t)
	placeOnWire(t, h)

	kind, err := h.m.BeginMove("R1")
	require.NoError(t, err)
	assert.Equal(t, MoveCollapse, kind)
	k, id := h.m.ActiveMove()
	assert.Equal(t, MoveCollapse, k)
	assert.Equal(t, "R1", id)
	assert.Equal(t, [][]geometry.Point{{pt(0, 0), pt(100, 0)}}, points(h.m.Wires()))
	assert.Len(t, h.snapshots, 2)

	ok, err := h.m.UpdateMove("R1", pt(56, 2))
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, h.m.FinishMove("R1"))
	want := []wire.Wire{
		seg("w1", pt(0, 0), pt(45, 0)),
		seg("w4", pt(65, 0), pt(100, 0)),
	}
	if diff := cmp.Diff(want, h.m.Wires(), strokeCmp); diff != "" {
		t.Errorf("wires mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, pt(55, 0), h.m.Component("R1").Center())
	assert.Equal(t, 1, h.events[EventMoveStarted])
	assert.Equal(t, 1, h.events[EventMoveFinished])

	k, _ = h.m.ActiveMove()
	assert.Equal(t, MoveNone, k)
	assert.True(t, errors.Is(h.m.FinishMove("R1"), move.ErrNoActiveMove))
}

func TestAbortMoveRestoresState(t *testing.T) {
	h := newHarness(t)
	placeOnWire(t, h)
	before := h.m.Wires()

	_, err := h.m.BeginMove("R1")
	require.NoError(t, err)
	_, err = h.m.UpdateMove("R1", pt(25, 0))
	require.NoError(t, err)

	require.NoError(t, h.m.AbortMove("R1"))
	if diff := cmp.Diff(before, h.m.Wires(), strokeCmp); diff != "" {
		t.Errorf("wires mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, pt(50, 0), h.m.Component("R1").Center())
	assert.Equal(t, 1, h.events[EventMoveAborted])
}

func TestUpdateMoveWithoutBegin(t *testing.T) {
	h := newHarness(t)
	placeOnWire(t, h)

	_, err := h.m.UpdateMove("R1", pt(30, 0))
	assert.True(t, errors.Is(err, move.ErrNoActiveMove))
	_, err = h.m.UpdateMove("R9", pt(30, 0))
	assert.True(t, errors.Is(err, ErrUnknownComponent))
}

func TestSelectFinishesOtherMove(t *testing.T) {
	h := newHarness(t)
	h.m.Load(nil, []wire.Wire{
		seg("H", pt(0, 0), pt(100, 0)),
		seg("G", pt(0, 50), pt(100, 50)),
	})
	_, err := h.m.PlaceComponent("resistor", pt(50, 0), 0)
	require.NoError(t, err)
	_, err = h.m.PlaceComponent("resistor", pt(50, 50), 0)
	require.NoError(t, err)

	_, err = h.m.BeginMove("R1")
	require.NoError(t, err)
	_, err = h.m.UpdateMove("R1", pt(30, 0))
	require.NoError(t, err)

	require.NoError(t, h.m.Select("R2"))
	k, _ := h.m.ActiveMove()
	assert.Equal(t, MoveNone, k)
	assert.Equal(t, "R2", h.m.Selected())
	assert.Equal(t, pt(30, 0), h.m.Component("R1").Center())
	assert.Len(t, h.m.Wires(), 4)
	assert.InDelta(t, 160.0, wire.TotalLength(h.m.Wires()), 1e-9)

	assert.True(t, errors.Is(h.m.Select("nope"), ErrUnknownComponent))
}

func TestBeginMoveOnFreePart(t *testing.T) {
	h := newHarness(t)
	h.m.Load([]*component.Component{component.New("R1", component.TypeResistor, 50, 50)}, nil)

	_, err := h.m.BeginMove("R1")
	assert.True(t, errors.Is(err, move.ErrNotApplicable))
	assert.Empty(t, h.snapshots)
	k, _ := h.m.ActiveMove()
	assert.Equal(t, MoveNone, k)
}

func TestBeginMoveFallsBackToSlide(t *testing.T) {
	h := newHarness(t)
	// Both wire ends are within the per-axis tolerance of the pins but
	// too far to count as bridge ends, so no SWP covers the part.
	wires := []wire.Wire{
		seg("A", pt(0, 0.4), pt(39.6, 0.4)),
		seg("B", pt(60.4, 0.4), pt(100, 0.4)),
	}
	h.m.Load([]*component.Component{component.New("R1", component.TypeResistor, 50, 0)}, wires)
	require.Nil(t, h.m.Topology().SWPForComponent("R1"))

	kind, err := h.m.BeginMove("R1")
	require.NoError(t, err)
	assert.Equal(t, MoveSlide, kind)
	assert.Len(t, h.snapshots, 1)

	ok, err := h.m.UpdateMove("R1", pt(30, 0))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, pt(30, 0), h.m.Component("R1").Center())
	got := h.m.Wires()
	assert.Equal(t, pt(20, 0), got[0].Last())
	assert.Equal(t, pt(40, 0), got[1].First())

	require.NoError(t, h.m.AbortMove("R1"))
	assert.Equal(t, pt(50, 0), h.m.Component("R1").Center())
	if diff := cmp.Diff(wires, h.m.Wires(), strokeCmp); diff != "" {
		t.Errorf("wires mismatch (-want +got):\n%s", diff)
	}
}

func TestDeleteComponentMendsWire(t *testing.T) {
	h := newHarness(t)
	placeOnWire(t, h)

	require.NoError(t, h.m.DeleteComponent("R1"))
	want := []wire.Wire{seg("w1", pt(0, 0), pt(100, 0))}
	if diff := cmp.Diff(want, h.m.Wires(), strokeCmp); diff != "" {
		t.Errorf("wires mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, h.m.Components())
	assert.Len(t, h.snapshots, 2)
	assert.True(t, errors.Is(h.m.DeleteComponent("R1"), ErrUnknownComponent))
}

func TestDeleteComponentDuringMove(t *testing.T) {
	h := newHarness(t)
	placeOnWire(t, h)
	_, err := h.m.BeginMove("R1")
	require.NoError(t, err)

	require.NoError(t, h.m.DeleteComponent("R1"))
	k, _ := h.m.ActiveMove()
	assert.Equal(t, MoveNone, k)
	assert.Equal(t, [][]geometry.Point{{pt(0, 0), pt(100, 0)}}, points(h.m.Wires()))
}

func TestDrawWireSplitsAtTee(t *testing.T) {
	h := newHarness(t)
	h.m.Load(nil, []wire.Wire{seg("W", pt(0, 0), pt(100, 0))})

	require.NoError(t, h.m.DrawWire(pt(50, 0), pt(51, 49)))
	want := []wire.Wire{
		seg("w2", pt(0, 0), pt(50, 0)),
		seg("w3", pt(50, 0), pt(100, 0)),
		seg("w1", pt(50, 0), pt(50, 50)),
	}
	if diff := cmp.Diff(want, h.m.Wires(), strokeCmp); diff != "" {
		t.Errorf("wires mismatch (-want +got):\n%s", diff)
	}

	assert.True(t, errors.Is(h.m.DrawWire(pt(1, 1), pt(2, 2)), ErrDegenerateWire))
	assert.Len(t, h.snapshots, 1)
}

func TestMoveStopsAtTeeJunction(t *testing.T) {
	h := newHarness(t)
	h.m.Load(nil, []wire.Wire{seg("W", pt(0, 0), pt(100, 0))})
	require.NoError(t, h.m.DrawWire(pt(30, 0), pt(30, 50)))
	_, err := h.m.PlaceComponent("resistor", pt(70, 0), 0)
	require.NoError(t, err)
	before := len(h.m.Nets())
	require.Equal(t, 2, before)

	kind, err := h.m.BeginMove("R1")
	require.NoError(t, err)
	require.Equal(t, MoveCollapse, kind)
	assert.Contains(t, points(h.m.Wires()), []geometry.Point{pt(0, 0), pt(30, 0)})
	assert.Contains(t, points(h.m.Wires()), []geometry.Point{pt(30, 0), pt(100, 0)})

	// The run ends at the tee, so the part stops short of it.
	ok, err := h.m.UpdateMove("R1", pt(30, 0))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, pt(40, 0), h.m.Component("R1").Center())

	require.NoError(t, h.m.FinishMove("R1"))
	assert.ElementsMatch(t, [][]geometry.Point{
		{pt(0, 0), pt(30, 0)},
		{pt(30, 0), pt(30, 50)},
		{pt(50, 0), pt(100, 0)},
	}, points(h.m.Wires()))
	assert.Len(t, h.m.Nets(), before)
}

func TestDeleteWire(t *testing.T) {
	h := newHarness(t)
	h.m.Load(nil, []wire.Wire{
		seg("A", pt(0, 0), pt(50, 0)),
		seg("B", pt(0, 50), pt(50, 50)),
	})

	require.NoError(t, h.m.DeleteWire("A"))
	assert.Equal(t, [][]geometry.Point{{pt(0, 50), pt(50, 50)}}, points(h.m.Wires()))
	assert.True(t, errors.Is(h.m.DeleteWire("A"), ErrUnknownWire))
}

func TestNetsNameGround(t *testing.T) {
	h := newHarness(t)
	h.m.Load(nil, []wire.Wire{
		seg("W", pt(0, 0), pt(100, 0)),
		seg("X", pt(0, 50), pt(100, 50)),
	})
	require.NoError(t, h.m.DrawWire(pt(50, 0), pt(50, 30)))
	_, err := h.m.PlaceComponent("ground", pt(0, 0), 0)
	require.NoError(t, err)

	nets := h.m.AssignNets()
	require.Len(t, nets, 2)
	assert.Equal(t, netlist.GroundName, nets[0].Name)
	assert.Len(t, nets[0].WireIDs, 3)
	assert.Equal(t, []netlist.PinRef{{ComponentID: "GND1", Pin: 0}}, nets[0].Pins)
	assert.Equal(t, "net-002", nets[1].Name)

	for _, w := range h.m.Wires() {
		if w.ID == "X" {
			assert.Equal(t, "net-002", w.NetID)
		} else {
			assert.Equal(t, netlist.GroundName, w.NetID)
		}
	}
}

func TestRestoreSnapshot(t *testing.T) {
	h := newHarness(t)
	placeOnWire(t, h)
	require.Len(t, h.snapshots, 1)

	h.m.Restore(h.snapshots[0])
	assert.Empty(t, h.m.Components())
	assert.Equal(t, [][]geometry.Point{{pt(0, 0), pt(100, 0)}}, points(h.m.Wires()))
	assert.Nil(t, h.m.Topology().SWPForComponent("R1"))
}
