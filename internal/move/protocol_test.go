package move

import (
	"errors"
	"io"
	"log"
	"testing"

	"schematic-editor/internal/component"
	"schematic-editor/internal/topology"
	"schematic-editor/internal/wire"
	"schematic-editor/pkg/geometry"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pt = geometry.Pt

var strokeCmp = cmp.Comparer(func(a, b wire.Stroke) bool { return a.Equal(b) })

var (
	s1 = wire.Stroke{Width: wire.Set(2.0), Color: wire.Set("red")}
	s2 = wire.Stroke{Style: wire.Set(wire.StyleDash)}
)

func seg(id string, a, b geometry.Point, s wire.Stroke) wire.Wire {
	return wire.Wire{ID: id, Points: []geometry.Point{a, b}, Stroke: s}
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.Logger = log.New(io.Discard, "", 0)
	return opts
}

// embedded returns a resistor bridged between two wires on y=0.
func embedded() ([]*component.Component, []wire.Wire) {
	r := component.New("R", component.TypeResistor, 50, 0)
	wires := []wire.Wire{
		seg("A", pt(0, 0), pt(40, 0), s1),
		seg("B", pt(60, 0), pt(100, 0), s2),
	}
	return []*component.Component{r}, wires
}

func build(comps []*component.Component, wires []wire.Wire) *topology.Topology {
	return topology.Build(comps, wires, topology.DefaultOptions())
}

func TestMoveAndReconstruct(t *testing.T) {
	comps, wires := embedded()
	r := comps[0]
	p := NewProtocol(wire.NewSequence("m"), testOptions())

	collapsed, err := p.Begin(comps, wires, build(comps, wires), r)
	require.NoError(t, err)
	require.Len(t, collapsed, 1)
	assert.Equal(t, []geometry.Point{pt(0, 0), pt(100, 0)}, collapsed[0].Points)

	ctx := p.Active()
	require.NotNil(t, ctx)
	assert.Equal(t, 10.0, ctx.MinCenter)
	assert.Equal(t, 90.0, ctx.MaxCenter)
	assert.Len(t, ctx.OriginalSegments, 2)

	ok, err := p.Update(comps, r, pt(55, 0))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, pt(55, 0), r.Center())

	got, err := p.Finish(comps, collapsed, r)
	require.NoError(t, err)
	want := []wire.Wire{
		seg("A", pt(0, 0), pt(45, 0), s1),
		seg("B", pt(65, 0), pt(100, 0), s2),
	}
	if diff := cmp.Diff(want, got, strokeCmp); diff != "" {
		t.Errorf("reconstruction mismatch (-want +got):\n%s", diff)
	}
	assert.Nil(t, p.Active())
}

func TestZeroNetMoveConservesWires(t *testing.T) {
	comps, wires := embedded()
	r := comps[0]
	p := NewProtocol(wire.NewSequence("m"), testOptions())

	collapsed, err := p.Begin(comps, wires, build(comps, wires), r)
	require.NoError(t, err)
	_, err = p.Update(comps, r, pt(75, 0))
	require.NoError(t, err)
	_, err = p.Update(comps, r, pt(50, 0))
	require.NoError(t, err)

	got, err := p.Finish(comps, collapsed, r)
	require.NoError(t, err)
	if diff := cmp.Diff(wires, got, strokeCmp); diff != "" {
		t.Errorf("zero-net move changed wires (-before +after):\n%s", diff)
	}
	assert.Equal(t, wire.TotalLength(wires), wire.TotalLength(got))
}

func TestUpdateRejectsTouchingPins(t *testing.T) {
	r1 := component.New("R1", component.TypeResistor, 30, 0)
	r2 := component.New("R2", component.TypeResistor, 50, 0)
	comps := []*component.Component{r1, r2}
	wires := []wire.Wire{seg("w", pt(0, 0), pt(100, 0), wire.Stroke{})}
	p := NewProtocol(wire.NewSequence("m"), testOptions())

	collapsed, err := p.Begin(comps, wires, build(comps, wires), r1)
	require.NoError(t, err)
	assert.Equal(t, 10.0, p.Active().MinCenter)
	assert.Equal(t, 30.0, p.Active().MaxCenter)

	ok, err := p.Update(comps, r1, pt(35, 0))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, pt(30, 0), r1.Center())

	ok, err = p.Update(comps, r1, pt(20, 0))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, pt(20, 0), r1.Center())

	got, err := p.Finish(comps, collapsed, r1)
	require.NoError(t, err)
	want := []wire.Wire{
		seg("w", pt(0, 0), pt(10, 0), wire.Stroke{}),
		seg("m2", pt(30, 0), pt(40, 0), wire.Stroke{}),
		seg("m3", pt(60, 0), pt(100, 0), wire.Stroke{}),
	}
	if diff := cmp.Diff(want, got, strokeCmp); diff != "" {
		t.Errorf("reconstruction mismatch (-want +got):\n%s", diff)
	}
}

func TestPinSpansNeverOverlap(t *testing.T) {
	r1 := component.New("R1", component.TypeResistor, 30, 0)
	r2 := component.New("R2", component.TypeResistor, 70, 0)
	comps := []*component.Component{r1, r2}
	wires := []wire.Wire{seg("w", pt(0, 0), pt(100, 0), wire.Stroke{})}
	p := NewProtocol(wire.NewSequence("m"), testOptions())

	_, err := p.Begin(comps, wires, build(comps, wires), r1)
	require.NoError(t, err)
	for x := -50.0; x <= 150; x += 7 {
		_, err := p.Update(comps, r1, pt(x, 3))
		require.NoError(t, err)

		lo1, hi1 := r1.Span(geometry.AxisX)
		lo2, hi2 := r2.Span(geometry.AxisX)
		assert.Zero(t, geometry.Overlap(lo1, hi1, lo2, hi2), "candidate %g", x)
		assert.Equal(t, 0.0, r1.Y, "component leaves the run")
		assert.GreaterOrEqual(t, lo1, 0.0)
	}
}

func TestBeginIsIdempotent(t *testing.T) {
	comps, wires := embedded()
	snapshots := 0
	opts := testOptions()
	opts.OnSnapshot = func() { snapshots++ }
	p := NewProtocol(wire.NewSequence("m"), opts)
	topo := build(comps, wires)

	first, err := p.Begin(comps, wires, topo, comps[0])
	require.NoError(t, err)
	again, err := p.Begin(comps, first, topo, comps[0])
	require.NoError(t, err)
	assert.Equal(t, first, again)
	assert.Equal(t, 1, snapshots)

	other := component.New("C1", component.TypeCapacitor, 0, 50)
	_, err = p.Begin(append(comps, other), first, topo, other)
	assert.True(t, errors.Is(err, ErrMoveInProgress))
}

func TestBeginNotApplicable(t *testing.T) {
	r := component.New("R", component.TypeResistor, 50, 50)
	wires := []wire.Wire{seg("w", pt(0, 0), pt(100, 0), wire.Stroke{})}
	called := false
	opts := testOptions()
	opts.OnSnapshot = func() { called = true }
	p := NewProtocol(wire.NewSequence("m"), opts)

	_, err := p.Begin([]*component.Component{r}, wires, build([]*component.Component{r}, wires), r)
	assert.True(t, errors.Is(err, ErrNotApplicable))
	assert.False(t, called)
	assert.Nil(t, p.Active())
}

func TestNoActiveMove(t *testing.T) {
	comps, wires := embedded()
	p := NewProtocol(wire.NewSequence("m"), testOptions())

	_, err := p.Update(comps, comps[0], pt(0, 0))
	assert.True(t, errors.Is(err, ErrNoActiveMove))
	_, err = p.Finish(comps, wires, comps[0])
	assert.True(t, errors.Is(err, ErrNoActiveMove))
	_, err = p.Abort(comps[0])
	assert.True(t, errors.Is(err, ErrNoActiveMove))
}

func TestAbortRestoresSnapshot(t *testing.T) {
	comps, wires := embedded()
	r := comps[0]
	p := NewProtocol(wire.NewSequence("m"), testOptions())

	_, err := p.Begin(comps, wires, build(comps, wires), r)
	require.NoError(t, err)
	_, err = p.Update(comps, r, pt(80, 0))
	require.NoError(t, err)
	require.Equal(t, pt(80, 0), r.Center())

	got, err := p.Abort(r)
	require.NoError(t, err)
	assert.Equal(t, pt(50, 0), r.Center())
	if diff := cmp.Diff(wires, got, strokeCmp); diff != "" {
		t.Errorf("abort mismatch (-want +got):\n%s", diff)
	}
	assert.Nil(t, p.Active())
}

func TestUpdateSnapsCandidate(t *testing.T) {
	comps, wires := embedded()
	r := comps[0]
	opts := testOptions()
	opts.Snap = func(p geometry.Point) geometry.Point { return geometry.Snap(p, 5) }
	p := NewProtocol(wire.NewSequence("m"), opts)

	_, err := p.Begin(comps, wires, build(comps, wires), r)
	require.NoError(t, err)
	ok, err := p.Update(comps, r, pt(63.4, 7))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, pt(65, 0), r.Center())
}

func TestCollapseOfThreeStyles(t *testing.T) {
	red := wire.Stroke{Color: wire.Set("red")}
	blue := wire.Stroke{Color: wire.Set("blue")}
	green := wire.Stroke{Color: wire.Set("green")}
	r := component.New("R", component.TypeResistor, 50, 0)
	comps := []*component.Component{r}
	wires := []wire.Wire{
		seg("a", pt(0, 0), pt(30, 0), red),
		seg("b", pt(30, 0), pt(70, 0), blue),
		seg("c", pt(70, 0), pt(100, 0), green),
	}
	p := NewProtocol(wire.NewSequence("m"), testOptions())

	collapsed, err := p.Begin(comps, wires, build(comps, wires), r)
	require.NoError(t, err)
	require.Len(t, p.Active().OriginalSegments, 3)
	_, err = p.Update(comps, r, pt(20, 0))
	require.NoError(t, err)

	got, err := p.Finish(comps, collapsed, r)
	require.NoError(t, err)
	want := []wire.Wire{
		seg("a", pt(0, 0), pt(10, 0), red),
		seg("b", pt(30, 0), pt(100, 0), blue),
	}
	if diff := cmp.Diff(want, got, strokeCmp); diff != "" {
		t.Errorf("reconstruction mismatch (-want +got):\n%s", diff)
	}
}

func TestProvenanceFallbacks(t *testing.T) {
	ctx := &Context{
		Axis: geometry.AxisX,
		OriginalSegments: []OriginalSegment{
			{WireID: "s0", A: pt(0, 0), B: pt(20, 0), Lo: 0, Hi: 20},
			{WireID: "s1", A: pt(80, 0), B: pt(100, 0), Lo: 80, Hi: 100},
		},
	}
	tests := []struct {
		name      string
		lo, hi    float64
		threshold float64
		want      int
	}{
		{"nearest within threshold", 10, 70, 50, 0},
		{"overlap low", 10, 70, 1, 0},
		{"overlap high", 30, 95, 1, 1},
		{"midpoint", 45, 60, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ctx.provenance(tt.lo, tt.hi, tt.threshold))
		})
	}
}

func TestVerticalRun(t *testing.T) {
	r := component.New("R", component.TypeResistor, 0, 50)
	r.Rotation = 90
	comps := []*component.Component{r}
	wires := []wire.Wire{
		seg("A", pt(0, 0), pt(0, 40), s1),
		seg("B", pt(0, 100), pt(0, 60), s2),
	}
	p := NewProtocol(wire.NewSequence("m"), testOptions())

	collapsed, err := p.Begin(comps, wires, build(comps, wires), r)
	require.NoError(t, err)
	assert.Equal(t, geometry.AxisY, p.Active().Axis)
	_, err = p.Update(comps, r, pt(4, 30))
	require.NoError(t, err)
	assert.Equal(t, pt(0, 30), r.Center())

	got, err := p.Finish(comps, collapsed, r)
	require.NoError(t, err)
	want := []wire.Wire{
		seg("A", pt(0, 0), pt(0, 20), s1),
		seg("B", pt(0, 40), pt(0, 100), s2),
	}
	if diff := cmp.Diff(want, got, strokeCmp); diff != "" {
		t.Errorf("reconstruction mismatch (-want +got):\n%s", diff)
	}
}
