package wire

import (
	"testing"

	"schematic-editor/pkg/geometry"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestNormalizePolyline(t *testing.T) {
	tests := []struct {
		name string
		in   []geometry.Point
		want []geometry.Point
	}{
		{"straight run", []geometry.Point{pt(0, 0), pt(5, 0), pt(10, 0)}, []geometry.Point{pt(0, 0), pt(10, 0)}},
		{"duplicates", []geometry.Point{pt(0, 0), pt(0, 0), pt(10, 0), pt(10, 0)}, []geometry.Point{pt(0, 0), pt(10, 0)}},
		{"corner kept", []geometry.Point{pt(0, 0), pt(10, 0), pt(10, 10)}, []geometry.Point{pt(0, 0), pt(10, 0), pt(10, 10)}},
		{"reversal folded", []geometry.Point{pt(0, 0), pt(10, 0), pt(5, 0)}, []geometry.Point{pt(0, 0), pt(5, 0)}},
		{"reversal past start", []geometry.Point{pt(0, 0), pt(10, 0), pt(-5, 0)}, []geometry.Point{pt(0, 0), pt(-5, 0)}},
		{"back to start", []geometry.Point{pt(0, 0), pt(10, 0), pt(0, 0)}, nil},
		{"reversal then corner", []geometry.Point{pt(0, 0), pt(10, 0), pt(5, 0), pt(5, 10)}, []geometry.Point{pt(0, 0), pt(5, 0), pt(5, 10)}},
		{"diagonal straight", []geometry.Point{pt(0, 0), pt(2, 2), pt(4, 4)}, []geometry.Point{pt(0, 0), pt(4, 4)}},
		{"single point", []geometry.Point{pt(1, 1)}, nil},
		{"zero length", []geometry.Point{pt(1, 1), pt(1, 1), pt(1, 1)}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePolyline(tt.in))
		})
	}
}

func TestNormalizeAllSplitsPerSegment(t *testing.T) {
	ids := NewSequence("n")
	s := Stroke{Color: Set("red")}
	in := []Wire{
		{ID: "L", Points: []geometry.Point{pt(0, 0), pt(5, 0), pt(10, 0), pt(10, 10)}, Stroke: s, NetID: "N1"},
		{ID: "S", Points: []geometry.Point{pt(0, 5), pt(0, 5), pt(20, 5)}},
		{ID: "D", Points: []geometry.Point{pt(3, 3), pt(3, 3)}},
	}
	got := NormalizeAll(in, ids)
	want := []Wire{
		{ID: "n1", Points: []geometry.Point{pt(0, 0), pt(10, 0)}, Stroke: s, NetID: "N1"},
		{ID: "n2", Points: []geometry.Point{pt(10, 0), pt(10, 10)}, Stroke: s, NetID: "N1"},
		{ID: "S", Points: []geometry.Point{pt(0, 5), pt(20, 5)}},
	}
	if diff := cmp.Diff(want, got, strokeCmp); diff != "" {
		t.Errorf("NormalizeAll mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeAllNoDoubledStretch(t *testing.T) {
	ids := NewSequence("n")
	in := []Wire{{ID: "r", Points: []geometry.Point{pt(0, 0), pt(10, 0), pt(5, 0), pt(5, 10)}}}
	got := NormalizeAll(in, ids)
	want := []Wire{
		{ID: "n1", Points: []geometry.Point{pt(0, 0), pt(5, 0)}},
		{ID: "n2", Points: []geometry.Point{pt(5, 0), pt(5, 10)}},
	}
	if diff := cmp.Diff(want, got, strokeCmp); diff != "" {
		t.Errorf("NormalizeAll mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeAllIdempotent(t *testing.T) {
	ids := NewSequence("n")
	in := []Wire{
		{ID: "a", Points: []geometry.Point{pt(0, 0), pt(0, 0), pt(10, 0), pt(20, 0), pt(20, 30), pt(20, 40)}},
		{ID: "b", Points: []geometry.Point{pt(5, 5), pt(15, 15), pt(25, 25)}},
		{ID: "c", Points: []geometry.Point{pt(0, 0), pt(10, 0), pt(5, 0)}},
		{ID: "d", Points: []geometry.Point{pt(7, 7)}},
	}
	once := NormalizeAll(in, ids)
	twice := NormalizeAll(once, ids)
	if diff := cmp.Diff(once, twice, strokeCmp); diff != "" {
		t.Errorf("second pass changed wires (-once +twice):\n%s", diff)
	}
	for _, w := range once {
		assert.Len(t, w.Points, 2, w.ID)
	}
}

func TestDedupe(t *testing.T) {
	in := []Wire{
		seg("a", pt(0, 0), pt(10, 0)),
		seg("b", pt(10, 0), pt(0, 0)),
		seg("c", pt(0, 0), pt(0, 10)),
	}
	got := Dedupe(in)
	assert.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
}
