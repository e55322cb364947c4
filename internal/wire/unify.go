package wire

import (
	"log"
	"sort"

	"schematic-editor/pkg/geometry"
)

// Unifier merges straight wires that continue each other through a plain
// junction.
type Unifier struct {
	IDs       IDGenerator
	Tolerance float64
	Logger    *log.Logger
}

// UnifyInline merges every chain of collinear wires whose shared nodes are
// touched by exactly two wire ends and by no component pin.
func UnifyInline(wires []Wire, pins []geometry.Point, ids IDGenerator, tol float64) []Wire {
	return Unifier{IDs: ids, Tolerance: tol}.Unify(wires, pins)
}

type lineKey struct {
	axis   geometry.Axis
	across float64
}

type run struct {
	idx    int
	lo, hi float64
}

// Unify normalizes wires, then sweeps each horizontal and vertical line
// once in ascending order, joining runs that meet end to end at a
// mergeable node. A merged chain keeps the ID, stroke and net of its
// earliest member in the input order and takes that member's slot.
func (u Unifier) Unify(wires []Wire, pins []geometry.Point) []Wire {
	ws := NormalizeAll(wires, u.IDs)

	ends := make(map[geometry.Point]int, 2*len(ws))
	for _, w := range ws {
		ends[w.First()]++
		ends[w.Last()]++
	}
	onPin := func(p geometry.Point) bool {
		for _, pin := range pins {
			if p.Eq(pin, u.Tolerance) {
				return true
			}
		}
		return false
	}

	lines := make(map[lineKey][]run)
	var keys []lineKey
	for i, w := range ws {
		axis := geometry.AxisOf(w.First(), w.Last())
		if axis == geometry.AxisNone {
			continue
		}
		k := lineKey{axis: axis, across: w.First().Across(axis)}
		if _, ok := lines[k]; !ok {
			keys = append(keys, k)
		}
		lo, hi := geometry.Interval(w.First(), w.Last(), axis)
		lines[k] = append(lines[k], run{idx: i, lo: lo, hi: hi})
	}

	// chainOf maps a member index to the earliest index of its chain.
	chainOf := make(map[int]int)
	merged := make(map[int]Wire)

	for _, k := range keys {
		runs := lines[k]
		sort.Slice(runs, func(i, j int) bool {
			if runs[i].lo != runs[j].lo {
				return runs[i].lo < runs[j].lo
			}
			return runs[i].hi < runs[j].hi
		})

		chain := []run{runs[0]}
		flush := func() {
			if len(chain) > 1 {
				u.emitChain(ws, k, chain, chainOf, merged)
			}
		}
		for _, r := range runs[1:] {
			last := chain[len(chain)-1]
			if r.lo < last.hi && u.Logger != nil {
				u.Logger.Printf("unify: overlapping wires %s and %s on %s=%g",
					ws[last.idx].ID, ws[r.idx].ID, acrossName(k.axis), k.across)
			}
			join := geometry.PointOn(k.axis, last.hi, k.across)
			if r.lo == last.hi && ends[join] == 2 && !onPin(join) {
				chain = append(chain, r)
				continue
			}
			flush()
			chain = []run{r}
		}
		flush()
	}

	if len(chainOf) == 0 {
		return ws
	}
	out := make([]Wire, 0, len(ws)-len(chainOf)+len(merged))
	for i, w := range ws {
		head, inChain := chainOf[i]
		switch {
		case !inChain:
			out = append(out, w)
		case head == i:
			out = append(out, merged[i])
		}
	}
	return out
}

// emitChain records the merged wire for a chain of touching runs.
func (u Unifier) emitChain(ws []Wire, k lineKey, chain []run, chainOf map[int]int, merged map[int]Wire) {
	head := chain[0].idx
	for _, r := range chain[1:] {
		if r.idx < head {
			head = r.idx
		}
	}
	for _, r := range chain {
		chainOf[r.idx] = head
	}

	primary := ws[head]
	a := geometry.PointOn(k.axis, chain[0].lo, k.across)
	b := geometry.PointOn(k.axis, chain[len(chain)-1].hi, k.across)
	if primary.First().Along(k.axis) > primary.Last().Along(k.axis) {
		a, b = b, a
	}
	merged[head] = primary.withPoints(primary.ID, []geometry.Point{a, b})
}

func acrossName(axis geometry.Axis) string {
	if axis == geometry.AxisY {
		return "x"
	}
	return "y"
}
