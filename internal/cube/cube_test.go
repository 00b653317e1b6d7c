package cube

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/SeamusWaldron/cubesim/pkg/types"
)

var directions = []types.Direction{types.Forward, types.Reversed}

func mustApply(t *testing.T, tbl *Table, m types.Move) {
	t.Helper()
	if err := Apply(tbl, m); err != nil {
		t.Fatalf("Apply(%s) failed: %v", m, err)
	}
}

// scrambled returns a table reached by n pseudo-random quarter turns.
func scrambled(t *testing.T, seed int64, n int) Table {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	tbl := Solved()
	faces := types.Faces()
	for i := 0; i < n; i++ {
		m := types.Move{Face: faces[rng.Intn(len(faces))], Direction: directions[rng.Intn(2)]}
		mustApply(t, &tbl, m)
	}
	return tbl
}

func TestSolvedTableIsValid(t *testing.T) {
	tbl := Solved()
	if err := tbl.Validate(); err != nil {
		t.Fatalf("solved table should be valid: %v", err)
	}
	if !tbl.IsSolved() {
		t.Error("solved table should report solved")
	}
	if tbl.At(CenterSlot) != NoCubie {
		t.Error("center slot should be empty")
	}
}

func TestSlotCoordRoundTrip(t *testing.T) {
	for s := Slot(0); s < SlotCount; s++ {
		c := s.Coord()
		if !c.Valid() {
			t.Errorf("slot %d has invalid coord %+v", s, c)
		}
		if got := c.Slot(); got != s {
			t.Errorf("slot %d -> %+v -> %d", s, c, got)
		}
	}
	if SlotOf(0, 0, 0) != CenterSlot {
		t.Error("origin should map to the center slot")
	}
	if len(PopulatedSlots()) != CubieCount {
		t.Errorf("expected %d populated slots, got %d", CubieCount, len(PopulatedSlots()))
	}
}

func TestSelectionMembership(t *testing.T) {
	for _, f := range types.Faces() {
		sel, ok := Select(f)
		if !ok {
			t.Fatalf("no selection for %s", f)
		}
		if sel.Contains(CenterSlot) {
			t.Errorf("%s should never contain the center slot", f)
		}

		layer := sel.Layer()
		middle := layer[4] == CenterSlot
		want := 9
		if middle {
			want = 8
		}
		if got := len(sel.Members()); got != want {
			t.Errorf("%s: expected %d members, got %d", f, want, got)
		}

		// Every layer position shares the coordinate on the face axis.
		axisValue := func(s Slot) int {
			c := s.Coord()
			switch sel.Axis {
			case types.AxisX:
				return c.X
			case types.AxisY:
				return c.Y
			default:
				return c.Z
			}
		}
		for _, s := range layer {
			if axisValue(s) != axisValue(layer[0]) {
				t.Errorf("%s: slot %d is not in the same layer as slot %d", f, s, layer[0])
			}
		}
	}

	if _, ok := Select(types.Face(42)); ok {
		t.Error("unknown face should not select a layer")
	}
}

func TestEachSlotInOneLayerPerAxis(t *testing.T) {
	for _, s := range PopulatedSlots() {
		counts := map[types.Axis]int{}
		for _, f := range types.Faces() {
			sel, _ := Select(f)
			if sel.Contains(s) {
				counts[sel.Axis]++
			}
		}
		for _, axis := range []types.Axis{types.AxisX, types.AxisY, types.AxisZ} {
			if counts[axis] != 1 {
				t.Errorf("slot %d is in %d layers on axis %s", s, counts[axis], axis)
			}
		}
	}
}

func TestQuarterTurnOrderFour_AllFaces(t *testing.T) {
	start := scrambled(t, 7, 30)
	for _, f := range types.Faces() {
		for _, d := range directions {
			tbl := start
			m := types.Move{Face: f, Direction: d}
			for i := 0; i < 4; i++ {
				mustApply(t, &tbl, m)
				if i < 3 && tbl == start {
					t.Errorf("%s applied %d times should not be the identity", m, i+1)
				}
			}
			if tbl != start {
				t.Errorf("%s x 4 should restore the table", m)
				t.Log(tbl.String())
			}
		}
	}
}

func TestInverseCancels_AllFaces(t *testing.T) {
	start := scrambled(t, 11, 40)
	for _, f := range types.Faces() {
		for _, d := range directions {
			tbl := start
			m := types.Move{Face: f, Direction: d}
			mustApply(t, &tbl, m)
			mustApply(t, &tbl, m.Inverse())
			if tbl != start {
				t.Errorf("%s then %s should restore the table", m, m.Inverse())
			}
		}
	}
}

func TestApplyTouchesOnlyRing(t *testing.T) {
	start := scrambled(t, 3, 25)
	for _, f := range types.Faces() {
		sel, _ := Select(f)
		layerCenter := sel.Layer()[4]
		for _, d := range directions {
			tbl := start
			mustApply(t, &tbl, types.Move{Face: f, Direction: d})
			if err := tbl.Validate(); err != nil {
				t.Fatalf("%s%v broke the bijection: %v", f, d, err)
			}
			changed := tbl.Diff(&start)
			if len(changed) != 8 {
				t.Errorf("%s: expected 8 slots to change, got %d", f, len(changed))
			}
			for _, s := range changed {
				if !sel.Contains(s) {
					t.Errorf("%s changed slot %d outside its layer", f, s)
				}
				if s == layerCenter || s == CenterSlot {
					t.Errorf("%s moved the layer center %d", f, s)
				}
			}
		}
	}
}

func TestApplyMatchesRotationGeometry(t *testing.T) {
	for _, f := range types.Faces() {
		sel, _ := Select(f)
		for _, d := range directions {
			tbl := Solved()
			mustApply(t, &tbl, types.Move{Face: f, Direction: d})

			quarter := Transform{Axis: sel.Axis, Angle: float64(sel.EffectiveSign(d)) * math.Pi / 2}
			for _, from := range sel.Members() {
				v := quarter.Apply(from.Coord().Vec())
				to := SlotOf(int(math.Round(v[0])), int(math.Round(v[1])), int(math.Round(v[2])))
				if got := tbl.At(to); got != Cubie(from) {
					t.Errorf("%s %v: cubie %d should rotate to slot %d, found %d there", f, d, from, to, got)
				}
			}
		}
	}
}

func TestQuarterTurnQ(t *testing.T) {
	tbl := Solved()
	mustApply(t, &tbl, types.Move{Face: types.FaceQ, Direction: types.Forward})

	// +90 degrees about X: (y, z) -> (-z, y).
	want := map[Slot]Cubie{
		6:  0,  // (-1,-1) -> (1,-1)
		24: 6,  // (1,-1) -> (1,1)
		18: 24, // (1,1) -> (-1,1)
		0:  18, // (-1,1) -> (-1,-1)
		15: 3,  // (0,-1) -> (1,0)
		21: 15, // (1,0) -> (0,1)
		9:  21, // (0,1) -> (-1,0)
		3:  9,  // (-1,0) -> (0,-1)
		12: 12, // layer center
	}
	for s, c := range want {
		if got := tbl.At(s); got != c {
			t.Errorf("slot %d: expected cubie %d, got %d", s, c, got)
		}
	}
	for _, s := range PopulatedSlots() {
		if s%3 != 0 && tbl.At(s) != Cubie(s) {
			t.Errorf("slot %d outside the q layer should be unchanged", s)
		}
	}
}

func TestApplyRejectsInvalidTable(t *testing.T) {
	tbl := Solved()
	tbl[0] = tbl[1]
	before := tbl
	err := Apply(&tbl, types.Move{Face: types.FaceQ, Direction: types.Forward})
	if !errors.Is(err, ErrInvalidTable) {
		t.Fatalf("expected ErrInvalidTable, got %v", err)
	}
	if tbl != before {
		t.Error("table should be untouched on error")
	}

	tbl = Solved()
	if err := Apply(&tbl, types.Move{Face: types.FaceQ}); !errors.Is(err, types.ErrInvalidMove) {
		t.Errorf("expected ErrInvalidMove, got %v", err)
	}
}

func TestRandomSequencesStayBijective(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	tbl := Solved()
	h := NewHistory()
	faces := types.Faces()
	for i := 0; i < 500; i++ {
		m := types.Move{Face: faces[rng.Intn(len(faces))], Direction: directions[rng.Intn(2)]}
		mustApply(t, &tbl, m)
		h.Push(m)
		if err := tbl.Validate(); err != nil {
			t.Fatalf("move %d (%s): %v", i, m, err)
		}
	}

	if err := ApplyMoves(&tbl, h.Undo()); err != nil {
		t.Fatalf("undo failed: %v", err)
	}
	if !tbl.IsSolved() {
		t.Error("undoing the history should return to solved")
		t.Log(tbl.String())
	}
}

func TestLocate(t *testing.T) {
	tbl := Solved()
	mustApply(t, &tbl, types.Move{Face: types.FaceD, Direction: types.Reversed})
	for _, s := range PopulatedSlots() {
		got, ok := tbl.Locate(tbl.At(s))
		if !ok || got != s {
			t.Errorf("Locate(%d) = %d, %v; want %d", tbl.At(s), got, ok, s)
		}
	}
	if _, ok := tbl.Locate(Cubie(13)); ok {
		t.Error("no cubie 13 should exist")
	}
}
