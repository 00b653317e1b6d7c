package cube

import (
	"fmt"

	"github.com/SeamusWaldron/cubesim/pkg/types"
)

// ring lists the layer positions (indices into Selection.Layer) that a
// quarter turn permutes, walking once around the 3x3 grid:
//
//	0 1 2
//	3 4 5
//	6 7 8
//
// Position 4 is the layer center and never moves.
var ring = [8]int{0, 1, 2, 5, 8, 7, 6, 3}

// quarterStep is the number of ring cells a cubie travels in one quarter
// turn: a corner moves to the next corner, an edge to the next edge.
const quarterStep = 2

// Apply performs one quarter turn of m.Face in m.Direction on t.
//
// Forward moves each ring cubie quarterStep cells along the ring, reversed
// moves it back; geometrically this is a rotation by
// Selection.EffectiveSign * 90 degrees about the layer axis. Only the ring
// slots of the layer change. The table is left untouched on error.
func Apply(t *Table, m types.Move) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if err := t.Validate(); err != nil {
		return fmt.Errorf("failed to apply %s: %w", m.Notation(), err)
	}

	sel, _ := Select(m.Face)
	layer := sel.Layer()

	var before [8]Cubie
	for i, pos := range ring {
		before[i] = t[layer[pos]]
	}

	shift := quarterStep
	if m.Direction == types.Reversed {
		shift = len(ring) - quarterStep
	}
	for i, pos := range ring {
		t[layer[pos]] = before[(i-shift+len(ring))%len(ring)]
	}
	return nil
}

// ApplyMoves applies a sequence of moves to t, stopping at the first error.
func ApplyMoves(t *Table, moves []types.Move) error {
	for _, m := range moves {
		if err := Apply(t, m); err != nil {
			return err
		}
	}
	return nil
}
