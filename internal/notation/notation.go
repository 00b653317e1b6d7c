// Package notation simplifies and describes recorded move sequences.
package notation

import (
	"fmt"

	"github.com/SeamusWaldron/cubesim/pkg/types"
)

// Simplify merges runs of turns on the same face. A turn followed by its
// inverse cancels, four equal turns cancel, three equal turns become one
// turn the other way. Half turns stay as two quarter turns.
func Simplify(moves []types.Move) []types.Move {
	type run struct {
		face types.Face
		net  int
	}

	var runs []run
	for _, m := range moves {
		if n := len(runs); n > 0 && runs[n-1].face == m.Face {
			runs[n-1].net += int(m.Direction)
			if normalize(runs[n-1].net) == 0 {
				runs = runs[:n-1]
			}
			continue
		}
		runs = append(runs, run{face: m.Face, net: int(m.Direction)})
	}

	out := make([]types.Move, 0, len(moves))
	for _, r := range runs {
		switch normalize(r.net) {
		case 1:
			out = append(out, types.Move{Face: r.face, Direction: types.Forward})
		case -1:
			out = append(out, types.Move{Face: r.face, Direction: types.Reversed})
		case 2:
			m := types.Move{Face: r.face, Direction: types.Forward}
			out = append(out, m, m)
		}
	}
	return out
}

// normalize reduces a net quarter-turn count to -1, 0, 1 or 2.
func normalize(net int) int {
	net = ((net % 4) + 4) % 4
	if net == 3 {
		return -1
	}
	return net
}

var layerNames = map[types.Face]string{
	types.FaceQ: "left",
	types.FaceW: "middle",
	types.FaceE: "right",
	types.FaceA: "back",
	types.FaceS: "standing",
	types.FaceD: "front",
	types.FaceZ: "bottom",
	types.FaceX: "equator",
	types.FaceC: "top",
}

// Describe returns a readable description of a move.
// Examples: "left layer forward", "top layer reversed"
func Describe(m types.Move) string {
	name, ok := layerNames[m.Face]
	if !ok {
		return m.Notation()
	}
	return fmt.Sprintf("%s layer %s", name, m.Direction)
}
