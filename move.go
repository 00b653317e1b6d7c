package cubesim

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/SeamusWaldron/cubesim/internal/cube"
	"github.com/SeamusWaldron/cubesim/pkg/types"
)

// Types shared with the internal model.
type (
	Face      = types.Face
	Direction = types.Direction
	Axis      = types.Axis
	Move      = types.Move
	Source    = types.Source

	Slot      = cube.Slot
	Coord     = cube.Coord
	Cubie     = cube.Cubie
	Table     = cube.Table
	Transform = cube.Transform
)

// Faces, one per key.
const (
	FaceQ = types.FaceQ
	FaceW = types.FaceW
	FaceE = types.FaceE
	FaceA = types.FaceA
	FaceS = types.FaceS
	FaceD = types.FaceD
	FaceZ = types.FaceZ
	FaceX = types.FaceX
	FaceC = types.FaceC
)

// Directions.
const (
	Forward  = types.Forward
	Reversed = types.Reversed
)

// Move sources.
const (
	SourceLive   = types.SourceLive
	SourceReplay = types.SourceReplay
	SourceRemote = types.SourceRemote
)

// Lattice constants.
const (
	SlotCount  = cube.SlotCount
	CubieCount = cube.CubieCount
	CenterSlot = cube.CenterSlot
	NoCubie    = cube.NoCubie
)

// PopulatedSlots returns the 26 slots that hold a cubie.
func PopulatedSlots() []Slot {
	return cube.PopulatedSlots()
}

// SolvedTable returns the identity table.
func SolvedTable() Table {
	return cube.Solved()
}

// ParseKey maps a key to a move. The nine face keys turn forward; their
// upper case (shift) forms turn reversed.
func ParseKey(r rune) (Move, error) {
	reversed := unicode.IsUpper(r)
	face, ok := types.FaceForKey(unicode.ToLower(r))
	if !ok {
		return Move{}, fmt.Errorf("%w: %q", ErrUnknownKey, r)
	}
	return Move{Face: face, Direction: types.DirectionOf(reversed)}, nil
}

// FormatMoves formats a slice of moves as a space-separated notation string.
func FormatMoves(moves []Move) string {
	if len(moves) == 0 {
		return ""
	}

	parts := make([]string, len(moves))
	for i, m := range moves {
		parts[i] = m.Notation()
	}

	return strings.Join(parts, " ")
}
