// Package types contains shared type definitions for the cubesim module.
package types

import (
	"errors"
	"fmt"
)

// ErrInvalidMove is returned when a move names an unknown face or direction.
var ErrInvalidMove = errors.New("types: invalid move")

// Face identifies one of the nine rotatable layers of the puzzle.
// Each layer is named after the key that turns it.
type Face uint8

const (
	FaceQ Face = iota // x = -1 layer
	FaceW             // x = 0 layer
	FaceE             // x = +1 layer
	FaceA             // z = -1 layer
	FaceS             // z = 0 layer
	FaceD             // z = +1 layer
	FaceZ             // y = -1 layer
	FaceX             // y = 0 layer
	FaceC             // y = +1 layer

	faceCount
)

var faceKeys = [faceCount]rune{'q', 'w', 'e', 'a', 's', 'd', 'z', 'x', 'c'}

// Faces returns all nine faces in key order.
func Faces() []Face {
	faces := make([]Face, 0, faceCount)
	for f := Face(0); f < faceCount; f++ {
		faces = append(faces, f)
	}
	return faces
}

// Valid reports whether f is one of the nine defined faces.
func (f Face) Valid() bool {
	return f < faceCount
}

// Key returns the lower case key bound to the face.
func (f Face) Key() rune {
	if !f.Valid() {
		return '?'
	}
	return faceKeys[f]
}

func (f Face) String() string {
	return string(f.Key())
}

// FaceForKey returns the face bound to a lower case key.
func FaceForKey(r rune) (Face, bool) {
	for f, k := range faceKeys {
		if k == r {
			return Face(f), true
		}
	}
	return 0, false
}

// Axis is a rotation axis of the lattice.
type Axis uint8

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	default:
		return "?"
	}
}

// Direction is the direction of a quarter turn.
type Direction int

const (
	Forward  Direction = 1  // Unshifted key
	Reversed Direction = -1 // Shift+key
)

// Valid reports whether d is Forward or Reversed.
func (d Direction) Valid() bool {
	return d == Forward || d == Reversed
}

// Invert returns the opposite direction.
func (d Direction) Invert() Direction {
	return -d
}

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Reversed:
		return "reversed"
	default:
		return "unknown"
	}
}

// DirectionOf maps the shift modifier to a direction.
func DirectionOf(reversed bool) Direction {
	if reversed {
		return Reversed
	}
	return Forward
}

// Move is a single quarter turn of one face. It is also the history entry
// recorded for every accepted live command.
type Move struct {
	Face      Face      `json:"face"`
	Direction Direction `json:"direction"`
}

// Validate returns ErrInvalidMove if the face or direction is out of range.
func (m Move) Validate() error {
	if !m.Face.Valid() {
		return fmt.Errorf("%w: face %d", ErrInvalidMove, m.Face)
	}
	if !m.Direction.Valid() {
		return fmt.Errorf("%w: direction %d", ErrInvalidMove, m.Direction)
	}
	return nil
}

// Notation returns the key-based notation for this move.
// Examples: q, q', d, d'
func (m Move) Notation() string {
	if m.Direction == Reversed {
		return m.Face.String() + "'"
	}
	return m.Face.String()
}

// Inverse returns the inverse of this move.
// q becomes q', q' becomes q.
func (m Move) Inverse() Move {
	inv := m
	inv.Direction = m.Direction.Invert()
	return inv
}

// String returns the notation string (alias for Notation).
func (m Move) String() string {
	return m.Notation()
}

// Source identifies who issued a move.
type Source string

const (
	SourceLive   Source = "live"   // Keyboard or network input
	SourceReplay Source = "replay" // Undo step issued by a replay
	SourceRemote Source = "remote" // Smart cube over BLE
)
