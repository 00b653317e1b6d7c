package cube

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the cube package.
var (
	ErrInvalidTable  = errors.New("cube: slot table is not a bijection")
	ErrSessionActive = errors.New("cube: rotation already in progress")
)

// Cubie identifies one physical sub-cube. A cubie is named after the slot it
// occupies when the puzzle is solved, so identities are 0..26 without 13.
type Cubie int

// NoCubie fills the center slot.
const NoCubie Cubie = -1

// Home returns the slot the cubie occupies in the solved state.
func (c Cubie) Home() Slot {
	return Slot(c)
}

// Table maps every slot to the cubie currently occupying it.
//
// Layers are printed bottom (z = -1) to top, each as:
//
//	6 7 8
//	3 4 5
//	0 1 2
//
// where the numbers are positions within the layer (x to the right, y up).
type Table [SlotCount]Cubie

// Solved returns the identity table: slot i holds cubie i.
func Solved() Table {
	var t Table
	for s := Slot(0); s < SlotCount; s++ {
		if s.IsCenter() {
			t[s] = NoCubie
			continue
		}
		t[s] = Cubie(s)
	}
	return t
}

// At returns the cubie occupying slot s.
func (t *Table) At(s Slot) Cubie {
	return t[s]
}

// Locate returns the slot currently holding cubie c.
func (t *Table) Locate(c Cubie) (Slot, bool) {
	for s, occupant := range t {
		if occupant == c {
			return Slot(s), true
		}
	}
	return 0, false
}

// IsSolved returns true if every cubie is in its home slot.
func (t *Table) IsSolved() bool {
	return *t == Solved()
}

// Validate returns ErrInvalidTable unless the table is a bijection from the
// 26 populated slots onto the 26 cubie identities with the center empty.
func (t *Table) Validate() error {
	if t[CenterSlot] != NoCubie {
		return fmt.Errorf("%w: center slot holds cubie %d", ErrInvalidTable, t[CenterSlot])
	}

	var seen [SlotCount]bool
	for _, s := range PopulatedSlots() {
		c := t[s]
		if c < 0 || int(c) >= SlotCount || Slot(c).IsCenter() {
			return fmt.Errorf("%w: slot %d holds unknown cubie %d", ErrInvalidTable, s, c)
		}
		if seen[c] {
			return fmt.Errorf("%w: cubie %d appears twice", ErrInvalidTable, c)
		}
		seen[c] = true
	}
	return nil
}

// Diff returns the slots whose occupant differs between t and other.
func (t *Table) Diff(other *Table) []Slot {
	var diff []Slot
	for s := range t {
		if t[s] != other[s] {
			diff = append(diff, Slot(s))
		}
	}
	return diff
}

// String returns a text representation of the table, one layer per block.
func (t *Table) String() string {
	var b strings.Builder
	for z := -1; z <= 1; z++ {
		fmt.Fprintf(&b, "z=%+d\n", z)
		for y := 1; y >= -1; y-- {
			for x := -1; x <= 1; x++ {
				c := t[SlotOf(x, y, z)]
				if c == NoCubie {
					b.WriteString("  .")
					continue
				}
				fmt.Fprintf(&b, " %2d", c)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}
