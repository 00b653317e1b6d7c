// Package cube provides the 3x3x3 lattice model: slot addressing, the
// slot-to-cubie table, layer selection, quarter-turn permutations, the
// animation clock for a turn in progress, and the move history.
//
// Nothing in this package is safe for concurrent use. The owner (see the
// root cubesim package) serializes access.
package cube

// Lattice dimensions.
const (
	// SlotCount is the number of lattice positions, including the center.
	SlotCount = 27
	// CubieCount is the number of movable cubies.
	CubieCount = 26
	// CenterSlot is the geometric center of the lattice. It is never
	// populated and never selected by any face.
	CenterSlot Slot = 13
)

// Slot is a fixed position in the 3x3x3 lattice, numbered 0..26.
type Slot int

// Coord is a lattice coordinate with each component in {-1, 0, 1}.
type Coord struct {
	X, Y, Z int
}

// Valid reports whether every component is in {-1, 0, 1}.
func (c Coord) Valid() bool {
	return inUnit(c.X) && inUnit(c.Y) && inUnit(c.Z)
}

func inUnit(v int) bool {
	return v >= -1 && v <= 1
}

// SlotOf returns the slot at (x, y, z). The caller must pass components in
// {-1, 0, 1}; use Coord.Valid to check untrusted input.
func SlotOf(x, y, z int) Slot {
	return Slot((z+1)*9 + (y+1)*3 + (x+1))
}

// Slot returns the slot at this coordinate.
func (c Coord) Slot() Slot {
	return SlotOf(c.X, c.Y, c.Z)
}

// Valid reports whether s is inside the lattice.
func (s Slot) Valid() bool {
	return s >= 0 && s < SlotCount
}

// IsCenter reports whether s is the unused center slot.
func (s Slot) IsCenter() bool {
	return s == CenterSlot
}

// Coord returns the lattice coordinate of s.
func (s Slot) Coord() Coord {
	i := int(s)
	z := i/9 - 1
	i %= 9
	y := i/3 - 1
	x := i%3 - 1
	return Coord{X: x, Y: y, Z: z}
}

// PopulatedSlots returns the 26 slots that hold a cubie, in ascending order.
func PopulatedSlots() []Slot {
	slots := make([]Slot, 0, CubieCount)
	for s := Slot(0); s < SlotCount; s++ {
		if s.IsCenter() {
			continue
		}
		slots = append(slots, s)
	}
	return slots
}
