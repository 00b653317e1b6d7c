package cube

import "github.com/SeamusWaldron/cubesim/pkg/types"

// Selection describes the layer turned by a face command.
type Selection struct {
	Face     types.Face
	Axis     types.Axis
	BaseSign int // +1 or -1

	match func(Slot) bool
}

// selections is indexed by types.Face.
var selections = [...]Selection{
	types.FaceQ: {Face: types.FaceQ, Axis: types.AxisX, BaseSign: 1, match: func(s Slot) bool { return s%3 == 0 }},
	types.FaceW: {Face: types.FaceW, Axis: types.AxisX, BaseSign: 1, match: func(s Slot) bool { return s%3 == 1 }},
	types.FaceE: {Face: types.FaceE, Axis: types.AxisX, BaseSign: 1, match: func(s Slot) bool { return s%3 == 2 }},
	types.FaceA: {Face: types.FaceA, Axis: types.AxisZ, BaseSign: 1, match: func(s Slot) bool { return s < 9 }},
	types.FaceS: {Face: types.FaceS, Axis: types.AxisZ, BaseSign: 1, match: func(s Slot) bool { return s >= 9 && s < 18 }},
	types.FaceD: {Face: types.FaceD, Axis: types.AxisZ, BaseSign: 1, match: func(s Slot) bool { return s >= 18 }},
	types.FaceZ: {Face: types.FaceZ, Axis: types.AxisY, BaseSign: -1, match: func(s Slot) bool { return s%9 < 3 }},
	types.FaceX: {Face: types.FaceX, Axis: types.AxisY, BaseSign: -1, match: func(s Slot) bool { return s%9 >= 3 && s%9 < 6 }},
	types.FaceC: {Face: types.FaceC, Axis: types.AxisY, BaseSign: -1, match: func(s Slot) bool { return s%9 >= 6 }},
}

// Select returns the selection for face f. The second result is false if f
// is not one of the nine faces.
func Select(f types.Face) (Selection, bool) {
	if !f.Valid() {
		return Selection{}, false
	}
	return selections[f], true
}

// Contains reports whether slot s belongs to the layer. The center slot is
// never a member.
func (sel Selection) Contains(s Slot) bool {
	if sel.match == nil || !s.Valid() || s.IsCenter() {
		return false
	}
	return sel.match(s)
}

// Layer returns the nine lattice positions of the layer in ascending slot
// order. Read as a 3x3 grid, index 4 is the layer's own center; for the
// three middle layers that is CenterSlot.
func (sel Selection) Layer() [9]Slot {
	var layer [9]Slot
	k := 0
	for s := Slot(0); s < SlotCount; s++ {
		if sel.match != nil && sel.match(s) {
			layer[k] = s
			k++
		}
	}
	return layer
}

// Members returns the populated slots of the layer.
func (sel Selection) Members() []Slot {
	layer := sel.Layer()
	members := make([]Slot, 0, len(layer))
	for _, s := range layer {
		if !s.IsCenter() {
			members = append(members, s)
		}
	}
	return members
}

// EffectiveSign combines the layer's base sign with a turn direction.
func (sel Selection) EffectiveSign(d types.Direction) int {
	return sel.BaseSign * int(d)
}
