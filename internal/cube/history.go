package cube

import "github.com/SeamusWaldron/cubesim/pkg/types"

// History is a LIFO log of accepted live moves. Replaying it newest-first
// with every direction inverted returns the table to the state it had when
// the history was empty.
type History struct {
	entries []types.Move
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{}
}

// Push records an accepted move.
func (h *History) Push(m types.Move) {
	h.entries = append(h.entries, m)
}

// Pop removes and returns the most recent move.
func (h *History) Pop() (types.Move, bool) {
	if len(h.entries) == 0 {
		return types.Move{}, false
	}
	last := h.entries[len(h.entries)-1]
	h.entries = h.entries[:len(h.entries)-1]
	return last, true
}

// Peek returns the most recent move without removing it.
func (h *History) Peek() (types.Move, bool) {
	if len(h.entries) == 0 {
		return types.Move{}, false
	}
	return h.entries[len(h.entries)-1], true
}

// Len returns the number of recorded moves.
func (h *History) Len() int {
	return len(h.entries)
}

// Entries returns a copy of the history, oldest first.
func (h *History) Entries() []types.Move {
	out := make([]types.Move, len(h.entries))
	copy(out, h.entries)
	return out
}

// Undo returns the moves that undo the whole history, in the order they
// must be applied.
func (h *History) Undo() []types.Move {
	out := make([]types.Move, 0, len(h.entries))
	for i := len(h.entries) - 1; i >= 0; i-- {
		out = append(out, h.entries[i].Inverse())
	}
	return out
}

// Clear drops every recorded move.
func (h *History) Clear() {
	h.entries = nil
}
