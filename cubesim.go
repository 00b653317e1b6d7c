// Package cubesim simulates a 3x3x3 twisty puzzle: 26 cubies in a 3x3x3
// lattice, nine layers that each turn by a quarter in either direction,
// animated frame by frame, with an undo-all replay of the move history.
//
// # Features
//
//   - Slot to cubie table that is always a valid permutation
//   - Nine layer commands bound to the keys q w e / a s d / z x c
//   - Frame-paced quarter turns with per-slot transforms for a renderer
//   - One turn at a time; input during a turn or replay is dropped
//   - Replay that undoes every recorded move, newest first
//
// # Quick Start
//
//	p := cubesim.New()
//	defer p.Close()
//
//	p.SubmitKey(cubesim.FaceQ, false) // q
//	for p.Busy() {
//	    p.Tick()
//	}
//	table := p.Table()
//	fmt.Println("Solved:", table.IsSolved())
//
// # Rendering
//
// A renderer calls Tick once per displayed frame and then asks for the
// transform of every slot, either one at a time with TransformFor or all
// at once with Frame:
//
//	p.Tick()
//	frame := p.Frame()
//	for _, slot := range cubesim.PopulatedSlots() {
//	    draw(frame.Table[slot], frame.Transforms[slot])
//	}
//
// Run drives Tick from a fixed-interval timer for hosts without their own
// frame loop.
//
// # Replay
//
// RequestReplay starts a background task that pops the history one move at
// a time and turns the inverse of each, waiting for the previous turn to
// finish. When the history is empty the puzzle is back in the state it had
// before the first recorded move.
package cubesim
