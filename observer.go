package cubesim

// RejectReason explains why a submitted move was dropped.
type RejectReason string

const (
	RejectTurning   RejectReason = "turning"   // A turn is still animating
	RejectReplaying RejectReason = "replaying" // A replay owns the puzzle
	RejectInvalid   RejectReason = "invalid"   // Unknown face, direction or source
	RejectClosed    RejectReason = "closed"    // Puzzle has been closed
)

// Observer receives puzzle events. Methods are called on the goroutine that
// caused the event (the ticking goroutine for TurnCompleted, the replay task
// for replay moves) after the puzzle's lock has been released. They must not
// block: hand slow work, such as database writes, to another goroutine.
//
// Events arrive in the order the state changed: a turn's MoveAccepted comes
// before its TurnCompleted, which comes before the next MoveAccepted. While
// a callback runs the puzzle counts as busy, so a Submit made from inside a
// callback is rejected with RejectTurning.
type Observer interface {
	// MoveAccepted fires when a turn starts animating.
	MoveAccepted(m Move, src Source)
	// MoveRejected fires when submitted input is dropped.
	MoveRejected(m Move, reason RejectReason)
	// TurnCompleted fires once per turn, after the table has been updated.
	TurnCompleted(m Move, src Source, table Table)
	// ReplayStarted fires when a replay begins with pending recorded moves.
	ReplayStarted(pending int)
	// ReplayFinished fires when the replay has emptied the history.
	ReplayFinished(undone int)
}

// NopObserver implements Observer with no-ops. Embed it to implement only
// the methods you need.
type NopObserver struct{}

func (NopObserver) MoveAccepted(Move, Source) {}
func (NopObserver) MoveRejected(Move, RejectReason) {}
func (NopObserver) TurnCompleted(Move, Source, Table) {}
func (NopObserver) ReplayStarted(int) {}
func (NopObserver) ReplayFinished(int) {}
