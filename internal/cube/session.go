package cube

import (
	"fmt"
	"math"

	"github.com/SeamusWaldron/cubesim/pkg/types"
)

// DefaultFrames is the number of frames a quarter turn is animated over.
const DefaultFrames = 25

// SessionState is the state of the rotation session.
type SessionState int

const (
	StateIdle SessionState = iota
	StateActive
)

// String returns the string representation of the session state.
func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	default:
		return "unknown"
	}
}

// Session is the animation clock for the quarter turn in progress.
// At most one turn is active at a time.
type Session struct {
	frames    int
	state     SessionState
	move      types.Move
	sel       Selection
	sign      int
	remaining int
	elapsed   int
}

// NewSession creates an idle session that animates each turn over frames
// frames. Values below 1 fall back to DefaultFrames.
func NewSession(frames int) *Session {
	if frames < 1 {
		frames = DefaultFrames
	}
	return &Session{frames: frames}
}

// Frames returns the number of frames per turn.
func (s *Session) Frames() int {
	return s.frames
}

// State returns the current session state.
func (s *Session) State() SessionState {
	return s.state
}

// Active returns true while a turn is animating.
func (s *Session) Active() bool {
	return s.state == StateActive
}

// Move returns the turn in progress. Only meaningful while Active.
func (s *Session) Move() types.Move {
	return s.move
}

// Selection returns the layer of the turn in progress.
func (s *Session) Selection() Selection {
	return s.sel
}

// Remaining returns the number of frames left in the turn.
func (s *Session) Remaining() int {
	return s.remaining
}

// Elapsed returns the number of frames already shown.
func (s *Session) Elapsed() int {
	return s.elapsed
}

// Start begins animating m. It returns ErrSessionActive if a turn is already
// in progress; callers are expected to check Active first.
func (s *Session) Start(m types.Move) error {
	if s.state == StateActive {
		return fmt.Errorf("%w: cannot start %s while %s is turning", ErrSessionActive, m.Notation(), s.move.Notation())
	}
	if err := m.Validate(); err != nil {
		return err
	}

	sel, _ := Select(m.Face)
	s.move = m
	s.sel = sel
	s.sign = sel.EffectiveSign(m.Direction)
	s.remaining = s.frames
	s.elapsed = 0
	s.state = StateActive
	return nil
}

// StepAngle returns the signed angle added per frame.
func (s *Session) StepAngle() float64 {
	if s.state != StateActive {
		return 0
	}
	return float64(s.sign) * math.Pi / (2 * float64(s.frames))
}

// Angle returns the signed angle swept so far.
// It is exactly ±π/2 once every frame has elapsed.
func (s *Session) Angle() float64 {
	return float64(s.sign) * (math.Pi / 2) * (float64(s.elapsed) / float64(s.frames))
}

// Tick advances the animation by one frame. When the last frame elapses the
// session returns to idle and Tick reports the completed move; the caller
// must then apply it to the table exactly once.
func (s *Session) Tick() (types.Move, bool) {
	if s.state != StateActive {
		return types.Move{}, false
	}

	s.remaining--
	s.elapsed++
	if s.remaining > 0 {
		return types.Move{}, false
	}

	s.state = StateIdle
	return s.move, true
}

// Transform returns the transform the renderer applies to slot. Slots
// outside the turning layer, and every slot while idle, get the identity.
func (s *Session) Transform(slot Slot) Transform {
	if s.state != StateActive || !s.sel.Contains(slot) {
		return Identity
	}
	return Transform{Axis: s.sel.Axis, Angle: s.Angle()}
}
