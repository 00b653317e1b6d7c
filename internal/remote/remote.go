// Package remote turns GoCube rotation notifications into puzzle moves.
//
// The smart cube only reports its six outer faces. Each maps onto the outer
// layer of the same side, and a clockwise turn as seen from outside that
// face becomes whichever direction rotates the layer the same way.
package remote

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/SeamusWaldron/cubesim"
	"github.com/SeamusWaldron/cubesim/internal/protocol"
)

// ErrUnknownFace is returned for a rotation on a face letter other than
// U, D, F, B, R or L.
var ErrUnknownFace = errors.New("remote: unknown face")

// Submitter accepts moves. *cubesim.Puzzle satisfies it.
type Submitter interface {
	Submit(m cubesim.Move, src cubesim.Source) bool
}

// Outer face to layer, and the direction that turns it clockwise as seen
// from outside. Clockwise from outside is a negative rotation about the
// outward axis, so the direction is the negated layer coordinate times the
// layer's base sign.
var faceMoves = map[byte]cubesim.Move{
	'L': {Face: cubesim.FaceQ, Direction: cubesim.Forward},
	'R': {Face: cubesim.FaceE, Direction: cubesim.Reversed},
	'B': {Face: cubesim.FaceA, Direction: cubesim.Forward},
	'F': {Face: cubesim.FaceD, Direction: cubesim.Reversed},
	'D': {Face: cubesim.FaceZ, Direction: cubesim.Reversed},
	'U': {Face: cubesim.FaceC, Direction: cubesim.Forward},
}

// MoveFor maps a rotation event onto a puzzle move.
func MoveFor(ev protocol.RotationEvent) (cubesim.Move, error) {
	m, ok := faceMoves[ev.Face]
	if !ok {
		return cubesim.Move{}, fmt.Errorf("%w: %q", ErrUnknownFace, ev.Face)
	}
	if !ev.Clockwise {
		m = m.Inverse()
	}
	return m, nil
}

// Stats counts what the bridge has seen.
type Stats struct {
	Messages int
	Accepted int
	Dropped  int
	Invalid  int
	Battery  int // -1 until reported

	// OutOfSync is set by the first dropped rotation. The physical cube
	// turned but the puzzle did not, so their layouts differ from then on.
	OutOfSync bool
}

// Bridge forwards rotations from the cube to a puzzle. Moves the puzzle
// refuses (a turn is animating, or a replay is running) are dropped and
// counted, like live key presses.
type Bridge struct {
	target Submitter
	logger *slog.Logger

	mu    sync.Mutex
	stats Stats
}

// NewBridge creates a bridge submitting to target. logger may be nil.
func NewBridge(target Submitter, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Bridge{
		target: target,
		logger: logger,
		stats:  Stats{Battery: -1},
	}
}

// HandleMessage processes one parsed notification. It has the signature of
// the ble client's message callback.
func (b *Bridge) HandleMessage(msg *protocol.Message) {
	b.mu.Lock()
	b.stats.Messages++
	b.mu.Unlock()

	switch msg.Type {
	case protocol.MsgTypeRotation:
		events, err := protocol.DecodeRotation(msg.Payload)
		if err != nil {
			b.invalid(err)
			return
		}
		for _, ev := range events {
			b.handleRotation(ev)
		}

	case protocol.MsgTypeBattery:
		battery, err := protocol.DecodeBattery(msg.Payload)
		if err != nil {
			b.invalid(err)
			return
		}
		b.mu.Lock()
		b.stats.Battery = battery.Level
		b.mu.Unlock()
		b.logger.Info("cube battery", "level", battery.Level)

	default:
		b.logger.Debug("ignoring message", "type", protocol.MessageTypeName(msg.Type))
	}
}

// HandleError records a notification that failed to parse.
func (b *Bridge) HandleError(err error) {
	b.invalid(err)
}

func (b *Bridge) handleRotation(ev protocol.RotationEvent) {
	m, err := MoveFor(ev)
	if err != nil {
		b.invalid(err)
		return
	}

	ok := b.target.Submit(m, cubesim.SourceRemote)

	b.mu.Lock()
	firstDrop := !ok && !b.stats.OutOfSync
	if ok {
		b.stats.Accepted++
	} else {
		b.stats.Dropped++
		b.stats.OutOfSync = true
	}
	b.mu.Unlock()

	switch {
	case ok:
		b.logger.Debug("remote move", "face", string(ev.Face), "clockwise", ev.Clockwise, "move", m.Notation())
	case firstDrop:
		b.logger.Warn("remote move dropped, puzzle no longer matches the cube", "face", string(ev.Face), "move", m.Notation())
	default:
		b.logger.Info("remote move dropped", "face", string(ev.Face), "move", m.Notation())
	}
}

func (b *Bridge) invalid(err error) {
	b.mu.Lock()
	b.stats.Invalid++
	b.mu.Unlock()
	b.logger.Warn("bad cube message", "error", err)
}

// Stats returns a snapshot of the counters.
func (b *Bridge) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}
