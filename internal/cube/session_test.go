package cube

import (
	"errors"
	"math"
	"testing"

	"github.com/SeamusWaldron/cubesim/pkg/types"
)

func TestSessionSweepsQuarterTurn(t *testing.T) {
	for _, f := range types.Faces() {
		for _, d := range directions {
			s := NewSession(DefaultFrames)
			m := types.Move{Face: f, Direction: d}
			if err := s.Start(m); err != nil {
				t.Fatalf("Start(%s) failed: %v", m, err)
			}

			sel, _ := Select(f)
			ticks := 0
			var sum float64
			for {
				sum += s.StepAngle()
				ticks++
				done, ok := s.Tick()
				if ok {
					if done != m {
						t.Errorf("completed %s, expected %s", done, m)
					}
					break
				}
				if ticks > DefaultFrames {
					t.Fatalf("%s did not complete after %d ticks", m, ticks)
				}
			}

			if ticks != DefaultFrames {
				t.Errorf("%s completed after %d ticks, want %d", m, ticks, DefaultFrames)
			}
			want := float64(sel.EffectiveSign(d)) * math.Pi / 2
			if got := s.Angle(); got != want {
				t.Errorf("%s swept %v, want exactly %v", m, got, want)
			}
			if math.Abs(sum-want) > 1e-12 {
				t.Errorf("%s per-frame steps sum to %v, want %v", m, sum, want)
			}
			if s.Active() {
				t.Error("session should be idle after the last frame")
			}
		}
	}
}

func TestSessionTransform(t *testing.T) {
	s := NewSession(4)
	if err := s.Start(types.Move{Face: types.FaceA, Direction: types.Forward}); err != nil {
		t.Fatal(err)
	}
	s.Tick()

	member := SlotOf(1, 1, -1)
	tr := s.Transform(member)
	if tr.Axis != types.AxisZ {
		t.Errorf("expected Z axis, got %s", tr.Axis)
	}
	if math.Abs(tr.Angle-math.Pi/8) > 1e-12 {
		t.Errorf("expected angle pi/8 after one of four frames, got %v", tr.Angle)
	}

	if !s.Transform(SlotOf(1, 1, 0)).IsIdentity() {
		t.Error("slot outside the layer should get the identity transform")
	}
	if !s.Transform(CenterSlot).IsIdentity() {
		t.Error("center slot should get the identity transform")
	}
}

func TestSessionRejectsSecondStart(t *testing.T) {
	s := NewSession(DefaultFrames)
	first := types.Move{Face: types.FaceW, Direction: types.Forward}
	if err := s.Start(first); err != nil {
		t.Fatal(err)
	}
	err := s.Start(types.Move{Face: types.FaceE, Direction: types.Reversed})
	if !errors.Is(err, ErrSessionActive) {
		t.Fatalf("expected ErrSessionActive, got %v", err)
	}
	if s.Move() != first {
		t.Error("rejected start should not replace the active move")
	}
}

func TestIdleSessionTick(t *testing.T) {
	s := NewSession(0)
	if s.Frames() != DefaultFrames {
		t.Errorf("expected default frames, got %d", s.Frames())
	}
	if _, ok := s.Tick(); ok {
		t.Error("idle session should not complete a move")
	}
	if s.State() != StateIdle {
		t.Errorf("expected idle, got %s", s.State())
	}
	if !s.Transform(0).IsIdentity() {
		t.Error("idle session should expose the identity transform")
	}
}

func TestHistoryLIFO(t *testing.T) {
	h := NewHistory()
	moves := []types.Move{
		{Face: types.FaceQ, Direction: types.Forward},
		{Face: types.FaceS, Direction: types.Reversed},
		{Face: types.FaceC, Direction: types.Forward},
	}
	for _, m := range moves {
		h.Push(m)
	}
	if h.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", h.Len())
	}
	if top, _ := h.Peek(); top != moves[2] {
		t.Errorf("Peek() = %s, want %s", top, moves[2])
	}

	undo := h.Undo()
	for i, m := range undo {
		if want := moves[len(moves)-1-i].Inverse(); m != want {
			t.Errorf("undo[%d] = %s, want %s", i, m, want)
		}
	}

	for i := len(moves) - 1; i >= 0; i-- {
		m, ok := h.Pop()
		if !ok || m != moves[i] {
			t.Errorf("Pop() = %s, %v; want %s", m, ok, moves[i])
		}
	}
	if _, ok := h.Pop(); ok {
		t.Error("Pop on empty history should fail")
	}
}
