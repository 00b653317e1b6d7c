package types

import (
	"errors"
	"testing"
)

func TestFaceKeysRoundTrip(t *testing.T) {
	for _, f := range Faces() {
		got, ok := FaceForKey(f.Key())
		if !ok || got != f {
			t.Errorf("FaceForKey(%q) = %v, %v; want %v", f.Key(), got, ok, f)
		}
	}
	if len(Faces()) != 9 {
		t.Errorf("expected 9 faces, got %d", len(Faces()))
	}
	if _, ok := FaceForKey('r'); ok {
		t.Error("'r' should not map to a face")
	}
}

func TestMoveInverse(t *testing.T) {
	m := Move{Face: FaceS, Direction: Forward}
	inv := m.Inverse()
	if inv.Direction != Reversed || inv.Face != FaceS {
		t.Errorf("unexpected inverse %v", inv)
	}
	if inv.Inverse() != m {
		t.Error("inverse of inverse should be the original move")
	}
}

func TestMoveNotation(t *testing.T) {
	tests := []struct {
		move Move
		want string
	}{
		{Move{Face: FaceQ, Direction: Forward}, "q"},
		{Move{Face: FaceQ, Direction: Reversed}, "q'"},
		{Move{Face: FaceC, Direction: Reversed}, "c'"},
	}
	for _, tt := range tests {
		if got := tt.move.Notation(); got != tt.want {
			t.Errorf("Notation() = %q, want %q", got, tt.want)
		}
	}
}

func TestMoveValidate(t *testing.T) {
	if err := (Move{Face: FaceD, Direction: Reversed}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := (Move{Face: Face(9), Direction: Forward}).Validate(); !errors.Is(err, ErrInvalidMove) {
		t.Errorf("expected ErrInvalidMove for bad face, got %v", err)
	}
	if err := (Move{Face: FaceD}).Validate(); !errors.Is(err, ErrInvalidMove) {
		t.Errorf("expected ErrInvalidMove for zero direction, got %v", err)
	}
}
