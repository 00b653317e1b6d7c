package notation

import (
	"strings"
	"testing"

	"github.com/SeamusWaldron/cubesim/pkg/types"
)

// moves builds a sequence from notation such as "q d' z".
func moves(t *testing.T, s string) []types.Move {
	t.Helper()
	var out []types.Move
	for _, tok := range strings.Fields(s) {
		face, ok := types.FaceForKey(rune(tok[0]))
		if !ok {
			t.Fatalf("bad token %q", tok)
		}
		out = append(out, types.Move{Face: face, Direction: types.DirectionOf(strings.HasSuffix(tok, "'"))})
	}
	return out
}

func format(ms []types.Move) string {
	parts := make([]string, len(ms))
	for i, m := range ms {
		parts[i] = m.Notation()
	}
	return strings.Join(parts, " ")
}

func TestSimplify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"q q'", ""},
		{"q w w' q'", ""},
		{"q q q", "q'"},
		{"q q q q", ""},
		{"q q", "q q"},
		{"d' d'", "d d"},
		{"q w q", "q w q"},
		{"a a a a c", "c"},
		{"s s' s' e", "s' e"},
	}

	for _, tt := range tests {
		got := Simplify(moves(t, tt.in))
		if s := format(got); s != tt.want {
			t.Errorf("Simplify(%q) = %q, want %q", tt.in, s, tt.want)
		}
	}
}

func TestSimplifyKeepsNetEffect(t *testing.T) {
	in := moves(t, "q q' d c c c c d' z")
	got := Simplify(in)
	if len(got) != 1 || got[0] != (types.Move{Face: types.FaceZ, Direction: types.Forward}) {
		t.Errorf("Simplify = %q, want z", format(got))
	}
}

func TestDescribe(t *testing.T) {
	if got := Describe(types.Move{Face: types.FaceC, Direction: types.Reversed}); got != "top layer reversed" {
		t.Errorf("Describe = %q", got)
	}
	if got := Describe(types.Move{Face: types.FaceQ, Direction: types.Forward}); got != "left layer forward" {
		t.Errorf("Describe = %q", got)
	}
	if got := Describe(types.Move{Face: types.Face(42), Direction: types.Forward}); got != "?" {
		t.Errorf("Describe = %q", got)
	}
}
