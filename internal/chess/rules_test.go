package chess

import "testing"

func TestValidPawnMove(t *testing.T) {
	// White pawns e2, d5; black pawns c6, e6 (just double-stepped from e7), f3.
	g := mustParseFEN(t, "4k3/8/2p5/3Pp3/8/5p2/4P3/4K3 w - e6 0 1")
	b := g.Board()
	ep, _ := g.EnPassantTarget()

	tests := []struct {
		from, to string
		want     bool
	}{
		{"e2", "e3", true},
		{"e2", "e4", true},
		{"e2", "e5", false},
		{"e2", "f3", true},
		{"e2", "d3", false},
		{"e2", "e1", false},
		{"d5", "d6", true},
		{"d5", "d7", false},
		{"d5", "c6", true},
		{"d5", "e6", true},
		{"d5", "e4", false},
		{"f3", "f2", true},
		{"f3", "e2", true},
		{"f3", "g2", false},
	}
	for _, tt := range tests {
		from, to := sq(t, tt.from), sq(t, tt.to)
		if got := ValidPawnMove(&b, from, to, &ep); got != tt.want {
			t.Errorf("ValidPawnMove(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}

	if ValidPawnMove(&b, sq(t, "d5"), sq(t, "e6"), nil) {
		t.Error("en passant must require a matching target")
	}
}

func TestPawnDoubleStepBlocked(t *testing.T) {
	g := mustParseFEN(t, "4k3/8/8/8/8/4n3/4P3/4K3 w - - 0 1")
	b := g.Board()
	if ValidPawnMove(&b, sq(t, "e2"), sq(t, "e4"), nil) {
		t.Error("double step through an occupied square must fail")
	}
	g = mustParseFEN(t, "4k3/8/8/8/4n3/8/4P3/4K3 w - - 0 1")
	b = g.Board()
	if ValidPawnMove(&b, sq(t, "e2"), sq(t, "e4"), nil) {
		t.Error("double step onto an occupied square must fail")
	}
	g = mustParseFEN(t, "4k3/8/8/8/8/4P3/8/4K3 w - - 0 1")
	b = g.Board()
	if ValidPawnMove(&b, sq(t, "e3"), sq(t, "e5"), nil) {
		t.Error("double step off the home rank must fail")
	}
}

func TestPiecePredicates(t *testing.T) {
	b := NewBoard()
	tests := []struct {
		name     string
		from, to string
		want     bool
	}{
		{"knight jumps", "g1", "f3", true},
		{"knight bad shape", "g1", "g3", false},
		{"bishop blocked", "c1", "e3", false},
		{"rook blocked", "a1", "a3", false},
		{"queen blocked", "d1", "d3", false},
		{"king two squares", "e1", "e3", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsShapeLegal(b, sq(t, tt.from), sq(t, tt.to), nil); got != tt.want {
				t.Errorf("IsShapeLegal(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}

	open := mustParseFEN(t, "4k3/8/8/3q4/8/8/8/4K3 b - - 0 1").Board()
	for _, to := range []string{"d1", "d8", "a5", "h5", "a2", "h1", "a8", "g8"} {
		if !ValidQueenMove(&open, sq(t, "d5"), sq(t, to)) {
			t.Errorf("queen d5-%s should be shape legal", to)
		}
	}
	if ValidQueenMove(&open, sq(t, "d5"), sq(t, "e7")) {
		t.Error("queen d5-e7 is not a line")
	}
	if !ValidKingMove(&open, sq(t, "e1"), sq(t, "d2")) {
		t.Error("king e1-d2 should be shape legal")
	}
}

func TestKingMoveDestination(t *testing.T) {
	b := mustParseFEN(t, "4k3/8/8/8/8/8/3Pp3/4K3 w - - 0 1").Board()
	tests := []struct {
		to   string
		want bool
	}{
		{"d1", true},
		{"f2", true},
		{"e2", true},
		{"d2", false},
		{"e3", false},
		{"g1", false},
	}
	for _, tt := range tests {
		if got := ValidKingMove(&b, sq(t, "e1"), sq(t, tt.to)); got != tt.want {
			t.Errorf("ValidKingMove(e1, %s) = %v, want %v", tt.to, got, tt.want)
		}
	}

	g := mustParseFEN(t, "4k3/8/8/8/8/8/3Pp3/4K3 w - - 0 1")
	if !g.IsSquareAttacked(sq(t, "d2"), White) {
		t.Error("the white king still defends its own pawn on d2")
	}
}
