package chess

import "testing"

func mustParseFEN(t *testing.T, fen string) *GameState {
	t.Helper()
	g, err := ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return g
}

func sq(t *testing.T, s string) Square {
	t.Helper()
	square, err := ParseSquare(s)
	if err != nil {
		t.Fatalf("ParseSquare(%q): %v", s, err)
	}
	return square
}

// play applies each move in order and fails the test on the first rejection.
func play(t *testing.T, g *GameState, moves ...string) *MoveResult {
	t.Helper()
	var res *MoveResult
	for _, m := range moves {
		var err error
		res, err = g.ApplyAlgebraic(m)
		if err != nil {
			t.Fatalf("move %s rejected in %q: %v", m, g.FEN(), err)
		}
	}
	return res
}

func expectReason(t *testing.T, err error, want Reason) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected rejection %q, got nil", want)
	}
	got, ok := RejectionReason(err)
	if !ok {
		t.Fatalf("expected rejection %q, got %v", want, err)
	}
	if got != want {
		t.Fatalf("expected rejection %q, got %q", want, got)
	}
}

// pieceAt reads s from a copy of g's board.
func pieceAt(t *testing.T, g *GameState, s string) Piece {
	t.Helper()
	b := g.Board()
	return b.Piece(sq(t, s))
}
