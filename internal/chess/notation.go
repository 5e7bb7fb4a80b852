package chess

import "strconv"

// notation renders a move in short algebraic form, without the check suffix.
// It must run before the move touches the board.
func (g *GameState) notation(rec MoveRecord) string {
	if rec.Castle != nil {
		if rec.To.File > rec.From.File {
			return "O-O"
		}
		return "O-O-O"
	}
	capture := !rec.Captured.IsEmpty()
	s := rec.Piece.Type.notation()
	switch {
	case rec.Piece.Type == Pawn && capture:
		s += rec.From.fileNotation()
	case rec.Piece.Type != Pawn && rec.Piece.Type != King:
		s += g.disambiguation(rec.Piece, rec.From, rec.To)
	}
	if capture {
		s += "x"
	}
	s += rec.To.String()
	if rec.Promotion != NoPieceType {
		s += "=" + rec.Promotion.notation()
	}
	return s
}

// disambiguation returns the file, rank or full square needed to tell the
// moving piece apart from others of the same kind that can reach to.
func (g *GameState) disambiguation(piece Piece, from, to Square) string {
	var other, sameFile, sameRank bool
	for _, m := range g.legalMoves() {
		if m.To != to || m.From == from || g.board.Piece(m.From) != piece {
			continue
		}
		other = true
		if m.From.File == from.File {
			sameFile = true
		}
		if m.From.Rank == from.Rank {
			sameRank = true
		}
	}
	switch {
	case !other:
		return ""
	case !sameFile:
		return from.fileNotation()
	case !sameRank:
		return strconv.Itoa(8 - from.Rank)
	}
	return from.String()
}
