package chess

// isCastlingPattern: a king moving exactly two files along its own home rank.
func isCastlingPattern(piece Piece, from, to Square) bool {
	return piece.Type == King &&
		from.Rank == piece.Color.homeRank() &&
		to.Rank == from.Rank &&
		abs(to.File-from.File) == 2
}

// castleRookSquares returns where the rook starts and lands for a castling
// king move from -> to.
func castleRookSquares(from, to Square) (rookFrom, rookTo Square) {
	if to.File > from.File {
		return Square{Rank: from.Rank, File: 7}, Square{Rank: from.Rank, File: 5}
	}
	return Square{Rank: from.Rank, File: 0}, Square{Rank: from.Rank, File: 3}
}

func (g *GameState) validateCastle(from, to Square) error {
	king := g.board.Piece(from)
	opponent := king.Color.Opponent()
	kingSide := to.File > from.File

	if !g.castling.allows(king.Color, kingSide) {
		return reject(ReasonCastling, from, to)
	}
	if from != (Square{Rank: king.Color.homeRank(), File: 4}) {
		return reject(ReasonCastling, from, to)
	}
	rookFrom, _ := castleRookSquares(from, to)
	if g.board.Piece(rookFrom) != (Piece{Type: Rook, Color: king.Color}) {
		return reject(ReasonCastling, from, to)
	}
	if g.IsSquareAttacked(from, opponent) {
		return reject(ReasonCastling, from, to)
	}
	if !g.board.IsPathClear(from, rookFrom) {
		return reject(ReasonCastling, from, to)
	}

	transit := Square{Rank: from.Rank, File: from.File + sign(to.File-from.File)}
	for _, sq := range []Square{transit, to} {
		changes := []squareChange{{sq: from, piece: NoPiece}, {sq: sq, piece: king}}
		attacked := g.simulate(changes, func() bool {
			return g.IsSquareAttacked(sq, opponent)
		})
		if attacked {
			return reject(ReasonCastling, from, to)
		}
	}
	return nil
}

// commitCastle moves king and rook together and drops both of the mover's
// castling rights.
func (g *GameState) commitCastle(from, to Square) MoveRecord {
	king := g.board.Piece(from)
	rookFrom, rookTo := castleRookSquares(from, to)
	rook := g.board.Piece(rookFrom)

	rec := MoveRecord{
		Piece:  king,
		From:   from,
		To:     to,
		Castle: &CastleRookMove{From: rookFrom, To: rookTo},
	}
	rec.Notation = g.notation(rec)

	g.board.transaction(
		squareChange{sq: from, piece: NoPiece},
		squareChange{sq: rookFrom, piece: NoPiece},
		squareChange{sq: to, piece: king},
		squareChange{sq: rookTo, piece: rook},
	)
	g.castling.clear(king.Color)
	g.enPassant = nil
	g.halfMoveClock++

	g.finishTurn(&rec)
	return rec
}
