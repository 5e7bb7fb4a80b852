package chess

// The predicates in this file decide shape-and-occupancy legality only. None
// of them look at check. Apart from the king, friendly-destination moves are
// rejected by the caller before dispatch.

// ValidPawnMove covers single and double steps, diagonal captures and en
// passant onto ep.
func ValidPawnMove(b *Board, from, to Square, ep *Square) bool {
	pawn := b.Piece(from)
	dir := pawn.Color.forward()
	dr, df := to.Rank-from.Rank, to.File-from.File
	target := b.Piece(to)

	switch {
	case df == 0 && dr == dir:
		return target.IsEmpty()
	case df == 0 && dr == 2*dir:
		skipped := Square{Rank: from.Rank + dir, File: from.File}
		return from.Rank == pawn.Color.pawnRank() && b.IsEmpty(skipped) && target.IsEmpty()
	case abs(df) == 1 && dr == dir:
		if !target.IsEmpty() {
			return target.Color != pawn.Color
		}
		if ep == nil || *ep != to {
			return false
		}
		victim := b.Piece(Square{Rank: from.Rank, File: to.File})
		return victim.Type == Pawn && victim.Color != pawn.Color
	}
	return false
}

// pawnAttacks reports whether a pawn of color c on from attacks to,
// independent of what stands on to.
func pawnAttacks(c Color, from, to Square) bool {
	return to.Rank-from.Rank == c.forward() && abs(to.File-from.File) == 1
}

// ValidKnightMove: knights jump, so only the shape matters.
func ValidKnightMove(_ *Board, from, to Square) bool {
	return IsKnightShape(from, to)
}

func ValidBishopMove(b *Board, from, to Square) bool {
	return IsDiagonalLine(from, to) && b.IsPathClear(from, to)
}

func ValidRookMove(b *Board, from, to Square) bool {
	return IsStraightLine(from, to) && b.IsPathClear(from, to)
}

func ValidQueenMove(b *Board, from, to Square) bool {
	return ValidBishopMove(b, from, to) || ValidRookMove(b, from, to)
}

// ValidKingMove covers single steps onto a square not held by the king's own
// side. Castling is validated by GameState.
func ValidKingMove(b *Board, from, to Square) bool {
	if !IsKingAdjacent(from, to) {
		return false
	}
	target := b.Piece(to)
	return target.IsEmpty() || target.Color != b.Piece(from).Color
}

// IsShapeLegal dispatches to the predicate for the piece on from.
func IsShapeLegal(b *Board, from, to Square, ep *Square) bool {
	if !from.OnBoard() || !to.OnBoard() {
		return false
	}
	switch b.Piece(from).Type {
	case Pawn:
		return ValidPawnMove(b, from, to, ep)
	case Knight:
		return ValidKnightMove(b, from, to)
	case Bishop:
		return ValidBishopMove(b, from, to)
	case Rook:
		return ValidRookMove(b, from, to)
	case Queen:
		return ValidQueenMove(b, from, to)
	case King:
		return ValidKingMove(b, from, to)
	}
	return false
}
