package chess

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

// IsStraightLine reports whether a and b share a rank or a file. The null move is not a line.
func IsStraightLine(a, b Square) bool {
	if a == b {
		return false
	}
	return a.Rank == b.Rank || a.File == b.File
}

func IsDiagonalLine(a, b Square) bool {
	if a == b {
		return false
	}
	return abs(a.Rank-b.Rank) == abs(a.File-b.File)
}

func IsKnightShape(a, b Square) bool {
	dr, df := abs(a.Rank-b.Rank), abs(a.File-b.File)
	return (dr == 2 && df == 1) || (dr == 1 && df == 2)
}

func IsKingAdjacent(a, b Square) bool {
	if a == b {
		return false
	}
	return abs(a.Rank-b.Rank) <= 1 && abs(a.File-b.File) <= 1
}

// IsPathClear walks the unit steps strictly between a and b and fails if any
// of them is occupied. Pairs that are not on a common line are never clear.
func (b *Board) IsPathClear(from, to Square) bool {
	if !IsStraightLine(from, to) && !IsDiagonalLine(from, to) {
		return false
	}
	dr, df := sign(to.Rank-from.Rank), sign(to.File-from.File)
	sq := Square{Rank: from.Rank + dr, File: from.File + df}
	for sq != to {
		if !b.IsEmpty(sq) {
			return false
		}
		sq = Square{Rank: sq.Rank + dr, File: sq.File + df}
	}
	return true
}
