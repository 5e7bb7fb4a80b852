package chess

import "slices"

// Status collects the check and terminal flags for the side to move.
type Status struct {
	Check                bool `json:"check"`
	Checkmate            bool `json:"checkmate"`
	Stalemate            bool `json:"stalemate"`
	FiftyMoveRule        bool `json:"fiftyMoveRule"`
	ThreefoldRepetition  bool `json:"threefoldRepetition"`
	InsufficientMaterial bool `json:"insufficientMaterial"`
}

// Resolution names the condition that ends the game, or "" while it goes on.
func (s Status) Resolution() string {
	switch {
	case s.Checkmate:
		return "checkmate"
	case s.Stalemate:
		return "stalemate"
	case s.ThreefoldRepetition:
		return "threefold-repetition"
	case s.FiftyMoveRule:
		return "fifty-move-rule"
	case s.InsufficientMaterial:
		return "insufficient-material"
	}
	return ""
}

func (g *GameState) Status() Status {
	return Status{
		Check:                g.IsCheck(),
		Checkmate:            g.IsCheckmate(),
		Stalemate:            g.IsStalemate(),
		FiftyMoveRule:        g.IsDrawByFiftyMoveRule(),
		ThreefoldRepetition:  g.IsDrawByThreefoldRepetition(),
		InsufficientMaterial: g.IsDrawByInsufficientMaterial(),
	}
}

// IsSquareAttacked reports whether any piece of color by has a shape-legal
// move onto sq. It never runs the check-safety simulation. Pawns attack their
// forward diagonals and kings their neighbours whether or not sq is occupied.
func (g *GameState) IsSquareAttacked(sq Square, by Color) bool {
	for rank := 0; rank < 8; rank++ {
		for file := 0; file < 8; file++ {
			from := Square{Rank: rank, File: file}
			p := g.board.Piece(from)
			if p.IsEmpty() || p.Color != by || from == sq {
				continue
			}
			if p.Type == Pawn {
				if pawnAttacks(by, from, sq) {
					return true
				}
				continue
			}
			if p.Type == King {
				if IsKingAdjacent(from, sq) {
					return true
				}
				continue
			}
			if IsShapeLegal(&g.board, from, sq, nil) {
				return true
			}
		}
	}
	return false
}

func (g *GameState) IsCheck() bool {
	return g.kingAttacked(g.turn)
}

func (g *GameState) IsCheckmate() bool {
	return g.IsCheck() && !g.HasLegalMoves()
}

func (g *GameState) IsStalemate() bool {
	return !g.IsCheck() && !g.HasLegalMoves()
}

// IsDrawByFiftyMoveRule: 100 ply without a pawn move or capture.
func (g *GameState) IsDrawByFiftyMoveRule() bool {
	return g.halfMoveClock >= 100
}

// IsDrawByThreefoldRepetition stays true once any position has occurred
// three times.
func (g *GameState) IsDrawByThreefoldRepetition() bool {
	return g.repetition
}

type material struct {
	minors  int
	bishops []Square
	knights int
	heavy   int // pawns, rooks and queens
}

// IsDrawByInsufficientMaterial covers K v K, K v K+minor and K+minor v
// K+minor, except bishops standing on opposite square colors.
func (g *GameState) IsDrawByInsufficientMaterial() bool {
	var side [2]material
	g.board.Each(func(sq Square, p Piece) {
		m := &side[p.Color]
		switch p.Type {
		case Bishop:
			m.minors++
			m.bishops = append(m.bishops, sq)
		case Knight:
			m.minors++
			m.knights++
		case Pawn, Rook, Queen:
			m.heavy++
		}
	})
	w, b := side[White], side[Black]
	if w.heavy > 0 || b.heavy > 0 || w.minors > 1 || b.minors > 1 {
		return false
	}
	if len(w.bishops) == 1 && len(b.bishops) == 1 {
		return w.bishops[0].squareColor() == b.bishops[0].squareColor()
	}
	return true
}

// HasLegalMoves reports whether the side to move has any legal move.
func (g *GameState) HasLegalMoves() bool {
	return len(g.legalMoves()) > 0
}

// LegalMoves enumerates every legal move for the side to move. Promotions
// appear once per promotion piece. The result is memoized until the next
// committed move.
func (g *GameState) LegalMoves() []Move {
	return slices.Clone(g.legalMoves())
}

// LegalMovesFrom returns the legal moves of the piece on sq.
func (g *GameState) LegalMovesFrom(sq Square) []Move {
	var moves []Move
	for _, m := range g.legalMoves() {
		if m.From == sq {
			moves = append(moves, m)
		}
	}
	return moves
}

func (g *GameState) legalMoves() []Move {
	if g.legalValid {
		return g.legal
	}
	moves := []Move{}
	for rank := 0; rank < 8; rank++ {
		for file := 0; file < 8; file++ {
			from := Square{Rank: rank, File: file}
			p := g.board.Piece(from)
			if p.IsEmpty() || p.Color != g.turn {
				continue
			}
			moves = g.appendMovesFrom(moves, from, p)
		}
	}
	g.legal, g.legalValid = moves, true
	return moves
}

func (g *GameState) appendMovesFrom(moves []Move, from Square, p Piece) []Move {
	for rank := 0; rank < 8; rank++ {
		for file := 0; file < 8; file++ {
			to := Square{Rank: rank, File: file}
			if to == from {
				continue
			}
			castle, err := g.validate(from, to)
			if err != nil {
				continue
			}
			if !castle && p.Type == Pawn && to.Rank == p.Color.promotionRank() {
				for _, t := range []PieceType{Queen, Rook, Bishop, Knight} {
					moves = append(moves, Move{From: from, To: to, Promotion: t})
				}
				continue
			}
			moves = append(moves, Move{From: from, To: to})
		}
	}
	return moves
}
