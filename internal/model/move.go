package model

import (
	"fmt"

	"github.com/benbeisheim/chessrules/internal/chess"
)

// WSMove is a move request from a client. Either From/To (plus an optional
// Promotion) or the algebraic Move form ("e2e4", "e7e8q") is set.
type WSMove struct {
	From      Position  `json:"from"`
	To        Position  `json:"to"`
	Promotion PieceType `json:"promotion,omitempty"`
	Move      string    `json:"move,omitempty"`
}

func (m WSMove) toChess() (chess.Move, error) {
	if m.Move != "" {
		return chess.ParseMove(m.Move)
	}
	move := chess.Move{From: m.From.Square(), To: m.To.Square()}
	if !move.From.OnBoard() || !move.To.OnBoard() {
		return chess.Move{}, fmt.Errorf("%w: %s%s", chess.ErrInvalidSquare, m.From, m.To)
	}
	if m.Promotion != "" {
		p, ok := m.Promotion.promotionChoice()
		if !ok {
			return chess.Move{}, fmt.Errorf("%w: %q", chess.ErrInvalidPromotion, m.Promotion)
		}
		move.Promotion = p
	}
	return move, nil
}

type CastleRookMove struct {
	From Position `json:"from"`
	To   Position `json:"to"`
}

type Ply struct {
	Piece          *Piece          `json:"piece"`
	From           Position        `json:"from"`
	To             Position        `json:"to"`
	CapturedPiece  *Piece          `json:"capturedPiece"`
	EnPassant      bool            `json:"enPassant"`
	CastleRookMove *CastleRookMove `json:"castleRookMove"`
	Promotion      PieceType       `json:"promotion"`
	Notation       string          `json:"notation"`
}

// Move pairs a white ply with the black reply. A game set up with black to
// move starts with a nil WhitePly.
type Move struct {
	WhitePly *Ply `json:"whitePly"`
	BlackPly *Ply `json:"blackPly"`
}

type SimpleMove struct {
	From Position `json:"from"`
	To   Position `json:"to"`
}

func newPly(rec chess.MoveRecord) *Ply {
	ply := &Ply{
		Piece:     newPiece(rec.Piece, rec.To),
		From:      positionOf(rec.From),
		To:        positionOf(rec.To),
		EnPassant: rec.EnPassant,
		Promotion: pieceTypeOf(rec.Promotion),
		Notation:  rec.Notation,
	}
	if !rec.Captured.IsEmpty() {
		at := rec.To
		if rec.EnPassant {
			at = chess.Square{Rank: rec.From.Rank, File: rec.To.File}
		}
		ply.CapturedPiece = newPiece(rec.Captured, at)
	}
	if rec.Castle != nil {
		ply.CastleRookMove = &CastleRookMove{From: positionOf(rec.Castle.From), To: positionOf(rec.Castle.To)}
	}
	return ply
}

// pairMoves groups plies into numbered moves.
func pairMoves(records []chess.MoveRecord) []Move {
	moves := make([]Move, 0, len(records)/2+1)
	for _, rec := range records {
		ply := newPly(rec)
		if rec.Piece.Color == chess.White || len(moves) == 0 || moves[len(moves)-1].BlackPly != nil {
			moves = append(moves, Move{})
		}
		last := &moves[len(moves)-1]
		if rec.Piece.Color == chess.White {
			last.WhitePly = ply
		} else {
			last.BlackPly = ply
		}
	}
	return moves
}
