package model

import (
	"fmt"
	"strings"

	"github.com/benbeisheim/chessrules/internal/chess"
)

type PieceType string

const (
	King   PieceType = "king"
	Queen  PieceType = "queen"
	Rook   PieceType = "rook"
	Bishop PieceType = "bishop"
	Knight PieceType = "knight"
	Pawn   PieceType = "pawn"
)

func pieceTypeOf(t chess.PieceType) PieceType {
	switch t {
	case chess.King:
		return King
	case chess.Queen:
		return Queen
	case chess.Rook:
		return Rook
	case chess.Bishop:
		return Bishop
	case chess.Knight:
		return Knight
	case chess.Pawn:
		return Pawn
	}
	return ""
}

// promotionChoice accepts a promotion piece by name ("queen") or by letter
// ("q", "Q").
func (p PieceType) promotionChoice() (chess.PieceType, bool) {
	switch strings.ToLower(string(p)) {
	case "queen", "q":
		return chess.Queen, true
	case "rook", "r":
		return chess.Rook, true
	case "bishop", "b":
		return chess.Bishop, true
	case "knight", "n":
		return chess.Knight, true
	}
	return chess.NoPieceType, false
}

type BoardState struct {
	Board             [][]*Piece `json:"board"`
	BlackKingPosition Position   `json:"blackKingPosition"`
	WhiteKingPosition Position   `json:"whiteKingPosition"`
}

type Piece struct {
	Type     PieceType `json:"type"`
	Color    string    `json:"color"`
	Position Position  `json:"position"`
}

// Position uses the board's own orientation: X is the file (0 = a), Y is the
// row from the top (0 = rank 8).
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func positionOf(sq chess.Square) Position {
	return Position{X: sq.File, Y: sq.Rank}
}

func (p Position) Square() chess.Square {
	return chess.Square{Rank: p.Y, File: p.X}
}

func (p Position) String() string {
	return fmt.Sprintf("%c%d", p.X+'a', 8-p.Y)
}

func newPiece(p chess.Piece, sq chess.Square) *Piece {
	if p.IsEmpty() {
		return nil
	}
	return &Piece{Type: pieceTypeOf(p.Type), Color: p.Color.String(), Position: positionOf(sq)}
}

func newBoardState(b chess.Board) *BoardState {
	board := &BoardState{Board: make([][]*Piece, 8)}
	for i := range board.Board {
		board.Board[i] = make([]*Piece, 8)
	}
	b.Each(func(sq chess.Square, p chess.Piece) {
		board.Board[sq.Rank][sq.File] = newPiece(p, sq)
		if p.Type == chess.King {
			if p.Color == chess.White {
				board.WhiteKingPosition = positionOf(sq)
			} else {
				board.BlackKingPosition = positionOf(sq)
			}
		}
	})
	return board
}
