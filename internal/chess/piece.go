package chess

import "strings"

type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// homeRank is the rank index holding the color's king and rooks at the start.
func (c Color) homeRank() int {
	if c == White {
		return 7
	}
	return 0
}

// pawnRank is the rank index from which pawns may double-step.
func (c Color) pawnRank() int {
	if c == White {
		return 6
	}
	return 1
}

// promotionRank is the far back rank for the color's pawns.
func (c Color) promotionRank() int {
	if c == White {
		return 0
	}
	return 7
}

// forward is the rank delta of a single pawn step.
func (c Color) forward() int {
	if c == White {
		return -1
	}
	return 1
}

type PieceType uint8

const (
	NoPieceType PieceType = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

func (p PieceType) String() string {
	switch p {
	case Pawn:
		return "pawn"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Rook:
		return "rook"
	case Queen:
		return "queen"
	case King:
		return "king"
	}
	return ""
}

// notation is the piece letter used in move notation. Pawns have none.
func (p PieceType) notation() string {
	switch p {
	case King:
		return "K"
	case Queen:
		return "Q"
	case Rook:
		return "R"
	case Bishop:
		return "B"
	case Knight:
		return "N"
	}
	return ""
}

// IsPromotionChoice reports whether a pawn may promote to p.
func (p PieceType) IsPromotionChoice() bool {
	return p == Knight || p == Bishop || p == Rook || p == Queen
}

// Piece is an immutable (type, color) value. The zero Piece is an empty square.
type Piece struct {
	Type  PieceType
	Color Color
}

var NoPiece = Piece{}

func (p Piece) IsEmpty() bool {
	return p.Type == NoPieceType
}

// Letter returns the FEN letter of the piece, uppercase for white.
func (p Piece) Letter() byte {
	var l byte
	switch p.Type {
	case Pawn:
		l = 'p'
	case Knight:
		l = 'n'
	case Bishop:
		l = 'b'
	case Rook:
		l = 'r'
	case Queen:
		l = 'q'
	case King:
		l = 'k'
	default:
		return 0
	}
	if p.Color == White {
		l -= 'a' - 'A'
	}
	return l
}

func (p Piece) String() string {
	if p.IsEmpty() {
		return "-"
	}
	return p.Color.String() + " " + p.Type.String()
}

// PieceFromLetter maps a FEN letter to a piece. ok is false for anything else.
func PieceFromLetter(l byte) (Piece, bool) {
	color := Black
	if l >= 'A' && l <= 'Z' {
		color = White
	}
	t := pieceTypeFromLetter(l)
	if t == NoPieceType {
		return NoPiece, false
	}
	return Piece{Type: t, Color: color}, true
}

func pieceTypeFromLetter(l byte) PieceType {
	switch strings.ToLower(string(l)) {
	case "p":
		return Pawn
	case "n":
		return Knight
	case "b":
		return Bishop
	case "r":
		return Rook
	case "q":
		return Queen
	case "k":
		return King
	}
	return NoPieceType
}
