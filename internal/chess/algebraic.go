package chess

import (
	"fmt"
	"strings"
)

// String renders the square in file+rank form, e.g. "e4".
func (s Square) String() string {
	if !s.OnBoard() {
		return "??"
	}
	return fmt.Sprintf("%c%d", 'a'+s.File, 8-s.Rank)
}

func (s Square) fileNotation() string {
	return string(rune('a' + s.File))
}

// ParseSquare converts "e4" into a Square: file index = letter - 'a',
// rank index = 8 - digit.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return Square{}, fmt.Errorf("%w: %q", ErrInvalidSquare, s)
	}
	file, rank := s[0], s[1]
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return Square{}, fmt.Errorf("%w: %q", ErrInvalidSquare, s)
	}
	return Square{Rank: 8 - int(rank-'0'), File: int(file - 'a')}, nil
}

// Move is a move request: two squares plus an optional promotion piece.
type Move struct {
	From      Square
	To        Square
	Promotion PieceType
}

// String renders the move in the 4-or-5 character form used by engines.
func (m Move) String() string {
	s := m.From.String() + m.To.String()
	if m.Promotion.IsPromotionChoice() {
		s += string(Piece{Type: m.Promotion, Color: Black}.Letter())
	}
	return s
}

// ParseMove parses "e2e4" or "e7e8q". The promotion letter is accepted in
// either case since engines send lowercase regardless of color.
func ParseMove(s string) (Move, error) {
	s = strings.TrimSpace(s)
	if len(s) != 4 && len(s) != 5 {
		return Move{}, fmt.Errorf("%w: %q", ErrInvalidMove, s)
	}
	from, err := ParseSquare(s[0:2])
	if err != nil {
		return Move{}, fmt.Errorf("%w: %q", ErrInvalidMove, s)
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return Move{}, fmt.Errorf("%w: %q", ErrInvalidMove, s)
	}
	m := Move{From: from, To: to}
	if len(s) == 5 {
		m.Promotion = pieceTypeFromLetter(s[4])
		if !m.Promotion.IsPromotionChoice() {
			return Move{}, fmt.Errorf("%w: %q", ErrInvalidMove, s)
		}
	}
	return m, nil
}
