package chess

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the standard starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN builds a game from a FEN string. Placement and active color are
// required; castling, en passant and the two clocks default to "-", "-", 0
// and 1 when absent.
func ParseFEN(fen string) (*GameState, error) {
	fields := strings.Fields(fen)
	if len(fields) < 2 || len(fields) > 6 {
		return nil, fmt.Errorf("%w: need 2 to 6 fields, got %d", ErrInvalidFEN, len(fields))
	}

	board, err := parsePlacement(fields[0])
	if err != nil {
		return nil, err
	}

	var turn Color
	switch fields[1] {
	case "w":
		turn = White
	case "b":
		turn = Black
	default:
		return nil, fmt.Errorf("%w: active color %q", ErrInvalidFEN, fields[1])
	}

	rights := CastlingRights{}
	if len(fields) > 2 {
		if rights, err = parseCastling(fields[2]); err != nil {
			return nil, err
		}
	}

	var ep *Square
	if len(fields) > 3 && fields[3] != "-" {
		sq, err := ParseSquare(fields[3])
		if err != nil || (sq.Rank != 2 && sq.Rank != 5) {
			return nil, fmt.Errorf("%w: en passant square %q", ErrInvalidFEN, fields[3])
		}
		ep = &sq
	}

	halfMove, fullMove := 0, 1
	if len(fields) > 4 {
		if halfMove, err = strconv.Atoi(fields[4]); err != nil || halfMove < 0 {
			return nil, fmt.Errorf("%w: half-move clock %q", ErrInvalidFEN, fields[4])
		}
	}
	if len(fields) > 5 {
		if fullMove, err = strconv.Atoi(fields[5]); err != nil || fullMove < 1 {
			return nil, fmt.Errorf("%w: full-move number %q", ErrInvalidFEN, fields[5])
		}
	}

	return newGameState(board, turn, rights, ep, halfMove, fullMove), nil
}

func parsePlacement(placement string) (Board, error) {
	var b Board
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return b, fmt.Errorf("%w: need 8 ranks, got %d", ErrInvalidFEN, len(ranks))
	}
	kings := [2]int{}
	for rank, row := range ranks {
		file := 0
		for i := 0; i < len(row); i++ {
			c := row[i]
			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}
			p, ok := PieceFromLetter(c)
			if !ok {
				return b, fmt.Errorf("%w: piece letter %q", ErrInvalidFEN, c)
			}
			if file > 7 {
				return b, fmt.Errorf("%w: rank %d overflows", ErrInvalidFEN, 8-rank)
			}
			if p.Type == King {
				kings[p.Color]++
			}
			b.SetPiece(Square{Rank: rank, File: file}, p)
			file++
		}
		if file != 8 {
			return b, fmt.Errorf("%w: rank %d has %d squares", ErrInvalidFEN, 8-rank, file)
		}
	}
	if kings[White] != 1 || kings[Black] != 1 {
		return b, fmt.Errorf("%w: need exactly one king per side", ErrInvalidFEN)
	}
	return b, nil
}

func parseCastling(s string) (CastlingRights, error) {
	var rights CastlingRights
	if s == "-" {
		return rights, nil
	}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case 'K':
			rights.WhiteKingSide = true
		case 'Q':
			rights.WhiteQueenSide = true
		case 'k':
			rights.BlackKingSide = true
		case 'q':
			rights.BlackQueenSide = true
		default:
			return rights, fmt.Errorf("%w: castling field %q", ErrInvalidFEN, s)
		}
	}
	return rights, nil
}

func (g *GameState) turnLetter() string {
	if g.turn == White {
		return "w"
	}
	return "b"
}

// FEN exports the game in the six-field form.
func (g *GameState) FEN() string {
	ep := "-"
	if g.enPassant != nil {
		ep = g.enPassant.String()
	}
	return fmt.Sprintf("%s %s %s %s %d %d",
		g.board.placement(), g.turnLetter(), g.castling, ep, g.halfMoveClock, g.fullMoveNumber)
}
