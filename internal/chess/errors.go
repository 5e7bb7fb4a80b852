package chess

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidFEN         = errors.New("invalid FEN")
	ErrInvalidSquare      = errors.New("invalid square")
	ErrInvalidMove        = errors.New("invalid move notation")
	ErrIllegalMove        = errors.New("illegal move")
	ErrInvalidPromotion   = errors.New("invalid promotion piece")
	ErrNoPendingPromotion = errors.New("no promotion pending")
)

// Reason tells the caller which step of move validation rejected a move.
type Reason string

const (
	ReasonNoPiece           Reason = "no-piece-at-source"
	ReasonWrongTurn         Reason = "wrong-turn"
	ReasonOwnPiece          Reason = "destination-occupied-by-own-piece"
	ReasonIllegalShape      Reason = "shape-illegal-for-piece"
	ReasonKingInCheck       Reason = "leaves-own-king-in-check"
	ReasonCastling          Reason = "castling-precondition-failed"
	ReasonAwaitingPromotion Reason = "awaiting-promotion"
)

// MoveError is returned for every rejected move. The game state is unchanged.
type MoveError struct {
	Reason Reason
	From   Square
	To     Square
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("illegal move %s%s: %s", e.From, e.To, e.Reason)
}

func (e *MoveError) Is(target error) bool {
	return target == ErrIllegalMove
}

func reject(reason Reason, from, to Square) error {
	return &MoveError{Reason: reason, From: from, To: to}
}

// RejectionReason extracts the reason from an illegal-move error.
func RejectionReason(err error) (Reason, bool) {
	var me *MoveError
	if errors.As(err, &me) {
		return me.Reason, true
	}
	return "", false
}
