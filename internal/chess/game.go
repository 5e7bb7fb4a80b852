package chess

import (
	"fmt"
	"slices"
)

// GameState owns the board and everything else needed to judge and commit
// moves. It is mutated in place and is not safe for concurrent use: move
// validation temporarily rewrites the board and restores it, so callers must
// serialize every call on one GameState.
type GameState struct {
	board          Board
	turn           Color
	castling       CastlingRights
	enPassant      *Square
	halfMoveClock  int
	fullMoveNumber int

	positions  []string
	seen       map[string]int
	repetition bool
	moves      []MoveRecord

	pending *Move

	// legal is the memoized legal move list for the current ply.
	legal      []Move
	legalValid bool
}

// CastlingRights only ever narrow during a game.
type CastlingRights struct {
	WhiteKingSide  bool `json:"whiteKingSide"`
	WhiteQueenSide bool `json:"whiteQueenSide"`
	BlackKingSide  bool `json:"blackKingSide"`
	BlackQueenSide bool `json:"blackQueenSide"`
}

func (c CastlingRights) allows(color Color, kingSide bool) bool {
	switch {
	case color == White && kingSide:
		return c.WhiteKingSide
	case color == White:
		return c.WhiteQueenSide
	case kingSide:
		return c.BlackKingSide
	}
	return c.BlackQueenSide
}

func (c *CastlingRights) clear(color Color) {
	if color == White {
		c.WhiteKingSide, c.WhiteQueenSide = false, false
	} else {
		c.BlackKingSide, c.BlackQueenSide = false, false
	}
}

// clearCorner drops the right tied to the rook home square sq, if any.
func (c *CastlingRights) clearCorner(sq Square) {
	switch sq {
	case Square{Rank: 7, File: 7}:
		c.WhiteKingSide = false
	case Square{Rank: 7, File: 0}:
		c.WhiteQueenSide = false
	case Square{Rank: 0, File: 7}:
		c.BlackKingSide = false
	case Square{Rank: 0, File: 0}:
		c.BlackQueenSide = false
	}
}

func (c CastlingRights) String() string {
	s := ""
	if c.WhiteKingSide {
		s += "K"
	}
	if c.WhiteQueenSide {
		s += "Q"
	}
	if c.BlackKingSide {
		s += "k"
	}
	if c.BlackQueenSide {
		s += "q"
	}
	if s == "" {
		return "-"
	}
	return s
}

type CastleRookMove struct {
	From Square `json:"from"`
	To   Square `json:"to"`
}

// MoveRecord is one committed ply.
type MoveRecord struct {
	Piece     Piece           `json:"piece"`
	From      Square          `json:"from"`
	To        Square          `json:"to"`
	Captured  Piece           `json:"captured"`
	EnPassant bool            `json:"enPassant"`
	Castle    *CastleRookMove `json:"castle,omitempty"`
	Promotion PieceType       `json:"promotion"`
	Notation  string          `json:"notation"`
}

// Move returns the record in request form.
func (r MoveRecord) Move() Move {
	return Move{From: r.From, To: r.To, Promotion: r.Promotion}
}

// MoveResult is the response to an accepted move request.
type MoveResult struct {
	// Record is nil while the move waits for a promotion choice.
	Record            *MoveRecord
	AwaitingPromotion bool
	FEN               string
	Status            Status
}

// NewGame returns a game at the standard starting position.
func NewGame() *GameState {
	return newGameState(*NewBoard(), White, CastlingRights{true, true, true, true}, nil, 0, 1)
}

func newGameState(b Board, turn Color, rights CastlingRights, ep *Square, halfMove, fullMove int) *GameState {
	g := &GameState{
		board:          b,
		turn:           turn,
		castling:       rights,
		enPassant:      ep,
		halfMoveClock:  halfMove,
		fullMoveNumber: fullMove,
		seen:           make(map[string]int),
	}
	g.recordPosition()
	return g
}

// Board returns a copy of the current board.
func (g *GameState) Board() Board {
	return g.board
}

func (g *GameState) Turn() Color {
	return g.turn
}

func (g *GameState) CastlingRights() CastlingRights {
	return g.castling
}

// EnPassantTarget returns the square skipped by the previous double step.
func (g *GameState) EnPassantTarget() (Square, bool) {
	if g.enPassant == nil {
		return Square{}, false
	}
	return *g.enPassant, true
}

func (g *GameState) HalfMoveClock() int {
	return g.halfMoveClock
}

func (g *GameState) FullMoveNumber() int {
	return g.fullMoveNumber
}

// History returns the committed moves, oldest first.
func (g *GameState) History() []MoveRecord {
	return slices.Clone(g.moves)
}

// Positions returns the position keys seen so far, the start position first.
func (g *GameState) Positions() []string {
	return slices.Clone(g.positions)
}

// PendingPromotion returns the move waiting for a promotion choice.
func (g *GameState) PendingPromotion() (Move, bool) {
	if g.pending == nil {
		return Move{}, false
	}
	return *g.pending, true
}

// ValidateMove runs every legality check without committing anything.
func (g *GameState) ValidateMove(from, to Square) error {
	if g.pending != nil {
		return reject(ReasonAwaitingPromotion, from, to)
	}
	_, err := g.validate(from, to)
	return err
}

// MakeMove validates and commits a move between two squares. A pawn reaching
// the last rank leaves the game awaiting a Promote call.
func (g *GameState) MakeMove(from, to Square) (*MoveResult, error) {
	return g.Apply(Move{From: from, To: to})
}

// ApplyAlgebraic parses a move such as "e2e4" or "e7e8q" and applies it.
func (g *GameState) ApplyAlgebraic(s string) (*MoveResult, error) {
	m, err := ParseMove(s)
	if err != nil {
		return nil, err
	}
	return g.Apply(m)
}

// Apply validates and commits m. If m is a promotion and carries its piece,
// it commits in one step.
func (g *GameState) Apply(m Move) (*MoveResult, error) {
	if g.pending != nil {
		return nil, reject(ReasonAwaitingPromotion, m.From, m.To)
	}
	castle, err := g.validate(m.From, m.To)
	if err != nil {
		return nil, err
	}
	if castle {
		rec := g.commitCastle(m.From, m.To)
		return g.result(&rec), nil
	}

	piece := g.board.Piece(m.From)
	if piece.Type != Pawn || m.To.Rank != piece.Color.promotionRank() {
		m.Promotion = NoPieceType
		rec := g.commit(m)
		return g.result(&rec), nil
	}
	if m.Promotion == NoPieceType {
		pending := m
		g.pending = &pending
		return &MoveResult{AwaitingPromotion: true, FEN: g.FEN(), Status: g.Status()}, nil
	}
	if !m.Promotion.IsPromotionChoice() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPromotion, m.Promotion)
	}
	rec := g.commit(m)
	return g.result(&rec), nil
}

// Promote completes a pending promotion. The letter must be one of NBRQ for
// white or nbrq for black; anything else leaves the promotion pending.
func (g *GameState) Promote(letter byte) (*MoveResult, error) {
	if g.pending == nil {
		return nil, ErrNoPendingPromotion
	}
	p, ok := PieceFromLetter(letter)
	if !ok || !p.Type.IsPromotionChoice() || p.Color != g.turn {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPromotion, letter)
	}
	m := *g.pending
	m.Promotion = p.Type
	g.pending = nil
	rec := g.commit(m)
	return g.result(&rec), nil
}

// CancelPromotion abandons a pending promotion move. The board was never
// touched, so nothing else changes.
func (g *GameState) CancelPromotion() error {
	if g.pending == nil {
		return ErrNoPendingPromotion
	}
	g.pending = nil
	return nil
}

// validate runs the rejection steps in order. castle is true when the move
// matched the castling pattern and passed the castling checks.
func (g *GameState) validate(from, to Square) (castle bool, err error) {
	if !from.OnBoard() {
		return false, reject(ReasonNoPiece, from, to)
	}
	piece := g.board.Piece(from)
	if piece.IsEmpty() {
		return false, reject(ReasonNoPiece, from, to)
	}
	if piece.Color != g.turn {
		return false, reject(ReasonWrongTurn, from, to)
	}
	if !to.OnBoard() {
		return false, reject(ReasonIllegalShape, from, to)
	}
	if target := g.board.Piece(to); !target.IsEmpty() && target.Color == piece.Color {
		return false, reject(ReasonOwnPiece, from, to)
	}
	if isCastlingPattern(piece, from, to) {
		if err := g.validateCastle(from, to); err != nil {
			return false, err
		}
		return true, nil
	}
	if !IsShapeLegal(&g.board, from, to, g.enPassant) {
		return false, reject(ReasonIllegalShape, from, to)
	}
	if g.leavesKingInCheck(Move{From: from, To: to}) {
		return false, reject(ReasonKingInCheck, from, to)
	}
	return false, nil
}

// moveChanges lists the board edits of a non-castling move, including the
// removal of an en-passant victim.
func (g *GameState) moveChanges(m Move) []squareChange {
	piece := g.board.Piece(m.From)
	placed := piece
	if m.Promotion != NoPieceType {
		placed = Piece{Type: m.Promotion, Color: piece.Color}
	}
	changes := []squareChange{{sq: m.From, piece: NoPiece}, {sq: m.To, piece: placed}}
	if g.isEnPassantCapture(piece, m.From, m.To) {
		changes = append(changes, squareChange{sq: Square{Rank: m.From.Rank, File: m.To.File}, piece: NoPiece})
	}
	return changes
}

func (g *GameState) isEnPassantCapture(piece Piece, from, to Square) bool {
	return piece.Type == Pawn && from.File != to.File && g.board.IsEmpty(to) &&
		g.enPassant != nil && *g.enPassant == to
}

// simulate applies changes, evaluates fn on the resulting board and restores
// the board before returning, even if fn panics.
func (g *GameState) simulate(changes []squareChange, fn func() bool) bool {
	restore := g.board.transaction(changes...)
	defer restore()
	return fn()
}

// leavesKingInCheck is the check-safety simulation for a non-castling move.
func (g *GameState) leavesKingInCheck(m Move) bool {
	mover := g.board.Piece(m.From).Color
	return g.simulate(g.moveChanges(m), func() bool {
		return g.kingAttacked(mover)
	})
}

// kingAttacked reports whether color's king is attacked. A board without that
// king is malformed; it is treated as not in check.
func (g *GameState) kingAttacked(color Color) bool {
	king, ok := g.board.Find(Piece{Type: King, Color: color})
	if !ok {
		return false
	}
	return g.IsSquareAttacked(king, color.Opponent())
}

func (g *GameState) commit(m Move) MoveRecord {
	piece := g.board.Piece(m.From)
	rec := MoveRecord{
		Piece:     piece,
		From:      m.From,
		To:        m.To,
		Captured:  g.board.Piece(m.To),
		EnPassant: g.isEnPassantCapture(piece, m.From, m.To),
		Promotion: m.Promotion,
	}
	if rec.EnPassant {
		rec.Captured = g.board.Piece(Square{Rank: m.From.Rank, File: m.To.File})
	}
	rec.Notation = g.notation(rec)

	g.board.transaction(g.moveChanges(m)...)

	if piece.Type == Pawn || !rec.Captured.IsEmpty() {
		g.halfMoveClock = 0
	} else {
		g.halfMoveClock++
	}

	if piece.Type == King {
		g.castling.clear(piece.Color)
	}
	g.castling.clearCorner(m.From)
	g.castling.clearCorner(m.To)

	g.enPassant = nil
	if piece.Type == Pawn && abs(m.To.Rank-m.From.Rank) == 2 {
		skipped := Square{Rank: (m.From.Rank + m.To.Rank) / 2, File: m.From.File}
		g.enPassant = &skipped
	}

	g.finishTurn(&rec)
	return rec
}

// finishTurn does the bookkeeping shared by every committed move.
func (g *GameState) finishTurn(rec *MoveRecord) {
	if g.turn == Black {
		g.fullMoveNumber++
	}
	g.turn = g.turn.Opponent()
	g.legal, g.legalValid = nil, false
	g.recordPosition()

	switch {
	case g.IsCheckmate():
		rec.Notation += "#"
	case g.IsCheck():
		rec.Notation += "+"
	}
	g.moves = append(g.moves, *rec)
}

// positionKey identifies a position for repetition purposes: placement, side
// to move, castling rights and the en-passant square. The en-passant square
// only counts while a pawn can legally capture there.
func (g *GameState) positionKey() string {
	ep := "-"
	if g.enPassantCapturable() {
		ep = g.enPassant.String()
	}
	return g.board.placement() + " " + g.turnLetter() + " " + g.castling.String() + " " + ep
}

func (g *GameState) enPassantCapturable() bool {
	if g.enPassant == nil {
		return false
	}
	to := *g.enPassant
	for _, df := range []int{-1, 1} {
		from := Square{Rank: to.Rank - g.turn.forward(), File: to.File + df}
		if g.board.Piece(from) != (Piece{Type: Pawn, Color: g.turn}) {
			continue
		}
		if _, err := g.validate(from, to); err == nil {
			return true
		}
	}
	return false
}

func (g *GameState) recordPosition() {
	key := g.positionKey()
	g.positions = append(g.positions, key)
	g.seen[key]++
	if g.seen[key] >= 3 {
		g.repetition = true
	}
}

func (g *GameState) result(rec *MoveRecord) *MoveResult {
	return &MoveResult{Record: rec, FEN: g.FEN(), Status: g.Status()}
}
