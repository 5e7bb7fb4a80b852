package chess

// Square is a board coordinate. Rank 0 is the eighth rank (black's back rank),
// file 0 is the a-file.
type Square struct {
	Rank int `json:"rank"`
	File int `json:"file"`
}

func (s Square) OnBoard() bool {
	return s.Rank >= 0 && s.Rank < 8 && s.File >= 0 && s.File < 8
}

// squareColor is 0 for light squares and 1 for dark squares.
func (s Square) squareColor() int {
	return (s.Rank + s.File + 1) % 2
}

// Board is the only source of truth for occupancy. It knows nothing about rules.
type Board struct {
	squares [8][8]Piece
}

var backRank = [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// NewBoard returns the standard starting position.
func NewBoard() *Board {
	b := &Board{}
	for file := 0; file < 8; file++ {
		b.squares[0][file] = Piece{Type: backRank[file], Color: Black}
		b.squares[1][file] = Piece{Type: Pawn, Color: Black}
		b.squares[6][file] = Piece{Type: Pawn, Color: White}
		b.squares[7][file] = Piece{Type: backRank[file], Color: White}
	}
	return b
}

// Piece returns the piece on sq, or NoPiece for an empty or off-board square.
func (b *Board) Piece(sq Square) Piece {
	if !sq.OnBoard() {
		return NoPiece
	}
	return b.squares[sq.Rank][sq.File]
}

// SetPiece places p on sq. Passing NoPiece clears the square.
func (b *Board) SetPiece(sq Square, p Piece) {
	if !sq.OnBoard() {
		return
	}
	b.squares[sq.Rank][sq.File] = p
}

func (b *Board) IsEmpty(sq Square) bool {
	return b.Piece(sq).IsEmpty()
}

// Find returns the first square holding p, scanning from a8 to h1.
func (b *Board) Find(p Piece) (Square, bool) {
	for rank := 0; rank < 8; rank++ {
		for file := 0; file < 8; file++ {
			if b.squares[rank][file] == p {
				return Square{Rank: rank, File: file}, true
			}
		}
	}
	return Square{}, false
}

// Each calls fn for every occupied square.
func (b *Board) Each(fn func(sq Square, p Piece)) {
	for rank := 0; rank < 8; rank++ {
		for file := 0; file < 8; file++ {
			if p := b.squares[rank][file]; !p.IsEmpty() {
				fn(Square{Rank: rank, File: file}, p)
			}
		}
	}
}

// placement renders the FEN piece-placement field.
func (b *Board) placement() string {
	buf := make([]byte, 0, 72)
	for rank := 0; rank < 8; rank++ {
		empty := 0
		for file := 0; file < 8; file++ {
			p := b.squares[rank][file]
			if p.IsEmpty() {
				empty++
				continue
			}
			if empty > 0 {
				buf = append(buf, byte('0'+empty))
				empty = 0
			}
			buf = append(buf, p.Letter())
		}
		if empty > 0 {
			buf = append(buf, byte('0'+empty))
		}
		if rank < 7 {
			buf = append(buf, '/')
		}
	}
	return string(buf)
}

// squareChange is one entry of a board transaction.
type squareChange struct {
	sq    Square
	piece Piece
}

// transaction applies changes and returns a function restoring every touched
// square to its previous contents.
func (b *Board) transaction(changes ...squareChange) (restore func()) {
	saved := make([]squareChange, len(changes))
	for i, c := range changes {
		saved[i] = squareChange{sq: c.sq, piece: b.Piece(c.sq)}
	}
	for _, c := range changes {
		b.SetPiece(c.sq, c.piece)
	}
	return func() {
		for i := len(saved) - 1; i >= 0; i-- {
			b.SetPiece(saved[i].sq, saved[i].piece)
		}
	}
}
