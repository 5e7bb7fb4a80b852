package model

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/benbeisheim/chessrules/internal/chess"
	"github.com/benbeisheim/chessrules/internal/ws"
	"github.com/gofiber/websocket/v2"
)

var (
	ErrGameFull    = errors.New("game is full")
	ErrNotInGame   = errors.New("player not in game")
	ErrNotYourTurn = errors.New("not your turn")
	ErrGameOver    = errors.New("game is over")
	ErrStale       = errors.New("position changed since it was read")
)

// Conn is the part of a websocket connection the game writes to.
type Conn interface {
	WriteJSON(v interface{}) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// The connections for a specific game
type GameConnections struct {
	connections map[string]Conn // playerID -> connection
	mu          sync.Mutex
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		connections: make(map[string]Conn),
	}
}

// Game serializes every call into its rules engine and fans state out to the
// connected clients.
type Game struct {
	ID          string
	mu          sync.Mutex
	rules       *chess.GameState
	startFEN    string
	moves       []string
	players     struct{ White, Black ClientPlayer }
	connections *GameConnections
}

// GameState is the client view of a game.
type GameState struct {
	ID              string         `json:"id"`
	FEN             string         `json:"fen"`
	Board           *BoardState    `json:"boardState"`
	ToMove          string         `json:"toMove"`
	MoveHistory     []Move         `json:"moveHistory"`
	CapturedPieces  CapturedPieces `json:"capturedPieces"`
	IsCheck         bool           `json:"isCheck"`
	Status          chess.Status   `json:"status"`
	LegalMoves      []string       `json:"legalMoves"`
	EnPassantTarget *Position      `json:"enPassantTarget"`
	Resolve         *string        `json:"resolve"`
	Players         struct {
		White ClientPlayer `json:"white"`
		Black ClientPlayer `json:"black"`
	} `json:"players"`
	PromotionSquare *Position   `json:"promotionSquare"`
	LastMove        *SimpleMove `json:"lastMove"`
}

// CapturedPieces lists material taken by each side: White holds the black
// pieces white has captured.
type CapturedPieces struct {
	White []Piece `json:"white"`
	Black []Piece `json:"black"`
}

// NewGame starts a game from fen, or from the standard position when fen is
// empty.
func NewGame(id, fen string) (*Game, error) {
	if fen == "" {
		fen = chess.StartFEN
	}
	rules, err := chess.ParseFEN(fen)
	if err != nil {
		return nil, err
	}
	return &Game{
		ID:          id,
		rules:       rules,
		startFEN:    rules.FEN(),
		moves:       make([]string, 0),
		connections: NewGameConnections(),
	}, nil
}

// AddPlayer seats playerID in the first free color. A player already seated
// gets their color back.
func (g *Game) AddPlayer(playerID string) (PlayerColor, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if c, ok := g.seatOf(playerID); ok {
		return playerColorOf(c), nil
	}
	if g.players.White.ID == "" {
		g.players.White = ClientPlayer{ID: playerID, Color: string(PlayerColorWhite)}
		return PlayerColorWhite, nil
	}
	if g.players.Black.ID == "" {
		g.players.Black = ClientPlayer{ID: playerID, Color: string(PlayerColorBlack)}
		return PlayerColorBlack, nil
	}
	return "", ErrGameFull
}

func (g *Game) IsPlayerInGame(playerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, ok := g.seatOf(playerID)
	return ok
}

func (g *Game) seatOf(playerID string) (chess.Color, bool) {
	switch {
	case playerID == "":
		return chess.White, false
	case g.players.White.ID == playerID:
		return chess.White, true
	case g.players.Black.ID == playerID:
		return chess.Black, true
	}
	return chess.White, false
}

// authorize checks that playerID holds the seat of the side to move.
func (g *Game) authorize(playerID string) error {
	c, ok := g.seatOf(playerID)
	if !ok {
		return ErrNotInGame
	}
	if c != g.rules.Turn() {
		return ErrNotYourTurn
	}
	return nil
}

func (g *Game) GetState() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.state()
}

func (g *Game) state() GameState {
	status := g.rules.Status()
	history := g.rules.History()

	s := GameState{
		ID:             g.ID,
		FEN:            g.rules.FEN(),
		Board:          newBoardState(g.rules.Board()),
		ToMove:         g.rules.Turn().String(),
		MoveHistory:    pairMoves(history),
		CapturedPieces: CapturedPieces{White: make([]Piece, 0), Black: make([]Piece, 0)},
		IsCheck:        status.Check,
		Status:         status,
		LegalMoves:     make([]string, 0),
	}
	s.Players.White, s.Players.Black = g.players.White, g.players.Black

	for _, rec := range history {
		if rec.Captured.IsEmpty() {
			continue
		}
		p := Piece{Type: pieceTypeOf(rec.Captured.Type), Color: rec.Captured.Color.String(), Position: positionOf(rec.To)}
		if rec.Piece.Color == chess.White {
			s.CapturedPieces.White = append(s.CapturedPieces.White, p)
		} else {
			s.CapturedPieces.Black = append(s.CapturedPieces.Black, p)
		}
	}
	if n := len(history); n > 0 {
		last := history[n-1]
		s.LastMove = &SimpleMove{From: positionOf(last.From), To: positionOf(last.To)}
	}
	if ep, ok := g.rules.EnPassantTarget(); ok {
		pos := positionOf(ep)
		s.EnPassantTarget = &pos
	}
	if pending, ok := g.rules.PendingPromotion(); ok {
		pos := positionOf(pending.To)
		s.PromotionSquare = &pos
	}
	if r := status.Resolution(); r != "" {
		s.Resolve = &r
	} else {
		for _, m := range g.rules.LegalMoves() {
			s.LegalMoves = append(s.LegalMoves, m.String())
		}
	}
	return s
}

// MakeMove applies a move for playerID, who must hold the side to move.
func (g *Game) MakeMove(playerID string, move WSMove) (*chess.MoveResult, error) {
	m, err := move.toChess()
	if err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.authorize(playerID); err != nil {
		return nil, err
	}
	return g.apply(m)
}

// Apply commits a move with no seat check. It is how engine replies and
// archived games re-enter the rules engine.
func (g *Game) Apply(m chess.Move) (*chess.MoveResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.apply(m)
}

// ApplyAt commits m only if the game is still at fen. It guards moves that
// were computed from an earlier read of the position.
func (g *Game) ApplyAt(fen string, m chess.Move) (*chess.MoveResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.rules.FEN() != fen {
		return nil, ErrStale
	}
	return g.apply(m)
}

func (g *Game) apply(m chess.Move) (*chess.MoveResult, error) {
	if g.over() {
		return nil, ErrGameOver
	}
	res, err := g.rules.Apply(m)
	if err != nil {
		return nil, err
	}
	g.committed(res)
	return res, nil
}

// Promote finishes a pending promotion for playerID.
func (g *Game) Promote(playerID string, piece PieceType) (*chess.MoveResult, error) {
	choice, ok := piece.promotionChoice()
	if !ok {
		return nil, fmt.Errorf("%w: %q", chess.ErrInvalidPromotion, piece)
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.authorize(playerID); err != nil {
		return nil, err
	}
	letter := chess.Piece{Type: choice, Color: g.rules.Turn()}.Letter()
	res, err := g.rules.Promote(letter)
	if err != nil {
		return nil, err
	}
	g.committed(res)
	return res, nil
}

func (g *Game) CancelPromotion(playerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.authorize(playerID); err != nil {
		return err
	}
	if err := g.rules.CancelPromotion(); err != nil {
		return err
	}
	go g.broadcastState()
	return nil
}

func (g *Game) committed(res *chess.MoveResult) {
	if res.Record != nil {
		g.moves = append(g.moves, res.Record.Move().String())
	}
	go g.broadcastState()
}

// over reports whether a terminal condition has been reached. Draw flags end
// the game here even though the rules engine itself keeps accepting moves.
func (g *Game) over() bool {
	return g.rules.Status().Resolution() != ""
}

func (g *Game) LegalMovesFrom(sq chess.Square) []chess.Move {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.rules.LegalMovesFrom(sq)
}

func (g *Game) FEN() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.rules.FEN()
}

// IsSeated reports whether a player holds color.
func (g *Game) IsSeated(c chess.Color) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if c == chess.White {
		return g.players.White.ID != ""
	}
	return g.players.Black.ID != ""
}

// Turn returns the side to move and whether a promotion choice is pending.
func (g *Game) Turn() (chess.Color, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, pending := g.rules.PendingPromotion()
	return g.rules.Turn(), pending
}

// Archive returns what is needed to rebuild the game: the starting FEN, the
// committed moves in algebraic form, the current FEN and the resolution.
func (g *Game) Archive() (startFEN string, moves []string, fen, result string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.startFEN, append([]string(nil), g.moves...), g.rules.FEN(), g.rules.Status().Resolution()
}

// RegisterConnection attaches conn for playerID. Anyone may watch; only seated
// players may move. A second connection for the same player is refused.
func (g *Game) RegisterConnection(playerID string, conn Conn) error {
	g.connections.mu.Lock()
	if _, exists := g.connections.connections[playerID]; exists {
		g.connections.mu.Unlock()
		conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "Connection already exists"),
		)
		conn.Close()
		return nil
	}
	g.connections.connections[playerID] = conn
	g.connections.mu.Unlock()

	go g.broadcastState()
	return nil
}

// UnregisterConnection removes conn, but only if it is still the connection
// registered for playerID.
func (g *Game) UnregisterConnection(playerID string, conn Conn) {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()

	if current, exists := g.connections.connections[playerID]; exists && current == conn {
		delete(g.connections.connections, playerID)
	}
}

// Send writes msg to playerID's connection, if any.
func (g *Game) Send(playerID string, msg ws.Message) error {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()

	conn, ok := g.connections.connections[playerID]
	if !ok {
		return nil
	}
	return conn.WriteJSON(msg)
}

// broadcastState pushes the current state to every connection. Connections
// that fail to write are dropped.
func (g *Game) broadcastState() {
	msg, err := ws.NewMessage(ws.MessageTypeGameState, g.GetState())
	if err != nil {
		log.Printf("game %s: marshal state: %v", g.ID, err)
		return
	}

	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()
	for playerID, conn := range g.connections.connections {
		if err := conn.WriteJSON(msg); err != nil {
			log.Printf("game %s: send state to %s: %v", g.ID, playerID, err)
			delete(g.connections.connections, playerID)
		}
	}
}
