package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/benbeisheim/chessrules/internal/chess"
	"github.com/benbeisheim/chessrules/internal/ws"
)

type fakeConn struct {
	msgs   chan ws.Message
	closed bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{msgs: make(chan ws.Message, 32)}
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	f.msgs <- v.(ws.Message)
	return nil
}

func (f *fakeConn) WriteMessage(int, []byte) error { return nil }

func (f *fakeConn) Close() error {
	f.closed = true
	return nil
}

// nextState waits for a gameState message whose FEN is want.
func (f *fakeConn) nextState(t *testing.T, want string) GameState {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case msg := <-f.msgs:
			if msg.Type != ws.MessageTypeGameState {
				continue
			}
			var s GameState
			if err := json.Unmarshal(msg.Payload, &s); err != nil {
				t.Fatal(err)
			}
			if s.FEN == want {
				return s
			}
		case <-deadline:
			t.Fatalf("no state with FEN %q", want)
		}
	}
}

func newTestGame(t *testing.T, fen string) *Game {
	t.Helper()
	g, err := NewGame("test", fen)
	if err != nil {
		t.Fatal(err)
	}
	if c, _ := g.AddPlayer("alice"); c != PlayerColorWhite {
		t.Fatalf("alice seated as %s", c)
	}
	if c, _ := g.AddPlayer("bob"); c != PlayerColorBlack {
		t.Fatalf("bob seated as %s", c)
	}
	return g
}

func algebraic(s string) WSMove {
	return WSMove{Move: s}
}

func TestAddPlayer(t *testing.T) {
	g := newTestGame(t, "")
	if c, err := g.AddPlayer("alice"); err != nil || c != PlayerColorWhite {
		t.Fatalf("rejoin = %s, %v", c, err)
	}
	if _, err := g.AddPlayer("carol"); !errors.Is(err, ErrGameFull) {
		t.Fatalf("third player = %v, want ErrGameFull", err)
	}
	if !g.IsPlayerInGame("bob") || g.IsPlayerInGame("carol") {
		t.Fatal("seat lookup is wrong")
	}
}

func TestNewGameRejectsBadFEN(t *testing.T) {
	if _, err := NewGame("x", "not a fen"); !errors.Is(err, chess.ErrInvalidFEN) {
		t.Fatalf("err = %v", err)
	}
}

func TestMakeMoveEnforcesSeats(t *testing.T) {
	g := newTestGame(t, "")
	if _, err := g.MakeMove("bob", algebraic("e7e5")); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("bob moving first = %v", err)
	}
	if _, err := g.MakeMove("carol", algebraic("e2e4")); !errors.Is(err, ErrNotInGame) {
		t.Fatalf("spectator moving = %v", err)
	}
	if _, err := g.MakeMove("alice", WSMove{From: Position{X: 4, Y: 6}, To: Position{X: 4, Y: 4}}); err != nil {
		t.Fatal(err)
	}
	_, err := g.MakeMove("bob", algebraic("e7e4"))
	if reason, ok := chess.RejectionReason(err); !ok || reason != chess.ReasonIllegalShape {
		t.Fatalf("e7e4 = %v", err)
	}
	if _, err := g.MakeMove("bob", algebraic("d7d5")); err != nil {
		t.Fatal(err)
	}
	if _, err := g.MakeMove("alice", algebraic("e4d5")); err != nil {
		t.Fatal(err)
	}

	s := g.GetState()
	if s.ToMove != "black" || len(s.MoveHistory) != 2 {
		t.Fatalf("state = %s, %d moves", s.ToMove, len(s.MoveHistory))
	}
	if s.MoveHistory[1].WhitePly.Notation != "exd5" || s.MoveHistory[1].BlackPly != nil {
		t.Fatalf("second move = %+v", s.MoveHistory[1])
	}
	if len(s.CapturedPieces.White) != 1 || s.CapturedPieces.White[0].Type != Pawn {
		t.Fatalf("captured = %+v", s.CapturedPieces)
	}
	if s.LastMove == nil || s.LastMove.To != (Position{X: 3, Y: 3}) {
		t.Fatalf("last move = %+v", s.LastMove)
	}
	if s.Board.Board[3][3] == nil || s.Board.Board[3][3].Color != "white" {
		t.Fatal("d5 should hold a white pawn")
	}

	start, moves, fen, result := g.Archive()
	if start != chess.StartFEN || len(moves) != 3 || moves[2] != "e4d5" || fen != s.FEN || result != "" {
		t.Fatalf("archive = %q %v %q %q", start, moves, fen, result)
	}
}

func TestPromotionThroughGame(t *testing.T) {
	g := newTestGame(t, "8/4P3/8/8/8/8/k7/4K3 w - - 0 1")
	res, err := g.MakeMove("alice", algebraic("e7e8"))
	if err != nil || !res.AwaitingPromotion {
		t.Fatalf("e7e8 = %+v, %v", res, err)
	}
	s := g.GetState()
	if s.PromotionSquare == nil || *s.PromotionSquare != (Position{X: 4, Y: 0}) {
		t.Fatalf("promotion square = %v", s.PromotionSquare)
	}
	if _, err := g.Promote("alice", "king"); !errors.Is(err, chess.ErrInvalidPromotion) {
		t.Fatalf("promote king = %v", err)
	}
	if _, err := g.Promote("bob", "queen"); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("bob promoting = %v", err)
	}
	res, err = g.Promote("alice", "n")
	if err != nil {
		t.Fatal(err)
	}
	if res.Record.Promotion != chess.Knight {
		t.Fatalf("promoted to %s", res.Record.Promotion)
	}
	_, moves, _, _ := g.Archive()
	if len(moves) != 1 || moves[0] != "e7e8n" {
		t.Fatalf("moves = %v", moves)
	}
}

func TestGameOverRefusesMoves(t *testing.T) {
	g := newTestGame(t, "")
	for _, m := range []string{"f2f3", "e7e5", "g2g4", "d8h4"} {
		if _, err := g.Apply(mustMove(t, m)); err != nil {
			t.Fatal(err)
		}
	}
	s := g.GetState()
	if s.Resolve == nil || *s.Resolve != "checkmate" || len(s.LegalMoves) != 0 {
		t.Fatalf("resolve = %v, legal = %v", s.Resolve, s.LegalMoves)
	}
	if _, err := g.MakeMove("alice", algebraic("a2a3")); !errors.Is(err, ErrGameOver) {
		t.Fatalf("move after mate = %v", err)
	}
}

func TestBroadcastOnMove(t *testing.T) {
	g := newTestGame(t, "")
	conn := newFakeConn()
	if err := g.RegisterConnection("carol", conn); err != nil {
		t.Fatal(err)
	}
	conn.nextState(t, chess.StartFEN)

	if _, err := g.MakeMove("alice", algebraic("g1f3")); err != nil {
		t.Fatal(err)
	}
	s := conn.nextState(t, "rnbqkbnr/pppppppp/8/8/8/5N2/PPPPPPPP/RNBQKB1R b KQkq - 1 1")
	if len(s.LegalMoves) != 20 {
		t.Fatalf("black has %d legal moves in the broadcast", len(s.LegalMoves))
	}

	dup := newFakeConn()
	if err := g.RegisterConnection("carol", dup); err != nil || !dup.closed {
		t.Fatal("duplicate connection should be closed")
	}
	g.UnregisterConnection("carol", dup)
	if err := g.Send("carol", ws.Message{Type: ws.MessageTypeError}); err != nil {
		t.Fatal(err)
	}
	g.UnregisterConnection("carol", conn)
	if err := g.Send("carol", ws.Message{Type: ws.MessageTypeError}); err != nil {
		t.Fatal(err)
	}
}

func mustMove(t *testing.T, s string) chess.Move {
	t.Helper()
	m, err := chess.ParseMove(s)
	if err != nil {
		t.Fatal(err)
	}
	return m
}
