package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/benbeisheim/chessrules/internal/chess"
	"github.com/benbeisheim/chessrules/internal/model"
	"github.com/benbeisheim/chessrules/internal/opponent"
	"github.com/benbeisheim/chessrules/internal/ws"
	"github.com/google/uuid"
)

var (
	ErrNoOpponent = errors.New("no engine configured")
	ErrSeatTaken  = errors.New("side to move belongs to a player")
)

type GameService struct {
	gameManager *GameManager
	opponent    opponent.Proposer
}

// NewGameService wires the registry to an optional move proposer. With a nil
// proposer engine moves are refused.
func NewGameService(gameManager *GameManager, proposer opponent.Proposer) *GameService {
	return &GameService{
		gameManager: gameManager,
		opponent:    proposer,
	}
}

func (gs *GameService) JoinGame(gameID string, playerID string) (model.PlayerColor, error) {
	return gs.gameManager.AddPlayerToGame(gameID, playerID)
}

// CreateGame starts a game at fen, or at the standard position when fen is
// empty, and returns its id.
func (gs *GameService) CreateGame(fen string) (string, error) {
	gameID := uuid.New().String()

	if _, err := gs.gameManager.CreateGame(gameID, fen); err != nil {
		return "", fmt.Errorf("failed to create game: %w", err)
	}
	return gameID, nil
}

func (gs *GameService) GetGameState(gameID string) (model.GameState, error) {
	return gs.gameManager.GetGameState(gameID)
}

func (gs *GameService) HandleMove(gameID string, playerID string, move model.WSMove) (*chess.MoveResult, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	res, err := game.MakeMove(playerID, move)
	if err != nil {
		return nil, err
	}
	gs.gameManager.save(game)
	return res, nil
}

func (gs *GameService) HandlePromotion(gameID string, playerID string, piece model.PieceType) (*chess.MoveResult, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	res, err := game.Promote(playerID, piece)
	if err != nil {
		return nil, err
	}
	gs.gameManager.save(game)
	return res, nil
}

func (gs *GameService) CancelPromotion(gameID string, playerID string) error {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.CancelPromotion(playerID)
}

// LegalMoves lists the legal moves of the piece on from ("e2"), in algebraic
// form.
func (gs *GameService) LegalMoves(gameID string, from string) ([]string, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	sq, err := chess.ParseSquare(from)
	if err != nil {
		return nil, err
	}
	moves := make([]string, 0)
	for _, m := range game.LegalMovesFrom(sq) {
		moves = append(moves, m.String())
	}
	return moves, nil
}

// RequestEngineMove asks the opponent for a move in the current position and
// feeds it through the same validation as a player's move. Only an unseated
// side can be played by the engine.
func (gs *GameService) RequestEngineMove(ctx context.Context, gameID string) (*chess.MoveResult, error) {
	if gs.opponent == nil {
		return nil, ErrNoOpponent
	}
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	turn, _ := game.Turn()
	if game.IsSeated(turn) {
		return nil, ErrSeatTaken
	}

	fen := game.FEN()
	proposal, err := gs.opponent.ProposeMove(ctx, fen)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	m, err := chess.ParseMove(proposal)
	if err != nil {
		return nil, fmt.Errorf("engine sent %q: %w", proposal, err)
	}
	res, err := game.ApplyAt(fen, m)
	if err != nil {
		return nil, err
	}
	gs.gameManager.save(game)
	return res, nil
}

func (gs *GameService) RegisterConnection(gameID string, playerID string, conn model.Conn) error {
	return gs.gameManager.RegisterConnection(gameID, playerID, conn)
}

func (gs *GameService) UnregisterConnection(gameID string, playerID string, conn model.Conn) {
	gs.gameManager.UnregisterConnection(gameID, playerID, conn)
}

func (gs *GameService) Send(gameID string, playerID string, msg ws.Message) error {
	return gs.gameManager.Send(gameID, playerID, msg)
}

// Restore loads archived games into the registry.
func (gs *GameService) Restore() (int, error) {
	return gs.gameManager.Restore()
}
