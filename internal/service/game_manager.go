package service

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/benbeisheim/chessrules/internal/chess"
	"github.com/benbeisheim/chessrules/internal/model"
	"github.com/benbeisheim/chessrules/internal/store"
	"github.com/benbeisheim/chessrules/internal/ws"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game already exists")
)

// Archive persists finished and in-progress games. *store.Store implements it.
type Archive interface {
	SaveGame(rec store.Record) error
	ListGames() ([]store.Record, error)
}

type GameManager struct {
	games   map[string]*model.Game
	archive Archive
	mu      sync.RWMutex
}

// NewGameManager returns a registry. archive may be nil, in which case games
// live only in memory.
func NewGameManager(archive Archive) *GameManager {
	return &GameManager{
		games:   make(map[string]*model.Game),
		archive: archive,
	}
}

func (gm *GameManager) CreateGame(gameID, fen string) (*model.Game, error) {
	game, err := model.NewGame(gameID, fen)
	if err != nil {
		return nil, err
	}

	gm.mu.Lock()
	if _, exists := gm.games[gameID]; exists {
		gm.mu.Unlock()
		return nil, ErrGameExists
	}
	gm.games[gameID] = game
	gm.mu.Unlock()

	gm.save(game)
	return game, nil
}

func (gm *GameManager) GetGame(gameID string) (*model.Game, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	game, exists := gm.games[gameID]
	if !exists {
		return nil, ErrGameNotFound
	}
	return game, nil
}

func (gm *GameManager) AddPlayerToGame(gameID string, playerID string) (model.PlayerColor, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return "", err
	}
	return game.AddPlayer(playerID)
}

func (gm *GameManager) GetGameState(gameID string) (model.GameState, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return model.GameState{}, err
	}
	return game.GetState(), nil
}

// save writes the game to the archive. Failures are logged, not returned: the
// in-memory game stays authoritative.
func (gm *GameManager) save(game *model.Game) {
	if gm.archive == nil {
		return
	}
	startFEN, moves, fen, result := game.Archive()
	rec := store.Record{ID: game.ID, StartFEN: startFEN, Moves: moves, FEN: fen, Result: result}
	if err := gm.archive.SaveGame(rec); err != nil {
		log.Printf("archive game %s: %v", game.ID, err)
	}
}

// Restore rebuilds every archived game by replaying its moves through the
// rules engine. Games that fail to replay are skipped and logged.
func (gm *GameManager) Restore() (int, error) {
	if gm.archive == nil {
		return 0, nil
	}
	recs, err := gm.archive.ListGames()
	if err != nil {
		return 0, fmt.Errorf("list archived games: %w", err)
	}

	restored := 0
	for _, rec := range recs {
		game, err := replay(rec)
		if err != nil {
			log.Printf("restore game %s: %v", rec.ID, err)
			continue
		}
		gm.mu.Lock()
		gm.games[rec.ID] = game
		gm.mu.Unlock()
		restored++
	}
	return restored, nil
}

func replay(rec store.Record) (*model.Game, error) {
	game, err := model.NewGame(rec.ID, rec.StartFEN)
	if err != nil {
		return nil, err
	}
	for i, s := range rec.Moves {
		m, err := chess.ParseMove(s)
		if err != nil {
			return nil, fmt.Errorf("move %d: %w", i+1, err)
		}
		if _, err := game.Apply(m); err != nil {
			return nil, fmt.Errorf("move %d %s: %w", i+1, s, err)
		}
	}
	if rec.FEN != "" && game.FEN() != rec.FEN {
		return nil, fmt.Errorf("replay reached %q, archive says %q", game.FEN(), rec.FEN)
	}
	return game, nil
}

func (gm *GameManager) RegisterConnection(gameID string, playerID string, conn model.Conn) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.RegisterConnection(playerID, conn)
}

func (gm *GameManager) UnregisterConnection(gameID string, playerID string, conn model.Conn) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return
	}
	game.UnregisterConnection(playerID, conn)
}

// Send writes msg to one player's connection in gameID.
func (gm *GameManager) Send(gameID string, playerID string, msg ws.Message) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.Send(playerID, msg)
}
