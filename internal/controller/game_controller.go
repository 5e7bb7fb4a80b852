package controller

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/benbeisheim/chessrules/internal/chess"
	"github.com/benbeisheim/chessrules/internal/model"
	"github.com/benbeisheim/chessrules/internal/service"
	"github.com/gofiber/fiber/v2"
)

type GameController struct {
	gameService   *service.GameService
	engineTimeout time.Duration
}

// NewGameController builds the REST handlers. engineTimeout bounds a single
// engine move request.
func NewGameController(gameService *service.GameService, engineTimeout time.Duration) *GameController {
	return &GameController{gameService: gameService, engineTimeout: engineTimeout}
}

// Mount registers the game routes on r.
func (gc *GameController) Mount(r fiber.Router) {
	r.Post("/create", gc.CreateGame)
	r.Post("/join/:gameId", gc.JoinGame)
	r.Get("/:gameId", gc.GetGameState)
	r.Get("/:gameId/legal", gc.LegalMoves)
	r.Post("/:gameId/move", gc.MakeMove)
	r.Post("/:gameId/promote", gc.Promote)
	r.Post("/:gameId/promote/cancel", gc.CancelPromotion)
	r.Post("/:gameId/engine", gc.EngineMove)
}

type createGameRequest struct {
	FEN string `json:"fen"`
}

type promoteRequest struct {
	Piece model.PieceType `json:"piece"`
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	var req createGameRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, err)
		}
	}

	gameID, err := gc.gameService.CreateGame(req.FEN)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Game created",
		"game_id": gameID,
	})
}

func (gc *GameController) JoinGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	playerID := c.Locals("playerID").(string)

	color, err := gc.gameService.JoinGame(gameID, playerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Game joined",
		"color":   color,
	})
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	gameState, err := gc.gameService.GetGameState(c.Params("gameId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(gameState)
}

func (gc *GameController) LegalMoves(c *fiber.Ctx) error {
	moves, err := gc.gameService.LegalMoves(c.Params("gameId"), c.Query("from"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"moves": moves})
}

func (gc *GameController) MakeMove(c *fiber.Ctx) error {
	var move model.WSMove
	if err := c.BodyParser(&move); err != nil {
		return badRequest(c, err)
	}
	res, err := gc.gameService.HandleMove(c.Params("gameId"), c.Locals("playerID").(string), move)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(moveResponse(res))
}

func (gc *GameController) Promote(c *fiber.Ctx) error {
	var req promoteRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	res, err := gc.gameService.HandlePromotion(c.Params("gameId"), c.Locals("playerID").(string), req.Piece)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(moveResponse(res))
}

func (gc *GameController) CancelPromotion(c *fiber.Ctx) error {
	if err := gc.gameService.CancelPromotion(c.Params("gameId"), c.Locals("playerID").(string)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (gc *GameController) EngineMove(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), gc.engineTimeout)
	defer cancel()

	res, err := gc.gameService.RequestEngineMove(ctx, c.Params("gameId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(moveResponse(res))
}

func moveResponse(res *chess.MoveResult) fiber.Map {
	body := fiber.Map{
		"awaitingPromotion": res.AwaitingPromotion,
		"fen":               res.FEN,
		"status":            res.Status,
	}
	if res.Record != nil {
		body["move"] = res.Record.Move().String()
		body["notation"] = res.Record.Notation
	}
	if r := res.Status.Resolution(); r != "" {
		body["resolution"] = r
	}
	return body
}

func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
}

// respondError maps domain errors onto HTTP statuses. Rejected moves carry
// the rejection reason.
func respondError(c *fiber.Ctx, err error) error {
	status := errorStatus(err)
	if status == fiber.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Method(), c.Path(), err)
	}
	body := fiber.Map{"error": err.Error()}
	if reason, ok := chess.RejectionReason(err); ok {
		body["reason"] = reason
	}
	return c.Status(status).JSON(body)
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, chess.ErrIllegalMove):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, chess.ErrInvalidFEN),
		errors.Is(err, chess.ErrInvalidSquare),
		errors.Is(err, chess.ErrInvalidMove),
		errors.Is(err, chess.ErrInvalidPromotion):
		return fiber.StatusBadRequest
	case errors.Is(err, model.ErrNotInGame):
		return fiber.StatusForbidden
	case errors.Is(err, model.ErrNotYourTurn),
		errors.Is(err, model.ErrGameFull),
		errors.Is(err, model.ErrGameOver),
		errors.Is(err, model.ErrStale),
		errors.Is(err, chess.ErrNoPendingPromotion),
		errors.Is(err, service.ErrSeatTaken):
		return fiber.StatusConflict
	case errors.Is(err, service.ErrNoOpponent):
		return fiber.StatusNotImplemented
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	}
	return fiber.StatusInternalServerError
}
