package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/benbeisheim/chessrules/internal/chess"
	"github.com/benbeisheim/chessrules/internal/model"
	"github.com/benbeisheim/chessrules/internal/service"
	"github.com/benbeisheim/chessrules/internal/ws"
	"github.com/gofiber/websocket/v2"
)

type WebSocketController struct {
	gameService   *service.GameService
	engineTimeout time.Duration
}

func NewWebSocketController(gameService *service.GameService, engineTimeout time.Duration) *WebSocketController {
	return &WebSocketController{
		gameService:   gameService,
		engineTimeout: engineTimeout,
	}
}

// HandleConnection is called when a new WebSocket connection is established
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID := c.Params("gameId")
	playerID, _ := c.Locals("playerID").(string)

	if err := wsc.gameService.RegisterConnection(gameID, playerID, c); err != nil {
		log.Printf("Failed to register connection: %v", err)
		if msg, merr := errorMessage(err); merr == nil {
			c.WriteJSON(msg)
		}
		c.Close()
		return
	}
	defer wsc.gameService.UnregisterConnection(gameID, playerID, c)

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("read error: %v", err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			wsc.sendError(gameID, playerID, fmt.Errorf("parse error: %w", err))
			continue
		}
		if err := wsc.handleMessage(gameID, playerID, msg); err != nil {
			wsc.sendError(gameID, playerID, err)
		}
	}
}

// handleMessage dispatches one client message. Successful moves reach every
// client through the game's state broadcast.
func (wsc *WebSocketController) handleMessage(gameID, playerID string, msg ws.Message) error {
	switch msg.Type {
	case ws.MessageTypeMove:
		var move model.WSMove
		if err := json.Unmarshal(msg.Payload, &move); err != nil {
			return err
		}
		_, err := wsc.gameService.HandleMove(gameID, playerID, move)
		return err

	case ws.MessageTypePromote:
		var p ws.PromotePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return err
		}
		_, err := wsc.gameService.HandlePromotion(gameID, playerID, model.PieceType(p.Piece))
		return err

	case ws.MessageTypeCancelPromotion:
		return wsc.gameService.CancelPromotion(gameID, playerID)

	case ws.MessageTypeEngineMove:
		ctx, cancel := context.WithTimeout(context.Background(), wsc.engineTimeout)
		defer cancel()
		_, err := wsc.gameService.RequestEngineMove(ctx, gameID)
		return err
	}
	return fmt.Errorf("unknown message type: %s", msg.Type)
}

func errorMessage(err error) (ws.Message, error) {
	payload := ws.ErrorPayload{Error: err.Error()}
	if reason, ok := chess.RejectionReason(err); ok {
		payload.Reason = string(reason)
	}
	return ws.NewMessage(ws.MessageTypeError, payload)
}

func (wsc *WebSocketController) sendError(gameID, playerID string, err error) {
	msg, merr := errorMessage(err)
	if merr != nil {
		log.Printf("encode error message: %v", merr)
		return
	}
	if err := wsc.gameService.Send(gameID, playerID, msg); err != nil {
		log.Printf("send error to %s: %v", playerID, err)
	}
}
