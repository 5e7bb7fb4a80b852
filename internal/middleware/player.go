package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// EnsurePlayerID reads the caller's player id from the X-Player-ID header or
// the playerId query parameter and stores it in Locals("playerID"). The value
// is copied out of the request buffer, which fasthttp reuses, because games
// keep it as a seat identity.
func EnsurePlayerID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Locals("playerID") != nil {
			return c.Next()
		}

		playerID := c.Get("X-Player-ID")
		if playerID == "" {
			playerID = c.Query("playerId")
		}
		if playerID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Player ID is required. Please ensure client is properly initialized.",
			})
		}

		c.Locals("playerID", utils.CopyString(playerID))
		return c.Next()
	}
}
