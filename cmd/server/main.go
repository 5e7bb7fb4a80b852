package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/benbeisheim/chessrules/internal/config"
	"github.com/benbeisheim/chessrules/internal/controller"
	"github.com/benbeisheim/chessrules/internal/middleware"
	"github.com/benbeisheim/chessrules/internal/opponent"
	"github.com/benbeisheim/chessrules/internal/service"
	"github.com/benbeisheim/chessrules/internal/store"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
)

func main() {
	cfg, err := config.FromEnvironment()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	archive, err := store.Open(cfg.DataDir)
	if err != nil {
		log.Fatal(err)
	}
	defer archive.Close()
	if cfg.DataDir == "" {
		log.Printf("No data dir set; games are kept in memory only")
	}

	var proposer opponent.Proposer
	if cfg.EnginePath != "" {
		engine, err := opponent.StartUCI(context.Background(), cfg.EnginePath, cfg.EngineMoveTime)
		if err != nil {
			log.Fatalf("engine: %v", err)
		}
		defer engine.Close()
		log.Printf("Engine %q ready, %s per move", engine.Name(), cfg.EngineMoveTime)
		proposer = engine
	}

	// Initialize services
	gameManager := service.NewGameManager(archive)
	gameService := service.NewGameService(gameManager, proposer)
	restored, err := gameService.Restore()
	if err != nil {
		log.Fatalf("restore: %v", err)
	}
	log.Printf("Restored %d archived games", restored)

	// Engine requests get a few move times of headroom.
	engineTimeout := 4 * cfg.EngineMoveTime

	// Initialize controllers
	gameController := controller.NewGameController(gameService, engineTimeout)
	wsController := controller.NewWebSocketController(gameService, engineTimeout)

	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.AllowedOrigins, ", "),
		AllowHeaders:     "Origin, Content-Type, Accept, X-Player-ID",
		AllowMethods:     "GET, POST, OPTIONS",
		AllowCredentials: true,
	}))

	// Set up WebSocket routes
	app.Use("/ws/*", middleware.EnsurePlayerID())
	app.Get("/ws/game/:gameId", middleware.WebSocketUpgrade(), websocket.New(wsController.HandleConnection, websocket.Config{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		Origins:         cfg.AllowedOrigins,
	}))

	// Set up REST routes
	api := app.Group("/api", middleware.EnsurePlayerID())
	gameController.Mount(api.Group("/game"))

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		log.Printf("Shutting down")
		if err := app.Shutdown(); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("HTTP listening on %s", cfg.Addr)
	if err := app.Listen(cfg.Addr); err != nil {
		log.Fatal(err)
	}
}
