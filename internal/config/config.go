package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Config holds the server settings. Every flag falls back to an environment
// variable, then to a default.
type Config struct {
	Addr           string
	AllowedOrigins []string
	DataDir        string
	EnginePath     string
	EngineMoveTime time.Duration
}

// Load parses args (without the program name). getenv is usually os.Getenv.
func Load(args []string, getenv func(string) string) (Config, error) {
	env := func(key, def string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return def
	}

	moveTime, err := time.ParseDuration(env("CHESSRULES_ENGINE_MOVETIME", "500ms"))
	if err != nil {
		return Config{}, fmt.Errorf("CHESSRULES_ENGINE_MOVETIME: %w", err)
	}

	fs := flag.NewFlagSet("chessrules", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	addr := fs.String("addr", env("CHESSRULES_ADDR", ":3000"), "listen address")
	origins := fs.String("origins", env("CHESSRULES_ORIGINS", "http://localhost:5173"), "comma-separated CORS origins")
	dataDir := fs.String("data-dir", env("CHESSRULES_DATA_DIR", ""), "badger directory for game archives (empty keeps games in memory)")
	engine := fs.String("engine", env("CHESSRULES_ENGINE", ""), "path to a UCI engine binary (empty disables engine moves)")
	fs.DurationVar(&moveTime, "engine-movetime", moveTime, "search time per engine move")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Addr:           *addr,
		DataDir:        *dataDir,
		EnginePath:     *engine,
		EngineMoveTime: moveTime,
	}
	for _, o := range strings.Split(*origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}
	if cfg.EngineMoveTime <= 0 {
		return Config{}, fmt.Errorf("engine move time must be positive, got %s", cfg.EngineMoveTime)
	}
	return cfg, nil
}

// FromEnvironment loads the configuration for the running process.
func FromEnvironment() (Config, error) {
	return Load(os.Args[1:], os.Getenv)
}
