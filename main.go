package main

import (
	"errors"
	"io/fs"
	"log"

	"github.com/joho/godotenv"
	"mufawter/cmd"
	"mufawter/internal/config"
	"mufawter/internal/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Commands validate the configuration themselves; here it only
	// decides how to log.
	logConfig := logger.DefaultConfig()
	if cfg, err := config.Load(); err == nil {
		logConfig = cfg.GetLoggerConfig()
	}
	if err := logger.Setup(logConfig); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	log := logger.WithComponent("main")
	log.Debug().Msg("Starting Mufawter CLI")

	cmd.Execute()

	log.Debug().Msg("Mufawter CLI shutdown")
	_ = logger.Close()
}
