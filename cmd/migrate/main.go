package main

import (
	"os"

	"github.com/Rrens/collabhub/internal/config"
	"github.com/Rrens/collabhub/internal/logger"
	"github.com/Rrens/collabhub/internal/repository/mongo"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// usage: migrate [up|down|version]
func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if _, err := logger.Setup(config.LoggingConfig{Level: cfg.Logging.Level, Format: "console"}); err != nil {
		log.Fatal().Err(err).Msg("Failed to set up logger")
	}

	command := mongo.MigrateUp
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	log.Info().
		Str("source", cfg.Mongo.MigrationsPath).
		Str("database", cfg.Mongo.Database).
		Str("command", command).
		Msg("Running migrations")

	if err := mongo.RunMigrations(cfg.Mongo, command); err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}
}
