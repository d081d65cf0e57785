package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/Rrens/collabhub/internal/api"
	"github.com/Rrens/collabhub/internal/config"
	"github.com/Rrens/collabhub/internal/logger"
	"github.com/Rrens/collabhub/internal/realtime"
	"github.com/Rrens/collabhub/internal/repository/mongo"
	"github.com/Rrens/collabhub/internal/repository/redis"
	"github.com/Rrens/collabhub/internal/scheduler"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load .env file - try multiple locations
	envPaths := []string{".env", "../.env", "../../.env"}
	envLoaded := ""
	for _, p := range envPaths {
		if err := godotenv.Load(p); err == nil {
			envLoaded = p
			break
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	logCloser, err := logger.Setup(cfg.Logging)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up logger")
	}
	defer logCloser.Close()

	if envLoaded != "" {
		log.Info().Str("path", envLoaded).Msg("Loaded .env")
	} else {
		log.Warn().Msg(".env file not found in any standard location")
	}

	log.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Msg("Starting collabhub realtime server")

	// Initialize database
	db, err := mongo.NewDB(context.Background(), cfg.Mongo)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close(context.Background())

	// Initialize Redis
	redisClient, err := redis.NewClient(context.Background(), cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	// Realtime state lives for the whole process and is shared by every
	// component that pushes to clients
	registry := realtime.NewRegistry()
	rooms := realtime.NewRooms()

	// Initialize router
	router := api.NewRouter(cfg, db, redisClient, registry, rooms)

	// Start sprint expiry scheduler
	schedCtx, stopScheduler := context.WithCancel(context.Background())
	var schedWG sync.WaitGroup
	if cfg.Scheduler.Enabled {
		sprintExpiry := scheduler.NewSprintExpiry(
			mongo.NewSprintRepository(db),
			redis.NewLocker(redisClient),
			cfg.Scheduler.SprintSweepInterval,
			cfg.Scheduler.LockTTL,
		)
		schedWG.Add(1)
		go func() {
			defer schedWG.Done()
			sprintExpiry.Start(schedCtx)
		}()
	} else {
		log.Warn().Msg("Sprint expiry scheduler disabled")
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	stopScheduler()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	schedWG.Wait()

	log.Info().Msg("Server stopped")
}
