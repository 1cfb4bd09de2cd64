package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/iamasit07/puissance4/internal/config"
	"github.com/iamasit07/puissance4/internal/repository/postgres"
	"github.com/iamasit07/puissance4/internal/repository/redis"
	"github.com/iamasit07/puissance4/internal/repository/sqlite"
	"github.com/iamasit07/puissance4/internal/service/cleanup"
	"github.com/iamasit07/puissance4/internal/service/game"
	transportHttp "github.com/iamasit07/puissance4/internal/transport/http"
	"github.com/iamasit07/puissance4/internal/transport/websocket"
)

// resultStore is what the session layer writes to and the admin API reads.
type resultStore interface {
	game.GameRepository
	transportHttp.ResultLister
}

func main() {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../.env"); err != nil {
			log.Debug().Msg("No .env file found")
		}
	}

	cfg := config.LoadConfig()
	config.SetupLogger(cfg)

	// 1. Persistence
	db, results, err := openResultStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("[DB] Failed to open result store")
	}
	defer db.Close()

	// 2. Redis state mirror (optional)
	redisClient, err := redis.InitRedis(cfg.RedisURL, cfg.RedisPassword)
	if err != nil {
		log.Warn().Err(err).Msg("[REDIS] Failed to initialize")
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// 3. Sessions
	connManager := websocket.NewConnectionManager()
	sessionManager := game.NewSessionManager(connManager, results, cfg.AIReplyDelay)
	sessionManager.SetChatRelay(connManager)
	var states transportHttp.StateLoader
	if redisClient != nil {
		stateCache := redis.NewStateCache(redisClient, cfg.IdleSessionTTL)
		sessionManager.SetStateCache(stateCache)
		states = stateCache
	}

	// 4. Background workers
	cleanupWorker := cleanup.NewWorker(sessionManager, cfg.CleanupInterval, cfg.IdleSessionTTL)
	cleanupWorker.Start()
	defer cleanupWorker.Stop()

	// 5. Transport
	wsHandler := websocket.NewHandler(connManager, sessionManager, cfg.AllowedOrigins)
	router := transportHttp.NewRouter(transportHttp.RouterConfig{
		SessionManager:    sessionManager,
		Results:           results,
		States:            states,
		WebSocket:         wsHandler.HandleWebSocket,
		AllowedOrigins:    cfg.AllowedOrigins,
		AdminUsername:     cfg.AdminUsername,
		AdminPasswordHash: cfg.AdminPasswordHash,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		return
	}

	log.Info().Msg("Server exited gracefully")
}

// openResultStore uses Postgres when DATABASE_URL is set and a local SQLite
// file otherwise.
func openResultStore(cfg *config.Config) (*sql.DB, resultStore, error) {
	if cfg.DatabaseURL != "" {
		db, err := postgres.InitDB(cfg.DatabaseURL, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetimeMin)
		if err != nil {
			return nil, nil, err
		}
		return db, postgres.NewGameRepo(db), nil
	}

	db, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		return nil, nil, err
	}
	return db, sqlite.NewGameRepo(db), nil
}
