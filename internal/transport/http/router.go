package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iamasit07/puissance4/internal/service/game"
	"github.com/iamasit07/puissance4/internal/transport/http/middleware"
)

// RouterConfig carries everything the HTTP surface needs.
type RouterConfig struct {
	SessionManager    *game.SessionManager
	Results           ResultLister
	States            StateLoader // optional
	WebSocket         http.HandlerFunc
	AllowedOrigins    []string
	AdminUsername     string
	AdminPasswordHash string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	gameHandler := NewGameHandler(cfg.SessionManager)
	watchHandler := NewWatchHandler(cfg.SessionManager, cfg.States)
	historyHandler := NewHistoryHandler(cfg.Results)
	adminHandler := NewAdminHandler(cfg.SessionManager, cfg.AdminUsername, cfg.AdminPasswordHash)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "active_games": cfg.SessionManager.ActiveSessionCount()})
	})

	// Public game routes
	router.POST("/api/games", gameHandler.CreateGame)
	router.GET("/api/games", watchHandler.GetLiveGames)
	router.GET("/api/games/:id", watchHandler.GetGameState)
	router.POST("/api/token", gameHandler.IssuePlayerToken)

	router.POST("/api/admin/login", adminHandler.Login)

	admin := router.Group("/api/admin")
	admin.Use(middleware.AdminMiddleware())
	{
		admin.GET("/active-games", adminHandler.ListActiveGames)
		admin.DELETE("/active-games/:id", adminHandler.TerminateGame)
		admin.GET("/games", historyHandler.GetRecentGames)
	}

	if cfg.WebSocket != nil {
		router.GET("/ws", gin.WrapF(cfg.WebSocket))
	}

	return router
}
