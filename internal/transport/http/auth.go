package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/iamasit07/puissance4/internal/domain"
	"github.com/iamasit07/puissance4/internal/service/game"
	"github.com/iamasit07/puissance4/internal/transport/http/middleware"
	"github.com/iamasit07/puissance4/pkg/auth"
)

// AdminHandler serves the admin login and the live session controls.
type AdminHandler struct {
	SessionManager *game.SessionManager
	Username       string
	PasswordHash   string
}

func NewAdminHandler(sm *game.SessionManager, username, passwordHash string) *AdminHandler {
	return &AdminHandler{SessionManager: sm, Username: username, PasswordHash: passwordHash}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AdminHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if h.PasswordHash == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Admin access is not configured"})
		return
	}
	if req.Username != h.Username || !auth.CheckPasswordHash(req.Password, h.PasswordHash) {
		log.Warn().Str("username", req.Username).Str("ip", c.ClientIP()).Msg("[ADMIN] Failed login")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := auth.GenerateAdminToken(req.Username)
	if err != nil {
		log.Error().Err(err).Msg("[ADMIN] Failed to sign token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	log.Info().Str("username", req.Username).Msg("[ADMIN] Logged in")
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *AdminHandler) ListActiveGames(c *gin.Context) {
	c.JSON(http.StatusOK, h.SessionManager.ListSessions())
}

// TerminateGame ends a live session and notifies everybody in it.
func (h *AdminHandler) TerminateGame(c *gin.Context) {
	gameID := c.Param("id")
	err := h.SessionManager.TerminateSession(gameID, "")
	if errors.Is(err, domain.ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to terminate game"})
		return
	}

	log.Info().Str("game_id", gameID).Str("admin", c.GetString(middleware.ContextAdminKey)).Msg("[ADMIN] Game terminated")
	c.JSON(http.StatusOK, gin.H{"message": "Game terminated", "game_id": gameID})
}
