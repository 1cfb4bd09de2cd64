package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/iamasit07/puissance4/internal/domain"
	"github.com/iamasit07/puissance4/internal/service/game"
	"github.com/iamasit07/puissance4/pkg/auth"
	"github.com/iamasit07/puissance4/pkg/uid"
)

type GameHandler struct {
	SessionManager *game.SessionManager
}

func NewGameHandler(sm *game.SessionManager) *GameHandler {
	return &GameHandler{SessionManager: sm}
}

type createGameRequest struct {
	AIEnabled  bool   `json:"ai_enabled"`
	Difficulty string `json:"difficulty"`
}

// CreateGame opens a new session. An empty body creates a human-vs-human game.
func (h *GameHandler) CreateGame(c *gin.Context) {
	var req createGameRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
			return
		}
	}

	difficulty := domain.ParseDifficulty(req.Difficulty)
	gameID := h.SessionManager.CreateSession(req.AIEnabled, difficulty)

	resp := gin.H{"game_id": gameID, "ai_enabled": req.AIEnabled}
	if req.AIEnabled {
		resp["difficulty"] = difficulty
		resp["bot_name"] = domain.GetBotName(difficulty)
	}
	c.JSON(http.StatusCreated, resp)
}

type playerTokenRequest struct {
	PlayerName string `json:"player_name"`
}

// IssuePlayerToken signs a display name so it can be presented on join.
func (h *GameHandler) IssuePlayerToken(c *gin.Context) {
	var req playerTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	name := strings.TrimSpace(req.PlayerName)
	if name == "" || len(name) > 50 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Player name must be between 1 and 50 characters"})
		return
	}

	userID := uid.NewSessionID()
	token, err := auth.GenerateToken(userID, name)
	if err != nil {
		log.Error().Err(err).Msg("[AUTH] Failed to sign player token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user_id": userID, "player_name": name})
}
