package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iamasit07/puissance4/internal/domain"
	"github.com/iamasit07/puissance4/internal/service/game"
)

// StateLoader reads back the mirrored snapshot of a session that this
// process does not hold.
type StateLoader interface {
	LoadState(ctx context.Context, gameID string) (domain.Snapshot, error)
}

type WatchHandler struct {
	SessionManager *game.SessionManager
	States         StateLoader
}

func NewWatchHandler(sm *game.SessionManager, states StateLoader) *WatchHandler {
	return &WatchHandler{SessionManager: sm, States: states}
}

// GetLiveGames returns every live session, for the lobby and spectators.
func (h *WatchHandler) GetLiveGames(c *gin.Context) {
	c.JSON(http.StatusOK, h.SessionManager.ListSessions())
}

// GetGameState returns the current snapshot of one session, falling back to
// the mirror for sessions held elsewhere.
func (h *WatchHandler) GetGameState(c *gin.Context) {
	gameID := c.Param("id")
	snap, err := h.SessionManager.Snapshot(gameID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		if h.States != nil {
			if mirrored, lerr := h.States.LoadState(c.Request.Context(), gameID); lerr == nil {
				c.JSON(http.StatusOK, mirrored)
				return
			}
		}
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load game"})
		return
	}
	c.JSON(http.StatusOK, snap)
}
