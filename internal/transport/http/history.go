package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/iamasit07/puissance4/internal/domain"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// ResultLister reads back persisted game results.
type ResultLister interface {
	GetRecentGames(ctx context.Context, limit int) ([]domain.GameResult, error)
}

type HistoryHandler struct {
	Results ResultLister
}

func NewHistoryHandler(results ResultLister) *HistoryHandler {
	return &HistoryHandler{Results: results}
}

// GetRecentGames lists the latest finished rounds, newest first.
func (h *HistoryHandler) GetRecentGames(c *gin.Context) {
	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	results, err := h.Results.GetRecentGames(c.Request.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("[HISTORY] Failed to fetch results")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch history"})
		return
	}
	if results == nil {
		results = []domain.GameResult{}
	}
	c.JSON(http.StatusOK, results)
}
