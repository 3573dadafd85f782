package handlers

import (
	"context"
	"errors"
	"net/http"

	"hoops_backend/internal/domain"
	"hoops_backend/internal/http/middleware"
	"hoops_backend/internal/repository"
	"hoops_backend/internal/service"
	"hoops_backend/internal/session"

	"github.com/gin-gonic/gin"
)

// PlayerStore is the read side of player records.
type PlayerStore interface {
	GetByID(ctx context.Context, id string) (*domain.Player, error)
	Leaderboard(ctx context.Context, limit int) ([]*repository.LeaderboardEntry, error)
	RankOf(ctx context.Context, id string) (int, error)
	History(ctx context.Context, id string, limit int) ([]*domain.RatingChange, error)
}

// GameLister lists the games a player took part in.
type GameLister interface {
	GetByPlayer(ctx context.Context, playerID string, limit int) ([]*domain.Game, error)
}

type Handler struct {
	Games   *service.GameService
	Players PlayerStore
	History GameLister
}

func NewHandler(games *service.GameService, players PlayerStore, history GameLister) *Handler {
	return &Handler{Games: games, Players: players, History: history}
}

// playerID extracts the authenticated player from the gin context.
func playerID(c *gin.Context) (string, bool) {
	id, ok := middleware.PlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	}
	return id, ok
}

// writeError maps service errors to status codes.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrGameNotFound), errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
	case errors.Is(err, session.ErrNotJudge):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, session.ErrNotLoaded), errors.Is(err, service.ErrGameFinished):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, session.ErrInvalidRoster):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
