package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"hoops_backend/internal/logger"
	"hoops_backend/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetLeaderboard returns rated players ordered by rating.
func (h *Handler) GetLeaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	top, err := h.Players.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get leaderboard"})
		return
	}
	if top == nil {
		top = []*repository.LeaderboardEntry{}
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": top})
}

// PlayerProfile returns a player with rank, recent rating changes and games.
func (h *Handler) PlayerProfile(c *gin.Context) {
	h.profile(c, c.Param("id"))
}

// MyProfile is PlayerProfile for the authenticated player.
func (h *Handler) MyProfile(c *gin.Context) {
	id, ok := playerID(c)
	if !ok {
		return
	}
	h.profile(c, id)
}

func (h *Handler) profile(c *gin.Context, id string) {
	ctx := c.Request.Context()

	player, err := h.Players.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "player not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get player"})
		return
	}

	rank := 0
	if player.GamesPlayed > 0 {
		if rank, err = h.Players.RankOf(ctx, id); err != nil {
			logger.Error("player rank failed", "player_id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get rank"})
			return
		}
	}
	history, err := h.Players.History(ctx, id, 20)
	if err != nil {
		logger.Error("player history failed", "player_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get rating history"})
		return
	}

	resp := gin.H{
		"player":  player,
		"rank":    rank,
		"history": history,
	}
	if h.History != nil {
		games, err := h.History.GetByPlayer(ctx, id, 20)
		if err != nil {
			logger.Error("player games failed", "player_id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get games"})
			return
		}
		resp["games"] = games
	}

	c.JSON(http.StatusOK, resp)
}
