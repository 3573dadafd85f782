package handlers

import (
	"errors"
	"net/http"

	"hoops_backend/internal/game"
	"hoops_backend/internal/logger"
	"hoops_backend/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateGame stores a new game with the caller as judge.
func (h *Handler) CreateGame(c *gin.Context) {
	judgeID, ok := playerID(c)
	if !ok {
		return
	}

	var req service.CreateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	g, err := h.Games.CreateGame(c.Request.Context(), judgeID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, g)
}

// StartSession loads the game so the judge can start sending events.
func (h *Handler) StartSession(c *gin.Context) {
	judgeID, ok := playerID(c)
	if !ok {
		return
	}

	sess, err := h.Games.StartSession(c.Request.Context(), c.Param("id"), judgeID)
	if err != nil {
		writeError(c, err)
		return
	}

	g := sess.Game()
	c.JSON(http.StatusOK, gin.H{
		"game":  g,
		"state": sess.State(),
	})
}

// ApplyEvent feeds one judge event into the live session.
func (h *Handler) ApplyEvent(c *gin.Context) {
	judgeID, ok := playerID(c)
	if !ok {
		return
	}

	var ev game.Event
	if err := c.ShouldBindJSON(&ev); err != nil || ev.Kind == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event"})
		return
	}

	gameID := c.Param("id")
	snap, err := h.Games.ApplyEvent(c.Request.Context(), gameID, judgeID, ev)
	if errors.Is(err, game.ErrIllegalEvent) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "state": snap})
		return
	}
	if err != nil && snap.Finished() {
		// the game ended but the rating step failed; the result is kept for retry
		logger.Error("finalize failed", "game_id", gameID, "error", err)
		c.JSON(http.StatusAccepted, gin.H{"state": snap, "finalized": false})
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"state": snap})
}

// FinalizeGame retries rating a finished game whose earlier attempt failed.
func (h *Handler) FinalizeGame(c *gin.Context) {
	judgeID, ok := playerID(c)
	if !ok {
		return
	}

	if err := h.Games.Finalize(c.Request.Context(), c.Param("id"), judgeID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"finalized": true})
}

// GameState returns the current snapshot of a game.
func (h *Handler) GameState(c *gin.Context) {
	snap, err := h.Games.State(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": snap})
}
