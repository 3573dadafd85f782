package ws

import (
	"context"
	"net/http"
	"time"

	"hoops_backend/internal/game"
	"hoops_backend/internal/logger"
	"hoops_backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// StateSource returns the current snapshot of a game.
type StateSource interface {
	State(ctx context.Context, gameID string) (game.Snapshot, error)
}

// HandleWS upgrades /ws/games/:id?token= to a spectator feed.
func HandleWS(hub *Hub, states StateSource, allowedOrigin string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}

	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}

		playerID, err := service.ParseJWT(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		gameID := c.Param("id")
		var initial []byte
		if states != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			snap, err := states.State(ctx, gameID)
			cancel()
			if err == nil {
				initial, _ = encode(MsgState, StatePayload{GameID: gameID, Snapshot: snap})
			}
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("ws upgrade error", "game_id", gameID, "error", err)
			return
		}

		client := NewClient(playerID, gameID, conn, hub)
		go client.Run(initial)
	}
}
