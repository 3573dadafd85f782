package ws

import (
	"context"
	"sync"
	"time"

	"hoops_backend/internal/game"
	"hoops_backend/internal/logger"
)

type room struct {
	clients   map[*Client]struct{}
	last      []byte
	updatedAt time.Time
}

// Hub fans game snapshots out to spectators. It is registered as a session
// publisher, so Publish must never block.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]*room
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]*room)}
}

func (h *Hub) roomLocked(gameID string) *room {
	r, ok := h.rooms[gameID]
	if !ok {
		r = &room{clients: make(map[*Client]struct{}), updatedAt: time.Now()}
		h.rooms[gameID] = r
	}
	return r
}

// Publish broadcasts the snapshot to everyone watching the game. Clients
// whose buffer is full are dropped.
func (h *Hub) Publish(_ context.Context, gameID string, snap game.Snapshot) {
	msg, err := encode(MsgState, StatePayload{GameID: gameID, Snapshot: snap})
	if err != nil {
		logger.Error("encode state message failed", "game_id", gameID, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	r := h.roomLocked(gameID)
	r.last = msg
	r.updatedAt = time.Now()

	for c := range r.clients {
		if !c.trySend(msg) {
			delete(r.clients, c)
			close(c.Send)
			logger.Warn("ws client too slow, dropped", "game_id", gameID, "player_id", c.PlayerID)
		}
	}
}

// Join adds c to its game's room and queues the latest state, or fallback
// when nothing was published for the game yet.
func (h *Hub) Join(c *Client, fallback []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r := h.roomLocked(c.GameID)
	r.clients[c] = struct{}{}

	msg := r.last
	if msg == nil {
		msg = fallback
	}
	if msg != nil {
		c.trySend(msg)
	}
	logger.Debug("ws client joined", "game_id", c.GameID, "player_id", c.PlayerID, "watchers", len(r.clients))
}

func (h *Hub) Leave(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rooms[c.GameID]
	if !ok {
		return
	}
	if _, ok := r.clients[c]; ok {
		delete(r.clients, c)
		close(c.Send)
	}
}

// Watchers returns the number of spectators of a game.
func (h *Hub) Watchers(gameID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if r, ok := h.rooms[gameID]; ok {
		return len(r.clients)
	}
	return 0
}

func (h *Hub) StartCleanup(ctx context.Context, every, maxAge time.Duration) {
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.cleanupStaleRooms(maxAge)
			}
		}
	}()
}

func (h *Hub) cleanupStaleRooms(maxAge time.Duration) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	removed := 0
	now := time.Now()
	for id, r := range h.rooms {
		if len(r.clients) == 0 && now.Sub(r.updatedAt) > maxAge {
			delete(h.rooms, id)
			removed++
		}
	}
	if removed > 0 {
		logger.Debug("cleaned up stale rooms", "count", removed)
	}
	return removed
}
