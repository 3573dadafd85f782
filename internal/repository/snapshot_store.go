package repository

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"hoops_backend/internal/game"
	"hoops_backend/internal/logger"

	redis "github.com/redis/go-redis/v9"
)

const defaultSnapshotTTL = 6 * time.Hour

// SnapshotStore keeps the latest snapshot of every live game in Redis so
// state survives a restart of the process serving reads.
type SnapshotStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSnapshotStore(rdb *redis.Client, ttl time.Duration) *SnapshotStore {
	if ttl <= 0 {
		ttl = defaultSnapshotTTL
	}
	return &SnapshotStore{rdb: rdb, ttl: ttl}
}

// Publish stores snap as the current state of the game. Failures are logged
// and dropped.
func (s *SnapshotStore) Publish(ctx context.Context, gameID string, snap game.Snapshot) {
	if s == nil || s.rdb == nil {
		return
	}
	if err := s.Save(ctx, gameID, snap); err != nil {
		logger.Warn("snapshot save failed", "game_id", gameID, "error", err)
	}
}

func (s *SnapshotStore) Save(ctx context.Context, gameID string, snap game.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, snapshotKey(gameID), raw, s.ttl).Err()
}

// Get returns the stored snapshot, or nil when there is none.
func (s *SnapshotStore) Get(ctx context.Context, gameID string) (*game.Snapshot, error) {
	if s == nil || s.rdb == nil {
		return nil, nil
	}

	raw, err := s.rdb.Get(ctx, snapshotKey(gameID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var snap game.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (s *SnapshotStore) Delete(ctx context.Context, gameID string) error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Del(ctx, snapshotKey(gameID)).Err()
}

func snapshotKey(id string) string { return "game:state:" + strings.TrimSpace(id) }
