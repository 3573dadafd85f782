package service

import (
	"context"
	"errors"
	"fmt"

	"hoops_backend/internal/domain"
	"hoops_backend/internal/game"
	"hoops_backend/internal/logger"
	"hoops_backend/internal/repository"
	"hoops_backend/internal/session"
)

var (
	ErrGameFinished = errors.New("game already finished")
	ErrGameNotFound = errors.New("game not found")
)

// GameStore is the persistence the service needs for game records.
type GameStore interface {
	Create(ctx context.Context, g *domain.Game) error
	GetByID(ctx context.Context, id string) (*domain.Game, error)
	MarkLive(ctx context.Context, id string) error
}

// SnapshotReader returns the last cached snapshot of a game, or nil.
type SnapshotReader interface {
	Get(ctx context.Context, gameID string) (*game.Snapshot, error)
}

// CreateGameRequest is the judge's description of a new game.
type CreateGameRequest struct {
	Variant  domain.Variant      `json:"variant" binding:"required"`
	Roster   []string            `json:"roster" binding:"required"`
	Teams    [2][]int            `json:"teams"`
	Settings domain.GameSettings `json:"settings"`
}

// GameService drives game records through their live sessions.
type GameService struct {
	games     GameStore
	sessions  *session.Orchestrator
	snapshots SnapshotReader
}

func NewGameService(games GameStore, sessions *session.Orchestrator, snapshots SnapshotReader) *GameService {
	return &GameService{games: games, sessions: sessions, snapshots: snapshots}
}

// CreateGame validates and stores a new game. The caller becomes its judge.
func (s *GameService) CreateGame(ctx context.Context, judgeID string, req CreateGameRequest) (*domain.Game, error) {
	g := &domain.Game{
		Variant:  req.Variant,
		Roster:   req.Roster,
		JudgeID:  judgeID,
		Settings: req.Settings.Normalize(req.Variant),
		Status:   domain.GameStatusPending,
	}
	if req.Variant.TwoSided() {
		g.Teams = req.Teams
	}

	if err := session.ValidateGame(g); err != nil {
		return nil, err
	}
	if err := s.games.Create(ctx, g); err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}

	logger.Info("game created", "game_id", g.ID, "variant", g.Variant, "judge_id", judgeID, "players", len(g.Roster))
	return g, nil
}

// StartSession loads the game into a live session. Only the judge may do so.
func (s *GameService) StartSession(ctx context.Context, gameID, playerID string) (*session.Session, error) {
	if sess, ok := s.sessions.Get(gameID); ok {
		if err := sess.Authorize(playerID); err != nil {
			return nil, err
		}
		return sess, nil
	}

	g, err := s.games.GetByID(ctx, gameID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load game %s: %w", gameID, err)
	}
	if g.JudgeID != playerID {
		return nil, session.ErrNotJudge
	}
	if g.Status == domain.GameStatusFinished {
		return nil, ErrGameFinished
	}

	sess, err := s.sessions.Load(ctx, g)
	if err != nil {
		return nil, err
	}
	if err := s.games.MarkLive(ctx, gameID); err != nil {
		logger.Warn("mark game live failed", "game_id", gameID, "error", err)
	}
	return sess, nil
}

// ApplyEvent feeds a judge's event into the live session.
func (s *GameService) ApplyEvent(ctx context.Context, gameID, playerID string, ev game.Event) (game.Snapshot, error) {
	sess, ok := s.sessions.Get(gameID)
	if !ok {
		return game.Snapshot{}, session.ErrNotLoaded
	}
	if err := sess.Authorize(playerID); err != nil {
		return game.Snapshot{}, err
	}
	return sess.Apply(ctx, ev)
}

// Finalize retries rating a finished game whose earlier attempt failed.
func (s *GameService) Finalize(ctx context.Context, gameID, playerID string) error {
	sess, ok := s.sessions.Get(gameID)
	if !ok {
		return session.ErrNotLoaded
	}
	if err := sess.Authorize(playerID); err != nil {
		return err
	}
	return sess.Finalize(ctx)
}

// State returns the live snapshot, falling back to the cached one.
func (s *GameService) State(ctx context.Context, gameID string) (game.Snapshot, error) {
	if sess, ok := s.sessions.Get(gameID); ok {
		return sess.State(), nil
	}

	if s.snapshots != nil {
		snap, err := s.snapshots.Get(ctx, gameID)
		if err != nil {
			logger.Warn("snapshot cache read failed", "game_id", gameID, "error", err)
		} else if snap != nil {
			return *snap, nil
		}
	}
	return game.Snapshot{}, ErrGameNotFound
}
