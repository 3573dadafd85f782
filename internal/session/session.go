package session

import (
	"context"
	"sync"
	"time"

	"hoops_backend/internal/domain"
	"hoops_backend/internal/game"
	"hoops_backend/internal/logger"
)

// Session is one live game driven by its judge. Events are applied one at
// a time in the order they arrive.
type Session struct {
	o     *Orchestrator
	game  domain.Game
	sides [2][]int

	mu sync.Mutex
	// engine is dropped once the outcome has been handed off
	engine     game.Engine
	last       game.Snapshot
	result     *domain.OutcomeRecord
	submitted  bool
	loadedAt   time.Time
	updatedAt  time.Time
	finishedAt time.Time
}

func (s *Session) ID() string { return s.game.ID }

func (s *Session) JudgeID() string { return s.game.JudgeID }

// Game returns a copy of the record the session was loaded from.
func (s *Session) Game() domain.Game {
	return cloneGame(&s.game)
}

// Authorize checks that playerID may submit events.
func (s *Session) Authorize(playerID string) error {
	if playerID == "" || playerID != s.game.JudgeID {
		return ErrNotJudge
	}
	return nil
}

// Apply feeds one event to the engine and returns the new snapshot. When the
// event ends the game the outcome is rated and handed to the sink; a rating
// failure is returned and can be retried with Finalize.
func (s *Session) Apply(ctx context.Context, ev game.Event) (game.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine == nil {
		eventsApplied.WithLabelValues(string(s.game.Variant), string(ev.Kind), "ignored").Inc()
		return s.last, nil
	}

	wasFinished := s.engine.Finished()
	snap, err := s.engine.Apply(ev)
	if err != nil {
		eventsApplied.WithLabelValues(string(s.game.Variant), string(ev.Kind), "rejected").Inc()
		logger.ForGame(s.game.ID).Debug("event rejected", "event", ev.Kind, "error", err)
		return snap, err
	}
	if wasFinished {
		eventsApplied.WithLabelValues(string(s.game.Variant), string(ev.Kind), "ignored").Inc()
		return snap, s.finalizeLocked(ctx)
	}

	eventsApplied.WithLabelValues(string(s.game.Variant), string(ev.Kind), "applied").Inc()
	s.last = snap
	s.updatedAt = time.Now()
	s.o.publish(ctx, s.game.ID, snap)

	if snap.Finished() {
		logger.ForGame(s.game.ID).Info("game finished", "variant", s.game.Variant, "outcome", snap.Outcome, "events", snap.Events)
		if err := s.finalizeLocked(ctx); err != nil {
			return snap, err
		}
	}
	return snap, nil
}

// Finalize retries rating and submission for a finished game whose earlier
// attempt failed. It is a no-op once the outcome has been submitted.
func (s *Session) Finalize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finalizeLocked(ctx)
}

func (s *Session) finalizeLocked(ctx context.Context) error {
	if s.submitted || s.engine == nil {
		return nil
	}
	ranking, ok := s.engine.Outcome()
	if !ok {
		return nil
	}

	rec, err := s.o.rate(ctx, &s.game, s.sides, ranking)
	if err != nil {
		ratingFailures.Inc()
		logger.ForGame(s.game.ID).Warn("rating failed, outcome held back", "error", err)
		return err
	}

	s.result = rec
	s.submitted = true
	s.finishedAt = time.Now()
	s.engine = nil
	gamesFinished.WithLabelValues(string(s.game.Variant)).Inc()

	s.o.submit(rec)
	return nil
}

// State returns the latest snapshot.
func (s *Session) State() game.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last.Finished()
}

// Outcome returns the rated result once it has been handed off.
func (s *Session) Outcome() (*domain.OutcomeRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return nil, false
	}
	return s.result, true
}
