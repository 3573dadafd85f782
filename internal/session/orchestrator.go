package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"hoops_backend/internal/domain"
	"hoops_backend/internal/game"
	"hoops_backend/internal/logger"
)

var (
	ErrInvalidRoster = errors.New("invalid roster")
	ErrNotJudge      = errors.New("only the judge can drive this game")
	ErrNotLoaded     = errors.New("game session not loaded")
)

// RatingsLookup supplies current ratings. Unknown players may be omitted.
type RatingsLookup interface {
	Ratings(ctx context.Context, playerIDs []string) (map[string]float64, error)
}

// OutcomeSink persists a finished game. Called once per game.
type OutcomeSink interface {
	SubmitOutcome(ctx context.Context, rec *domain.OutcomeRecord) error
}

// Publisher receives every snapshot a session produces.
type Publisher interface {
	Publish(ctx context.Context, gameID string, snap game.Snapshot)
}

type Config struct {
	KBase           float64
	SplitTeamChange bool
	DefaultRating   float64
	SubmitTimeout   time.Duration
}

func (c Config) withDefaults() Config {
	if !(c.KBase > 0) || math.IsInf(c.KBase, 0) {
		c.KBase = 6
	}
	if !(c.DefaultRating > 0) || math.IsInf(c.DefaultRating, 0) {
		c.DefaultRating = domain.DefaultRating
	}
	if c.SubmitTimeout <= 0 {
		c.SubmitTimeout = 5 * time.Second
	}
	return c
}

// Orchestrator binds game records to engines and keeps the live sessions.
type Orchestrator struct {
	cfg        Config
	ratings    RatingsLookup
	sink       OutcomeSink
	publishers []Publisher
	factory    *game.Factory
	shuffle    func([]int)

	mu       sync.RWMutex
	sessions map[string]*Session

	inflight sync.WaitGroup
}

type Option func(*Orchestrator)

// WithShuffle replaces the turn order shuffle used for progression races.
func WithShuffle(fn func([]int)) Option {
	return func(o *Orchestrator) { o.shuffle = fn }
}

func WithPublisher(p Publisher) Option {
	return func(o *Orchestrator) { o.publishers = append(o.publishers, p) }
}

func NewOrchestrator(cfg Config, ratings RatingsLookup, sink OutcomeSink, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:      cfg.withDefaults(),
		ratings:  ratings,
		sink:     sink,
		factory:  game.NewFactory(),
		shuffle:  cryptoShuffle,
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Load binds a game record to its engine. Loading a game that already has a
// live session returns that session.
func (o *Orchestrator) Load(ctx context.Context, g *domain.Game) (*Session, error) {
	o.mu.Lock()
	if s, ok := o.sessions[g.ID]; ok {
		o.mu.Unlock()
		return s, nil
	}

	if err := ValidateGame(g); err != nil {
		o.mu.Unlock()
		return nil, err
	}

	var order []int
	if g.Variant == domain.VariantProgressionRace {
		order = make([]int, len(g.Roster))
		for i := range order {
			order[i] = i
		}
		o.shuffle(order)
	}

	engine, err := o.factory.CreateEngine(g.Variant, g.Settings, len(g.Roster), order)
	if err != nil {
		o.mu.Unlock()
		return nil, fmt.Errorf("create engine for game %s: %w", g.ID, err)
	}

	now := time.Now()
	s := &Session{
		o:         o,
		game:      cloneGame(g),
		sides:     g.Sides(),
		engine:    engine,
		last:      engine.State(),
		loadedAt:  now,
		updatedAt: now,
	}
	o.sessions[g.ID] = s
	o.mu.Unlock()

	sessionsLoaded.WithLabelValues(string(g.Variant)).Inc()
	logger.Info("session loaded", "game_id", g.ID, "variant", g.Variant, "players", len(g.Roster), "turn_order", order)

	o.publish(ctx, g.ID, s.State())
	return s, nil
}

func (o *Orchestrator) Get(gameID string) (*Session, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	s, ok := o.sessions[gameID]
	return s, ok
}

// Wait blocks until every in-flight outcome submission has returned.
func (o *Orchestrator) Wait() {
	o.inflight.Wait()
}

// StartCleanup drops submitted sessions idle for maxAge, and unsubmitted
// ones (live or held back after a rating failure) idle for four times that.
func (o *Orchestrator) StartCleanup(ctx context.Context, every, maxAge time.Duration) {
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				o.cleanup(maxAge)
			}
		}
	}()
}

func (o *Orchestrator) cleanup(maxAge time.Duration) int {
	o.mu.Lock()
	defer o.mu.Unlock()

	removed := 0
	now := time.Now()
	for id, s := range o.sessions {
		s.mu.Lock()
		stale := s.submitted && now.Sub(s.finishedAt) > maxAge
		abandoned := !s.submitted && now.Sub(s.updatedAt) > maxAge*4
		s.mu.Unlock()

		if stale || abandoned {
			delete(o.sessions, id)
			removed++
			logger.Debug("session dropped", "game_id", id, "abandoned", abandoned)
		}
	}
	return removed
}

func (o *Orchestrator) publish(ctx context.Context, gameID string, snap game.Snapshot) {
	for _, p := range o.publishers {
		p.Publish(ctx, gameID, snap)
	}
}

// submit hands the record to the sink without waiting for the result.
func (o *Orchestrator) submit(rec *domain.OutcomeRecord) {
	if o.sink == nil {
		return
	}

	o.inflight.Add(1)
	go func() {
		defer o.inflight.Done()

		ctx, cancel := context.WithTimeout(context.Background(), o.cfg.SubmitTimeout)
		defer cancel()

		if err := o.sink.SubmitOutcome(ctx, rec); err != nil {
			outcomeSubmissions.WithLabelValues("error").Inc()
			logger.Error("outcome submission failed", "game_id", rec.GameID, "error", err)
			return
		}
		outcomeSubmissions.WithLabelValues("ok").Inc()
		logger.Info("outcome submitted", "game_id", rec.GameID, "ranking", rec.Ranking)
	}()
}

// ValidateGame checks the roster and team layout of a game record.
func ValidateGame(g *domain.Game) error {
	if !g.Variant.Valid() {
		return fmt.Errorf("%w: unknown variant %q", ErrInvalidRoster, g.Variant)
	}
	if len(g.Roster) < 2 {
		return fmt.Errorf("%w: need at least 2 players, got %d", ErrInvalidRoster, len(g.Roster))
	}

	seen := make(map[string]bool, len(g.Roster))
	for _, id := range g.Roster {
		if id == "" {
			return fmt.Errorf("%w: empty player id", ErrInvalidRoster)
		}
		if seen[id] {
			return fmt.Errorf("%w: duplicate player %s", ErrInvalidRoster, id)
		}
		seen[id] = true
	}

	if !g.Variant.TwoSided() {
		return nil
	}

	sides := g.Sides()
	used := make([]bool, len(g.Roster))
	for side, members := range sides {
		if len(members) == 0 {
			return fmt.Errorf("%w: side %d has no players", ErrInvalidRoster, side)
		}
		for _, idx := range members {
			if idx < 0 || idx >= len(g.Roster) || used[idx] {
				return fmt.Errorf("%w: bad team index %d", ErrInvalidRoster, idx)
			}
			used[idx] = true
		}
	}
	for idx, ok := range used {
		if !ok {
			return fmt.Errorf("%w: player %s is on no team", ErrInvalidRoster, g.Roster[idx])
		}
	}
	return nil
}

func cloneGame(g *domain.Game) domain.Game {
	c := *g
	c.Roster = append([]string(nil), g.Roster...)
	if g.Variant.TwoSided() {
		c.Teams = g.Sides()
	}
	return c
}
