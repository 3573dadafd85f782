package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"hoops_backend/internal/domain"
	"hoops_backend/internal/game"
	"hoops_backend/internal/repository"
	"hoops_backend/internal/session"
)

type memGames struct {
	mu    sync.Mutex
	games map[string]*domain.Game
	live  []string
}

func newMemGames() *memGames {
	return &memGames{games: make(map[string]*domain.Game)}
}

func (m *memGames) Create(_ context.Context, g *domain.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if g.ID == "" {
		g.ID = "g" + string(rune('0'+len(m.games)))
	}
	c := *g
	m.games[g.ID] = &c
	return nil
}

func (m *memGames) GetByID(_ context.Context, id string) (*domain.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *g
	return &c, nil
}

func (m *memGames) MarkLive(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.live = append(m.live, id)
	return nil
}

type cachedSnapshots map[string]game.Snapshot

func (c cachedSnapshots) Get(_ context.Context, id string) (*game.Snapshot, error) {
	snap, ok := c[id]
	if !ok {
		return nil, nil
	}
	return &snap, nil
}

func newTestService(cache SnapshotReader) (*GameService, *memGames) {
	store := newMemGames()
	orch := session.NewOrchestrator(session.Config{}, nil, nil)
	return NewGameService(store, orch, cache), store
}

func TestCreateGameNormalizesSettings(t *testing.T) {
	svc, _ := newTestService(nil)

	g, err := svc.CreateGame(context.Background(), "judge", CreateGameRequest{
		Variant:  domain.VariantHeadToHead,
		Roster:   []string{"a", "b"},
		Teams:    [2][]int{{0}, {1}},
		Settings: domain.GameSettings{LongRoute: true},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if g.Settings.TargetScore != domain.DefaultHeadToHeadTarget || g.Settings.LongRoute {
		t.Fatalf("settings = %+v", g.Settings)
	}
	if g.JudgeID != "judge" || g.Status != domain.GameStatusPending {
		t.Fatalf("game = %+v", g)
	}
}

func TestCreateGameRejectsBadRoster(t *testing.T) {
	svc, _ := newTestService(nil)

	tests := []CreateGameRequest{
		{Variant: "dunk_contest", Roster: []string{"a", "b"}},
		{Variant: domain.VariantEliminationRace, Roster: []string{"a"}},
		{Variant: domain.VariantProgressionRace, Roster: []string{"a", "a"}},
		{Variant: domain.VariantTeamMatch, Roster: []string{"a", "b", "c"}, Teams: [2][]int{{0}, {0, 2}}},
	}
	for i, req := range tests {
		if _, err := svc.CreateGame(context.Background(), "judge", req); !errors.Is(err, session.ErrInvalidRoster) {
			t.Fatalf("case %d: err = %v; want ErrInvalidRoster", i, err)
		}
	}
}

func TestSessionFlow(t *testing.T) {
	svc, store := newTestService(nil)
	ctx := context.Background()

	g, err := svc.CreateGame(ctx, "judge", CreateGameRequest{
		Variant:  domain.VariantHeadToHead,
		Roster:   []string{"a", "b"},
		Settings: domain.GameSettings{TargetScore: 3},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.ApplyEvent(ctx, g.ID, "judge", game.Event{Kind: game.EventScorePoints, Points: 1}); !errors.Is(err, session.ErrNotLoaded) {
		t.Fatalf("apply before load err = %v", err)
	}
	if _, err := svc.StartSession(ctx, g.ID, "a"); !errors.Is(err, session.ErrNotJudge) {
		t.Fatalf("non-judge start err = %v", err)
	}
	if _, err := svc.StartSession(ctx, "missing", "judge"); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("missing game err = %v", err)
	}

	if _, err := svc.StartSession(ctx, g.ID, "judge"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if len(store.live) != 1 {
		t.Fatalf("game not marked live")
	}

	if _, err := svc.ApplyEvent(ctx, g.ID, "b", game.Event{Kind: game.EventScorePoints, Points: 1}); !errors.Is(err, session.ErrNotJudge) {
		t.Fatalf("non-judge apply err = %v", err)
	}

	snap, err := svc.ApplyEvent(ctx, g.ID, "judge", game.Event{Kind: game.EventScorePoints, Points: 3})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !snap.Finished() || snap.Outcome[0] != 0 {
		t.Fatalf("snapshot = %+v", snap)
	}

	state, err := svc.State(ctx, g.ID)
	if err != nil || !state.Finished() {
		t.Fatalf("state = %+v, %v", state, err)
	}
}

func TestStartSessionFinishedGame(t *testing.T) {
	svc, store := newTestService(nil)
	store.games["done"] = &domain.Game{
		ID:      "done",
		Variant: domain.VariantHeadToHead,
		Roster:  []string{"a", "b"},
		JudgeID: "judge",
		Status:  domain.GameStatusFinished,
	}
	if _, err := svc.StartSession(context.Background(), "done", "judge"); !errors.Is(err, ErrGameFinished) {
		t.Fatalf("err = %v; want ErrGameFinished", err)
	}
}

func TestStateFallsBackToCache(t *testing.T) {
	cache := cachedSnapshots{"old": {Variant: domain.VariantTeamMatch, Status: game.StatusInProgress, Events: 7}}
	svc, _ := newTestService(cache)

	snap, err := svc.State(context.Background(), "old")
	if err != nil || snap.Events != 7 {
		t.Fatalf("state = %+v, %v", snap, err)
	}
	if _, err := svc.State(context.Background(), "unknown"); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("err = %v; want ErrGameNotFound", err)
	}
}
