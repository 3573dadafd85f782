package repository

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"hoops_backend/internal/domain"
	"hoops_backend/internal/game"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	redis "github.com/redis/go-redis/v9"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(pool.Close)

	migDir := filepath.Join("..", "migrations")
	files, err := os.ReadDir(migDir)
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	for _, f := range files {
		b, err := os.ReadFile(filepath.Join(migDir, f.Name()))
		if err != nil {
			t.Fatalf("read file: %v", err)
		}
		if _, err := pool.Exec(context.Background(), string(b)); err != nil {
			t.Fatalf("apply migration %s: %v", f.Name(), err)
		}
	}
	return pool
}

func TestGameRepository_CreateGetByID(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := NewGameRepository(pool)

	suffix := uuid.NewString()[:8]
	g := &domain.Game{
		Variant:  domain.VariantTeamMatch,
		Roster:   []string{"a-" + suffix, "b-" + suffix, "c-" + suffix, "d-" + suffix},
		Teams:    [2][]int{{0, 2}, {1, 3}},
		JudgeID:  "judge-" + suffix,
		Settings: domain.GameSettings{TargetScore: 15, WinByTwo: true},
	}
	if err := repo.Create(ctx, g); err != nil {
		t.Fatalf("create game: %v", err)
	}
	if g.ID == "" || g.Status != domain.GameStatusPending {
		t.Fatalf("create did not fill id/status: %+v", g)
	}

	got, err := repo.GetByID(ctx, g.ID)
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if got.Settings.TargetScore != 15 || !got.Settings.WinByTwo {
		t.Fatalf("settings = %+v", got.Settings)
	}
	if len(got.Teams[0]) != 2 || got.Teams[1][1] != 3 {
		t.Fatalf("teams = %v", got.Teams)
	}

	if err := repo.MarkLive(ctx, g.ID); err != nil {
		t.Fatalf("mark live: %v", err)
	}
	games, err := repo.GetByPlayer(ctx, "c-"+suffix, 10)
	if err != nil {
		t.Fatalf("get by player: %v", err)
	}
	if len(games) != 1 || games[0].Status != domain.GameStatusLive {
		t.Fatalf("games by player = %+v", games)
	}

	if _, err := repo.GetByID(ctx, "missing-"+suffix); err != ErrNotFound {
		t.Fatalf("missing game err = %v; want ErrNotFound", err)
	}
}

func TestOutcomeRepository_SubmitOutcome(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	games := NewGameRepository(pool)
	players := NewPlayerRepository(pool, domain.DefaultRating)
	outcomes := NewOutcomeRepository(pool)

	suffix := uuid.NewString()[:8]
	a, b := "a-"+suffix, "b-"+suffix
	if err := players.Upsert(ctx, &domain.Player{ID: a, DisplayName: "A"}); err != nil {
		t.Fatalf("upsert player: %v", err)
	}

	g := &domain.Game{Variant: domain.VariantHeadToHead, Roster: []string{a, b}, JudgeID: a}
	if err := games.Create(ctx, g); err != nil {
		t.Fatalf("create game: %v", err)
	}

	rec := &domain.OutcomeRecord{
		GameID:  g.ID,
		Variant: g.Variant,
		Ranking: []string{b, a},
		Winners: []int{1},
		Before:  map[string]float64{a: 1000, b: 1000},
		After:   map[string]float64{a: 985, b: 1015},
	}
	if err := outcomes.SubmitOutcome(ctx, rec); err != nil {
		t.Fatalf("submit outcome: %v", err)
	}
	// second submit is a no-op
	if err := outcomes.SubmitOutcome(ctx, rec); err != nil {
		t.Fatalf("resubmit outcome: %v", err)
	}

	ratings, err := players.Ratings(ctx, []string{a, b, "nobody-" + suffix})
	if err != nil {
		t.Fatalf("ratings: %v", err)
	}
	if ratings[a] != 985 || ratings[b] != 1015 || len(ratings) != 2 {
		t.Fatalf("ratings = %v", ratings)
	}

	pb, err := players.GetByID(ctx, b)
	if err != nil {
		t.Fatalf("get player: %v", err)
	}
	if pb.GamesPlayed != 1 || pb.Wins != 1 {
		t.Fatalf("winner stats = %+v", pb)
	}

	hist, err := players.History(ctx, a, 5)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist) != 1 || hist[0].Place != 2 || hist[0].Delta() != -15 {
		t.Fatalf("history = %+v", hist)
	}

	stored, err := games.GetByID(ctx, g.ID)
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if stored.Status != domain.GameStatusFinished || stored.FinishedAt == nil || stored.Ranking[0] != b {
		t.Fatalf("stored game = %+v", stored)
	}
}

func TestSnapshotStoreIntegration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping integration test")
	}
	db := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			db = n
		}
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("REDIS_PASSWORD"), DB: db})
	defer rdb.Close()

	ctx := context.Background()
	store := NewSnapshotStore(rdb, time.Minute)
	id := uuid.NewString()

	got, err := store.Get(ctx, id)
	if err != nil || got != nil {
		t.Fatalf("empty get = %v, %v", got, err)
	}

	snap := game.Snapshot{
		Variant: domain.VariantHeadToHead,
		Status:  game.StatusInProgress,
		Events:  3,
		Target:  11,
		Scores:  []int{4, 2},
	}
	store.Publish(ctx, id, snap)

	got, err = store.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Events != 3 || got.Scores[0] != 4 {
		t.Fatalf("snapshot = %+v", got)
	}

	if err := store.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestSnapshotStoreWithoutRedis(t *testing.T) {
	store := NewSnapshotStore(nil, 0)
	store.Publish(context.Background(), "g1", game.Snapshot{})
	got, err := store.Get(context.Background(), "g1")
	if err != nil || got != nil {
		t.Fatalf("nil client get = %v, %v", got, err)
	}
}
