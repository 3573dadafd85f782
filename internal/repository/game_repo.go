package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"hoops_backend/internal/domain"
	"hoops_backend/internal/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")

type GameRepository struct {
	db *pgxpool.Pool
}

func NewGameRepository(db *pgxpool.Pool) *GameRepository {
	return &GameRepository{db: db}
}

const gameColumns = `id, variant, roster, teams, judge_id, settings, status, winners, ranking, finished_at, created_at`

// Create stores a new pending game. An empty ID gets a fresh uuid.
func (r *GameRepository) Create(ctx context.Context, g *domain.Game) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.Status == "" {
		g.Status = domain.GameStatusPending
	}

	teamsJSON, err := json.Marshal(g.Teams)
	if err != nil {
		return err
	}
	settingsJSON, err := json.Marshal(g.Settings)
	if err != nil {
		return err
	}

	return r.db.QueryRow(ctx,
		`INSERT INTO games (id, variant, roster, teams, judge_id, settings, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at`,
		g.ID,
		g.Variant,
		g.Roster,
		teamsJSON,
		g.JudgeID,
		settingsJSON,
		g.Status,
	).Scan(&g.CreatedAt)
}

func (r *GameRepository) GetByID(ctx context.Context, id string) (*domain.Game, error) {
	row := r.db.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE id = $1`, id)
	g, err := scanGame(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return g, err
}

// MarkLive flags a pending game as being played.
func (r *GameRepository) MarkLive(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE games SET status = $2 WHERE id = $1 AND status = $3`,
		id, domain.GameStatusLive, domain.GameStatusPending,
	)
	return err
}

// GetByPlayer returns the most recent games the player was rostered in.
func (r *GameRepository) GetByPlayer(ctx context.Context, playerID string, limit int) ([]*domain.Game, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+gameColumns+`
		 FROM games
		 WHERE $1 = ANY(roster)
		 ORDER BY created_at DESC
		 LIMIT $2`,
		playerID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, g)
	}
	return res, rows.Err()
}

func scanGame(row pgx.Row) (*domain.Game, error) {
	var (
		g            domain.Game
		teamsJSON    []byte
		settingsJSON []byte
		winners      []int32
		finishedAt   *time.Time
	)

	if err := row.Scan(
		&g.ID,
		&g.Variant,
		&g.Roster,
		&teamsJSON,
		&g.JudgeID,
		&settingsJSON,
		&g.Status,
		&winners,
		&g.Ranking,
		&finishedAt,
		&g.CreatedAt,
	); err != nil {
		return nil, err
	}

	if err := decodeGameJSON(&g, teamsJSON, settingsJSON); err != nil {
		return nil, err
	}
	for _, w := range winners {
		g.Winners = append(g.Winners, int(w))
	}
	g.FinishedAt = finishedAt

	return &g, nil
}

// decodeGameJSON fills teams and settings from their JSONB columns. Corrupt
// teams are an error; corrupt settings fall back to the variant defaults.
func decodeGameJSON(g *domain.Game, teamsJSON, settingsJSON []byte) error {
	if len(teamsJSON) > 0 {
		if err := json.Unmarshal(teamsJSON, &g.Teams); err != nil {
			return fmt.Errorf("game %s: decode teams: %w", g.ID, err)
		}
	}
	if len(settingsJSON) > 0 {
		if err := json.Unmarshal(settingsJSON, &g.Settings); err != nil {
			logger.Warn("invalid game settings, using defaults", "game_id", g.ID, "error", err)
			g.Settings = domain.GameSettings{}.Normalize(g.Variant)
		}
	}
	return nil
}
