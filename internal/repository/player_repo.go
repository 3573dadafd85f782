package repository

import (
	"context"
	"errors"

	"hoops_backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PlayerRepository struct {
	db            *pgxpool.Pool
	defaultRating float64
}

func NewPlayerRepository(db *pgxpool.Pool, defaultRating float64) *PlayerRepository {
	if defaultRating <= 0 {
		defaultRating = domain.DefaultRating
	}
	return &PlayerRepository{db: db, defaultRating: defaultRating}
}

// Upsert creates the player or refreshes the display name.
func (r *PlayerRepository) Upsert(ctx context.Context, p *domain.Player) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO players (id, display_name, rating)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET display_name = EXCLUDED.display_name
		 RETURNING rating, games_played, wins, created_at`,
		p.ID, p.DisplayName, r.defaultRating,
	).Scan(&p.Rating, &p.GamesPlayed, &p.Wins, &p.CreatedAt)
}

func (r *PlayerRepository) GetByID(ctx context.Context, id string) (*domain.Player, error) {
	var p domain.Player
	err := r.db.QueryRow(ctx,
		`SELECT id, display_name, rating, games_played, wins, created_at
		 FROM players
		 WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.DisplayName, &p.Rating, &p.GamesPlayed, &p.Wins, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Ratings returns stored ratings for the ids that exist.
func (r *PlayerRepository) Ratings(ctx context.Context, ids []string) (map[string]float64, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, rating FROM players WHERE id = ANY($1)`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]float64, len(ids))
	for rows.Next() {
		var (
			id     string
			rating float64
		)
		if err := rows.Scan(&id, &rating); err != nil {
			return nil, err
		}
		out[id] = rating
	}
	return out, rows.Err()
}

// LeaderboardEntry - one row of the rating table
type LeaderboardEntry struct {
	Rank        int     `json:"rank"`
	PlayerID    string  `json:"player_id"`
	DisplayName string  `json:"display_name"`
	Rating      float64 `json:"rating"`
	GamesPlayed int     `json:"games_played"`
	Wins        int     `json:"wins"`
}

// Leaderboard lists rated players by rating.
func (r *PlayerRepository) Leaderboard(ctx context.Context, limit int) ([]*LeaderboardEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, display_name, rating, games_played, wins
		 FROM players
		 WHERE games_played > 0
		 ORDER BY rating DESC, wins DESC, id
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*LeaderboardEntry
	for rows.Next() {
		e := &LeaderboardEntry{Rank: len(res) + 1}
		if err := rows.Scan(&e.PlayerID, &e.DisplayName, &e.Rating, &e.GamesPlayed, &e.Wins); err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

// RankOf returns the 1-based leaderboard position of a player.
func (r *PlayerRepository) RankOf(ctx context.Context, id string) (int, error) {
	var rank int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) + 1
		 FROM players
		 WHERE games_played > 0
		   AND rating > (SELECT rating FROM players WHERE id = $1)`,
		id,
	).Scan(&rank)
	return rank, err
}

// History returns recent rating changes for a player.
func (r *PlayerRepository) History(ctx context.Context, id string, limit int) ([]*domain.RatingChange, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, player_id, game_id, variant, place, rating_before, rating_after, created_at
		 FROM rating_history
		 WHERE player_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		id, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.RatingChange
	for rows.Next() {
		var c domain.RatingChange
		if err := rows.Scan(&c.ID, &c.PlayerID, &c.GameID, &c.Variant, &c.Place, &c.Before, &c.After, &c.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, &c)
	}
	return res, rows.Err()
}
