package repository

import (
	"context"
	"fmt"

	"hoops_backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OutcomeRepository writes finished games: the game result, new player
// ratings and rating history, all in one transaction.
type OutcomeRepository struct {
	db *pgxpool.Pool
}

func NewOutcomeRepository(db *pgxpool.Pool) *OutcomeRepository {
	return &OutcomeRepository{db: db}
}

func (r *OutcomeRepository) SubmitOutcome(ctx context.Context, rec *domain.OutcomeRecord) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	winners := make([]int32, len(rec.Winners))
	for i, w := range rec.Winners {
		winners[i] = int32(w)
	}

	tag, err := tx.Exec(ctx,
		`UPDATE games
		 SET status = $2, winners = $3, ranking = $4, finished_at = now()
		 WHERE id = $1 AND status <> $2`,
		rec.GameID, domain.GameStatusFinished, winners, rec.Ranking,
	)
	if err != nil {
		return fmt.Errorf("update game: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// already recorded, or the game row is missing
		return nil
	}

	winnerIDs := rec.WinnerIDs()
	for _, c := range rec.RatingChanges() {
		won := 0
		if winnerIDs[c.PlayerID] {
			won = 1
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO players (id, rating, games_played, wins)
			 VALUES ($1, $2, 1, $3)
			 ON CONFLICT (id) DO UPDATE
			 SET rating = EXCLUDED.rating,
			     games_played = players.games_played + 1,
			     wins = players.wins + EXCLUDED.wins`,
			c.PlayerID, c.After, won,
		); err != nil {
			return fmt.Errorf("update player %s: %w", c.PlayerID, err)
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO rating_history (player_id, game_id, variant, place, rating_before, rating_after)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			c.PlayerID, c.GameID, c.Variant, c.Place, c.Before, c.After,
		); err != nil {
			return fmt.Errorf("insert rating history %s: %w", c.PlayerID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
