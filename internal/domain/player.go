package domain

import "time"

// DefaultRating is assigned to players who have never finished a rated game.
const DefaultRating = 1000.0

type Player struct {
	ID          string    `db:"id" json:"id"`
	DisplayName string    `db:"display_name" json:"display_name"`
	Rating      float64   `db:"rating" json:"rating"`
	GamesPlayed int       `db:"games_played" json:"games_played"`
	Wins        int       `db:"wins" json:"wins"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// RatingChange - one rating history entry
type RatingChange struct {
	ID        int64     `db:"id" json:"id"`
	PlayerID  string    `db:"player_id" json:"player_id"`
	GameID    string    `db:"game_id" json:"game_id"`
	Variant   Variant   `db:"variant" json:"variant"`
	Place     int       `db:"place" json:"place"`
	Before    float64   `db:"rating_before" json:"rating_before"`
	After     float64   `db:"rating_after" json:"rating_after"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Delta returns the signed rating movement.
func (c *RatingChange) Delta() float64 {
	return c.After - c.Before
}

// OutcomeRecord is handed to persistence exactly once per finished game.
type OutcomeRecord struct {
	GameID  string
	Variant Variant
	// Ranking holds player ids from winner to last place.
	Ranking []string
	// Winners holds roster indices of the winning player or side members.
	Winners []int
	Before  map[string]float64
	After   map[string]float64
}

// Deltas returns after - before for every ranked player.
func (o *OutcomeRecord) Deltas() map[string]float64 {
	out := make(map[string]float64, len(o.Ranking))
	for _, id := range o.Ranking {
		out[id] = o.After[id] - o.Before[id]
	}
	return out
}

// RatingChanges expands the record into per-player history entries.
func (o *OutcomeRecord) RatingChanges() []*RatingChange {
	res := make([]*RatingChange, 0, len(o.Ranking))
	for place, id := range o.Ranking {
		res = append(res, &RatingChange{
			PlayerID: id,
			GameID:   o.GameID,
			Variant:  o.Variant,
			Place:    place + 1,
			Before:   o.Before[id],
			After:    o.After[id],
		})
	}
	return res
}

// WinnerIDs returns the set of player ids that finished on the winning side.
func (o *OutcomeRecord) WinnerIDs() map[string]bool {
	out := make(map[string]bool)
	if len(o.Winners) == 0 {
		if len(o.Ranking) > 0 {
			out[o.Ranking[0]] = true
		}
		return out
	}
	for i := 0; i < len(o.Winners) && i < len(o.Ranking); i++ {
		out[o.Ranking[i]] = true
	}
	return out
}
