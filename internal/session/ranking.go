package session

import (
	"context"
	"fmt"

	"hoops_backend/internal/domain"
	"hoops_backend/internal/rating"
)

// rate converts an engine outcome into player ids and new ratings.
// Score races rank sides; the other variants rank roster indices.
func (o *Orchestrator) rate(ctx context.Context, g *domain.Game, sides [2][]int, outcome []int) (*domain.OutcomeRecord, error) {
	before, err := o.currentRatings(ctx, g.Roster)
	if err != nil {
		return nil, err
	}

	rec := &domain.OutcomeRecord{
		GameID:  g.ID,
		Variant: g.Variant,
		Before:  before,
		After:   make(map[string]float64, len(g.Roster)),
	}

	if g.Variant.TwoSided() {
		err = o.rateSides(g, sides, outcome, rec)
	} else {
		err = o.rateRanked(g, outcome, rec)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (o *Orchestrator) rateSides(g *domain.Game, sides [2][]int, outcome []int, rec *domain.OutcomeRecord) error {
	if len(outcome) != 2 || outcome[0] == outcome[1] || outcome[0] < 0 || outcome[0] > 1 || outcome[1] < 0 || outcome[1] > 1 {
		return fmt.Errorf("%w: side outcome %v", rating.ErrInvalidInput, outcome)
	}
	win, lose := sides[outcome[0]], sides[outcome[1]]

	for _, idx := range win {
		rec.Ranking = append(rec.Ranking, g.Roster[idx])
	}
	for _, idx := range lose {
		rec.Ranking = append(rec.Ranking, g.Roster[idx])
	}
	rec.Winners = append([]int(nil), win...)

	teamA := o.lookup(g.Roster, sides[0], rec.Before)
	teamB := o.lookup(g.Roster, sides[1], rec.Before)

	// one player per side is a plain two-player result
	if len(teamA) == 1 && len(teamB) == 1 {
		ranks := []int{0, 1}
		if outcome[0] == 1 {
			ranks = []int{1, 0}
		}
		after, err := rating.UpdateMultiplayer([]float64{teamA[0], teamB[0]}, ranks, o.cfg.KBase)
		if err != nil {
			return err
		}
		rec.After[g.Roster[sides[0][0]]] = after[0]
		rec.After[g.Roster[sides[1][0]]] = after[1]
		return nil
	}

	newA, newB, err := rating.UpdateTeamMatch(teamA, teamB, rating.Side(outcome[0]), o.cfg.KBase, o.cfg.SplitTeamChange)
	if err != nil {
		return err
	}
	for i, idx := range sides[0] {
		rec.After[g.Roster[idx]] = newA[i]
	}
	for i, idx := range sides[1] {
		rec.After[g.Roster[idx]] = newB[i]
	}
	return nil
}

func (o *Orchestrator) rateRanked(g *domain.Game, outcome []int, rec *domain.OutcomeRecord) error {
	n := len(g.Roster)
	if len(outcome) != n {
		return fmt.Errorf("%w: ranking has %d entries for %d players", rating.ErrInvalidInput, len(outcome), n)
	}

	ranks := make([]int, n)
	for i := range ranks {
		ranks[i] = -1
	}
	for place, idx := range outcome {
		if idx < 0 || idx >= n || ranks[idx] != -1 {
			return fmt.Errorf("%w: ranking %v", rating.ErrInvalidInput, outcome)
		}
		ranks[idx] = place
		rec.Ranking = append(rec.Ranking, g.Roster[idx])
	}
	rec.Winners = []int{outcome[0]}

	all := make([]int, n)
	for i := range all {
		all[i] = i
	}
	after, err := rating.UpdateMultiplayer(o.lookup(g.Roster, all, rec.Before), ranks, o.cfg.KBase)
	if err != nil {
		return err
	}
	for i, id := range g.Roster {
		rec.After[id] = after[i]
	}
	return nil
}

func (o *Orchestrator) currentRatings(ctx context.Context, roster []string) (map[string]float64, error) {
	found := map[string]float64{}
	if o.ratings != nil {
		var err error
		found, err = o.ratings.Ratings(ctx, roster)
		if err != nil {
			return nil, fmt.Errorf("load ratings: %w", err)
		}
	}

	out := make(map[string]float64, len(roster))
	for _, id := range roster {
		r, ok := found[id]
		if !ok {
			r = o.cfg.DefaultRating
		}
		out[id] = r
	}
	return out, nil
}

func (o *Orchestrator) lookup(roster []string, idxs []int, ratings map[string]float64) []float64 {
	out := make([]float64, len(idxs))
	for i, idx := range idxs {
		out[i] = ratings[roster[idx]]
	}
	return out
}
