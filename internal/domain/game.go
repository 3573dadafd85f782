package domain

import "time"

// Variant - rule set a game is played under
type Variant string

const (
	VariantHeadToHead      Variant = "head_to_head"
	VariantTeamMatch       Variant = "team_match"
	VariantEliminationRace Variant = "elimination_race"
	VariantProgressionRace Variant = "progression_race"
)

// Valid reports whether v is one of the known variants.
func (v Variant) Valid() bool {
	switch v {
	case VariantHeadToHead, VariantTeamMatch, VariantEliminationRace, VariantProgressionRace:
		return true
	}
	return false
}

// TwoSided reports whether the variant is played between exactly two sides.
func (v Variant) TwoSided() bool {
	return v == VariantHeadToHead || v == VariantTeamMatch
}

// GameStatus - lifecycle of a persisted game record
type GameStatus string

const (
	GameStatusPending  GameStatus = "pending"
	GameStatusLive     GameStatus = "live"
	GameStatusFinished GameStatus = "finished"
)

// Default per-variant targets
const (
	DefaultHeadToHeadTarget = 11
	DefaultTeamMatchTarget  = 21
	DefaultEliminationLimit = 7
)

// GameSettings - variant specific knobs. Knobs a variant does not use are ignored.
type GameSettings struct {
	TargetScore          int  `json:"target_score"`
	WinByTwo             bool `json:"win_by_two"`
	MakeItTakeIt         bool `json:"make_it_take_it"`
	MissCountsAsTurnLoss bool `json:"miss_counts_as_turn_loss"`
	LongRoute            bool `json:"long_route"`
}

// Normalize returns a copy with defaults applied for the variant and
// irrelevant knobs cleared.
func (s GameSettings) Normalize(v Variant) GameSettings {
	out := GameSettings{}
	switch v {
	case VariantHeadToHead, VariantTeamMatch:
		out.TargetScore = s.TargetScore
		if out.TargetScore <= 0 {
			if v == VariantHeadToHead {
				out.TargetScore = DefaultHeadToHeadTarget
			} else {
				out.TargetScore = DefaultTeamMatchTarget
			}
		}
		out.WinByTwo = s.WinByTwo
		out.MakeItTakeIt = s.MakeItTakeIt
		out.MissCountsAsTurnLoss = s.MissCountsAsTurnLoss
	case VariantEliminationRace:
		out.TargetScore = s.TargetScore
		if out.TargetScore <= 0 {
			out.TargetScore = DefaultEliminationLimit
		}
	case VariantProgressionRace:
		out.LongRoute = s.LongRoute
	}
	return out
}

// Game - persisted game record. Everything except the result fields is
// fixed once the record is created.
type Game struct {
	ID       string       `db:"id" json:"id"`
	Variant  Variant      `db:"variant" json:"variant"`
	Roster   []string     `db:"roster" json:"roster"`
	Teams    [2][]int     `db:"teams" json:"teams,omitempty"`
	JudgeID  string       `db:"judge_id" json:"judge_id"`
	Settings GameSettings `db:"settings" json:"settings"`
	Status   GameStatus   `db:"status" json:"status"`

	// result, set at termination
	Winners    []int      `db:"winners" json:"winners,omitempty"`
	Ranking    []string   `db:"ranking" json:"ranking,omitempty"`
	FinishedAt *time.Time `db:"finished_at" json:"finished_at,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Sides returns roster indices for both sides of a two-sided game.
// Without explicit teams the roster is split into first and second half.
func (g *Game) Sides() [2][]int {
	if len(g.Teams[0]) > 0 && len(g.Teams[1]) > 0 {
		return [2][]int{append([]int(nil), g.Teams[0]...), append([]int(nil), g.Teams[1]...)}
	}

	var sides [2][]int
	half := (len(g.Roster) + 1) / 2
	for i := range g.Roster {
		if i < half {
			sides[0] = append(sides[0], i)
		} else {
			sides[1] = append(sides[1], i)
		}
	}
	return sides
}
