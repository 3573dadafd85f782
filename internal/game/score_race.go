package game

import (
	"fmt"

	"hoops_backend/internal/domain"
)

// ScoreRace runs HeadToHead and TeamMatch games: two sides racing to a target.
type ScoreRace struct {
	base
	variant      domain.Variant
	target       int
	winByTwo     bool
	makeItTakeIt bool
	missTurnLoss bool

	scores     [2]int
	possession int
}

func NewScoreRace(variant domain.Variant, settings domain.GameSettings) *ScoreRace {
	s := settings.Normalize(variant)
	return &ScoreRace{
		base:         newBase(),
		variant:      variant,
		target:       s.TargetScore,
		winByTwo:     s.WinByTwo,
		makeItTakeIt: s.MakeItTakeIt,
		missTurnLoss: s.MissCountsAsTurnLoss,
	}
}

func (g *ScoreRace) Variant() domain.Variant { return g.variant }

func (g *ScoreRace) Apply(ev Event) (Snapshot, error) {
	switch ev.Kind {
	case EventScorePoints:
		return g.ScorePoints(ev.Points)
	case EventSwitchPossession:
		return g.SwitchPossession(), nil
	case EventResetScores:
		return g.ResetScores(), nil
	case EventMissShot:
		return g.MissShot(), nil
	}
	if g.finished() {
		return g.State(), nil
	}
	return g.State(), fmt.Errorf("%w: %s in %s", ErrIllegalEvent, ev.Kind, g.variant)
}

// ScorePoints credits a made basket (1, 2 or 3 points) to the side in possession.
func (g *ScoreRace) ScorePoints(n int) (Snapshot, error) {
	if g.finished() {
		return g.State(), nil
	}
	if n < 1 || n > 3 {
		return g.State(), fmt.Errorf("%w: cannot score %d points", ErrIllegalEvent, n)
	}

	g.accept()
	g.scores[g.possession] += n

	if g.checkWin() {
		return g.State(), nil
	}
	if !g.makeItTakeIt {
		g.possession = 1 - g.possession
	}
	return g.State(), nil
}

func (g *ScoreRace) SwitchPossession() Snapshot {
	if g.finished() {
		return g.State()
	}
	g.accept()
	g.possession = 1 - g.possession
	return g.State()
}

// MissShot hands the ball over only when misses count as a turn loss;
// otherwise it is an offensive rebound.
func (g *ScoreRace) MissShot() Snapshot {
	if g.finished() {
		return g.State()
	}
	g.accept()
	if g.missTurnLoss {
		g.possession = 1 - g.possession
	}
	return g.State()
}

// ResetScores zeroes both sides for manual correction. Possession is kept.
func (g *ScoreRace) ResetScores() Snapshot {
	if g.finished() {
		return g.State()
	}
	g.accept()
	g.scores = [2]int{}
	return g.State()
}

func (g *ScoreRace) checkWin() bool {
	for side := 0; side < 2; side++ {
		other := 1 - side
		if g.scores[side] < g.target {
			continue
		}
		if g.winByTwo && g.scores[side]-g.scores[other] < 2 {
			continue
		}
		g.possession = side
		g.finish([]int{side, other})
		return true
	}
	return false
}

func (g *ScoreRace) State() Snapshot {
	s := Snapshot{
		Variant:    g.variant,
		Possession: g.possession,
		Target:     g.target,
		Scores:     []int{g.scores[0], g.scores[1]},
	}
	g.fill(&s)
	return s
}
