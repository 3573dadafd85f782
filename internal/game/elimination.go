package game

import (
	"fmt"

	"hoops_backend/internal/domain"
)

// EliminationRace ("Seven Up"): made shots accumulate unbanked points, a miss
// banks them. Banking past the threshold locks the shooter out. The last
// player standing wins.
type EliminationRace struct {
	base
	threshold int

	unbanked   []int
	banked     []int
	out        []bool
	eliminated []int
	possession int
}

func NewEliminationRace(settings domain.GameSettings, players int) (*EliminationRace, error) {
	if players < 2 {
		return nil, ErrTooFewPlayers
	}
	s := settings.Normalize(domain.VariantEliminationRace)
	return &EliminationRace{
		base:      newBase(),
		threshold: s.TargetScore,
		unbanked:  make([]int, players),
		banked:    make([]int, players),
		out:       make([]bool, players),
	}, nil
}

func (g *EliminationRace) Variant() domain.Variant { return domain.VariantEliminationRace }

func (g *EliminationRace) Apply(ev Event) (Snapshot, error) {
	switch ev.Kind {
	case EventHitShot:
		return g.HitShot(), nil
	case EventMissShot:
		return g.MissShot(), nil
	}
	if g.finished() {
		return g.State(), nil
	}
	return g.State(), fmt.Errorf("%w: %s in %s", ErrIllegalEvent, ev.Kind, g.Variant())
}

func (g *EliminationRace) HitShot() Snapshot {
	if g.finished() {
		return g.State()
	}
	g.accept()
	g.unbanked[g.possession]++
	g.advance()
	return g.State()
}

func (g *EliminationRace) MissShot() Snapshot {
	if g.finished() {
		return g.State()
	}
	g.accept()

	p := g.possession
	g.banked[p] += g.unbanked[p]
	g.unbanked[p] = 0

	if g.banked[p] >= g.threshold && !g.out[p] {
		g.out[p] = true
		g.eliminated = append(g.eliminated, p)
	}

	if len(g.eliminated) == len(g.banked)-1 {
		g.settle()
		return g.State()
	}

	g.advance()
	return g.State()
}

// advance moves possession to the next player still in, wrapping around.
func (g *EliminationRace) advance() {
	n := len(g.out)
	for step := 1; step <= n; step++ {
		next := (g.possession + step) % n
		if !g.out[next] {
			g.possession = next
			return
		}
	}
}

// settle ranks the survivor first; earliest eliminated finishes last.
func (g *EliminationRace) settle() {
	winner := -1
	for i, o := range g.out {
		if !o {
			winner = i
			break
		}
	}

	ranking := make([]int, 0, len(g.out))
	ranking = append(ranking, winner)
	for i := len(g.eliminated) - 1; i >= 0; i-- {
		ranking = append(ranking, g.eliminated[i])
	}

	g.possession = winner
	g.finish(ranking)
}

func (g *EliminationRace) State() Snapshot {
	s := Snapshot{
		Variant:    g.Variant(),
		Possession: g.possession,
		Target:     g.threshold,
		Scores:     cloneInts(g.banked),
		Unbanked:   cloneInts(g.unbanked),
		Eliminated: cloneInts(g.eliminated),
	}
	g.fill(&s)
	return s
}
