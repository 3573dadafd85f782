package game

import (
	"fmt"
	"sort"

	"hoops_backend/internal/court"
	"hoops_backend/internal/domain"
)

// ProgressionRace ("Around the World"): players shoot their way along a
// fixed route; the first to complete it wins on the spot.
type ProgressionRace struct {
	base
	route court.Route

	// order holds roster indices in turn order; seat indexes into it.
	order    []int
	seat     int
	progress []int
}

// NewProgressionRace builds the engine for players in the given turn order.
// A nil order means roster order.
func NewProgressionRace(settings domain.GameSettings, players int, order []int) (*ProgressionRace, error) {
	if players < 2 {
		return nil, ErrTooFewPlayers
	}
	if order == nil {
		order = make([]int, players)
		for i := range order {
			order[i] = i
		}
	}
	if !isPermutation(order, players) {
		return nil, fmt.Errorf("turn order %v is not a permutation of %d players", order, players)
	}

	s := settings.Normalize(domain.VariantProgressionRace)
	return &ProgressionRace{
		base:     newBase(),
		route:    court.RouteFor(s.LongRoute),
		order:    cloneInts(order),
		progress: make([]int, players),
	}, nil
}

func (g *ProgressionRace) Variant() domain.Variant { return domain.VariantProgressionRace }

func (g *ProgressionRace) Apply(ev Event) (Snapshot, error) {
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

// HitShot moves the shooter to the next waypoint. The shooter keeps the ball.
func (g *ProgressionRace) HitShot() Snapshot {
	if g.finished() {
		return g.State()
	}
	g.accept()

	p := g.order[g.seat]
	g.progress[p]++
	if g.route.Finished(g.progress[p]) {
		g.settle(p)
	}
	return g.State()
}

func (g *ProgressionRace) MissShot() Snapshot {
	if g.finished() {
		return g.State()
	}
	g.accept()
	g.seat = (g.seat + 1) % len(g.order)
	return g.State()
}

// settle ranks the finisher first, then everyone else by progress.
// Equal progress keeps turn order.
func (g *ProgressionRace) settle(winner int) {
	rest := make([]int, 0, len(g.order)-1)
	for _, p := range g.order {
		if p != winner {
			rest = append(rest, p)
		}
	}
	sort.SliceStable(rest, func(i, j int) bool {
		return g.progress[rest[i]] > g.progress[rest[j]]
	})
	g.finish(append([]int{winner}, rest...))
}

func (g *ProgressionRace) State() Snapshot {
	s := Snapshot{
		Variant:     g.Variant(),
		Possession:  g.order[g.seat],
		Route:       g.route.Name(),
		RouteLength: g.route.Len(),
		Progress:    cloneInts(g.progress),
		TurnOrder:   cloneInts(g.order),
	}
	g.fill(&s)
	return s
}

func isPermutation(xs []int, n int) bool {
	if len(xs) != n {
		return false
	}
	seen := make([]bool, n)
	for _, x := range xs {
		if x < 0 || x >= n || seen[x] {
			return false
		}
		seen[x] = true
	}
	return true
}
