package game

import (
	"errors"

	"hoops_backend/internal/domain"
)

type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusFinished   Status = "finished"
)

type EventKind string

const (
	EventScorePoints      EventKind = "score_points"
	EventSwitchPossession EventKind = "switch_possession"
	EventResetScores      EventKind = "reset_scores"
	EventHitShot          EventKind = "hit_shot"
	EventMissShot         EventKind = "miss_shot"
)

// Event - one judge-reported action
type Event struct {
	Kind   EventKind `json:"type"`
	Points int       `json:"points,omitempty"`
}

var (
	// ErrIllegalEvent is returned for events a variant does not understand
	// or malformed event values. State is left untouched.
	ErrIllegalEvent   = errors.New("illegal event")
	ErrTooFewPlayers  = errors.New("at least two players required")
	ErrUnknownVariant = errors.New("unknown variant")
)

type Engine interface {
	Variant() domain.Variant

	// Apply advances the state machine. Events on a finished engine are
	// ignored and the unchanged snapshot is returned.
	Apply(ev Event) (Snapshot, error)

	State() Snapshot
	Finished() bool

	// Outcome is the full ranking from first to last place. Score races rank
	// sides, the other variants rank roster indices.
	Outcome() ([]int, bool)
}

// Snapshot is an immutable copy of an engine's observable state.
type Snapshot struct {
	Variant domain.Variant `json:"variant"`
	Status  Status         `json:"status"`
	Events  int            `json:"events"`

	// Possession is a side index for score races and a roster index otherwise.
	Possession int `json:"possession"`

	Target int `json:"target,omitempty"`
	// Scores holds side scores, or banked totals in an elimination race.
	Scores     []int `json:"scores,omitempty"`
	Unbanked   []int `json:"unbanked,omitempty"`
	Eliminated []int `json:"eliminated,omitempty"`

	Route       string `json:"route,omitempty"`
	RouteLength int    `json:"route_length,omitempty"`
	Progress    []int  `json:"progress,omitempty"`
	TurnOrder   []int  `json:"turn_order,omitempty"`

	Outcome []int `json:"outcome,omitempty"`
}

func (s Snapshot) Finished() bool {
	return s.Status == StatusFinished
}

// base tracks the lifecycle shared by every engine.
type base struct {
	status  Status
	events  int
	outcome []int
}

func newBase() base {
	return base{status: StatusNotStarted}
}

func (b *base) finished() bool {
	return b.status == StatusFinished
}

// accept records an accepted event and leaves NotStarted.
func (b *base) accept() {
	b.events++
	if b.status == StatusNotStarted {
		b.status = StatusInProgress
	}
}

func (b *base) finish(ranking []int) {
	b.status = StatusFinished
	b.outcome = ranking
}

func (b *base) Finished() bool {
	return b.finished()
}

func (b *base) Outcome() ([]int, bool) {
	if !b.finished() {
		return nil, false
	}
	return cloneInts(b.outcome), true
}

func (b *base) fill(s *Snapshot) {
	s.Status = b.status
	s.Events = b.events
	if b.finished() {
		s.Outcome = cloneInts(b.outcome)
	}
}

func cloneInts(xs []int) []int {
	if xs == nil {
		return nil
	}
	out := make([]int, len(xs))
	copy(out, xs)
	return out
}
