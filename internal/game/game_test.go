package game

import (
	"errors"
	"reflect"
	"testing"

	"hoops_backend/internal/domain"
)

func mustEngine(t *testing.T, v domain.Variant, s domain.GameSettings, players int, order []int) Engine {
	t.Helper()
	e, err := NewFactory().CreateEngine(v, s, players, order)
	if err != nil {
		t.Fatalf("create engine: %v", err)
	}
	return e
}

func apply(t *testing.T, e Engine, evs ...Event) Snapshot {
	t.Helper()
	var s Snapshot
	for i, ev := range evs {
		var err error
		s, err = e.Apply(ev)
		if err != nil {
			t.Fatalf("event %d (%s): %v", i, ev.Kind, err)
		}
	}
	return s
}

func score(n int) Event {
	return Event{Kind: EventScorePoints, Points: n}
}

func repeat(ev Event, n int) []Event {
	out := make([]Event, n)
	for i := range out {
		out[i] = ev
	}
	return out
}

var (
	swap = Event{Kind: EventSwitchPossession}
	hit  = Event{Kind: EventHitShot}
	miss = Event{Kind: EventMissShot}
)

func TestFactory(t *testing.T) {
	cases := []struct {
		variant domain.Variant
		want    string
	}{
		{domain.VariantHeadToHead, "*game.ScoreRace"},
		{domain.VariantTeamMatch, "*game.ScoreRace"},
		{domain.VariantEliminationRace, "*game.EliminationRace"},
		{domain.VariantProgressionRace, "*game.ProgressionRace"},
	}
	for _, tc := range cases {
		e := mustEngine(t, tc.variant, domain.GameSettings{}, 2, nil)
		if got := reflect.TypeOf(e).String(); got != tc.want {
			t.Fatalf("CreateEngine(%s) = %s; want %s", tc.variant, got, tc.want)
		}
		if e.Variant() != tc.variant {
			t.Fatalf("Variant() = %s; want %s", e.Variant(), tc.variant)
		}
	}

	if _, err := NewFactory().CreateEngine("horse", domain.GameSettings{}, 2, nil); !errors.Is(err, ErrUnknownVariant) {
		t.Fatalf("unknown variant err = %v", err)
	}
	if _, err := NewFactory().CreateEngine(domain.VariantEliminationRace, domain.GameSettings{}, 1, nil); !errors.Is(err, ErrTooFewPlayers) {
		t.Fatalf("one player err = %v", err)
	}
	if _, err := NewFactory().CreateEngine(domain.VariantProgressionRace, domain.GameSettings{}, 3, []int{0, 0, 1}); err == nil {
		t.Fatalf("expected error for bad turn order")
	}
}

func TestHeadToHeadReachesTarget(t *testing.T) {
	e := mustEngine(t, domain.VariantHeadToHead, domain.GameSettings{TargetScore: 11, MakeItTakeIt: true}, 2, nil)

	if s := e.State(); s.Status != StatusNotStarted {
		t.Fatalf("status = %s; want not_started", s.Status)
	}

	s := apply(t, e, score(3), score(3), score(3), swap, score(3), score(2), swap)
	if s.Status != StatusInProgress || s.Scores[0] != 9 || s.Scores[1] != 5 {
		t.Fatalf("unexpected state %+v", s)
	}

	s = apply(t, e, score(2))
	if !s.Finished() {
		t.Fatalf("expected finished at %v", s.Scores)
	}
	out, ok := e.Outcome()
	if !ok || !reflect.DeepEqual(out, []int{0, 1}) {
		t.Fatalf("outcome = %v,%v; want [0 1]", out, ok)
	}
}

func TestHeadToHeadWinByTwo(t *testing.T) {
	e := mustEngine(t, domain.VariantHeadToHead, domain.GameSettings{TargetScore: 11, WinByTwo: true, MakeItTakeIt: true}, 2, nil)

	apply(t, e, score(3), score(3), score(3), swap)
	apply(t, e, score(3), score(3), score(3), score(1), swap)
	s := apply(t, e, score(2))
	if s.Scores[0] != 11 || s.Scores[1] != 10 {
		t.Fatalf("scores = %v; want [11 10]", s.Scores)
	}
	if s.Finished() {
		t.Fatalf("11-10 must not finish with win by two")
	}

	s = apply(t, e, score(1))
	if !s.Finished() {
		t.Fatalf("12-10 should finish")
	}
	if !reflect.DeepEqual(s.Outcome, []int{0, 1}) {
		t.Fatalf("outcome = %v; want [0 1]", s.Outcome)
	}
}

func TestScoreRacePossession(t *testing.T) {
	e := mustEngine(t, domain.VariantTeamMatch, domain.GameSettings{}, 4, nil)

	s := apply(t, e, score(2))
	if s.Possession != 1 {
		t.Fatalf("possession after score = %d; want 1", s.Possession)
	}
	s = apply(t, e, miss)
	if s.Possession != 1 {
		t.Fatalf("miss without turn loss should keep possession, got %d", s.Possession)
	}
	if s.Target != domain.DefaultTeamMatchTarget {
		t.Fatalf("target = %d; want default %d", s.Target, domain.DefaultTeamMatchTarget)
	}

	e = mustEngine(t, domain.VariantTeamMatch, domain.GameSettings{MissCountsAsTurnLoss: true}, 4, nil)
	s = apply(t, e, miss)
	if s.Possession != 1 {
		t.Fatalf("miss with turn loss should switch possession, got %d", s.Possession)
	}
}

func TestScoreRaceReset(t *testing.T) {
	e := mustEngine(t, domain.VariantHeadToHead, domain.GameSettings{MakeItTakeIt: true}, 2, nil)
	apply(t, e, score(3), score(2))

	s := apply(t, e, Event{Kind: EventResetScores})
	if s.Scores[0] != 0 || s.Scores[1] != 0 {
		t.Fatalf("scores after reset = %v", s.Scores)
	}
	if s.Finished() {
		t.Fatalf("reset must not finish the game")
	}

	e = mustEngine(t, domain.VariantHeadToHead, domain.GameSettings{}, 2, nil)
	s = apply(t, e, Event{Kind: EventResetScores})
	if s.Status != StatusInProgress || s.Events != 1 {
		t.Fatalf("first-event reset: status %s, events %d", s.Status, s.Events)
	}
}

func TestScoreRaceIllegalEvents(t *testing.T) {
	e := mustEngine(t, domain.VariantHeadToHead, domain.GameSettings{}, 2, nil)
	before := e.State()

	for _, ev := range []Event{score(0), score(4), hit, {Kind: "dunk"}} {
		s, err := e.Apply(ev)
		if !errors.Is(err, ErrIllegalEvent) {
			t.Fatalf("%+v: err = %v; want ErrIllegalEvent", ev, err)
		}
		if !reflect.DeepEqual(s, before) {
			t.Fatalf("%+v changed state: %+v", ev, s)
		}
	}
}

func TestEliminationRaceThreePlayers(t *testing.T) {
	e := mustEngine(t, domain.VariantEliminationRace, domain.GameSettings{}, 3, nil)

	// player 0 racks up 7 while 1 and 2 bank nothing
	for i := 0; i < 7; i++ {
		apply(t, e, hit, miss, miss)
	}
	s := apply(t, e, miss)
	if !reflect.DeepEqual(s.Eliminated, []int{0}) {
		t.Fatalf("eliminated = %v; want [0]", s.Eliminated)
	}
	if s.Possession != 1 {
		t.Fatalf("possession = %d; want 1", s.Possession)
	}
	if s.Scores[0] != 7 || s.Unbanked[0] != 0 {
		t.Fatalf("player 0 banked=%d unbanked=%d", s.Scores[0], s.Unbanked[0])
	}

	// possession now skips player 0
	for i := 0; i < 7; i++ {
		s = apply(t, e, hit)
		if s.Possession != 2 {
			t.Fatalf("possession = %d; want 2", s.Possession)
		}
		s = apply(t, e, miss)
	}
	s = apply(t, e, miss)
	if !s.Finished() {
		t.Fatalf("expected finished, state %+v", s)
	}

	out, _ := e.Outcome()
	if !reflect.DeepEqual(out, []int{2, 1, 0}) {
		t.Fatalf("outcome = %v; want [2 1 0]", out)
	}
	seen := map[int]bool{}
	for _, p := range out {
		if seen[p] {
			t.Fatalf("duplicate %d in %v", p, out)
		}
		seen[p] = true
	}
}

func TestEliminationRaceBankingOnlyOnMiss(t *testing.T) {
	e := mustEngine(t, domain.VariantEliminationRace, domain.GameSettings{TargetScore: 2}, 2, nil)

	// 0 hits three times (unbanked 3) but is not out until the miss
	s := apply(t, e, hit, miss, hit, miss, hit, miss)
	if len(s.Eliminated) != 0 || s.Unbanked[0] != 3 {
		t.Fatalf("state %+v", s)
	}
	s = apply(t, e, miss)
	if !s.Finished() || !reflect.DeepEqual(s.Outcome, []int{1, 0}) {
		t.Fatalf("state %+v", s)
	}
}

func TestProgressionRaceShortRoute(t *testing.T) {
	e := mustEngine(t, domain.VariantProgressionRace, domain.GameSettings{}, 3, nil)

	apply(t, e, hit, hit, hit, miss)
	apply(t, e, append(repeat(hit, 5), miss)...)
	s := apply(t, e, append(repeat(hit, 5), miss)...)
	if s.Possession != 0 || s.RouteLength != 8 {
		t.Fatalf("state %+v", s)
	}

	s = apply(t, e, repeat(hit, 4)...)
	if s.Finished() {
		t.Fatalf("finished early at %v", s.Progress)
	}
	s = apply(t, e, hit)
	if !s.Finished() {
		t.Fatalf("expected finish at %v", s.Progress)
	}
	if !reflect.DeepEqual(s.Outcome, []int{0, 1, 2}) {
		t.Fatalf("outcome = %v; want [0 1 2]", s.Outcome)
	}
}

func TestProgressionRaceTiesFollowTurnOrder(t *testing.T) {
	e := mustEngine(t, domain.VariantProgressionRace, domain.GameSettings{LongRoute: true}, 4, []int{3, 1, 0, 2})

	if s := e.State(); s.Possession != 3 || s.RouteLength != 14 {
		t.Fatalf("initial state %+v", s)
	}

	apply(t, e, miss)           // 3: 0
	apply(t, e, hit, hit, miss) // 1: 2
	apply(t, e, miss)           // 0: 0
	s := apply(t, e, repeat(hit, 13)...)
	if s.Finished() {
		t.Fatalf("finished early")
	}
	s = apply(t, e, hit)
	if !s.Finished() {
		t.Fatalf("expected finish")
	}
	if !reflect.DeepEqual(s.Outcome, []int{2, 1, 3, 0}) {
		t.Fatalf("outcome = %v; want [2 1 3 0]", s.Outcome)
	}
}

func TestFinishedGameIgnoresEvents(t *testing.T) {
	engines := []Engine{
		mustEngine(t, domain.VariantHeadToHead, domain.GameSettings{TargetScore: 2}, 2, nil),
		mustEngine(t, domain.VariantEliminationRace, domain.GameSettings{TargetScore: 1}, 2, nil),
		mustEngine(t, domain.VariantProgressionRace, domain.GameSettings{}, 2, nil),
	}
	finishers := [][]Event{
		{score(2)},
		{hit, miss, miss},
		repeat(hit, 8),
	}

	all := []Event{score(2), swap, {Kind: EventResetScores}, hit, miss, {Kind: "dunk"}}

	for i, e := range engines {
		apply(t, e, finishers[i]...)
		if !e.Finished() {
			t.Fatalf("%s: not finished", e.Variant())
		}
		before := e.State()
		outBefore, _ := e.Outcome()

		for _, ev := range all {
			s, err := e.Apply(ev)
			if err != nil {
				t.Fatalf("%s: %s after finish returned %v", e.Variant(), ev.Kind, err)
			}
			if !reflect.DeepEqual(s, before) {
				t.Fatalf("%s: %s changed state", e.Variant(), ev.Kind)
			}
		}

		outAfter, _ := e.Outcome()
		if !reflect.DeepEqual(outBefore, outAfter) || !reflect.DeepEqual(e.State(), before) {
			t.Fatalf("%s: outcome or state changed after finish", e.Variant())
		}
	}
}

func TestSnapshotsAreCopies(t *testing.T) {
	e := mustEngine(t, domain.VariantEliminationRace, domain.GameSettings{}, 3, nil)
	s := apply(t, e, hit)
	s.Unbanked[0] = 99

	if e.State().Unbanked[0] != 1 {
		t.Fatalf("snapshot mutation leaked into engine")
	}
}
