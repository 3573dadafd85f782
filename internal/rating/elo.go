package rating

import (
	"errors"
	"fmt"
	"math"
)

const (
	// MinRating is the floor every computed rating is clamped to.
	MinRating = 300.0
	// Scale is the rating gap for 10:1 odds.
	Scale = 400.0
	// kMultiplier converts the configured base into the 2-player K-factor.
	kMultiplier = 5.0
)

var ErrInvalidInput = errors.New("invalid rating input")

// Side of a two-sided match
type Side int

const (
	SideA Side = 0
	SideB Side = 1
)

// PairwiseExpectation - probability that rating a beats rating b.
func PairwiseExpectation(a, b float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (b-a)/Scale))
}

// ActualScores maps 0-based placements to scores from 1.0 (first) to 0.0 (last).
func ActualScores(ranks []int) []float64 {
	n := len(ranks)
	out := make([]float64, n)
	if n < 2 {
		return out
	}
	for i, r := range ranks {
		out[i] = float64(n-1-r) / float64(n-1)
	}
	return out
}

// UpdateMultiplayer computes new ratings for a ranked N-player result.
// Each player is updated independently against the old ratings.
func UpdateMultiplayer(ratings []float64, ranks []int, kBase float64) ([]float64, error) {
	n := len(ratings)
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least 2 ratings, got %d", ErrInvalidInput, n)
	}
	if len(ranks) != n {
		return nil, fmt.Errorf("%w: %d ratings but %d ranks", ErrInvalidInput, n, len(ranks))
	}
	if err := checkFinite(ratings); err != nil {
		return nil, err
	}
	if err := checkPermutation(ranks); err != nil {
		return nil, err
	}
	if err := checkK(kBase); err != nil {
		return nil, err
	}

	actual := ActualScores(ranks)
	k := kBase * kMultiplier * math.Sqrt(float64(n-1))

	out := make([]float64, n)
	for i := range ratings {
		var sum float64
		for j := range ratings {
			if i == j {
				continue
			}
			sum += PairwiseExpectation(ratings[i], ratings[j])
		}
		expected := sum / float64(n-1)
		out[i] = clamp(ratings[i] + k*(actual[i]-expected))
	}
	return out, nil
}

// UpdateTeamMatch applies a binary team result. Team strength is the mean of
// its members. With splitChange the side delta is shared among its members.
func UpdateTeamMatch(teamA, teamB []float64, winner Side, kBase float64, splitChange bool) ([]float64, []float64, error) {
	if len(teamA) == 0 || len(teamB) == 0 {
		return nil, nil, fmt.Errorf("%w: empty team (%d vs %d)", ErrInvalidInput, len(teamA), len(teamB))
	}
	if winner != SideA && winner != SideB {
		return nil, nil, fmt.Errorf("%w: unknown winner side %d", ErrInvalidInput, winner)
	}
	if err := checkFinite(teamA); err != nil {
		return nil, nil, err
	}
	if err := checkFinite(teamB); err != nil {
		return nil, nil, err
	}
	if err := checkK(kBase); err != nil {
		return nil, nil, err
	}

	meanA, meanB := mean(teamA), mean(teamB)
	expectedA := PairwiseExpectation(meanA, meanB)
	actualA := 0.0
	if winner == SideA {
		actualA = 1.0
	}

	deltaA := kBase * kMultiplier * (actualA - expectedA)
	deltaB := kBase * kMultiplier * ((1 - actualA) - (1 - expectedA))
	if splitChange {
		deltaA /= float64(len(teamA))
		deltaB /= float64(len(teamB))
	}

	return shift(teamA, deltaA), shift(teamB, deltaB), nil
}

func shift(team []float64, delta float64) []float64 {
	out := make([]float64, len(team))
	for i, r := range team {
		out[i] = clamp(r + delta)
	}
	return out
}

func mean(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs))
}

func clamp(r float64) float64 {
	if math.IsNaN(r) || r < MinRating {
		return MinRating
	}
	return r
}

func checkFinite(ratings []float64) error {
	for i, r := range ratings {
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return fmt.Errorf("%w: rating %d is not finite", ErrInvalidInput, i)
		}
	}
	return nil
}

func checkK(kBase float64) error {
	if math.IsNaN(kBase) || math.IsInf(kBase, 0) || kBase <= 0 {
		return fmt.Errorf("%w: k base %v must be a positive finite number", ErrInvalidInput, kBase)
	}
	return nil
}

func checkPermutation(ranks []int) error {
	seen := make([]bool, len(ranks))
	for _, r := range ranks {
		if r < 0 || r >= len(ranks) || seen[r] {
			return fmt.Errorf("%w: ranks %v are not a permutation of 0..%d", ErrInvalidInput, ranks, len(ranks)-1)
		}
		seen[r] = true
	}
	return nil
}
