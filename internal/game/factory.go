package game

import (
	"fmt"

	"hoops_backend/internal/domain"
)

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

// CreateEngine picks the rule set for a variant. players is the roster size;
// turnOrder only matters for progression races and may be nil.
func (f *Factory) CreateEngine(variant domain.Variant, settings domain.GameSettings, players int, turnOrder []int) (Engine, error) {
	if players < 2 {
		return nil, ErrTooFewPlayers
	}

	switch variant {
	case domain.VariantHeadToHead, domain.VariantTeamMatch:
		return NewScoreRace(variant, settings), nil
	case domain.VariantEliminationRace:
		return NewEliminationRace(settings, players)
	case domain.VariantProgressionRace:
		return NewProgressionRace(settings, players, turnOrder)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownVariant, variant)
	}
}
