package repository

import (
	"testing"

	"hoops_backend/internal/domain"
)

func TestDecodeGameJSON(t *testing.T) {
	g := &domain.Game{ID: "g1", Variant: domain.VariantTeamMatch}
	if err := decodeGameJSON(g, []byte(`[[0,2],[1,3]]`), []byte(`{"target_score":9}`)); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(g.Teams[0]) != 2 || g.Teams[1][1] != 3 || g.Settings.TargetScore != 9 {
		t.Fatalf("game = %+v", g)
	}

	g = &domain.Game{ID: "g2", Variant: domain.VariantTeamMatch}
	if err := decodeGameJSON(g, []byte(`{"broken"`), nil); err == nil {
		t.Fatalf("corrupt teams accepted")
	}

	g = &domain.Game{ID: "g3", Variant: domain.VariantHeadToHead}
	if err := decodeGameJSON(g, nil, []byte(`"nope"`)); err != nil {
		t.Fatalf("corrupt settings: %v", err)
	}
	if g.Settings.TargetScore != domain.DefaultHeadToHeadTarget {
		t.Fatalf("settings = %+v; want defaults", g.Settings)
	}
}
