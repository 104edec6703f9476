package gacha

import (
	"testing"
	"time"
)

func TestAdvanceLegendaryResetsBoth(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	state := PityState{SinceEpic: 7, SinceLegendary: 33, LifetimePulls: 120}
	next := state.Advance(RarityLegendary, now)
	if next.SinceEpic != 0 || next.SinceLegendary != 0 {
		t.Fatalf("legendary must reset both counters, got %+v", next)
	}
	if next.LifetimePulls != 121 {
		t.Fatalf("lifetime pulls=%d, want 121", next.LifetimePulls)
	}
	if !next.UpdatedAt.Equal(now) {
		t.Fatalf("updatedAt not stamped")
	}
}

func TestAdvanceEpic(t *testing.T) {
	state := PityState{SinceEpic: 19, SinceLegendary: 12, LifetimePulls: 50}
	next := state.Advance(RarityEpic, time.Now())
	if next.SinceEpic != 0 {
		t.Fatalf("epic must reset sinceEpic, got %d", next.SinceEpic)
	}
	if next.SinceLegendary != 13 {
		t.Fatalf("epic must increment sinceLegendary by one, got %d", next.SinceLegendary)
	}
}

func TestAdvanceLowRaritiesIncrementBoth(t *testing.T) {
	for _, r := range []Rarity{RarityCommon, RarityUncommon, RarityRare} {
		state := PityState{SinceEpic: 3, SinceLegendary: 5}
		next := state.Advance(r, time.Now())
		if next.SinceEpic != 4 || next.SinceLegendary != 6 {
			t.Fatalf("%s: got %+v, want both counters +1", r, next)
		}
	}
}
