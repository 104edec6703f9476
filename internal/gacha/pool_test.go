package gacha

import (
	"errors"
	"math"
	"testing"
)

func TestPickWeightProportional(t *testing.T) {
	pool := BuildPool([]PoolItem{
		{ItemID: "a", Rarity: RarityCommon, Weight: 1},
		{ItemID: "b", Rarity: RarityCommon, Weight: 3},
	})
	rng := NewSeededRNG(5)
	const n = 100000
	hits := map[string]int{}
	for i := 0; i < n; i++ {
		id, granted, err := pool.Pick(RarityCommon, rng)
		if err != nil {
			t.Fatal(err)
		}
		if granted != RarityCommon {
			t.Fatalf("granted=%s, want common", granted)
		}
		hits[id]++
	}
	freq := float64(hits["b"]) / float64(n)
	if math.Abs(freq-0.75) > 0.01 {
		t.Fatalf("b freq=%f not close to 0.75", freq)
	}
}

func TestPickFallsBackToLowerRarity(t *testing.T) {
	pool := BuildPool([]PoolItem{
		{ItemID: "r1", Rarity: RarityRare, Weight: 1},
	})
	id, granted, err := pool.Pick(RarityLegendary, NewSeededRNG(1))
	if err != nil {
		t.Fatal(err)
	}
	if id != "r1" {
		t.Fatalf("got %q, want fallback to r1", id)
	}
	if granted != RarityRare {
		t.Fatalf("granted=%s, want the resolved tier rare", granted)
	}
}

func TestPickLastResortScansFromLegendary(t *testing.T) {
	// nothing at or below the common target: the scan restarts from the top
	pool := BuildPool([]PoolItem{
		{ItemID: "e1", Rarity: RarityEpic, Weight: 1},
	})
	id, granted, err := pool.Pick(RarityCommon, NewSeededRNG(1))
	if err != nil {
		t.Fatal(err)
	}
	if id != "e1" || granted != RarityEpic {
		t.Fatalf("got (%q, %s), want e1 at epic via last-resort scan", id, granted)
	}
}

func TestPickEmptyPool(t *testing.T) {
	pool := BuildPool(nil)
	if !pool.Empty() {
		t.Fatalf("pool should be empty")
	}
	if _, _, err := pool.Pick(RarityCommon, nil); !errors.Is(err, ErrPoolExhausted) {
		t.Fatalf("got %v, want ErrPoolExhausted", err)
	}
}

func TestBuildPoolClampsWeights(t *testing.T) {
	pool := BuildPool([]PoolItem{
		{ItemID: "a", Rarity: RarityCommon, Weight: 0},
		{ItemID: "b", Rarity: RarityCommon, Weight: -5},
		{ItemID: "skip", Rarity: Rarity("mythic"), Weight: 1},
	})
	if pool.TierSize(RarityCommon) != 2 {
		t.Fatalf("tier size=%d, want 2", pool.TierSize(RarityCommon))
	}
	// both entries carry weight 1; either can be sampled
	id, _, err := pool.Pick(RarityCommon, &seqRNG{vals: []float64{0.9}})
	if err != nil {
		t.Fatal(err)
	}
	if id != "b" {
		t.Fatalf("got %q, want b from upper half of [0,2)", id)
	}
}
