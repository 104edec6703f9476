package gacha

import (
	"math"
	"testing"
)

// seqRNG replays a fixed sequence, repeating the last value.
type seqRNG struct {
	vals []float64
	i    int
}

func (s *seqRNG) Float64() float64 {
	if len(s.vals) == 0 {
		return 0
	}
	v := s.vals[s.i]
	if s.i < len(s.vals)-1 {
		s.i++
	}
	return v
}

var testRates = RateTable{
	RarityCommon:    0.6,
	RarityUncommon:  0.25,
	RarityRare:      0.1,
	RarityEpic:      0.04,
	RarityLegendary: 0.01,
}

var testRules = PityRules{EpicEvery: 20, LegendaryEvery: 40}

func TestSelectRarityHardPity(t *testing.T) {
	// at the threshold the pull is legendary no matter what the RNG says
	state := PityState{SinceLegendary: testRules.LegendaryEvery - 1}
	for _, roll := range []float64{0, 0.5, 0.999999} {
		r, pitied := SelectRarity(testRates, testRules, state, &seqRNG{vals: []float64{roll}})
		if r != RarityLegendary || !pitied {
			t.Fatalf("roll=%v: got (%s, %v), want guaranteed legendary", roll, r, pitied)
		}
	}
	// past the threshold too
	state.SinceLegendary = testRules.LegendaryEvery + 5
	r, pitied := SelectRarity(testRates, testRules, state, &seqRNG{vals: []float64{0.9}})
	if r != RarityLegendary || !pitied {
		t.Fatalf("got (%s, %v), want guaranteed legendary", r, pitied)
	}
}

func TestSelectRaritySoftPityOnlyEpicOrLegendary(t *testing.T) {
	state := PityState{SinceEpic: testRules.EpicEvery - 1}
	rng := NewSeededRNG(7)
	for i := 0; i < 10000; i++ {
		r, pitied := SelectRarity(testRates, testRules, state, rng)
		if !pitied {
			t.Fatalf("soft pity pull must be flagged pitied")
		}
		if r != RarityEpic && r != RarityLegendary {
			t.Fatalf("soft pity produced %s", r)
		}
	}
}

func TestSelectRaritySoftPitySplit(t *testing.T) {
	// legendary share should approximate legendary/(epic+legendary) = 0.2
	state := PityState{SinceEpic: testRules.EpicEvery - 1}
	rng := NewSeededRNG(42)
	const n = 100000
	legendary := 0
	for i := 0; i < n; i++ {
		r, _ := SelectRarity(testRates, testRules, state, rng)
		if r == RarityLegendary {
			legendary++
		}
	}
	freq := float64(legendary) / float64(n)
	if math.Abs(freq-0.2) > 0.01 {
		t.Fatalf("legendary share=%f not close to 0.2", freq)
	}
}

func TestSelectRaritySoftPityZeroRatesDefaultsToEpic(t *testing.T) {
	rates := RateTable{RarityCommon: 1}
	state := PityState{SinceEpic: testRules.EpicEvery - 1}
	r, pitied := SelectRarity(rates, testRules, state, &seqRNG{vals: []float64{0.01}})
	if r != RarityEpic || !pitied {
		t.Fatalf("got (%s, %v), want epic with pitied=true", r, pitied)
	}
}

func TestSelectRarityNormalRollWalksHighestFirst(t *testing.T) {
	// cumulative from legendary down: 0.01, 0.05, 0.15, 0.40, 1.00
	cases := []struct {
		roll float64
		want Rarity
	}{
		{0.005, RarityLegendary},
		{0.03, RarityEpic},
		{0.10, RarityRare},
		{0.30, RarityUncommon},
		{0.90, RarityCommon},
	}
	for _, c := range cases {
		r, pitied := SelectRarity(testRates, testRules, PityState{}, &seqRNG{vals: []float64{c.roll}})
		if r != c.want || pitied {
			t.Fatalf("roll=%v: got (%s, %v), want (%s, false)", c.roll, r, pitied, c.want)
		}
	}
}

func TestSelectRarityMisconfiguredTableFallsBackToCommon(t *testing.T) {
	rates := RateTable{RarityLegendary: 0.01} // sums to 0.01
	r, pitied := SelectRarity(rates, testRules, PityState{}, &seqRNG{vals: []float64{0.5}})
	if r != RarityCommon || pitied {
		t.Fatalf("got (%s, %v), want (common, false)", r, pitied)
	}
}

func TestSelectRarityStatApprox(t *testing.T) {
	// without pity pressure the normal roll should track configured rates
	rng := NewSeededRNG(99)
	const n = 200000
	counts := map[Rarity]int{}
	for i := 0; i < n; i++ {
		r, _ := SelectRarity(testRates, PityRules{}, PityState{}, rng)
		counts[r]++
	}
	for rarity, want := range testRates {
		freq := float64(counts[rarity]) / float64(n)
		if math.Abs(freq-want) > 0.01 {
			t.Fatalf("%s freq=%f not close to %f", rarity, freq, want)
		}
	}
}
