package gacha

import (
	"math"
	"sort"
)

// SimParams describes one rate simulation run against a banner's
// configured rates and pity rules.
type SimParams struct {
	Rates RateTable
	Rules PityRules
	Pulls int    // number of pulls to simulate
	Seed  uint64 // replicable runs; 0 picks a fixed default
}

// Stats summarizes integer samples.
type Stats struct {
	Mean   float64 `json:"mean"`
	Var    float64 `json:"var"`
	StdDev float64 `json:"stdDev"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
	P99    float64 `json:"p99"`
}

// SimReport is the outcome of a simulation run. LegendaryGap summarizes
// pulls between consecutive legendaries; with hard pity configured its
// maximum can never exceed LegendaryEvery.
type SimReport struct {
	Pulls        int                `json:"pulls"`
	Frequencies  map[Rarity]float64 `json:"frequencies"`
	PitiedShare  float64            `json:"pitiedShare"`
	LegendaryGap Stats              `json:"legendaryGap"`
}

// Simulate runs Pulls selections through the rarity selector with a fresh
// pity state, tracking rarity frequencies and legendary spacing. Purely
// diagnostic: lets catalog authors sanity-check configured rates.
func Simulate(p SimParams) SimReport {
	if p.Pulls <= 0 {
		return SimReport{Frequencies: map[Rarity]float64{}}
	}
	seed := p.Seed
	if seed == 0 {
		seed = 1
	}
	rng := NewSeededRNG(seed)

	counts := make(map[Rarity]int)
	pitied := 0
	var gaps []int
	sinceLegendary := 0
	var state PityState

	for i := 0; i < p.Pulls; i++ {
		r, wasPity := SelectRarity(p.Rates, p.Rules, state, rng)
		state = state.Advance(r, state.UpdatedAt)
		counts[r]++
		if wasPity {
			pitied++
		}
		sinceLegendary++
		if r == RarityLegendary {
			gaps = append(gaps, sinceLegendary)
			sinceLegendary = 0
		}
	}

	freq := make(map[Rarity]float64, len(counts))
	for r, n := range counts {
		freq[r] = float64(n) / float64(p.Pulls)
	}
	return SimReport{
		Pulls:        p.Pulls,
		Frequencies:  freq,
		PitiedShare:  float64(pitied) / float64(p.Pulls),
		LegendaryGap: calcStats(gaps),
	}
}

// calcStats computes mean/variance/percentiles for integer samples.
func calcStats(xs []int) Stats {
	n := len(xs)
	if n == 0 {
		return Stats{}
	}
	var sum float64
	for _, v := range xs {
		sum += float64(v)
	}
	mean := sum / float64(n)

	// variance (population)
	var acc float64
	for _, v := range xs {
		d := float64(v) - mean
		acc += d * d
	}
	variance := acc / float64(n)

	cp := append([]int(nil), xs...)
	sort.Ints(cp)
	percentile := func(p float64) float64 {
		if n == 1 || p <= 0 {
			return float64(cp[0])
		}
		if p >= 1 {
			return float64(cp[n-1])
		}
		pos := p * float64(n-1)
		i := int(math.Floor(pos))
		f := pos - float64(i)
		if i+1 >= n {
			return float64(cp[i])
		}
		return float64(cp[i])*(1-f) + float64(cp[i+1])*f
	}

	return Stats{
		Mean:   mean,
		Var:    variance,
		StdDev: math.Sqrt(variance),
		P50:    percentile(0.50),
		P90:    percentile(0.90),
		P99:    percentile(0.99),
	}
}
