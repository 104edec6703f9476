package gacha

import "math"

// Rarity labels form a fixed total order: common < uncommon < rare < epic < legendary.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// rarityDescending walks the order from highest to lowest.
var rarityDescending = []Rarity{RarityLegendary, RarityEpic, RarityRare, RarityUncommon, RarityCommon}

var rarityRank = map[Rarity]int{
	RarityCommon:    0,
	RarityUncommon:  1,
	RarityRare:      2,
	RarityEpic:      3,
	RarityLegendary: 4,
}

// Rank returns the position in the rarity order, -1 for unknown labels.
func (r Rarity) Rank() int {
	if rank, ok := rarityRank[r]; ok {
		return rank
	}
	return -1
}

// Known reports whether r is one of the five rarity labels.
func (r Rarity) Known() bool { return r.Rank() >= 0 }

// Rarities returns the order from highest to lowest.
func Rarities() []Rarity {
	out := make([]Rarity, len(rarityDescending))
	copy(out, rarityDescending)
	return out
}

// RateTable maps rarity to its configured probability weight. The table is
// used consistently but is not required to sum to 1.
type RateTable map[Rarity]float64

// PityRules is the per-banner pity threshold pair, in pull counts.
// The Nth pull since the last epic/legendary is the guaranteed one.
type PityRules struct {
	EpicEvery      int `json:"epicEvery" yaml:"epic_every"`
	LegendaryEvery int `json:"legendaryEvery" yaml:"legendary_every"`
}

// rate returns the configured rate for r, treating NaN/Inf/negative as 0.
func (t RateTable) rate(r Rarity) float64 {
	p := t[r]
	if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
		return 0
	}
	return p
}

// SelectRarity decides the rarity of one pull, in priority order:
//  1. hard legendary pity: SinceLegendary has reached LegendaryEvery-1
//  2. soft epic pity: SinceEpic has reached EpicEvery-1; one roll split
//     between epic and legendary proportionally to their configured rates
//  3. normal roll: walk rarities highest to lowest accumulating rates,
//     falling back to common if the table does not cover the roll
//
// The second return value reports whether a pity rule fired.
func SelectRarity(rates RateTable, rules PityRules, state PityState, rng RandomSource) (Rarity, bool) {
	if rng == nil {
		rng = DefaultRNG()
	}

	if rules.LegendaryEvery > 0 && state.SinceLegendary >= rules.LegendaryEvery-1 {
		return RarityLegendary, true
	}

	if rules.EpicEvery > 0 && state.SinceEpic >= rules.EpicEvery-1 {
		epicRate := rates.rate(RarityEpic)
		legendaryRate := rates.rate(RarityLegendary)
		// both rates zero or invalid: the pity pull defaults to epic
		if epicRate+legendaryRate <= 0 {
			return RarityEpic, true
		}
		if rng.Float64() < legendaryRate/(epicRate+legendaryRate) {
			return RarityLegendary, true
		}
		return RarityEpic, true
	}

	roll := rng.Float64()
	cum := 0.0
	for _, r := range rarityDescending {
		cum += rates.rate(r)
		if cum >= roll {
			return r, false
		}
	}
	// rates sum below the roll (misconfigured table)
	return RarityCommon, false
}
