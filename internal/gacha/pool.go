package gacha

import "errors"

// ErrPoolExhausted means no rarity tier anywhere in the pool has a usable
// item. That is a catalog-authoring bug; a draw must not invent a result.
var ErrPoolExhausted = errors.New("item pool exhausted")

// PoolItem is one enabled catalog entry feeding pool compilation.
type PoolItem struct {
	ItemID string
	Rarity Rarity
	Weight int // < 1 is treated as 1
}

// poolEntry pairs an item with its cumulative weight inside a tier.
type poolEntry struct {
	itemID string
	cum    int
}

type poolTier struct {
	entries []poolEntry
	total   int
}

// Pool holds per-rarity cumulative-weight item lists. It is compiled fresh
// per draw request from the currently enabled entries and never persisted.
type Pool struct {
	tiers map[Rarity]poolTier
}

// BuildPool compiles items into per-rarity cumulative-weight tiers.
// Entries with unknown rarity labels are skipped. Order within a tier
// follows input order; ties in sampling break by that order.
func BuildPool(items []PoolItem) Pool {
	tiers := make(map[Rarity]poolTier)
	for _, it := range items {
		if !it.Rarity.Known() || it.ItemID == "" {
			continue
		}
		w := it.Weight
		if w < 1 {
			w = 1
		}
		tier := tiers[it.Rarity]
		tier.total += w
		tier.entries = append(tier.entries, poolEntry{itemID: it.ItemID, cum: tier.total})
		tiers[it.Rarity] = tier
	}
	return Pool{tiers: tiers}
}

// Empty reports whether no tier has a usable item.
func (p Pool) Empty() bool {
	for _, tier := range p.tiers {
		if tier.total > 0 {
			return false
		}
	}
	return true
}

// TierSize returns the number of entries compiled for a rarity.
func (p Pool) TierSize(r Rarity) int { return len(p.tiers[r].entries) }

// Pick selects one item of the requested rarity by cumulative-weight
// sampling. Tiers that are absent or have zero total weight are skipped,
// walking downward through the rarity order. If nothing at or below the
// target is usable, any non-empty tier from legendary downward serves as a
// last resort. The returned rarity is the tier the item actually came
// from, which may differ from target after a fallback. An entirely empty
// pool returns ErrPoolExhausted.
func (p Pool) Pick(target Rarity, rng RandomSource) (string, Rarity, error) {
	if rng == nil {
		rng = DefaultRNG()
	}

	start := target.Rank()
	if start < 0 {
		start = len(rarityDescending) - 1 // unknown target: start at legendary
	}
	for _, r := range rarityDescending {
		if r.Rank() > start {
			continue
		}
		if tier, ok := p.tiers[r]; ok && tier.total > 0 {
			return tier.sample(rng), r, nil
		}
	}

	// nothing at or below target: any non-empty tier, highest first
	for _, r := range rarityDescending {
		if tier, ok := p.tiers[r]; ok && len(tier.entries) > 0 {
			return tier.entries[0].itemID, r, nil
		}
	}

	return "", "", ErrPoolExhausted
}

// sample draws a uniform value in [0, total) and returns the first entry
// whose cumulative weight covers it. Linear scan in weight order.
func (t poolTier) sample(rng RandomSource) string {
	value := rng.Float64() * float64(t.total)
	for _, e := range t.entries {
		if float64(e.cum) >= value {
			return e.itemID
		}
	}
	// unreachable with value < total; guard against rounding
	return t.entries[len(t.entries)-1].itemID
}
