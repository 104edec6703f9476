package shop

// Plan is the cheapest bundle combination reaching a coins target.
type Plan struct {
	Purchases     []BundlePurchase `json:"purchases"`
	TotalDiamonds int64            `json:"totalDiamonds"`
	TotalCoins    int64            `json:"totalCoins"`
}

// BundlePurchase is one line item in a plan.
type BundlePurchase struct {
	BundleID  string `json:"bundleId"`
	Name      string `json:"name"`
	Qty       int    `json:"qty"`
	UnitPrice int64  `json:"unitPrice"` // diamonds per unit
	UnitCoins int64  `json:"unitCoins"` // coins per unit, x2/bonus applied
}

// planLimit bounds the DP table so a pathological coins target cannot
// allocate unbounded memory.
const planLimit = 1_000_000

// CheapestPlan finds the minimum-diamond combination of bundles granting
// at least targetCoins. Each x2-eligible bundle contributes a doubled
// variant; at most one doubled purchase may appear in a plan, other
// quantities are unbounded. An empty plan means the target is
// unreachable or trivial.
func CheapestPlan(bundles []Bundle, targetCoins int64, firstTime bool) Plan {
	if targetCoins <= 0 || targetCoins > planLimit || len(bundles) == 0 {
		return Plan{}
	}

	type variant struct {
		bundle Bundle
		coins  int64
		once   bool
	}
	var variants []variant
	maxCoins := int64(0)
	for _, b := range bundles {
		if b.Coins <= 0 || b.PriceDiamonds <= 0 {
			continue
		}
		base := b.Coins + b.BonusCoins
		if firstTime && b.FirstTimeX2 {
			variants = append(variants, variant{bundle: b, coins: b.Coins*2 + b.BonusCoins, once: true})
		}
		variants = append(variants, variant{bundle: b, coins: base})
		if base > maxCoins {
			maxCoins = base
		}
	}
	if maxCoins == 0 {
		return Plan{}
	}

	// dp over coin totals; totals past the target overshoot into the
	// last cell so a large bundle can still be the cheapest answer
	limit := targetCoins + maxCoins
	const inf = int64(^uint64(0) >> 1)
	type cell struct {
		cost int64
		pick int // variant index, -1 for unset
		prev int64
		used bool // an x2 variant appears on the path
	}
	dp := make([]cell, limit+1)
	for t := range dp {
		dp[t] = cell{cost: inf, pick: -1, prev: -1}
	}
	dp[0] = cell{pick: -1, prev: -1}

	for t := int64(0); t <= limit; t++ {
		if dp[t].cost == inf {
			continue
		}
		for i, v := range variants {
			if v.once && dp[t].used {
				continue
			}
			nt := t + v.coins
			if nt > limit {
				nt = limit
			}
			cost := dp[t].cost + v.bundle.PriceDiamonds
			if cost < dp[nt].cost {
				dp[nt] = cell{cost: cost, pick: i, prev: t, used: dp[t].used || v.once}
			}
		}
	}

	bestT, bestCost := int64(-1), inf
	for t := targetCoins; t <= limit; t++ {
		if dp[t].cost < bestCost {
			bestT, bestCost = t, dp[t].cost
		}
	}
	if bestT < 0 {
		return Plan{}
	}

	// walk back and aggregate per variant
	type key struct {
		id string
		x2 bool
	}
	counts := make(map[key]*BundlePurchase)
	var order []key
	totalCoins := int64(0)
	for t := bestT; t > 0 && dp[t].pick >= 0; t = dp[t].prev {
		v := variants[dp[t].pick]
		k := key{id: v.bundle.ID, x2: v.once}
		p, ok := counts[k]
		if !ok {
			name := v.bundle.Name
			if v.once {
				name += " (x2)"
			}
			p = &BundlePurchase{
				BundleID:  v.bundle.ID,
				Name:      name,
				UnitPrice: v.bundle.PriceDiamonds,
				UnitCoins: v.coins,
			}
			counts[k] = p
			order = append(order, k)
		}
		p.Qty++
		totalCoins += v.coins
	}

	plan := Plan{TotalDiamonds: bestCost, TotalCoins: totalCoins}
	for _, k := range order {
		plan.Purchases = append(plan.Purchases, *counts[k])
	}
	return plan
}
