package shop

import "testing"

var testBundles = []Bundle{
	{ID: "small", Name: "Small Pack", Coins: 300, PriceDiamonds: 30},
	{ID: "large", Name: "Large Pack", Coins: 1200, BonusCoins: 100, PriceDiamonds: 100},
	{ID: "mega", Name: "Mega Pack", Coins: 3000, BonusCoins: 500, FirstTimeX2: true, PriceDiamonds: 220},
}

func TestCheapestPlanPrefersBetterRate(t *testing.T) {
	// 1300 coins: one large pack (100 diamonds) beats five small (150)
	plan := CheapestPlan(testBundles, 1300, false)
	if plan.TotalDiamonds != 100 {
		t.Fatalf("diamonds=%d, want 100: %+v", plan.TotalDiamonds, plan)
	}
	if len(plan.Purchases) != 1 || plan.Purchases[0].BundleID != "large" {
		t.Fatalf("purchases: %+v", plan.Purchases)
	}
	if plan.TotalCoins < 1300 {
		t.Fatalf("plan misses the target: %+v", plan)
	}
}

func TestCheapestPlanUsesFirstTimeDouble(t *testing.T) {
	// with x2 the mega pack yields 6500 coins for 220 diamonds
	plan := CheapestPlan(testBundles, 6500, true)
	if plan.TotalDiamonds != 220 {
		t.Fatalf("diamonds=%d, want 220: %+v", plan.TotalDiamonds, plan)
	}

	// without first-time eligibility the same target needs more
	noX2 := CheapestPlan(testBundles, 6500, false)
	if noX2.TotalDiamonds <= 220 {
		t.Fatalf("x2 must not apply: %+v", noX2)
	}
}

func TestCheapestPlanAggregatesQuantities(t *testing.T) {
	plan := CheapestPlan(testBundles, 600, false)
	if plan.TotalDiamonds != 60 {
		t.Fatalf("diamonds=%d, want 2 small packs: %+v", plan.TotalDiamonds, plan)
	}
	if len(plan.Purchases) != 1 || plan.Purchases[0].Qty != 2 {
		t.Fatalf("purchases: %+v", plan.Purchases)
	}
}

func TestCheapestPlanEdgeCases(t *testing.T) {
	if p := CheapestPlan(testBundles, 0, false); len(p.Purchases) != 0 {
		t.Fatalf("zero target: %+v", p)
	}
	if p := CheapestPlan(nil, 100, false); len(p.Purchases) != 0 {
		t.Fatalf("no bundles: %+v", p)
	}
	if p := CheapestPlan(testBundles, planLimit+1, false); len(p.Purchases) != 0 {
		t.Fatalf("over limit: %+v", p)
	}
}
