package catalog

import (
	"fmt"
	"math"
	"strings"
)

// Validate checks semantic constraints of a normalized banner. Used by
// the config watcher so a bad catalog edit is reported before a player
// hits it.
func Validate(b Banner) error {
	var errs []string

	known := 0
	for r, p := range b.Rates {
		if !r.Known() {
			errs = append(errs, fmt.Sprintf("rates.%s is not a known rarity", r))
			continue
		}
		known++
		if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
			errs = append(errs, fmt.Sprintf("rates.%s must be a finite value >= 0", r))
		}
	}
	if known == 0 {
		errs = append(errs, "rates must configure at least one rarity")
	}

	if b.Pity.EpicEvery <= 0 {
		errs = append(errs, "pity.epic_every must be >= 1")
	}
	if b.Pity.LegendaryEvery <= 0 {
		errs = append(errs, "pity.legendary_every must be >= 1")
	}

	for r, amount := range b.Refunds {
		if !r.Known() {
			errs = append(errs, fmt.Sprintf("refunds.%s is not a known rarity", r))
		}
		if amount < 0 {
			errs = append(errs, fmt.Sprintf("refunds.%s must be >= 0", r))
		}
	}

	if b.CoinsPerDraw <= 0 {
		errs = append(errs, "costs.coins_per_draw must be >= 1")
	}
	if b.TicketsPerDraw <= 0 {
		errs = append(errs, "costs.tickets_per_draw must be >= 1")
	}

	if b.StartsAt != nil && b.EndsAt != nil && b.EndsAt.Before(*b.StartsAt) {
		errs = append(errs, "ends_at must not precede starts_at")
	}

	seen := make(map[string]bool, len(b.Entries))
	enabled := 0
	for i, e := range b.Entries {
		if e.ItemID == "" {
			errs = append(errs, fmt.Sprintf("entries[%d].item is required", i))
			continue
		}
		if seen[e.ItemID] {
			errs = append(errs, fmt.Sprintf("entries[%d].item %q is duplicated", i, e.ItemID))
		}
		seen[e.ItemID] = true
		if !e.Rarity.Known() {
			errs = append(errs, fmt.Sprintf("entries[%d].rarity %q is not a known rarity", i, e.Rarity))
		}
		if e.Enabled {
			enabled++
		}
	}
	if b.Active && enabled == 0 {
		errs = append(errs, "an active banner needs at least one enabled entry")
	}

	if len(errs) > 0 {
		return fmt.Errorf("banner %s validation failed: %s", b.ID, strings.Join(errs, "; "))
	}
	return nil
}
