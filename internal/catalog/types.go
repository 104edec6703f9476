// Package catalog loads banner configuration from YAML files. Banners are
// read fresh per request: the catalog can change between draws and the
// engine must see current rates and entries.
package catalog

import (
	"time"

	"github.com/xtding233/rewards-engine/internal/gacha"
)

// RawBanner mirrors the YAML schema before normalization. Pointer fields
// distinguish "absent" from zero so defaults can merge underneath.
type RawBanner struct {
	Active   *bool            `yaml:"active"`
	StartsAt *time.Time       `yaml:"starts_at,omitempty"`
	EndsAt   *time.Time       `yaml:"ends_at,omitempty"`
	Rates    map[string]float64 `yaml:"rates,omitempty"`
	Pity     *RawPity         `yaml:"pity,omitempty"`
	Refunds  map[string]int64 `yaml:"refunds,omitempty"`
	Costs    *RawCosts        `yaml:"costs,omitempty"`
	Entries  []RawEntry       `yaml:"entries,omitempty"`
	Notes    string           `yaml:"notes,omitempty"`
}

type RawPity struct {
	EpicEvery      *int `yaml:"epic_every"`
	LegendaryEvery *int `yaml:"legendary_every"`
}

type RawCosts struct {
	CoinsPerDraw   *int64 `yaml:"coins_per_draw"`
	TicketsPerDraw *int64 `yaml:"tickets_per_draw"`
}

type RawEntry struct {
	Item    string `yaml:"item"`
	Rarity  string `yaml:"rarity"`
	Enabled *bool  `yaml:"enabled,omitempty"` // absent means enabled
	Weight  *int   `yaml:"weight,omitempty"`  // absent/invalid means 1
}

// Entry is one normalized catalog entry.
type Entry struct {
	ItemID  string
	Rarity  gacha.Rarity
	Enabled bool
	Weight  int
}

// Banner is the normalized banner configuration. Immutable during a draw.
type Banner struct {
	ID             string
	Active         bool
	StartsAt       *time.Time
	EndsAt         *time.Time
	Rates          gacha.RateTable
	Pity           gacha.PityRules
	Refunds        map[gacha.Rarity]int64
	CoinsPerDraw   int64
	TicketsPerDraw int64
	Entries        []Entry
}

// WithinWindow reports whether now falls inside the banner's optional
// start/end instants.
func (b Banner) WithinWindow(now time.Time) bool {
	if b.StartsAt != nil && now.Before(*b.StartsAt) {
		return false
	}
	if b.EndsAt != nil && now.After(*b.EndsAt) {
		return false
	}
	return true
}

// EnabledEntries returns the entries that participate in compilation.
func (b Banner) EnabledEntries() []Entry {
	var out []Entry
	for _, e := range b.Entries {
		if e.Enabled {
			out = append(out, e)
		}
	}
	return out
}

// CompilePool builds the per-rarity weighted pools from the currently
// enabled entries. Derived and ephemeral; never persisted.
func (b Banner) CompilePool() gacha.Pool {
	entries := b.EnabledEntries()
	items := make([]gacha.PoolItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, gacha.PoolItem{ItemID: e.ItemID, Rarity: e.Rarity, Weight: e.Weight})
	}
	return gacha.BuildPool(items)
}

// RefundFor returns the duplicate refund for a rarity, 0 if unconfigured.
func (b Banner) RefundFor(r gacha.Rarity) int64 { return b.Refunds[r] }
