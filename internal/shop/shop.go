// Package shop loads the direct-purchase price catalog and the
// coins-to-tickets exchange rate. Read-only from the engine's view and,
// like banners, read fresh per request.
package shop

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/xtding233/rewards-engine/internal/economy"
)

// DefaultExchangeRate is the coins cost of one ticket when the shop file
// does not configure one.
const DefaultExchangeRate int64 = 250

type rawShop struct {
	ExchangeRate *int64      `yaml:"exchange_rate"`
	Items        []rawItem   `yaml:"items"`
	Bundles      []rawBundle `yaml:"bundles"`
}

type rawBundle struct {
	Bundle        string `yaml:"bundle"`
	Name          string `yaml:"name"`
	Coins         int64  `yaml:"coins"`
	BonusCoins    int64  `yaml:"bonus_coins,omitempty"`
	FirstTimeX2   bool   `yaml:"first_time_x2,omitempty"`
	PriceDiamonds int64  `yaml:"price_diamonds"`
}

type rawItem struct {
	Item          string           `yaml:"item"`
	Deprecated    bool             `yaml:"deprecated,omitempty"`
	AvailableFrom *time.Time       `yaml:"available_from,omitempty"`
	AvailableTo   *time.Time       `yaml:"available_to,omitempty"`
	Costs         map[string]int64 `yaml:"costs"`
}

// Item is one purchasable SKU.
type Item struct {
	ID            string
	Deprecated    bool
	AvailableFrom *time.Time
	AvailableTo   *time.Time
	costs         map[economy.Currency]int64
}

// AvailableAt reports whether the item can be sold at now.
func (i Item) AvailableAt(now time.Time) bool {
	if i.AvailableFrom != nil && now.Before(*i.AvailableFrom) {
		return false
	}
	if i.AvailableTo != nil && now.After(*i.AvailableTo) {
		return false
	}
	return true
}

// Cost returns the configured price in the given currency. Items without
// a positive price in a currency cannot be bought with it.
func (i Item) Cost(c economy.Currency) (int64, bool) {
	cost, ok := i.costs[c]
	if !ok || cost <= 0 {
		return 0, false
	}
	return cost, true
}

// Bundle is a coin pack sold for diamonds. A first-time purchase of an
// x2 bundle doubles Coins but not BonusCoins.
type Bundle struct {
	ID            string
	Name          string
	Coins         int64
	BonusCoins    int64
	FirstTimeX2   bool
	PriceDiamonds int64
}

// Catalog is the loaded shop configuration.
type Catalog struct {
	ExchangeRate int64
	Bundles      []Bundle
	items        map[string]Item
}

// Item looks up a SKU by item id.
func (c Catalog) Item(id string) (Item, bool) {
	it, ok := c.items[id]
	return it, ok
}

// Loader reads the shop file fresh on every call.
type Loader struct {
	Path string
}

// Load parses the shop YAML. A missing file yields an empty catalog with
// the default exchange rate, so a deployment without a shop still
// supports ticket exchange.
func (l *Loader) Load() (Catalog, error) {
	cat := Catalog{ExchangeRate: DefaultExchangeRate, items: make(map[string]Item)}

	b, err := os.ReadFile(l.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cat, nil
		}
		return Catalog{}, fmt.Errorf("read shop: %w", err)
	}
	var raw rawShop
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return Catalog{}, fmt.Errorf("parse shop: %w", err)
	}

	if raw.ExchangeRate != nil && *raw.ExchangeRate > 0 {
		cat.ExchangeRate = *raw.ExchangeRate
	}
	for _, r := range raw.Items {
		if r.Item == "" {
			continue
		}
		item := Item{
			ID:            r.Item,
			Deprecated:    r.Deprecated,
			AvailableFrom: r.AvailableFrom,
			AvailableTo:   r.AvailableTo,
			costs:         make(map[economy.Currency]int64, len(r.Costs)),
		}
		for label, cost := range r.Costs {
			if cur, ok := economy.ParseCurrency(label); ok {
				item.costs[cur] = cost
			}
		}
		cat.items[r.Item] = item
	}
	for _, r := range raw.Bundles {
		if r.Bundle == "" || r.Coins <= 0 || r.PriceDiamonds <= 0 {
			continue
		}
		name := r.Name
		if name == "" {
			name = r.Bundle
		}
		cat.Bundles = append(cat.Bundles, Bundle{
			ID:            r.Bundle,
			Name:          name,
			Coins:         r.Coins,
			BonusCoins:    r.BonusCoins,
			FirstTimeX2:   r.FirstTimeX2,
			PriceDiamonds: r.PriceDiamonds,
		})
	}
	return cat, nil
}
