// Package economy defines the per-user economy-and-inventory record and
// its audit records. All mutation happens through the transaction
// orchestrator in internal/engine.
package economy

import (
	"time"

	"github.com/xtding233/rewards-engine/internal/gacha"
)

// Currency identifies one of the three logical currencies.
type Currency string

const (
	CurrencyCoins    Currency = "coins"    // primary
	CurrencyDiamonds Currency = "diamonds" // premium
	CurrencyTickets  Currency = "tickets"  // draw tickets
)

// ParseCurrency maps the wire label to a Currency.
func ParseCurrency(s string) (Currency, bool) {
	switch Currency(s) {
	case CurrencyCoins, CurrencyDiamonds, CurrencyTickets:
		return Currency(s), true
	}
	return "", false
}

// Balances holds the integer currency balances. Never negative.
type Balances struct {
	Coins    int64 `json:"coins"`
	Diamonds int64 `json:"diamonds"`
	Tickets  int64 `json:"tickets"`
}

// Amount returns the balance of one currency.
func (b Balances) Amount(c Currency) int64 {
	switch c {
	case CurrencyCoins:
		return b.Coins
	case CurrencyDiamonds:
		return b.Diamonds
	case CurrencyTickets:
		return b.Tickets
	}
	return 0
}

// Add returns balances with delta applied to one currency.
func (b Balances) Add(c Currency, delta int64) Balances {
	switch c {
	case CurrencyCoins:
		b.Coins += delta
	case CurrencyDiamonds:
		b.Diamonds += delta
	case CurrencyTickets:
		b.Tickets += delta
	}
	return b
}

// Equipped maps cosmetic slots to owned item ids. Empty means the slot is
// not equipped. Every non-empty id must be in the owned set.
type Equipped struct {
	Avatar     string `json:"avatar"`
	Background string `json:"background"`
	Icon       string `json:"icon"`
}

// Starter items every new record owns and equips.
const (
	StarterAvatar     = "avatar_default"
	StarterBackground = "background_default"
)

// Record is the per-user economy aggregate: balances, owned-item set,
// equipped slots and per-banner pity state. It is updated by
// whole-aggregate replace inside one store transaction so the
// equipped-subset-of-owned invariant stays checkable in one place.
type Record struct {
	UserID    string                     `json:"userId"`
	Balances  Balances                   `json:"balances"`
	Owned     map[string]bool            `json:"owned"`
	Equipped  Equipped                   `json:"equipped"`
	Pity      map[string]gacha.PityState `json:"pity"` // keyed by banner id
	CreatedAt time.Time                  `json:"createdAt"`
	UpdatedAt time.Time                  `json:"updatedAt"`
}

// NewRecord builds the lazily-initialized default record: zero balances,
// starter items pre-owned and pre-equipped, no pity history.
func NewRecord(userID string, now time.Time) Record {
	return Record{
		UserID: userID,
		Owned: map[string]bool{
			StarterAvatar:     true,
			StarterBackground: true,
		},
		Equipped: Equipped{
			Avatar:     StarterAvatar,
			Background: StarterBackground,
		},
		Pity:      make(map[string]gacha.PityState),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Owns reports membership in the owned-item set.
func (r *Record) Owns(itemID string) bool { return r.Owned[itemID] }

// BannerPity returns the pity state for a banner, zero if never pulled.
func (r *Record) BannerPity(bannerID string) gacha.PityState {
	return r.Pity[bannerID]
}

// SetBannerPity stores the pity state for a banner.
func (r *Record) SetBannerPity(bannerID string, s gacha.PityState) {
	if r.Pity == nil {
		r.Pity = make(map[string]gacha.PityState)
	}
	r.Pity[bannerID] = s
}
