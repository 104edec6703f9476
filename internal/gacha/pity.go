package gacha

import "time"

// PityState tracks per-user, per-banner pity counters. The zero value is
// the state of a user who has never pulled on the banner.
type PityState struct {
	SinceEpic      int       `json:"sinceEpic"`
	SinceLegendary int       `json:"sinceLegendary"`
	LifetimePulls  int       `json:"lifetimePulls"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Advance returns the state after one pull of the given rarity:
//   - legendary resets both counters
//   - epic resets SinceEpic and increments SinceLegendary
//   - anything lower increments both
//
// LifetimePulls grows unconditionally.
func (s PityState) Advance(r Rarity, now time.Time) PityState {
	next := s
	switch r {
	case RarityLegendary:
		next.SinceEpic = 0
		next.SinceLegendary = 0
	case RarityEpic:
		next.SinceEpic = 0
		next.SinceLegendary++
	default:
		next.SinceEpic++
		next.SinceLegendary++
	}
	next.LifetimePulls++
	next.UpdatedAt = now
	return next
}
