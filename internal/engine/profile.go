package engine

import (
	"context"
	"sort"

	"github.com/xtding233/rewards-engine/internal/economy"
	"github.com/xtding233/rewards-engine/internal/gacha"
	"github.com/xtding233/rewards-engine/internal/store"
)

// ProfileResponse is the read side of the economy record.
type ProfileResponse struct {
	Balances   economy.Balances           `json:"balances"`
	OwnedCount int                        `json:"ownedCount"`
	Owned      []string                   `json:"owned"`
	Equipped   economy.Equipped           `json:"equippedSlots"`
	Pity       map[string]gacha.PityState `json:"pity"`
}

// Profile returns the caller's balances, inventory and pity state,
// lazily creating the default record on first access like every other
// operation.
func (e *Engine) Profile(ctx context.Context, userID string) (ProfileResponse, error) {
	if err := requireUser(userID); err != nil {
		return ProfileResponse{}, err
	}

	record, err := e.store.Update(ctx, userID, func(store.Tx) error { return nil })
	if err != nil {
		return ProfileResponse{}, err
	}

	owned := make([]string, 0, len(record.Owned))
	for id := range record.Owned {
		owned = append(owned, id)
	}
	sort.Strings(owned)
	return ProfileResponse{
		Balances:   record.Balances,
		OwnedCount: len(owned),
		Owned:      owned,
		Equipped:   record.Equipped,
		Pity:       record.Pity,
	}, nil
}
