package engine

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/xtding233/rewards-engine/internal/economy"
	"github.com/xtding233/rewards-engine/internal/store"
)

// EquipRequest merges cosmetic slot assignments. nil means "leave the
// slot unchanged"; a pointer to the empty string un-equips the slot.
type EquipRequest struct {
	UserID     string
	Avatar     *string
	Background *string
	Icon       *string
}

// EquipResponse returns the committed slot map.
type EquipResponse struct {
	Equipped economy.Equipped `json:"equippedSlots"`
}

// Equip merges the provided slots into the equipped map. Every provided
// non-empty id must already be owned; fields not provided stay unchanged,
// so the equipped-subset-of-owned invariant cannot be broken.
func (e *Engine) Equip(ctx context.Context, req EquipRequest) (EquipResponse, error) {
	if err := requireUser(req.UserID); err != nil {
		return EquipResponse{}, err
	}
	if req.Avatar == nil && req.Background == nil && req.Icon == nil {
		return EquipResponse{}, status.Error(codes.InvalidArgument, "at least one slot is required")
	}

	record, err := e.store.Update(ctx, req.UserID, func(tx store.Tx) error {
		rec := tx.User()
		for _, slot := range []*string{req.Avatar, req.Background, req.Icon} {
			if slot != nil && *slot != "" && !rec.Owns(*slot) {
				return status.Errorf(codes.FailedPrecondition, "item %s is not owned", *slot)
			}
		}
		if req.Avatar != nil {
			rec.Equipped.Avatar = *req.Avatar
		}
		if req.Background != nil {
			rec.Equipped.Background = *req.Background
		}
		if req.Icon != nil {
			rec.Equipped.Icon = *req.Icon
		}
		rec.UpdatedAt = e.now().UTC()
		return nil
	})
	if err != nil {
		return EquipResponse{}, err
	}
	return EquipResponse{Equipped: record.Equipped}, nil
}
