package engine

import (
	"context"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/xtding233/rewards-engine/internal/catalog"
	"github.com/xtding233/rewards-engine/internal/economy"
	"github.com/xtding233/rewards-engine/internal/gacha"
	"github.com/xtding233/rewards-engine/internal/store"
)

// batchSize is the only multi-pull count and the one the minimum-rarity
// guarantee applies to.
const batchSize = 10

// DrawRequest asks for count pulls on a banner paid in one currency.
type DrawRequest struct {
	UserID   string
	BannerID string
	Count    int
	PayWith  string // "coins" or "tickets"
}

// DrawResponse carries the ordered per-pull results plus the committed
// balances and pity state.
type DrawResponse struct {
	Results  []economy.PullResult `json:"results"`
	Balances economy.Balances     `json:"newBalances"`
	Pity     gacha.PityState      `json:"newPityState"`
}

// Draw runs one draw request as a single transaction. Pull n's duplicate
// check sees items granted by pulls 1..n-1; a ten-pull enforces the rare
// floor on its last slot; the chosen currency is debited by unit cost ×
// count and duplicate refunds are always credited in coins.
func (e *Engine) Draw(ctx context.Context, req DrawRequest) (DrawResponse, error) {
	if err := requireUser(req.UserID); err != nil {
		return DrawResponse{}, err
	}
	if req.Count != 1 && req.Count != batchSize {
		return DrawResponse{}, status.Errorf(codes.InvalidArgument, "count must be 1 or %d", batchSize)
	}
	payWith, ok := economy.ParseCurrency(req.PayWith)
	if !ok || payWith == economy.CurrencyDiamonds {
		return DrawResponse{}, status.Error(codes.InvalidArgument, "payWith must be coins or tickets")
	}

	banner, err := e.loadBanner(req.BannerID)
	if err != nil {
		return DrawResponse{}, err
	}
	if err := e.checkBannerOpen(banner); err != nil {
		return DrawResponse{}, err
	}
	pool := banner.CompilePool()
	if pool.Empty() {
		return DrawResponse{}, status.Errorf(codes.FailedPrecondition, "banner %s has no enabled entries", banner.ID)
	}

	unitCost := banner.CoinsPerDraw
	if payWith == economy.CurrencyTickets {
		unitCost = banner.TicketsPerDraw
	}
	if unitCost <= 0 {
		// a catalog-authoring bug; a banner must never sell free pulls
		return DrawResponse{}, status.Errorf(codes.Internal, "banner %s has no %s cost configured", banner.ID, payWith)
	}
	cost := unitCost * int64(req.Count)

	var results []economy.PullResult
	var postPity gacha.PityState

	record, err := e.store.Update(ctx, req.UserID, func(tx store.Tx) error {
		// the body may re-run on conflict: reset everything derived
		results = nil

		// banner config is not part of the user record; re-check the
		// window logically before committing against it
		if err := e.checkBannerOpen(banner); err != nil {
			return err
		}

		rec := tx.User()
		if rec.Balances.Amount(payWith) < cost {
			return status.Errorf(codes.FailedPrecondition, "insufficient %s: need %d, have %d",
				payWith, cost, rec.Balances.Amount(payWith))
		}

		now := e.now().UTC()
		preBalances := rec.Balances
		prePity := rec.BannerPity(banner.ID)
		pity := prePity

		for i := 0; i < req.Count; i++ {
			rolled, pitied := gacha.SelectRarity(banner.Rates, banner.Pity, pity, e.rng)
			// the pool may resolve a lower tier than rolled; the result,
			// refund and pity all follow the rarity actually granted
			itemID, granted, err := pool.Pick(rolled, e.rng)
			if err != nil {
				return status.Errorf(codes.Internal, "banner %s: %v", banner.ID, err)
			}
			pull := economy.PullResult{ItemID: itemID, Rarity: granted, Pitied: pitied}
			if rec.Owns(itemID) {
				pull.RefundAmount = banner.RefundFor(granted)
			} else {
				pull.IsNew = true
				rec.Owned[itemID] = true
			}
			pity = pity.Advance(granted, now)
			results = append(results, pull)
		}

		if req.Count == batchSize {
			if err := enforceFloor(results, rec, banner, pool, e.rng); err != nil {
				return err
			}
		}

		var totalRefund int64
		for _, r := range results {
			totalRefund += r.RefundAmount
		}

		rec.Balances = rec.Balances.Add(payWith, -cost)
		rec.Balances = rec.Balances.Add(economy.CurrencyCoins, totalRefund)
		rec.SetBannerPity(banner.ID, pity)
		rec.UpdatedAt = now
		postPity = pity

		tx.AppendDrawAudit(economy.DrawAudit{
			ID:          uuid.NewString(),
			BannerID:    banner.ID,
			Count:       req.Count,
			PayWith:     payWith,
			Cost:        cost,
			TotalRefund: totalRefund,
			PreBalances: preBalances,
			PostBalance: rec.Balances,
			PrePity:     prePity,
			PostPity:    pity,
			Results:     results,
			CreatedAt:   now,
		})
		return nil
	})
	if err != nil {
		return DrawResponse{}, err
	}

	e.log.WithFields(log.Fields{
		"user":   req.UserID,
		"banner": banner.ID,
		"count":  req.Count,
		"pay":    payWith,
	}).Info("draw committed")

	return DrawResponse{Results: results, Balances: record.Balances, Pity: postPity}, nil
}

// checkBannerOpen verifies the banner is active and inside its window.
func (e *Engine) checkBannerOpen(b catalog.Banner) error {
	if !b.Active {
		return status.Errorf(codes.FailedPrecondition, "banner %s is not active", b.ID)
	}
	if !b.WithinWindow(e.now().UTC()) {
		return status.Errorf(codes.FailedPrecondition, "banner %s is outside its active window", b.ID)
	}
	return nil
}

// enforceFloor applies the ten-pull minimum-rarity guarantee: if no
// result reached rare, the last slot is replaced by a rare pick (or the
// nearest usable tier when the rare pool is empty).
// Slots 1..9 and their ownership/refund effects stay untouched; the
// replaced slot's refund is reversed, its grant (if any) revoked, and the
// replacement's duplicate status is recomputed against the current
// ownership set. The replacement is never a pity result.
func enforceFloor(results []economy.PullResult, rec *economy.Record, banner catalog.Banner, pool gacha.Pool, rng gacha.RandomSource) error {
	for _, r := range results {
		if r.Rarity.Rank() >= gacha.RarityRare.Rank() {
			return nil
		}
	}

	last := &results[len(results)-1]
	if last.IsNew {
		delete(rec.Owned, last.ItemID)
	}

	itemID, granted, err := pool.Pick(gacha.RarityRare, rng)
	if err != nil {
		return status.Errorf(codes.Internal, "banner %s: %v", banner.ID, err)
	}
	replacement := economy.PullResult{
		ItemID:     itemID,
		Rarity:     granted,
		Guaranteed: true,
	}
	if rec.Owns(itemID) {
		replacement.RefundAmount = banner.RefundFor(granted)
	} else {
		replacement.IsNew = true
		rec.Owned[itemID] = true
	}
	*last = replacement
	return nil
}
