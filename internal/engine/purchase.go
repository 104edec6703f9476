package engine

import (
	"context"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/xtding233/rewards-engine/internal/economy"
	"github.com/xtding233/rewards-engine/internal/store"
)

// PurchaseRequest buys one shop item outright with one currency.
type PurchaseRequest struct {
	UserID   string
	ItemID   string
	Currency string // "coins", "diamonds" or "tickets"
}

// PurchaseResponse reports the granted item and committed balances.
type PurchaseResponse struct {
	ItemID   string           `json:"itemId"`
	Balances economy.Balances `json:"newBalances"`
}

// Purchase debits the chosen currency and adds the item to the owned set
// in one transaction. Re-attempting after success fails fast with
// "already owned" instead of double-charging.
func (e *Engine) Purchase(ctx context.Context, req PurchaseRequest) (PurchaseResponse, error) {
	if err := requireUser(req.UserID); err != nil {
		return PurchaseResponse{}, err
	}
	if req.ItemID == "" {
		return PurchaseResponse{}, status.Error(codes.InvalidArgument, "item id is required")
	}
	currency, ok := economy.ParseCurrency(req.Currency)
	if !ok {
		return PurchaseResponse{}, status.Error(codes.InvalidArgument, "currency must be coins, diamonds or tickets")
	}

	cat, err := e.loadShop()
	if err != nil {
		return PurchaseResponse{}, err
	}
	item, ok := cat.Item(req.ItemID)
	if !ok {
		return PurchaseResponse{}, status.Errorf(codes.NotFound, "item %s does not exist", req.ItemID)
	}
	if item.Deprecated {
		return PurchaseResponse{}, status.Errorf(codes.FailedPrecondition, "item %s is no longer sold", req.ItemID)
	}
	if !item.AvailableAt(e.now().UTC()) {
		return PurchaseResponse{}, status.Errorf(codes.FailedPrecondition, "item %s is outside its sale window", req.ItemID)
	}
	cost, ok := item.Cost(currency)
	if !ok {
		return PurchaseResponse{}, status.Errorf(codes.FailedPrecondition, "item %s cannot be bought with %s", req.ItemID, currency)
	}

	record, err := e.store.Update(ctx, req.UserID, func(tx store.Tx) error {
		rec := tx.User()
		if rec.Owns(req.ItemID) {
			return status.Errorf(codes.FailedPrecondition, "item %s is already owned", req.ItemID)
		}
		if rec.Balances.Amount(currency) < cost {
			return status.Errorf(codes.FailedPrecondition, "insufficient %s: need %d, have %d",
				currency, cost, rec.Balances.Amount(currency))
		}

		now := e.now().UTC()
		pre := rec.Balances
		rec.Balances = rec.Balances.Add(currency, -cost)
		rec.Owned[req.ItemID] = true
		rec.UpdatedAt = now

		tx.AppendPurchaseAudit(economy.PurchaseAudit{
			ID:          uuid.NewString(),
			Kind:        economy.LedgerKindPurchase,
			ItemID:      req.ItemID,
			Currency:    currency,
			Cost:        cost,
			PreBalances: pre,
			PostBalance: rec.Balances,
			CreatedAt:   now,
		})
		return nil
	})
	if err != nil {
		return PurchaseResponse{}, err
	}

	e.log.WithFields(log.Fields{
		"user":     req.UserID,
		"item":     req.ItemID,
		"currency": currency,
		"cost":     cost,
	}).Info("purchase committed")

	return PurchaseResponse{ItemID: req.ItemID, Balances: record.Balances}, nil
}
