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

// ExchangeRequest converts coins into draw tickets. Count arrives as a
// number on the wire and is truncated to an integer ticket count.
type ExchangeRequest struct {
	UserID string
	Count  float64
}

// maxExchangeCount bounds one exchange. Keeps the cost multiply far from
// int64 overflow, which would otherwise turn a huge count into a negative
// cost and a coin credit.
const maxExchangeCount = 1_000_000

// ExchangeResponse reports the granted tickets and committed balances.
type ExchangeResponse struct {
	TicketsGranted int64            `json:"ticketsGranted"`
	Balances       economy.Balances `json:"newBalances"`
}

// ExchangeForTickets debits coins at the shop's exchange rate and credits
// tickets, atomically with its audit record.
func (e *Engine) ExchangeForTickets(ctx context.Context, req ExchangeRequest) (ExchangeResponse, error) {
	if err := requireUser(req.UserID); err != nil {
		return ExchangeResponse{}, err
	}
	count := int64(req.Count)
	if count <= 0 || req.Count > maxExchangeCount {
		return ExchangeResponse{}, status.Errorf(codes.InvalidArgument, "count must be between 1 and %d", maxExchangeCount)
	}

	cat, err := e.loadShop()
	if err != nil {
		return ExchangeResponse{}, err
	}
	cost := count * cat.ExchangeRate

	record, err := e.store.Update(ctx, req.UserID, func(tx store.Tx) error {
		rec := tx.User()
		if rec.Balances.Coins < cost {
			return status.Errorf(codes.FailedPrecondition, "insufficient coins: need %d, have %d",
				cost, rec.Balances.Coins)
		}

		now := e.now().UTC()
		pre := rec.Balances
		rec.Balances.Coins -= cost
		rec.Balances.Tickets += count
		rec.UpdatedAt = now

		tx.AppendPurchaseAudit(economy.PurchaseAudit{
			ID:             uuid.NewString(),
			Kind:           economy.LedgerKindExchange,
			Currency:       economy.CurrencyCoins,
			Cost:           cost,
			TicketsGranted: count,
			PreBalances:    pre,
			PostBalance:    rec.Balances,
			CreatedAt:      now,
		})
		return nil
	})
	if err != nil {
		return ExchangeResponse{}, err
	}

	e.log.WithFields(log.Fields{
		"user":    req.UserID,
		"tickets": count,
		"cost":    cost,
	}).Info("ticket exchange committed")

	return ExchangeResponse{TicketsGranted: count, Balances: record.Balances}, nil
}
