package economy

import (
	"time"

	"github.com/xtding233/rewards-engine/internal/gacha"
)

// PullResult is the trace of one pull inside a draw.
type PullResult struct {
	ItemID       string       `json:"itemId"`
	Rarity       gacha.Rarity `json:"rarity"`
	IsNew        bool         `json:"isNew"`
	RefundAmount int64        `json:"refundAmount"`
	Pitied       bool         `json:"pitied"`
	Guaranteed   bool         `json:"guaranteed"` // ten-pull floor replacement
}

// DrawAudit is the append-only record of one draw request. Write-once,
// diagnostic only; the engine never reads it back.
type DrawAudit struct {
	ID          string          `json:"id"`
	BannerID    string          `json:"bannerId"`
	Count       int             `json:"count"`
	PayWith     Currency        `json:"payWith"`
	Cost        int64           `json:"cost"`
	TotalRefund int64           `json:"totalRefund"`
	PreBalances Balances        `json:"preBalances"`
	PostBalance Balances        `json:"postBalances"`
	PrePity     gacha.PityState `json:"prePity"`
	PostPity    gacha.PityState `json:"postPity"`
	Results     []PullResult    `json:"results"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Ledger kinds for purchase/exchange audits.
const (
	LedgerKindPurchase = "purchase"
	LedgerKindExchange = "exchange"
)

// PurchaseAudit is the append-only record of a direct purchase or a
// coins-to-tickets exchange.
type PurchaseAudit struct {
	ID             string    `json:"id"`
	Kind           string    `json:"kind"`
	ItemID         string    `json:"itemId,omitempty"`
	Currency       Currency  `json:"currency"`
	Cost           int64     `json:"cost"`
	TicketsGranted int64     `json:"ticketsGranted,omitempty"`
	PreBalances    Balances  `json:"preBalances"`
	PostBalance    Balances  `json:"postBalances"`
	CreatedAt      time.Time `json:"createdAt"`
}
