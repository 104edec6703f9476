// Package store defines the document-store contract the engine depends
// on: durable user records with transactional read-modify-write plus
// append-only audit logs committed in the same transaction.
package store

import (
	"context"
	"errors"

	"github.com/xtding233/rewards-engine/internal/economy"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// ErrConflict is returned by a transaction body when the store detected a
// conflicting concurrent write. Update retries the body on it.
var ErrConflict = errors.New("transaction conflict")

// Tx is the per-transaction view handed to an Update body. The record is
// a working copy: mutations only become durable when the body returns nil
// and the transaction commits. Appended audits commit atomically with the
// record.
type Tx interface {
	// User returns the working copy of the caller's economy record,
	// lazily initialized with defaults if the user has none yet.
	User() *economy.Record
	AppendDrawAudit(a economy.DrawAudit)
	AppendPurchaseAudit(a economy.PurchaseAudit)
}

// UserStore persists user economy records.
//
// Update runs fn against freshly-read state and commits the result
// atomically. On a detected conflict the whole body is re-run with fresh
// state, up to an implementation-defined bound; bodies must therefore be
// safe to re-execute and must not have side effects outside the
// transaction. A non-nil error from fn aborts the transaction and is
// returned verbatim. On success Update returns the committed record.
type UserStore interface {
	Update(ctx context.Context, userID string, fn func(Tx) error) (economy.Record, error)
	Get(ctx context.Context, userID string) (economy.Record, error)
	Close() error
}
