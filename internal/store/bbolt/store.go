// Package bbolt provides the BoltDB-backed user store. User records live
// as JSON documents in the users bucket; draw and ledger audits land in
// per-user sub-buckets, appended in the same transaction as the record
// write so nothing partially commits.
package bbolt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	"github.com/xtding233/rewards-engine/internal/economy"
	"github.com/xtding233/rewards-engine/internal/store"
)

const (
	usersBucket  = "users"
	drawsBucket  = "draw_audits"
	ledgerBucket = "ledger_audits"
)

// maxAttempts bounds conflict retries. Bolt serializes writers so its own
// transactions never conflict; the bound exists for the interface
// contract, honoring ErrConflict from a body.
const maxAttempts = 3

// Store provides a BoltDB-backed user store.
type Store struct {
	db  *bbolt.DB
	now func() time.Time
}

// Open opens a BoltDB-backed store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	db, err := bbolt.Open(filepath.Clean(path), 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying BoltDB database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{usersBucket, drawsBucket, ledgerBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create %s bucket: %w", name, err)
			}
		}
		return nil
	})
}

// userTx implements store.Tx over a working copy of one record.
type userTx struct {
	record    *economy.Record
	draws     []economy.DrawAudit
	purchases []economy.PurchaseAudit
}

func (t *userTx) User() *economy.Record                      { return t.record }
func (t *userTx) AppendDrawAudit(a economy.DrawAudit)        { t.draws = append(t.draws, a) }
func (t *userTx) AppendPurchaseAudit(a economy.PurchaseAudit) { t.purchases = append(t.purchases, a) }

// Update implements store.UserStore. The record is decoded fresh inside
// the bolt transaction, handed to fn as a working copy, and written back
// with any appended audits on commit.
func (s *Store) Update(ctx context.Context, userID string, fn func(store.Tx) error) (economy.Record, error) {
	if err := ctx.Err(); err != nil {
		return economy.Record{}, err
	}
	if strings.TrimSpace(userID) == "" {
		return economy.Record{}, fmt.Errorf("user id is required")
	}

	var committed economy.Record
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		lastErr = s.db.Update(func(btx *bbolt.Tx) error {
			record, err := s.loadOrInit(btx, userID)
			if err != nil {
				return err
			}

			utx := &userTx{record: &record}
			if err := fn(utx); err != nil {
				return err
			}

			payload, err := json.Marshal(record)
			if err != nil {
				return fmt.Errorf("marshal user record: %w", err)
			}
			if err := btx.Bucket([]byte(usersBucket)).Put([]byte(userID), payload); err != nil {
				return fmt.Errorf("write user record: %w", err)
			}

			for _, a := range utx.draws {
				if err := appendAudit(btx, drawsBucket, userID, a.ID, a.CreatedAt, a); err != nil {
					return err
				}
			}
			for _, a := range utx.purchases {
				if err := appendAudit(btx, ledgerBucket, userID, a.ID, a.CreatedAt, a); err != nil {
					return err
				}
			}

			committed = record
			return nil
		})
		if !errors.Is(lastErr, store.ErrConflict) {
			break
		}
	}
	if lastErr != nil {
		return economy.Record{}, lastErr
	}
	return committed, nil
}

// Get fetches a user record without mutating it.
func (s *Store) Get(ctx context.Context, userID string) (economy.Record, error) {
	if err := ctx.Err(); err != nil {
		return economy.Record{}, err
	}

	var record economy.Record
	err := s.db.View(func(btx *bbolt.Tx) error {
		payload := btx.Bucket([]byte(usersBucket)).Get([]byte(userID))
		if payload == nil {
			return store.ErrNotFound
		}
		if err := json.Unmarshal(payload, &record); err != nil {
			return fmt.Errorf("unmarshal user record: %w", err)
		}
		return nil
	})
	if err != nil {
		return economy.Record{}, err
	}
	return record, nil
}

// loadOrInit decodes the stored record or lazily initializes the default
// one. The default is only durable once the surrounding transaction
// commits, which keeps the upsert idempotent.
func (s *Store) loadOrInit(btx *bbolt.Tx, userID string) (economy.Record, error) {
	payload := btx.Bucket([]byte(usersBucket)).Get([]byte(userID))
	if payload == nil {
		return economy.NewRecord(userID, s.now().UTC()), nil
	}
	var record economy.Record
	if err := json.Unmarshal(payload, &record); err != nil {
		return economy.Record{}, fmt.Errorf("unmarshal user record: %w", err)
	}
	return record, nil
}

// appendAudit writes one audit document into the per-user sub-bucket.
// Keys are createdAt + id so iteration order matches wall-clock order.
func appendAudit(btx *bbolt.Tx, bucket, userID, id string, at time.Time, doc any) error {
	parent := btx.Bucket([]byte(bucket))
	sub, err := parent.CreateBucketIfNotExists([]byte(userID))
	if err != nil {
		return fmt.Errorf("create audit bucket: %w", err)
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal audit: %w", err)
	}
	key := fmt.Sprintf("%020d-%s", at.UnixNano(), id)
	return sub.Put([]byte(key), payload)
}

// AuditCount reports how many audit documents a user has in one of the
// audit buckets. Diagnostic helper.
func (s *Store) AuditCount(ctx context.Context, userID string, draws bool) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	bucket := ledgerBucket
	if draws {
		bucket = drawsBucket
	}
	count := 0
	err := s.db.View(func(btx *bbolt.Tx) error {
		sub := btx.Bucket([]byte(bucket)).Bucket([]byte(userID))
		if sub == nil {
			return nil
		}
		return sub.ForEach(func(_, _ []byte) error {
			count++
			return nil
		})
	})
	return count, err
}
