package engine

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/xtding233/rewards-engine/internal/catalog"
	"github.com/xtding233/rewards-engine/internal/economy"
	"github.com/xtding233/rewards-engine/internal/shop"
	"github.com/xtding233/rewards-engine/internal/store"
	bboltstore "github.com/xtding233/rewards-engine/internal/store/bbolt"
)

// seqRNG replays a fixed sequence, repeating the last value.
type seqRNG struct {
	vals []float64
	i    int
}

func (s *seqRNG) Float64() float64 {
	if len(s.vals) == 0 {
		return 0
	}
	v := s.vals[s.i]
	if s.i < len(s.vals)-1 {
		s.i++
	}
	return v
}

// testNow predates the summer shop item's June..August sale window.
var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

const defaultBannerYAML = `rates:
  common: 0.6
  uncommon: 0.25
  rare: 0.1
  epic: 0.04
  legendary: 0.01
pity:
  epic_every: 20
  legendary_every: 40
refunds:
  common: 5
  uncommon: 10
  rare: 20
  epic: 100
  legendary: 500
costs:
  coins_per_draw: 100
  tickets_per_draw: 1
`

const standardBannerYAML = `active: true
entries:
  - item: sword_oath
    rarity: legendary
  - item: crown_sol
    rarity: epic
  - item: cape_ember
    rarity: rare
    weight: 3
  - item: boots_swift
    rarity: uncommon
  - item: hat_plain
    rarity: common
  - item: hat_straw
    rarity: common
`

const inactiveBannerYAML = `active: false
entries:
  - item: relic_old
    rarity: rare
`

const expiredBannerYAML = `active: true
ends_at: 2026-01-01T00:00:00Z
entries:
  - item: relic_past
    rarity: rare
`

const emptyBannerYAML = `active: true
entries:
  - item: ghost_item
    rarity: rare
    enabled: false
`

// sparseBannerYAML has nothing at rare or above, forcing the ten-pull
// guarantee to settle for the best remaining tier.
const sparseBannerYAML = `active: true
entries:
  - item: charm_lucky
    rarity: uncommon
  - item: pebble_grey
    rarity: common
`

const freeBannerYAML = `active: true
costs:
  coins_per_draw: 0
entries:
  - item: relic_free
    rarity: rare
`

const shopYAML = `exchange_rate: 250
items:
  - item: frame_gilded
    costs:
      coins: 1200
      diamonds: 40
  - item: icon_star
    costs:
      coins: 300
  - item: icon_retired
    deprecated: true
    costs:
      coins: 100
  - item: banner_summer
    available_from: 2026-06-01T00:00:00Z
    available_to: 2026-08-31T23:59:59Z
    costs:
      tickets: 5
`

// newTestEngine builds an engine over a temp catalog and bbolt store.
func newTestEngine(t *testing.T) (*Engine, *bboltstore.Store) {
	t.Helper()
	base := t.TempDir()
	dir := filepath.Join(base, "banners")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"default.yaml":  defaultBannerYAML,
		"standard.yaml": standardBannerYAML,
		"inactive.yaml": inactiveBannerYAML,
		"expired.yaml":  expiredBannerYAML,
		"empty.yaml":    emptyBannerYAML,
		"sparse.yaml":   sparseBannerYAML,
		"free.yaml":     freeBannerYAML,
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	shopPath := filepath.Join(base, "shop.yaml")
	if err := os.WriteFile(shopPath, []byte(shopYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	st, err := bboltstore.Open(filepath.Join(base, "engine.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })

	logger := log.New()
	logger.SetOutput(io.Discard)

	eng := New(st, catalog.NewLoader(base), &shop.Loader{Path: shopPath}, nil, logger)
	eng.now = func() time.Time { return testNow }
	return eng, st
}

// fund seeds balances (and optionally pity/ownership) for a user.
func fund(t *testing.T, st store.UserStore, userID string, mutate func(*economy.Record)) economy.Record {
	t.Helper()
	rec, err := st.Update(context.Background(), userID, func(tx store.Tx) error {
		mutate(tx.User())
		return nil
	})
	if err != nil {
		t.Fatalf("fund: %v", err)
	}
	return rec
}

func wantCode(t *testing.T, err error, code codes.Code) {
	t.Helper()
	if status.Code(err) != code {
		t.Fatalf("got error %v (code %s), want code %s", err, status.Code(err), code)
	}
}
