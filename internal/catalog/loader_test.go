package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xtding233/rewards-engine/internal/gacha"
)

const defaultYAML = `rates:
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
  rare: 20
  legendary: 500
costs:
  coins_per_draw: 100
  tickets_per_draw: 1
`

const standardYAML = `active: true
pity:
  legendary_every: 30
entries:
  - item: sword_oath
    rarity: legendary
  - item: cape_ember
    rarity: rare
    weight: 3
  - item: hat_plain
    rarity: common
    enabled: false
`

func writeCatalog(t *testing.T, files map[string]string) *Loader {
	t.Helper()
	base := t.TempDir()
	dir := filepath.Join(base, "banners")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return NewLoader(base)
}

func TestLoadMergesDefaults(t *testing.T) {
	loader := writeCatalog(t, map[string]string{
		"default.yaml":  defaultYAML,
		"standard.yaml": standardYAML,
	})

	b, err := loader.Load("standard")
	if err != nil {
		t.Fatal(err)
	}
	if !b.Active {
		t.Fatalf("banner should be active")
	}
	if b.Rates[gacha.RarityCommon] != 0.6 {
		t.Fatalf("rates must come from defaults, got %v", b.Rates)
	}
	// banner override wins, default fills the other half of the pair
	if b.Pity.LegendaryEvery != 30 || b.Pity.EpicEvery != 20 {
		t.Fatalf("pity merge wrong: %+v", b.Pity)
	}
	if b.CoinsPerDraw != 100 || b.TicketsPerDraw != 1 {
		t.Fatalf("costs merge wrong: %+v", b)
	}
	if b.RefundFor(gacha.RarityRare) != 20 || b.RefundFor(gacha.RarityEpic) != 0 {
		t.Fatalf("refund table wrong: %v", b.Refunds)
	}
}

func TestLoadEntryDefaults(t *testing.T) {
	loader := writeCatalog(t, map[string]string{
		"default.yaml":  defaultYAML,
		"standard.yaml": standardYAML,
	})
	b, err := loader.Load("standard")
	if err != nil {
		t.Fatal(err)
	}
	if len(b.Entries) != 3 {
		t.Fatalf("entries=%d, want 3", len(b.Entries))
	}
	if b.Entries[0].Weight != 1 || !b.Entries[0].Enabled {
		t.Fatalf("absent weight/enabled must default, got %+v", b.Entries[0])
	}
	if b.Entries[1].Weight != 3 {
		t.Fatalf("explicit weight lost: %+v", b.Entries[1])
	}
	enabled := b.EnabledEntries()
	if len(enabled) != 2 {
		t.Fatalf("enabled entries=%d, want 2", len(enabled))
	}
	pool := b.CompilePool()
	if pool.TierSize(gacha.RarityCommon) != 0 {
		t.Fatalf("disabled entry must not compile")
	}
	if pool.TierSize(gacha.RarityRare) != 1 || pool.TierSize(gacha.RarityLegendary) != 1 {
		t.Fatalf("pool compilation wrong")
	}
}

func TestLoadMissingBanner(t *testing.T) {
	loader := writeCatalog(t, map[string]string{"default.yaml": defaultYAML})
	if _, err := loader.Load("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	// path traversal in the id must not read outside the banners dir
	if _, err := loader.Load("../default"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestWithinWindow(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	before := now.Add(-time.Hour)
	after := now.Add(time.Hour)

	b := Banner{StartsAt: &before, EndsAt: &after}
	if !b.WithinWindow(now) {
		t.Fatalf("now inside window")
	}
	if b.WithinWindow(now.Add(2 * time.Hour)) {
		t.Fatalf("past end must be outside")
	}
	if b.WithinWindow(now.Add(-2 * time.Hour)) {
		t.Fatalf("before start must be outside")
	}
	if !(Banner{}).WithinWindow(now) {
		t.Fatalf("open window is always inside")
	}
}

func TestValidate(t *testing.T) {
	loader := writeCatalog(t, map[string]string{
		"default.yaml":  defaultYAML,
		"standard.yaml": standardYAML,
	})
	b, err := loader.Load("standard")
	if err != nil {
		t.Fatal(err)
	}
	if err := Validate(b); err != nil {
		t.Fatalf("valid banner rejected: %v", err)
	}

	bad := b
	bad.Pity.EpicEvery = 0
	bad.CoinsPerDraw = 0
	if err := Validate(bad); err == nil {
		t.Fatalf("expected validation failure")
	}

	noEntries := b
	noEntries.Entries = nil
	if err := Validate(noEntries); err == nil {
		t.Fatalf("active banner without enabled entries must fail validation")
	}
}
