package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/xtding233/rewards-engine/internal/gacha"
)

// ErrNotFound means the requested banner has no config file.
var ErrNotFound = errors.New("banner not found")

// Paths helper for default/banner files.
type Paths struct {
	BaseDir string // base directory, e.g., /opt/app/config
}

func (p Paths) DefaultPath() string {
	return filepath.Join(p.BaseDir, "banners", "default.yaml")
}
func (p Paths) BannerPath(id string) string {
	return filepath.Join(p.BaseDir, "banners", id+".yaml")
}
func (p Paths) BannersDir() string {
	return filepath.Join(p.BaseDir, "banners")
}

// Loader reads banner YAML and merges default → banner. It deliberately
// keeps no cache: banner config may change between draws and each request
// must observe the current catalog.
type Loader struct {
	paths Paths
}

// NewLoader creates a banner loader with the given base directory.
func NewLoader(baseDir string) *Loader {
	return &Loader{paths: Paths{BaseDir: baseDir}}
}

// Load reads and merges default → banner, returning the normalized
// Banner. A missing banner file yields ErrNotFound; a missing default
// file contributes nothing.
func (l *Loader) Load(id string) (Banner, error) {
	if id == "" || id != filepath.Base(id) {
		return Banner{}, ErrNotFound
	}

	def, err := readYAML(l.paths.DefaultPath())
	if err != nil {
		return Banner{}, fmt.Errorf("read banner defaults: %w", err)
	}

	raw, err := readBannerYAML(l.paths.BannerPath(id))
	if err != nil {
		return Banner{}, err
	}

	merged := mergeRaw(def, raw)
	return normalize(id, merged), nil
}

// readYAML loads a YAML file into RawBanner. Missing files return zero
// cfg, no error.
func readYAML(path string) (RawBanner, error) {
	var cfg RawBanner
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RawBanner{}, nil
		}
		return RawBanner{}, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawBanner{}, err
	}
	return cfg, nil
}

// readBannerYAML is readYAML except a missing file is ErrNotFound.
func readBannerYAML(path string) (RawBanner, error) {
	var cfg RawBanner
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RawBanner{}, ErrNotFound
		}
		return RawBanner{}, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawBanner{}, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

// mergeRaw layers the banner file over the defaults: banner values win
// where provided, defaults fill the gaps. Maps and slices replace rather
// than merge element-wise.
func mergeRaw(def, banner RawBanner) RawBanner {
	out := def

	if banner.Active != nil {
		out.Active = banner.Active
	}
	if banner.StartsAt != nil {
		out.StartsAt = banner.StartsAt
	}
	if banner.EndsAt != nil {
		out.EndsAt = banner.EndsAt
	}
	if len(banner.Rates) > 0 {
		out.Rates = banner.Rates
	}
	if len(banner.Refunds) > 0 {
		out.Refunds = banner.Refunds
	}
	if banner.Notes != "" {
		out.Notes = banner.Notes
	}

	switch {
	case out.Pity == nil && banner.Pity != nil:
		c := *banner.Pity
		out.Pity = &c
	case out.Pity != nil && banner.Pity != nil:
		if banner.Pity.EpicEvery != nil {
			out.Pity.EpicEvery = banner.Pity.EpicEvery
		}
		if banner.Pity.LegendaryEvery != nil {
			out.Pity.LegendaryEvery = banner.Pity.LegendaryEvery
		}
	}

	switch {
	case out.Costs == nil && banner.Costs != nil:
		c := *banner.Costs
		out.Costs = &c
	case out.Costs != nil && banner.Costs != nil:
		if banner.Costs.CoinsPerDraw != nil {
			out.Costs.CoinsPerDraw = banner.Costs.CoinsPerDraw
		}
		if banner.Costs.TicketsPerDraw != nil {
			out.Costs.TicketsPerDraw = banner.Costs.TicketsPerDraw
		}
	}

	// entries never come from defaults
	out.Entries = banner.Entries

	return out
}

// normalize converts merged raw config into a Banner, applying the entry
// defaults (enabled when absent, weight 1 when absent or invalid).
func normalize(id string, raw RawBanner) Banner {
	b := Banner{
		ID:       id,
		StartsAt: raw.StartsAt,
		EndsAt:   raw.EndsAt,
		Rates:    make(gacha.RateTable, len(raw.Rates)),
		Refunds:  make(map[gacha.Rarity]int64, len(raw.Refunds)),
	}
	if raw.Active != nil {
		b.Active = *raw.Active
	}
	for k, v := range raw.Rates {
		b.Rates[gacha.Rarity(k)] = v
	}
	for k, v := range raw.Refunds {
		b.Refunds[gacha.Rarity(k)] = v
	}
	if raw.Pity != nil {
		if raw.Pity.EpicEvery != nil {
			b.Pity.EpicEvery = *raw.Pity.EpicEvery
		}
		if raw.Pity.LegendaryEvery != nil {
			b.Pity.LegendaryEvery = *raw.Pity.LegendaryEvery
		}
	}
	if raw.Costs != nil {
		if raw.Costs.CoinsPerDraw != nil {
			b.CoinsPerDraw = *raw.Costs.CoinsPerDraw
		}
		if raw.Costs.TicketsPerDraw != nil {
			b.TicketsPerDraw = *raw.Costs.TicketsPerDraw
		}
	}
	for _, e := range raw.Entries {
		entry := Entry{
			ItemID:  e.Item,
			Rarity:  gacha.Rarity(e.Rarity),
			Enabled: true,
			Weight:  1,
		}
		if e.Enabled != nil {
			entry.Enabled = *e.Enabled
		}
		if e.Weight != nil && *e.Weight >= 1 {
			entry.Weight = *e.Weight
		}
		b.Entries = append(b.Entries, entry)
	}
	return b
}
