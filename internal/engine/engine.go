// Package engine is the economy transaction orchestrator: the only
// component with side effects. Every public operation re-reads state
// inside one store transaction, validates, runs the pure gacha
// components, and commits balances, inventory, pity and audit writes
// together. Bodies are written to be safe under transaction retry.
package engine

import (
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/xtding233/rewards-engine/internal/catalog"
	"github.com/xtding233/rewards-engine/internal/gacha"
	"github.com/xtding233/rewards-engine/internal/shop"
	"github.com/xtding233/rewards-engine/internal/store"
)

// Engine orchestrates draws, purchases, equips and ticket exchanges.
type Engine struct {
	store   store.UserStore
	banners *catalog.Loader
	shop    *shop.Loader
	rng     gacha.RandomSource
	log     *log.Logger
	now     func() time.Time
}

// New wires an Engine. nil rng selects the crypto source; nil logger
// selects the standard logrus logger.
func New(st store.UserStore, banners *catalog.Loader, shopLoader *shop.Loader, rng gacha.RandomSource, logger *log.Logger) *Engine {
	if rng == nil {
		rng = gacha.DefaultRNG()
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Engine{
		store:   st,
		banners: banners,
		shop:    shopLoader,
		rng:     rng,
		log:     logger,
		now:     time.Now,
	}
}

// errUnauthenticated is shared by every operation: no caller identity is
// rejected before any other validation.
var errUnauthenticated = status.Error(codes.Unauthenticated, "caller is not authenticated")

func requireUser(userID string) error {
	if userID == "" {
		return errUnauthenticated
	}
	return nil
}

// SimulateBanner loads a banner and runs the rate simulator against its
// configured rates and pity rules. Diagnostic surface for catalog
// authors; touches no user state.
func (e *Engine) SimulateBanner(bannerID string, pulls int, seed uint64) (gacha.SimReport, error) {
	if pulls <= 0 || pulls > 1_000_000 {
		return gacha.SimReport{}, status.Error(codes.InvalidArgument, "pulls must be between 1 and 1000000")
	}
	b, err := e.loadBanner(bannerID)
	if err != nil {
		return gacha.SimReport{}, err
	}
	return gacha.Simulate(gacha.SimParams{Rates: b.Rates, Rules: b.Pity, Pulls: pulls, Seed: seed}), nil
}

// PlanCoins returns the cheapest bundle combination reaching a coins
// target. Diagnostic like SimulateBanner; touches no user state.
func (e *Engine) PlanCoins(targetCoins int64, firstTime bool) (shop.Plan, error) {
	if targetCoins <= 0 || targetCoins > 1_000_000 {
		return shop.Plan{}, status.Error(codes.InvalidArgument, "coins must be between 1 and 1000000")
	}
	cat, err := e.loadShop()
	if err != nil {
		return shop.Plan{}, err
	}
	if len(cat.Bundles) == 0 {
		return shop.Plan{}, status.Error(codes.FailedPrecondition, "shop has no coin bundles")
	}
	plan := shop.CheapestPlan(cat.Bundles, targetCoins, firstTime)
	if len(plan.Purchases) == 0 {
		return shop.Plan{}, status.Error(codes.FailedPrecondition, "no bundle combination reaches the target")
	}
	return plan, nil
}

// loadBanner reads the banner fresh and maps catalog errors onto the
// engine's taxonomy.
func (e *Engine) loadBanner(bannerID string) (catalog.Banner, error) {
	if bannerID == "" {
		return catalog.Banner{}, status.Error(codes.InvalidArgument, "banner id is required")
	}
	b, err := e.banners.Load(bannerID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return catalog.Banner{}, status.Errorf(codes.NotFound, "banner %s does not exist", bannerID)
		}
		e.log.WithError(err).WithField("banner", bannerID).Error("banner load failed")
		return catalog.Banner{}, status.Error(codes.Internal, "banner configuration unavailable")
	}
	return b, nil
}

// loadShop reads the shop catalog fresh.
func (e *Engine) loadShop() (shop.Catalog, error) {
	cat, err := e.shop.Load()
	if err != nil {
		e.log.WithError(err).Error("shop load failed")
		return shop.Catalog{}, status.Error(codes.Internal, "shop configuration unavailable")
	}
	return cat, nil
}
