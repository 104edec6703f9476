// Command server runs the rewards engine HTTP API. It loads its
// configuration from the environment, opens the bbolt store, starts the
// catalog watcher and serves until SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/xtding233/rewards-engine/internal/auth"
	"github.com/xtding233/rewards-engine/internal/catalog"
	"github.com/xtding233/rewards-engine/internal/config"
	"github.com/xtding233/rewards-engine/internal/engine"
	"github.com/xtding233/rewards-engine/internal/server"
	"github.com/xtding233/rewards-engine/internal/shop"
	bboltstore "github.com/xtding233/rewards-engine/internal/store/bbolt"
)

func main() {
	setupLogging()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("load configuration")
	}
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.WithError(err).Fatal("create data dir")
	}
	st, err := bboltstore.Open(filepath.Join(cfg.DataDir, "engine.db"))
	if err != nil {
		log.WithError(err).Fatal("open store")
	}
	defer st.Close()

	banners := catalog.NewLoader(cfg.CatalogDir)
	shopLoader := &shop.Loader{Path: cfg.ShopFile}

	// revalidate edited banner configs so a bad edit shows up in the
	// logs before a player hits it
	watcher := catalog.NewWatcher(banners, cfg.WatchInterval, func(bannerID string) {
		b, err := banners.Load(bannerID)
		if err != nil {
			log.WithError(err).WithField("banner", bannerID).Error("banner config changed and no longer loads")
			return
		}
		if err := catalog.Validate(b); err != nil {
			log.WithError(err).WithField("banner", bannerID).Error("banner config changed and no longer validates")
			return
		}
		log.WithField("banner", bannerID).Info("banner config reloaded")
	})
	watcher.WatchShop(cfg.ShopFile, func() {
		if _, err := shopLoader.Load(); err != nil {
			log.WithError(err).Error("shop config changed and no longer loads")
			return
		}
		log.Info("shop config reloaded")
	})
	watcher.Start()
	defer watcher.Stop()

	eng := engine.New(st, banners, shopLoader, nil, log.StandardLogger())
	tokens := auth.NewTokens(cfg.TokenSecret, cfg.TokenTTL)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      server.New(eng, tokens, log.StandardLogger()),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.Addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("serve")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.WithField("signal", sig.String()).Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("shutdown")
	}
}

func setupLogging() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel)
}
