package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Watcher polls the banners directory for modified files and triggers a
// callback per changed banner id. The engine itself reads config fresh on
// every request; the watcher only exists so an operator learns about a bad
// catalog edit from the logs instead of from player-facing errors.
type Watcher struct {
	dir       string
	interval  time.Duration
	onChange  func(bannerID string)
	stopCh    chan struct{}
	lastMTime map[string]time.Time

	shopPath     string
	onShopChange func()
	shopMTime    time.Time
	shopSeen     bool
}

// NewWatcher creates a watcher over the loader's banners directory.
func NewWatcher(loader *Loader, interval time.Duration, onChange func(bannerID string)) *Watcher {
	return &Watcher{
		dir:       loader.paths.BannersDir(),
		interval:  interval,
		onChange:  onChange,
		stopCh:    make(chan struct{}),
		lastMTime: make(map[string]time.Time),
	}
}

// WatchShop additionally polls the shop file, invoking onChange when its
// mtime moves. Must be called before Start.
func (w *Watcher) WatchShop(path string, onChange func()) {
	w.shopPath = path
	w.onShopChange = onChange
}

// Start begins polling in a goroutine.
func (w *Watcher) Start() {
	ticker := time.NewTicker(w.interval)
	go func() {
		defer ticker.Stop()
		// prime cache
		w.scan(true)
		for {
			select {
			case <-ticker.C:
				w.scan(false)
			case <-w.stopCh:
				return
			}
		}
	}()
}

// Stop terminates the watcher.
func (w *Watcher) Stop() {
	close(w.stopCh)
}

// scan checks mtimes of every yaml file in the banners directory and
// invokes onChange for files that changed since the previous scan.
// A change to default.yaml reports every banner as changed.
func (w *Watcher) scan(prime bool) {
	w.scanShop(prime)

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return
	}
	var changed []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".yaml" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		mt := info.ModTime()
		last, seen := w.lastMTime[name]
		w.lastMTime[name] = mt
		if !seen || prime {
			continue
		}
		if mt.After(last) {
			changed = append(changed, strings.TrimSuffix(name, ".yaml"))
		}
	}
	if w.onChange == nil {
		return
	}
	for _, id := range changed {
		if id == "default" {
			// defaults feed every banner
			for name := range w.lastMTime {
				base := strings.TrimSuffix(name, ".yaml")
				if base != "default" {
					w.onChange(base)
				}
			}
			continue
		}
		w.onChange(id)
	}
}

// scanShop checks the shop file's mtime, if one is being watched.
func (w *Watcher) scanShop(prime bool) {
	if w.shopPath == "" {
		return
	}
	info, err := os.Stat(w.shopPath)
	if err != nil {
		return
	}
	mt := info.ModTime()
	last, seen := w.shopMTime, w.shopSeen
	w.shopMTime = mt
	w.shopSeen = true
	if !seen || prime {
		return
	}
	if mt.After(last) && w.onShopChange != nil {
		w.onShopChange()
	}
}
