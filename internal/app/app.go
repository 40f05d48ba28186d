// Package app wires together all adapters and domain logic.
// It provides lifecycle management for the bot process: open storage, build
// the pipeline and transport, watch the config file for admin/log-level
// changes, run the export-directory janitor, and shut everything down in
// order.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/corey/redeembot/internal/adapters/bbolt"
	fsw "github.com/corey/redeembot/internal/adapters/fsnotify"
	"github.com/corey/redeembot/internal/adapters/pastebin"
	"github.com/corey/redeembot/internal/adapters/pdf"
	"github.com/corey/redeembot/internal/adapters/telegram"
	"github.com/corey/redeembot/internal/config"
	"github.com/corey/redeembot/internal/domain/pipeline"
	"github.com/corey/redeembot/internal/ports"
)

// DBFileName is the bbolt database file under the data dir.
const DBFileName = "redeembot.db"

// exportSubdir holds generated per-denomination text files under the data dir.
const exportSubdir = "exports"

// App owns every long-lived component of the bot process.
type App struct {
	cfgPath string

	store   *bbolt.Store
	pipe    *pipeline.Pipeline
	bot     *telegram.Bot
	watcher ports.Watcher

	adminMu sync.RWMutex
	admins  map[int64]bool

	done      chan struct{} // closed on Stop; ends janitor and receive loop
	stopOnce  sync.Once
	exportDir string
	retention time.Duration
}

// DBPath returns the database location for a data dir.
func DBPath(dataDir string) string {
	return filepath.Join(dataDir, DBFileName)
}

// New loads configuration from cfgPath and wires a ready-to-run App.
func New(cfgPath string) (*App, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("no bot token: set token in %s or %s", cfgPath, config.TokenEnvVar)
	}
	applyLogLevel(cfg.LogLevel)

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	store, err := bbolt.NewStore(DBPath(cfg.DataDir))
	if err != nil {
		return nil, err
	}

	pipe := pipeline.New(store)
	exportDir := filepath.Join(cfg.DataDir, exportSubdir)

	a := &App{
		cfgPath:   cfgPath,
		store:     store,
		pipe:      pipe,
		admins:    cfg.AdminSet(),
		done:      make(chan struct{}),
		exportDir: exportDir,
		retention: cfg.Retention(),
	}

	bot, err := telegram.New(telegram.Options{
		Token:        cfg.Token,
		PollTimeout:  cfg.PollTimeoutSeconds,
		Store:        store,
		Pipeline:     pipe,
		Fetcher:      pastebin.NewFetcher(cfg.FetchTimeout()),
		Extractor:    pdf.NewExtractor(),
		ExportDir:    exportDir,
		IsAdmin:      a.IsAdmin,
		FetchTimeout: cfg.FetchTimeout(),
	})
	if err != nil {
		store.Close()
		return nil, err
	}
	a.bot = bot

	log.WithFields(log.Fields{
		"data_dir": cfg.DataDir,
		"admins":   len(cfg.Admins),
	}).Info("redeembot configured")
	return a, nil
}

// IsAdmin reports whether id is currently an admin. The set follows config
// file edits without a restart.
func (a *App) IsAdmin(id int64) bool {
	a.adminMu.RLock()
	defer a.adminMu.RUnlock()
	return a.admins[id]
}

// Run starts the janitor and config watcher, then blocks receiving chat
// updates until Stop is called.
func (a *App) Run() error {
	go runJanitor(a.exportDir, a.retention, a.done)

	w, err := fsw.NewWatcher()
	if err != nil {
		log.WithError(err).Warn("config watcher unavailable, edits need a restart")
	} else {
		a.watcher = w
		if err := w.Watch(a.cfgPath, a.reloadConfig); err != nil {
			log.WithError(err).Warn("config watch failed, edits need a restart")
		}
	}

	a.bot.Run(a.done)

	// The receive loop has drained; now it is safe to release resources.
	if a.watcher != nil {
		a.watcher.Stop()
	}
	return a.store.Close()
}

// Stop asks Run to wind down. Safe to call more than once.
func (a *App) Stop() {
	a.stopOnce.Do(func() { close(a.done) })
}

// reloadConfig re-reads the config file and applies the fields that are
// safe to change live: the admin set and the log level. Token and data-dir
// changes still need a restart.
func (a *App) reloadConfig() {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		log.WithError(err).Warn("config reload failed, keeping previous settings")
		return
	}

	a.adminMu.Lock()
	a.admins = cfg.AdminSet()
	a.adminMu.Unlock()
	applyLogLevel(cfg.LogLevel)

	log.WithField("admins", len(cfg.Admins)).Info("config reloaded")
}

// applyLogLevel sets the global logrus level, falling back to info on an
// unknown name.
func applyLogLevel(name string) {
	level, err := log.ParseLevel(name)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
