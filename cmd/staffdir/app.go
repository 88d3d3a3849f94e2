package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/haukened/staffdir/internal/staff/common/clock"
	"github.com/haukened/staffdir/internal/staff/common/log"
	"github.com/haukened/staffdir/internal/staff/config"
	"github.com/haukened/staffdir/internal/staff/gateways/restapi"
	"github.com/haukened/staffdir/internal/staff/repos/denylist"
	"github.com/haukened/staffdir/internal/staff/repos/denylist/bloom"
	"github.com/haukened/staffdir/internal/staff/repos/denylist/bolt"
	"github.com/haukened/staffdir/internal/staff/repos/denylist/lru"
	"github.com/haukened/staffdir/internal/staff/repos/employeecache"
	"github.com/haukened/staffdir/internal/staff/repos/roster"
	"github.com/haukened/staffdir/internal/staff/services/directory"
	"github.com/haukened/staffdir/internal/staff/services/password"
)

// errDenylistDisabled is returned by denylist commands when no list directory is configured.
var errDenylistDisabled = errors.New("denylist is disabled")

// Application holds all the components of staffdir
type Application struct {
	config    *config.AppConfig
	clock     clock.Clock
	logger    log.Logger
	directory *directory.Directory
	checker   *password.Checker
	denylist  denylist.Repository
	store     denylist.Store
	source    string
}

// appLoader builds the application on demand, so that commands which fail
// argument validation never touch configuration or storage. interactive is
// set for the terminal UI, which must not log to the screen it draws on.
type appLoader func(ctx context.Context, interactive bool) (*Application, error)

// loadApplication reads configuration from the environment, configures
// logging and wires every component.
func loadApplication(ctx context.Context, interactive bool) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, NewCLIError("invalid configuration", "Check the STAFF_* environment variables", err)
	}

	if err := log.Configure(cfg.Env, cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, NewCLIError("logging configuration error", "Check STAFF_LOG_LEVEL and STAFF_LOG_FILE", err)
	}
	if interactive && cfg.LogFile == "" {
		log.SetLogger(log.NewNoopLogger())
	}

	log.Debug(map[string]any{
		"version":      version,
		"env":          cfg.Env,
		"log_level":    cfg.LogLevel,
		"api_url":      cfg.APIURL,
		"roster_file":  cfg.RosterFile,
		"cache_size":   cfg.CacheSize,
		"denylist_dir": cfg.DenylistDir,
	}, "Starting staffdir")

	return buildApplication(ctx, cfg, clock.RealClock{})
}

// buildApplication constructs all components and wires them together
func buildApplication(_ context.Context, cfg *config.AppConfig, clk clock.Clock) (*Application, error) {
	logger := log.GetLogger()

	api, source, err := buildEmployeeAPI(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build employee source: %w", err)
	}

	// Safely convert uint to int with bounds check
	cacheSize := cfg.CacheSize
	if cacheSize > uint(^uint(0)>>1) {
		return nil, fmt.Errorf("cache size too large: %d (max %d)", cacheSize, ^uint(0)>>1)
	}
	cache, err := employeecache.New(int(cacheSize))
	if err != nil {
		return nil, fmt.Errorf("failed to create employee cache: %w", err)
	}

	dir, err := directory.New(directory.Options{
		API:        api,
		Cache:      cache,
		Logger:     logger,
		SalaryStep: cfg.SalaryStep,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build directory: %w", err)
	}

	app := &Application{
		config:    cfg,
		clock:     clk,
		logger:    logger,
		directory: dir,
		denylist:  &denylist.NoopDenylist{},
		source:    source,
	}

	if cfg.DenylistEnabled() {
		if err := app.openDenylist(); err != nil {
			return nil, err
		}
	}

	app.checker = password.NewChecker(password.CheckerOptions{
		Engine:   password.DefaultEngine(),
		Denylist: app.denylist,
		Logger:   logger,
	})
	return app, nil
}

// buildEmployeeAPI selects the roster file when one is configured and the
// REST backend otherwise. The second result names the source for display.
func buildEmployeeAPI(cfg *config.AppConfig, logger log.Logger) (directory.EmployeeAPI, string, error) {
	if cfg.RosterFile != "" {
		src, err := roster.Load(cfg.RosterFile)
		if err != nil {
			return nil, "", err
		}
		logger.Info(map[string]any{"roster_file": cfg.RosterFile}, "Using roster file")
		return src, src.Path(), nil
	}

	client, err := restapi.NewClient(restapi.Options{
		BaseURL:  cfg.APIURL,
		Timeout:  cfg.APITimeout,
		Attempts: cfg.APIRetries,
		Logger:   logger,
	})
	if err != nil {
		return nil, "", err
	}
	return client, client.BaseURL(), nil
}

// openDenylist opens the persistent store and composes the repository. An
// empty store is seeded from the configured directory.
func (a *Application) openDenylist() error {
	store, err := bolt.New(a.config.DenylistDB)
	if err != nil {
		return fmt.Errorf("failed to open denylist store: %w", err)
	}
	cache, err := lru.New(a.config.DenylistCacheSize)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("failed to create denylist cache: %w", err)
	}
	a.store = store
	a.denylist = denylist.NewRepository(store, cache, bloom.NewFactory(), a.config.DenylistFPRate, a.logger)

	if store.Stats().Entries == 0 {
		if _, err := a.importDenylist(a.config.DenylistDir); err != nil {
			_ = a.Close()
			return err
		}
	}
	return nil
}

// importDenylist parses every list in dir and replaces the denylist snapshot.
// The snapshot version is the import time in unix seconds.
func (a *Application) importDenylist(dir string) (denylist.RepoStats, error) {
	if a.store == nil {
		return denylist.RepoStats{}, errDenylistDisabled
	}
	now := a.clock.Now()
	entries, err := denylist.LoadDirectory(dir, a.logger, now)
	if err != nil {
		return denylist.RepoStats{}, fmt.Errorf("failed to load denylist directory: %w", err)
	}
	if err := a.denylist.UpdateAll(entries, uint64(now.Unix()), now.Unix()); err != nil {
		return denylist.RepoStats{}, fmt.Errorf("failed to update denylist: %w", err)
	}
	return a.denylist.Stats(), nil
}

// Close releases the denylist store, if open.
func (a *Application) Close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}
