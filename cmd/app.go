package cmd

import (
	"context"
	"fmt"

	"calendar-sync/core/config"
	"calendar-sync/core/database"
	"calendar-sync/core/logger"
	"calendar-sync/core/storage"
	"calendar-sync/feature/calendar"
	"calendar-sync/feature/calsync"
	"calendar-sync/feature/recordstore"
	"calendar-sync/feature/recordstore/notion"
	"calendar-sync/feature/recordstore/sqlstore"

	"go.uber.org/zap"
)

// deps bundles what every command needs after startup.
type deps struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   recordstore.Store
	locator recordstore.Locator
	feeds   *calendar.Fetcher
}

// setup loads configuration, builds the logger and opens the record store.
func setup(ctx context.Context) (*deps, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: invalid configuration: %w", calsync.ErrNoControlDataset, err)
	}

	store, locator, err := openStore(ctx, cfg, l)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", calsync.ErrNoControlDataset, err)
	}

	return &deps{
		cfg:     cfg,
		logger:  l,
		store:   store,
		locator: locator,
		feeds:   calendar.NewFetcher(cfg.Feed, openObjects(cfg, l), l),
	}, nil
}

// openStore connects the configured record store backend.
func openStore(ctx context.Context, cfg *config.Config, l *zap.Logger) (recordstore.Store, recordstore.Locator, error) {
	switch cfg.Store.Driver {
	case recordstore.DriverNotion:
		client := notion.New(cfg.Notion, l)
		return client, client, nil
	case recordstore.DriverSQL:
		db, err := database.Connect(cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		s := sqlstore.New(db, l)
		if err := s.Migrate(ctx); err != nil {
			return nil, nil, err
		}
		l.Info("Connected to record database", zap.String("driver", cfg.Database.Driver))
		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}

// openObjects builds the object storage client for s3:// feeds. Without one,
// only http(s) and webcal feeds can be fetched.
func openObjects(cfg *config.Config, l *zap.Logger) storage.Client {
	if cfg.Storage.AccessKey == "" {
		return nil
	}
	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		l.Warn("Object storage unavailable, s3:// feeds will fail", zap.Error(err))
		return nil
	}
	return client
}

// locate resolves the parent and control dataset, running the bootstrap
// connector when either reference is not configured.
func (d *deps) locate(ctx context.Context) (calsync.Locations, error) {
	return calsync.NewBootstrapper(d.store, d.locator, d.cfg.Store, d.logger).Ensure(ctx)
}

// driver builds the sync driver for resolved locations.
func (d *deps) driver(loc calsync.Locations) *calsync.Driver {
	return calsync.NewDriver(d.store, d.feeds, d.cfg.Sync, loc.ParentRef, loc.ControlRef, d.logger)
}
