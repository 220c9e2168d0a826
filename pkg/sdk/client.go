package tokenmeter

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/tokenmeter/internal/db"
	dbRedis "github.com/kailas-cloud/tokenmeter/internal/db/redis"
	usagerepo "github.com/kailas-cloud/tokenmeter/internal/repository/usage"
	healthuc "github.com/kailas-cloud/tokenmeter/internal/usecase/health"
	usageuc "github.com/kailas-cloud/tokenmeter/internal/usecase/usage"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultKeyPrefix        = "tokenmeter:"
)

// Client is the tokenmeter entry point. All methods are safe for
// concurrent use.
type Client struct {
	store     db.Store
	tracker   *usageuc.Tracker
	snapRepo  *usagerepo.Store
	healthSvc *healthuc.Service
	obs       *observer
}

// New creates a usage meter. When a database option is given the
// provided context is used for the initial readiness check and the
// persisted snapshot is restored before the meter accepts reports.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		keyPrefix: defaultKeyPrefix,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	var store db.Store
	if len(cfg.addrs) > 0 {
		s, err := createStore(cfg)
		if err != nil {
			return nil, err
		}
		if err := s.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			s.Close()
			return nil, fmt.Errorf("tokenmeter: database not ready: %w", err)
		}
		store = s
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, err
	}

	tracker := usageuc.NewTracker(zap.NewNop())

	var snapRepo *usagerepo.Store
	if store != nil {
		snapRepo = usagerepo.New(store, cfg.keyPrefix)
		snap, found, err := snapRepo.Load(ctx)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("tokenmeter: load snapshot: %w", err)
		}
		if found {
			tracker.Restore(snap)
		}
	}

	var dbPinger healthuc.DBPinger
	if store != nil {
		dbPinger = store
	}

	return &Client{
		store:     store,
		tracker:   tracker,
		snapRepo:  snapRepo,
		healthSvc: healthuc.New(dbPinger, nil),
		obs:       obs,
	}, nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "valkey", "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:      cfg.addrs,
			Password:   cfg.password,
			Standalone: cfg.standalone,
		})
		if err != nil {
			return nil, fmt.Errorf("tokenmeter: create %s store: %w", cfg.driver, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("tokenmeter: unknown driver %q", cfg.driver)
	}
}

// Close releases all resources. Counters recorded since the last Flush
// are not persisted automatically; call Flush first if needed.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if c.store == nil {
		return nil
	}
	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Flush persists the current snapshot to the configured database.
// No-op in memory-only mode.
func (c *Client) Flush(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("flush", start, err) }()

	if c.snapRepo == nil {
		return nil
	}
	if err = c.snapRepo.Save(ctx, c.tracker.Snapshot()); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}
