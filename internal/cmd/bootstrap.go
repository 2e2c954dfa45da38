package cmd

import (
	"context"
	"database/sql"
	"fmt"

	"storefront-sync/internal/core/cache"
	"storefront-sync/internal/core/config"
	"storefront-sync/internal/core/database"
	"storefront-sync/internal/core/logger"
	"storefront-sync/internal/features/orders"
)

// runtime bundles the connections a command needs.
type runtime struct {
	cfg    *config.AppConfig
	db     *sql.DB
	cache  *cache.RedisAdapter
	module *orders.Module
}

// bootstrap loads config, opens MySQL and Redis and wires the orders module.
func bootstrap(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}

	db, err := database.NewConnection(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	c, err := cache.NewRedisAdapter(cfg.Redis.URL)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	m, err := orders.NewModule(db, c, cfg)
	if err != nil {
		c.Close()
		db.Close()
		return nil, err
	}

	return &runtime{cfg: cfg, db: db, cache: c, module: m}, nil
}

// tenant returns the --tenant flag or the configured default.
func (r *runtime) tenant() string {
	if tenantID != "" {
		return tenantID
	}
	return r.cfg.TenantID
}

func (r *runtime) close() {
	r.cache.Close()
	r.db.Close()
	logger.Sync()
}
