package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-sync/internal/core/cache"
	"storefront-sync/internal/core/config"
	"storefront-sync/internal/core/database"
	"storefront-sync/internal/core/logger"
	"storefront-sync/internal/core/server"
	"storefront-sync/internal/features/orders"

	"go.uber.org/zap"
)

// @title Storefront Sync API
// @version 1.0
// @description This API reconciles WooCommerce orders into the sales ledger.
// @contact.name API Support
// @contact.email support@storefront-sync.dev
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
		zap.String("default_tenant", cfg.TenantID),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(ctx, cfg.Database)
	if err != nil {
		l.Fatal("Database connection failed", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			l.Fatal("Schema migration failed", zap.Error(err))
		}
	}

	redisCache, err := cache.NewRedisAdapter(cfg.Redis.URL)
	if err != nil {
		l.Fatal("Redis connection failed", zap.Error(err))
	}
	defer redisCache.Close()

	module, err := orders.NewModule(db, redisCache, cfg)
	if err != nil {
		l.Fatal("Failed to wire orders module", zap.Error(err))
	}

	// The webhook path still works while the storefront is down, so only warn
	if err := module.CheckStorefront(ctx); err != nil {
		l.Warn("WooCommerce Health Check Failed", zap.Error(err))
	} else {
		l.Info("WooCommerce connection verified")
	}

	srv := server.New(cfg)
	module.RegisterRoutes(srv.App)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			l.Error("Server shutdown failed", zap.Error(err))
		}
	}()

	if err := srv.Run(); err != nil {
		l.Fatal("Server failed to start", zap.Error(err))
	}
}
