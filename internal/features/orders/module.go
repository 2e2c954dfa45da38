package orders

import (
	"context"
	"database/sql"
	"fmt"

	"storefront-sync/internal/core/cache"
	"storefront-sync/internal/core/config"
	"storefront-sync/internal/core/httpclient"
	adapter "storefront-sync/internal/features/orders/adapters"
	"storefront-sync/internal/features/orders/handler"
	"storefront-sync/internal/features/orders/ports"
	"storefront-sync/internal/features/orders/service"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// Module holds the wired order sync feature.
type Module struct {
	Storefront *adapter.WooCommerceAdapter
	Syncer     *service.SyncService
	Runner     *service.PollService

	Webhook *handler.WebhookHandler
	Sync    *handler.SyncHandler
	Health  *handler.HealthHandler
}

// NewModule builds repositories, services and handlers on top of db and c.
func NewModule(db *sql.DB, c cache.Cache, cfg *config.AppConfig) (*Module, error) {
	client, err := httpclient.NewProxiedClient(cfg.WooCommerce.Timeout, cfg.Proxy.URL())
	if err != nil {
		return nil, fmt.Errorf("building storefront client: %w", err)
	}
	storefront := adapter.NewWooCommerceAdapter(cfg.WooCommerce, client)

	orderRepo := adapter.NewMySQLOrderRepository(db)
	contactRepo := adapter.NewMySQLContactRepository(db)
	catalogRepo := adapter.NewMySQLCatalogRepository(db)
	lotRepo := adapter.NewMySQLCostLotRepository(db)

	watermarks := adapter.NewRedisWatermarkStore(c)
	deliveries := adapter.NewRedisDeliveryStore(c, cfg.Sync.DeliveryTTL)

	syncer := service.NewSyncService(
		orderRepo,
		contactRepo,
		catalogRepo,
		lotRepo,
		decimal.NewFromFloat(cfg.Sync.MerchantFeeRate),
	)
	runner := service.NewPollService(storefront, syncer, orderRepo, watermarks, cfg.Sync)

	return &Module{
		Storefront: storefront,
		Syncer:     syncer,
		Runner:     runner,
		Webhook:    handler.NewWebhookHandler(syncer, storefront, deliveries, cfg.WooCommerce.WebhookSecret, cfg.TenantID),
		Sync:       handler.NewSyncHandler(runner, cfg.TenantID),
		Health: handler.NewHealthHandler(map[string]handler.HealthCheck{
			"mysql": db.PingContext,
			"redis": c.Ping,
		}),
	}, nil
}

// RegisterRoutes mounts the webhook and operator endpoints.
func (m *Module) RegisterRoutes(app *fiber.App) {
	app.Post("/webhooks/woocommerce", m.Webhook.Receive)

	sync := app.Group("/sync")
	sync.Post("/poll", m.Sync.Poll)
	sync.Post("/orders/:id", m.Sync.SyncOrder)
	sync.Get("/status", m.Sync.Status)

	app.Get("/health", m.Health.Health)
	app.Get("/health/storefront", handler.NewHealthHandler(map[string]handler.HealthCheck{
		"woocommerce": m.Storefront.HealthCheck,
	}).Health)
}

// CheckStorefront verifies the storefront credentials.
func (m *Module) CheckStorefront(ctx context.Context) error {
	return m.Storefront.HealthCheck(ctx)
}

var (
	_ ports.OrderProvider     = (*adapter.WooCommerceAdapter)(nil)
	_ ports.OrderDecoder      = (*adapter.WooCommerceAdapter)(nil)
	_ ports.OrderRepository   = (*adapter.MySQLOrderRepository)(nil)
	_ ports.ContactRepository = (*adapter.MySQLContactRepository)(nil)
	_ ports.CatalogRepository = (*adapter.MySQLCatalogRepository)(nil)
	_ ports.CostLotRepository = (*adapter.MySQLCostLotRepository)(nil)
	_ ports.WatermarkStore    = (*adapter.RedisWatermarkStore)(nil)
	_ ports.DeliveryStore     = (*adapter.RedisDeliveryStore)(nil)
	_ ports.OrderSyncer       = (*service.SyncService)(nil)
	_ ports.SyncRunner        = (*service.PollService)(nil)
)
