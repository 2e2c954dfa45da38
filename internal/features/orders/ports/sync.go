package ports

import (
	"context"
	"time"

	"storefront-sync/internal/features/orders/domain"
)

// OrderSyncer reconciles one external order. Both the webhook and the poller go through it.
type OrderSyncer interface {
	Sync(ctx context.Context, order *domain.ExternalOrder, tenantID string) (*domain.SyncResult, error)
}

// OrderPoller runs a batch sync for a tenant.
type OrderPoller interface {
	// Poll syncs orders modified after since, or after the stored watermark when since is nil.
	Poll(ctx context.Context, tenantID string, since *time.Time) (*domain.PollSummary, error)
}

// SyncStatusReader exposes the bookkeeping of past polls.
type SyncStatusReader interface {
	Status(ctx context.Context, tenantID string) (*SyncStatus, error)
}

// SyncStatus is the last known poll state of a tenant.
type SyncStatus struct {
	TenantID  string              `json:"tenant_id"`
	Watermark *time.Time          `json:"watermark,omitempty"`
	LastRun   *domain.PollSummary `json:"last_run,omitempty"`
}

// WatermarkStore keeps per-tenant poll progress.
type WatermarkStore interface {
	// Get returns the stored watermark; ok is false when none is stored.
	Get(ctx context.Context, tenantID string) (t time.Time, ok bool, err error)
	Set(ctx context.Context, tenantID string, t time.Time) error
	Reset(ctx context.Context, tenantID string) error

	SaveReport(ctx context.Context, summary *domain.PollSummary) error
	// LastReport returns nil when no poll has been recorded.
	LastReport(ctx context.Context, tenantID string) (*domain.PollSummary, error)
}

// DeliveryStore remembers webhook deliveries that were already applied.
type DeliveryStore interface {
	IsProcessed(ctx context.Context, deliveryID string) (bool, error)
	MarkProcessed(ctx context.Context, deliveryID string) error
}

// SyncRunner is the operator-facing sync API used by the HTTP endpoints and the CLI.
type SyncRunner interface {
	OrderPoller
	SyncStatusReader
	// SyncOne fetches a single storefront order and syncs it.
	SyncOne(ctx context.Context, tenantID string, orderID int64) (*domain.SyncResult, error)
	ResetWatermark(ctx context.Context, tenantID string) error
}
