package ports

import (
	"context"
	"time"

	"storefront-sync/internal/features/orders/domain"
)

// OrderProvider defines the interface for retrieving orders from the storefront.
// This is a Secondary Port (Driven Port).
type OrderProvider interface {
	// GetOrder retrieves a single order by its storefront id.
	// Returns domain.ErrOrderNotFound when the storefront does not know it.
	GetOrder(ctx context.Context, orderID int64) (*domain.ExternalOrder, error)

	// ListModifiedSince returns one page of orders modified after since, oldest first.
	// The page holds every order the storefront returned, valid or not, so its length drives paging.
	ListModifiedSince(ctx context.Context, since time.Time, page, perPage int) ([]domain.ExternalOrder, error)

	// HealthCheck verifies the storefront is reachable with the configured credentials.
	HealthCheck(ctx context.Context) error
}

// OrderDecoder turns a raw storefront payload (e.g. a webhook body) into a validated order.
type OrderDecoder interface {
	DecodeOrder(payload []byte) (*domain.ExternalOrder, error)
}
