package ports

import (
	"context"
	"time"

	"storefront-sync/internal/features/orders/domain"
)

// OrderRepository persists reconciled sales orders.
type OrderRepository interface {
	// FindByExternalID returns the order linked to (tenantID, externalID) or domain.ErrOrderNotFound.
	FindByExternalID(ctx context.Context, tenantID string, externalID int64) (*domain.InternalOrder, error)

	// Create inserts the order row and assigns its id.
	// Returns domain.ErrDuplicateOrder when the (tenant, external id) pair already exists.
	Create(ctx context.Context, order *domain.InternalOrder) error

	// InsertLineItems stores the catalog lines of an already created order.
	InsertLineItems(ctx context.Context, orderID string, items []domain.OrderLineItem) error

	// UpdateStatus rewrites status, payment and financial fields of an existing order.
	UpdateStatus(ctx context.Context, update domain.OrderStatusUpdate) error

	// LatestExternalModified returns the newest storefront modification time synced for the tenant.
	// ok is false when the tenant has no synced orders.
	LatestExternalModified(ctx context.Context, tenantID string) (t time.Time, ok bool, err error)
}

// ContactRepository persists customer contacts.
type ContactRepository interface {
	// FindByEmail returns the contact with the exact (tenantID, email) or domain.ErrContactNotFound.
	FindByEmail(ctx context.Context, tenantID, email string) (*domain.Contact, error)

	// Create inserts the contact and assigns its id.
	Create(ctx context.Context, contact *domain.Contact) error
}

// CatalogRepository reads the tenant's sellable products.
type CatalogRepository interface {
	ListByTenant(ctx context.Context, tenantID string) ([]domain.CatalogProduct, error)
}

// CostLotRepository reads inventory lots and their unit costs.
type CostLotRepository interface {
	ListByTenant(ctx context.Context, tenantID string) ([]domain.CostLot, error)
}
