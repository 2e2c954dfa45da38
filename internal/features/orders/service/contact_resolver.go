package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront-sync/internal/core/logger"
	"storefront-sync/internal/features/orders/domain"
	"storefront-sync/internal/features/orders/ports"

	"go.uber.org/zap"
)

const defaultContactName = "Customer"

// ContactResolver finds or creates the customer contact of an order.
type ContactResolver struct {
	contacts ports.ContactRepository
	log      *zap.Logger
}

// NewContactResolver creates a new ContactResolver.
func NewContactResolver(contacts ports.ContactRepository) *ContactResolver {
	return &ContactResolver{
		contacts: contacts,
		log:      logger.Named("contacts"),
	}
}

// Resolve returns the id of the contact matching the billing email, creating one when
// there is none. Contacts are matched by email only.
func (r *ContactResolver) Resolve(ctx context.Context, order *domain.ExternalOrder, tenantID string) (string, error) {
	email := strings.TrimSpace(order.Billing.Email)

	if email != "" {
		existing, err := r.contacts.FindByEmail(ctx, tenantID, email)
		switch {
		case err == nil:
			return existing.ID, nil
		case !errors.Is(err, domain.ErrContactNotFound):
			return "", fmt.Errorf("looking up contact: %w", err)
		}
	}

	name := order.Billing.FullName()
	if name == "" {
		name = defaultContactName
	}

	contact := &domain.Contact{
		TenantID: tenantID,
		Name:     name,
		Email:    email,
		Phone:    strings.TrimSpace(order.Billing.Phone),
		Address:  order.Shipping.Format(),
		Type:     domain.ContactTypeCustomer,
		Notes:    fmt.Sprintf("Auto-created from WooCommerce order #%s", order.OrderNumber()),
	}

	if err := r.contacts.Create(ctx, contact); err != nil {
		return "", fmt.Errorf("creating contact: %w", err)
	}

	r.log.Info("Created contact",
		zap.String("tenant_id", tenantID),
		zap.String("contact_id", contact.ID),
		zap.String("order_number", order.OrderNumber()),
	)

	return contact.ID, nil
}
