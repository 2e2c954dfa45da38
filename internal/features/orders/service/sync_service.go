package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront-sync/internal/core/logger"
	"storefront-sync/internal/features/orders/domain"
	"storefront-sync/internal/features/orders/ports"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SyncService reconciles storefront orders into sales orders.
// It is the single entry point for the webhook and the poller.
type SyncService struct {
	orders   ports.OrderRepository
	catalog  ports.CatalogRepository
	contacts *ContactResolver
	matcher  *ProductMatcher
	bundles  *BundleExpander
	costs    *CostEngine
	feeRate  decimal.Decimal
	logger   *zap.Logger
}

// NewSyncService creates a new SyncService. feeRate is the merchant fee applied to paid totals.
func NewSyncService(
	orders ports.OrderRepository,
	contacts ports.ContactRepository,
	catalog ports.CatalogRepository,
	lots ports.CostLotRepository,
	feeRate decimal.Decimal,
) *SyncService {
	matcher := NewProductMatcher(catalog)
	return &SyncService{
		orders:   orders,
		catalog:  catalog,
		contacts: NewContactResolver(contacts),
		matcher:  matcher,
		bundles:  NewBundleExpander(matcher),
		costs:    NewCostEngine(lots),
		feeRate:  feeRate,
		logger:   logger.Named("sync"),
	}
}

// Sync creates the order on first sight, updates it when the storefront status changed,
// and skips it otherwise.
func (s *SyncService) Sync(ctx context.Context, order *domain.ExternalOrder, tenantID string) (*domain.SyncResult, error) {
	if order == nil {
		return nil, fmt.Errorf("%w: nil order", domain.ErrInvalidOrder)
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.orders.FindByExternalID(ctx, tenantID, order.ID)
	switch {
	case err == nil:
		if existing.ExternalStatus == order.Status {
			return s.skipped(existing, order), nil
		}
		return s.update(ctx, existing, order)
	case errors.Is(err, domain.ErrOrderNotFound):
		return s.create(ctx, order, tenantID)
	default:
		return nil, fmt.Errorf("looking up order %d: %w", order.ID, err)
	}
}

func (s *SyncService) skipped(existing *domain.InternalOrder, order *domain.ExternalOrder) *domain.SyncResult {
	return &domain.SyncResult{
		Action:      domain.SyncActionSkipped,
		OrderID:     existing.ID,
		OrderNumber: order.OrderNumber(),
	}
}

// update rewrites status, total, fee and profit. COGS, shipping and commission keep their stored values.
func (s *SyncService) update(ctx context.Context, existing *domain.InternalOrder, order *domain.ExternalOrder) (*domain.SyncResult, error) {
	mapping := domain.MapStatus(order.Status)
	fee := domain.MerchantFee(order.Total, mapping.PaymentStatus, s.feeRate)

	update := domain.OrderStatusUpdate{
		OrderID:            existing.ID,
		Status:             mapping.Status,
		PaymentStatus:      mapping.PaymentStatus,
		Total:              order.Total,
		MerchantFee:        fee,
		Profit:             domain.Profit(order.Total, existing.COGS, existing.ShippingCost, existing.Commission, fee),
		ExternalStatus:     order.Status,
		ExternalModifiedAt: order.DateModified,
	}

	if err := s.orders.UpdateStatus(ctx, update); err != nil {
		return nil, fmt.Errorf("updating order %s: %w", existing.ID, err)
	}

	s.logger.Info("Updated order",
		zap.String("tenant_id", existing.TenantID),
		zap.String("order_id", existing.ID),
		zap.String("order_number", order.OrderNumber()),
		zap.String("from_status", existing.ExternalStatus),
		zap.String("to_status", order.Status),
	)

	return &domain.SyncResult{
		Action:      domain.SyncActionUpdated,
		OrderID:     existing.ID,
		OrderNumber: order.OrderNumber(),
	}, nil
}

func (s *SyncService) create(ctx context.Context, order *domain.ExternalOrder, tenantID string) (*domain.SyncResult, error) {
	mapping := domain.MapStatus(order.Status)

	contactID, err := s.contacts.Resolve(ctx, order, tenantID)
	if err != nil {
		return nil, err
	}

	cc, err := LoadCatalogContext(ctx, s.catalog, tenantID)
	if err != nil {
		return nil, err
	}

	resolutions, err := s.resolveLines(ctx, order.LineItems, tenantID, cc)
	if err != nil {
		return nil, err
	}
	items, unmatched := foldLines(resolutions)

	cogs, err := s.costs.ComputeCOGS(ctx, tenantID, items)
	if err != nil {
		return nil, err
	}

	fee := domain.MerchantFee(order.Total, mapping.PaymentStatus, s.feeRate)

	internal := &domain.InternalOrder{
		TenantID:            tenantID,
		ContactID:           contactID,
		Status:              mapping.Status,
		PaymentStatus:       mapping.PaymentStatus,
		Total:               order.Total,
		AmountPaid:          decimal.Zero,
		ShippingCost:        order.ShippingTotal,
		MerchantFee:         fee,
		COGS:                cogs,
		Commission:          decimal.Zero,
		Profit:              domain.Profit(order.Total, cogs, order.ShippingTotal, decimal.Zero, fee),
		ShippingAddress:     order.Shipping.Format(),
		Notes:               buildNotes(order.CustomerNote, unmatched),
		Source:              domain.OrderSource,
		PaymentMethod:       order.PaymentMethod,
		ExternalOrderID:     order.ID,
		ExternalOrderNumber: order.OrderNumber(),
		ExternalStatus:      order.Status,
		ExternalCreatedAt:   order.DateCreated,
		ExternalModifiedAt:  order.DateModified,
		LineItems:           items,
	}
	if mapping.IsPaid() {
		internal.AmountPaid = order.Total
		internal.PaymentDate = order.DatePaid
	}

	if err := s.orders.Create(ctx, internal); err != nil {
		if errors.Is(err, domain.ErrDuplicateOrder) {
			return s.resolveDuplicate(ctx, order, tenantID)
		}
		return nil, fmt.Errorf("creating order %d: %w", order.ID, err)
	}

	if err := s.orders.InsertLineItems(ctx, internal.ID, items); err != nil {
		s.logger.Warn("Order created without line items",
			zap.String("order_id", internal.ID),
			zap.String("order_number", order.OrderNumber()),
			zap.Int("line_items", len(items)),
			zap.Error(err),
		)
	}

	s.logger.Info("Created order",
		zap.String("tenant_id", tenantID),
		zap.String("order_id", internal.ID),
		zap.String("order_number", order.OrderNumber()),
		zap.Int("line_items", len(items)),
		zap.Int("unmatched_items", len(unmatched)),
	)

	return &domain.SyncResult{
		Action:      domain.SyncActionCreated,
		OrderID:     internal.ID,
		OrderNumber: order.OrderNumber(),
	}, nil
}

// resolveDuplicate handles a concurrent caller that created the same order first.
func (s *SyncService) resolveDuplicate(ctx context.Context, order *domain.ExternalOrder, tenantID string) (*domain.SyncResult, error) {
	existing, err := s.orders.FindByExternalID(ctx, tenantID, order.ID)
	if err != nil {
		return nil, fmt.Errorf("reading order %d after duplicate insert: %w", order.ID, err)
	}

	s.logger.Info("Order already created by a concurrent sync",
		zap.String("tenant_id", tenantID),
		zap.String("order_id", existing.ID),
		zap.String("order_number", order.OrderNumber()),
	)

	return s.skipped(existing, order), nil
}

// lineResolution is the outcome for one storefront line: the catalog lines it produced, if any.
type lineResolution struct {
	item  domain.ExternalLineItem
	lines []domain.OrderLineItem
}

func (r lineResolution) matched() bool {
	return len(r.lines) > 0
}

// resolveLine tries bundle expansion first and falls back to a single product match.
func (s *SyncService) resolveLine(ctx context.Context, item domain.ExternalLineItem, tenantID string, cc *CatalogContext) (lineResolution, error) {
	res := lineResolution{item: item}

	lines, err := s.bundles.Expand(ctx, item, tenantID, cc)
	if err != nil {
		return res, err
	}
	if lines != nil {
		res.lines = lines
		return res, nil
	}

	product, err := s.matcher.Match(ctx, item.Name, tenantID, cc)
	if err != nil {
		return res, err
	}
	if product != nil {
		res.lines = []domain.OrderLineItem{{
			ProductID: product.ID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice(),
		}}
	}

	return res, nil
}

func (s *SyncService) resolveLines(ctx context.Context, items []domain.ExternalLineItem, tenantID string, cc *CatalogContext) ([]lineResolution, error) {
	out := make([]lineResolution, 0, len(items))
	for _, item := range items {
		res, err := s.resolveLine(ctx, item, tenantID, cc)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

// foldLines collects matched catalog lines and describes unmatched storefront lines.
func foldLines(resolutions []lineResolution) ([]domain.OrderLineItem, []string) {
	var (
		items     []domain.OrderLineItem
		unmatched []string
	)
	for _, r := range resolutions {
		if r.matched() {
			items = append(items, r.lines...)
			continue
		}
		unmatched = append(unmatched, r.item.Describe())
	}
	return items, unmatched
}

// buildNotes joins the customer note and the unmatched item list. Empty parts are dropped.
func buildNotes(customerNote string, unmatched []string) string {
	var parts []string
	if note := strings.TrimSpace(customerNote); note != "" {
		parts = append(parts, note)
	}
	if len(unmatched) > 0 {
		parts = append(parts, "Unmatched items: "+strings.Join(unmatched, "; "))
	}
	return strings.Join(parts, "\n")
}
