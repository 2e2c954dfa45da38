package adapter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront-sync/internal/core/database"
	"storefront-sync/internal/features/orders/domain"

	"github.com/google/uuid"
)

// MySQLOrderRepository implements ports.OrderRepository on the sales_orders tables.
type MySQLOrderRepository struct {
	db *sql.DB
}

// NewMySQLOrderRepository creates a new MySQLOrderRepository.
func NewMySQLOrderRepository(db *sql.DB) *MySQLOrderRepository {
	return &MySQLOrderRepository{db: db}
}

const selectOrderColumns = `
	SELECT id, tenant_id, contact_id, status, payment_status,
	       total_amount, amount_paid, shipping_cost, merchant_fee, cogs_amount,
	       commission_amount, profit_amount, shipping_address, notes, order_source,
	       payment_method, payment_date, external_order_id, external_order_number,
	       external_status, external_created_at, external_modified_at
	FROM sales_orders`

// FindByExternalID returns the order linked to a storefront order.
func (r *MySQLOrderRepository) FindByExternalID(ctx context.Context, tenantID string, externalID int64) (*domain.InternalOrder, error) {
	query := selectOrderColumns + `
	WHERE tenant_id = ? AND external_order_id = ?
	LIMIT 1`

	var (
		o                                    domain.InternalOrder
		shippingAddress, notes, paymentMeth  sql.NullString
		paymentDate, extCreated, extModified sql.NullTime
	)

	err := r.db.QueryRowContext(ctx, query, tenantID, externalID).Scan(
		&o.ID, &o.TenantID, &o.ContactID, &o.Status, &o.PaymentStatus,
		&o.Total, &o.AmountPaid, &o.ShippingCost, &o.MerchantFee, &o.COGS,
		&o.Commission, &o.Profit, &shippingAddress, &notes, &o.Source,
		&paymentMeth, &paymentDate, &o.ExternalOrderID, &o.ExternalOrderNumber,
		&o.ExternalStatus, &extCreated, &extModified,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: tenant %s external id %d", domain.ErrOrderNotFound, tenantID, externalID)
	}
	if err != nil {
		return nil, fmt.Errorf("querying order by external id: %w", err)
	}

	o.ShippingAddress = shippingAddress.String
	o.Notes = notes.String
	o.PaymentMethod = paymentMeth.String
	if paymentDate.Valid {
		t := paymentDate.Time
		o.PaymentDate = &t
	}
	o.ExternalCreatedAt = extCreated.Time
	o.ExternalModifiedAt = extModified.Time

	return &o, nil
}

// Create inserts the order row. A (tenant, external id) collision yields domain.ErrDuplicateOrder.
func (r *MySQLOrderRepository) Create(ctx context.Context, o *domain.InternalOrder) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}

	query := `
		INSERT INTO sales_orders (
			id, tenant_id, contact_id, status, payment_status,
			total_amount, amount_paid, shipping_cost, merchant_fee, cogs_amount,
			commission_amount, profit_amount, shipping_address, notes, order_source,
			payment_method, payment_date, external_order_id, external_order_number,
			external_status, external_created_at, external_modified_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := execRetry(ctx, r.db, query,
		o.ID, o.TenantID, o.ContactID, string(o.Status), string(o.PaymentStatus),
		o.Total, o.AmountPaid, o.ShippingCost, o.MerchantFee, o.COGS,
		o.Commission, o.Profit, nullString(o.ShippingAddress), nullString(o.Notes), o.Source,
		nullString(o.PaymentMethod), nullTimePtr(o.PaymentDate), o.ExternalOrderID, o.ExternalOrderNumber,
		o.ExternalStatus, nullTime(o.ExternalCreatedAt), nullTime(o.ExternalModifiedAt),
	)
	if database.IsDuplicateKey(err) {
		return fmt.Errorf("%w: tenant %s external id %d", domain.ErrDuplicateOrder, o.TenantID, o.ExternalOrderID)
	}
	if err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}

	return nil
}

// InsertLineItems stores all lines of an order with a single multi-row INSERT.
func (r *MySQLOrderRepository) InsertLineItems(ctx context.Context, orderID string, items []domain.OrderLineItem) error {
	if len(items) == 0 {
		return nil
	}

	placeholders := make([]string, len(items))
	args := make([]interface{}, 0, len(items)*5)
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.NewString()
		}
		placeholders[i] = "(?, ?, ?, ?, ?)"
		args = append(args, items[i].ID, orderID, items[i].ProductID, items[i].Quantity, items[i].UnitPrice)
	}

	query := fmt.Sprintf(`
		INSERT INTO sales_order_items (id, sales_order_id, product_id, quantity, unit_price)
		VALUES %s`,
		strings.Join(placeholders, ", "),
	)

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting order items: %w", err)
	}

	return nil
}

// UpdateStatus rewrites the status-dependent fields of an order.
func (r *MySQLOrderRepository) UpdateStatus(ctx context.Context, u domain.OrderStatusUpdate) error {
	query := `
		UPDATE sales_orders
		SET status = ?, payment_status = ?, total_amount = ?, merchant_fee = ?,
		    profit_amount = ?, external_status = ?, external_modified_at = ?
		WHERE id = ?`

	result, err := execRetry(ctx, r.db, query,
		string(u.Status), string(u.PaymentStatus), u.Total, u.MerchantFee,
		u.Profit, u.ExternalStatus, nullTime(u.ExternalModifiedAt), u.OrderID,
	)
	if err != nil {
		return fmt.Errorf("updating order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: id %s", domain.ErrOrderNotFound, u.OrderID)
	}

	return nil
}

// LatestExternalModified returns MAX(external_modified_at) for the tenant.
func (r *MySQLOrderRepository) LatestExternalModified(ctx context.Context, tenantID string) (time.Time, bool, error) {
	query := `SELECT MAX(external_modified_at) FROM sales_orders WHERE tenant_id = ?`

	var latest sql.NullTime
	if err := r.db.QueryRowContext(ctx, query, tenantID).Scan(&latest); err != nil {
		return time.Time{}, false, fmt.Errorf("querying latest external modification: %w", err)
	}

	return latest.Time, latest.Valid, nil
}
