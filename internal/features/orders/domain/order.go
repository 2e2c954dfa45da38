package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrOrderNotFound is returned when no order exists for the lookup key.
	ErrOrderNotFound = errors.New("order not found")
	// ErrContactNotFound is returned when no contact matches the lookup key.
	ErrContactNotFound = errors.New("contact not found")
	// ErrDuplicateOrder is returned when an order for the same (tenant, external id) already exists.
	ErrDuplicateOrder = errors.New("order already exists")
)

// OrderSource tags orders created from the storefront.
const OrderSource = "woocommerce"

// ContactTypeCustomer tags contacts created for buyers.
const ContactTypeCustomer = "customer"

// OrderStatus is the internal lifecycle of a sales order.
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "draft"
	OrderStatusSubmitted OrderStatus = "submitted"
	OrderStatusFulfilled OrderStatus = "fulfilled"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// PaymentStatus tracks whether the order has been paid.
type PaymentStatus string

const (
	PaymentStatusPaid   PaymentStatus = "paid"
	PaymentStatusUnpaid PaymentStatus = "unpaid"
)

// Contact is an internal customer record.
type Contact struct {
	ID       string
	TenantID string
	Name     string
	// Email is empty when the customer gave none.
	Email string
	Phone string
	// Address is empty when unknown.
	Address string
	Type    string
	Notes   string
}

// CatalogProduct is a sellable catalog entry. Read-only for the engine.
type CatalogProduct struct {
	ID       string `json:"id"`
	TenantID string `json:"tenant_id"`
	Name     string `json:"name"`
}

// CostLot is an inventory batch with its acquisition cost.
type CostLot struct {
	ID        string
	ProductID string
	// CostPerUnit is invalid when no cost was recorded.
	CostPerUnit decimal.NullDecimal
}

// OrderLineItem is a catalog line of an internal order.
type OrderLineItem struct {
	ID        string          `json:"id,omitempty"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// InternalOrder is the reconciled sales order.
// At most one exists per (TenantID, ExternalOrderID).
type InternalOrder struct {
	ID              string
	TenantID        string
	ContactID       string
	Status          OrderStatus
	PaymentStatus   PaymentStatus
	Total           decimal.Decimal
	AmountPaid      decimal.Decimal
	ShippingCost    decimal.Decimal
	MerchantFee     decimal.Decimal
	COGS            decimal.Decimal
	Commission      decimal.Decimal
	Profit          decimal.Decimal
	ShippingAddress string
	Notes           string
	Source          string
	PaymentMethod   string
	PaymentDate     *time.Time

	ExternalOrderID     int64
	ExternalOrderNumber string
	ExternalStatus      string
	ExternalCreatedAt   time.Time
	ExternalModifiedAt  time.Time

	LineItems []OrderLineItem
}

// OrderStatusUpdate carries the fields rewritten when the storefront status changes.
type OrderStatusUpdate struct {
	OrderID            string
	Status             OrderStatus
	PaymentStatus      PaymentStatus
	Total              decimal.Decimal
	MerchantFee        decimal.Decimal
	Profit             decimal.Decimal
	ExternalStatus     string
	ExternalModifiedAt time.Time
}

// SyncAction is the outcome of syncing one external order.
type SyncAction string

const (
	SyncActionCreated SyncAction = "created"
	SyncActionUpdated SyncAction = "updated"
	SyncActionSkipped SyncAction = "skipped"
)

// SyncResult reports what happened to one external order. It is never persisted.
type SyncResult struct {
	Action      SyncAction `json:"action,omitempty"`
	OrderID     string     `json:"order_id,omitempty"`
	OrderNumber string     `json:"order_number,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// PollSummary aggregates one batch poll of a tenant.
type PollSummary struct {
	TenantID   string       `json:"tenant_id"`
	Since      time.Time    `json:"since"`
	Watermark  time.Time    `json:"watermark"`
	Fetched    int          `json:"fetched"`
	Created    int          `json:"created"`
	Updated    int          `json:"updated"`
	Skipped    int          `json:"skipped"`
	Errors     int          `json:"errors"`
	Results    []SyncResult `json:"results"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
}

// Record counts r into the summary.
func (s *PollSummary) Record(r SyncResult) {
	s.Results = append(s.Results, r)
	if r.Error != "" {
		s.Errors++
		return
	}
	switch r.Action {
	case SyncActionCreated:
		s.Created++
	case SyncActionUpdated:
		s.Updated++
	case SyncActionSkipped:
		s.Skipped++
	}
}
