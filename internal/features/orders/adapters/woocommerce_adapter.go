package adapter

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"storefront-sync/internal/core/config"
	"storefront-sync/internal/features/orders/domain"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

const ordersPath = "/wp-json/wc/v3/orders"

// WooCommerceAdapter implements the OrderProvider and OrderDecoder ports using the WooCommerce REST API.
type WooCommerceAdapter struct {
	// client is the HTTP client used for API requests.
	client *http.Client
	// config holds the WooCommerce connection details.
	config config.WooCommerceConfig
	// limiter throttles outbound calls.
	limiter *rate.Limiter
}

// NewWooCommerceAdapter creates a new instance of WooCommerceAdapter.
func NewWooCommerceAdapter(cfg config.WooCommerceConfig, client *http.Client) *WooCommerceAdapter {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &WooCommerceAdapter{
		client:  client,
		config:  cfg,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// GetOrder fetches an order from WooCommerce and maps it to the domain entity.
func (a *WooCommerceAdapter) GetOrder(ctx context.Context, orderID int64) (*domain.ExternalOrder, error) {
	body, err := a.get(ctx, fmt.Sprintf("%s/%d", ordersPath, orderID), nil)
	if err != nil {
		return nil, err
	}

	return a.DecodeOrder(body)
}

// ListModifiedSince fetches one page of orders modified after since, oldest first.
// The page is returned as the storefront sent it; orders are not validated here.
func (a *WooCommerceAdapter) ListModifiedSince(ctx context.Context, since time.Time, page, perPage int) ([]domain.ExternalOrder, error) {
	query := url.Values{}
	query.Set("modified_after", since.UTC().Format(time.RFC3339))
	query.Set("dates_are_gmt", "true")
	query.Set("orderby", "modified")
	query.Set("order", "asc")
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(perPage))

	body, err := a.get(ctx, ordersPath, query)
	if err != nil {
		return nil, err
	}

	var wcOrders []woocommerceOrder
	if err := json.Unmarshal(body, &wcOrders); err != nil {
		return nil, fmt.Errorf("failed to decode orders page: %w", err)
	}

	orders := make([]domain.ExternalOrder, 0, len(wcOrders))
	for _, wc := range wcOrders {
		orders = append(orders, *mapToDomain(wc))
	}

	return orders, nil
}

// HealthCheck verifies that the WooCommerce API is reachable and credentials are valid.
func (a *WooCommerceAdapter) HealthCheck(ctx context.Context) error {
	// per_page=1 keeps the probe cheap while still exercising auth
	if _, err := a.get(ctx, ordersPath, url.Values{"per_page": {"1"}}); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}

// DecodeOrder parses a raw WooCommerce order JSON document and validates it.
func (a *WooCommerceAdapter) DecodeOrder(payload []byte) (*domain.ExternalOrder, error) {
	var wcOrder woocommerceOrder
	if err := json.NewDecoder(bytes.NewReader(payload)).Decode(&wcOrder); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidOrder, err)
	}

	order := mapToDomain(wcOrder)
	if err := order.Validate(); err != nil {
		return nil, err
	}

	return order, nil
}

// get performs an authenticated GET and returns the body of a 200 response.
func (a *WooCommerceAdapter) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	endpoint := strings.TrimRight(a.config.URL, "/") + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	authVal := make([]byte, 0, len(a.config.ConsumerKey)+len(a.config.ConsumerSecret)+1)
	authVal = fmt.Appendf(authVal, "%s:%s", a.config.ConsumerKey, a.config.ConsumerSecret)
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString(authVal))
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		if resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, path)
		}
		return nil, fmt.Errorf("woocommerce API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return body, nil
}

// mapToDomain converts a raw WooCommerce order into the engine's input, resolving every default once.
func mapToDomain(wc woocommerceOrder) *domain.ExternalOrder {
	order := &domain.ExternalOrder{
		ID:            wc.ID,
		Number:        wc.Number,
		Status:        wc.Status,
		Total:         decimal.Decimal(wc.Total),
		ShippingTotal: decimal.Decimal(wc.ShippingTotal),
		CustomerNote:  strings.TrimSpace(wc.CustomerNote),
		PaymentMethod: wc.PaymentMethodTitle,
		DateCreated:   pickTime(wc.DateCreatedGMT, wc.DateCreated),
		DateModified:  pickTime(wc.DateModifiedGMT, wc.DateModified),
		LineItems:     make([]domain.ExternalLineItem, 0, len(wc.LineItems)),
	}

	if order.PaymentMethod == "" {
		order.PaymentMethod = wc.PaymentMethod
	}

	if paid := pickTime(wc.DatePaidGMT, wc.DatePaid); !paid.IsZero() {
		order.DatePaid = &paid
	}

	if wc.Billing != nil {
		order.Billing = domain.Billing{
			FirstName: strings.TrimSpace(wc.Billing.FirstName),
			LastName:  strings.TrimSpace(wc.Billing.LastName),
			Email:     strings.TrimSpace(wc.Billing.Email),
			Phone:     strings.TrimSpace(wc.Billing.Phone),
		}
	}

	if wc.Shipping != nil {
		order.Shipping = domain.Address{
			Address1: strings.TrimSpace(wc.Shipping.Address1),
			City:     strings.TrimSpace(wc.Shipping.City),
			State:    strings.TrimSpace(wc.Shipping.State),
			Postcode: strings.TrimSpace(wc.Shipping.Postcode),
		}
	}

	for _, item := range wc.LineItems {
		order.LineItems = append(order.LineItems, domain.ExternalLineItem{
			Name:     strings.TrimSpace(item.Name),
			Quantity: item.Quantity,
			Price:    decimal.Decimal(item.Price),
			Total:    decimal.Decimal(item.Total),
		})
	}

	return order
}

// pickTime prefers the GMT variant of a WooCommerce date.
func pickTime(gmt, local *wcTime) time.Time {
	if gmt != nil && !time.Time(*gmt).IsZero() {
		return time.Time(*gmt)
	}
	if local != nil {
		return time.Time(*local)
	}
	return time.Time{}
}

// internal structs for mapping

// woocommerceOrder represents the JSON structure of an order from WooCommerce API.
type woocommerceOrder struct {
	// ID is the unique order ID.
	ID int64 `json:"id"`
	// Number is the display order number.
	Number string `json:"number"`
	// Status is the order status (e.g., pending, processing, completed).
	Status             string  `json:"status"`
	Total              wcMoney `json:"total"`
	ShippingTotal      wcMoney `json:"shipping_total"`
	CustomerNote       string  `json:"customer_note"`
	PaymentMethod      string  `json:"payment_method"`
	PaymentMethodTitle string  `json:"payment_method_title"`
	DateCreated        *wcTime `json:"date_created"`
	DateCreatedGMT     *wcTime `json:"date_created_gmt"`
	DateModified       *wcTime `json:"date_modified"`
	DateModifiedGMT    *wcTime `json:"date_modified_gmt"`
	DatePaid           *wcTime `json:"date_paid"`
	DatePaidGMT        *wcTime `json:"date_paid_gmt"`
	// Billing may be absent on orders created from the admin.
	Billing *wcBilling `json:"billing"`
	// Shipping is absent for virtual orders.
	Shipping  *wcShipping  `json:"shipping"`
	LineItems []wcLineItem `json:"line_items"`
}

// wcBilling holds billing address information.
type wcBilling struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// wcShipping holds shipping address information.
type wcShipping struct {
	Address1 string `json:"address_1"`
	City     string `json:"city"`
	State    string `json:"state"`
	Postcode string `json:"postcode"`
}

// wcLineItem represents a product in the WooCommerce order.
type wcLineItem struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    wcMoney `json:"price"`
	Total    wcMoney `json:"total"`
}

// wcMoney accepts WooCommerce amounts sent as strings ("12.50"), numbers, "" or null.
type wcMoney decimal.Decimal

// UnmarshalJSON parses the amount, treating empty values as zero.
func (m *wcMoney) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), "\"")
	if s == "" || s == "null" {
		*m = wcMoney(decimal.Zero)
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", s, err)
	}
	*m = wcMoney(d)
	return nil
}

// wcTime is a custom helper struct to handle WooCommerce's date format.
type wcTime time.Time

// UnmarshalJSON parses the custom date format used by WooCommerce.
func (t *wcTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), "\"")
	if s == "null" || s == "" {
		*t = wcTime(time.Time{})
		return nil
	}
	// WooCommerce usually returns ISO8601 without zone, e.g. "2018-12-19T14:48:25"
	parsed, err := time.ParseInLocation("2006-01-02T15:04:05", s, time.UTC)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339, s)
	}
	if err != nil {
		return errors.Join(fmt.Errorf("invalid date %q", s), err)
	}
	*t = wcTime(parsed.UTC())
	return nil
}
