package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ErrInvalidOrder is returned when a storefront payload fails validation.
var ErrInvalidOrder = errors.New("invalid external order")

var validate = validator.New(validator.WithRequiredStructEnabled())

// ExternalOrder is the storefront's view of an order, already decoded and defaulted.
// It is read-only input for the sync engine.
type ExternalOrder struct {
	// ID is the storefront order id.
	ID int64 `json:"id" validate:"gt=0"`
	// Number is the customer-facing order number.
	Number string `json:"number"`
	// Status is the raw storefront status (e.g. processing, on-hold).
	Status string `json:"status" validate:"required"`
	// Total is the order grand total.
	Total decimal.Decimal `json:"total"`
	// ShippingTotal is the shipping charged to the customer.
	ShippingTotal decimal.Decimal `json:"shipping_total"`
	// CustomerNote is the free-text note left at checkout.
	CustomerNote string `json:"customer_note,omitempty"`
	// PaymentMethod is the payment method label, title preferred over id.
	PaymentMethod string `json:"payment_method,omitempty"`
	// DateCreated is when the order was placed.
	DateCreated time.Time `json:"date_created"`
	// DateModified is when the order was last changed in the storefront.
	DateModified time.Time `json:"date_modified"`
	// DatePaid is set once the storefront registers payment.
	DatePaid *time.Time `json:"date_paid,omitempty"`
	// Billing holds the customer identity.
	Billing Billing `json:"billing"`
	// Shipping holds the delivery address.
	Shipping Address `json:"shipping"`
	// LineItems contains the products ordered.
	LineItems []ExternalLineItem `json:"line_items" validate:"dive"`
}

// Billing holds the customer identity fields of an order.
type Billing struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// FullName joins first and last name, trimming blanks.
func (b Billing) FullName() string {
	return strings.TrimSpace(b.FirstName + " " + b.LastName)
}

// Address holds a postal address.
type Address struct {
	Address1 string `json:"address_1"`
	City     string `json:"city"`
	State    string `json:"state"`
	Postcode string `json:"postcode"`
}

// Format renders "street, city, state zip". It returns "" when no street is set.
func (a Address) Format() string {
	if strings.TrimSpace(a.Address1) == "" {
		return ""
	}
	return fmt.Sprintf("%s, %s, %s %s", a.Address1, a.City, a.State, a.Postcode)
}

// ExternalLineItem is one product line of an external order.
type ExternalLineItem struct {
	Name     string `json:"name" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=1"`
	// Price is the unit price. Zero when the storefront omitted it.
	Price decimal.Decimal `json:"price"`
	// Total is the line total.
	Total decimal.Decimal `json:"total"`
}

// UnitPrice returns Price, or Total/Quantity when no unit price was sent.
func (li ExternalLineItem) UnitPrice() decimal.Decimal {
	if !li.Price.IsZero() || li.Quantity <= 0 {
		return li.Price
	}
	return li.Total.Div(decimal.NewFromInt(int64(li.Quantity)))
}

// Describe renders the line for the unmatched-items note, e.g. "2x BPC-157 10mg ($100.00)".
func (li ExternalLineItem) Describe() string {
	return fmt.Sprintf("%dx %s ($%s)", li.Quantity, li.Name, li.Total.StringFixed(2))
}

// OrderNumber returns Number, falling back to the id.
func (o *ExternalOrder) OrderNumber() string {
	if o.Number != "" {
		return o.Number
	}
	return strconv.FormatInt(o.ID, 10)
}

// Validate rejects payloads the engine cannot reconcile.
func (o *ExternalOrder) Validate() error {
	if err := validate.Struct(o); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: field %s failed %q", ErrInvalidOrder, fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidOrder, err)
	}

	if o.Total.IsNegative() {
		return fmt.Errorf("%w: negative total %s", ErrInvalidOrder, o.Total)
	}
	if o.ShippingTotal.IsNegative() {
		return fmt.Errorf("%w: negative shipping total %s", ErrInvalidOrder, o.ShippingTotal)
	}

	return nil
}
