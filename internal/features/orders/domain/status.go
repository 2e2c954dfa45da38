package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// StatusMapping is the internal view of a storefront status.
type StatusMapping struct {
	Status        OrderStatus
	PaymentStatus PaymentStatus
}

var statusTable = map[string]StatusMapping{
	"processing": {OrderStatusSubmitted, PaymentStatusPaid},
	"completed":  {OrderStatusSubmitted, PaymentStatusPaid},
	"on-hold":    {OrderStatusSubmitted, PaymentStatusUnpaid},
	"pending":    {OrderStatusDraft, PaymentStatusUnpaid},
	"cancelled":  {OrderStatusCancelled, PaymentStatusUnpaid},
	"refunded":   {OrderStatusCancelled, PaymentStatusUnpaid},
	"failed":     {OrderStatusCancelled, PaymentStatusUnpaid},
}

// MapStatus translates a storefront status. Unknown values map to submitted/unpaid.
func MapStatus(externalStatus string) StatusMapping {
	if m, ok := statusTable[strings.ToLower(strings.TrimSpace(externalStatus))]; ok {
		return m
	}
	return StatusMapping{Status: OrderStatusSubmitted, PaymentStatus: PaymentStatusUnpaid}
}

// IsPaid reports whether the mapping carries a paid payment status.
func (m StatusMapping) IsPaid() bool {
	return m.PaymentStatus == PaymentStatusPaid
}

// MerchantFee is rate × total for paid orders and zero otherwise.
func MerchantFee(total decimal.Decimal, paymentStatus PaymentStatus, rate decimal.Decimal) decimal.Decimal {
	if paymentStatus != PaymentStatusPaid {
		return decimal.Zero
	}
	return total.Mul(rate)
}

// Profit is total minus every cost attributed to the order.
func Profit(total, cogs, shipping, commission, merchantFee decimal.Decimal) decimal.Decimal {
	return total.Sub(cogs).Sub(shipping).Sub(commission).Sub(merchantFee)
}
