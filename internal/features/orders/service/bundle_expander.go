package service

import (
	"context"

	"storefront-sync/internal/features/orders/domain"

	"github.com/shopspring/decimal"
)

// BundleExpander splits known bundle listings into their catalog components.
type BundleExpander struct {
	matcher *ProductMatcher
}

// NewBundleExpander creates a new BundleExpander.
func NewBundleExpander(matcher *ProductMatcher) *BundleExpander {
	return &BundleExpander{matcher: matcher}
}

// IsBundle reports whether name is a known bundle listing.
func IsBundle(name string) bool {
	_, ok := bundleComponents[name]
	return ok
}

// Expand returns one line per resolved component, or nil when item is not a bundle
// or none of its components resolve. The line total is split evenly across all
// components, matched or not, so a missing component is not rebalanced.
func (b *BundleExpander) Expand(ctx context.Context, item domain.ExternalLineItem, tenantID string, cc *CatalogContext) ([]domain.OrderLineItem, error) {
	components, ok := bundleComponents[item.Name]
	if !ok || item.Quantity <= 0 {
		return nil, nil
	}

	unitPrice := item.Total.
		Div(decimal.NewFromInt(int64(len(components)))).
		Div(decimal.NewFromInt(int64(item.Quantity)))

	var lines []domain.OrderLineItem
	for _, name := range components {
		product, err := b.matcher.Match(ctx, name, tenantID, cc)
		if err != nil {
			return nil, err
		}
		if product == nil {
			continue
		}
		lines = append(lines, domain.OrderLineItem{
			ProductID: product.ID,
			Quantity:  item.Quantity,
			UnitPrice: unitPrice,
		})
	}

	if len(lines) == 0 {
		return nil, nil
	}
	return lines, nil
}
