package service

import (
	"context"
	"strings"

	"storefront-sync/internal/features/orders/domain"
	"storefront-sync/internal/features/orders/ports"
)

// ProductMatcher resolves storefront product names to catalog products.
type ProductMatcher struct {
	catalog ports.CatalogRepository
}

// NewProductMatcher creates a new ProductMatcher.
func NewProductMatcher(catalog ports.CatalogRepository) *ProductMatcher {
	return &ProductMatcher{catalog: catalog}
}

// Match returns the catalog product for name, or nil when nothing matches.
// When cc is nil the tenant catalog is loaded first; that read is the only error source.
//
// Rules, first hit wins:
//  1. known alias prefixes are rewritten
//  2. case-insensitive equality of full names
//  3. equality after stripping the dosage token from both sides
//  4. containment in either direction on the stripped names
func (m *ProductMatcher) Match(ctx context.Context, name, tenantID string, cc *CatalogContext) (*domain.CatalogProduct, error) {
	if cc == nil {
		var err error
		if cc, err = LoadCatalogContext(ctx, m.catalog, tenantID); err != nil {
			return nil, err
		}
	}
	return cc.match(name), nil
}

func (c *CatalogContext) match(name string) *domain.CatalogProduct {
	aliased := applyAlias(name)

	full := strings.ToLower(strings.TrimSpace(aliased))
	for i := range c.entries {
		if c.entries[i].lower == full {
			return &c.entries[i].product
		}
	}

	base := stripDosage(aliased)
	for i := range c.entries {
		if c.entries[i].stripped == base {
			return &c.entries[i].product
		}
	}

	if base == "" {
		return nil
	}
	for i := range c.entries {
		e := c.entries[i].stripped
		if e == "" {
			continue
		}
		if strings.Contains(e, base) || strings.Contains(base, e) {
			return &c.entries[i].product
		}
	}

	return nil
}
