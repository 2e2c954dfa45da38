package service

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"storefront-sync/internal/features/orders/domain"
	"storefront-sync/internal/features/orders/ports"
)

// dosagePattern matches a trailing dosage token such as " 10mg", " 2.5mcg", " 2vials" or " 10mg/2mg".
var dosagePattern = regexp.MustCompile(`(?i)\s+\d+(?:[.,]\d+)?(?:mg|mcg|iu|ml|vial|kit)(?:/\d+(?:mg|mcg))?s?$`)

// stripDosage removes the trailing dosage token and lower-cases the result.
func stripDosage(name string) string {
	return strings.ToLower(strings.TrimSpace(dosagePattern.ReplaceAllString(name, "")))
}

type productAlias struct {
	storefront string
	catalog    string
}

// productAliases rewrites storefront-specific prefixes to catalog names. First match wins.
var productAliases = []productAlias{
	{storefront: "GLP2-T", catalog: "Tirzepatide"},
	{storefront: "GLP3-R", catalog: "Retatrutide"},
	{storefront: "Tesamorelin/Ipamorelin Blend", catalog: "Tesamorelin/Ipamorelin Blnd"},
}

// applyAlias replaces the first known alias prefix of name.
func applyAlias(name string) string {
	for _, a := range productAliases {
		if strings.HasPrefix(name, a.storefront) {
			return a.catalog + strings.TrimPrefix(name, a.storefront)
		}
	}
	return name
}

// bundleComponents maps bundle listings to the catalog names they contain.
var bundleComponents = map[string][]string{
	"BPC-157 + TB-500 Bundle":                   {"BPC-157 10mg", "TB500 10mg"},
	"MOTS-C 40mg + SS-31 50mg Bundle":           {"MOTS-C 40mg", "SS-31 50mg"},
	"Tesamorelin 10mg + Ipamorelin 10mg Bundle": {"Tesamorelin 10mg", "Ipamorelin 10mg"},
}

type catalogEntry struct {
	product  domain.CatalogProduct
	lower    string
	stripped string
}

// CatalogContext is the tenant catalog loaded once for a single order sync.
// It is owned by that sync call and is not safe for concurrent mutation.
type CatalogContext struct {
	tenantID string
	entries  []catalogEntry
}

// NewCatalogContext indexes products in a stable order: lower-cased name, then id.
func NewCatalogContext(tenantID string, products []domain.CatalogProduct) *CatalogContext {
	entries := make([]catalogEntry, 0, len(products))
	for _, p := range products {
		entries = append(entries, catalogEntry{
			product:  p,
			lower:    strings.ToLower(strings.TrimSpace(p.Name)),
			stripped: stripDosage(p.Name),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].lower != entries[j].lower {
			return entries[i].lower < entries[j].lower
		}
		return entries[i].product.ID < entries[j].product.ID
	})

	return &CatalogContext{tenantID: tenantID, entries: entries}
}

// LoadCatalogContext reads the tenant catalog from the repository.
func LoadCatalogContext(ctx context.Context, repo ports.CatalogRepository, tenantID string) (*CatalogContext, error) {
	products, err := repo.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	return NewCatalogContext(tenantID, products), nil
}

// TenantID returns the tenant the catalog belongs to.
func (c *CatalogContext) TenantID() string {
	return c.tenantID
}

// Len returns the number of products.
func (c *CatalogContext) Len() int {
	return len(c.entries)
}
