package adapter

import (
	"context"
	"database/sql"
	"fmt"

	"storefront-sync/internal/features/orders/domain"
)

// MySQLCatalogRepository implements ports.CatalogRepository.
type MySQLCatalogRepository struct {
	db *sql.DB
}

// NewMySQLCatalogRepository creates a new MySQLCatalogRepository.
func NewMySQLCatalogRepository(db *sql.DB) *MySQLCatalogRepository {
	return &MySQLCatalogRepository{db: db}
}

// ListByTenant returns the tenant's products ordered by name, then id.
func (r *MySQLCatalogRepository) ListByTenant(ctx context.Context, tenantID string) ([]domain.CatalogProduct, error) {
	query := `
		SELECT id, tenant_id, name
		FROM catalog_products
		WHERE tenant_id = ?
		ORDER BY name, id`

	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("querying catalog products: %w", err)
	}
	defer rows.Close()

	var products []domain.CatalogProduct
	for rows.Next() {
		var p domain.CatalogProduct
		if err := rows.Scan(&p.ID, &p.TenantID, &p.Name); err != nil {
			return nil, fmt.Errorf("scanning catalog product row: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating catalog product rows: %w", err)
	}

	return products, nil
}

// MySQLCostLotRepository implements ports.CostLotRepository.
type MySQLCostLotRepository struct {
	db *sql.DB
}

// NewMySQLCostLotRepository creates a new MySQLCostLotRepository.
func NewMySQLCostLotRepository(db *sql.DB) *MySQLCostLotRepository {
	return &MySQLCostLotRepository{db: db}
}

// ListByTenant returns every inventory lot of the tenant.
func (r *MySQLCostLotRepository) ListByTenant(ctx context.Context, tenantID string) ([]domain.CostLot, error) {
	query := `
		SELECT id, product_id, cost_per_unit
		FROM cost_lots
		WHERE tenant_id = ?`

	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("querying cost lots: %w", err)
	}
	defer rows.Close()

	var lots []domain.CostLot
	for rows.Next() {
		var l domain.CostLot
		if err := rows.Scan(&l.ID, &l.ProductID, &l.CostPerUnit); err != nil {
			return nil, fmt.Errorf("scanning cost lot row: %w", err)
		}
		lots = append(lots, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cost lot rows: %w", err)
	}

	return lots, nil
}
