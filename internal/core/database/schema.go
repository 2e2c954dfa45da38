package database

import (
	"context"
	"database/sql"
	"fmt"
)

const createContactsSQL = `
CREATE TABLE IF NOT EXISTS contacts (
    id CHAR(36) PRIMARY KEY,
    tenant_id VARCHAR(64) NOT NULL,
    name VARCHAR(255) NOT NULL,
    email VARCHAR(255) NULL,
    phone VARCHAR(64) NULL,
    type VARCHAR(32) NOT NULL,
    address VARCHAR(512) NULL,
    notes TEXT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    INDEX idx_contacts_tenant_email (tenant_id, email)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

const createCatalogProductsSQL = `
CREATE TABLE IF NOT EXISTS catalog_products (
    id CHAR(36) PRIMARY KEY,
    tenant_id VARCHAR(64) NOT NULL,
    name VARCHAR(255) NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    INDEX idx_catalog_tenant (tenant_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

const createCostLotsSQL = `
CREATE TABLE IF NOT EXISTS cost_lots (
    id CHAR(36) PRIMARY KEY,
    tenant_id VARCHAR(64) NOT NULL,
    product_id CHAR(36) NOT NULL,
    cost_per_unit DECIMAL(14,4) NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    INDEX idx_lots_tenant_product (tenant_id, product_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

const createSalesOrdersSQL = `
CREATE TABLE IF NOT EXISTS sales_orders (
    id CHAR(36) PRIMARY KEY,
    tenant_id VARCHAR(64) NOT NULL,
    contact_id CHAR(36) NOT NULL,
    status VARCHAR(32) NOT NULL,
    payment_status VARCHAR(32) NOT NULL,
    total_amount DECIMAL(14,4) NOT NULL,
    amount_paid DECIMAL(14,4) NOT NULL DEFAULT 0,
    shipping_cost DECIMAL(14,4) NOT NULL DEFAULT 0,
    merchant_fee DECIMAL(14,4) NOT NULL DEFAULT 0,
    cogs_amount DECIMAL(14,4) NOT NULL DEFAULT 0,
    commission_amount DECIMAL(14,4) NOT NULL DEFAULT 0,
    profit_amount DECIMAL(14,4) NOT NULL DEFAULT 0,
    shipping_address VARCHAR(512) NULL,
    notes TEXT NULL,
    order_source VARCHAR(32) NOT NULL,
    payment_method VARCHAR(128) NULL,
    payment_date DATETIME NULL,
    external_order_id BIGINT NOT NULL,
    external_order_number VARCHAR(64) NOT NULL,
    external_status VARCHAR(32) NOT NULL,
    external_created_at DATETIME NULL,
    external_modified_at DATETIME NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
    UNIQUE KEY uk_sales_orders_external (tenant_id, external_order_id),
    INDEX idx_sales_orders_modified (tenant_id, external_modified_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

const createSalesOrderItemsSQL = `
CREATE TABLE IF NOT EXISTS sales_order_items (
    id CHAR(36) PRIMARY KEY,
    sales_order_id CHAR(36) NOT NULL,
    product_id CHAR(36) NOT NULL,
    quantity INT NOT NULL,
    unit_price DECIMAL(14,4) NOT NULL,
    INDEX idx_items_order (sales_order_id),
    FOREIGN KEY (sales_order_id) REFERENCES sales_orders(id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// Schema lists the table definitions in creation order.
var Schema = []string{
	createContactsSQL,
	createCatalogProductsSQL,
	createCostLotsSQL,
	createSalesOrdersSQL,
	createSalesOrderItemsSQL,
}

// Migrate creates any missing table. Statements are idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range Schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
