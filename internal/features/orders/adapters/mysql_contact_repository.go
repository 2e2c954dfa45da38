package adapter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront-sync/internal/features/orders/domain"

	"github.com/google/uuid"
)

// MySQLContactRepository implements ports.ContactRepository.
type MySQLContactRepository struct {
	db *sql.DB
}

// NewMySQLContactRepository creates a new MySQLContactRepository.
func NewMySQLContactRepository(db *sql.DB) *MySQLContactRepository {
	return &MySQLContactRepository{db: db}
}

// FindByEmail returns the oldest contact with exactly this email in the tenant.
func (r *MySQLContactRepository) FindByEmail(ctx context.Context, tenantID, email string) (*domain.Contact, error) {
	query := `
		SELECT id, tenant_id, name, email, phone, address, type, notes
		FROM contacts
		WHERE tenant_id = ? AND email = ?
		ORDER BY created_at, id
		LIMIT 1`

	var (
		c                             domain.Contact
		emailCol, phone, addr, notes sql.NullString
	)

	err := r.db.QueryRowContext(ctx, query, tenantID, email).Scan(
		&c.ID, &c.TenantID, &c.Name, &emailCol, &phone, &addr, &c.Type, &notes,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrContactNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying contact by email: %w", err)
	}

	c.Email = emailCol.String
	c.Phone = phone.String
	c.Address = addr.String
	c.Notes = notes.String

	return &c, nil
}

// Create inserts a contact, assigning its id.
func (r *MySQLContactRepository) Create(ctx context.Context, c *domain.Contact) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	query := `
		INSERT INTO contacts (id, tenant_id, name, email, phone, type, address, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.TenantID, c.Name, nullString(c.Email), nullString(c.Phone),
		c.Type, nullString(c.Address), nullString(c.Notes),
	)
	if err != nil {
		return fmt.Errorf("inserting contact: %w", err)
	}

	return nil
}
