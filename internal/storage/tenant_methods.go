package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/teamspace/teamspace-server/internal/models"
)

// ========== Tenant Methods ==========

// CreateTenant creates a new tenant
func (s *PostgresStore) CreateTenant(ctx context.Context, tenant *models.Tenant) error {
	if tenant.ID == uuid.Nil {
		tenant.ID = uuid.New()
	}

	now := time.Now()
	tenant.CreatedAt = now
	tenant.UpdatedAt = now

	query := `
		INSERT INTO tenants (
			id, created_at, updated_at, schema_name, name, paid_until, on_trail
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)`

	_, err := s.getDB().ExecContext(ctx, query,
		tenant.ID, tenant.CreatedAt, tenant.UpdatedAt, tenant.SchemaName,
		tenant.Name, tenant.PaidUntil, tenant.OnTrail,
	)

	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicateKey
		}
		return err
	}

	return nil
}

// GetTenant gets a tenant by ID
func (s *PostgresStore) GetTenant(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	query := `
		SELECT id, created_at, updated_at, schema_name, name, paid_until, on_trail
		FROM tenants
		WHERE id = $1`

	tenant := &models.Tenant{}
	err := s.getDB().QueryRowContext(ctx, query, id).Scan(
		&tenant.ID, &tenant.CreatedAt, &tenant.UpdatedAt, &tenant.SchemaName,
		&tenant.Name, &tenant.PaidUntil, &tenant.OnTrail,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}

	return tenant, err
}

// GetTenantBySchema gets a tenant by its schema name
func (s *PostgresStore) GetTenantBySchema(ctx context.Context, schema string) (*models.Tenant, error) {
	query := `
		SELECT id, created_at, updated_at, schema_name, name, paid_until, on_trail
		FROM tenants
		WHERE schema_name = $1`

	tenant := &models.Tenant{}
	err := s.getDB().QueryRowContext(ctx, query, schema).Scan(
		&tenant.ID, &tenant.CreatedAt, &tenant.UpdatedAt, &tenant.SchemaName,
		&tenant.Name, &tenant.PaidUntil, &tenant.OnTrail,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}

	return tenant, err
}

// UpdateTenant updates a tenant. The schema name is immutable once
// provisioned.
func (s *PostgresStore) UpdateTenant(ctx context.Context, tenant *models.Tenant) error {
	tenant.UpdatedAt = time.Now()

	query := `
		UPDATE tenants SET
			updated_at = $2, name = $3, paid_until = $4, on_trail = $5
		WHERE id = $1`

	result, err := s.getDB().ExecContext(ctx, query,
		tenant.ID, tenant.UpdatedAt, tenant.Name, tenant.PaidUntil, tenant.OnTrail,
	)

	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteTenant deletes a tenant; its domains go with it. The tenant
// schema itself is left in place.
func (s *PostgresStore) DeleteTenant(ctx context.Context, id uuid.UUID) error {
	result, err := s.getDB().ExecContext(ctx, "DELETE FROM tenants WHERE id = $1", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// ListTenants lists tenants
func (s *PostgresStore) ListTenants(ctx context.Context, limit, offset int) ([]*models.Tenant, int64, error) {
	var count int64
	err := s.getDB().QueryRowContext(ctx, "SELECT COUNT(*) FROM tenants").Scan(&count)
	if err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, created_at, updated_at, schema_name, name, paid_until, on_trail
		FROM tenants
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := s.getDB().QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var tenants []*models.Tenant
	for rows.Next() {
		tenant := &models.Tenant{}
		err := rows.Scan(
			&tenant.ID, &tenant.CreatedAt, &tenant.UpdatedAt, &tenant.SchemaName,
			&tenant.Name, &tenant.PaidUntil, &tenant.OnTrail,
		)
		if err != nil {
			return nil, 0, err
		}
		tenants = append(tenants, tenant)
	}

	return tenants, count, nil
}

// ========== Domain Methods ==========

// CreateDomain creates a new domain record
func (s *PostgresStore) CreateDomain(ctx context.Context, domain *models.Domain) error {
	if domain.ID == uuid.Nil {
		domain.ID = uuid.New()
	}
	domain.CreatedAt = time.Now()

	query := `
		INSERT INTO domains (id, created_at, tenant_id, domain, is_primary)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := s.getDB().ExecContext(ctx, query,
		domain.ID, domain.CreatedAt, domain.TenantID, domain.Domain, domain.IsPrimary,
	)

	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create domain: %w", err)
	}

	return nil
}

// GetDomainByName gets a domain record by hostname
func (s *PostgresStore) GetDomainByName(ctx context.Context, name string) (*models.Domain, error) {
	query := `
		SELECT id, created_at, tenant_id, domain, is_primary
		FROM domains
		WHERE domain = $1`

	domain := &models.Domain{}
	err := s.getDB().QueryRowContext(ctx, query, name).Scan(
		&domain.ID, &domain.CreatedAt, &domain.TenantID, &domain.Domain, &domain.IsPrimary,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}

	return domain, err
}

// ListDomains lists the domains of a tenant, primary first
func (s *PostgresStore) ListDomains(ctx context.Context, tenantID uuid.UUID) ([]*models.Domain, error) {
	query := `
		SELECT id, created_at, tenant_id, domain, is_primary
		FROM domains
		WHERE tenant_id = $1
		ORDER BY is_primary DESC, domain`

	rows, err := s.getDB().QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var domains []*models.Domain
	for rows.Next() {
		domain := &models.Domain{}
		err := rows.Scan(
			&domain.ID, &domain.CreatedAt, &domain.TenantID, &domain.Domain, &domain.IsPrimary,
		)
		if err != nil {
			return nil, err
		}
		domains = append(domains, domain)
	}

	return domains, nil
}
