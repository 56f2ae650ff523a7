package storage

import (
	"context"
	"fmt"

	"github.com/lib/pq"
)

// InitPublicSchema creates the shared tenant and domain tables
func (s *PostgresStore) InitPublicSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS tenants (
			id UUID PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			schema_name TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			paid_until DATE,
			on_trail BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE TABLE IF NOT EXISTS domains (
			id UUID PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL,
			tenant_id UUID NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
			domain TEXT NOT NULL UNIQUE,
			is_primary BOOLEAN NOT NULL DEFAULT FALSE
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.getDB().ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init public schema: %w", err)
		}
	}

	return nil
}

// EnsureTenantSchema provisions the schema and tables for a tenant.
// Called inside the tenant registration transaction so a failed
// registration leaves no schema behind.
func (s *PostgresStore) EnsureTenantSchema(ctx context.Context, schema string) error {
	if !schemaIdentRe.MatchString(schema) {
		return ErrInvalidData
	}

	q := pq.QuoteIdentifier(schema)

	statements := []string{
		fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, q),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.users (
			id BIGSERIAL PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			username TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL UNIQUE,
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT FALSE
		)`, q),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.profiles (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL UNIQUE REFERENCES %s.users(id) ON DELETE CASCADE,
			phone_no TEXT UNIQUE,
			profile_pic TEXT
		)`, q, q),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.workspaces (
			id BIGSERIAL PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL,
			name TEXT NOT NULL
		)`, q),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.teams (
			id BIGSERIAL PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT ''
		)`, q),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.team_users (
			team_id BIGINT NOT NULL REFERENCES %s.teams(id) ON DELETE CASCADE,
			profile_id BIGINT NOT NULL REFERENCES %s.profiles(id) ON DELETE CASCADE,
			PRIMARY KEY (team_id, profile_id)
		)`, q, q, q),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.team_workspaces (
			team_id BIGINT NOT NULL REFERENCES %s.teams(id) ON DELETE CASCADE,
			workspace_id BIGINT NOT NULL REFERENCES %s.workspaces(id) ON DELETE CASCADE,
			PRIMARY KEY (team_id, workspace_id)
		)`, q, q, q),
	}

	for _, stmt := range statements {
		if _, err := s.getDB().ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("provision tenant schema %s: %w", schema, err)
		}
	}

	return nil
}
