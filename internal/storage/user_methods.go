package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/teamspace/teamspace-server/internal/models"
)

// ========== User Methods ==========

// CreateUser creates a new user inside a tenant schema
func (s *PostgresStore) CreateUser(ctx context.Context, schema string, user *models.User) error {
	users, err := table(schema, "users")
	if err != nil {
		return err
	}

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO ` + users + ` (
			created_at, updated_at, username, email, first_name, last_name,
			password_hash, is_active
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		) RETURNING id`

	err = s.getDB().QueryRowContext(ctx, query,
		user.CreatedAt, user.UpdatedAt, user.Username, user.Email,
		user.FirstName, user.LastName, user.PasswordHash, user.IsActive,
	).Scan(&user.ID)

	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicateKey
		}
		return err
	}

	return nil
}

const userColumns = `id, created_at, updated_at, username, email, first_name,
					 last_name, password_hash, is_active`

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.CreatedAt, &user.UpdatedAt, &user.Username, &user.Email,
		&user.FirstName, &user.LastName, &user.PasswordHash, &user.IsActive,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

// GetUser gets a user by ID
func (s *PostgresStore) GetUser(ctx context.Context, schema string, id int64) (*models.User, error) {
	users, err := table(schema, "users")
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + ` FROM ` + users + ` WHERE id = $1`
	return scanUser(s.getDB().QueryRowContext(ctx, query, id))
}

// GetUserByUsername gets a user by username
func (s *PostgresStore) GetUserByUsername(ctx context.Context, schema, username string) (*models.User, error) {
	users, err := table(schema, "users")
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + ` FROM ` + users + ` WHERE username = $1`
	return scanUser(s.getDB().QueryRowContext(ctx, query, username))
}

// GetUserByEmail gets a user by email
func (s *PostgresStore) GetUserByEmail(ctx context.Context, schema, email string) (*models.User, error) {
	users, err := table(schema, "users")
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + ` FROM ` + users + ` WHERE email = $1`
	return scanUser(s.getDB().QueryRowContext(ctx, query, email))
}

// UpdateUser updates a user
func (s *PostgresStore) UpdateUser(ctx context.Context, schema string, user *models.User) error {
	users, err := table(schema, "users")
	if err != nil {
		return err
	}

	user.UpdatedAt = time.Now()

	query := `
		UPDATE ` + users + ` SET
			updated_at = $2, username = $3, email = $4, first_name = $5,
			last_name = $6, password_hash = $7, is_active = $8
		WHERE id = $1`

	result, err := s.getDB().ExecContext(ctx, query,
		user.ID, user.UpdatedAt, user.Username, user.Email, user.FirstName,
		user.LastName, user.PasswordHash, user.IsActive,
	)

	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicateKey
		}
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

// DeleteUser deletes a user; the profile follows by cascade
func (s *PostgresStore) DeleteUser(ctx context.Context, schema string, id int64) error {
	users, err := table(schema, "users")
	if err != nil {
		return err
	}

	result, err := s.getDB().ExecContext(ctx, `DELETE FROM `+users+` WHERE id = $1`, id)
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
