package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/teamspace/teamspace-server/internal/models"
)

// ========== Profile Methods ==========

// CreateProfile creates a profile for an existing user
func (s *PostgresStore) CreateProfile(ctx context.Context, schema string, profile *models.Profile) error {
	profiles, err := table(schema, "profiles")
	if err != nil {
		return err
	}

	query := `
		INSERT INTO ` + profiles + ` (user_id, phone_no, profile_pic)
		VALUES ($1, $2, $3) RETURNING id`

	err = s.getDB().QueryRowContext(ctx, query,
		profile.UserID, profile.PhoneNo, profile.ProfilePic,
	).Scan(&profile.ID)

	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicateKey
		}
		return err
	}

	return nil
}

const profileColumns = `p.id, p.user_id, p.phone_no, p.profile_pic,
						u.id, u.created_at, u.updated_at, u.username, u.email,
						u.first_name, u.last_name, u.password_hash, u.is_active`

func scanProfileRow(scan func(dest ...interface{}) error) (*models.Profile, error) {
	profile := &models.Profile{User: &models.User{}}
	u := profile.User
	err := scan(
		&profile.ID, &profile.UserID, &profile.PhoneNo, &profile.ProfilePic,
		&u.ID, &u.CreatedAt, &u.UpdatedAt, &u.Username, &u.Email,
		&u.FirstName, &u.LastName, &u.PasswordHash, &u.IsActive,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return profile, nil
}

func (s *PostgresStore) getProfileWhere(ctx context.Context, schema, where string, arg interface{}) (*models.Profile, error) {
	profiles, err := table(schema, "profiles")
	if err != nil {
		return nil, err
	}
	users, err := table(schema, "users")
	if err != nil {
		return nil, err
	}

	query := `
		SELECT ` + profileColumns + `
		FROM ` + profiles + ` p
		JOIN ` + users + ` u ON u.id = p.user_id
		WHERE ` + where

	row := s.getDB().QueryRowContext(ctx, query, arg)
	return scanProfileRow(row.Scan)
}

// GetProfile gets a profile by ID with its user expanded
func (s *PostgresStore) GetProfile(ctx context.Context, schema string, id int64) (*models.Profile, error) {
	return s.getProfileWhere(ctx, schema, "p.id = $1", id)
}

// GetProfileByUser gets the profile linked to a user
func (s *PostgresStore) GetProfileByUser(ctx context.Context, schema string, userID int64) (*models.Profile, error) {
	return s.getProfileWhere(ctx, schema, "p.user_id = $1", userID)
}

// GetProfileByPhone gets a profile by phone number
func (s *PostgresStore) GetProfileByPhone(ctx context.Context, schema, phone string) (*models.Profile, error) {
	return s.getProfileWhere(ctx, schema, "p.phone_no = $1", phone)
}

// UpdateProfile updates profile fields; the linked user is updated
// through UpdateUser
func (s *PostgresStore) UpdateProfile(ctx context.Context, schema string, profile *models.Profile) error {
	profiles, err := table(schema, "profiles")
	if err != nil {
		return err
	}

	query := `
		UPDATE ` + profiles + ` SET phone_no = $2, profile_pic = $3
		WHERE id = $1`

	result, err := s.getDB().ExecContext(ctx, query,
		profile.ID, profile.PhoneNo, profile.ProfilePic,
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

// DeleteProfile deletes a profile and its user
func (s *PostgresStore) DeleteProfile(ctx context.Context, schema string, id int64) error {
	profile, err := s.GetProfile(ctx, schema, id)
	if err != nil {
		return err
	}

	// Deleting the user cascades to the profile row
	return s.DeleteUser(ctx, schema, profile.UserID)
}

// ListProfiles lists profiles with users expanded, optionally filtered
// by username
func (s *PostgresStore) ListProfiles(ctx context.Context, schema, username string, limit, offset int) ([]*models.Profile, int64, error) {
	profiles, err := table(schema, "profiles")
	if err != nil {
		return nil, 0, err
	}
	users, err := table(schema, "users")
	if err != nil {
		return nil, 0, err
	}

	var args []interface{}
	where := ""
	if username != "" {
		where = ` WHERE u.username = $1`
		args = append(args, username)
	}

	countQuery := `SELECT COUNT(*) FROM ` + profiles + ` p JOIN ` + users + ` u ON u.id = p.user_id` + where

	var count int64
	if err := s.getDB().QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + profileColumns + `
		FROM ` + profiles + ` p
		JOIN ` + users + ` u ON u.id = p.user_id` + where +
		fmt.Sprintf(` ORDER BY p.id LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.getDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []*models.Profile
	for rows.Next() {
		profile, err := scanProfileRow(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, profile)
	}

	return result, count, nil
}
