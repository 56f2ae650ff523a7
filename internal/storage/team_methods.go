package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/teamspace/teamspace-server/internal/models"
)

// ========== Team Methods ==========

// CreateTeam creates a new team
func (s *PostgresStore) CreateTeam(ctx context.Context, schema string, team *models.Team) error {
	teams, err := table(schema, "teams")
	if err != nil {
		return err
	}

	team.CreatedAt = time.Now()

	query := `INSERT INTO ` + teams + ` (created_at, name, description) VALUES ($1, $2, $3) RETURNING id`

	return s.getDB().QueryRowContext(ctx, query,
		team.CreatedAt, team.Name, team.Description,
	).Scan(&team.ID)
}

// GetTeam gets a team by ID with users and workspaces expanded
func (s *PostgresStore) GetTeam(ctx context.Context, schema string, id int64) (*models.Team, error) {
	teams, err := table(schema, "teams")
	if err != nil {
		return nil, err
	}

	query := `SELECT id, created_at, name, description FROM ` + teams + ` WHERE id = $1`

	team := &models.Team{}
	err = s.getDB().QueryRowContext(ctx, query, id).Scan(
		&team.ID, &team.CreatedAt, &team.Name, &team.Description,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.loadTeamRelations(ctx, schema, team); err != nil {
		return nil, err
	}

	return team, nil
}

// loadTeamRelations fills the team's profile and workspace sets
func (s *PostgresStore) loadTeamRelations(ctx context.Context, schema string, team *models.Team) error {
	teamUsers, err := table(schema, "team_users")
	if err != nil {
		return err
	}
	profiles, err := table(schema, "profiles")
	if err != nil {
		return err
	}
	users, err := table(schema, "users")
	if err != nil {
		return err
	}

	query := `
		SELECT ` + profileColumns + `
		FROM ` + profiles + ` p
		JOIN ` + users + ` u ON u.id = p.user_id
		JOIN ` + teamUsers + ` tu ON tu.profile_id = p.id
		WHERE tu.team_id = $1
		ORDER BY p.id`

	rows, err := s.getDB().QueryContext(ctx, query, team.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	team.Users = []*models.Profile{}
	for rows.Next() {
		profile, err := scanProfileRow(rows.Scan)
		if err != nil {
			return err
		}
		team.Users = append(team.Users, profile)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	teamWorkspaces, err := table(schema, "team_workspaces")
	if err != nil {
		return err
	}
	workspaces, err := table(schema, "workspaces")
	if err != nil {
		return err
	}

	query = `
		SELECT w.id, w.created_at, w.name
		FROM ` + workspaces + ` w
		JOIN ` + teamWorkspaces + ` tw ON tw.workspace_id = w.id
		WHERE tw.team_id = $1
		ORDER BY w.id`

	wsRows, err := s.getDB().QueryContext(ctx, query, team.ID)
	if err != nil {
		return err
	}
	defer wsRows.Close()

	team.Workspaces = []*models.Workspace{}
	for wsRows.Next() {
		workspace := &models.Workspace{}
		if err := wsRows.Scan(&workspace.ID, &workspace.CreatedAt, &workspace.Name); err != nil {
			return err
		}
		team.Workspaces = append(team.Workspaces, workspace)
	}

	return wsRows.Err()
}

// UpdateTeam updates team fields; membership changes go through the
// membership methods
func (s *PostgresStore) UpdateTeam(ctx context.Context, schema string, team *models.Team) error {
	teams, err := table(schema, "teams")
	if err != nil {
		return err
	}

	result, err := s.getDB().ExecContext(ctx,
		`UPDATE `+teams+` SET name = $2, description = $3 WHERE id = $1`,
		team.ID, team.Name, team.Description,
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

// DeleteTeam deletes a team and its membership rows
func (s *PostgresStore) DeleteTeam(ctx context.Context, schema string, id int64) error {
	teams, err := table(schema, "teams")
	if err != nil {
		return err
	}

	result, err := s.getDB().ExecContext(ctx, `DELETE FROM `+teams+` WHERE id = $1`, id)
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

// ListTeams lists teams with relations expanded
func (s *PostgresStore) ListTeams(ctx context.Context, schema string, limit, offset int) ([]*models.Team, int64, error) {
	teams, err := table(schema, "teams")
	if err != nil {
		return nil, 0, err
	}

	var count int64
	if err := s.getDB().QueryRowContext(ctx, `SELECT COUNT(*) FROM `+teams).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, created_at, name, description FROM ` + teams + ` ORDER BY id LIMIT $1 OFFSET $2`

	rows, err := s.getDB().QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []*models.Team
	for rows.Next() {
		team := &models.Team{}
		if err := rows.Scan(&team.ID, &team.CreatedAt, &team.Name, &team.Description); err != nil {
			return nil, 0, err
		}
		result = append(result, team)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for _, team := range result {
		if err := s.loadTeamRelations(ctx, schema, team); err != nil {
			return nil, 0, err
		}
	}

	return result, count, nil
}

// ========== Team Membership Methods ==========

// AddTeamUser adds a profile to a team; re-adding is a no-op
func (s *PostgresStore) AddTeamUser(ctx context.Context, schema string, teamID, profileID int64) error {
	teamUsers, err := table(schema, "team_users")
	if err != nil {
		return err
	}

	_, err = s.getDB().ExecContext(ctx,
		`INSERT INTO `+teamUsers+` (team_id, profile_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		teamID, profileID,
	)
	return err
}

// RemoveTeamUser removes a profile from a team; removing a non-member
// is a no-op
func (s *PostgresStore) RemoveTeamUser(ctx context.Context, schema string, teamID, profileID int64) error {
	teamUsers, err := table(schema, "team_users")
	if err != nil {
		return err
	}

	_, err = s.getDB().ExecContext(ctx,
		`DELETE FROM `+teamUsers+` WHERE team_id = $1 AND profile_id = $2`,
		teamID, profileID,
	)
	return err
}

// AddTeamWorkspace links a workspace to a team; re-adding is a no-op
func (s *PostgresStore) AddTeamWorkspace(ctx context.Context, schema string, teamID, workspaceID int64) error {
	teamWorkspaces, err := table(schema, "team_workspaces")
	if err != nil {
		return err
	}

	_, err = s.getDB().ExecContext(ctx,
		`INSERT INTO `+teamWorkspaces+` (team_id, workspace_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		teamID, workspaceID,
	)
	return err
}

// RemoveTeamWorkspace unlinks a workspace from a team
func (s *PostgresStore) RemoveTeamWorkspace(ctx context.Context, schema string, teamID, workspaceID int64) error {
	teamWorkspaces, err := table(schema, "team_workspaces")
	if err != nil {
		return err
	}

	_, err = s.getDB().ExecContext(ctx,
		`DELETE FROM `+teamWorkspaces+` WHERE team_id = $1 AND workspace_id = $2`,
		teamID, workspaceID,
	)
	return err
}

// SetTeamUsers replaces the team's profile set
func (s *PostgresStore) SetTeamUsers(ctx context.Context, schema string, teamID int64, profileIDs []int64) error {
	teamUsers, err := table(schema, "team_users")
	if err != nil {
		return err
	}

	if _, err := s.getDB().ExecContext(ctx, `DELETE FROM `+teamUsers+` WHERE team_id = $1`, teamID); err != nil {
		return err
	}

	for _, profileID := range profileIDs {
		if err := s.AddTeamUser(ctx, schema, teamID, profileID); err != nil {
			return err
		}
	}

	return nil
}

// SetTeamWorkspaces replaces the team's workspace set
func (s *PostgresStore) SetTeamWorkspaces(ctx context.Context, schema string, teamID int64, workspaceIDs []int64) error {
	teamWorkspaces, err := table(schema, "team_workspaces")
	if err != nil {
		return err
	}

	if _, err := s.getDB().ExecContext(ctx, `DELETE FROM `+teamWorkspaces+` WHERE team_id = $1`, teamID); err != nil {
		return err
	}

	for _, workspaceID := range workspaceIDs {
		if err := s.AddTeamWorkspace(ctx, schema, teamID, workspaceID); err != nil {
			return err
		}
	}

	return nil
}
