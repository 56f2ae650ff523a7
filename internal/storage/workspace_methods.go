package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/teamspace/teamspace-server/internal/models"
)

// ========== Workspace Methods ==========

// CreateWorkspace creates a new workspace
func (s *PostgresStore) CreateWorkspace(ctx context.Context, schema string, workspace *models.Workspace) error {
	workspaces, err := table(schema, "workspaces")
	if err != nil {
		return err
	}

	workspace.CreatedAt = time.Now()

	query := `INSERT INTO ` + workspaces + ` (created_at, name) VALUES ($1, $2) RETURNING id`

	return s.getDB().QueryRowContext(ctx, query,
		workspace.CreatedAt, workspace.Name,
	).Scan(&workspace.ID)
}

// GetWorkspace gets a workspace by ID
func (s *PostgresStore) GetWorkspace(ctx context.Context, schema string, id int64) (*models.Workspace, error) {
	workspaces, err := table(schema, "workspaces")
	if err != nil {
		return nil, err
	}

	query := `SELECT id, created_at, name FROM ` + workspaces + ` WHERE id = $1`

	workspace := &models.Workspace{}
	err = s.getDB().QueryRowContext(ctx, query, id).Scan(
		&workspace.ID, &workspace.CreatedAt, &workspace.Name,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}

	return workspace, err
}

// UpdateWorkspace updates a workspace
func (s *PostgresStore) UpdateWorkspace(ctx context.Context, schema string, workspace *models.Workspace) error {
	workspaces, err := table(schema, "workspaces")
	if err != nil {
		return err
	}

	result, err := s.getDB().ExecContext(ctx,
		`UPDATE `+workspaces+` SET name = $2 WHERE id = $1`,
		workspace.ID, workspace.Name,
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

// DeleteWorkspace deletes a workspace
func (s *PostgresStore) DeleteWorkspace(ctx context.Context, schema string, id int64) error {
	workspaces, err := table(schema, "workspaces")
	if err != nil {
		return err
	}

	result, err := s.getDB().ExecContext(ctx, `DELETE FROM `+workspaces+` WHERE id = $1`, id)
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

// ListWorkspaces lists workspaces
func (s *PostgresStore) ListWorkspaces(ctx context.Context, schema string, limit, offset int) ([]*models.Workspace, int64, error) {
	workspaces, err := table(schema, "workspaces")
	if err != nil {
		return nil, 0, err
	}

	var count int64
	if err := s.getDB().QueryRowContext(ctx, `SELECT COUNT(*) FROM `+workspaces).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, created_at, name FROM ` + workspaces + ` ORDER BY id LIMIT $1 OFFSET $2`

	rows, err := s.getDB().QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []*models.Workspace
	for rows.Next() {
		workspace := &models.Workspace{}
		if err := rows.Scan(&workspace.ID, &workspace.CreatedAt, &workspace.Name); err != nil {
			return nil, 0, err
		}
		result = append(result, workspace)
	}

	return result, count, nil
}

// ListWorkspaceTeams lists the teams linked to a workspace, relations
// expanded
func (s *PostgresStore) ListWorkspaceTeams(ctx context.Context, schema string, workspaceID int64) ([]*models.Team, error) {
	teams, err := table(schema, "teams")
	if err != nil {
		return nil, err
	}
	teamWorkspaces, err := table(schema, "team_workspaces")
	if err != nil {
		return nil, err
	}

	query := `
		SELECT t.id, t.created_at, t.name, t.description
		FROM ` + teams + ` t
		JOIN ` + teamWorkspaces + ` tw ON tw.team_id = t.id
		WHERE tw.workspace_id = $1
		ORDER BY t.id`

	rows, err := s.getDB().QueryContext(ctx, query, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*models.Team
	for rows.Next() {
		team := &models.Team{}
		if err := rows.Scan(&team.ID, &team.CreatedAt, &team.Name, &team.Description); err != nil {
			return nil, err
		}
		result = append(result, team)
	}

	for _, team := range result {
		if err := s.loadTeamRelations(ctx, schema, team); err != nil {
			return nil, err
		}
	}

	return result, nil
}
