package api

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/teamspace/teamspace-server/internal/models"
	"github.com/teamspace/teamspace-server/internal/storage"
)

func TestWorkspaceCRUD(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	host := env.seedTenant(t, "acme")
	user := env.seedUser(t, "acme", "alice", "alice@acme.test", "hunter22")
	token := env.token(t, user, "acme")

	rec := env.do(t, http.MethodPost, "/api/v1/workspaces/", host, token, map[string]interface{}{
		"name": "Engineering",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var workspace models.Workspace
	decodeBody(t, rec, &workspace)
	require.NotZero(t, workspace.ID)
	require.Equal(t, "Engineering", workspace.Name)

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/workspaces/%d/", workspace.ID), host, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPut, fmt.Sprintf("/api/v1/workspaces/%d/", workspace.ID), host, token, map[string]interface{}{
		"name": "Platform",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	got, err := env.store.GetWorkspace(ctx, "acme", workspace.ID)
	require.NoError(t, err)
	require.Equal(t, "Platform", got.Name)

	rec = env.do(t, http.MethodGet, "/api/v1/workspaces/", host, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listResp struct {
		Workspaces []*models.Workspace `json:"workspaces"`
		Total      int64               `json:"total"`
	}
	decodeBody(t, rec, &listResp)
	require.Equal(t, int64(1), listResp.Total)

	rec = env.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/workspaces/%d/", workspace.ID), host, token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	_, err = env.store.GetWorkspace(ctx, "acme", workspace.ID)
	require.Equal(t, storage.ErrNotFound, err)
}

func TestCreateWorkspaceMissingName(t *testing.T) {
	env := newTestEnv(t)
	host := env.seedTenant(t, "acme")
	user := env.seedUser(t, "acme", "alice", "alice@acme.test", "hunter22")
	token := env.token(t, user, "acme")

	rec := env.do(t, http.MethodPost, "/api/v1/workspaces/", host, token, map[string]interface{}{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListWorkspaceTeams(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	host := env.seedTenant(t, "acme")
	user := env.seedUser(t, "acme", "alice", "alice@acme.test", "hunter22")
	token := env.token(t, user, "acme")

	workspace := &models.Workspace{Name: "Engineering"}
	require.NoError(t, env.store.CreateWorkspace(ctx, "acme", workspace))
	other := &models.Workspace{Name: "Design"}
	require.NoError(t, env.store.CreateWorkspace(ctx, "acme", other))

	team := &models.Team{Name: "Backend"}
	require.NoError(t, env.store.CreateTeam(ctx, "acme", team))
	require.NoError(t, env.store.AddTeamWorkspace(ctx, "acme", team.ID, workspace.ID))

	rec := env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/workspaces/%d/teams", workspace.ID), host, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Teams []*models.Team `json:"teams"`
	}
	decodeBody(t, rec, &resp)
	require.Len(t, resp.Teams, 1)
	require.Equal(t, "Backend", resp.Teams[0].Name)

	// The unlinked workspace reports no teams
	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/workspaces/%d/teams", other.ID), host, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &resp)
	require.Empty(t, resp.Teams)
}

func TestListWorkspaceTeamsUnknownWorkspace(t *testing.T) {
	env := newTestEnv(t)
	host := env.seedTenant(t, "acme")
	user := env.seedUser(t, "acme", "alice", "alice@acme.test", "hunter22")
	token := env.token(t, user, "acme")

	rec := env.do(t, http.MethodGet, "/api/v1/workspaces/9999/teams", host, token, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
