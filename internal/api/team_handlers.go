package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/teamspace/teamspace-server/internal/models"
	"github.com/teamspace/teamspace-server/internal/storage"
)

// ========== Team handlers ==========

// HandleListTeams lists teams with users and workspaces expanded
func (s *RESTServer) HandleListTeams(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	schema := tenantSchema(ctx)
	limit, offset := pagination(r)

	teams, total, err := s.store.ListTeams(ctx, schema, limit, offset)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"teams": teams,
		"total": total,
	})
}

// teamRequest is the write representation of a team: relation sets are
// given as identifier lists
type teamRequest struct {
	Name         string  `json:"name" validate:"required,max=255"`
	Description  string  `json:"description"`
	UserIDs      []int64 `json:"user_ids"`
	WorkspaceIDs []int64 `json:"workspace_ids"`
}

// checkTeamRelations verifies every referenced profile and workspace
// exists before any membership write
func (s *RESTServer) checkTeamRelations(w http.ResponseWriter, r *http.Request, req *teamRequest) bool {
	ctx := r.Context()
	schema := tenantSchema(ctx)

	for _, profileID := range req.UserIDs {
		if _, err := s.store.GetProfile(ctx, schema, profileID); err != nil {
			if err == storage.ErrNotFound {
				s.respondFieldError(w, "user_ids", fmt.Sprintf("profile %d does not exist", profileID))
				return false
			}
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return false
		}
	}

	for _, workspaceID := range req.WorkspaceIDs {
		if _, err := s.store.GetWorkspace(ctx, schema, workspaceID); err != nil {
			if err == storage.ErrNotFound {
				s.respondFieldError(w, "workspace_ids", fmt.Sprintf("workspace %d does not exist", workspaceID))
				return false
			}
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return false
		}
	}

	return true
}

// HandleCreateTeam creates a team with its relation sets
func (s *RESTServer) HandleCreateTeam(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	schema := tenantSchema(ctx)

	var req teamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !s.checkTeamRelations(w, r, &req) {
		return
	}

	team := &models.Team{
		Name:        req.Name,
		Description: req.Description,
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := tx.CreateTeam(ctx, schema, team); err != nil {
		tx.Rollback()
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := tx.SetTeamUsers(ctx, schema, team.ID, req.UserIDs); err != nil {
		tx.Rollback()
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := tx.SetTeamWorkspaces(ctx, schema, team.ID, req.WorkspaceIDs); err != nil {
		tx.Rollback()
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := tx.Commit(); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	team, err = s.store.GetTeam(ctx, schema, team.ID)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusCreated, team)
}

// HandleGetTeam gets a team with relations expanded
func (s *RESTServer) HandleGetTeam(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	schema := tenantSchema(ctx)

	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid team id")
		return
	}

	team, err := s.store.GetTeam(ctx, schema, id)
	if err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "team not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, team)
}

// HandleUpdateTeam updates a team and replaces its relation sets
func (s *RESTServer) HandleUpdateTeam(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	schema := tenantSchema(ctx)

	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid team id")
		return
	}

	var req teamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	team, err := s.store.GetTeam(ctx, schema, id)
	if err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "team not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if !s.checkTeamRelations(w, r, &req) {
		return
	}

	team.Name = req.Name
	team.Description = req.Description

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := tx.UpdateTeam(ctx, schema, team); err != nil {
		tx.Rollback()
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := tx.SetTeamUsers(ctx, schema, team.ID, req.UserIDs); err != nil {
		tx.Rollback()
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := tx.SetTeamWorkspaces(ctx, schema, team.ID, req.WorkspaceIDs); err != nil {
		tx.Rollback()
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := tx.Commit(); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	team, err = s.store.GetTeam(ctx, schema, team.ID)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, team)
}

// HandleDeleteTeam deletes a team
func (s *RESTServer) HandleDeleteTeam(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	schema := tenantSchema(ctx)

	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid team id")
		return
	}

	if err := s.store.DeleteTeam(ctx, schema, id); err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "team not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ========== Team membership handlers ==========

// getTeamForAction loads the team addressed by a membership action
func (s *RESTServer) getTeamForAction(w http.ResponseWriter, r *http.Request) (*models.Team, bool) {
	ctx := r.Context()
	schema := tenantSchema(ctx)

	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid team id")
		return nil, false
	}

	team, err := s.store.GetTeam(ctx, schema, id)
	if err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "team not found")
			return nil, false
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}

	return team, true
}

// HandleAddTeamUser adds a profile to the team; re-adding is a no-op
func (s *RESTServer) HandleAddTeamUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	schema := tenantSchema(ctx)

	team, ok := s.getTeamForAction(w, r)
	if !ok {
		return
	}

	var req struct {
		UserID int64 `json:"user_id" validate:"required"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := s.store.GetProfile(ctx, schema, req.UserID)
	if err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "User profile not found.")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := s.store.AddTeamUser(ctx, schema, team.ID, profile.ID); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("User %s added to team %s", profile.User.Username, team.Name),
	})
}

// HandleRemoveTeamUser removes a profile from the team; removing a
// non-member is a no-op
func (s *RESTServer) HandleRemoveTeamUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	schema := tenantSchema(ctx)

	team, ok := s.getTeamForAction(w, r)
	if !ok {
		return
	}

	var req struct {
		UserID int64 `json:"user_id" validate:"required"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := s.store.GetProfile(ctx, schema, req.UserID)
	if err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "User profile not found.")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := s.store.RemoveTeamUser(ctx, schema, team.ID, profile.ID); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("User %s removed from team %s", profile.User.Username, team.Name),
	})
}

// HandleAddTeamWorkspace links a workspace to the team
func (s *RESTServer) HandleAddTeamWorkspace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	schema := tenantSchema(ctx)

	team, ok := s.getTeamForAction(w, r)
	if !ok {
		return
	}

	var req struct {
		WorkspaceID int64 `json:"workspace_id" validate:"required"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	workspace, err := s.store.GetWorkspace(ctx, schema, req.WorkspaceID)
	if err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "Workspace not found.")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := s.store.AddTeamWorkspace(ctx, schema, team.ID, workspace.ID); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Workspace %s added to team %s", workspace.Name, team.Name),
	})
}

// HandleRemoveTeamWorkspace unlinks a workspace from the team
func (s *RESTServer) HandleRemoveTeamWorkspace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	schema := tenantSchema(ctx)

	team, ok := s.getTeamForAction(w, r)
	if !ok {
		return
	}

	var req struct {
		WorkspaceID int64 `json:"workspace_id" validate:"required"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	workspace, err := s.store.GetWorkspace(ctx, schema, req.WorkspaceID)
	if err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "Workspace not found.")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := s.store.RemoveTeamWorkspace(ctx, schema, team.ID, workspace.ID); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Workspace %s removed from team %s", workspace.Name, team.Name),
	})
}
