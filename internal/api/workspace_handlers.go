package api

import (
	"encoding/json"
	"net/http"

	"github.com/teamspace/teamspace-server/internal/models"
	"github.com/teamspace/teamspace-server/internal/storage"
)

// ========== Workspace handlers ==========

// HandleListWorkspaces lists workspaces
func (s *RESTServer) HandleListWorkspaces(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	schema := tenantSchema(ctx)
	limit, offset := pagination(r)

	workspaces, total, err := s.store.ListWorkspaces(ctx, schema, limit, offset)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"workspaces": workspaces,
		"total":      total,
	})
}

// HandleCreateWorkspace creates a workspace
func (s *RESTServer) HandleCreateWorkspace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	schema := tenantSchema(ctx)

	var req struct {
		Name string `json:"name" validate:"required,max=255"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	workspace := &models.Workspace{Name: req.Name}

	if err := s.store.CreateWorkspace(ctx, schema, workspace); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusCreated, workspace)
}

// HandleGetWorkspace gets a workspace
func (s *RESTServer) HandleGetWorkspace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	schema := tenantSchema(ctx)

	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid workspace id")
		return
	}

	workspace, err := s.store.GetWorkspace(ctx, schema, id)
	if err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "workspace not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, workspace)
}

// HandleUpdateWorkspace updates a workspace
func (s *RESTServer) HandleUpdateWorkspace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	schema := tenantSchema(ctx)

	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid workspace id")
		return
	}

	var req struct {
		Name string `json:"name" validate:"required,max=255"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	workspace, err := s.store.GetWorkspace(ctx, schema, id)
	if err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "workspace not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	workspace.Name = req.Name

	if err := s.store.UpdateWorkspace(ctx, schema, workspace); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, workspace)
}

// HandleDeleteWorkspace deletes a workspace
func (s *RESTServer) HandleDeleteWorkspace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	schema := tenantSchema(ctx)

	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid workspace id")
		return
	}

	if err := s.store.DeleteWorkspace(ctx, schema, id); err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "workspace not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleListWorkspaceTeams lists the teams linked to a workspace
func (s *RESTServer) HandleListWorkspaceTeams(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	schema := tenantSchema(ctx)

	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid workspace id")
		return
	}

	if _, err := s.store.GetWorkspace(ctx, schema, id); err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "workspace not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	teams, err := s.store.ListWorkspaceTeams(ctx, schema, id)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"teams": teams,
	})
}
