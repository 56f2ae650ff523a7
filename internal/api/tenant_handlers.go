package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/go-chi/chi/v5"

	"github.com/teamspace/teamspace-server/internal/events"
	"github.com/teamspace/teamspace-server/internal/models"
	"github.com/teamspace/teamspace-server/internal/storage"
)

// tenantRequest is the write representation of a tenant
type tenantRequest struct {
	SchemaName string `json:"schema_name" validate:"required,schema_name,max=63"`
	Name       string `json:"name" validate:"required,max=255"`
	PaidUntil  string `json:"paid_until"`
	OnTrail    bool   `json:"on_trail"`
}

// parsePaidUntil parses the optional paid_until date
func parsePaidUntil(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// candidateDomain derives the tenant domain from the schema name and
// the requesting host. Any host containing "localhost" collapses to
// plain localhost so local setups resolve.
func candidateDomain(schemaName, host string) string {
	host = hostOnly(host)
	if strings.Contains(host, "localhost") {
		host = "localhost"
	}
	return schemaName + "." + host
}

// HandleRegisterTenant registers a tenant with its primary domain and
// provisions the tenant schema, all in one transaction
func (s *RESTServer) HandleRegisterTenant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req tenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	paidUntil, err := parsePaidUntil(req.PaidUntil)
	if err != nil {
		s.respondFieldError(w, "paid_until", "invalid date, expected YYYY-MM-DD")
		return
	}

	domainName := candidateDomain(req.SchemaName, r.Host)

	// Domain availability check precedes any write
	if _, err := s.store.GetDomainByName(ctx, domainName); err == nil {
		s.respondFieldError(w, "schema_name", "The domain is not available.")
		return
	} else if err != storage.ErrNotFound {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	tenant := &models.Tenant{
		SchemaName: req.SchemaName,
		Name:       req.Name,
		PaidUntil:  paidUntil,
		OnTrail:    req.OnTrail,
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := tx.CreateTenant(ctx, tenant); err != nil {
		tx.Rollback()
		if err == storage.ErrDuplicateKey {
			s.respondFieldError(w, "schema_name", "This schema name is already taken.")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := tx.CreateDomain(ctx, &models.Domain{
		TenantID:  tenant.ID,
		Domain:    domainName,
		IsPrimary: true,
	}); err != nil {
		tx.Rollback()
		if err == storage.ErrDuplicateKey {
			s.respondFieldError(w, "schema_name", "The domain is not available.")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := tx.EnsureTenantSchema(ctx, tenant.SchemaName); err != nil {
		tx.Rollback()
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := tx.Commit(); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.events.Publish(events.SubjectTenantRegistered, map[string]interface{}{
		"tenant_id":   tenant.ID,
		"schema_name": tenant.SchemaName,
		"domain":      domainName,
	})

	s.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"tenant": map[string]interface{}{
			"id":     tenant.ID,
			"name":   tenant.Name,
			"domain": domainName,
		},
		"message": "Tenant registered successfully",
	})
}

// ========== Tenant CRUD handlers ==========

// HandleListTenants lists tenants
func (s *RESTServer) HandleListTenants(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit, offset := pagination(r)

	tenants, total, err := s.store.ListTenants(ctx, limit, offset)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"tenants": tenants,
		"total":   total,
	})
}

// HandleGetTenant gets a tenant with its domains expanded
func (s *RESTServer) HandleGetTenant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid tenant id")
		return
	}

	tenant, err := s.store.GetTenant(ctx, id)
	if err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "tenant not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	tenant.Domains, err = s.store.ListDomains(ctx, tenant.ID)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, tenant)
}

// HandleUpdateTenant updates a tenant's name and billing fields. The
// schema name and domains are fixed at registration.
func (s *RESTServer) HandleUpdateTenant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid tenant id")
		return
	}

	var req struct {
		Name      string `json:"name" validate:"required,max=255"`
		PaidUntil string `json:"paid_until"`
		OnTrail   bool   `json:"on_trail"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	paidUntil, err := parsePaidUntil(req.PaidUntil)
	if err != nil {
		s.respondFieldError(w, "paid_until", "invalid date, expected YYYY-MM-DD")
		return
	}

	tenant, err := s.store.GetTenant(ctx, id)
	if err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "tenant not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	tenant.Name = req.Name
	tenant.PaidUntil = paidUntil
	tenant.OnTrail = req.OnTrail

	if err := s.store.UpdateTenant(ctx, tenant); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, tenant)
}

// HandleDeleteTenant deletes a tenant
func (s *RESTServer) HandleDeleteTenant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid tenant id")
		return
	}

	if err := s.store.DeleteTenant(ctx, id); err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "tenant not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
