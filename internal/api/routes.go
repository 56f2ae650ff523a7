package api

import (
	"github.com/go-chi/chi/v5"
)

// setupAPIRoutes sets up API v1 routes
func (s *RESTServer) setupAPIRoutes(r chi.Router) {
	// Health check
	r.Get("/health", s.HandleHealth)
	r.Get("/", s.HandleRoot)

	// Tenant self-registration (public, shared schema)
	r.Post("/register", s.HandleRegisterTenant)

	// Tenants (shared schema)
	r.Route("/tenants", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/", s.HandleListTenants)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.HandleGetTenant)
			r.Put("/", s.HandleUpdateTenant)
			r.Delete("/", s.HandleDeleteTenant)
		})
	})

	// Tenant-scoped routes, resolved from the request host
	r.Group(func(r chi.Router) {
		r.Use(s.tenantMiddleware)

		// Auth routes (public)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", s.HandleLogin)
			r.Post("/refresh", s.HandleRefresh)
		})

		// User registration and activation (public)
		r.Route("/users", func(r chi.Router) {
			r.Post("/register", s.HandleRegisterUser)
			r.Get("/activate/{user_id}", s.HandleActivateUser)
		})

		// Profiles
		r.Route("/profiles", func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Get("/", s.HandleListProfiles)
			r.Post("/", s.HandleCreateProfile)
			r.Get("/me", s.HandleGetOwnProfile)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.HandleGetProfile)
				r.Put("/", s.HandleUpdateProfile)
				r.Delete("/", s.HandleDeleteProfile)
			})
		})

		// Workspaces
		r.Route("/workspaces", func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Get("/", s.HandleListWorkspaces)
			r.Post("/", s.HandleCreateWorkspace)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.HandleGetWorkspace)
				r.Put("/", s.HandleUpdateWorkspace)
				r.Delete("/", s.HandleDeleteWorkspace)
				r.Get("/teams", s.HandleListWorkspaceTeams)
			})
		})

		// Teams
		r.Route("/teams", func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Get("/", s.HandleListTeams)
			r.Post("/", s.HandleCreateTeam)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.HandleGetTeam)
				r.Put("/", s.HandleUpdateTeam)
				r.Delete("/", s.HandleDeleteTeam)
				r.Post("/add_user", s.HandleAddTeamUser)
				r.Post("/remove_user", s.HandleRemoveTeamUser)
				r.Post("/add_workspace", s.HandleAddTeamWorkspace)
				r.Post("/remove_workspace", s.HandleRemoveTeamWorkspace)
			})
		})
	})
}
