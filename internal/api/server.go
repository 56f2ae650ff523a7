package api

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/teamspace/teamspace-server/internal/auth"
	"github.com/teamspace/teamspace-server/internal/config"
	"github.com/teamspace/teamspace-server/internal/events"
	"github.com/teamspace/teamspace-server/internal/mail"
	"github.com/teamspace/teamspace-server/internal/storage"
	"github.com/teamspace/teamspace-server/internal/validation"
)

type ctxKey string

const (
	ctxKeyClaims ctxKey = "claims"
	ctxKeyTenant ctxKey = "tenant"
)

// RESTServer represents the REST API server
type RESTServer struct {
	config    *config.Config
	store     storage.Store
	auth      *auth.JWTManager
	validator *validation.Validator
	mailer    mail.Mailer
	events    events.Publisher
	router    chi.Router
	server    *http.Server
}

// NewRESTServer creates a new REST API server
func NewRESTServer(cfg *config.Config, store storage.Store, mailer mail.Mailer, publisher events.Publisher) *RESTServer {
	s := &RESTServer{
		config:    cfg,
		store:     store,
		auth:      auth.NewJWTManager(&cfg.JWT),
		validator: validation.NewValidator(),
		mailer:    mailer,
		events:    publisher,
		router:    chi.NewRouter(),
	}

	s.setupRoutes()

	s.server = &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all routes
func (s *RESTServer) setupRoutes() {
	// Middleware
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		s.setupAPIRoutes(r)
	})
}

// ListenAndServe starts the server
func (s *RESTServer) ListenAndServe(addr string) error {
	s.server.Addr = addr
	log.Info().Str("addr", addr).Msg("Starting REST API server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *RESTServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the router, used by tests
func (s *RESTServer) Handler() http.Handler {
	return s.router
}

// authMiddleware is the authentication middleware
func (s *RESTServer) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Get token from header
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			s.respondError(w, http.StatusUnauthorized, "missing authorization header")
			return
		}

		// Parse Bearer token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			s.respondError(w, http.StatusUnauthorized, "invalid authorization header")
			return
		}

		// Validate token
		claims, err := s.auth.ValidateToken(parts[1])
		if err != nil {
			s.respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		// A token issued for one tenant is not valid on another
		if schema, ok := r.Context().Value(ctxKeyTenant).(string); ok && claims.Schema != "" && claims.Schema != schema {
			s.respondError(w, http.StatusForbidden, "token not valid for this tenant")
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyClaims, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// tenantMiddleware resolves the request host to a tenant schema and
// stores it in the request context. There is no implicit schema
// switching anywhere below this point.
func (s *RESTServer) tenantMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := hostOnly(r.Host)

		domain, err := s.store.GetDomainByName(r.Context(), host)
		if err != nil {
			if err == storage.ErrNotFound {
				s.respondError(w, http.StatusNotFound, "no tenant registered for host "+host)
				return
			}
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}

		tenant, err := s.store.GetTenant(r.Context(), domain.TenantID)
		if err != nil {
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyTenant, tenant.SchemaName)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// tenantSchema reads the resolved tenant schema from the context
func tenantSchema(ctx context.Context) string {
	schema, _ := ctx.Value(ctxKeyTenant).(string)
	return schema
}

// requestClaims reads validated claims from the context
func requestClaims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(ctxKeyClaims).(*auth.Claims)
	return claims
}

// hostOnly strips the port from a request host, handling bracketed
// IPv6 literals
func hostOnly(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return strings.Trim(host, "[]")
}

// subdomain returns the first label of a host
func subdomain(host string) string {
	host = hostOnly(host)
	if i := strings.Index(host, "."); i != -1 {
		return host[:i]
	}
	return host
}
