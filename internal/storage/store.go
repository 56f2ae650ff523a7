package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/teamspace/teamspace-server/internal/models"
)

// Common errors
var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrInvalidData  = errors.New("invalid data")
)

// Store defines the storage interface. Tenant and domain records live in
// the shared schema; every other method takes the tenant schema as an
// explicit parameter, there is no implicit schema switching.
type Store interface {
	// Transaction support
	BeginTx(ctx context.Context) (Store, error)
	Commit() error
	Rollback() error

	// Schema provisioning
	InitPublicSchema(ctx context.Context) error
	EnsureTenantSchema(ctx context.Context, schema string) error

	// Tenant methods (shared schema)
	CreateTenant(ctx context.Context, tenant *models.Tenant) error
	GetTenant(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	GetTenantBySchema(ctx context.Context, schema string) (*models.Tenant, error)
	UpdateTenant(ctx context.Context, tenant *models.Tenant) error
	DeleteTenant(ctx context.Context, id uuid.UUID) error
	ListTenants(ctx context.Context, limit, offset int) ([]*models.Tenant, int64, error)

	// Domain methods (shared schema)
	CreateDomain(ctx context.Context, domain *models.Domain) error
	GetDomainByName(ctx context.Context, name string) (*models.Domain, error)
	ListDomains(ctx context.Context, tenantID uuid.UUID) ([]*models.Domain, error)

	// User methods
	CreateUser(ctx context.Context, schema string, user *models.User) error
	GetUser(ctx context.Context, schema string, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, schema, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, schema, email string) (*models.User, error)
	UpdateUser(ctx context.Context, schema string, user *models.User) error
	DeleteUser(ctx context.Context, schema string, id int64) error

	// Profile methods
	CreateProfile(ctx context.Context, schema string, profile *models.Profile) error
	GetProfile(ctx context.Context, schema string, id int64) (*models.Profile, error)
	GetProfileByUser(ctx context.Context, schema string, userID int64) (*models.Profile, error)
	GetProfileByPhone(ctx context.Context, schema, phone string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, schema string, profile *models.Profile) error
	DeleteProfile(ctx context.Context, schema string, id int64) error
	ListProfiles(ctx context.Context, schema, username string, limit, offset int) ([]*models.Profile, int64, error)

	// Workspace methods
	CreateWorkspace(ctx context.Context, schema string, workspace *models.Workspace) error
	GetWorkspace(ctx context.Context, schema string, id int64) (*models.Workspace, error)
	UpdateWorkspace(ctx context.Context, schema string, workspace *models.Workspace) error
	DeleteWorkspace(ctx context.Context, schema string, id int64) error
	ListWorkspaces(ctx context.Context, schema string, limit, offset int) ([]*models.Workspace, int64, error)
	ListWorkspaceTeams(ctx context.Context, schema string, workspaceID int64) ([]*models.Team, error)

	// Team methods
	CreateTeam(ctx context.Context, schema string, team *models.Team) error
	GetTeam(ctx context.Context, schema string, id int64) (*models.Team, error)
	UpdateTeam(ctx context.Context, schema string, team *models.Team) error
	DeleteTeam(ctx context.Context, schema string, id int64) error
	ListTeams(ctx context.Context, schema string, limit, offset int) ([]*models.Team, int64, error)

	// Team membership, set semantics on both relations
	AddTeamUser(ctx context.Context, schema string, teamID, profileID int64) error
	RemoveTeamUser(ctx context.Context, schema string, teamID, profileID int64) error
	AddTeamWorkspace(ctx context.Context, schema string, teamID, workspaceID int64) error
	RemoveTeamWorkspace(ctx context.Context, schema string, teamID, workspaceID int64) error
	SetTeamUsers(ctx context.Context, schema string, teamID int64, profileIDs []int64) error
	SetTeamWorkspaces(ctx context.Context, schema string, teamID int64, workspaceIDs []int64) error

	// Close the store
	Close() error
}
