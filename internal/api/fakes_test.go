package api

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/teamspace/teamspace-server/internal/config"
	"github.com/teamspace/teamspace-server/internal/models"
	"github.com/teamspace/teamspace-server/internal/storage"
)

// memData holds the fake store's state. Per-tenant entities are keyed
// by schema first, mirroring the explicit tenant-context parameter.
type memData struct {
	tenants        map[uuid.UUID]*models.Tenant
	domains        map[string]*models.Domain
	schemas        map[string]bool
	users          map[string]map[int64]*models.User
	profiles       map[string]map[int64]*models.Profile
	workspaces     map[string]map[int64]*models.Workspace
	teams          map[string]map[int64]*models.Team
	teamUsers      map[string]map[int64]map[int64]bool
	teamWorkspaces map[string]map[int64]map[int64]bool
	nextID         int64
}

func newMemData() *memData {
	return &memData{
		tenants:        make(map[uuid.UUID]*models.Tenant),
		domains:        make(map[string]*models.Domain),
		schemas:        make(map[string]bool),
		users:          make(map[string]map[int64]*models.User),
		profiles:       make(map[string]map[int64]*models.Profile),
		workspaces:     make(map[string]map[int64]*models.Workspace),
		teams:          make(map[string]map[int64]*models.Team),
		teamUsers:      make(map[string]map[int64]map[int64]bool),
		teamWorkspaces: make(map[string]map[int64]map[int64]bool),
		nextID:         0,
	}
}

func (d *memData) clone() *memData {
	c := newMemData()
	c.nextID = d.nextID
	for k, v := range d.tenants {
		t := *v
		c.tenants[k] = &t
	}
	for k, v := range d.domains {
		dom := *v
		c.domains[k] = &dom
	}
	for k, v := range d.schemas {
		c.schemas[k] = v
	}
	for schema, m := range d.users {
		c.users[schema] = make(map[int64]*models.User, len(m))
		for k, v := range m {
			u := *v
			c.users[schema][k] = &u
		}
	}
	for schema, m := range d.profiles {
		c.profiles[schema] = make(map[int64]*models.Profile, len(m))
		for k, v := range m {
			p := *v
			p.User = nil
			c.profiles[schema][k] = &p
		}
	}
	for schema, m := range d.workspaces {
		c.workspaces[schema] = make(map[int64]*models.Workspace, len(m))
		for k, v := range m {
			w := *v
			c.workspaces[schema][k] = &w
		}
	}
	for schema, m := range d.teams {
		c.teams[schema] = make(map[int64]*models.Team, len(m))
		for k, v := range m {
			t := *v
			t.Users = nil
			t.Workspaces = nil
			c.teams[schema][k] = &t
		}
	}
	for schema, m := range d.teamUsers {
		c.teamUsers[schema] = make(map[int64]map[int64]bool, len(m))
		for k, set := range m {
			c.teamUsers[schema][k] = make(map[int64]bool, len(set))
			for id := range set {
				c.teamUsers[schema][k][id] = true
			}
		}
	}
	for schema, m := range d.teamWorkspaces {
		c.teamWorkspaces[schema] = make(map[int64]map[int64]bool, len(m))
		for k, set := range m {
			c.teamWorkspaces[schema][k] = make(map[int64]bool, len(set))
			for id := range set {
				c.teamWorkspaces[schema][k][id] = true
			}
		}
	}
	return c
}

// memStore is an in-memory Store. BeginTx snapshots the state; Commit
// writes the snapshot back, Rollback discards it.
type memStore struct {
	data   *memData
	parent *memStore
}

func newMemStore() *memStore {
	return &memStore{data: newMemData()}
}

func (s *memStore) BeginTx(ctx context.Context) (storage.Store, error) {
	return &memStore{data: s.data.clone(), parent: s}, nil
}

func (s *memStore) Commit() error {
	if s.parent != nil {
		*s.parent.data = *s.data
	}
	return nil
}

func (s *memStore) Rollback() error { return nil }
func (s *memStore) Close() error    { return nil }

func (s *memStore) InitPublicSchema(ctx context.Context) error { return nil }

func (s *memStore) EnsureTenantSchema(ctx context.Context, schema string) error {
	s.data.schemas[schema] = true
	return nil
}

func (s *memStore) nextSeq() int64 {
	s.data.nextID++
	return s.data.nextID
}

// ========== Tenants & domains ==========

func (s *memStore) CreateTenant(ctx context.Context, tenant *models.Tenant) error {
	for _, t := range s.data.tenants {
		if t.SchemaName == tenant.SchemaName {
			return storage.ErrDuplicateKey
		}
	}
	if tenant.ID == uuid.Nil {
		tenant.ID = uuid.New()
	}
	now := time.Now()
	tenant.CreatedAt = now
	tenant.UpdatedAt = now
	t := *tenant
	s.data.tenants[tenant.ID] = &t
	return nil
}

func (s *memStore) GetTenant(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	t, ok := s.data.tenants[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := *t
	return &out, nil
}

func (s *memStore) GetTenantBySchema(ctx context.Context, schema string) (*models.Tenant, error) {
	for _, t := range s.data.tenants {
		if t.SchemaName == schema {
			out := *t
			return &out, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *memStore) UpdateTenant(ctx context.Context, tenant *models.Tenant) error {
	if _, ok := s.data.tenants[tenant.ID]; !ok {
		return storage.ErrNotFound
	}
	tenant.UpdatedAt = time.Now()
	t := *tenant
	s.data.tenants[tenant.ID] = &t
	return nil
}

func (s *memStore) DeleteTenant(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.data.tenants[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.data.tenants, id)
	for name, d := range s.data.domains {
		if d.TenantID == id {
			delete(s.data.domains, name)
		}
	}
	return nil
}

func (s *memStore) ListTenants(ctx context.Context, limit, offset int) ([]*models.Tenant, int64, error) {
	var all []*models.Tenant
	for _, t := range s.data.tenants {
		out := *t
		all = append(all, &out)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].SchemaName < all[j].SchemaName })
	total := int64(len(all))
	if offset > len(all) {
		offset = len(all)
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (s *memStore) CreateDomain(ctx context.Context, domain *models.Domain) error {
	if _, ok := s.data.domains[domain.Domain]; ok {
		return storage.ErrDuplicateKey
	}
	if domain.ID == uuid.Nil {
		domain.ID = uuid.New()
	}
	domain.CreatedAt = time.Now()
	d := *domain
	s.data.domains[domain.Domain] = &d
	return nil
}

func (s *memStore) GetDomainByName(ctx context.Context, name string) (*models.Domain, error) {
	d, ok := s.data.domains[name]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := *d
	return &out, nil
}

func (s *memStore) ListDomains(ctx context.Context, tenantID uuid.UUID) ([]*models.Domain, error) {
	var out []*models.Domain
	for _, d := range s.data.domains {
		if d.TenantID == tenantID {
			c := *d
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsPrimary != out[j].IsPrimary {
			return out[i].IsPrimary
		}
		return out[i].Domain < out[j].Domain
	})
	return out, nil
}

// ========== Users ==========

func (s *memStore) schemaUsers(schema string) map[int64]*models.User {
	if s.data.users[schema] == nil {
		s.data.users[schema] = make(map[int64]*models.User)
	}
	return s.data.users[schema]
}

func (s *memStore) CreateUser(ctx context.Context, schema string, user *models.User) error {
	for _, u := range s.schemaUsers(schema) {
		if u.Username == user.Username || u.Email == user.Email {
			return storage.ErrDuplicateKey
		}
	}
	user.ID = s.nextSeq()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	u := *user
	s.schemaUsers(schema)[user.ID] = &u
	return nil
}

func (s *memStore) GetUser(ctx context.Context, schema string, id int64) (*models.User, error) {
	u, ok := s.schemaUsers(schema)[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (s *memStore) GetUserByUsername(ctx context.Context, schema, username string) (*models.User, error) {
	for _, u := range s.schemaUsers(schema) {
		if u.Username == username {
			out := *u
			return &out, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *memStore) GetUserByEmail(ctx context.Context, schema, email string) (*models.User, error) {
	for _, u := range s.schemaUsers(schema) {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *memStore) UpdateUser(ctx context.Context, schema string, user *models.User) error {
	if _, ok := s.schemaUsers(schema)[user.ID]; !ok {
		return storage.ErrNotFound
	}
	user.UpdatedAt = time.Now()
	u := *user
	s.schemaUsers(schema)[user.ID] = &u
	return nil
}

func (s *memStore) DeleteUser(ctx context.Context, schema string, id int64) error {
	if _, ok := s.schemaUsers(schema)[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.schemaUsers(schema), id)
	for pid, p := range s.schemaProfiles(schema) {
		if p.UserID == id {
			delete(s.schemaProfiles(schema), pid)
		}
	}
	return nil
}

// ========== Profiles ==========

func (s *memStore) schemaProfiles(schema string) map[int64]*models.Profile {
	if s.data.profiles[schema] == nil {
		s.data.profiles[schema] = make(map[int64]*models.Profile)
	}
	return s.data.profiles[schema]
}

func (s *memStore) CreateProfile(ctx context.Context, schema string, profile *models.Profile) error {
	for _, p := range s.schemaProfiles(schema) {
		if p.UserID == profile.UserID {
			return storage.ErrDuplicateKey
		}
		if profile.PhoneNo != nil && p.PhoneNo != nil && *p.PhoneNo == *profile.PhoneNo {
			return storage.ErrDuplicateKey
		}
	}
	profile.ID = s.nextSeq()
	p := *profile
	p.User = nil
	s.schemaProfiles(schema)[profile.ID] = &p
	return nil
}

func (s *memStore) expandProfile(schema string, p *models.Profile) (*models.Profile, error) {
	out := *p
	user, err := s.GetUser(context.Background(), schema, p.UserID)
	if err != nil {
		return nil, err
	}
	out.User = user
	return &out, nil
}

func (s *memStore) GetProfile(ctx context.Context, schema string, id int64) (*models.Profile, error) {
	p, ok := s.schemaProfiles(schema)[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return s.expandProfile(schema, p)
}

func (s *memStore) GetProfileByUser(ctx context.Context, schema string, userID int64) (*models.Profile, error) {
	for _, p := range s.schemaProfiles(schema) {
		if p.UserID == userID {
			return s.expandProfile(schema, p)
		}
	}
	return nil, storage.ErrNotFound
}

func (s *memStore) GetProfileByPhone(ctx context.Context, schema, phone string) (*models.Profile, error) {
	for _, p := range s.schemaProfiles(schema) {
		if p.PhoneNo != nil && *p.PhoneNo == phone {
			return s.expandProfile(schema, p)
		}
	}
	return nil, storage.ErrNotFound
}

func (s *memStore) UpdateProfile(ctx context.Context, schema string, profile *models.Profile) error {
	if _, ok := s.schemaProfiles(schema)[profile.ID]; !ok {
		return storage.ErrNotFound
	}
	p := *profile
	p.User = nil
	s.schemaProfiles(schema)[profile.ID] = &p
	return nil
}

func (s *memStore) DeleteProfile(ctx context.Context, schema string, id int64) error {
	p, ok := s.schemaProfiles(schema)[id]
	if !ok {
		return storage.ErrNotFound
	}
	return s.DeleteUser(ctx, schema, p.UserID)
}

func (s *memStore) ListProfiles(ctx context.Context, schema, username string, limit, offset int) ([]*models.Profile, int64, error) {
	var all []*models.Profile
	for _, p := range s.schemaProfiles(schema) {
		expanded, err := s.expandProfile(schema, p)
		if err != nil {
			return nil, 0, err
		}
		if username != "" && expanded.User.Username != username {
			continue
		}
		all = append(all, expanded)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := int64(len(all))
	if offset > len(all) {
		offset = len(all)
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

// ========== Workspaces ==========

func (s *memStore) schemaWorkspaces(schema string) map[int64]*models.Workspace {
	if s.data.workspaces[schema] == nil {
		s.data.workspaces[schema] = make(map[int64]*models.Workspace)
	}
	return s.data.workspaces[schema]
}

func (s *memStore) CreateWorkspace(ctx context.Context, schema string, workspace *models.Workspace) error {
	workspace.ID = s.nextSeq()
	workspace.CreatedAt = time.Now()
	w := *workspace
	s.schemaWorkspaces(schema)[workspace.ID] = &w
	return nil
}

func (s *memStore) GetWorkspace(ctx context.Context, schema string, id int64) (*models.Workspace, error) {
	w, ok := s.schemaWorkspaces(schema)[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := *w
	return &out, nil
}

func (s *memStore) UpdateWorkspace(ctx context.Context, schema string, workspace *models.Workspace) error {
	if _, ok := s.schemaWorkspaces(schema)[workspace.ID]; !ok {
		return storage.ErrNotFound
	}
	w := *workspace
	s.schemaWorkspaces(schema)[workspace.ID] = &w
	return nil
}

func (s *memStore) DeleteWorkspace(ctx context.Context, schema string, id int64) error {
	if _, ok := s.schemaWorkspaces(schema)[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.schemaWorkspaces(schema), id)
	return nil
}

func (s *memStore) ListWorkspaces(ctx context.Context, schema string, limit, offset int) ([]*models.Workspace, int64, error) {
	var all []*models.Workspace
	for _, w := range s.schemaWorkspaces(schema) {
		out := *w
		all = append(all, &out)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := int64(len(all))
	if offset > len(all) {
		offset = len(all)
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (s *memStore) ListWorkspaceTeams(ctx context.Context, schema string, workspaceID int64) ([]*models.Team, error) {
	var out []*models.Team
	for teamID, set := range s.teamWorkspaceSet(schema) {
		if set[workspaceID] {
			team, err := s.GetTeam(ctx, schema, teamID)
			if err != nil {
				return nil, err
			}
			out = append(out, team)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ========== Teams ==========

func (s *memStore) schemaTeams(schema string) map[int64]*models.Team {
	if s.data.teams[schema] == nil {
		s.data.teams[schema] = make(map[int64]*models.Team)
	}
	return s.data.teams[schema]
}

func (s *memStore) teamUserSet(schema string) map[int64]map[int64]bool {
	if s.data.teamUsers[schema] == nil {
		s.data.teamUsers[schema] = make(map[int64]map[int64]bool)
	}
	return s.data.teamUsers[schema]
}

func (s *memStore) teamWorkspaceSet(schema string) map[int64]map[int64]bool {
	if s.data.teamWorkspaces[schema] == nil {
		s.data.teamWorkspaces[schema] = make(map[int64]map[int64]bool)
	}
	return s.data.teamWorkspaces[schema]
}

func (s *memStore) CreateTeam(ctx context.Context, schema string, team *models.Team) error {
	team.ID = s.nextSeq()
	team.CreatedAt = time.Now()
	t := *team
	t.Users = nil
	t.Workspaces = nil
	s.schemaTeams(schema)[team.ID] = &t
	return nil
}

func (s *memStore) GetTeam(ctx context.Context, schema string, id int64) (*models.Team, error) {
	t, ok := s.schemaTeams(schema)[id]
	if !ok {
		return nil, storage.ErrNotFound
	}

	out := *t
	out.Users = []*models.Profile{}
	out.Workspaces = []*models.Workspace{}

	var profileIDs []int64
	for pid := range s.teamUserSet(schema)[id] {
		profileIDs = append(profileIDs, pid)
	}
	sort.Slice(profileIDs, func(i, j int) bool { return profileIDs[i] < profileIDs[j] })
	for _, pid := range profileIDs {
		p, err := s.GetProfile(ctx, schema, pid)
		if err != nil {
			return nil, err
		}
		out.Users = append(out.Users, p)
	}

	var workspaceIDs []int64
	for wid := range s.teamWorkspaceSet(schema)[id] {
		workspaceIDs = append(workspaceIDs, wid)
	}
	sort.Slice(workspaceIDs, func(i, j int) bool { return workspaceIDs[i] < workspaceIDs[j] })
	for _, wid := range workspaceIDs {
		w, err := s.GetWorkspace(ctx, schema, wid)
		if err != nil {
			return nil, err
		}
		out.Workspaces = append(out.Workspaces, w)
	}

	return &out, nil
}

func (s *memStore) UpdateTeam(ctx context.Context, schema string, team *models.Team) error {
	if _, ok := s.schemaTeams(schema)[team.ID]; !ok {
		return storage.ErrNotFound
	}
	t := *team
	t.Users = nil
	t.Workspaces = nil
	s.schemaTeams(schema)[team.ID] = &t
	return nil
}

func (s *memStore) DeleteTeam(ctx context.Context, schema string, id int64) error {
	if _, ok := s.schemaTeams(schema)[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.schemaTeams(schema), id)
	delete(s.teamUserSet(schema), id)
	delete(s.teamWorkspaceSet(schema), id)
	return nil
}

func (s *memStore) ListTeams(ctx context.Context, schema string, limit, offset int) ([]*models.Team, int64, error) {
	var ids []int64
	for id := range s.schemaTeams(schema) {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	total := int64(len(ids))
	if offset > len(ids) {
		offset = len(ids)
	}
	end := offset + limit
	if end > len(ids) {
		end = len(ids)
	}
	var out []*models.Team
	for _, id := range ids[offset:end] {
		team, err := s.GetTeam(ctx, schema, id)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, team)
	}
	return out, total, nil
}

func (s *memStore) AddTeamUser(ctx context.Context, schema string, teamID, profileID int64) error {
	set := s.teamUserSet(schema)
	if set[teamID] == nil {
		set[teamID] = make(map[int64]bool)
	}
	set[teamID][profileID] = true
	return nil
}

func (s *memStore) RemoveTeamUser(ctx context.Context, schema string, teamID, profileID int64) error {
	delete(s.teamUserSet(schema)[teamID], profileID)
	return nil
}

func (s *memStore) AddTeamWorkspace(ctx context.Context, schema string, teamID, workspaceID int64) error {
	set := s.teamWorkspaceSet(schema)
	if set[teamID] == nil {
		set[teamID] = make(map[int64]bool)
	}
	set[teamID][workspaceID] = true
	return nil
}

func (s *memStore) RemoveTeamWorkspace(ctx context.Context, schema string, teamID, workspaceID int64) error {
	delete(s.teamWorkspaceSet(schema)[teamID], workspaceID)
	return nil
}

func (s *memStore) SetTeamUsers(ctx context.Context, schema string, teamID int64, profileIDs []int64) error {
	s.teamUserSet(schema)[teamID] = make(map[int64]bool)
	for _, id := range profileIDs {
		s.teamUserSet(schema)[teamID][id] = true
	}
	return nil
}

func (s *memStore) SetTeamWorkspaces(ctx context.Context, schema string, teamID int64, workspaceIDs []int64) error {
	s.teamWorkspaceSet(schema)[teamID] = make(map[int64]bool)
	for _, id := range workspaceIDs {
		s.teamWorkspaceSet(schema)[teamID][id] = true
	}
	return nil
}

var _ storage.Store = (*memStore)(nil)

// recordingMailer captures sent mail and optionally fails
type recordingMailer struct {
	sent []sentMail
	fail error
}

type sentMail struct {
	to      string
	subject string
	body    string
}

func (m *recordingMailer) Send(to, subject, body string) error {
	if m.fail != nil {
		return m.fail
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

var errSMTPDown = errors.New("smtp: connection refused")

// testConfig returns a config suitable for handler tests
func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Name: "Teamspace Server", Version: "test"},
		JWT: config.JWTConfig{
			Secret:          "test-secret",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 24 * time.Hour,
		},
		Tenancy: config.TenancyConfig{
			BaseDomain:   "app.example.com",
			PublicSchema: "public",
		},
	}
}
