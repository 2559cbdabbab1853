package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/memodb-io/notespace/internal/modules/model"
	"github.com/memodb-io/notespace/internal/modules/repo"
	"gorm.io/gorm"
)

// memDB is an in-memory stand-in for postgres that honours the same uniqueness
// rules as the real schema. It backs the scenario tests.
type memDB struct {
	mu          sync.Mutex
	users       map[uuid.UUID]model.User
	projects    map[uuid.UUID]model.Project
	memberships map[uuid.UUID]model.Membership
	notes       map[uuid.UUID]model.Note
	tick        time.Time
}

func newMemDB() *memDB {
	return &memDB{
		users:       map[uuid.UUID]model.User{},
		projects:    map[uuid.UUID]model.Project{},
		memberships: map[uuid.UUID]model.Membership{},
		notes:       map[uuid.UUID]model.Note{},
		tick:        time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// now hands out strictly increasing timestamps so ordering is deterministic.
func (d *memDB) now() time.Time {
	d.tick = d.tick.Add(time.Second)
	return d.tick
}

type memSnapshot struct {
	users       map[uuid.UUID]model.User
	projects    map[uuid.UUID]model.Project
	memberships map[uuid.UUID]model.Membership
	notes       map[uuid.UUID]model.Note
}

func cloneMap[V any](m map[uuid.UUID]V) map[uuid.UUID]V {
	out := make(map[uuid.UUID]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (d *memDB) snapshot() memSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return memSnapshot{cloneMap(d.users), cloneMap(d.projects), cloneMap(d.memberships), cloneMap(d.notes)}
}

func (d *memDB) restore(s memSnapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users, d.projects, d.memberships, d.notes = s.users, s.projects, s.memberships, s.notes
}

// insertMembership applies the pair and single-owner unique indexes.
func (d *memDB) insertMembership(m *model.Membership) error {
	for _, other := range d.memberships {
		if other.ProjectID != m.ProjectID {
			continue
		}
		if other.UserID == m.UserID {
			return repo.ErrMembershipExists
		}
		if other.Role == model.RoleOwner && m.Role == model.RoleOwner {
			return repo.ErrOwnerExists
		}
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.JoinedAt = d.now()
	d.memberships[m.ID] = *m
	return nil
}

func (d *memDB) otherOwners(projectID, exclude uuid.UUID) int64 {
	var n int64
	for _, m := range d.memberships {
		if m.ProjectID == projectID && m.Role == model.RoleOwner && m.ID != exclude {
			n++
		}
	}
	return n
}

type memUsers struct{ *memDB }

func (r memUsers) CreateWithHooks(ctx context.Context, u *model.User, hooks ...repo.UserCreatedHook) error {
	snap := r.snapshot()
	r.mu.Lock()
	for _, other := range r.users {
		if strings.EqualFold(other.Username, u.Username) {
			r.mu.Unlock()
			return repo.ErrUsernameExists
		}
		if strings.EqualFold(other.Email, u.Email) {
			r.mu.Unlock()
			return repo.ErrEmailExists
		}
	}
	u.ID = uuid.New()
	u.CreatedAt = r.now()
	r.users[u.ID] = *u
	r.mu.Unlock()

	for _, hook := range hooks {
		if err := hook(ctx, nil, u); err != nil {
			r.restore(snap)
			return err
		}
	}
	return nil
}

func (r memUsers) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r memUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Username, username) {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memUsers) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := r.GetByUsername(ctx, username)
	return err == nil, nil
}

func (r memUsers) EmailExists(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (r memUsers) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	for mid, m := range r.memberships {
		if m.UserID == id {
			delete(r.memberships, mid)
		}
	}
	for nid, n := range r.notes {
		if n.AuthorID == id {
			delete(r.notes, nid)
		}
	}
	return nil
}

type memProjects struct {
	*memDB
	failOwner bool
}

func (r memProjects) WithTx(*gorm.DB) repo.ProjectRepo { return r }

func (r memProjects) CreateWithOwner(_ context.Context, p *model.Project, ownerID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = uuid.New()
	p.CreatedAt = r.now()
	r.projects[p.ID] = *p
	if r.failOwner {
		return gorm.ErrInvalidTransaction
	}
	return r.insertMembership(&model.Membership{UserID: ownerID, ProjectID: p.ID, Role: model.RoleOwner})
}

func (r memProjects) Get(_ context.Context, id uuid.UUID) (*model.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r memProjects) ListForUser(_ context.Context, userID uuid.UUID, _ time.Time, _ uuid.UUID, limit int) ([]*model.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Project
	for _, m := range r.memberships {
		if m.UserID == userID {
			p := r.projects[m.ProjectID]
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memProjects) Update(_ context.Context, id uuid.UUID, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := updates["title"].(string); ok {
		p.Title = v
	}
	if v, ok := updates["status"].(model.ProjectStatus); ok {
		p.Status = v
	}
	r.projects[id] = p
	return nil
}

func (r memProjects) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.projects, id)
	for mid, m := range r.memberships {
		if m.ProjectID == id {
			delete(r.memberships, mid)
		}
	}
	for nid, n := range r.notes {
		if n.ProjectID != nil && *n.ProjectID == id {
			delete(r.notes, nid)
		}
	}
	return nil
}

func (r memProjects) Owners(_ context.Context, projectID uuid.UUID, limit int) ([]*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.User
	for _, m := range r.memberships {
		if m.ProjectID == projectID && m.Role == model.RoleOwner {
			u := r.users[m.UserID]
			out = append(out, &u)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memMemberships struct{ *memDB }

func (r memMemberships) Create(_ context.Context, m *model.Membership, check repo.MembershipCheck) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[m.ProjectID]; !ok {
		return gorm.ErrRecordNotFound
	}
	if err := check(nil, m, r.otherOwners(m.ProjectID, uuid.Nil)); err != nil {
		return err
	}
	return r.insertMembership(m)
}

func (r memMemberships) UpdateRole(_ context.Context, id uuid.UUID, role model.Role, check repo.MembershipCheck) (*model.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.memberships[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	proposed := stored
	proposed.Role = role
	if err := check(&stored, &proposed, r.otherOwners(stored.ProjectID, id)); err != nil {
		return nil, err
	}
	if role == model.RoleOwner && r.otherOwners(stored.ProjectID, id) > 0 {
		return nil, repo.ErrOwnerExists
	}
	r.memberships[id] = proposed
	return &proposed, nil
}

func (r memMemberships) Delete(_ context.Context, id uuid.UUID, check repo.RemovalCheck) (*model.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.memberships[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if err := check(&stored, r.otherOwners(stored.ProjectID, id)); err != nil {
		return nil, err
	}
	delete(r.memberships, id)
	return &stored, nil
}

func (r memMemberships) TransferOwnership(_ context.Context, projectID, fromUserID, toUserID uuid.UUID, demoteTo model.Role, check repo.TransferCheck) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[projectID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	from, ok := r.find(fromUserID, projectID)
	if !ok {
		return gorm.ErrRecordNotFound
	}
	to, ok := r.find(toUserID, projectID)
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if err := check(&p, &from, &to); err != nil {
		return err
	}
	if from.ID == to.ID {
		return nil
	}
	from.Role = demoteTo
	to.Role = model.RoleOwner
	r.memberships[from.ID] = from
	r.memberships[to.ID] = to
	return nil
}

func (r memMemberships) find(userID, projectID uuid.UUID) (model.Membership, bool) {
	for _, m := range r.memberships {
		if m.UserID == userID && m.ProjectID == projectID {
			return m, true
		}
	}
	return model.Membership{}, false
}

func (r memMemberships) Get(_ context.Context, id uuid.UUID) (*model.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.memberships[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &m, nil
}

func (r memMemberships) GetByUserProject(_ context.Context, userID, projectID uuid.UUID) (*model.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.find(userID, projectID)
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &m, nil
}

func (r memMemberships) ListByProject(_ context.Context, projectID uuid.UUID) ([]*model.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Membership
	for _, m := range r.memberships {
		if m.ProjectID == projectID {
			out = append(out, &m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JoinedAt.Before(out[j].JoinedAt) })
	return out, nil
}

func (r memMemberships) ListUserIDs(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error) {
	ms, _ := r.ListByProject(ctx, projectID)
	ids := make([]uuid.UUID, 0, len(ms))
	for _, m := range ms {
		ids = append(ids, m.UserID)
	}
	return ids, nil
}

type memNotes struct{ *memDB }

func (r memNotes) Create(_ context.Context, n *model.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.ID = uuid.New()
	n.PublicID = uuid.New()
	n.CreatedAt = r.now()
	r.notes[n.ID] = *n
	return nil
}

func (r memNotes) Get(_ context.Context, id uuid.UUID) (*model.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &n, nil
}

func (r memNotes) GetByPublicID(_ context.Context, publicID uuid.UUID) (*model.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notes {
		if n.PublicID == publicID {
			return &n, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memNotes) Update(_ context.Context, n *model.Note, fields ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.notes[n.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for _, f := range fields {
		switch f {
		case "title":
			stored.Title = n.Title
		case "content":
			stored.Content = n.Content
		case "is_public":
			stored.IsPublic = n.IsPublic
		}
	}
	r.notes[n.ID] = stored
	return nil
}

func (r memNotes) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.notes[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.notes, id)
	return nil
}

func (r memNotes) ListVisible(_ context.Context, userID uuid.UUID) ([]model.NoteSummary, error) {
	return r.match(userID, func(model.Note) bool { return true }), nil
}

func (r memNotes) Search(_ context.Context, userID uuid.UUID, query string, limit int) ([]model.NoteSummary, error) {
	q := strings.ToLower(query)
	out := r.match(userID, func(n model.Note) bool {
		content := ""
		if n.Content != nil {
			content = *n.Content
		}
		return strings.Contains(strings.ToLower(n.Title), q) || strings.Contains(strings.ToLower(content), q)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memNotes) match(userID uuid.UUID, pred func(model.Note) bool) []model.NoteSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	member := map[uuid.UUID]bool{}
	for _, m := range r.memberships {
		if m.UserID == userID {
			member[m.ProjectID] = true
		}
	}
	var hits []model.Note
	for _, n := range r.notes {
		visible := (n.ProjectID != nil && member[*n.ProjectID]) || (n.ProjectID == nil && n.AuthorID == userID)
		if visible && pred(n) {
			hits = append(hits, n)
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].CreatedAt.After(hits[j].CreatedAt) })
	out := make([]model.NoteSummary, 0, len(hits))
	for _, n := range hits {
		out = append(out, model.NoteSummary{ID: n.ID, Title: n.Title})
	}
	return out
}

func (d *memDB) seedUser(username, email string) model.User {
	d.mu.Lock()
	defer d.mu.Unlock()
	u := model.User{ID: uuid.New(), Username: username, Email: email, IsActive: true, CreatedAt: d.now()}
	d.users[u.ID] = u
	return u
}
