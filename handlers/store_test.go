package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"projectmanager/auth"
	"projectmanager/calendar"
	"projectmanager/database"
	"projectmanager/middleware"
	"projectmanager/models"
	"projectmanager/session"
	"projectmanager/templates"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testCookieName = "sessionid"

// memoryStore is an in-memory ProjectStore and UserStore. Its clock moves
// forward one second per write so ordering by created_at is deterministic.
type memoryStore struct {
	mu       sync.Mutex
	projects map[uuid.UUID]*models.Project
	users    map[uuid.UUID]*models.User
	clock    time.Time
	err      error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		projects: make(map[uuid.UUID]*models.Project),
		users:    make(map[uuid.UUID]*models.User),
		clock:    time.Date(2024, 3, 20, 8, 0, 0, 0, time.UTC),
	}
}

func (s *memoryStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *memoryStore) withAssignee(p models.Project) models.Project {
	p.AssigneeUsername = ""
	if p.AssigneeID != nil {
		if u, ok := s.users[*p.AssigneeID]; ok {
			p.AssigneeUsername = u.Username
		}
	}
	return p
}

func (s *memoryStore) CreateProject(_ context.Context, fields models.ProjectFields) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}

	now := s.tick()
	p := &models.Project{
		ID:          uuid.New(),
		Name:        fields.Name,
		Description: fields.Description,
		StartDate:   fields.StartDate,
		EndDate:     fields.EndDate,
		AssigneeID:  fields.AssigneeID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.projects[p.ID] = p

	out := s.withAssignee(*p)
	return &out, nil
}

func (s *memoryStore) UpdateProject(_ context.Context, id uuid.UUID, fields models.ProjectFields) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}

	p, ok := s.projects[id]
	if !ok {
		return nil, database.ErrProjectNotFound
	}
	p.Name = fields.Name
	p.Description = fields.Description
	p.StartDate = fields.StartDate
	p.EndDate = fields.EndDate
	p.AssigneeID = fields.AssigneeID
	p.UpdatedAt = s.tick()

	out := s.withAssignee(*p)
	return &out, nil
}

func (s *memoryStore) MarkProjectDone(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}

	p, ok := s.projects[id]
	if !ok {
		return database.ErrProjectNotFound
	}
	p.IsDone = true
	p.UpdatedAt = s.tick()
	return nil
}

func (s *memoryStore) ListProjects(ctx context.Context) ([]models.Project, error) {
	return s.list(func(*models.Project) bool { return true })
}

func (s *memoryStore) ListProjectsByAssignee(_ context.Context, userID uuid.UUID) ([]models.Project, error) {
	return s.list(func(p *models.Project) bool { return p.AssignedTo(userID) })
}

func (s *memoryStore) list(keep func(*models.Project) bool) ([]models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}

	projects := []models.Project{}
	for _, p := range s.projects {
		if keep(p) {
			projects = append(projects, s.withAssignee(*p))
		}
	}
	sort.Slice(projects, func(i, j int) bool {
		if !projects[i].CreatedAt.Equal(projects[j].CreatedAt) {
			return projects[i].CreatedAt.After(projects[j].CreatedAt)
		}
		return projects[i].ID.String() > projects[j].ID.String()
	})
	return projects, nil
}

func (s *memoryStore) GetProject(_ context.Context, id uuid.UUID) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}

	p, ok := s.projects[id]
	if !ok {
		return nil, database.ErrProjectNotFound
	}
	out := s.withAssignee(*p)
	return &out, nil
}

func (s *memoryStore) DeleteProject(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}

	if _, ok := s.projects[id]; !ok {
		return database.ErrProjectNotFound
	}
	delete(s.projects, id)
	return nil
}

func (s *memoryStore) CreateUser(_ context.Context, username, passwordHash string, superuser bool) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}

	for _, u := range s.users {
		if u.Username == username {
			return nil, database.ErrUsernameTaken
		}
	}
	u := &models.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: passwordHash,
		IsSuperuser:  superuser,
		CreatedAt:    s.tick(),
	}
	s.users[u.ID] = u

	out := *u
	return &out, nil
}

func (s *memoryStore) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}

	u, ok := s.users[id]
	if !ok {
		return nil, database.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (s *memoryStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}

	for _, u := range s.users {
		if u.Username == username {
			out := *u
			return &out, nil
		}
	}
	return nil, database.ErrUserNotFound
}

func (s *memoryStore) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}

	users := []models.User{}
	for _, u := range s.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

func (s *memoryStore) project(id uuid.UUID) (models.Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[id]
	if !ok {
		return models.Project{}, false
	}
	return *p, true
}

func (s *memoryStore) projectCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.projects)
}

func (s *memoryStore) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

type testEnv struct {
	router   *gin.Engine
	store    *memoryStore
	sessions *session.Store
	redis    *miniredis.Miniredis
}

func init() {
	gin.SetMode(gin.TestMode)
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := newMemoryStore()
	sessions := session.NewStore(client, time.Hour)

	tmpl, err := templates.New(calendar.Gregorian, time.UTC)
	require.NoError(t, err)

	h := New(Deps{
		Projects: store,
		Users:    store,
		Sessions: sessions,
		Cookie:   CookieConfig{Name: testCookieName},
		Logger:   zap.NewNop(),
		Checks:   map[string]Pinger{"redis": sessions},
	})

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.Use(middleware.Identity(sessions, store, testCookieName, zap.NewNop()))
	h.RegisterRoutes(r)

	return &testEnv{router: r, store: store, sessions: sessions, redis: mr}
}

// createUser stores a user with a real bcrypt hash of password.
func (e *testEnv) createUser(t *testing.T, username, password string, superuser bool) *models.User {
	t.Helper()

	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	user, err := e.store.CreateUser(context.Background(), username, hash, superuser)
	require.NoError(t, err)
	return user
}

// loginAs starts a session for user directly in the store.
func (e *testEnv) loginAs(t *testing.T, user *models.User) *http.Cookie {
	t.Helper()

	sid, err := e.sessions.Create(context.Background(), &user.ID)
	require.NoError(t, err)
	return &http.Cookie{Name: testCookieName, Value: sid}
}

func (e *testEnv) createProject(t *testing.T, name string, assignee *models.User) *models.Project {
	t.Helper()

	fields := models.ProjectFields{
		Name:      name,
		StartDate: time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC),
	}
	if assignee != nil {
		fields.AssigneeID = &assignee.ID
	}

	project, err := e.store.CreateProject(context.Background(), fields)
	require.NoError(t, err)
	return project
}

func (e *testEnv) do(method, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// sessionCookie returns the session cookie set by a response, if any.
func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == testCookieName {
			return c
		}
	}
	return nil
}
