package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"contact-book/internal/domain"
	"contact-book/internal/repository"
	"contact-book/internal/service"
	"contact-book/internal/storage"
)

type memUserRepo struct {
	mu      sync.Mutex
	byID    map[string]domain.User
	byEmail map[string]string
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: make(map[string]domain.User), byEmail: make(map[string]string)}
}

func (m *memUserRepo) Create(_ context.Context, user domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[user.Email]; ok {
		return repository.ErrDuplicateEmail
	}
	m.byID[user.ID] = user
	m.byEmail[user.Email] = user.ID
	return nil
}

func (m *memUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return domain.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (m *memUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	m.mu.Lock()
	id, ok := m.byEmail[email]
	m.mu.Unlock()
	if !ok {
		return domain.User{}, repository.ErrNotFound
	}
	return m.GetByID(ctx, id)
}

func (m *memUserRepo) update(id string, fn func(*domain.User)) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return domain.User{}, repository.ErrNotFound
	}
	fn(&u)
	m.byID[id] = u
	return u, nil
}

func (m *memUserRepo) SetVerified(_ context.Context, id string) (domain.User, error) {
	return m.update(id, func(u *domain.User) { u.IsVerified = true })
}

func (m *memUserRepo) SetAvatarURL(_ context.Context, id, url string) (domain.User, error) {
	return m.update(id, func(u *domain.User) { u.AvatarURL = &url })
}

type memContactRepo struct {
	mu    sync.Mutex
	items []domain.Contact
}

func (m *memContactRepo) Create(_ context.Context, c domain.Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, c)
	return nil
}

func (m *memContactRepo) filter(ownerID string, keep func(domain.Contact) bool) []domain.Contact {
	out := make([]domain.Contact, 0)
	for _, c := range m.items {
		if c.OwnerID == ownerID && keep(c) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (m *memContactRepo) List(_ context.Context, ownerID string, offset, limit int) ([]domain.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.filter(ownerID, func(domain.Contact) bool { return true })
	if offset >= len(all) {
		return []domain.Contact{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *memContactRepo) index(ownerID, id string) int {
	for i, c := range m.items {
		if c.ID == id && c.OwnerID == ownerID {
			return i
		}
	}
	return -1
}

func (m *memContactRepo) GetByID(_ context.Context, ownerID, id string) (domain.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.index(ownerID, id)
	if i < 0 {
		return domain.Contact{}, repository.ErrNotFound
	}
	return m.items[i], nil
}

func (m *memContactRepo) Update(_ context.Context, ownerID, id string, p domain.ContactPatch) (domain.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.index(ownerID, id)
	if i < 0 {
		return domain.Contact{}, repository.ErrNotFound
	}
	c := &m.items[i]
	p.Apply(c)
	return *c, nil
}

func (m *memContactRepo) Delete(_ context.Context, ownerID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.index(ownerID, id)
	if i < 0 {
		return repository.ErrNotFound
	}
	m.items = append(m.items[:i], m.items[i+1:]...)
	return nil
}

func (m *memContactRepo) Search(_ context.Context, ownerID, query string) ([]domain.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := strings.ToLower(query)
	return m.filter(ownerID, func(c domain.Contact) bool {
		return strings.Contains(strings.ToLower(c.FirstName), q) ||
			strings.Contains(strings.ToLower(c.LastName), q) ||
			strings.Contains(strings.ToLower(c.Email), q)
	}), nil
}

func (m *memContactRepo) ListWithBirthday(_ context.Context, ownerID string) ([]domain.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter(ownerID, func(c domain.Contact) bool { return c.Birthday != nil }), nil
}

type captureDispatcher struct {
	mu    sync.Mutex
	links map[string]string
}

func (d *captureDispatcher) DispatchVerification(_ context.Context, email, link string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.links[email] = link
}

func (d *captureDispatcher) link(email string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.links[email]
}

type memAvatarStore struct{}

func (memAvatarStore) UploadAvatar(_ context.Context, userID string, _ []byte, _ string) (string, error) {
	return "https://cdn.example.com/" + storage.AvatarKey(userID), nil
}

const testAvatarMaxBytes = 16

type testEnv struct {
	router     *gin.Engine
	users      *memUserRepo
	dispatcher *captureDispatcher
	jwt        *service.JWTService
	auth       *service.AuthService
}

func newTestEnv(t *testing.T, avatars service.AvatarStore) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	users := newMemUserRepo()
	dispatcher := &captureDispatcher{links: make(map[string]string)}
	jwtSvc := service.NewJWTService("secret", 0, 0)
	if avatars == nil {
		avatars = memAvatarStore{}
	}
	authSvc := service.NewAuthService(logger, users, service.NewBcryptHasher(bcrypt.MinCost), jwtSvc, dispatcher, avatars, "http://127.0.0.1:8080/auth/verify-email")
	contactSvc := service.NewContactService(logger, &memContactRepo{})

	router := NewRouter(
		logger,
		NewAuthHandler(logger, authSvc, testAvatarMaxBytes),
		NewContactHandler(logger, contactSvc),
		NewHealthHandler(logger, map[string]HealthCheck{"db": func(context.Context) error { return nil }}),
		authSvc,
		service.NewMemoryRateLimiter(time.Minute, 5),
	)
	return &testEnv{router: router, users: users, dispatcher: dispatcher, jwt: jwtSvc, auth: authSvc}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) signup(t *testing.T, email, password string) {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/auth/signup", "", map[string]string{"email": email, "password": password})
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup %s: expected 201, got %d: %s", email, rec.Code, rec.Body.String())
	}
}

func (e *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": password})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d: %s", email, rec.Code, rec.Body.String())
	}
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	decode(t, rec, &resp)
	return resp.AccessToken
}

func (e *testEnv) verify(t *testing.T, email string) {
	t.Helper()
	link := e.dispatcher.link(email)
	path := strings.TrimPrefix(link, "http://127.0.0.1:8080")
	rec := e.do(t, http.MethodGet, path, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("verify %s: expected 200, got %d: %s", email, rec.Code, rec.Body.String())
	}
}

// verifiedUser registra, verifica e inicia sesion; devuelve el access token.
func (e *testEnv) verifiedUser(t *testing.T, email string) string {
	t.Helper()
	e.signup(t, email, "secret1")
	e.verify(t, email)
	return e.login(t, email, "secret1")
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func detail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Detail string `json:"detail"`
	}
	decode(t, rec, &body)
	return body.Detail
}
