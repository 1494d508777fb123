package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/magabrotheeeer/visionlab-auth/internal/cache"
	"github.com/magabrotheeeer/visionlab-auth/internal/config"
	"github.com/magabrotheeeer/visionlab-auth/internal/http/handlers/health"
	"github.com/magabrotheeeer/visionlab-auth/internal/lib/jwt"
	"github.com/magabrotheeeer/visionlab-auth/internal/metrics"
	"github.com/magabrotheeeer/visionlab-auth/internal/models"
	services "github.com/magabrotheeeer/visionlab-auth/internal/services/auth"
	"github.com/magabrotheeeer/visionlab-auth/internal/storage"
)

// memoryStore — потокобезопасное хранилище в памяти для сквозных тестов маршрутов.
type memoryStore struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newMemoryStore() *memoryStore {
	return &memoryStore{users: make(map[string]models.User)}
}

func (s *memoryStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return &u, nil
}

func (s *memoryStore) Insert(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Email]; ok {
		return storage.ErrUserExists
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now().UTC()
	s.users[user.Email] = *user
	return nil
}

func (s *memoryStore) Ping(context.Context) error { return nil }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	return newTestRouterWithCache(t, nil)
}

func newTestRouterWithCache(t *testing.T, redisPinger health.Pinger) http.Handler {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := newMemoryStore()
	maker := jwt.NewJWTMaker("test-secret", time.Hour)
	m := metrics.New()
	svc := services.NewAuthService(store, maker,
		services.WithPasswordCost(bcrypt.MinCost),
		services.WithMetrics(m),
	)

	r := chi.NewRouter()
	RegisterRoutes(r, log, RouteDeps{
		AuthService: svc,
		Verifier:    maker,
		Metrics:     m,
		Store:       store,
		Cache:       redisPinger,
		RateLimit:   config.RateLimit{RPS: 1000, Burst: 1000},
		CORS:        config.CORS{AllowedOrigins: []string{"http://localhost:5173"}},
	})
	return r
}

type body struct {
	Message string             `json:"message"`
	Token   string             `json:"token"`
	Role    models.Role        `json:"role"`
	User    *models.PublicUser `json:"user"`
}

func do(t *testing.T, h http.Handler, method, path, token string, payload any) (int, body) {
	t.Helper()

	var reader io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var b body
	if strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &b))
	}
	return rr.Code, b
}

func TestRoutes_AccountFlow(t *testing.T) {
	h := newTestRouter(t)

	code, b := do(t, h, http.MethodPost, "/register", "", map[string]string{
		"email": "mentor@x.io", "password": "pw1", "role": "mentor",
	})
	require.Equal(t, http.StatusCreated, code)
	require.NotNil(t, b.User)
	assert.Equal(t, models.RoleMentor, b.User.Role)

	// Второй путь смотрит в то же хранилище.
	code, b = do(t, h, http.MethodPost, "/api/v1/register", "", map[string]string{
		"email": "mentor@x.io", "password": "other", "role": "student",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Already registered", b.Message)

	code, _ = do(t, h, http.MethodPost, "/api/v1/register", "", map[string]string{
		"email": "student@x.io", "password": "pw2", "role": "student",
	})
	require.Equal(t, http.StatusCreated, code)

	code, b = do(t, h, http.MethodPost, "/login", "", map[string]string{"email": "mentor@x.io", "password": "pw1"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Success", b.Message)
	assert.Equal(t, models.RoleMentor, b.Role)
	mentorToken := b.Token

	code, b = do(t, h, http.MethodPost, "/api/v1/login", "", map[string]string{"email": "student@x.io", "password": "pw2"})
	require.Equal(t, http.StatusOK, code)
	studentToken := b.Token

	code, b = do(t, h, http.MethodPost, "/login", "", map[string]string{"email": "student@x.io", "password": "nope"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Wrong password", b.Message)

	code, b = do(t, h, http.MethodPost, "/login", "", map[string]string{"email": "ghost@x.io", "password": "pw"})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "No records found!", b.Message)

	code, b = do(t, h, http.MethodGet, "/user-role", mentorToken, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, models.RoleMentor, b.Role)

	code, b = do(t, h, http.MethodGet, "/api/v1/user-role", "Bearer "+studentToken, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, models.RoleStudent, b.Role)

	code, b = do(t, h, http.MethodGet, "/me", studentToken, nil)
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, b.User)
	assert.Equal(t, "student@x.io", b.User.Email)

	code, b = do(t, h, http.MethodGet, "/user/student@x.io", mentorToken, nil)
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, b.User)
	assert.Equal(t, models.RoleStudent, b.User.Role)

	code, b = do(t, h, http.MethodGet, "/user/mentor@x.io", studentToken, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Forbidden", b.Message)

	code, b = do(t, h, http.MethodGet, "/user/ghost@x.io", mentorToken, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "User not found", b.Message)
}

func TestRoutes_UserByEscapedEmail(t *testing.T) {
	h := newTestRouter(t)

	code, _ := do(t, h, http.MethodPost, "/register", "", map[string]string{
		"email": "s+1@x.io", "password": "pw1", "role": "student",
	})
	require.Equal(t, http.StatusCreated, code)
	code, _ = do(t, h, http.MethodPost, "/register", "", map[string]string{
		"email": "mentor@x.io", "password": "pw1", "role": "mentor",
	})
	require.Equal(t, http.StatusCreated, code)
	code, b := do(t, h, http.MethodPost, "/login", "", map[string]string{"email": "mentor@x.io", "password": "pw1"})
	require.Equal(t, http.StatusOK, code)
	token := b.Token

	for _, path := range []string{
		"/user/s+1@x.io",
		"/user/s+1%40x.io",
		"/user/s%2B1%40x.io",
		"/api/v1/user/s%2B1%40x.io",
	} {
		code, b = do(t, h, http.MethodGet, path, token, nil)
		require.Equal(t, http.StatusOK, code, path)
		require.NotNil(t, b.User, path)
		assert.Equal(t, "s+1@x.io", b.User.Email, path)
	}
}

func TestRoutes_RoleGate(t *testing.T) {
	h := newTestRouter(t)

	code, b := do(t, h, http.MethodGet, "/user-role", "", nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "No token provided", b.Message)

	code, b = do(t, h, http.MethodGet, "/api/v1/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Unauthorized", b.Message)
}

func TestRoutes_Health(t *testing.T) {
	h := newTestRouter(t)

	code, b := do(t, h, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "OK", b.Message)
}

func TestRoutes_HealthChecksCache(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	c, err := cache.InitServer(context.Background(), config.RedisConnection{AddressRedis: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	h := newTestRouterWithCache(t, c)

	code, b := do(t, h, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "OK", b.Message)

	mr.Close()
	code, b = do(t, h, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "Service unavailable", b.Message)
}

func TestRoutes_Metrics(t *testing.T) {
	h := newTestRouter(t)
	do(t, h, http.MethodPost, "/register", "", map[string]string{"email": "a@x.io", "password": "pw", "role": "mentor"})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `visionlab_auth_registrations_total{result="created"} 1`)
}

func TestRoutes_CORSPreflight(t *testing.T) {
	h := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/login", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, "http://localhost:5173", rr.Header().Get("Access-Control-Allow-Origin"))
}
