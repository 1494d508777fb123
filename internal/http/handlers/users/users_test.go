package users

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/magabrotheeeer/visionlab-auth/internal/http/middlewarectx"
	"github.com/magabrotheeeer/visionlab-auth/internal/models"
	services "github.com/magabrotheeeer/visionlab-auth/internal/services/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type UserServiceMock struct {
	mock.Mock
}

func (m *UserServiceMock) GetUser(ctx context.Context, email string) (models.PublicUser, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(models.PublicUser), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testUser = models.PublicUser{
	ID:        "u-1",
	Email:     "a@x.com",
	Role:      models.RoleStudent,
	CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
}

func TestHandler_Me(t *testing.T) {
	tests := []struct {
		name       string
		ctxEmail   string
		mockErr    error
		wantStatus int
		wantMsg    string
	}{
		{name: "found", ctxEmail: "a@x.com", wantStatus: http.StatusOK},
		{name: "account missing", ctxEmail: "a@x.com", mockErr: services.ErrNoSuchAccount, wantStatus: http.StatusNotFound, wantMsg: "User not found"},
		{name: "store failure", ctxEmail: "a@x.com", mockErr: errors.New("db down"), wantStatus: http.StatusInternalServerError, wantMsg: "Internal server error"},
		{name: "no email in context", wantStatus: http.StatusUnauthorized, wantMsg: "Unauthorized"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(UserServiceMock)
			if tt.ctxEmail != "" {
				svc.On("GetUser", mock.Anything, tt.ctxEmail).Return(testUser, tt.mockErr).Once()
			}
			h := New(newNoopLogger(), svc)

			ctx := context.Background()
			if tt.ctxEmail != "" {
				ctx = context.WithValue(ctx, middlewarectx.Email, tt.ctxEmail)
			}
			req := httptest.NewRequest(http.MethodGet, "/me", nil).WithContext(ctx)
			rec := httptest.NewRecorder()

			h.Me(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var got map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, got["message"])
			} else {
				user, ok := got["user"].(map[string]any)
				require.True(t, ok)
				assert.Equal(t, "a@x.com", user["email"])
				assert.NotContains(t, user, "password_hash")
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestHandler_ByEmail(t *testing.T) {
	svc := new(UserServiceMock)
	svc.On("GetUser", mock.Anything, "a@x.com").Return(testUser, nil).Once()
	svc.On("GetUser", mock.Anything, "ghost@x.com").Return(models.PublicUser{}, services.ErrNoSuchAccount).Once()

	r := chi.NewRouter()
	r.Get("/user/{email}", New(newNoopLogger(), svc).ByEmail)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/user/a@x.com", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"a@x.com"`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/user/ghost@x.com", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "User not found")

	svc.AssertExpectations(t)
}

func TestHandler_ByEmailEscaped(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{name: "plain", path: "/user/s+1@x.io"},
		{name: "escaped at sign", path: "/user/s+1%40x.io"},
		{name: "escaped plus and at sign", path: "/user/s%2B1%40x.io"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(UserServiceMock)
			svc.On("GetUser", mock.Anything, "s+1@x.io").Return(testUser, nil).Once()

			r := chi.NewRouter()
			r.Get("/user/{email}", New(newNoopLogger(), svc).ByEmail)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, http.StatusOK, rec.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestHandler_ByEmailMalformedEscape(t *testing.T) {
	svc := new(UserServiceMock)
	r := chi.NewRouter()
	r.Get("/user/{email}", New(newNoopLogger(), svc).ByEmail)

	req := httptest.NewRequest(http.MethodGet, "/user/bad", nil)
	req.URL.RawPath = "/user/%zz"
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email")
	svc.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
}
