package health

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealth(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	up := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("down") })

	tests := []struct {
		name       string
		store      Pinger
		cache      Pinger
		wantStatus int
		wantBody   string
	}{
		{name: "no dependencies", wantStatus: http.StatusOK, wantBody: `{"message":"OK"}`},
		{name: "store up", store: up, wantStatus: http.StatusOK, wantBody: `{"message":"OK"}`},
		{name: "store down", store: down, wantStatus: http.StatusServiceUnavailable, wantBody: `{"message":"Service unavailable"}`},
		{name: "store and cache up", store: up, cache: up, wantStatus: http.StatusOK, wantBody: `{"message":"OK"}`},
		{name: "cache down", store: up, cache: down, wantStatus: http.StatusServiceUnavailable, wantBody: `{"message":"Service unavailable"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			New(log, tt.store, WithCache(tt.cache)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}
