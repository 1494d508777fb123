// Package health отдаёт состояние сервиса.
package health

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/visionlab-auth/internal/http/response"
	"github.com/magabrotheeeer/visionlab-auth/internal/lib/sl"
)

// Pinger проверяет доступность зависимости.
type Pinger interface {
	Ping(ctx context.Context) error
}

type dependency struct {
	name string
	p    Pinger
}

// Handler отвечает 200, если все зависимости доступны, иначе 503.
type Handler struct {
	log  *slog.Logger
	deps []dependency
}

// Option добавляет проверяемую зависимость.
type Option func(*Handler)

// WithCache добавляет проверку Redis.
func WithCache(cache Pinger) Option {
	return func(h *Handler) {
		if cache != nil {
			h.deps = append(h.deps, dependency{name: "cache", p: cache})
		}
	}
}

// New создает Handler. store может быть nil.
func New(log *slog.Logger, store Pinger, opts ...Option) *Handler {
	h := &Handler{log: log}
	if store != nil {
		h.deps = append(h.deps, dependency{name: "store", p: store})
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP godoc
// @Summary Проверка состояния
// @Tags Health
// @Produce  json
// @Success 200 {object} response.ErrorResponse "OK"
// @Failure 503 {object} response.ErrorResponse "Хранилище или кэш недоступны"
// @Router /healthz [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"
	for _, d := range h.deps {
		if err := d.p.Ping(r.Context()); err != nil {
			h.log.Error("dependency ping failed", slog.String("op", op), slog.String("dependency", d.name), sl.Err(err))
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("Service unavailable"))
			return
		}
	}
	render.JSON(w, r, response.Error(response.MsgOK))
}
