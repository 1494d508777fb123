// Package role отдаёт роль владельца токена сессии.
package role

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/visionlab-auth/internal/http/middlewarectx"
	"github.com/magabrotheeeer/visionlab-auth/internal/http/response"
)

// Handler возвращает роль из контекста, положенную RoleGate.
type Handler struct {
	log *slog.Logger
}

// New создает Handler.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Роль текущего пользователя
// @Description Возвращает роль из токена сессии. Токен передаётся в заголовке Authorization как есть или с префиксом Bearer.
// @Tags Auth
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} response.Response "Роль пользователя"
// @Failure 401 {object} response.ErrorResponse "Токен недействителен или просрочен"
// @Failure 403 {object} response.ErrorResponse "Токен не передан"
// @Router /user-role [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.role"

	role, ok := middlewarectx.RoleFromContext(r.Context())
	if !ok {
		h.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		).Error("role missing in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error(response.MsgUnauthorized))
		return
	}
	render.JSON(w, r, response.RoleOnly(role))
}
