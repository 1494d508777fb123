package users

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/visionlab-auth/internal/http/middlewarectx"
	"github.com/magabrotheeeer/visionlab-auth/internal/http/response"
	"github.com/magabrotheeeer/visionlab-auth/internal/lib/sl"
	services "github.com/magabrotheeeer/visionlab-auth/internal/services/auth"
)

// Handler отдаёт публичные профили пользователей.
type Handler struct {
	log         *slog.Logger
	userService Service
}

// New создает Handler.
func New(log *slog.Logger, userService Service) *Handler {
	return &Handler{
		log:         log,
		userService: userService,
	}
}

// Me godoc
// @Summary Профиль текущего пользователя
// @Tags Users
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} response.Response "Профиль"
// @Failure 401 {object} response.ErrorResponse "Токен недействителен или просрочен"
// @Failure 403 {object} response.ErrorResponse "Токен не передан"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Router /me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.me"
	email, ok := middlewarectx.EmailFromContext(r.Context())
	if !ok {
		h.logger(r, op).Error("email missing in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error(response.MsgUnauthorized))
		return
	}
	h.write(w, r, op, email)
}

// ByEmail godoc
// @Summary Профиль пользователя по email
// @Description Доступно только наставникам.
// @Tags Users
// @Produce  json
// @Security ApiKeyAuth
// @Param email path string true "Email пользователя"
// @Success 200 {object} response.Response "Профиль"
// @Failure 400 {object} response.ErrorResponse "Некорректно экранированный email"
// @Failure 401 {object} response.ErrorResponse "Токен недействителен или просрочен"
// @Failure 403 {object} response.ErrorResponse "Токен не передан или роль не mentor"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Router /user/{email} [get]
func (h *Handler) ByEmail(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.by_email"

	// chi отдаёт сегмент пути в исходном виде, если клиент его экранировал.
	email, err := url.PathUnescape(chi.URLParam(r, "email"))
	if err != nil {
		h.logger(r, op).Info("malformed email in path", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(response.MsgInvalidEmail))
		return
	}
	h.write(w, r, op, email)
}

func (h *Handler) write(w http.ResponseWriter, r *http.Request, op, email string) {
	log := h.logger(r, op)

	user, err := h.userService.GetUser(r.Context(), email)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrNoSuchAccount):
		log.Info("user not found")
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error(response.MsgUserNotFound))
		return
	default:
		log.Error("failed to get user", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error(response.MsgInternal))
		return
	}
	render.JSON(w, r, response.UserOnly(user))
}

func (h *Handler) logger(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}
