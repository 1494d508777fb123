// Package register реализует HTTP-обработчик регистрации учётной записи.
package register

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/visionlab-auth/internal/http/response"
	"github.com/magabrotheeeer/visionlab-auth/internal/lib/sl"
	"github.com/magabrotheeeer/visionlab-auth/internal/models"
	services "github.com/magabrotheeeer/visionlab-auth/internal/services/auth"
)

// Request — входные данные для регистрации.
//
// Email не проверяется на формат, только на наличие и длину.
type Request struct {
	Email    string `json:"email" validate:"required,max=254" example:"a@x.com"`
	Password string `json:"password" validate:"required,max=72" example:"pw123"`
	Role     string `json:"role" validate:"required,oneof=mentor student" example:"student"`
}

// Handler обрабатывает HTTP-запросы на регистрацию.
type Handler struct {
	log         *slog.Logger
	authService Service
	validate    *validator.Validate
}

// New создает Handler.
func New(log *slog.Logger, authService Service) *Handler {
	return &Handler{
		log:         log,
		authService: authService,
		validate:    validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Регистрация пользователя
// @Description Создаёт учётную запись с ролью mentor или student. Токен не выдаётся.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные пользователя"
// @Success 201 {object} response.Response "Пользователь зарегистрирован"
// @Failure 400 {object} response.ErrorResponse "Email уже занят или некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(response.MsgInvalidBody))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		var vErrs validator.ValidationErrors
		if !errors.As(err, &vErrs) {
			log.Error("validation failed", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(response.MsgInvalidBody))
			return
		}
		log.Info("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(vErrs))
		return
	}

	user, err := h.authService.Register(r.Context(), req.Email, req.Password, models.Role(req.Role))
	switch {
	case err == nil:
	case errors.Is(err, services.ErrAlreadyRegistered):
		log.Info("email already registered")
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(response.MsgAlreadyRegistered))
		return
	case errors.Is(err, services.ErrInvalidInput):
		log.Info("invalid registration input", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error(err.Error()))
		return
	default:
		log.Error("registration failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error(response.MsgInternal))
		return
	}

	log.Info("user registered", slog.String("user_id", user.ID), slog.String("role", user.Role.String()))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.Registered(user))
}
