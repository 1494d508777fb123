// Package login реализует HTTP-обработчик входа по email и паролю.
//
// При успешной проверке пароля возвращается JSON с токеном сессии и ролью;
// неизвестный email и неверный пароль различаются кодом и сообщением.
package login

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
	services "github.com/magabrotheeeer/visionlab-auth/internal/services/auth"
)

// Request — структура входных данных для входа.
type Request struct {
	Email    string `json:"email" validate:"required,max=254" example:"a@x.com"`
	Password string `json:"password" validate:"required,max=72" example:"pw123"`
}

// Handler обрабатывает HTTP-запросы для входа.
type Handler struct {
	log         *slog.Logger        // Логгер для записи операций и ошибок
	authService Service             // Сервис аутентификации
	validate    *validator.Validate // Валидатор для проверки входных данных
}

// New создает новый экземпляр Handler с указанными логгером и сервисом аутентификации.
func New(log *slog.Logger, authService Service) *Handler {
	return &Handler{
		log:         log,
		authService: authService,
		validate:    validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Вход пользователя
// @Description Проверяет email и пароль. Возвращает токен сессии и роль.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Учетные данные пользователя"
// @Success 200 {object} response.Response "Успешный вход"
// @Failure 400 {object} response.ErrorResponse "Неверный пароль или некорректный JSON"
// @Failure 404 {object} response.ErrorResponse "Учётная запись не найдена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 429 {object} response.ErrorResponse "Слишком много неудачных попыток"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

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

	token, role, err := h.authService.Login(r.Context(), req.Email, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrNoSuchAccount):
		log.Info("no account for email")
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error(response.MsgNoRecords))
		return
	case errors.Is(err, services.ErrWrongPassword):
		log.Info("wrong password")
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(response.MsgWrongPassword))
		return
	case errors.Is(err, services.ErrTooManyAttempts):
		log.Warn("login locked after repeated failures")
		render.Status(r, http.StatusTooManyRequests)
		render.JSON(w, r, response.Error(response.MsgTooManyAttempts))
		return
	default:
		log.Error("login failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error(response.MsgInternal))
		return
	}

	log.Info("login success", slog.String("role", role.String()))
	render.JSON(w, r, response.LoggedIn(token, role))
}
