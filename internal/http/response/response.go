// Package response содержит вспомогательные типы и функции для формирования
// JSON‑ответов HTTP‑обработчиков в формате, который ожидает фронтенд VisionLab:
// поле message для статуса операции и дополнительные поля token, role и user.
package response

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator"
	"github.com/magabrotheeeer/visionlab-auth/internal/models"
)

// Сообщения, на которые опирается клиент.
const (
	MsgRegistered        = "User registered successfully"
	MsgAlreadyRegistered = "Already registered"
	MsgSuccess           = "Success"
	MsgNoRecords         = "No records found!"
	MsgWrongPassword     = "Wrong password"
	MsgNoToken           = "No token provided"
	MsgUnauthorized      = "Unauthorized"
	MsgForbidden         = "Forbidden"
	MsgUserNotFound      = "User not found"
	MsgTooManyRequests   = "Too many requests"
	MsgTooManyAttempts   = "Too many failed login attempts"
	MsgInvalidBody       = "Invalid request body"
	MsgInvalidEmail      = "Invalid email"
	MsgInternal          = "Internal server error"
	MsgOK                = "OK"
)

// Response описывает структуру JSON‑ответа сервера.
// Пустые поля не попадают в ответ.
type Response struct {
	Message string             `json:"message,omitempty"`
	Token   string             `json:"token,omitempty"`
	Role    models.Role        `json:"role,omitempty"`
	User    *models.PublicUser `json:"user,omitempty"`
}

// ErrorResponse — структура ошибки для Swagger-документации.
type ErrorResponse struct {
	Message string `json:"message" example:"Unauthorized"`
}

// Error возвращает Response с сообщением об ошибке.
func Error(msg string) Response {
	return Response{Message: msg}
}

// Registered — ответ на успешную регистрацию.
func Registered(user models.PublicUser) Response {
	return Response{Message: MsgRegistered, User: &user}
}

// LoggedIn — ответ на успешный вход.
func LoggedIn(token string, role models.Role) Response {
	return Response{Message: MsgSuccess, Token: token, Role: role}
}

// RoleOnly — ответ с ролью владельца токена.
func RoleOnly(role models.Role) Response {
	return Response{Role: role}
}

// UserOnly — ответ с публичным профилем.
func UserOnly(user models.PublicUser) Response {
	return Response{User: &user}
}

// ValidationError формирует Response на основе ошибок валидации.
// Каждое нарушение формируется в человеко‑читаемый текст, объединённый через запятую.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "max":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at most %s characters long", err.Field(), err.Param()))
		case "oneof":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be one of: %s", err.Field(), err.Param()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not valid", err.Field()))
		}
	}
	return Response{Message: strings.Join(errsMsgs, ", ")}
}
