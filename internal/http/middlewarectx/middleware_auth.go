// Package middlewarectx содержит HTTP middleware для проверки токенов сессии и ролей.
//
// RoleGate проверяет токен из заголовка Authorization локально, без обращения к хранилищу,
// и в случае успеха добавляет в контекст email и роль владельца токена.
// Отсутствующий токен даёт 403, недействительный или просроченный 401.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/magabrotheeeer/visionlab-auth/internal/http/response"
	"github.com/magabrotheeeer/visionlab-auth/internal/lib/sl"
	"github.com/magabrotheeeer/visionlab-auth/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// Email — ключ для email владельца токена в контексте
	Email Key = "email"
	// Role — ключ для роли владельца токена в контексте
	Role Key = "role"
)

const bearerPrefix = "Bearer "

// RoleGate возвращает middleware, который проверяет токен в заголовке Authorization.
//
// Заголовок может содержать токен как есть или в виде "Bearer <token>".
func RoleGate(verifier TokenVerifier, log *slog.Logger, metrics GateMetrics) func(http.Handler) http.Handler {
	if metrics == nil {
		metrics = noopGateMetrics{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.RoleGate"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			tokenStr := extractToken(r.Header.Get("Authorization"))
			if tokenStr == "" {
				log.Info("no token provided")
				metrics.ObserveGate(GateMissing)
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error(response.MsgNoToken))
				return
			}

			claims, err := verifier.ParseToken(tokenStr)
			if err != nil {
				log.Info("invalid or expired token", sl.Err(err))
				metrics.ObserveGate(GateInvalid)
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error(response.MsgUnauthorized))
				return
			}

			metrics.ObserveGate(GateOK)
			ctx := context.WithValue(r.Context(), Email, claims.Email)
			ctx = context.WithValue(ctx, Role, models.Role(claims.Role))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractToken(header string) string {
	header = strings.TrimSpace(header)
	if strings.EqualFold(header, strings.TrimSpace(bearerPrefix)) {
		return ""
	}
	if len(header) >= len(bearerPrefix) && strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		header = strings.TrimSpace(header[len(bearerPrefix):])
	}
	return header
}

// EmailFromContext возвращает email, положенный в контекст RoleGate.
func EmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(Email).(string)
	return email, ok && email != ""
}

// RoleFromContext возвращает роль, положенную в контекст RoleGate.
func RoleFromContext(ctx context.Context) (models.Role, bool) {
	role, ok := ctx.Value(Role).(models.Role)
	return role, ok && role != ""
}
