package middlewarectx

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/magabrotheeeer/visionlab-auth/internal/http/response"
	"github.com/magabrotheeeer/visionlab-auth/internal/models"
)

// RequireRole пропускает запрос дальше, только если роль из RoleGate входит в roles.
// Должен стоять после RoleGate.
func RequireRole(log *slog.Logger, metrics GateMetrics, roles ...models.Role) func(http.Handler) http.Handler {
	if metrics == nil {
		metrics = noopGateMetrics{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.RequireRole"

			role, ok := RoleFromContext(r.Context())
			if !ok || !slices.Contains(roles, role) {
				log.With(
					slog.String("op", op),
					slog.String("request_id", middleware.GetReqID(r.Context())),
				).Info("role is not allowed", slog.String("role", role.String()))
				metrics.ObserveGate(GateForbidden)
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error(response.MsgForbidden))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
