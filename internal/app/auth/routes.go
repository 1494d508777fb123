package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	// Регистрирует swagger-спецификацию для /docs.
	_ "github.com/magabrotheeeer/visionlab-auth/docs"
	"github.com/magabrotheeeer/visionlab-auth/internal/config"
	"github.com/magabrotheeeer/visionlab-auth/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/visionlab-auth/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/visionlab-auth/internal/http/handlers/auth/role"
	"github.com/magabrotheeeer/visionlab-auth/internal/http/handlers/health"
	"github.com/magabrotheeeer/visionlab-auth/internal/http/handlers/users"
	"github.com/magabrotheeeer/visionlab-auth/internal/http/middlewarectx"
	"github.com/magabrotheeeer/visionlab-auth/internal/metrics"
	"github.com/magabrotheeeer/visionlab-auth/internal/models"
	services "github.com/magabrotheeeer/visionlab-auth/internal/services/auth"
)

// RouteDeps — зависимости HTTP-маршрутов.
type RouteDeps struct {
	AuthService *services.AuthService
	Verifier    middlewarectx.TokenVerifier
	Metrics     *metrics.Metrics
	Store       health.Pinger
	// Cache — Redis, nil если он не настроен.
	Cache       health.Pinger
	RateLimit   config.RateLimit
	CORS        config.CORS
}

// RegisterRoutes регистрирует все маршруты приложения.
//
// Маршруты учётных записей доступны и под /api/v1, и в корне: фронтенд обращается к корневым путям.
func RegisterRoutes(r chi.Router, logger *slog.Logger, deps RouteDeps) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		cors.Handler(cors.Options{
			AllowedOrigins:   deps.CORS.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
			ExposedHeaders:   []string{"X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           300,
		}),
	)

	// Один лимитер на корневые и версионированные пути.
	limit := middlewarectx.RateLimitMiddleware(logger, deps.RateLimit.RPS, deps.RateLimit.Burst)

	accountRoutes := func(r chi.Router) {
		// Открытые конечные точки
		r.Group(func(r chi.Router) {
			r.Use(limit)
			r.Post("/register", register.New(logger, deps.AuthService).ServeHTTP)
			r.Post("/login", login.New(logger, deps.AuthService).ServeHTTP)
		})

		// Группа с проверкой токена
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RoleGate(deps.Verifier, logger, deps.Metrics))
			usersHandler := users.New(logger, deps.AuthService)

			r.Get("/user-role", role.New(logger).ServeHTTP)
			r.Get("/me", usersHandler.Me)
			r.With(middlewarectx.RequireRole(logger, deps.Metrics, models.RoleMentor)).
				Get("/user/{email}", usersHandler.ByEmail)
		})
	}

	r.Group(accountRoutes)
	r.Route("/api/v1", accountRoutes)

	r.Get("/healthz", health.New(logger, deps.Store, health.WithCache(deps.Cache)).ServeHTTP)
	r.Handle("/metrics", deps.Metrics.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
