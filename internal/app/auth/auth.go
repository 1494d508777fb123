// Package auth собирает сервис авторизации VisionLab: хранилище, кэш, брокер,
// HTTP API и внутренний gRPC-сервер.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"google.golang.org/grpc"

	"github.com/magabrotheeeer/visionlab-auth/internal/cache"
	"github.com/magabrotheeeer/visionlab-auth/internal/config"
	"github.com/magabrotheeeer/visionlab-auth/internal/events"
	"github.com/magabrotheeeer/visionlab-auth/internal/grpc/server"
	"github.com/magabrotheeeer/visionlab-auth/internal/lib/jwt"
	"github.com/magabrotheeeer/visionlab-auth/internal/lib/sl"
	"github.com/magabrotheeeer/visionlab-auth/internal/metrics"
	"github.com/magabrotheeeer/visionlab-auth/internal/migrations"
	services "github.com/magabrotheeeer/visionlab-auth/internal/services/auth"
	"github.com/magabrotheeeer/visionlab-auth/internal/storage/mongodb"
	"github.com/magabrotheeeer/visionlab-auth/internal/storage/postgresql"
)

const (
	shutdownTimeout = 15 * time.Second
	brokerRetries   = 5
	brokerDelay     = 2 * time.Second
)

// userStore — хранилище учётных записей вместе с управлением соединением.
type userStore interface {
	services.UserRepository
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type publisher interface {
	services.Publisher
	Close() error
}

// App держит все ресурсы сервиса и управляет их жизненным циклом.
type App struct {
	server     *http.Server
	grpcServer *grpc.Server
	listener   net.Listener
	logger     *slog.Logger
	store      userStore
	cache      *cache.Cache
	publisher  publisher
}

// New подключает хранилище и вспомогательные сервисы и собирает серверы.
// Redis и RabbitMQ необязательны: пустой адрес отключает соответствующую функцию.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.auth.New"

	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	app := &App{
		logger:    logger,
		store:     store,
		publisher: events.Noop{},
	}

	m := metrics.New()
	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL, jwt.WithIssuer(cfg.Issuer))
	opts := []services.Option{
		services.WithPasswordCost(cfg.Password.Cost),
		services.WithMetrics(m),
		services.WithLogger(logger),
	}

	if cfg.Redis.AddressRedis != "" {
		app.cache, err = cache.InitServer(ctx, cfg.Redis)
		if err != nil {
			app.close(ctx)
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		opts = append(opts,
			services.WithLoginGuard(services.NewCounterGuard(app.cache, cfg.LoginGuard.MaxAttempts, cfg.LoginGuard.Window)),
			services.WithProfileCache(app.cache, cfg.ProfileCacheTTL),
		)
	} else {
		logger.Warn("redis is not configured, login guard and profile cache are disabled")
	}

	if cfg.RabbitMQ.URL != "" {
		conn, err := events.Connect(ctx, cfg.RabbitMQ.URL, brokerRetries, brokerDelay)
		if err != nil {
			app.close(ctx)
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		pub, err := events.NewPublisher(conn, cfg.RabbitMQ.Exchange)
		if err != nil {
			_ = conn.Close()
			app.close(ctx)
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		app.publisher = pub
		opts = append(opts, services.WithPublisher(pub))
	}

	authService := services.NewAuthService(store, jwtMaker, opts...)

	deps := RouteDeps{
		AuthService: authService,
		Verifier:    jwtMaker,
		Metrics:     m,
		Store:       store,
		RateLimit:   cfg.RateLimit,
		CORS:        cfg.CORS,
	}
	if app.cache != nil {
		deps.Cache = app.cache
	}
	router := chi.NewRouter()
	RegisterRoutes(router, logger, deps)

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	if cfg.GRPCAuthAddress != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAuthAddress)
		if err != nil {
			app.close(ctx)
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		app.listener = lis
		app.grpcServer = server.NewGRPCServer(server.NewAuthServer(authService, logger), logger)
	}

	return app, nil
}

func openStore(ctx context.Context, cfg *config.Config) (userStore, error) {
	switch cfg.Storage.Driver {
	case config.DriverMongo:
		return mongodb.New(ctx, cfg.Storage.MongoURI, cfg.Storage.MongoDatabase)
	default:
		db, err := postgresql.New(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err = migrations.Run(db.DB, cfg.Storage.MigrationsPath); err != nil {
			_ = db.Close(ctx)
			return nil, err
		}
		return db, nil
	}
}

// Run запускает серверы и блокируется до отмены ctx или ошибки одного из них.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 2)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	if a.grpcServer != nil {
		go func() {
			a.logger.Info("Auth gRPC service listening on", slog.String("address", a.listener.Addr().String()))
			errCh <- a.grpcServer.Serve(a.listener)
		}()
	}

	var runErr error
	select {
	case runErr = <-errCh:
	case <-ctx.Done():
	}

	timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	a.logger.Info("shutting down servers gracefully")
	if err := a.server.Shutdown(timeoutCtx); err != nil {
		a.logger.Error("http shutdown failed", sl.Err(err))
		runErr = errors.Join(runErr, err)
	}
	if a.grpcServer != nil {
		a.grpcServer.GracefulStop()
	}
	a.close(timeoutCtx)
	return runErr
}

func (a *App) close(ctx context.Context) {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("failed to close publisher", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn("failed to close redis", sl.Err(err))
		}
	}
	if a.listener != nil && a.grpcServer == nil {
		_ = a.listener.Close()
	}
	if err := a.store.Close(ctx); err != nil {
		a.logger.Warn("failed to close store", sl.Err(err))
	}
}
