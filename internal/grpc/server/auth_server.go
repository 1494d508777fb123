// Package server реализует gRPC-сервер для авторизационного сервиса.
//
// AuthServer обрабатывает gRPC-запросы регистрации, входа и валидации JWT токенов.
// Логирует операции и ошибки, делегирует бизнес-логику AuthService
// и переводит доменные ошибки в коды gRPC.
package server

import (
	"context"
	"errors"
	"log/slog"

	"github.com/magabrotheeeer/visionlab-auth/internal/lib/jwt"
	"github.com/magabrotheeeer/visionlab-auth/internal/lib/sl"
	"github.com/magabrotheeeer/visionlab-auth/internal/models"
	services "github.com/magabrotheeeer/visionlab-auth/internal/services/auth"
	"github.com/magabrotheeeer/visionlab-auth/pkg/authv1"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AuthService — операции сервиса учётных записей, нужные gRPC-серверу.
type AuthService interface {
	Register(ctx context.Context, email, password string, role models.Role) (models.PublicUser, error)
	Login(ctx context.Context, email, password string) (string, models.Role, error)
	ValidateToken(ctx context.Context, token string) (*jwt.CustomClaims, error)
}

// AuthServer реализует gRPC-сервис авторизации
type AuthServer struct {
	authService AuthService
	log         *slog.Logger
}

var _ authv1.AuthServiceServer = (*AuthServer)(nil)

// NewAuthServer создает новый экземпляр AuthServer с указанным сервисом аутентификации и логгером.
func NewAuthServer(authService AuthService, logger *slog.Logger) *AuthServer {
	return &AuthServer{
		authService: authService,
		log:         logger,
	}
}

// Register создает нового пользователя
func (s *AuthServer) Register(ctx context.Context, req *authv1.RegisterRequest) (*authv1.RegisterResponse, error) {
	const op = "grpc.server.Register"
	log := s.log.With(sl.Op(op), slog.String("email", req.Email))

	user, err := s.authService.Register(ctx, req.Email, req.Password, models.Role(req.Role))
	if err != nil {
		log.Info("register failed", sl.Err(err))
		return nil, toStatus(err)
	}
	return &authv1.RegisterResponse{
		ID:        user.ID,
		Email:     user.Email,
		Role:      user.Role.String(),
		CreatedAt: user.CreatedAt.Unix(),
	}, nil
}

// Login проверяет пользователя и генерирует JWT
func (s *AuthServer) Login(ctx context.Context, req *authv1.LoginRequest) (*authv1.LoginResponse, error) {
	const op = "grpc.server.Login"
	log := s.log.With(sl.Op(op), slog.String("email", req.Email))

	token, role, err := s.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		log.Info("login failed", sl.Err(err))
		return nil, toStatus(err)
	}
	return &authv1.LoginResponse{
		Token: token,
		Role:  role.String(),
	}, nil
}

// ValidateToken проверяет валидность JWT и возвращает данные пользователя
func (s *AuthServer) ValidateToken(ctx context.Context, req *authv1.ValidateTokenRequest) (*authv1.ValidateTokenResponse, error) {
	const op = "grpc.server.ValidateToken"

	if req.Token == "" {
		return nil, status.Error(codes.Unauthenticated, "no token provided")
	}
	claims, err := s.authService.ValidateToken(ctx, req.Token)
	if err != nil {
		s.log.Info("invalid token", sl.Op(op), sl.Err(err))
		return nil, toStatus(err)
	}
	resp := &authv1.ValidateTokenResponse{
		Email: claims.Email,
		Role:  claims.Role,
	}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Unix()
	}
	return resp, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, services.ErrAlreadyRegistered):
		return status.Error(codes.AlreadyExists, "already registered")
	case errors.Is(err, services.ErrNoSuchAccount):
		return status.Error(codes.NotFound, "no records found")
	case errors.Is(err, services.ErrWrongPassword):
		return status.Error(codes.Unauthenticated, "wrong password")
	case errors.Is(err, services.ErrInvalidToken):
		return status.Error(codes.Unauthenticated, "invalid token")
	case errors.Is(err, services.ErrTooManyAttempts):
		return status.Error(codes.ResourceExhausted, "too many failed login attempts")
	case errors.Is(err, services.ErrStoreUnavailable):
		return status.Error(codes.Unavailable, "account store unavailable")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
