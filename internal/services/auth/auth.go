// Package services содержит логику бизнес-уровня для работы с учётными записями:
// регистрацию, проверку учётных данных, выпуск и проверку токенов сессии.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/visionlab-auth/internal/lib/jwt"
	"github.com/magabrotheeeer/visionlab-auth/internal/lib/password"
	"github.com/magabrotheeeer/visionlab-auth/internal/lib/sl"
	"github.com/magabrotheeeer/visionlab-auth/internal/models"
	"github.com/magabrotheeeer/visionlab-auth/internal/storage"
)

// Ограничения входных данных.
const (
	MaxEmailLength    = 254
	MaxPasswordLength = 72
)

// EventUserRegistered — ключ маршрутизации события о новой учётной записи.
const EventUserRegistered = "user.registered"

// Результаты операций для метрик.
const (
	ResultCreated       = "created"
	ResultDuplicate     = "duplicate"
	ResultInvalid       = "invalid"
	ResultError         = "error"
	ResultSuccess       = "success"
	ResultNoAccount     = "no_account"
	ResultWrongPassword = "wrong_password"
	ResultLocked        = "locked"
)

var (
	// ErrAlreadyRegistered — email уже занят.
	ErrAlreadyRegistered = errors.New("already registered")
	// ErrNoSuchAccount — учётная запись с таким email не найдена.
	ErrNoSuchAccount = errors.New("no such account")
	// ErrWrongPassword — пароль не подошёл.
	ErrWrongPassword = errors.New("wrong password")
	// ErrStoreUnavailable — хранилище учётных записей недоступно.
	ErrStoreUnavailable = errors.New("account store unavailable")
	// ErrTooManyAttempts — превышено число неудачных попыток входа.
	ErrTooManyAttempts = errors.New("too many failed login attempts")
	// ErrInvalidInput — входные данные нарушают контракт операции.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidToken — токен не прошёл проверку подписи или срока действия.
	ErrInvalidToken = jwt.ErrInvalidToken
)

// UserRepository описывает контракт для работы с пользователями в хранилище.
type UserRepository interface {
	// FindByEmail возвращает пользователя или storage.ErrUserNotFound.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// Insert сохраняет пользователя или возвращает storage.ErrUserExists.
	Insert(ctx context.Context, user *models.User) error
}

// LoginGuard ограничивает число попыток входа по email.
// Attempt вызывается до проверки пароля, Reset после успешного входа.
type LoginGuard interface {
	Attempt(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

// ProfileCache кэширует публичные профили пользователей.
type ProfileCache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// Publisher публикует события об учётных записях.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// Metrics считает результаты операций.
type Metrics interface {
	ObserveRegistration(result string)
	ObserveLogin(result string)
}

// AuthService отвечает за регистрацию, вход и валидацию JWT.
type AuthService struct {
	users     UserRepository
	jwtMaker  jwt.Maker
	cost      int
	guard     LoginGuard
	cache     ProfileCache
	cacheTTL  time.Duration
	publisher Publisher
	metrics   Metrics
	log       *slog.Logger
}

// Option настраивает AuthService.
type Option func(*AuthService)

// WithPasswordCost задаёт стоимость bcrypt.
func WithPasswordCost(cost int) Option {
	return func(s *AuthService) { s.cost = cost }
}

// WithLoginGuard включает ограничение попыток входа.
func WithLoginGuard(g LoginGuard) Option {
	return func(s *AuthService) { s.guard = g }
}

// WithProfileCache включает кэширование профилей на ttl.
func WithProfileCache(c ProfileCache, ttl time.Duration) Option {
	return func(s *AuthService) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithPublisher включает публикацию событий.
func WithPublisher(p Publisher) Option {
	return func(s *AuthService) { s.publisher = p }
}

// WithMetrics включает учёт результатов операций.
func WithMetrics(m Metrics) Option {
	return func(s *AuthService) { s.metrics = m }
}

// WithLogger задаёт логгер.
func WithLogger(l *slog.Logger) Option {
	return func(s *AuthService) { s.log = l }
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, opts ...Option) *AuthService {
	s := &AuthService{
		users:     users,
		jwtMaker:  jwtMaker,
		cost:      password.DefaultCost,
		guard:     noopGuard{},
		publisher: noopPublisher{},
		metrics:   noopMetrics{},
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register создает учётную запись с bcrypt-хэшем пароля и указанной ролью.
//
// Повторная регистрация email, в том числе проигранная гонка за уникальный индекс,
// возвращает ErrAlreadyRegistered и не меняет существующую запись.
func (s *AuthService) Register(ctx context.Context, email, rawPassword string, role models.Role) (models.PublicUser, error) {
	const op = "services.auth.Register"
	log := s.log.With(sl.Op(op))

	if err := validateCredentials(email, rawPassword); err != nil {
		s.metrics.ObserveRegistration(ResultInvalid)
		return models.PublicUser{}, fmt.Errorf("%s: %w", op, err)
	}
	if !role.Valid() {
		s.metrics.ObserveRegistration(ResultInvalid)
		return models.PublicUser{}, fmt.Errorf("%s: %w: unknown role %q", op, ErrInvalidInput, role)
	}

	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		s.metrics.ObserveRegistration(ResultDuplicate)
		return models.PublicUser{}, fmt.Errorf("%s: %w", op, ErrAlreadyRegistered)
	case !errors.Is(err, storage.ErrUserNotFound):
		s.metrics.ObserveRegistration(ResultError)
		return models.PublicUser{}, fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
	}

	hashed, err := password.GetHash(rawPassword, s.cost)
	if err != nil {
		s.metrics.ObserveRegistration(ResultError)
		return models.PublicUser{}, fmt.Errorf("%s: %w", op, err)
	}
	user := &models.User{
		Email:        email,
		PasswordHash: hashed,
		Role:         role,
	}
	if err = s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			s.metrics.ObserveRegistration(ResultDuplicate)
			return models.PublicUser{}, fmt.Errorf("%s: %w", op, ErrAlreadyRegistered)
		}
		s.metrics.ObserveRegistration(ResultError)
		return models.PublicUser{}, fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
	}
	s.metrics.ObserveRegistration(ResultCreated)

	public := user.Public()
	if err = s.publisher.Publish(ctx, EventUserRegistered, public); err != nil {
		log.Warn("failed to publish registration event", slog.String("user_id", public.ID), sl.Err(err))
	}
	return public, nil
}

// Login проверяет пароль пользователя и выпускает токен сессии.
// Возвращает токен и роль пользователя.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (string, models.Role, error) {
	const op = "services.auth.Login"
	log := s.log.With(sl.Op(op))

	if err := s.guard.Attempt(ctx, email); err != nil {
		if errors.Is(err, ErrTooManyAttempts) {
			s.metrics.ObserveLogin(ResultLocked)
			return "", "", fmt.Errorf("%s: %w", op, err)
		}
		log.Warn("login guard unavailable", sl.Err(err))
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			s.metrics.ObserveLogin(ResultNoAccount)
			return "", "", fmt.Errorf("%s: %w", op, ErrNoSuchAccount)
		}
		s.metrics.ObserveLogin(ResultError)
		return "", "", fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
	}

	if err = password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			s.metrics.ObserveLogin(ResultWrongPassword)
			return "", "", fmt.Errorf("%s: %w", op, ErrWrongPassword)
		}
		s.metrics.ObserveLogin(ResultError)
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.jwtMaker.GenerateToken(user.Email, user.Role.String())
	if err != nil {
		s.metrics.ObserveLogin(ResultError)
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	if err = s.guard.Reset(ctx, email); err != nil {
		log.Warn("failed to reset login guard", sl.Err(err))
	}
	s.metrics.ObserveLogin(ResultSuccess)
	return token, user.Role, nil
}

// ValidateToken проверяет JWT и возвращает его claims.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*jwt.CustomClaims, error) {
	const op = "services.auth.ValidateToken"
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return claims, nil
}

// GetUser возвращает публичный профиль пользователя по email.
// Профили неизменяемы, поэтому кэш читается без проверки актуальности.
func (s *AuthService) GetUser(ctx context.Context, email string) (models.PublicUser, error) {
	const op = "services.auth.GetUser"
	log := s.log.With(sl.Op(op))

	key := profileKey(email)
	if s.cache != nil {
		var cached models.PublicUser
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			log.Warn("profile cache read failed", sl.Err(err))
		}
		if found {
			return cached, nil
		}
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return models.PublicUser{}, fmt.Errorf("%s: %w", op, ErrNoSuchAccount)
		}
		return models.PublicUser{}, fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
	}
	public := user.Public()

	if s.cache != nil {
		if err = s.cache.Set(ctx, key, public, s.cacheTTL); err != nil {
			log.Warn("profile cache write failed", sl.Err(err))
		}
	}
	return public, nil
}

func profileKey(email string) string {
	return "profile:" + email
}

func validateCredentials(email, rawPassword string) error {
	switch {
	case email == "":
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	case len(email) > MaxEmailLength:
		return fmt.Errorf("%w: email is too long", ErrInvalidInput)
	case rawPassword == "":
		return fmt.Errorf("%w: password is required", ErrInvalidInput)
	case len(rawPassword) > MaxPasswordLength:
		return fmt.Errorf("%w: password is too long", ErrInvalidInput)
	}
	return nil
}

type noopGuard struct{}

func (noopGuard) Attempt(context.Context, string) error { return nil }
func (noopGuard) Reset(context.Context, string) error   { return nil }

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string, any) error { return nil }

type noopMetrics struct{}

func (noopMetrics) ObserveRegistration(string) {}
func (noopMetrics) ObserveLogin(string)        {}
