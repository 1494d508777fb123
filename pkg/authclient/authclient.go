// Package authclient — клиент gRPC-сервиса авторизации для других сервисов VisionLab.
package authclient

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/visionlab-auth/pkg/authv1"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// AuthClient оборачивает соединение и сгенерированный клиент сервиса.
type AuthClient struct {
	conn   *grpc.ClientConn
	client authv1.AuthServiceClient
}

// NewAuthClient создаёт клиента для адреса addr. Соединение устанавливается лениво,
// при первом вызове. Дополнительные опции добавляются после insecure-транспорта.
func NewAuthClient(addr string, opts ...grpc.DialOption) (*AuthClient, error) {
	const op = "authclient.NewAuthClient"

	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &AuthClient{conn: conn, client: authv1.NewAuthServiceClient(conn)}, nil
}

// Close закрывает соединение.
func (a *AuthClient) Close() error {
	return a.conn.Close()
}

// Register регистрирует учётную запись с ролью role.
func (a *AuthClient) Register(ctx context.Context, email, password, role string) (*authv1.RegisterResponse, error) {
	return a.client.Register(ctx, &authv1.RegisterRequest{
		Email:    email,
		Password: password,
		Role:     role,
	})
}

// Login возвращает токен сессии и роль.
func (a *AuthClient) Login(ctx context.Context, email, password string) (*authv1.LoginResponse, error) {
	return a.client.Login(ctx, &authv1.LoginRequest{
		Email:    email,
		Password: password,
	})
}

// ValidateToken проверяет токен на стороне сервиса авторизации.
func (a *AuthClient) ValidateToken(ctx context.Context, token string) (*authv1.ValidateTokenResponse, error) {
	return a.client.ValidateToken(ctx, &authv1.ValidateTokenRequest{
		Token: token,
	})
}
