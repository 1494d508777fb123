package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/magabrotheeeer/visionlab-auth/pkg/authv1"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// requestIDHeader — ключ метаданных с идентификатором запроса.
const requestIDHeader = "x-request-id"

// LoggingInterceptor логирует каждый унарный вызов с его кодом и длительностью.
// Если клиент не передал x-request-id, идентификатор генерируется.
func LoggingInterceptor(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		reqID := requestID(ctx)
		start := time.Now()

		resp, err := handler(ctx, req)

		log.Info("grpc request",
			slog.String("method", info.FullMethod),
			slog.String("request_id", reqID),
			slog.String("code", status.Code(err).String()),
			slog.Duration("duration", time.Since(start)),
		)
		return resp, err
	}
}

// RecoveryInterceptor превращает панику обработчика в codes.Internal.
func RecoveryInterceptor(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("grpc handler panicked",
					slog.String("method", info.FullMethod),
					slog.Any("panic", r),
				)
				err = status.Error(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}

func requestID(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(requestIDHeader); len(values) > 0 && values[0] != "" {
			return values[0]
		}
	}
	return uuid.NewString()
}

// NewGRPCServer создаёт grpc.Server с цепочкой перехватчиков и зарегистрированным сервисом.
func NewGRPCServer(srv *AuthServer, log *slog.Logger, opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(
		RecoveryInterceptor(log),
		LoggingInterceptor(log),
	))
	s := grpc.NewServer(opts...)
	authv1.RegisterAuthServiceServer(s, srv)
	return s
}
