package grpcserver

import (
	"context"
	"runtime/debug"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"github.com/and161185/secure-query-proxy/internal/auth"
	"github.com/and161185/secure-query-proxy/internal/logging"
)

// LoggingUnary returns a unary server interceptor for structured logging.
// Only call metadata is logged, queries never are.
func LoggingUnary(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := next(ctx, req)
		code := status.Code(err)

		var remote string
		if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
			remote = p.Addr.String()
		}

		fields := []zap.Field{
			logging.Method(info.FullMethod),
			zap.String("code", code.String()),
			zap.Duration("dur", time.Since(start)),
			logging.Remote(remote),
		}
		if code == codes.Internal || code == codes.Unknown {
			log.Warn("grpc", append(fields, zap.Error(err))...)
			return resp, err
		}
		log.Info("grpc", fields...)
		return resp, err
	}
}

// Chain returns the unary interceptors in serving order. RecoverUnary sits
// inside AuthUnary so a recovered panic is logged with the caller's subject,
// and LoggingUnary sees the Internal status it produces.
func Chain(log *zap.Logger, tokens TokenVerifier) grpc.ServerOption {
	return grpc.ChainUnaryInterceptor(
		LoggingUnary(log),
		AuthUnary(tokens),
		RecoverUnary(log),
	)
}

// RecoverUnary returns a unary server interceptor that recovers from panics.
// The actor field is empty unless an authenticated context reaches it.
func RecoverUnary(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				sub, _ := auth.SubjectFromCtx(ctx)
				log.Error("panic",
					zap.Any("reason", r),
					zap.ByteString("stack", debug.Stack()),
					logging.Method(info.FullMethod),
					logging.Actor(sub),
				)
				err = status.Error(codes.Internal, "internal")
			}
		}()
		return next(ctx, req)
	}
}
