package grpcserver

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/and161185/secure-query-proxy/internal/auth"
	"github.com/and161185/secure-query-proxy/internal/rpc"
)

// TokenVerifier verifies a bearer token and returns its subject.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// AuthUnary returns a unary server interceptor that requires a valid bearer
// token on every TransmissionService method and stores its subject in context.
// Calls to other services (health) pass through untouched.
func AuthUnary(v TokenVerifier) grpc.UnaryServerInterceptor {
	prefix := "/" + rpc.ServiceName + "/"
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		if !strings.HasPrefix(info.FullMethod, prefix) {
			return next(ctx, req)
		}
		ctx, err := authenticate(ctx, v)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "no auth")
		}
		return next(ctx, req)
	}
}

// authenticate extracts "authorization: Bearer <JWT>", verifies it and returns ctx carrying the subject.
func authenticate(ctx context.Context, v TokenVerifier) (context.Context, error) {
	tok, err := bearerTokenFromMD(ctx)
	if err != nil {
		return ctx, err
	}
	sub, err := v.Verify(tok)
	if err != nil {
		return ctx, err
	}
	return auth.WithSubject(ctx, sub), nil
}

func bearerTokenFromMD(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", errors.New("no metadata")
	}
	for _, v := range md.Get("authorization") {
		if t, ok := auth.BearerToken(v); ok {
			return t, nil
		}
	}
	return "", errors.New("no bearer token")
}
