// Command sqp-server starts the secure query proxy gRPC and HTTP servers.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/and161185/secure-query-proxy/internal/api"
	"github.com/and161185/secure-query-proxy/internal/auth"
	"github.com/and161185/secure-query-proxy/internal/config"
	"github.com/and161185/secure-query-proxy/internal/logging"
	"github.com/and161185/secure-query-proxy/internal/rpc"
	grpcserver "github.com/and161185/secure-query-proxy/internal/server/grpc"
	"github.com/and161185/secure-query-proxy/internal/service"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

const shutdownTimeout = 5 * time.Second

// main loads configuration, opens storage, and serves gRPC and HTTP until signalled.
func main() {
	envFile := flag.String("env", ".env", "optional env file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("sqp-server %s (%s)\n", version, buildDate)
		return
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	lc := logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}
	if cfg.Dev {
		lc.Format = "console"
	}
	logger, err := logging.New(lc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(2)
	}
	defer logging.Sync(logger)
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("grpc", cfg.GRPCAddr),
		zap.String("http", cfg.HTTPAddr),
	)

	if err := run(cfg, logger); err != nil {
		logger.Error("server error", zap.Error(err))
		logging.Sync(logger)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func run(cfg config.Config, logger *zap.Logger) error {
	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	signer, err := auth.NewSigner([]byte(cfg.JWTKey))
	if err != nil {
		return err
	}

	be, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer be.close()

	opts, closeNotify, err := serviceOptions(ctx, cfg, be, logger)
	if err != nil {
		return err
	}
	defer closeNotify()

	svc := service.NewTransmissionService(be.transmissions, be.audit, be.keys,
		logger.With(logging.Component("service")), opts...)

	// gRPC server with interceptors
	creds := insecure.NewCredentials()
	if cfg.TLSEnabled() {
		if creds, err = credentials.NewServerTLSFromFile(cfg.TLSCert, cfg.TLSKey); err != nil {
			return fmt.Errorf("load TLS cert/key: %w", err)
		}
	} else {
		logger.Warn("serving without TLS (dev)")
	}
	grpcLog := logger.With(logging.Component("grpc"))
	gs := grpc.NewServer(
		grpc.Creds(creds),
		rpc.ServerOption(),
		grpcserver.Chain(grpcLog, signer),
	)
	rpc.RegisterTransmissionServiceServer(gs, grpcserver.New(svc))

	// Health & reflection (dev)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	if cfg.Dev {
		reflection.Register(gs)
	}

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.GRPCAddr, err)
	}

	// HTTP API
	hsrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewHandler(svc, signer, logger.With(logging.Component("http"))).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("listening", logging.Component("grpc"), logging.Addr(cfg.GRPCAddr), zap.Bool("tls", cfg.TLSEnabled()))
		errCh <- gs.Serve(lis)
	}()
	go func() {
		logger.Info("listening", logging.Component("http"), logging.Addr(cfg.HTTPAddr), zap.Bool("tls", cfg.TLSEnabled()))
		var err error
		if cfg.TLSEnabled() {
			err = hsrv.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
		} else {
			err = hsrv.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errCh <- err
	}()

	// Wait for stop
	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	hs.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := hsrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}

	// graceful shutdown
	done := make(chan struct{})
	go func() {
		gs.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		gs.Stop()
	}
	return serveErr
}
