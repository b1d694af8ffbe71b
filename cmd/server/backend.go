package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/secure-query-proxy/internal/config"
	"github.com/and161185/secure-query-proxy/internal/logging"
	"github.com/and161185/secure-query-proxy/internal/migrate"
	"github.com/and161185/secure-query-proxy/internal/model"
	"github.com/and161185/secure-query-proxy/internal/notify"
	"github.com/and161185/secure-query-proxy/internal/repository"
	"github.com/and161185/secure-query-proxy/internal/repository/memory"
	"github.com/and161185/secure-query-proxy/internal/repository/postgres"
	"github.com/and161185/secure-query-proxy/internal/seed"
	"github.com/and161185/secure-query-proxy/internal/service"
)

// backend bundles the repositories of one storage kind.
type backend struct {
	transmissions repository.TransmissionRepository
	audit         repository.AuditRepository
	keys          repository.KeyPairRepository
	schema        repository.SchemaRepository
	close         func()
}

func openBackend(ctx context.Context, cfg config.Config, log *zap.Logger) (*backend, error) {
	switch cfg.Storage {
	case config.StoragePostgres:
		return openPostgres(ctx, cfg, log)
	default:
		return openMemory(cfg, log)
	}
}

func openMemory(cfg config.Config, log *zap.Logger) (*backend, error) {
	var (
		now           = time.Now().UTC()
		transmissions []model.Transmission
		audit         []model.AuditLog
		keys          []model.KeyPair
	)
	if cfg.Seed {
		transmissions = seed.Transmissions(now)
		audit = seed.AuditLogs(now)
		keys = seed.KeyPairs(now)
	}

	var opts []memory.Option
	if cfg.IDScheme == config.IDUUID {
		opts = append(opts, memory.WithIDs(repository.UUIDs()))
	}
	ts, err := memory.NewTransmissionStore(transmissions, opts...)
	if err != nil {
		return nil, err
	}
	log.Info("storage ready", logging.Storage(config.StorageMemory),
		zap.String("ids", cfg.IDScheme), zap.Bool("seed", cfg.Seed))
	return &backend{
		transmissions: ts,
		audit:         memory.NewAuditStore(audit),
		keys:          memory.NewKeyPairStore(keys),
		schema:        memory.NewSchemaStore(seed.Schema()),
		close:         func() {},
	}, nil
}

func openPostgres(ctx context.Context, cfg config.Config, log *zap.Logger) (*backend, error) {
	if err := migrate.Up(ctx, cfg.DatabaseURL, cfg.Seed); err != nil {
		return nil, fmt.Errorf("migrate up: %w", err)
	}
	db, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	log.Info("storage ready", logging.Storage(config.StoragePostgres), zap.Bool("seed", cfg.Seed))
	return &backend{
		transmissions: postgres.NewTransmissionRepo(db),
		audit:         postgres.NewAuditRepo(db),
		keys:          postgres.NewKeyPairRepo(db),
		schema:        postgres.NewSchemaRepo(db, seed.SchemaName),
		close:         db.Close,
	}, nil
}

// serviceOptions translates config toggles into service options.
// The returned cleanup closes the Redis client when one was opened.
func serviceOptions(ctx context.Context, cfg config.Config, be *backend, log *zap.Logger) ([]service.Option, func(), error) {
	opts := []service.Option{
		service.WithAuditEvents(cfg.AuditEvents),
		service.WithSchema(be.schema),
	}
	if cfg.SimulateLatency {
		opts = append(opts, service.WithLatency(service.DemoLatency()))
	}
	if cfg.RedisURL == "" {
		return opts, func() {}, nil
	}
	rdb, err := notify.Dial(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	log.Info("audit fan-out enabled", logging.Component("notify"), zap.String("channel", cfg.AuditChannel))
	opts = append(opts, service.WithAuditSink(notify.NewRedisSink(rdb, cfg.AuditChannel)))
	return opts, func() { _ = rdb.Close() }, nil
}
