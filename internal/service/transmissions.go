// Package service contains the application service behind the transport layers.
package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/secure-query-proxy/internal/auth"
	"github.com/and161185/secure-query-proxy/internal/errs"
	"github.com/and161185/secure-query-proxy/internal/logging"
	"github.com/and161185/secure-query-proxy/internal/model"
	"github.com/and161185/secure-query-proxy/internal/repository"
)

// SystemActor is recorded when no authenticated subject is available.
const SystemActor = "system"

// TransmissionService defines the transmission store operations.
type TransmissionService interface {
	// List returns all transmissions in insertion order.
	List(ctx context.Context) ([]model.Transmission, error)
	// Create stores a new pending transmission.
	Create(ctx context.Context, in model.NewTransmission) (model.Transmission, error)
	// UpdateStatus moves a pending transmission to completed or rejected.
	UpdateStatus(ctx context.Context, id string, status model.TransmissionStatus) (model.Transmission, error)
	// AuditLogs returns the audit trail in insertion order.
	AuditLogs(ctx context.Context) ([]model.AuditLog, error)
	// KeyPairs returns key metadata in insertion order.
	KeyPairs(ctx context.Context) ([]model.KeyPair, error)
	// Schema returns the receiver catalog senders compose queries against.
	Schema(ctx context.Context) (model.Schema, error)
}

// AuditSink receives every audit entry after it has been stored.
type AuditSink interface {
	Publish(ctx context.Context, e model.AuditLog) error
}

type TransmissionServiceImpl struct {
	transmissions repository.TransmissionRepository
	audit         repository.AuditRepository
	keys          repository.KeyPairRepository
	schema        repository.SchemaRepository
	log           *zap.Logger

	auditEvents bool
	latency     Latency
	sink        AuditSink
}

// Option customizes TransmissionServiceImpl.
type Option func(*TransmissionServiceImpl)

// WithAuditEvents toggles audit entries for create and status changes. Enabled by default.
func WithAuditEvents(on bool) Option {
	return func(s *TransmissionServiceImpl) { s.auditEvents = on }
}

// WithLatency adds an artificial delay before each operation.
func WithLatency(l Latency) Option {
	return func(s *TransmissionServiceImpl) { s.latency = l }
}

// WithAuditSink forwards stored audit entries to sink.
func WithAuditSink(sink AuditSink) Option {
	return func(s *TransmissionServiceImpl) { s.sink = sink }
}

// WithSchema serves repo as the receiver catalog. Without it the catalog is empty.
func WithSchema(repo repository.SchemaRepository) Option {
	return func(s *TransmissionServiceImpl) { s.schema = repo }
}

// NewTransmissionService constructs TransmissionService over the given repositories.
func NewTransmissionService(
	transmissions repository.TransmissionRepository,
	audit repository.AuditRepository,
	keys repository.KeyPairRepository,
	log *zap.Logger,
	opts ...Option,
) *TransmissionServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	s := &TransmissionServiceImpl{
		transmissions: transmissions,
		audit:         audit,
		keys:          keys,
		log:           log,
		auditEvents:   true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns a snapshot of all transmissions.
func (s *TransmissionServiceImpl) List(ctx context.Context) ([]model.Transmission, error) {
	if err := s.latency.wait(ctx, s.latency.List); err != nil {
		return nil, err
	}
	return s.transmissions.List(ctx)
}

// Create stores a new pending transmission and records TRANSMISSION_CREATED.
// Input is not validated here; rejecting empty queries is the caller's job.
func (s *TransmissionServiceImpl) Create(ctx context.Context, in model.NewTransmission) (model.Transmission, error) {
	if err := s.latency.wait(ctx, s.latency.Create); err != nil {
		return model.Transmission{}, err
	}
	t, err := s.transmissions.Create(ctx, in)
	if err != nil {
		return model.Transmission{}, fmt.Errorf("create transmission: %w", err)
	}

	actor, ok := auth.SubjectFromCtx(ctx)
	if !ok {
		actor = t.Sender
	}
	s.log.Info("transmission created",
		logging.TransmissionID(t.ID), logging.Actor(actorOr(actor)), zap.String("receiver", t.Receiver))
	s.record(ctx, model.AuditLog{
		Timestamp: t.Timestamp,
		Action:    model.ActionTransmissionCreated,
		User:      actorOr(actor),
		Details:   fmt.Sprintf("Created new transmission to %s", t.Receiver),
	})
	return t, nil
}

// UpdateStatus applies a one-shot terminal transition and records it.
func (s *TransmissionServiceImpl) UpdateStatus(
	ctx context.Context, id string, status model.TransmissionStatus,
) (model.Transmission, error) {
	if !status.IsTerminal() {
		return model.Transmission{}, fmt.Errorf("status %q: %w", status, errs.ErrInvalidStatus)
	}
	if err := s.latency.wait(ctx, s.latency.Update); err != nil {
		return model.Transmission{}, err
	}
	t, err := s.transmissions.UpdateStatus(ctx, id, status)
	if err != nil {
		return model.Transmission{}, err
	}

	action, verb := model.ActionTransmissionAccepted, "Accepted"
	if status == model.StatusRejected {
		action, verb = model.ActionTransmissionRejected, "Rejected"
	}
	actor, _ := auth.SubjectFromCtx(ctx)
	s.log.Info("transmission status updated",
		logging.TransmissionID(t.ID), logging.Actor(actorOr(actor)), zap.String("status", string(t.Status)))
	s.record(ctx, model.AuditLog{
		Action:  action,
		User:    actorOr(actor),
		Details: fmt.Sprintf("%s transmission #%s from %s", verb, t.ID, t.Sender),
	})
	return t, nil
}

// AuditLogs returns the audit trail.
func (s *TransmissionServiceImpl) AuditLogs(ctx context.Context) ([]model.AuditLog, error) {
	if err := s.latency.wait(ctx, s.latency.AuditLogs); err != nil {
		return nil, err
	}
	return s.audit.List(ctx)
}

// KeyPairs returns key metadata.
func (s *TransmissionServiceImpl) KeyPairs(ctx context.Context) ([]model.KeyPair, error) {
	if err := s.latency.wait(ctx, s.latency.KeyPairs); err != nil {
		return nil, err
	}
	return s.keys.List(ctx)
}

// Schema returns the receiver catalog.
func (s *TransmissionServiceImpl) Schema(ctx context.Context) (model.Schema, error) {
	if err := s.latency.wait(ctx, s.latency.Schema); err != nil {
		return model.Schema{}, err
	}
	if s.schema == nil {
		return model.Schema{Tables: []model.TableSchema{}}, nil
	}
	return s.schema.Get(ctx)
}

// record appends e to the audit trail. The triggering mutation is already
// stored, so failures are logged and never returned.
func (s *TransmissionServiceImpl) record(ctx context.Context, e model.AuditLog) {
	if !s.auditEvents {
		return
	}
	stored, err := s.audit.Append(ctx, e)
	if err != nil {
		s.log.Error("audit append failed", zap.String("action", e.Action), zap.Error(err))
		return
	}
	if s.sink == nil {
		return
	}
	if err := s.sink.Publish(ctx, stored); err != nil {
		s.log.Warn("audit publish failed", zap.String("id", stored.ID), zap.Error(err))
	}
}

func actorOr(actor string) string {
	if actor == "" {
		return SystemActor
	}
	return actor
}

// Latency holds per-operation artificial delays. The zero value adds none.
type Latency struct {
	List      time.Duration
	Create    time.Duration
	Update    time.Duration
	AuditLogs time.Duration
	KeyPairs  time.Duration
	Schema    time.Duration
}

// DemoLatency mimics a slow network for dashboard demos.
func DemoLatency() Latency {
	return Latency{
		List:      500 * time.Millisecond,
		Create:    800 * time.Millisecond,
		Update:    600 * time.Millisecond,
		AuditLogs: 400 * time.Millisecond,
		KeyPairs:  300 * time.Millisecond,
		Schema:    1200 * time.Millisecond,
	}
}

func (Latency) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
