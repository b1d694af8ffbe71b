// Package grpcserver exposes the TransmissionService gRPC handlers.
package grpcserver

import (
	"context"
	"errors"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/and161185/secure-query-proxy/internal/auth"
	"github.com/and161185/secure-query-proxy/internal/convert"
	"github.com/and161185/secure-query-proxy/internal/errs"
	"github.com/and161185/secure-query-proxy/internal/rpc"
	"github.com/and161185/secure-query-proxy/internal/service"
)

// Server wires the transmission service into gRPC handlers.
// Handlers expect AuthUnary to have put the caller's subject in context.
type Server struct {
	rpc.UnimplementedTransmissionServiceServer
	svc service.TransmissionService
	now func() time.Time
}

// New constructs a gRPC server over svc.
func New(svc service.TransmissionService) *Server {
	return &Server{svc: svc, now: time.Now}
}

// ListTransmissions returns every transmission in insertion order.
func (s *Server) ListTransmissions(ctx context.Context, _ *rpc.ListTransmissionsRequest) (*rpc.ListTransmissionsResponse, error) {
	if _, ok := auth.SubjectFromCtx(ctx); !ok {
		return nil, status.Error(codes.Unauthenticated, "no auth")
	}
	ts, err := s.svc.List(ctx)
	if err != nil {
		return nil, toStatus("list transmissions", err)
	}
	return &rpc.ListTransmissionsResponse{Transmissions: convert.ToWireTransmissions(ts)}, nil
}

// CreateTransmission stores a new pending transmission.
// An empty sender defaults to the authenticated subject.
func (s *Server) CreateTransmission(ctx context.Context, req *rpc.CreateTransmissionRequest) (*rpc.CreateTransmissionResponse, error) {
	sub, ok := auth.SubjectFromCtx(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "no auth")
	}
	if req == nil || strings.TrimSpace(req.Query) == "" || strings.TrimSpace(req.Receiver) == "" {
		return nil, status.Error(codes.InvalidArgument, "empty query/receiver")
	}
	in := convert.FromWireCreate(req)
	if strings.TrimSpace(in.Sender) == "" {
		in.Sender = sub
	}
	t, err := s.svc.Create(ctx, in)
	if err != nil {
		return nil, toStatus("create transmission", err)
	}
	return &rpc.CreateTransmissionResponse{Transmission: convert.ToWireTransmission(t)}, nil
}

// UpdateStatus completes or rejects a pending transmission.
func (s *Server) UpdateStatus(ctx context.Context, req *rpc.UpdateStatusRequest) (*rpc.UpdateStatusResponse, error) {
	if _, ok := auth.SubjectFromCtx(ctx); !ok {
		return nil, status.Error(codes.Unauthenticated, "no auth")
	}
	if req == nil || strings.TrimSpace(req.ID) == "" {
		return nil, status.Error(codes.InvalidArgument, "empty id")
	}
	st, err := convert.ParseStatus(req.Status)
	if err != nil {
		return nil, toStatus("update status", err)
	}
	t, err := s.svc.UpdateStatus(ctx, req.ID, st)
	if err != nil {
		return nil, toStatus("update status", err)
	}
	return &rpc.UpdateStatusResponse{Transmission: convert.ToWireTransmission(t)}, nil
}

// ListAuditLogs returns the audit trail in insertion order.
func (s *Server) ListAuditLogs(ctx context.Context, _ *rpc.ListAuditLogsRequest) (*rpc.ListAuditLogsResponse, error) {
	if _, ok := auth.SubjectFromCtx(ctx); !ok {
		return nil, status.Error(codes.Unauthenticated, "no auth")
	}
	es, err := s.svc.AuditLogs(ctx)
	if err != nil {
		return nil, toStatus("list audit logs", err)
	}
	return &rpc.ListAuditLogsResponse{AuditLogs: convert.ToWireAuditLogs(es)}, nil
}

// ListKeyPairs returns key metadata with days until expiry computed now.
func (s *Server) ListKeyPairs(ctx context.Context, _ *rpc.ListKeyPairsRequest) (*rpc.ListKeyPairsResponse, error) {
	if _, ok := auth.SubjectFromCtx(ctx); !ok {
		return nil, status.Error(codes.Unauthenticated, "no auth")
	}
	ks, err := s.svc.KeyPairs(ctx)
	if err != nil {
		return nil, toStatus("list key pairs", err)
	}
	return &rpc.ListKeyPairsResponse{KeyPairs: convert.ToWireKeyPairs(ks, s.now())}, nil
}

// ListSchema returns the receiver catalog.
func (s *Server) ListSchema(ctx context.Context, _ *rpc.ListSchemaRequest) (*rpc.ListSchemaResponse, error) {
	if _, ok := auth.SubjectFromCtx(ctx); !ok {
		return nil, status.Error(codes.Unauthenticated, "no auth")
	}
	sc, err := s.svc.Schema(ctx)
	if err != nil {
		return nil, toStatus("list schema", err)
	}
	return convert.ToWireSchema(sc), nil
}

// toStatus maps sentinel errors to gRPC status codes.
func toStatus(op string, err error) error {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, errs.ErrInvalidTransition):
		return status.Error(codes.FailedPrecondition, "transmission already processed")
	case errors.Is(err, errs.ErrInvalidStatus):
		return status.Error(codes.InvalidArgument, "status must be completed or rejected")
	case errors.Is(err, errs.ErrUnauthorized):
		return status.Error(codes.Unauthenticated, "no auth")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, op+": canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, op+": deadline exceeded")
	default:
		return status.Errorf(codes.Internal, "%s: %v", op, err)
	}
}
