package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "sqp.v1.TransmissionService"

// Full method names.
const (
	ListTransmissionsMethod  = "/" + ServiceName + "/ListTransmissions"
	CreateTransmissionMethod = "/" + ServiceName + "/CreateTransmission"
	UpdateStatusMethod       = "/" + ServiceName + "/UpdateStatus"
	ListAuditLogsMethod      = "/" + ServiceName + "/ListAuditLogs"
	ListKeyPairsMethod       = "/" + ServiceName + "/ListKeyPairs"
	ListSchemaMethod         = "/" + ServiceName + "/ListSchema"
)

// TransmissionServiceServer is the server API for TransmissionService.
type TransmissionServiceServer interface {
	ListTransmissions(context.Context, *ListTransmissionsRequest) (*ListTransmissionsResponse, error)
	CreateTransmission(context.Context, *CreateTransmissionRequest) (*CreateTransmissionResponse, error)
	UpdateStatus(context.Context, *UpdateStatusRequest) (*UpdateStatusResponse, error)
	ListAuditLogs(context.Context, *ListAuditLogsRequest) (*ListAuditLogsResponse, error)
	ListKeyPairs(context.Context, *ListKeyPairsRequest) (*ListKeyPairsResponse, error)
	ListSchema(context.Context, *ListSchemaRequest) (*ListSchemaResponse, error)
}

// UnimplementedTransmissionServiceServer can be embedded for forward compatibility.
type UnimplementedTransmissionServiceServer struct{}

func (UnimplementedTransmissionServiceServer) ListTransmissions(context.Context, *ListTransmissionsRequest) (*ListTransmissionsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListTransmissions not implemented")
}
func (UnimplementedTransmissionServiceServer) CreateTransmission(context.Context, *CreateTransmissionRequest) (*CreateTransmissionResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateTransmission not implemented")
}
func (UnimplementedTransmissionServiceServer) UpdateStatus(context.Context, *UpdateStatusRequest) (*UpdateStatusResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateStatus not implemented")
}
func (UnimplementedTransmissionServiceServer) ListAuditLogs(context.Context, *ListAuditLogsRequest) (*ListAuditLogsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListAuditLogs not implemented")
}
func (UnimplementedTransmissionServiceServer) ListKeyPairs(context.Context, *ListKeyPairsRequest) (*ListKeyPairsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListKeyPairs not implemented")
}
func (UnimplementedTransmissionServiceServer) ListSchema(context.Context, *ListSchemaRequest) (*ListSchemaResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListSchema not implemented")
}

// RegisterTransmissionServiceServer registers srv on s.
func RegisterTransmissionServiceServer(s grpc.ServiceRegistrar, srv TransmissionServiceServer) {
	s.RegisterService(&TransmissionServiceDesc, srv)
}

// unary adapts a typed method into a grpc.MethodDesc handler.
func unary[Req any, Resp any](
	fullMethod string,
	call func(TransmissionServiceServer, context.Context, *Req) (*Resp, error),
) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(TransmissionServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(TransmissionServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// TransmissionServiceDesc is the grpc.ServiceDesc for TransmissionService.
var TransmissionServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TransmissionServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ListTransmissions",
			Handler:    unary(ListTransmissionsMethod, TransmissionServiceServer.ListTransmissions),
		},
		{
			MethodName: "CreateTransmission",
			Handler:    unary(CreateTransmissionMethod, TransmissionServiceServer.CreateTransmission),
		},
		{
			MethodName: "UpdateStatus",
			Handler:    unary(UpdateStatusMethod, TransmissionServiceServer.UpdateStatus),
		},
		{
			MethodName: "ListAuditLogs",
			Handler:    unary(ListAuditLogsMethod, TransmissionServiceServer.ListAuditLogs),
		},
		{
			MethodName: "ListKeyPairs",
			Handler:    unary(ListKeyPairsMethod, TransmissionServiceServer.ListKeyPairs),
		},
		{
			MethodName: "ListSchema",
			Handler:    unary(ListSchemaMethod, TransmissionServiceServer.ListSchema),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: FileName,
}
