package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// TransmissionServiceClient is the client API for TransmissionService.
type TransmissionServiceClient interface {
	ListTransmissions(ctx context.Context, in *ListTransmissionsRequest, opts ...grpc.CallOption) (*ListTransmissionsResponse, error)
	CreateTransmission(ctx context.Context, in *CreateTransmissionRequest, opts ...grpc.CallOption) (*CreateTransmissionResponse, error)
	UpdateStatus(ctx context.Context, in *UpdateStatusRequest, opts ...grpc.CallOption) (*UpdateStatusResponse, error)
	ListAuditLogs(ctx context.Context, in *ListAuditLogsRequest, opts ...grpc.CallOption) (*ListAuditLogsResponse, error)
	ListKeyPairs(ctx context.Context, in *ListKeyPairsRequest, opts ...grpc.CallOption) (*ListKeyPairsResponse, error)
	ListSchema(ctx context.Context, in *ListSchemaRequest, opts ...grpc.CallOption) (*ListSchemaResponse, error)
}

type transmissionServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewTransmissionServiceClient returns a client that always uses Codec.
func NewTransmissionServiceClient(cc grpc.ClientConnInterface) TransmissionServiceClient {
	return &transmissionServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{CallOption()}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *transmissionServiceClient) ListTransmissions(ctx context.Context, in *ListTransmissionsRequest, opts ...grpc.CallOption) (*ListTransmissionsResponse, error) {
	return invoke[ListTransmissionsResponse](ctx, c.cc, ListTransmissionsMethod, in, opts)
}

func (c *transmissionServiceClient) CreateTransmission(ctx context.Context, in *CreateTransmissionRequest, opts ...grpc.CallOption) (*CreateTransmissionResponse, error) {
	return invoke[CreateTransmissionResponse](ctx, c.cc, CreateTransmissionMethod, in, opts)
}

func (c *transmissionServiceClient) UpdateStatus(ctx context.Context, in *UpdateStatusRequest, opts ...grpc.CallOption) (*UpdateStatusResponse, error) {
	return invoke[UpdateStatusResponse](ctx, c.cc, UpdateStatusMethod, in, opts)
}

func (c *transmissionServiceClient) ListAuditLogs(ctx context.Context, in *ListAuditLogsRequest, opts ...grpc.CallOption) (*ListAuditLogsResponse, error) {
	return invoke[ListAuditLogsResponse](ctx, c.cc, ListAuditLogsMethod, in, opts)
}

func (c *transmissionServiceClient) ListKeyPairs(ctx context.Context, in *ListKeyPairsRequest, opts ...grpc.CallOption) (*ListKeyPairsResponse, error) {
	return invoke[ListKeyPairsResponse](ctx, c.cc, ListKeyPairsMethod, in, opts)
}

func (c *transmissionServiceClient) ListSchema(ctx context.Context, in *ListSchemaRequest, opts ...grpc.CallOption) (*ListSchemaResponse, error) {
	return invoke[ListSchemaResponse](ctx, c.cc, ListSchemaMethod, in, opts)
}
