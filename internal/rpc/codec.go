// Package rpc declares the TransmissionService gRPC contract: the proto
// descriptor, message types, service descriptor, client, and the codec that
// carries the messages as protobuf.
package rpc

import (
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/dynamicpb"
)

// CodecName is the content-subtype of the codec: plain "application/grpc+proto".
const CodecName = "proto"

// Codec marshals TransmissionService messages as protobuf by way of their
// descriptors. Generated messages such as health checks pass straight through.
type Codec struct{}

// Marshal implements encoding.Codec.
func (Codec) Marshal(v any) ([]byte, error) {
	switch m := v.(type) {
	case proto.Message:
		return proto.Marshal(m)
	case Message:
		return proto.Marshal(ToProto(m))
	}
	return nil, fmt.Errorf("rpc: marshal: unsupported type %T", v)
}

// Unmarshal implements encoding.Codec.
func (Codec) Unmarshal(data []byte, v any) error {
	switch m := v.(type) {
	case proto.Message:
		return proto.Unmarshal(data, m)
	case Message:
		dm := dynamicpb.NewMessage(descriptorOf(m))
		if err := proto.Unmarshal(data, dm); err != nil {
			return err
		}
		m.load(dm)
		return nil
	}
	return fmt.Errorf("rpc: unmarshal: unsupported type %T", v)
}

// Name implements encoding.Codec.
func (Codec) Name() string { return CodecName }

// ServerOption installs Codec on a grpc.Server.
func ServerOption() grpc.ServerOption { return grpc.ForceServerCodec(Codec{}) }

// CallOption selects Codec on a client call.
func CallOption() grpc.CallOption { return grpc.ForceCodec(Codec{}) }

// ToProto builds the dynamic protobuf message for m.
func ToProto(m Message) *dynamicpb.Message {
	dm := dynamicpb.NewMessage(descriptorOf(m))
	m.fill(dm)
	return dm
}

// JSON renders messages with their proto3 JSON mapping; timestamps are RFC 3339.
var JSON = protojson.MarshalOptions{EmitUnpopulated: true}

// MarshalJSON encodes m with the JSON options.
func MarshalJSON(m Message) ([]byte, error) {
	return JSON.Marshal(ToProto(m))
}

// UnmarshalJSON decodes proto3 JSON into m.
func UnmarshalJSON(data []byte, m Message) error {
	dm := dynamicpb.NewMessage(descriptorOf(m))
	if err := protojson.Unmarshal(data, dm); err != nil {
		return err
	}
	m.load(dm)
	return nil
}
