package rpc

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// FileName is the path under which the service descriptor is registered.
const FileName = "sqp/v1/transmission.proto"

// File describes the TransmissionService messages and methods. It is built
// at init and registered in protoregistry.GlobalFiles, so server reflection
// can serve it like any generated file.
var File protoreflect.FileDescriptor

func init() {
	fd, err := protodesc.NewFile(fileProto(), protoregistry.GlobalFiles)
	if err != nil {
		panic(fmt.Sprintf("rpc: build %s: %v", FileName, err))
	}
	if err := protoregistry.GlobalFiles.RegisterFile(fd); err != nil {
		panic(fmt.Sprintf("rpc: register %s: %v", FileName, err))
	}
	File = fd
}

// descriptorOf returns the message descriptor m travels as.
func descriptorOf(m Message) protoreflect.MessageDescriptor {
	md := File.Messages().ByName(m.messageName())
	if md == nil {
		panic(fmt.Sprintf("rpc: no descriptor for %s", m.messageName()))
	}
	return md
}

var timestampName = "." + string((&timestamppb.Timestamp{}).ProtoReflect().Descriptor().FullName())

type fieldKind int

const (
	kString fieldKind = iota
	kBool
	kInt32
	kInt64
	kTime
	kMessage
)

type field struct {
	name     string
	kind     fieldKind
	msg      string // message type name for kMessage
	repeated bool
}

func str(name string) field { return field{name: name, kind: kString} }
func boolean(name string) field { return field{name: name, kind: kBool} }
func int32f(name string) field { return field{name: name, kind: kInt32} }
func int64f(name string) field { return field{name: name, kind: kInt64} }
func timestamp(name string) field { return field{name: name, kind: kTime} }
func msg(name, typ string) field { return field{name: name, kind: kMessage, msg: typ} }
func repeated(name, typ string) field { return field{name: name, kind: kMessage, msg: typ, repeated: true} }

func message(name string, fields ...field) *descriptorpb.DescriptorProto {
	dp := &descriptorpb.DescriptorProto{Name: proto.String(name)}
	for i, f := range fields {
		fp := &descriptorpb.FieldDescriptorProto{
			Name:   proto.String(f.name),
			Number: proto.Int32(int32(i + 1)),
			Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		}
		if f.repeated {
			fp.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
		}
		switch f.kind {
		case kString:
			fp.Type = descriptorpb.FieldDescriptorProto_TYPE_STRING.Enum()
		case kBool:
			fp.Type = descriptorpb.FieldDescriptorProto_TYPE_BOOL.Enum()
		case kInt32:
			fp.Type = descriptorpb.FieldDescriptorProto_TYPE_INT32.Enum()
		case kInt64:
			fp.Type = descriptorpb.FieldDescriptorProto_TYPE_INT64.Enum()
		case kTime:
			fp.Type = descriptorpb.FieldDescriptorProto_TYPE_MESSAGE.Enum()
			fp.TypeName = proto.String(timestampName)
		case kMessage:
			fp.Type = descriptorpb.FieldDescriptorProto_TYPE_MESSAGE.Enum()
			fp.TypeName = proto.String(".sqp.v1." + f.msg)
		}
		dp.Field = append(dp.Field, fp)
	}
	return dp
}

func method(name string) *descriptorpb.MethodDescriptorProto {
	return &descriptorpb.MethodDescriptorProto{
		Name:       proto.String(name),
		InputType:  proto.String(".sqp.v1." + name + "Request"),
		OutputType: proto.String(".sqp.v1." + name + "Response"),
	}
}

// fileProto is the equivalent of:
//
//	syntax = "proto3";
//	package sqp.v1;
//	import "google/protobuf/timestamp.proto";
//	service TransmissionService { rpc ListTransmissions(...) returns (...); ... }
func fileProto() *descriptorpb.FileDescriptorProto {
	return &descriptorpb.FileDescriptorProto{
		Name:       proto.String(FileName),
		Package:    proto.String("sqp.v1"),
		Syntax:     proto.String("proto3"),
		Dependency: []string{"google/protobuf/timestamp.proto"},
		Options: &descriptorpb.FileOptions{
			GoPackage: proto.String("github.com/and161185/secure-query-proxy/internal/rpc"),
		},
		MessageType: []*descriptorpb.DescriptorProto{
			message("Transmission",
				str("id"), str("sender"), str("receiver"), str("query"),
				timestamp("timestamp"), str("status"), str("signature"), str("schema")),
			message("AuditLog",
				str("id"), timestamp("timestamp"), str("action"), str("user"), str("details")),
			message("KeyPair",
				str("id"), str("name"), str("public_key"), str("fingerprint"),
				timestamp("created_at"), timestamp("expires_at"),
				int32f("days_until_expiry"), boolean("expiring_soon"), boolean("expired")),
			message("Column", str("name"), str("type"), boolean("nullable")),
			message("TableSchema", str("name"), repeated("columns", "Column"), int64f("row_count")),

			message("ListTransmissionsRequest"),
			message("ListTransmissionsResponse", repeated("transmissions", "Transmission")),
			message("CreateTransmissionRequest",
				str("sender"), str("receiver"), str("query"), str("signature"), str("schema")),
			message("CreateTransmissionResponse", msg("transmission", "Transmission")),
			message("UpdateStatusRequest", str("id"), str("status")),
			message("UpdateStatusResponse", msg("transmission", "Transmission")),
			message("ListAuditLogsRequest"),
			message("ListAuditLogsResponse", repeated("audit_logs", "AuditLog")),
			message("ListKeyPairsRequest"),
			message("ListKeyPairsResponse", repeated("key_pairs", "KeyPair")),
			message("ListSchemaRequest"),
			message("ListSchemaResponse", str("name"), repeated("tables", "TableSchema")),
		},
		Service: []*descriptorpb.ServiceDescriptorProto{{
			Name: proto.String("TransmissionService"),
			Method: []*descriptorpb.MethodDescriptorProto{
				method("ListTransmissions"),
				method("CreateTransmission"),
				method("UpdateStatus"),
				method("ListAuditLogs"),
				method("ListKeyPairs"),
				method("ListSchema"),
			},
		}},
	}
}
