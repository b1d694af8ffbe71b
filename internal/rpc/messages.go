package rpc

import (
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Message is implemented by every TransmissionService message. Each type
// maps field by field onto the descriptor of the same name in File.
type Message interface {
	messageName() protoreflect.Name
	fill(m protoreflect.Message)
	load(m protoreflect.Message)
}

// Transmission is the wire form of a transmission.
type Transmission struct {
	ID        string
	Sender    string
	Receiver  string
	Query     string
	Timestamp *timestamppb.Timestamp
	Status    string
	Signature string
	Schema    string
}

func (*Transmission) messageName() protoreflect.Name { return "Transmission" }

func (x *Transmission) fill(m protoreflect.Message) {
	setString(m, "id", x.ID)
	setString(m, "sender", x.Sender)
	setString(m, "receiver", x.Receiver)
	setString(m, "query", x.Query)
	setTime(m, "timestamp", x.Timestamp)
	setString(m, "status", x.Status)
	setString(m, "signature", x.Signature)
	setString(m, "schema", x.Schema)
}

func (x *Transmission) load(m protoreflect.Message) {
	x.ID = getString(m, "id")
	x.Sender = getString(m, "sender")
	x.Receiver = getString(m, "receiver")
	x.Query = getString(m, "query")
	x.Timestamp = getTime(m, "timestamp")
	x.Status = getString(m, "status")
	x.Signature = getString(m, "signature")
	x.Schema = getString(m, "schema")
}

// AuditLog is the wire form of an audit entry.
type AuditLog struct {
	ID        string
	Timestamp *timestamppb.Timestamp
	Action    string
	User      string
	Details   string
}

func (*AuditLog) messageName() protoreflect.Name { return "AuditLog" }

func (x *AuditLog) fill(m protoreflect.Message) {
	setString(m, "id", x.ID)
	setTime(m, "timestamp", x.Timestamp)
	setString(m, "action", x.Action)
	setString(m, "user", x.User)
	setString(m, "details", x.Details)
}

func (x *AuditLog) load(m protoreflect.Message) {
	x.ID = getString(m, "id")
	x.Timestamp = getTime(m, "timestamp")
	x.Action = getString(m, "action")
	x.User = getString(m, "user")
	x.Details = getString(m, "details")
}

// KeyPair is the wire form of key metadata. ExpiringSoon is set when fewer
// than 30 days remain, Expired once none do.
type KeyPair struct {
	ID              string
	Name            string
	PublicKey       string
	Fingerprint     string
	CreatedAt       *timestamppb.Timestamp
	ExpiresAt       *timestamppb.Timestamp
	DaysUntilExpiry int32
	ExpiringSoon    bool
	Expired         bool
}

func (*KeyPair) messageName() protoreflect.Name { return "KeyPair" }

func (x *KeyPair) fill(m protoreflect.Message) {
	setString(m, "id", x.ID)
	setString(m, "name", x.Name)
	setString(m, "public_key", x.PublicKey)
	setString(m, "fingerprint", x.Fingerprint)
	setTime(m, "created_at", x.CreatedAt)
	setTime(m, "expires_at", x.ExpiresAt)
	m.Set(fieldOf(m, "days_until_expiry"), protoreflect.ValueOfInt32(x.DaysUntilExpiry))
	setBool(m, "expiring_soon", x.ExpiringSoon)
	setBool(m, "expired", x.Expired)
}

func (x *KeyPair) load(m protoreflect.Message) {
	x.ID = getString(m, "id")
	x.Name = getString(m, "name")
	x.PublicKey = getString(m, "public_key")
	x.Fingerprint = getString(m, "fingerprint")
	x.CreatedAt = getTime(m, "created_at")
	x.ExpiresAt = getTime(m, "expires_at")
	x.DaysUntilExpiry = int32(m.Get(fieldOf(m, "days_until_expiry")).Int())
	x.ExpiringSoon = getBool(m, "expiring_soon")
	x.Expired = getBool(m, "expired")
}

// Column describes one column of a catalog table.
type Column struct {
	Name     string
	Type     string
	Nullable bool
}

func (*Column) messageName() protoreflect.Name { return "Column" }

func (x *Column) fill(m protoreflect.Message) {
	setString(m, "name", x.Name)
	setString(m, "type", x.Type)
	setBool(m, "nullable", x.Nullable)
}

func (x *Column) load(m protoreflect.Message) {
	x.Name = getString(m, "name")
	x.Type = getString(m, "type")
	x.Nullable = getBool(m, "nullable")
}

// TableSchema describes one table of the receiver catalog.
type TableSchema struct {
	Name     string
	Columns  []Column
	RowCount int64
}

func (*TableSchema) messageName() protoreflect.Name { return "TableSchema" }

func (x *TableSchema) fill(m protoreflect.Message) {
	setString(m, "name", x.Name)
	setList(m, "columns", x.Columns)
	m.Set(fieldOf(m, "row_count"), protoreflect.ValueOfInt64(x.RowCount))
}

func (x *TableSchema) load(m protoreflect.Message) {
	x.Name = getString(m, "name")
	x.Columns = getList[Column](m, "columns")
	x.RowCount = m.Get(fieldOf(m, "row_count")).Int()
}

type ListTransmissionsRequest struct{}

func (*ListTransmissionsRequest) messageName() protoreflect.Name { return "ListTransmissionsRequest" }
func (*ListTransmissionsRequest) fill(protoreflect.Message) {}
func (*ListTransmissionsRequest) load(protoreflect.Message) {}

type ListTransmissionsResponse struct {
	Transmissions []Transmission
}

func (*ListTransmissionsResponse) messageName() protoreflect.Name { return "ListTransmissionsResponse" }

func (x *ListTransmissionsResponse) fill(m protoreflect.Message) {
	setList(m, "transmissions", x.Transmissions)
}

func (x *ListTransmissionsResponse) load(m protoreflect.Message) {
	x.Transmissions = getList[Transmission](m, "transmissions")
}

type CreateTransmissionRequest struct {
	Sender    string
	Receiver  string
	Query     string
	Signature string
	Schema    string
}

func (*CreateTransmissionRequest) messageName() protoreflect.Name { return "CreateTransmissionRequest" }

func (x *CreateTransmissionRequest) fill(m protoreflect.Message) {
	setString(m, "sender", x.Sender)
	setString(m, "receiver", x.Receiver)
	setString(m, "query", x.Query)
	setString(m, "signature", x.Signature)
	setString(m, "schema", x.Schema)
}

func (x *CreateTransmissionRequest) load(m protoreflect.Message) {
	x.Sender = getString(m, "sender")
	x.Receiver = getString(m, "receiver")
	x.Query = getString(m, "query")
	x.Signature = getString(m, "signature")
	x.Schema = getString(m, "schema")
}

type CreateTransmissionResponse struct {
	Transmission Transmission
}

func (*CreateTransmissionResponse) messageName() protoreflect.Name {
	return "CreateTransmissionResponse"
}

func (x *CreateTransmissionResponse) fill(m protoreflect.Message) {
	setMessage(m, "transmission", &x.Transmission)
}

func (x *CreateTransmissionResponse) load(m protoreflect.Message) {
	getMessage(m, "transmission", &x.Transmission)
}

// UpdateStatusRequest carries the target status: "completed" or "rejected".
type UpdateStatusRequest struct {
	ID     string
	Status string
}

func (*UpdateStatusRequest) messageName() protoreflect.Name { return "UpdateStatusRequest" }

func (x *UpdateStatusRequest) fill(m protoreflect.Message) {
	setString(m, "id", x.ID)
	setString(m, "status", x.Status)
}

func (x *UpdateStatusRequest) load(m protoreflect.Message) {
	x.ID = getString(m, "id")
	x.Status = getString(m, "status")
}

type UpdateStatusResponse struct {
	Transmission Transmission
}

func (*UpdateStatusResponse) messageName() protoreflect.Name { return "UpdateStatusResponse" }

func (x *UpdateStatusResponse) fill(m protoreflect.Message) {
	setMessage(m, "transmission", &x.Transmission)
}

func (x *UpdateStatusResponse) load(m protoreflect.Message) {
	getMessage(m, "transmission", &x.Transmission)
}

type ListAuditLogsRequest struct{}

func (*ListAuditLogsRequest) messageName() protoreflect.Name { return "ListAuditLogsRequest" }
func (*ListAuditLogsRequest) fill(protoreflect.Message) {}
func (*ListAuditLogsRequest) load(protoreflect.Message) {}

type ListAuditLogsResponse struct {
	AuditLogs []AuditLog
}

func (*ListAuditLogsResponse) messageName() protoreflect.Name { return "ListAuditLogsResponse" }

func (x *ListAuditLogsResponse) fill(m protoreflect.Message) {
	setList(m, "audit_logs", x.AuditLogs)
}

func (x *ListAuditLogsResponse) load(m protoreflect.Message) {
	x.AuditLogs = getList[AuditLog](m, "audit_logs")
}

type ListKeyPairsRequest struct{}

func (*ListKeyPairsRequest) messageName() protoreflect.Name { return "ListKeyPairsRequest" }
func (*ListKeyPairsRequest) fill(protoreflect.Message) {}
func (*ListKeyPairsRequest) load(protoreflect.Message) {}

type ListKeyPairsResponse struct {
	KeyPairs []KeyPair
}

func (*ListKeyPairsResponse) messageName() protoreflect.Name { return "ListKeyPairsResponse" }

func (x *ListKeyPairsResponse) fill(m protoreflect.Message) {
	setList(m, "key_pairs", x.KeyPairs)
}

func (x *ListKeyPairsResponse) load(m protoreflect.Message) {
	x.KeyPairs = getList[KeyPair](m, "key_pairs")
}

type ListSchemaRequest struct{}

func (*ListSchemaRequest) messageName() protoreflect.Name { return "ListSchemaRequest" }
func (*ListSchemaRequest) fill(protoreflect.Message) {}
func (*ListSchemaRequest) load(protoreflect.Message) {}

// ListSchemaResponse is the receiver catalog: its name and tables.
type ListSchemaResponse struct {
	Name   string
	Tables []TableSchema
}

func (*ListSchemaResponse) messageName() protoreflect.Name { return "ListSchemaResponse" }

func (x *ListSchemaResponse) fill(m protoreflect.Message) {
	setString(m, "name", x.Name)
	setList(m, "tables", x.Tables)
}

func (x *ListSchemaResponse) load(m protoreflect.Message) {
	x.Name = getString(m, "name")
	x.Tables = getList[TableSchema](m, "tables")
}

// --- field helpers ---

func fieldOf(m protoreflect.Message, name protoreflect.Name) protoreflect.FieldDescriptor {
	return m.Descriptor().Fields().ByName(name)
}

func setString(m protoreflect.Message, name protoreflect.Name, v string) {
	m.Set(fieldOf(m, name), protoreflect.ValueOfString(v))
}

func getString(m protoreflect.Message, name protoreflect.Name) string {
	return m.Get(fieldOf(m, name)).String()
}

func setBool(m protoreflect.Message, name protoreflect.Name, v bool) {
	m.Set(fieldOf(m, name), protoreflect.ValueOfBool(v))
}

func getBool(m protoreflect.Message, name protoreflect.Name) bool {
	return m.Get(fieldOf(m, name)).Bool()
}

func setTime(m protoreflect.Message, name protoreflect.Name, ts *timestamppb.Timestamp) {
	if ts == nil {
		return
	}
	m.Set(fieldOf(m, name), protoreflect.ValueOfMessage(ts.ProtoReflect()))
}

// getTime copies a decoded timestamp into a timestamppb value. Decoded
// messages hold it as a dynamic message of the same type.
func getTime(m protoreflect.Message, name protoreflect.Name) *timestamppb.Timestamp {
	fd := fieldOf(m, name)
	if !m.Has(fd) {
		return nil
	}
	ts := &timestamppb.Timestamp{}
	proto.Merge(ts, m.Get(fd).Message().Interface())
	return ts
}

func setMessage(m protoreflect.Message, name protoreflect.Name, v Message) {
	v.fill(m.Mutable(fieldOf(m, name)).Message())
}

func getMessage(m protoreflect.Message, name protoreflect.Name, v Message) {
	if fd := fieldOf(m, name); m.Has(fd) {
		v.load(m.Get(fd).Message())
	}
}

func setList[T any, P interface {
	*T
	Message
}](m protoreflect.Message, name protoreflect.Name, items []T) {
	if len(items) == 0 {
		return
	}
	l := m.Mutable(fieldOf(m, name)).List()
	for i := range items {
		v := l.NewElement()
		P(&items[i]).fill(v.Message())
		l.Append(v)
	}
}

func getList[T any, P interface {
	*T
	Message
}](m protoreflect.Message, name protoreflect.Name) []T {
	l := m.Get(fieldOf(m, name)).List()
	out := make([]T, l.Len())
	for i := range out {
		P(&out[i]).load(l.Get(i).Message())
	}
	return out
}
