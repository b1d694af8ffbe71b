// Package convert maps domain models to the wire messages and back.
package convert

import (
	"fmt"
	"strings"
	"time"

	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/and161185/secure-query-proxy/internal/crypto"
	"github.com/and161185/secure-query-proxy/internal/errs"
	"github.com/and161185/secure-query-proxy/internal/model"
	"github.com/and161185/secure-query-proxy/internal/rpc"
)

// --- helpers ---

func ts(t time.Time) *timestamppb.Timestamp {
	if t.IsZero() {
		return nil
	}
	return timestamppb.New(t)
}

// --- Transmissions ---

// ToWireTransmission converts a domain transmission to its wire form.
func ToWireTransmission(t model.Transmission) rpc.Transmission {
	return rpc.Transmission{
		ID:        t.ID,
		Sender:    t.Sender,
		Receiver:  t.Receiver,
		Query:     t.Query,
		Timestamp: ts(t.Timestamp),
		Status:    string(t.Status),
		Signature: t.Signature,
		Schema:    t.Schema,
	}
}

// ToWireTransmissions converts a slice of transmissions, keeping order.
func ToWireTransmissions(in []model.Transmission) []rpc.Transmission {
	out := make([]rpc.Transmission, 0, len(in))
	for _, t := range in {
		out = append(out, ToWireTransmission(t))
	}
	return out
}

// FromWireCreate converts a create request to the domain input.
func FromWireCreate(in *rpc.CreateTransmissionRequest) model.NewTransmission {
	if in == nil {
		return model.NewTransmission{}
	}
	return model.NewTransmission{
		Sender:    in.Sender,
		Receiver:  in.Receiver,
		Query:     in.Query,
		Signature: in.Signature,
		Schema:    in.Schema,
	}
}

// ParseStatus parses a target status. Only terminal states are accepted.
func ParseStatus(s string) (model.TransmissionStatus, error) {
	st := model.TransmissionStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsTerminal() {
		return "", fmt.Errorf("status %q: %w", s, errs.ErrInvalidStatus)
	}
	return st, nil
}

// --- Audit ---

// ToWireAuditLog converts an audit entry.
func ToWireAuditLog(e model.AuditLog) rpc.AuditLog {
	return rpc.AuditLog{
		ID:        e.ID,
		Timestamp: ts(e.Timestamp),
		Action:    e.Action,
		User:      e.User,
		Details:   e.Details,
	}
}

// ToWireAuditLogs converts a slice of audit entries, keeping order.
func ToWireAuditLogs(es []model.AuditLog) []rpc.AuditLog {
	out := make([]rpc.AuditLog, 0, len(es))
	for _, e := range es {
		out = append(out, ToWireAuditLog(e))
	}
	return out
}

// --- Keys ---

// ToWireKeyPair converts key metadata; the expiry fields are computed at now.
func ToWireKeyPair(k model.KeyPair, now time.Time) rpc.KeyPair {
	return rpc.KeyPair{
		ID:              k.ID,
		Name:            k.Name,
		PublicKey:       k.PublicKey,
		Fingerprint:     crypto.Fingerprint(k.PublicKey),
		CreatedAt:       ts(k.CreatedAt),
		ExpiresAt:       ts(k.ExpiresAt),
		DaysUntilExpiry: int32(k.DaysUntilExpiry(now)),
		ExpiringSoon:    k.ExpiringSoon(now),
		Expired:         k.Expired(now),
	}
}

// ToWireKeyPairs converts a slice of key pairs, keeping order.
func ToWireKeyPairs(ks []model.KeyPair, now time.Time) []rpc.KeyPair {
	out := make([]rpc.KeyPair, 0, len(ks))
	for _, k := range ks {
		out = append(out, ToWireKeyPair(k, now))
	}
	return out
}

// --- Schema ---

// ToWireSchema converts the receiver catalog, keeping table and column order.
func ToWireSchema(s model.Schema) *rpc.ListSchemaResponse {
	out := &rpc.ListSchemaResponse{Name: s.Name, Tables: make([]rpc.TableSchema, 0, len(s.Tables))}
	for _, t := range s.Tables {
		wt := rpc.TableSchema{Name: t.Name, RowCount: t.RowCount, Columns: make([]rpc.Column, 0, len(t.Columns))}
		for _, c := range t.Columns {
			wt.Columns = append(wt.Columns, rpc.Column{Name: c.Name, Type: c.Type, Nullable: c.Nullable})
		}
		out.Tables = append(out.Tables, wt)
	}
	return out
}
