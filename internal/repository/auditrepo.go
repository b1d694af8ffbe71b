package repository

import (
	"context"

	"github.com/and161185/secure-query-proxy/internal/model"
)

// AuditRepository is an append-only audit trail.
type AuditRepository interface {
	// List returns a snapshot of all entries in insertion order.
	List(ctx context.Context) ([]model.AuditLog, error)
	// Append stores e with a fresh id; a zero Timestamp is set to now.
	Append(ctx context.Context, e model.AuditLog) (model.AuditLog, error)
}

// KeyPairRepository exposes key metadata read-only.
type KeyPairRepository interface {
	// List returns a snapshot of all key pairs in insertion order.
	List(ctx context.Context) ([]model.KeyPair, error)
}
