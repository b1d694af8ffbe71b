package memory

import (
	"context"
	"sync"

	"github.com/and161185/secure-query-proxy/internal/model"
)

// AuditStore implements repository.AuditRepository in memory.
type AuditStore struct {
	mu      sync.RWMutex
	entries []model.AuditLog
	opts    options
}

// NewAuditStore builds an audit trail preloaded with seed.
func NewAuditStore(seed []model.AuditLog, opts ...Option) *AuditStore {
	ids := make([]string, len(seed))
	for i := range seed {
		ids[i] = seed[i].ID
	}
	return &AuditStore{
		entries: append([]model.AuditLog(nil), seed...),
		opts:    buildOptions(ids, opts),
	}
}

// List returns a copy of all entries in insertion order.
func (s *AuditStore) List(_ context.Context) ([]model.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.AuditLog, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

// Append adds e at the end of the trail.
func (s *AuditStore) Append(_ context.Context, e model.AuditLog) (model.AuditLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = s.opts.ids()
	if e.Timestamp.IsZero() {
		e.Timestamp = s.opts.now()
	}
	s.entries = append(s.entries, e)
	return e, nil
}

// KeyPairStore implements repository.KeyPairRepository over a fixed list.
type KeyPairStore struct {
	keys []model.KeyPair
}

// NewKeyPairStore keeps its own copy of keys.
func NewKeyPairStore(keys []model.KeyPair) *KeyPairStore {
	return &KeyPairStore{keys: append([]model.KeyPair(nil), keys...)}
}

// List returns a copy of all key pairs.
func (s *KeyPairStore) List(_ context.Context) ([]model.KeyPair, error) {
	out := make([]model.KeyPair, len(s.keys))
	copy(out, s.keys)
	return out, nil
}

// SchemaStore implements repository.SchemaRepository over a fixed catalog.
type SchemaStore struct {
	schema model.Schema
}

// NewSchemaStore keeps a deep copy of schema.
func NewSchemaStore(schema model.Schema) *SchemaStore {
	return &SchemaStore{schema: schema.Clone()}
}

// Get returns a deep copy of the catalog.
func (s *SchemaStore) Get(_ context.Context) (model.Schema, error) {
	return s.schema.Clone(), nil
}
