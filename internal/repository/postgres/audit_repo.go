package postgres

import (
	"context"
	"time"

	"github.com/and161185/secure-query-proxy/internal/model"
)

// AuditRepo implements AuditRepository using PostgreSQL. Rows are never updated or deleted.
type AuditRepo struct{ db *DB }

// NewAuditRepo constructs an audit repository.
func NewAuditRepo(db *DB) *AuditRepo { return &AuditRepo{db: db} }

// List returns all audit entries ordered by insertion.
func (r *AuditRepo) List(ctx context.Context) ([]model.AuditLog, error) {
	const q = `SELECT id::text, ts, action, actor, details FROM audit_logs ORDER BY id ASC`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.AuditLog{}
	for rows.Next() {
		var e model.AuditLog
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Action, &e.User, &e.Details); err != nil {
			return nil, err
		}
		e.Timestamp = e.Timestamp.UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

// Append inserts e and returns it with the assigned id.
func (r *AuditRepo) Append(ctx context.Context, e model.AuditLog) (model.AuditLog, error) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	const ins = `INSERT INTO audit_logs (ts, action, actor, details) VALUES ($1, $2, $3, $4) RETURNING id::text`
	if err := r.db.Pool.QueryRow(ctx, ins, e.Timestamp, e.Action, e.User, e.Details).Scan(&e.ID); err != nil {
		return model.AuditLog{}, err
	}
	return e, nil
}

// KeyPairRepo implements KeyPairRepository using PostgreSQL.
type KeyPairRepo struct{ db *DB }

// NewKeyPairRepo constructs a key-pair repository.
func NewKeyPairRepo(db *DB) *KeyPairRepo { return &KeyPairRepo{db: db} }

// List returns all key pairs ordered by insertion.
func (r *KeyPairRepo) List(ctx context.Context) ([]model.KeyPair, error) {
	const q = `SELECT id, name, public_key, created_at, expires_at FROM key_pairs ORDER BY seq ASC`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.KeyPair{}
	for rows.Next() {
		var k model.KeyPair
		if err := rows.Scan(&k.ID, &k.Name, &k.PublicKey, &k.CreatedAt, &k.ExpiresAt); err != nil {
			return nil, err
		}
		k.CreatedAt, k.ExpiresAt = k.CreatedAt.UTC(), k.ExpiresAt.UTC()
		out = append(out, k)
	}
	return out, rows.Err()
}
