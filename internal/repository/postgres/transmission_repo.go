package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/and161185/secure-query-proxy/internal/errs"
	"github.com/and161185/secure-query-proxy/internal/model"
	"github.com/and161185/secure-query-proxy/internal/repository"
	"github.com/jackc/pgx/v5"
)

// maxIDAttempts bounds retries when a generated id collides with an existing row.
const maxIDAttempts = 3

// TransmissionRepo implements TransmissionRepository using PostgreSQL.
// Insertion order is kept by the seq column.
type TransmissionRepo struct {
	db  *DB
	ids repository.IDFunc
}

// NewTransmissionRepo constructs a transmission repository issuing UUID ids.
func NewTransmissionRepo(db *DB) *TransmissionRepo {
	return &TransmissionRepo{db: db, ids: repository.UUIDs()}
}

const transmissionCols = `id, sender, receiver, query, ts, status, signature, schema_name`

func scanTransmission(row pgx.Row) (model.Transmission, error) {
	var (
		t      model.Transmission
		status string
	)
	if err := row.Scan(&t.ID, &t.Sender, &t.Receiver, &t.Query, &t.Timestamp, &status, &t.Signature, &t.Schema); err != nil {
		return model.Transmission{}, err
	}
	t.Status = model.TransmissionStatus(status)
	t.Timestamp = t.Timestamp.UTC()
	return t, nil
}

// List returns all transmissions ordered by insertion.
func (r *TransmissionRepo) List(ctx context.Context) ([]model.Transmission, error) {
	const q = `SELECT ` + transmissionCols + ` FROM transmissions ORDER BY seq ASC`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Transmission{}
	for rows.Next() {
		t, err := scanTransmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Create inserts a pending transmission; the database assigns the timestamp.
func (r *TransmissionRepo) Create(ctx context.Context, in model.NewTransmission) (model.Transmission, error) {
	const ins = `
INSERT INTO transmissions (id, sender, receiver, query, signature, schema_name, status)
VALUES ($1,$2,$3,$4,$5,$6,'pending')
RETURNING ` + transmissionCols

	var lastErr error
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		row := r.db.Pool.QueryRow(ctx, ins, r.ids(), in.Sender, in.Receiver, in.Query, in.Signature, in.Schema)
		t, err := scanTransmission(row)
		if err == nil {
			return t, nil
		}
		if !isUniqueViolation(err) {
			return model.Transmission{}, err
		}
		lastErr = err
	}
	return model.Transmission{}, fmt.Errorf("create transmission: id collisions: %w", lastErr)
}

// UpdateStatus locks the row, checks the transition and writes the new status.
func (r *TransmissionRepo) UpdateStatus(
	ctx context.Context, id string, status model.TransmissionStatus,
) (t model.Transmission, err error) {
	if !status.IsTerminal() {
		return model.Transmission{}, fmt.Errorf("status %q: %w", status, errs.ErrInvalidStatus)
	}

	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return model.Transmission{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		}
	}()

	const sel = `SELECT status FROM transmissions WHERE id=$1 FOR UPDATE`
	const upd = `UPDATE transmissions SET status=$2 WHERE id=$1 RETURNING ` + transmissionCols

	var cur string
	if err = tx.QueryRow(ctx, sel, id).Scan(&cur); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Transmission{}, fmt.Errorf("transmission %s: %w", id, errs.ErrNotFound)
		}
		return model.Transmission{}, err
	}
	if model.TransmissionStatus(cur).IsTerminal() {
		err = fmt.Errorf("transmission %s is %s: %w", id, cur, errs.ErrInvalidTransition)
		return model.Transmission{}, err
	}
	if t, err = scanTransmission(tx.QueryRow(ctx, upd, id, string(status))); err != nil {
		return model.Transmission{}, err
	}
	return t, nil
}
