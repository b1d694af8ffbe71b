// Package migrate applies embedded SQL migrations on startup.
package migrate

import (
	"context"
	"database/sql"
	"io/fs"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/and161185/secure-query-proxy/migrations"
)

// Up runs all pending migrations from the embedded filesystem.
// The seed migration is skipped when seed is false.
func Up(ctx context.Context, dsn string, seed bool) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	goose.SetBaseFS(Files(seed))
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".", goose.WithAllowMissing())
}

// Files returns the migration set, optionally without seed data.
func Files(seed bool) fs.FS {
	if seed {
		return migrations.FS
	}
	return withoutSeed{migrations.FS}
}

const seedFile = "00002_seed.sql"

type withoutSeed struct{ fs.ReadDirFS }

func (w withoutSeed) Open(name string) (fs.File, error) {
	if name == seedFile {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return w.ReadDirFS.Open(name)
}

func (w withoutSeed) ReadDir(name string) ([]fs.DirEntry, error) {
	entries, err := w.ReadDirFS.ReadDir(name)
	if err != nil {
		return nil, err
	}
	out := entries[:0:0]
	for _, e := range entries {
		if e.Name() != seedFile {
			out = append(out, e)
		}
	}
	return out, nil
}
