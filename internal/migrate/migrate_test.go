package migrate

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/require"
)

func sqlFiles(t *testing.T, fsys fs.FS) []string {
	t.Helper()
	names, err := fs.Glob(fsys, "*.sql")
	require.NoError(t, err)
	return names
}

func TestFiles_WithSeed(t *testing.T) {
	require.Equal(t, []string{"00001_init.sql", "00002_seed.sql", "00003_catalog.sql"}, sqlFiles(t, Files(true)))
}

func TestFiles_WithoutSeed(t *testing.T) {
	fsys := Files(false)
	require.Equal(t, []string{"00001_init.sql", "00003_catalog.sql"}, sqlFiles(t, fsys))

	_, err := fs.ReadFile(fsys, seedFile)
	require.ErrorIs(t, err, fs.ErrNotExist)

	b, err := fs.ReadFile(fsys, "00001_init.sql")
	require.NoError(t, err)
	require.Contains(t, string(b), "-- +goose Up")
}

func TestFiles_CatalogIsNotDemoData(t *testing.T) {
	b, err := fs.ReadFile(Files(false), "00003_catalog.sql")
	require.NoError(t, err)
	require.Contains(t, string(b), "'hospital_db', 'patients', 1547")
}
