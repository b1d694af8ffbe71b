package postgres

import (
	"context"
	"errors"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }
func boolp(b bool) *bool { return &b }

func TestSchemaRepo_Get_GroupsColumnsByTable(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewSchemaRepo(db, "hospital_db")

	mock.ExpectQuery(`SELECT t.name, t.row_count, c.name, c.type, c.nullable`).
		WithArgs("hospital_db").
		WillReturnRows(pgxmock.NewRows([]string{"name", "row_count", "name", "type", "nullable"}).
			AddRow("patients", int64(1547), strp("patient_id"), strp("INT PRIMARY KEY"), boolp(false)).
			AddRow("patients", int64(1547), strp("gender"), strp("VARCHAR(10)"), boolp(true)).
			AddRow("doctors", int64(89), strp("doctor_id"), strp("INT PRIMARY KEY"), boolp(false)))

	s, err := r.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, "hospital_db", s.Name)
	require.Len(t, s.Tables, 2)
	require.Equal(t, "patients", s.Tables[0].Name)
	require.Equal(t, int64(1547), s.Tables[0].RowCount)
	require.Len(t, s.Tables[0].Columns, 2)
	require.True(t, s.Tables[0].Columns[1].Nullable)
	require.Equal(t, "doctor_id", s.Tables[1].Columns[0].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSchemaRepo_Get_Error(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()

	mock.ExpectQuery(`SELECT t.name`).WithArgs("hospital_db").WillReturnError(errors.New("db down"))
	_, err := NewSchemaRepo(db, "hospital_db").Get(context.Background())
	require.Error(t, err)
}
