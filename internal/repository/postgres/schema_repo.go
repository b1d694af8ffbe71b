package postgres

import (
	"context"

	"github.com/and161185/secure-query-proxy/internal/model"
)

// SchemaRepo implements SchemaRepository over the catalog tables.
type SchemaRepo struct {
	db   *DB
	name string
}

// NewSchemaRepo constructs a catalog repository for the schema called name.
func NewSchemaRepo(db *DB, name string) *SchemaRepo { return &SchemaRepo{db: db, name: name} }

// Get returns the catalog with tables and columns in their stored order.
// Tables without columns are still listed.
func (r *SchemaRepo) Get(ctx context.Context) (model.Schema, error) {
	const q = `SELECT t.name, t.row_count, c.name, c.type, c.nullable
FROM catalog_tables t LEFT JOIN catalog_columns c ON c.table_seq = t.seq
WHERE t.schema_name = $1 ORDER BY t.seq ASC, c.pos ASC`
	rows, err := r.db.Pool.Query(ctx, q, r.name)
	if err != nil {
		return model.Schema{}, err
	}
	defer rows.Close()

	out := model.Schema{Name: r.name, Tables: []model.TableSchema{}}
	for rows.Next() {
		var (
			table    string
			count    int64
			col, typ *string
			nullable *bool
		)
		if err := rows.Scan(&table, &count, &col, &typ, &nullable); err != nil {
			return model.Schema{}, err
		}
		if n := len(out.Tables); n == 0 || out.Tables[n-1].Name != table {
			out.Tables = append(out.Tables, model.TableSchema{Name: table, RowCount: count})
		}
		if col == nil {
			continue
		}
		last := &out.Tables[len(out.Tables)-1]
		c := model.Column{Name: *col}
		if typ != nil {
			c.Type = *typ
		}
		if nullable != nil {
			c.Nullable = *nullable
		}
		last.Columns = append(last.Columns, c)
	}
	return out, rows.Err()
}
