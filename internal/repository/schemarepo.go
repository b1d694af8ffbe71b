package repository

import (
	"context"

	"github.com/and161185/secure-query-proxy/internal/model"
)

// SchemaRepository exposes the receiver catalog read-only.
type SchemaRepository interface {
	// Get returns a deep copy of the catalog.
	Get(ctx context.Context) (model.Schema, error)
}
