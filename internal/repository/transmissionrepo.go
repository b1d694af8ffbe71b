// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/and161185/secure-query-proxy/internal/model"
)

// TransmissionRepository holds the authoritative list of transmissions.
type TransmissionRepository interface {
	// List returns a snapshot of all transmissions in insertion order.
	List(ctx context.Context) ([]model.Transmission, error)

	// Create stores a new pending transmission with a fresh id and timestamp.
	Create(ctx context.Context, in model.NewTransmission) (model.Transmission, error)

	// UpdateStatus moves a pending transmission to a terminal status.
	// Returns errs.ErrNotFound for an unknown id and errs.ErrInvalidTransition
	// when the transmission is already terminal.
	UpdateStatus(ctx context.Context, id string, status model.TransmissionStatus) (model.Transmission, error)
}
