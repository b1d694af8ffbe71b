// Package model defines domain entities used by services and repositories.
package model

import (
	"math"
	"time"
)

// TransmissionStatus is the lifecycle state of a transmission.
type TransmissionStatus string

// Transmission states. Pending is initial, the other two are terminal.
const (
	StatusPending   TransmissionStatus = "pending"
	StatusCompleted TransmissionStatus = "completed"
	StatusRejected  TransmissionStatus = "rejected"
)

// Valid reports whether s is one of the known states.
func (s TransmissionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed out of s.
func (s TransmissionStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusRejected
}

// Transmission is a submitted query together with its lifecycle status.
type Transmission struct {
	ID        string // assigned by the store, immutable
	Sender    string
	Receiver  string
	Query     string // opaque payload
	Timestamp time.Time
	Status    TransmissionStatus
	Signature string // opaque label, never verified
	Schema    string // opaque label
}

// NewTransmission is the caller-supplied part of a transmission.
type NewTransmission struct {
	Sender    string
	Receiver  string
	Query     string
	Signature string
	Schema    string
}

// Audit actions.
const (
	ActionTransmissionCreated  = "TRANSMISSION_CREATED"
	ActionTransmissionAccepted = "TRANSMISSION_ACCEPTED"
	ActionTransmissionRejected = "TRANSMISSION_REJECTED"
	ActionKeyRotated           = "KEY_ROTATED"
)

// AuditLog is a single append-only record of a system event.
type AuditLog struct {
	ID        string
	Timestamp time.Time
	Action    string
	User      string
	Details   string
}

// KeyPair is descriptive metadata about a named key. PublicKey is opaque.
type KeyPair struct {
	ID        string
	Name      string
	PublicKey string
	CreatedAt time.Time
	ExpiresAt time.Time
}

const day = 24 * time.Hour

// DaysUntilExpiry returns whole days left until expiry, rounded up. Negative once expired.
func (k KeyPair) DaysUntilExpiry(now time.Time) int {
	return int(math.Ceil(float64(k.ExpiresAt.Sub(now)) / float64(day)))
}

// Expired reports whether the key is past its expiry at now. Nothing enforces it.
func (k KeyPair) Expired(now time.Time) bool {
	return !now.Before(k.ExpiresAt)
}

// ExpiryWarningDays is the horizon under which a key is flagged as expiring soon.
const ExpiryWarningDays = 30

// ExpiringSoon reports whether fewer than ExpiryWarningDays remain. Expired keys count too.
func (k KeyPair) ExpiringSoon(now time.Time) bool {
	return k.DaysUntilExpiry(now) < ExpiryWarningDays
}

// Column is one column of a catalog table.
type Column struct {
	Name     string
	Type     string // SQL type as displayed, e.g. "VARCHAR(100)"
	Nullable bool
}

// TableSchema is a catalog table with its columns and an approximate row count.
type TableSchema struct {
	Name     string
	Columns  []Column
	RowCount int64
}

// Schema is a named catalog of the receiving database. It is reference data
// and is never read from the database it describes.
type Schema struct {
	Name   string
	Tables []TableSchema
}

// Clone returns a deep copy of s.
func (s Schema) Clone() Schema {
	out := Schema{Name: s.Name, Tables: make([]TableSchema, len(s.Tables))}
	for i, t := range s.Tables {
		t.Columns = append([]Column(nil), t.Columns...)
		out.Tables[i] = t
	}
	return out
}
