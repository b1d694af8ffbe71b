// Package seed holds the demo records a fresh store starts with.
// All times are relative to the reference time passed in.
package seed

import (
	"time"

	"github.com/and161185/secure-query-proxy/internal/model"
)

const day = 24 * time.Hour

// Transmissions returns the demo transmissions, oldest id first.
func Transmissions(now time.Time) []model.Transmission {
	return []model.Transmission{
		{
			ID:        "1",
			Sender:    "admin@hospital-a.com",
			Receiver:  "Hospital B Database",
			Query:     `SELECT * FROM patients WHERE admission_date > "2024-01-01"`,
			Timestamp: now.Add(-time.Hour),
			Status:    model.StatusCompleted,
			Signature: "0x4f7a2b9e...",
			Schema:    SchemaName,
		},
		{
			ID:        "2",
			Sender:    "admin@hospital-a.com",
			Receiver:  "Hospital C Database",
			Query:     "SELECT doctor_id, COUNT(*) FROM appointments GROUP BY doctor_id",
			Timestamp: now.Add(-2 * time.Hour),
			Status:    model.StatusPending,
			Signature: "0x8c3d1a5f...",
			Schema:    SchemaName,
		},
	}
}

// AuditLogs returns the demo audit entries.
func AuditLogs(now time.Time) []model.AuditLog {
	return []model.AuditLog{
		{
			ID:        "1",
			Timestamp: now.Add(-30 * time.Minute),
			Action:    model.ActionTransmissionAccepted,
			User:      "receiver@hospital-b.com",
			Details:   "Accepted transmission #1 from admin@hospital-a.com",
		},
		{
			ID:        "2",
			Timestamp: now.Add(-time.Hour),
			Action:    model.ActionTransmissionCreated,
			User:      "admin@hospital-a.com",
			Details:   "Created new transmission to Hospital B Database",
		},
		{
			ID:        "3",
			Timestamp: now.Add(-90 * time.Minute),
			Action:    model.ActionKeyRotated,
			User:      "system",
			Details:   "Rotated encryption keys for receiver Hospital B",
		},
	}
}

// placeholderKey is the truncated SPKI header shown for every demo key.
const placeholderKey = "MIIBIjANBgkqhkiG9w0BAQEFAAOCAQ8AMIIBCgKCAQEA..."

// KeyPairs returns the demo key metadata.
func KeyPairs(now time.Time) []model.KeyPair {
	return []model.KeyPair{
		{
			ID:        "1",
			Name:      "Hospital A Primary Key",
			PublicKey: placeholderKey,
			CreatedAt: now.Add(-30 * day),
			ExpiresAt: now.Add(335 * day),
		},
		{
			ID:        "2",
			Name:      "Hospital B Receiver Key",
			PublicKey: placeholderKey,
			CreatedAt: now.Add(-15 * day),
			ExpiresAt: now.Add(350 * day),
		},
	}
}

// SchemaName is the catalog every demo transmission is labelled with.
const SchemaName = "hospital_db"

func col(name, typ string) model.Column { return model.Column{Name: name, Type: typ} }
func nullable(name, typ string) model.Column { return model.Column{Name: name, Type: typ, Nullable: true} }

// Schema returns the hospital_db catalog shown to senders composing queries.
func Schema() model.Schema {
	return model.Schema{
		Name: SchemaName,
		Tables: []model.TableSchema{
			{
				Name:     "patients",
				RowCount: 1547,
				Columns: []model.Column{
					col("patient_id", "INT PRIMARY KEY"),
					col("first_name", "VARCHAR(100)"),
					col("last_name", "VARCHAR(100)"),
					col("dob", "DATE"),
					nullable("gender", "VARCHAR(10)"),
					nullable("admission_date", "TIMESTAMP"),
					nullable("discharge_date", "TIMESTAMP"),
				},
			},
			{
				Name:     "doctors",
				RowCount: 89,
				Columns: []model.Column{
					col("doctor_id", "INT PRIMARY KEY"),
					col("first_name", "VARCHAR(100)"),
					col("last_name", "VARCHAR(100)"),
					col("specialization", "VARCHAR(100)"),
					col("email", "VARCHAR(255)"),
				},
			},
			{
				Name:     "appointments",
				RowCount: 3204,
				Columns: []model.Column{
					col("appointment_id", "INT PRIMARY KEY"),
					col("patient_id", "INT FOREIGN KEY"),
					col("doctor_id", "INT FOREIGN KEY"),
					col("appointment_date", "TIMESTAMP"),
					col("status", "VARCHAR(20)"),
				},
			},
			{
				Name:     "medications",
				RowCount: 412,
				Columns: []model.Column{
					col("medication_id", "INT PRIMARY KEY"),
					col("name", "VARCHAR(200)"),
					nullable("description", "TEXT"),
					col("dosage", "VARCHAR(50)"),
				},
			},
			{
				Name:     "prescriptions",
				RowCount: 2891,
				Columns: []model.Column{
					col("prescription_id", "INT PRIMARY KEY"),
					col("patient_id", "INT FOREIGN KEY"),
					col("doctor_id", "INT FOREIGN KEY"),
					col("medication_id", "INT FOREIGN KEY"),
					col("prescribed_on", "TIMESTAMP"),
					nullable("instructions", "TEXT"),
				},
			},
			{
				Name:     "hospital_staff",
				RowCount: 234,
				Columns: []model.Column{
					col("staff_id", "INT PRIMARY KEY"),
					col("name", "VARCHAR(200)"),
					col("role", "VARCHAR(100)"),
					col("email", "VARCHAR(255)"),
					col("joined_on", "DATE"),
				},
			},
		},
	}
}
