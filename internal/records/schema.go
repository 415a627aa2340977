package records

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hackgods/clinic-local-store/internal/db"
)

// SchemaVersion is the newest version migrate knows how to apply.
const SchemaVersion = 1

type migration struct {
	version int
	stmts   func(d db.Dialect) []string
}

var migrations = []migration{
	{version: 1, stmts: schemaV1},
}

func schemaV1(d db.Dialect) []string {
	idCol := "id INTEGER PRIMARY KEY AUTOINCREMENT"
	refCol := "INTEGER"
	timeCol := "TEXT"
	if d == db.Postgres {
		idCol = "id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY"
		refCol = "BIGINT"
		timeCol = "TIMESTAMPTZ"
	}

	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS doctors (
			%s,
			name      TEXT NOT NULL,
			specialty TEXT NOT NULL DEFAULT '',
			email     TEXT NOT NULL DEFAULT '',
			phone     TEXT NOT NULL DEFAULT ''
		)`, idCol),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS appointments (
			%s,
			patient_name TEXT NOT NULL,
			doctor_id    %s NOT NULL,
			date         %s NOT NULL,
			reason       TEXT NOT NULL DEFAULT '',
			status       TEXT NOT NULL
		)`, idCol, refCol, timeCol),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS patients (
			%s,
			name    TEXT NOT NULL,
			email   TEXT NOT NULL DEFAULT '',
			phone   TEXT NOT NULL DEFAULT '',
			address TEXT NOT NULL DEFAULT '',
			history TEXT NOT NULL DEFAULT ''
		)`, idCol),

		`CREATE INDEX IF NOT EXISTS idx_doctors_name ON doctors(name)`,
		`CREATE INDEX IF NOT EXISTS idx_doctors_specialty ON doctors(specialty)`,
		`CREATE INDEX IF NOT EXISTS idx_doctors_email ON doctors(email)`,
		`CREATE INDEX IF NOT EXISTS idx_doctors_phone ON doctors(phone)`,

		`CREATE INDEX IF NOT EXISTS idx_appointments_patient_name ON appointments(patient_name)`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_doctor_id ON appointments(doctor_id)`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_date ON appointments(date)`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_reason ON appointments(reason)`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_status ON appointments(status)`,

		`CREATE INDEX IF NOT EXISTS idx_patients_name ON patients(name)`,
		`CREATE INDEX IF NOT EXISTS idx_patients_email ON patients(email)`,
		`CREATE INDEX IF NOT EXISTS idx_patients_phone ON patients(phone)`,
		`CREATE INDEX IF NOT EXISTS idx_patients_address ON patients(address)`,
		`CREATE INDEX IF NOT EXISTS idx_patients_history ON patients(history)`,
	}
}

// migrate brings the schema up to SchemaVersion. Each version is applied in
// its own transaction together with its schema_migrations row.
func migrate(ctx context.Context, conn *sql.DB, d db.Dialect) error {
	if _, err := conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL
		)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	current, err := schemaVersion(ctx, conn)
	if err != nil {
		return err
	}
	if current > SchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", current, SchemaVersion)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := applyMigration(ctx, conn, d, m); err != nil {
			return fmt.Errorf("apply schema version %d: %w", m.version, err)
		}
	}

	return nil
}

func schemaVersion(ctx context.Context, conn *sql.DB) (int, error) {
	var v int
	err := conn.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

func applyMigration(ctx context.Context, conn *sql.DB, d db.Dialect, m migration) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range m.stmts(d) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx,
		d.Rebind(`INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`),
		m.version, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return err
	}

	return tx.Commit()
}
