package database

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

func Connect(host, port, user, password, dbname, sslmode string) (*sql.DB, error) {
	psqlInfo := connectionString(host, port, user, password, dbname, sslmode)

	// Open database connection
	db, err := sql.Open("postgres", psqlInfo)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %v", err)
	}

	// Test the connection
	err = db.Ping()
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %v", err)
	}

	return db, nil
}

// connectionString builds the lib/pq DSN. An empty sslmode falls back to
// disable for local development setups.
func connectionString(host, port, user, password, dbname, sslmode string) string {
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)
}

// EnsureSchema provisions the engine's two tables. The attempt table is the
// retry state machine's source of truth; the mapping table is the vision cache.
func EnsureSchema(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS application_attempts (
			id TEXT PRIMARY KEY,
			job_id TEXT NOT NULL,
			target_url TEXT NOT NULL,
			profile_snapshot JSONB NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			fields_filled_count INT NOT NULL DEFAULT 0,
			retry_count INT NOT NULL DEFAULT 0,
			last_retry_at TIMESTAMPTZ,
			next_retry_at TIMESTAMPTZ,
			diagnostic_notes TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_due
			ON application_attempts (status, next_retry_at)`,
		`CREATE TABLE IF NOT EXISTS field_mappings (
			platform TEXT NOT NULL,
			form_hash TEXT NOT NULL,
			fields JSONB NOT NULL,
			usage_count INT NOT NULL DEFAULT 0,
			success_count INT NOT NULL DEFAULT 0,
			last_used_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (platform, form_hash)
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("error creating schema: %v", err)
		}
	}
	return nil
}
