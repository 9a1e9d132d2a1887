package db

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the list of all migrations in order
var migrations = []Migration{
	{Version: 1, Name: "create_orders_and_weekly_plans", SQL: ordersSQL},
	{Version: 2, Name: "create_calendar_days", SQL: calendarSQL},
	{Version: 3, Name: "create_assignments", SQL: assignmentsSQL},
	{Version: 4, Name: "enforce_one_open_assignment_per_operator_and_order", SQL: oneOpenAssignmentSQL},
	{Version: 5, Name: "create_attendance", SQL: attendanceSQL},
	{Version: 6, Name: "create_audit_log", SQL: auditLogSQL},
}

// MigrationResult describes one applied migration.
type MigrationResult struct {
	Version int
	Name    string
}

// RunMigrations executes all pending migrations, each in its own transaction,
// and returns the ones it applied.
func RunMigrations(db *sqlx.DB) ([]MigrationResult, error) {
	r, ok := dialects[db.DriverName()]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", db.DriverName())
	}

	// Create schema_version table if it doesn't exist
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var currentVersion int
	if err := db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version"); err != nil {
		return nil, fmt.Errorf("failed to get current schema version: %w", err)
	}

	var applied []MigrationResult
	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, err := db.Beginx()
		if err != nil {
			return applied, fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if _, err := tx.Exec(r.Replace(migration.SQL)); err != nil {
			tx.Rollback()
			return applied, fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		_, err = tx.Exec(tx.Rebind("INSERT INTO schema_version (version, applied_at) VALUES (?, ?)"),
			migration.Version, time.Now().UTC().Format("2006-01-02 15:04:05"))
		if err != nil {
			tx.Rollback()
			return applied, fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return applied, fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
		applied = append(applied, MigrationResult{Version: migration.Version, Name: migration.Name})
	}

	return applied, nil
}
