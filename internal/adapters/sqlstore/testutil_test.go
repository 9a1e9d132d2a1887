// Package sqlstore_test contains integration tests for the SQL repositories.
//
// Every test database is built from db.GetSchemaSQL so repository queries
// cannot drift from the migrations. Do not hardcode CREATE TABLE statements
// here; use setupTestDB and the seed helpers instead.
package sqlstore_test

import (
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/atelier/internal/db"
)

// setupTestDB creates an in-memory SQLite database with the full schema.
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	testDB, err := db.Open(db.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if _, err := testDB.Exec(db.GetSchemaSQL(db.DriverSQLite)); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedOrder inserts an open order and returns its ID.
func seedOrder(t *testing.T, conn *sqlx.DB, reference string, quantity int64) int64 {
	t.Helper()
	if reference == "" {
		reference = "OF-1001"
	}
	var id int64
	err := conn.QueryRowx("INSERT INTO orders (reference, quantity) VALUES (?, ?) RETURNING id", reference, quantity).Scan(&id)
	if err != nil {
		t.Fatalf("failed to seed order: %v", err)
	}
	return id
}

// seedAssignment inserts an open assignment and returns its ID.
func seedAssignment(t *testing.T, conn *sqlx.DB, operatorID, orderID int64, startedAt string) int64 {
	t.Helper()
	var id int64
	err := conn.QueryRowx(
		"INSERT INTO assignments (operator_id, order_id, workstation_id, article_id, started_at) VALUES (?, ?, 1, 1, ?) RETURNING id",
		operatorID, orderID, startedAt,
	).Scan(&id)
	if err != nil {
		t.Fatalf("failed to seed assignment: %v", err)
	}
	return id
}

func mustInstant(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.ParseInLocation("2006-01-02 15:04:05", s, time.UTC)
	if err != nil {
		t.Fatalf("bad instant %q: %v", s, err)
	}
	return ts
}

func ptr[T any](v T) *T { return &v }
