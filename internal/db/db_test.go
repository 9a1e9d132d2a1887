package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMigrationsSQLite(t *testing.T) {
	conn, err := Open(DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer conn.Close()

	applied, err := RunMigrations(conn)
	require.NoError(t, err)
	assert.Len(t, applied, len(migrations))

	var tables []string
	require.NoError(t, conn.Select(&tables,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name"))
	assert.Equal(t, []string{"assignments", "attendance", "audit_log", "calendar_days", "orders", "schema_version", "weekly_plans"}, tables)

	again, err := RunMigrations(conn)
	require.NoError(t, err)
	assert.Empty(t, again, "second run should be a no-op")
}

func TestGetSchemaSQLDialects(t *testing.T) {
	sqlite := GetSchemaSQL(DriverSQLite)
	assert.Contains(t, sqlite, "INTEGER PRIMARY KEY AUTOINCREMENT")
	assert.NotContains(t, sqlite, "{{")

	pg := GetSchemaSQL(DriverPostgres)
	assert.Contains(t, pg, "BIGSERIAL PRIMARY KEY")
	assert.Contains(t, pg, "BOOLEAN")
	assert.NotContains(t, pg, "{{")

	assert.True(t, strings.Contains(pg, "WHERE ended_at IS NULL"))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("oracle", "whatever")
	assert.ErrorContains(t, err, `unsupported database driver "oracle"`)
}

func TestSQLiteFile(t *testing.T) {
	tests := []struct {
		dsn  string
		want string
	}{
		{dsn: ":memory:", want: ""},
		{dsn: "file::memory:?cache=shared", want: ""},
		{dsn: "file:test.db?mode=memory", want: ""},
		{dsn: "/var/lib/atelier/atelier.db", want: "/var/lib/atelier/atelier.db"},
		{dsn: "file:/tmp/a.db?_busy_timeout=10", want: "/tmp/a.db"},
	}
	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			assert.Equal(t, tt.want, sqliteFile(tt.dsn))
		})
	}
}
