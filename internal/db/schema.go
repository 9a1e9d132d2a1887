package db

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Column types that differ between dialects. Migration SQL refers to them
// with {{placeholders}}.
var dialects = map[string]*strings.Replacer{
	DriverSQLite: strings.NewReplacer(
		"{{id}}", "INTEGER PRIMARY KEY AUTOINCREMENT",
		"{{bool}}", "INTEGER",
		"{{false}}", "0",
		"{{decimal}}", "NUMERIC",
	),
	DriverPostgres: strings.NewReplacer(
		"{{id}}", "BIGSERIAL PRIMARY KEY",
		"{{bool}}", "BOOLEAN",
		"{{false}}", "FALSE",
		"{{decimal}}", "NUMERIC(8,2)",
	),
}

// Instants are stored as "YYYY-MM-DD HH:MM:SS" wall-clock text and dates as
// "YYYY-MM-DD", so both dialects compare and sort them the same way.
const (
	ordersSQL = `
CREATE TABLE IF NOT EXISTS orders (
	id {{id}},
	reference TEXT NOT NULL UNIQUE,
	quantity INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
	packed_quantity INTEGER NOT NULL DEFAULT 0 CHECK (packed_quantity >= 0),
	status TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'terminated')),
	completed_at TEXT
);

CREATE TABLE IF NOT EXISTS weekly_plans (
	order_id INTEGER NOT NULL REFERENCES orders(id),
	week_id INTEGER NOT NULL,
	billed_quantity INTEGER NOT NULL DEFAULT 0 CHECK (billed_quantity >= 0),
	PRIMARY KEY (order_id, week_id)
);
`

	calendarSQL = `
CREATE TABLE IF NOT EXISTS calendar_days (
	day TEXT PRIMARY KEY,
	is_open {{bool}} NOT NULL DEFAULT {{false}},
	is_holiday {{bool}} NOT NULL DEFAULT {{false}},
	shift_start TEXT,
	shift_end TEXT,
	overtime_start TEXT,
	overtime_end TEXT,
	break_start TEXT,
	break_end TEXT
);
`

	assignmentsSQL = `
CREATE TABLE IF NOT EXISTS assignments (
	id {{id}},
	operator_id INTEGER NOT NULL,
	order_id INTEGER NOT NULL REFERENCES orders(id),
	workstation_id INTEGER NOT NULL,
	article_id INTEGER NOT NULL,
	week_id INTEGER,
	started_at TEXT NOT NULL,
	ended_at TEXT,
	duration_seconds INTEGER CHECK (duration_seconds IS NULL OR duration_seconds >= 0),
	quantity_produced INTEGER CHECK (quantity_produced IS NULL OR quantity_produced >= 0),
	overtime_hours {{decimal}},
	comment TEXT NOT NULL DEFAULT '',
	CHECK ((ended_at IS NULL) = (duration_seconds IS NULL))
);

CREATE INDEX IF NOT EXISTS idx_assignments_operator ON assignments(operator_id);
CREATE INDEX IF NOT EXISTS idx_assignments_order ON assignments(order_id);
`

	oneOpenAssignmentSQL = `
CREATE UNIQUE INDEX IF NOT EXISTS idx_assignments_one_open
	ON assignments(operator_id, order_id) WHERE ended_at IS NULL;
`

	attendanceSQL = `
CREATE TABLE IF NOT EXISTS attendance (
	id {{id}},
	operator_id INTEGER NOT NULL,
	day TEXT NOT NULL,
	absent {{bool}} NOT NULL DEFAULT {{false}},
	reason TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_attendance_operator_day ON attendance(operator_id, day);
`

	auditLogSQL = `
CREATE TABLE IF NOT EXISTS audit_log (
	id {{id}},
	event_id TEXT NOT NULL UNIQUE,
	actor TEXT NOT NULL,
	action TEXT NOT NULL CHECK (action IN ('CREATE', 'UPDATE', 'DELETE')),
	table_name TEXT NOT NULL,
	row_id INTEGER NOT NULL,
	before_image TEXT,
	after_image TEXT,
	ip TEXT NOT NULL DEFAULT '',
	user_agent TEXT NOT NULL DEFAULT '',
	recorded_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_log_row ON audit_log(table_name, row_id);
`
)

// GetSchemaSQL returns the complete schema for a fresh database of the given
// driver. Tests build their databases from it so repositories cannot drift
// from the migrations.
func GetSchemaSQL(driver string) string {
	r, ok := dialects[driver]
	if !ok {
		panic(fmt.Sprintf("unsupported database driver %q", driver))
	}
	var b strings.Builder
	for _, m := range migrations {
		b.WriteString(r.Replace(m.SQL))
	}
	return b.String()
}

// InitSchema brings the database schema up to date.
func InitSchema(db *sqlx.DB) error {
	_, err := RunMigrations(db)
	return err
}
