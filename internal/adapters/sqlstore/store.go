// Package sqlstore contains SQL implementations of the repository interfaces.
// The same queries run on SQLite and PostgreSQL; placeholders are rebound per driver.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/example/atelier/internal/core/calendar"
	"github.com/example/atelier/internal/ports/secondary"
)

// Store implements secondary.Store on a sqlx database handle.
type Store struct {
	db *sqlx.DB
}

// NewStore creates a new SQL store.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

var _ secondary.Store = (*Store)(nil)

// WithinTx runs fn in a transaction, committing on success.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx secondary.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, &txScope{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("failed to roll back transaction: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// txScope is the secondary.Tx handed to units of work.
type txScope struct {
	tx  *sqlx.Tx
	seq int
}

func (t *txScope) Assignments() secondary.AssignmentRepository { return NewAssignmentRepository(t.tx) }
func (t *txScope) Orders() secondary.OrderRepository           { return NewOrderRepository(t.tx) }
func (t *txScope) WeeklyPlans() secondary.WeeklyPlanRepository { return NewWeeklyPlanRepository(t.tx) }
func (t *txScope) Calendar() secondary.CalendarRepository      { return NewCalendarRepository(t.tx) }
func (t *txScope) Attendance() secondary.AttendanceRepository  { return NewAttendanceRepository(t.tx) }

// Savepoint runs fn under SAVEPOINT, rolling back to it when fn fails.
func (t *txScope) Savepoint(ctx context.Context, fn func(ctx context.Context) error) error {
	t.seq++
	name := fmt.Sprintf("sp_%d", t.seq)

	if _, err := t.tx.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return fmt.Errorf("failed to create savepoint: %w", err)
	}

	if err := fn(ctx); err != nil {
		if _, rbErr := t.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name); rbErr != nil {
			return errors.Join(err, fmt.Errorf("failed to roll back to savepoint: %w", rbErr))
		}
		_, _ = t.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+name)
		return err
	}

	if _, err := t.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+name); err != nil {
		return fmt.Errorf("failed to release savepoint: %w", err)
	}
	return nil
}

func formatInstant(t time.Time) string {
	return calendar.Wall(t).Format(calendar.InstantLayout)
}

func parseInstant(s string) (time.Time, error) {
	t, err := time.ParseInLocation(calendar.InstantLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored instant %q: %w", s, err)
	}
	return t, nil
}

func formatDate(t time.Time) string {
	return t.Format(calendar.DateLayout)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
