package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap/zaptest"

	"github.com/example/atelier/internal/adapters/sqlstore"
	"github.com/example/atelier/internal/core/calendar"
	"github.com/example/atelier/internal/core/effects"
	"github.com/example/atelier/internal/db"
	"github.com/example/atelier/internal/ports/secondary"
)

// harness wires the services over an in-memory SQLite store.
type harness struct {
	conn        *sqlx.DB
	store       secondary.Store
	published   *recordingPublisher
	assignments *AssignmentServiceImpl
	orders      *OrderServiceImpl
	absences    *AbsenceServiceImpl
	calendars   *CalendarServiceImpl
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	conn, err := db.Open(db.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if _, err := conn.Exec(db.GetSchemaSQL(db.DriverSQLite)); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	logger := zaptest.NewLogger(t)
	store := sqlstore.NewStore(conn)
	published := &recordingPublisher{}
	durations := NewDurationCalculator(logger)

	h := &harness{conn: conn, store: store, published: published}
	h.assignments = NewAssignmentService(store, durations, published, logger)
	h.orders = NewOrderService(store, h.assignments, published, logger)
	h.absences = NewAbsenceService(store, h.assignments, published, logger, calendar.MustClock("17:00"))
	h.calendars = NewCalendarService(store, durations, published)
	h.setNow(at(t, "2026-03-04 15:00"))
	return h
}

func (h *harness) setNow(now time.Time) {
	clock := func() time.Time { return now }
	h.assignments.now = clock
	h.orders.now = clock
	h.absences.now = clock
	h.calendars.now = clock
}

func (h *harness) seedOrder(t *testing.T, reference string, quantity, packed int64) int64 {
	t.Helper()
	var id int64
	err := h.conn.QueryRowx(
		"INSERT INTO orders (reference, quantity, packed_quantity) VALUES (?, ?, ?) RETURNING id",
		reference, quantity, packed,
	).Scan(&id)
	if err != nil {
		t.Fatalf("failed to seed order: %v", err)
	}
	return id
}

func (h *harness) seedPlan(t *testing.T, orderID, week, billed int64) {
	t.Helper()
	if _, err := h.conn.Exec("INSERT INTO weekly_plans (order_id, week_id, billed_quantity) VALUES (?, ?, ?)", orderID, week, billed); err != nil {
		t.Fatalf("failed to seed weekly plan: %v", err)
	}
}

func (h *harness) seedAssignment(t *testing.T, operatorID, orderID int64, startedAt string) int64 {
	t.Helper()
	var id int64
	err := h.conn.QueryRowx(
		"INSERT INTO assignments (operator_id, order_id, workstation_id, article_id, started_at) VALUES (?, ?, 1, 1, ?) RETURNING id",
		operatorID, orderID, startedAt+":00",
	).Scan(&id)
	if err != nil {
		t.Fatalf("failed to seed assignment: %v", err)
	}
	return id
}

// seedWorkday stores an open day 08:00-17:00 with a 12:00-13:00 break.
func (h *harness) seedWorkday(t *testing.T, date string) {
	t.Helper()
	_, err := h.conn.Exec(
		`INSERT INTO calendar_days (day, is_open, is_holiday, shift_start, shift_end, break_start, break_end)
		 VALUES (?, 1, 0, '08:00:00', '17:00:00', '12:00:00', '13:00:00')`, date)
	if err != nil {
		t.Fatalf("failed to seed calendar: %v", err)
	}
}

func (h *harness) assignment(t *testing.T, id int64) *secondary.AssignmentRecord {
	t.Helper()
	rec, err := sqlstore.NewAssignmentRepository(h.conn).GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("failed to load assignment %d: %v", id, err)
	}
	return rec
}

func (h *harness) order(t *testing.T, id int64) *secondary.OrderRecord {
	t.Helper()
	rec, err := sqlstore.NewOrderRepository(h.conn).GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("failed to load order %d: %v", id, err)
	}
	return rec
}

func (h *harness) attendanceRows(t *testing.T) int {
	t.Helper()
	var n int
	if err := h.conn.Get(&n, "SELECT COUNT(*) FROM attendance"); err != nil {
		t.Fatalf("failed to count attendance: %v", err)
	}
	return n
}

func at(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.ParseInLocation("2006-01-02 15:04", s, time.UTC)
	if err != nil {
		t.Fatalf("bad instant %q: %v", s, err)
	}
	return ts
}

func ptr[T any](v T) *T { return &v }

// recordingPublisher collects dispatched audit events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []effects.AuditEffect
}

func (p *recordingPublisher) Dispatch(_ context.Context, events []effects.AuditEffect) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
}

func (p *recordingPublisher) all() []effects.AuditEffect {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]effects.AuditEffect(nil), p.events...)
}

func (p *recordingPublisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}

// failingCloser delegates to an AssignmentCloser but fails for chosen assignments
// after the real closure has written, so rollbacks are observable.
type failingCloser struct {
	inner  AssignmentCloser
	failOn map[int64]bool
}

func (c *failingCloser) CloseWithinTx(ctx context.Context, tx secondary.Tx, rec *secondary.AssignmentRecord, p CloseParams) (*secondary.AssignmentRecord, effects.AuditEffect, error) {
	after, event, err := c.inner.CloseWithinTx(ctx, tx, rec, p)
	if err != nil {
		return nil, effects.AuditEffect{}, err
	}
	if c.failOn[rec.ID] {
		return nil, effects.AuditEffect{}, errors.New("injected closure failure")
	}
	return after, event, nil
}

// calendarDownStore hands out transactions whose calendar reads fail.
type calendarDownStore struct {
	inner secondary.Store
}

func (s calendarDownStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx secondary.Tx) error) error {
	return s.inner.WithinTx(ctx, func(ctx context.Context, tx secondary.Tx) error {
		return fn(ctx, calendarDownTx{Tx: tx})
	})
}

type calendarDownTx struct {
	secondary.Tx
}

func (tx calendarDownTx) Calendar() secondary.CalendarRepository {
	return brokenCalendar{}
}

type brokenCalendar struct{}

var errCalendarDown = errors.New("calendar table locked")

func (brokenCalendar) GetDays(context.Context, time.Time, time.Time) ([]calendar.Day, error) {
	return nil, errCalendarDown
}

func (brokenCalendar) GetDay(context.Context, time.Time) (*calendar.Day, error) {
	return nil, errCalendarDown
}

func (brokenCalendar) UpsertDay(context.Context, calendar.Day) error {
	return errCalendarDown
}

// flakyListStore fails the first n open-assignment listings.
type flakyListStore struct {
	inner    secondary.Store
	failures *int
}

func (s flakyListStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx secondary.Tx) error) error {
	return s.inner.WithinTx(ctx, func(ctx context.Context, tx secondary.Tx) error {
		return fn(ctx, flakyListTx{Tx: tx, failures: s.failures})
	})
}

type flakyListTx struct {
	secondary.Tx
	failures *int
}

func (tx flakyListTx) Assignments() secondary.AssignmentRepository {
	return flakyListRepo{AssignmentRepository: tx.Tx.Assignments(), failures: tx.failures}
}

type flakyListRepo struct {
	secondary.AssignmentRepository
	failures *int
}

var errListFailed = errors.New("database is locked")

func (r flakyListRepo) List(ctx context.Context, filters secondary.AssignmentFilters) ([]*secondary.AssignmentRecord, error) {
	if *r.failures > 0 {
		*r.failures--
		return nil, errListFailed
	}
	return r.AssignmentRepository.List(ctx, filters)
}
