package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/atelier/internal/core/calendar"
	"github.com/example/atelier/internal/ports/secondary"
)

const calendarColumns = "day, is_open, is_holiday, shift_start, shift_end, overtime_start, overtime_end, break_start, break_end"

// CalendarRepository implements secondary.CalendarRepository.
type CalendarRepository struct {
	db sqlx.ExtContext
}

// NewCalendarRepository creates a new calendar repository.
func NewCalendarRepository(db sqlx.ExtContext) *CalendarRepository {
	return &CalendarRepository{db: db}
}

var _ secondary.CalendarRepository = (*CalendarRepository)(nil)

type calendarRow struct {
	Day           string         `db:"day"`
	IsOpen        bool           `db:"is_open"`
	IsHoliday     bool           `db:"is_holiday"`
	ShiftStart    sql.NullString `db:"shift_start"`
	ShiftEnd      sql.NullString `db:"shift_end"`
	OvertimeStart sql.NullString `db:"overtime_start"`
	OvertimeEnd   sql.NullString `db:"overtime_end"`
	BreakStart    sql.NullString `db:"break_start"`
	BreakEnd      sql.NullString `db:"break_end"`
}

func (row *calendarRow) day() (calendar.Day, error) {
	date, err := calendar.ParseDate(row.Day)
	if err != nil {
		return calendar.Day{}, err
	}
	d := calendar.Day{Date: date, IsOpen: row.IsOpen, IsHoliday: row.IsHoliday}

	bounds := []struct {
		src sql.NullString
		dst **calendar.Clock
	}{
		{row.ShiftStart, &d.ShiftStart},
		{row.ShiftEnd, &d.ShiftEnd},
		{row.OvertimeStart, &d.OvertimeStart},
		{row.OvertimeEnd, &d.OvertimeEnd},
		{row.BreakStart, &d.BreakStart},
		{row.BreakEnd, &d.BreakEnd},
	}
	for _, b := range bounds {
		if !b.src.Valid || b.src.String == "" {
			continue
		}
		c, err := calendar.ParseClock(b.src.String)
		if err != nil {
			return calendar.Day{}, fmt.Errorf("calendar day %s: %w", row.Day, err)
		}
		*b.dst = &c
	}
	return d, nil
}

// GetDays returns the calendar rows in [from, to].
func (r *CalendarRepository) GetDays(ctx context.Context, from, to time.Time) ([]calendar.Day, error) {
	var rows []calendarRow
	err := sqlx.SelectContext(ctx, r.db, &rows, r.db.Rebind(
		"SELECT "+calendarColumns+" FROM calendar_days WHERE day >= ? AND day <= ? ORDER BY day"),
		formatDate(from), formatDate(to))
	if err != nil {
		return nil, fmt.Errorf("failed to read calendar: %w", err)
	}

	days := make([]calendar.Day, 0, len(rows))
	for i := range rows {
		d, err := rows[i].day()
		if err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, nil
}

// GetDay returns the row of one date, nil when the date has no row.
func (r *CalendarRepository) GetDay(ctx context.Context, date time.Time) (*calendar.Day, error) {
	var row calendarRow
	err := sqlx.GetContext(ctx, r.db, &row, r.db.Rebind(
		"SELECT "+calendarColumns+" FROM calendar_days WHERE day = ?"), formatDate(date))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read calendar day: %w", err)
	}
	d, err := row.day()
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// UpsertDay inserts or replaces a calendar row.
func (r *CalendarRepository) UpsertDay(ctx context.Context, d calendar.Day) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(
		`INSERT INTO calendar_days (`+calendarColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (day) DO UPDATE SET
			is_open = excluded.is_open,
			is_holiday = excluded.is_holiday,
			shift_start = excluded.shift_start,
			shift_end = excluded.shift_end,
			overtime_start = excluded.overtime_start,
			overtime_end = excluded.overtime_end,
			break_start = excluded.break_start,
			break_end = excluded.break_end`),
		formatDate(d.Date), d.IsOpen, d.IsHoliday,
		clockValue(d.ShiftStart), clockValue(d.ShiftEnd),
		clockValue(d.OvertimeStart), clockValue(d.OvertimeEnd),
		clockValue(d.BreakStart), clockValue(d.BreakEnd),
	)
	if err != nil {
		return fmt.Errorf("failed to save calendar day: %w", err)
	}
	return nil
}

func clockValue(c *calendar.Clock) sql.NullString {
	if c == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: c.String(), Valid: true}
}
