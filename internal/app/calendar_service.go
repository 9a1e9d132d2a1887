package app

import (
	"context"
	"time"

	"github.com/example/atelier/internal/core/calendar"
	"github.com/example/atelier/internal/core/effects"
	"github.com/example/atelier/internal/core/guard"
	"github.com/example/atelier/internal/ports/primary"
	"github.com/example/atelier/internal/ports/secondary"
)

const calendarTable = "calendar_days"

// CalendarServiceImpl implements the CalendarService interface.
type CalendarServiceImpl struct {
	store     secondary.Store
	durations *DurationCalculator
	audit     AuditPublisher
	now       func() time.Time
}

// NewCalendarService creates a new CalendarService with injected dependencies.
func NewCalendarService(store secondary.Store, durations *DurationCalculator, audit AuditPublisher) *CalendarServiceImpl {
	return &CalendarServiceImpl{
		store:     store,
		durations: durations,
		audit:     audit,
		now:       wallNow,
	}
}

var _ primary.CalendarService = (*CalendarServiceImpl)(nil)

// SetDay inserts or replaces one calendar day.
func (s *CalendarServiceImpl) SetDay(ctx context.Context, day calendar.Day) error {
	if day.Date.IsZero() {
		return guard.Deny(guard.KindValidation, "missing calendar date").Error()
	}
	day.Date = calendar.DateOf(day.Date)
	windows := []struct {
		name       string
		start, end *calendar.Clock
	}{
		{"shift", day.ShiftStart, day.ShiftEnd},
		{"overtime", day.OvertimeStart, day.OvertimeEnd},
		{"break", day.BreakStart, day.BreakEnd},
	}
	for _, w := range windows {
		if (w.start == nil) != (w.end == nil) {
			return guard.Deny(guard.KindValidation, "%s needs both a start and an end", w.name).Error()
		}
		if w.start != nil && !w.end.On(day.Date).After(w.start.On(day.Date)) {
			return guard.Deny(guard.KindValidation, "%s end %s must be after its start %s", w.name, w.end, w.start).Error()
		}
	}

	var event effects.AuditEffect
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx secondary.Tx) error {
		before, err := tx.Calendar().GetDay(ctx, day.Date)
		if err != nil {
			return err
		}
		if err := tx.Calendar().UpsertDay(ctx, day); err != nil {
			return err
		}

		action := effects.ActionCreate
		var beforeImage any
		if before != nil {
			action = effects.ActionUpdate
			beforeImage = before
		}
		event = newAuditEffect(ctx, s.now(), action, calendarTable, dayKey(day.Date), beforeImage, day)
		return nil
	})
	if err != nil {
		return err
	}

	s.audit.Dispatch(ctx, []effects.AuditEffect{event})
	return nil
}

// ListDays returns the calendar rows within [from, to].
func (s *CalendarServiceImpl) ListDays(ctx context.Context, from, to time.Time) ([]calendar.Day, error) {
	var days []calendar.Day
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx secondary.Tx) error {
		var err error
		days, err = tx.Calendar().GetDays(ctx, calendar.DateOf(from), calendar.DateOf(to))
		return err
	})
	return days, err
}

// ComputeDuration previews the duration an assignment spanning start..end would get.
func (s *CalendarServiceImpl) ComputeDuration(ctx context.Context, start, end time.Time) (*primary.DurationPreview, error) {
	preview := &primary.DurationPreview{}
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx secondary.Tx) error {
		preview.Seconds, preview.Degraded = s.durations.Compute(ctx, tx, calendar.Wall(start), calendar.Wall(end))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return preview, nil
}

// dayKey is the audit row id of a calendar day: its date as YYYYMMDD.
func dayKey(d time.Time) int64 {
	return int64(d.Year()*10000 + int(d.Month())*100 + d.Day())
}
