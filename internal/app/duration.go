package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/example/atelier/internal/core/calendar"
	"github.com/example/atelier/internal/ports/secondary"
)

// DurationCalculator turns an interval into worked seconds using the work
// calendar of the open unit of work. It never fails: when the calendar
// cannot be read, or holds no row for the interval, it falls back to the
// naive elapsed time.
type DurationCalculator struct {
	logger *zap.Logger
}

// NewDurationCalculator creates a new DurationCalculator.
func NewDurationCalculator(logger *zap.Logger) *DurationCalculator {
	return &DurationCalculator{logger: logger}
}

// Compute returns the worked seconds between start and end and whether the
// naive fallback was used. The calendar read runs under a savepoint so a
// failed read leaves tx usable.
func (c *DurationCalculator) Compute(ctx context.Context, tx secondary.Tx, start, end time.Time) (int64, bool) {
	var days []calendar.Day
	err := tx.Savepoint(ctx, func(ctx context.Context) error {
		var err error
		days, err = tx.Calendar().GetDays(ctx, calendar.DateOf(start), calendar.DateOf(end))
		return err
	})
	return c.fromDays(days, err, start, end)
}

// ComputeWith is Compute for callers holding a bare calendar reader.
func (c *DurationCalculator) ComputeWith(ctx context.Context, reader secondary.CalendarReader, start, end time.Time) (int64, bool) {
	days, err := reader.GetDays(ctx, calendar.DateOf(start), calendar.DateOf(end))
	return c.fromDays(days, err, start, end)
}

func (c *DurationCalculator) fromDays(days []calendar.Day, err error, start, end time.Time) (int64, bool) {
	if err != nil {
		c.logger.Warn("work calendar unavailable, using elapsed time",
			zap.Time("start", start), zap.Time("end", end), zap.Error(err))
		durationFallbackTotal.WithLabelValues("error").Inc()
		return calendar.Naive(start, end), true
	}
	if len(days) == 0 {
		c.logger.Debug("no calendar rows for interval, using elapsed time",
			zap.Time("start", start), zap.Time("end", end))
		durationFallbackTotal.WithLabelValues("no_calendar").Inc()
		return calendar.Naive(start, end), true
	}
	return calendar.ComputeDuration(days, start, end), false
}
