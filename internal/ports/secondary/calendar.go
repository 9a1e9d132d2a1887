package secondary

import (
	"context"
	"time"

	"github.com/example/atelier/internal/core/calendar"
)

// CalendarReader reads the work calendar.
type CalendarReader interface {
	// GetDays returns the rows whose date falls within [from, to], ordered by date.
	GetDays(ctx context.Context, from, to time.Time) ([]calendar.Day, error)

	// GetDay returns the row of one date, or nil when there is none.
	GetDay(ctx context.Context, date time.Time) (*calendar.Day, error)
}

// CalendarRepository adds maintenance writes to CalendarReader.
type CalendarRepository interface {
	CalendarReader

	// UpsertDay inserts or replaces the row of day.Date.
	UpsertDay(ctx context.Context, day calendar.Day) error
}
