package primary

import (
	"context"
	"time"

	"github.com/example/atelier/internal/core/calendar"
)

// CalendarService defines the primary port for work calendar maintenance.
type CalendarService interface {
	// SetDay inserts or replaces one calendar day.
	SetDay(ctx context.Context, day calendar.Day) error

	// ListDays returns the calendar rows within [from, to].
	ListDays(ctx context.Context, from, to time.Time) ([]calendar.Day, error)

	// ComputeDuration previews the calendar-aware duration between two instants.
	ComputeDuration(ctx context.Context, start, end time.Time) (*DurationPreview, error)
}

// DurationPreview is the outcome of a duration computation.
type DurationPreview struct {
	Seconds  int64
	Degraded bool // calendar unavailable, naive elapsed time used
}
