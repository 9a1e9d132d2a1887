package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/example/atelier/internal/core/calendar"
	"github.com/example/atelier/internal/ports/primary"
)

// CalendarAdapter translates CLI operations to CalendarService calls.
type CalendarAdapter struct {
	service primary.CalendarService
	out     io.Writer
}

// NewCalendarAdapter creates a new CalendarAdapter with the given service.
func NewCalendarAdapter(service primary.CalendarService, out io.Writer) *CalendarAdapter {
	return &CalendarAdapter{
		service: service,
		out:     out,
	}
}

// Set stores a calendar day.
func (a *CalendarAdapter) Set(ctx context.Context, day calendar.Day) error {
	if err := a.service.SetDay(ctx, day); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Calendar day %s saved\n", day.Date.Format(calendar.DateLayout))
	return nil
}

// Show lists calendar days in a range.
func (a *CalendarAdapter) Show(ctx context.Context, from, to time.Time) error {
	days, err := a.service.ListDays(ctx, from, to)
	if err != nil {
		return fmt.Errorf("failed to list calendar: %w", err)
	}

	if len(days) == 0 {
		fmt.Fprintln(a.out, "No calendar days found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-11s %-8s %-19s %-19s %s\n", "DATE", "STATUS", "SHIFT", "OVERTIME", "BREAK")
	fmt.Fprintln(a.out, rule)
	for _, d := range days {
		fmt.Fprintf(a.out, "%-11s %s %-19s %-19s %s\n",
			d.Date.Format(calendar.DateLayout), dayBadge(d), span(d.ShiftStart, d.ShiftEnd), span(d.OvertimeStart, d.OvertimeEnd), span(d.BreakStart, d.BreakEnd))
	}
	fmt.Fprintln(a.out)
	return nil
}

// Duration previews the worked seconds between two instants.
func (a *CalendarAdapter) Duration(ctx context.Context, start, end time.Time) error {
	preview, err := a.service.ComputeDuration(ctx, start, end)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s → %s: %s (%ds)", start.Format(instantFormat), end.Format(instantFormat), formatSeconds(preview.Seconds), preview.Seconds)
	if preview.Degraded {
		fmt.Fprintf(a.out, " %s", color.New(color.FgYellow).Sprint("[calendar unavailable, elapsed time]"))
	}
	fmt.Fprintln(a.out)
	return nil
}

func dayBadge(d calendar.Day) string {
	switch {
	case d.IsHoliday:
		return color.New(color.FgMagenta).Sprint("holiday ")
	case !d.IsOpen:
		return color.New(color.FgYellow).Sprint("closed  ")
	default:
		return color.New(color.FgGreen).Sprint("open    ")
	}
}

func span(start, end *calendar.Clock) string {
	if start == nil || end == nil {
		return "-"
	}
	return start.String() + "-" + end.String()
}
