package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/example/atelier/internal/core/calendar"
)

// mockCalendarReader implements secondary.CalendarReader for testing.
type mockCalendarReader struct {
	days []calendar.Day
	err  error
}

func (m *mockCalendarReader) GetDays(context.Context, time.Time, time.Time) ([]calendar.Day, error) {
	return m.days, m.err
}

func (m *mockCalendarReader) GetDay(context.Context, time.Time) (*calendar.Day, error) {
	if len(m.days) == 0 {
		return nil, m.err
	}
	return &m.days[0], m.err
}

func TestDurationCalculator_ComputeWith(t *testing.T) {
	start := at(t, "2026-03-02 07:30")
	end := at(t, "2026-03-02 18:00")
	clock := func(s string) *calendar.Clock {
		c := calendar.MustClock(s)
		return &c
	}
	workday := calendar.Day{
		Date:       calendar.DateOf(start),
		IsOpen:     true,
		ShiftStart: clock("08:00"),
		ShiftEnd:   clock("17:00"),
		BreakStart: clock("12:00"),
		BreakEnd:   clock("13:00"),
	}

	tests := []struct {
		name         string
		reader       *mockCalendarReader
		wantSeconds  int64
		wantDegraded bool
	}{
		{name: "calendar rows", reader: &mockCalendarReader{days: []calendar.Day{workday}}, wantSeconds: 28800},
		{name: "no rows falls back", reader: &mockCalendarReader{}, wantSeconds: 37800, wantDegraded: true},
		{name: "read error falls back", reader: &mockCalendarReader{err: errors.New("timeout")}, wantSeconds: 37800, wantDegraded: true},
	}

	calc := NewDurationCalculator(zaptest.NewLogger(t))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seconds, degraded := calc.ComputeWith(context.Background(), tt.reader, start, end)
			assert.Equal(t, tt.wantSeconds, seconds)
			assert.Equal(t, tt.wantDegraded, degraded)
		})
	}
}
