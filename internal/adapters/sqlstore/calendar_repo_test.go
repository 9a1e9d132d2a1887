package sqlstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/atelier/internal/adapters/sqlstore"
	"github.com/example/atelier/internal/core/calendar"
)

func workday(t *testing.T, date string) calendar.Day {
	t.Helper()
	d, err := calendar.ParseDate(date)
	require.NoError(t, err)
	clock := func(s string) *calendar.Clock {
		c := calendar.MustClock(s)
		return &c
	}
	return calendar.Day{
		Date:       d,
		IsOpen:     true,
		ShiftStart: clock("08:00"),
		ShiftEnd:   clock("17:00"),
		BreakStart: clock("12:00"),
		BreakEnd:   clock("13:00"),
	}
}

func TestCalendarRepository_UpsertAndRead(t *testing.T) {
	conn := setupTestDB(t)
	repo := sqlstore.NewCalendarRepository(conn)
	ctx := context.Background()

	monday := workday(t, "2026-03-02")
	tuesday := workday(t, "2026-03-03")
	sunday := calendar.Day{Date: monday.Date.AddDate(0, 0, -1)}

	for _, d := range []calendar.Day{tuesday, monday, sunday} {
		require.NoError(t, repo.UpsertDay(ctx, d))
	}

	days, err := repo.GetDays(ctx, monday.Date, tuesday.Date)
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, monday.Date, days[0].Date)
	assert.True(t, days[0].IsOpen)
	assert.Equal(t, "08:00:00", days[0].ShiftStart.String())
	assert.Equal(t, "13:00:00", days[0].BreakEnd.String())
	assert.Nil(t, days[0].OvertimeStart)

	got, err := repo.GetDay(ctx, sunday.Date)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.IsOpen)
	assert.Nil(t, got.ShiftEnd)
}

func TestCalendarRepository_UpsertReplaces(t *testing.T) {
	conn := setupTestDB(t)
	repo := sqlstore.NewCalendarRepository(conn)
	ctx := context.Background()

	d := workday(t, "2026-03-02")
	require.NoError(t, repo.UpsertDay(ctx, d))

	d.IsHoliday = true
	d.BreakStart, d.BreakEnd = nil, nil
	require.NoError(t, repo.UpsertDay(ctx, d))

	got, err := repo.GetDay(ctx, d.Date)
	require.NoError(t, err)
	assert.True(t, got.IsHoliday)
	assert.Nil(t, got.BreakStart)
}

func TestCalendarRepository_MissingDayIsNil(t *testing.T) {
	conn := setupTestDB(t)
	repo := sqlstore.NewCalendarRepository(conn)

	d, err := calendar.ParseDate("2026-12-25")
	require.NoError(t, err)

	got, err := repo.GetDay(context.Background(), d)
	require.NoError(t, err)
	assert.Nil(t, got)

	days, err := repo.GetDays(context.Background(), d, d)
	require.NoError(t, err)
	assert.Empty(t, days)
}
