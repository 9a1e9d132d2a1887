package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	id, err := parseID(" 42 ", "assignment")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = parseID("ASSIGN-42", "assignment")
	assert.EqualError(t, err, "invalid assignment ID 'ASSIGN-42': expected a positive number")

	_, err = parseID("0", "order")
	assert.Error(t, err)
}

func TestParseInstant(t *testing.T) {
	fixed := func() time.Time { return time.Date(2026, 3, 4, 15, 4, 5, 0, time.FixedZone("CET", 3600)) }

	tests := []struct {
		raw  string
		want time.Time
	}{
		{"2026-03-04 07:30", time.Date(2026, 3, 4, 7, 30, 0, 0, time.UTC)},
		{"2026-03-04T07:30", time.Date(2026, 3, 4, 7, 30, 0, 0, time.UTC)},
		{"2026-03-04 07:30:15", time.Date(2026, 3, 4, 7, 30, 15, 0, time.UTC)},
		{"now", time.Date(2026, 3, 4, 15, 4, 5, 0, time.UTC)},
		{"", time.Date(2026, 3, 4, 15, 4, 5, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := parseInstant(tt.raw, fixed)
		require.NoError(t, err, tt.raw)
		assert.True(t, tt.want.Equal(got), "%q: want %v, got %v", tt.raw, tt.want, got)
	}

	_, err := parseInstant("04/03/2026", fixed)
	assert.ErrorContains(t, err, "invalid instant")
}

func TestParseClockRange(t *testing.T) {
	start, end, err := parseClockRange("08:00-17:30")
	require.NoError(t, err)
	assert.Equal(t, "08:00:00", start.String())
	assert.Equal(t, "17:30:00", end.String())

	start, end, err = parseClockRange("")
	require.NoError(t, err)
	assert.Nil(t, start)
	assert.Nil(t, end)

	_, _, err = parseClockRange("08:00")
	assert.ErrorContains(t, err, "want HH:MM-HH:MM")

	_, _, err = parseClockRange("08:00-25:00")
	assert.Error(t, err)
}

func TestWeekBounds(t *testing.T) {
	// Wednesday
	monday, sunday := weekBounds(time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC))
	assert.Equal(t, "2026-03-02", monday.Format("2006-01-02"))
	assert.Equal(t, "2026-03-08", sunday.Format("2006-01-02"))

	// Sunday belongs to the week that started the Monday before
	monday, _ = weekBounds(time.Date(2026, 3, 8, 10, 0, 0, 0, time.UTC))
	assert.Equal(t, "2026-03-02", monday.Format("2006-01-02"))
}
