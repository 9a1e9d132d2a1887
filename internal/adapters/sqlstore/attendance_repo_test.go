package sqlstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/atelier/internal/adapters/sqlstore"
	"github.com/example/atelier/internal/core/calendar"
	"github.com/example/atelier/internal/ports/secondary"
)

func TestAttendanceRepository(t *testing.T) {
	conn := setupTestDB(t)
	repo := sqlstore.NewAttendanceRepository(conn)
	ctx := context.Background()

	date, err := calendar.ParseDate("2026-03-03")
	require.NoError(t, err)

	id, err := repo.Create(ctx, &secondary.AttendanceRecord{OperatorID: 7, Date: date, Absent: true, Reason: "sick"})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.OperatorID)
	assert.Equal(t, date, got.Date)
	assert.True(t, got.Absent)
	assert.Equal(t, "sick", got.Reason)

	_, err = repo.GetByID(ctx, id+1)
	assert.ErrorIs(t, err, secondary.ErrNotFound)
}
