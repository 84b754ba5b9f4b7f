package holiday

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/kintai-backend-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHolidayService(t *testing.T) {
	svc := NewHolidayService(memory.NewHolidayRepository(memory.NewStore(nil)))
	ctx := context.Background()

	created, err := svc.Create(ctx, "admin-id", holiday.CreateHolidayRequest{Date: "2025-05-05", Name: " Children's Day "})
	require.NoError(t, err)
	assert.Equal(t, "Children's Day", created.Name)
	assert.Equal(t, "Monday", created.Weekday)
	require.NotNil(t, created.CreatedBy)

	_, err = svc.Create(ctx, "admin-id", holiday.CreateHolidayRequest{Date: "2025-05-05", Name: "Duplicate"})
	assert.ErrorIs(t, err, holiday.ErrHolidayDateExists)

	_, err = svc.Create(ctx, "admin-id", holiday.CreateHolidayRequest{Date: "2026-01-01", Name: "New Year"})
	require.NoError(t, err)

	list, err := svc.ListByYear(ctx, holiday.ListHolidayRequest{Year: "2025"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "2025-05-05", list[0].Date)

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), holiday.ErrHolidayNotFound)

	_, err = svc.ListByYear(ctx, holiday.ListHolidayRequest{Year: "abc"})
	assert.Error(t, err)
}
