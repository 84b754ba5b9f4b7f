package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/request"
	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func TestWithinTransaction_RollbackOnError(t *testing.T) {
	s := NewStore(clock.NewFixed(now))
	users := NewUserRepository(s)
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.WithinTransaction(ctx, func(ctx context.Context) error {
		_, err := users.Create(ctx, user.User{Username: "tanaka", IsActive: true})
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = users.GetByUsername(ctx, "tanaka")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestWithinTransaction_CommitAndNested(t *testing.T) {
	s := NewStore(clock.NewFixed(now))
	users := NewUserRepository(s)
	ctx := context.Background()

	err := s.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := users.Create(ctx, user.User{Username: "tanaka", IsActive: true}); err != nil {
			return err
		}
		return s.WithinTransaction(ctx, func(ctx context.Context) error {
			_, err := users.Create(ctx, user.User{Username: "sato", IsActive: true})
			return err
		})
	})
	require.NoError(t, err)

	count, err := users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestUpsertClockIn(t *testing.T) {
	s := NewStore(clock.NewFixed(now))
	repo := NewAttendanceRepository(s)
	ctx := context.Background()
	day := clock.Today(now, time.UTC)

	a, err := repo.UpsertClockIn(ctx, "u1", day, now)
	require.NoError(t, err)
	require.NotNil(t, a.WorkMinutes)
	assert.Equal(t, 0, *a.WorkMinutes)

	_, err = repo.UpsertClockIn(ctx, "u1", day, now.Add(time.Minute))
	assert.ErrorIs(t, err, attendance.ErrAlreadyClockedIn)

	open, err := repo.LockOpen(ctx, "u1", day.AddDate(0, 0, -1))
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, a.ID, open.ID)
}

func TestBreak_OneOpenPerRecord(t *testing.T) {
	s := NewStore(clock.NewFixed(now))
	repo := NewBreakRepository(s)
	ctx := context.Background()

	b, err := repo.Create(ctx, attendance.Break{AttendanceID: "a1", StartTime: now})
	require.NoError(t, err)

	_, err = repo.Create(ctx, attendance.Break{AttendanceID: "a1", StartTime: now})
	assert.ErrorIs(t, err, attendance.ErrBreakAlreadyOpen)

	require.NoError(t, repo.Close(ctx, b.ID, now.Add(30*time.Minute), 30))
	assert.ErrorIs(t, repo.Close(ctx, b.ID, now.Add(40*time.Minute), 40), attendance.ErrNoOpenBreak)

	open, err := repo.GetOpen(ctx, "a1")
	require.NoError(t, err)
	assert.Nil(t, open)
}

func TestRequestTable_DecideOnlyOnce(t *testing.T) {
	s := NewStore(clock.NewFixed(now))
	repo := NewOvertimeRepository(s)
	ctx := context.Background()

	o, err := repo.Create(ctx, request.OvertimeRequest{
		Header:     request.NewHeader(request.KindOvertime, "u1", now),
		TargetDate: clock.Today(now, time.UTC),
		Minutes:    60,
		Reason:     "release",
	})
	require.NoError(t, err)
	require.NotEmpty(t, o.ID)

	d := request.Decision{By: request.DecidedByApprover, Outcome: request.OutcomeApproved, ActorID: "admin", At: now}
	require.NoError(t, repo.Decide(ctx, o.ID, d))
	assert.ErrorIs(t, repo.Decide(ctx, o.ID, d), request.ErrAlreadyDecided)

	got, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, request.StatusApproved, got.Status)
	require.NotNil(t, got.ApproverID)
	assert.Equal(t, "admin", *got.ApproverID)
}

func TestHolidayRequestFilter_Overlap(t *testing.T) {
	s := NewStore(clock.NewFixed(now))
	repo := NewHolidayRequestRepository(s)
	ctx := context.Background()

	_, err := repo.Create(ctx, request.HolidayRequest{
		Header:      request.NewHeader(request.KindHoliday, "u1", now),
		StartDate:   time.Date(2025, 3, 28, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC),
		HolidayType: request.HolidayPaid,
	})
	require.NoError(t, err)

	from := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC)
	list, err := repo.List(ctx, request.Filter{From: &from, To: &to})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	from = time.Date(2025, 4, 3, 0, 0, 0, 0, time.UTC)
	list, err = repo.List(ctx, request.Filter{From: &from, To: &to})
	require.NoError(t, err)
	assert.Empty(t, list)
}
