package postgresql_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/request"
	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/summary"
	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/kintai-backend-go/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_Create(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewUserRepository(db)

	created := createTestUser(t, db, "tanaka")

	t.Run("lookup is case-insensitive", func(t *testing.T) {
		got, err := repo.GetByUsername(ctx, "TANAKA")
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
	})

	t.Run("duplicate username", func(t *testing.T) {
		_, err := repo.Create(ctx, user.User{Username: "tanaka", PasswordHash: "x", Role: user.RoleGeneral, IsActive: true})
		assert.ErrorIs(t, err, user.ErrUsernameExists)
	})

	t.Run("malformed id is not found", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "not-a-uuid")
		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})
}

func TestAttendanceRepository_UpsertClockIn(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewAttendanceRepository(db)
	u := createTestUser(t, db, "sato")
	day := date("2025-03-10")
	at := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	first, err := repo.UpsertClockIn(ctx, u.ID, day, at)
	require.NoError(t, err)
	require.NotNil(t, first.ClockIn)
	assert.Equal(t, 0, *first.WorkMinutes)

	_, err = repo.UpsertClockIn(ctx, u.ID, day, at.Add(time.Hour))
	assert.ErrorIs(t, err, attendance.ErrAlreadyClockedIn)

	open, err := repo.ListOpenByDate(ctx, day)
	require.NoError(t, err)
	assert.Len(t, open, 1)
}

func TestAttendanceRepository_ConcurrentClockIn(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewAttendanceRepository(db)
	u := createTestUser(t, db, "suzuki")
	day := date("2025-03-10")

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.UpsertClockIn(ctx, u.ID, day, time.Now()); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
}

func TestBreakRepository_OneOpenBreak(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, db, "ito")
	att, err := postgresql.NewAttendanceRepository(db).UpsertClockIn(ctx, u.ID, date("2025-03-10"), time.Now())
	require.NoError(t, err)

	breaks := postgresql.NewBreakRepository(db)
	start := time.Date(2025, 3, 10, 3, 0, 0, 0, time.UTC)
	b, err := breaks.Create(ctx, attendance.Break{AttendanceID: att.ID, StartTime: start})
	require.NoError(t, err)

	_, err = breaks.Create(ctx, attendance.Break{AttendanceID: att.ID, StartTime: start.Add(time.Minute)})
	assert.ErrorIs(t, err, attendance.ErrBreakAlreadyOpen)

	require.NoError(t, breaks.Close(ctx, b.ID, start.Add(45*time.Minute), 45))
	assert.ErrorIs(t, breaks.Close(ctx, b.ID, start.Add(50*time.Minute), 50), attendance.ErrNoOpenBreak)

	open, err := breaks.GetOpen(ctx, att.ID)
	require.NoError(t, err)
	assert.Nil(t, open)
}

func TestOvertimeRepository_DecideOnce(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewOvertimeRepository(db)
	u := createTestUser(t, db, "kato")
	admin := createTestUser(t, db, "boss")

	submittedAt := time.Date(2025, 3, 9, 20, 30, 0, 0, time.UTC)
	created, err := repo.Create(ctx, request.OvertimeRequest{
		Header:     request.NewHeader(request.KindOvertime, u.ID, submittedAt),
		TargetDate: date("2025-03-10"),
		Minutes:    90,
		Reason:     "release",
	})
	require.NoError(t, err)
	assert.Equal(t, request.StatusPending, created.Status)

	approve := request.Decision{By: request.DecidedByApprover, Outcome: request.OutcomeApproved, ActorID: admin.ID, At: time.Now()}
	require.NoError(t, repo.Decide(ctx, created.ID, approve))
	assert.ErrorIs(t, repo.Decide(ctx, created.ID, approve), request.ErrAlreadyDecided)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, request.StatusApproved, got.Status)
	require.NotNil(t, got.ApproverID)
	assert.Equal(t, admin.ID, *got.ApproverID)
	assert.True(t, submittedAt.Equal(got.CreatedAt), "created_at %s", got.CreatedAt)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, request.ErrRequestNotFound)
}

func TestHolidayRequestRepository_ListOverlap(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewHolidayRequestRepository(db)
	u := createTestUser(t, db, "yamada")

	_, err := repo.Create(ctx, request.HolidayRequest{
		Header:      request.NewHeader(request.KindHoliday, u.ID, time.Now()),
		StartDate:   date("2025-03-08"),
		EndDate:     date("2025-03-12"),
		HolidayType: request.HolidayPaid,
	})
	require.NoError(t, err)

	from, to := date("2025-03-10"), date("2025-03-20")
	got, err := repo.List(ctx, request.Filter{From: &from, To: &to})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	from = date("2025-03-13")
	got, err = repo.List(ctx, request.Filter{From: &from})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestScheduleRepository_Month(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewScheduleRepository(db)
	tx := postgresql.NewTransactor(db)
	u := createTestUser(t, db, "nakamura")
	month := date("2025-04-01")

	days := func(dates ...string) []request.ScheduleDay {
		out := make([]request.ScheduleDay, len(dates))
		for i, d := range dates {
			out[i] = request.ScheduleDay{
				Header:   request.NewHeader(request.KindSchedule, u.ID, time.Now()),
				Date:     date(d),
				WorkType: request.WorkTypeWork,
			}
		}
		return out
	}

	err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		_, err := repo.ReplacePendingMonth(ctx, u.ID, month, days("2025-04-01", "2025-04-02", "2025-04-03"))
		return err
	})
	require.NoError(t, err)

	var replaced []request.ScheduleDay
	err = tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		replaced, err = repo.ReplacePendingMonth(ctx, u.ID, month, days("2025-04-07", "2025-04-08"))
		return err
	})
	require.NoError(t, err)
	assert.Len(t, replaced, 2)

	count, err := repo.DecideMonth(ctx, u.ID, month, request.Decision{
		By: request.DecidedByApprover, Outcome: request.OutcomeApproved, ActorID: u.ID, At: time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = repo.DecideMonth(ctx, u.ID, month, request.Decision{
		By: request.DecidedByApprover, Outcome: request.OutcomeRejected, ActorID: u.ID, At: time.Now(),
	})
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestHolidayRepository_UniqueDate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewHolidayRepository(db)

	h, err := repo.Create(ctx, holiday.CompanyHoliday{Date: date("2025-05-05"), Name: "Children's Day"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, holiday.CompanyHoliday{Date: date("2025-05-05"), Name: "Duplicate"})
	assert.ErrorIs(t, err, holiday.ErrHolidayDateExists)

	require.NoError(t, repo.Delete(ctx, h.ID))
	assert.ErrorIs(t, repo.Delete(ctx, h.ID), holiday.ErrHolidayNotFound)
}

func TestSummaryRepository_UpsertIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewSummaryRepository(db)
	u := createTestUser(t, db, "kobayashi")

	m := summary.MonthlySummary{
		UserID: u.ID, Year: 2025, Month: 3,
		Totals:       summary.Totals{WorkDays: 20, TotalWorkMinutes: 9600, AverageWorkHours: 8},
		BusinessDays: 21, AbsentDays: 1,
	}
	_, err := repo.UpsertMonthly(ctx, m)
	require.NoError(t, err)

	m.TotalWorkMinutes = 9660
	_, err = repo.UpsertMonthly(ctx, m)
	require.NoError(t, err)

	got, err := repo.GetMonthly(ctx, u.ID, 2025, 3)
	require.NoError(t, err)
	assert.Equal(t, 9660, got.TotalWorkMinutes)
	assert.Equal(t, 1, got.AbsentDays)

	var count int
	require.NoError(t, db.QueryRow(ctx, `SELECT COUNT(*) FROM monthly_summaries`).Scan(&count))
	assert.Equal(t, 1, count)
}
