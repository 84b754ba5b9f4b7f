package summary

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/summary"
	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/kintai-backend-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

// failingAttendances fails every lookup for one user.
type failingAttendances struct {
	attendance.AttendanceRepository
	userID string
}

func (f failingAttendances) ListByUserAndRange(ctx context.Context, userID string, from, to time.Time) ([]attendance.Attendance, error) {
	if userID == f.userID {
		return nil, errors.New("boom")
	}
	return f.AttendanceRepository.ListByUserAndRange(ctx, userID, from, to)
}

type fixture struct {
	store       *memory.Store
	users       user.UserRepository
	attendances attendance.AttendanceRepository
	holidays    holiday.HolidayRepository
	summaries   summary.SummaryRepository
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := memory.NewStore(clock.NewFixed(date("2025-04-01")))
	return fixture{
		store:       store,
		users:       memory.NewUserRepository(store),
		attendances: memory.NewAttendanceRepository(store),
		holidays:    memory.NewHolidayRepository(store),
		summaries:   memory.NewSummaryRepository(store),
	}
}

func (f fixture) service(attendances attendance.AttendanceRepository) summary.SummaryService {
	return NewSummaryService(f.summaries, attendances, f.users, f.holidays, 2)
}

func (f fixture) createUser(t *testing.T, username string) user.User {
	t.Helper()
	u, err := f.users.Create(context.Background(), user.User{
		Username: username, PasswordHash: "x", Role: user.RoleGeneral, IsActive: true,
	})
	require.NoError(t, err)
	return u
}

// worked records a closed day with the given totals.
func (f fixture) worked(t *testing.T, userID, day string, work, overtime int) {
	t.Helper()
	ctx := context.Background()
	d := date(day)
	a, err := f.attendances.UpsertClockIn(ctx, userID, d, d.Add(9*time.Hour))
	require.NoError(t, err)

	out := d.Add(18 * time.Hour)
	brk := 60
	a.ClockOut = &out
	a.WorkMinutes = &work
	a.OvertimeMinutes = &overtime
	a.BreakMinutes = &brk
	require.NoError(t, f.attendances.Update(ctx, a))
}

func TestAggregateMonth(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.createUser(t, "tanaka")

	f.worked(t, u.ID, "2025-03-03", 480, 0)
	f.worked(t, u.ID, "2025-03-04", 540, 60)
	f.worked(t, u.ID, "2025-03-05", 600, 120)
	f.worked(t, u.ID, "2025-04-01", 480, 0)

	// 2025-03-20 is a Thursday.
	_, err := f.holidays.Create(ctx, holiday.CompanyHoliday{Date: date("2025-03-20"), Name: "Vernal Equinox Day"})
	require.NoError(t, err)

	m, err := f.service(f.attendances).AggregateMonth(ctx, u.ID, 2025, time.March)
	require.NoError(t, err)

	assert.Equal(t, 3, m.WorkDays)
	assert.Equal(t, 1620, m.TotalWorkMinutes)
	assert.Equal(t, 180, m.TotalOvertimeMinutes)
	assert.InDelta(t, 9.0, m.AverageWorkHours, 0.001)
	assert.Equal(t, 20, m.BusinessDays)
	assert.Equal(t, 17, m.AbsentDays)
	assert.Equal(t, 1, m.HolidayCount)
}

func TestAggregateMonth_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.createUser(t, "tanaka")
	f.worked(t, u.ID, "2025-03-03", 480, 0)

	svc := f.service(f.attendances)
	first, err := svc.AggregateMonth(ctx, u.ID, 2025, time.March)
	require.NoError(t, err)
	second, err := svc.AggregateMonth(ctx, u.ID, 2025, time.March)
	require.NoError(t, err)

	assert.Equal(t, first.Totals, second.Totals)

	stored, err := f.summaries.GetMonthly(ctx, u.ID, 2025, 3)
	require.NoError(t, err)
	assert.Equal(t, 480, stored.TotalWorkMinutes)
}

func TestAggregateMonth_InvalidMonth(t *testing.T) {
	f := newFixture(t)
	_, err := f.service(f.attendances).AggregateMonth(context.Background(), "u", 2025, time.Month(13))
	assert.ErrorIs(t, err, summary.ErrInvalidPeriod)
}

func TestAggregate_UnknownUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.service(f.attendances)

	_, err := svc.AggregateMonth(ctx, "no-such-user", 2025, time.March)
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	_, err = svc.AggregateWeek(ctx, "no-such-user", date("2025-03-12"))
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	_, err = f.summaries.GetMonthly(ctx, "no-such-user", 2025, 3)
	assert.ErrorIs(t, err, summary.ErrSummaryNotFound)
}

func TestAggregateWeek(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.createUser(t, "tanaka")

	// Week of Monday 2025-03-31 spans two months.
	f.worked(t, u.ID, "2025-03-31", 480, 0)
	f.worked(t, u.ID, "2025-04-02", 540, 60)
	f.worked(t, u.ID, "2025-04-07", 480, 0)

	w, err := f.service(f.attendances).AggregateWeek(ctx, u.ID, date("2025-04-03"))
	require.NoError(t, err)

	assert.Equal(t, 2025, w.ISOYear)
	assert.Equal(t, 14, w.ISOWeek)
	assert.Equal(t, 3, w.Month)
	assert.Equal(t, date("2025-03-31"), w.StartDate)
	assert.Equal(t, date("2025-04-06"), w.EndDate)
	assert.Equal(t, 2, w.WorkDays)
	assert.Equal(t, 1020, w.TotalWorkMinutes)
	assert.Equal(t, 60, w.TotalOvertimeMinutes)
}

func TestRunMonth_CountsFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	good := []user.User{f.createUser(t, "aoki"), f.createUser(t, "ito"), f.createUser(t, "ueda")}
	bad := f.createUser(t, "kato")
	for _, u := range good {
		f.worked(t, u.ID, "2025-03-03", 480, 0)
	}

	svc := f.service(failingAttendances{AttendanceRepository: f.attendances, userID: bad.ID})
	result, err := svc.RunMonth(ctx, 2025, time.March)
	require.NoError(t, err)

	assert.Equal(t, "2025-03", result.Period)
	assert.Equal(t, 3, result.Processed)
	assert.Equal(t, 1, result.Failed)

	for _, u := range good {
		m, err := f.summaries.GetMonthly(ctx, u.ID, 2025, 3)
		require.NoError(t, err)
		assert.Equal(t, 1, m.WorkDays)
	}
	_, err = f.summaries.GetMonthly(ctx, bad.ID, 2025, 3)
	assert.ErrorIs(t, err, summary.ErrSummaryNotFound)
}

func TestRunWeek_Period(t *testing.T) {
	f := newFixture(t)
	f.createUser(t, "tanaka")

	result, err := f.service(f.attendances).RunWeek(context.Background(), date("2025-03-12"))
	require.NoError(t, err)
	assert.Equal(t, "2025-W11", result.Period)
	assert.Equal(t, 1, result.Processed)
}

func TestRunMonth_Cancelled(t *testing.T) {
	f := newFixture(t)
	f.createUser(t, "aoki")
	f.createUser(t, "ito")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := f.service(f.attendances).RunMonth(ctx, 2025, time.March)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, result.Processed)
	assert.Equal(t, 0, result.Failed)
}

func TestGetMonthly_AggregatesOnMiss(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.createUser(t, "tanaka")
	f.worked(t, u.ID, "2025-03-03", 570, 90)

	resp, err := f.service(f.attendances).GetMonthly(ctx, u.ID, summary.PeriodRequest{Year: "2025", Month: "3"})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.WorkDays)
	assert.Equal(t, 9.5, resp.TotalWorkHours)
	assert.Equal(t, 1.5, resp.OvertimeHours)

	_, err = f.summaries.GetMonthly(ctx, u.ID, 2025, 3)
	assert.NoError(t, err)
}

func TestGetMonthly_Validation(t *testing.T) {
	f := newFixture(t)
	_, err := f.service(f.attendances).GetMonthly(context.Background(), "u", summary.PeriodRequest{Year: "25", Month: "0"})
	assert.Error(t, err)
}

func TestListWeekly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.createUser(t, "tanaka")
	f.worked(t, u.ID, "2025-03-03", 480, 0)
	f.worked(t, u.ID, "2025-03-11", 540, 60)

	weeks, err := f.service(f.attendances).ListWeekly(ctx, u.ID, summary.PeriodRequest{Year: "2025", Month: "3"})
	require.NoError(t, err)

	// Mondays of March 2025: 3, 10, 17, 24, 31.
	require.Len(t, weeks, 5)
	assert.Equal(t, "2025-03-03", weeks[0].StartDate)
	assert.Equal(t, 1, weeks[0].WorkDays)
	assert.Equal(t, 9.0, weeks[1].TotalWorkHours)
	assert.Equal(t, 0, weeks[4].WorkDays)
}

func TestExportMonthly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.createUser(t, "tanaka")
	f.worked(t, u.ID, "2025-03-03", 480, 0)

	data, filename, err := f.service(f.attendances).ExportMonthly(ctx, u.ID, summary.PeriodRequest{Year: "2025", Month: "03"})
	require.NoError(t, err)
	assert.Equal(t, "summary_tanaka_2025-03.xlsx", filename)
	assert.True(t, bytes.HasPrefix(data, []byte("PK")))
}
