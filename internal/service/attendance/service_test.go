package attendance

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/location"
	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/kintai-backend-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jst = time.FixedZone("JST", 9*60*60)

type fixture struct {
	svc   *AttendanceServiceImpl
	clock *clock.Fixed
	users user.UserRepository
	store *memory.Store
}

func at(day, hhmm string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", day+" "+hhmm, jst)
	if err != nil {
		panic(err)
	}
	return t
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	clk := clock.NewFixed(at("2025-03-10", "08:00"))
	store := memory.NewStore(clk)
	users := memory.NewUserRepository(store)
	locations := memory.NewLocationRepository(store)

	svc := NewAttendanceService(
		store,
		memory.NewAttendanceRepository(store),
		memory.NewBreakRepository(store),
		users,
		locations,
		clk,
		Config{Location: jst, DefaultWindowMinutes: 480, FlatBreakMinutes: 60},
	)
	return fixture{svc: svc, clock: clk, users: users, store: store}
}

func (f fixture) createUser(t *testing.T, username string, start, end string) user.User {
	t.Helper()
	ctx := context.Background()

	var locationID *string
	if start != "" {
		l, err := memory.NewLocationRepository(f.store).Create(ctx, location.Location{
			Name:      username + " site",
			StartTime: clock.MustTimeOfDay(start),
			EndTime:   clock.MustTimeOfDay(end),
		})
		require.NoError(t, err)
		locationID = &l.ID
	}

	u, err := f.users.Create(ctx, user.User{
		Username:   username,
		Role:       user.RoleGeneral,
		LocationID: locationID,
		IsActive:   true,
	})
	require.NoError(t, err)
	return u
}

func TestClockOut_FlatBreakOvertime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.createUser(t, "tanaka", "09:00", "18:00")

	f.clock.Set(at("2025-03-10", "09:00"))
	_, err := f.svc.ClockIn(ctx, u.ID)
	require.NoError(t, err)

	f.clock.Set(at("2025-03-10", "19:00"))
	resp, err := f.svc.ClockOut(ctx, u.ID)
	require.NoError(t, err)

	assert.Equal(t, "2025-03-10", resp.Date)
	assert.Equal(t, 60, *resp.BreakMinutes)
	assert.Equal(t, 540, *resp.WorkMinutes)
	assert.Equal(t, 60, *resp.OvertimeMinutes)
	assert.False(t, resp.Provisional)
}

func TestClockOut_DefaultWindowWithoutLocation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.createUser(t, "sato", "", "")

	f.clock.Set(at("2025-03-10", "09:00"))
	_, err := f.svc.ClockIn(ctx, u.ID)
	require.NoError(t, err)

	f.clock.Set(at("2025-03-10", "18:30"))
	resp, err := f.svc.ClockOut(ctx, u.ID)
	require.NoError(t, err)

	// 570 elapsed, 60 break: 510 worked against 480 - 60 standard
	assert.Equal(t, 510, *resp.WorkMinutes)
	assert.Equal(t, 90, *resp.OvertimeMinutes)
}

func TestClockOut_OvernightShift(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.createUser(t, "ito", "22:00", "06:00")

	f.clock.Set(at("2025-03-10", "22:00"))
	_, err := f.svc.ClockIn(ctx, u.ID)
	require.NoError(t, err)

	f.clock.Set(at("2025-03-11", "07:00"))
	resp, err := f.svc.ClockOut(ctx, u.ID)
	require.NoError(t, err)

	assert.Equal(t, "2025-03-10", resp.Date)
	assert.Equal(t, 480, *resp.WorkMinutes)
	assert.Equal(t, 60, *resp.OvertimeMinutes)
}

func TestClockIn_Twice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.createUser(t, "kato", "09:00", "18:00")

	_, err := f.svc.ClockIn(ctx, u.ID)
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	_, err = f.svc.ClockIn(ctx, u.ID)
	assert.ErrorIs(t, err, attendance.ErrAlreadyClockedIn)
}

func TestClockIn_Concurrent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.createUser(t, "suzuki", "09:00", "18:00")

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.ClockIn(ctx, u.ID)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if assert.ErrorIs(t, err, attendance.ErrAlreadyClockedIn) {
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, 9, conflicts)
}

func TestClockOut_StateErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.createUser(t, "yamada", "09:00", "18:00")

	_, err := f.svc.ClockOut(ctx, u.ID)
	assert.ErrorIs(t, err, attendance.ErrNotClockedIn)

	f.clock.Set(at("2025-03-10", "09:00"))
	_, err = f.svc.ClockIn(ctx, u.ID)
	require.NoError(t, err)
	f.clock.Set(at("2025-03-10", "18:00"))
	_, err = f.svc.ClockOut(ctx, u.ID)
	require.NoError(t, err)

	_, err = f.svc.ClockOut(ctx, u.ID)
	assert.ErrorIs(t, err, attendance.ErrAlreadyClockedOut)

	_, err = f.svc.StartBreak(ctx, u.ID)
	assert.ErrorIs(t, err, attendance.ErrNotClockedIn)
}

func TestBreaks_RecordedIntervalsReplaceFlatBreak(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.createUser(t, "nakamura", "09:00", "18:00")

	f.clock.Set(at("2025-03-10", "09:00"))
	_, err := f.svc.ClockIn(ctx, u.ID)
	require.NoError(t, err)

	_, err = f.svc.EndBreak(ctx, u.ID)
	assert.ErrorIs(t, err, attendance.ErrNoOpenBreak)

	f.clock.Set(at("2025-03-10", "12:00"))
	_, err = f.svc.StartBreak(ctx, u.ID)
	require.NoError(t, err)

	_, err = f.svc.StartBreak(ctx, u.ID)
	assert.ErrorIs(t, err, attendance.ErrBreakAlreadyOpen)

	today, err := f.svc.Today(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusOnBreak, today.Status)
	require.NotNil(t, today.OpenBreak)

	f.clock.Set(at("2025-03-10", "12:45"))
	b, err := f.svc.EndBreak(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 45, *b.DurationMinutes)

	f.clock.Set(at("2025-03-10", "18:00"))
	resp, err := f.svc.ClockOut(ctx, u.ID)
	require.NoError(t, err)

	assert.Equal(t, 45, *resp.BreakMinutes)
	assert.Equal(t, 495, *resp.WorkMinutes)
	assert.Equal(t, 0, *resp.OvertimeMinutes)
}

func TestClockOut_ClosesOpenBreak(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.createUser(t, "kobayashi", "09:00", "18:00")

	f.clock.Set(at("2025-03-10", "09:00"))
	_, err := f.svc.ClockIn(ctx, u.ID)
	require.NoError(t, err)

	f.clock.Set(at("2025-03-10", "17:30"))
	_, err = f.svc.StartBreak(ctx, u.ID)
	require.NoError(t, err)

	f.clock.Set(at("2025-03-10", "18:00"))
	resp, err := f.svc.ClockOut(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, *resp.BreakMinutes)

	breaks, err := f.svc.ListBreaks(ctx, attendance.Viewer{UserID: u.ID}, resp.ID)
	require.NoError(t, err)
	require.Len(t, breaks, 1)
	assert.NotNil(t, breaks[0].EndTime)
}

func TestToday_Status(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.createUser(t, "watanabe", "09:00", "18:00")

	today, err := f.svc.Today(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusNotStarted, today.Status)

	f.clock.Set(at("2025-03-10", "09:00"))
	_, err = f.svc.ClockIn(ctx, u.ID)
	require.NoError(t, err)

	f.clock.Set(at("2025-03-10", "11:00"))
	today, err = f.svc.Today(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusWorking, today.Status)
	require.NotNil(t, today.Attendance)
	assert.True(t, today.Attendance.Provisional)
	assert.Equal(t, 60, *today.Attendance.WorkMinutes)

	working, err := f.svc.StillWorking(ctx)
	require.NoError(t, err)
	require.Len(t, working, 1)
	assert.Equal(t, "watanabe", working[0].Username)

	f.clock.Set(at("2025-03-10", "18:00"))
	_, err = f.svc.ClockOut(ctx, u.ID)
	require.NoError(t, err)

	today, err = f.svc.Today(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusFinished, today.Status)
}

func TestGetByID_OtherUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "owner", "09:00", "18:00")
	other := f.createUser(t, "other", "09:00", "18:00")

	resp, err := f.svc.ClockIn(ctx, owner.ID)
	require.NoError(t, err)

	_, err = f.svc.GetByID(ctx, attendance.Viewer{UserID: other.ID}, resp.ID)
	assert.ErrorIs(t, err, attendance.ErrUnauthorized)

	_, err = f.svc.GetByID(ctx, attendance.Viewer{UserID: other.ID, IsAdmin: true}, resp.ID)
	assert.NoError(t, err)
}

func TestRecompute_NilTotalsWithoutPair(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.createUser(t, "hayashi", "09:00", "18:00")

	f.clock.Set(at("2025-03-10", "09:00"))
	resp, err := f.svc.ClockIn(ctx, u.ID)
	require.NoError(t, err)

	att, err := f.svc.AttendanceRepository.GetByID(ctx, resp.ID)
	require.NoError(t, err)
	att.ClockIn = nil
	require.NoError(t, f.svc.Recompute(ctx, &att))

	stored, err := f.svc.AttendanceRepository.GetByID(ctx, resp.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.WorkMinutes)
	assert.Nil(t, stored.OvertimeMinutes)
}

func TestListRange_Validation(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ListRange(context.Background(), "u1", attendance.RangeRequest{From: "2025-03-10", To: "2025-03-01"})
	assert.Error(t, err)
}

func TestExport_Workbook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.createUser(t, "export", "09:00", "18:00")

	f.clock.Set(at("2025-03-10", "09:00"))
	_, err := f.svc.ClockIn(ctx, u.ID)
	require.NoError(t, err)
	f.clock.Set(at("2025-03-10", "18:00"))
	_, err = f.svc.ClockOut(ctx, u.ID)
	require.NoError(t, err)

	data, name, err := f.svc.Export(ctx, attendance.ExportRequest{
		RangeRequest: attendance.RangeRequest{From: "2025-03-01", To: "2025-03-31"},
	})
	require.NoError(t, err)
	assert.Equal(t, "attendance_20250301_20250331.xlsx", name)
	assert.True(t, bytes.HasPrefix(data, []byte("PK")))
}

func TestClockOut_ForgottenShiftDoesNotAbsorbSecondClockOut(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.createUser(t, "kobayashi", "09:00", "18:00")

	f.clock.Set(at("2025-03-10", "09:00"))
	forgotten, err := f.svc.ClockIn(ctx, u.ID)
	require.NoError(t, err)

	f.clock.Set(at("2025-03-11", "09:00"))
	_, err = f.svc.ClockIn(ctx, u.ID)
	require.NoError(t, err)

	f.clock.Set(at("2025-03-11", "18:00"))
	resp, err := f.svc.ClockOut(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-11", resp.Date)
	assert.Equal(t, 480, *resp.WorkMinutes)

	f.clock.Set(at("2025-03-11", "18:05"))
	_, err = f.svc.ClockOut(ctx, u.ID)
	assert.ErrorIs(t, err, attendance.ErrAlreadyClockedOut)

	_, err = f.svc.StartBreak(ctx, u.ID)
	assert.ErrorIs(t, err, attendance.ErrNotClockedIn)

	stale, err := f.svc.AttendanceRepository.GetByID(ctx, forgotten.ID)
	require.NoError(t, err)
	assert.Nil(t, stale.ClockOut)
}

func TestBreaks_TodayShiftTakesPrecedence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.createUser(t, "nakamura", "09:00", "18:00")

	f.clock.Set(at("2025-03-10", "09:00"))
	_, err := f.svc.ClockIn(ctx, u.ID)
	require.NoError(t, err)

	f.clock.Set(at("2025-03-11", "09:00"))
	current, err := f.svc.ClockIn(ctx, u.ID)
	require.NoError(t, err)

	f.clock.Set(at("2025-03-11", "12:00"))
	b, err := f.svc.StartBreak(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, current.ID, b.AttendanceID)
}

func TestRecalculate_MatchesClockOut(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.createUser(t, "hayashi", "09:00", "18:00")

	f.clock.Set(at("2025-03-10", "08:40"))
	_, err := f.svc.ClockIn(ctx, u.ID)
	require.NoError(t, err)
	f.clock.Set(at("2025-03-10", "12:10"))
	_, err = f.svc.StartBreak(ctx, u.ID)
	require.NoError(t, err)
	f.clock.Set(at("2025-03-10", "12:55"))
	_, err = f.svc.EndBreak(ctx, u.ID)
	require.NoError(t, err)
	f.clock.Set(at("2025-03-10", "20:17"))
	resp, err := f.svc.ClockOut(ctx, u.ID)
	require.NoError(t, err)

	stored, err := f.svc.AttendanceRepository.GetByID(ctx, resp.ID)
	require.NoError(t, err)

	f.clock.Set(at("2025-03-12", "10:00"))
	fresh, err := f.svc.Recalculate(ctx, stored)
	require.NoError(t, err)

	assert.Equal(t, *resp.BreakMinutes, *fresh.BreakMinutes)
	assert.Equal(t, *resp.WorkMinutes, *fresh.WorkMinutes)
	assert.Equal(t, *resp.OvertimeMinutes, *fresh.OvertimeMinutes)
}
