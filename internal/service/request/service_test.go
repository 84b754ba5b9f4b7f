package request

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/location"
	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/request"
	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/kintai-backend-go/internal/repository/memory"
	attendancesvc "github.com/cmlabs-hris/kintai-backend-go/internal/service/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jst = time.FixedZone("JST", 9*60*60)

func at(day, hhmm string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", day+" "+hhmm, jst)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr(s string) *string { return &s }

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n notification.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
}

func (r *recordingNotifier) all() []notification.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notification.Notification(nil), r.sent...)
}

type fixture struct {
	svc         request.RequestService
	clock       *clock.Fixed
	clockEngine *attendancesvc.AttendanceServiceImpl
	attendances attendance.AttendanceRepository
	holidays    holiday.HolidayRepository
	notifier    *recordingNotifier
	employee    user.User
	admin       user.User
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()

	clk := clock.NewFixed(at("2025-03-12", "10:00"))
	store := memory.NewStore(clk)
	users := memory.NewUserRepository(store)
	locations := memory.NewLocationRepository(store)
	attendances := memory.NewAttendanceRepository(store)
	companyHolidays := memory.NewHolidayRepository(store)

	site, err := locations.Create(ctx, location.Location{
		Name:      "Head Office",
		StartTime: clock.MustTimeOfDay("09:00"),
		EndTime:   clock.MustTimeOfDay("18:00"),
	})
	require.NoError(t, err)

	employee, err := users.Create(ctx, user.User{Username: "tanaka", Role: user.RoleGeneral, LocationID: &site.ID, IsActive: true})
	require.NoError(t, err)
	admin, err := users.Create(ctx, user.User{Username: "admin", Role: user.RoleAdmin, IsActive: true})
	require.NoError(t, err)

	engine := attendancesvc.NewAttendanceService(
		store, attendances, memory.NewBreakRepository(store), users, locations, clk,
		attendancesvc.Config{Location: jst, DefaultWindowMinutes: 480, FlatBreakMinutes: 60},
	)

	notifier := &recordingNotifier{}
	svc := NewRequestService(store, Repositories{
		Corrections:     memory.NewCorrectionRepository(store),
		Overtimes:       memory.NewOvertimeRepository(store),
		Holidays:        memory.NewHolidayRequestRepository(store),
		Schedules:       memory.NewScheduleRepository(store),
		Attendances:     attendances,
		Users:           users,
		CompanyHolidays: companyHolidays,
	}, engine, request.AdminAuthorizer{}, notifier, clk, jst)

	return fixture{
		svc:         svc,
		clock:       clk,
		clockEngine: engine,
		attendances: attendances,
		holidays:    companyHolidays,
		notifier:    notifier,
		employee:    employee,
		admin:       admin,
	}
}

// workDay records a closed shift and moves the clock back to the present.
func (f fixture) workDay(t *testing.T, day, in, out string) {
	t.Helper()
	ctx := context.Background()
	present := f.clock.Now()

	f.clock.Set(at(day, in))
	_, err := f.clockEngine.ClockIn(ctx, f.employee.ID)
	require.NoError(t, err)
	f.clock.Set(at(day, out))
	_, err = f.clockEngine.ClockOut(ctx, f.employee.ID)
	require.NoError(t, err)

	f.clock.Set(present)
}

func (f fixture) submitOvertime(t *testing.T) string {
	t.Helper()
	resp, err := f.svc.SubmitOvertime(context.Background(), f.employee.ID, request.SubmitOvertimeRequest{
		TargetDate: "2025-03-10",
		Minutes:    60,
		Reason:     "release night",
	})
	require.NoError(t, err)
	return resp.ID
}

func TestApprove_Once(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.submitOvertime(t)

	resp, err := f.svc.Approve(ctx, request.KindOvertime, id, f.admin.ID)
	require.NoError(t, err)
	assert.Equal(t, request.StatusApproved, resp.Status)
	require.NotNil(t, resp.ApproverID)
	assert.Equal(t, f.admin.ID, *resp.ApproverID)

	_, err = f.svc.Approve(ctx, request.KindOvertime, id, f.admin.ID)
	assert.ErrorIs(t, err, request.ErrAlreadyDecided)

	_, err = f.svc.Reject(ctx, request.KindOvertime, id, f.admin.ID)
	assert.ErrorIs(t, err, request.ErrAlreadyDecided)

	sent := f.notifier.all()
	require.Len(t, sent, 1)
	assert.Equal(t, notification.TypeRequestApproved, sent[0].Type)
	assert.Equal(t, f.employee.ID, sent[0].RecipientID)
	assert.Equal(t, "2025-03-10", sent[0].Data["period"])
}

func TestApprove_ConcurrentDecisions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.submitOvertime(t)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func(approve bool) {
			defer wg.Done()
			var err error
			if approve {
				_, err = f.svc.Approve(ctx, request.KindOvertime, id, f.admin.ID)
			} else {
				_, err = f.svc.Reject(ctx, request.KindOvertime, id, f.admin.ID)
			}
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}(i%2 == 0)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
}

func TestReject_RequiresApprover(t *testing.T) {
	f := newFixture(t)
	id := f.submitOvertime(t)

	_, err := f.svc.Reject(context.Background(), request.KindOvertime, id, f.employee.ID)
	assert.ErrorIs(t, err, request.ErrNotAuthorized)
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.submitOvertime(t)

	_, err := f.svc.Cancel(ctx, request.KindOvertime, id, f.admin.ID)
	assert.ErrorIs(t, err, request.ErrNotRequester)

	resp, err := f.svc.Cancel(ctx, request.KindOvertime, id, f.employee.ID)
	require.NoError(t, err)
	assert.Equal(t, request.StatusRejected, resp.Status)
	require.NotNil(t, resp.DecidedBy)
	assert.Equal(t, string(request.DecidedByRequester), *resp.DecidedBy)
	require.NotNil(t, resp.Outcome)
	assert.Equal(t, string(request.OutcomeCancelled), *resp.Outcome)
	assert.Nil(t, resp.ApproverID)

	assert.Empty(t, f.notifier.all())
}

func TestDecide_UnknownActorAndKind(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.submitOvertime(t)

	_, err := f.svc.Approve(ctx, request.KindOvertime, id, "ghost")
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	_, err = f.svc.Approve(ctx, request.Kind("leave"), id, f.admin.ID)
	assert.ErrorIs(t, err, request.ErrUnknownKind)

	_, err = f.svc.Approve(ctx, request.KindHoliday, id, f.admin.ID)
	assert.ErrorIs(t, err, request.ErrRequestNotFound)
}

func TestApproveCorrection_RecomputesRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.workDay(t, "2025-03-10", "09:00", "18:00")

	submitted, err := f.svc.SubmitCorrection(ctx, f.employee.ID, request.SubmitCorrectionRequest{
		TargetDate:        "2025-03-10",
		RequestedClockIn:  ptr("08:00"),
		RequestedClockOut: ptr("19:00"),
		Reason:            "badge reader was down",
	})
	require.NoError(t, err)
	require.NotNil(t, submitted.CurrentClockIn)

	_, err = f.svc.Approve(ctx, request.KindCorrection, submitted.ID, f.admin.ID)
	require.NoError(t, err)

	att, err := f.attendances.GetByUserAndDate(ctx, f.employee.ID, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NotNil(t, att)
	assert.True(t, att.ClockIn.Equal(at("2025-03-10", "08:00")))
	assert.True(t, att.ClockOut.Equal(at("2025-03-10", "19:00")))
	assert.Equal(t, 600, *att.WorkMinutes)
	assert.Equal(t, 120, *att.OvertimeMinutes)
}

func TestApproveCorrection_NullClockIn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.workDay(t, "2025-03-10", "09:00", "18:00")

	submitted, err := f.svc.SubmitCorrection(ctx, f.employee.ID, request.SubmitCorrectionRequest{
		TargetDate:        "2025-03-10",
		RequestedClockOut: ptr("17:00"),
		Reason:            "left early",
	})
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, request.KindCorrection, submitted.ID, f.admin.ID)
	require.NoError(t, err)

	att, err := f.attendances.GetByUserAndDate(ctx, f.employee.ID, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Nil(t, att.ClockIn)
	require.NotNil(t, att.ClockOut)
	assert.Nil(t, att.BreakMinutes)
	assert.Nil(t, att.WorkMinutes)
	assert.Nil(t, att.OvertimeMinutes)
}

func TestApproveCorrection_MissingRecordRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	submitted, err := f.svc.SubmitCorrection(ctx, f.employee.ID, request.SubmitCorrectionRequest{
		TargetDate:       "2025-03-11",
		RequestedClockIn: ptr("09:00"),
		Reason:           "forgot to clock in",
	})
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, request.KindCorrection, submitted.ID, f.admin.ID)
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)

	pending := request.StatusPending
	items, err := f.svc.ListMine(ctx, f.employee.ID, request.ListRequest{Kind: "correction", Status: string(pending)})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, request.StatusPending, items[0].Status)
}

func TestSubmitCorrection_FutureDate(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.SubmitCorrection(context.Background(), f.employee.ID, request.SubmitCorrectionRequest{
		TargetDate:       "2025-03-13",
		RequestedClockIn: ptr("09:00"),
		Reason:           "tomorrow",
	})
	assert.ErrorIs(t, err, request.ErrFutureDate)
}

func TestScheduleMonth_ReplaceAndDecide(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SubmitScheduleMonth(ctx, f.employee.ID, request.SubmitScheduleMonthRequest{
		Month: "2025-04",
		Days: []request.ScheduleDayInput{
			{Date: "2025-04-01", WorkType: "work"},
			{Date: "2025-04-02", WorkType: "remote"},
			{Date: "2025-04-03", WorkType: "holiday"},
		},
	})
	require.NoError(t, err)

	days, err := f.svc.SubmitScheduleMonth(ctx, f.employee.ID, request.SubmitScheduleMonthRequest{
		Month: "2025-04",
		Days: []request.ScheduleDayInput{
			{Date: "2025-04-07", WorkType: "WORK"},
			{Date: "2025-04-08", WorkType: "WORK"},
		},
	})
	require.NoError(t, err)
	assert.Len(t, days, 2)

	mine, err := f.svc.ListMine(ctx, f.employee.ID, request.ListRequest{Kind: "schedule"})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	_, err = f.svc.Reject(ctx, request.KindSchedule, days[0].ID, f.admin.ID)
	require.NoError(t, err)

	grouped, err := f.svc.GroupedSchedules(ctx, request.MonthRequest{Month: "2025-04"})
	require.NoError(t, err)
	require.Len(t, grouped, 1)
	assert.Equal(t, request.GroupStatusMixed, grouped[0].Status)
	assert.Equal(t, "tanaka", grouped[0].Username)

	bulk, err := f.svc.DecideScheduleMonth(ctx, request.MonthRequest{UserID: f.employee.ID, Month: "2025-04"}, f.admin.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 1, bulk.Count)
	assert.Equal(t, "approved", bulk.Outcome)

	bulk, err = f.svc.DecideScheduleMonth(ctx, request.MonthRequest{UserID: f.employee.ID, Month: "2025-04"}, f.admin.ID, false)
	require.NoError(t, err)
	assert.Zero(t, bulk.Count)

	_, err = f.svc.DecideScheduleMonth(ctx, request.MonthRequest{UserID: f.employee.ID, Month: "2025-04"}, f.employee.ID, true)
	assert.ErrorIs(t, err, request.ErrNotAuthorized)
}

func TestListAll_FiltersAndStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.submitOvertime(t)
	f.clock.Advance(time.Minute)
	_, err := f.svc.SubmitHoliday(ctx, f.employee.ID, request.SubmitHolidayRequest{
		StartDate:   "2025-03-20",
		EndDate:     ptr("2025-03-21"),
		HolidayType: "paid",
	})
	require.NoError(t, err)

	all, err := f.svc.ListAll(ctx, request.ListRequest{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, request.KindHoliday, all[0].Kind)
	assert.Equal(t, "tanaka", all[0].Username)

	ranged, err := f.svc.ListAll(ctx, request.ListRequest{From: "2025-03-21", To: "2025-03-31"})
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, request.KindHoliday, ranged[0].Kind)

	stats, err := f.svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalPending)
	assert.Equal(t, 1, stats.Pending[request.KindOvertime])
	assert.Equal(t, 0, stats.Pending[request.KindCorrection])
}

func TestCalendar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	day, err := f.svc.SubmitScheduleDay(ctx, f.employee.ID, request.SubmitScheduleDayRequest{
		ScheduleDayInput: request.ScheduleDayInput{Date: "2025-03-14", WorkType: "remote"},
	})
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, request.KindSchedule, day.ID, f.admin.ID)
	require.NoError(t, err)

	_, err = f.holidays.Create(ctx, holiday.CompanyHoliday{Date: time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC), Name: "Vernal Equinox Day"})
	require.NoError(t, err)

	data, err := f.svc.Calendar(ctx, f.employee.ID, request.MonthRequest{Month: "2025-03"})
	require.NoError(t, err)

	ics := string(data)
	assert.True(t, strings.HasPrefix(ics, "BEGIN:VCALENDAR"))
	assert.Contains(t, ics, "Remote work")
	assert.Contains(t, ics, "Vernal Equinox Day")
}
