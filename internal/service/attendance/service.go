package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/location"
	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/database"
)

type AttendanceServiceImpl struct {
	tx database.Transactor
	attendance.AttendanceRepository
	attendance.BreakRepository
	users     user.UserRepository
	locations location.LocationRepository
	calc      attendance.Calculator
	clock     clock.Clock
	loc       *time.Location
}

// today returns now and the business date it falls on.
func (a *AttendanceServiceImpl) today() (time.Time, time.Time) {
	now := a.clock.Now().UTC().Truncate(time.Second)
	return now, clock.Today(now, a.loc)
}

func (a *AttendanceServiceImpl) activeUser(ctx context.Context, userID string) (user.User, error) {
	u, err := a.users.GetByID(ctx, userID)
	if err != nil {
		return user.User{}, err
	}
	if !u.IsActive {
		return user.User{}, user.ErrUserInactive
	}
	return u, nil
}

// workLocation returns the user's assigned location, or nil when the default
// window applies.
func (a *AttendanceServiceImpl) workLocation(ctx context.Context, userID string) (*location.Location, error) {
	u, err := a.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if u.LocationID == nil {
		return nil, nil
	}
	l, err := a.locations.GetByID(ctx, *u.LocationID)
	if err != nil {
		if errors.Is(err, location.ErrLocationNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get location: %w", err)
	}
	return &l, nil
}

// openShift locks the user's running shift. Today's record wins when it has
// a clock-in; a shift started yesterday is only considered when today has not
// started. A closed shift today yields ErrAlreadyClockedOut.
func (a *AttendanceServiceImpl) openShift(ctx context.Context, userID string, today time.Time) (*attendance.Attendance, error) {
	current, err := a.AttendanceRepository.GetByUserAndDate(ctx, userID, today)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance: %w", err)
	}

	since := today.AddDate(0, 0, -1)
	if current != nil && current.ClockIn != nil {
		if current.ClockOut != nil {
			return nil, attendance.ErrAlreadyClockedOut
		}
		since = today
	}

	att, err := a.AttendanceRepository.LockOpen(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get open attendance: %w", err)
	}
	if att == nil {
		return nil, attendance.ErrNotClockedIn
	}
	return att, nil
}

// shiftForBreak resolves the running shift for break operations, where an
// ended shift counts as not clocked in.
func (a *AttendanceServiceImpl) shiftForBreak(ctx context.Context, userID string, today time.Time) (*attendance.Attendance, error) {
	att, err := a.openShift(ctx, userID, today)
	if errors.Is(err, attendance.ErrAlreadyClockedOut) {
		return nil, attendance.ErrNotClockedIn
	}
	return att, err
}

// ClockIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ClockIn(ctx context.Context, userID string) (attendance.AttendanceResponse, error) {
	if _, err := a.activeUser(ctx, userID); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now, today := a.today()
	att, err := a.AttendanceRepository.UpsertClockIn(ctx, userID, today, now)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	slog.Info("Clocked in", "user_id", userID, "attendance_id", att.ID)
	return a.toResponse(att, false), nil
}

// ClockOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ClockOut(ctx context.Context, userID string) (attendance.AttendanceResponse, error) {
	if _, err := a.activeUser(ctx, userID); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	var result attendance.Attendance
	err := a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		now, today := a.today()

		att, err := a.openShift(ctx, userID, today)
		if err != nil {
			return err
		}
		if !now.After(*att.ClockIn) {
			return attendance.ErrInvalidClockOrder
		}

		open, err := a.BreakRepository.GetOpen(ctx, att.ID)
		if err != nil {
			return fmt.Errorf("failed to get open break: %w", err)
		}
		if open != nil {
			if err := a.BreakRepository.Close(ctx, open.ID, now, attendance.ElapsedMinutes(open.StartTime, now)); err != nil {
				return fmt.Errorf("failed to close break: %w", err)
			}
		}

		att.ClockOut = &now
		if err := a.Recompute(ctx, att); err != nil {
			return err
		}
		result = *att
		return nil
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	slog.Info("Clocked out", "user_id", userID, "attendance_id", result.ID, "work_minutes", deref(result.WorkMinutes))
	return a.toResponse(result, false), nil
}

// StartBreak implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) StartBreak(ctx context.Context, userID string) (attendance.BreakResponse, error) {
	if _, err := a.activeUser(ctx, userID); err != nil {
		return attendance.BreakResponse{}, err
	}

	var created attendance.Break
	err := a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		now, today := a.today()

		att, err := a.shiftForBreak(ctx, userID, today)
		if err != nil {
			return err
		}

		created, err = a.BreakRepository.Create(ctx, attendance.Break{AttendanceID: att.ID, StartTime: now})
		return err
	})
	if err != nil {
		return attendance.BreakResponse{}, err
	}
	return a.toBreakResponse(created), nil
}

// EndBreak implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) EndBreak(ctx context.Context, userID string) (attendance.BreakResponse, error) {
	if _, err := a.activeUser(ctx, userID); err != nil {
		return attendance.BreakResponse{}, err
	}

	var closed attendance.Break
	err := a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		now, today := a.today()

		att, err := a.shiftForBreak(ctx, userID, today)
		if err != nil {
			return err
		}

		open, err := a.BreakRepository.GetOpen(ctx, att.ID)
		if err != nil {
			return fmt.Errorf("failed to get open break: %w", err)
		}
		if open == nil {
			return attendance.ErrNoOpenBreak
		}

		duration := attendance.ElapsedMinutes(open.StartTime, now)
		if err := a.BreakRepository.Close(ctx, open.ID, now, duration); err != nil {
			return err
		}
		closed = *open
		closed.EndTime = &now
		closed.DurationMinutes = &duration
		return nil
	})
	if err != nil {
		return attendance.BreakResponse{}, err
	}
	return a.toBreakResponse(closed), nil
}

// totals derives the minutes of att measured up to end.
func (a *AttendanceServiceImpl) totals(ctx context.Context, att attendance.Attendance, end time.Time) (attendance.Totals, error) {
	breaks, err := a.BreakRepository.ListByAttendance(ctx, att.ID)
	if err != nil {
		return attendance.Totals{}, fmt.Errorf("failed to list breaks: %w", err)
	}
	loc, err := a.workLocation(ctx, att.UserID)
	if err != nil {
		return attendance.Totals{}, err
	}
	return a.calc.Compute(*att.ClockIn, end, breaks, loc), nil
}

// Recompute derives the totals of a record from its clock readings and
// persists it.
func (a *AttendanceServiceImpl) Recompute(ctx context.Context, att *attendance.Attendance) error {
	if att.IsClosed() {
		if !att.ClockOut.After(*att.ClockIn) {
			return attendance.ErrInvalidClockOrder
		}
		t, err := a.totals(ctx, *att, *att.ClockOut)
		if err != nil {
			return err
		}
		t.Apply(att)
	} else {
		att.BreakMinutes, att.WorkMinutes, att.OvertimeMinutes = nil, nil, nil
	}

	if err := a.AttendanceRepository.Update(ctx, *att); err != nil {
		return fmt.Errorf("failed to update attendance: %w", err)
	}
	return nil
}

// Recalculate implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) Recalculate(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	if att.ClockIn == nil {
		att.BreakMinutes, att.WorkMinutes, att.OvertimeMinutes = nil, nil, nil
		return att, nil
	}

	end := a.clock.Now().UTC()
	if att.ClockOut != nil {
		end = *att.ClockOut
	}
	t, err := a.totals(ctx, att, end)
	if err != nil {
		return attendance.Attendance{}, err
	}
	t.Apply(&att)
	return att, nil
}

// present recalculates open shifts before they are shown.
func (a *AttendanceServiceImpl) present(ctx context.Context, att attendance.Attendance) (attendance.AttendanceResponse, error) {
	if !att.IsOpen() {
		return a.toResponse(att, false), nil
	}
	fresh, err := a.Recalculate(ctx, att)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	return a.toResponse(fresh, true), nil
}

// Today implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) Today(ctx context.Context, userID string) (attendance.TodayResponse, error) {
	_, today := a.today()

	att, err := a.AttendanceRepository.GetByUserAndDate(ctx, userID, today)
	if err != nil {
		return attendance.TodayResponse{}, fmt.Errorf("failed to get attendance: %w", err)
	}
	if att == nil || att.ClockIn == nil {
		yesterday, err := a.AttendanceRepository.GetByUserAndDate(ctx, userID, today.AddDate(0, 0, -1))
		if err != nil {
			return attendance.TodayResponse{}, fmt.Errorf("failed to get attendance: %w", err)
		}
		if yesterday != nil && yesterday.IsOpen() {
			att = yesterday
		}
	}
	if att == nil || att.ClockIn == nil {
		return attendance.TodayResponse{Status: attendance.StatusNotStarted}, nil
	}

	resp, err := a.present(ctx, *att)
	if err != nil {
		return attendance.TodayResponse{}, err
	}
	out := attendance.TodayResponse{Status: attendance.StatusFinished, Attendance: &resp}
	if att.IsOpen() {
		out.Status = attendance.StatusWorking
		open, err := a.BreakRepository.GetOpen(ctx, att.ID)
		if err != nil {
			return attendance.TodayResponse{}, fmt.Errorf("failed to get open break: %w", err)
		}
		if open != nil {
			b := a.toBreakResponse(*open)
			out.Status = attendance.StatusOnBreak
			out.OpenBreak = &b
		}
	}
	return out, nil
}

// ListRange implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListRange(ctx context.Context, userID string, req attendance.RangeRequest) ([]attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	records, err := a.AttendanceRepository.ListByUserAndRange(ctx, userID, req.FromDate, req.ToDate)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}

	out := make([]attendance.AttendanceResponse, 0, len(records))
	for _, att := range records {
		resp, err := a.present(ctx, att)
		if err != nil {
			return nil, err
		}
		out = append(out, resp)
	}
	return out, nil
}

func (a *AttendanceServiceImpl) visible(ctx context.Context, viewer attendance.Viewer, id string) (attendance.Attendance, error) {
	att, err := a.AttendanceRepository.GetByID(ctx, id)
	if err != nil {
		return attendance.Attendance{}, err
	}
	if !viewer.IsAdmin && att.UserID != viewer.UserID {
		return attendance.Attendance{}, attendance.ErrUnauthorized
	}
	return att, nil
}

// GetByID implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetByID(ctx context.Context, viewer attendance.Viewer, id string) (attendance.AttendanceResponse, error) {
	att, err := a.visible(ctx, viewer, id)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	return a.present(ctx, att)
}

// ListBreaks implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListBreaks(ctx context.Context, viewer attendance.Viewer, attendanceID string) ([]attendance.BreakResponse, error) {
	if _, err := a.visible(ctx, viewer, attendanceID); err != nil {
		return nil, err
	}

	breaks, err := a.BreakRepository.ListByAttendance(ctx, attendanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list breaks: %w", err)
	}
	out := make([]attendance.BreakResponse, 0, len(breaks))
	for _, b := range breaks {
		out = append(out, a.toBreakResponse(b))
	}
	return out, nil
}

// StillWorking implements attendance.AttendanceService. Overnight shifts
// started yesterday are included.
func (a *AttendanceServiceImpl) StillWorking(ctx context.Context) ([]attendance.StillWorkingResponse, error) {
	_, today := a.today()

	var records []attendance.Attendance
	for _, day := range []time.Time{today.AddDate(0, 0, -1), today} {
		open, err := a.AttendanceRepository.ListOpenByDate(ctx, day)
		if err != nil {
			return nil, fmt.Errorf("failed to list open attendance: %w", err)
		}
		records = append(records, open...)
	}

	out := make([]attendance.StillWorkingResponse, 0, len(records))
	for _, att := range records {
		resp, err := a.present(ctx, att)
		if err != nil {
			return nil, err
		}
		item := attendance.StillWorkingResponse{AttendanceResponse: resp}

		u, err := a.users.GetByID(ctx, att.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
		item.Username = u.Username

		open, err := a.BreakRepository.GetOpen(ctx, att.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get open break: %w", err)
		}
		item.OnBreak = open != nil

		out = append(out, item)
	}
	return out, nil
}

func (a *AttendanceServiceImpl) toResponse(att attendance.Attendance, provisional bool) attendance.AttendanceResponse {
	return attendance.AttendanceResponse{
		ID:              att.ID,
		UserID:          att.UserID,
		Date:            att.Date.Format("2006-01-02"),
		ClockIn:         a.formatTime(att.ClockIn),
		ClockOut:        a.formatTime(att.ClockOut),
		BreakMinutes:    att.BreakMinutes,
		WorkMinutes:     att.WorkMinutes,
		OvertimeMinutes: att.OvertimeMinutes,
		Provisional:     provisional,
		UpdatedAt:       att.UpdatedAt.In(a.loc).Format(time.RFC3339),
	}
}

func (a *AttendanceServiceImpl) toBreakResponse(b attendance.Break) attendance.BreakResponse {
	return attendance.BreakResponse{
		ID:              b.ID,
		AttendanceID:    b.AttendanceID,
		StartTime:       b.StartTime.In(a.loc).Format(time.RFC3339),
		EndTime:         a.formatTime(b.EndTime),
		DurationMinutes: b.DurationMinutes,
	}
}

func (a *AttendanceServiceImpl) formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.In(a.loc).Format(time.RFC3339)
	return &s
}

func deref(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}

type Config struct {
	Location             *time.Location
	DefaultWindowMinutes int
	FlatBreakMinutes     int
}

// NewAttendanceService wires the clock engine. The concrete type is returned
// so callers can also use it as an attendance.Recomputer.
func NewAttendanceService(
	tx database.Transactor,
	attendanceRepo attendance.AttendanceRepository,
	breakRepo attendance.BreakRepository,
	userRepo user.UserRepository,
	locationRepo location.LocationRepository,
	clk clock.Clock,
	cfg Config,
) *AttendanceServiceImpl {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &AttendanceServiceImpl{
		tx:                   tx,
		AttendanceRepository: attendanceRepo,
		BreakRepository:      breakRepo,
		users:                userRepo,
		locations:            locationRepo,
		calc:                 attendance.NewCalculator(cfg.DefaultWindowMinutes, cfg.FlatBreakMinutes),
		clock:                clk,
		loc:                  loc,
	}
}
