package request

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/request"
	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/database"
)

type RequestServiceImpl struct {
	tx              database.Transactor
	corrections     request.CorrectionRepository
	overtimes       request.OvertimeRepository
	holidays        request.HolidayRepository
	schedules       request.ScheduleRepository
	attendances     attendance.AttendanceRepository
	recomputer      attendance.Recomputer
	users           user.UserRepository
	companyHolidays holiday.HolidayRepository
	authorizer      request.Authorizer
	notifier        notification.Notifier
	clock           clock.Clock
	loc             *time.Location
}

// Repositories groups the stores the workflow reads and writes.
type Repositories struct {
	Corrections     request.CorrectionRepository
	Overtimes       request.OvertimeRepository
	Holidays        request.HolidayRepository
	Schedules       request.ScheduleRepository
	Attendances     attendance.AttendanceRepository
	Users           user.UserRepository
	CompanyHolidays holiday.HolidayRepository
}

// NewRequestService builds the approval workflow. notifier may be nil.
func NewRequestService(
	tx database.Transactor,
	repos Repositories,
	recomputer attendance.Recomputer,
	authorizer request.Authorizer,
	notifier notification.Notifier,
	clk clock.Clock,
	loc *time.Location,
) request.RequestService {
	if authorizer == nil {
		authorizer = request.AdminAuthorizer{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &RequestServiceImpl{
		tx:              tx,
		corrections:     repos.Corrections,
		overtimes:       repos.Overtimes,
		holidays:        repos.Holidays,
		schedules:       repos.Schedules,
		attendances:     repos.Attendances,
		recomputer:      recomputer,
		users:           repos.Users,
		companyHolidays: repos.CompanyHolidays,
		authorizer:      authorizer,
		notifier:        notifier,
		clock:           clk,
		loc:             loc,
	}
}

func (s *RequestServiceImpl) now() time.Time {
	return s.clock.Now().UTC()
}

// actor resolves an active user. Unknown and inactive users are reported
// alike.
func (s *RequestServiceImpl) actor(ctx context.Context, userID string) (user.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	if !u.IsActive {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

// SubmitCorrection implements request.RequestService.
func (s *RequestServiceImpl) SubmitCorrection(ctx context.Context, userID string, req request.SubmitCorrectionRequest) (request.CorrectionResponse, error) {
	if err := req.Validate(); err != nil {
		return request.CorrectionResponse{}, err
	}
	if _, err := s.actor(ctx, userID); err != nil {
		return request.CorrectionResponse{}, err
	}

	now := s.now()
	if req.Date.After(clock.Today(now, s.loc)) {
		return request.CorrectionResponse{}, request.ErrFutureDate
	}

	c := request.CorrectionRequest{
		Header:            request.NewHeader(request.KindCorrection, userID, now),
		TargetDate:        req.Date,
		RequestedClockIn:  req.ClockIn,
		RequestedClockOut: req.ClockOut,
		Reason:            req.Reason,
	}

	current, err := s.attendances.GetByUserAndDate(ctx, userID, req.Date)
	if err != nil {
		return request.CorrectionResponse{}, fmt.Errorf("failed to get attendance: %w", err)
	}
	if current != nil {
		c.CurrentClockIn = current.ClockIn
		c.CurrentClockOut = current.ClockOut
	}

	created, err := s.corrections.Create(ctx, c)
	if err != nil {
		return request.CorrectionResponse{}, err
	}

	slog.Info("Correction request submitted", "request_id", created.ID, "user_id", userID, "target_date", req.TargetDate)
	return request.ToCorrectionResponse(created, s.loc), nil
}

// SubmitOvertime implements request.RequestService.
func (s *RequestServiceImpl) SubmitOvertime(ctx context.Context, userID string, req request.SubmitOvertimeRequest) (request.OvertimeResponse, error) {
	if err := req.Validate(); err != nil {
		return request.OvertimeResponse{}, err
	}
	if _, err := s.actor(ctx, userID); err != nil {
		return request.OvertimeResponse{}, err
	}

	created, err := s.overtimes.Create(ctx, request.OvertimeRequest{
		Header:     request.NewHeader(request.KindOvertime, userID, s.now()),
		TargetDate: req.Date,
		Minutes:    req.Minutes,
		Reason:     req.Reason,
	})
	if err != nil {
		return request.OvertimeResponse{}, err
	}

	slog.Info("Overtime request submitted", "request_id", created.ID, "user_id", userID, "minutes", req.Minutes)
	return request.ToOvertimeResponse(created), nil
}

// SubmitHoliday implements request.RequestService.
func (s *RequestServiceImpl) SubmitHoliday(ctx context.Context, userID string, req request.SubmitHolidayRequest) (request.HolidayResponse, error) {
	if err := req.Validate(); err != nil {
		return request.HolidayResponse{}, err
	}
	if _, err := s.actor(ctx, userID); err != nil {
		return request.HolidayResponse{}, err
	}

	created, err := s.holidays.Create(ctx, request.HolidayRequest{
		Header:      request.NewHeader(request.KindHoliday, userID, s.now()),
		StartDate:   req.Start,
		EndDate:     req.End,
		HolidayType: request.HolidayType(req.HolidayType),
		Reason:      req.Reason,
	})
	if err != nil {
		return request.HolidayResponse{}, err
	}

	slog.Info("Holiday request submitted", "request_id", created.ID, "user_id", userID, "days", created.Days())
	return request.ToHolidayResponse(created), nil
}

// SubmitScheduleDay implements request.RequestService.
func (s *RequestServiceImpl) SubmitScheduleDay(ctx context.Context, userID string, req request.SubmitScheduleDayRequest) (request.ScheduleDayResponse, error) {
	if err := req.Validate(); err != nil {
		return request.ScheduleDayResponse{}, err
	}
	if _, err := s.actor(ctx, userID); err != nil {
		return request.ScheduleDayResponse{}, err
	}

	created, err := s.schedules.Create(ctx, request.ScheduleDay{
		Header:   request.NewHeader(request.KindSchedule, userID, s.now()),
		Date:     req.Day,
		WorkType: request.WorkType(req.WorkType),
	})
	if err != nil {
		return request.ScheduleDayResponse{}, err
	}
	return request.ToScheduleDayResponse(created), nil
}

// SubmitScheduleMonth implements request.RequestService.
func (s *RequestServiceImpl) SubmitScheduleMonth(ctx context.Context, userID string, req request.SubmitScheduleMonthRequest) ([]request.ScheduleDayResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.actor(ctx, userID); err != nil {
		return nil, err
	}

	now := s.now()
	days := make([]request.ScheduleDay, len(req.Days))
	for i, d := range req.Days {
		days[i] = request.ScheduleDay{
			Header:   request.NewHeader(request.KindSchedule, userID, now),
			Date:     req.Dates[i],
			WorkType: request.WorkType(d.WorkType),
		}
	}

	var saved []request.ScheduleDay
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		saved, err = s.schedules.ReplacePendingMonth(ctx, userID, req.MonthStart, days)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Monthly schedule submitted", "user_id", userID, "month", req.Month, "days", len(saved))
	out := make([]request.ScheduleDayResponse, 0, len(saved))
	for _, d := range saved {
		out = append(out, request.ToScheduleDayResponse(d))
	}
	return out, nil
}
