package summary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/summary"
	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/user"
	"golang.org/x/sync/errgroup"
)

type SummaryServiceImpl struct {
	summary.SummaryRepository
	attendances attendance.AttendanceRepository
	users       user.UserRepository
	holidays    holiday.HolidayRepository
	workers     int
}

// NewSummaryService builds the aggregation engine. workers bounds how many
// users a batch run aggregates at once.
func NewSummaryService(
	summaryRepo summary.SummaryRepository,
	attendanceRepo attendance.AttendanceRepository,
	userRepo user.UserRepository,
	holidayRepo holiday.HolidayRepository,
	workers int,
) summary.SummaryService {
	if workers < 1 {
		workers = 1
	}
	return &SummaryServiceImpl{
		SummaryRepository: summaryRepo,
		attendances:       attendanceRepo,
		users:             userRepo,
		holidays:          holidayRepo,
		workers:           workers,
	}
}

// ensureUser rejects summaries for users that do not exist.
func (s *SummaryServiceImpl) ensureUser(ctx context.Context, userID string) error {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return user.ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}
	return nil
}

// AggregateWeek implements summary.SummaryService.
func (s *SummaryServiceImpl) AggregateWeek(ctx context.Context, userID string, day time.Time) (summary.WeeklySummary, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return summary.WeeklySummary{}, err
	}
	start, end := summary.WeekBounds(day)

	records, err := s.attendances.ListByUserAndRange(ctx, userID, start, end)
	if err != nil {
		return summary.WeeklySummary{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	saved, err := s.SummaryRepository.UpsertWeekly(ctx, summary.NewWeekly(userID, day, records))
	if err != nil {
		return summary.WeeklySummary{}, fmt.Errorf("failed to save weekly summary: %w", err)
	}
	return saved, nil
}

// AggregateMonth implements summary.SummaryService.
func (s *SummaryServiceImpl) AggregateMonth(ctx context.Context, userID string, year int, month time.Month) (summary.MonthlySummary, error) {
	if month < time.January || month > time.December {
		return summary.MonthlySummary{}, summary.ErrInvalidPeriod
	}
	if err := s.ensureUser(ctx, userID); err != nil {
		return summary.MonthlySummary{}, err
	}
	start, end := summary.MonthBounds(year, month)

	records, err := s.attendances.ListByUserAndRange(ctx, userID, start, end)
	if err != nil {
		return summary.MonthlySummary{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	companyHolidays, err := s.holidays.ListBetween(ctx, start, end)
	if err != nil {
		return summary.MonthlySummary{}, fmt.Errorf("failed to list company holidays: %w", err)
	}
	dates := make([]time.Time, 0, len(companyHolidays))
	for _, h := range companyHolidays {
		dates = append(dates, h.Date)
	}

	saved, err := s.SummaryRepository.UpsertMonthly(ctx, summary.NewMonthly(userID, year, month, records, dates))
	if err != nil {
		return summary.MonthlySummary{}, fmt.Errorf("failed to save monthly summary: %w", err)
	}
	return saved, nil
}

// RunWeek implements summary.SummaryService.
func (s *SummaryServiceImpl) RunWeek(ctx context.Context, day time.Time) (summary.BatchResult, error) {
	start, _ := summary.WeekBounds(day)
	year, week := start.ISOWeek()
	period := fmt.Sprintf("%d-W%02d", year, week)

	return s.runBatch(ctx, period, func(ctx context.Context, userID string) error {
		_, err := s.AggregateWeek(ctx, userID, start)
		return err
	})
}

// RunMonth implements summary.SummaryService.
func (s *SummaryServiceImpl) RunMonth(ctx context.Context, year int, month time.Month) (summary.BatchResult, error) {
	if month < time.January || month > time.December {
		return summary.BatchResult{}, summary.ErrInvalidPeriod
	}
	period := fmt.Sprintf("%d-%02d", year, int(month))

	return s.runBatch(ctx, period, func(ctx context.Context, userID string) error {
		_, err := s.AggregateMonth(ctx, userID, year, month)
		return err
	})
}

// runBatch applies fn to every active user with at most s.workers running at
// once. Users not yet started when ctx is cancelled are skipped.
func (s *SummaryServiceImpl) runBatch(ctx context.Context, period string, fn func(ctx context.Context, userID string) error) (summary.BatchResult, error) {
	users, err := s.users.ListActive(ctx)
	if err != nil {
		return summary.BatchResult{Period: period}, fmt.Errorf("failed to list users: %w", err)
	}

	startedAt := time.Now()
	var processed, failed atomic.Int64

	var g errgroup.Group
	g.SetLimit(s.workers)
	for _, u := range users {
		if ctx.Err() != nil {
			break
		}
		userID := u.ID
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			if err := fn(ctx, userID); err != nil {
				failed.Add(1)
				slog.Error("Aggregation failed", "period", period, "user_id", userID, "error", err)
				return nil
			}
			processed.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return summary.BatchResult{Period: period}, err
	}

	result := summary.BatchResult{
		Period:    period,
		Processed: int(processed.Load()),
		Failed:    int(failed.Load()),
	}
	slog.Info("Aggregation finished",
		"period", period,
		"users", len(users),
		"processed", result.Processed,
		"failed", result.Failed,
		"duration", time.Since(startedAt),
	)

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// monthly returns the stored summary, aggregating it on first access.
func (s *SummaryServiceImpl) monthly(ctx context.Context, userID string, year int, month time.Month) (summary.MonthlySummary, error) {
	m, err := s.SummaryRepository.GetMonthly(ctx, userID, year, int(month))
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, summary.ErrSummaryNotFound) {
		return summary.MonthlySummary{}, err
	}
	return s.AggregateMonth(ctx, userID, year, month)
}

// weekly returns the weeks starting in the month, aggregating them when none
// are stored yet.
func (s *SummaryServiceImpl) weekly(ctx context.Context, userID string, year int, month time.Month) ([]summary.WeeklySummary, error) {
	weeks, err := s.SummaryRepository.ListWeeklyByMonth(ctx, userID, year, int(month))
	if err != nil {
		return nil, err
	}
	if len(weeks) > 0 {
		return weeks, nil
	}

	start, end := summary.MonthBounds(year, month)
	monday, _ := summary.WeekBounds(start)
	if monday.Before(start) {
		monday = monday.AddDate(0, 0, 7)
	}
	for d := monday; !d.After(end); d = d.AddDate(0, 0, 7) {
		w, err := s.AggregateWeek(ctx, userID, d)
		if err != nil {
			return nil, err
		}
		weeks = append(weeks, w)
	}
	return weeks, nil
}

// GetMonthly implements summary.SummaryService.
func (s *SummaryServiceImpl) GetMonthly(ctx context.Context, userID string, req summary.PeriodRequest) (summary.MonthlySummaryResponse, error) {
	if err := req.Validate(); err != nil {
		return summary.MonthlySummaryResponse{}, err
	}
	m, err := s.monthly(ctx, userID, req.YearValue, req.MonthValue)
	if err != nil {
		return summary.MonthlySummaryResponse{}, err
	}
	return summary.ToMonthlyResponse(m), nil
}

// ListWeekly implements summary.SummaryService.
func (s *SummaryServiceImpl) ListWeekly(ctx context.Context, userID string, req summary.PeriodRequest) ([]summary.WeeklySummaryResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	weeks, err := s.weekly(ctx, userID, req.YearValue, req.MonthValue)
	if err != nil {
		return nil, err
	}

	out := make([]summary.WeeklySummaryResponse, 0, len(weeks))
	for _, w := range weeks {
		out = append(out, summary.ToWeeklyResponse(w))
	}
	return out, nil
}
