package cron

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/summary"
	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/clock"
)

const (
	weeklyHour  = 1
	monthlyHour = 2
	refreshHour = 3
	jobTimeout  = 30 * time.Minute
)

// SummaryJobs keeps the weekly and monthly summaries current. Each job is
// checked hourly and fires once in its slot, judged in the business time
// zone.
type SummaryJobs struct {
	summaryService summary.SummaryService
	clock          clock.Clock
	loc            *time.Location

	mu      sync.Mutex
	lastRun map[string]string
}

func NewSummaryJobs(summaryService summary.SummaryService, clk clock.Clock, loc *time.Location) *SummaryJobs {
	return &SummaryJobs{
		summaryService: summaryService,
		clock:          clk,
		loc:            loc,
		lastRun:        make(map[string]string),
	}
}

// RegisterJobs registers all summary cron jobs
func (j *SummaryJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("aggregate_previous_week", time.Hour, jobTimeout, j.AggregatePreviousWeek)
	scheduler.AddJob("aggregate_previous_month", time.Hour, jobTimeout, j.AggregatePreviousMonth)
	scheduler.AddJob("refresh_current_week", time.Hour, jobTimeout, j.RefreshCurrentWeek)
}

// AggregatePreviousWeek runs Mondays at 01:00 for the week that just ended.
func (j *SummaryJobs) AggregatePreviousWeek(ctx context.Context) error {
	now := j.clock.Now().In(j.loc)
	if now.Weekday() != time.Monday || now.Hour() != weeklyHour {
		return nil
	}
	if !j.claim("aggregate_previous_week", now) {
		return nil
	}

	lastWeek := clock.Today(now, j.loc).AddDate(0, 0, -7)
	slog.Info("Cron: Aggregating previous week", "day", lastWeek.Format("2006-01-02"))

	result, err := j.summaryService.RunWeek(ctx, lastWeek)
	if err != nil {
		return err
	}
	slog.Info("Cron: Weekly aggregation finished", "period", result.Period, "processed", result.Processed, "failed", result.Failed)
	return nil
}

// AggregatePreviousMonth runs on the 1st at 02:00 for the previous month.
func (j *SummaryJobs) AggregatePreviousMonth(ctx context.Context) error {
	now := j.clock.Now().In(j.loc)
	if now.Day() != 1 || now.Hour() != monthlyHour {
		return nil
	}
	if !j.claim("aggregate_previous_month", now) {
		return nil
	}

	prev := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	slog.Info("Cron: Aggregating previous month", "year", prev.Year(), "month", int(prev.Month()))

	result, err := j.summaryService.RunMonth(ctx, prev.Year(), prev.Month())
	if err != nil {
		return err
	}
	slog.Info("Cron: Monthly aggregation finished", "period", result.Period, "processed", result.Processed, "failed", result.Failed)
	return nil
}

// RefreshCurrentWeek runs daily at 03:00 so the running week stays fresh.
func (j *SummaryJobs) RefreshCurrentWeek(ctx context.Context) error {
	now := j.clock.Now().In(j.loc)
	if now.Hour() != refreshHour {
		return nil
	}
	if !j.claim("refresh_current_week", now) {
		return nil
	}

	result, err := j.summaryService.RunWeek(ctx, clock.Today(now, j.loc))
	if err != nil {
		return err
	}
	slog.Info("Cron: Current week refreshed", "period", result.Period, "processed", result.Processed, "failed", result.Failed)
	return nil
}

// claim reports whether name has not yet run in the hour containing now.
func (j *SummaryJobs) claim(name string, now time.Time) bool {
	slot := now.Format("2006-01-02T15")

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.lastRun[name] == slot {
		return false
	}
	j.lastRun[name] = slot
	return true
}
