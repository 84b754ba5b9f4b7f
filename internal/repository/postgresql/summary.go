package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/summary"
	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type summaryRepositoryImpl struct {
	db *database.DB
}

func NewSummaryRepository(db *database.DB) summary.SummaryRepository {
	return &summaryRepositoryImpl{db: db}
}

const weeklyColumns = `
	user_id, iso_year, iso_week, month, start_date, end_date,
	work_days, total_work_minutes, total_overtime_minutes, average_work_hours, updated_at`

const monthlyColumns = `
	user_id, year, month,
	work_days, total_work_minutes, total_overtime_minutes, average_work_hours,
	business_days, absent_days, holiday_count, updated_at`

func scanWeekly(row pgx.Row) (summary.WeeklySummary, error) {
	var w summary.WeeklySummary
	err := row.Scan(
		&w.UserID, &w.ISOYear, &w.ISOWeek, &w.Month, &w.StartDate, &w.EndDate,
		&w.WorkDays, &w.TotalWorkMinutes, &w.TotalOvertimeMinutes, &w.AverageWorkHours, &w.UpdatedAt,
	)
	return w, err
}

func scanMonthly(row pgx.Row) (summary.MonthlySummary, error) {
	var m summary.MonthlySummary
	err := row.Scan(
		&m.UserID, &m.Year, &m.Month,
		&m.WorkDays, &m.TotalWorkMinutes, &m.TotalOvertimeMinutes, &m.AverageWorkHours,
		&m.BusinessDays, &m.AbsentDays, &m.HolidayCount, &m.UpdatedAt,
	)
	return m, err
}

func (r *summaryRepositoryImpl) UpsertWeekly(ctx context.Context, w summary.WeeklySummary) (summary.WeeklySummary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO weekly_summaries (
			user_id, iso_year, iso_week, month, start_date, end_date,
			work_days, total_work_minutes, total_overtime_minutes, average_work_hours, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		ON CONFLICT (user_id, iso_year, iso_week) DO UPDATE
		SET month = EXCLUDED.month,
		    start_date = EXCLUDED.start_date,
		    end_date = EXCLUDED.end_date,
		    work_days = EXCLUDED.work_days,
		    total_work_minutes = EXCLUDED.total_work_minutes,
		    total_overtime_minutes = EXCLUDED.total_overtime_minutes,
		    average_work_hours = EXCLUDED.average_work_hours,
		    updated_at = NOW()
		RETURNING ` + weeklyColumns

	saved, err := scanWeekly(q.QueryRow(ctx, query,
		w.UserID, w.ISOYear, w.ISOWeek, w.Month, w.StartDate, w.EndDate,
		w.WorkDays, w.TotalWorkMinutes, w.TotalOvertimeMinutes, w.AverageWorkHours,
	))
	if err != nil {
		return summary.WeeklySummary{}, fmt.Errorf("failed to upsert weekly summary: %w", err)
	}
	return saved, nil
}

func (r *summaryRepositoryImpl) UpsertMonthly(ctx context.Context, m summary.MonthlySummary) (summary.MonthlySummary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO monthly_summaries (
			user_id, year, month,
			work_days, total_work_minutes, total_overtime_minutes, average_work_hours,
			business_days, absent_days, holiday_count, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		ON CONFLICT (user_id, year, month) DO UPDATE
		SET work_days = EXCLUDED.work_days,
		    total_work_minutes = EXCLUDED.total_work_minutes,
		    total_overtime_minutes = EXCLUDED.total_overtime_minutes,
		    average_work_hours = EXCLUDED.average_work_hours,
		    business_days = EXCLUDED.business_days,
		    absent_days = EXCLUDED.absent_days,
		    holiday_count = EXCLUDED.holiday_count,
		    updated_at = NOW()
		RETURNING ` + monthlyColumns

	saved, err := scanMonthly(q.QueryRow(ctx, query,
		m.UserID, m.Year, m.Month,
		m.WorkDays, m.TotalWorkMinutes, m.TotalOvertimeMinutes, m.AverageWorkHours,
		m.BusinessDays, m.AbsentDays, m.HolidayCount,
	))
	if err != nil {
		return summary.MonthlySummary{}, fmt.Errorf("failed to upsert monthly summary: %w", err)
	}
	return saved, nil
}

func (r *summaryRepositoryImpl) GetMonthly(ctx context.Context, userID string, year, month int) (summary.MonthlySummary, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + monthlyColumns + ` FROM monthly_summaries WHERE user_id = $1 AND year = $2 AND month = $3`
	m, err := scanMonthly(q.QueryRow(ctx, query, userID, year, month))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return summary.MonthlySummary{}, summary.ErrSummaryNotFound
		}
		return summary.MonthlySummary{}, fmt.Errorf("failed to get monthly summary: %w", err)
	}
	return m, nil
}

func (r *summaryRepositoryImpl) ListWeeklyByMonth(ctx context.Context, userID string, year, month int) ([]summary.WeeklySummary, error) {
	q := GetQuerier(ctx, r.db)

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	query := `SELECT ` + weeklyColumns + `
		FROM weekly_summaries
		WHERE user_id = $1 AND start_date >= $2 AND start_date < $3
		ORDER BY start_date
	`
	rows, err := q.Query(ctx, query, userID, from, from.AddDate(0, 1, 0))
	if err != nil {
		return nil, fmt.Errorf("failed to list weekly summaries: %w", err)
	}
	defer rows.Close()

	var weeks []summary.WeeklySummary
	for rows.Next() {
		w, err := scanWeekly(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan weekly summary: %w", err)
		}
		weeks = append(weeks, w)
	}
	return weeks, rows.Err()
}
