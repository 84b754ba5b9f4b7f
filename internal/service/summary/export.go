package summary

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/summary"
	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/export"
)

// ExportMonthly implements summary.SummaryService. The workbook holds the
// month totals, its weeks and the daily records.
func (s *SummaryServiceImpl) ExportMonthly(ctx context.Context, userID string, req summary.PeriodRequest) ([]byte, string, error) {
	if err := req.Validate(); err != nil {
		return nil, "", err
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	m, err := s.monthly(ctx, userID, req.YearValue, req.MonthValue)
	if err != nil {
		return nil, "", err
	}
	weeks, err := s.weekly(ctx, userID, req.YearValue, req.MonthValue)
	if err != nil {
		return nil, "", err
	}
	start, end := summary.MonthBounds(req.YearValue, req.MonthValue)
	records, err := s.attendances.ListByUserAndRange(ctx, userID, start, end)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list attendance: %w", err)
	}

	mr := summary.ToMonthlyResponse(m)
	totals := export.Sheet{
		Name:    "Summary",
		Headers: []string{"Item", "Value"},
		Rows: [][]interface{}{
			{"Username", u.Username},
			{"Month", fmt.Sprintf("%d-%02d", m.Year, m.Month)},
			{"Work Days", mr.WorkDays},
			{"Business Days", mr.BusinessDays},
			{"Absent Days", mr.AbsentDays},
			{"Company Holidays", mr.HolidayCount},
			{"Work Hours", mr.TotalWorkHours},
			{"Overtime Hours", mr.OvertimeHours},
			{"Average Work Hours", mr.AverageWorkHours},
		},
	}

	weekly := export.Sheet{
		Name:    "Weekly",
		Headers: []string{"ISO Week", "From", "To", "Work Days", "Work (h)", "Overtime (h)", "Average (h)"},
	}
	for _, w := range weeks {
		wr := summary.ToWeeklyResponse(w)
		weekly.Rows = append(weekly.Rows, []interface{}{
			fmt.Sprintf("%d-W%02d", wr.ISOYear, wr.ISOWeek),
			wr.StartDate, wr.EndDate, wr.WorkDays, wr.TotalWorkHours, wr.OvertimeHours, wr.AverageWorkHours,
		})
	}

	daily := export.Sheet{
		Name:    "Daily",
		Headers: []string{"Date", "Work (min)", "Overtime (min)", "Break (min)"},
	}
	for _, r := range records {
		daily.Rows = append(daily.Rows, []interface{}{
			r.Date.Format("2006-01-02"), intOrBlank(r.WorkMinutes), intOrBlank(r.OvertimeMinutes), intOrBlank(r.BreakMinutes),
		})
	}

	data, err := export.Workbook(totals, weekly, daily)
	if err != nil {
		return nil, "", err
	}
	return data, fmt.Sprintf("summary_%s_%d-%02d.xlsx", u.Username, m.Year, m.Month), nil
}

func intOrBlank(n *int) interface{} {
	if n == nil {
		return ""
	}
	return *n
}
