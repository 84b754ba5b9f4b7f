package summary

import (
	"strconv"
	"time"

	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/validator"
)

type PeriodRequest struct {
	Year  string `json:"year"`
	Month string `json:"month"`

	YearValue  int        `json:"-"`
	MonthValue time.Month `json:"-"`
}

func (r *PeriodRequest) Validate() error {
	var errs validator.ValidationErrors

	y, err := strconv.Atoi(r.Year)
	if err != nil || y < 1970 || y > 9999 {
		errs.Add("year", "year must be a four digit year")
	}
	m, err := strconv.Atoi(r.Month)
	if err != nil || m < 1 || m > 12 {
		errs.Add("month", "month must be between 1 and 12")
	}

	r.YearValue, r.MonthValue = y, time.Month(m)
	return errs.Err()
}

type WeekRequest struct {
	Date string `json:"date"`

	Day time.Time `json:"-"`
}

func (r *WeekRequest) Validate() error {
	var errs validator.ValidationErrors
	day, ok := validator.IsValidDate(r.Date)
	if !ok {
		errs.Add("date", "date must be YYYY-MM-DD")
	}
	r.Day = day
	return errs.Err()
}

type WeeklySummaryResponse struct {
	UserID               string  `json:"user_id"`
	ISOYear              int     `json:"iso_year"`
	ISOWeek              int     `json:"iso_week"`
	Month                int     `json:"month"`
	StartDate            string  `json:"start_date"`
	EndDate              string  `json:"end_date"`
	WorkDays             int     `json:"work_days"`
	TotalWorkMinutes     int     `json:"total_work_minutes"`
	TotalOvertimeMinutes int     `json:"total_overtime_minutes"`
	TotalWorkHours       float64 `json:"total_work_hours"`
	OvertimeHours        float64 `json:"overtime_hours"`
	AverageWorkHours     float64 `json:"average_work_hours"`
}

type MonthlySummaryResponse struct {
	UserID               string  `json:"user_id"`
	Year                 int     `json:"year"`
	Month                int     `json:"month"`
	WorkDays             int     `json:"work_days"`
	TotalWorkMinutes     int     `json:"total_work_minutes"`
	TotalOvertimeMinutes int     `json:"total_overtime_minutes"`
	TotalWorkHours       float64 `json:"total_work_hours"`
	OvertimeHours        float64 `json:"overtime_hours"`
	AverageWorkHours     float64 `json:"average_work_hours"`
	BusinessDays         int     `json:"business_days"`
	AbsentDays           int     `json:"absent_days"`
	HolidayCount         int     `json:"holiday_count"`
}

func ToWeeklyResponse(s WeeklySummary) WeeklySummaryResponse {
	return WeeklySummaryResponse{
		UserID:               s.UserID,
		ISOYear:              s.ISOYear,
		ISOWeek:              s.ISOWeek,
		Month:                s.Month,
		StartDate:            s.StartDate.Format("2006-01-02"),
		EndDate:              s.EndDate.Format("2006-01-02"),
		WorkDays:             s.WorkDays,
		TotalWorkMinutes:     s.TotalWorkMinutes,
		TotalOvertimeMinutes: s.TotalOvertimeMinutes,
		TotalWorkHours:       roundHours(s.TotalWorkHours()),
		OvertimeHours:        roundHours(s.OvertimeHours()),
		AverageWorkHours:     roundHours(s.AverageWorkHours),
	}
}

func ToMonthlyResponse(s MonthlySummary) MonthlySummaryResponse {
	return MonthlySummaryResponse{
		UserID:               s.UserID,
		Year:                 s.Year,
		Month:                s.Month,
		WorkDays:             s.WorkDays,
		TotalWorkMinutes:     s.TotalWorkMinutes,
		TotalOvertimeMinutes: s.TotalOvertimeMinutes,
		TotalWorkHours:       roundHours(s.TotalWorkHours()),
		OvertimeHours:        roundHours(s.OvertimeHours()),
		AverageWorkHours:     roundHours(s.AverageWorkHours),
		BusinessDays:         s.BusinessDays,
		AbsentDays:           s.AbsentDays,
		HolidayCount:         s.HolidayCount,
	}
}
