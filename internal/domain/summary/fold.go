package summary

import (
	"math"
	"time"

	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/attendance"
)

// Fold sums records into period totals. Records without a clock-in count as
// zero and do not add a work day.
func Fold(records []attendance.Attendance) Totals {
	var t Totals
	for _, r := range records {
		if r.ClockIn == nil {
			continue
		}
		t.WorkDays++
		if r.WorkMinutes != nil {
			t.TotalWorkMinutes += *r.WorkMinutes
		}
		if r.OvertimeMinutes != nil {
			t.TotalOvertimeMinutes += *r.OvertimeMinutes
		}
	}
	if t.WorkDays > 0 {
		t.AverageWorkHours = float64(t.TotalWorkMinutes) / 60 / float64(t.WorkDays)
	}
	return t
}

// roundHours keeps two decimals for display.
func roundHours(h float64) float64 {
	return math.Round(h*100) / 100
}

// WeekBounds returns the ISO Monday and Sunday of the week containing day.
func WeekBounds(day time.Time) (time.Time, time.Time) {
	d := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(d.Weekday()) + 6) % 7
	start := d.AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 6)
}

// MonthBounds returns the first and last day of the month.
func MonthBounds(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, -1)
}

// BusinessDays counts weekdays in [from, to] that are not in holidays.
func BusinessDays(from, to time.Time, holidays []time.Time) int {
	off := make(map[string]bool, len(holidays))
	for _, h := range holidays {
		off[h.Format("2006-01-02")] = true
	}

	n := 0
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		if off[d.Format("2006-01-02")] {
			continue
		}
		n++
	}
	return n
}

// NewWeekly builds the weekly row for the week containing day.
func NewWeekly(userID string, day time.Time, records []attendance.Attendance) WeeklySummary {
	start, end := WeekBounds(day)
	year, week := start.ISOWeek()
	return WeeklySummary{
		UserID:    userID,
		ISOYear:   year,
		ISOWeek:   week,
		Month:     int(start.Month()),
		StartDate: start,
		EndDate:   end,
		Totals:    Fold(records),
	}
}

// NewMonthly builds the monthly row; holidays are the company holidays of
// the month.
func NewMonthly(userID string, year int, month time.Month, records []attendance.Attendance, holidays []time.Time) MonthlySummary {
	start, end := MonthBounds(year, month)
	totals := Fold(records)
	business := BusinessDays(start, end, holidays)
	return MonthlySummary{
		UserID:       userID,
		Year:         year,
		Month:        int(month),
		Totals:       totals,
		BusinessDays: business,
		AbsentDays:   max(0, business-totals.WorkDays),
		HolidayCount: len(holidays),
	}
}
