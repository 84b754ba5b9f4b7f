package summary

import "time"

// Totals is the fold of a user's attendance records over a period.
type Totals struct {
	WorkDays             int
	TotalWorkMinutes     int
	TotalOvertimeMinutes int
	AverageWorkHours     float64
}

// TotalWorkHours converts at the presentation boundary.
func (t Totals) TotalWorkHours() float64 {
	return float64(t.TotalWorkMinutes) / 60
}

func (t Totals) OvertimeHours() float64 {
	return float64(t.TotalOvertimeMinutes) / 60
}

// WeeklySummary is keyed by (UserID, ISOYear, ISOWeek). Month is the month
// of the week's Monday.
type WeeklySummary struct {
	UserID    string
	ISOYear   int
	ISOWeek   int
	Month     int
	StartDate time.Time
	EndDate   time.Time
	Totals
	UpdatedAt time.Time
}

// MonthlySummary is keyed by (UserID, Year, Month).
type MonthlySummary struct {
	UserID string
	Year   int
	Month  int
	Totals
	BusinessDays int
	AbsentDays   int
	HolidayCount int
	UpdatedAt    time.Time
}

// BatchResult reports a batch aggregation run.
type BatchResult struct {
	Period    string `json:"period"`
	Processed int    `json:"processed"`
	Failed    int    `json:"failed"`
}
