package attendance

import (
	"time"

	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/validator"
)

// MaxRangeDays bounds list and export queries.
const MaxRangeDays = 93

// Viewer identifies who is reading attendance data.
type Viewer struct {
	UserID  string
	IsAdmin bool
}

type RangeRequest struct {
	From string `json:"from"`
	To   string `json:"to"`

	FromDate time.Time `json:"-"`
	ToDate   time.Time `json:"-"`
}

func (r *RangeRequest) Validate() error {
	var errs validator.ValidationErrors

	from, ok := validator.IsValidDate(r.From)
	if !ok {
		errs.Add("from", "from must be YYYY-MM-DD")
	}
	to, ok2 := validator.IsValidDate(r.To)
	if !ok2 {
		errs.Add("to", "to must be YYYY-MM-DD")
	}
	if ok && ok2 {
		if to.Before(from) {
			errs.Add("to", "to must not be before from")
		} else if to.Sub(from) > MaxRangeDays*24*time.Hour {
			errs.Add("to", "range must not exceed 93 days")
		}
	}
	if err := errs.Err(); err != nil {
		return err
	}

	r.FromDate, r.ToDate = from, to
	return nil
}

type ExportRequest struct {
	RangeRequest
	UserID *string `json:"user_id,omitempty"`
}

type AttendanceResponse struct {
	ID              string  `json:"id"`
	UserID          string  `json:"user_id"`
	Date            string  `json:"date"`
	ClockIn         *string `json:"clock_in"`
	ClockOut        *string `json:"clock_out"`
	BreakMinutes    *int    `json:"break_minutes"`
	WorkMinutes     *int    `json:"work_minutes"`
	OvertimeMinutes *int    `json:"overtime_minutes"`
	// Provisional marks totals computed against the current time for a
	// shift that has not ended.
	Provisional bool   `json:"provisional"`
	UpdatedAt   string `json:"updated_at"`
}

type StillWorkingResponse struct {
	AttendanceResponse
	Username string `json:"username"`
	OnBreak  bool   `json:"on_break"`
}

type BreakResponse struct {
	ID              string  `json:"id"`
	AttendanceID    string  `json:"attendance_id"`
	StartTime       string  `json:"start_time"`
	EndTime         *string `json:"end_time"`
	DurationMinutes *int    `json:"duration_minutes"`
}

// TodayResponse is the current status view.
type TodayResponse struct {
	Status     string              `json:"status"`
	Attendance *AttendanceResponse `json:"attendance,omitempty"`
	OpenBreak  *BreakResponse      `json:"open_break,omitempty"`
}

const (
	StatusNotStarted = "not_started"
	StatusWorking    = "working"
	StatusOnBreak    = "on_break"
	StatusFinished   = "finished"
)
