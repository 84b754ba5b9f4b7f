package attendance

import (
	"time"
)

// Attendance is one user's record for one calendar date. Break, work and
// overtime minutes are nil when the record has no complete clock-in/out pair
// after a correction.
type Attendance struct {
	ID              string
	UserID          string
	Date            time.Time
	ClockIn         *time.Time
	ClockOut        *time.Time
	BreakMinutes    *int
	WorkMinutes     *int
	OvertimeMinutes *int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsOpen reports whether the shift has started and not yet ended.
func (a Attendance) IsOpen() bool {
	return a.ClockIn != nil && a.ClockOut == nil
}

// IsClosed reports whether both clock readings are present.
func (a Attendance) IsClosed() bool {
	return a.ClockIn != nil && a.ClockOut != nil
}

// Break is a recorded break interval; EndTime is nil while it is open.
type Break struct {
	ID              string
	AttendanceID    string
	StartTime       time.Time
	EndTime         *time.Time
	DurationMinutes *int
	CreatedAt       time.Time
}

func (b Break) IsOpen() bool {
	return b.EndTime == nil
}
