package attendance

import "errors"

// Attendance domain errors
var (
	// Clock state conflicts
	ErrAlreadyClockedIn  = errors.New("you have already clocked in today")
	ErrAlreadyClockedOut = errors.New("you have already clocked out")
	ErrNotClockedIn      = errors.New("you have not clocked in yet")
	ErrBreakAlreadyOpen  = errors.New("a break is already in progress")
	ErrNoOpenBreak       = errors.New("no break is in progress")

	// General errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrUnauthorized       = errors.New("unauthorized to access this attendance record")
	ErrInvalidDateRange   = errors.New("invalid date range")
	ErrInvalidClockOrder  = errors.New("clock-out must be after clock-in")
)
