package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance records.
type AttendanceRepository interface {
	// GetByID retrieves attendance by ID
	GetByID(ctx context.Context, id string) (Attendance, error)

	// GetByUserAndDate returns the most recently created record for the user
	// on date, or nil when there is none.
	GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*Attendance, error)

	// LockOpen returns the latest open record dated on or after since and
	// locks it for the rest of the transaction. Nil when there is none.
	LockOpen(ctx context.Context, userID string, since time.Time) (*Attendance, error)

	// UpsertClockIn creates the (user, date) record or fills in its clock-in.
	// Returns ErrAlreadyClockedIn when a clock-in is already stored.
	UpsertClockIn(ctx context.Context, userID string, date time.Time, at time.Time) (Attendance, error)

	// Update persists clock readings and derived minutes
	Update(ctx context.Context, attendance Attendance) error

	// ListByUserAndRange returns records with from <= date <= to, oldest first
	ListByUserAndRange(ctx context.Context, userID string, from, to time.Time) ([]Attendance, error)

	// ListByRange is the admin variant across users, optionally filtered
	ListByRange(ctx context.Context, from, to time.Time, userID *string) ([]Attendance, error)

	// ListOpenByDate returns records on date with clock-in set and clock-out unset
	ListOpenByDate(ctx context.Context, date time.Time) ([]Attendance, error)
}

// BreakRepository stores break intervals.
type BreakRepository interface {
	// Create returns ErrBreakAlreadyOpen if the record already has an open interval
	Create(ctx context.Context, b Break) (Break, error)
	GetOpen(ctx context.Context, attendanceID string) (*Break, error)
	Close(ctx context.Context, id string, end time.Time, durationMinutes int) error
	ListByAttendance(ctx context.Context, attendanceID string) ([]Break, error)
}
